// Package store archives evolution runs and their per-generation reports.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wildfunctions/symgp/pkg/engine"
)

// ErrNotInitialized is returned by stores used before Init.
var ErrNotInitialized = errors.New("store is not initialized")

// Run is one archived call to Evolve.
type Run struct {
	ID      string             `json:"id"`
	Created time.Time          `json:"created"`
	Source  string             `json:"source,omitempty"` // data file the run was fitted to
	Report  engine.FinalReport `json:"report"`
}

// NewRun wraps a final report in a run with a fresh id. The report's
// generation history is dropped; generations are archived one by one.
func NewRun(source string, report engine.FinalReport) Run {
	id := report.RunID
	if id == "" {
		id = NewID()
		report.RunID = id
	}
	report.Generations = nil
	return Run{ID: id, Created: time.Now().UTC(), Source: source, Report: report}
}

// NewID returns a random run id.
func NewID() string { return uuid.NewString() }

// Store persists runs and generation reports.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run Run) error
	GetRun(ctx context.Context, id string) (Run, bool, error)
	SaveGeneration(ctx context.Context, runID string, gen engine.GenerationReport) error
	ListGenerations(ctx context.Context, runID string) ([]engine.GenerationReport, error)
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("run id %q: %w", id, err)
	}
	return nil
}

func encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func decodeRun(payload []byte) (Run, error) {
	var r Run
	err := json.Unmarshal(payload, &r)
	return r, err
}

func decodeGeneration(payload []byte) (engine.GenerationReport, error) {
	var g engine.GenerationReport
	err := json.Unmarshal(payload, &g)
	return g, err
}
