package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/wildfunctions/symgp/pkg/engine"
	"github.com/wildfunctions/symgp/pkg/expr"
	"github.com/wildfunctions/symgp/pkg/exprlang"
	"github.com/wildfunctions/symgp/pkg/pool"
	"github.com/wildfunctions/symgp/pkg/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	o, err := parseOptions(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
	logger, err := newLogger(os.Stderr, o.Run.LogLevel, o.Run.LogJSON)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	if o.Run.Expr != "" {
		err = predict(ctx, os.Stdout, o)
	} else {
		err = evolve(ctx, os.Stdout, o, logger)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(w io.Writer, level string, asJSON bool) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("%w: log level %q", expr.ErrConfig, level)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if asJSON {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// predict evaluates a rendered expression over the data file and prints one
// prediction per sample, followed by the MSE when the target column exists.
func predict(ctx context.Context, w io.Writer, o options) error {
	if o.Run.Data == "" {
		return fmt.Errorf("%w: -expr needs -data", expr.ErrConfig)
	}
	ds, err := loadCSV(o.Run.Data, o.Run.Target, o.Run.Variables)
	if err != nil {
		return err
	}
	for _, v := range ds.Variables {
		if err := pool.CheckVariable(v); err != nil {
			return err
		}
	}
	pred, err := exprlang.EvaluateRows(ctx, exprlang.Default(), o.Run.Expr, ds.X, ds.Variables)
	if err != nil {
		return err
	}
	for _, v := range pred {
		fmt.Fprintf(w, "%g\n", v)
	}
	if ds.HasTarget {
		mse, err := expr.MeanSquaredError(pred, ds.Y)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "# mse %g\n", mse)
	}
	return nil
}

func evolve(ctx context.Context, w io.Writer, o options, logger *slog.Logger) error {
	if o.Run.Data == "" {
		return fmt.Errorf("%w: -data is required", expr.ErrConfig)
	}
	if o.Run.Format != "text" && o.Run.Format != "json" {
		return fmt.Errorf("%w: unknown output format %q", expr.ErrConfig, o.Run.Format)
	}
	ds, err := loadCSV(o.Run.Data, o.Run.Target, o.Run.Variables)
	if err != nil {
		return err
	}
	if !ds.HasTarget {
		return fmt.Errorf("%w: %s has no target column %q", expr.ErrConfig, o.Run.Data, o.Run.Target)
	}
	if err := o.applyPool(); err != nil {
		return err
	}

	runID := store.NewID()
	logger = logger.With("run", runID)
	cfg := o.Model
	cfg.Variables = ds.Variables
	cfg.Logger = logger

	var archive store.Store
	if o.Run.Store != "" {
		if archive, err = store.NewStore(o.Run.Store, o.Run.SQLitePath); err != nil {
			return err
		}
		defer store.CloseIfSupported(archive)
		if err := archive.Init(ctx); err != nil {
			return fmt.Errorf("init %s store: %w", o.Run.Store, err)
		}
	}

	progress := w
	if o.Run.Format == "json" {
		progress = os.Stderr
	}
	cfg.OnGeneration = func(r engine.GenerationReport) {
		if o.Run.Verbose {
			engine.WriteTextReport(progress, r)
		}
		if archive != nil {
			if err := archive.SaveGeneration(ctx, runID, r); err != nil {
				logger.Warn("archiving generation failed", "gen", r.Generation, "err", err)
			}
		}
	}

	m, err := engine.New(cfg)
	if err != nil {
		return err
	}
	if err := m.Evolve(ds.X, ds.Y, o.Run.Generations, o.Evolve); err != nil {
		return err
	}

	report := m.Report(o.Run.Top)
	report.RunID = runID
	if archive != nil {
		if err := archive.SaveRun(ctx, store.NewRun(o.Run.Data, report)); err != nil {
			return fmt.Errorf("archiving run: %w", err)
		}
	}

	if o.Run.Format == "json" {
		return engine.WriteJSONFinal(w, report)
	}
	engine.WriteTextFinal(w, report)
	return nil
}
