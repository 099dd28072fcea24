package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat"
)

// Metric is a float that survives JSON encoding when it is not finite:
// NaN becomes null and infinities become "+Inf" / "-Inf".
type Metric float64

// Float returns m as a float64.
func (m Metric) Float() float64 { return float64(m) }

func (m Metric) MarshalJSON() ([]byte, error) {
	f := float64(m)
	switch {
	case math.IsNaN(f):
		return []byte("null"), nil
	case math.IsInf(f, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Inf"`), nil
	}
	return []byte(strconv.FormatFloat(f, 'g', -1, 64)), nil
}

func (m *Metric) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case "null":
		*m = Metric(math.NaN())
	case `"+Inf"`:
		*m = Metric(math.Inf(1))
	case `"-Inf"`:
		*m = Metric(math.Inf(-1))
	default:
		f, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return fmt.Errorf("metric %s: %w", b, err)
		}
		*m = Metric(f)
	}
	return nil
}

// GenerationReport summarizes one generation, as ranked before breeding.
type GenerationReport struct {
	Generation     int    `json:"generation"`
	BestFitness    Metric `json:"best_fitness"`
	BestMSE        Metric `json:"best_mse"`
	BestExpression string `json:"best_expression"`
	BestDepth      int    `json:"best_depth"`
	BestNodes      int    `json:"best_nodes"`
	// Mean and standard deviation over the finite fitness values.
	MeanFitness Metric `json:"mean_fitness"`
	StdFitness  Metric `json:"std_fitness"`
	Finite      int    `json:"finite"`
	Elites      int    `json:"elites"`
	Offspring   int    `json:"offspring"`
	CacheHits   int    `json:"cache_hits"`
}

func newGenerationReport(gen int, scored []ranked, elites, offspring int) GenerationReport {
	r := GenerationReport{Generation: gen, Elites: elites, Offspring: offspring}
	if len(scored) == 0 {
		return r
	}
	best := scored[0]
	r.BestFitness = Metric(best.fitness)
	r.BestMSE = Metric(best.mse)
	r.BestExpression = best.tree.String()
	r.BestDepth = best.tree.Depth()
	r.BestNodes = best.tree.NodeCount()

	finite := make([]float64, 0, len(scored))
	for _, s := range scored {
		if !math.IsNaN(s.fitness) && !math.IsInf(s.fitness, 0) {
			finite = append(finite, s.fitness)
		}
	}
	r.Finite = len(finite)
	switch len(finite) {
	case 0:
		r.MeanFitness = Metric(math.NaN())
	case 1:
		r.MeanFitness = Metric(finite[0])
	default:
		mean, std := stat.MeanStdDev(finite, nil)
		r.MeanFitness, r.StdFitness = Metric(mean), Metric(std)
	}
	return r
}

// Individual is one ranked member of the final population.
type Individual struct {
	Rank       int    `json:"rank"`
	Expression string `json:"expression"`
	MSE        Metric `json:"mse"`
	Depth      int    `json:"depth"`
	Nodes      int    `json:"nodes"`
}

// FinalReport summarizes the entire run.
type FinalReport struct {
	RunID       string             `json:"run_id,omitempty"`
	Config      Config             `json:"config"`
	Params      EvolveParams       `json:"params"`
	Generations []GenerationReport `json:"generations,omitempty"`
	Best        Individual         `json:"best"`
	Top         []Individual       `json:"top,omitempty"`
}

// Report builds the final report from the current population and history.
// top limits how many leading individuals are listed.
func (m *Model) Report(top int) FinalReport {
	r := FinalReport{
		Config:      m.cfg,
		Params:      m.params,
		Generations: m.History(),
	}
	if top > len(m.population) {
		top = len(m.population)
	}
	for i := 0; i < top; i++ {
		r.Top = append(r.Top, m.individual(i))
	}
	if len(m.population) > 0 {
		r.Best = m.individual(0)
	}
	return r
}

func (m *Model) individual(i int) Individual {
	t := m.population[i]
	mse, ok := m.MSE(i)
	if !ok {
		mse = math.NaN()
	}
	return Individual{
		Rank:       i + 1,
		Expression: t.String(),
		MSE:        Metric(mse),
		Depth:      t.Depth(),
		Nodes:      t.NodeCount(),
	}
}

var printer = message.NewPrinter(language.English)

// WriteTextReport writes a generation report in human-readable format.
func WriteTextReport(w io.Writer, r GenerationReport) {
	printer.Fprintf(w, "Gen %6d | Best: %.6g (mse %.6g) | Mean: %.4g ± %.4g | depth %d, %d nodes | %s\n",
		r.Generation, r.BestFitness.Float(), r.BestMSE.Float(),
		r.MeanFitness.Float(), r.StdFitness.Float(),
		r.BestDepth, r.BestNodes, r.BestExpression)
}

// WriteTextFinal writes the final report in human-readable format.
func WriteTextFinal(w io.Writer, r FinalReport) {
	if len(r.Top) > 1 {
		fmt.Fprintln(w, "\n--- Top individuals ---")
		for _, ind := range r.Top {
			printer.Fprintf(w, "  #%d: mse %.6g | depth %d | %s\n", ind.Rank, ind.MSE.Float(), ind.Depth, ind.Expression)
		}
	}
	fmt.Fprintln(w, "\n========== FINAL RESULT ==========")
	if r.RunID != "" {
		fmt.Fprintf(w, "Run:         %s\n", r.RunID)
	}
	printer.Fprintf(w, "Population:  %d\n", r.Config.PopulationSize)
	printer.Fprintf(w, "Generations: %d\n", len(r.Generations))
	fmt.Fprintf(w, "Seed:        %d\n", r.Config.Seed)
	fmt.Fprintf(w, "Best:        %s\n", r.Best.Expression)
	fmt.Fprintf(w, "MSE:         %.6g\n", r.Best.MSE.Float())
	fmt.Fprintf(w, "Depth:       %d\n", r.Best.Depth)
	printer.Fprintf(w, "Nodes:       %d\n", r.Best.Nodes)
	fmt.Fprintln(w, "==================================")
}

// WriteJSONFinal writes the final report as JSON.
func WriteJSONFinal(w io.Writer, r FinalReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
