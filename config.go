package main

import (
	"flag"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/wildfunctions/symgp/pkg/engine"
	"github.com/wildfunctions/symgp/pkg/expr"
	"github.com/wildfunctions/symgp/pkg/pool"
)

// options is everything a run can be configured with. The TOML file mirrors
// it with one table per section.
type options struct {
	Model  engine.Config       `toml:"model"`
	Evolve engine.EvolveParams `toml:"evolve"`
	Run    runOptions          `toml:"run"`
}

type runOptions struct {
	Data        string   `toml:"data"`
	Target      string   `toml:"target"`
	Variables   []string `toml:"variables"`
	Pool        string   `toml:"pool"`
	Generations int      `toml:"generations"`
	Top         int      `toml:"top"`
	Format      string   `toml:"format"`
	Verbose     bool     `toml:"verbose"`
	Expr        string   `toml:"expr"`
	Store       string   `toml:"store"`
	SQLitePath  string   `toml:"sqlite_path"`
	LogJSON     bool     `toml:"log_json"`
	LogLevel    string   `toml:"log_level"`
}

func defaultOptions() options {
	return options{
		Model:  engine.DefaultConfig(),
		Evolve: engine.DefaultEvolveParams(),
		Run: runOptions{
			Target:      "y",
			Generations: 100,
			Top:         5,
			Format:      "text",
			SQLitePath:  "symgp.db",
			LogLevel:    "warn",
		},
	}
}

// listValue is a comma separated flag.
type listValue struct{ list *[]string }

func (l listValue) String() string {
	if l.list == nil {
		return ""
	}
	return strings.Join(*l.list, ",")
}

func (l listValue) Set(v string) error {
	*l.list = nil
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			*l.list = append(*l.list, s)
		}
	}
	return nil
}

// formatValue is a parsimony format flag.
type formatValue struct{ f *expr.ParsimonyFormat }

func (v formatValue) String() string {
	if v.f == nil {
		return ""
	}
	return string(*v.f)
}

func (v formatValue) Set(s string) error {
	f, err := expr.ParseParsimonyFormat(s)
	if err != nil {
		return err
	}
	*v.f = f
	return nil
}

func (o *options) bind(fs *flag.FlagSet) {
	cfg, p, run := &o.Model, &o.Evolve, &o.Run

	fs.StringVar(&run.Data, "data", run.Data, "CSV file with a header row")
	fs.StringVar(&run.Target, "target", run.Target, "target column")
	fs.Var(listValue{&run.Variables}, "vars", "input columns, comma separated (default: every other column)")
	fs.StringVar(&run.Pool, "pool", run.Pool, "gene pool preset ("+strings.Join(pool.Names(), ", ")+"), overrides -functions")
	fs.IntVar(&run.Generations, "generations", run.Generations, "number of generations")
	fs.IntVar(&run.Top, "top", run.Top, "individuals listed in the final report")
	fs.StringVar(&run.Format, "format", run.Format, "output format (text, json)")
	fs.BoolVar(&run.Verbose, "verbose", run.Verbose, "report every generation")
	fs.StringVar(&run.Expr, "expr", run.Expr, "evaluate this expression over -data instead of evolving")
	fs.StringVar(&run.Store, "store", run.Store, "archive the run (memory, sqlite)")
	fs.StringVar(&run.SQLitePath, "sqlite-path", run.SQLitePath, "database file for -store sqlite")
	fs.BoolVar(&run.LogJSON, "log-json", run.LogJSON, "log as JSON")
	fs.StringVar(&run.LogLevel, "log-level", run.LogLevel, "log level (debug, info, warn, error)")

	fs.Var(listValue{&cfg.Functions}, "functions", "function set, comma separated")
	fs.IntVar(&cfg.PopulationSize, "population", cfg.PopulationSize, "population size")
	fs.IntVar(&cfg.MaxDepth, "maxdepth", cfg.MaxDepth, "max depth of grown trees")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed")
	fs.Float64Var(&cfg.UnaryProb, "unary", cfg.UnaryProb, "chance of drawing a unary operator")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "number of parallel workers")
	fs.IntVar(&cfg.CacheSize, "cache", cfg.CacheSize, "MSE cache entries (0 disables)")

	fs.Var(&p.Elitism, "elitism", "elite fraction, v or start:end")
	fs.Var(&p.Mutation, "mutation", "mutation probability, v or start:end")
	fs.Var(&p.Parsimony, "parsimony", "depth penalty weight, v or start:end")
	fs.IntVar(&p.PoolSize, "tournament", p.PoolSize, "tournament pool size")
	fs.Var(formatValue{&p.ParsimonyFormat}, "parsimony-format", "depth penalty form (linear, bilinear)")
	fs.Float64Var(&p.Grouping, "grouping", p.Grouping, "top group fraction for tournaments (0 disables)")
}

// parseOptions parses args. A -config file is decoded over the defaults and
// flags given on the command line win over the file.
func parseOptions(fs *flag.FlagSet, args []string) (options, error) {
	o := defaultOptions()
	o.bind(fs)
	var configPath string
	fs.StringVar(&configPath, "config", "", "TOML config file")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if configPath == "" {
		return o, nil
	}

	set := map[string]string{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = f.Value.String() })

	md, err := toml.DecodeFile(configPath, &o)
	if err != nil {
		return o, fmt.Errorf("config %s: %w", configPath, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return o, fmt.Errorf("config %s: %w: unknown keys %s", configPath, expr.ErrConfig, strings.Join(keys, ", "))
	}

	for name, v := range set {
		if err := fs.Set(name, v); err != nil {
			return o, err
		}
	}
	return o, nil
}

// applyPool replaces the function set and growth settings with a preset.
func (o *options) applyPool() error {
	if o.Run.Pool == "" {
		return nil
	}
	preset, err := pool.Get(o.Run.Pool)
	if err != nil {
		return err
	}
	ops, err := preset.Operators()
	if err != nil {
		return err
	}
	o.Model.Functions = preset.Functions
	o.Model.Operators = ops
	o.Model.UnaryProb = preset.UnaryProb
	o.Model.Terminals = preset.Terminals
	return nil
}
