package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// options collects the settings shared by the fit, cross-validate, and
// predict commands. Unset fields keep the library defaults. A YAML config
// file (-config) provides base values; explicit flags override it because
// flags are parsed after the file is applied.
type options struct {
	Config string `yaml:"-"`

	Data     string `yaml:"data"`
	IDCol    string `yaml:"id_column"`
	LabelCol string `yaml:"label_column"`
	Classes  int    `yaml:"classes"`

	Arch        string  `yaml:"arch"`
	BuilderName string  `yaml:"builder"`
	Hidden      int     `yaml:"hidden"`
	TargetRatio float64 `yaml:"target_ratio"`

	Epochs    int     `yaml:"epochs"`
	ValSplit  float64 `yaml:"val_split"`
	Patience  int     `yaml:"patience"`
	LR        float64 `yaml:"learning_rate"`
	BatchSize int     `yaml:"batch_size"`
	Optimizer string  `yaml:"optimizer"`
	Splits    int     `yaml:"splits"`
	Seed      int64   `yaml:"seed"`

	Model      string `yaml:"model"`
	Out        string `yaml:"out"`
	MetricsOut string `yaml:"metrics_out"`
	Quiet      bool   `yaml:"quiet"`
}

func defaultOptions() options {
	return options{
		IDCol:    "id",
		LabelCol: "label",
		Arch:     "mlp",
	}
}

// parseOptions parses args into opts, applying a YAML config file first when
// one is named. register binds the command's flags onto opts.
func parseOptions(name string, args []string, opts *options, register func(fs *flag.FlagSet)) error {
	// First pass only to find -config; values from the file must be in
	// place before the real parse so explicit flags win.
	pre := flag.NewFlagSet(name, flag.ContinueOnError)
	pre.SetOutput(io.Discard)
	pre.Usage = func() {}
	configPath := pre.String("config", "", "")
	registerInto(pre, opts, register)
	_ = pre.Parse(args)

	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, opts); err != nil {
			return fmt.Errorf("parsing config %s: %w", *configPath, err)
		}
	}

	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.String("config", "", "YAML config file with command options")
	registerInto(fs, opts, register)
	return fs.Parse(args)
}

// registerInto binds the shared flags plus the command-specific ones.
func registerInto(fs *flag.FlagSet, opts *options, register func(fs *flag.FlagSet)) {
	fs.StringVar(&opts.Data, "data", opts.Data, "input CSV: header row, identifier column, feature columns")
	fs.StringVar(&opts.IDCol, "id-col", opts.IDCol, "name of the identifier column")
	fs.BoolVar(&opts.Quiet, "quiet", opts.Quiet, "suppress progress output")
	if register != nil {
		register(fs)
	}
}
