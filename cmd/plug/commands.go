package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/tatonetti-lab/Plug/internal/dataset"
	"github.com/tatonetti-lab/Plug/internal/report"
	"github.com/tatonetti-lab/Plug/probe"
)

// reporterFor builds the progress sink for a command.
func reporterFor(opts *options, description string) probe.Reporter {
	if opts.Quiet {
		return report.Nop{}
	}
	return probe.NewConsoleReporter(nil, description)
}

// buildSpec assembles the model specification from command options.
func buildSpec(opts *options) probe.Spec {
	if opts.BuilderName != "" {
		return probe.Spec{Builder: opts.BuilderName}
	}
	kwargs := map[string]any{}
	if opts.Hidden > 0 {
		kwargs["hidden"] = opts.Hidden
	}
	if opts.TargetRatio > 0 {
		kwargs["target_ratio"] = opts.TargetRatio
	}
	if len(kwargs) == 0 {
		kwargs = nil
	}
	return probe.Spec{Arch: opts.Arch, Kwargs: kwargs}
}

// trainConfig assembles the training configuration from command options.
func trainConfig(opts *options, rep probe.Reporter) probe.Config {
	return probe.Config{
		Epochs:       opts.Epochs,
		ValSplit:     opts.ValSplit,
		Patience:     opts.Patience,
		LearningRate: opts.LR,
		BatchSize:    opts.BatchSize,
		Optimizer:    opts.Optimizer,
		Splits:       opts.Splits,
		Seed:         opts.Seed,
		Reporter:     rep,
	}
}

// loadLabeled reads the training table and determines the class count.
func loadLabeled(opts *options) (*dataset.Table, int, error) {
	table, err := dataset.ReadCSV(opts.Data, opts.IDCol, opts.LabelCol)
	if err != nil {
		return nil, 0, err
	}
	if !table.HasLabels {
		return nil, 0, fmt.Errorf("column %q not found in %s; training needs labels", opts.LabelCol, opts.Data)
	}
	classes := opts.Classes
	if classes == 0 {
		classes = table.NumClasses()
	}
	return table, classes, nil
}

func registerTrainFlags(fs *flag.FlagSet, opts *options) {
	fs.StringVar(&opts.LabelCol, "label-col", opts.LabelCol, "name of the label column")
	fs.IntVar(&opts.Classes, "classes", opts.Classes, "number of classes (default: inferred from labels)")
	fs.StringVar(&opts.Arch, "arch", opts.Arch, "builtin architecture (mlp, linear)")
	fs.StringVar(&opts.BuilderName, "builder", opts.BuilderName, "registered custom builder name (overrides -arch)")
	fs.IntVar(&opts.Hidden, "hidden", opts.Hidden, "mlp hidden width (default: derived from target ratio)")
	fs.Float64Var(&opts.TargetRatio, "target-ratio", opts.TargetRatio, "mlp target parameter/sample ratio")
	fs.IntVar(&opts.Epochs, "epochs", opts.Epochs, "maximum training epochs")
	fs.Float64Var(&opts.ValSplit, "val-split", opts.ValSplit, "validation holdout fraction")
	fs.IntVar(&opts.Patience, "patience", opts.Patience, "epochs without improvement before early stop")
	fs.Float64Var(&opts.LR, "lr", opts.LR, "learning rate")
	fs.IntVar(&opts.BatchSize, "batch-size", opts.BatchSize, "mini-batch size")
	fs.StringVar(&opts.Optimizer, "optimizer", opts.Optimizer, "optimizer: adam or sgd")
	fs.Int64Var(&opts.Seed, "seed", opts.Seed, "seed for splits and shuffling")
}

func runFit(args []string) error {
	opts := defaultOptions()
	err := parseOptions("fit", args, &opts, func(fs *flag.FlagSet) {
		registerTrainFlags(fs, &opts)
		fs.StringVar(&opts.Out, "out", opts.Out, "artifact base path (required)")
	})
	if err != nil {
		return err
	}
	if opts.Data == "" || opts.Out == "" {
		return fmt.Errorf("fit requires -data and -out")
	}

	table, classes, err := loadLabeled(&opts)
	if err != nil {
		return err
	}

	rep := reporterFor(&opts, "fit")
	result, err := probe.Fit(table.Features, table.Labels, classes, buildSpec(&opts), trainConfig(&opts, rep))
	if err != nil {
		return err
	}

	_, dim := table.Features.Dims()
	meta := map[string]string{
		"run_id":     result.RunID,
		"trained_at": time.Now().UTC().Format(time.RFC3339),
		"data":       opts.Data,
	}
	if _, _, err := probe.Save(result.Model, opts.Out, result.Spec, dim, classes, meta, rep); err != nil {
		return err
	}

	best := result.History.BestEpoch()
	fmt.Printf("trained %d epochs; best val metric %.4f at epoch %d; artifacts at %s\n",
		len(result.History), result.History[best].ValMetric, best+1, opts.Out)
	return nil
}

func runCrossValidate(args []string) error {
	opts := defaultOptions()
	err := parseOptions("cross-validate", args, &opts, func(fs *flag.FlagSet) {
		registerTrainFlags(fs, &opts)
		fs.IntVar(&opts.Splits, "splits", opts.Splits, "number of folds")
		fs.StringVar(&opts.Out, "out", opts.Out, "out-of-fold predictions CSV (optional)")
		fs.StringVar(&opts.MetricsOut, "metrics-out", opts.MetricsOut, "summary JSON path (optional)")
	})
	if err != nil {
		return err
	}
	if opts.Data == "" {
		return fmt.Errorf("cross-validate requires -data")
	}

	table, classes, err := loadLabeled(&opts)
	if err != nil {
		return err
	}

	rep := reporterFor(&opts, "cross-validate")
	oof, summary, err := probe.CrossValidate(table.Features, table.Labels, classes, buildSpec(&opts), trainConfig(&opts, rep))
	if err != nil {
		return err
	}

	if opts.Out != "" {
		if err := dataset.WritePredictions(opts.Out, table.IDs, oof); err != nil {
			return err
		}
	}
	if opts.MetricsOut != "" {
		if err := dataset.WriteJSON(opts.MetricsOut, summary); err != nil {
			return err
		}
	}

	fmt.Printf("%s=%.4f over %d folds (per-fold: %v)\n",
		summary.MetricName, summary.Overall, len(summary.FoldMetrics), summary.FoldMetrics)
	return nil
}

func runPredict(args []string) error {
	opts := defaultOptions()
	opts.LabelCol = "" // opt-in for predict: unlabeled data is the norm
	err := parseOptions("predict", args, &opts, func(fs *flag.FlagSet) {
		fs.StringVar(&opts.Model, "model", opts.Model, "artifact base path (required)")
		fs.StringVar(&opts.Out, "out", opts.Out, "predictions CSV path (required)")
		fs.StringVar(&opts.LabelCol, "label-col", opts.LabelCol, "label column for held-out scoring (optional)")
		fs.StringVar(&opts.MetricsOut, "metrics-out", opts.MetricsOut, "metrics JSON path (with -label-col)")
		fs.IntVar(&opts.BatchSize, "batch-size", opts.BatchSize, "forward-pass batch size")
	})
	if err != nil {
		return err
	}
	if opts.Data == "" || opts.Model == "" || opts.Out == "" {
		return fmt.Errorf("predict requires -data, -model, and -out")
	}

	rep := reporterFor(&opts, "predict")
	model, header, err := probe.Load(opts.Model, rep)
	if err != nil {
		return err
	}

	table, err := dataset.ReadCSV(opts.Data, opts.IDCol, opts.LabelCol)
	if err != nil {
		return err
	}

	preds, err := probe.Predict(model, header, table.Features, table.IDs, opts.BatchSize, rep)
	if err != nil {
		return err
	}
	if err := dataset.WritePredictions(opts.Out, preds.IDs, preds.Probs); err != nil {
		return err
	}

	if table.HasLabels {
		if metrics := preds.Score(table.LabelMap(), rep); metrics != nil {
			if opts.MetricsOut != "" {
				if err := dataset.WriteJSON(opts.MetricsOut, metrics); err != nil {
					return err
				}
			}
			fmt.Printf("%s=%.4f accuracy=%.4f over %d scored rows\n",
				metrics.MetricName, metrics.Value, metrics.Accuracy, metrics.NScored)
		}
	}

	fmt.Printf("wrote %d predictions to %s\n", len(preds.IDs), opts.Out)
	return nil
}
