package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/moolen/sparkmap/internal/analyze"
	"github.com/moolen/sparkmap/internal/config"
	"github.com/moolen/sparkmap/internal/explain"
	"github.com/moolen/sparkmap/internal/models"
	"github.com/moolen/sparkmap/internal/render"
)

var (
	configPath   string
	outPath      string
	formatName   string
	explainName  string
	explainModel string
	explainHost  string
	metricsOnly  bool

	flagSkewRatio     float64
	flagShuffleRatio  float64
	flagMinSpillBytes int64
	flagHighTaskCount int
	flagMinAvgTaskMs  float64
	flagIORatio       float64
	flagDriverRatio   float64
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <event-log>",
	Short: "Analyze a Spark event log for performance bottlenecks",
	Long: `Analyze reads a Spark event log (newline-delimited JSON), aggregates
per-stage metrics and runs the bottleneck detectors. The report goes to
stdout or --out in the requested --format.

Exit code is 0 for a clean run (findings or not) and 1 for a fatal
error such as an unreadable or unrecognized event log.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		HandleError(setupLog(logLevelFlags), "Failed to setup logging")
		runAnalyze(cmd, args[0])
	},
}

func init() {
	flags := analyzeCmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "Path to config file (yaml)")
	flags.StringVarP(&outPath, "out", "o", "", "Write the report to this file instead of stdout")
	flags.StringVarP(&formatName, "format", "f", "text", "Output format: text, markdown or json")
	flags.BoolVar(&metricsOnly, "metrics-only", false, "Skip detection and print the aggregated metrics as JSON")

	flags.StringVar(&explainName, "explain", "", "Explain findings with an LLM provider: anthropic, ollama or gemini")
	flags.StringVar(&explainModel, "explain-model", "", "Model name for the explain provider")
	flags.StringVar(&explainHost, "explain-host", "", "Host override for local explain providers (ollama)")

	flags.Float64Var(&flagSkewRatio, "skew-ratio", config.DefaultSkewRatio, "Max/median task duration ratio that flags data skew")
	flags.Float64Var(&flagShuffleRatio, "shuffle-ratio", config.DefaultShuffleRatio, "Shuffle-write/input bytes ratio that flags shuffle explosion")
	flags.Int64Var(&flagMinSpillBytes, "min-spill-bytes", config.DefaultMinSpillBytes, "Minimum spilled bytes that flag disk spill (inclusive)")
	flags.IntVar(&flagHighTaskCount, "high-task-count", config.DefaultHighTaskCount, "Task count above which a stage is checked for partition inefficiency")
	flags.Float64Var(&flagMinAvgTaskMs, "min-avg-task-duration-ms", config.DefaultMinAvgTaskDurationMs, "Average task duration below which a high-task-count stage is flagged")
	flags.Float64Var(&flagIORatio, "io-ratio", config.DefaultIORatio, "Read-time/stage-duration ratio that flags an I/O-bound stage")
	flags.Float64Var(&flagDriverRatio, "driver-ratio", config.DefaultDriverRatio, "Serialization or scheduler-delay ratio that flags a driver bottleneck")
}

func runAnalyze(cmd *cobra.Command, eventLogPath string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadAnalyzeConfig(cmd)
	HandleError(err, "Invalid configuration")

	format, err := render.ParseFormat(formatName)
	HandleError(err, "Invalid output format")

	out, closeOut, err := openOut()
	HandleError(err, "Failed to open output")
	defer closeOut()

	if metricsOnly {
		f, err := os.Open(eventLogPath)
		HandleError(err, "Failed to open event log")
		defer f.Close()

		metrics, err := analyze.CollectMetrics(ctx, f)
		HandleError(err, "Analysis failed")
		HandleError(writeJSON(out, metrics), "Failed to write metrics")
		return
	}

	report, err := analyze.RunFile(ctx, eventLogPath, analyze.Options{
		Thresholds: cfg.Thresholds,
	})
	HandleError(err, "Analysis failed")

	HandleError(render.Render(out, format, report), "Failed to render report")

	annotateReport(ctx, cfg, report, out, format)
}

// loadAnalyzeConfig merges, in increasing priority: defaults, the config
// file, CLI flags. A flag only overrides when it was set explicitly.
func loadAnalyzeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configPath != "" {
		loaded, err := config.LoadFile(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flagThresholds := map[string]func(*config.Config){
		"skew-ratio":               func(c *config.Config) { c.Thresholds.SkewRatio = flagSkewRatio },
		"shuffle-ratio":            func(c *config.Config) { c.Thresholds.ShuffleRatio = flagShuffleRatio },
		"min-spill-bytes":          func(c *config.Config) { c.Thresholds.MinSpillBytes = flagMinSpillBytes },
		"high-task-count":          func(c *config.Config) { c.Thresholds.HighTaskCount = flagHighTaskCount },
		"min-avg-task-duration-ms": func(c *config.Config) { c.Thresholds.MinAvgTaskDurationMs = flagMinAvgTaskMs },
		"io-ratio":                 func(c *config.Config) { c.Thresholds.IORatio = flagIORatio },
		"driver-ratio":             func(c *config.Config) { c.Thresholds.DriverRatio = flagDriverRatio },
	}
	for name, apply := range flagThresholds {
		if cmd.Flags().Changed(name) {
			apply(cfg)
		}
	}

	if explainName != "" {
		cfg.Explain.Provider = explainName
	}
	if explainModel != "" {
		cfg.Explain.Model = explainModel
	}
	if explainHost != "" {
		cfg.Explain.Host = explainHost
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// annotateReport runs the optional explanation layer. The rendered
// report above is already complete; explanations are strictly additive
// and a provider failure never fails the run.
func annotateReport(ctx context.Context, cfg *config.Config, report *models.Report, out io.Writer, format render.Format) {
	provider, err := explain.NewProvider(cfg.Explain)
	HandleError(err, "Failed to initialize explain provider")
	if provider == nil || len(report.Findings) == 0 {
		return
	}

	annotations := explain.Annotate(ctx, provider, report)

	if format == render.FormatJSON {
		// Keep the canonical report untouched; annotations go to stderr
		// as their own document
		HandleError(writeJSON(os.Stderr, annotations), "Failed to write annotations")
		return
	}

	fmt.Fprintf(out, "\nExplanations (%s)\n\n", annotations.Provider)
	if annotations.Summary != "" {
		fmt.Fprintf(out, "%s\n\n", annotations.Summary)
	}
	for _, item := range annotations.Items {
		fmt.Fprintf(out, "%s\n", item.Finding.Title)
		if item.Err != "" {
			fmt.Fprintf(out, "  (explanation unavailable: %s)\n\n", item.Err)
			continue
		}
		for _, line := range strings.Split(item.Text, "\n") {
			fmt.Fprintf(out, "  %s\n", line)
		}
		fmt.Fprintln(out)
	}
}

func openOut() (io.Writer, func(), error) {
	if outPath == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	out = append(out, '\n')
	_, err = w.Write(out)
	return err
}
