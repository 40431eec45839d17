package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ember/internal/analysis"
	"ember/internal/diagfmt"
	"ember/internal/feedback"
	"ember/internal/logging"
	"ember/internal/observ"
	"ember/internal/prof"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [file.em|directory]",
	Short: "Analyze an ember project and report diagnostics",
	Long: `Run the full analysis of the project containing the given file or directory
(the current directory by default). With a file argument only that file's
diagnostics are reported. Exits with status 1 when errors were found.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "text", "output format (text|json)")
	checkCmd.Flags().Bool("watch", false, "re-run the analysis when project files change")
	checkCmd.Flags().String("ui", "auto", "show analysis progress (auto|on|off)")
	checkCmd.Flags().Int("max-diagnostics", 100, "maximum number of diagnostics to show (0=all)")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	checkCmd.Flags().Bool("timings", false, "print phase timings to stderr")
	checkCmd.Flags().String("log-level", "warn", "log level (debug|info|warn|error)")
	checkCmd.Flags().String("cache-dir", "", "analysis cache directory (default $XDG_CACHE_HOME/ember)")
	checkCmd.Flags().Bool("no-cache", false, "disable the on-disk analysis cache")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	checkCmd.Flags().String("cpuprofile", "", "write a CPU profile to this file")
	checkCmd.Flags().String("memprofile", "", "write a heap profile to this file on exit")
}

type checkOptions struct {
	format   string
	watch    bool
	tui      bool
	color    bool
	quiet    bool
	timings  bool
	max      int
	pathMode diagfmt.PathMode
	only     string // report a single file when set
	engine   analysis.Options
}

func runCheck(cmd *cobra.Command, args []string) error {
	opts, err := readCheckOptions(cmd, args)
	if err != nil {
		return err
	}
	logger := opts.engine.Logger
	defer func() { _ = logger.Sync() }()

	cpuPath, _ := cmd.Flags().GetString("cpuprofile")
	memPath, _ := cmd.Flags().GetString("memprofile")
	profiler, err := prof.Start(prof.Options{CPU: cpuPath, Mem: memPath})
	if err != nil {
		return err
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			logger.Warn("profiling failed", zap.Error(err))
		}
	}()

	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	if opts.watch {
		return watchProject(cmd.Context(), out, errOut, opts)
	}
	counts, err := checkOnce(cmd.Context(), out, errOut, opts)
	if err != nil {
		return err
	}
	if counts.Errors > 0 {
		return &exitError{code: 1}
	}
	return nil
}

func readCheckOptions(cmd *cobra.Command, args []string) (checkOptions, error) {
	var opts checkOptions
	flags := cmd.Flags()

	opts.format, _ = flags.GetString("format")
	opts.format = strings.ToLower(strings.TrimSpace(opts.format))
	switch opts.format {
	case "text", "json":
	default:
		return opts, fmt.Errorf("unsupported format %q (must be text or json)", opts.format)
	}
	opts.watch, _ = flags.GetBool("watch")
	opts.timings, _ = flags.GetBool("timings")
	opts.max, _ = flags.GetInt("max-diagnostics")
	if full, _ := flags.GetBool("fullpath"); full {
		opts.pathMode = diagfmt.PathModeAbsolute
	}
	opts.quiet = quiet(cmd)

	uiValue, _ := flags.GetString("ui")
	mode, err := readUIMode("ui", uiValue)
	if err != nil {
		return opts, err
	}
	opts.tui = opts.format == "text" && !opts.watch && !opts.quiet && shouldUseTUI(mode)
	if opts.color, err = resolveColor(cmd); err != nil {
		return opts, err
	}

	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return opts, fmt.Errorf("resolve %s: %w", target, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return opts, err
	}
	start := abs
	if !info.IsDir() {
		start = filepath.Dir(abs)
		opts.only = abs
	}

	level, _ := flags.GetString("log-level")
	logger, err := logging.New(logging.Options{Level: level})
	if err != nil {
		return opts, err
	}
	cacheDir, _ := flags.GetString("cache-dir")
	noCache, _ := flags.GetBool("no-cache")
	jobs, _ := flags.GetInt("jobs")
	opts.engine = analysis.Options{
		Root:     start,
		CacheDir: cacheDir,
		NoCache:  noCache,
		Jobs:     jobs,
		Logger:   logger.Named("analysis"),
	}
	return opts, nil
}

// checkOnce loads the project, analyzes it and renders the result.
func checkOnce(ctx context.Context, out, errOut io.Writer, opts checkOptions) (diagfmt.Counts, error) {
	timer := observ.NewTimer()

	phase := timer.Begin("load")
	engineOpts := opts.engine
	var events chan analysis.Event
	if opts.tui {
		events = make(chan analysis.Event, 256)
		engineOpts.Progress = analysis.ChannelSink{Ch: events}
	}
	engine, err := analysis.New(engineOpts)
	if err != nil {
		return diagfmt.Counts{}, err
	}
	timer.End(phase, engine.Manifest().Path)

	phase = timer.Begin("analyze")
	var fb feedback.Feedback
	if opts.tui {
		title := "checking " + engine.Manifest().Config.Project.Name
		fb, err = analyzeWithUI(ctx, title, engine, events)
		if err != nil {
			return diagfmt.Counts{}, err
		}
	} else {
		fb = engine.RunFullAnalysis(ctx)
	}
	timer.End(phase, fmt.Sprintf("%d files", engine.FileCount()))

	phase = timer.Begin("render")
	counts, err := render(out, fb, engine, opts)
	timer.End(phase, "")
	if opts.timings {
		fmt.Fprint(errOut, timer.Summary())
	}
	return counts, err
}

// render writes fb in the selected format. Only non-empty entries produce
// output, so cleared files are silent.
func render(out io.Writer, fb feedback.Feedback, engine *analysis.Engine, opts checkOptions) (diagfmt.Counts, error) {
	files := engine.FileCount()
	if opts.only != "" {
		fb = onlyFile(fb, opts.only)
		files = 1
	}
	root := engine.Manifest().Root
	if opts.format == "json" {
		return diagfmt.JSON(out, fb, diagfmt.JSONOpts{PathMode: opts.pathMode, Root: root, Max: opts.max})
	}
	counts := diagfmt.Pretty(out, fb, diagfmt.PrettyOpts{
		Color:    opts.color,
		PathMode: opts.pathMode,
		Root:     root,
		Max:      opts.max,
	})
	diagfmt.Messages(out, fb, opts.color)
	if !opts.quiet || counts.Errors > 0 {
		fmt.Fprintln(out, diagfmt.Summary(counts, files, opts.color))
	}
	return counts, nil
}

func onlyFile(fb feedback.Feedback, path string) feedback.Feedback {
	filtered := feedback.Feedback{Messages: fb.Messages}
	if list, ok := fb.Diagnostics[path]; ok {
		filtered.SetDiagnostics(path, list)
	}
	return filtered
}

func logFor(opts checkOptions) *zap.Logger {
	if opts.engine.Logger == nil {
		return zap.NewNop()
	}
	return opts.engine.Logger
}
