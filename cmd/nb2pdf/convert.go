package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	nb2pdf "github.com/alnah/go-nb2pdf"
	"github.com/alnah/go-nb2pdf/internal/config"
	"github.com/alnah/go-nb2pdf/internal/dateutil"
	"github.com/alnah/go-nb2pdf/internal/hints"
)

// Sentinel errors for CLI validation.
var (
	ErrInvalidTimeout = errors.New("invalid timeout")
	ErrInvalidDate    = errors.New("invalid date")
)

// runConvert orchestrates the conversion process.
func runConvert(ctx context.Context, positionalArgs []string, flags *convertFlags, env *Environment, logger *log.Logger) error {
	envCfg := loadEnvConfig()
	warnUnknownEnvVars(logger)

	workers := flags.workers
	if workers == 0 {
		workers = envCfg.Workers
	}
	if err := validateWorkers(workers); err != nil {
		return err
	}

	cfg, err := loadConfig(flags.common.config, envCfg.ConfigPath)
	if err != nil {
		return err
	}

	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Validate the date once for the whole batch; every header shares now.
	now := env.Now()
	if _, err := dateutil.ResolveTimestamp(cfg.Report.Date, now); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDate, err)
	}

	timeout, err := resolveTimeout(flags.timeout, envCfg.Timeout)
	if err != nil {
		return err
	}

	page := buildPageSettings(cfg)
	if err := page.Validate(); err != nil {
		return err
	}

	inputPath, err := resolveInputPath(positionalArgs, cfg)
	if err != nil {
		return err
	}
	outputDir := resolveOutputDir(flags.output, cfg)

	files, err := discoverFiles(inputPath, outputDir)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w in %s", ErrNoNotebooks, inputPath)
	}

	execute := cfg.Execution.IsEnabled() && jupyterAvailable(env, logger)

	poolSize := min(nb2pdf.ResolvePoolSize(workers), len(files))
	logger.Debug("Starting conversion", "files", len(files), "workers", poolSize, "engine", cfg.Render.Engine)

	pool := env.NewPool(poolSize, buildConverterOptions(cfg, timeout, execute, logger)...)
	defer func() {
		if err := pool.Close(); err != nil {
			logger.Warn("Closing converters", "err", err)
		}
	}()

	params := &conversionParams{
		student:    cfg.Report.Student,
		assignment: cfg.Report.Assignment,
		date:       cfg.Report.Date,
		page:       page,
		execute:    execute,
		html:       flags.outputMode.html,
		htmlOnly:   flags.outputMode.htmlOnly,
		now:        now,
	}

	results := convertBatch(ctx, pool, files, params, logger)

	if failed := printResults(results, flags.common.quiet, flags.common.verbose, env); failed > 0 {
		return newBatchError(results, failed)
	}
	return nil
}

// loadConfig loads the config named by the --config flag or NB2PDF_CONFIG,
// or returns the defaults when neither is set.
func loadConfig(flagValue, envValue string) (*config.Config, error) {
	name := flagValue
	if name == "" {
		name = envValue
	}
	if name == "" {
		return config.DefaultConfig(), nil
	}

	cfg, err := config.LoadConfig(name)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.SearchedPaths(name)))
		}
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cfg.Report.Date == "" {
		cfg.Report.Date = config.DefaultConfig().Report.Date
	}
	return cfg, nil
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *convertFlags, cfg *config.Config) {
	// Report flags
	if flags.report.student != "" {
		cfg.Report.Student = flags.report.student
	}
	if flags.report.assignment != "" {
		cfg.Report.Assignment = flags.report.assignment
	}
	if flags.report.title != "" {
		cfg.Report.Title = flags.report.title
	}
	if flags.report.date != "" {
		cfg.Report.Date = flags.report.date
	}

	// Page flags
	if flags.page.size != "" {
		cfg.Page.Size = flags.page.size
	}
	if flags.page.orientation != "" {
		cfg.Page.Orientation = flags.page.orientation
	}
	if flags.page.margin != 0 {
		cfg.Page.Margin = flags.page.margin
	}

	// Execution flags
	if flags.exec.disabled {
		disabled := false
		cfg.Execution.Enabled = &disabled
	}
	if flags.exec.kernel != "" {
		cfg.Execution.Kernel = flags.exec.kernel
	}
	if flags.exec.timeout != 0 {
		cfg.Execution.TimeoutSeconds = flags.exec.timeout
	}

	// Render flags
	if flags.render.engine != "" {
		cfg.Render.Engine = flags.render.engine
	}
	if flags.render.highlight {
		cfg.Render.Highlight = true
	}
	if flags.render.dpi != 0 {
		cfg.Render.DPI = flags.render.dpi
	}
	if flags.render.assetsDir != "" {
		cfg.Render.AssetsDir = flags.render.assetsDir
	}
}

// resolveTimeout picks the PDF generation timeout: flag, then environment.
// Zero means the library default.
func resolveTimeout(flagValue string, envValue time.Duration) (time.Duration, error) {
	if flagValue == "" {
		return envValue, nil
	}
	d, err := time.ParseDuration(flagValue)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidTimeout, flagValue, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %q (must be positive)", ErrInvalidTimeout, flagValue)
	}
	return d, nil
}

// buildPageSettings converts the page section of cfg, filling unset
// fields with the library defaults.
func buildPageSettings(cfg *config.Config) *nb2pdf.PageSettings {
	page := nb2pdf.DefaultPageSettings()
	if cfg.Page.Size != "" {
		page.Size = cfg.Page.Size
	}
	if cfg.Page.Orientation != "" {
		page.Orientation = cfg.Page.Orientation
	}
	if cfg.Page.Margin != 0 {
		page.Margin = cfg.Page.Margin
	}
	return page
}

// buildConverterOptions translates cfg into converter options.
// A nil executor is passed when notebooks must not run.
func buildConverterOptions(cfg *config.Config, timeout time.Duration, execute bool, logger *log.Logger) []nb2pdf.Option {
	opts := []nb2pdf.Option{
		nb2pdf.WithEngine(cfg.Render.Engine),
		nb2pdf.WithSyntaxHighlighting(cfg.Render.Highlight),
		nb2pdf.WithTitle(cfg.Report.Title),
		nb2pdf.WithAssetsDir(cfg.Render.AssetsDir),
		nb2pdf.WithLogger(logger),
	}
	if timeout > 0 {
		opts = append(opts, nb2pdf.WithTimeout(timeout))
	}
	if cfg.Render.DPI > 0 {
		opts = append(opts, nb2pdf.WithDPI(cfg.Render.DPI))
	}

	if !execute {
		return append(opts, nb2pdf.WithExecutor(nil))
	}
	executor := nb2pdf.NewJupyterExecutor()
	if cfg.Execution.Kernel != "" {
		executor.Kernel = cfg.Execution.Kernel
	}
	if cfg.Execution.TimeoutSeconds > 0 {
		executor.CellTimeout = time.Duration(cfg.Execution.TimeoutSeconds) * time.Second
	}
	return append(opts, nb2pdf.WithExecutor(executor))
}

// jupyterAvailable reports whether the jupyter binary can be found.
// A missing binary is not fatal: notebooks are rendered as saved.
func jupyterAvailable(env *Environment, logger *log.Logger) bool {
	bin := nb2pdf.JupyterBin()
	if _, err := env.LookPath(bin); err != nil {
		logger.Warn("Jupyter not found, rendering saved outputs"+hints.ForJupyterNotFound(), "bin", bin)
		return false
	}
	return true
}
