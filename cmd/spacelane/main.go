// Package main provides the CLI entrypoint for spacelane.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/spacelane/internal/arbiter"
	"github.com/verte-zerg/spacelane/internal/config"
	"github.com/verte-zerg/spacelane/internal/generator"
	"github.com/verte-zerg/spacelane/internal/model"
	"github.com/verte-zerg/spacelane/internal/serve"
	"github.com/verte-zerg/spacelane/internal/stats"
	"github.com/verte-zerg/spacelane/internal/statsui"
	"github.com/verte-zerg/spacelane/internal/store"
	"github.com/verte-zerg/spacelane/internal/tui"
	"github.com/verte-zerg/spacelane/internal/wave"
)

const (
	defaultMode        = "two"
	defaultCurveWindow = 10
)

type playFlags struct {
	mode        string
	sound       bool
	hazards     bool
	periodMs    float64
	autoDelayMs float64
	seed        int64
}

var (
	play    playFlags
	logFile string
	debug   bool

	statsMode        string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsPlain       bool

	serveHost    string
	servePort    int
	serveHostKey string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "spacelane",
		Short:         "Switch-accessible lane defense reflex trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}
	addPlayFlags(rootCmd, &play)
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write debug logs to this file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "write debug logs to the default log file")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newModesCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newServeCmd())
	return rootCmd
}

func addPlayFlags(cmd *cobra.Command, f *playFlags) {
	cmd.Flags().StringVar(&f.mode, "mode", defaultMode, "access mode: auto, one, two or scan")
	cmd.Flags().BoolVar(&f.sound, "sound", true, "ring the terminal bell on hits")
	cmd.Flags().BoolVar(&f.hazards, "hazards", true, "spawn hazards once the score reaches 20")
	cmd.Flags().Float64Var(&f.periodMs, "period-ms", wave.DefaultPeriodMs, "flight time of one attack in ms")
	cmd.Flags().Float64Var(&f.autoDelayMs, "auto-delay-ms", arbiter.DefaultAutoDelayMs, "auto mode answer delay in ms")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "random seed (0 picks one)")
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg, err := resolvePlayConfig(cmd, fileCfg.Play)
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(logFile)
	if err != nil {
		return err
	}
	defer closeLog()

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Error("failed to close db", "err", cerr)
		}
	}()

	m := tui.NewModel(tui.Options{
		Config: cfg,
		Store:  st,
		Logger: logger,
		Bell:   os.Stdout,
	}, generator.ForSeed(cfg.Seed))
	program := tea.NewProgram(m, tea.WithAltScreen())
	_, runErr := program.Run()
	m.Close()
	if runErr != nil {
		return fmt.Errorf("failed to run TUI: %w", runErr)
	}
	return nil
}

// resolvePlayConfig merges the config file under explicitly set flags and validates the result.
func resolvePlayConfig(cmd *cobra.Command, file config.PlayConfig) (model.Config, error) {
	applyStringConfig(cmd, "mode", &play.mode, file.Mode)
	applyBoolConfig(cmd, "sound", &play.sound, file.Sound)
	applyBoolConfig(cmd, "hazards", &play.hazards, file.Hazards)
	applyFloatConfig(cmd, "period-ms", &play.periodMs, file.PeriodMs)
	applyFloatConfig(cmd, "auto-delay-ms", &play.autoDelayMs, file.AutoDelayMs)
	applyInt64Config(cmd, "seed", &play.seed, file.Seed)

	mode, err := model.ParseMode(play.mode)
	if err != nil {
		return model.Config{}, fmt.Errorf("--mode: %w", err)
	}
	cfg := model.Config{
		Mode:        mode,
		Sound:       play.sound,
		Hazards:     play.hazards,
		PeriodMs:    play.periodMs,
		AutoDelayMs: play.autoDelayMs,
		Seed:        play.seed,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg model.Config) error {
	if cfg.PeriodMs <= 0 {
		return fmt.Errorf("--period-ms must be > 0")
	}
	if cfg.AutoDelayMs <= 0 {
		return fmt.Errorf("--auto-delay-ms must be > 0")
	}
	return nil
}

func newLogger(path string) (*log.Logger, func(), error) {
	if path == "" && debug {
		path = config.DefaultLogPath()
	}
	if path == "" {
		logger := log.NewWithOptions(os.Stderr, log.Options{Level: log.WarnLevel, Prefix: "spacelane"})
		return logger, func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger := log.NewWithOptions(f, log.Options{
		Level:           log.DebugLevel,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})
	return logger, func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close of the log file.
			_ = cerr
		}
	}, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := config.SaveConfig(path, config.Template()); err != nil {
			return err
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newModesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "modes",
		Short: "List access modes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeModes(cmd.OutOrStdout())
		},
	}
}

func writeModes(w io.Writer) error {
	for _, mode := range model.Modes() {
		if _, err := fmt.Fprintf(w, "%-5s %s\n", mode, mode.Description()); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsMode, "mode", "", "access mode filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the TUI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildStatsConfig()
	if err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			// Best-effort close after stats.
			_ = cerr
		}
	}()

	if statsPlain {
		return writePlainReport(cmd.Context(), cmd.OutOrStdout(), st, cfg)
	}
	program := tea.NewProgram(statsui.NewModel(st, cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func buildStatsConfig() (model.StatsConfig, error) {
	cfg := model.StatsConfig{
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}
	if statsMode != "" {
		mode, err := model.ParseMode(statsMode)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("--mode: %w", err)
		}
		cfg.Mode = mode.String()
	}
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		cfg.Since = &parsed
	}
	if cfg.Last < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if cfg.CurveWindow < 1 {
		return model.StatsConfig{}, fmt.Errorf("--curve-window must be >= 1")
	}
	return cfg, nil
}

func writePlainReport(ctx context.Context, w io.Writer, st *store.Store, cfg model.StatsConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	report, err := stats.BuildReport(ctx, st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	if err := stats.RenderSummary(w, report.Sessions); err != nil {
		return err
	}
	if err := stats.RenderCurves(w, report.Sessions, cfg.CurveWindow); err != nil {
		return err
	}
	return stats.RenderModeTable(w, report.ModesWindow)
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Host the game over SSH",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	addPlayFlags(cmd, &play)
	cmd.Flags().StringVar(&serveHost, "host", config.DefaultSSHHost, "listen host")
	cmd.Flags().IntVar(&servePort, "port", config.DefaultSSHPort, "listen port")
	cmd.Flags().StringVar(&serveHostKey, "host-key", config.DefaultHostKeyPath(), "SSH host key path")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	playCfg, err := resolvePlayConfig(cmd, fileCfg.Play)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "host", &serveHost, fileCfg.Serve.Host)
	applyIntConfig(cmd, "port", &servePort, fileCfg.Serve.Port)
	applyStringConfig(cmd, "host-key", &serveHostKey, fileCfg.Serve.HostKey)
	if !cmd.Flags().Changed("host") {
		serveHost = config.GetEnv("SPACELANE_SSH_HOST", serveHost)
	}
	if !cmd.Flags().Changed("port") {
		servePort = config.GetEnvInt("SPACELANE_SSH_PORT", servePort)
	}
	if !cmd.Flags().Changed("host-key") {
		serveHostKey = config.GetEnv("SPACELANE_SSH_HOST_KEY", serveHostKey)
	}
	if servePort <= 0 || servePort > 65535 {
		return fmt.Errorf("--port must be between 1 and 65535")
	}

	logger, closeLog, err := newLogger(logFile)
	if err != nil {
		return err
	}
	defer closeLog()
	if logFile == "" && !debug {
		logger.SetLevel(log.InfoLevel)
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Error("failed to close db", "err", cerr)
		}
	}()

	srv, err := serve.New(serve.Config{
		Host:        serveHost,
		Port:        servePort,
		HostKeyPath: serveHostKey,
		Play:        playCfg,
	}, st, logger)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx)
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}
