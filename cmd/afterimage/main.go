package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/afterimage/internal/config"
	"github.com/san-kum/afterimage/internal/gui"
	"github.com/san-kum/afterimage/internal/scene"
	"github.com/san-kum/afterimage/internal/tui"
)

var version = "dev"

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	seed       int64
	theme      string
	fontPath   string
	trials     int
	outPath    string
	noSave     bool
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "afterimage",
})

func main() {
	rootCmd := &cobra.Command{
		Use:   "afterimage",
		Short: "drag blocks around a physics playground and watch their trails",
		Long: `afterimage drops a heap of pyramid blocks into a walled box.
Grab a block to drag it on a camera-facing plane, or hold the pointer on
empty space to pull every block toward it. Each physics step leaves an
afterimage of every block behind.`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: setupLogger,
		RunE:              runGUI,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".afterimage", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "random seed (overrides config)")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "open the playground in a window",
		Args:  cobra.NoArgs,
		RunE:  runGUI,
	}
	guiCmd.Flags().StringVar(&fontPath, "font", "", "ttf font for the hud")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "run the playground in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runTUI,
	}
	tuiCmd.Flags().StringVar(&theme, "theme", "key", "color theme")

	runCmd := &cobra.Command{
		Use:   "run [script]",
		Short: "play a gesture script headless and record the run",
		Args:  cobra.ExactArgs(1),
		RunE:  runScript,
	}
	runCmd.Flags().IntVar(&trials, "trials", 1, "replay the script over this many seeds")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not record the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw a top-down view of the recorded trail",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default <run_id>.svg)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-12s blocks=%d gravity=%.2f gain=%.1f trail=%d\n",
					name, p.Blocks.Count, p.World.Gravity[1], p.Magnet.Gain, p.Trail.StepsPerObject)
			}
			return nil
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "manage config files",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "write the resolved config to a yaml file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "afterimage.yaml"
			if len(args) > 0 {
				path = args[0]
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			logger.Info("config written", "path", path, "preset", cfg.Preset)
			return nil
		},
	})

	rootCmd.AddCommand(guiCmd, tuiCmd, runCmd, listCmd, plotCmd, exportSVGCmd, exportJSONCmd, presetsCmd, configCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := fang.Execute(ctx, rootCmd); err != nil {
		os.Exit(1)
	}
}

func setupLogger(cmd *cobra.Command, args []string) error {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	logger.SetLevel(level)
	return nil
}

// loadConfig layers preset, config file and the --seed flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Resolve(preset, configFile)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	return cfg, nil
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger.Debug("opening window", "preset", cfg.Preset, "blocks", cfg.Blocks.Count)
	return gui.Run(cfg, gui.Options{Seed: cfg.Seed, Font: fontPath, Logger: logger})
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// bubbletea owns the terminal; keep the log quiet unless asked for
	if !cmd.Flags().Changed("log-level") {
		logger.SetLevel(log.ErrorLevel)
	}
	pg, err := scene.New(cfg, scene.Options{Logger: logger})
	if err != nil {
		return err
	}
	defer pg.Close()
	return tui.Run(pg, tui.Options{Theme: theme, Seed: cfg.Seed, Logger: logger})
}
