package main

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/afterimage/internal/automation"
	"github.com/san-kum/afterimage/internal/config"
	"github.com/san-kum/afterimage/internal/export"
	"github.com/san-kum/afterimage/internal/metrics"
	"github.com/san-kum/afterimage/internal/scene"
	"github.com/san-kum/afterimage/internal/storage"
)

func runScript(cmd *cobra.Command, args []string) error {
	script, err := automation.LoadScript(args[0])
	if err != nil {
		return err
	}
	if preset == "" {
		preset = script.Preset
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts := scene.Options{Logger: logger}

	if trials > 1 {
		return runTrials(cmd, cfg, opts, script)
	}

	pg, err := scene.New(cfg, opts)
	if err != nil {
		return err
	}
	defer pg.Close()

	logger.Info("playing script", "script", script.Name, "preset", cfg.Preset, "frames", script.TotalFrames())
	start := time.Now()
	result, err := automation.Run(cmd.Context(), pg, script, metrics.Standard(pg.Trail, cfg.Container.HalfWidth))
	if err != nil {
		return err
	}
	logger.Info("script finished", "elapsed", time.Since(start), "samples", len(result.Samples))

	for _, name := range sortedKeys(result.Metrics) {
		fmt.Printf("  %-16s %.6f\n", name, result.Metrics[name])
	}
	if noSave {
		return nil
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(storage.RunMetadata{
		Preset:         cfg.Preset,
		Script:         script.Name,
		Seed:           cfg.Seed,
		FixedDelta:     cfg.Frame.FixedDelta,
		Blocks:         cfg.Blocks.Count,
		StepsPerObject: cfg.Trail.StepsPerObject,
	}, result)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func runTrials(cmd *cobra.Command, cfg *config.Config, opts scene.Options, script *automation.Script) error {
	seeds := seedRange(cfg.Seed, trials)
	logger.Info("replaying script", "script", script.Name, "trials", len(seeds))

	results, err := automation.RunSeeds(cmd.Context(), cfg, opts, script, seeds)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tSTABLE\tENERGY\tPEAK\tDRAG ERR\tTIME")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%v\t%.4f\t%.4f\t%.4f\t%.2fs\n",
			r.Seed, r.Stable,
			r.Metrics["kinetic_energy"], r.Metrics["peak_speed"], r.Metrics["drag_error"],
			r.FinalTime)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	stable, unstable := automation.StableCount(results)
	fmt.Printf("\nstable: %d  escaped: %d\n", stable, unstable)
	return nil
}

func seedRange(base int64, n int) []int64 {
	seeds := make([]int64, max(n, 0))
	for i := range seeds {
		seeds[i] = base + int64(i)
	}
	return seeds
}

func sortedKeys(m map[string]float64) []string {
	return slices.Sorted(maps.Keys(m))
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tSCRIPT\tTIME\tFRAMES\tDURATION\tSEED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.2fs\t%d\n",
			run.ID,
			run.Preset,
			run.Script,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Frames,
			run.Duration,
			run.Seed,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s\n", meta.Preset)
	fmt.Printf("samples: %d\n\n", len(samples))

	energy := make([]float64, len(samples))
	visible := make([]float64, len(samples))
	for i, s := range samples {
		energy[i] = s.KineticEnergy
		visible[i] = float64(s.Visible)
	}

	fmt.Println(asciigraph.Plot(energy,
		asciigraph.Height(10),
		asciigraph.Width(60),
		asciigraph.Caption("kinetic energy")))
	fmt.Println()
	fmt.Println(asciigraph.Plot(visible,
		asciigraph.Height(6),
		asciigraph.Width(60),
		asciigraph.Caption("visible afterimages")))
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	instances, err := st.LoadTrail(runID)
	if err != nil {
		return err
	}

	svg := export.TrailToSVG(instances, meta.Blocks, 800, 800, config.DefaultBlockColor)
	if svg == "" {
		return fmt.Errorf("run %s has an empty trail", runID)
	}

	path := outPath
	if path == "" {
		path = runID + ".svg"
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	logger.Info("svg written", "path", path, "instances", len(instances))
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	data, err := st.Export(args[0])
	if err != nil {
		return err
	}
	if outPath == "" {
		return storage.EncodeJSON(os.Stdout, data)
	}
	if err := storage.ExportJSON(outPath, data); err != nil {
		return err
	}
	logger.Info("json written", "path", outPath)
	return nil
}
