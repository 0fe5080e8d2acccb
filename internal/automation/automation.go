// Package automation drives a playground headlessly from YAML gesture scripts.
package automation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/afterimage/internal/config"
	"github.com/san-kum/afterimage/internal/dynamo"
	"github.com/san-kum/afterimage/internal/input"
	"github.com/san-kum/afterimage/internal/metrics"
	"github.com/san-kum/afterimage/internal/scene"
	"github.com/san-kum/afterimage/internal/storage"
)

var (
	ErrNoSteps       = errors.New("automation: script has no steps")
	ErrUnknownAction = errors.New("automation: unknown action")
)

const (
	ActionDown   = "down"
	ActionMove   = "move"
	ActionUp     = "up"
	ActionHold   = "hold"
	ActionReset  = "reset"
	ActionPause  = "pause"
	ActionResume = "resume"
)

// Script is a named sequence of pointer gestures.
type Script struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Preset      string  `yaml:"preset"`
	FrameDelta  float64 `yaml:"frame_delta"`
	Steps       []Step  `yaml:"steps"`
}

// Step is one gesture. X and Y are in NDC. Frames is how many frames run
// after the gesture; a move spreads its path over those frames.
type Step struct {
	Action string  `yaml:"action"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Frames int     `yaml:"frames"`
	Seed   int64   `yaml:"seed"`
}

func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScript(data)
}

func ParseScript(data []byte) (*Script, error) {
	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("automation: parse script: %w", err)
	}
	if err := script.Validate(); err != nil {
		return nil, err
	}
	return &script, nil
}

func (s *Script) Validate() error {
	if len(s.Steps) == 0 {
		return ErrNoSteps
	}
	for i, step := range s.Steps {
		switch step.Action {
		case ActionDown, ActionMove, ActionUp, ActionHold, ActionReset, ActionPause, ActionResume:
		default:
			return fmt.Errorf("step %d: %q: %w", i+1, step.Action, ErrUnknownAction)
		}
		if step.Frames < 0 {
			return fmt.Errorf("step %d: negative frame count", i+1)
		}
	}
	return nil
}

// TotalFrames is the number of frames Run will execute.
func (s *Script) TotalFrames() int {
	n := 0
	for _, step := range s.Steps {
		n += step.frames()
	}
	return n
}

func (st Step) frames() int {
	if st.Frames > 0 {
		return st.Frames
	}
	if st.Action == ActionHold {
		return 0
	}
	return 1
}

// Run plays script against pg, observing the world after every frame.
// On cancellation it returns the partial result with the context error.
func Run(ctx context.Context, pg *scene.Playground, script *Script, observers []dynamo.Metric) (*storage.Result, error) {
	delta := script.FrameDelta
	if delta <= 0 {
		delta = pg.Config.Frame.FixedDelta
	}

	r := &runner{pg: pg, observers: observers, delta: delta}
	r.result.Samples = make([]storage.Sample, 0, script.TotalFrames())

	for i, step := range script.Steps {
		if err := r.play(ctx, step); err != nil {
			r.finish()
			return &r.result, fmt.Errorf("step %d (%s): %w", i+1, step.Action, err)
		}
	}
	r.finish()
	return &r.result, nil
}

type runner struct {
	pg        *scene.Playground
	observers []dynamo.Metric
	delta     float64
	x, y      float64
	result    storage.Result
}

func (r *runner) play(ctx context.Context, step Step) error {
	n := step.frames()
	switch step.Action {
	case ActionDown, ActionUp:
		r.x, r.y = step.X, step.Y
		r.post(kindOf(step.Action))
	case ActionMove:
		x0, y0 := r.x, r.y
		for f := 1; f <= n; f++ {
			a := float64(f) / float64(n)
			r.x, r.y = x0+(step.X-x0)*a, y0+(step.Y-y0)*a
			r.post(input.Move)
			if err := r.frame(ctx); err != nil {
				return err
			}
		}
		return nil
	case ActionReset:
		r.pg.Reset(step.Seed)
	case ActionPause:
		r.pg.Driver.SetAnimationActive(false)
	case ActionResume:
		r.pg.Driver.SetAnimationActive(true)
	}

	for f := 0; f < n; f++ {
		if err := r.frame(ctx); err != nil {
			return err
		}
	}
	return nil
}

func kindOf(action string) input.Kind {
	if action == ActionDown {
		return input.Down
	}
	return input.Up
}

func (r *runner) post(kind input.Kind) {
	t := r.pg.Tracker
	r.pg.Pointer(kind, (r.x+1)/2*t.Width, (1-r.y)/2*t.Height, true, nil)
}

func (r *runner) frame(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := r.pg.Frame(r.delta); err != nil {
		return err
	}
	for _, m := range r.observers {
		m.Observe(r.pg.World)
	}
	r.result.Samples = append(r.result.Samples, storage.Sample{
		Frame:         r.pg.Driver.Frames() - 1,
		Time:          r.pg.Driver.Elapsed(),
		KineticEnergy: r.pg.KineticEnergy(),
		Visible:       r.pg.Trail.VisibleCount(),
		State:         r.pg.Picker.State().String(),
	})
	return nil
}

func (r *runner) finish() {
	r.result.Trail = r.pg.Trail.Ordered()
	r.result.Metrics = make(map[string]float64, len(r.observers))
	for _, m := range r.observers {
		r.result.Metrics[m.Name()] = m.Value()
	}
}

// SeedResult summarises one trial of RunSeeds.
type SeedResult struct {
	Seed      int64
	Metrics   map[string]float64
	Stable    bool
	FinalTime float64
}

// RunSeeds replays script on a fresh playground per seed, one goroutine per
// seed. A trial is stable when no body left the container. Results keep the
// order of seeds. Replays are headless, so opts.Cursor is not used.
func RunSeeds(ctx context.Context, cfg *config.Config, opts scene.Options, script *Script, seeds []int64) ([]SeedResult, error) {
	results := make([]SeedResult, len(seeds))
	errs := make([]error, len(seeds))

	var wg sync.WaitGroup
	for i, seed := range seeds {
		wg.Add(1)
		go func(idx int, seed int64) {
			defer wg.Done()
			results[idx], errs[idx] = runSeed(ctx, cfg, opts, script, seed)
		}(i, seed)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return results, nil
}

func runSeed(ctx context.Context, cfg *config.Config, opts scene.Options, script *Script, seed int64) (SeedResult, error) {
	c := cfg.Clone()
	c.Seed = seed
	opts.Cursor = nil
	pg, err := scene.New(c, opts)
	if err != nil {
		return SeedResult{}, fmt.Errorf("seed %d: %w", seed, err)
	}
	defer pg.Close()

	res, err := Run(ctx, pg, script, metrics.Standard(pg.Trail, c.Container.HalfWidth))
	if err != nil {
		return SeedResult{}, fmt.Errorf("seed %d: %w", seed, err)
	}

	sr := SeedResult{Seed: seed, Metrics: res.Metrics, Stable: res.Metrics["stability"] == 1}
	if n := len(res.Samples); n > 0 {
		sr.FinalTime = res.Samples[n-1].Time
	}
	return sr, nil
}

// StableCount counts the stable and unstable trials.
func StableCount(results []SeedResult) (stable, unstable int) {
	for _, r := range results {
		if r.Stable {
			stable++
		} else {
			unstable++
		}
	}
	return
}
