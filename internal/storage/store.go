package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/san-kum/afterimage/internal/trail"
)

var ErrUnknownRun = errors.New("storage: unknown run")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

// Sample is one recorded frame.
type Sample struct {
	Frame         int
	Time          float64
	KineticEnergy float64
	Visible       int
	State         string
}

// Result is everything a run produced.
type Result struct {
	Samples []Sample
	Trail   []trail.Instance
	Metrics map[string]float64
}

type RunMetadata struct {
	ID             string             `json:"id"`
	Preset         string             `json:"preset"`
	Script         string             `json:"script"`
	Timestamp      time.Time          `json:"timestamp"`
	Seed           int64              `json:"seed"`
	FixedDelta     float64            `json:"fixed_delta"`
	Frames         int                `json:"frames"`
	Duration       float64            `json:"duration"`
	Blocks         int                `json:"blocks"`
	StepsPerObject int                `json:"steps_per_object"`
	Metrics        map[string]float64 `json:"metrics"`
}

// NewRunID returns "<preset>_<first 8 hex digits of a random UUID>".
func NewRunID(preset string) string {
	if preset == "" {
		preset = "run"
	}
	return fmt.Sprintf("%s_%s", preset, uuid.NewString()[:8])
}

// Save writes a run directory and returns its ID. meta.ID, Timestamp,
// Frames and Metrics are filled in from the result.
func (s *Store) Save(meta RunMetadata, result *Result) (string, error) {
	meta.ID = NewRunID(meta.Preset)
	meta.Timestamp = time.Now()
	meta.Frames = len(result.Samples)
	meta.Metrics = result.Metrics
	if n := len(result.Samples); n > 0 {
		meta.Duration = result.Samples[n-1].Time
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(runDir, "samples.csv"), sampleRows(result.Samples)); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(runDir, "trail.csv"), trailRows(result.Trail)); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", runID, ErrUnknownRun)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadSamples(runID string) ([]Sample, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, "samples.csv"))
	if err != nil {
		return nil, err
	}

	samples := make([]Sample, 0, len(records))
	for _, record := range records {
		if len(record) < 5 {
			continue
		}
		frame, err := strconv.Atoi(record[0])
		if err != nil {
			continue
		}
		visible, _ := strconv.Atoi(record[3])
		samples = append(samples, Sample{
			Frame:         frame,
			Time:          parseFloat(record[1]),
			KineticEnergy: parseFloat(record[2]),
			Visible:       visible,
			State:         record[4],
		})
	}
	return samples, nil
}

func (s *Store) LoadTrail(runID string) ([]trail.Instance, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, "trail.csv"))
	if err != nil {
		return nil, err
	}

	out := make([]trail.Instance, 0, len(records))
	for _, record := range records {
		if len(record) < 7 {
			continue
		}
		var v [7]float64
		for i := range v {
			v[i] = parseFloat(record[i])
		}
		out = append(out, trail.Instance{
			Position:   mgl64.Vec3{v[0], v[1], v[2]},
			Quaternion: mgl64.Quat{W: v[3], V: mgl64.Vec3{v[4], v[5], v[6]}},
		})
	}
	return out, nil
}

func sampleRows(samples []Sample) [][]string {
	rows := [][]string{{"frame", "time", "kinetic_energy", "visible", "state"}}
	for _, s := range samples {
		rows = append(rows, []string{
			strconv.Itoa(s.Frame),
			formatFloat(s.Time),
			formatFloat(s.KineticEnergy),
			strconv.Itoa(s.Visible),
			s.State,
		})
	}
	return rows
}

func trailRows(instances []trail.Instance) [][]string {
	rows := [][]string{{"x", "y", "z", "qw", "qx", "qy", "qz"}}
	for _, in := range instances {
		p, q := in.Position, in.Quaternion
		rows = append(rows, []string{
			formatFloat(p[0]), formatFloat(p[1]), formatFloat(p[2]),
			formatFloat(q.W), formatFloat(q.V[0]), formatFloat(q.V[1]), formatFloat(q.V[2]),
		})
	}
	return rows
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return w.Error()
}

// readCSV returns the records after the header row.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return [][]string{}, nil
	}
	return records[1:], nil
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
