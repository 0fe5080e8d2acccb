package storage

import (
	"encoding/json"
	"io"
	"os"
)

type TrailPoint struct {
	Position   [3]float64 `json:"position"`
	Quaternion [4]float64 `json:"quaternion"`
}

type ExportData struct {
	Run     RunMetadata  `json:"run"`
	Samples []Sample     `json:"samples"`
	Trail   []TrailPoint `json:"trail"`
}

// Export bundles a stored run into a single document.
func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	samples, err := s.LoadSamples(runID)
	if err != nil {
		return nil, err
	}
	instances, err := s.LoadTrail(runID)
	if err != nil {
		return nil, err
	}

	data := &ExportData{Run: *meta, Samples: samples, Trail: make([]TrailPoint, len(instances))}
	for i, in := range instances {
		q := in.Quaternion
		data.Trail[i] = TrailPoint{
			Position:   in.Position,
			Quaternion: [4]float64{q.W, q.V[0], q.V[1], q.V[2]},
		}
	}
	return data, nil
}

func ExportJSON(path string, data *ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return EncodeJSON(file, data)
}

func EncodeJSON(w io.Writer, data *ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
