package storage

import (
	"encoding/json"
	"os"

	"github.com/san-kum/racepilot/internal/telemetry"
)

type ExportData struct {
	Run     RunMetadata        `json:"run"`
	Samples []telemetry.Sample `json:"samples"`
}

// ExportJSON writes a stored run and its telemetry as one JSON document.
func (s *Store) ExportJSON(runID, path string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	samples, err := s.LoadSamples(runID)
	if err != nil {
		return err
	}

	data := ExportData{Run: *meta, Samples: samples}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
