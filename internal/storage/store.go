package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/racepilot/internal/telemetry"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type CarSummary struct {
	Name       string             `json:"name"`
	Controller string             `json:"controller"`
	Laps       int                `json:"laps"`
	FinishTick int                `json:"finish_tick"`
	Distance   float64            `json:"distance"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
}

type RunMetadata struct {
	ID         string       `json:"id"`
	Track      string       `json:"track"`
	Controller string       `json:"controller"`
	Timestamp  time.Time    `json:"timestamp"`
	Seed       int64        `json:"seed"`
	Dt         float64      `json:"dt"`
	Laps       int          `json:"laps"`
	Ticks      int          `json:"ticks"`
	Cars       []CarSummary `json:"cars"`
}

var sampleHeader = []string{"tick", "car", "x", "y", "heading", "speed", "steer", "command", "done"}

// Save writes metadata.json and telemetry.csv into a new run directory
// and returns the run id.
func (s *Store) Save(meta RunMetadata, samples []telemetry.Sample) (string, error) {
	meta.ID = uuid.NewString()
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaPath := filepath.Join(runDir, "metadata.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvPath := filepath.Join(runDir, "telemetry.csv")
	csvFile, err := os.Create(csvPath)
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(sampleHeader); err != nil {
		return "", err
	}
	for _, sm := range samples {
		row := []string{
			strconv.Itoa(sm.Tick),
			strconv.Itoa(sm.Car),
			formatFloat(sm.X),
			formatFloat(sm.Y),
			formatFloat(sm.Heading),
			formatFloat(sm.Speed),
			formatFloat(sm.Steer),
			formatFloat(sm.Command),
			strconv.FormatBool(sm.Done),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return meta.ID, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// List returns all readable runs, newest first.
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

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadSamples(runID string) ([]telemetry.Sample, error) {
	csvPath := filepath.Join(s.baseDir, runID, "telemetry.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(sampleHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return []telemetry.Sample{}, nil
	}

	samples := make([]telemetry.Sample, 0, len(records)-1)
	for i, record := range records[1:] {
		sm, err := parseSample(record)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", csvPath, i+2, err)
		}
		samples = append(samples, sm)
	}

	return samples, nil
}

func parseSample(record []string) (telemetry.Sample, error) {
	var sm telemetry.Sample
	var err error
	if sm.Tick, err = strconv.Atoi(record[0]); err != nil {
		return sm, err
	}
	if sm.Car, err = strconv.Atoi(record[1]); err != nil {
		return sm, err
	}
	floats := []*float64{&sm.X, &sm.Y, &sm.Heading, &sm.Speed, &sm.Steer, &sm.Command}
	for j, dst := range floats {
		if *dst, err = strconv.ParseFloat(record[2+j], 64); err != nil {
			return sm, err
		}
	}
	sm.Done, err = strconv.ParseBool(record[8])
	return sm, err
}
