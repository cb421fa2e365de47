package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/nvasani/holonsim/internal/holon"
	"github.com/nvasani/holonsim/internal/sim"
)

// Store persists runs under a base directory, one subdirectory per
// run: metadata.json, series.csv and snapshot.json.
type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

// NewWithClock injects the clock used for run ids. Tests use this to
// get stable directory names.
func NewWithClock(baseDir string, now func() time.Time) *Store {
	return &Store{baseDir: baseDir, now: now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Scenario  string             `json:"scenario"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Dt        float64            `json:"dt"`
	Steps     int                `json:"steps"`
	Particles int                `json:"particles"`
	Stepper   string             `json:"stepper"`
	Driver    string             `json:"driver"`
	Metrics   map[string]float64 `json:"metrics"`
}

// RunInfo names the pieces of a run that end up in metadata.
type RunInfo struct {
	Scenario  string
	Stepper   string
	Driver    string
	Seed      int64
	Dt        float64
	Particles int
}

func (s *Store) Save(info RunInfo, result *sim.Result) (string, error) {
	stamp := s.now()
	runID := fmt.Sprintf("%s_%d", info.Scenario, stamp.Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Scenario:  info.Scenario,
		Timestamp: stamp,
		Seed:      info.Seed,
		Dt:        info.Dt,
		Steps:     result.StepsTaken,
		Particles: info.Particles,
		Stepper:   info.Stepper,
		Driver:    info.Driver,
		Metrics:   result.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "series.csv"))
	if err != nil {
		return "", err
	}
	if err := ExportCSV(csvFile, result); err != nil {
		csvFile.Close()
		return "", err
	}
	if err := csvFile.Close(); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "snapshot.json"), toSnapshotData(result.Final)); err != nil {
		return "", err
	}

	return runID, nil
}

func writeJSON(path string, v any) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

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

		meta, err := s.LoadMeta(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	return runs, nil
}

func (s *Store) LoadMeta(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadSnapshot(runID string) (holon.Snapshot, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "snapshot.json"))
	if err != nil {
		return holon.Snapshot{}, err
	}

	var snap snapshotData
	if err := json.Unmarshal(data, &snap); err != nil {
		return holon.Snapshot{}, err
	}
	return fromSnapshotData(snap), nil
}

// Interchange forms for snapshot.json. Vectors flatten to triples so
// the files stay grep-friendly.
type particleData struct {
	ID       string     `json:"id"`
	Position [3]float64 `json:"position"`
	Momentum [3]float64 `json:"momentum"`
	Mass     float64    `json:"mass"`
	Charge   float64    `json:"charge"`
	Level    int        `json:"level"`
	Energy   float64    `json:"energy"`
	Color    string     `json:"color"`
}

type nodeData struct {
	ID         string     `json:"id"`
	Level      int        `json:"level"`
	Position   [3]float64 `json:"position"`
	Children   []string   `json:"children"`
	Parent     string     `json:"parent,omitempty"`
	Activation float64    `json:"activation"`
	Strength   float64    `json:"strength"`
}

type snapshotData struct {
	Step      int            `json:"step"`
	Time      float64        `json:"time"`
	Coherence float64        `json:"coherence"`
	Kinetic   float64        `json:"kinetic"`
	Potential float64        `json:"potential"`
	Total     float64        `json:"total"`
	Particles []particleData `json:"particles"`
	Nodes     []nodeData     `json:"nodes"`
}

func vec3(v r3.Vec) [3]float64 { return [3]float64{v.X, v.Y, v.Z} }

func unvec3(a [3]float64) r3.Vec { return r3.Vec{X: a[0], Y: a[1], Z: a[2]} }

func toSnapshotData(snap holon.Snapshot) snapshotData {
	out := snapshotData{
		Step:      snap.Step,
		Time:      snap.Time,
		Coherence: snap.Coherence,
		Kinetic:   snap.Energy.Kinetic,
		Potential: snap.Energy.Potential,
		Total:     snap.Energy.Total,
		Particles: make([]particleData, len(snap.Particles)),
		Nodes:     make([]nodeData, len(snap.Nodes)),
	}
	for i, p := range snap.Particles {
		out.Particles[i] = particleData{
			ID:       p.ID,
			Position: vec3(p.Position),
			Momentum: vec3(p.Momentum),
			Mass:     p.Mass,
			Charge:   p.Charge,
			Level:    p.Level,
			Energy:   p.Energy,
			Color:    p.Color,
		}
	}
	for i, n := range snap.Nodes {
		out.Nodes[i] = nodeData{
			ID:         n.ID,
			Level:      n.Level,
			Position:   vec3(n.Position),
			Children:   n.Children,
			Parent:     n.Parent,
			Activation: n.Activation,
			Strength:   n.Strength,
		}
	}
	return out
}

func fromSnapshotData(data snapshotData) holon.Snapshot {
	snap := holon.Snapshot{
		Step:      data.Step,
		Time:      data.Time,
		Coherence: data.Coherence,
		Energy: holon.Energy{
			Kinetic:   data.Kinetic,
			Potential: data.Potential,
			Total:     data.Total,
		},
		Particles: make([]holon.Particle, len(data.Particles)),
		Nodes:     make([]holon.Node, len(data.Nodes)),
	}
	for i, p := range data.Particles {
		snap.Particles[i] = holon.Particle{
			ID:       p.ID,
			Position: unvec3(p.Position),
			Momentum: unvec3(p.Momentum),
			Mass:     p.Mass,
			Charge:   p.Charge,
			Level:    p.Level,
			Energy:   p.Energy,
			Color:    p.Color,
		}
	}
	for i, n := range data.Nodes {
		snap.Nodes[i] = holon.Node{
			ID:         n.ID,
			Level:      n.Level,
			Position:   unvec3(n.Position),
			Children:   n.Children,
			Parent:     n.Parent,
			Activation: n.Activation,
			Strength:   n.Strength,
		}
	}
	return snap
}
