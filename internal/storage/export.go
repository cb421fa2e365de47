package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/nvasani/holonsim/internal/sim"
)

// Series is the per-tick trace of a run as read back from series.csv.
// Field names mirror sim.Result.
type Series struct {
	Steps       []int
	Times       []float64
	Kinetics    []float64
	Potentials  []float64
	Energies    []float64
	Populations []int
	NodeCounts  []int
	Coherences  []float64
	Merges      []int
}

var seriesHeader = []string{
	"step", "time", "kinetic", "potential", "total",
	"particles", "nodes", "coherence", "merges",
}

// ExportCSV writes the run series in the on-disk column order.
func ExportCSV(w io.Writer, result *sim.Result) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(seriesHeader); err != nil {
		return err
	}

	for i := range result.Times {
		row := []string{
			strconv.Itoa(result.Steps[i]),
			strconv.FormatFloat(result.Times[i], 'f', 6, 64),
			strconv.FormatFloat(result.Kinetics[i], 'f', 6, 64),
			strconv.FormatFloat(result.Potentials[i], 'f', 6, 64),
			strconv.FormatFloat(result.Energies[i], 'f', 6, 64),
			strconv.Itoa(result.Populations[i]),
			strconv.Itoa(result.NodeCounts[i]),
			strconv.FormatFloat(result.Coherences[i], 'f', 6, 64),
			strconv.Itoa(result.Merges[i]),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func (s *Store) LoadSeries(runID string) (*Series, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "series.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	series := &Series{}
	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) < len(seriesHeader) {
			continue
		}

		step, err := strconv.Atoi(record[0])
		if err != nil {
			continue
		}
		t, _ := strconv.ParseFloat(record[1], 64)
		kinetic, _ := strconv.ParseFloat(record[2], 64)
		potential, _ := strconv.ParseFloat(record[3], 64)
		total, _ := strconv.ParseFloat(record[4], 64)
		population, _ := strconv.Atoi(record[5])
		nodes, _ := strconv.Atoi(record[6])
		coherence, _ := strconv.ParseFloat(record[7], 64)
		merges, _ := strconv.Atoi(record[8])

		series.Steps = append(series.Steps, step)
		series.Times = append(series.Times, t)
		series.Kinetics = append(series.Kinetics, kinetic)
		series.Potentials = append(series.Potentials, potential)
		series.Energies = append(series.Energies, total)
		series.Populations = append(series.Populations, population)
		series.NodeCounts = append(series.NodeCounts, nodes)
		series.Coherences = append(series.Coherences, coherence)
		series.Merges = append(series.Merges, merges)
	}

	return series, nil
}

// ExportData is the flat JSON interchange form of a whole run.
type ExportData struct {
	Scenario    string             `json:"scenario"`
	Stepper     string             `json:"stepper"`
	Dt          float64            `json:"dt"`
	Steps       int                `json:"steps"`
	Times       []float64          `json:"times"`
	Kinetics    []float64          `json:"kinetics"`
	Potentials  []float64          `json:"potentials"`
	Energies    []float64          `json:"energies"`
	Populations []int              `json:"populations"`
	NodeCounts  []int              `json:"node_counts"`
	Coherences  []float64          `json:"coherences"`
	Merges      []int              `json:"merges"`
	EnergyDrift float64            `json:"energy_drift"`
	Metrics     map[string]float64 `json:"metrics"`
}

// ExportJSON writes the whole run to w, indented for readability.
func ExportJSON(w io.Writer, scenario, stepper string, dt float64, result *sim.Result) error {
	data := ExportData{
		Scenario:    scenario,
		Stepper:     stepper,
		Dt:          dt,
		Steps:       result.StepsTaken,
		Times:       result.Times,
		Kinetics:    result.Kinetics,
		Potentials:  result.Potentials,
		Energies:    result.Energies,
		Populations: result.Populations,
		NodeCounts:  result.NodeCounts,
		Coherences:  result.Coherences,
		Merges:      result.Merges,
		EnergyDrift: result.EnergyDrift,
		Metrics:     result.Metrics,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
