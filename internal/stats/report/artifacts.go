package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"fuzzevo/internal/model"
)

// RunArtifacts is everything recorded about a run, ready to be written out as
// plain files.
type RunArtifacts struct {
	Run       model.Run
	Trials    []model.Trial
	Histories [][]float64
	// Diagnostics is keyed by trial index.
	Diagnostics map[int][]model.GenerationDiagnostics
}

// WriteRunArtifacts writes run.json, trials.json, fitness_history.csv and
// one diagnostics_<trial>.json per trial into baseDir/<run id>.
func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Run.ID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.Run.ID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "run.json"), artifacts.Run); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "trials.json"), artifacts.Trials); err != nil {
		return "", err
	}
	if err := writeFile(filepath.Join(runDir, "fitness_history.csv"), func(w io.Writer) error {
		return WriteFitnessHistoryCSV(w, artifacts.Histories)
	}); err != nil {
		return "", err
	}

	trials := make([]int, 0, len(artifacts.Diagnostics))
	for trial := range artifacts.Diagnostics {
		trials = append(trials, trial)
	}
	sort.Ints(trials)
	for _, trial := range trials {
		name := fmt.Sprintf("diagnostics_%d.json", trial)
		if err := writeJSON(filepath.Join(runDir, name), artifacts.Diagnostics[trial]); err != nil {
			return "", err
		}
	}
	return runDir, nil
}

// WriteFitnessHistoryCSV writes one row per generation and one best-fitness
// column per trial. Trials that stopped early leave their later cells empty.
func WriteFitnessHistoryCSV(w io.Writer, histories [][]float64) error {
	writer := csv.NewWriter(w)
	header := make([]string, 0, len(histories)+1)
	header = append(header, "generation")
	longest := 0
	for i, h := range histories {
		header = append(header, "trial_"+strconv.Itoa(i))
		longest = max(longest, len(h))
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for g := 0; g < longest; g++ {
		row[0] = strconv.Itoa(g)
		for i, h := range histories {
			row[i+1] = ""
			if g < len(h) {
				row[i+1] = strconv.FormatFloat(h[g], 'f', -1, 64)
			}
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadFitnessHistoryCSV parses the output of WriteFitnessHistoryCSV.
func ReadFitnessHistoryCSV(r io.Reader) ([][]float64, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	if len(header) < 1 || header[0] != "generation" {
		return nil, fmt.Errorf("fitness history header must start with generation")
	}

	histories := make([][]float64, len(header)-1)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		for i, cell := range record[1:] {
			if cell == "" {
				continue
			}
			value, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("trial %d: %w", i, err)
			}
			histories[i] = append(histories[i], value)
		}
	}
	return histories, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func writeFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
