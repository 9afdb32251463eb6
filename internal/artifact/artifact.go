// internal/artifact/artifact.go
// Package artifact reads and writes the tabular benchmark results file.
package artifact

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultResultsDir is where bare relative artifact paths are placed.
const DefaultResultsDir = "results"

// Header lists the artifact columns in order.
var Header = []string{
	"timestamp",
	"run",
	"mode",
	"model",
	"max_tokens",
	"temperature",
	"latency_seconds",
	"estimated_new_tokens",
	"estimated_tokens_per_second",
	"load_seconds",
}

var (
	// ErrNotFound reports an artifact path that does not exist.
	ErrNotFound = errors.New("artifact not found")
	// ErrMalformed reports an artifact that exists but cannot be used.
	ErrMalformed = errors.New("artifact malformed")
)

// Row is one benchmark run in the artifact.
type Row struct {
	Timestamp       time.Time
	Run             int
	Mode            string
	Model           string
	MaxTokens       int
	Temperature     float64
	LatencySeconds  float64
	EstimatedTokens int
	TokensPerSecond float64
	LoadSeconds     float64
}

// EnsurePath places bare relative paths under the results directory. Absolute
// paths and paths that already name a results component pass through unchanged.
func EnsurePath(path string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		return path
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == DefaultResultsDir {
			return path
		}
	}
	return filepath.Join(DefaultResultsDir, path)
}

// Write creates the artifact at path, making parent directories as needed, and
// returns the resolved path it wrote. Rows are written atomically from the
// caller's view: an error means no usable artifact was produced.
func Write(path string, rows []Row) (string, error) {
	if len(rows) == 0 {
		return "", fmt.Errorf("no rows to write")
	}

	resolved := EnsurePath(path)
	if dir := filepath.Dir(resolved); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create results directory: %w", err)
		}
	}

	file, err := os.Create(resolved)
	if err != nil {
		return "", fmt.Errorf("create artifact: %w", err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(Header); err != nil {
		file.Close()
		return "", err
	}
	for _, row := range rows {
		if err := writer.Write(row.record()); err != nil {
			file.Close()
			return "", err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", err
	}
	return resolved, nil
}

func (r Row) record() []string {
	return []string{
		r.Timestamp.UTC().Format(time.RFC3339),
		strconv.Itoa(r.Run),
		r.Mode,
		r.Model,
		strconv.Itoa(r.MaxTokens),
		formatFloat(r.Temperature),
		formatFloat(r.LatencySeconds),
		strconv.Itoa(r.EstimatedTokens),
		formatFloat(r.TokensPerSecond),
		formatFloat(r.LoadSeconds),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// Read loads the artifact at path. Absent files report ErrNotFound and files
// without a usable header or any parsable row report ErrMalformed. Individual
// rows that fail to parse are skipped so one corrupt line does not discard an
// otherwise good artifact.
func Read(path string) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrMalformed, path)
	}

	columns, err := columnIndex(records[0])
	if err != nil {
		return nil, err
	}

	var rows []Row
	for _, record := range records[1:] {
		row, ok := parseRecord(record, columns)
		if !ok {
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no usable rows in %s", ErrMalformed, path)
	}
	return rows, nil
}

// columnIndex maps header names to positions. Only the columns the renderer
// actually needs are required, so artifacts from older runs still read.
func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"run", "latency_seconds", "estimated_tokens_per_second"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %s", ErrMalformed, required)
		}
	}
	return index, nil
}

func parseRecord(record []string, columns map[string]int) (Row, bool) {
	field := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	run, err := strconv.Atoi(field("run"))
	if err != nil {
		return Row{}, false
	}
	latency, err := strconv.ParseFloat(field("latency_seconds"), 64)
	if err != nil {
		return Row{}, false
	}
	tokensPerSecond, err := strconv.ParseFloat(field("estimated_tokens_per_second"), 64)
	if err != nil {
		return Row{}, false
	}

	row := Row{
		Run:             run,
		Mode:            field("mode"),
		Model:           field("model"),
		LatencySeconds:  latency,
		TokensPerSecond: tokensPerSecond,
	}
	if ts, err := time.Parse(time.RFC3339, field("timestamp")); err == nil {
		row.Timestamp = ts
	}
	if v, err := strconv.Atoi(field("max_tokens")); err == nil {
		row.MaxTokens = v
	}
	if v, err := strconv.ParseFloat(field("temperature"), 64); err == nil {
		row.Temperature = v
	}
	if v, err := strconv.Atoi(field("estimated_new_tokens")); err == nil {
		row.EstimatedTokens = v
	}
	if v, err := strconv.ParseFloat(field("load_seconds"), 64); err == nil {
		row.LoadSeconds = v
	}
	return row, true
}
