// internal/artifact/artifact_test.go
package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func sampleRows() []Row {
	ts := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)
	return []Row{
		{Timestamp: ts, Run: 1, Mode: "real", Model: "llama3.2:3b", MaxTokens: 32, Temperature: 0.2, LatencySeconds: 0.1, EstimatedTokens: 32, TokensPerSecond: 320, LoadSeconds: 1.5},
		{Timestamp: ts, Run: 2, Mode: "real", Model: "llama3.2:3b", MaxTokens: 32, Temperature: 0.2, LatencySeconds: 0.12, EstimatedTokens: 32, TokensPerSecond: 266.666667, LoadSeconds: 1.5},
	}
}

// TestWriteReadRoundTrip verifies that rows written by Write come back intact
// through Read.
func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results", "bench.csv")

	resolved, err := Write(path, sampleRows())
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if resolved != path {
		t.Fatalf("expected resolved path %q, got %q", path, resolved)
	}

	rows, err := Read(resolved)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	first := rows[0]
	if first.Run != 1 || first.Mode != "real" || first.Model != "llama3.2:3b" {
		t.Fatalf("unexpected first row: %+v", first)
	}
	if first.LatencySeconds != 0.1 || first.TokensPerSecond != 320 || first.LoadSeconds != 1.5 {
		t.Fatalf("unexpected first row metrics: %+v", first)
	}
	if first.MaxTokens != 32 || first.EstimatedTokens != 32 || first.Temperature != 0.2 {
		t.Fatalf("unexpected first row settings: %+v", first)
	}
	if !first.Timestamp.Equal(time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected timestamp: %v", first.Timestamp)
	}
}

// TestWriteFormatsFloats checks the on-disk representation: fixed six decimal
// places and the full header row.
func TestWriteFormatsFloats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results", "bench.csv")

	if _, err := Write(path, sampleRows()); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	content := string(data)
	if !strings.HasPrefix(content, strings.Join(Header, ",")+"\n") {
		t.Fatalf("unexpected header: %q", strings.SplitN(content, "\n", 2)[0])
	}
	if !strings.Contains(content, "0.100000") {
		t.Fatalf("expected six decimal latency, got:\n%s", content)
	}
	if !strings.Contains(content, "266.666667") {
		t.Fatalf("expected six decimal tokens/sec, got:\n%s", content)
	}
}

// TestWritePlacesRelativePathsUnderResults verifies the results-directory
// defaulting for bare relative output paths.
func TestWritePlacesRelativePathsUnderResults(t *testing.T) {
	dir := t.TempDir()
	original, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(original); err != nil {
			t.Fatalf("restore cwd: %v", err)
		}
	})

	resolved, err := Write("latest.csv", sampleRows())
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if resolved != filepath.Join("results", "latest.csv") {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if _, err := os.Stat(filepath.Join(dir, "results", "latest.csv")); err != nil {
		t.Fatalf("expected artifact under results dir: %v", err)
	}
}

func TestEnsurePath(t *testing.T) {
	abs := filepath.Join(string(filepath.Separator), "tmp", "out.csv")
	cases := map[string]struct {
		in   string
		want string
	}{
		"bare name":            {in: "bench.csv", want: filepath.Join("results", "bench.csv")},
		"already under":        {in: filepath.Join("results", "bench.csv"), want: filepath.Join("results", "bench.csv")},
		"nested results":       {in: filepath.Join("data", "results", "bench.csv"), want: filepath.Join("data", "results", "bench.csv")},
		"absolute passthrough": {in: abs, want: abs},
		"empty":                {in: "", want: ""},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := EnsurePath(tc.in); got != tc.want {
				t.Fatalf("EnsurePath(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

// TestReadMissingFile verifies the absent-file error is distinguishable from
// a malformed artifact.
func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.csv"))
	if err == nil {
		t.Fatalf("expected error for missing artifact")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if errors.Is(err, ErrMalformed) {
		t.Fatalf("missing artifact must not report ErrMalformed")
	}
}

// TestReadMalformedHeader verifies a present file with the wrong columns
// reports ErrMalformed.
func TestReadMalformedHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(path, []byte("a,b,c\n1,2,3\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	_, err := Read(path)
	if err == nil {
		t.Fatalf("expected error for malformed artifact")
	}
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

// TestReadSkipsUnparsableRows checks that one corrupt line does not discard
// the rest of the artifact, while an artifact with no parsable rows fails.
func TestReadSkipsUnparsableRows(t *testing.T) {
	dir := t.TempDir()
	header := strings.Join(Header, ",")

	mixed := header + "\n" +
		"2025-11-03T12:00:00Z,1,real,m,32,0.200000,0.100000,32,320.000000,1.500000\n" +
		"2025-11-03T12:00:00Z,not-a-run,real,m,32,0.200000,oops,32,nan?,1.500000\n" +
		"2025-11-03T12:00:00Z,2,real,m,32,0.200000,0.120000,32,266.666667,1.500000\n"
	path := filepath.Join(dir, "mixed.csv")
	if err := os.WriteFile(path, []byte(mixed), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	rows, err := Read(path)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if len(rows) != 2 || rows[0].Run != 1 || rows[1].Run != 2 {
		t.Fatalf("expected rows 1 and 2, got %+v", rows)
	}

	allBad := header + "\n" + "x,y,z,m,32,0.2,bad,32,bad,1.5\n"
	badPath := filepath.Join(dir, "allbad.csv")
	if err := os.WriteFile(badPath, []byte(allBad), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := Read(badPath); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed for artifact with no usable rows, got %v", err)
	}
}

func TestWriteRejectsEmptyRows(t *testing.T) {
	if _, err := Write(filepath.Join(t.TempDir(), "empty.csv"), nil); err == nil {
		t.Fatalf("expected error for empty row set")
	}
}
