// internal/report/report.go
// Package report renders benchmark artifacts as a standalone HTML dashboard.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"path/filepath"
	"strings"

	"github.com/mwiater/golmbench/internal/artifact"
)

// DefaultTitle is the dashboard title.
const DefaultTitle = "golmbench: LLM Benchmark Report"

// ReportData is the view model handed to the dashboard template.
type ReportData struct {
	Title          string
	BenchmarksJSON template.JS
}

// ReportBenchmark condenses one artifact into the shape the dashboard consumes.
type ReportBenchmark struct {
	Label           string      `json:"label"`
	Model           string      `json:"model"`
	Mode            string      `json:"mode"`
	MaxTokens       int         `json:"max_tokens"`
	Temperature     float64     `json:"temperature"`
	LoadSeconds     float64     `json:"load_seconds"`
	Runs            []ReportRun `json:"runs"`
	LatencyMean     float64     `json:"latency_mean"`
	LatencyMin      float64     `json:"latency_min"`
	LatencyMax      float64     `json:"latency_max"`
	TokensPerSecAvg float64     `json:"tokens_per_second_avg"`
}

// ReportRun is a single benchmark run inside a ReportBenchmark.
type ReportRun struct {
	Run             int     `json:"run"`
	LatencySeconds  float64 `json:"latency_seconds"`
	EstimatedTokens int     `json:"estimated_tokens"`
	TokensPerSecond float64 `json:"tokens_per_second"`
}

// Load reads and condenses each artifact path in order. Any missing or
// malformed artifact aborts the whole report.
func Load(paths []string) ([]ReportBenchmark, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no input artifacts provided")
	}

	benchmarks := make([]ReportBenchmark, 0, len(paths))
	for _, path := range paths {
		rows, err := artifact.Read(path)
		if err != nil {
			return nil, err
		}
		benchmarks = append(benchmarks, condense(path, rows))
	}
	return benchmarks, nil
}

// Generate renders the standalone HTML dashboard for the given benchmarks.
func Generate(benchmarks []ReportBenchmark) (string, error) {
	payload, err := json.Marshal(benchmarks)
	if err != nil {
		return "", err
	}

	viewModel := ReportData{
		Title:          DefaultTitle,
		BenchmarksJSON: template.JS(payload),
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, viewModel); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// condense folds artifact rows into a single dashboard entry. Mode, model,
// and load time are uniform across rows of one artifact, so they come from
// the first row.
func condense(path string, rows []artifact.Row) ReportBenchmark {
	bench := ReportBenchmark{
		Label:       strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Model:       rows[0].Model,
		Mode:        rows[0].Mode,
		MaxTokens:   rows[0].MaxTokens,
		Temperature: rows[0].Temperature,
		LoadSeconds: rows[0].LoadSeconds,
		Runs:        make([]ReportRun, 0, len(rows)),
	}

	var latencySum, tpsSum float64
	for i, row := range rows {
		bench.Runs = append(bench.Runs, ReportRun{
			Run:             row.Run,
			LatencySeconds:  row.LatencySeconds,
			EstimatedTokens: row.EstimatedTokens,
			TokensPerSecond: row.TokensPerSecond,
		})
		latencySum += row.LatencySeconds
		tpsSum += row.TokensPerSecond
		if i == 0 || row.LatencySeconds < bench.LatencyMin {
			bench.LatencyMin = row.LatencySeconds
		}
		if i == 0 || row.LatencySeconds > bench.LatencyMax {
			bench.LatencyMax = row.LatencySeconds
		}
	}
	bench.LatencyMean = latencySum / float64(len(rows))
	bench.TokensPerSecAvg = tpsSum / float64(len(rows))
	return bench
}

var reportTemplate = template.Must(template.New("benchmark-report").Parse(reportTemplateHTML))

const reportTemplateHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{ .Title }}</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/css/bootstrap.min.css">
  <style>
    :root {
      --primary: #334155;
      --secondary: #64748B;
      --accent: #3B82F6;
      --light: #F1F5F9;
      --background: #FFFFFF;
      --text: #0F172A;
      --border: #E2E8F0;
    }
    body {
      background-color: var(--light);
      color: var(--text);
    }
    .navbar-dark {
      background-color: var(--primary) !important;
    }
    .card {
      border: 1px solid var(--border);
      background-color: var(--background);
    }
    .metric-label {
      color: var(--secondary);
      font-size: 0.85rem;
      text-transform: uppercase;
    }
    .metric-value {
      font-size: 1.4rem;
      font-weight: 700;
    }
    .chart-card {
      background: var(--background);
      border-radius: 16px;
      padding: 1.5rem;
      box-shadow: 0 1px 3px rgba(15, 23, 42, 0.1);
      border: 1px solid var(--border);
    }
    .chart-title {
      font-size: 1.5rem;
      font-weight: 700;
      color: var(--text);
      margin-bottom: 0.25rem;
    }
    .chart-subtitle {
      color: var(--secondary);
      margin-bottom: 1.5rem;
    }
    .chart-canvas {
      position: relative;
      height: 360px;
    }
    .badge.bg-primary {
      background-color: var(--accent) !important;
    }
  </style>
</head>
<body>
  <nav class="navbar navbar-dark bg-dark">
    <div class="container-fluid">
      <span class="navbar-brand mb-0 h1">{{ .Title }}</span>
      <span class="text-light">Generated: <span id="generatedAt">-</span></span>
    </div>
  </nav>
  <main class="container-fluid my-4">
    <div id="summaryCards" class="row g-3"></div>

    <section class="mt-4">
      <div class="card shadow-sm chart-card">
        <div class="card-body">
          <div class="chart-title">Latency by Run</div>
          <div class="chart-subtitle">Per-run generation latency. Lower is better.</div>
          <div class="chart-canvas">
            <canvas id="latencyChart" aria-label="Latency chart" role="img"></canvas>
          </div>
        </div>
      </div>
    </section>

    <section class="mt-4">
      <div class="card shadow-sm chart-card">
        <div class="card-body">
          <div class="chart-title">Estimated Throughput by Run</div>
          <div class="chart-subtitle">Estimated new tokens per second. Higher is better.</div>
          <div class="chart-canvas">
            <canvas id="throughputChart" aria-label="Throughput chart" role="img"></canvas>
          </div>
        </div>
      </div>
    </section>

    <section class="mt-4">
      <div class="card shadow-sm">
        <div class="card-header bg-white">
          <h5 class="mb-0">Run Details</h5>
        </div>
        <div class="card-body">
          <div class="table-responsive">
            <table class="table table-striped table-hover table-bordered table-sm" id="runsTable">
              <thead class="table-light">
                <tr>
                  <th>Benchmark</th>
                  <th>Model</th>
                  <th>Mode</th>
                  <th>Run</th>
                  <th>Latency (s)</th>
                  <th>Est. tokens</th>
                  <th>Est. tokens/sec</th>
                </tr>
              </thead>
              <tbody></tbody>
            </table>
          </div>
        </div>
      </div>
    </section>
  </main>

  <script src="https://code.jquery.com/jquery-3.7.1.min.js"></script>
  <script src="https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/js/bootstrap.bundle.min.js"></script>
  <script src="https://cdn.jsdelivr.net/npm/chart.js@4.4.2/dist/chart.umd.min.js"></script>
  <script>
    var benchmarks = {{ .BenchmarksJSON }};
  </script>
  <script>
    (function($) {
      var palette = [
        '#3B82F6', '#10B981', '#F59E0B', '#64748B', '#0EA5E9',
        '#8B5CF6', '#EF4444', '#14B8A6', '#334155', '#94A3B8'
      ];

      function formatNumber(value, decimals) {
        if (value === null || value === undefined || isNaN(value)) {
          return '-';
        }
        return Number(value).toFixed(decimals);
      }

      function buildSummaryCards(entries) {
        var $container = $('#summaryCards').empty();
        entries.forEach(function(bench) {
          var col = $('<div class="col-sm-6 col-xl-3"></div>');
          var card = $('<div class="card shadow-sm h-100"></div>');
          var body = $('<div class="card-body"></div>');
          body.append('<h5 class="card-title">' + (bench.model || bench.label) + ' <span class="badge bg-primary">' + (bench.mode || '-') + '</span></h5>');
          body.append('<div class="metric-label">Runs</div><div class="metric-value">' + bench.runs.length + '</div>');
          body.append('<div class="metric-label">Mean latency</div><div class="metric-value">' + formatNumber(bench.latency_mean, 3) + ' s</div>');
          body.append('<div class="metric-label">Avg est. tokens/sec</div><div class="metric-value">' + formatNumber(bench.tokens_per_second_avg, 1) + '</div>');
          body.append('<div class="metric-label">Model load</div><div class="metric-value">' + formatNumber(bench.load_seconds, 2) + ' s</div>');
          card.append(body);
          col.append(card);
          $container.append(col);
        });
      }

      function buildLineChart(canvasId, entries, pick, yLabel) {
        var canvas = document.getElementById(canvasId);
        if (!canvas) {
          return;
        }
        var datasets = entries.map(function(bench, index) {
          return {
            label: bench.model || bench.label,
            data: bench.runs.map(function(run) {
              return { x: run.run, y: pick(run) };
            }),
            borderColor: palette[index % palette.length],
            backgroundColor: palette[index % palette.length],
            tension: 0,
            pointRadius: 4
          };
        });
        new Chart(canvas, {
          type: 'line',
          data: { datasets: datasets },
          options: {
            responsive: true,
            maintainAspectRatio: false,
            animation: false,
            scales: {
              x: {
                type: 'linear',
                title: { display: true, text: 'Run', color: '#64748B' },
                ticks: { stepSize: 1, color: '#64748B' },
                grid: { color: 'rgba(0, 0, 0, 0.05)' }
              },
              y: {
                title: { display: true, text: yLabel, color: '#64748B' },
                ticks: { color: '#64748B' },
                grid: { color: 'rgba(0, 0, 0, 0.05)' }
              }
            },
            plugins: {
              legend: { position: 'bottom', labels: { color: '#64748B' } }
            }
          }
        });
      }

      function buildTable(entries) {
        var $tbody = $('#runsTable tbody').empty();
        entries.forEach(function(bench) {
          bench.runs.forEach(function(run) {
            var $row = $('<tr></tr>');
            $row.append($('<td></td>').text(bench.label));
            $row.append($('<td></td>').text(bench.model || '-'));
            $row.append($('<td></td>').text(bench.mode || '-'));
            $row.append($('<td></td>').text(run.run));
            $row.append($('<td></td>').text(formatNumber(run.latency_seconds, 6)));
            $row.append($('<td></td>').text(run.estimated_tokens));
            $row.append($('<td></td>').text(formatNumber(run.tokens_per_second, 2)));
            $tbody.append($row);
          });
        });
      }

      $(function() {
        if (!benchmarks || !benchmarks.length) {
          return;
        }
        $('#generatedAt').text(new Date().toLocaleString());
        buildSummaryCards(benchmarks);
        buildLineChart('latencyChart', benchmarks, function(run) { return run.latency_seconds; }, 'Latency (s)');
        buildLineChart('throughputChart', benchmarks, function(run) { return run.tokens_per_second; }, 'Est. tokens/sec');
        buildTable(benchmarks);
      });
    })(jQuery);
  </script>
</body>
</html>
`
