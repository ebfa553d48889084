// Package main runs the engine benchmarks and outputs results to JSON/Markdown.
// Run with: go run benchmarks/run_benchmarks.go
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// BenchmarkResults holds all benchmark data
type BenchmarkResults struct {
	Timestamp   string           `json:"timestamp"`
	Environment Environment      `json:"environment"`
	Suites      map[string]Suite `json:"suites"`
	Summary     Summary          `json:"summary"`
}

type Environment struct {
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	CPU       string `json:"cpu"`
	NumCPU    int    `json:"num_cpu"`
	GoVersion string `json:"go_version"`
}

type Suite struct {
	Package    string      `json:"package"`
	Benchmarks []Benchmark `json:"benchmarks"`
	Passed     bool        `json:"passed"`
}

type Benchmark struct {
	Name        string  `json:"name"`
	NsPerOp     float64 `json:"ns_per_op"`
	OpsPerSec   float64 `json:"ops_per_sec"`
	BytesPerOp  int64   `json:"bytes_per_op"`
	AllocsPerOp int64   `json:"allocs_per_op"`
}

type Summary struct {
	MatchLatencyNs      float64 `json:"match_latency_ns"`
	SelectionOpsPerSec  float64 `json:"selection_ops_per_sec"`
	RoundTripOpsPerSec  float64 `json:"round_trip_ops_per_sec"`
	ConcurrentOpsPerSec float64 `json:"concurrent_ops_per_sec"`
}

// suites maps a result name to the package and benchmark pattern it runs.
var suites = []struct {
	name    string
	pkg     string
	pattern string
}{
	{"matching", "./internal/matching/...", "BenchmarkMatch"},
	{"engine", "./pkg/engine/...", "BenchmarkEngine"},
	{"transport", "./pkg/testing/...", "BenchmarkTransport"},
}

func main() {
	fmt.Println("==========================================")
	fmt.Println("   HTTPMOCK BENCHMARK SUITE")
	fmt.Println("==========================================")
	fmt.Println()

	results := BenchmarkResults{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Environment: Environment{
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
			CPU:       getCPUInfo(),
			NumCPU:    runtime.NumCPU(),
			GoVersion: runtime.Version(),
		},
		Suites: make(map[string]Suite),
	}

	for _, s := range suites {
		fmt.Printf("Running %s benchmarks...\n", s.name)
		benches, err := runBenchmarks(s.pkg, s.pattern)
		if err != nil {
			fmt.Printf("  %s failed: %v\n", s.name, err)
		}
		results.Suites[s.name] = Suite{Package: s.pkg, Benchmarks: benches, Passed: err == nil}
	}

	results.Summary = calculateSummary(results.Suites)

	if err := os.MkdirAll("benchmarks/results", 0o755); err != nil {
		fmt.Printf("Error creating results directory: %v\n", err)
		os.Exit(1)
	}

	jsonPath := filepath.Join("benchmarks", "results", "latest.json")
	if err := writeJSON(results, jsonPath); err != nil {
		fmt.Printf("Error writing JSON: %v\n", err)
	}
	fmt.Printf("\nJSON results: %s\n", jsonPath)

	mdPath := filepath.Join("benchmarks", "results", "LATEST.md")
	if err := writeMarkdown(results, mdPath); err != nil {
		fmt.Printf("Error writing Markdown: %v\n", err)
	}
	fmt.Printf("Markdown results: %s\n", mdPath)

	printSummary(results)
}

func getCPUInfo() string {
	if runtime.GOOS != "linux" {
		return "unknown"
	}
	data, err := os.ReadFile("/proc/cpuinfo")
	if err != nil {
		return "unknown"
	}
	for _, line := range strings.Split(string(data), "\n") {
		if name, ok := strings.CutPrefix(line, "model name"); ok {
			if _, v, ok := strings.Cut(name, ":"); ok {
				return strings.TrimSpace(v)
			}
		}
	}
	return "unknown"
}

func runBenchmarks(pkg, pattern string) ([]Benchmark, error) {
	cmd := exec.Command("go", "test", "-run=^$", "-bench="+pattern, "-benchtime=1s", "-benchmem", pkg)
	output, err := cmd.CombinedOutput()
	return parseBenchmarkOutput(string(output)), err
}

// benchLine matches: BenchmarkName-N    iterations    ns/op    bytes/op    allocs/op
var benchLine = regexp.MustCompile(`(Benchmark[\w/]+)-\d+\s+(\d+)\s+([\d.]+)\s+ns/op\s+(\d+)\s+B/op\s+(\d+)\s+allocs/op`)

func parseBenchmarkOutput(output string) []Benchmark {
	var benchmarks []Benchmark
	for _, match := range benchLine.FindAllStringSubmatch(output, -1) {
		nsPerOp, _ := strconv.ParseFloat(match[3], 64)
		bytesPerOp, _ := strconv.ParseInt(match[4], 10, 64)
		allocsPerOp, _ := strconv.ParseInt(match[5], 10, 64)

		opsPerSec := 0.0
		if nsPerOp > 0 {
			opsPerSec = 1e9 / nsPerOp
		}
		benchmarks = append(benchmarks, Benchmark{
			Name:        match[1],
			NsPerOp:     nsPerOp,
			OpsPerSec:   opsPerSec,
			BytesPerOp:  bytesPerOp,
			AllocsPerOp: allocsPerOp,
		})
	}
	return benchmarks
}

func calculateSummary(results map[string]Suite) Summary {
	var summary Summary
	for _, b := range results["matching"].Benchmarks {
		if strings.Contains(b.Name, "MatchURL") {
			summary.MatchLatencyNs = b.NsPerOp
		}
	}
	for _, b := range results["engine"].Benchmarks {
		switch {
		case strings.Contains(b.Name, "Parallel"):
			summary.ConcurrentOpsPerSec = b.OpsPerSec
		case strings.Contains(b.Name, "Handle"):
			summary.SelectionOpsPerSec = b.OpsPerSec
		}
	}
	for _, b := range results["transport"].Benchmarks {
		summary.RoundTripOpsPerSec = b.OpsPerSec
	}
	return summary
}

func writeJSON(results BenchmarkResults, path string) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func writeMarkdown(results BenchmarkResults, path string) error {
	var sb strings.Builder

	sb.WriteString("# httpmock Benchmark Results\n\n")
	fmt.Fprintf(&sb, "**Generated**: %s\n\n", results.Timestamp)
	sb.WriteString("## Environment\n\n")
	fmt.Fprintf(&sb, "- **OS**: %s/%s\n", results.Environment.OS, results.Environment.Arch)
	fmt.Fprintf(&sb, "- **CPU**: %s (%d cores)\n", results.Environment.CPU, results.Environment.NumCPU)
	fmt.Fprintf(&sb, "- **Go**: %s\n\n", results.Environment.GoVersion)

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Measure | Value |\n")
	sb.WriteString("|---------|-------|\n")
	fmt.Fprintf(&sb, "| URL match | %.0f ns |\n", results.Summary.MatchLatencyNs)
	fmt.Fprintf(&sb, "| Entry selection | %.0f req/s |\n", results.Summary.SelectionOpsPerSec)
	fmt.Fprintf(&sb, "| Concurrent selection | %.0f req/s |\n", results.Summary.ConcurrentOpsPerSec)
	fmt.Fprintf(&sb, "| Client round trip | %.0f req/s |\n\n", results.Summary.RoundTripOpsPerSec)

	title := cases.Title(language.English)
	for _, s := range suites {
		suite := results.Suites[s.name]
		fmt.Fprintf(&sb, "## %s (`%s`)\n\n", title.String(s.name), suite.Package)
		sb.WriteString("| Benchmark | ops/sec | ns/op | B/op | allocs/op |\n")
		sb.WriteString("|-----------|---------|-------|------|----------|\n")
		for _, b := range suite.Benchmarks {
			fmt.Fprintf(&sb, "| %s | %.0f | %.0f | %d | %d |\n",
				b.Name, b.OpsPerSec, b.NsPerOp, b.BytesPerOp, b.AllocsPerOp)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Reproducing\n\n")
	sb.WriteString("```bash\n")
	sb.WriteString("go run benchmarks/run_benchmarks.go\n")
	sb.WriteString("# Or individual suites:\n")
	for _, s := range suites {
		fmt.Fprintf(&sb, "go test -run='^$' -bench=%s -benchmem %s\n", s.pattern, s.pkg)
	}
	sb.WriteString("```\n")

	return os.WriteFile(path, []byte(sb.String()), 0o644)
}

func printSummary(results BenchmarkResults) {
	fmt.Println()
	fmt.Println("==========================================")
	fmt.Println("              SUMMARY")
	fmt.Println("==========================================")
	fmt.Printf("URL match:            %.0f ns\n", results.Summary.MatchLatencyNs)
	fmt.Printf("Entry selection:      %.0f req/s\n", results.Summary.SelectionOpsPerSec)
	fmt.Printf("Concurrent selection: %.0f req/s\n", results.Summary.ConcurrentOpsPerSec)
	fmt.Printf("Client round trip:    %.0f req/s\n", results.Summary.RoundTripOpsPerSec)
	fmt.Println("==========================================")
}
