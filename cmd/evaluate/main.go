package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/homematch-ai/recommender/internal/evaluation"
)

func main() {
	casesPath := flag.String("cases", "testdata/golden_cases.json", "path to the golden cases JSON file")
	ridgeAlpha := flag.Float64("alpha", 1.0, "ridge regularization strength")
	flag.Parse()

	cases, err := evaluation.LoadGoldenCases(*casesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := evaluation.ValidateGoldenCases(cases); err != nil {
		fmt.Fprintf(os.Stderr, "invalid golden cases: %v\n", err)
		os.Exit(1)
	}

	runner := evaluation.NewRunner(*ridgeAlpha)
	summary, err := runner.Run(cases)
	if err != nil {
		fmt.Fprintf(os.Stderr, "evaluation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Cases:               %d\n", summary.TotalCases)
	fmt.Printf("Avg Recall@10:       %.3f\n", summary.AvgRecallAt10)
	fmt.Printf("Avg MRR@10:          %.3f\n", summary.AvgMRRAt10)
	fmt.Printf("Avg latency:         %s\n", summary.AvgLatency)
	fmt.Printf("Guardrail failures:  %d\n", summary.GuardrailViolations)

	difficulties := make([]string, 0, len(summary.ByDifficulty))
	for d := range summary.ByDifficulty {
		difficulties = append(difficulties, d)
	}
	sort.Strings(difficulties)
	for _, d := range difficulties {
		ds := summary.ByDifficulty[d]
		fmt.Printf("  %-8s n=%-3d recall@10=%.3f mrr@10=%.3f\n", d, ds.Count, ds.AvgRecallAt10, ds.AvgMRRAt10)
	}

	if summary.GuardrailViolations > 0 {
		os.Exit(2)
	}
}
