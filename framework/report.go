package framework

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// PrintResults writes the end-of-run summary: every failed test with its errors, followed by
// the totals.
func PrintResults(w io.Writer, results Results) {
	if len(results.Failures) > 0 {
		fmt.Fprintln(w, "FAILED TESTS:")
		for _, f := range results.Failures {
			fmt.Fprintf(w, "* %s\n", f.TestID)
			for _, e := range f.Errors {
				for _, line := range strings.Split(reformatError(e).Error(), "\n") {
					fmt.Fprintf(w, "    %s\n", line)
				}
			}
		}
		fmt.Fprintln(w)
	}

	summary := fmt.Sprintf("%d passed, %d failed, %d skipped", results.Passed(), len(results.Failures), len(results.Skipped))
	if results.OK() {
		color.New(color.FgGreen).Fprintf(w, "All tests passed (%s)\n", summary)
	} else {
		color.New(color.FgRed, color.Bold).Fprintf(w, "Test run failed (%s)\n", summary)
	}
}

type jsonReport struct {
	OK      bool         `json:"ok"`
	Passed  int          `json:"passed"`
	Failed  int          `json:"failed"`
	Skipped int          `json:"skipped"`
	Tests   []jsonResult `json:"tests"`
}

type jsonResult struct {
	ID         string   `json:"id"`
	Status     Status   `json:"status"`
	Errors     []string `json:"errors,omitempty"`
	SkipReason string   `json:"skipReason,omitempty"`
	Group      bool     `json:"group,omitempty"`
	DurationMS int64    `json:"durationMs"`
}

// WriteJSONReport writes the results in a machine-readable form.
func WriteJSONReport(w io.Writer, results Results) error {
	report := jsonReport{
		OK:      results.OK(),
		Passed:  results.Passed(),
		Failed:  len(results.Failures),
		Skipped: len(results.Skipped),
		Tests:   make([]jsonResult, 0, len(results.Tests)),
	}
	for _, t := range results.Tests {
		r := jsonResult{
			ID:         t.TestID.String(),
			Status:     t.Status,
			SkipReason: t.SkipReason,
			Group:      t.Group,
			DurationMS: t.Duration.Milliseconds(),
		}
		for _, e := range t.Errors {
			r.Errors = append(r.Errors, reformatError(e).Error())
		}
		report.Tests = append(report.Tests, r)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
