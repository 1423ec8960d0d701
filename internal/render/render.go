package render

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"time"

	"fibcalc/internal/batch"
	"fibcalc/internal/fib"
	"fibcalc/internal/store"
)

// Format selects an output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates an output format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatJSON:
		return Format(s), nil
	}
	return "", fmt.Errorf("invalid output format %q (valid: text, json)", s)
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Terms renders index/value results as a table.
func Terms(w io.Writer, title string, results []batch.Result) error {
	styles := DefaultStyles()
	t := NewTable(title, "n", "fib(n)")
	t.RightAlign[0] = true
	t.RightAlign[1] = true
	for _, r := range results {
		value := ""
		switch {
		case r.Err != "":
			value = styles.Error.Render(r.Err)
		case r.Value != nil:
			value = r.Value.String()
		}
		t.AddRow(strconv.FormatInt(r.N, 10), value)
	}
	_, err := io.WriteString(w, t.View(styles))
	return err
}

// Sequence renders fib(1)..fib(len(values)).
func Sequence(w io.Writer, title string, values []*big.Int) error {
	results := make([]batch.Result, len(values))
	for i, v := range values {
		results[i] = batch.Result{N: int64(i) + 1, Value: v}
	}
	return Terms(w, title, results)
}

// RunSummary renders a batch run: its results followed by a one-line summary.
func RunSummary(w io.Writer, run *batch.Run) error {
	styles := DefaultStyles()
	if err := Terms(w, fmt.Sprintf("run %s (%s)", run.ID, run.Evaluator), run.Results); err != nil {
		return err
	}
	summary := fmt.Sprintf("%d terms, %d failed, %d cached in %s",
		len(run.Results), run.Failed, run.CacheHits, run.FinishedAt.Sub(run.StartedAt).Round(time.Microsecond))
	style := styles.Good
	if run.Failed > 0 {
		style = styles.Error
	}
	_, err := fmt.Fprintln(w, style.Render(summary))
	return err
}

// Report renders a verification report.
func Report(w io.Writer, report *fib.Report) error {
	styles := DefaultStyles()
	if report.OK() {
		_, err := fmt.Fprintln(w, styles.Good.Render(fmt.Sprintf(
			"verified fib(1)..fib(%d) under %s: all properties hold", report.Checked, report.Evaluator)))
		return err
	}

	t := NewTable(fmt.Sprintf("%s: %d checked, %d violations", report.Evaluator, report.Checked, len(report.Violations)),
		"n", "property", "detail")
	t.RightAlign[0] = true
	for _, v := range report.Violations {
		t.AddRow(strconv.FormatInt(v.N, 10), styles.Error.Render(v.Property), v.Detail)
	}
	_, err := io.WriteString(w, t.View(styles))
	return err
}

// Runs renders stored batch runs.
func Runs(w io.Writer, runs []store.Run) error {
	styles := DefaultStyles()
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, styles.Muted.Render("no runs recorded"))
		return err
	}
	t := NewTable("recent runs", "id", "source", "evaluator", "terms", "failed", "cached", "started")
	for _, i := range []int{3, 4, 5} {
		t.RightAlign[i] = true
	}
	for _, r := range runs {
		t.AddRow(r.ID, r.Source, r.Evaluator,
			strconv.Itoa(r.Count), strconv.Itoa(r.Failed), strconv.Itoa(r.CacheHits),
			r.StartedAt.Local().Format("2006-01-02 15:04:05"))
	}
	_, err := io.WriteString(w, t.View(styles))
	return err
}
