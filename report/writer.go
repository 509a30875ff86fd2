//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Format names accepted by Write.
const (
	FormatText     = "text"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatJSON     = "json"
)

const maxQueryWidth = 48

// Write writes the report in the given format.
func (r *Report) Write(w io.Writer, format string) error {
	switch format {
	case FormatText, "":
		return r.WriteText(w)
	case FormatCSV:
		return r.WriteCSV(w)
	case FormatMarkdown:
		return r.WriteMarkdown(w)
	case FormatHTML:
		return r.RenderHTML(w)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("write json report: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// Header returns the table columns: eval_id, query, then score and label per metric, then status.
func (r *Report) Header() []string {
	header := []string{"eval_id", "query"}
	for _, name := range r.Metrics {
		header = append(header, name+"_score", name+"_label")
	}
	return append(header, "status")
}

// Records returns one table record per row, aligned with Header.
func (r *Report) Records() [][]string {
	records := make([][]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		rec := []string{row.EvalID, row.Query}
		for _, name := range r.Metrics {
			m := row.Metric(name)
			if m == nil || m.Result == nil {
				rec = append(rec, "", "")
				continue
			}
			rec = append(rec, fmt.Sprintf("%.2f", m.Result.Score()), m.Result.Label())
		}
		records = append(records, append(rec, row.Status.String()))
	}
	return records
}

// WriteText writes the report as aligned columns followed by the summary.
func (r *Report) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(r.Header(), "\t"))
	for _, rec := range r.Records() {
		for i := range rec {
			rec[i] = textCell(rec[i])
		}
		rec[1] = truncate(rec[1], maxQueryWidth)
		fmt.Fprintln(tw, strings.Join(rec, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write text report: %w", err)
	}
	if _, err := fmt.Fprintf(w, "\nEval set: %s  Status: %s\n", r.EvalSetID, r.Status); err != nil {
		return fmt.Errorf("write text report: %w", err)
	}
	for _, s := range r.Summary {
		if _, err := fmt.Fprintf(w, "  %s: mean %.2f, passed %d/%d\n", s.Name, s.MeanScore, s.Passed, s.Evaluated); err != nil {
			return fmt.Errorf("write text report: %w", err)
		}
	}
	return nil
}

// WriteCSV writes the header and one record per row.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(r.Header()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(r.Records()); err != nil {
		return fmt.Errorf("write csv records: %w", err)
	}
	return nil
}

// WriteMarkdown writes the report as a GitHub flavored markdown table.
func (r *Report) WriteMarkdown(w io.Writer) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# Evaluation %s\n\n", escapeCell(r.EvalSetID))
	fmt.Fprintf(&buf, "Status: **%s**\n\n", r.Status)
	header := r.Header()
	writeMarkdownRow(&buf, header)
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	writeMarkdownRow(&buf, sep)
	for _, rec := range r.Records() {
		writeMarkdownRow(&buf, rec)
	}
	if len(r.Summary) > 0 {
		buf.WriteString("\n## Summary\n\n")
		writeMarkdownRow(&buf, []string{"metric", "mean_score", "passed"})
		writeMarkdownRow(&buf, []string{"---", "---", "---"})
		for _, s := range r.Summary {
			writeMarkdownRow(&buf, []string{s.Name, fmt.Sprintf("%.2f", s.MeanScore), fmt.Sprintf("%d/%d", s.Passed, s.Evaluated)})
		}
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write markdown report: %w", err)
	}
	return nil
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// RenderHTML renders the markdown report to HTML.
func (r *Report) RenderHTML(w io.Writer) error {
	var src bytes.Buffer
	if err := r.WriteMarkdown(&src); err != nil {
		return err
	}
	if err := markdown.Convert(src.Bytes(), w); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}
	return nil
}

func writeMarkdownRow(buf *bytes.Buffer, cells []string) {
	buf.WriteString("|")
	for _, c := range cells {
		buf.WriteString(" ")
		buf.WriteString(escapeCell(c))
		buf.WriteString(" |")
	}
	buf.WriteString("\n")
}

var cellReplacer = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ", "<", "&lt;", ">", "&gt;")

func escapeCell(s string) string {
	return cellReplacer.Replace(s)
}

var textCellReplacer = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ")

// textCell keeps a value on one tabwriter cell.
func textCell(s string) string {
	return textCellReplacer.Replace(s)
}

func truncate(s string, n int) string {
	s = textCell(s)
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
