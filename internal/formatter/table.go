package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"html"
	"io"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/mattn/go-runewidth"

	"gmapscrape/internal/business"
)

// maxCellWidth caps text table columns; longer values are truncated.
const maxCellWidth = 40

// WriteCSV writes records with a header row. Columns are the fields that
// carry a value in any record.
func WriteCSV(w io.Writer, records []business.Record) error {
	cols := business.Columns(records)
	cw := csv.NewWriter(w)
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = string(c)
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for i := range records {
		if err := cw.Write(records[i].Row(cols)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSV renders records as a CSV document.
func CSV(records []business.Record) (string, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, records); err != nil {
		return "", fmt.Errorf("failed to write CSV: %w", err)
	}
	return buf.String(), nil
}

// CSVRows renders raw rows as a CSV document.
func CSVRows(rows [][]string) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return "", fmt.Errorf("failed to write CSV: %w", err)
	}
	return buf.String(), nil
}

// HTMLTable renders records as an HTML table under an optional heading.
func HTMLTable(title string, records []business.Record) string {
	cols := business.Columns(records)
	var sb strings.Builder
	if title != "" {
		fmt.Fprintf(&sb, "<h1>%s</h1>\n", html.EscapeString(title))
	}
	fmt.Fprintf(&sb, "<p>%d businesses</p>\n", len(records))
	sb.WriteString("<table>\n<thead>\n<tr>")
	for _, c := range cols {
		fmt.Fprintf(&sb, "<th>%s</th>", html.EscapeString(string(c)))
	}
	sb.WriteString("</tr>\n</thead>\n<tbody>\n")
	for i := range records {
		sb.WriteString("<tr>")
		for _, c := range cols {
			v := records[i].Get(c)
			if (c == business.FieldWebsite || c == business.FieldURL) && v != "" {
				escaped := html.EscapeString(v)
				fmt.Fprintf(&sb, "<td><a href=\"%s\">%s</a></td>", escaped, escaped)
				continue
			}
			fmt.Fprintf(&sb, "<td>%s</td>", html.EscapeString(v))
		}
		sb.WriteString("</tr>\n")
	}
	sb.WriteString("</tbody>\n</table>\n")
	return sb.String()
}

// Markdown converts HTML to Markdown with GitHub-style tables.
func Markdown(htmlContent string) (string, error) {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.Table())
	markdown, err := converter.ConvertString(htmlContent)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to Markdown: %w", err)
	}
	return markdown, nil
}

// TextTable renders rows as a column-aligned plain text table. Widths are
// measured in terminal cells so CJK names line up.
func TextTable(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	measure := func(row []string) {
		for i := range widths {
			if i >= len(row) {
				continue
			}
			w := runewidth.StringWidth(row[i])
			if w > maxCellWidth {
				w = maxCellWidth
			}
			if w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(header)
	for _, r := range rows {
		measure(r)
	}

	var sb strings.Builder
	line := func(row []string) {
		cells := make([]string, len(widths))
		for i, w := range widths {
			v := ""
			if i < len(row) {
				v = strings.ReplaceAll(row[i], "\n", " ")
			}
			cells[i] = runewidth.FillRight(runewidth.Truncate(v, w, "…"), w)
		}
		sb.WriteString(strings.TrimRight(strings.Join(cells, "  "), " "))
		sb.WriteString("\n")
	}
	line(header)
	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("-", w)
	}
	line(rule)
	for _, r := range rows {
		line(r)
	}
	return sb.String()
}

// RecordsText renders records as a text table limited to the given fields.
// Fields empty in every record are left out.
func RecordsText(title string, records []business.Record, fields ...business.Field) string {
	if len(fields) == 0 {
		fields = []business.Field{
			business.FieldIndex,
			business.FieldName,
			business.FieldRating,
			business.FieldReviewsCount,
			business.FieldCategory,
			business.FieldPhone,
			business.FieldAddress,
		}
	}
	present := make(map[business.Field]bool)
	for _, c := range business.Columns(records) {
		present[c] = true
	}
	var cols []business.Field
	for _, f := range fields {
		if present[f] {
			cols = append(cols, f)
		}
	}

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = string(c)
	}
	rows := make([][]string, len(records))
	for i := range records {
		rows[i] = records[i].Row(cols)
	}

	var sb strings.Builder
	if title != "" {
		fmt.Fprintf(&sb, "%s\n%d businesses\n\n", title, len(records))
	}
	sb.WriteString(TextTable(header, rows))
	return sb.String()
}

// KeyValues renders label/value pairs with aligned labels, skipping empty
// values.
func KeyValues(pairs [][2]string) string {
	width := 0
	for _, p := range pairs {
		if p[1] != "" {
			width = max(width, runewidth.StringWidth(p[0]))
		}
	}
	var sb strings.Builder
	for _, p := range pairs {
		if p[1] == "" {
			continue
		}
		fmt.Fprintf(&sb, "%s  %s\n", runewidth.FillRight(p[0], width), p[1])
	}
	return sb.String()
}
