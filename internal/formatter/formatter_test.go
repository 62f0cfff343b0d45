package formatter

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gmapscrape/internal/business"
)

type stubContent struct {
	records []business.Record
	jsonErr error
}

func (s stubContent) ToHTML() (string, error)     { return "<p>html</p>", nil }
func (s stubContent) ToText() (string, error)     { return "text", nil }
func (s stubContent) ToMarkdown() (string, error) { return "# md", nil }
func (s stubContent) ToCSV() (string, error)      { return "a,b\n", nil }
func (s stubContent) ToJSON() ([]byte, error) {
	if s.jsonErr != nil {
		return nil, s.jsonErr
	}
	return []byte(`{"ok":true}`), nil
}
func (s stubContent) Records() []business.Record { return s.records }

func TestFormat(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"html", "<p>html</p>"},
		{"text", "text"},
		{"markdown", "# md"},
		{"csv", "a,b\n"},
		{"json", `{"ok":true}`},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			got, err := Format(stubContent{}, tt.format)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}

	_, err := Format(stubContent{}, "yaml")
	require.ErrorContains(t, err, "unsupported output format: yaml")

	boom := errors.New("boom")
	_, err = Format(stubContent{jsonErr: boom}, "json")
	require.ErrorIs(t, err, boom)
}

func TestInferFormat(t *testing.T) {
	require.Equal(t, "markdown", InferFormat("out.MD"))
	require.Equal(t, "html", InferFormat("page.htm"))
	require.Equal(t, "csv", InferFormat("/tmp/x.csv"))
	require.Equal(t, "json", InferFormat("x.json"))
	require.Equal(t, "text", InferFormat("x.txt"))
	require.Equal(t, "", InferFormat("x.xlsx"))
	require.Equal(t, "", InferFormat("noext"))
}

var sample = []business.Record{
	{Index: 1, Name: "Blue Door Cafe", Rating: "4.6", Website: "https://bluedoor.example.com"},
	{Index: 2, Name: "Café \"Rouge\", Inc", Phone: "(217) 555-0100"},
}

func TestWriteCSV(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, WriteCSV(&sb, sample))
	require.Equal(t,
		"index,name,rating,phone,website\n"+
			"1,Blue Door Cafe,4.6,,https://bluedoor.example.com\n"+
			"2,\"Café \"\"Rouge\"\", Inc\",,(217) 555-0100,\n", sb.String())
}

func TestCSVEmpty(t *testing.T) {
	out, err := CSV(nil)
	require.NoError(t, err)
	require.Equal(t, "index,name\n", out)
}

func TestCSVRows(t *testing.T) {
	out, err := CSVRows([][]string{{"a", "b"}, {"1", "x,y"}})
	require.NoError(t, err)
	require.Equal(t, "a,b\n1,\"x,y\"\n", out)
}

func TestHTMLTableEscapes(t *testing.T) {
	out := HTMLTable("coffee <near> me", sample)
	require.Contains(t, out, "<h1>coffee &lt;near&gt; me</h1>")
	require.Contains(t, out, "<p>2 businesses</p>")
	require.Contains(t, out, "<th>website</th>")
	require.Contains(t, out, `<a href="https://bluedoor.example.com">`)
	require.Contains(t, out, "Café &#34;Rouge&#34;, Inc")
}

func TestHTMLTableEscapesLinks(t *testing.T) {
	out := HTMLTable("", []business.Record{{
		Index:   1,
		Name:    "Quote Bar",
		Website: `https://quote.example.com/?a=1&b="x"><script>`,
	}})
	require.Contains(t, out,
		`<a href="https://quote.example.com/?a=1&amp;b=&#34;x&#34;&gt;&lt;script&gt;">`)
	require.NotContains(t, out, "<script>")
	require.NotContains(t, out, `\"`)
}

func TestMarkdownTable(t *testing.T) {
	out, err := Markdown(HTMLTable("", sample[:1]))
	require.NoError(t, err)
	require.Contains(t, out, "| index")
	require.Contains(t, out, "Blue Door Cafe")
	require.Contains(t, out, "https://bluedoor.example.com")
	require.NotContains(t, out, "<td>")
}

func TestTextTableAlignsWideRunes(t *testing.T) {
	out := TextTable([]string{"name", "rating"}, [][]string{
		{"東京カフェ", "4.5"},
		{"Cafe", "3.9"},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	require.Equal(t, "name        rating", lines[0])
	require.Equal(t, "----------  ------", lines[1])
	require.Equal(t, "東京カフェ  4.5", lines[2])
	require.Equal(t, "Cafe        3.9", lines[3])
}

func TestTextTableTruncates(t *testing.T) {
	long := strings.Repeat("x", maxCellWidth+10)
	out := TextTable([]string{"v"}, [][]string{{long}})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, []rune(lines[2]), maxCellWidth)
	require.True(t, strings.HasSuffix(lines[2], "…"))
}

func TestRecordsTextSkipsEmptyColumns(t *testing.T) {
	out := RecordsText("coffee", sample)
	require.True(t, strings.HasPrefix(out, "coffee\n2 businesses\n\n"))
	header := strings.Split(out, "\n")[3]
	require.Equal(t, []string{"index", "name", "rating", "phone"}, strings.Fields(header))
}

func TestKeyValues(t *testing.T) {
	out := KeyValues([][2]string{{"name", "Blue Door"}, {"phone", ""}, {"rating", "4.6"}})
	require.Equal(t, "name    Blue Door\nrating  4.6\n", out)
}
