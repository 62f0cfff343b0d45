package maps

import (
	"encoding/json"
	"fmt"
	"html"
	"sort"
	"strings"

	"gmapscrape/internal/business"
	"gmapscrape/internal/formatter"
)

// SearchContent holds the records of one search and implements
// scraper.Content.
type SearchContent struct {
	result *SearchResult
}

// NewSearchContent wraps a search result.
func NewSearchContent(res *SearchResult) *SearchContent {
	return &SearchContent{result: res}
}

func (c *SearchContent) Records() []business.Record { return c.result.Records }

func (c *SearchContent) title() string {
	t := "Google Maps: " + c.result.Query
	if c.result.Location != "" {
		t += " in " + c.result.Location
	}
	return t
}

func (c *SearchContent) ToHTML() (string, error) {
	return formatter.HTMLTable(c.title(), c.result.Records), nil
}

func (c *SearchContent) ToText() (string, error) {
	return formatter.RecordsText(c.title(), c.result.Records), nil
}

func (c *SearchContent) ToMarkdown() (string, error) {
	return formatter.Markdown(formatter.HTMLTable(c.title(), c.result.Records))
}

func (c *SearchContent) ToJSON() ([]byte, error) {
	type jsonResult struct {
		Query    string            `json:"query"`
		Location string            `json:"location,omitempty"`
		Source   string            `json:"source"`
		Scrolls  int               `json:"scrolls"`
		Stop     string            `json:"stop_reason,omitempty"`
		Found    int               `json:"found"`
		Failed   int               `json:"failed"`
		Results  []business.Record `json:"results"`
	}
	records := c.result.Records
	if records == nil {
		records = []business.Record{}
	}
	return json.MarshalIndent(jsonResult{
		Query:    c.result.Query,
		Location: c.result.Location,
		Source:   c.result.URL,
		Scrolls:  c.result.Scroll.Scrolls,
		Stop:     string(c.result.Scroll.Reason),
		Found:    c.result.Found,
		Failed:   c.result.Failed,
		Results:  records,
	}, "", "  ")
}

func (c *SearchContent) ToCSV() (string, error) {
	return formatter.CSV(c.result.Records)
}

// PlaceContent holds one place and implements scraper.Content.
type PlaceContent struct {
	place *Place
}

// NewPlaceContent wraps a place.
func NewPlaceContent(p *Place) *PlaceContent {
	return &PlaceContent{place: p}
}

func (c *PlaceContent) Records() []business.Record { return []business.Record{c.place.Record} }

func (c *PlaceContent) ToHTML() (string, error) {
	p := c.place
	var sb strings.Builder
	fmt.Fprintf(&sb, "<h1>%s</h1>\n<dl>\n", html.EscapeString(p.Name))
	for _, f := range business.Fields {
		if f == business.FieldIndex || f == business.FieldName {
			continue
		}
		if v := p.Get(f); v != "" {
			fmt.Fprintf(&sb, "  <dt>%s</dt><dd>%s</dd>\n", f, html.EscapeString(v))
		}
	}
	sb.WriteString("</dl>\n")

	if len(p.PopularTimes) > 0 {
		sb.WriteString("<h2>Popular times</h2>\n<table>\n<tr><th>day</th><th>busyness</th></tr>\n")
		for _, day := range popularDays(p.PopularTimes) {
			fmt.Fprintf(&sb, "<tr><td>%s</td><td>%s</td></tr>\n", day, html.EscapeString(p.PopularTimes[day]))
		}
		sb.WriteString("</table>\n")
	}
	if len(p.Menu) > 0 {
		sb.WriteString("<h2>Menu</h2>\n<table>\n<tr><th>name</th><th>price</th><th>description</th></tr>\n")
		for _, m := range p.Menu {
			fmt.Fprintf(&sb, "<tr><td>%s</td><td>%s</td><td>%s</td></tr>\n",
				html.EscapeString(m.Name), html.EscapeString(m.Price), html.EscapeString(m.Description))
		}
		sb.WriteString("</table>\n")
	}
	if len(p.QA) > 0 {
		sb.WriteString("<h2>Questions</h2>\n<dl>\n")
		for _, q := range p.QA {
			fmt.Fprintf(&sb, "  <dt>%s</dt><dd>%s</dd>\n", html.EscapeString(q.Question), html.EscapeString(q.Answer))
		}
		sb.WriteString("</dl>\n")
	}
	if len(p.Reviews) > 0 {
		fmt.Fprintf(&sb, "<h2>Reviews (%d)</h2>\n", len(p.Reviews))
		for _, r := range p.Reviews {
			fmt.Fprintf(&sb, "<h3>%s</h3>\n<p>%s %s</p>\n", html.EscapeString(r.Author), html.EscapeString(r.Rating), html.EscapeString(r.Date))
			if r.Text != "" {
				fmt.Fprintf(&sb, "<blockquote>%s</blockquote>\n", html.EscapeString(r.Text))
			}
		}
	}
	return sb.String(), nil
}

func (c *PlaceContent) ToText() (string, error) {
	p := c.place
	var pairs [][2]string
	for _, f := range business.Fields {
		if f == business.FieldIndex {
			continue
		}
		pairs = append(pairs, [2]string{string(f), p.Get(f)})
	}
	var sb strings.Builder
	sb.WriteString(formatter.KeyValues(pairs))

	if len(p.PopularTimes) > 0 {
		sb.WriteString("\nPopular times\n")
		days := make([][2]string, 0, len(p.PopularTimes))
		for _, day := range popularDays(p.PopularTimes) {
			days = append(days, [2]string{day, p.PopularTimes[day]})
		}
		sb.WriteString(formatter.KeyValues(days))
	}
	if len(p.Menu) > 0 {
		sb.WriteString("\nMenu\n")
		rows := make([][]string, len(p.Menu))
		for i, m := range p.Menu {
			rows[i] = []string{m.Name, m.Price, m.Description}
		}
		sb.WriteString(formatter.TextTable([]string{"name", "price", "description"}, rows))
	}
	if len(p.QA) > 0 {
		sb.WriteString("\nQuestions\n")
		for _, q := range p.QA {
			fmt.Fprintf(&sb, "Q: %s\nA: %s\n", q.Question, q.Answer)
		}
	}
	if len(p.Reviews) > 0 {
		fmt.Fprintf(&sb, "\nReviews (%d)\n", len(p.Reviews))
		for i, r := range p.Reviews {
			fmt.Fprintf(&sb, "%d. %s  %s  %s\n", i+1, r.Author, r.Rating, r.Date)
			if r.Text != "" {
				fmt.Fprintf(&sb, "   %s\n", r.Text)
			}
		}
	}
	return sb.String(), nil
}

func (c *PlaceContent) ToMarkdown() (string, error) {
	h, err := c.ToHTML()
	if err != nil {
		return "", err
	}
	return formatter.Markdown(h)
}

func (c *PlaceContent) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c.place, "", "  ")
}

// ToCSV writes the place record followed by its reviews, one per row.
func (c *PlaceContent) ToCSV() (string, error) {
	out, err := formatter.CSV(c.Records())
	if err != nil {
		return "", err
	}
	if len(c.place.Reviews) == 0 {
		return out, nil
	}
	rows := [][]string{{"author", "rating", "date", "text", "helpful_count"}}
	for _, r := range c.place.Reviews {
		rows = append(rows, []string{r.Author, r.Rating, r.Date, r.Text, r.Helpful})
	}
	reviews, err := formatter.CSVRows(rows)
	if err != nil {
		return "", err
	}
	return out + "\n" + reviews, nil
}

// popularDays returns the days present in m in weekday order, then any
// others alphabetically.
func popularDays(m map[string]string) []string {
	var days []string
	known := make(map[string]bool, len(weekdays))
	for _, d := range weekdays {
		known[d] = true
		if _, ok := m[d]; ok {
			days = append(days, d)
		}
	}
	var rest []string
	for d := range m {
		if !known[d] {
			rest = append(rest, d)
		}
	}
	sort.Strings(rest)
	return append(days, rest...)
}
