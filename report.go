package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"gmapscrape/internal/business"
	"gmapscrape/internal/formatter"
	"gmapscrape/internal/output"
)

var reportJSON bool

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report FILE.json",
		Short: "Summarize businesses from an exported JSON file",
		Args:  cobra.ExactArgs(1),
		RunE:  runReport,
	}
	cmd.Flags().BoolVar(&reportJSON, "json", false, "Print the report as JSON")
	return cmd
}

func runReport(cmd *cobra.Command, args []string) error {
	records, err := output.ReadJSON(args[0])
	if err != nil {
		return err
	}
	rep := business.NewReport(records)
	if reportJSON {
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return err
		}
		printf(cmd, "%s\n", data)
		return nil
	}
	printf(cmd, "%s", reportText(rep))
	return nil
}

// reportText renders the summary block printed after a search.
func reportText(rep business.Report) string {
	var sb strings.Builder
	sb.WriteString("SCRAPING REPORT SUMMARY\n")
	sb.WriteString(strings.Repeat("=", 50) + "\n")
	sb.WriteString(formatter.KeyValues([][2]string{
		{"Total businesses", strconv.Itoa(rep.TotalBusinesses)},
		{"With ratings", strconv.Itoa(rep.BusinessesWithRating)},
		{"With phone numbers", strconv.Itoa(rep.BusinessesWithPhone)},
		{"With websites", strconv.Itoa(rep.BusinessesWithWebsite)},
		{"With hours", strconv.Itoa(rep.BusinessesWithHours)},
		{"Average rating", fmt.Sprintf("%.2f", rep.AverageRating)},
	}))

	if len(rep.Categories) > 0 {
		sb.WriteString("\nTop categories\n")
		rows := make([][]string, 0, len(rep.Categories))
		for i, c := range rep.Categories {
			if i == 5 {
				break
			}
			rows = append(rows, []string{c.Category, strconv.Itoa(c.Count)})
		}
		sb.WriteString(formatter.TextTable([]string{"category", "count"}, rows))
	}
	if len(rep.TopRated) > 0 {
		sb.WriteString("\nTop rated\n")
		top := rep.TopRated
		if len(top) > 5 {
			top = top[:5]
		}
		sb.WriteString(formatter.RecordsText("", top,
			business.FieldName, business.FieldRating, business.FieldReviewsCount))
	}
	return sb.String()
}
