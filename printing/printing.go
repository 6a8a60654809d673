// Package printing renders ctiview data to the terminal. Every view is
// written as CSV by default and as a table when human readable output is
// requested.
package printing

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// Alert messages raised for notable lookups
const (
	BotnetAlertFmt   = "Botnet C2 Server Detected for %s!"
	HighRiskAlertFmt = "High Risk IP! Score: %s"
	NoHistoryMessage = "No search history available."
)

// writeRows emits a header and rows either as CSV or as a table
func writeRows(w io.Writer, human bool, header []string, rows [][]string) error {
	if human {
		table := tablewriter.NewWriter(w)
		table.SetHeader(header)
		table.AppendBulk(rows)
		table.Render()
		return nil
	}

	csvWriter := csv.NewWriter(w)
	csvWriter.Write(header)
	return csvWriter.WriteAll(rows)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
