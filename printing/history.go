package printing

import (
	"fmt"
	"io"

	"github.com/activecm/ctiview/history"
	"github.com/activecm/ctiview/util"
)

// PrintHistory renders the stored lookups of every given record, newest
// entry first
func PrintHistory(w io.Writer, records []history.Record, human bool) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, NoHistoryMessage)
		return err
	}

	header := []string{"IP", "Timestamp", "Threat Score"}
	var rows [][]string
	for _, record := range records {
		for _, entry := range record.Entries {
			rows = append(rows, []string{
				record.IP, entry.Timestamp, util.FormatFixed(entry.ThreatScore),
			})
		}
	}
	return writeRows(w, human, header, rows)
}

// PrintRecent renders the dashboard: the recently looked up addresses with
// their latest score
func PrintRecent(w io.Writer, records []history.Record, human bool) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, NoHistoryMessage)
		return err
	}

	header := []string{"IP", "Last Lookup", "Last Score", "Lookups"}
	var rows [][]string
	for _, record := range records {
		last, score := "N/A", "N/A"
		if len(record.Entries) > 0 {
			last = record.Entries[0].Timestamp
			score = util.FormatFixed(record.Entries[0].ThreatScore)
		}
		rows = append(rows, []string{record.IP, last, score, itoa(len(record.Entries))})
	}
	return writeRows(w, human, header, rows)
}
