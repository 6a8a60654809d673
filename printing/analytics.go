package printing

import (
	"io"

	"github.com/activecm/ctiview/datatypes/threat"
	"github.com/activecm/ctiview/intel"
	"github.com/activecm/ctiview/util"
)

// NoDataLabel stands in for an address when there is nothing to analyze
const NoDataLabel = "No Data"

// PrintAnalytics renders the threat and AbuseIPDB scores of each result
// followed by the per provider breakdown of the first successful one.
// Failed lookups are listed with their error.
func PrintAnalytics(w io.Writer, results []intel.Result, human bool) error {
	header := []string{"IP", "Threat Score", "AbuseIPDB Score", "Error"}
	var rows [][]string
	var first *threat.Report

	for _, result := range results {
		if result.Err != nil {
			rows = append(rows, []string{result.IP, "0", "0", result.Err.Error()})
			continue
		}
		if first == nil {
			first = result.Report
		}
		rows = append(rows, []string{
			result.IP,
			util.FormatFloat(result.Report.ThreatScore),
			util.FormatFloat(result.Report.AbuseIPDB.ConfidenceScore),
			"",
		})
	}
	if len(rows) == 0 {
		rows = append(rows, []string{NoDataLabel, "0", "0", ""})
	}
	if err := writeRows(w, human, header, rows); err != nil {
		return err
	}

	// threat sources of the first address
	sources := [][]string{}
	if first == nil {
		first = &threat.Report{IP: NoDataLabel}
	}
	for _, indicator := range first.Indicators() {
		sources = append(sources, []string{first.IP, indicator.Provider, util.FormatFloat(indicator.Value)})
	}
	return writeRows(w, human, []string{"IP", "Source", "Indicator"}, sources)
}
