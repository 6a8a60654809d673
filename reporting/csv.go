package reporting

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/activecm/ctiview/datatypes/threat"
	"github.com/activecm/ctiview/util"
)

// CSVHeader is the column set of a CSV export
var CSVHeader = []string{
	"IP",
	"Threat_Score",
	"AbuseIPDB_Score",
	"AbuseIPDB_Reports",
	"AbuseIPDB_Country",
	"VirusTotal_Malicious",
	"VirusTotal_Reputation",
	"Feodo_Malicious",
	"Feodo_Confidence",
	"City",
	"Country",
}

// CSVRow flattens a report into one row matching CSVHeader
func CSVRow(report *threat.Report) []string {
	feodo := "No"
	if report.FeodoTracker.IsMalicious {
		feodo = "Yes"
	}
	return []string{
		report.IP,
		util.FormatFloat(report.ThreatScore),
		util.FormatFloat(report.AbuseIPDB.ConfidenceScore),
		strconv.Itoa(report.AbuseIPDB.TotalReports),
		util.OrNA(report.AbuseIPDB.Country),
		strconv.Itoa(report.VirusTotal.MaliciousCount),
		strconv.Itoa(report.VirusTotal.Reputation),
		feodo,
		util.FormatFloat(report.FeodoTracker.ConfidenceLevel),
		util.OrNA(report.IPInfo.City),
		util.OrNA(report.IPInfo.Country),
	}
}

func exportCSV(report *threat.Report) ([]byte, error) {
	var buf bytes.Buffer
	csvWriter := csv.NewWriter(&buf)
	csvWriter.UseCRLF = true
	csvWriter.Write(CSVHeader)
	csvWriter.Write(CSVRow(report))
	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
