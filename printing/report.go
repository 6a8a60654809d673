package printing

import (
	"fmt"
	"io"

	"github.com/activecm/ctiview/datatypes/threat"
	"github.com/activecm/ctiview/util"
)

// Alerts lists the notifications a lookup result deserves: a botnet alert
// when Feodo Tracker lists the address, and a high risk alert when the
// score exceeds threshold
func Alerts(report *threat.Report, threshold float64) []string {
	var alerts []string
	if report.FeodoTracker.IsMalicious {
		alerts = append(alerts, fmt.Sprintf(BotnetAlertFmt, report.IP))
	}
	if report.IsHighRisk(threshold) {
		alerts = append(alerts, fmt.Sprintf(HighRiskAlertFmt, util.FormatFixed(report.ThreatScore)))
	}
	return alerts
}

// RiskLabel names the risk band of a report
func RiskLabel(report *threat.Report, threshold float64) string {
	if report.IsHighRisk(threshold) {
		return "High"
	}
	return "Low"
}

// feodoDetail is the Feodo Tracker verdict with the confidence and malware
// families when the backend reported any
func feodoDetail(report *threat.Report) string {
	detail := report.FeodoLabel()
	if report.FeodoTracker.ConfidenceLevel > 0 {
		detail += " (Confidence: " + util.FormatFloat(report.FeodoTracker.ConfidenceLevel) + ")"
	}
	if len(report.FeodoTracker.MalwareTypes) > 0 {
		detail += " (" + report.MalwareTypes() + ")"
	}
	return detail
}

// providerError returns the error message the backend attached to provider
func providerError(report *threat.Report, provider string) string {
	var msg *string
	switch provider {
	case threat.ProviderAbuseIPDB:
		msg = report.AbuseIPDB.Error
	case threat.ProviderVirusTotal:
		msg = report.VirusTotal.Error
	case threat.ProviderFeodoTracker:
		msg = report.FeodoTracker.Error
	case threat.ProviderIPInfo:
		msg = report.IPInfo.Error
	}
	if msg == nil {
		return ""
	}
	return *msg
}

// PrintReport renders the detail view of a single lookup
func PrintReport(w io.Writer, report *threat.Report, threshold float64, human bool) error {
	header := []string{"Field", "Value"}
	rows := [][]string{
		{"IP", report.IP},
		{"Threat Score", util.FormatFixed(report.ThreatScore)},
		{"Risk", RiskLabel(report, threshold)},
		{"AbuseIPDB", fmt.Sprintf("%s%% (%d reports, Country: %s)",
			util.FormatFloat(report.AbuseIPDB.ConfidenceScore),
			report.AbuseIPDB.TotalReports,
			util.OrNA(report.AbuseIPDB.Country))},
		{"VirusTotal", fmt.Sprintf("%d malicious (Reputation: %d)",
			report.VirusTotal.MaliciousCount, report.VirusTotal.Reputation)},
		{"Feodo Tracker", feodoDetail(report)},
		{"Location", util.OrNA(report.IPInfo.City) + ", " + util.OrNA(report.IPInfo.Country)},
	}

	for _, indicator := range report.Indicators() {
		rows = append(rows, []string{
			"Indicator: " + indicator.Provider,
			util.FormatFloat(indicator.Value),
		})
	}

	for _, provider := range report.Providers() {
		status := report.APIStatus[provider]
		if msg := providerError(report, provider); msg != "" {
			status += " (" + msg + ")"
		}
		rows = append(rows, []string{"Status: " + provider, status})
	}

	return writeRows(w, human, header, rows)
}
