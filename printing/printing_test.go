package printing

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"

	"github.com/activecm/ctiview/datatypes/threat"
	"github.com/activecm/ctiview/history"
	"github.com/activecm/ctiview/intel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *threat.Report {
	vtErr := "quota exceeded"
	return &threat.Report{
		IP:          "203.0.113.5",
		ThreatScore: 72.3,
		AbuseIPDB:   threat.AbuseIPDB{ConfidenceScore: 88, TotalReports: 14, Country: "NL"},
		VirusTotal:  threat.VirusTotal{MaliciousCount: 3, Reputation: -12, Error: &vtErr},
		FeodoTracker: threat.FeodoTracker{
			IsMalicious:     true,
			ConfidenceLevel: 75,
			MalwareTypes:    []string{"Dridex", "Emotet"},
		},
		IPInfo: threat.IPInfo{City: "Amsterdam", Country: "NL"},
		APIStatus: map[string]string{
			threat.ProviderAbuseIPDB:  threat.StatusSuccess,
			threat.ProviderVirusTotal: threat.StatusFailure,
		},
	}
}

func readCSV(t *testing.T, data []byte) [][]string {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	require.NoError(t, err)
	return rows
}

func TestAlerts(t *testing.T) {
	report := sampleReport()
	assert.Equal(t, []string{
		"Botnet C2 Server Detected for 203.0.113.5!",
		"High Risk IP! Score: 72.3",
	}, Alerts(report, 50))

	assert.Equal(t, []string{"Botnet C2 Server Detected for 203.0.113.5!"}, Alerts(report, 80))

	clean := &threat.Report{IP: "198.51.100.7", ThreatScore: 50}
	assert.Empty(t, Alerts(clean, 50), "a score equal to the threshold is not high risk")
}

func TestPrintReportCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintReport(&buf, sampleReport(), 50, false))

	rows := readCSV(t, buf.Bytes())
	assert.Equal(t, []string{"Field", "Value"}, rows[0])
	assert.Contains(t, rows, []string{"Threat Score", "72.3"})
	assert.Contains(t, rows, []string{"Risk", "High"})
	assert.Contains(t, rows, []string{"AbuseIPDB", "88% (14 reports, Country: NL)"})
	assert.Contains(t, rows, []string{"Feodo Tracker", "Malicious (C2) (Confidence: 75) (Dridex, Emotet)"})
	assert.Contains(t, rows, []string{"Indicator: VirusTotal", "30"})
	assert.Contains(t, rows, []string{"Status: virustotal", "failure (quota exceeded)"})
	assert.Contains(t, rows, []string{"Status: abuseipdb", "success"})
}

func TestPrintReportHuman(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintReport(&buf, sampleReport(), 90, true))
	out := buf.String()
	assert.Contains(t, out, "FIELD")
	assert.Contains(t, out, "Threat Score")
	assert.Contains(t, out, "Amsterdam, NL")
	assert.Contains(t, out, "Low")
}

func TestPrintHistory(t *testing.T) {
	records := []history.Record{
		{IP: "203.0.113.5", Entries: []history.Entry{
			{Timestamp: "2026-10-19T08:30:00.000Z", ThreatScore: 72.3},
			{Timestamp: "2026-10-18T08:30:00.000Z", ThreatScore: 70},
		}},
		{IP: "198.51.100.7", Entries: []history.Entry{
			{Timestamp: "2026-10-17T08:30:00.000Z", ThreatScore: 3.26},
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, PrintHistory(&buf, records, false))
	assert.Equal(t, [][]string{
		{"IP", "Timestamp", "Threat Score"},
		{"203.0.113.5", "2026-10-19T08:30:00.000Z", "72.3"},
		{"203.0.113.5", "2026-10-18T08:30:00.000Z", "70.0"},
		{"198.51.100.7", "2026-10-17T08:30:00.000Z", "3.3"},
	}, readCSV(t, buf.Bytes()))
}

func TestPrintHistoryEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintHistory(&buf, nil, true))
	assert.Equal(t, NoHistoryMessage+"\n", buf.String())
}

func TestPrintRecent(t *testing.T) {
	records := []history.Record{
		{IP: "203.0.113.5", Entries: []history.Entry{
			{Timestamp: "2026-10-19T08:30:00.000Z", ThreatScore: 72.3},
			{Timestamp: "2026-10-18T08:30:00.000Z", ThreatScore: 70},
		}},
		{IP: "198.51.100.7", Entries: []history.Entry{}},
	}

	var buf bytes.Buffer
	require.NoError(t, PrintRecent(&buf, records, false))
	assert.Equal(t, [][]string{
		{"IP", "Last Lookup", "Last Score", "Lookups"},
		{"203.0.113.5", "2026-10-19T08:30:00.000Z", "72.3", "2"},
		{"198.51.100.7", "N/A", "N/A", "0"},
	}, readCSV(t, buf.Bytes()))
}

func TestPrintAnalytics(t *testing.T) {
	results := []intel.Result{
		{IP: "6.6.6.6", Err: errors.New("backend unavailable")},
		{IP: "203.0.113.5", Report: sampleReport()},
	}

	var buf bytes.Buffer
	require.NoError(t, PrintAnalytics(&buf, results, false))
	rows := readCSV(t, buf.Bytes())
	assert.Equal(t, []string{"6.6.6.6", "0", "0", "backend unavailable"}, rows[1])
	assert.Equal(t, []string{"203.0.113.5", "72.3", "88", ""}, rows[2])
	assert.Equal(t, []string{"IP", "Source", "Indicator"}, rows[3])
	assert.Equal(t, []string{"203.0.113.5", "AbuseIPDB", "88"}, rows[4])
	assert.Equal(t, []string{"203.0.113.5", "VirusTotal", "30"}, rows[5])
	assert.Equal(t, []string{"203.0.113.5", "Feodo Tracker", "75"}, rows[6])
}

func TestPrintAnalyticsNoData(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintAnalytics(&buf, nil, false))
	rows := readCSV(t, buf.Bytes())
	assert.Equal(t, []string{NoDataLabel, "0", "0", ""}, rows[1])
	assert.Equal(t, []string{NoDataLabel, "AbuseIPDB", "0"}, rows[3])
}

func TestPrintSettings(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintSettings(&buf, history.DefaultSettings(), false))
	assert.Equal(t, [][]string{
		{"Setting", "Value"},
		{"notifications", "true"},
		{"autoRefresh", "false"},
	}, readCSV(t, buf.Bytes()))
}
