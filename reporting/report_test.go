package reporting

import (
	"bytes"
	"encoding/csv"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/activecm/ctiview/datatypes/threat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *threat.Report {
	return &threat.Report{
		IP:          "203.0.113.5",
		ThreatScore: 72.3,
		AbuseIPDB: threat.AbuseIPDB{
			ConfidenceScore: 88,
			TotalReports:    14,
			Country:         "NL",
		},
		VirusTotal: threat.VirusTotal{
			MaliciousCount: 3,
			Reputation:     -12,
			ScanResults:    map[string]string{"Fortinet": "malware"},
		},
		FeodoTracker: threat.FeodoTracker{
			IsMalicious:     true,
			Source:          "Feodo Tracker",
			ConfidenceLevel: 75,
			MalwareTypes:    []string{"Botnet C2"},
		},
		IPInfo: threat.IPInfo{
			Latitude:  52.37,
			Longitude: 4.89,
			City:      "Amsterdam",
			Country:   "NL",
		},
		APIStatus: map[string]string{
			threat.ProviderAbuseIPDB:    threat.StatusSuccess,
			threat.ProviderVirusTotal:   threat.StatusSuccess,
			threat.ProviderFeodoTracker: threat.StatusSuccess,
			threat.ProviderIPInfo:       threat.StatusSuccess,
		},
	}
}

func TestExportJSONRoundTrip(t *testing.T) {
	report := sampleReport()
	artifact, err := Export(report, FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, "threat_report_203.0.113.5.json", artifact.Filename)
	assert.Equal(t, "application/json", artifact.ContentType)
	assert.Contains(t, string(artifact.Data), "\n  \"ip\": \"203.0.113.5\"")

	var decoded threat.Report
	require.NoError(t, json.Unmarshal(artifact.Data, &decoded))
	assert.Equal(t, *report, decoded)
}

func TestExportCSV(t *testing.T) {
	artifact, err := Export(sampleReport(), FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "threat_report_203.0.113.5.csv", artifact.Filename)
	assert.Equal(t, "text/csv", artifact.ContentType)

	rows, err := csv.NewReader(bytes.NewReader(artifact.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, CSVHeader, rows[0])
	assert.Equal(t, []string{
		"203.0.113.5", "72.3", "88", "14", "NL", "3", "-12", "Yes", "75", "Amsterdam", "NL",
	}, rows[1])
}

func TestExportCSVMissingValues(t *testing.T) {
	report := &threat.Report{IP: "198.51.100.7"}
	artifact, err := Export(report, FormatCSV)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(artifact.Data)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"198.51.100.7", "0", "0", "0", "N/A", "0", "0", "No", "0", "N/A", "N/A",
	}, rows[1])
}

func TestExportPDF(t *testing.T) {
	artifact, err := Export(sampleReport(), "PDF")
	require.NoError(t, err)
	assert.Equal(t, "threat_report_203.0.113.5.pdf", artifact.Filename)
	assert.Equal(t, "application/pdf", artifact.ContentType)
	assert.True(t, bytes.HasPrefix(artifact.Data, []byte("%PDF-")))
	assert.Contains(t, string(artifact.Data), "Threat Report for IP: 203.0.113.5")
	assert.Contains(t, string(artifact.Data), "Threat Score: 72.3")
}

func TestPDFLines(t *testing.T) {
	assert.Equal(t, []string{
		"Threat Score: 72.3",
		"AbuseIPDB: 88% (14 reports, Country: NL)",
		"VirusTotal: 3 malicious (Reputation: -12)",
		"Feodo Tracker: Malicious (C2) (Confidence: 75)",
		"Location: Amsterdam, NL",
	}, PDFLines(sampleReport()))

	clean := &threat.Report{IP: "198.51.100.7", ThreatScore: 5}
	lines := PDFLines(clean)
	assert.Equal(t, "Threat Score: 5.0", lines[0])
	assert.Equal(t, "Feodo Tracker: Clean (Confidence: 0)", lines[3])
	assert.Equal(t, "Location: N/A, N/A", lines[4])
}

func TestExportRejectsBadInput(t *testing.T) {
	_, err := Export(nil, FormatJSON)
	assert.Error(t, err)

	_, err = Export(sampleReport(), "xml")
	require.Error(t, err)
	assert.IsType(t, &FormatError{}, err)
	assert.Contains(t, err.Error(), "xml")
}

func TestWriteArtifact(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	artifact, err := Export(sampleReport(), FormatCSV)
	require.NoError(t, err)

	path, err := WriteArtifact(dir, artifact)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "threat_report_203.0.113.5.csv"), path)

	written, err := ioutil.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, artifact.Data, written)
}
