package reporting

import (
	"bytes"
	"fmt"

	"github.com/activecm/ctiview/datatypes/threat"
	"github.com/activecm/ctiview/util"
	"github.com/jung-kurt/gofpdf"
)

const (
	titleFontSize = 16
	bodyFontSize  = 12
	pdfMargin     = 10
	pdfLineStep   = 10
)

// PDFLines returns the body lines of the PDF export, top to bottom
func PDFLines(report *threat.Report) []string {
	return []string{
		"Threat Score: " + util.FormatFixed(report.ThreatScore),
		fmt.Sprintf("AbuseIPDB: %s%% (%d reports, Country: %s)",
			util.FormatFloat(report.AbuseIPDB.ConfidenceScore),
			report.AbuseIPDB.TotalReports,
			util.OrNA(report.AbuseIPDB.Country)),
		fmt.Sprintf("VirusTotal: %d malicious (Reputation: %d)",
			report.VirusTotal.MaliciousCount, report.VirusTotal.Reputation),
		fmt.Sprintf("Feodo Tracker: %s (Confidence: %s)",
			report.FeodoLabel(), util.FormatFloat(report.FeodoTracker.ConfidenceLevel)),
		fmt.Sprintf("Location: %s, %s",
			util.OrNA(report.IPInfo.City), util.OrNA(report.IPInfo.Country)),
	}
}

// PDFTitle is the heading of the PDF export
func PDFTitle(report *threat.Report) string {
	return "Threat Report for IP: " + report.IP
}

func exportPDF(report *threat.Report) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(false)
	pdf.SetTitle(PDFTitle(report), true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "", titleFontSize)
	pdf.Text(pdfMargin, pdfMargin, PDFTitle(report))

	pdf.SetFont("Helvetica", "", bodyFontSize)
	y := float64(pdfMargin)
	for _, line := range PDFLines(report) {
		y += pdfLineStep
		pdf.Text(pdfMargin, y, line)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
