// Package reporting turns threat reports into downloadable artifacts
package reporting

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/activecm/ctiview/datatypes/threat"
	"github.com/skratchdot/open-golang/open"
)

// Supported export formats
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
)

// Formats lists the supported export formats
var Formats = []string{FormatJSON, FormatCSV, FormatPDF}

type (
	// Artifact is an exported report ready to be written or served
	Artifact struct {
		Filename    string
		ContentType string
		Data        []byte
	}

	// FormatError is returned for export formats that are not supported
	FormatError struct {
		Format string
	}
)

func (e *FormatError) Error() string {
	return fmt.Sprintf("unsupported export format %q (choose from %s)",
		e.Format, strings.Join(Formats, ", "))
}

// Filename returns the artifact name for a report on ip in the given format
func Filename(ip, format string) string {
	return "threat_report_" + ip + "." + format
}

// Export renders report in format. It performs no network or storage access.
func Export(report *threat.Report, format string) (*Artifact, error) {
	if report == nil {
		return nil, errors.New("no report to export")
	}

	var data []byte
	var contentType string
	var err error

	switch strings.ToLower(format) {
	case FormatJSON:
		data, err = exportJSON(report)
		contentType = "application/json"
	case FormatCSV:
		data, err = exportCSV(report)
		contentType = "text/csv"
	case FormatPDF:
		data, err = exportPDF(report)
		contentType = "application/pdf"
	default:
		return nil, &FormatError{Format: format}
	}
	if err != nil {
		return nil, err
	}

	return &Artifact{
		Filename:    Filename(report.IP, strings.ToLower(format)),
		ContentType: contentType,
		Data:        data,
	}, nil
}

// WriteArtifact writes the artifact into dir and returns the file path
func WriteArtifact(dir string, artifact *Artifact) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, artifact.Filename)
	if err := ioutil.WriteFile(path, artifact.Data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// Open hands a written artifact to the desktop's default application
func Open(path string) error {
	return open.Run(path)
}
