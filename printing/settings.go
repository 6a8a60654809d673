package printing

import (
	"io"
	"strconv"

	"github.com/activecm/ctiview/history"
)

// PrintSettings renders the user preferences
func PrintSettings(w io.Writer, settings history.Settings, human bool) error {
	return writeRows(w, human, []string{"Setting", "Value"}, [][]string{
		{"notifications", strconv.FormatBool(settings.Notifications)},
		{"autoRefresh", strconv.FormatBool(settings.AutoRefresh)},
	})
}
