package reporting

import (
	"github.com/activecm/ctiview/datatypes/threat"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func exportJSON(report *threat.Report) ([]byte, error) {
	return json.MarshalIndent(report, "", "  ")
}
