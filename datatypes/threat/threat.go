package threat

import (
	"sort"
	"strings"
)

// Provider names as they appear in Report.APIStatus
const (
	ProviderAbuseIPDB    = "abuseipdb"
	ProviderVirusTotal   = "virustotal"
	ProviderFeodoTracker = "feodo_tracker"
	ProviderIPInfo       = "ipinfo"
)

// Provider status values. The backend reports "failed" for failures,
// "failure" is accepted as well.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusFailed  = "failed"
)

type (
	// Report is the aggregated multi-provider assessment of one IP address as
	// produced by the backend. It is never modified after it is received.
	Report struct {
		IP           string            `json:"ip"`
		ThreatScore  float64           `json:"threat_score"`
		AbuseIPDB    AbuseIPDB         `json:"abuseipdb"`
		VirusTotal   VirusTotal        `json:"virustotal"`
		FeodoTracker FeodoTracker      `json:"feodo_tracker"`
		IPInfo       IPInfo            `json:"ipinfo"`
		APIStatus    map[string]string `json:"api_status"`
	}

	// AbuseIPDB holds the AbuseIPDB section of a report
	AbuseIPDB struct {
		ConfidenceScore float64 `json:"confidence_score"`
		TotalReports    int     `json:"total_reports"`
		Country         string  `json:"country,omitempty"`
		Error           *string `json:"error,omitempty"`
	}

	// VirusTotal holds the VirusTotal section of a report
	VirusTotal struct {
		MaliciousCount int               `json:"malicious_count"`
		Reputation     int               `json:"reputation"`
		ScanResults    map[string]string `json:"scan_results"`
		Error          *string           `json:"error,omitempty"`
	}

	// FeodoTracker holds the Feodo Tracker blocklist section of a report
	FeodoTracker struct {
		IsMalicious     bool     `json:"is_malicious"`
		Source          string   `json:"source,omitempty"`
		ConfidenceLevel float64  `json:"confidence_level"`
		MalwareTypes    []string `json:"malware_types"`
		Error           *string  `json:"error,omitempty"`
	}

	// IPInfo holds the geolocation section of a report
	IPInfo struct {
		Latitude  float64 `json:"latitude,omitempty"`
		Longitude float64 `json:"longitude,omitempty"`
		City      string  `json:"city,omitempty"`
		Country   string  `json:"country,omitempty"`
		Error     *string `json:"error,omitempty"`
	}

	// Indicator is a single per-provider value plotted by the dashboard views
	Indicator struct {
		Provider string  `json:"provider"`
		Value    float64 `json:"value"`
	}
)

// IsHighRisk reports whether the threat score exceeds the threshold
func (r *Report) IsHighRisk(threshold float64) bool {
	return r.ThreatScore > threshold
}

// Succeeded reports whether the backend queried the provider successfully
func (r *Report) Succeeded(provider string) bool {
	return r.APIStatus[provider] == StatusSuccess
}

// FailedProviders lists the providers whose status is anything but success
func (r *Report) FailedProviders() []string {
	var failed []string
	for provider, status := range r.APIStatus {
		if status != StatusSuccess {
			failed = append(failed, provider)
		}
	}
	sort.Strings(failed)
	return failed
}

// Providers lists every provider the backend reported a status for
func (r *Report) Providers() []string {
	providers := make([]string, 0, len(r.APIStatus))
	for provider := range r.APIStatus {
		providers = append(providers, provider)
	}
	sort.Strings(providers)
	return providers
}

// Indicators returns the per-provider threat indicators. VirusTotal detections
// are weighted by ten to share the 0-100 scale of the other two.
func (r *Report) Indicators() []Indicator {
	return []Indicator{
		{Provider: "AbuseIPDB", Value: r.AbuseIPDB.ConfidenceScore},
		{Provider: "VirusTotal", Value: float64(r.VirusTotal.MaliciousCount * 10)},
		{Provider: "Feodo Tracker", Value: r.FeodoTracker.ConfidenceLevel},
	}
}

// FeodoLabel is the human readable Feodo Tracker verdict
func (r *Report) FeodoLabel() string {
	if r.FeodoTracker.IsMalicious {
		return "Malicious (C2)"
	}
	return "Clean"
}

// MalwareTypes joins the Feodo Tracker malware families
func (r *Report) MalwareTypes() string {
	return strings.Join(r.FeodoTracker.MalwareTypes, ", ")
}
