// Package intel talks to the threat aggregation backend
package intel

import (
	"context"
	"errors"
	"io"
	"io/ioutil"
	"net"
	"net/http"
	"time"

	"github.com/activecm/ctiview/datatypes/threat"
	"github.com/activecm/ctiview/history"
	"github.com/activecm/ctiview/util"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RequestIDHeader carries a per lookup id so backend logs can be correlated
const RequestIDHeader = "X-Request-ID"

// maxErrorBody bounds how much of a failed response is read
const maxErrorBody = 64 * 1024

// maxParallelLookups bounds LookupMany
const maxParallelLookups = 8

type (
	// Recorder receives an entry after every successful lookup
	Recorder interface {
		RecordLookup(ip string, entry history.Entry)
	}

	// Client looks up IP addresses against the backend. It neither caches
	// nor retries: every Lookup is exactly one request.
	Client struct {
		baseURL  string
		http     *http.Client
		recorder Recorder
		log      *log.Logger
		now      func() time.Time
	}

	// Result is the outcome of one lookup made by LookupMany
	Result struct {
		IP     string
		Report *threat.Report
		Err    error
	}

	// errorBody is the error document returned by the backend
	errorBody struct {
		Detail string `json:"detail"`
	}
)

// NewClient creates a client for the backend at baseURL. A nil httpClient
// selects http.DefaultClient and a nil recorder disables history.
func NewClient(baseURL string, httpClient *http.Client, recorder Recorder, logger *log.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:  baseURL,
		http:     httpClient,
		recorder: recorder,
		log:      logger,
		now:      time.Now,
	}
}

// ValidIP checks the dotted quad syntax of an address
func ValidIP(ip string) bool {
	return util.IsDottedQuad(ip)
}

// URL returns the backend endpoint for ip
func (c *Client) URL(ip string) string {
	return c.baseURL + "/threats/ip/" + ip
}

// Lookup fetches the threat report for ip and records the score in the
// lookup history. Malformed addresses fail with a *ValidationError and
// request failures with a *LookupError.
func (c *Client) Lookup(ctx context.Context, ip string) (*threat.Report, error) {
	if !ValidIP(ip) {
		return nil, &ValidationError{IP: ip}
	}

	if parsed := net.ParseIP(ip); parsed != nil && !util.IPIsPubliclyRoutable(parsed) {
		c.log.WithFields(log.Fields{
			"ip": ip,
		}).Warn("Looking up an address that is not publicly routable")
	}

	requestID := uuid.New().String()
	logger := c.log.WithFields(log.Fields{
		"ip":         ip,
		"request_id": requestID,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(ip), nil)
	if err != nil {
		return nil, &LookupError{IP: ip, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.WithFields(log.Fields{
			"error": err.Error(),
		}).Error("Threat lookup failed")
		return nil, &LookupError{IP: ip, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		lookupErr := &LookupError{
			IP:         ip,
			StatusCode: resp.StatusCode,
			Err:        errors.New(errorMessage(resp)),
		}
		logger.WithFields(log.Fields{
			"status": resp.StatusCode,
			"error":  lookupErr.Err.Error(),
		}).Error("Threat lookup failed")
		return nil, lookupErr
	}

	report := new(threat.Report)
	if err := json.NewDecoder(resp.Body).Decode(report); err != nil {
		logger.WithFields(log.Fields{
			"error": err.Error(),
		}).Error("Could not decode threat report")
		return nil, &LookupError{IP: ip, StatusCode: resp.StatusCode, Err: err}
	}
	normalize(ip, report)

	logger.WithFields(log.Fields{
		"score":    report.ThreatScore,
		"duration": time.Since(start).String(),
	}).Info("Threat lookup finished")

	if c.recorder != nil {
		c.recorder.RecordLookup(ip, history.NewEntry(c.now(), report.ThreatScore))
	}
	return report, nil
}

// LookupMany looks up every address in parallel. Results are returned in
// the order of ips. onDone, when given, is called as each lookup finishes
// and may be called from several goroutines at once.
func (c *Client) LookupMany(ctx context.Context, ips []string, onDone func(Result)) []Result {
	results := make([]Result, len(ips))

	var group errgroup.Group
	group.SetLimit(maxParallelLookups)
	for i, ip := range ips {
		i, ip := i, ip
		group.Go(func() error {
			report, err := c.Lookup(ctx, ip)
			results[i] = Result{IP: ip, Report: report, Err: err}
			if onDone != nil {
				onDone(results[i])
			}
			// failures are per address and must not cancel the others
			return nil
		})
	}
	group.Wait()
	return results
}

// errorMessage extracts the backend's error detail, falling back to the
// HTTP status text
func errorMessage(resp *http.Response) string {
	body, err := ioutil.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err == nil && len(body) > 0 {
		var detail errorBody
		if json.Unmarshal(body, &detail) == nil && detail.Detail != "" {
			return detail.Detail
		}
	}
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return resp.Status
}

// normalize fills in what older backends leave out so callers never see
// nil maps or an empty address, and folds "failed" into "failure"
func normalize(ip string, report *threat.Report) {
	if report.IP == "" {
		report.IP = ip
	}
	if report.APIStatus == nil {
		report.APIStatus = map[string]string{}
	}
	for provider, status := range report.APIStatus {
		if status == threat.StatusFailed {
			report.APIStatus[provider] = threat.StatusFailure
		}
	}
	if report.FeodoTracker.MalwareTypes == nil {
		report.FeodoTracker.MalwareTypes = []string{}
	}
}
