package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/activecm/ctiview/history"
	"github.com/activecm/ctiview/resources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const backendReport = `{
  "ip": "203.0.113.5",
  "abuseipdb": {"confidence_score": 88, "total_reports": 14, "country": "NL"},
  "virustotal": {"malicious_count": 3, "reputation": -12},
  "feodo_tracker": {"is_malicious": true, "confidence_level": 75, "malware_types": ["Emotet"]},
  "ipinfo": {"city": "Amsterdam", "country": "NL"},
  "threat_score": 72.3,
  "api_status": {"abuseipdb": "success", "virustotal": "success", "feodo_tracker": "success", "ipinfo": "success"}
}`

type testServer struct {
	res      *resources.Resources
	handler  http.Handler
	requests int32
}

func newTestServer(t *testing.T) *testServer {
	ts := &testServer{}
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&ts.requests, 1)
		if strings.HasSuffix(r.URL.Path, "/6.6.6.6") {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"detail": "all providers failed"}`))
			return
		}
		w.Write([]byte(backendReport))
	}))
	t.Cleanup(backend.Close)

	ts.res, _ = resources.InitTestResources(t, backend.URL)
	ts.handler = New("127.0.0.1:0", ts.res).Router()
	return ts
}

func (ts *testServer) do(method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func TestLookupRoute(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/ip/203.0.113.5", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp lookupResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 72.3, resp.Report.ThreatScore)
	assert.True(t, resp.HighRisk)
	assert.Equal(t, []string{
		"Botnet C2 Server Detected for 203.0.113.5!",
		"High Risk IP! Score: 72.3",
	}, resp.Alerts)

	entries, err := ts.res.History.GetHistory("203.0.113.5")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLookupRouteWithoutNotifications(t *testing.T) {
	ts := newTestServer(t)
	require.NoError(t, ts.res.History.SaveSettings(history.Settings{Notifications: false}))

	rec := ts.do(http.MethodGet, "/api/ip/203.0.113.5", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp lookupResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Alerts)
}

func TestLookupRouteErrors(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/ip/not-an-ip", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "not a valid IP address")
	assert.Equal(t, int32(0), atomic.LoadInt32(&ts.requests))

	rec = ts.do(http.MethodGet, "/api/ip/6.6.6.6", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "all providers failed")
}

func TestExportRoute(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/ip/203.0.113.5/export?format=csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="threat_report_203.0.113.5.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), "203.0.113.5,72.3,88,14,NL,3,-12,Yes,75,Amsterdam,NL")

	rec = ts.do(http.MethodGet, "/api/ip/203.0.113.5/export?format=pdf", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))
}

func TestExportRouteRejectsUnknownFormat(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/ip/203.0.113.5/export?format=xml", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, int32(0), atomic.LoadInt32(&ts.requests))
}

func TestHistoryRoutes(t *testing.T) {
	ts := newTestServer(t)
	ts.do(http.MethodGet, "/api/ip/203.0.113.5", nil)
	ts.do(http.MethodGet, "/api/ip/203.0.113.5", nil)

	rec := ts.do(http.MethodGet, "/api/history/203.0.113.5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var record history.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, "203.0.113.5", record.IP)
	assert.Len(t, record.Entries, 2)

	rec = ts.do(http.MethodGet, "/api/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var records []history.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	assert.Len(t, records, 1)

	rec = ts.do(http.MethodDelete, "/api/history/203.0.113.5", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = ts.do(http.MethodDelete, "/api/history/203.0.113.5", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code, "clearing is idempotent")

	rec = ts.do(http.MethodGet, "/api/history/203.0.113.5", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Empty(t, record.Entries)

	rec = ts.do(http.MethodGet, "/api/history/bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecentRoute(t *testing.T) {
	ts := newTestServer(t)
	for _, ip := range []string{"1.1.1.1", "2.2.2.2", "3.3.3.3"} {
		ts.res.History.RecordLookup(ip, history.Entry{Timestamp: "2026-10-19T08:30:00.000Z", ThreatScore: 1})
	}

	rec := ts.do(http.MethodGet, "/api/recent?limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var records []history.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "3.3.3.3", records[0].IP)
	assert.Equal(t, "2.2.2.2", records[1].IP)

	rec = ts.do(http.MethodGet, "/api/recent?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyticsRoute(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/analytics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp analyticsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []analyticsRow{{IP: "No Data"}}, resp.Results)
	assert.Len(t, resp.Sources, 3)

	ts.res.History.RecordLookup("6.6.6.6", history.Entry{Timestamp: "2026-10-19T08:30:00.000Z", ThreatScore: 1})
	ts.res.History.RecordLookup("203.0.113.5", history.Entry{Timestamp: "2026-10-19T08:30:00.000Z", ThreatScore: 1})

	rec = ts.do(http.MethodGet, "/api/analytics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "203.0.113.5", resp.Results[0].IP)
	assert.Equal(t, 72.3, resp.Results[0].ThreatScore)
	assert.Equal(t, 88.0, resp.Results[0].AbuseIPDBScore)
	assert.Equal(t, "6.6.6.6", resp.Results[1].IP)
	assert.NotEmpty(t, resp.Results[1].Error)
	assert.Equal(t, 30.0, resp.Sources[1].Value)
}

func TestSettingsRoutes(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"notifications": true, "autoRefresh": false}`, rec.Body.String())

	rec = ts.do(http.MethodPut, "/api/settings", []byte(`{"autoRefresh": true}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"notifications": true, "autoRefresh": true}`, rec.Body.String())
	assert.Equal(t, history.Settings{Notifications: true, AutoRefresh: true}, ts.res.History.LoadSettings())

	rec = ts.do(http.MethodPut, "/api/settings", []byte(`{`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())

	ts.do(http.MethodGet, "/api/ip/203.0.113.5", nil)
	rec = ts.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `ctiview_lookups_total{result="success"}`)
	assert.Contains(t, rec.Body.String(), "ctiview_lookup_duration_seconds_bucket")
}
