// Package server exposes the lookup, history, analytics and settings views
// as a JSON HTTP API
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/activecm/ctiview/datatypes/threat"
	"github.com/activecm/ctiview/history"
	"github.com/activecm/ctiview/intel"
	"github.com/activecm/ctiview/printing"
	"github.com/activecm/ctiview/reporting"
	"github.com/activecm/ctiview/resources"
	"github.com/activecm/ctiview/util"
	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// shutdownGrace bounds how long in flight requests may take once the
// server is asked to stop
const shutdownGrace = 5 * time.Second

type (
	// Server serves the ctiview API on top of a resource bundle
	Server struct {
		Address string
		res     *resources.Resources
		router  *mux.Router
	}

	// lookupResponse is the IP detail view
	lookupResponse struct {
		Report   *threat.Report `json:"report"`
		HighRisk bool           `json:"high_risk"`
		Alerts   []string       `json:"alerts"`
	}

	// analyticsRow is one bar of the analytics view
	analyticsRow struct {
		IP             string  `json:"ip"`
		ThreatScore    float64 `json:"threat_score"`
		AbuseIPDBScore float64 `json:"abuseipdb_score"`
		Error          string  `json:"error,omitempty"`
	}

	// analyticsResponse is the analytics view: per IP scores and the
	// threat sources of the first IP
	analyticsResponse struct {
		Results []analyticsRow     `json:"results"`
		Sources []threat.Indicator `json:"sources"`
	}

	errorResponse struct {
		Detail string `json:"detail"`
	}
)

// New creates a server listening on address once started
func New(address string, res *resources.Resources) *Server {
	s := &Server{Address: address, res: res, router: mux.NewRouter()}
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/ip/{ip}", s.handleLookup).Methods(http.MethodGet)
	api.HandleFunc("/ip/{ip}/export", s.handleExport).Methods(http.MethodGet)
	api.HandleFunc("/history", s.handleHistory).Methods(http.MethodGet)
	api.HandleFunc("/history/{ip}", s.handleIPHistory).Methods(http.MethodGet)
	api.HandleFunc("/history/{ip}", s.handleClearHistory).Methods(http.MethodDelete)
	api.HandleFunc("/recent", s.handleRecent).Methods(http.MethodGet)
	api.HandleFunc("/analytics", s.handleAnalytics).Methods(http.MethodGet)
	api.HandleFunc("/settings", s.handleGetSettings).Methods(http.MethodGet)
	api.HandleFunc("/settings", s.handleSaveSettings).Methods(http.MethodPut)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler())
	s.router.Use(s.logRequests)
}

// Router exposes the handler, mostly for tests
func (s *Server) Router() http.Handler { return s.router }

// Start serves until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.Address, Handler: s.router}

	errs := make(chan error, 1)
	go func() {
		s.res.Log.WithFields(log.Fields{
			"address": s.Address,
		}).Info("Starting API server")
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.res.Log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		}).Debug("Handled API request")
	})
}

// lookup runs a lookup and records its metrics. On failure the error
// response has already been written.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request, ip string) (*threat.Report, bool) {
	start := time.Now()
	report, err := s.res.Client.Lookup(r.Context(), ip)

	var validationErr *intel.ValidationError
	switch {
	case errors.As(err, &validationErr):
		lookupsTotal.WithLabelValues(resultInvalid).Inc()
		writeError(w, http.StatusBadRequest, err)
		return nil, false
	case err != nil:
		lookupDuration.Observe(time.Since(start).Seconds())
		lookupsTotal.WithLabelValues(resultError).Inc()
		writeError(w, http.StatusBadGateway, err)
		return nil, false
	}

	lookupDuration.Observe(time.Since(start).Seconds())
	lookupsTotal.WithLabelValues(resultSuccess).Inc()
	return report, true
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	report, ok := s.lookup(w, r, mux.Vars(r)["ip"])
	if !ok {
		return
	}

	threshold := s.res.Config.S.Risk.HighRiskThreshold
	resp := lookupResponse{
		Report:   report,
		HighRisk: report.IsHighRisk(threshold),
		Alerts:   []string{},
	}
	if s.res.History.LoadSettings().Notifications {
		if alerts := printing.Alerts(report, threshold); alerts != nil {
			resp.Alerts = alerts
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = reporting.FormatJSON
	}
	if !util.StringInSlice(format, reporting.Formats) {
		writeError(w, http.StatusBadRequest, &reporting.FormatError{Format: format})
		return
	}

	report, ok := s.lookup(w, r, mux.Vars(r)["ip"])
	if !ok {
		return
	}

	artifact, err := reporting.Export(report, format)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	exportsTotal.WithLabelValues(format).Inc()

	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+artifact.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(artifact.Data)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	records, err := s.res.History.Records(0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleIPHistory(w http.ResponseWriter, r *http.Request) {
	ip := mux.Vars(r)["ip"]
	if !intel.ValidIP(ip) {
		writeError(w, http.StatusBadRequest, &intel.ValidationError{IP: ip})
		return
	}
	entries, err := s.res.History.GetHistory(ip)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, history.Record{IP: ip, Entries: entries})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	ip := mux.Vars(r)["ip"]
	if !intel.ValidIP(ip) {
		writeError(w, http.StatusBadRequest, &intel.ValidationError{IP: ip})
		return
	}
	if err := s.res.History.ClearHistory(ip); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// recentLimit reads the limit query parameter, falling back to the
// configured dashboard size
func (s *Server) recentLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return s.res.Config.S.History.RecentLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, errors.New("limit must be a non negative integer")
	}
	return limit, nil
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit, err := s.recentLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	records, err := s.res.History.Records(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	limit, err := s.recentLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ips, err := s.res.History.ListRecentIPs(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	results := s.res.Client.LookupMany(r.Context(), ips, nil)
	writeJSON(w, http.StatusOK, buildAnalytics(results))
}

func buildAnalytics(results []intel.Result) analyticsResponse {
	resp := analyticsResponse{Results: []analyticsRow{}}
	var first *threat.Report

	for _, result := range results {
		if result.Err != nil {
			resp.Results = append(resp.Results, analyticsRow{IP: result.IP, Error: result.Err.Error()})
			continue
		}
		if first == nil {
			first = result.Report
		}
		resp.Results = append(resp.Results, analyticsRow{
			IP:             result.IP,
			ThreatScore:    result.Report.ThreatScore,
			AbuseIPDBScore: result.Report.AbuseIPDB.ConfidenceScore,
		})
	}

	if len(resp.Results) == 0 {
		resp.Results = append(resp.Results, analyticsRow{IP: printing.NoDataLabel})
	}
	if first == nil {
		first = &threat.Report{IP: printing.NoDataLabel}
	}
	resp.Sources = first.Indicators()
	return resp
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.res.History.LoadSettings())
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	settings := s.res.History.LoadSettings()
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.res.History.SaveSettings(settings); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Detail: err.Error()})
}
