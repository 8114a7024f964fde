// Package prometheus serves the process metrics and service health over HTTP.
package prometheus

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"runtime/pprof"
	"sort"
	"time"

	"github.com/eth2353/admission/runtime"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "prometheus")

// Service provides Prometheus metrics via the /metrics route. This route will
// show all the metrics registered with the Prometheus DefaultRegisterer.
type Service struct {
	server      *http.Server
	svcRegistry *runtime.ServiceRegistry
	failStatus  error
}

// Handler represents a path and handler func to serve on the same port as /metrics, /healthz, /goroutinez, etc.
type Handler struct {
	Path    string
	Handler func(http.ResponseWriter, *http.Request)
}

// NewService sets up a new instance for a given address host:port.
// An empty host will match with any IP so an address like ":2121" is perfectly acceptable.
func NewService(addr string, svcRegistry *runtime.ServiceRegistry, additionalHandlers ...Handler) *Service {
	s := &Service{svcRegistry: svcRegistry}
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router(additionalHandlers...),
		ReadHeaderTimeout: time.Second,
	}
	return s
}

func (s *Service) router(additionalHandlers ...Handler) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.healthzHandler).Methods(http.MethodGet)
	r.HandleFunc("/goroutinez", s.goroutinezHandler).Methods(http.MethodGet)
	for _, h := range additionalHandlers {
		r.HandleFunc(h.Path, h.Handler)
	}
	return r
}

func (s *Service) healthzHandler(w http.ResponseWriter, r *http.Request) {
	response := generatedResponse{}

	type serviceStatus struct {
		Name   string `json:"service"`
		Status bool   `json:"status"`
		Err    string `json:"error"`
	}
	var hasError bool
	var statuses []serviceStatus
	for k, v := range s.svcRegistry.Statuses() {
		st := serviceStatus{Name: k.String(), Status: true}
		if v != nil {
			st.Status = false
			st.Err = v.Error()
			hasError = true
		}
		statuses = append(statuses, st)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })
	response.Data = statuses

	// Convert statuses to bytes array.
	var buf bytes.Buffer
	for _, st := range statuses {
		status := "OK"
		if !st.Status {
			status = "ERROR " + st.Err
		}
		if _, err := fmt.Fprintf(&buf, "%s: %s\n", st.Name, status); err != nil {
			response.Err = err.Error()
			break
		}
	}
	if negotiateContentType(r) == contentTypePlainText {
		response.Data = buf
	}

	code := http.StatusOK
	if hasError {
		code = http.StatusInternalServerError
	}
	if err := writeResponse(w, r, code, response); err != nil {
		log.WithError(err).Error("Could not write healthz response")
	}
}

func (s *Service) goroutinezHandler(w http.ResponseWriter, _ *http.Request) {
	if err := pprof.Lookup("goroutine").WriteTo(w, 2); err != nil {
		log.WithError(err).Error("Could not write goroutine stacks")
	}
}

// Start the prometheus service.
func (s *Service) Start() {
	log.WithField("endpoint", s.server.Addr).Info("Starting service")
	go func() {
		err := s.server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.WithError(err).Errorf("Could not listen to host:port :%s", s.server.Addr)
			s.failStatus = err
		}
	}()
}

// Stop the service gracefully.
func (s *Service) Stop() error {
	log.Info("Stopping service")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Status checks for any service failure conditions.
func (s *Service) Status() error {
	return s.failStatus
}
