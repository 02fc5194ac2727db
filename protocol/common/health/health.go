package health

import (
	"encoding/json"
	"net/http"

	"github.com/basexlabs/basex-oracle/protocol"
)

type ServiceStatus string

const (
	Ready    ServiceStatus = "ready"
	NotReady ServiceStatus = "not_ready"
)

type LivenessStatus string

const (
	Alive LivenessStatus = "alive"
)

type LivenessResponse struct {
	Status LivenessStatus `json:"status"`
}

type ReadinessResponse struct {
	Status   ServiceStatus    `json:"status"`
	Services []ServicesHealth `json:"services"`
}

type ServicesHealth struct {
	Name   string            `json:"name"`
	Status ServiceStatus     `json:"status"`
	Error  string            `json:"error,omitempty"`
	Report map[string]string `json:"report,omitempty"`
}

func NewAliveResponse() LivenessResponse {
	return LivenessResponse{
		Status: Alive,
	}
}

func (r *LivenessResponse) StatusCode() int {
	if r.Status == Alive {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}

func NewReadinessResponse(services []ServicesHealth) ReadinessResponse {
	status := Ready
	for _, component := range services {
		if component.Status != Ready {
			status = NotReady
		}
	}

	return ReadinessResponse{
		Status:   status,
		Services: services,
	}
}

func (r *ReadinessResponse) StatusCode() int {
	if r.Status == Ready {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}

// NewServiceHealth snapshots a reporter. Only failing entries of the health report are kept.
func NewServiceHealth(reporter protocol.HealthReporter) ServicesHealth {
	if reporter == nil {
		return ServicesHealth{Name: "unknown", Status: NotReady, Error: "health reporter is nil"}
	}

	var prettyError string
	status := Ready
	if err := reporter.Ready(); err != nil {
		status = NotReady
		prettyError = err.Error()
	}

	var report map[string]string
	for name, err := range reporter.HealthReport() {
		if err == nil {
			continue
		}
		if report == nil {
			report = make(map[string]string)
		}
		report[name] = err.Error()
	}

	return ServicesHealth{
		Name:   reporter.Name(),
		Status: status,
		Error:  prettyError,
		Report: report,
	}
}

// ReadinessHandler serves the readiness response of reporters over plain net/http.
func ReadinessHandler(reporters ...protocol.HealthReporter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		statuses := make([]ServicesHealth, 0, len(reporters))
		for _, reporter := range reporters {
			statuses = append(statuses, NewServiceHealth(reporter))
		}
		response := NewReadinessResponse(statuses)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(response.StatusCode())
		_ = json.NewEncoder(w).Encode(response)
	})
}
