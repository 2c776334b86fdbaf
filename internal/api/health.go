package api

import (
	"net/http"

	"github.com/buildeasy/webverse/internal/server"
	"github.com/buildeasy/webverse/internal/version"
	"github.com/buildeasy/webverse/pkg/aem"
)

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Environment string `json:"environment,omitempty"`
}

// AEMHealthResponse reports backend reachability.
type AEMHealthResponse struct {
	Status         string `json:"status"`
	AEM            string `json:"aem"`
	Host           string `json:"host"`
	Authentication struct {
		Method   string `json:"method"`
		Username string `json:"username"`
	} `json:"authentication"`
	Error *string `json:"error,omitempty"`
}

// HealthHandler reports service liveness.
// Route: GET /health
func HealthHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		respondJSON(w, srv.Logger, http.StatusOK, HealthResponse{
			Status:      "healthy",
			Version:     version.Version,
			Environment: srv.Config.Environment,
		})
	})
}

// AEMHealthHandler probes the AEM instance and reports its reachability.
// A failed probe is reported as an unhealthy status, never as an error
// response.
// Route: GET /health/aem
func AEMHealthHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		resp := AEMHealthResponse{Host: srv.AEM.Host}
		resp.Authentication.Method = "basic_auth"
		resp.Authentication.Username = srv.AEM.Username

		client, err := aem.NewClient(r.Context(), srv.AEM, srv.Logger)
		if err != nil {
			srv.Logger.Error("AEM health check failed", "error", err)
			resp.Status = "unhealthy"
			resp.AEM = "error"
			resp.Error = stringPtr(err.Error())
			respondJSON(w, srv.Logger, http.StatusOK, resp)
			return
		}
		defer client.Close()

		if client.TestConnection(r.Context()) {
			resp.Status = "healthy"
			resp.AEM = "connected"
		} else {
			resp.Status = "unhealthy"
			resp.AEM = "disconnected"
		}

		respondJSON(w, srv.Logger, http.StatusOK, resp)
	})
}

// RootResponse is the service info payload.
type RootResponse struct {
	Message     string `json:"message"`
	Version     string `json:"version"`
	Status      string `json:"status"`
	Environment string `json:"environment,omitempty"`
}

// RootHandler reports basic service info.
// Route: GET /
func RootHandler(srv server.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		respondJSON(w, srv.Logger, http.StatusOK, RootResponse{
			Message:     "WebVerse Content Authoring API",
			Version:     version.Version,
			Status:      "running",
			Environment: srv.Config.Environment,
		})
	})
}
