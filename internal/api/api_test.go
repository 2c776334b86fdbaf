package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/buildeasy/webverse/internal/config"
	"github.com/buildeasy/webverse/internal/server"
	"github.com/buildeasy/webverse/pkg/aem"
)

// testBackend is a stub AEM instance for handler tests. Routes registered on
// mux override the default handler, which answers every request with status.
type testBackend struct {
	mux    *http.ServeMux
	server *httptest.Server

	// status is the response code for unrouted requests.
	status int
}

func newTestBackend(t *testing.T) *testBackend {
	t.Helper()

	backend := &testBackend{mux: http.NewServeMux(), status: http.StatusOK}

	outer := http.NewServeMux()
	outer.HandleFunc("/libs/granite/csrf/token.json", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"token": "test-token"})
	})
	outer.HandleFunc("/libs/granite/core/content/login.html", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	outer.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if _, pattern := backend.mux.Handler(r); pattern != "" {
			backend.mux.ServeHTTP(w, r)
			return
		}
		w.WriteHeader(backend.status)
	})

	backend.server = httptest.NewServer(outer)
	t.Cleanup(backend.server.Close)

	return backend
}

// newTestServer builds the handler dependency struct against a backend URL.
func newTestServer(host string) server.Server {
	return server.Server{
		Config: &config.Config{Environment: "test"},
		AEM: &aem.Config{
			Host:     host,
			Username: "content-service",
			Password: "secret",
			Timeout:  5 * time.Second,
		},
		Logger: hclog.NewNullLogger(),
	}
}

// unreachableHost returns a URL nothing listens on.
func unreachableHost(t *testing.T) string {
	t.Helper()

	dead := httptest.NewServer(http.NotFoundHandler())
	url := dead.URL
	dead.Close()
	return url
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()

	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
}
