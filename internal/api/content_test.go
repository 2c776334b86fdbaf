package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageUpdateHandler(t *testing.T) {
	t.Run("Successful update", func(t *testing.T) {
		backend := newTestBackend(t)
		srv := newTestServer(backend.server.URL)

		body := `{"page_path": "/content/site/protected", "jcr_content": {"jcr:content/jcr:title": "Title"}}`
		req := httptest.NewRequest("POST", "/content/protected-page", strings.NewReader(body))
		rr := httptest.NewRecorder()

		ProtectedPageUpdateHandler(srv).ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp PageUpdateResponse
		decodeBody(t, rr, &resp)
		assert.True(t, resp.Success)
		assert.Equal(t, "Successfully updated protected page", resp.Message)
		require.NotNil(t, resp.PagePath)
		assert.Equal(t, "/content/site/protected", *resp.PagePath)
	})

	t.Run("Empty payload is a handled failure, not an error", func(t *testing.T) {
		backend := newTestBackend(t)
		srv := newTestServer(backend.server.URL)

		body := `{"page_path": "/content/site/protected", "jcr_content": {}}`
		req := httptest.NewRequest("POST", "/content/protected-page", strings.NewReader(body))
		rr := httptest.NewRecorder()

		ProtectedPageUpdateHandler(srv).ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp PageUpdateResponse
		decodeBody(t, rr, &resp)
		assert.False(t, resp.Success)
		require.NotNil(t, resp.ErrorDetails)
		assert.Contains(t, *resp.ErrorDetails, "no JCR content")
	})

	t.Run("Missing page path is a client error", func(t *testing.T) {
		backend := newTestBackend(t)
		srv := newTestServer(backend.server.URL)

		req := httptest.NewRequest("POST", "/content/protected-page", strings.NewReader(`{}`))
		rr := httptest.NewRecorder()

		ProtectedPageUpdateHandler(srv).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Malformed JSON is a client error", func(t *testing.T) {
		backend := newTestBackend(t)
		srv := newTestServer(backend.server.URL)

		req := httptest.NewRequest("POST", "/content/protected-page", strings.NewReader(`{malformed`))
		rr := httptest.NewRecorder()

		ProtectedPageUpdateHandler(srv).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Wrong method", func(t *testing.T) {
		backend := newTestBackend(t)
		srv := newTestServer(backend.server.URL)

		req := httptest.NewRequest("GET", "/content/protected-page", nil)
		rr := httptest.NewRecorder()

		ProtectedPageUpdateHandler(srv).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	})

	t.Run("Rejected write is a handled failure", func(t *testing.T) {
		backend := newTestBackend(t)
		backend.status = http.StatusForbidden
		srv := newTestServer(backend.server.URL)

		body := `{"page_path": "/content/site/login", "jcr_content": {"a": "b"}}`
		req := httptest.NewRequest("POST", "/content/create-login-page", strings.NewReader(body))
		rr := httptest.NewRecorder()

		LoginPageUpdateHandler(srv).ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp PageUpdateResponse
		decodeBody(t, rr, &resp)
		assert.False(t, resp.Success)
		assert.Equal(t, "Failed to update login page", resp.Message)
	})
}

func TestPageGetHandler(t *testing.T) {
	t.Run("Successful fetch", func(t *testing.T) {
		backend := newTestBackend(t)
		backend.mux.HandleFunc("/content/site/protected.infinity.json", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"jcr:title": "Protected"})
		})
		srv := newTestServer(backend.server.URL)

		body := `{"page_path": "/content/site/protected"}`
		req := httptest.NewRequest("POST", "/content/get-protected-page", strings.NewReader(body))
		rr := httptest.NewRecorder()

		ProtectedPageGetHandler(srv).ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp PageGetResponse
		decodeBody(t, rr, &resp)
		assert.True(t, resp.Success)
		assert.Equal(t, "Protected", resp.PageContent["jcr:title"])
	})

	t.Run("Missing page is a handled failure", func(t *testing.T) {
		backend := newTestBackend(t)
		backend.status = http.StatusNotFound
		srv := newTestServer(backend.server.URL)

		body := `{"page_path": "/content/site/missing"}`
		req := httptest.NewRequest("POST", "/content/get-protected-page", strings.NewReader(body))
		rr := httptest.NewRecorder()

		ProtectedPageGetHandler(srv).ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp PageGetResponse
		decodeBody(t, rr, &resp)
		assert.False(t, resp.Success)
		require.NotNil(t, resp.ErrorDetails)
		assert.Contains(t, *resp.ErrorDetails, "/content/site/missing")
	})
}

func TestErrorPagesCreateHandler(t *testing.T) {
	t.Run("Both pages updated", func(t *testing.T) {
		backend := newTestBackend(t)
		srv := newTestServer(backend.server.URL)

		body := `{
			"page_path_404": "/content/site/404",
			"page_path_500": "/content/site/500",
			"jcr_content_404": {"jcr:content/jcr:title": "Not Found"},
			"jcr_content_500": {"jcr:content/jcr:title": "Server Error"}
		}`
		req := httptest.NewRequest("POST", "/content/create-error-pages", strings.NewReader(body))
		rr := httptest.NewRecorder()

		ErrorPagesCreateHandler(srv).ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp ErrorPagesCreateResponse
		decodeBody(t, rr, &resp)
		assert.True(t, resp.Success)
		assert.Equal(t, "Successfully updated 404 and 500 error pages", resp.Message)
	})

	t.Run("One failing page yields partial success without rollback", func(t *testing.T) {
		backend := newTestBackend(t)
		var wrote404 bool
		backend.mux.HandleFunc("/content/site/404", func(w http.ResponseWriter, r *http.Request) {
			wrote404 = true
			w.WriteHeader(http.StatusOK)
		})
		backend.mux.HandleFunc("/content/site/500", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})
		srv := newTestServer(backend.server.URL)

		body := `{
			"page_path_404": "/content/site/404",
			"page_path_500": "/content/site/500",
			"jcr_content_404": {"jcr:content/jcr:title": "Not Found"},
			"jcr_content_500": {"jcr:content/jcr:title": "Server Error"}
		}`
		req := httptest.NewRequest("POST", "/content/create-error-pages", strings.NewReader(body))
		rr := httptest.NewRecorder()

		ErrorPagesCreateHandler(srv).ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp ErrorPagesCreateResponse
		decodeBody(t, rr, &resp)
		assert.False(t, resp.Success)
		assert.Equal(t, "Partial success: Some error page updates failed", resp.Message)
		require.NotNil(t, resp.ErrorDetails)
		assert.Contains(t, *resp.ErrorDetails, "500 page")
		assert.NotContains(t, *resp.ErrorDetails, "404 page")

		// The 404 write happened and stays in place.
		assert.True(t, wrote404)
	})

	t.Run("Missing payloads fail both without network writes", func(t *testing.T) {
		backend := newTestBackend(t)
		srv := newTestServer(backend.server.URL)

		body := `{"page_path_404": "/content/site/404", "page_path_500": "/content/site/500"}`
		req := httptest.NewRequest("POST", "/content/create-error-pages", strings.NewReader(body))
		rr := httptest.NewRecorder()

		ErrorPagesCreateHandler(srv).ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp ErrorPagesCreateResponse
		decodeBody(t, rr, &resp)
		assert.False(t, resp.Success)
		require.NotNil(t, resp.ErrorDetails)
		assert.Contains(t, *resp.ErrorDetails, "404 page")
		assert.Contains(t, *resp.ErrorDetails, "500 page")
	})
}

func TestErrorPagesGetHandler(t *testing.T) {
	t.Run("Partial retrieval", func(t *testing.T) {
		backend := newTestBackend(t)
		backend.mux.HandleFunc("/content/site/404.infinity.json", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"jcr:title": "Not Found"})
		})
		backend.mux.HandleFunc("/content/site/500.infinity.json", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		srv := newTestServer(backend.server.URL)

		body := `{"page_path_404": "/content/site/404", "page_path_500": "/content/site/500"}`
		req := httptest.NewRequest("POST", "/content/error-pages", strings.NewReader(body))
		rr := httptest.NewRecorder()

		ErrorPagesGetHandler(srv).ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp ErrorPagesGetResponse
		decodeBody(t, rr, &resp)
		assert.False(t, resp.Success)
		assert.Equal(t, "Partially retrieved error pages", resp.Message)
		assert.NotNil(t, resp.Page404)
		assert.Nil(t, resp.Page500)
	})
}

func TestLocaleModifyHandler(t *testing.T) {
	t.Run("No content skips the write", func(t *testing.T) {
		backend := newTestBackend(t)
		srv := newTestServer(backend.server.URL)

		body := `{"page_path": "/content/site"}`
		req := httptest.NewRequest("POST", "/content/modify-locale", strings.NewReader(body))
		rr := httptest.NewRecorder()

		LocaleModifyHandler(srv).ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp LocaleModifyResponse
		decodeBody(t, rr, &resp)
		assert.True(t, resp.Success)
		assert.True(t, resp.Skipped)
	})

	t.Run("Empty content is a handled failure", func(t *testing.T) {
		backend := newTestBackend(t)
		srv := newTestServer(backend.server.URL)

		body := `{"page_path": "/content/site", "jcr_content": {}}`
		req := httptest.NewRequest("POST", "/content/modify-locale", strings.NewReader(body))
		rr := httptest.NewRecorder()

		LocaleModifyHandler(srv).ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp LocaleModifyResponse
		decodeBody(t, rr, &resp)
		assert.False(t, resp.Success)
		assert.False(t, resp.Skipped)
	})

	t.Run("Locale written", func(t *testing.T) {
		backend := newTestBackend(t)
		srv := newTestServer(backend.server.URL)

		body := `{"page_path": "/content/site", "jcr_content": {"jcr:content/locale": "en-nz"}}`
		req := httptest.NewRequest("POST", "/content/modify-locale", strings.NewReader(body))
		rr := httptest.NewRecorder()

		LocaleModifyHandler(srv).ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp LocaleModifyResponse
		decodeBody(t, rr, &resp)
		assert.True(t, resp.Success)
		assert.False(t, resp.Skipped)
	})
}
