package content

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildeasy/webverse/pkg/aem"
)

// newCountingClient returns a client against a stub AEM that records how
// many content calls (anything but the token fetch) it receives.
func newCountingClient(t *testing.T, status int) (*aem.Client, *atomic.Int32) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/libs/granite/csrf/token.json", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"token": "tok"})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(status)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := aem.NewClient(context.Background(), &aem.Config{
		Host:     server.URL,
		Username: "content-service",
		Password: "secret",
		Timeout:  5 * time.Second,
	}, hclog.NewNullLogger())
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return client, &calls
}

func TestUpdateHelpersSucceedOn2xx(t *testing.T) {
	client, _ := newCountingClient(t, http.StatusOK)
	log := hclog.NewNullLogger()
	ctx := context.Background()
	props := map[string]any{"jcr:content/jcr:title": "Title"}

	tests := []struct {
		name   string
		update func() UpdateResult
	}{
		{"ErrorPage", func() UpdateResult {
			return UpdateErrorPage(ctx, client, log, "/content/site/404", "404", props)
		}},
		{"ProtectedPage", func() UpdateResult {
			return UpdateProtectedPage(ctx, client, log, "/content/site/protected", props)
		}},
		{"ModalPopup", func() UpdateResult {
			return UpdateModalPopup(ctx, client, log, "/content/site/popup", props)
		}},
		{"LoginPage", func() UpdateResult {
			return UpdateLoginPage(ctx, client, log, "/content/site/login", props)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.update()
			assert.True(t, result.Success)
			assert.NotEmpty(t, result.PagePath)
			assert.NoError(t, result.Err)
		})
	}
}

func TestUpdateHelpersRejectEmptyPayloadWithoutNetworkCalls(t *testing.T) {
	client, calls := newCountingClient(t, http.StatusOK)
	log := hclog.NewNullLogger()
	ctx := context.Background()

	for _, payload := range []map[string]any{nil, {}} {
		result := UpdateProtectedPage(ctx, client, log, "/content/site/protected", payload)

		assert.False(t, result.Success)
		assert.ErrorIs(t, result.Err, aem.ErrMissingContent)
	}

	assert.Equal(t, int32(0), calls.Load())
}

func TestUpdateHelperReportsWriteFailure(t *testing.T) {
	client, _ := newCountingClient(t, http.StatusForbidden)
	log := hclog.NewNullLogger()

	result := UpdateLoginPage(context.Background(), client, log,
		"/content/site/login", map[string]any{"a": "b"})

	assert.False(t, result.Success)
	require.Error(t, result.Err)

	var writeErr *aem.WriteError
	assert.ErrorAs(t, result.Err, &writeErr)
	assert.Equal(t, "/content/site/login", result.PagePath)
}

func TestModifyLocale(t *testing.T) {
	log := hclog.NewNullLogger()
	ctx := context.Background()

	t.Run("Nil payload skips without network calls", func(t *testing.T) {
		client, calls := newCountingClient(t, http.StatusOK)

		result := ModifyLocale(ctx, client, log, "/content/site", nil)

		assert.True(t, result.Success)
		assert.True(t, result.Skipped)
		assert.Equal(t, int32(0), calls.Load())
	})

	t.Run("Empty payload is a caller error", func(t *testing.T) {
		client, calls := newCountingClient(t, http.StatusOK)

		result := ModifyLocale(ctx, client, log, "/content/site", map[string]any{})

		assert.False(t, result.Success)
		assert.ErrorIs(t, result.Err, aem.ErrMissingContent)
		assert.Equal(t, int32(0), calls.Load())
	})

	t.Run("Non-empty payload writes", func(t *testing.T) {
		client, calls := newCountingClient(t, http.StatusOK)

		result := ModifyLocale(ctx, client, log, "/content/site",
			map[string]any{"jcr:content/locale": "en-nz"})

		assert.True(t, result.Success)
		assert.False(t, result.Skipped)
		assert.Equal(t, int32(1), calls.Load())
	})
}
