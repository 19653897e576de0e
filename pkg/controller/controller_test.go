package controller

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/scoir/canis-revreg/pkg/framework"
)

type mockProvider struct {
	ep  *framework.Endpoint
	err error
}

func (m *mockProvider) APIEndpoint() (*framework.Endpoint, error) {
	return m.ep, m.err
}

var ok = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRunner_Handler(t *testing.T) {
	t.Run("api token", func(t *testing.T) {
		r, err := New(&mockProvider{ep: &framework.Endpoint{Host: "localhost", Port: 7779, Token: "secret"}}, ok)
		require.NoError(t, err)

		srv := httptest.NewServer(r.Handler())
		defer srv.Close()

		tests := []struct {
			name   string
			token  string
			status int
		}{
			{"no token", "", http.StatusUnauthorized},
			{"wrong token", "guess", http.StatusUnauthorized},
			{"right token", "secret", http.StatusOK},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				req, err := http.NewRequest(http.MethodGet, srv.URL+"/registries", nil)
				require.NoError(t, err)
				if tt.token != "" {
					req.Header.Set(APIKeyHeaderName, tt.token)
				}

				resp, err := http.DefaultClient.Do(req)
				require.NoError(t, err)
				resp.Body.Close()
				require.Equal(t, tt.status, resp.StatusCode)
			})
		}
	})

	t.Run("open api with cors", func(t *testing.T) {
		r, err := New(&mockProvider{ep: &framework.Endpoint{Host: "localhost", Port: 7779}}, ok)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/registries", nil)
		req.Header.Set("Origin", "http://example.com")
		w := httptest.NewRecorder()

		r.Handler().ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("no endpoint", func(t *testing.T) {
		r, err := New(&mockProvider{err: errors.New("no endpoint")}, ok)
		require.Error(t, err)
		require.Nil(t, r)
	})
}
