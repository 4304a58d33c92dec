package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vitorcape/homeclima/pkg/storage/storagemock"
	"github.com/vitorcape/homeclima/pkg/types"
)

func TestSetupHandler(t *testing.T) {
	t.Run("Healthz", func(t *testing.T) {
		srv := newTestServer(&storagemock.MockDatabase{}, nil, nil)
		srv.serverName = "homeclima-test"
		h := srv.setupHandler()

		req := httptest.NewRequest("GET", "/healthz", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		resp := w.Result()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "ok", w.Body.String())
		assert.Equal(t, "homeclima-test", resp.Header.Get("Server"))
	})

	t.Run("Metrics Endpoint Is Mounted", func(t *testing.T) {
		srv := newTestServer(&storagemock.MockDatabase{}, nil, nil)
		h := srv.setupHandler()

		req := httptest.NewRequest("GET", "/metrics", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Result().StatusCode)
	})

	t.Run("Ingest Rejects GET", func(t *testing.T) {
		srv := newTestServer(&storagemock.MockDatabase{}, nil, nil)
		h := srv.setupHandler()

		req := httptest.NewRequest("GET", "/api/ingest", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusMethodNotAllowed, w.Result().StatusCode)
	})

	t.Run("Unknown API Route Returns 404", func(t *testing.T) {
		srv := newTestServer(&storagemock.MockDatabase{}, nil, nil)
		h := srv.setupHandler()

		req := httptest.NewRequest("GET", "/api/nope", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Result().StatusCode)
	})

	t.Run("Routes Readings Through Middleware", func(t *testing.T) {
		mockS := &storagemock.MockDatabase{}
		mockS.On("ReadingsSince", mock.Anything, "", time.Time{}, 0).Return([]types.Reading{}, nil)

		srv := newTestServer(mockS, nil, nil)
		h := srv.setupHandler()

		req := httptest.NewRequest("GET", "/api/readings", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Result().StatusCode)
		mockS.AssertCalled(t, "ReadingsSince", mock.Anything, "", time.Time{}, 0)
	})
}

func TestRun(t *testing.T) {
	t.Run("Shuts Down On Context Cancel", func(t *testing.T) {
		srv := newTestServer(&storagemock.MockDatabase{}, nil, nil)
		srv.listenAddr = "127.0.0.1:0"

		ctx, cancel := context.WithCancel(context.Background())
		errChan := make(chan error, 1)
		go func() {
			errChan <- srv.Run(ctx)
		}()

		// give the listener a moment to come up before canceling
		time.Sleep(100 * time.Millisecond)
		cancel()

		select {
		case err := <-errChan:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("server did not shut down")
		}
	})
}
