package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h *Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	r := chi.NewRouter()
	h.Register(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestLivenessAndStatus(t *testing.T) {
	h := New("test")

	w, body := serve(t, h, "/health/live")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alive", body["status"])

	w, body = serve(t, h, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "test", body["environment"])
}

func TestReadiness(t *testing.T) {
	t.Run("ready when all checks pass", func(t *testing.T) {
		h := New("test")
		h.RegisterCheck("postgres", func(context.Context) error { return nil })

		w, body := serve(t, h, "/health/ready")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ready", body["status"])
		assert.Equal(t, map[string]any{"postgres": "up"}, body["checks"])
	})

	t.Run("not ready when a check fails", func(t *testing.T) {
		h := New("test")
		h.RegisterCheck("postgres", func(context.Context) error { return nil })
		h.RegisterCheck("kafka", func(context.Context) error { return errors.New("no brokers") })

		w, body := serve(t, h, "/health/ready")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "not_ready", body["status"])
		checks := body["checks"].(map[string]any)
		assert.Equal(t, "down: no brokers", checks["kafka"])
	})

	t.Run("optional failure degrades but stays ready", func(t *testing.T) {
		h := New("test")
		h.RegisterCheck("postgres", func(context.Context) error { return nil })
		h.RegisterOptional("kafka", func(context.Context) error { return errors.New("no brokers") })

		w, body := serve(t, h, "/health/ready")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "degraded", body["status"])
	})

	t.Run("required failure wins over optional", func(t *testing.T) {
		h := New("test")
		h.RegisterOptional("kafka", func(context.Context) error { return errors.New("no brokers") })
		h.RegisterCheck("redis", func(context.Context) error { return errors.New("refused") })

		w, body := serve(t, h, "/health/ready")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "not_ready", body["status"])
	})

	t.Run("checks run concurrently", func(t *testing.T) {
		h := New("test")
		release := make(chan struct{})
		h.RegisterCheck("a", func(ctx context.Context) error {
			select {
			case <-release:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		h.RegisterCheck("b", func(ctx context.Context) error {
			close(release)
			return nil
		})

		w, _ := serve(t, h, "/health/ready")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("checks receive a bounded context", func(t *testing.T) {
		h := New("test")
		h.RegisterCheck("slow", func(ctx context.Context) error {
			_, ok := ctx.Deadline()
			if !ok {
				return errors.New("no deadline")
			}
			return nil
		})

		w, _ := serve(t, h, "/health/ready")
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
