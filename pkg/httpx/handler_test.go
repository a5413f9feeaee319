package httpx_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tutora/platform/pkg/errx"
	"github.com/tutora/platform/pkg/httpx"
)

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details"`
	Timestamp string `json:"timestamp"`
}

type envelope struct {
	Success bool       `json:"success"`
	Error   *errorBody `json:"error"`
	Data    any        `json:"data"`
	Message string     `json:"message"`
}

func doWrapped(t *testing.T, h httpx.HandlerFunc) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	rec := httptest.NewRecorder()
	httpx.Wrap(h).ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestWrap(t *testing.T) {
	t.Run("operational errors keep code, message and status", func(t *testing.T) {
		rec, env := doWrapped(t, func(w http.ResponseWriter, r *http.Request) error {
			return errx.NotFound("course not found")
		})

		require.Equal(t, http.StatusNotFound, rec.Code)
		require.False(t, env.Success)
		require.Equal(t, "not_found", env.Error.Code)
		require.Equal(t, "course not found", env.Error.Message)
		require.NotEmpty(t, env.Error.Timestamp)
	})

	t.Run("unexpected errors become generic internal", func(t *testing.T) {
		rec, env := doWrapped(t, func(w http.ResponseWriter, r *http.Request) error {
			return errors.New("pointer dereference deep in a handler")
		})

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Equal(t, "internal_server_error", env.Error.Code)
		// The real message must never leak.
		require.Equal(t, "an unexpected error occurred", env.Error.Message)
		require.NotContains(t, rec.Body.String(), "pointer dereference")
	})

	t.Run("nil error writes nothing extra", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
		rec := httptest.NewRecorder()
		httpx.Wrap(func(w http.ResponseWriter, r *http.Request) error {
			httpx.WriteSuccess(w, http.StatusOK, map[string]int{"n": 1}, "done")
			return nil
		}).ServeHTTP(rec, req)

		var env envelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
		require.True(t, env.Success)
		require.Equal(t, "done", env.Message)
		require.Nil(t, env.Error)
	})
}

func TestRecover(t *testing.T) {
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	handler := httpx.Recover()(panicking)

	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "boom")

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, "internal_server_error", env.Error.Code)
}

func TestNotFoundHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	rec := httptest.NewRecorder()
	httpx.NotFoundHandler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, "not_found", env.Error.Code)
}

func TestWriteSuccessShape(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.WriteSuccess(rec, http.StatusCreated, map[string]string{"id": "c-1"}, "created")

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	require.Equal(t, true, decoded["success"])
	require.Equal(t, "created", decoded["message"])
	require.NotContains(t, decoded, "error")
}
