package common

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSONResponse(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteJSONResponse(rec, map[string]int{"count": 3}, http.StatusOK)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body["count"])
}

func TestWriteErrorResponse(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteErrorResponse(rec, "not found", http.StatusNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not found", body["error"])
}

func TestGetAndValidateURLParam(t *testing.T) {
	t.Parallel()

	requestWithParam := func(value string) *http.Request {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("name", value)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	got, err := GetAndValidateURLParam(requestWithParam("Floating%20Points"), "name")
	require.NoError(t, err)
	assert.Equal(t, "Floating Points", got)

	_, err = GetAndValidateURLParam(requestWithParam(""), "name")
	assert.Error(t, err)

	_, err = GetAndValidateURLParam(requestWithParam("%20%20"), "name")
	assert.Error(t, err)

	_, err = GetAndValidateURLParam(requestWithParam("%zz"), "name")
	assert.Error(t, err)
}
