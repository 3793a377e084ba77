package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/taxsim/internal/domain/shared"
	"github.com/erp/taxsim/internal/domain/simulation"
	"github.com/erp/taxsim/internal/interfaces/http/dto"
	"github.com/erp/taxsim/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serveError(t *testing.T, err error) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()
	h := &BaseHandler{}
	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.GET("/err", func(c *gin.Context) { h.HandleError(c, err) })

	req := httptest.NewRequest(http.MethodGet, "/err", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", simulation.ErrSimulationNotFound, http.StatusNotFound, dto.ErrCodeSimulationNotFound},
		{"wrapped conflict", fmt.Errorf("update: %w", shared.ErrConcurrencyConflict), http.StatusConflict, dto.ErrCodeConcurrencyConflict},
		{"invalid state", shared.ErrInvalidState, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState},
		{"index", simulation.ErrItemIndexOutOfRange, http.StatusBadRequest, dto.ErrCodeInvalidIndex},
		{"plain error", errors.New("disk on fire"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := serveError(t, tt.err)
			assert.Equal(t, tt.status, w.Code)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, "req-42", resp.Error.RequestID)
		})
	}
}

func TestBaseHandler_HandleError_HidesInternalMessage(t *testing.T) {
	_, resp := serveError(t, errors.New("password=hunter2"))
	assert.NotContains(t, resp.Error.Message, "hunter2")
}

func TestBaseHandler_ParseIDs(t *testing.T) {
	h := &BaseHandler{}
	engine := gin.New()
	engine.GET("/sim/:id", func(c *gin.Context) {
		if id, ok := h.parseSimulationID(c); ok {
			c.String(http.StatusOK, "%d", id)
		}
	})
	engine.GET("/draft/:draft_id", func(c *gin.Context) {
		if id, ok := h.parseDraftID(c); ok {
			c.String(http.StatusOK, id.String())
		}
	})

	cases := []struct {
		path   string
		status int
	}{
		{"/sim/12", http.StatusOK},
		{"/sim/0", http.StatusBadRequest},
		{"/sim/x", http.StatusBadRequest},
		{"/draft/7a1f3c52-6a51-4d4e-9f1a-1b2c3d4e5f60", http.StatusOK},
		{"/draft/nope", http.StatusBadRequest},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))
		assert.Equal(t, tc.status, w.Code, tc.path)
	}
}
