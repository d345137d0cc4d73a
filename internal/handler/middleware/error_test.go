//go:build unit

package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront-api/internal/handler/httperr"
	"storefront-api/internal/handler/middleware"
	"storefront-api/internal/pkg/errs"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newErrorTestRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.CustomRecovery())
	router.Use(middleware.ErrorHandler())
	router.GET("/failing", handler)
	return router
}

func doErrorTestRequest(router *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/failing", nil)
	router.ServeHTTP(w, req)
	return w
}

func TestErrorHandler_RendersPublicMetaWhenHandlerWroteNothing(t *testing.T) {
	router := newErrorTestRouter(func(c *gin.Context) {
		resp := httperr.Response{Status: http.StatusConflict, Success: false}
		resp.Error.Message = "Resource conflict"
		_ = c.Error(&gin.Error{
			Err:  errs.New("version mismatch"),
			Type: gin.ErrorTypePublic,
			Meta: resp,
		})
	})

	w := doErrorTestRequest(router)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Resource conflict")
}

func TestErrorHandler_AbortWithErrorBodySurvivesMiddleware(t *testing.T) {
	router := newErrorTestRouter(func(c *gin.Context) {
		httperr.AbortWithError(c, http.StatusServiceUnavailable,
			errs.New("pool acquire failed"), "Service temporarily unavailable", nil)
	})

	w := doErrorTestRequest(router)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "Service temporarily unavailable", body.Error.Message)
}

func TestErrorHandler_FallsBackToInternalErrorOnUnhandledError(t *testing.T) {
	router := newErrorTestRouter(func(c *gin.Context) {
		_ = c.Error(errs.New("boom"))
	})

	w := doErrorTestRequest(router)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
}

func TestCustomRecovery_PanicBecomesInternalError(t *testing.T) {
	router := newErrorTestRouter(func(c *gin.Context) {
		panic("handler exploded")
	})

	w := doErrorTestRequest(router)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
}
