package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRequestValidation(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RequestValidation()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec, c
}

func TestRequestValidationSetsRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil)
	rec, c := runRequestValidation(t, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	id, ok := c.Get("request_id").(string)
	require.True(t, ok)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, rec.Header().Get("X-Request-ID"))
}

func TestRequestValidationRejectsOversizedPost(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", strings.NewReader("{}"))
	req.ContentLength = maxPostBodyBytes + 1
	rec, _ := runRequestValidation(t, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRequestValidationAllowsPostAtLimit(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", strings.NewReader("{}"))
	req.ContentLength = maxPostBodyBytes
	rec, _ := runRequestValidation(t, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
