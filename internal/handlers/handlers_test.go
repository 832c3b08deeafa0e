package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "gotrip/internal/errors"
	"gotrip/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestPathID(t *testing.T) {
	id := uuid.New()
	c, _ := setupContext(http.MethodGet, "/", "")
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	got, ok := pathID(c, "id")
	assert.True(t, ok)
	assert.Equal(t, id, got)
	assert.Empty(t, c.Errors)

	c, _ = setupContext(http.MethodGet, "/", "")
	c.Params = gin.Params{{Key: "id", Value: "42"}}
	_, ok = pathID(c, "id")
	assert.False(t, ok)
	require.Len(t, c.Errors, 1)
	assert.True(t, apperrors.Is(c.Errors.Last().Err, apperrors.KindNotFound))
}

func TestBindJSONReportsFieldErrors(t *testing.T) {
	c, _ := setupContext(http.MethodPost, "/", `{"email":"not-an-email"}`)
	var req models.LoginRequest

	assert.False(t, bindJSON(c, &req))
	require.Len(t, c.Errors, 1)
	appErr, ok := apperrors.As(c.Errors.Last().Err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindValidation, appErr.Kind)

	fields := map[string]bool{}
	for _, f := range appErr.Fields {
		fields[f.Field] = true
	}
	assert.True(t, fields["email"])
	assert.True(t, fields["password"])
}

func TestBindJSONMalformedBody(t *testing.T) {
	c, _ := setupContext(http.MethodPost, "/", `{"email":`)
	var req models.LoginRequest

	assert.False(t, bindJSON(c, &req))
	assert.True(t, apperrors.Is(c.Errors.Last().Err, apperrors.KindValidation))
}

func TestNoRoute(t *testing.T) {
	c, w := setupContext(http.MethodGet, "/api/missing", "")
	NoRoute(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Route not found"}`, w.Body.String())
}
