package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "EmergencyAssist/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name     string   `json:"name" binding:"required"`
	Severity string   `json:"severity" binding:"required,oneof=low high"`
	Steps    []string `json:"steps" binding:"required,min=1"`
}

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	UseJSONFieldNames()
	r := gin.New()
	r.POST("/bind", func(c *gin.Context) {
		var p payload
		if err := c.ShouldBindJSON(&p); err != nil {
			BindError(c, "Invalid data", err)
			return
		}
		Created(c, p)
	})
	r.GET("/missing", func(c *gin.Context) { Error(c, apperrors.NotFound("Thing not found"), "Failed") })
	r.GET("/broken", func(c *gin.Context) { Error(c, apperrors.New("db down"), "Failed to fetch thing") })
	return r
}

func decode(t *testing.T, w *httptest.ResponseRecorder) ErrorBody {
	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestBindErrorListsFields(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bind", strings.NewReader(`{"name":"x","severity":"mid"}`))
	req.Header.Set("Content-Type", "application/json")
	newEngine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Invalid data", body.Message)
	fields := map[string]string{}
	for _, fe := range body.Errors {
		fields[fe.Field] = fe.Message
	}
	assert.Equal(t, "Must be one of: low, high", fields["severity"])
	assert.Equal(t, "Required", fields["steps"])
}

func TestBindErrorMalformedJSON(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bind", strings.NewReader(`{`))
	req.Header.Set("Content-Type", "application/json")
	newEngine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "body", body.Errors[0].Field)
}

func TestErrorStatusMapping(t *testing.T) {
	r := newEngine()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Thing not found", decode(t, w).Message)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/broken", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to fetch thing", decode(t, w).Message)
}
