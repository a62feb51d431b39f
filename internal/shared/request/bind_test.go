package request

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type sample struct {
	Title string `json:"title"`
}

func bind(body string) (*httptest.ResponseRecorder, bool, sample) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var s sample
	ok := BindJSON(c, &s)
	return w, ok, s
}

func TestBindJSON(t *testing.T) {
	_, ok, s := bind(`{"title":"T"}`)
	assert.True(t, ok)
	assert.Equal(t, "T", s.Title)
}

func TestBindJSONRejectsUnknownFields(t *testing.T) {
	w, ok, _ := bind(`{"title":"T","ownerId":"x"}`)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid request body")
}

func TestBindJSONRejectsMalformed(t *testing.T) {
	for _, body := range []string{"", "{", `{"title": 5}`} {
		w, ok, _ := bind(body)
		assert.False(t, ok, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}
