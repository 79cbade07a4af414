package mockapi_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mestawet/gebeya/internal/mockapi"
	"github.com/mestawet/gebeya/pkg/auth"
)

func TestRegisterRequiresNameParts(t *testing.T) {
	ts := httptest.NewServer(mockapi.New().Router())
	defer ts.Close()

	body := strings.NewReader(`{"email": "a@example.com", "password": "pw"}`)
	resp, err := http.Post(ts.URL+"/auth/register", "application/json", body)
	assert.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestModerationIsAdminOnly(t *testing.T) {
	ts := httptest.NewServer(mockapi.New().Router())
	defer ts.Close()

	token, err := auth.GenerateToken(7, "user")
	assert.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/vendors/applications", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	assert.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAuthRequired(t *testing.T) {
	ts := httptest.NewServer(mockapi.New().Router())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/orders", "application/json", nil)
	assert.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := httptest.NewServer(mockapi.New().Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")
}
