package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestClientIdentityUsesForwardedFor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ClientIdentity())
	router.GET("/api/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetClientIdentity(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	req.Header.Set("X-Forwarded-For", " 203.0.113.9 , 10.0.0.1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Body.String() != "203.0.113.9" {
		t.Fatalf("unexpected identity: %q", resp.Body.String())
	}

	direct := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	direct.RemoteAddr = "198.51.100.4:5555"
	directResp := httptest.NewRecorder()
	router.ServeHTTP(directResp, direct)
	if directResp.Body.String() != "198.51.100.4" {
		t.Fatalf("unexpected identity: %q", directResp.Body.String())
	}
}
