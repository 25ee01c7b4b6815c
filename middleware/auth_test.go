package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func authTestRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/me", AuthMiddleware(secret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})
	return router
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	router := authTestRouter("secret")

	token, err := IssueToken("secret", 42, time.Hour)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if w.Body.String() != `{"user_id":42}` {
		t.Errorf("Unexpected body: %s", w.Body.String())
	}
}

func TestAuthMiddlewareRejects(t *testing.T) {
	router := authTestRouter("secret")

	expired, err := IssueToken("secret", 42, -time.Minute)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	wrongKey, err := IssueToken("other-secret", 42, time.Hour)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	cases := map[string]string{
		"no header":    "",
		"not bearer":   "Basic abc",
		"garbage":      "Bearer not-a-token",
		"expired":      "Bearer " + expired,
		"wrong secret": "Bearer " + wrongKey,
	}
	for name, header := range cases {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", name, w.Code)
		}
	}
}
