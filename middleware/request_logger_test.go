package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Capture log output
	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	router := gin.New()
	router.Use(RequestID())
	router.Use(RequestLogger())
	router.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	router.GET("/missing", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	router.GET("/boom", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "boom"})
	})

	tests := []struct {
		path  string
		level string
	}{
		{"/ok", "INFO"},
		{"/missing", "WARN"},
		{"/boom", "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			buf.Reset()

			req := httptest.NewRequest("GET", tt.path+"?x=1", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			out := buf.String()
			if !strings.Contains(out, "request completed") {
				t.Error("Expected request completion log")
			}
			if !strings.Contains(out, tt.level) {
				t.Errorf("Expected %s level log, got: %s", tt.level, out)
			}
			if !strings.Contains(out, tt.path) {
				t.Errorf("Expected path %s in log", tt.path)
			}
			if !strings.Contains(out, "query") {
				t.Error("Expected query string in log")
			}
		})
	}
}
