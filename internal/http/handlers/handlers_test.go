package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestPostHandler_CreatePost_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &PostHandler{posts: nil}
	r.POST("/posts", handler.CreatePost)

	req, _ := http.NewRequest("POST", "/posts", bytes.NewBufferString(`{"content":"x","celebrity_name":"y"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPostHandler_UpdateReaction_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &PostHandler{posts: nil}
	r.PUT("/posts/:id/reactions", handler.UpdateReaction)

	req, _ := http.NewRequest("PUT", "/posts/post_1/reactions", bytes.NewBufferString(`{"reaction":"like"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReportHandler_CreateReport_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &ReportHandler{svc: nil}
	r.POST("/posts/:id/reports", handler.CreateReport)

	req, _ := http.NewRequest("POST", "/posts/post_1/reports", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCryptoHandler_SendTip_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &CryptoHandler{crypto: nil}
	r.POST("/crypto/tips", handler.SendTip)

	req, _ := http.NewRequest("POST", "/crypto/tips", bytes.NewBufferString(`{"amount":"0.01"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	healthy := NewHealthHandler(map[string]Pinger{
		"storage": func(context.Context) error { return nil },
	})
	r := gin.New()
	r.GET("/health", healthy.Health)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"storage":"healthy"`)

	broken := NewHealthHandler(map[string]Pinger{
		"storage": func(context.Context) error { return errors.New("bolt closed") },
	})
	r = gin.New()
	r.GET("/health", broken.Health)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "bolt closed")
}

func TestWSHandler_RequiresActor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &WSHandler{}
	r.GET("/ws", handler.Handle)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
