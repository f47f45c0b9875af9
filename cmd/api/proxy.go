package main

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kalpovskii/taskboard/internal/logging"
)

// hopHeaders are connection-scoped and never forwarded.
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

type proxy struct {
	upstream string
	client   *http.Client
	log      *slog.Logger
}

func setupRouter(p *proxy, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logging.GinMiddleware(logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Any("/tasks", p.forward)
	api.Any("/tasks/*path", p.forward)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Route not found"})
	})

	return r
}

// forward replays the request against the task service with the /api prefix
// stripped, then copies the upstream status, headers and body back.
func (p *proxy) forward(c *gin.Context) {
	target := p.upstream + strings.TrimPrefix(c.Request.URL.Path, "/api")
	if c.Request.URL.RawQuery != "" {
		target += "?" + c.Request.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, target, c.Request.Body)
	if err != nil {
		p.fail(c, err)
		return
	}
	req.Header = c.Request.Header.Clone()
	removeHopHeaders(req.Header)

	resp, err := p.client.Do(req)
	if err != nil {
		p.fail(c, err)
		return
	}
	defer resp.Body.Close()

	removeHopHeaders(resp.Header)
	for k, vs := range resp.Header {
		for _, v := range vs {
			c.Writer.Header().Add(k, v)
		}
	}
	c.Status(resp.StatusCode)
	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		p.log.WarnContext(c.Request.Context(), "copy upstream body", slog.Any("error", err))
	}
}

func (p *proxy) fail(c *gin.Context, err error) {
	p.log.ErrorContext(c.Request.Context(), "upstream request failed",
		slog.String("upstream", p.upstream), slog.Any("error", err))
	c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"success": false, "message": "Upstream service unavailable"})
}

func removeHopHeaders(h http.Header) {
	for _, k := range hopHeaders {
		h.Del(k)
	}
}
