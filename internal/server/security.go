package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/conneroisu/prime-website/internal/logging"
)

// SecurityConfig holds the response headers applied to every request.
type SecurityConfig struct {
	CSP                 *CSPConfig
	XFrameOptions       string
	XContentTypeNoSniff bool
	ReferrerPolicy      string
}

// CSPConfig holds Content Security Policy configuration
type CSPConfig struct {
	DefaultSrc []string
	ScriptSrc  []string
	StyleSrc   []string
	ImgSrc     []string
	ConnectSrc []string
	ObjectSrc  []string
}

// DefaultSecurityConfig allows same-origin assets and the live-reload socket.
func DefaultSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		CSP: &CSPConfig{
			DefaultSrc: []string{"'self'"},
			ScriptSrc:  []string{"'self'"},
			StyleSrc:   []string{"'self'", "'unsafe-inline'"},
			ImgSrc:     []string{"'self'", "data:"},
			ConnectSrc: []string{"'self'", "ws:", "wss:"},
			ObjectSrc:  []string{"'none'"},
		},
		XFrameOptions:       "DENY",
		XContentTypeNoSniff: true,
		ReferrerPolicy:      "strict-origin-when-cross-origin",
	}
}

// SecurityMiddleware creates a security middleware with the given configuration
func SecurityMiddleware(secConfig *SecurityConfig) func(http.Handler) http.Handler {
	if secConfig == nil {
		secConfig = DefaultSecurityConfig()
	}
	csp := ""
	if secConfig.CSP != nil {
		csp = buildCSPHeader(secConfig.CSP)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if csp != "" {
				h.Set("Content-Security-Policy", csp)
			}
			if secConfig.XFrameOptions != "" {
				h.Set("X-Frame-Options", secConfig.XFrameOptions)
			}
			if secConfig.XContentTypeNoSniff {
				h.Set("X-Content-Type-Options", "nosniff")
			}
			if secConfig.ReferrerPolicy != "" {
				h.Set("Referrer-Policy", secConfig.ReferrerPolicy)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// buildCSPHeader constructs the Content-Security-Policy header value
func buildCSPHeader(csp *CSPConfig) string {
	var directives []string
	add := func(name string, values []string) {
		if len(values) > 0 {
			directives = append(directives, name+" "+strings.Join(values, " "))
		}
	}

	add("default-src", csp.DefaultSrc)
	add("script-src", csp.ScriptSrc)
	add("style-src", csp.StyleSrc)
	add("img-src", csp.ImgSrc)
	add("connect-src", csp.ConnectSrc)
	add("object-src", csp.ObjectSrc)

	return strings.Join(directives, "; ")
}

// requestLogger logs one line per request at debug level, and at warn level
// for server errors.
func requestLogger(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			fields := []interface{}{
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			}
			if ww.Status() >= http.StatusInternalServerError {
				logger.Warn(r.Context(), nil, "Request failed", fields...)
				return
			}
			logger.Debug(r.Context(), "Request served", fields...)
		})
	}
}
