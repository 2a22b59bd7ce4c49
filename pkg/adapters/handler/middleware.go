package handler

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/ChoisMath/edutech/pkg/config"
)

type Middleware struct {
	allowedOrigins []string
}

func NewMiddleware(cfg *config.Config) *Middleware {
	return &Middleware{
		allowedOrigins: splitOrigins(cfg.AllowedOrigins),
	}
}

func splitOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// RequestLogger writes one log line per request.
func (m *Middleware) RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		log.Printf("request method=%s path=%s status=%d bytes=%d duration=%s remote=%s",
			r.Method,
			r.URL.Path,
			status,
			ww.BytesWritten(),
			time.Since(start).Round(time.Microsecond),
			r.RemoteAddr,
		)
	})
}

// Wrap applies the server middleware chain: request log outermost, so a
// recovered panic is still logged with its 500.
func (m *Middleware) Wrap(h http.Handler) http.Handler {
	return m.RequestLogger(middleware.Recoverer(m.CORS(h)))
}

// CORS lets the configured origins call the JSON API from a browser.
// An origin list of "*" allows everyone.
func (m *Middleware) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && m.allows(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) allows(origin string) bool {
	for _, o := range m.allowedOrigins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}
