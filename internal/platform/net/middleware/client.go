package middleware

import (
	"net"
	"net/http"

	"genscan/internal/platform/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// ClientContext tags the request logger with the request id and caller
// address and mirrors the id back. Mount after RequestID and RealIP
func ClientContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := chimw.GetReqID(r.Context())
		if reqID != "" {
			w.Header().Set("X-Request-ID", reqID)
		}
		ctx := logger.WithRequest(r.Context(), reqID, remoteHost(r.RemoteAddr))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// remoteHost strips the port RealIP leaves on direct connections
func remoteHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
