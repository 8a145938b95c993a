package api

import (
	"fmt"
	"net"
	"net/http"
	"time"
)

// statusRecorder wraps http.ResponseWriter to capture the HTTP status code.
// Not safe for concurrent use; it lives for one request.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
		r.ResponseWriter.WriteHeader(code)
	}
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) getStatus() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

// clientAddr returns the host part of the remote address.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// logRequests logs every request at a level derived from its status class
// and records request metrics.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		status := rec.getStatus()
		s.metrics.RecordRequest(r.Method, status, elapsed.Seconds())

		line := fmt.Sprintf("%d %s %s (%s) %.2fms",
			status, r.Method, r.URL.RequestURI(), clientAddr(r), float64(elapsed.Microseconds())/1000)
		switch {
		case status < 400:
			s.log.Debug("%s", line)
		case status < 500:
			s.log.Warn("%s", line)
		default:
			s.log.Error("%s", line)
		}
	})
}

// admit gates next behind the per-address admission controller. Rejected
// requests are answered with 429 before anything else runs.
func (s *Server) admit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		addr := clientAddr(r)
		if err := s.admission.Acquire(addr); err != nil {
			s.metrics.RecordRejection()
			s.writeError(w, "admission", err)
			return
		}
		defer s.admission.Release(addr)

		s.metrics.RequestStarted()
		defer s.metrics.RequestFinished()

		next.ServeHTTP(w, r)
	})
}

// handlerFunc is an API handler that reports failures as errors.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle adapts fn to http.Handler. Returned errors and panics are turned
// into responses tagged with name.
func (s *Server) handle(name string, fn handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.writeError(w, name, fmt.Errorf("panic: %v", rec))
			}
		}()

		if err := fn(w, r); err != nil {
			s.writeError(w, name, err)
		}
	})
}

