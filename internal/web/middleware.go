package web

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/quillhub/journal/internal/logging"
	"github.com/quillhub/journal/internal/metrics"
	"github.com/quillhub/journal/internal/storage"
	"github.com/quillhub/journal/internal/storage/postgres"
)

// TxBeginner starts database transactions; *sql.DB satisfies it.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Transactional scopes one database transaction to each request. The
// transaction-bound store is injected into the request context; on handler
// success (status below 400) the transaction commits, on any fault or panic
// it rolls back, and in every case the connection returns to the pool.
func Transactional(db TxBeginner, log *logging.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tx, err := db.BeginTx(r.Context(), nil)
			if err != nil {
				log.WithError(err).Error("begin request transaction")
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}

			sw := &statusWriter{ResponseWriter: w}
			finished := false
			defer func() {
				if p := recover(); p != nil {
					_ = tx.Rollback()
					log.Errorf("panic handling %s %s: %v", r.Method, r.URL.Path, p)
					if !sw.written {
						http.Error(sw, "internal server error", http.StatusInternalServerError)
					}
					return
				}
				if !finished {
					_ = tx.Rollback()
				}
			}()

			ctx := storage.NewContext(r.Context(), postgres.New(tx))
			next.ServeHTTP(sw, r.WithContext(ctx))

			if sw.Status() < http.StatusBadRequest {
				if err := tx.Commit(); err != nil {
					log.WithError(err).Error("commit request transaction")
					http.Error(sw, "internal server error", http.StatusInternalServerError)
				}
			} else {
				_ = tx.Rollback()
			}
			finished = true
		})
	}
}

// WithStore injects a fixed store into every request. Used where no
// transactional scope applies, such as handler tests on the memory store.
func WithStore(store storage.EntryStore) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(storage.NewContext(r.Context(), store)))
		})
	}
}

// RequestLogging assigns each request an id, echoes it in X-Request-ID, and
// emits an access log line when the request completes.
func RequestLogging(log *logging.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", requestID)

			sw := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(sw, r)

			log.LogRequest(requestID, r.Method, r.URL.Path, sw.Status(), time.Since(start))
		})
	}
}

// MetricsMiddleware records request metrics, labelling by the mux route
// template when one matched.
func MetricsMiddleware(m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			m.IncInFlight()
			defer m.DecInFlight()

			sw := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(sw, r)

			route := r.URL.Path
			if current := mux.CurrentRoute(r); current != nil {
				if tmpl, err := current.GetPathTemplate(); err == nil {
					route = tmpl
				}
			}
			m.RecordRequest(r.Method, route, strconv.Itoa(sw.Status()), time.Since(start))
		})
	}
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

func (sw *statusWriter) WriteHeader(code int) {
	if !sw.written {
		sw.status = code
		sw.written = true
		sw.ResponseWriter.WriteHeader(code)
	}
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if !sw.written {
		sw.WriteHeader(http.StatusOK)
	}
	return sw.ResponseWriter.Write(b)
}

func (sw *statusWriter) Status() int {
	if !sw.written {
		return http.StatusOK
	}
	return sw.status
}
