package web

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"

	"github.com/quillhub/journal/internal/config"
	"github.com/quillhub/journal/internal/logging"
	"github.com/quillhub/journal/internal/storage"
)

func testLogger() *logging.Logger {
	return logging.New(config.LoggingConfig{Level: "error"})
}

// newTxRouter wires a single handler behind the transactional middleware,
// backed by a mocked database.
func newTxRouter(t *testing.T, handler http.HandlerFunc) (*mux.Router, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}

	r := mux.NewRouter()
	r.Use(Transactional(db, testLogger()))
	r.HandleFunc("/entries", handler).Methods(http.MethodPost)
	return r, mock, func() { db.Close() }
}

func TestTransactionalCommitsOnSuccess(t *testing.T) {
	router, mock, done := newTxRouter(t, func(w http.ResponseWriter, r *http.Request) {
		store := storage.FromContext(r.Context())
		if _, err := store.Create(r.Context(), "Test Title", "Test Text"); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusSeeOther)
	})
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO entries").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/entries", nil))

	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestTransactionalRollsBackOnServerFault(t *testing.T) {
	router, mock, done := newTxRouter(t, func(w http.ResponseWriter, r *http.Request) {
		store := storage.FromContext(r.Context())
		if _, err := store.Create(r.Context(), "Test Title", "Test Text"); err != nil {
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusSeeOther)
	})
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO entries").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/entries", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestTransactionalRollsBackOnClientError(t *testing.T) {
	router, mock, done := newTxRouter(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	})
	defer done()

	mock.ExpectBegin()
	mock.ExpectRollback()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/entries", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestTransactionalRollsBackOnPanic(t *testing.T) {
	router, mock, done := newTxRouter(t, func(w http.ResponseWriter, r *http.Request) {
		panic("handler exploded")
	})
	defer done()

	mock.ExpectBegin()
	mock.ExpectRollback()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/entries", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 after panic, got %d", w.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestTransactionalRefusesWhenBeginFails(t *testing.T) {
	invoked := false
	router, mock, done := newTxRouter(t, func(w http.ResponseWriter, r *http.Request) {
		invoked = true
	})
	defer done()

	mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/entries", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	if invoked {
		t.Fatal("handler must not run without a transaction")
	}
}

func TestTransactionalReportsCommitFailure(t *testing.T) {
	router, mock, done := newTxRouter(t, func(w http.ResponseWriter, r *http.Request) {
		// Write nothing: the implicit 200 triggers the commit path.
	})
	defer done()

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/entries", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on commit failure, got %d", w.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRequestLoggingEchoesRequestID(t *testing.T) {
	r := mux.NewRouter()
	r.Use(RequestLogging(testLogger()))
	r.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected a generated request id")
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-123")
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "req-123" {
		t.Fatalf("expected echoed id req-123, got %q", got)
	}
}

func TestStatusWriterDefaultsTo200(t *testing.T) {
	sw := &statusWriter{ResponseWriter: httptest.NewRecorder()}
	if sw.Status() != http.StatusOK {
		t.Fatalf("expected implicit 200, got %d", sw.Status())
	}

	sw.WriteHeader(http.StatusNotFound)
	sw.WriteHeader(http.StatusOK) // later writes must not override
	if sw.Status() != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", sw.Status())
	}
}
