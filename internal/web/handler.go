// Package web serves the journal's HTML surface and owns the per-request
// lifecycle middleware.
package web

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/quillhub/journal/internal/auth"
	"github.com/quillhub/journal/internal/domain/entry"
	"github.com/quillhub/journal/internal/logging"
	"github.com/quillhub/journal/internal/markup"
	"github.com/quillhub/journal/internal/storage"
)

// Handler bundles the HTTP endpoints of the journal.
type Handler struct {
	log       *logging.Logger
	auth      *auth.Manager
	renderer  *markup.Renderer
	templates map[string]*template.Template
}

// New constructs the handler and parses its templates.
func New(log *logging.Logger, authMgr *auth.Manager, renderer *markup.Renderer) (*Handler, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &Handler{
		log:       log,
		auth:      authMgr,
		renderer:  renderer,
		templates: templates,
	}, nil
}

// Register attaches all journal routes to the router. Write routes pass
// through the session gate; read routes and the login flow do not.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/", h.list).Methods(http.MethodGet)
	r.HandleFunc("/detail/{id:[0-9]+}", h.detail).Methods(http.MethodGet)
	r.Handle("/new", h.requireAdmin(http.HandlerFunc(h.create))).Methods(http.MethodPost)
	r.Handle("/edit/{id:[0-9]+}", h.requireAdmin(http.HandlerFunc(h.editForm))).Methods(http.MethodGet)
	r.Handle("/edit/{id:[0-9]+}", h.requireAdmin(http.HandlerFunc(h.edit))).Methods(http.MethodPost)
	r.HandleFunc("/login", h.loginForm).Methods(http.MethodGet)
	r.HandleFunc("/login", h.login).Methods(http.MethodPost)
	r.HandleFunc("/logout", h.logout).Methods(http.MethodGet)
}

// Healthz reports process liveness.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":    "healthy",
		"service":   "journal",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// requireAdmin gates write routes on a resolved admin session. Absence or a
// foreign identity yields 403 before any handler side effect.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := h.auth.Identity(r)
		if !ok || !h.auth.IsAdmin(identity) {
			if wantsJSON(r) {
				writeJSONError(w, http.StatusForbidden, "forbidden")
				return
			}
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type listData struct {
	Identity  string
	Entries   []entry.Entry
	Error     string
	FormTitle string
	FormText  string
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, http.StatusOK, listData{})
}

func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, status int, data listData) {
	store := storage.FromContext(r.Context())
	entries, err := store.List(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	data.Entries = entries
	data.Identity, _ = h.auth.Identity(r)
	h.render(w, "list.html", status, data)
}

func (h *Handler) detail(w http.ResponseWriter, r *http.Request) {
	store := storage.FromContext(r.Context())
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	e, err := store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.serverError(w, r, err)
		return
	}

	identity, _ := h.auth.Identity(r)
	h.render(w, "detail.html", http.StatusOK, struct {
		Identity string
		Entry    entry.Entry
		HTML     template.HTML
	}{identity, e, h.renderer.Render(e.Text)})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	title := r.FormValue("title")
	text := r.FormValue("text")

	if err := entry.Validate(title, text); err != nil {
		h.entryInputError(w, r, err, title, text)
		return
	}

	store := storage.FromContext(r.Context())
	e, err := store.Create(r.Context(), title, text)
	if err != nil {
		h.entryStoreError(w, r, err, title, text)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusCreated, e)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) editForm(w http.ResponseWriter, r *http.Request) {
	store := storage.FromContext(r.Context())
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	e, err := store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.serverError(w, r, err)
		return
	}

	identity, _ := h.auth.Identity(r)
	h.render(w, "edit.html", http.StatusOK, struct {
		Identity string
		Entry    entry.Entry
		Error    string
	}{identity, e, ""})
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	store := storage.FromContext(r.Context())
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	title := r.FormValue("title")
	text := r.FormValue("text")

	if err := entry.Validate(title, text); err != nil {
		if wantsJSON(r) {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		identity, _ := h.auth.Identity(r)
		h.render(w, "edit.html", http.StatusBadRequest, struct {
			Identity string
			Entry    entry.Entry
			Error    string
		}{identity, entry.Entry{ID: id, Title: title, Text: text}, err.Error()})
		return
	}

	e, err := store.Update(r.Context(), id, title, text)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			if wantsJSON(r) {
				writeJSONError(w, http.StatusNotFound, "entry not found")
				return
			}
			http.NotFound(w, r)
			return
		}
		h.entryStoreError(w, r, err, title, text)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, e)
		return
	}
	http.Redirect(w, r, "/detail/"+strconv.Itoa(e.ID), http.StatusSeeOther)
}

func (h *Handler) loginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, "login.html", http.StatusOK, struct {
		Identity string
		Failed   bool
	}{"", false})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")

	ok, err := h.auth.VerifyCredentials(username, password)
	if err != nil || !ok {
		h.render(w, "login.html", http.StatusOK, struct {
			Identity string
			Failed   bool
		}{"", true})
		return
	}

	token, err := h.auth.IssueSession(username)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	auth.SetSessionCookie(w, token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// entryInputError reports a validation failure detected before the store
// was touched.
func (h *Handler) entryInputError(w http.ResponseWriter, r *http.Request, err error, title, text string) {
	if wantsJSON(r) {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.renderList(w, r, http.StatusBadRequest, listData{
		Error:     err.Error(),
		FormTitle: title,
		FormText:  text,
	})
}

// entryStoreError maps store failures on write paths: validation faults the
// database caught become 400s, everything else is a server fault that the
// lifecycle middleware will roll back.
func (h *Handler) entryStoreError(w http.ResponseWriter, r *http.Request, err error, title, text string) {
	var verr *entry.ValidationError
	if errors.As(err, &verr) {
		h.entryInputError(w, r, err, title, text)
		return
	}
	h.serverError(w, r, err)
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.log.WithError(err).Errorf("%s %s failed", r.Method, r.URL.Path)
	if wantsJSON(r) {
		writeJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func (h *Handler) render(w http.ResponseWriter, page string, status int, data any) {
	t, ok := h.templates[page]
	if !ok {
		h.log.Errorf("unknown template %q", page)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "base", data); err != nil {
		h.log.WithError(err).Errorf("render template %q", page)
	}
}

// wantsJSON reports whether the client asked for a JSON response, either
// via the AJAX header or content negotiation.
func wantsJSON(r *http.Request) bool {
	if r.Header.Get("X-Requested-With") == "XMLHttpRequest" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
