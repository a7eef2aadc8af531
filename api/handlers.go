package main

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/joost-contentoo/korsit-portal/internal/config"
	"github.com/joost-contentoo/korsit-portal/internal/localize"
	"github.com/joost-contentoo/korsit-portal/internal/models"
	"github.com/joost-contentoo/korsit-portal/internal/normalize"
	"github.com/joost-contentoo/korsit-portal/internal/refdocs"
	"github.com/joost-contentoo/korsit-portal/internal/upstream"
	"github.com/joost-contentoo/korsit-portal/internal/validation"
)

type server struct {
	log         *slog.Logger
	cfg         *config.API
	localizer   *localize.Service
	docs        refdocs.Library
	upstreamErr error
}

type errorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.recoverJSON)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.Timeout(s.cfg.RequestTimeout)).Post("/localize", s.handleLocalize)

		r.Get("/style-guide", s.handleGetDocument(models.DocumentStyleGuide))
		r.Post("/style-guide", s.handleSaveDocument(models.DocumentStyleGuide))
		r.Get("/glossary", s.handleGetDocument(models.DocumentGlossary))
		r.Post("/glossary", s.handleSaveDocument(models.DocumentGlossary))
	})

	return r
}

// recoverJSON turns a handler panic into a generic JSON 500.
func (s *server) recoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}
			s.log.Error("handler panic",
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.Any("panic", rvr),
				slog.String("stack", string(debug.Stack())),
			)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error processing request."})
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if s.upstreamErr != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "N8N_WEBHOOK_URL is missing or invalid"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleLocalize(w http.ResponseWriter, r *http.Request) {
	log := s.log.With(slog.String("request_id", middleware.GetReqID(r.Context())))

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Could not read request body"})
		return
	}

	result, err := s.localizer.Localize(r.Context(), body)
	if err != nil {
		status, resp := localizeError(err)
		if status >= http.StatusInternalServerError {
			log.Error("localize failed", slog.Int("status", status), slog.Any("err", err))
		} else {
			log.Info("localize rejected", slog.Any("err", err))
		}
		writeJSON(w, status, resp)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// localizeError maps pipeline failures to a status and a client-safe body.
// Only the upstream reason phrase is echoed; bodies and internal errors are not.
func localizeError(err error) (int, errorResponse) {
	var (
		verr *validation.Error
		serr *upstream.StatusError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, errorResponse{Error: "Invalid request", Details: verr.Fields}
	case errors.Is(err, upstream.ErrNotConfigured):
		return http.StatusInternalServerError, errorResponse{Error: "Server configuration error: N8N_WEBHOOK_URL is missing."}
	case errors.Is(err, upstream.ErrTimeout):
		return http.StatusGatewayTimeout, errorResponse{Error: "Upstream timeout: the localization workflow did not respond in time."}
	case errors.As(err, &serr):
		return http.StatusBadGateway, errorResponse{Error: "Upstream error: " + serr.StatusText()}
	case errors.Is(err, upstream.ErrTransport):
		return http.StatusBadGateway, errorResponse{Error: "Upstream error: localization service unreachable."}
	case errors.Is(err, normalize.ErrInvalidFormat):
		return http.StatusBadGateway, errorResponse{Error: "Upstream error: invalid response format."}
	default:
		return http.StatusInternalServerError, errorResponse{Error: "Internal server error processing request."}
	}
}

func (s *server) handleGetDocument(kind models.DocumentKind) http.HandlerFunc {
	store := s.docs[kind]
	return func(w http.ResponseWriter, r *http.Request) {
		content, err := store.Read()
		if err != nil {
			s.log.Error("read reference document",
				slog.String("kind", string(store.Kind())),
				slog.String("path", store.Path()),
				slog.Any("err", err),
			)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to read " + store.Kind().Label()})
			return
		}
		writeJSON(w, http.StatusOK, models.ReferenceDocument{Content: content})
	}
}

func (s *server) handleSaveDocument(kind models.DocumentKind) http.HandlerFunc {
	store := s.docs[kind]
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Could not read request body"})
			return
		}

		content, err := validation.DocumentContent(body)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Content must be a string"})
			return
		}

		if err := store.Write(content); err != nil {
			s.log.Error("save reference document",
				slog.String("kind", string(store.Kind())),
				slog.String("path", store.Path()),
				slog.Any("err", err),
			)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to save " + store.Kind().Label()})
			return
		}

		s.log.Info("reference document saved",
			slog.String("kind", string(store.Kind())),
			slog.String("path", store.Path()),
			slog.Int("bytes", len(content)),
		)
		writeJSON(w, http.StatusOK, successResponse{Success: true})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
