// SPDX-License-Identifier: Apache-2.0

// Package httpapi serves extraction and placeholderization over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/docvars/docvars/internal/extraction"
	"github.com/docvars/docvars/internal/placeholder"
	"github.com/docvars/docvars/internal/tool"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 64 << 20

// API routes HTTP requests to the docvars tools.
type API struct {
	tools  *tool.Tools
	logger *zap.Logger
	router *mux.Router
}

func New(tools *tool.Tools, logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	api := &API{
		tools:  tools,
		logger: logger,
		router: mux.NewRouter(),
	}
	api.routes()
	return api
}

func (api *API) Router() *mux.Router {
	return api.router
}

func (api *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	api.router.ServeHTTP(w, r)
}

func (api *API) routes() {
	api.router.Use(api.recoverer, api.requestLogger)
	api.router.HandleFunc("/healthz", api.health).Methods("GET")
	api.router.HandleFunc("/extract", api.extract).Methods("POST")
	api.router.HandleFunc("/placeholderize", api.placeholderize).Methods("POST")
}

func (api *API) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// extract takes the read result as the request body. The optional source_id
// query parameter is echoed back.
func (api *API) extract(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("read body: %w", err))
		return
	}
	_, out, err := api.tools.ExtractContractFields(r.Context(), nil, tool.InputExtractContractFields{
		ReadResult: string(body),
		SourceID:   r.URL.Query().Get("source_id"),
	})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (api *API) placeholderize(w http.ResponseWriter, r *http.Request) {
	var in tool.InputPlaceholderizeContract
	if err := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes)).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid placeholderize payload: %w", err))
		return
	}
	_, out, err := api.tools.PlaceholderizeContract(r.Context(), nil, in)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type errorResponse struct {
	Error      string `json:"error"`
	Stage      string `json:"stage,omitempty"`
	DocumentID string `json:"document_id,omitempty"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, placeholder.ErrConversionFailed):
		return http.StatusBadGateway
	case errors.Is(err, placeholder.ErrInvalidMapping),
		errors.Is(err, placeholder.ErrUnsupportedFormat),
		errors.Is(err, placeholder.ErrMissingMainPart),
		errors.Is(err, extraction.ErrMalformedReadResult):
		return http.StatusUnprocessableEntity
	case errors.Is(err, tool.ErrInvalidInput):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, status int, err error) {
	resp := errorResponse{Error: err.Error()}
	var stageErr *placeholder.StageError
	if errors.As(err, &stageErr) {
		resp.Stage = stageErr.Stage
		resp.DocumentID = stageErr.DocumentID
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (api *API) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		api.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)))
	})
}

func (api *API) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				api.logger.Error("panic recovered", zap.Any("panic", rec), zap.String("path", r.URL.Path))
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
