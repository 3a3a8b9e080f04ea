// Package api exposes the quiz engine and document import over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/lexidrill/lexidrill/internal/ai"
	"github.com/lexidrill/lexidrill/internal/core"
	"github.com/lexidrill/lexidrill/internal/db"
	"github.com/lexidrill/lexidrill/internal/parser"
	"github.com/lexidrill/lexidrill/internal/quiz"
)

const unrecognizedReply = "Sorry, I did not understand that.\n\n" + quiz.HelpText

var validate = validator.New()

// Handler contains all HTTP handlers.
type Handler struct {
	Engine    *quiz.Engine
	Processor *core.Processor
	Logger    *zap.Logger
}

// NewHandler creates a Handler. A nil logger discards output.
func NewHandler(engine *quiz.Engine, processor *core.Processor, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Engine: engine, Processor: processor, Logger: logger}
}

// RegisterRoutes registers the learner routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/users", h.ContactUser)
	r.Route("/users/{externalID}", func(r chi.Router) {
		r.Post("/lesson", h.AskQuestion)
		r.Post("/answers", h.Answer)
		r.Post("/messages", h.Message)
		r.Get("/words", h.ListWords)
		r.Post("/words", h.AddWord)
		r.Get("/words/removable", h.RemovableWords)
		r.Delete("/words/{wordID}", h.DeleteWord)
		r.Get("/stats", h.GetStats)
		r.Post("/import", h.ImportDocument)
	})
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// EffectResponse is one outbound message produced by the engine.
type EffectResponse struct {
	Type string      `json:"type"`
	Text string      `json:"text"`
	Data quiz.Effect `json:"data"`
}

// EffectsResponse carries everything the engine sent during one request.
type EffectsResponse struct {
	Effects []EffectResponse `json:"effects"`
	Reply   string           `json:"reply,omitempty"`
}

type ContactRequest struct {
	ExternalID  string `json:"external_id" validate:"required,max=128"`
	DisplayName string `json:"display_name" validate:"max=128"`
}

type AnswerRequest struct {
	Answer string `json:"answer" validate:"required,max=256"`
}

// AddWordRequest leaves blank checks to the engine, which answers them with
// an add_failure effect.
type AddWordRequest struct {
	English string `json:"english" validate:"max=256"`
	Native  string `json:"native" validate:"max=256"`
}

type MessageRequest struct {
	Text string `json:"text" validate:"required,max=1024"`
}

// effectRecorder is a quiz.Gateway that buffers effects for the response.
type effectRecorder struct {
	mu      sync.Mutex
	effects []EffectResponse
}

func newEffectRecorder() *effectRecorder {
	return &effectRecorder{effects: []EffectResponse{}}
}

func (rec *effectRecorder) Send(_ context.Context, _ string, e quiz.Effect) error {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.effects = append(rec.effects, EffectResponse{Type: e.Kind(), Text: quiz.Describe(e), Data: e})
	return nil
}

func (rec *effectRecorder) response() EffectsResponse {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return EffectsResponse{Effects: rec.effects}
}

// dispatch runs ev through the engine and writes the recorded effects.
func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request, ev quiz.Event) {
	rec := newEffectRecorder()
	if err := h.Engine.Dispatch(r.Context(), ev, rec); err != nil {
		if errors.Is(err, quiz.ErrNoIdentity) {
			respondError(w, http.StatusBadRequest, "Missing user identity")
			return
		}
		h.Logger.Error("dispatch failed",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.Error(err),
		)
		respondError(w, http.StatusInternalServerError, "Failed to process request")
		return
	}
	respondJSON(w, http.StatusOK, rec.response())
}

// ContactUser handles POST /api/users.
func (h *Handler) ContactUser(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	h.dispatch(w, r, quiz.UserContacted{ExternalID: req.ExternalID, DisplayName: req.DisplayName})
}

// AskQuestion handles POST /api/users/{externalID}/lesson.
func (h *Handler) AskQuestion(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, quiz.AskRequested{ExternalID: externalID(r)})
}

// Answer handles POST /api/users/{externalID}/answers.
func (h *Handler) Answer(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	h.dispatch(w, r, quiz.AnswerChosen{ExternalID: externalID(r), Answer: req.Answer})
}

// Message handles POST /api/users/{externalID}/messages with a chat command.
func (h *Handler) Message(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	ev, err := quiz.ParseText(externalID(r), req.Text)
	switch {
	case errors.Is(err, quiz.ErrHelp):
		respondJSON(w, http.StatusOK, EffectsResponse{Effects: []EffectResponse{}, Reply: quiz.HelpText})
		return
	case err != nil:
		respondJSON(w, http.StatusOK, EffectsResponse{Effects: []EffectResponse{}, Reply: unrecognizedReply})
		return
	}
	h.dispatch(w, r, ev)
}

// ListWords handles GET /api/users/{externalID}/words.
func (h *Handler) ListWords(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, quiz.ListRequested{ExternalID: externalID(r)})
}

// AddWord handles POST /api/users/{externalID}/words.
func (h *Handler) AddWord(w http.ResponseWriter, r *http.Request) {
	var req AddWordRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	h.dispatch(w, r, quiz.AddWordRequested{ExternalID: externalID(r), English: req.English, Native: req.Native})
}

// RemovableWords handles GET /api/users/{externalID}/words/removable.
func (h *Handler) RemovableWords(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, quiz.RemoveWordRequested{ExternalID: externalID(r)})
}

// DeleteWord handles DELETE /api/users/{externalID}/words/{wordID}.
func (h *Handler) DeleteWord(w http.ResponseWriter, r *http.Request) {
	wordID, err := strconv.ParseInt(chi.URLParam(r, "wordID"), 10, 64)
	if err != nil || wordID <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid word ID")
		return
	}
	h.dispatch(w, r, quiz.WordDeletionChosen{ExternalID: externalID(r), WordID: wordID})
}

// GetStats handles GET /api/users/{externalID}/stats.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Processor.UserStats(r.Context(), externalID(r))
	if errors.Is(err, db.ErrNotFound) {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		h.Logger.Error("failed to load stats", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to get stats")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// ImportDocument handles POST /api/users/{externalID}/import.
func (h *Handler) ImportDocument(w http.ResponseWriter, r *http.Request) {
	if h.Processor.AI == nil {
		respondError(w, http.StatusServiceUnavailable, "Document import is disabled")
		return
	}

	if err := r.ParseMultipartForm(parser.MaxFileSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		respondError(w, http.StatusBadRequest, "Failed to parse form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	text, err := parser.ParseUpload(file, header.Filename, header.Size)
	if err != nil {
		respondError(w, uploadStatus(err), "Failed to read document: "+err.Error())
		return
	}

	result, err := h.Processor.ImportText(r.Context(), externalID(r), text)
	switch {
	case errors.Is(err, core.ErrImportDisabled):
		respondError(w, http.StatusServiceUnavailable, "Document import is disabled")
		return
	case ai.IsAIError(err):
		h.Logger.Warn("word extraction failed", zap.Error(err))
		respondError(w, http.StatusBadGateway, "Word extraction failed")
		return
	case err != nil:
		h.Logger.Error("import failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to import document")
		return
	}

	result.FilePath = header.Filename
	respondJSON(w, http.StatusOK, result)
}

func uploadStatus(err error) int {
	switch {
	case errors.Is(err, parser.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, parser.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, parser.ErrNoText):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func externalID(r *http.Request) string {
	return chi.URLParam(r, "externalID")
}

// decodeRequest decodes and validates a JSON body. It writes the 400 itself.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return false
	}
	return true
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// respondError sends an error JSON response with the given status code and message.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}
