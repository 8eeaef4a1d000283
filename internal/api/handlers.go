package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/bobarin/podcastify/internal/audio"
	"github.com/bobarin/podcastify/internal/models"
	"github.com/bobarin/podcastify/internal/script"
	"github.com/bobarin/podcastify/internal/services"
)

// maxRequestBody caps JSON bodies on /convert and /generate-audio.
const maxRequestBody = 2 << 20

// ScriptWriter is satisfied by *script.Generator.
type ScriptWriter interface {
	Generate(ctx context.Context, article string, style models.Style) (string, error)
}

// Producer is satisfied by *pipeline.Pipeline.
type Producer interface {
	Produce(ctx context.Context, script string) (string, error)
}

// ArticleFetcher is satisfied by *services.ArticleService.
type ArticleFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

type Handler struct {
	writer   ScriptWriter
	producer Producer
	articles ArticleFetcher // nil disables URL input
	audioDir string
}

func NewHandler(writer ScriptWriter, producer Producer, articles ArticleFetcher, audioDir string) *Handler {
	return &Handler{
		writer:   writer,
		producer: producer,
		articles: articles,
		audioDir: audioDir,
	}
}

// Convert handles POST /convert
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	var req models.ConvertRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	req.Normalize()

	// Checked before any outbound call, including the article fetch.
	if !req.Style.Valid() {
		respondError(w, http.StatusBadRequest, script.ErrInvalidStyle.Error())
		return
	}

	log := hlog.FromRequest(r)
	article := req.Article

	if strings.TrimSpace(article) == "" && req.URL != "" && h.articles != nil {
		fetched, err := h.articles.Fetch(r.Context(), req.URL)
		if err != nil {
			status := statusForError(err)
			if status >= http.StatusInternalServerError {
				log.Error().Err(err).Str("url", req.URL).Msg("article fetch failed")
			} else {
				log.Warn().Err(err).Str("url", req.URL).Msg("article URL rejected")
			}
			respondError(w, status, err.Error())
			return
		}
		article = fetched
	}

	text, err := h.writer.Generate(r.Context(), article, req.Style)
	if err != nil {
		status := statusForError(err)
		if status >= http.StatusInternalServerError {
			log.Error().Err(err).Str("style", string(req.Style)).Msg("convert failed")
		}
		respondError(w, status, err.Error())
		return
	}

	resp := models.ConvertResponse{}
	if req.Style == models.StyleNews {
		resp.Article = text
	} else {
		resp.Script = text
	}
	respondJSON(w, http.StatusOK, resp)
}

// GenerateAudio handles POST /generate-audio
func (h *Handler) GenerateAudio(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateAudioRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	filename, err := h.producer.Produce(r.Context(), req.Script)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("audio generation failed")
		respondError(w, statusForError(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, models.GenerateAudioResponse{AudioFilename: filename})
}

// Download handles GET /download/{filename}
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "filename"))
	if err != nil || !safeFilename(name) {
		respondError(w, http.StatusBadRequest, "Invalid filename")
		return
	}

	path := filepath.Join(h.audioDir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		respondError(w, http.StatusNotFound, "File not found")
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if strings.HasSuffix(name, audio.RecordingExt) {
		w.Header().Set("Content-Type", "audio/wav")
	}
	http.ServeFile(w, r, path)
}

// Health check
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// safeFilename accepts a bare file name only: no separators, no dot entries.
func safeFilename(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return false
	}
	return filepath.Base(name) == name
}

// decodeRequest reads a size-limited JSON body into dst. It writes the
// error response itself and reports whether the handler should continue.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// statusForError maps pipeline errors to HTTP status codes. Client input
// problems are 400; generation, synthesis, fetch and write failures are 500.
func statusForError(err error) int {
	if errors.Is(err, script.ErrInvalidStyle) ||
		errors.Is(err, script.ErrEmptyArticle) ||
		errors.Is(err, services.ErrURLNotAllowed) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
