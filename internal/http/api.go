// Package http exposes the publish workflow over a JSON API suitable for an
// editor frontend.
package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/Allenwdk/OxygenBlog/internal/article"
	"github.com/Allenwdk/OxygenBlog/internal/history"
	"github.com/Allenwdk/OxygenBlog/internal/logging"
	"github.com/Allenwdk/OxygenBlog/internal/markdown"
	"github.com/Allenwdk/OxygenBlog/internal/publisher"
	"github.com/Allenwdk/OxygenBlog/pkg/interfaces"
)

const defaultHistoryLimit = 50

// BlogAPI registers publish, draft, preview, and history endpoints.
type BlogAPI struct {
	basePath string
	service  *publisher.Service
	renderer *markdown.Renderer
	history  history.Recorder
	logger   interfaces.Logger
}

// Option mutates the BlogAPI configuration.
type Option func(*BlogAPI)

// NewBlogAPI constructs a BlogAPI instance.
func NewBlogAPI(opts ...Option) *BlogAPI {
	api := &BlogAPI{
		basePath: "/api/blogs",
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// WithBasePath overrides the base API path (defaults to "/api/blogs").
func WithBasePath(path string) Option {
	return func(api *BlogAPI) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

// WithPublishService wires the publish workflow service.
func WithPublishService(service *publisher.Service) Option {
	return func(api *BlogAPI) {
		api.service = service
	}
}

// WithRenderer wires the Markdown preview renderer.
func WithRenderer(renderer *markdown.Renderer) Option {
	return func(api *BlogAPI) {
		api.renderer = renderer
	}
}

// WithHistory wires the publish event recorder backing the history endpoint.
func WithHistory(recorder history.Recorder) Option {
	return func(api *BlogAPI) {
		api.history = recorder
	}
}

// WithLogger wires the request logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(api *BlogAPI) {
		if logger != nil {
			api.logger = logger
		}
	}
}

// Register wires all blog endpoints onto the provided mux.
func (api *BlogAPI) Register(mux *http.ServeMux) {
	if api == nil || mux == nil {
		return
	}
	root := joinPath(api.basePath, "publish")
	mux.HandleFunc("POST "+root, api.handlePublish)
	mux.HandleFunc("GET "+root, api.handleList)
	mux.HandleFunc("PUT "+root+"/{filename}", api.handleUpdate)
	mux.HandleFunc("DELETE "+root+"/{filename}", api.handleDelete)

	drafts := joinPath(api.basePath, "drafts")
	mux.HandleFunc("GET "+drafts, api.handleDraftList)
	mux.HandleFunc("POST "+drafts+"/{filename}/promote", api.handlePromote)

	mux.HandleFunc("POST "+joinPath(api.basePath, "preview"), api.handlePreview)
	mux.HandleFunc("GET "+joinPath(api.basePath, "history"), api.handleHistory)
}

// requestContext annotates the request context with logging fields so
// context-aware loggers downstream pick them up via WithContext.
func requestContext(r *http.Request) context.Context {
	return logging.ContextWithFields(r.Context(), map[string]any{
		"http_method": r.Method,
		"http_path":   r.URL.Path,
	})
}

type publishPayload struct {
	Title       string   `json:"title"`
	Date        string   `json:"date,omitempty"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	ReadTime    int      `json:"readTime,omitempty"`
	Excerpt     string   `json:"excerpt,omitempty"`
	Content     string   `json:"content"`
	SaveAsDraft bool     `json:"saveAsDraft,omitempty"`
}

func (p publishPayload) request() publisher.Request {
	return publisher.Request{
		Metadata: article.Metadata{
			Title:    p.Title,
			Date:     p.Date,
			Category: p.Category,
			Tags:     p.Tags,
			ReadTime: p.ReadTime,
			Excerpt:  p.Excerpt,
		},
		Content: p.Content,
	}
}

type publishResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Result  *publisher.Result `json:"result,omitempty"`
}

func (api *BlogAPI) handlePublish(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.service == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	var payload publishPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid JSON body"})
		return
	}

	ctx := requestContext(r)
	var (
		result *publisher.Result
		err    error
	)
	if payload.SaveAsDraft {
		result, err = api.service.SaveDraft(ctx, payload.request())
	} else {
		result, err = api.service.Publish(ctx, payload.request())
	}
	if err != nil {
		writeError(w, err)
		return
	}

	message := "article published"
	if payload.SaveAsDraft {
		message = "draft saved"
	}
	api.logger.WithContext(ctx).Info("http.publish.completed", "filename", result.Filename, "draft", payload.SaveAsDraft)
	writeJSON(w, http.StatusCreated, publishResponse{Success: true, Message: message, Result: result})
}

func (api *BlogAPI) handleList(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.service == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	summaries, err := api.service.List(requestContext(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (api *BlogAPI) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.service == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	filename := r.PathValue("filename")
	var payload publishPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid JSON body"})
		return
	}

	req := payload.request()
	result, err := api.service.Update(requestContext(r), publisher.UpdateRequest{
		Filename: filename,
		Metadata: req.Metadata,
		Content:  req.Content,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, publishResponse{Success: true, Message: "article updated", Result: result})
}

func (api *BlogAPI) handleDelete(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.service == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	filename := r.PathValue("filename")
	if err := api.service.Delete(requestContext(r), filename); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, publishResponse{Success: true, Message: "article deleted"})
}

func (api *BlogAPI) handleDraftList(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.service == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	summaries, err := api.service.ListDrafts(requestContext(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (api *BlogAPI) handlePromote(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.service == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	filename := r.PathValue("filename")
	result, err := api.service.PromoteDraft(requestContext(r), filename)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, publishResponse{Success: true, Message: "draft published", Result: result})
}

type previewPayload struct {
	Content string `json:"content"`
}

type previewResponse struct {
	HTML string `json:"html"`
}

func (api *BlogAPI) handlePreview(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.renderer == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	var payload previewPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid JSON body"})
		return
	}
	html, err := api.renderer.Render([]byte(payload.Content))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, previewResponse{HTML: string(html)})
}

func (api *BlogAPI) handleHistory(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.history == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	limit := defaultHistoryLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid limit"})
			return
		}
		limit = parsed
	}
	events, err := api.history.Recent(requestContext(r), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}
