package api

import (
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/contentitem/pkg/contentitem"
)

// Handler serves the content item endpoints.
type Handler struct {
	gateway        *contentitem.Gateway
	items          *contentitem.ItemService
	logger         *slog.Logger
	maxUploadBytes int64
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithHandlerLogger sets the logger.
func WithHandlerLogger(logger *slog.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithMaxUploadBytes caps data upload bodies; zero disables the cap.
func WithMaxUploadBytes(n int64) HandlerOption {
	return func(h *Handler) {
		h.maxUploadBytes = n
	}
}

func NewHandler(gateway *contentitem.Gateway, items *contentitem.ItemService, opts ...HandlerOption) *Handler {
	h := &Handler{
		gateway: gateway,
		items:   items,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type route struct {
	method  string
	pattern string
	handler http.Handler
}

func (h *Handler) routes() []route {
	return []route{
		{http.MethodPost, "/", http.HandlerFunc(h.CreateItem)},
		{http.MethodGet, "/", http.HandlerFunc(h.ListItems)},
		{http.MethodGet, "/{id}", http.HandlerFunc(h.GetItem)},
		{http.MethodDelete, "/{id}", http.HandlerFunc(h.DeleteItem)},
		{http.MethodGet, "/{id}/data", http.HandlerFunc(h.GetData)},
		{http.MethodPost, "/{id}/data", RequestSizeLimitMiddleware(h.maxUploadBytes)(http.HandlerFunc(h.SaveData))},
	}
}

// Routes returns the router for content item endpoints, to be mounted at
// /content-items.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	for _, rt := range h.routes() {
		r.Method(rt.method, rt.pattern, rt.handler)
	}
	return r
}

// itemID returns the decoded id. chi routes on RawPath only when the request's
// escaping differs from the default encoding, and only then is the param
// still escaped.
func itemID(r *http.Request) string {
	raw := chi.URLParam(r, "id")
	if r.URL.RawPath == "" {
		return raw
	}
	if id, err := url.PathUnescape(raw); err == nil {
		return id
	}
	return raw
}

// GetData streams the bytes of an item labelled with its media type.
func (h *Handler) GetData(w http.ResponseWriter, r *http.Request) {
	id := itemID(r)

	data, err := h.gateway.GetData(r.Context(), id)
	if err != nil {
		h.logger.Debug("Get data failed", "content_item_id", id, "kind", contentitem.KindOf(err), "error", err)
		writeServiceError(w, r, err)
		return
	}
	defer data.Close()

	w.Header().Set("Content-Type", data.MediaType)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, data.Stream); err != nil {
		// headers are gone; the client sees a truncated body
		h.logger.Warn("Failed to stream content item data", "content_item_id", id, "error", err)
	}
}

// SaveData replaces the bytes of an item with the first file part of a
// multipart body.
func (h *Handler) SaveData(w http.ResponseWriter, r *http.Request) {
	id := itemID(r)

	rep, err := h.gateway.SaveData(r.Context(), id, newRequestUpload(r))
	if err != nil {
		h.logger.Debug("Save data failed", "content_item_id", id, "kind", contentitem.KindOf(err), "error", err)
		writeServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, rep)
}

// CreateItem registers a new item without content.
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req contentitem.CreateItemRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.logger.Debug("Failed to decode request", "error", err)
		writeError(w, r, http.StatusBadRequest, string(contentitem.KindInvalidRequest), "invalid request body")
		return
	}

	item, err := h.items.CreateItem(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, h.items.Formatter().Format(item))
}

// GetItem returns the representation of one item.
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.items.GetItem(r.Context(), itemID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	render.JSON(w, r, h.items.Formatter().Format(item))
}

// ListItems returns the items of the tenant named by ?tenantId=, or all items.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.items.ListItems(r.Context(), r.URL.Query().Get("tenantId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	formatter := h.items.Formatter()
	reps := make([]*contentitem.ItemRepresentation, 0, len(items))
	for _, item := range items {
		reps = append(reps, formatter.Format(item))
	}
	render.JSON(w, r, reps)
}

// DeleteItem removes an item and its data.
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.items.DeleteItem(r.Context(), itemID(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
