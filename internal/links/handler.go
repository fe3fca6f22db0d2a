package links

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sundayezeilo/linkadmin/internal/errx"
	"github.com/sundayezeilo/linkadmin/internal/httpx"
	"github.com/sundayezeilo/linkadmin/internal/view"
)

// Service is what the dispatcher needs from the catalog.
type Service interface {
	Create(ctx context.Context, slug, target string) (Link, error)
	Update(ctx context.Context, slug, target string) (Link, error)
	Delete(ctx context.Context, slug string) (Link, error)
	Redirect(ctx context.Context, slug string) (Link, error)
	List(ctx context.Context, order Order) Listing
}

// Handler serves the public redirect endpoint and the admin page.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// HandlerConfig holds configuration for the handler.
type HandlerConfig struct {
	Service Service
	Logger  *slog.Logger
}

// NewHandler creates a new Handler instance.
func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		service: cfg.Service,
		logger:  logger,
	}
}

// Root sends visitors of "/" to the admin page.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/admin", http.StatusFound)
}

// Admin renders the listing in the order named by the ?order query parameter.
func (h *Handler) Admin(w http.ResponseWriter, r *http.Request) {
	order := ParseOrder(r.URL.Query().Get("order"))
	h.renderAdmin(r.Context(), w, order, "")
}

// CreateLink handles the create form.
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	form, err := httpx.DecodeForm(w, r)
	if err != nil {
		h.handleDecodeError(ctx, w, logger, err)
		return
	}

	slug := form.Get("slug")
	order := ParseOrder(form.GetOrQuery("order"))

	link, err := h.service.Create(ctx, slug, form.Get("target"))
	if err != nil {
		h.handleCommandError(ctx, w, logger, err, slug, order)
		return
	}

	logger.InfoContext(ctx, "link created",
		"slug", link.Slug,
		"url", link.URL,
	)

	h.renderAdmin(ctx, w, order, fmt.Sprintf("Created %s -> %s", link.Slug, link.URL))
}

// UpdateLink handles the inline update form.
func (h *Handler) UpdateLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	form, err := httpx.DecodeForm(w, r)
	if err != nil {
		h.handleDecodeError(ctx, w, logger, err)
		return
	}

	slug := form.Get("slug")
	order := ParseOrder(form.GetOrQuery("order"))

	link, err := h.service.Update(ctx, slug, form.Get("target"))
	if err != nil {
		h.handleCommandError(ctx, w, logger, err, slug, order)
		return
	}

	logger.InfoContext(ctx, "link updated",
		"slug", link.Slug,
		"url", link.URL,
	)

	h.renderAdmin(ctx, w, order, fmt.Sprintf("Updated %s.", link.Slug))
}

// DeleteLink handles the delete form.
func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	form, err := httpx.DecodeForm(w, r)
	if err != nil {
		h.handleDecodeError(ctx, w, logger, err)
		return
	}

	slug := form.Get("slug")
	order := ParseOrder(form.GetOrQuery("order"))

	link, err := h.service.Delete(ctx, slug)
	if err != nil {
		h.handleCommandError(ctx, w, logger, err, slug, order)
		return
	}

	logger.InfoContext(ctx, "link deleted",
		"slug", link.Slug,
		"hits", link.Hits,
	)

	h.renderAdmin(ctx, w, order, fmt.Sprintf("Deleted %s.", link.Slug))
}

// RedirectLink sends the visitor to the destination of the slug in the path
// and counts the visit. Only GET counts; HEAD is refused so link previews
// leave the counters alone.
func (h *Handler) RedirectLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		httpx.WriteError(w, errx.E("links.Handler.RedirectLink", errx.MethodNotAllowed,
			fmt.Errorf("method %s", r.Method)))
		return
	}

	slug := r.PathValue("slug")
	if slug == "" || strings.Contains(slug, "/") {
		httpx.WriteError(w, errx.E("links.Handler.RedirectLink", errx.NotFound,
			errors.New("no such resource")))
		return
	}

	link, err := h.service.Redirect(ctx, slug)
	if err != nil {
		h.handleRedirectError(ctx, w, err, slug)
		return
	}

	h.logger.DebugContext(ctx, "slug resolved",
		"request_id", httpx.GetRequestID(ctx),
		"slug", slug,
		"hits", link.Hits,
		"referer", r.Referer(),
	)

	http.Redirect(w, r, link.URL, http.StatusFound)
}

// Fallback answers every request no other route matched: a GET is a missing
// resource, anything else a method the application does not serve.
func (h *Handler) Fallback(w http.ResponseWriter, r *http.Request) {
	const op = "links.Handler.Fallback"

	if r.Method == http.MethodGet {
		httpx.WriteError(w, errx.E(op, errx.NotFound, fmt.Errorf("no route for %s", r.URL.Path)))
		return
	}
	httpx.WriteError(w, errx.E(op, errx.MethodNotAllowed, fmt.Errorf("method %s on %s", r.Method, r.URL.Path)))
}

// renderAdmin renders the listing with an optional flash message. The page is
// rendered into a buffer first so a template failure can still produce a 500.
func (h *Handler) renderAdmin(ctx context.Context, w http.ResponseWriter, order Order, message string) {
	listing := h.service.List(ctx, order)

	var buf bytes.Buffer
	if err := view.RenderAdminPage(&buf, toAdminPage(listing, message)); err != nil {
		h.logger.ErrorContext(ctx, "failed to render admin page",
			"request_id", httpx.GetRequestID(ctx),
			"error", err.Error(),
		)
		httpx.WriteError(w, errx.E("links.Handler.renderAdmin", errx.Internal, err))
		return
	}

	httpx.WriteHTML(w, http.StatusOK, buf.Bytes())
}

// handleDecodeError handles errors from reading an admin form.
func (h *Handler) handleDecodeError(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, err error) {
	logger.WarnContext(ctx, "failed to decode form",
		"error", err.Error(),
		"error_kind", errx.KindOf(err),
	)
	httpx.WriteError(w, err)
}

// handleCommandError turns admin command failures into a flash message on the
// listing. Only storage and unexpected failures become error responses.
func (h *Handler) handleCommandError(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, err error, slug string, order Order) {
	kind := errx.KindOf(err)

	logAttrs := []any{
		"error", err.Error(),
		"error_kind", kind,
		"operation", errx.OpOf(err),
		"slug", slug,
	}

	var message string
	switch {
	case errors.Is(err, ErrInvalidSlug):
		message = "Invalid slug. Use letters, digits, dot, dash or underscore."
	case errors.Is(err, ErrInvalidURL):
		message = "Invalid destination URL."
	case errors.Is(err, ErrDuplicateSlug):
		message = fmt.Sprintf(`Slug "%s" already exists.`, slug)
	case errors.Is(err, ErrSlugNotFound):
		message = fmt.Sprintf(`Slug "%s" does not exist.`, slug)
	default:
		logger.ErrorContext(ctx, "admin command failed", logAttrs...)
		httpx.WriteError(w, err)
		return
	}

	logger.WarnContext(ctx, "admin command rejected", logAttrs...)
	h.renderAdmin(ctx, w, order, message)
}

// handleRedirectError handles errors from the Redirect service method.
func (h *Handler) handleRedirectError(ctx context.Context, w http.ResponseWriter, err error, slug string) {
	kind := errx.KindOf(err)

	logAttrs := []any{
		"request_id", httpx.GetRequestID(ctx),
		"error", err.Error(),
		"error_kind", kind,
		"operation", errx.OpOf(err),
		"slug", slug,
	}

	switch kind {
	case errx.NotFound:
		h.logger.InfoContext(ctx, "slug not found", logAttrs...)
		httpx.WriteText(w, http.StatusNotFound, fmt.Sprintf(`Link "%s" does not exist.`, slug))

	default:
		h.logger.ErrorContext(ctx, "unexpected error resolving link", logAttrs...)
		httpx.WriteError(w, err)
	}
}

func (h *Handler) requestLogger(r *http.Request) *slog.Logger {
	return h.logger.With(
		"request_id", httpx.GetRequestID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
	)
}

func toAdminPage(listing Listing, message string) view.AdminPage {
	page := view.AdminPage{
		Message:   message,
		Order:     string(listing.Order),
		Links:     make([]view.LinkRow, 0, len(listing.Links)),
		TotalHits: listing.TotalHits,
	}
	for _, link := range listing.Links {
		row := view.LinkRow{
			Slug: link.Slug,
			URL:  link.URL,
			Hits: link.Hits,
		}
		if link.LastAccess != nil {
			t := link.LastAccess.Time()
			row.LastAccess = &t
		}
		page.Links = append(page.Links, row)
	}
	return page
}
