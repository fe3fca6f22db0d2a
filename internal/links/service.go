package links

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sundayezeilo/linkadmin/internal/errx"
)

// Recorder receives counters about what the catalog does. The metrics
// package provides the Prometheus implementation.
type Recorder interface {
	Redirect(result string)
	Command(command, result string)
	Save(result string)
	Links(n int)
}

type nopRecorder struct{}

func (nopRecorder) Redirect(string)        {}
func (nopRecorder) Command(string, string) {}
func (nopRecorder) Save(string)            {}
func (nopRecorder) Links(int)              {}

// Listing is a sorted snapshot of the catalog for the admin page.
type Listing struct {
	Links     []Link
	Order     Order
	TotalHits int64
}

// CatalogConfig holds optional settings for a Catalog.
type CatalogConfig struct {
	// Reload re-reads the document at the start of every operation instead
	// of keeping the records resident. Hand edits to the file then take
	// effect without a restart.
	Reload   bool
	Clock    func() time.Time
	Logger   *slog.Logger
	Recorder Recorder
}

// Catalog owns the slug records. One lock serializes every mutation, so
// concurrent redirects and admin commands never lose an update.
type Catalog struct {
	mu       sync.RWMutex
	store    Persister
	records  Records
	reload   bool
	now      func() time.Time
	logger   *slog.Logger
	recorder Recorder
}

// NewCatalog creates a Catalog over store. Unless cfg.Reload is set the
// records are loaded once here; an unreadable document is an error rather
// than an empty catalog, so a later save cannot overwrite it.
func NewCatalog(store Persister, cfg *CatalogConfig) (*Catalog, error) {
	const op = "links.NewCatalog"

	if cfg == nil {
		cfg = &CatalogConfig{}
	}

	c := &Catalog{
		store:    store,
		reload:   cfg.Reload,
		now:      cfg.Clock,
		logger:   cfg.Logger,
		recorder: cfg.Recorder,
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.recorder == nil {
		c.recorder = nopRecorder{}
	}

	if !c.reload {
		records, err := store.Load()
		if err != nil {
			return nil, errx.E(op, errx.Storage, err)
		}
		c.records = records
		c.recorder.Links(len(records))
	}
	return c, nil
}

// Create adds a new link. The target is normalized before it is stored.
func (c *Catalog) Create(ctx context.Context, slug, target string) (Link, error) {
	const op = "links.Catalog.Create"

	link, err := c.create(ctx, op, slug, target)
	c.recorder.Command("create", resultOf(err))
	return link, err
}

func (c *Catalog) create(ctx context.Context, op, slug, target string) (Link, error) {
	if !IsValidSlug(slug) {
		return Link{}, errx.E(op, errx.Invalid, ErrInvalidSlug)
	}
	normalized, err := NormalizeURL(target)
	if err != nil {
		return Link{}, errx.E(op, errx.Invalid, err)
	}

	return c.mutate(ctx, op, func(records Records, now Millis) (Records, Link, error) {
		if _, ok := records.Get(slug); ok {
			return nil, Link{}, errx.E(op, errx.Conflict, ErrDuplicateSlug)
		}
		link := Link{
			Slug:      slug,
			URL:       normalized,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return records.Upsert(link), link, nil
	})
}

// Update points an existing slug at a new target. Hits, creation time and
// last access are kept.
func (c *Catalog) Update(ctx context.Context, slug, target string) (Link, error) {
	const op = "links.Catalog.Update"

	link, err := c.update(ctx, op, slug, target)
	c.recorder.Command("update", resultOf(err))
	return link, err
}

func (c *Catalog) update(ctx context.Context, op, slug, target string) (Link, error) {
	if !IsValidSlug(slug) {
		return Link{}, errx.E(op, errx.Invalid, ErrInvalidSlug)
	}
	normalized, err := NormalizeURL(target)
	if err != nil {
		return Link{}, errx.E(op, errx.Invalid, err)
	}

	return c.mutate(ctx, op, func(records Records, now Millis) (Records, Link, error) {
		link, ok := records.Get(slug)
		if !ok {
			return nil, Link{}, errx.E(op, errx.NotFound, ErrSlugNotFound)
		}
		link.URL = normalized
		link.UpdatedAt = now
		return records.Upsert(link), link, nil
	})
}

// Delete removes a slug and returns the link it held.
func (c *Catalog) Delete(ctx context.Context, slug string) (Link, error) {
	const op = "links.Catalog.Delete"

	link, err := c.mutate(ctx, op, func(records Records, _ Millis) (Records, Link, error) {
		link, ok := records.Get(slug)
		if !ok {
			return nil, Link{}, errx.E(op, errx.NotFound, ErrSlugNotFound)
		}
		return records.Remove(slug), link, nil
	})
	c.recorder.Command("delete", resultOf(err))
	return link, err
}

// Redirect counts a visit to slug and returns the link to send the visitor to.
// LastAccess never moves backwards, even if the clock does.
func (c *Catalog) Redirect(ctx context.Context, slug string) (Link, error) {
	const op = "links.Catalog.Redirect"

	link, err := c.mutate(ctx, op, func(records Records, now Millis) (Records, Link, error) {
		link, ok := records.Get(slug)
		if !ok {
			return nil, Link{}, errx.E(op, errx.NotFound, ErrSlugNotFound)
		}
		link.Hits++
		last := max(now, link.lastAccessOrZero())
		link.LastAccess = &last
		return records.Upsert(link), link, nil
	})
	c.recorder.Redirect(resultOf(err))
	return link, err
}

// List returns every link sorted by order. It never fails: a document that
// cannot be read is logged and listed as empty.
func (c *Catalog) List(ctx context.Context, order Order) Listing {
	const op = "links.Catalog.List"

	c.mu.RLock()
	records, err := c.current()
	c.mu.RUnlock()

	if err != nil {
		c.logger.ErrorContext(ctx, "failed to load records, listing none",
			"error", err.Error(),
			"operation", op,
		)
		records = Records{}
	}

	return Listing{
		Links:     Sorted(records, order),
		Order:     order,
		TotalHits: records.TotalHits(),
	}
}

// Check reports whether the records can be read. In resident mode they
// already are.
func (c *Catalog) Check(ctx context.Context) error {
	const op = "links.Catalog.Check"

	if err := ctx.Err(); err != nil {
		return errx.E(op, errx.Internal, err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, err := c.current(); err != nil {
		return errx.E(op, errx.Storage, err)
	}
	return nil
}

// mutate runs fn against the current records under the write lock and
// publishes its result only once the store has saved it.
func (c *Catalog) mutate(ctx context.Context, op string, fn func(Records, Millis) (Records, Link, error)) (Link, error) {
	if err := ctx.Err(); err != nil {
		return Link{}, errx.E(op, errx.Internal, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.current()
	if err != nil {
		return Link{}, errx.E(op, errx.Storage, err)
	}

	next, link, err := fn(records, MillisOf(c.now()))
	if err != nil {
		return Link{}, err
	}

	if err := c.store.Save(next); err != nil {
		c.recorder.Save("error")
		c.logger.ErrorContext(ctx, "failed to save records",
			"error", err.Error(),
			"operation", op,
		)
		return Link{}, errx.E(op, errx.Storage, err)
	}
	c.recorder.Save("ok")

	if !c.reload {
		c.records = next
	}
	c.recorder.Links(len(next))
	return link, nil
}

// current returns the records to operate on. Callers hold c.mu.
func (c *Catalog) current() (Records, error) {
	if !c.reload {
		return c.records, nil
	}
	return c.store.Load()
}

// resultOf maps an outcome to a metrics label.
func resultOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidSlug), errors.Is(err, ErrInvalidURL):
		return "invalid"
	case errors.Is(err, ErrDuplicateSlug):
		return "conflict"
	case errors.Is(err, ErrSlugNotFound):
		return "not_found"
	default:
		return "error"
	}
}
