package links

import "errors"

// Errors surfaced by the admin commands and the redirect. They are wrapped in
// an *errx.Error carrying the matching kind; use errors.Is to match them.
var (
	ErrInvalidSlug   = errors.New("invalid slug")
	ErrInvalidURL    = errors.New("invalid destination url")
	ErrDuplicateSlug = errors.New("slug already exists")
	ErrSlugNotFound  = errors.New("slug does not exist")
)
