package httpx

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sundayezeilo/linkadmin/internal/errx"
)

const (
	// MaxFormBodySize is the maximum accepted form body size (1,000,000 bytes).
	MaxFormBodySize = 1_000_000
)

// Form holds the decoded values of an urlencoded request body, with the
// query string kept separately as a fallback source.
type Form struct {
	body  url.Values
	query url.Values
}

// DecodeForm reads an urlencoded body with a size cap. The body is parsed
// whatever its Content-Type, so the cap applies to every request.
// A body over MaxFormBodySize yields an errx.TooLarge error and the caller
// must not act on any partially read values.
func DecodeForm(w http.ResponseWriter, r *http.Request) (Form, error) {
	const op = "httpx.DecodeForm"

	r.Body = http.MaxBytesReader(w, r.Body, MaxFormBodySize)
	defer func() {
		_ = r.Body.Close()
	}()

	data, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return Form{}, errx.E(op, errx.TooLarge,
				fmt.Errorf("request body too large (max %d bytes)", MaxFormBodySize))
		}
		return Form{}, errx.E(op, errx.Invalid, fmt.Errorf("failed to read body: %w", err))
	}

	body, err := url.ParseQuery(string(data))
	if err != nil {
		return Form{}, errx.E(op, errx.Invalid, fmt.Errorf("failed to parse form: %w", err))
	}

	return Form{body: body, query: r.URL.Query()}, nil
}

// Get returns the trimmed body value for key. When the key is repeated the
// last value wins.
func (f Form) Get(key string) string {
	return lastValue(f.body, key)
}

// GetOrQuery returns the body value for key, falling back to the query string
// when the body does not carry it.
func (f Form) GetOrQuery(key string) string {
	if v := lastValue(f.body, key); v != "" {
		return v
	}
	return lastValue(f.query, key)
}

func lastValue(values url.Values, key string) string {
	vs := values[key]
	if len(vs) == 0 {
		return ""
	}
	return strings.TrimSpace(vs[len(vs)-1])
}
