package core

import (
	"context"
	"errors"
	"net"
	"net/url"
	"os/exec"

	"github.com/verscout/verscout/client"
	"github.com/verscout/verscout/internal/vercmp"
)

// Normalize maps an adapter failure into a LookupError with exactly one
// kind. Pure mapping, total over the adapter error vocabulary;
// unrecognized failures map to KindUnknown with the original message
// preserved.
func Normalize(ecosystem, name string, err error) LookupError {
	lerr := LookupError{
		Ecosystem: ecosystem,
		Name:      name,
		Kind:      KindUnknown,
		Message:   err.Error(),
	}

	var (
		httpErr     *client.HTTPError
		authErr     *client.AuthError
		rateErr     *client.RateLimitError
		invalidErr  *InvalidInputError
		netErr      net.Error
		urlErr      *url.Error
		execPathErr *exec.Error
	)

	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		lerr.Kind = KindTimeout

	case errors.As(err, &invalidErr):
		lerr.Kind = KindInvalidInput

	case errors.As(err, &authErr):
		lerr.Kind = KindAuthFailure

	case errors.As(err, &rateErr):
		lerr.Kind = KindRateLimited

	case errors.Is(err, client.ErrNotFound):
		// Covers NotFoundError and 404/410 HTTPErrors.
		lerr.Kind = KindNotFound

	case errors.Is(err, vercmp.ErrNoMatch):
		// The registry answered but no version satisfied the hint.
		lerr.Kind = KindNotFound

	case errors.Is(err, client.ErrUnavailable):
		lerr.Kind = KindRegistryUnavailable

	case errors.As(err, &httpErr):
		// Remaining unexpected statuses (3xx without location, 4xx).
		lerr.Kind = KindUnknown

	case errors.As(err, &netErr) && netErr.Timeout():
		lerr.Kind = KindTimeout

	case errors.As(err, &urlErr), errors.As(err, &netErr):
		lerr.Kind = KindRegistryUnavailable

	case errors.As(err, &execPathErr), errors.Is(err, exec.ErrNotFound):
		// The bundled version-discovery utility is missing.
		lerr.Kind = KindRegistryUnavailable
	}

	return lerr
}
