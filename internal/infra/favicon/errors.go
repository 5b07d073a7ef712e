package favicon

import "errors"

var (
	// ErrInvalidURL is recorded when an item URL cannot yield a base URL.
	ErrInvalidURL = errors.New("favicon: invalid URL")

	// ErrPrivateIP is recorded when a host resolves to a loopback, private or
	// link-local address and private addresses are denied.
	ErrPrivateIP = errors.New("favicon: private IP address not allowed")

	ErrTooManyRedirects = errors.New("favicon: too many redirects")

	ErrBodyTooLarge = errors.New("favicon: response body too large")

	// ErrPageStatus is recorded when the home page answers with a non-2xx
	// status. The lookup ends there; /favicon.ico is not probed.
	ErrPageStatus = errors.New("favicon: unexpected home page status")
)
