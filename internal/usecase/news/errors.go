package news

import "errors"

// ErrInvalidLimit is returned when the requested sample size is outside [MinLimit, MaxLimit].
// The message is exposed to API clients verbatim.
var ErrInvalidLimit = errors.New("Limit must be between 1 and 200") //nolint:staticcheck // client-facing message
