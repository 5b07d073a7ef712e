package middleware

import "strings"

// OriginValidator decides whether an Origin header is acceptable.
type OriginValidator interface {
	IsAllowed(origin string) bool
	// AllowsAny reports whether every origin is accepted, in which case the
	// response carries "*" rather than the echoed origin.
	AllowsAny() bool
}

// AnyOriginValidator accepts every origin.
type AnyOriginValidator struct{}

func (AnyOriginValidator) IsAllowed(origin string) bool { return origin != "" }

func (AnyOriginValidator) AllowsAny() bool { return true }

// WhitelistValidator accepts only configured origins, compared
// case-insensitively and ignoring a trailing slash.
type WhitelistValidator struct {
	allowedOrigins []string
}

func NewWhitelistValidator(origins []string) *WhitelistValidator {
	normalized := make([]string, 0, len(origins))
	for _, origin := range origins {
		if origin = normalizeOrigin(origin); origin != "" {
			normalized = append(normalized, origin)
		}
	}
	return &WhitelistValidator{allowedOrigins: normalized}
}

func (v *WhitelistValidator) IsAllowed(origin string) bool {
	origin = normalizeOrigin(origin)
	if origin == "" {
		return false
	}
	for _, allowed := range v.allowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

func (v *WhitelistValidator) AllowsAny() bool { return false }

func normalizeOrigin(origin string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(origin)), "/")
}
