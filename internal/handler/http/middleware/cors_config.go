package middleware

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
)

const defaultCORSMaxAge = 86400

var validMethods = map[string]bool{
	"GET":     true,
	"HEAD":    true,
	"POST":    true,
	"PUT":     true,
	"DELETE":  true,
	"PATCH":   true,
	"OPTIONS": true,
}

// LoadCORSConfig reads CORS_ALLOWED_ORIGINS, CORS_ALLOWED_METHODS,
// CORS_ALLOWED_HEADERS and CORS_MAX_AGE. Unset variables default to allowing
// any origin, method and header.
func LoadCORSConfig(logger *slog.Logger) (*CORSConfig, error) {
	origins, err := parseOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if err != nil {
		return nil, fmt.Errorf("failed to load allowed origins: %w", err)
	}

	methods, err := parseMethods(os.Getenv("CORS_ALLOWED_METHODS"))
	if err != nil {
		return nil, fmt.Errorf("failed to load allowed methods: %w", err)
	}

	maxAge, err := parseMaxAge(os.Getenv("CORS_MAX_AGE"))
	if err != nil {
		return nil, fmt.Errorf("failed to load max age: %w", err)
	}

	var validator OriginValidator = AnyOriginValidator{}
	if !(len(origins) == 1 && origins[0] == wildcard) {
		validator = NewWhitelistValidator(origins)
	}

	return &CORSConfig{
		AllowedMethods: methods,
		AllowedHeaders: splitList(os.Getenv("CORS_ALLOWED_HEADERS"), wildcard),
		MaxAge:         maxAge,
		Validator:      validator,
		Logger:         logger,
	}, nil
}

func splitList(raw, def string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{def}
	}
	out := make([]string, 0, strings.Count(raw, ",")+1)
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return []string{def}
	}
	return out
}

func parseOrigins(raw string) ([]string, error) {
	origins := splitList(raw, wildcard)
	for _, origin := range origins {
		if origin == wildcard {
			if len(origins) > 1 {
				return nil, fmt.Errorf("wildcard origin cannot be combined with explicit origins")
			}
			continue
		}

		u, err := url.Parse(origin)
		if err != nil {
			return nil, fmt.Errorf("invalid origin URL '%s': %w", origin, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return nil, fmt.Errorf("origin must use http or https scheme: %s", origin)
		}
		if (u.Path != "" && u.Path != "/") || u.RawQuery != "" || u.Fragment != "" {
			return nil, fmt.Errorf("origin must be scheme and host only: %s", origin)
		}
	}
	return origins, nil
}

func parseMethods(raw string) ([]string, error) {
	methods := splitList(raw, wildcard)
	for i, method := range methods {
		if method == wildcard {
			continue
		}
		method = strings.ToUpper(method)
		if !validMethods[method] {
			return nil, fmt.Errorf("invalid HTTP method '%s'", method)
		}
		methods[i] = method
	}
	return methods, nil
}

func parseMaxAge(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultCORSMaxAge, nil
	}
	maxAge, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid CORS_MAX_AGE '%s': must be a valid integer", raw)
	}
	if maxAge < 0 {
		return 0, fmt.Errorf("CORS_MAX_AGE must be non-negative, got: %d", maxAge)
	}
	return maxAge, nil
}
