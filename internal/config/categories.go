// Package config loads file-based configuration shared by the binaries.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"news-aggregator/internal/domain/entity"
)

// CategoriesFileEnv names the environment variable pointing at a categories YAML file.
const CategoriesFileEnv = "CATEGORIES_FILE"

var (
	ErrNoCategories       = errors.New("category list is empty")
	ErrDuplicateCategory  = errors.New("duplicate category")
	ErrBlankCategoryLabel = errors.New("category label is blank")
)

// CategoriesConfig is the on-disk shape of the categories file:
//
//	categories:
//	  - Music
//	  - Technology
type CategoriesConfig struct {
	Categories []string `yaml:"categories"`
}

// LoadCategories parses and validates the YAML file at path.
// The path comes from operator configuration, not request input.
func LoadCategories(path string) ([]entity.Category, error) {
	// #nosec G304 -- path is provided by trusted operator configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read categories file: %w", err)
	}

	var cfg CategoriesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse categories file: %w", err)
	}

	categories, err := validateCategories(cfg.Categories)
	if err != nil {
		return nil, fmt.Errorf("categories validation failed: %w", err)
	}
	return categories, nil
}

// CategoriesFromEnv returns the categories from CATEGORIES_FILE, or
// entity.DefaultCategories when the variable is unset or the file is unusable.
func CategoriesFromEnv(logger *slog.Logger) []entity.Category {
	path := strings.TrimSpace(os.Getenv(CategoriesFileEnv))
	if path == "" {
		return defaultCategories()
	}

	categories, err := LoadCategories(path)
	if err != nil {
		logger.Warn("Configuration fallback applied",
			slog.String("field", "categories"),
			slog.String("path", path),
			slog.Any("error", err))
		return defaultCategories()
	}
	return categories
}

func defaultCategories() []entity.Category {
	out := make([]entity.Category, len(entity.DefaultCategories))
	copy(out, entity.DefaultCategories)
	return out
}

func validateCategories(labels []string) ([]entity.Category, error) {
	if len(labels) == 0 {
		return nil, ErrNoCategories
	}

	seen := make(map[string]struct{}, len(labels))
	out := make([]entity.Category, 0, len(labels))
	for i, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			return nil, fmt.Errorf("%w at index %d", ErrBlankCategoryLabel, i)
		}
		key := strings.ToLower(label)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCategory, label)
		}
		seen[key] = struct{}{}
		out = append(out, entity.Category(label))
	}
	return out, nil
}
