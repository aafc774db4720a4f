// Package matching learns which category a bill belongs to from its name.
package matching

import (
	"context"
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/budgetwise/internal/bill"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching
type Repository interface {
	// FindCategory returns the category of the longest pattern contained in name, or "".
	FindCategory(ctx context.Context, name string) (string, error)
	CreateRule(ctx context.Context, pattern, category string) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest returns a category for the bill name. Returns empty string if no rule matches.
func (s *Service) Suggest(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil
	}

	return s.repo.FindCategory(ctx, name)
}

// Learn remembers that names containing pattern belong to category.
func (s *Service) Learn(ctx context.Context, pattern, category string) error {
	pattern = strings.TrimSpace(pattern)
	category = strings.TrimSpace(category)

	if pattern == "" {
		return &bill.ValidationError{Field: "pattern", Reason: "is required"}
	}

	if category == "" {
		return &bill.ValidationError{Field: "category", Reason: "is required"}
	}

	if err := s.repo.CreateRule(ctx, pattern, category); err != nil {
		return fmt.Errorf("learn %q: %w", pattern, err)
	}

	return nil
}
