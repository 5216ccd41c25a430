package category

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=category
type Repository interface {
	ListRules(ctx context.Context, userID uuid.UUID) ([]Rule, error)
	ListCategories(ctx context.Context, userID uuid.UUID) ([]Category, error)
}

// Service loads a user's rules and categories and runs the engine over them.
type Service struct {
	repo   Repository
	engine *Engine
}

func NewService(repo Repository, engine *Engine) *Service {
	return &Service{repo: repo, engine: engine}
}

func (s *Service) Categorize(ctx context.Context, userID uuid.UUID, in Input) (Result, error) {
	rules, err := s.repo.ListRules(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("list rules: %w", err)
	}

	categories, err := s.repo.ListCategories(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("list categories: %w", err)
	}

	return s.engine.Categorize(in, rules, categories), nil
}

// CategorizeBatch resolves rules and categories once for a whole batch.
func (s *Service) CategorizeBatch(ctx context.Context, userID uuid.UUID, ins []Input) ([]Result, error) {
	rules, err := s.repo.ListRules(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}

	categories, err := s.repo.ListCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	results := make([]Result, len(ins))
	for i, in := range ins {
		results[i] = s.engine.Categorize(in, rules, categories)
	}

	return results, nil
}
