package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/contaflow/contaflow/internal/category"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ListRules(ctx context.Context, userID uuid.UUID) ([]category.Rule, error) {
	query := `
		SELECT id, user_id, name, priority, enabled, match_type, pattern,
		       account_id, min_amount_cents, max_amount_cents, category_id, created_at
		FROM category_rules
		WHERE user_id = $1
		ORDER BY priority ASC, created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing rules: %w", err)
	}
	defer rows.Close()

	var rules []category.Rule

	for rows.Next() {
		var r category.Rule

		var matchType string

		if err := rows.Scan(
			&r.ID, &r.UserID, &r.Name, &r.Priority, &r.Enabled, &matchType,
			&r.Pattern, &r.AccountID, &r.MinAmount, &r.MaxAmount, &r.CategoryID,
			&r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning rule: %w", err)
		}

		r.MatchType = category.MatchType(matchType)

		rules = append(rules, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rules: %w", err)
	}

	return rules, nil
}

func (s *Store) ListCategories(ctx context.Context, userID uuid.UUID) ([]category.Category, error) {
	query := `SELECT id, user_id, name FROM categories WHERE user_id = $1 ORDER BY name ASC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var categories []category.Category

	for rows.Next() {
		var c category.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}

		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating categories: %w", err)
	}

	return categories, nil
}
