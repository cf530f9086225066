package store

import (
	"context"
	"fmt"
	"time"
)

// TransactionFilter narrows a transaction listing. Zero values mean no filter;
// To is exclusive.
type TransactionFilter struct {
	From      time.Time
	To        time.Time
	AccountID string
}

// TransactionView is a transaction joined with its account and category names.
type TransactionView struct {
	ID         string    `json:"id"`
	Date       time.Time `json:"date"`
	Category   *string   `json:"category"`
	CategoryID *string   `json:"categoryId"`
	Payee      string    `json:"payee"`
	Amount     int64     `json:"amount"`
	Notes      *string   `json:"notes"`
	Account    string    `json:"account"`
	AccountID  string    `json:"accountId"`
}

// ListTransactions returns userID's transactions, newest first.
func (s *Store) ListTransactions(ctx context.Context, userID string, f TransactionFilter) ([]TransactionView, error) {
	q := s.Transactions.Scoped(ctx, userID).
		Select("transactions.id, transactions.date, categories.name AS category, transactions.category_id, " +
			"transactions.payee, transactions.amount, transactions.notes, accounts.name AS account, transactions.account_id").
		Joins("INNER JOIN accounts ON accounts.id = transactions.account_id").
		Joins("LEFT JOIN categories ON categories.id = transactions.category_id")

	if !f.From.IsZero() {
		q = q.Where("transactions.date >= ?", f.From.UTC())
	}
	if !f.To.IsZero() {
		q = q.Where("transactions.date < ?", f.To.UTC())
	}
	if f.AccountID != "" {
		q = q.Where("transactions.account_id = ?", f.AccountID)
	}

	out := make([]TransactionView, 0)
	if err := q.Order("transactions.date DESC, transactions.id DESC").Scan(&out).Error; err != nil {
		return nil, fmt.Errorf("list transactions: %w", translate(err))
	}
	return out, nil
}

// CheckReferences verifies that accountID and, when set, categoryID belong to userID.
func (s *Store) CheckReferences(ctx context.Context, userID, accountID string, categoryID *string) error {
	if accountID != "" {
		ok, err := s.Accounts.Exists(ctx, userID, accountID)
		if err != nil {
			return err
		}
		if !ok {
			return &ReferenceError{Field: "accountId", ID: accountID}
		}
	}
	if categoryID != nil && *categoryID != "" {
		ok, err := s.Categories.Exists(ctx, userID, *categoryID)
		if err != nil {
			return err
		}
		if !ok {
			return &ReferenceError{Field: "categoryId", ID: *categoryID}
		}
	}
	return nil
}

// ReferenceError names the request field holding an id the caller does not own.
type ReferenceError struct {
	Field string
	ID    string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Field, e.ID, ErrInvalidReference)
}

func (e *ReferenceError) Unwrap() error { return ErrInvalidReference }
