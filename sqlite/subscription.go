package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/quantonganh/newsletter"
)

const subscriptionColumns = `id, email, first_name, gender, consent, birthdate, newsletter_id`

type subscriptionStore struct {
	db *DB
}

// NewSubscriptionStore returns a subscription store backed by SQLite
func NewSubscriptionStore(db *DB) newsletter.SubscriptionStore {
	return &subscriptionStore{
		db: db,
	}
}

// FindByID finds a subscription by id
func (ss *subscriptionStore) FindByID(ctx context.Context, id int64) (*newsletter.Subscription, error) {
	row := ss.db.sqlDB.QueryRowContext(ctx, "SELECT "+subscriptionColumns+" FROM subscriptions WHERE id = ?", id)
	s, err := scanSubscription(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find by id %d: %w", id, err)
	}
	return s, nil
}

// FindByEmail finds a subscription by email
func (ss *subscriptionStore) FindByEmail(ctx context.Context, email string) (*newsletter.Subscription, error) {
	row := ss.db.sqlDB.QueryRowContext(ctx, "SELECT "+subscriptionColumns+" FROM subscriptions WHERE email = ?", email)
	s, err := scanSubscription(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find by email %s: %w", email, err)
	}
	return s, nil
}

// FindAll returns all subscriptions ordered by id
func (ss *subscriptionStore) FindAll(ctx context.Context) ([]newsletter.Subscription, error) {
	rows, err := ss.db.sqlDB.QueryContext(ctx, "SELECT "+subscriptionColumns+" FROM subscriptions ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var subscriptions []newsletter.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		subscriptions = append(subscriptions, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return subscriptions, nil
}

// Insert inserts a new subscription and sets its id
func (ss *subscriptionStore) Insert(ctx context.Context, s *newsletter.Subscription) error {
	res, err := ss.db.sqlDB.ExecContext(ctx,
		"INSERT INTO subscriptions (email, first_name, gender, consent, birthdate, newsletter_id) VALUES (?, ?, ?, ?, ?, ?)",
		s.Email, s.FirstName, s.Gender, s.Consent, s.Birthdate.String(), s.NewsletterID)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return &newsletter.Error{
				Code:    newsletter.ErrConflict,
				Message: fmt.Sprintf("Entry of email: %s already exists.", s.Email),
				Op:      "sqlite.Insert",
				Err:     err,
			}
		}
		return fmt.Errorf("failed to insert: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted id: %w", err)
	}
	s.ID = id

	return nil
}

// Delete deletes a subscription by id
func (ss *subscriptionStore) Delete(ctx context.Context, id int64) error {
	if _, err := ss.db.sqlDB.ExecContext(ctx, "DELETE FROM subscriptions WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete %d: %w", id, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSubscription(row scanner) (*newsletter.Subscription, error) {
	var (
		s         newsletter.Subscription
		birthdate string
	)
	if err := row.Scan(&s.ID, &s.Email, &s.FirstName, &s.Gender, &s.Consent, &birthdate, &s.NewsletterID); err != nil {
		return nil, err
	}

	if birthdate != "" {
		d, err := newsletter.ParseDate(birthdate)
		if err != nil {
			return nil, fmt.Errorf("invalid birthdate %q: %w", birthdate, err)
		}
		s.Birthdate = d
	}

	return &s, nil
}
