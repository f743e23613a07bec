package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/quantonganh/newsletter"
)

const uniqueViolation = "23505"

const subscriptionColumns = `id, email, first_name, gender, consent, birthdate, newsletter_id`

type subscriptionStore struct {
	db *DB
}

// NewSubscriptionStore returns a subscription store backed by PostgreSQL
func NewSubscriptionStore(db *DB) newsletter.SubscriptionStore {
	return &subscriptionStore{
		db: db,
	}
}

func (ss *subscriptionStore) FindByID(ctx context.Context, id int64) (*newsletter.Subscription, error) {
	row := ss.db.pool.QueryRow(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1`, id)
	s, err := scanSubscription(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find subscription by id %d: %w", id, err)
	}
	return s, nil
}

func (ss *subscriptionStore) FindByEmail(ctx context.Context, email string) (*newsletter.Subscription, error) {
	row := ss.db.pool.QueryRow(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE email = $1`, email)
	s, err := scanSubscription(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find subscription by email %s: %w", email, err)
	}
	return s, nil
}

func (ss *subscriptionStore) FindAll(ctx context.Context) ([]newsletter.Subscription, error) {
	rows, err := ss.db.pool.Query(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var subscriptions []newsletter.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subscriptions = append(subscriptions, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscriptions: %w", err)
	}

	return subscriptions, nil
}

func (ss *subscriptionStore) Insert(ctx context.Context, s *newsletter.Subscription) error {
	err := ss.db.pool.QueryRow(ctx, `
		INSERT INTO subscriptions (email, first_name, gender, consent, birthdate, newsletter_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		s.Email, s.FirstName, s.Gender, s.Consent, s.Birthdate.Time, s.NewsletterID,
	).Scan(&s.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return &newsletter.Error{
				Code:    newsletter.ErrConflict,
				Message: fmt.Sprintf("Entry of email: %s already exists.", s.Email),
				Op:      "postgres.Insert",
				Err:     err,
			}
		}
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}

func (ss *subscriptionStore) Delete(ctx context.Context, id int64) error {
	if _, err := ss.db.pool.Exec(ctx, `DELETE FROM subscriptions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete subscription %d: %w", id, err)
	}
	return nil
}

func scanSubscription(row pgx.Row) (*newsletter.Subscription, error) {
	var (
		s         newsletter.Subscription
		birthdate time.Time
	)
	if err := row.Scan(&s.ID, &s.Email, &s.FirstName, &s.Gender, &s.Consent, &birthdate, &s.NewsletterID); err != nil {
		return nil, err
	}
	s.Birthdate = newsletter.Date{Time: birthdate.UTC()}
	return &s, nil
}
