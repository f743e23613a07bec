package bolt

import (
	"context"
	"sort"

	"github.com/asdine/storm/v3"
	"github.com/go-errors/errors"

	"github.com/quantonganh/newsletter"
)

type subscriptionStore struct {
	db *DB
}

// NewSubscriptionStore returns a subscription store backed by BoltDB
func NewSubscriptionStore(db *DB) newsletter.SubscriptionStore {
	return &subscriptionStore{
		db: db,
	}
}

// FindByID finds a subscription by id
func (ss *subscriptionStore) FindByID(_ context.Context, id int64) (*newsletter.Subscription, error) {
	var s newsletter.Subscription
	if err := ss.db.stormDB.One("ID", id, &s); err != nil {
		if errors.Is(err, storm.ErrNotFound) {
			return nil, nil
		}
		return nil, errors.Errorf("failed to find by id %d: %v", id, err)
	}

	return &s, nil
}

// FindByEmail finds a subscription by email
func (ss *subscriptionStore) FindByEmail(_ context.Context, email string) (*newsletter.Subscription, error) {
	var s newsletter.Subscription
	if err := ss.db.stormDB.One("Email", email, &s); err != nil {
		if errors.Is(err, storm.ErrNotFound) {
			return nil, nil
		}
		return nil, errors.Errorf("failed to find by email %s: %v", email, err)
	}

	return &s, nil
}

// FindAll returns all subscriptions ordered by id
func (ss *subscriptionStore) FindAll(_ context.Context) ([]newsletter.Subscription, error) {
	var subscriptions []newsletter.Subscription
	if err := ss.db.stormDB.All(&subscriptions); err != nil {
		return nil, errors.Errorf("failed to find all: %v", err)
	}

	sort.Slice(subscriptions, func(i, j int) bool {
		return subscriptions[i].ID < subscriptions[j].ID
	})

	return subscriptions, nil
}

// Insert inserts new subscription into stormDB
func (ss *subscriptionStore) Insert(_ context.Context, s *newsletter.Subscription) error {
	if err := ss.db.stormDB.Save(s); err != nil {
		if errors.Is(err, storm.ErrAlreadyExists) {
			return &newsletter.Error{
				Code:    newsletter.ErrConflict,
				Message: "Entry of email: " + s.Email + " already exists.",
				Op:      "bolt.Insert",
				Err:     err,
			}
		}
		return errors.Errorf("failed to save: %v", err)
	}

	return nil
}

// Delete deletes a subscription by id
func (ss *subscriptionStore) Delete(ctx context.Context, id int64) error {
	s, err := ss.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if s == nil {
		return nil
	}

	if err := ss.db.stormDB.DeleteStruct(s); err != nil {
		return errors.Errorf("failed to delete %d: %v", id, err)
	}

	return nil
}
