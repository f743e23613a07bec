//go:build integration

package postgres

import (
	"context"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/quantonganh/newsletter"
)

var testDB *DB

func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("newsletter"),
		tcpostgres.WithUsername("newsletter"),
		tcpostgres.WithPassword("newsletter"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		log.Fatalf("start postgres: %v", err)
	}

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		log.Fatalf("get connection string: %v", err)
	}

	testDB = NewDB(Config{URL: url, ConnectAttempts: 3}, testLogger)
	if err := testDB.Open(); err != nil {
		log.Fatalf("open database: %v", err)
	}

	code := m.Run()

	_ = testDB.Close()
	if err := container.Terminate(ctx); err != nil {
		log.Printf("terminate postgres: %v", err)
	}

	os.Exit(code)
}

func newSubscription() *newsletter.Subscription {
	return &newsletter.Subscription{
		Email:        gofakeit.Email(),
		FirstName:    gofakeit.FirstName(),
		Consent:      true,
		Birthdate:    newsletter.NewDate(1990, 1, 2),
		NewsletterID: 1,
	}
}

func TestSubscriptionStore(t *testing.T) {
	ctx := context.Background()
	store := NewSubscriptionStore(testDB)

	s := newSubscription()
	require.NoError(t, store.Insert(ctx, s))
	assert.Positive(t, s.ID)

	got, err := store.FindByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	got, err = store.FindByEmail(ctx, s.Email)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)

	duplicate := newSubscription()
	duplicate.Email = s.Email
	err = store.Insert(ctx, duplicate)
	assert.Equal(t, newsletter.ErrConflict, newsletter.ErrorCode(err))

	all, err := store.FindAll(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, all)

	require.NoError(t, store.Delete(ctx, s.ID))

	got, err = store.FindByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestConcurrentInsertKeepsOneRecord(t *testing.T) {
	ctx := context.Background()
	store := NewSubscriptionStore(testDB)
	email := gofakeit.Email()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		conflicts int
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := newSubscription()
			s.Email = email
			if err := store.Insert(ctx, s); newsletter.ErrorCode(err) == newsletter.ErrConflict {
				mu.Lock()
				conflicts++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 4, conflicts)
}
