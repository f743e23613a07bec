package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantonganh/newsletter"
	"github.com/quantonganh/newsletter/bolt"
	"github.com/quantonganh/newsletter/email"
	"github.com/quantonganh/newsletter/postgres"
	"github.com/quantonganh/newsletter/sqlite"
)

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := newRootCmd()

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}

	assert.ElementsMatch(t, []string{"subscription", "gateway", "email", "token"}, names)
}

func TestTokenHashCmd(t *testing.T) {
	cmd := newRootCmd()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetArgs([]string{"token", "hash", "change-me"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "e2186dbdb1bb4193608605e84f33208765b5693b55edd4f730a719a100eeea6f", strings.TrimSpace(out.String()))
}

func TestTokenHashCmd_MissingSecret(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"token", "hash"})

	assert.Error(t, cmd.Execute())
}

func TestNewLogger(t *testing.T) {
	config := &newsletter.Config{}
	config.Log.Level = "debug"

	logger, err := newLogger(config)
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())

	config.Log.Level = "loud"
	_, err = newLogger(config)
	assert.Error(t, err)
}

func TestNewStore(t *testing.T) {
	tests := []struct {
		dbType string
		want   newsletter.Database
	}{
		{"sqlite", &sqlite.DB{}},
		{"bolt", &bolt.DB{}},
		{"postgres", &postgres.DB{}},
		{"", &postgres.DB{}},
	}

	for _, tt := range tests {
		t.Run(tt.dbType, func(t *testing.T) {
			config := &newsletter.Config{}
			config.DB.Type = tt.dbType

			db, store := newStore(config, zerolog.Nop())
			assert.IsType(t, tt.want, db)
			assert.NotNil(t, store)
		})
	}
}

func TestNewMailer(t *testing.T) {
	config := &newsletter.Config{}
	assert.IsType(t, &email.LogMailer{}, newMailer(config, zerolog.Nop()))

	config.Mailer.Type = "smtp"
	_, isLog := newMailer(config, zerolog.Nop()).(*email.LogMailer)
	assert.False(t, isLog)
}
