package token

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbedded(t *testing.T) {
	store, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())

	c, ok := store.Authenticate("gateway", "change-me")
	require.True(t, ok)
	assert.Equal(t, "ADMIN", c.Role)

	_, ok = store.Authenticate("gateway", "wrong")
	assert.False(t, ok)

	_, ok = store.Authenticate("unknown", "change-me")
	assert.False(t, ok)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	data := `[
		{"applicationId": "app", "token": "E2186DBDB1BB4193608605E84F33208765B5693B55EDD4F730A719A100EEEA6F", "role": "USER"},
		{"applicationId": "app", "token": "0000", "role": "ADMIN"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	store, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())

	c, ok := store.Authenticate("app", "change-me")
	require.True(t, ok)
	assert.Equal(t, "USER", c.Role)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = Parse([]byte(`{"applicationId": "app"}`))
	assert.Error(t, err)

	_, err = Parse([]byte(`[{"applicationId": "", "token": "abc"}]`))
	assert.Error(t, err)
}
