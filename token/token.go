// Package token loads the access credentials allowed to call the subscription API.
package token

import (
	"crypto/subtle"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/quantonganh/newsletter"
	"github.com/quantonganh/newsletter/pkg/hash"
)

// EnvPath names the environment variable overriding the embedded credentials file
const EnvPath = "ACCESS_TOKENS_PATH"

//go:embed access_tokens.json
var defaultTokens []byte

// Store is an immutable set of credentials keyed by application id
type Store struct {
	credentials map[string]newsletter.Credential
}

var _ newsletter.CredentialStore = (*Store)(nil)

// Load reads credentials from path, or from the embedded file when path is empty
func Load(path string) (*Store, error) {
	if path == "" {
		return Parse(defaultTokens)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read access tokens: %w", err)
	}

	return Parse(data)
}

// Parse builds a store from a JSON array of credentials.
// When an application id is listed twice the first entry wins.
func Parse(data []byte) (*Store, error) {
	var list []newsletter.Credential
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode access tokens: %w", err)
	}

	credentials := make(map[string]newsletter.Credential, len(list))
	for _, c := range list {
		if c.ApplicationID == "" || c.Token == "" {
			return nil, errors.New("access token without application id or token")
		}
		if _, ok := credentials[c.ApplicationID]; ok {
			continue
		}
		c.Token = strings.ToLower(c.Token)
		credentials[c.ApplicationID] = c
	}

	return &Store{credentials: credentials}, nil
}

// Authenticate hashes the secret and compares it with the stored digest of the application
func (s *Store) Authenticate(applicationID, secret string) (*newsletter.Credential, bool) {
	c, ok := s.credentials[applicationID]
	if !ok {
		return nil, false
	}

	digest, err := hash.SHA256(secret)
	if err != nil {
		return nil, false
	}

	if subtle.ConstantTimeCompare([]byte(digest), []byte(c.Token)) != 1 {
		return nil, false
	}

	return &c, true
}

// Len returns the number of credentials
func (s *Store) Len() int {
	return len(s.credentials)
}
