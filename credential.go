package newsletter

// Credential grants an application access to the subscription API
type Credential struct {
	ApplicationID string `json:"applicationId"`
	// Token is the hex encoded SHA-256 digest of the secret
	Token string `json:"token"`
	Role  string `json:"role"`
}

// CredentialStore checks application secrets
type CredentialStore interface {
	Authenticate(applicationID, secret string) (*Credential, bool)
}
