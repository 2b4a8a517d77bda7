package service

// TokenService generates and hashes confirmation tokens. The plaintext token
// is a capability credential mailed to the subject, so it is generated from a
// CSPRNG and persisted only as a slow argon2id hash.
type TokenService interface {
	// GenerateToken returns a new random plaintext token and its hash.
	GenerateToken() (plainToken string, hashedToken string, err error)
	// CompareToken reports whether the plaintext token matches the hash.
	CompareToken(plainToken string, hashedToken string) bool
}
