package utils

import "time"

// PasswordResetToken carries a raw reset token for the user and the
// hash that goes into the database.  Only the hash is persisted, so a
// leaked users table cannot be replayed into password resets.
type PasswordResetToken struct {
	Raw  string
	Hash string
	Exp  time.Time
}

// NewPasswordResetToken returns a random 32-byte hex token with its
// SHA-256 hash and an expiry ttlMin minutes from now.
func NewPasswordResetToken(ttlMin int) (PasswordResetToken, error) {
	raw, err := randomHex(32)
	if err != nil {
		return PasswordResetToken{}, err
	}
	return PasswordResetToken{
		Raw:  raw,
		Hash: HashRefreshRaw(raw),
		Exp:  time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute),
	}, nil
}
