package crypto

//go:generate mockgen -source=interfaces.go -destination=../mock/password_hasher_mock.go -package=mock

// PasswordHasher turns plaintext passwords into self-describing encoded
// digests and checks candidates against them.
//
// Encoded values carry their own algorithm parameters and salt, so a hash
// produced with older cost settings still verifies after the settings change.
type PasswordHasher interface {
	// Hash returns the encoded digest of plain using a fresh random salt.
	// Two calls with the same input produce different outputs.
	Hash(plain string) (string, error)

	// Verify reports whether plain matches encoded. Malformed or foreign
	// encodings yield false rather than an error.
	Verify(plain, encoded string) bool
}
