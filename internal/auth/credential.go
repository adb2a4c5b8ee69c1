// Package auth implements the credential store and the stateless
// session tokens: password hashing with PBKDF2-HMAC-SHA256 and signed,
// time-bounded identity tokens.
package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	credentialAlgorithm = "pbkdf2_sha256"

	// MinIterations is the floor for the PBKDF2 work factor.
	MinIterations = 100_000

	// DefaultIterations is the work factor for newly derived records.
	DefaultIterations = 120_000

	saltSize = 16
	keySize  = sha256.Size
)

// CredentialStore derives and verifies password credential records.
// Records are encoded as "pbkdf2_sha256$iterations$saltHex$hashHex" so
// every field is unambiguously recoverable from the stored string.
type CredentialStore struct {
	iterations           int
	allowLegacyPlaintext bool
	logger               *slog.Logger
}

// Option configures a CredentialStore.
type Option func(*CredentialStore)

// WithIterations overrides the PBKDF2 iteration count for new records.
// Values below MinIterations are clamped up.
func WithIterations(n int) Option {
	return func(s *CredentialStore) {
		if n < MinIterations {
			n = MinIterations
		}
		s.iterations = n
	}
}

// WithLegacyPlaintext enables the migration shim that accepts stored
// plaintext values by direct comparison when a record does not parse as
// a structured credential. Matches are logged so callers can force a
// rehash; leave this off unless migrating a legacy database.
func WithLegacyPlaintext() Option {
	return func(s *CredentialStore) { s.allowLegacyPlaintext = true }
}

// WithLogger sets the logger used for legacy-match warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *CredentialStore) { s.logger = logger }
}

// NewCredentialStore constructs a CredentialStore with the default
// iteration count and the legacy shim disabled.
func NewCredentialStore(opts ...Option) *CredentialStore {
	s := &CredentialStore{
		iterations: DefaultIterations,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hash derives a salted credential record from the password. The salt
// is fresh per call, so hashing the same password twice never yields
// two equal records.
func (s *CredentialStore) Hash(password string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := pbkdf2.Key([]byte(password), salt, s.iterations, keySize, sha256.New)
	return fmt.Sprintf("%s$%d$%s$%s",
		credentialAlgorithm, s.iterations, hex.EncodeToString(salt), hex.EncodeToString(key)), nil
}

// Verify re-derives the key with the record's salt and iteration count
// and compares in constant time. Any malformed record verifies false,
// never an error. With the legacy shim enabled, a record that does not
// parse is compared directly against the password instead.
func (s *CredentialStore) Verify(password, record string) bool {
	iterations, salt, expected, err := parseRecord(record)
	if err != nil {
		if !s.allowLegacyPlaintext {
			return false
		}
		if subtle.ConstantTimeCompare([]byte(password), []byte(record)) != 1 {
			return false
		}
		s.logger.Warn("password matched legacy plaintext record, rehash required")
		return true
	}
	derived := pbkdf2.Key([]byte(password), salt, iterations, len(expected), sha256.New)
	return hmac.Equal(derived, expected)
}

// NeedsRehash reports whether a stored record should be re-derived on
// next successful verification: legacy plaintext values and records
// below the current iteration count both qualify.
func (s *CredentialStore) NeedsRehash(record string) bool {
	iterations, _, _, err := parseRecord(record)
	if err != nil {
		return true
	}
	return iterations < s.iterations
}

func parseRecord(record string) (iterations int, salt, key []byte, err error) {
	parts := strings.SplitN(record, "$", 4)
	if len(parts) != 4 {
		return 0, nil, nil, fmt.Errorf("credential record has %d fields, want 4", len(parts))
	}
	if parts[0] != credentialAlgorithm {
		return 0, nil, nil, fmt.Errorf("unknown credential algorithm %q", parts[0])
	}
	iterations, err = strconv.Atoi(parts[1])
	if err != nil || iterations <= 0 {
		return 0, nil, nil, fmt.Errorf("invalid iteration count %q", parts[1])
	}
	salt, err = hex.DecodeString(parts[2])
	if err != nil || len(salt) == 0 {
		return 0, nil, nil, fmt.Errorf("invalid salt encoding")
	}
	key, err = hex.DecodeString(parts[3])
	if err != nil || len(key) == 0 {
		return 0, nil, nil, fmt.Errorf("invalid key encoding")
	}
	return iterations, salt, key, nil
}
