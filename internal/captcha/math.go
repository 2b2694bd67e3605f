package captcha

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"

	"github.com/MKhiriev/go-login-portal/internal/logger"
	"github.com/MKhiriev/go-login-portal/models"
)

type mathVerifier struct {
	store  *ChallengeStore
	random io.Reader
	logger *logger.Logger
}

// NewMathVerifier returns the built-in arithmetic strategy backed by store.
func NewMathVerifier(store *ChallengeStore, logger *logger.Logger) Verifier {
	return &mathVerifier{store: store, random: rand.Reader, logger: logger}
}

func (m *mathVerifier) Mode() Mode { return ModeMath }

func (m *mathVerifier) SiteKey() string { return "" }

func (m *mathVerifier) Issue(ctx context.Context, sessionID, scope string) (string, error) {
	if err := checkKey(sessionID, scope); err != nil {
		return "", err
	}

	question, answer, err := m.generate()
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*mathVerifier.Issue").Msg("error generating challenge")
		return "", err
	}

	m.store.Put(sessionID, scope, question, answer)
	return question, nil
}

func (m *mathVerifier) Current(ctx context.Context, sessionID, scope string) (string, error) {
	if err := checkKey(sessionID, scope); err != nil {
		return "", err
	}

	if question, ok := m.store.Question(sessionID, scope); ok {
		return question, nil
	}
	return m.Issue(ctx, sessionID, scope)
}

func (m *mathVerifier) Verify(ctx context.Context, proof models.CaptchaProof) bool {
	if proof.SessionID == "" || !ValidScope(proof.Scope) {
		return false
	}

	expected, ok := m.store.Take(proof.SessionID, proof.Scope)
	if !ok {
		return false
	}

	submitted := strings.TrimSpace(proof.Answer)
	return subtle.ConstantTimeCompare([]byte(submitted), []byte(expected)) == 1
}

// generate builds "What is L + R?" or "What is L - R?" with L in [5,19] and
// R in [1,9]. Subtraction operands are ordered so the answer is never
// negative.
func (m *mathVerifier) generate() (string, string, error) {
	left, err := m.randInt(15)
	if err != nil {
		return "", "", err
	}
	right, err := m.randInt(9)
	if err != nil {
		return "", "", err
	}
	op, err := m.randInt(2)
	if err != nil {
		return "", "", err
	}
	left += 5
	right++

	if op == 1 {
		return fmt.Sprintf("What is %d + %d?", left, right), strconv.Itoa(left + right), nil
	}

	if right > left {
		left, right = right, left
	}
	return fmt.Sprintf("What is %d - %d?", left, right), strconv.Itoa(left - right), nil
}

func (m *mathVerifier) randInt(n int64) (int, error) {
	v, err := rand.Int(m.random, big.NewInt(n))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrGeneratingChallenge, err)
	}
	return int(v.Int64()), nil
}

func checkKey(sessionID, scope string) error {
	if !ValidScope(scope) {
		return ErrUnknownScope
	}
	if sessionID == "" {
		return ErrMissingSession
	}
	return nil
}
