package service

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math/big"

	"github.com/shortlinkhq/shortlink/internal/models"
	"github.com/shortlinkhq/shortlink/internal/repository"
)

const rawTokenLength = 32

// AuthService validates bearer tokens against stored HMAC-SHA256
// hashes (spec §4.7). The raw token is never persisted; comparison is
// delegated to the store's unique index lookup on the hash rather than
// a constant-time loop over every row, since the hash itself already
// carries no information an attacker could exploit via timing.
type AuthService struct {
	tokens repository.TokenStore
	secret []byte
}

func NewAuthService(tokens repository.TokenStore, secret string) *AuthService {
	return &AuthService{tokens: tokens, secret: []byte(secret)}
}

func (s *AuthService) hash(rawToken string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(rawToken))
	return hex.EncodeToString(mac.Sum(nil))
}

// Authenticate resolves a raw bearer token to its ApiToken record,
// touching last_used_at on success. Revoked or unknown tokens both fail
// closed with the same unauthorized error so enumeration gains no
// information.
func (s *AuthService) Authenticate(ctx context.Context, rawToken string) (*models.ApiToken, error) {
	if rawToken == "" {
		return nil, UnauthorizedError("missing bearer token")
	}

	token, err := s.tokens.GetByHash(ctx, s.hash(rawToken))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, UnauthorizedError("invalid or revoked token")
		}
		return nil, WrapInternal("authenticate", err)
	}
	if !token.Valid() {
		return nil, UnauthorizedError("invalid or revoked token")
	}

	// Fire-and-forget (spec §4.7): last-used tracking never blocks or
	// fails the request it's attached to. Detached from ctx so request
	// cancellation right after a response doesn't also cancel the write.
	go func(id int64) {
		_ = s.tokens.TouchLastUsed(context.Background(), id)
	}(token.ID)
	return token, nil
}

// IssueToken generates a fresh random token, stores only its hash, and
// returns the raw value once — it is never retrievable again.
func (s *AuthService) IssueToken(ctx context.Context, name string) (string, *models.ApiToken, error) {
	raw, err := generateRawToken()
	if err != nil {
		return "", nil, WrapInternal("generate token", err)
	}

	record, err := s.tokens.Create(ctx, name, s.hash(raw))
	if err != nil {
		if errors.Is(err, repository.ErrUniqueViolate) {
			return "", nil, ConflictError("token hash collision, retry", nil)
		}
		return "", nil, WrapInternal("create token", err)
	}
	return raw, record, nil
}

func (s *AuthService) Revoke(ctx context.Context, id int64) error {
	if err := s.tokens.Revoke(ctx, id); err != nil {
		return translateNotFound(err, "token")
	}
	return nil
}

func (s *AuthService) List(ctx context.Context) ([]models.ApiToken, error) {
	list, err := s.tokens.List(ctx)
	if err != nil {
		return nil, WrapInternal("list tokens", err)
	}
	return list, nil
}

const tokenCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

func generateRawToken() (string, error) {
	out := make([]byte, rawTokenLength)
	max := big.NewInt(int64(len(tokenCharset)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = tokenCharset[n.Int64()]
	}
	return string(out), nil
}
