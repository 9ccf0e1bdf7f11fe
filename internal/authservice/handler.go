package authservice

import (
	"context"
	"database/sql"

	"github.com/automaatte/platform/internal/common"
)

func NewAuthService(db *sql.DB, c *common.Cache) *AuthService {
	return &AuthService{m: newAuthModel(db), c: c}
}

// GetUserBySessionToken resolves a bearer token to the user holding it.
// Resolved users are cached keyed by the token hash so that the per-request
// authentication middleware does not hit the database on every call.
func (s *AuthService) GetUserBySessionToken(ctx context.Context, token string) (*User, error) {
	v := common.NewValidator()
	v.Check(token != "", "token", "must be provided")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	hash := hashToken(token)

	if cached, ok := s.c.Get(common.CacheKeyUserBySessionToken(hash)); ok {
		if user, ok := cached.(*User); ok {
			return user, nil
		}
	}

	user, err := s.m.getUserBySessionToken(ctx, hash)
	if err != nil {
		return nil, err
	}

	s.c.Set(common.CacheKeyUserBySessionToken(hash), user)

	return user, nil
}

// CreateSession mints a session for a user that the external identity
// provider has already verified. Used by the provider callback and tests.
func (s *AuthService) CreateSession(ctx context.Context, userID string) (*Session, error) {
	v := common.NewValidator()
	v.Check(userID != "", "user_id", "must be provided")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	session, err := newSession(userID, SessionTokenTime)
	if err != nil {
		return nil, err
	}

	err = s.m.insertSession(ctx, session)
	if err != nil {
		return nil, err
	}

	return session, nil
}

// RevokeSessions removes every session held by the user and evicts the
// matching cache entries so a revoked token stops resolving immediately.
func (s *AuthService) RevokeSessions(ctx context.Context, userID string) error {
	v := common.NewValidator()
	v.Check(userID != "", "user_id", "must be provided")
	if !v.Valid() {
		return v.ValidationError()
	}

	hashes, err := s.m.deleteSessionsByUserId(ctx, userID)
	if err != nil {
		return err
	}

	for _, hash := range hashes {
		s.c.Delete(common.CacheKeyUserBySessionToken(hash))
	}

	return nil
}
