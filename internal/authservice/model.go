package authservice

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base32"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("session not found")
)

func newAuthModel(db *sql.DB) *DBModel {
	return &DBModel{db: db}
}

func hashToken(token string) []byte {
	hash := sha256.Sum256([]byte(token))
	return hash[:]
}

func newSession(userID string, ttl time.Duration) (*Session, error) {
	randomBytes := make([]byte, 16)
	_, err := rand.Read(randomBytes)
	if err != nil {
		return nil, err
	}

	session := &Session{
		Plain:  base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(randomBytes),
		UserID: userID,
		Expiry: time.Now().Add(ttl),
	}

	session.Hash = hashToken(session.Plain)

	return session, nil
}

func (m *DBModel) insertSession(ctx context.Context, session *Session) error {
	query := `
		INSERT INTO sessions (token_hash, user_id, expiry)
		VALUES ($1, $2, $3)`

	_, err := m.db.ExecContext(ctx, query, session.Hash, session.UserID, session.Expiry)
	return err
}

func (m *DBModel) getUserBySessionToken(ctx context.Context, tokenHash []byte) (*User, error) {
	query := `
		SELECT p.id, p.name, p.email, COALESCE(p.avatar_url, ''), p.user_type, p.created_at
		FROM profiles p
		INNER JOIN sessions s ON p.id = s.user_id
		WHERE s.token_hash = $1 AND s.expiry > $2`

	var user User
	err := m.db.QueryRowContext(ctx, query, tokenHash, time.Now()).Scan(&user.ID, &user.Name, &user.Email, &user.AvatarURL, &user.UserType, &user.CreatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}

	return &user, nil
}

// deleteSessionsByUserId removes the user's sessions and returns the
// token hashes of the deleted rows so the caller can evict cache entries.
func (m *DBModel) deleteSessionsByUserId(ctx context.Context, userID string) ([][]byte, error) {
	query := `
		DELETE FROM sessions
		WHERE user_id = $1
		RETURNING token_hash`

	rows, err := m.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hashes [][]byte
	for rows.Next() {
		var hash []byte
		if err := rows.Scan(&hash); err != nil {
			return nil, err
		}
		hashes = append(hashes, hash)
	}

	return hashes, rows.Err()
}
