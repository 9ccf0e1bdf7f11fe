package authservice

import (
	"database/sql"
	"time"

	"github.com/automaatte/platform/internal/common"
)

type UserType string

const (
	UserTypeFree    UserType = "free"
	UserTypeCore    UserType = "core"
	UserTypePaid    UserType = "paid"
	UserTypeSpecial UserType = "special"
	UserTypeAdmin   UserType = "admin"

	SessionTokenTime time.Duration = 7 * 24 * time.Hour
)

var (
	AnonymousUser = User{}
)

// User is the profile projection resolved from a session token. The
// identity provider itself lives outside this module; sessions and
// profiles are the only pieces of it stored locally.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	UserType  UserType  `json:"user_type"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) IsAnonymous() bool {
	return u == nil || u.ID == ""
}

type AuthService struct {
	m *DBModel
	c *common.Cache
}

type DBModel struct {
	db *sql.DB
}

type Session struct {
	Plain  string    `json:"token"`
	Hash   []byte    `json:"-"`
	UserID string    `json:"-"`
	Expiry time.Time `json:"expiry"`
}
