package aiservice

import (
	"context"
	"net/http"

	"github.com/automaatte/platform/internal/authservice"
)

// Tier is the entitlement level forwarded to the remote AI service. The
// remote side does its own rate and feature gating with it; nothing is
// enforced here.
type Tier string

const (
	TierFree    Tier = "free"
	TierCore    Tier = "core"
	TierSpecial Tier = "special"
)

// Request is the wire shape posted to every AI endpoint.
type Request struct {
	ServiceType string         `json:"service_type"`
	InputData   string         `json:"input_data"`
	UserTier    Tier           `json:"user_tier"`
	Options     map[string]any `json:"options,omitempty"`
}

// Response is the single shape every call settles to, success or failure.
// Callers branch on Success, never on errors.
type Response struct {
	Success        bool    `json:"success"`
	Data           any     `json:"data,omitempty"`
	Error          string  `json:"error,omitempty"`
	ProcessingTime float64 `json:"processing_time"`
	ServiceType    string  `json:"service_type"`
	Timestamp      string  `json:"timestamp"`
	Cached         bool    `json:"cached,omitempty"`
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenFunc yields the caller's bearer token, or "" when no session is
// available. Injected so the client never reads ambient session state.
type TokenFunc func(ctx context.Context) string

type Client struct {
	baseURL string
	http    httpDoer
	token   TokenFunc
}

// ResolveTier maps a user to the tier forwarded to the AI service.
// Anonymous callers are free tier.
func ResolveTier(user *authservice.User) Tier {
	if user.IsAnonymous() {
		return TierFree
	}

	switch user.UserType {
	case authservice.UserTypeAdmin, authservice.UserTypeSpecial:
		return TierSpecial
	case authservice.UserTypePaid, authservice.UserTypeCore:
		return TierCore
	default:
		return TierFree
	}
}
