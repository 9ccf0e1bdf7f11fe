package main

import (
	"context"
	"net/http"

	"github.com/automaatte/platform/internal/authservice"
)

type contextKey string

const (
	userContextKey  = contextKey("user")
	tokenContextKey = contextKey("token")
)

func (app *application) createUserContext(r *http.Request, user *authservice.User) *http.Request {
	ctx := context.WithValue(r.Context(), userContextKey, user)
	return r.WithContext(ctx)
}

func (app *application) getUserContext(r *http.Request) *authservice.User {
	user, ok := r.Context().Value(userContextKey).(*authservice.User)
	if !ok {
		return nil
	}
	return user
}

func (app *application) createTokenContext(r *http.Request, token string) *http.Request {
	ctx := context.WithValue(r.Context(), tokenContextKey, token)
	return r.WithContext(ctx)
}

// tokenFromContext is the TokenFunc wired into the AI client so outbound
// calls carry the caller's own bearer token.
func tokenFromContext(ctx context.Context) string {
	token, ok := ctx.Value(tokenContextKey).(string)
	if !ok {
		return ""
	}
	return token
}
