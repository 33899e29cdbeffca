// Package gmailauth builds Gmail API clients from a stored OAuth2 refresh token.
package gmailauth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"taskminder/internal/config"
)

// Scopes are the scopes the service needs: reading and relabelling replies,
// and sending reminders and reports.
var Scopes = []string{gmail.GmailModifyScope, gmail.GmailSendScope}

// OAuthConfig returns the OAuth2 client configuration for the mail account.
func OAuthConfig(cfg *config.MailConfig, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  redirectURL,
		Scopes:       Scopes,
		Endpoint:     google.Endpoint,
	}
}

// NewService creates a Gmail service authorised by cfg.RefreshToken.
func NewService(ctx context.Context, cfg *config.MailConfig) (*gmail.Service, error) {
	token := &oauth2.Token{RefreshToken: cfg.RefreshToken}
	tokenSource := OAuthConfig(cfg, "").TokenSource(ctx, token)

	service, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return service, nil
}

// UserID is the Gmail API user id for the account, "me" when unset.
func UserID(cfg *config.MailConfig) string {
	if cfg.UserEmail != "" {
		return cfg.UserEmail
	}
	return "me"
}
