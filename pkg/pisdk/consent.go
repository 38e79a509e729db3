package pisdk

import (
	"context"

	"golang.org/x/oauth2"
)

// Grant is what a pioneer hands over after accepting the consent prompt.
type Grant struct {
	Token *oauth2.Token
	// IncompletePayment is reported by the wallet when a previous payment is pending.
	IncompletePayment *Payment
}

// Consent asks the pioneer to grant scopes.
type Consent interface {
	RequestConsent(ctx context.Context, scopes []Scope) (*Grant, error)
}

// ConsentFunc adapts a function to Consent.
type ConsentFunc func(ctx context.Context, scopes []Scope) (*Grant, error)

func (f ConsentFunc) RequestConsent(ctx context.Context, scopes []Scope) (*Grant, error) {
	return f(ctx, scopes)
}

// StaticConsent grants a pre-issued access token without prompting.
// An empty token always declines.
func StaticConsent(accessToken string) Consent {
	return ConsentFunc(func(ctx context.Context, _ []Scope) (*Grant, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if accessToken == "" {
			return nil, ErrConsentDeclined
		}
		return &Grant{Token: &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}}, nil
	})
}
