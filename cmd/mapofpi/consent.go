package main

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/oauth2"

	"github.com/map-of-pi/mapofpi/pkg/pisdk"
)

// consentFor picks how access tokens are obtained: a pre-issued
// PI_ACCESS_TOKEN, a terminal prompt, or nothing when prompting is disabled.
func consentFor(accessToken string, noInput bool) pisdk.Consent {
	switch {
	case accessToken != "":
		return pisdk.StaticConsent(accessToken)
	case noInput:
		return pisdk.StaticConsent("")
	default:
		return promptConsent()
	}
}

func promptConsent() pisdk.Consent {
	return pisdk.ConsentFunc(func(ctx context.Context, scopes []pisdk.Scope) (*pisdk.Grant, error) {
		names := make([]string, len(scopes))
		for i, s := range scopes {
			names[i] = string(s)
		}

		var (
			allow bool
			token string
		)
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Share your Pi account with Map of Pi?").
					Description("Requested scopes: "+strings.Join(names, ", ")).
					Affirmative("Allow").
					Negative("Deny").
					Value(&allow),
			),
			huh.NewGroup(
				huh.NewInput().
					Title("Pi access token").
					Description("Paste the access token issued by the Pi Browser.").
					EchoMode(huh.EchoModePassword).
					Validate(requireToken).
					Value(&token),
			).WithHideFunc(func() bool { return !allow }),
		)

		if err := form.RunWithContext(ctx); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil, pisdk.ErrConsentDeclined
			}
			return nil, err
		}
		if !allow {
			return nil, pisdk.ErrConsentDeclined
		}

		return &pisdk.Grant{
			Token: &oauth2.Token{AccessToken: strings.TrimSpace(token), TokenType: "Bearer"},
		}, nil
	})
}

func requireToken(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("access token is required")
	}
	return nil
}
