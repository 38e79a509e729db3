package session

import (
	"time"

	"github.com/map-of-pi/mapofpi/pkg/apiclient"
)

// Snapshot is a point-in-time copy of the session state.
type Snapshot struct {
	User               *apiclient.User           `json:"current_user"`
	Membership         apiclient.MembershipClass `json:"user_membership"`
	SigningIn          bool                      `json:"is_signing_in"`
	AdsSupported       bool                      `json:"ads_supported"`
	NotificationsCount int                       `json:"notifications_count"`
	ToggleNotification bool                      `json:"toggle_notification"`
	Phase              string                    `json:"phase,omitempty"`
	LastError          string                    `json:"last_error,omitempty"`
	UpdatedAt          time.Time                 `json:"updated_at"`
}

// Authenticated reports whether a user is present.
func (s Snapshot) Authenticated() bool {
	return s.User != nil
}

// PiUID returns the current user's Pi UID or an empty string.
func (s Snapshot) PiUID() string {
	if s.User == nil {
		return ""
	}
	return s.User.PiUID
}

func (s Snapshot) clone() Snapshot {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}
