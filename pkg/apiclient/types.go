package apiclient

import "time"

// MembershipClass is the tiered account status of a pioneer.
type MembershipClass string

const (
	MembershipCasual     MembershipClass = "CASUAL"
	MembershipSingle     MembershipClass = "SINGLE"
	MembershipWhite      MembershipClass = "WHITE"
	MembershipGreen      MembershipClass = "GREEN"
	MembershipGold       MembershipClass = "GOLD"
	MembershipDoubleGold MembershipClass = "DOUBLE_GOLD"
	MembershipTripleGold MembershipClass = "TRIPLE_GOLD"
)

// User is a pioneer as returned by the backend.
type User struct {
	PiUID      string `json:"pi_uid"`
	PiUsername string `json:"pi_username,omitempty"`
	UserName   string `json:"user_name,omitempty"`
}

// SessionResponse is the body of GET /users/me.
type SessionResponse struct {
	User            User            `json:"user"`
	MembershipClass MembershipClass `json:"membership_class"`
}

// AuthResponse is the body of POST /users/authenticate.
type AuthResponse struct {
	Token           string          `json:"token"`
	User            User            `json:"user"`
	MembershipClass MembershipClass `json:"membership_class"`
}

// NotificationStatus filters notifications by their cleared flag.
type NotificationStatus string

const (
	NotificationsCleared   NotificationStatus = "cleared"
	NotificationsUncleared NotificationStatus = "uncleared"
)

// NotificationQuery pages through notifications.
type NotificationQuery struct {
	Skip   int
	Limit  int
	Status NotificationStatus
}

// Notification is a single user notification.
type Notification struct {
	ID        string    `json:"_id"`
	PiUID     string    `json:"pi_uid"`
	Reason    string    `json:"reason"`
	IsCleared bool      `json:"is_cleared"`
	CreatedAt time.Time `json:"createdAt"`
}

// NotificationsPage is the body of GET /notifications.
type NotificationsPage struct {
	Items []Notification `json:"items"`
	Count int            `json:"count"`
}

type errorBody struct {
	Message string `json:"message"`
}
