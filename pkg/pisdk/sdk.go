package pisdk

import (
	"context"
	"time"
)

// Scope is a permission requested from the pioneer.
type Scope string

const (
	ScopeUsername      Scope = "username"
	ScopePayments      Scope = "payments"
	ScopeWalletAddress Scope = "wallet_address"
)

// DefaultScopes are the scopes Map of Pi requests on login.
func DefaultScopes() []Scope {
	return []Scope{ScopeUsername, ScopePayments, ScopeWalletAddress}
}

// FeatureAdNetwork is the native feature signalling rewarded ads support.
const FeatureAdNetwork = "ad_network"

// InitConfig is passed to SDK.Init.
type InitConfig struct {
	Version string
	Sandbox bool
}

// Pioneer is the Pi account behind an access token.
type Pioneer struct {
	UID      string `json:"uid"`
	Username string `json:"username"`
}

// AuthResult is produced by a successful authentication. It is consumed once
// per login attempt.
type AuthResult struct {
	AccessToken string
	Scopes      []Scope
	User        Pioneer
	ValidUntil  time.Time
}

// PaymentTransaction is the blockchain side of a payment.
type PaymentTransaction struct {
	TxID     string `json:"txid"`
	Verified bool   `json:"verified"`
	Link     string `json:"_link"`
}

// Payment is a Pi payment left incomplete by a previous session.
type Payment struct {
	Identifier  string              `json:"identifier"`
	UserUID     string              `json:"user_uid"`
	Amount      float64             `json:"amount"`
	Memo        string              `json:"memo"`
	Metadata    map[string]any      `json:"metadata,omitempty"`
	Transaction *PaymentTransaction `json:"transaction,omitempty"`
}

// IncompletePaymentFunc is invoked when authentication finds a payment that
// still awaits server-side completion.
type IncompletePaymentFunc func(ctx context.Context, payment Payment)

// SDK is the surface of the Pi SDK consumed by the login flow.
type SDK interface {
	// EnsureLoaded loads the SDK at most once per process lifetime.
	EnsureLoaded(ctx context.Context) error
	// Init initializes a loaded SDK. Repeated calls are no-ops.
	Init(cfg InitConfig) error
	// Initialized reports whether Init has completed.
	Initialized() bool
	// Authenticate requests the scopes from the pioneer.
	Authenticate(ctx context.Context, scopes []Scope, onIncompletePayment IncompletePaymentFunc) (*AuthResult, error)
	// NativeFeatures lists features supported by the host.
	NativeFeatures(ctx context.Context) ([]string, error)
}
