package statusapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/map-of-pi/mapofpi/pkg/apiclient"
	"github.com/map-of-pi/mapofpi/pkg/bootstrap"
	"github.com/map-of-pi/mapofpi/pkg/environment"
	"github.com/map-of-pi/mapofpi/pkg/logger"
	"github.com/map-of-pi/mapofpi/pkg/notifications"
	"github.com/map-of-pi/mapofpi/pkg/retry"
	"github.com/map-of-pi/mapofpi/pkg/session"
)

const (
	defaultNotificationLimit = 20
	maxNotificationLimit     = 100
)

type errorResponse struct {
	Error   string            `json:"error"`
	Session *session.Snapshot `json:"session,omitempty"`
}

type notificationsResponse struct {
	Items []apiclient.Notification `json:"items"`
	Count int                      `json:"count"`
}

func (a *API) getSession(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, r, http.StatusOK, a.session.State().Snapshot())
}

// login runs the mount sequence. A signed-in session is returned unchanged.
func (a *API) login(w http.ResponseWriter, r *http.Request) {
	if a.session.SigningIn() {
		a.writeError(w, r, bootstrap.ErrInFlight)
		return
	}
	if err := a.session.Mount(r.Context()); err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, r, http.StatusOK, a.session.State().Snapshot())
}

func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	if err := a.session.Logout(r.Context()); err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, r, http.StatusOK, a.session.State().Snapshot())
}

// reload re-validates the session and refreshes the notification counter.
func (a *API) reload(w http.ResponseWriter, r *http.Request) {
	if err := a.session.AutoLogin(r.Context()); err != nil {
		a.writeError(w, r, err)
		return
	}
	if a.notifications != nil {
		if _, err := a.notifications.Refresh(r.Context()); err != nil {
			a.logger.WarnContext(r.Context(), "notification refresh failed", logger.Error(err))
		}
	}
	a.writeJSON(w, r, http.StatusOK, a.session.State().Snapshot())
}

func (a *API) listNotifications(w http.ResponseWriter, r *http.Request) {
	limit := defaultNotificationLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			a.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = min(n, maxNotificationLimit)
	}

	items, err := a.notifications.Uncleared(r.Context(), limit)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if items == nil {
		items = []apiclient.Notification{}
	}
	a.writeJSON(w, r, http.StatusOK, notificationsResponse{Items: items, Count: len(items)})
}

// statusFor maps lifecycle errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, bootstrap.ErrInFlight):
		return http.StatusConflict
	case errors.Is(err, notifications.ErrNotAuthenticated), apiclient.IsHardFailure(err):
		return http.StatusUnauthorized
	case errors.Is(err, bootstrap.ErrSDKUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, retry.ErrRetriesExhausted), errors.Is(err, apiclient.ErrRequestFailed):
		return http.StatusBadGateway
	case bootstrap.IsNoTransition(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	level := a.logger.WarnContext
	if status >= http.StatusInternalServerError {
		level = a.logger.ErrorContext
	}
	level(r.Context(), "session request failed", logger.StatusCode(status), logger.Error(err))

	msg := err.Error()
	if status >= http.StatusInternalServerError && environment.IsProduction(r.Context()) {
		msg = http.StatusText(status)
	}

	snap := a.session.State().Snapshot()
	a.writeJSON(w, r, status, errorResponse{Error: msg, Session: &snap})
}

func (a *API) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.ErrorContext(r.Context(), "encode response", logger.Error(err))
	}
}
