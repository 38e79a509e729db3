package requestid

import (
	"net/http"
	"regexp"

	"github.com/go-resty/resty/v2"
)

const (
	Header      = "X-Request-ID"
	maxIDLength = 128
	idPattern   = "^[a-zA-Z0-9_-]+$"
)

var validIDRegex = regexp.MustCompile(idPattern)

// Middleware tags inbound requests of the local status API.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(Header)
		if !isValidRequestID(requestID) {
			requestID = New()
		}
		w.Header().Set(Header, requestID)
		next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), requestID)))
	})
}

// ClientMiddleware tags outbound backend requests. An explicit header set on
// the request wins over the context value.
func ClientMiddleware() resty.RequestMiddleware {
	return func(_ *resty.Client, r *resty.Request) error {
		if r.Header.Get(Header) != "" {
			return nil
		}
		requestID := FromContext(r.Context())
		if !isValidRequestID(requestID) {
			requestID = New()
		}
		r.SetHeader(Header, requestID)
		return nil
	}
}

func isValidRequestID(id string) bool {
	if len(id) == 0 || len(id) > maxIDLength {
		return false
	}
	return validIDRegex.MatchString(id)
}
