package apiclient

import "time"

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:8001/api/v1"

// Config describes the backend endpoint.
type Config struct {
	BaseURL string `env:"MAPOFPI_API_URL" envDefault:"http://localhost:8001/api/v1"`
	// Timeout bounds a single request. Zero means no timeout.
	Timeout time.Duration `env:"MAPOFPI_API_TIMEOUT" envDefault:"0s"`
}
