package marketdata

import (
	"StockPulse/internal/domain/models"
	xhttp "StockPulse/pkg/http"
)

// Provider describes one upstream daily-bars API. The fetcher owns transport,
// caching, throttling, and retries; a Provider only knows how to build its
// request, recognize an unusable payload, and decode bars.
type Provider interface {
	Name() string
	Request(symbol string) *xhttp.RequestOptions
	// CheckPayload inspects a raw response body before it is cached. It returns
	// an error for in-band failures such as rate-limit notices, which HTTP 200
	// responses from free-tier plans routinely carry.
	CheckPayload(raw []byte) error
	Parse(raw []byte) (models.Series, error)
}
