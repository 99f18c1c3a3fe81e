package testutil

import (
	"net/http"

	"github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/middleware/metadata"
)

// WithClientIP attaches client metadata as if ClientMetadata had run.
func WithClientIP(req *http.Request, ip string) *http.Request {
	return req.WithContext(metadata.WithClient(req.Context(), metadata.Client{IP: ip}))
}
