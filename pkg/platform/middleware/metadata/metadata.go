// Package metadata records who is calling: the client address and a parsed
// summary of the User-Agent. Rate limiting keys on the address; the audit
// trail stores both.
package metadata

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/mssola/useragent"
)

// Client describes the caller of the current request.
type Client struct {
	IP        string
	UserAgent string
	// Agent is a short "Browser/OS" summary, empty when the header is absent.
	Agent string
	Bot   bool
}

type contextKeyClient struct{}

// ClientMetadata stores the caller's Client in the request context. Mount it
// before anything that reads FromContext.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := Client{
			IP:        ClientIPFromRequest(r),
			UserAgent: r.Header.Get("User-Agent"),
		}
		c.Agent, c.Bot = summarize(c.UserAgent)
		next.ServeHTTP(w, r.WithContext(WithClient(r.Context(), c)))
	})
}

func FromContext(ctx context.Context) Client {
	c, _ := ctx.Value(contextKeyClient{}).(Client)
	return c
}

// WithClient injects caller metadata, for tests that skip the middleware.
func WithClient(ctx context.Context, c Client) context.Context {
	return context.WithValue(ctx, contextKeyClient{}, c)
}

// ClientIPFromRequest prefers the first X-Forwarded-For hop, then X-Real-IP,
// then the connection's remote address.
func ClientIPFromRequest(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	if r.RemoteAddr == "" {
		return "unknown"
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func summarize(header string) (string, bool) {
	if strings.TrimSpace(header) == "" {
		return "", false
	}
	ua := useragent.New(header)
	browser, _ := ua.Browser()
	os := ua.OS()
	switch {
	case browser == "" && os == "":
		return "", ua.Bot()
	case os == "":
		return browser, ua.Bot()
	case browser == "":
		return os, ua.Bot()
	}
	return browser + "/" + os, ua.Bot()
}
