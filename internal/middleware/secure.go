package middleware

import (
	"net/http"

	"github.com/unrolled/secure"
)

// SecureHeadersMiddleware sets the usual browser hardening headers.
// The CSP allows inline styles because the bundled frontend uses them.
func SecureHeadersMiddleware() func(http.Handler) http.Handler {
	s := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:",
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
	})
	return s.Handler
}
