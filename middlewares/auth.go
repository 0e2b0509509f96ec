package middlewares

import (
	"net/http"
	"net/url"

	"github.com/dmitrymomot/scaffold/internal"
)

// RequireAuth redirects visitors without an authenticated session to
// loginURL, passing the requested path as the "next" query parameter.
func RequireAuth(loginURL string) internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			if c.IsAuthenticated() {
				return next(c)
			}
			target := loginURL + "?" + url.Values{"next": {c.Request().URL.RequestURI()}}.Encode()
			return c.Redirect(http.StatusSeeOther, target)
		}
	}
}
