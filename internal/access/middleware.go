package access

import (
	"log/slog"
	"net/http"

	"github.com/animecon/volunteer-manager/internal/shared"
)

// Middleware guards HTTP routes with permission checks against the access
// snapshot cached on the session at login.
type Middleware struct {
	Logger *slog.Logger
}

// Authenticated ensures a logged-in session without demanding any
// particular permission.
func (m Middleware) Authenticated(next http.Handler) http.Handler {
	return m.guard(func(*List) bool { return true })(next)
}

// Require ensures the current volunteer holds the bare permission. Root
// holders pass every check.
func (m Middleware) Require(name string) func(http.Handler) http.Handler {
	return m.guard(func(list *List) bool {
		return list.Can(PermRoot) || list.Can(name)
	})
}

// RequireOperation ensures the current volunteer may perform one CRUD
// operation of the permission.
func (m Middleware) RequireOperation(name string, op Operation) func(http.Handler) http.Handler {
	return m.guard(func(list *List) bool {
		return list.Can(PermRoot) || list.CanOperation(name, op)
	})
}

// RequireAny ensures at least one of the bare permissions is held.
func (m Middleware) RequireAny(names ...string) func(http.Handler) http.Handler {
	return m.guard(func(list *List) bool {
		if list.Can(PermRoot) {
			return true
		}
		for _, name := range names {
			if list.Can(name) {
				return true
			}
		}
		return false
	})
}

func (m Middleware) guard(allowed func(*List) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := shared.SessionFromContext(r.Context())
			if sess == nil || sess.User() == "" {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			list := ParseList(sess.Access())
			if !allowed(list) {
				if m.Logger != nil {
					m.Logger.Warn("permission denied",
						slog.String("user", sess.User()),
						slog.String("path", r.URL.Path))
				}
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CurrentList returns the access snapshot of the volunteer bound to the
// request, or an empty list for anonymous requests.
func CurrentList(r *http.Request) *List {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return nil
	}
	return ParseList(sess.Access())
}
