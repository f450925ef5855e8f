package middleware

import (
	"net/http"

	"gitea.com/go-chi/session"

	"github.com/mkoenig/ssoportal/userctx"
)

// RequireAuth ensures the user is signed in.
// If not, redirects to /login and stores the intended destination.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.GetSession(r)
		userID, ok := sess.Get("user_id").(int)

		if !ok {
			// Store the intended destination for redirect after login
			sess.Set("redirect_after_login", r.URL.RequestURI())
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		email, _ := sess.Get("user_email").(string)
		ctx := userctx.SetUser(r.Context(), userID, email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
