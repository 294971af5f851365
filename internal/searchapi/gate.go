package searchapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const (
	magicCookie   = "magic-used"
	magicRedirect = "https://www.google.com"
	magicMaxAge   = 365 * 24 * 60 * 60
)

func magicUsed(r *http.Request) bool {
	c, err := r.Cookie(magicCookie)
	return err == nil && c.Value == "true"
}

func noCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
}

// Gate sends visitors who already used the trigger straight to Google.
// API routes pass through untouched.
func (a *API) Gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		noCache(w)
		if magicUsed(r) {
			a.logger.Debug("usage gate redirect", zap.String("path", r.URL.Path))
			http.Redirect(w, r, magicRedirect, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *API) handleMagicStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"used": magicUsed(r)})
}

func (a *API) handleMarkMagicUsed(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     magicCookie,
		Value:    "true",
		Path:     "/",
		MaxAge:   magicMaxAge,
		HttpOnly: true,
		Secure:   a.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	a.logger.Info("usage gate closed")
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Magic marked as used"})
}

func (a *API) handleResetMagic(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:   magicCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	a.logger.Info("usage gate reset")
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Magic usage reset"})
}
