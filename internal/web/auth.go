package web

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/labsys/chemstock/internal/auth"
	"github.com/labsys/chemstock/internal/store"
)

// LoginPage handles GET /login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "login.html", &PageData{Title: "Admin login"})
}

// LoginSubmit handles POST /login.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	password := r.FormValue("password")
	if password == "" {
		s.Templates.Render(w, "login.html", &PageData{
			Title: "Admin login",
			Error: "Enter the admin password.",
		})
		return
	}

	hash, err := store.GetAdminPasswordHash(r.Context(), s.DB)
	if err != nil {
		slog.Error("failed to load admin credential", "error", err)
		s.Templates.Render(w, "login.html", &PageData{
			Title: "Admin login",
			Error: "Login failed.",
		})
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		s.Templates.Render(w, "login.html", &PageData{
			Title: "Admin login",
			Error: "Wrong password.",
		})
		return
	}

	token, err := auth.GenerateToken(s.JWTSecret)
	if err != nil {
		slog.Error("failed to generate token", "error", err)
		s.Templates.Render(w, "login.html", &PageData{
			Title: "Admin login",
			Error: "Login failed.",
		})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   86400, // 24 hours
	})

	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// Logout handles POST /logout, revoking the session token.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie("token"); err == nil && cookie.Value != "" {
		if claims, err := auth.ValidateToken(s.JWTSecret, cookie.Value); err == nil && claims.ID != "" {
			expiresAt := time.Now().Add(auth.TokenExpiry)
			if claims.ExpiresAt != nil {
				expiresAt = claims.ExpiresAt.Time
			}
			if err := store.RevokeToken(r.Context(), s.DB, claims.ID, expiresAt); err != nil {
				slog.Error("failed to revoke token", "error", err)
			}
		}
	}

	clearAuthCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
