package web

import (
	"database/sql"
	"net/http"

	webembed "github.com/labsys/chemstock/web"
)

// NewRouter creates the web page router with all page routes registered.
func NewRouter(db *sql.DB, jwtSecret string) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:        db,
		Templates: templates,
		JWTSecret: jwtSecret,
	}

	mux := http.NewServeMux()
	cookieAuth := CookieAuthMiddleware(jwtSecret, db)

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	// Public: search the inventory and submit requests.
	mux.HandleFunc("GET /{$}", s.IndexPage)
	mux.HandleFunc("POST /requests", s.RequestSubmit)
	mux.HandleFunc("GET /purchase", s.PurchasePage)
	mux.HandleFunc("POST /purchase", s.PurchaseSubmit)
	mux.HandleFunc("GET /login", s.LoginPage)
	mux.HandleFunc("POST /login", s.LoginSubmit)
	mux.HandleFunc("POST /logout", s.Logout)

	// Admin review console.
	mux.Handle("GET /admin", cookieAuth(http.HandlerFunc(s.AdminPage)))
	mux.Handle("POST /admin/chemicals", cookieAuth(http.HandlerFunc(s.ChemicalUpsertSubmit)))
	mux.Handle("POST /admin/chemicals/adjust", cookieAuth(http.HandlerFunc(s.ChemicalAdjustSubmit)))
	mux.Handle("POST /admin/chemicals/import", cookieAuth(http.HandlerFunc(s.ChemicalImportSubmit)))
	mux.Handle("POST /admin/requests/{id}/approve", cookieAuth(http.HandlerFunc(s.RequestApproveSubmit)))
	mux.Handle("POST /admin/requests/{id}/status", cookieAuth(http.HandlerFunc(s.RequestStatusSubmit)))
	mux.Handle("POST /admin/purchases/{id}/status", cookieAuth(http.HandlerFunc(s.PurchaseStatusSubmit)))
	mux.Handle("GET /admin/purchases/{id}/attachment", cookieAuth(http.HandlerFunc(s.PurchaseAttachmentGet)))

	return mux, nil
}
