package api

import (
	"database/sql"
	"net/http"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	chemicalsHandler := &ChemicalsHandler{DB: db}
	requestsHandler := &RequestsHandler{DB: db}
	purchasesHandler := &PurchasesHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)

	// Public: search inventory and submit requests.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/chemicals", chemicalsHandler.List)
	mux.HandleFunc("POST /api/requests", requestsHandler.Create)
	mux.HandleFunc("POST /api/purchase-requests", purchasesHandler.Create)

	// Admin session management.
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))

	// Inventory management (admin).
	mux.Handle("PUT /api/chemicals", authMW(http.HandlerFunc(chemicalsHandler.Upsert)))
	mux.Handle("POST /api/chemicals/import", authMW(http.HandlerFunc(chemicalsHandler.Import)))
	mux.Handle("POST /api/chemicals/{id}/adjust", authMW(http.HandlerFunc(chemicalsHandler.Adjust)))

	// Request review (admin).
	mux.Handle("GET /api/requests", authMW(http.HandlerFunc(requestsHandler.List)))
	mux.Handle("POST /api/requests/{id}/approve", authMW(http.HandlerFunc(requestsHandler.Approve)))
	mux.Handle("POST /api/requests/{id}/status", authMW(http.HandlerFunc(requestsHandler.SetStatus)))

	// Purchase request review (admin).
	mux.Handle("GET /api/purchase-requests", authMW(http.HandlerFunc(purchasesHandler.List)))
	mux.Handle("POST /api/purchase-requests/{id}/status", authMW(http.HandlerFunc(purchasesHandler.SetStatus)))
	mux.Handle("GET /api/purchase-requests/{id}/attachment", authMW(http.HandlerFunc(purchasesHandler.GetAttachment)))

	return mux
}
