package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labsys/chemstock/internal/attach"
	"github.com/labsys/chemstock/internal/model"
	"github.com/labsys/chemstock/internal/store"
)

// PurchasesHandler handles purchase request endpoints.
type PurchasesHandler struct {
	DB *sql.DB
}

// Create handles POST /api/purchase-requests. Accepts a multipart form so an
// optional attachment (safety data sheet, quote) can ride along.
func (h *PurchasesHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 12<<20)

	if err := r.ParseMultipartForm(12 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "attachment too large or invalid multipart form")
		return
	}

	amount, err := strconv.ParseFloat(r.FormValue("amount"), 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	req := store.NewPurchaseRequest{
		MaterialName:   r.FormValue("material_name"),
		CASNumber:      r.FormValue("cas_number"),
		Specifications: r.FormValue("specifications"),
		Amount:         amount,
		Unit:           r.FormValue("unit"),
		FirstName:      r.FormValue("first_name"),
		Surname:        r.FormValue("surname"),
		Email:          r.FormValue("requester_email"),
		Comments:       r.FormValue("comments"),
	}

	if file, _, err := r.FormFile("attachment"); err == nil {
		defer file.Close()
		result, err := attach.Process(file)
		if err != nil {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		req.Attachment = result.Data
		req.AttachmentMIME = result.MIME
	}

	created, err := store.CreatePurchaseRequest(r.Context(), h.DB, req)
	if err != nil {
		storeError(w, err, "failed to create purchase request")
		return
	}

	jsonResponse(w, http.StatusCreated, created)
}

// List handles GET /api/purchase-requests.
func (h *PurchasesHandler) List(w http.ResponseWriter, r *http.Request) {
	status := model.PurchaseStatus(r.URL.Query().Get("status"))
	reqs, err := store.ListPurchaseRequests(r.Context(), h.DB, status)
	if err != nil {
		storeError(w, err, "failed to list purchase requests")
		return
	}
	if reqs == nil {
		reqs = []model.PurchaseRequest{}
	}
	jsonResponse(w, http.StatusOK, reqs)
}

// SetStatus handles POST /api/purchase-requests/{id}/status. Purchase
// transitions never touch inventory, so approve/reject/purchased all go
// through this overwrite.
func (h *PurchasesHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid purchase request id")
		return
	}

	var req setStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status := model.PurchaseStatus(req.Status)
	if err := store.SetPurchaseRequestStatus(r.Context(), h.DB, id, status); err != nil {
		storeError(w, err, "failed to set purchase request status")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"status": string(status)})
}

// GetAttachment handles GET /api/purchase-requests/{id}/attachment.
func (h *PurchasesHandler) GetAttachment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid purchase request id")
		return
	}

	data, mime, err := store.GetPurchaseAttachment(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get attachment")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no attachment")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", "inline")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write attachment response", "error", err)
	}
}
