package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/labsys/chemstock/internal/approval"
	"github.com/labsys/chemstock/internal/model"
	"github.com/labsys/chemstock/internal/store"
)

// RequestsHandler handles in-stock request endpoints.
type RequestsHandler struct {
	DB *sql.DB
}

type createRequestRequest struct {
	ChemID    int64   `json:"chem_id"`
	FirstName string  `json:"first_name"`
	Surname   string  `json:"surname"`
	Email     string  `json:"requester_email"`
	Quantity  float64 `json:"quantity"`
}

type setStatusRequest struct {
	Status string `json:"status"`
}

// Create handles POST /api/requests. Public: anyone in the lab may request.
func (h *RequestsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequestRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := store.CreateRequest(r.Context(), h.DB, req.ChemID,
		req.FirstName, req.Surname, req.Email, req.Quantity)
	if err != nil {
		storeError(w, err, "failed to create request")
		return
	}

	jsonResponse(w, http.StatusCreated, created)
}

// List handles GET /api/requests.
func (h *RequestsHandler) List(w http.ResponseWriter, r *http.Request) {
	status := model.RequestStatus(r.URL.Query().Get("status"))
	reqs, err := store.ListRequests(r.Context(), h.DB, status)
	if err != nil {
		storeError(w, err, "failed to list requests")
		return
	}
	if reqs == nil {
		reqs = []model.Request{}
	}
	jsonResponse(w, http.StatusOK, reqs)
}

// Approve handles POST /api/requests/{id}/approve: the inventory-affecting
// transition. A denial is an expected outcome and comes back as 409 with the
// reason, not as a server error.
func (h *RequestsHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	decision, err := approval.Approve(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to approve request")
		return
	}

	if !decision.Approved {
		jsonResponse(w, http.StatusConflict, decision)
		return
	}
	jsonResponse(w, http.StatusOK, decision)
}

// SetStatus handles POST /api/requests/{id}/status for non-inventory
// transitions (reject, mark fulfilled). Approval must go through Approve.
func (h *RequestsHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	var req setStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status := model.RequestStatus(req.Status)
	if status == model.RequestApproved {
		jsonError(w, http.StatusBadRequest, "approval must go through the approve endpoint")
		return
	}

	if err := store.SetRequestStatus(r.Context(), h.DB, id, status); err != nil {
		storeError(w, err, "failed to set request status")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"status": string(status)})
}
