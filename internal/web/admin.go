package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labsys/chemstock/internal/approval"
	"github.com/labsys/chemstock/internal/csvimport"
	"github.com/labsys/chemstock/internal/model"
	"github.com/labsys/chemstock/internal/store"
)

// AdminPage handles GET /admin: the review console with pending requests,
// pending purchase requests, and inventory management forms.
func (s *Server) AdminPage(w http.ResponseWriter, r *http.Request) {
	pending, err := store.ListRequests(r.Context(), s.DB, model.RequestPending)
	if err != nil {
		slog.Error("failed to list pending requests", "error", err)
	}
	allRequests, err := store.ListRequests(r.Context(), s.DB, "")
	if err != nil {
		slog.Error("failed to list requests", "error", err)
	}
	pendingPurchases, err := store.ListPurchaseRequests(r.Context(), s.DB, model.PurchasePending)
	if err != nil {
		slog.Error("failed to list pending purchase requests", "error", err)
	}
	chemicals, err := store.ListChemicals(r.Context(), s.DB, "")
	if err != nil {
		slog.Error("failed to list chemicals", "error", err)
	}

	s.Templates.Render(w, "admin.html", &struct {
		PageData
		Pending          []model.Request
		AllRequests      []model.Request
		PendingPurchases []model.PurchaseRequest
		Chemicals        []model.Chemical
	}{
		PageData: PageData{
			Title:   "Admin",
			Admin:   true,
			Success: r.URL.Query().Get("msg"),
			Error:   r.URL.Query().Get("err"),
		},
		Pending:          pending,
		AllRequests:      allRequests,
		PendingPurchases: pendingPurchases,
		Chemicals:        chemicals,
	})
}

// ChemicalUpsertSubmit handles POST /admin/chemicals.
func (s *Server) ChemicalUpsertSubmit(w http.ResponseWriter, r *http.Request) {
	amount, err := strconv.ParseFloat(r.FormValue("amount"), 64)
	if err != nil {
		redirectWithError(w, r, "/admin", "Amount must be a number.")
		return
	}

	chem, err := store.UpsertChemical(r.Context(), s.DB,
		r.FormValue("name"), amount, r.FormValue("unit"),
		r.FormValue("location"), r.FormValue("notes"))
	if err != nil {
		redirectWithError(w, r, "/admin", err.Error())
		return
	}

	redirectWithMessage(w, r, "/admin", "Saved "+chem.Name+".")
}

// ChemicalAdjustSubmit handles POST /admin/chemicals/adjust.
func (s *Server) ChemicalAdjustSubmit(w http.ResponseWriter, r *http.Request) {
	chemID, err := strconv.ParseInt(r.FormValue("chem_id"), 10, 64)
	if err != nil {
		redirectWithError(w, r, "/admin", "Choose a chemical.")
		return
	}
	delta, err := strconv.ParseFloat(r.FormValue("delta"), 64)
	if err != nil {
		redirectWithError(w, r, "/admin", "Change must be a number.")
		return
	}

	newAmount, err := store.AdjustStock(r.Context(), s.DB, chemID, delta)
	if err != nil {
		redirectWithError(w, r, "/admin", err.Error())
		return
	}

	redirectWithMessage(w, r, "/admin", "Stock updated: "+strconv.FormatFloat(newAmount, 'g', -1, 64)+".")
}

// ChemicalImportSubmit handles POST /admin/chemicals/import: CSV bulk import.
func (s *Server) ChemicalImportSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 5<<20)
	if err := r.ParseMultipartForm(5 << 20); err != nil {
		redirectWithError(w, r, "/admin", "File too large or invalid form.")
		return
	}

	file, _, err := r.FormFile("csv")
	if err != nil {
		redirectWithError(w, r, "/admin", "CSV file required.")
		return
	}
	defer file.Close()

	result, err := csvimport.Import(r.Context(), s.DB, file)
	if err != nil {
		redirectWithError(w, r, "/admin", err.Error())
		return
	}

	msg := "Imported " + strconv.Itoa(result.Imported) + " rows. Errors: " + strconv.Itoa(len(result.Errors)) + "."
	redirectWithMessage(w, r, "/admin", msg)
}

// RequestApproveSubmit handles POST /admin/requests/{id}/approve: the
// inventory-affecting transition. Denials come back as informational
// messages, not errors.
func (s *Server) RequestApproveSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		redirectWithError(w, r, "/admin", "Invalid request id.")
		return
	}

	decision, err := approval.Approve(r.Context(), s.DB, id)
	if err != nil {
		redirectWithError(w, r, "/admin", err.Error())
		return
	}

	if !decision.Approved {
		redirectWithError(w, r, "/admin", "Not approved: "+decision.Denial.Reason+".")
		return
	}

	msg := "Approved. Remaining stock: " + strconv.FormatFloat(decision.NewAmount, 'g', -1, 64) + "."
	redirectWithMessage(w, r, "/admin", msg)
}

// RequestStatusSubmit handles POST /admin/requests/{id}/status for reject
// and mark-fulfilled.
func (s *Server) RequestStatusSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		redirectWithError(w, r, "/admin", "Invalid request id.")
		return
	}

	status := model.RequestStatus(r.FormValue("status"))
	if status == model.RequestApproved {
		redirectWithError(w, r, "/admin", "Approval must go through the approve action.")
		return
	}

	if err := store.SetRequestStatus(r.Context(), s.DB, id, status); err != nil {
		redirectWithError(w, r, "/admin", err.Error())
		return
	}

	redirectWithMessage(w, r, "/admin", "Request marked "+string(status)+".")
}

// PurchaseStatusSubmit handles POST /admin/purchases/{id}/status.
func (s *Server) PurchaseStatusSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		redirectWithError(w, r, "/admin", "Invalid purchase request id.")
		return
	}

	status := model.PurchaseStatus(r.FormValue("status"))
	if err := store.SetPurchaseRequestStatus(r.Context(), s.DB, id, status); err != nil {
		redirectWithError(w, r, "/admin", err.Error())
		return
	}

	redirectWithMessage(w, r, "/admin", "Purchase request marked "+string(status)+".")
}

// PurchaseAttachmentGet handles GET /admin/purchases/{id}/attachment.
func (s *Server) PurchaseAttachmentGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	data, mime, err := store.GetPurchaseAttachment(r.Context(), s.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("failed to get attachment", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if data == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", "inline")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write attachment response", "error", err)
	}
}
