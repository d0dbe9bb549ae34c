package web

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labsys/chemstock/internal/attach"
	"github.com/labsys/chemstock/internal/model"
	"github.com/labsys/chemstock/internal/store"
)

// IndexPage handles GET /: the public search-and-request page.
func (s *Server) IndexPage(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("q")
	chems, err := store.ListChemicals(r.Context(), s.DB, search)
	if err != nil {
		slog.Error("failed to list chemicals", "error", err)
	}

	s.Templates.Render(w, "index.html", &struct {
		PageData
		Search    string
		Chemicals []model.Chemical
	}{
		PageData: PageData{
			Title:   "Lab Chemical Inventory",
			Success: r.URL.Query().Get("msg"),
			Error:   r.URL.Query().Get("err"),
		},
		Search:    search,
		Chemicals: chems,
	})
}

// RequestSubmit handles POST /requests: a public request submission.
func (s *Server) RequestSubmit(w http.ResponseWriter, r *http.Request) {
	chemID, err := strconv.ParseInt(r.FormValue("chem_id"), 10, 64)
	if err != nil {
		redirectWithError(w, r, "/", "Choose a chemical.")
		return
	}
	quantity, err := strconv.ParseFloat(r.FormValue("quantity"), 64)
	if err != nil {
		redirectWithError(w, r, "/", "Quantity must be a number.")
		return
	}

	_, err = store.CreateRequest(r.Context(), s.DB, chemID,
		r.FormValue("first_name"), r.FormValue("surname"), r.FormValue("requester_email"), quantity)
	if err != nil {
		redirectWithError(w, r, "/", err.Error())
		return
	}

	redirectWithMessage(w, r, "/", "Request submitted! The lab admin will review it.")
}

// PurchasePage handles GET /purchase: the out-of-stock purchase request form.
func (s *Server) PurchasePage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "purchase.html", &PageData{
		Title:   "Request a purchase",
		Success: r.URL.Query().Get("msg"),
		Error:   r.URL.Query().Get("err"),
	})
}

// PurchaseSubmit handles POST /purchase.
func (s *Server) PurchaseSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 12<<20)
	if err := r.ParseMultipartForm(12 << 20); err != nil {
		redirectWithError(w, r, "/purchase", "Attachment too large.")
		return
	}

	amount, err := strconv.ParseFloat(r.FormValue("amount"), 64)
	if err != nil {
		redirectWithError(w, r, "/purchase", "Amount must be a number.")
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
			redirectWithError(w, r, "/purchase", err.Error())
			return
		}
		req.Attachment = result.Data
		req.AttachmentMIME = result.MIME
	}

	if _, err := store.CreatePurchaseRequest(r.Context(), s.DB, req); err != nil {
		redirectWithError(w, r, "/purchase", err.Error())
		return
	}

	redirectWithMessage(w, r, "/purchase", "Purchase request submitted! The lab admin will review it.")
}

func redirectWithMessage(w http.ResponseWriter, r *http.Request, path, msg string) {
	http.Redirect(w, r, path+"?msg="+url.QueryEscape(msg), http.StatusSeeOther)
}

func redirectWithError(w http.ResponseWriter, r *http.Request, path, msg string) {
	http.Redirect(w, r, path+"?err="+url.QueryEscape(msg), http.StatusSeeOther)
}
