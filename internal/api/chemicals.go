package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/labsys/chemstock/internal/csvimport"
	"github.com/labsys/chemstock/internal/model"
	"github.com/labsys/chemstock/internal/store"
)

// ChemicalsHandler handles inventory endpoints.
type ChemicalsHandler struct {
	DB *sql.DB
}

type upsertChemicalRequest struct {
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Unit     string  `json:"unit"`
	Location string  `json:"location"`
	Notes    string  `json:"notes"`
}

type adjustStockRequest struct {
	Delta float64 `json:"delta"`
}

// List handles GET /api/chemicals. Public: requesters search the inventory.
func (h *ChemicalsHandler) List(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	chems, err := store.ListChemicals(r.Context(), h.DB, search)
	if err != nil {
		storeError(w, err, "failed to list chemicals")
		return
	}
	if chems == nil {
		chems = []model.Chemical{}
	}
	jsonResponse(w, http.StatusOK, chems)
}

// Upsert handles PUT /api/chemicals. Insert-or-overwrite keyed on the name.
func (h *ChemicalsHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req upsertChemicalRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	chem, err := store.UpsertChemical(r.Context(), h.DB, req.Name, req.Amount, req.Unit, req.Location, req.Notes)
	if err != nil {
		storeError(w, err, "failed to save chemical")
		return
	}

	jsonResponse(w, http.StatusOK, chem)
}

// Adjust handles POST /api/chemicals/{id}/adjust. Direct administrative stock
// correction; delta may be negative.
func (h *ChemicalsHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid chemical id")
		return
	}

	var req adjustStockRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	newAmount, err := store.AdjustStock(r.Context(), h.DB, id, req.Delta)
	if err != nil {
		storeError(w, err, "failed to adjust stock")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]float64{"amount": newAmount})
}

// Import handles POST /api/chemicals/import. The body is a CSV with header
// Name,Amount,Unit,Location,Notes (Notes optional).
func (h *ChemicalsHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 5<<20)
	defer r.Body.Close()

	result, err := csvimport.Import(r.Context(), h.DB, r.Body)
	if err != nil {
		if errors.Is(err, csvimport.ErrBadHeader) {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		storeError(w, err, "failed to import chemicals")
		return
	}

	jsonResponse(w, http.StatusOK, result)
}
