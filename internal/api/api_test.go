package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/labsys/chemstock/internal/db"
	"github.com/labsys/chemstock/internal/model"
	"github.com/labsys/chemstock/internal/store"
)

const testPassword = "correct-horse-battery"

// newTestServer spins up the API over an in-memory database with the admin
// credential already set.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	database := db.NewTestDB(t)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing test password: %v", err)
	}
	if err := store.SetAdminPasswordHash(ctx, database, string(hash)); err != nil {
		t.Fatalf("setting admin credential: %v", err)
	}

	secret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatalf("getting jwt secret: %v", err)
	}

	server := httptest.NewServer(NewRouter(database, secret))
	t.Cleanup(server.Close)
	return server
}

func login(t *testing.T, server *httptest.Server) string {
	t.Helper()
	resp := postJSON(t, server, "", "/api/auth/login", map[string]string{"password": testPassword})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed with status %d", resp.StatusCode)
	}
	var body map[string]string
	decode(t, resp, &body)
	return body["token"]
}

func doRequest(t *testing.T, server *httptest.Server, method, token, path string, body io.Reader, contentType string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, server.URL+path, body)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func postJSON(t *testing.T, server *httptest.Server, token, path string, payload any) *http.Response {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshaling payload: %v", err)
	}
	return doRequest(t, server, http.MethodPost, token, path, bytes.NewReader(data), "application/json")
}

func putJSON(t *testing.T, server *httptest.Server, token, path string, payload any) *http.Response {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshaling payload: %v", err)
	}
	return doRequest(t, server, http.MethodPut, token, path, bytes.NewReader(data), "application/json")
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

func addChemical(t *testing.T, server *httptest.Server, token, name string, amount float64, unit string) model.Chemical {
	t.Helper()
	resp := putJSON(t, server, token, "/api/chemicals", map[string]any{
		"name": name, "amount": amount, "unit": unit, "location": "Shelf A",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upsert chemical: status %d", resp.StatusCode)
	}
	var chem model.Chemical
	decode(t, resp, &chem)
	return chem
}

func TestLoginWrongPassword(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server, "", "/api/auth/login", map[string]string{"password": "nope"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAdminEndpointsRequireToken(t *testing.T) {
	server := newTestServer(t)

	resp := doRequest(t, server, http.MethodGet, "", "/api/requests", nil, "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", resp.StatusCode)
	}

	resp = doRequest(t, server, http.MethodGet, "garbage-token", "/api/requests", nil, "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 with bad token, got %d", resp.StatusCode)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	server := newTestServer(t)
	token := login(t, server)

	resp := postJSON(t, server, token, "/api/auth/logout", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout: status %d", resp.StatusCode)
	}

	resp = doRequest(t, server, http.MethodGet, token, "/api/requests", nil, "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", resp.StatusCode)
	}
}

func TestChangePassword(t *testing.T) {
	server := newTestServer(t)
	token := login(t, server)

	// Too short.
	resp := putJSON(t, server, token, "/api/auth/password", map[string]string{
		"current_password": testPassword, "new_password": "short",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for short password, got %d", resp.StatusCode)
	}

	// Wrong current password.
	resp = putJSON(t, server, token, "/api/auth/password", map[string]string{
		"current_password": "nope", "new_password": "a-new-password",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong current password, got %d", resp.StatusCode)
	}

	// Valid change.
	resp = putJSON(t, server, token, "/api/auth/password", map[string]string{
		"current_password": testPassword, "new_password": "a-new-password",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("change password: status %d", resp.StatusCode)
	}

	// Old password no longer works, new one does.
	resp = postJSON(t, server, "", "/api/auth/login", map[string]string{"password": testPassword})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("old password still accepted: status %d", resp.StatusCode)
	}
	resp = postJSON(t, server, "", "/api/auth/login", map[string]string{"password": "a-new-password"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("new password rejected: status %d", resp.StatusCode)
	}
}

func TestChemicalSearchPublic(t *testing.T) {
	server := newTestServer(t)
	token := login(t, server)

	addChemical(t, server, token, "Ethanol", 5, "L")
	addChemical(t, server, token, "Acetone", 2, "L")

	// No token needed for search.
	resp := doRequest(t, server, http.MethodGet, "", "/api/chemicals?search=ethan", nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("search: status %d", resp.StatusCode)
	}
	var chems []model.Chemical
	decode(t, resp, &chems)
	if len(chems) != 1 || chems[0].Name != "Ethanol" {
		t.Errorf("expected [Ethanol], got %v", chems)
	}
}

func TestRequestApprovalFlow(t *testing.T) {
	server := newTestServer(t)
	token := login(t, server)

	chem := addChemical(t, server, token, "Ethanol", 5, "L")

	// Public submission.
	resp := postJSON(t, server, "", "/api/requests", map[string]any{
		"chem_id":         chem.ID,
		"first_name":      "Ada",
		"surname":         "Lovelace",
		"requester_email": "ada@lab.example",
		"quantity":        2,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create request: status %d", resp.StatusCode)
	}
	var req model.Request
	decode(t, resp, &req)

	// Approval deducts stock.
	resp = postJSON(t, server, token, fmt.Sprintf("/api/requests/%d/approve", req.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("approve: status %d", resp.StatusCode)
	}
	var decision struct {
		Approved  bool    `json:"approved"`
		NewAmount float64 `json:"new_amount"`
	}
	decode(t, resp, &decision)
	if !decision.Approved || decision.NewAmount != 3 {
		t.Errorf("unexpected decision: %+v", decision)
	}

	// A retry is a conflict, not a second deduction.
	resp = postJSON(t, server, token, fmt.Sprintf("/api/requests/%d/approve", req.ID), nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 on re-approval, got %d", resp.StatusCode)
	}
}

func TestRequestApprovalInsufficientStock(t *testing.T) {
	server := newTestServer(t)
	token := login(t, server)

	chem := addChemical(t, server, token, "Acetone", 10, "L")

	resp := postJSON(t, server, "", "/api/requests", map[string]any{
		"chem_id":         chem.ID,
		"first_name":      "Grace",
		"surname":         "Hopper",
		"requester_email": "grace@lab.example",
		"quantity":        15,
	})
	var req model.Request
	decode(t, resp, &req)

	resp = postJSON(t, server, token, fmt.Sprintf("/api/requests/%d/approve", req.ID), nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	var decision struct {
		Approved bool `json:"approved"`
		Denial   struct {
			Reason string  `json:"reason"`
			Have   float64 `json:"have"`
			Need   float64 `json:"need"`
		} `json:"denial"`
	}
	decode(t, resp, &decision)
	if decision.Approved || decision.Denial.Have != 10 || decision.Denial.Need != 15 {
		t.Errorf("unexpected denial payload: %+v", decision)
	}

	// Stock unchanged.
	resp = doRequest(t, server, http.MethodGet, "", "/api/chemicals?search=acetone", nil, "")
	var chems []model.Chemical
	decode(t, resp, &chems)
	if len(chems) != 1 || chems[0].Amount != 10 {
		t.Errorf("denial changed stock: %v", chems)
	}
}

func TestRequestCreateValidation(t *testing.T) {
	server := newTestServer(t)
	token := login(t, server)
	chem := addChemical(t, server, token, "Ethanol", 5, "L")

	// Zero quantity.
	resp := postJSON(t, server, "", "/api/requests", map[string]any{
		"chem_id": chem.ID, "first_name": "Ada", "surname": "Lovelace",
		"requester_email": "ada@lab.example", "quantity": 0,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for zero quantity, got %d", resp.StatusCode)
	}

	// Unknown chemical.
	resp = postJSON(t, server, "", "/api/requests", map[string]any{
		"chem_id": 999, "first_name": "Ada", "surname": "Lovelace",
		"requester_email": "ada@lab.example", "quantity": 1,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown chemical, got %d", resp.StatusCode)
	}
}

func TestSetStatusBlocksApproval(t *testing.T) {
	server := newTestServer(t)
	token := login(t, server)
	chem := addChemical(t, server, token, "Ethanol", 5, "L")

	resp := postJSON(t, server, "", "/api/requests", map[string]any{
		"chem_id": chem.ID, "first_name": "Ada", "surname": "Lovelace",
		"requester_email": "ada@lab.example", "quantity": 1,
	})
	var req model.Request
	decode(t, resp, &req)

	// Approval must not bypass the deduction.
	resp = postJSON(t, server, token, fmt.Sprintf("/api/requests/%d/status", req.ID),
		map[string]string{"status": "approved"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for status=approved, got %d", resp.StatusCode)
	}

	// Rejection is fine.
	resp = postJSON(t, server, token, fmt.Sprintf("/api/requests/%d/status", req.ID),
		map[string]string{"status": "rejected"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("reject: status %d", resp.StatusCode)
	}
}

func TestAdjustStockEndpoint(t *testing.T) {
	server := newTestServer(t)
	token := login(t, server)
	chem := addChemical(t, server, token, "Ethanol", 5, "L")

	resp := postJSON(t, server, token, fmt.Sprintf("/api/chemicals/%d/adjust", chem.ID),
		map[string]float64{"delta": -1.5})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("adjust: status %d", resp.StatusCode)
	}
	var body map[string]float64
	decode(t, resp, &body)
	if body["amount"] != 3.5 {
		t.Errorf("expected amount 3.5, got %g", body["amount"])
	}
}

func TestCSVImportEndpoint(t *testing.T) {
	server := newTestServer(t)
	token := login(t, server)

	csv := "Name,Amount,Unit,Location\nEthanol,2.5,L,Cabinet\nAcetone,1,L,Cabinet\n"
	resp := doRequest(t, server, http.MethodPost, token, "/api/chemicals/import",
		strings.NewReader(csv), "text/csv")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("import: status %d", resp.StatusCode)
	}
	var result struct {
		Imported int `json:"imported"`
	}
	decode(t, resp, &result)
	if result.Imported != 2 {
		t.Errorf("expected 2 imported, got %d", result.Imported)
	}

	// Bad header is a client error.
	resp = doRequest(t, server, http.MethodPost, token, "/api/chemicals/import",
		strings.NewReader("Foo,Bar\n1,2\n"), "text/csv")
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for bad header, got %d", resp.StatusCode)
	}
}

func purchaseForm(t *testing.T, attachment []byte, attachmentName string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := map[string]string{
		"material_name":   "Deuterated chloroform",
		"cas_number":      "865-49-6",
		"specifications":  "99.8 atom % D",
		"amount":          "100",
		"unit":            "mL",
		"first_name":      "Ada",
		"surname":         "Lovelace",
		"requester_email": "ada@lab.example",
		"comments":        "for NMR",
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("writing field %s: %v", k, err)
		}
	}
	if attachment != nil {
		fw, err := mw.CreateFormFile("attachment", attachmentName)
		if err != nil {
			t.Fatalf("creating form file: %v", err)
		}
		fw.Write(attachment)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestPurchaseRequestFlow(t *testing.T) {
	server := newTestServer(t)
	token := login(t, server)

	pdf := []byte("%PDF-1.4\nfake supplier quote\n%%EOF\n")
	body, contentType := purchaseForm(t, pdf, "quote.pdf")

	// Public submission with attachment.
	resp := doRequest(t, server, http.MethodPost, "", "/api/purchase-requests", body, contentType)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create purchase request: status %d", resp.StatusCode)
	}
	var created model.PurchaseRequest
	decode(t, resp, &created)
	if created.Status != model.PurchasePending || created.AttachmentMIME != "application/pdf" {
		t.Errorf("unexpected purchase request: %+v", created)
	}

	// Admin fetches the attachment back.
	resp = doRequest(t, server, http.MethodGet, token,
		fmt.Sprintf("/api/purchase-requests/%d/attachment", created.ID), nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get attachment: status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("expected application/pdf, got %q", ct)
	}
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !bytes.Equal(data, pdf) {
		t.Error("attachment did not round-trip")
	}

	// Status transition.
	resp = postJSON(t, server, token, fmt.Sprintf("/api/purchase-requests/%d/status", created.ID),
		map[string]string{"status": "approved"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("set status: status %d", resp.StatusCode)
	}

	// Listing with filter.
	resp = doRequest(t, server, http.MethodGet, token, "/api/purchase-requests?status=approved", nil, "")
	var list []model.PurchaseRequest
	decode(t, resp, &list)
	if len(list) != 1 || list[0].ID != created.ID {
		t.Errorf("expected the approved purchase request, got %v", list)
	}
}

func TestPurchaseRequestRejectsBadAttachment(t *testing.T) {
	server := newTestServer(t)

	body, contentType := purchaseForm(t, []byte("#!/bin/sh\necho hi\n"), "script.sh")
	resp := doRequest(t, server, http.MethodPost, "", "/api/purchase-requests", body, contentType)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for unsupported attachment, got %d", resp.StatusCode)
	}
}

func TestPurchaseRequestWithoutAttachment(t *testing.T) {
	server := newTestServer(t)
	token := login(t, server)

	body, contentType := purchaseForm(t, nil, "")
	resp := doRequest(t, server, http.MethodPost, "", "/api/purchase-requests", body, contentType)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create purchase request: status %d", resp.StatusCode)
	}
	var created model.PurchaseRequest
	decode(t, resp, &created)

	resp = doRequest(t, server, http.MethodGet, token,
		fmt.Sprintf("/api/purchase-requests/%d/attachment", created.ID), nil, "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for missing attachment, got %d", resp.StatusCode)
	}
}
