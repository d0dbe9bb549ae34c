package store

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/labsys/chemstock/internal/db"
	"github.com/labsys/chemstock/internal/model"
)

func validPurchase() NewPurchaseRequest {
	return NewPurchaseRequest{
		MaterialName:   "Deuterated chloroform",
		CASNumber:      "865-49-6",
		Specifications: "99.8 atom % D",
		Amount:         100,
		Unit:           "mL",
		FirstName:      "Ada",
		Surname:        "Lovelace",
		Email:          "ada@lab.example",
		Comments:       "for NMR",
	}
}

func TestCreatePurchaseRequest(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	p, err := CreatePurchaseRequest(ctx, database, validPurchase())
	if err != nil {
		t.Fatalf("CreatePurchaseRequest: %v", err)
	}
	if p.Status != model.PurchasePending {
		t.Errorf("expected pending, got %q", p.Status)
	}
	if p.AttachmentMIME != "" {
		t.Errorf("expected no attachment, got MIME %q", p.AttachmentMIME)
	}
}

func TestCreatePurchaseRequestValidation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*NewPurchaseRequest)
	}{
		{"missing material", func(p *NewPurchaseRequest) { p.MaterialName = "" }},
		{"missing cas", func(p *NewPurchaseRequest) { p.CASNumber = "  " }},
		{"missing specs", func(p *NewPurchaseRequest) { p.Specifications = "" }},
		{"missing surname", func(p *NewPurchaseRequest) { p.Surname = "" }},
		{"bad email", func(p *NewPurchaseRequest) { p.Email = "nope" }},
		{"zero amount", func(p *NewPurchaseRequest) { p.Amount = 0 }},
		{"negative amount", func(p *NewPurchaseRequest) { p.Amount = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validPurchase()
			tc.mutate(&p)
			if _, err := CreatePurchaseRequest(ctx, database, p); !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestPurchaseAttachmentRoundtrip(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	p := validPurchase()
	p.Attachment = []byte("%PDF-1.4 fake quote")
	p.AttachmentMIME = "application/pdf"

	created, err := CreatePurchaseRequest(ctx, database, p)
	if err != nil {
		t.Fatalf("CreatePurchaseRequest: %v", err)
	}
	if created.AttachmentMIME != "application/pdf" {
		t.Errorf("expected MIME on listing fields, got %q", created.AttachmentMIME)
	}

	data, mime, err := GetPurchaseAttachment(ctx, database, created.ID)
	if err != nil {
		t.Fatalf("GetPurchaseAttachment: %v", err)
	}
	if !bytes.Equal(data, p.Attachment) || mime != "application/pdf" {
		t.Errorf("attachment did not round-trip: %d bytes, MIME %q", len(data), mime)
	}
}

func TestGetPurchaseAttachmentAbsent(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	created, _ := CreatePurchaseRequest(ctx, database, validPurchase())

	data, mime, err := GetPurchaseAttachment(ctx, database, created.ID)
	if err != nil {
		t.Fatalf("GetPurchaseAttachment: %v", err)
	}
	if data != nil || mime != "" {
		t.Errorf("expected no attachment, got %d bytes, MIME %q", len(data), mime)
	}

	_, _, err = GetPurchaseAttachment(ctx, database, 999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListPurchaseRequests(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first, _ := CreatePurchaseRequest(ctx, database, validPurchase())

	second := validPurchase()
	second.MaterialName = "Acetonitrile HPLC grade"
	created, _ := CreatePurchaseRequest(ctx, database, second)

	all, err := ListPurchaseRequests(ctx, database, "")
	if err != nil {
		t.Fatalf("ListPurchaseRequests: %v", err)
	}
	if len(all) != 2 || all[0].ID != created.ID || all[1].ID != first.ID {
		t.Errorf("expected most recent first, got %v", all)
	}

	SetPurchaseRequestStatus(ctx, database, first.ID, model.PurchaseApproved)

	approved, _ := ListPurchaseRequests(ctx, database, model.PurchaseApproved)
	if len(approved) != 1 || approved[0].ID != first.ID {
		t.Errorf("expected the approved request only, got %v", approved)
	}

	_, err = ListPurchaseRequests(ctx, database, "shipped")
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for unknown status, got %v", err)
	}
}

func TestSetPurchaseRequestStatus(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	created, _ := CreatePurchaseRequest(ctx, database, validPurchase())

	if err := SetPurchaseRequestStatus(ctx, database, created.ID, model.PurchasePurchased); err != nil {
		t.Fatalf("SetPurchaseRequestStatus: %v", err)
	}

	got, _ := GetPurchaseRequest(ctx, database, created.ID)
	if got.Status != model.PurchasePurchased {
		t.Errorf("expected purchased, got %q", got.Status)
	}

	if err := SetPurchaseRequestStatus(ctx, database, 999, model.PurchaseRejected); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := SetPurchaseRequestStatus(ctx, database, created.ID, "bogus"); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}
