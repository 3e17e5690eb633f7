package model

import (
	"testing"
	"time"
)

func TestTemplateFor(t *testing.T) {
	for _, ct := range []ContractType{TypePrestacao, TypeAluguer, TypeUber, TypeComodato, TypeAluguerProprietario, TypeAluguerParceiro} {
		tpl, err := TemplateFor(ct)
		if err != nil {
			t.Fatalf("Expected template for %s, got error: %v", ct, err)
		}
		if tpl.Title == "" {
			t.Errorf("Expected non-empty title for %s", ct)
		}
		if len(tpl.RequiredSigners) == 0 {
			t.Errorf("Expected required signers for %s", ct)
		}
		if tpl.Body == "" {
			t.Errorf("Expected non-empty body for %s", ct)
		}
	}
}

func TestTemplateForUnknown(t *testing.T) {
	_, err := TemplateFor("arrendamento")
	if err == nil {
		t.Error("Expected error for unknown contract type")
	}
}

func TestTemplateSignerLists(t *testing.T) {
	tpl, _ := TemplateFor(TypeUber)
	if len(tpl.RequiredSigners) != 3 {
		t.Errorf("Expected 3 signers for uber declaration, got %d", len(tpl.RequiredSigners))
	}
	if tpl.RequiredSigners[0] != "NOME_PROPRIETARIO" {
		t.Errorf("Expected NOME_PROPRIETARIO first, got %s", tpl.RequiredSigners[0])
	}

	tpl, _ = TemplateFor(TypeComodato)
	for _, signer := range tpl.RequiredSigners {
		if signer == "NOME_MOTORISTA" {
			t.Error("Comodato must not require a driver signature")
		}
	}
}

func TestRoleLabel(t *testing.T) {
	if got := RoleLabel("NOME_MOTORISTA"); got != "Motorista" {
		t.Errorf("Expected Motorista, got %s", got)
	}
	if got := RoleLabel("UNKNOWN_ROLE"); got != "UNKNOWN_ROLE" {
		t.Errorf("Expected fallback to role name, got %s", got)
	}
}

func TestSignatureRequestExpired(t *testing.T) {
	now := time.Now()
	req := &SignatureRequest{ExpiresAt: now.Add(48 * time.Hour)}
	if req.Expired(now) {
		t.Error("Expected request to be live before expiry")
	}
	if !req.Expired(now.Add(49 * time.Hour)) {
		t.Error("Expected request to be expired after expiresAt")
	}
}

func TestLegacyContractRecord(t *testing.T) {
	l := &LegacyContract{
		OwnerID:      "admin-1",
		ContractID:   "c-1",
		ContractType: TypePrestacao,
		Title:        "Contrato",
		Status:       StatusPendingSignature,
		HolderID:     "driver-1",
	}

	rec := l.Record()
	if rec.ID != "c-1" {
		t.Errorf("Expected id c-1, got %s", rec.ID)
	}
	if rec.OwnerID != "admin-1" {
		t.Errorf("Expected owner admin-1, got %s", rec.OwnerID)
	}
	if len(rec.ParticipantIDs) != 2 {
		t.Errorf("Expected owner and holder as participants, got %v", rec.ParticipantIDs)
	}
}
