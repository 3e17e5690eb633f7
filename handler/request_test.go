package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/interacaodigitall-rgb/juridico/model"
	"gorm.io/datatypes"
)

func TestRequestCreateValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name           string
		body           gin.H
		expectedStatus int
	}{
		{
			name: "valid",
			body: gin.H{
				"contract_type":    "prestacao",
				"required_signers": []string{"NOME_MOTORISTA"},
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "unknown contract type",
			body: gin.H{
				"contract_type":    "arrendamento",
				"required_signers": []string{"NOME_MOTORISTA"},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "role outside the template",
			body: gin.H{
				"contract_type":    "prestacao",
				"required_signers": []string{"NOME_PROPRIETARIO"},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing signers",
			body:           gin.H{"contract_type": "prestacao"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, asAdmin, "POST", "/api/requests", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestRequestGetUnknownToken(t *testing.T) {
	env := newTestEnv(t)

	if w := env.do(t, asNobody, "GET", "/api/requests/no-such-token", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for an unknown token, got %d", w.Code)
	}
}

func seedExpiredToken(t *testing.T, env *testEnv, token string) {
	t.Helper()
	req := &model.SignatureRequest{
		ID:              token,
		OwnerID:         "admin",
		ContractType:    model.TypePrestacao,
		FieldData:       datatypes.NewJSONType(map[string]string{}),
		RequiredSigners: datatypes.JSONSlice[string]{"NOME_MOTORISTA"},
		Signatures:      datatypes.NewJSONType(map[string]string{}),
		Status:          model.RequestPending,
		CreatedAt:       time.Now().Add(-72 * time.Hour),
		ExpiresAt:       time.Now().Add(-24 * time.Hour),
	}
	if err := env.db.Create(req).Error; err != nil {
		t.Fatalf("Failed to seed expired request: %v", err)
	}
}

func TestRequestExpiredTokenLooksMissing(t *testing.T) {
	env := newTestEnv(t)
	seedExpiredToken(t, env, "expired-token")

	if w := env.do(t, asNobody, "GET", "/api/requests/expired-token", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 resolving an expired token, got %d", w.Code)
	}
	w := env.do(t, asNobody, "POST", "/api/requests/expired-token/signatures", gin.H{
		"role": "NOME_MOTORISTA", "image": testImage(),
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 signing an expired token, got %d", w.Code)
	}
	if w := env.do(t, asAdmin, "GET", "/api/requests/expired-token/events", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 watching an expired token, got %d", w.Code)
	}
}

func TestRequestSignForeignRole(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, asAdmin, "POST", "/api/requests", gin.H{
		"contract_type":    "prestacao",
		"required_signers": []string{"NOME_MOTORISTA"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Failed to create signature request: %d", w.Code)
	}
	token := decodeJSON(t, w)["token"].(string)

	w = env.do(t, asNobody, "POST", "/api/requests/"+token+"/signatures", gin.H{
		"role": "REPRESENTANTE_NOME", "image": testImage(),
	})
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for a role outside the request, got %d", w.Code)
	}
}

func TestRequestSignInvalidPayload(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, asAdmin, "POST", "/api/requests", gin.H{
		"contract_type":    "prestacao",
		"required_signers": []string{"NOME_MOTORISTA"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Failed to create signature request: %d", w.Code)
	}
	token := decodeJSON(t, w)["token"].(string)

	w = env.do(t, asNobody, "POST", "/api/requests/"+token+"/signatures", gin.H{
		"role": "NOME_MOTORISTA", "image": "https://example.com/sig.png",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a non data URI payload, got %d", w.Code)
	}
}

func TestRequestGetHidesImagePayloads(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, asAdmin, "POST", "/api/requests", gin.H{
		"contract_type":    "uber",
		"required_signers": []string{"NOME_PROPRIETARIO", "NOME_MOTORISTA"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Failed to create signature request: %d", w.Code)
	}
	token := decodeJSON(t, w)["token"].(string)

	w = env.do(t, asNobody, "POST", "/api/requests/"+token+"/signatures", gin.H{
		"role": "NOME_MOTORISTA", "image": testImage(),
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Failed to sign: %d", w.Code)
	}

	w = env.do(t, asNobody, "GET", "/api/requests/"+token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Failed to resolve token: %d", w.Code)
	}
	resp := decodeJSON(t, w)
	signed := resp["signatures"].([]any)
	if len(signed) != 1 || signed[0] != "NOME_MOTORISTA" {
		t.Errorf("Expected signed role list [NOME_MOTORISTA], got %v", signed)
	}
	if resp["status"] != model.RequestPending {
		t.Errorf("Expected request still pending, got %v", resp["status"])
	}
}
