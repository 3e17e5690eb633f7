package service

import (
	"reflect"
	"testing"

	"github.com/interacaodigitall-rgb/juridico/model"
)

func TestComplete(t *testing.T) {
	required := []string{"REPRESENTANTE_NOME", "NOME_MOTORISTA"}

	tests := []struct {
		name       string
		signatures map[string]string
		want       bool
	}{
		{"no signatures", map[string]string{}, false},
		{"one of two", map[string]string{"REPRESENTANTE_NOME": "img"}, false},
		{"empty entry does not count", map[string]string{"REPRESENTANTE_NOME": "img", "NOME_MOTORISTA": ""}, false},
		{"all signed", map[string]string{"REPRESENTANTE_NOME": "img", "NOME_MOTORISTA": "img"}, true},
		{"extra roles ignored", map[string]string{"REPRESENTANTE_NOME": "img", "NOME_MOTORISTA": "img", "OUTRO": "img"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Complete(required, tt.signatures); got != tt.want {
				t.Errorf("Complete() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompleteEmptyRequired(t *testing.T) {
	// Vacuous truth: a template without signers is trivially complete
	if !Complete(nil, map[string]string{}) {
		t.Error("Expected empty required list to be complete")
	}
}

func TestNextStatus(t *testing.T) {
	required := []string{"NOME_MOTORISTA"}

	if got := NextStatus(required, map[string]string{}); got != model.StatusPendingSignature {
		t.Errorf("Expected pending_signature, got %s", got)
	}
	if got := NextStatus(required, map[string]string{"NOME_MOTORISTA": "img"}); got != model.StatusCompleted {
		t.Errorf("Expected completed, got %s", got)
	}
}

func TestAssignableRolesSameNameTwice(t *testing.T) {
	// One person is both the listed driver and the listed owner
	required := []string{"DRIVER", "OWNER"}
	fieldData := map[string]string{"DRIVER": "Jane Doe", "OWNER": "Jane Doe"}

	roles := AssignableRoles(required, fieldData, map[string]string{}, "Jane Doe")
	if !reflect.DeepEqual(roles, []string{"DRIVER", "OWNER"}) {
		t.Errorf("Expected both roles, got %v", roles)
	}

	// After signing DRIVER only OWNER remains
	roles = AssignableRoles(required, fieldData, map[string]string{"DRIVER": "img"}, "Jane Doe")
	if !reflect.DeepEqual(roles, []string{"OWNER"}) {
		t.Errorf("Expected OWNER, got %v", roles)
	}

	// After both signed, nothing is left
	roles = AssignableRoles(required, fieldData, map[string]string{"DRIVER": "img", "OWNER": "img"}, "Jane Doe")
	if len(roles) != 0 {
		t.Errorf("Expected no roles, got %v", roles)
	}
}

func TestAssignableRolesNameMismatch(t *testing.T) {
	required := []string{"NOME_MOTORISTA"}
	fieldData := map[string]string{"NOME_MOTORISTA": "Jane Doe"}

	roles := AssignableRoles(required, fieldData, map[string]string{}, "John Smith")
	if len(roles) != 0 {
		t.Errorf("Expected no roles for a different name, got %v", roles)
	}
}

func TestAssignableRolesEmptyDisplayName(t *testing.T) {
	required := []string{"NOME_MOTORISTA"}
	// An unfilled role field must not match an anonymous display name
	fieldData := map[string]string{"NOME_MOTORISTA": ""}

	roles := AssignableRoles(required, fieldData, map[string]string{}, "")
	if len(roles) != 0 {
		t.Errorf("Expected no roles for empty display name, got %v", roles)
	}
}

func TestAssignableRolesTemplateOrder(t *testing.T) {
	required := []string{"NOME_PROPRIETARIO", "REPRESENTANTE_NOME", "NOME_MOTORISTA"}
	fieldData := map[string]string{
		"NOME_PROPRIETARIO": "Carlos Mota",
		"NOME_MOTORISTA":    "Carlos Mota",
	}

	roles := AssignableRoles(required, fieldData, map[string]string{}, "Carlos Mota")
	if !reflect.DeepEqual(roles, []string{"NOME_PROPRIETARIO", "NOME_MOTORISTA"}) {
		t.Errorf("Expected template order preserved, got %v", roles)
	}
}
