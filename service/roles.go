package service

import "github.com/interacaodigitall-rgb/juridico/model"

// Pure decision logic for the signing workflow: completion checks and role
// resolution. No storage, no side effects.

// Complete reports whether every required signer role has a non-empty
// signature entry.
func Complete(required []string, signatures map[string]string) bool {
	for _, role := range required {
		if signatures[role] == "" {
			return false
		}
	}
	return true
}

// NextStatus returns the contract status implied by the current signatures
func NextStatus(required []string, signatures map[string]string) string {
	if Complete(required, signatures) {
		return model.StatusCompleted
	}
	return model.StatusPendingSignature
}

// AssignableRoles returns the required-but-unsigned roles the given signer
// may sign now, in template order. A role is assignable when the name
// recorded in the contract's field data for that role textually equals the
// signer's display name. One signer can hold several roles on the same
// contract and iterates through them one capture-submit cycle at a time.
func AssignableRoles(required []string, fieldData, signatures map[string]string, displayName string) []string {
	if displayName == "" {
		return nil
	}

	var roles []string
	for _, role := range required {
		if signatures[role] != "" {
			continue
		}
		if fieldData[role] == displayName {
			roles = append(roles, role)
		}
	}
	return roles
}
