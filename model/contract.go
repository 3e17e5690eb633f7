package model

import (
	"time"

	"gorm.io/datatypes"
)

// ContractType selects which fixed template and signer-role list applies.
type ContractType string

const (
	TypePrestacao           ContractType = "prestacao"
	TypeAluguer             ContractType = "aluguer"
	TypeUber                ContractType = "uber"
	TypeComodato            ContractType = "comodato"
	TypeAluguerProprietario ContractType = "aluguer_proprietario"
	TypeAluguerParceiro     ContractType = "aluguer_parceiro"
)

// Contract status constants. Transitions are forward-only.
const (
	StatusPendingSignature = "pending_signature"
	StatusCompleted        = "completed"
)

// Signature request status constants
const (
	RequestPending   = "pending"
	RequestCompleted = "completed"
)

// ContractRecord is a contract document in the flat canonical collection.
// FieldData holds the filled form (field name -> value); Signatures maps a
// signer role to its captured image payload and grows monotonically while
// the record is pending.
type ContractRecord struct {
	ID             string                                `gorm:"primaryKey;type:varchar(64)" json:"id"`
	ContractType   ContractType                          `gorm:"type:varchar(32);not null" json:"contract_type"`
	Title          string                                `gorm:"type:text" json:"title"`
	FieldData      datatypes.JSONType[map[string]string] `json:"field_data"`
	Signatures     datatypes.JSONType[map[string]string] `json:"signatures"`
	Status         string                                `gorm:"type:varchar(32);not null;index" json:"status"`
	OwnerID        string                                `gorm:"type:varchar(64);not null;index" json:"owner_id"`
	HolderID       string                                `gorm:"type:varchar(64);index" json:"holder_id,omitempty"`
	ParticipantIDs datatypes.JSONSlice[string]           `json:"participant_ids"`
	ArtifactName   string                                `gorm:"type:text" json:"artifact_name,omitempty"`
	CreatedAt      time.Time                             `gorm:"not null;index" json:"created_at"`
	UpdatedAt      time.Time                             `json:"updated_at"`
}

// TableName specifies the canonical flat collection table
func (ContractRecord) TableName() string {
	return "contracts"
}

// LegacyContract is the earlier per-owner layout, keyed by owner then
// contract id. Kept readable so history created before the flat collection
// is not lost; new records are never written here.
type LegacyContract struct {
	OwnerID      string                                `gorm:"primaryKey;type:varchar(64)" json:"owner_id"`
	ContractID   string                                `gorm:"primaryKey;type:varchar(64)" json:"contract_id"`
	ContractType ContractType                          `gorm:"type:varchar(32);not null" json:"contract_type"`
	Title        string                                `gorm:"type:text" json:"title"`
	FieldData    datatypes.JSONType[map[string]string] `json:"field_data"`
	Signatures   datatypes.JSONType[map[string]string] `json:"signatures"`
	Status       string                                `gorm:"type:varchar(32);not null" json:"status"`
	HolderID     string                                `gorm:"type:varchar(64)" json:"holder_id,omitempty"`
	CreatedAt    time.Time                             `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time                             `json:"updated_at"`
}

// TableName specifies the legacy owner-namespace table
func (LegacyContract) TableName() string {
	return "owner_contracts"
}

// Record converts a legacy row into the logical contract view
func (l *LegacyContract) Record() ContractRecord {
	return ContractRecord{
		ID:             l.ContractID,
		ContractType:   l.ContractType,
		Title:          l.Title,
		FieldData:      l.FieldData,
		Signatures:     l.Signatures,
		Status:         l.Status,
		OwnerID:        l.OwnerID,
		HolderID:       l.HolderID,
		ParticipantIDs: datatypes.JSONSlice[string]{l.OwnerID, l.HolderID},
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
}

// SignatureRequest is a detached, token-addressable signing surface for a
// contract in progress. RequiredSigners is a snapshot taken at creation;
// template changes never alter an outstanding request.
type SignatureRequest struct {
	ID              string                                `gorm:"primaryKey;type:varchar(64)" json:"id"`
	OwnerID         string                                `gorm:"type:varchar(64);not null;index" json:"owner_id"`
	ContractType    ContractType                          `gorm:"type:varchar(32);not null" json:"contract_type"`
	FieldData       datatypes.JSONType[map[string]string] `json:"field_data"`
	RequiredSigners datatypes.JSONSlice[string]           `json:"required_signers"`
	Signatures      datatypes.JSONType[map[string]string] `json:"signatures"`
	Status          string                                `gorm:"type:varchar(32);not null" json:"status"`
	CreatedAt       time.Time                             `gorm:"not null" json:"created_at"`
	ExpiresAt       time.Time                             `gorm:"not null;index" json:"expires_at"`
}

// TableName specifies the signature request table
func (SignatureRequest) TableName() string {
	return "signature_requests"
}

// Expired reports whether the request is logically dead. An expired request
// must be treated as not found regardless of physical deletion.
func (r *SignatureRequest) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
