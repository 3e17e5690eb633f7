package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/interacaodigitall-rgb/juridico/model"
	"github.com/interacaodigitall-rgb/juridico/pkg/logger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Query roles accepted by LoadFor
const (
	QueryOwner  = "owner"
	QueryHolder = "holder"
)

// ContractStore persists contract records across two coexisting physical
// layouts: the canonical flat collection, and the earlier per-owner table
// that older records still live in. New records only ever go to the flat
// collection; reads reconcile the two.
type ContractStore struct {
	db *gorm.DB
}

// NewContractStore creates a contract store on the given database
func NewContractStore(db *gorm.DB) *ContractStore {
	return &ContractStore{db: db}
}

// Create assigns a fresh id and stores the record in the flat collection
// with status pending_signature and no signatures.
func (s *ContractStore) Create(ctx context.Context, rec *model.ContractRecord) (string, error) {
	if _, err := model.TemplateFor(rec.ContractType); err != nil {
		return "", err
	}

	rec.ID = uuid.New().String()
	rec.Status = model.StatusPendingSignature
	rec.Signatures = datatypes.NewJSONType(map[string]string{})
	if rec.FieldData.Data() == nil {
		rec.FieldData = datatypes.NewJSONType(map[string]string{})
	}
	rec.ParticipantIDs = ensureParticipants(rec.ParticipantIDs, rec.OwnerID, rec.HolderID)
	now := time.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return "", classifyStoreError("create contract", err)
	}

	logger.Info(ctx, "contract created",
		"contract_id", rec.ID,
		"contract_type", rec.ContractType,
		"owner_id", rec.OwnerID,
	)
	return rec.ID, nil
}

// LoadFor returns the contracts visible to an identity under the given
// query role, newest first.
//
// Owners see the union of their flat-collection records and any records
// still nested in their legacy namespace, deduplicated by id with the flat
// version winning. Holders see flat-collection records whose participant
// list contains them.
func (s *ContractStore) LoadFor(ctx context.Context, identity, role string) ([]model.ContractRecord, error) {
	switch role {
	case QueryOwner:
		var flat []model.ContractRecord
		if err := s.db.WithContext(ctx).
			Where("owner_id = ?", identity).
			Find(&flat).Error; err != nil {
			return nil, classifyStoreError("load contracts", err)
		}

		var legacyRows []model.LegacyContract
		if err := s.db.WithContext(ctx).
			Where("owner_id = ?", identity).
			Find(&legacyRows).Error; err != nil {
			return nil, classifyStoreError("load legacy contracts", err)
		}
		legacy := make([]model.ContractRecord, 0, len(legacyRows))
		for i := range legacyRows {
			legacy = append(legacy, legacyRows[i].Record())
		}

		return reconcileByID(flat, legacy), nil

	case QueryHolder:
		var recs []model.ContractRecord
		err := s.db.WithContext(ctx).
			Where("EXISTS (SELECT 1 FROM json_each(contracts.participant_ids) WHERE json_each.value = ?)", identity).
			Order("created_at DESC").
			Find(&recs).Error
		if err != nil {
			return nil, classifyStoreError("load contracts by participant", err)
		}
		return recs, nil

	default:
		return nil, errors.New("unknown query role: " + role)
	}
}

// Get returns a single contract visible to the identity, checking the flat
// collection first and the legacy namespace second.
func (s *ContractStore) Get(ctx context.Context, id, identity string) (*model.ContractRecord, error) {
	var rec model.ContractRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if err == nil {
		if !canAccess(&rec, identity) {
			return nil, ErrPermissionDenied
		}
		return &rec, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, classifyStoreError("get contract", err)
	}

	var legacy model.LegacyContract
	if err := s.db.WithContext(ctx).Where("contract_id = ?", id).First(&legacy).Error; err != nil {
		return nil, classifyStoreError("get contract", err)
	}
	lr := legacy.Record()
	if !canAccess(&lr, identity) {
		return nil, ErrPermissionDenied
	}
	return &lr, nil
}

// UpdateSignatures merges new signature entries into a record and moves its
// status, never regressing a completed record. The merge happens inside a
// transaction against the stored map, so two writers adding distinct roles
// cannot drop each other's entry within this process. A legacy copy of the
// record, when present, is kept in sync.
func (s *ContractStore) UpdateSignatures(ctx context.Context, id, identity string, signatures map[string]string, status string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec model.ContractRecord
		if err := tx.Where("id = ?", id).First(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return s.updateLegacyOnly(tx, id, identity, signatures, status)
			}
			return err
		}

		if !canAccess(&rec, identity) {
			return ErrPermissionDenied
		}

		// A completed record is immutable under normal flow
		if rec.Status == model.StatusCompleted {
			return nil
		}

		merged := mergeSignatures(rec.Signatures.Data(), signatures)
		newStatus := status
		if newStatus != model.StatusCompleted {
			newStatus = model.StatusPendingSignature
		}

		updates := map[string]any{
			"signatures": datatypes.NewJSONType(merged),
			"status":     newStatus,
			"updated_at": time.Now(),
		}
		if err := tx.Model(&model.ContractRecord{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}

		// Mirror into the legacy copy if one still exists; zero rows is fine
		return tx.Model(&model.LegacyContract{}).Where("contract_id = ?", id).Updates(updates).Error
	})
	if err != nil {
		return classifyStoreError("update signatures", err)
	}

	logger.Info(ctx, "contract signatures updated", "contract_id", id, "status", status)
	return nil
}

// updateLegacyOnly handles the record that predates the flat collection and
// only exists in its owner's namespace.
func (s *ContractStore) updateLegacyOnly(tx *gorm.DB, id, identity string, signatures map[string]string, status string) error {
	var legacy model.LegacyContract
	if err := tx.Where("contract_id = ?", id).First(&legacy).Error; err != nil {
		return err
	}
	if legacy.OwnerID != identity && legacy.HolderID != identity {
		return ErrPermissionDenied
	}
	if legacy.Status == model.StatusCompleted {
		return nil
	}

	merged := mergeSignatures(legacy.Signatures.Data(), signatures)
	newStatus := status
	if newStatus != model.StatusCompleted {
		newStatus = model.StatusPendingSignature
	}

	return tx.Model(&model.LegacyContract{}).Where("contract_id = ?", id).Updates(map[string]any{
		"signatures": datatypes.NewJSONType(merged),
		"status":     newStatus,
		"updated_at": time.Now(),
	}).Error
}

// SetArtifact records the archived artifact object name on the contract
func (s *ContractStore) SetArtifact(ctx context.Context, id, objectName string) error {
	err := s.db.WithContext(ctx).Model(&model.ContractRecord{}).Where("id = ?", id).
		Update("artifact_name", objectName).Error
	return classifyStoreError("set artifact", err)
}

// Delete removes a contract from both physical layouts. Deleting an id that
// is absent from either layout is not an error, so retries are harmless.
func (s *ContractStore) Delete(ctx context.Context, id, ownerID string) error {
	if err := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&model.ContractRecord{}).Error; err != nil {
		return classifyStoreError("delete contract", err)
	}

	if err := s.db.WithContext(ctx).
		Where("owner_id = ? AND contract_id = ?", ownerID, id).
		Delete(&model.LegacyContract{}).Error; err != nil {
		return classifyStoreError("delete legacy contract", err)
	}

	logger.Info(ctx, "contract deleted", "contract_id", id, "owner_id", ownerID)
	return nil
}

// reconcileByID merges the canonical and legacy views of an owner's
// contracts into one logical list: deduplicated by id, canonical version
// winning on conflict, ordered by creation time descending.
func reconcileByID(canonical, legacy []model.ContractRecord) []model.ContractRecord {
	seen := make(map[string]struct{}, len(canonical))
	merged := make([]model.ContractRecord, 0, len(canonical)+len(legacy))

	for _, rec := range canonical {
		seen[rec.ID] = struct{}{}
		merged = append(merged, rec)
	}
	for _, rec := range legacy {
		if _, ok := seen[rec.ID]; ok {
			continue
		}
		merged = append(merged, rec)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].CreatedAt.Equal(merged[j].CreatedAt) {
			return merged[i].ID < merged[j].ID
		}
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})
	return merged
}

// mergeSignatures applies new entries over the stored map. An entry, once
// set, is never cleared by an empty value.
func mergeSignatures(current, updates map[string]string) map[string]string {
	merged := make(map[string]string, len(current)+len(updates))
	for role, img := range current {
		merged[role] = img
	}
	for role, img := range updates {
		if img == "" {
			continue
		}
		merged[role] = img
	}
	return merged
}

// ensureParticipants guarantees owner and holder are present in the
// participant list used by the flat-collection access model.
func ensureParticipants(participants []string, ownerID, holderID string) datatypes.JSONSlice[string] {
	out := make(datatypes.JSONSlice[string], 0, len(participants)+2)
	present := make(map[string]struct{})
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := present[id]; ok {
			return
		}
		present[id] = struct{}{}
		out = append(out, id)
	}

	add(ownerID)
	add(holderID)
	for _, id := range participants {
		add(id)
	}
	return out
}

// canAccess reports whether an identity may read or write a record
func canAccess(rec *model.ContractRecord, identity string) bool {
	if identity == "" {
		return false
	}
	if rec.OwnerID == identity || rec.HolderID == identity {
		return true
	}
	for _, id := range rec.ParticipantIDs {
		if id == identity {
			return true
		}
	}
	return false
}
