package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/interacaodigitall-rgb/juridico/config"
	"github.com/interacaodigitall-rgb/juridico/model"
	"github.com/interacaodigitall-rgb/juridico/pkg/logger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SignatureRequestStore owns the short-lived, token-addressable records that
// let an unauthenticated party sign a contract in progress. Tokens expire
// after a configured TTL; an expired request is treated as gone whether or
// not its row was physically deleted.
type SignatureRequestStore struct {
	db  *gorm.DB
	ttl time.Duration

	mu      sync.Mutex
	subs    map[string]map[int]func(*model.SignatureRequest)
	nextSub int
}

// NewSignatureRequestStore creates the request store with the configured TTL
func NewSignatureRequestStore(db *gorm.DB, cfg *config.SigningConfig) *SignatureRequestStore {
	ttlHours := cfg.RequestTTLHours
	if ttlHours <= 0 {
		ttlHours = 48
	}
	return &SignatureRequestStore{
		db:   db,
		ttl:  time.Duration(ttlHours) * time.Hour,
		subs: make(map[string]map[int]func(*model.SignatureRequest)),
	}
}

// Create stores a new request and returns its token. The required-signer
// list and field data are snapshots taken now; later template or form
// changes never alter an outstanding request.
func (s *SignatureRequestStore) Create(ctx context.Context, ownerID string, contractType model.ContractType, fieldData map[string]string, requiredSigners []string) (string, error) {
	if len(requiredSigners) == 0 {
		return "", errors.New("a signature request needs at least one signer role")
	}

	now := time.Now()
	req := &model.SignatureRequest{
		ID:              uuid.New().String(),
		OwnerID:         ownerID,
		ContractType:    contractType,
		FieldData:       datatypes.NewJSONType(copyStringMap(fieldData)),
		RequiredSigners: append(datatypes.JSONSlice[string]{}, requiredSigners...),
		Signatures:      datatypes.NewJSONType(map[string]string{}),
		Status:          model.RequestPending,
		CreatedAt:       now,
		ExpiresAt:       now.Add(s.ttl),
	}

	if err := s.db.WithContext(ctx).Create(req).Error; err != nil {
		return "", classifyStoreError("create signature request", err)
	}

	logger.Info(ctx, "signature request created",
		"token", req.ID,
		"owner_id", ownerID,
		"expires_at", req.ExpiresAt,
	)
	return req.ID, nil
}

// Get returns the request for a token. Absent and expired requests are both
// reported as not found; the remote page shows the same dead-link message
// for either.
func (s *SignatureRequestStore) Get(ctx context.Context, token string) (*model.SignatureRequest, error) {
	var req model.SignatureRequest
	if err := s.db.WithContext(ctx).Where("id = ?", token).First(&req).Error; err != nil {
		return nil, classifyStoreError("get signature request", err)
	}
	if req.Expired(time.Now()) {
		return nil, ErrNotFound
	}
	return &req, nil
}

// ApplySignature merges one role's image into the request and completes it
// when every required signer has an entry. Re-signing an already-signed role
// overwrites the image; a completed status never reverts.
func (s *SignatureRequestStore) ApplySignature(ctx context.Context, token, role, image string) (*model.SignatureRequest, error) {
	if image == "" {
		return nil, errors.New("empty signature payload")
	}

	var updated model.SignatureRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req model.SignatureRequest
		if err := tx.Where("id = ?", token).First(&req).Error; err != nil {
			return err
		}
		if req.Expired(time.Now()) {
			return ErrNotFound
		}

		if !containsRole(req.RequiredSigners, role) {
			return fmt.Errorf("%w: role %s is not part of this request", ErrPermissionDenied, role)
		}

		merged := mergeSignatures(req.Signatures.Data(), map[string]string{role: image})
		status := req.Status
		if Complete(req.RequiredSigners, merged) {
			status = model.RequestCompleted
		}

		if err := tx.Model(&model.SignatureRequest{}).Where("id = ?", token).Updates(map[string]any{
			"signatures": datatypes.NewJSONType(merged),
			"status":     status,
		}).Error; err != nil {
			return err
		}

		req.Signatures = datatypes.NewJSONType(merged)
		req.Status = status
		updated = req
		return nil
	})
	if err != nil {
		return nil, classifyStoreError("apply signature", err)
	}

	logger.Info(ctx, "remote signature applied", "token", token, "role", role, "status", updated.Status)
	s.notify(token, &updated)
	return &updated, nil
}

// Subscribe registers a callback invoked on every change to the request's
// stored state, so an admin's open session reflects a remote signer's action
// without manual refresh. The callback receives nil when the request
// disappears or expires. The returned function unsubscribes.
func (s *SignatureRequestStore) Subscribe(token string, onChange func(*model.SignatureRequest)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++

	if s.subs[token] == nil {
		s.subs[token] = make(map[int]func(*model.SignatureRequest))
	}
	s.subs[token][id] = onChange

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs[token], id)
		if len(s.subs[token]) == 0 {
			delete(s.subs, token)
		}
	}
}

func (s *SignatureRequestStore) notify(token string, req *model.SignatureRequest) {
	s.mu.Lock()
	callbacks := make([]func(*model.SignatureRequest), 0, len(s.subs[token]))
	for _, cb := range s.subs[token] {
		callbacks = append(callbacks, cb)
	}
	s.mu.Unlock()

	for _, cb := range callbacks {
		cb(req)
	}
}

// PurgeExpired physically removes expired requests and tells their
// subscribers the record is gone. Expiry alone already makes a request
// unreachable; this keeps the table from accumulating dead rows.
func (s *SignatureRequestStore) PurgeExpired(ctx context.Context) (int64, error) {
	var expired []model.SignatureRequest
	now := time.Now()
	if err := s.db.WithContext(ctx).Where("expires_at < ?", now).Find(&expired).Error; err != nil {
		return 0, classifyStoreError("purge signature requests", err)
	}
	if len(expired) == 0 {
		return 0, nil
	}

	res := s.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&model.SignatureRequest{})
	if res.Error != nil {
		return 0, classifyStoreError("purge signature requests", res.Error)
	}

	for i := range expired {
		s.notify(expired[i].ID, nil)
	}

	logger.Info(ctx, "expired signature requests purged", "count", res.RowsAffected)
	return res.RowsAffected, nil
}

func containsRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func copyStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
