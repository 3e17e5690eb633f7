package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/interacaodigitall-rgb/juridico/middleware"
	"github.com/interacaodigitall-rgb/juridico/model"
	"github.com/interacaodigitall-rgb/juridico/pkg/logger"
	"github.com/interacaodigitall-rgb/juridico/service"
	"gorm.io/datatypes"
)

// Archiver is the slice of the artifact archive the contract handlers use
type Archiver interface {
	StoreArtifact(ctx context.Context, ownerID, contractID string, document []byte) (string, error)
	PresignedURL(ctx context.Context, objectName string) (string, error)
	DeleteArtifact(ctx context.Context, objectName string) error
}

type ContractHandler struct {
	store      *service.ContractStore
	requests   *service.SignatureRequestStore
	compositor *service.CompositorService
	archive    Archiver
}

func NewContractHandler(store *service.ContractStore, requests *service.SignatureRequestStore,
	compositor *service.CompositorService, archive Archiver) *ContractHandler {
	return &ContractHandler{
		store:      store,
		requests:   requests,
		compositor: compositor,
		archive:    archive,
	}
}

// respondStoreError maps service errors onto HTTP statuses. Render failures
// and storage failures deliberately land on different codes.
func respondStoreError(c *gin.Context, err error) {
	var setupErr *service.SetupError
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Contract not found"})
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.As(err, &setupErr):
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":       "Storage schema is not provisioned",
			"remediation": setupErr.Remediation,
		})
	case errors.Is(err, service.ErrRenderFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Document rendering failed: " + err.Error()})
	default:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Storage temporarily unavailable"})
	}
}

type CreateContractRequest struct {
	ContractType string            `json:"contract_type" binding:"required"`
	HolderID     string            `json:"holder_id"`
	FieldData    map[string]string `json:"field_data"`
}

// Create creates a contract record from a template snapshot
func (h *ContractHandler) Create(c *gin.Context) {
	var req CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	contractType := model.ContractType(req.ContractType)
	tpl, err := model.TemplateFor(contractType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown contract type: " + req.ContractType})
		return
	}

	if req.FieldData == nil {
		req.FieldData = map[string]string{}
	}
	rec := &model.ContractRecord{
		ContractType: contractType,
		Title:        tpl.Title,
		FieldData:    datatypes.NewJSONType(req.FieldData),
		OwnerID:      middleware.GetUID(c),
		HolderID:     req.HolderID,
	}

	id, err := h.store.Create(c.Request.Context(), rec)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	logger.Info(c.Request.Context(), "contract created",
		"contract_id", id, "contract_type", req.ContractType)

	c.JSON(http.StatusOK, gin.H{
		"id":            id,
		"contract_type": req.ContractType,
		"title":         tpl.Title,
		"status":        model.StatusPendingSignature,
	})
}

// List returns the caller's contracts. Admins see the records they own,
// merged across both physical layouts; drivers see records they hold.
func (h *ContractHandler) List(c *gin.Context) {
	uid := middleware.GetUID(c)

	queryRole := service.QueryOwner
	if middleware.GetRole(c) != "admin" {
		queryRole = service.QueryHolder
	}

	recs, err := h.store.LoadFor(c.Request.Context(), uid, queryRole)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"contracts": recs})
}

// Get returns a single contract record
func (h *ContractHandler) Get(c *gin.Context) {
	rec, err := h.store.Get(c.Request.Context(), c.Param("id"), middleware.GetUID(c))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Delete removes a contract from both layouts along with its archived artifact
func (h *ContractHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	uid := middleware.GetUID(c)

	rec, err := h.store.Get(ctx, id, uid)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	if rec.OwnerID != uid {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the owner can delete a contract"})
		return
	}

	if err := h.store.Delete(ctx, id, uid); err != nil {
		respondStoreError(c, err)
		return
	}
	if rec.ArtifactName != "" {
		if err := h.archive.DeleteArtifact(ctx, rec.ArtifactName); err != nil {
			logger.Warn(ctx, "failed to delete archived artifact",
				"contract_id", id, "object", rec.ArtifactName, "error", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Contract deleted"})
}

// Roles returns which signer roles the caller may currently sign,
// resolved by matching the caller's display name against the field data.
func (h *ContractHandler) Roles(c *gin.Context) {
	rec, err := h.store.Get(c.Request.Context(), c.Param("id"), middleware.GetUID(c))
	if err != nil {
		respondStoreError(c, err)
		return
	}

	tpl, err := model.TemplateFor(rec.ContractType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unknown contract type"})
		return
	}

	roles := service.AssignableRoles(tpl.RequiredSigners, rec.FieldData.Data(),
		rec.Signatures.Data(), middleware.GetDisplayName(c))

	labels := make(map[string]string, len(roles))
	for _, role := range roles {
		labels[role] = model.RoleLabel(role)
	}

	c.JSON(http.StatusOK, gin.H{"roles": roles, "labels": labels})
}

type SignRequest struct {
	Role    string           `json:"role" binding:"required"`
	Image   string           `json:"image"`
	Strokes []service.Stroke `json:"strokes"`
	Width   int              `json:"width"`
	Height  int              `json:"height"`
	DPR     float64          `json:"dpr"`
}

// resolveImage accepts either a ready data URI or raw stroke paths to
// rasterize server side.
func resolveImage(req *SignRequest) (string, error) {
	if req.Image != "" {
		if err := service.ValidateSignaturePayload(req.Image); err != nil {
			return "", err
		}
		return req.Image, nil
	}
	return service.RenderStrokes(req.Width, req.Height, req.DPR, req.Strokes)
}

// Sign applies one signature to a contract record
func (h *ContractHandler) Sign(c *gin.Context) {
	var req SignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")
	uid := middleware.GetUID(c)

	rec, err := h.store.Get(ctx, id, uid)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	tpl, err := model.TemplateFor(rec.ContractType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unknown contract type"})
		return
	}

	// Owners vouch for any role; everyone else only signs roles resolved
	// from their own display name.
	if rec.OwnerID != uid {
		assignable := service.AssignableRoles(tpl.RequiredSigners, rec.FieldData.Data(),
			rec.Signatures.Data(), middleware.GetDisplayName(c))
		if !containsString(assignable, req.Role) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Role is not assignable to you"})
			return
		}
	} else if !containsString(tpl.RequiredSigners, req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown signer role: " + req.Role})
		return
	}

	image, err := resolveImage(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature payload: " + err.Error()})
		return
	}

	merged := make(map[string]string, len(rec.Signatures.Data())+1)
	for k, v := range rec.Signatures.Data() {
		merged[k] = v
	}
	merged[req.Role] = image
	status := service.NextStatus(tpl.RequiredSigners, merged)

	if err := h.store.UpdateSignatures(ctx, id, uid, map[string]string{req.Role: image}, status); err != nil {
		respondStoreError(c, err)
		return
	}

	logger.Info(ctx, "signature applied", "contract_id", id, "role", req.Role, "status", status)

	c.JSON(http.StatusOK, gin.H{"id": id, "role": req.Role, "status": status})
}

type MergeRequestRequest struct {
	Token string `json:"token" binding:"required"`
}

// MergeRequest folds a remote signature request's collected signatures
// into the contract record.
func (h *ContractHandler) MergeRequest(c *gin.Context) {
	var req MergeRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")
	uid := middleware.GetUID(c)

	rec, err := h.store.Get(ctx, id, uid)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	if rec.OwnerID != uid {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the owner can merge a signature request"})
		return
	}

	sigReq, err := h.requests.Get(ctx, req.Token)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Signature request not found or expired"})
			return
		}
		respondStoreError(c, err)
		return
	}
	if sigReq.OwnerID != uid {
		c.JSON(http.StatusForbidden, gin.H{"error": "Signature request belongs to another owner"})
		return
	}

	collected := sigReq.Signatures.Data()
	if len(collected) == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Signature request has no signatures yet"})
		return
	}

	tpl, err := model.TemplateFor(rec.ContractType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unknown contract type"})
		return
	}

	merged := make(map[string]string, len(rec.Signatures.Data())+len(collected))
	for k, v := range rec.Signatures.Data() {
		merged[k] = v
	}
	for k, v := range collected {
		if v != "" {
			merged[k] = v
		}
	}
	status := service.NextStatus(tpl.RequiredSigners, merged)

	if err := h.store.UpdateSignatures(ctx, id, uid, collected, status); err != nil {
		respondStoreError(c, err)
		return
	}

	logger.Info(ctx, "signature request merged",
		"contract_id", id, "request_id", sigReq.ID, "status", status)

	c.JSON(http.StatusOK, gin.H{"id": id, "status": status, "merged_roles": len(collected)})
}

// Finalize renders the completed contract through the compositor and
// archives the resulting document.
func (h *ContractHandler) Finalize(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	uid := middleware.GetUID(c)

	rec, err := h.store.Get(ctx, id, uid)
	if err != nil {
		respondStoreError(c, err)
		return
	}
	if rec.Status != model.StatusCompleted {
		c.JSON(http.StatusConflict, gin.H{"error": "Contract is not fully signed yet"})
		return
	}

	document, err := h.compositor.Render(ctx, rec.ContractType, rec.FieldData.Data(), rec.Signatures.Data())
	if err != nil {
		respondStoreError(c, err)
		return
	}

	objectName, err := h.archive.StoreArtifact(ctx, rec.OwnerID, rec.ID, document)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to archive document: " + err.Error()})
		return
	}
	if err := h.store.SetArtifact(ctx, id, objectName); err != nil {
		respondStoreError(c, err)
		return
	}

	url, err := h.archive.PresignedURL(ctx, objectName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate URL: " + err.Error()})
		return
	}

	logger.Info(ctx, "contract finalized", "contract_id", id, "object", objectName)

	c.JSON(http.StatusOK, gin.H{"id": id, "object": objectName, "url": url})
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
