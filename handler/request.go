package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/interacaodigitall-rgb/juridico/config"
	"github.com/interacaodigitall-rgb/juridico/middleware"
	"github.com/interacaodigitall-rgb/juridico/model"
	"github.com/interacaodigitall-rgb/juridico/pkg/logger"
	"github.com/interacaodigitall-rgb/juridico/service"
)

type RequestHandler struct {
	requests *service.SignatureRequestStore
	signing  *config.SigningConfig
}

func NewRequestHandler(requests *service.SignatureRequestStore, signing *config.SigningConfig) *RequestHandler {
	return &RequestHandler{requests: requests, signing: signing}
}

type CreateSignatureRequest struct {
	ContractType    string            `json:"contract_type" binding:"required"`
	FieldData       map[string]string `json:"field_data"`
	RequiredSigners []string          `json:"required_signers" binding:"required"`
}

// Create issues a time-boxed remote signing link
func (h *RequestHandler) Create(c *gin.Context) {
	var req CreateSignatureRequest
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
	for _, role := range req.RequiredSigners {
		found := false
		for _, known := range tpl.RequiredSigners {
			if known == role {
				found = true
				break
			}
		}
		if !found {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown signer role: " + role})
			return
		}
	}

	token, err := h.requests.Create(c.Request.Context(), middleware.GetUID(c),
		contractType, req.FieldData, req.RequiredSigners)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	logger.Info(c.Request.Context(), "signature request created",
		"request_id", token, "contract_type", req.ContractType)

	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"share_url": h.signing.ShareBaseURL + "?token=" + token,
	})
}

// Get resolves a signing link for the anonymous signer page. Expired or
// unknown tokens look identical from the outside.
func (h *RequestHandler) Get(c *gin.Context) {
	req, err := h.requests.Get(c.Request.Context(), c.Param("token"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Signature request not found"})
			return
		}
		respondStoreError(c, err)
		return
	}

	labels := make(map[string]string, len(req.RequiredSigners))
	for _, role := range req.RequiredSigners {
		labels[role] = model.RoleLabel(role)
	}

	c.JSON(http.StatusOK, gin.H{
		"token":            req.ID,
		"contract_type":    req.ContractType,
		"field_data":       req.FieldData.Data(),
		"required_signers": req.RequiredSigners,
		"signer_labels":    labels,
		"signatures":       signedRoles(req),
		"status":           req.Status,
		"expires_at":       req.ExpiresAt,
	})
}

// signedRoles exposes which roles already signed without shipping the
// image payloads to an anonymous client.
func signedRoles(req *model.SignatureRequest) []string {
	sigs := req.Signatures.Data()
	roles := make([]string, 0, len(sigs))
	for _, role := range req.RequiredSigners {
		if sigs[role] != "" {
			roles = append(roles, role)
		}
	}
	return roles
}

type RemoteSignRequest struct {
	Role    string           `json:"role" binding:"required"`
	Image   string           `json:"image"`
	Strokes []service.Stroke `json:"strokes"`
	Width   int              `json:"width"`
	Height  int              `json:"height"`
	DPR     float64          `json:"dpr"`
}

// Sign applies an anonymous signature to a signing link
func (h *RequestHandler) Sign(c *gin.Context) {
	var req RemoteSignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	image, err := resolveImage(&SignRequest{
		Role: req.Role, Image: req.Image,
		Strokes: req.Strokes, Width: req.Width, Height: req.Height, DPR: req.DPR,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature payload: " + err.Error()})
		return
	}

	updated, err := h.requests.ApplySignature(c.Request.Context(), c.Param("token"), req.Role, image)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Signature request not found"})
		case errors.Is(err, service.ErrPermissionDenied):
			c.JSON(http.StatusForbidden, gin.H{"error": "Role is not part of this request"})
		default:
			respondStoreError(c, err)
		}
		return
	}

	logger.Info(c.Request.Context(), "remote signature applied",
		"request_id", updated.ID, "role", req.Role, "status", updated.Status)

	c.JSON(http.StatusOK, gin.H{
		"token":      updated.ID,
		"status":     updated.Status,
		"signatures": signedRoles(updated),
	})
}

// Events streams request changes as server-sent events so the dashboard
// can watch a signing link fill in live. A null payload means the request
// is gone.
func (h *RequestHandler) Events(c *gin.Context) {
	token := c.Param("token")

	initial, err := h.requests.Get(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Signature request not found"})
			return
		}
		respondStoreError(c, err)
		return
	}

	changes := make(chan *model.SignatureRequest, 8)
	unsubscribe := h.requests.Subscribe(token, func(req *model.SignatureRequest) {
		select {
		case changes <- req:
		default:
		}
	})
	defer unsubscribe()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	// Replay current state so a late subscriber is never behind
	changes <- initial

	c.Stream(func(w io.Writer) bool {
		select {
		case req, ok := <-changes:
			if !ok {
				return false
			}
			if req == nil {
				c.SSEvent("message", nil)
				return false
			}
			c.SSEvent("message", gin.H{
				"token":      req.ID,
				"status":     req.Status,
				"signatures": signedRoles(req),
			})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
