package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/interacaodigitall-rgb/juridico/config"
	"github.com/interacaodigitall-rgb/juridico/model"
)

// CompositorService calls the external document compositor that lays out
// the final artifact from a resolved template and the signature image map.
// Placeholder substitution happens here, before the call; the compositor
// only typesets.
type CompositorService struct {
	config     *config.CompositorConfig
	httpClient *http.Client
}

// ComposeRequest is the payload sent to the compositor
type ComposeRequest struct {
	ContractType string            `json:"contract_type"`
	Title        string            `json:"title"`
	Content      string            `json:"content"`
	Signatures   map[string]string `json:"signatures"`
	SignerLabels map[string]string `json:"signer_labels,omitempty"`
}

func NewCompositorService(cfg *config.CompositorConfig) *CompositorService {
	return &CompositorService{
		config: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// Render resolves the template for the contract type against the field data
// and asks the compositor for the final document bytes. All failures come
// back wrapped in ErrRenderFailed so callers never mistake them for storage
// errors.
func (s *CompositorService) Render(ctx context.Context, contractType model.ContractType, fieldData, signatures map[string]string) ([]byte, error) {
	tpl, err := model.TemplateFor(contractType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	labels := make(map[string]string, len(tpl.RequiredSigners))
	for _, role := range tpl.RequiredSigners {
		labels[role] = model.RoleLabel(role)
	}

	reqBody := ComposeRequest{
		ContractType: string(contractType),
		Title:        tpl.Title,
		Content:      ResolveTemplate(contractType, tpl.Body, fieldData),
		Signatures:   signatures,
		SignerLabels: labels,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode request: %v", ErrRenderFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.APIURL, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.config.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.config.APIToken)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: compositor returned status %d: %s", ErrRenderFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	pdf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read document: %v", ErrRenderFailed, err)
	}
	if len(pdf) == 0 {
		return nil, fmt.Errorf("%w: compositor returned an empty document", ErrRenderFailed)
	}
	return pdf, nil
}

var placeholderPattern = regexp.MustCompile(`\{\{([A-Z0-9_]+)\}\}`)

// ResolveTemplate fills a template body with field data merged over the
// company constants. Modality flags swap clause variants before any
// substitution; unfilled placeholders render as [NAME] so a half-filled
// preview stays readable.
func ResolveTemplate(contractType model.ContractType, body string, fieldData map[string]string) string {
	merged := make(map[string]string, len(model.CompanyData)+len(fieldData))
	for k, v := range model.CompanyData {
		merged[k] = v
	}
	for k, v := range fieldData {
		merged[k] = v
	}

	// Clause modality swaps
	if contractType == model.TypeAluguer && merged["MODALIDADE_50_50"] == "true" {
		body = strings.Replace(body, model.ClausulaRendaFixa, model.ClausulaRenda5050, 1)
	}
	if contractType == model.TypePrestacao {
		clause := model.ClausulaRemuneracaoFixa
		if merged["MODALIDADE_PERCENTAGEM"] == "true" {
			clause = model.ClausulaRemuneracaoPercentagem
		}
		body = strings.Replace(body, "{{CLAUSULA_QUINTA_REMUNERACAO}}", clause, 1)
	}

	return placeholderPattern.ReplaceAllStringFunc(body, func(match string) string {
		key := placeholderPattern.FindStringSubmatch(match)[1]
		if value := merged[key]; value != "" {
			return value
		}
		return "[" + key + "]"
	})
}
