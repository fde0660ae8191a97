// Package openai implements the vision extraction provider against an
// OpenAI-compatible chat completion API.
package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/pathlab-cloud/refscan/internal/domain"
	"github.com/pathlab-cloud/refscan/internal/domain/referral"
	"github.com/pathlab-cloud/refscan/internal/metrics"
)

// extractionPrompt instructs the model to return the extraction JSON. The
// schema must stay in sync with rawExtractionDTO below.
const extractionPrompt = `You are a medical data extraction assistant for Australian pathology referrals.

Analyze the uploaded pathology referral form and extract the following information in JSON format:

{
  "patient": {
    "firstName": "patient's first/given name",
    "lastName": "patient's surname/family name",
    "dateOfBirth": "YYYY-MM-DD format",
    "sex": "M or F or U (unknown)",
    "medicareNumber": "10 digit Medicare number if visible",
    "address": "full address if visible"
  },
  "doctor": {
    "name": "referring doctor's name",
    "providerNumber": "provider number if visible",
    "practice": "practice/clinic name if visible",
    "phone": "contact phone if visible",
    "address": "practice address if visible"
  },
  "tests": [
    "list of requested pathology tests - extract exactly as written"
  ],
  "clinicalNotes": "any clinical notes or indications mentioned",
  "urgent": true/false (whether marked urgent or STAT),
  "collectionDate": "preferred collection date if mentioned",
  "confidence": {
    "patient": 0-1 (confidence in patient data extraction),
    "doctor": 0-1 (confidence in doctor data extraction),
    "tests": 0-1 (confidence in test identification)
  }
}

IMPORTANT:
- If a field is not visible or unclear, use null
- For tests, extract the exact wording from the form
- Common Australian test abbreviations: FBC, UEC, LFT, TFT, HbA1c, CRP, ESR
- Be conservative with confidence scores (0.5-0.7 for handwritten, 0.8-1.0 for printed)
- If the image is not a pathology referral, return {"error": "Not a pathology referral"}

Extract data from this referral form:`

// Extractor is a vision extraction provider using the OpenAI-compatible API.
type Extractor struct {
	client   *openai.Client
	model    string
	provider string
	logger   *zap.Logger
}

// Config holds the vision provider settings.
type Config struct {
	APIKey   string
	BaseURL  string
	Model    string
	Provider string
	// Timeout bounds one extraction round-trip; zero means no client bound.
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewExtractor creates an OpenAI-compatible vision extraction provider.
func NewExtractor(cfg *Config) *Extractor {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Extractor{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    cfg.Model,
		provider: cfg.Provider,
		logger:   cfg.Logger,
	}
}

// Extract implements the scan extractor contract: one chat completion call
// with the image attached, parsed into the raw extraction.
func (e *Extractor) Extract(ctx context.Context, image []byte, mimeType string) (referral.RawExtraction, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))

	req := openai.ChatCompletionRequest{
		Model:     e.model,
		MaxTokens: 2048,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
					{
						Type: openai.ChatMessagePartTypeText,
						Text: extractionPrompt,
					},
				},
			},
		},
	}

	start := time.Now()

	resp, err := e.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.ExtractionRequestsTotal.WithLabelValues(e.provider, e.model, "error").Inc()
		metrics.ExtractionErrorsTotal.WithLabelValues(e.provider, e.model, "api_error").Inc()
		return referral.RawExtraction{}, classifyAPIError(err)
	}

	if len(resp.Choices) == 0 {
		metrics.ExtractionRequestsTotal.WithLabelValues(e.provider, e.model, "error").Inc()
		metrics.ExtractionErrorsTotal.WithLabelValues(e.provider, e.model, "empty_response").Inc()
		return referral.RawExtraction{}, fmt.Errorf("empty completion response: %w", domain.ErrExtractionFailed)
	}

	raw, err := parseExtraction(resp.Choices[0].Message.Content)
	if err != nil {
		metrics.ExtractionRequestsTotal.WithLabelValues(e.provider, e.model, "error").Inc()
		metrics.ExtractionErrorsTotal.WithLabelValues(e.provider, e.model, "bad_json").Inc()
		return referral.RawExtraction{}, err
	}

	metrics.ExtractionRequestsTotal.WithLabelValues(e.provider, e.model, "success").Inc()
	metrics.ExtractionRequestDuration.WithLabelValues(e.provider, e.model).Observe(duration.Seconds())

	e.logger.Debug("extraction complete",
		zap.Int("tests_extracted", len(raw.Tests)),
		zap.Int("image_size_bytes", len(image)),
		zap.Duration("duration", duration),
	)

	return raw, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *Extractor) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// rawExtractionDTO mirrors the JSON schema in extractionPrompt. Pointer
// fields preserve the model's nulls for not-visible fields.
type rawExtractionDTO struct {
	Error   *string `json:"error"`
	Patient struct {
		FirstName      *string `json:"firstName"`
		LastName       *string `json:"lastName"`
		DateOfBirth    *string `json:"dateOfBirth"`
		Sex            *string `json:"sex"`
		MedicareNumber *string `json:"medicareNumber"`
		Address        *string `json:"address"`
	} `json:"patient"`
	Doctor struct {
		Name           *string `json:"name"`
		ProviderNumber *string `json:"providerNumber"`
		Practice       *string `json:"practice"`
		Phone          *string `json:"phone"`
		Address        *string `json:"address"`
	} `json:"doctor"`
	Tests          []string `json:"tests"`
	ClinicalNotes  *string  `json:"clinicalNotes"`
	Urgent         bool     `json:"urgent"`
	CollectionDate *string  `json:"collectionDate"`
	Confidence     struct {
		Patient float64 `json:"patient"`
		Doctor  float64 `json:"doctor"`
		Tests   float64 `json:"tests"`
	} `json:"confidence"`
}

// parseExtraction decodes the model output, stripping a markdown code fence
// when the model wraps the JSON in one.
func parseExtraction(content string) (referral.RawExtraction, error) {
	content = stripCodeFence(content)

	var dto rawExtractionDTO
	if err := json.Unmarshal([]byte(content), &dto); err != nil {
		return referral.RawExtraction{}, fmt.Errorf("parse extraction response: %v: %w", err, domain.ErrExtractionFailed)
	}

	if dto.Error != nil {
		return referral.RawExtraction{}, domain.NewNotReferral(*dto.Error)
	}

	return referral.RawExtraction{
		Patient: referral.RawPatient{
			FirstName:      dto.Patient.FirstName,
			LastName:       dto.Patient.LastName,
			DateOfBirth:    dto.Patient.DateOfBirth,
			Sex:            dto.Patient.Sex,
			MedicareNumber: dto.Patient.MedicareNumber,
			Address:        dto.Patient.Address,
		},
		Doctor: referral.RawDoctor{
			Name:           dto.Doctor.Name,
			ProviderNumber: dto.Doctor.ProviderNumber,
			Practice:       dto.Doctor.Practice,
			Phone:          dto.Doctor.Phone,
			Address:        dto.Doctor.Address,
		},
		Tests:          dto.Tests,
		ClinicalNotes:  dto.ClinicalNotes,
		Urgent:         dto.Urgent,
		CollectionDate: dto.CollectionDate,
		Confidence: referral.ProvenanceConfidence{
			Patient: dto.Confidence.Patient,
			Doctor:  dto.Confidence.Doctor,
			Tests:   dto.Confidence.Tests,
		},
	}, nil
}

// stripCodeFence removes a surrounding ```json ... ``` or ``` ... ``` block.
func stripCodeFence(s string) string {
	if i := strings.Index(s, "```json"); i >= 0 {
		rest := s[i+len("```json"):]
		if j := strings.Index(rest, "```"); j >= 0 {
			return strings.TrimSpace(rest[:j])
		}
	}
	if i := strings.Index(s, "```"); i >= 0 {
		rest := s[i+3:]
		if j := strings.Index(rest, "```"); j >= 0 {
			return strings.TrimSpace(rest[:j])
		}
	}
	return strings.TrimSpace(s)
}

// classifyAPIError splits provider failures into retryable and permanent.
// 4xx responses are the caller's problem; everything else may succeed on
// retry and maps to the transient sentinel.
func classifyAPIError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return wrapStatus(reqErr.HTTPStatusCode, string(reqErr.Body))
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return wrapStatus(apiErr.HTTPStatusCode, apiErr.Message)
	}

	return fmt.Errorf("vision request failed: %v: %w", err, domain.ErrExtractionTransient)
}

func wrapStatus(status int, detail string) error {
	if status == 429 {
		return fmt.Errorf("vision API error %d: %s: %w", status, detail, domain.ErrExtractionTransient)
	}
	if status >= 400 && status < 500 {
		if status == 413 || strings.Contains(strings.ToLower(detail), "exceed") {
			return fmt.Errorf("vision API error %d: %s: %w", status, detail, domain.ErrInvalidImage)
		}
		return fmt.Errorf("vision API error %d: %s: %w", status, detail, domain.ErrExtractionFailed)
	}
	return fmt.Errorf("vision API error %d: %s: %w", status, detail, domain.ErrExtractionTransient)
}
