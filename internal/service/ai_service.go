package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"worksheet_edu_backend/internal/config"
	"worksheet_edu_backend/internal/model"

	openai "github.com/sashabaranov/go-openai"
)

// GenerateRequest is one call to the hosted question-generation function,
// covering a single (form, level, section) slot.
type GenerateRequest struct {
	Topics          []string `json:"topics"`
	Count           int      `json:"count"`
	Difficulties    []string `json:"difficulties"`
	Form            string   `json:"form"`
	Level           string   `json:"level"`
	Seed            int      `json:"seed"`
	Section         string   `json:"section"` // "warmup" or "main"
	IncludeHints    bool     `json:"includeHints"`
	IncludeGeometry bool     `json:"includeGeometry"`
	UseAIImages     bool     `json:"useAiImages"`
}

// GenerateResponse mirrors the edge function payload. An absent or empty
// questions array means "no questions for this slot", not an error.
type GenerateResponse struct {
	Questions []model.GeneratedQuestion `json:"questions"`
}

// QuestionGenerator produces question sets via the external collaborator.
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, req GenerateRequest) ([]model.GeneratedQuestion, error)
}

// ImageResolver turns diagram references into renderable PNG bytes.
type ImageResolver interface {
	GenerateDiagramImage(ctx context.Context, prompt string) ([]byte, error)
	FetchImage(ctx context.Context, url string) ([]byte, error)
}

// AIService is the single client for both hosted AI collaborators: the
// question edge function (plain JSON over HTTP) and the image model.
type AIService struct {
	generator config.GeneratorConfig
	images    config.ImageConfig
	client    *http.Client
	fetcher   *http.Client
	imageAPI  *openai.Client
}

func NewAIService(gen config.GeneratorConfig, img config.ImageConfig) *AIService {
	s := &AIService{
		generator: gen,
		images:    img,
		client:    &http.Client{Timeout: gen.RequestTimeout},
		fetcher:   &http.Client{Timeout: img.FetchTimeout},
	}
	if img.APIKey != "" {
		oc := openai.DefaultConfig(img.APIKey)
		if img.BaseURL != "" {
			oc.BaseURL = img.BaseURL
		}
		s.imageAPI = openai.NewClientWithConfig(oc)
	}
	return s
}

func (s *AIService) GenerateQuestions(ctx context.Context, genReq GenerateRequest) ([]model.GeneratedQuestion, error) {
	jsonData, err := json.Marshal(genReq)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.generator.BaseURL+"/generate-questions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.generator.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("generator error (status %d): %s", resp.StatusCode, string(body))
	}

	var result GenerateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}

	return result.Questions, nil
}

// GenerateDiagramImage asks the image model for a PNG of the given prompt.
func (s *AIService) GenerateDiagramImage(ctx context.Context, prompt string) ([]byte, error) {
	if s.imageAPI == nil {
		return nil, fmt.Errorf("image generation not configured")
	}

	resp, err := s.imageAPI.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          s.images.Model,
		N:              1,
		Size:           openai.CreateImageSize512x512,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("image model returned no data")
	}
	return base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
}

// FetchImage downloads a remote diagram. The fetch timeout bounds the call so
// a single bad asset cannot hang a whole document.
func (s *AIService) FetchImage(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.images.FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.fetcher.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image fetch error (status %d)", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// DecodeDataURI extracts raw bytes from a base64 data URI.
func DecodeDataURI(uri string) ([]byte, error) {
	idx := strings.Index(uri, "base64,")
	if idx < 0 {
		return nil, fmt.Errorf("unsupported data URI")
	}
	return base64.StdEncoding.DecodeString(uri[idx+len("base64,"):])
}
