// Package gemini implements the text and image capabilities on the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"cockfight/pkg/fighter"
	"cockfight/pkg/generation"

	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/genai"
)

const (
	DefaultTextModel  = "gemini-2.5-flash"
	DefaultImageModel = "gemini-2.5-flash-image"
)

// Config selects the models. BaseURL is only set by tests.
type Config struct {
	APIKey      string
	TextModel   string
	ImageModel  string
	AspectRatio string
	BaseURL     string
	HTTPClient  *http.Client
}

// Client serves both generation.TextCapability and
// generation.ImageCapability from one genai client.
type Client struct {
	genai       *genai.Client
	textModel   string
	imageModel  string
	aspectRatio string
}

var (
	_ generation.TextCapability  = (*Client)(nil)
	_ generation.ImageCapability = (*Client)(nil)
)

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	gc, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	c := &Client{
		genai:       gc,
		textModel:   cfg.TextModel,
		imageModel:  cfg.ImageModel,
		aspectRatio: cfg.AspectRatio,
	}
	if c.textModel == "" {
		c.textModel = DefaultTextModel
	}
	if c.imageModel == "" {
		c.imageModel = DefaultImageModel
	}
	if c.aspectRatio == "" {
		c.aspectRatio = "16:9"
	}
	return c, nil
}

// GenerateText returns the concatenated text parts of the first candidate.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SafetySettings: safetySettings(),
	}
	resp, err := c.genai.Models.GenerateContent(ctx, c.textModel, genai.Text(prompt), cfg)
	if err != nil {
		return "", classify(err)
	}
	cand, err := firstCandidate(resp)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, p := range cand.Content.Parts {
		if p.Text != "" && !p.Thought {
			sb.WriteString(p.Text)
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("gemini: no text in response")
	}
	return sb.String(), nil
}

// GenerateImage sends the prompt followed by the reference photos and returns
// the first inline image of the response.
func (c *Client) GenerateImage(ctx context.Context, prompt string, refs []fighter.Asset) ([]byte, error) {
	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	for _, ref := range refs {
		if len(ref.Data) == 0 {
			continue
		}
		mime := ref.MIMEType
		if mime == "" {
			mime = "image/jpeg"
		}
		parts = append(parts, genai.NewPartFromBytes(ref.Data, mime))
	}

	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
		ImageConfig:        &genai.ImageConfig{AspectRatio: c.aspectRatio},
		SafetySettings:     safetySettings(),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	resp, err := c.genai.Models.GenerateContent(ctx, c.imageModel, contents, cfg)
	if err != nil {
		return nil, classify(err)
	}
	cand, err := firstCandidate(resp)
	if err != nil {
		return nil, err
	}

	for _, p := range cand.Content.Parts {
		if p.InlineData != nil && len(p.InlineData.Data) > 0 {
			log.Printf("[Gemini] image generated: %s, %d bytes", p.InlineData.MIMEType, len(p.InlineData.Data))
			return p.InlineData.Data, nil
		}
	}
	return nil, errors.New("gemini: no image in response")
}

// firstCandidate maps prompt blocks and safety stops to Refused.
func firstCandidate(resp *genai.GenerateContentResponse) (*genai.Candidate, error) {
	if resp == nil {
		return nil, errors.New("gemini: empty response")
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" && fb.BlockReason != genai.BlockedReasonUnspecified {
		return nil, generation.NewRefused("prompt blocked: " + string(fb.BlockReason))
	}
	if len(resp.Candidates) == 0 {
		return nil, errors.New("gemini: no candidates")
	}
	cand := resp.Candidates[0]
	if refusedFinish(cand.FinishReason) {
		return nil, generation.NewRefused("finish reason " + string(cand.FinishReason))
	}
	if cand.Content == nil {
		return nil, fmt.Errorf("gemini: empty candidate (finish reason %q)", cand.FinishReason)
	}
	return cand, nil
}

func refusedFinish(r genai.FinishReason) bool {
	switch r {
	case genai.FinishReasonSafety,
		genai.FinishReasonBlocklist,
		genai.FinishReasonProhibitedContent,
		genai.FinishReasonSPII,
		genai.FinishReasonRecitation,
		genai.FinishReason("IMAGE_SAFETY"),
		genai.FinishReason("IMAGE_PROHIBITED_CONTENT"):
		return true
	}
	return false
}

// classify turns SDK errors into generation kinds. 408, 429 and 5xx are
// transient; everything else is left for generation.KindOf.
func classify(err error) error {
	if e, ok := err.(*apierror.APIError); ok {
		if transientStatus(e.HTTPCode()) {
			return generation.NewTransient(e.Unwrap())
		}
		err = e.Unwrap()
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) && transientStatus(apiErr.Code) {
		return generation.NewTransient(err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil && transientStatus(apiErrPtr.Code) {
		return generation.NewTransient(err)
	}
	return err
}

func transientStatus(code int) bool {
	return code == http.StatusRequestTimeout || code == http.StatusTooManyRequests || code >= 500
}

// The event is a roast; the default thresholds block most trash talk.
func safetySettings() []*genai.SafetySetting {
	return []*genai.SafetySetting{
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
	}
}
