package suggest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/levenlabs/go-lflag"
	"google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/raterudder/chargeadvisor/pkg/common"
	"github.com/raterudder/chargeadvisor/pkg/log"
	"github.com/raterudder/chargeadvisor/pkg/types"
)

const defaultGeminiModel = "gemini-2.0-flash"

// Gemini implements Generator using the Gemini API. The output shape is sent
// as a response schema so the model answers with a JSON object.
type Gemini struct {
	apiKey   string
	model    string
	endpoint string
	timeout  time.Duration

	svc *generativelanguage.Service
}

var _ Generator = (*Gemini)(nil)

// configuredGemini registers the Gemini flags and returns the unconfigured
// instance.
func configuredGemini() *Gemini {
	g := &Gemini{}
	apiKey := lflag.String("gemini-api-key", "", "API key for the Gemini API (defaults to $GEMINI_API_KEY)")
	model := lflag.String("gemini-model", defaultGeminiModel, "Gemini model used for charging suggestions")
	endpoint := lflag.String("gemini-endpoint", "", "Override the Gemini API endpoint (e.g. a proxy)")
	timeout := lflag.Duration("gemini-timeout", 60*time.Second, "HTTP client timeout for Gemini requests. 0 means no timeout.")

	lflag.Do(func() {
		g.apiKey = *apiKey
		if g.apiKey == "" {
			g.apiKey = os.Getenv("GEMINI_API_KEY")
		}
		g.model = *model
		g.endpoint = *endpoint
		g.timeout = *timeout
	})

	return g
}

// Validate ensures the configuration is valid.
func (g *Gemini) Validate() error {
	if g.apiKey == "" {
		return errors.New("gemini-api-key is required")
	}
	if g.model == "" {
		return errors.New("gemini-model is required")
	}
	if g.endpoint != "" {
		if _, err := url.Parse(g.endpoint); err != nil {
			return fmt.Errorf("failed to parse gemini endpoint (%s): %w", g.endpoint, err)
		}
	}
	return nil
}

// Init creates the API client. It must be called before Generate.
func (g *Gemini) Init(ctx context.Context) error {
	client := common.HTTPClient(g.timeout, map[string]string{
		"x-goog-api-key": g.apiKey,
	})
	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if g.endpoint != "" {
		opts = append(opts, option.WithEndpoint(g.endpoint))
	}
	svc, err := generativelanguage.NewService(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create gemini client: %w", err)
	}
	g.svc = svc
	return nil
}

func (g *Gemini) modelName() string {
	if strings.HasPrefix(g.model, "models/") {
		return g.model
	}
	return "models/" + g.model
}

// Generate sends the rendered prompt and parses the model's answer.
func (g *Gemini) Generate(ctx context.Context, req types.ScheduleRequest) (types.ScheduleResult, error) {
	if g.svc == nil {
		return types.ScheduleResult{}, errors.New("gemini client not initialized")
	}
	prompt, err := RenderPrompt(req)
	if err != nil {
		return types.ScheduleResult{}, err
	}

	resp, err := g.svc.Models.GenerateContent(g.modelName(), &generativelanguage.GenerateContentRequest{
		Contents: []*generativelanguage.Content{
			{
				Role:  "user",
				Parts: []*generativelanguage.Part{{Text: prompt}},
			},
		},
		GenerationConfig: &generativelanguage.GenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   responseSchema(),
		},
	}).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			log.Ctx(ctx).WarnContext(ctx, "gemini returned an error", slog.Int("code", gerr.Code), slog.String("message", gerr.Message))
		}
		return types.ScheduleResult{}, fmt.Errorf("failed to generate content (model=%s): %w", g.model, err)
	}

	text, err := responseText(resp)
	if err != nil {
		return types.ScheduleResult{}, err
	}
	res, err := ParseResult([]byte(text))
	if err != nil {
		log.Ctx(ctx).WarnContext(ctx, "failed to parse gemini response", slog.String("text", text), slog.Any("error", err))
		return types.ScheduleResult{}, fmt.Errorf("failed to parse gemini response: %w", err)
	}
	return res, nil
}

func responseSchema() *generativelanguage.Schema {
	props := make(map[string]generativelanguage.Schema, len(OutputFields))
	required := make([]string, 0, len(OutputFields))
	for _, f := range OutputFields {
		props[f.Name] = generativelanguage.Schema{
			Type:        "STRING",
			Description: f.Description,
		}
		required = append(required, f.Name)
	}
	return &generativelanguage.Schema{
		Type:       "OBJECT",
		Properties: props,
		Required:   required,
	}
}

func responseText(resp *generativelanguage.GenerateContentResponse) (string, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", errors.New("gemini returned no candidates")
	}
	cand := resp.Candidates[0]
	if cand.Content == nil || len(cand.Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned an empty candidate (finishReason=%s)", cand.FinishReason)
	}
	var b strings.Builder
	for _, p := range cand.Content.Parts {
		if p == nil {
			continue
		}
		b.WriteString(p.Text)
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("gemini returned no text (finishReason=%s)", cand.FinishReason)
	}
	return b.String(), nil
}
