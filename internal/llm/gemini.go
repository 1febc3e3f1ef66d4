package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/voicelens/voicelens/internal/prompts"
	"github.com/voicelens/voicelens/internal/types"
)

// FetchToolName is the single tool exposed to the model during generation.
const FetchToolName = "fetch_page_text"

// GeminiConfig bounds the provider adapter's calls.
type GeminiConfig struct {
	// Model is the default model when the request does not name one.
	Model string
	// CallTimeout caps each model round trip.
	CallTimeout time.Duration
	// MaxAttempts bounds retries for transient transport failures.
	MaxAttempts int
	// BaseBackoff is the first retry delay; it doubles per attempt.
	BaseBackoff time.Duration
	// MaxToolTurns caps conversation turns spent on tool invocations.
	MaxToolTurns int
}

// DefaultGeminiConfig returns the standard limits.
func DefaultGeminiConfig() GeminiConfig {
	return GeminiConfig{
		Model:        "gemini-2.5-flash",
		CallTimeout:  60 * time.Second,
		MaxAttempts:  3,
		BaseBackoff:  500 * time.Millisecond,
		MaxToolTurns: 6,
	}
}

// Gemini is the live provider adapter. It wraps the model's tool-calling
// loop: tool invocation requests are delegated to the broker and the results
// fed back into the same conversation turn until the model returns a final
// structured result or the turn budget runs out.
type Gemini struct {
	client *genai.Client
	// newBroker yields a fresh broker per generation, so tool budgets never
	// leak across requests.
	newBroker func() ToolBroker
	cfg       GeminiConfig
}

// NewGemini creates the provider adapter. newBroker may be nil, in which
// case the fetch tool is not offered to the model.
func NewGemini(ctx context.Context, apiKey string, newBroker func() ToolBroker, cfg GeminiConfig) (*Gemini, error) {
	if apiKey == "" {
		return nil, &ProviderError{Adapter: "gemini", Message: "API key is required"}
	}
	if cfg.Model == "" {
		cfg = DefaultGeminiConfig()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, &ProviderError{Adapter: "gemini", Message: "failed to create client", Cause: err}
	}

	return &Gemini{client: client, newBroker: newBroker, cfg: cfg}, nil
}

// Name identifies the adapter.
func (g *Gemini) Name() string { return "gemini" }

// Close releases the underlying client.
func (g *Gemini) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// GenerateVoiceProfile runs the generation prompt through the model with the
// fetch tool attached and parses the final JSON draft.
func (g *Gemini) GenerateVoiceProfile(ctx context.Context, req GenerateRequest) (*Draft, error) {
	samples := nonEmptyTrimmed(req.Samples)
	site := strings.TrimSpace(req.SiteText)
	if site == "" && len(samples) == 0 {
		return nil, &InputError{Message: "no site text and no writing samples to profile"}
	}

	model := g.client.GenerativeModel(g.modelName(req.Model))
	model.SetTemperature(0.1)

	var broker ToolBroker
	if g.newBroker != nil {
		broker = g.newBroker()
		model.Tools = []*genai.Tool{fetchTool()}
	}

	prompt := buildGeneratePrompt(req.BrandName, site, samples)

	session := model.StartChat()
	resp, err := g.sendWithRetry(ctx, session, genai.Text(prompt))
	if err != nil {
		return nil, err
	}

	// Tool-calling loop: answer every function call the model makes, then
	// hand the results back, until it produces a final text response.
	for turn := 0; turn < g.cfg.MaxToolTurns; turn++ {
		calls := functionCalls(resp)
		if len(calls) == 0 {
			return g.parseDraft(resp, req)
		}

		replies := make([]genai.Part, 0, len(calls))
		for _, call := range calls {
			replies = append(replies, answerToolCall(ctx, broker, call))
		}
		resp, err = g.sendWithRetry(ctx, session, replies...)
		if err != nil {
			return nil, err
		}
	}

	return nil, &ProviderError{
		Adapter: "gemini",
		Message: fmt.Sprintf("tool-call turn budget (%d) exhausted without a final result", g.cfg.MaxToolTurns),
	}
}

// EvaluateText runs the evaluation prompt through the model, without tools.
func (g *Gemini) EvaluateText(ctx context.Context, voice Voice, text string) (*Evaluation, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &InputError{Message: "evaluation text is empty"}
	}

	model := g.client.GenerativeModel(g.cfg.Model)
	model.SetTemperature(0.1)
	model.ResponseMIMEType = "application/json"

	prompt := buildEvaluatePrompt(voice, text)

	session := model.StartChat()
	resp, err := g.sendWithRetry(ctx, session, genai.Text(prompt))
	if err != nil {
		return nil, err
	}

	raw, err := responseText(resp)
	if err != nil {
		return nil, &ProviderError{Adapter: "gemini", Message: "empty evaluation response", Cause: err}
	}
	raw = CleanJSONBlock(raw)

	if err := ValidateEvaluationJSON(raw); err != nil {
		return nil, &ProviderError{Adapter: "gemini", Message: "evaluation response failed schema validation", Cause: err}
	}

	var eval Evaluation
	if err := json.Unmarshal([]byte(raw), &eval); err != nil {
		return nil, &ProviderError{Adapter: "gemini", Message: "failed to parse evaluation response", Cause: err}
	}
	if eval.Suggestions == nil {
		eval.Suggestions = []string{}
	}
	return &eval, nil
}

func (g *Gemini) modelName(requested string) string {
	if requested != "" && requested != "stub" {
		return requested
	}
	return g.cfg.Model
}

// answerToolCall validates and executes one model-initiated fetch. Broker
// failures become an error payload the model can read and work around; they
// never abort the generation.
func answerToolCall(ctx context.Context, broker ToolBroker, call genai.FunctionCall) genai.Part {
	if call.Name != FetchToolName || broker == nil {
		return genai.FunctionResponse{
			Name:     call.Name,
			Response: map[string]any{"error": fmt.Sprintf("unknown tool %q", call.Name)},
		}
	}

	urlArg, _ := call.Args["url"].(string)
	text, err := broker.FetchPageText(ctx, urlArg)
	if err != nil {
		return genai.FunctionResponse{
			Name:     call.Name,
			Response: map[string]any{"error": err.Error()},
		}
	}
	return genai.FunctionResponse{
		Name:     call.Name,
		Response: map[string]any{"text": text},
	}
}

// sendWithRetry sends one conversation turn, retrying transient transport
// failures with exponential backoff. Context cancellation is never retried.
func (g *Gemini) sendWithRetry(ctx context.Context, session *genai.ChatSession, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	attempts := g.cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, g.cfg.CallTimeout)
		resp, err := session.SendMessage(callCtx, parts...)
		cancel()
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			break
		}
		if attempt < attempts {
			backoff := g.cfg.BaseBackoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, &ProviderError{Adapter: "gemini", Message: "canceled during retry backoff", Attempts: attempt, Cause: ctx.Err()}
			}
		}
	}

	return nil, &ProviderError{Adapter: "gemini", Message: "model call failed", Attempts: attempts, Cause: lastErr}
}

func (g *Gemini) parseDraft(resp *genai.GenerateContentResponse, req GenerateRequest) (*Draft, error) {
	raw, err := responseText(resp)
	if err != nil {
		return nil, &ProviderError{Adapter: "gemini", Message: "empty generation response", Cause: err}
	}
	raw = CleanJSONBlock(raw)

	if err := ValidateDraftJSON(raw); err != nil {
		return nil, &ProviderError{Adapter: "gemini", Message: "draft response failed schema validation", Cause: err}
	}

	var draft Draft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return nil, &ProviderError{Adapter: "gemini", Message: "failed to parse draft response", Cause: err}
	}

	draft.Source = req.Source
	if !draft.Source.Valid() {
		draft.Source = types.SourceManual
	}
	return &draft, nil
}

func fetchTool() *genai.Tool {
	return &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{{
			Name:        FetchToolName,
			Description: "Fetch a public web page and return its visible text content, sanitized and truncated. Use for pages referenced in the material that would clarify the brand's voice.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"url": {
						Type:        genai.TypeString,
						Description: "Absolute http(s) URL of the page to fetch.",
					},
				},
				Required: []string{"url"},
			},
		}},
	}
}

func functionCalls(resp *genai.GenerateContentResponse) []genai.FunctionCall {
	var calls []genai.FunctionCall
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return calls
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if call, ok := part.(genai.FunctionCall); ok {
			calls = append(calls, call)
		}
	}
	return calls
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}
	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}
	return strings.Join(parts, ""), nil
}

func buildGeneratePrompt(brandName, siteText string, samples []string) string {
	var siteSection string
	if siteText != "" {
		siteSection = prompts.Format(prompts.MustGet("voice.json", "site-section"), map[string]string{
			"SiteText": siteText,
		})
	}

	var samplesSection string
	if len(samples) > 0 {
		var sb strings.Builder
		for i, sample := range samples {
			sb.WriteString(fmt.Sprintf("--- sample %d ---\n%s\n", i+1, sample))
		}
		samplesSection = prompts.Format(prompts.MustGet("voice.json", "samples-section"), map[string]string{
			"Samples": sb.String(),
		})
	}

	return prompts.Format(prompts.MustGet("voice.json", "generate-voice-profile"), map[string]string{
		"BrandName":      brandName,
		"SiteSection":    siteSection,
		"SamplesSection": samplesSection,
	})
}

func buildEvaluatePrompt(voice Voice, text string) string {
	metricsJSON, _ := json.Marshal(voice.Metrics)

	var guide strings.Builder
	for _, rule := range voice.StyleGuide {
		guide.WriteString("- ")
		guide.WriteString(rule)
		guide.WriteString("\n")
	}

	return prompts.Format(prompts.MustGet("voice.json", "evaluate-text"), map[string]string{
		"Metrics":           string(metricsJSON),
		"TargetDemographic": voice.TargetDemographic,
		"StyleGuide":        guide.String(),
		"Text":              text,
	})
}
