package filter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/leakhound/leakhound/internal/redact"
	"github.com/leakhound/leakhound/internal/types"
)

const reviewPrompt = `You are a security expert reviewing potential secret/credential findings.
For each numbered finding, decide whether it is a real secret or a false positive.

Respond with a JSON array of objects, each with:
- "index": the finding index (0-based)
- "is_secret": true if this is a real secret, false if it is a false positive
- "confidence": your confidence from 0.0 to 1.0
- "reason": brief explanation

Common false positives:
- Example/placeholder values in documentation
- Test fixtures with fake credentials
- Environment variable references, not actual values
- Hash values that are not secrets
- Public keys (only private keys are secrets)`

// batchSize bounds prompt length and keeps external latency per call sane.
const batchSize = 50

// Gemini reviews findings with a Gemini model. Only redacted previews are sent
// upstream; the raw secret never leaves the process.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini builds a Gemini-backed reviewer.
func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}
	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.1)
	model.ResponseMIMEType = "application/json"
	return &Gemini{client: client, model: model}, nil
}

// Close releases the underlying client.
func (g *Gemini) Close() error { return g.client.Close() }

func (g *Gemini) Review(ctx context.Context, findings []types.Finding) ([]Verdict, error) {
	var out []Verdict
	for start := 0; start < len(findings); start += batchSize {
		end := start + batchSize
		if end > len(findings) {
			end = len(findings)
		}
		verdicts, err := g.reviewBatch(ctx, findings[start:end])
		if err != nil {
			return nil, err
		}
		for _, v := range verdicts {
			v.Index += start
			out = append(out, v)
		}
	}
	return out, nil
}

func (g *Gemini) reviewBatch(ctx context.Context, findings []types.Finding) ([]Verdict, error) {
	var b strings.Builder
	b.WriteString(reviewPrompt)
	b.WriteString("\n\nFindings to analyze:\n")
	for i, f := range findings {
		fmt.Fprintf(&b, "%d. Type: %s, File: %s, Line: %d, Preview: %s\n",
			i, f.Category, f.Path, f.Line, redact.Mask(f.Match))
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(b.String()))
	if err != nil {
		return nil, fmt.Errorf("gemini review: %w", err)
	}
	text := responseText(resp)
	var verdicts []Verdict
	if err := json.Unmarshal([]byte(text), &verdicts); err != nil {
		return nil, fmt.Errorf("gemini review: unparseable response: %w", err)
	}
	return verdicts, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
	}
	return b.String()
}
