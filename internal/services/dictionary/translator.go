package dictionary

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Translator is the fallback used when the dictionary has no entry
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// GoogleTranslator queries the public translate_a endpoint
type GoogleTranslator struct {
	client *Client
}

// NewGoogleTranslator creates a translator sharing client's limiter
func NewGoogleTranslator(client *Client) *GoogleTranslator {
	return &GoogleTranslator{client: client}
}

// Translate returns text translated from the source to the target language
func (g *GoogleTranslator) Translate(ctx context.Context, text string) (string, error) {
	cfg := g.client.config
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", cfg.SourceLang)
	params.Set("tl", cfg.TargetLang)
	params.Set("dt", "t")
	params.Set("q", text)

	body, err := g.client.getWithRetry(ctx, cfg.TranslateURL+"/translate_a/single?"+params.Encode())
	if err != nil {
		return "", fmt.Errorf("translate %q: %w", text, err)
	}
	return parseTranslation(body)
}

// parseTranslation joins the translated chunks of a translate_a response:
// [[["house","Haus",null,null,10], ...], null, "de", ...]
func parseTranslation(body []byte) (string, error) {
	var top []json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil || len(top) == 0 {
		return "", fmt.Errorf("%w: translation payload", ErrInvalidResponse)
	}

	var chunks [][]any
	if err := json.Unmarshal(top[0], &chunks); err != nil {
		return "", fmt.Errorf("%w: translation chunks", ErrInvalidResponse)
	}

	var b strings.Builder
	for _, chunk := range chunks {
		if len(chunk) == 0 {
			continue
		}
		if s, ok := chunk[0].(string); ok {
			b.WriteString(s)
		}
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", fmt.Errorf("%w: empty translation", ErrInvalidResponse)
	}
	return out, nil
}
