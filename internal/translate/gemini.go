package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/vaibh/v2srt/internal/subtitle"
)

// DefaultModel is used when no translation model is configured.
const DefaultModel = "gemini-2.5-flash-preview-05-20"

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// Gemini calls the generateContent endpoint of a Gemini-compatible API.
type Gemini struct {
	model          string
	apiKey         string
	baseURL        string
	targetLanguage string
	mode           Mode
	client         *http.Client
}

// NewGemini builds a translator for the given model and credential. baseURL
// may be empty to use the hosted endpoint; timeout zero means no bound on
// the call.
func NewGemini(model, apiKey, baseURL, targetLanguage string, mode Mode, timeout time.Duration) *Gemini {
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if !mode.Valid() {
		mode = ModeReplace
	}
	return &Gemini{
		model:          model,
		apiKey:         apiKey,
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		targetLanguage: targetLanguage,
		mode:           mode,
		client:         &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// TranslateBatch sends one prompt covering the whole batch and applies the
// reply in place. A transport or API error is returned as-is and aborts the
// run; a reply that only partially parses is not an error.
func (g *Gemini) TranslateBatch(ctx context.Context, entries map[int]*subtitle.Entry) error {
	prompt := BuildPrompt(entries, g.targetLanguage)

	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return fmt.Errorf("failed to encode translation request: %v", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build translation request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("translation call failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read translation response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("translation endpoint returned status %d: %s", resp.StatusCode, body)
	}

	var decoded generateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return fmt.Errorf("failed to decode translation response: %v", err)
	}
	if len(decoded.Candidates) == 0 {
		return fmt.Errorf("translation endpoint returned no candidates")
	}

	var reply strings.Builder
	for _, p := range decoded.Candidates[0].Content.Parts {
		reply.WriteString(p.Text)
	}

	applied := ApplyReply(entries, reply.String(), g.mode)
	log.Printf("translated %d/%d cues in batch", applied, len(entries))
	return nil
}
