// Package gemini implements verse identification and tafsir lookup on top of
// the Google Generative Language REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Alhassan777/Quraan-Wird-Bot/internal/config"
	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/entity"
	"github.com/Alhassan777/Quraan-Wird-Bot/internal/domain/service"
	"github.com/Alhassan777/Quraan-Wird-Bot/internal/infrastructure/metrics"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// ErrVerseNotIdentified is returned when the model cannot match the input to
// a Quranic verse with usable confidence.
var ErrVerseNotIdentified = errors.New("verse not identified")

// minConfidence is the cutoff below which an identification is rejected.
const minConfidence = 30.0

type Client struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
	logger     *zap.SugaredLogger
}

// NewClient creates a Gemini-backed tafsir service.
func NewClient(cfg config.GeminiConfig, logger *zap.SugaredLogger) service.TafsirService {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		baseURL:    baseURL,
		logger:     logger,
	}
}

// Request/response shapes for the generateContent endpoint.

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// verseAnswer is the JSON shape the prompt instructs the model to return.
type verseAnswer struct {
	IsQuranVerse    bool    `json:"is_quran_verse"`
	SurahNumber     int     `json:"surah_number"`
	AyahNumber      int     `json:"ayah_number"`
	SurahNameEN     string  `json:"surah_name_english"`
	SurahNameAR     string  `json:"surah_name_arabic"`
	ArabicText      string  `json:"arabic_text"`
	Tafsir          string  `json:"tafsir"`
	MatchConfidence float64 `json:"match_confidence"`
}

func (c *Client) LookupText(ctx context.Context, query string, language string) (*entity.TafsirResult, error) {
	req := generateRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: textPrompt(query, language)}},
		}},
		GenerationConfig: defaultGenerationConfig(),
	}

	result, err := c.generate(ctx, req)
	if err != nil {
		metrics.TafsirLookups.WithLabelValues("text", "error").Inc()
		return nil, err
	}
	metrics.TafsirLookups.WithLabelValues("text", "ok").Inc()
	return result, nil
}

func (c *Client) LookupImage(ctx context.Context, image []byte, mimeType string, language string) (*entity.TafsirResult, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	req := generateRequest{
		Contents: []content{{
			Role: "user",
			Parts: []part{
				{Text: imagePrompt(language)},
				{InlineData: &inlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(image),
				}},
			},
		}},
		GenerationConfig: defaultGenerationConfig(),
	}

	result, err := c.generate(ctx, req)
	if err != nil {
		metrics.TafsirLookups.WithLabelValues("image", "error").Inc()
		return nil, err
	}
	metrics.TafsirLookups.WithLabelValues("image", "ok").Inc()
	return result, nil
}

func (c *Client) generate(ctx context.Context, reqBody generateRequest) (*entity.TafsirResult, error) {
	if c.apiKey == "" {
		return nil, errors.New("gemini api key is not configured")
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return nil, errors.New("gemini returned no candidates")
	}

	text := genResp.Candidates[0].Content.Parts[0].Text
	answer, err := parseVerseAnswer(text)
	if err != nil {
		c.logger.Warnw("unparseable gemini answer", "error", err)
		return nil, err
	}

	if !answer.IsQuranVerse || answer.MatchConfidence < minConfidence {
		return nil, fmt.Errorf("%w: confidence %.0f", ErrVerseNotIdentified, answer.MatchConfidence)
	}

	return &entity.TafsirResult{
		SurahName:   answer.SurahNameEN,
		SurahNumber: answer.SurahNumber,
		AyahNumber:  answer.AyahNumber,
		ArabicText:  answer.ArabicText,
		Tafsir:      answer.Tafsir,
		Confidence:  answer.MatchConfidence,
	}, nil
}

// parseVerseAnswer extracts the JSON object from the model's reply, which may
// be wrapped in prose or a markdown code fence.
func parseVerseAnswer(text string) (*verseAnswer, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, errors.New("no JSON object in model reply")
	}

	var answer verseAnswer
	if err := json.Unmarshal([]byte(text[start:end+1]), &answer); err != nil {
		return nil, fmt.Errorf("failed to parse model reply: %w", err)
	}
	return &answer, nil
}

func defaultGenerationConfig() *generationConfig {
	return &generationConfig{
		Temperature:     0.1,
		TopK:            32,
		TopP:            1,
		MaxOutputTokens: 1024,
	}
}

func textPrompt(query, language string) string {
	return fmt.Sprintf(`Determine if this text is a verse from the Quran: %q

If it is, identify the exact surah and ayah, then provide a concise tafsir
drawing on classical sources (Ibn Kathir, Al-Qurtubi, Al-Tabari, Jalalayn).
Write the tafsir in language code %q.

Return ONLY a JSON object in this exact format:
{
  "is_quran_verse": true/false,
  "surah_number": <number or 0>,
  "ayah_number": <number or 0>,
  "surah_name_english": "<name or empty>",
  "surah_name_arabic": "<name or empty>",
  "arabic_text": "<the full verse in Arabic or empty>",
  "tafsir": "<the tafsir or empty>",
  "match_confidence": <0-100>
}`, query, language)
}

func imagePrompt(language string) string {
	return fmt.Sprintf(`This image shows a page or fragment of the Quran. Extract
the Arabic verse text, identify the exact surah and ayah, then provide a
concise tafsir drawing on classical sources (Ibn Kathir, Al-Qurtubi,
Al-Tabari, Jalalayn). Write the tafsir in language code %q.

Return ONLY a JSON object in this exact format:
{
  "is_quran_verse": true/false,
  "surah_number": <number or 0>,
  "ayah_number": <number or 0>,
  "surah_name_english": "<name or empty>",
  "surah_name_arabic": "<name or empty>",
  "arabic_text": "<the extracted verse in Arabic or empty>",
  "tafsir": "<the tafsir or empty>",
  "match_confidence": <0-100>
}`, language)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
