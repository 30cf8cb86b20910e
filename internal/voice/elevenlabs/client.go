// Package elevenlabs is a thin client for the ElevenLabs voice cloning API.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const (
	DefaultBaseURL = "https://api.elevenlabs.io"
	sampleFilename = "sample.wav"
)

var (
	ErrNoAPIKey        = errors.New("ELEVENLABS_API_KEY not configured")
	ErrInvalidResponse = errors.New("provider returned a non-JSON body")
)

// APIError carries a non-2xx provider answer verbatim.
type APIError struct {
	Status int
	Body   json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("elevenlabs: status %d: %s", e.Status, string(e.Body))
}

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// AddVoice uploads one audio sample and returns the provider JSON.
func (c *Client) AddVoice(ctx context.Context, name string, audio io.Reader) (json.RawMessage, error) {
	if !c.Configured() {
		return nil, ErrNoAPIKey
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	if err := form.WriteField("name", name); err != nil {
		return nil, fmt.Errorf("write name field: %w", err)
	}
	part, err := form.CreateFormFile("files", sampleFilename)
	if err != nil {
		return nil, fmt.Errorf("create file field: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, fmt.Errorf("copy audio: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/voices/add", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w (status %d)", ErrInvalidResponse, resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logrus.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"voice":  name,
		}).Warn("Voice clone rejected by provider")
		return nil, &APIError{Status: resp.StatusCode, Body: body}
	}

	logrus.WithField("voice", name).Info("Voice cloned")
	return body, nil
}

// VoiceID extracts voice_id from an AddVoice answer.
func VoiceID(body []byte) string {
	return gjson.GetBytes(body, "voice_id").String()
}
