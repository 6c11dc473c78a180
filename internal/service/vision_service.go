package service

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"bizbooks/pkg/config"

	"github.com/Role1776/gigago"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GigaChat REST API endpoints
// Documentation: https://developers.sber.ru/docs/ru/gigachat/api/main
const (
	gigachatBaseURL  = "https://gigachat.devices.sberbank.ru/api/v1"
	gigachatOAuthURL = "https://ngw.devices.sberbank.ru:9443/api/v2/oauth"
)

// VisionService wraps the GigaChat client: text generation through gigago and
// document-grounded generation through the REST Vision API (file upload +
// chat completion with an attachment).
type VisionService struct {
	client     *gigago.Client
	model      *gigago.GenerativeModel
	config     *config.GigaChatConfig
	logger     *zap.Logger
	httpClient *http.Client
	baseURL    string
	oauthURL   string

	tokenMu     sync.Mutex
	accessToken string // cached access token for direct REST calls
}

func NewVisionService(cfg *config.GigaChatConfig, logger *zap.Logger) (*VisionService, error) {
	if cfg.APIKey == "" {
		return nil, &ConfigurationError{Setting: "GIGACHAT_API_KEY is not set"}
	}

	ctx := context.Background()

	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	model := client.GenerativeModel("GigaChat")
	model.SystemInstruction = extractionSystemInstruction()
	model.Temperature = 0.1

	httpClient := &http.Client{}
	if cfg.InsecureSkipVerify {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	accessToken, err := getAccessToken(ctx, cfg, httpClient, logger, gigachatOAuthURL)
	if err != nil {
		return nil, err
	}

	return &VisionService{
		client:      client,
		model:       model,
		config:      cfg,
		logger:      logger,
		httpClient:  httpClient,
		accessToken: accessToken,
		baseURL:     gigachatBaseURL,
		oauthURL:    gigachatOAuthURL,
	}, nil
}

// extractionSystemInstruction fixes the model's role for every request: a
// bank statement parser that answers in strict JSON only.
func extractionSystemInstruction() string {
	return `You are a bank statement parser for a small-business bookkeeping system. You extract transaction line items from bank statement images and PDFs.

Rules:
- Always answer with STRICT JSON only: no prose, no markdown fences, no comments.
- Never invent transactions that are not in the document.
- Amounts are non-negative numbers; a transaction is either a debit (money out) or a credit (money in), never both.
- Dates are ISO format YYYY-MM-DD.
- When a value cannot be read from the document, use an empty string for text fields and 0 for numeric fields.`
}

// getAccessToken obtains an access token from the GigaChat OAuth endpoint.
// Needed for file uploads and direct REST calls. The API key is expected to
// be Base64-encoded already, per the GigaChat API docs.
func getAccessToken(ctx context.Context, cfg *config.GigaChatConfig, httpClient *http.Client, logger *zap.Logger, oauthURL string) (string, error) {
	formData := url.Values{}
	formData.Set("scope", cfg.Scope)

	req, err := http.NewRequestWithContext(ctx, "POST", oauthURL, strings.NewReader(formData.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create OAuth request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("RqUID", uuid.New().String())
	req.Header.Set("Authorization", "Basic "+cfg.APIKey)

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get access token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		logger.Error("OAuth request failed",
			zap.Int("status", resp.StatusCode),
			zap.String("response", string(bodyBytes)),
		)
		return "", &UpstreamError{Status: resp.StatusCode, Body: string(bodyBytes)}
	}

	var oauthResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&oauthResp); err != nil {
		return "", fmt.Errorf("failed to decode OAuth response: %w", err)
	}
	if oauthResp.AccessToken == "" {
		return "", &UpstreamError{Status: resp.StatusCode, Body: "empty access token in OAuth response"}
	}

	return oauthResp.AccessToken, nil
}

func (s *VisionService) currentToken() string {
	s.tokenMu.Lock()
	defer s.tokenMu.Unlock()
	return s.accessToken
}

// refreshAccessToken replaces the cached token after the upstream reported
// the current one expired.
func (s *VisionService) refreshAccessToken(ctx context.Context) error {
	token, err := getAccessToken(ctx, s.config, s.httpClient, s.logger, s.oauthURL)
	if err != nil {
		return err
	}

	s.tokenMu.Lock()
	s.accessToken = token
	s.tokenMu.Unlock()

	s.logger.Info("GigaChat access token refreshed")
	return nil
}

// doAuthorized sends an authorized REST request. On 401 the cached OAuth
// token is refreshed and the request re-sent once; GigaChat tokens are
// short-lived, so an expired token is expected during normal operation.
// This is credential maintenance, not a retry of a failed generation.
func (s *VisionService) doAuthorized(ctx context.Context, method, url, contentType string, body []byte) (*http.Response, error) {
	send := func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+s.currentToken())

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return nil, &UpstreamError{Status: 0, Body: err.Error()}
		}
		return resp, nil
	}

	resp, err := send()
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		if err := s.refreshAccessToken(ctx); err != nil {
			return nil, err
		}
		return send()
	}

	return resp, nil
}

// Generate runs a plain text completion through the gigago model.
func (s *VisionService) Generate(ctx context.Context, prompt string) (string, error) {
	messages := []gigago.Message{
		{Role: gigago.RoleUser, Content: prompt},
	}

	resp, err := s.model.Generate(ctx, messages)
	if err != nil {
		return "", &UpstreamError{Status: 0, Body: err.Error()}
	}
	if len(resp.Choices) == 0 {
		return "", &UpstreamError{Status: 0, Body: "no choices in model response"}
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// GenerateWithDocument uploads a document and runs a vision chat completion
// with the file attached.
func (s *VisionService) GenerateWithDocument(ctx context.Context, prompt string, data []byte, mimeType, fileName string) (string, error) {
	fileID, err := s.uploadFile(ctx, data, mimeType, fileName)
	if err != nil {
		return "", err
	}
	return s.visionCompletion(ctx, fileID, prompt)
}

// uploadFile pushes document bytes to the GigaChat files endpoint and
// returns the file ID.
// Endpoint: POST /files
func (s *VisionService) uploadFile(ctx context.Context, data []byte, mimeType, fileName string) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	// "general" purpose allows using the file in generation requests
	if err := writer.WriteField("purpose", "general"); err != nil {
		return "", fmt.Errorf("failed to write purpose field: %w", err)
	}

	part, err := writer.CreatePart(map[string][]string{
		"Content-Type":        {mimeType},
		"Content-Disposition": {fmt.Sprintf(`form-data; name="file"; filename="%s"`, fileName)},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("failed to write file data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %w", err)
	}

	resp, err := s.doAuthorized(ctx, "POST", s.baseURL+"/files", writer.FormDataContentType(), body.Bytes())
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", &UpstreamError{Status: resp.StatusCode, Body: string(bodyBytes)}
	}

	var uploadResp struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploadResp); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}

	s.logger.Info("Document uploaded to GigaChat", zap.String("file_id", uploadResp.ID))
	return uploadResp.ID, nil
}

// visionCompletion runs a chat completion with a file attachment.
// Endpoint: POST /chat/completions, attachments format: [["file_id"]]
func (s *VisionService) visionCompletion(ctx context.Context, fileID, prompt string) (string, error) {
	requestBody := map[string]interface{}{
		"model": "GigaChat",
		"messages": []map[string]interface{}{
			{
				"role":        "user",
				"content":     prompt,
				"attachments": [][]string{{fileID}},
			},
		},
		"temperature": 0.1,
		"stream":      false,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := s.doAuthorized(ctx, "POST", s.baseURL+"/chat/completions", "application/json", jsonData)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", &UpstreamError{Status: resp.StatusCode, Body: string(bodyBytes)}
	}

	var visionResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&visionResp); err != nil {
		return "", fmt.Errorf("failed to decode vision response: %w", err)
	}
	if len(visionResp.Choices) == 0 {
		return "", &UpstreamError{Status: resp.StatusCode, Body: "no choices in vision response"}
	}

	text := strings.TrimSpace(visionResp.Choices[0].Message.Content)
	s.logger.Info("Vision completion received", zap.Int("text_length", len(text)))
	return text, nil
}

func (s *VisionService) Close() error {
	if s.client != nil {
		s.client.Close()
	}
	return nil
}
