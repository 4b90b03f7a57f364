package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/laerciomonteiro/escutasegura/backend/internal/models"
)

const (
	DefaultAPIBaseURL = "https://api.telegram.org"
	defaultTimeout    = 15 * time.Second
	maxResponseBytes  = 1 << 20
	redacted          = "<redacted>"
)

// Channel identifica o bot e o chat de destino.
type Channel struct {
	Token  string
	ChatID string
}

// Configured indica se as duas credenciais estão presentes.
func (c Channel) Configured() bool {
	return c.Token != "" && c.ChatID != ""
}

// DeliveryError é devolvido quando a Bot API rejeita a chamada ou não
// responde. StatusCode é zero em falhas de transporte. O token do bot nunca
// aparece em Description.
type DeliveryError struct {
	Method      string
	StatusCode  int
	Description string
}

func (e *DeliveryError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("telegram %s: %s", e.Method, e.Description)
	}
	return fmt.Sprintf("telegram %s: HTTP %d: %s", e.Method, e.StatusCode, e.Description)
}

// ClientConfig guarda as configurações comuns a todas as chamadas.
type ClientConfig struct {
	BaseURL   string
	ParseMode string
	Timeout   time.Duration
}

// Client fala com a Bot API. Cada método faz exatamente uma requisição HTTP,
// sem novas tentativas.
type Client struct {
	httpClient *http.Client
	logger     *zap.Logger
	baseURL    string
	parseMode  string
}

func NewClient(logger *zap.Logger, cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultAPIBaseURL
	}
	parseMode := cfg.ParseMode
	if parseMode == "" {
		parseMode = ParseModeMarkdown
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named("telegram"),
		baseURL:    base,
		parseMode:  parseMode,
	}
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type inputMediaPhoto struct {
	Type    string `json:"type"`
	Media   string `json:"media"`
	Caption string `json:"caption,omitempty"`
}

// SendText envia uma mensagem formatada, sem preview de links.
func (c *Client) SendText(ctx context.Context, ch Channel, text string) error {
	body, err := json.Marshal(sendMessageRequest{
		ChatID:                ch.ChatID,
		Text:                  text,
		ParseMode:             c.parseMode,
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("marshal sendMessage: %w", err)
	}
	return c.call(ctx, ch, "sendMessage", "application/json", bytes.NewReader(body))
}

// SendPhoto envia uma foto com legenda formatada.
func (c *Client) SendPhoto(ctx context.Context, ch Channel, caption string, photo models.Attachment) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := map[string]string{"chat_id": ch.ChatID, "caption": caption, "parse_mode": c.parseMode}
	if err := writeFields(w, fields); err != nil {
		return err
	}
	if err := writeFile(w, "photo", photo); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close multipart: %w", err)
	}
	return c.call(ctx, ch, "sendPhoto", w.FormDataContentType(), &buf)
}

// SendMediaGroup envia as fotos como um álbum. captions[i] pertence a
// photos[i] e vai como texto simples.
func (c *Client) SendMediaGroup(ctx context.Context, ch Channel, captions []string, photos []models.Attachment) error {
	if len(captions) != len(photos) {
		return fmt.Errorf("sendMediaGroup: %d captions for %d photos", len(captions), len(photos))
	}
	media := make([]inputMediaPhoto, len(photos))
	for i := range photos {
		media[i] = inputMediaPhoto{
			Type:    "photo",
			Media:   fmt.Sprintf("attach://photo%d", i),
			Caption: captions[i],
		}
	}
	mediaJSON, err := json.Marshal(media)
	if err != nil {
		return fmt.Errorf("marshal media: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := writeFields(w, map[string]string{"chat_id": ch.ChatID, "media": string(mediaJSON)}); err != nil {
		return err
	}
	for i, p := range photos {
		if err := writeFile(w, fmt.Sprintf("photo%d", i), p); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close multipart: %w", err)
	}
	return c.call(ctx, ch, "sendMediaGroup", w.FormDataContentType(), &buf)
}

func writeFields(w *multipart.Writer, fields map[string]string) error {
	for _, k := range []string{"chat_id", "caption", "parse_mode", "media"} {
		v, ok := fields[k]
		if !ok || v == "" {
			continue
		}
		if err := w.WriteField(k, v); err != nil {
			return fmt.Errorf("write field %s: %w", k, err)
		}
	}
	return nil
}

func writeFile(w *multipart.Writer, name string, a models.Attachment) error {
	filename := a.Filename
	if filename == "" {
		filename = name
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, name, escapeQuotes(filename)))
	ct := a.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)
	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create part %s: %w", name, err)
	}
	if _, err := part.Write(a.Data); err != nil {
		return fmt.Errorf("write part %s: %w", name, err)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }

// call executa uma única requisição à Bot API.
func (c *Client) call(ctx context.Context, ch Channel, method, contentType string, body io.Reader) error {
	start := time.Now()
	status := "error"
	defer func() {
		callsTotal.WithLabelValues(method, status).Inc()
		callDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	}()

	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, ch.Token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return &DeliveryError{Method: method, Description: redact(err.Error(), ch.Token)}
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		derr := &DeliveryError{Method: method, Description: redact(err.Error(), ch.Token)}
		c.logger.Warn("Requisição ao Telegram falhou", zap.String("method", method), zap.Error(derr))
		return derr
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	var out apiResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	_ = json.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !out.OK {
		desc := out.Description
		if desc == "" {
			desc = strings.TrimSpace(string(raw))
		}
		if desc == "" {
			desc = http.StatusText(resp.StatusCode)
		}
		derr := &DeliveryError{Method: method, StatusCode: resp.StatusCode, Description: redact(desc, ch.Token)}
		c.logger.Warn("API do Telegram rejeitou a requisição",
			zap.String("method", method),
			zap.Int("status", resp.StatusCode),
			zap.String("description", derr.Description),
		)
		return derr
	}

	status = "success"
	return nil
}

func redact(s, token string) string {
	if token == "" {
		return s
	}
	return strings.ReplaceAll(s, token, redacted)
}
