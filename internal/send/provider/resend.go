package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/RonanBeelen/InvoiceStudio/internal/config"
	"github.com/RonanBeelen/InvoiceStudio/internal/observability/tracing"
	senddomain "github.com/RonanBeelen/InvoiceStudio/internal/send/domain"
)

const (
	resendEndpoint = "https://api.resend.com/emails"
	resendTimeout  = 30 * time.Second

	// Attachments above this size are dropped and the email goes out
	// with just the link.
	maxAttachmentBytes = 10 << 20
)

// Resend delivers email through the Resend HTTP API.
type Resend struct {
	apiKey string
	http   *http.Client
	log    *zap.Logger
}

func NewResend(cfg config.Config, log *zap.Logger) *Resend {
	return &Resend{
		apiKey: cfg.ResendAPIKey,
		http:   tracing.WrapHTTPClient(&http.Client{Timeout: resendTimeout}),
		log:    log.Named("send.resend"),
	}
}

type resendAttachment struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

type resendRequest struct {
	From        string             `json:"from"`
	To          []string           `json:"to"`
	ReplyTo     string             `json:"reply_to,omitempty"`
	Subject     string             `json:"subject"`
	HTML        string             `json:"html"`
	Attachments []resendAttachment `json:"attachments,omitempty"`
}

type resendResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

func (r *Resend) Send(ctx context.Context, msg senddomain.Message) (senddomain.Result, error) {
	if r.apiKey == "" {
		return senddomain.Result{}, senddomain.ErrProviderDisabled
	}

	payload := resendRequest{
		From:    fmt.Sprintf("%s <%s>", msg.FromName, msg.FromAddr),
		To:      []string{msg.To},
		ReplyTo: msg.ReplyTo,
		Subject: msg.Subject,
		HTML:    msg.HTML,
	}
	if msg.PDFURL != "" {
		if content, err := r.fetchAttachment(ctx, msg.PDFURL); err != nil {
			r.log.Warn("could not attach pdf, sending without it",
				zap.String("pdf_url", msg.PDFURL),
				zap.Error(err),
			)
		} else {
			payload.Attachments = append(payload.Attachments, resendAttachment{
				Filename: msg.PDFName,
				Content:  base64.StdEncoding.EncodeToString(content),
			})
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return senddomain.Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, resendEndpoint, bytes.NewReader(body))
	if err != nil {
		return senddomain.Result{}, err
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return senddomain.Result{}, fmt.Errorf("%w: %v", senddomain.ErrProviderRejected, err)
	}
	defer resp.Body.Close()

	var decoded resendResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return senddomain.Result{}, fmt.Errorf("%w: invalid response", senddomain.ErrProviderRejected)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		r.log.Warn("resend rejected message",
			zap.Int("status", resp.StatusCode),
			zap.String("message", decoded.Message),
		)
		return senddomain.Result{}, fmt.Errorf("%w: %s", senddomain.ErrProviderRejected, decoded.Message)
	}

	return senddomain.Result{MessageID: decoded.ID}, nil
}

func (r *Resend) fetchAttachment(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pdf fetch returned status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxAttachmentBytes))
}
