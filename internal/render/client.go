package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/RonanBeelen/InvoiceStudio/internal/config"
	"github.com/RonanBeelen/InvoiceStudio/internal/observability/tracing"
)

const requestTimeout = 30 * time.Second

// Client talks to the external node PDF layout service.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

func NewClient(cfg config.Config, log *zap.Logger) Generator {
	return &Client{
		baseURL: strings.TrimRight(cfg.PDFServiceURL, "/"),
		http:    tracing.WrapHTTPClient(&http.Client{Timeout: requestTimeout}),
		log:     log.Named("render.client"),
	}
}

type generateRequest struct {
	Template map[string]any    `json:"template"`
	Inputs   map[string]string `json:"inputs"`
	Filename string            `json:"filename"`
}

type generateResponse struct {
	PdfURL      string `json:"pdf_url"`
	StoragePath string `json:"storage_path"`
	Size        int64  `json:"size"`
	Error       string `json:"error"`
}

func (c *Client) Generate(ctx context.Context, req Request) (Result, error) {
	payload := generateRequest{
		Template: req.TemplateJSON,
		Inputs:   BuildInputData(req),
		Filename: req.Filename,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Result{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.log.Warn("pdf service unreachable", zap.Error(err))
		return Result{}, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Result{}, fmt.Errorf("%w: invalid response", ErrRenderFailed)
	}

	if resp.StatusCode != http.StatusOK || decoded.PdfURL == "" {
		c.log.Warn("pdf render failed",
			zap.Int("status", resp.StatusCode),
			zap.String("error", decoded.Error),
		)
		return Result{}, fmt.Errorf("%w: %s", ErrRenderFailed, decoded.Error)
	}

	return Result{
		PdfURL:      decoded.PdfURL,
		StoragePath: decoded.StoragePath,
		SizeBytes:   decoded.Size,
	}, nil
}
