// Package qris talks to the dynamic QRIS generator and the image CDN
package qris

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/amirhossein-jamali/payment-gateway/internal/domain/port/gateway"
)

const maxResponseBytes = 4 << 20

// Generator converts a static QRIS payload into a dynamic one for an amount
type Generator struct {
	apiURL string
	client *http.Client
}

var _ gateway.QRGenerator = (*Generator)(nil)

// NewGenerator creates a generator client
func NewGenerator(apiURL string, client *http.Client) *Generator {
	if client == nil {
		client = &http.Client{}
	}
	return &Generator{apiURL: apiURL, client: client}
}

type generateRequest struct {
	Amount     int64  `json:"amount"`
	QRISStatis string `json:"qris_statis"`
}

type generateResponse struct {
	QRISBase64 string `json:"qris_base64"`
}

// GenerateQR implements gateway.QRGenerator
func (g *Generator) GenerateQR(ctx context.Context, staticPayload string, amount int64) (string, error) {
	if staticPayload == "" {
		return "", errors.New("static qris payload is empty")
	}

	payload, err := json.Marshal(generateRequest{Amount: amount, QRISStatis: staticPayload})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var resp generateResponse
	if err := doJSON(g.client, req, &resp); err != nil {
		return "", err
	}
	if resp.QRISBase64 == "" {
		return "", errors.New("generator response has no qris_base64")
	}
	return resp.QRISBase64, nil
}

// Uploader publishes images to the CDN with a multipart upload
type Uploader struct {
	uploadURL string
	client    *http.Client
}

var _ gateway.ImageUploader = (*Uploader)(nil)

// NewUploader creates a CDN client
func NewUploader(uploadURL string, client *http.Client) *Uploader {
	if client == nil {
		client = &http.Client{}
	}
	return &Uploader{uploadURL: uploadURL, client: client}
}

type uploadResponse struct {
	URL string `json:"url"`
}

// UploadImage implements gateway.ImageUploader
func (u *Uploader) UploadImage(ctx context.Context, fileName string, data []byte) (string, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", fileName)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := form.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.uploadURL, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	var resp uploadResponse
	if err := doJSON(u.client, req, &resp); err != nil {
		return "", err
	}
	if resp.URL == "" {
		return "", errors.New("cdn response has no url")
	}
	return resp.URL, nil
}

func doJSON(client *http.Client, req *http.Request, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
