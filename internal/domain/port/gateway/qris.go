package gateway

import "context"

// QRGenerator turns a static QRIS payload into a dynamic QRIS image for one amount
type QRGenerator interface {
	// GenerateQR returns the PNG image encoded as base64
	GenerateQR(ctx context.Context, staticPayload string, amount int64) (string, error)
}

// ImageUploader publishes an image and returns its public URL
type ImageUploader interface {
	UploadImage(ctx context.Context, fileName string, data []byte) (string, error)
}
