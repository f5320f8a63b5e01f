package deepface

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/saturnino-fabrica-de-software/facegate/internal/domain"
	"github.com/saturnino-fabrica-de-software/facegate/internal/imagecodec"
	"github.com/saturnino-fabrica-de-software/facegate/internal/provider"
)

// noFaceMarker is part of the message DeepFace returns when enforce_detection rejects an image.
const noFaceMarker = "face could not be detected"

// Provider implements provider.FaceEncoder using DeepFace API
type Provider struct {
	client *Client
}

// NewProvider creates a new DeepFace provider
func NewProvider(config Config) *Provider {
	return &Provider{
		client: NewClient(config),
	}
}

// Encode sends the image as a JPEG data URL and returns the embedding of the
// first face DeepFace reports.
func (p *Provider) Encode(ctx context.Context, img image.Image) ([]float64, error) {
	jpegBytes, err := imagecodec.EncodeJPEG(img)
	if err != nil {
		return nil, fmt.Errorf("encode face: %w", err)
	}
	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpegBytes)

	resp, err := p.client.Represent(ctx, dataURL)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.clientError() &&
			strings.Contains(strings.ToLower(statusErr.Body), noFaceMarker) {
			return nil, domain.ErrNoFaceDetected.WithError(err)
		}
		return nil, fmt.Errorf("encode face: %w", err)
	}

	if len(resp.Results) == 0 {
		return nil, domain.ErrNoFaceDetected
	}

	// Use first face found
	result := resp.Results[0]
	if len(result.Embedding) == 0 {
		return nil, fmt.Errorf("encode face: %w: empty embedding", ErrInvalidResponse)
	}

	return result.Embedding, nil
}

var _ provider.FaceEncoder = (*Provider)(nil)
