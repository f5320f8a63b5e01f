package mock

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"image"
	"math"

	"github.com/saturnino-fabrica-de-software/facegate/internal/domain"
	"github.com/saturnino-fabrica-de-software/facegate/internal/provider"
)

// Provider implements provider.FaceEncoder for tests and development.
// Identical pixels always produce identical descriptors; images of a single
// flat colour are treated as containing no face.
type Provider struct {
	dimension int
}

func New() *Provider {
	return &Provider{dimension: provider.DescriptorSize}
}

// WithDimension overrides the descriptor length.
func (p *Provider) WithDimension(n int) *Provider {
	p.dimension = n
	return p
}

func (p *Provider) Encode(ctx context.Context, img image.Image) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	digest, uniform := pixelDigest(img)
	if uniform {
		return nil, domain.ErrNoFaceDetected
	}

	return generateEmbedding(digest, p.dimension), nil
}

// pixelDigest hashes the RGBA values of every pixel and reports whether all
// pixels share the same colour.
func pixelDigest(img image.Image) ([32]byte, bool) {
	h := sha256.New()
	b := img.Bounds()
	uniform := true
	first := img.At(b.Min.X, b.Min.Y)
	fr, fg, fb, fa := first.RGBA()

	var px [16]byte
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			if uniform && (r != fr || g != fg || bl != fb || a != fa) {
				uniform = false
			}
			binary.LittleEndian.PutUint32(px[0:], r)
			binary.LittleEndian.PutUint32(px[4:], g)
			binary.LittleEndian.PutUint32(px[8:], bl)
			binary.LittleEndian.PutUint32(px[12:], a)
			h.Write(px[:])
		}
	}

	var digest [32]byte
	copy(digest[:], h.Sum(nil))
	return digest, uniform
}

// generateEmbedding expands the digest with a SHA-256 chain into a unit-length vector.
func generateEmbedding(seed [32]byte, dimension int) []float64 {
	embedding := make([]float64, dimension)
	block := seed

	for i := 0; i < dimension; i++ {
		idx := i % len(block)
		if idx == 0 && i > 0 {
			block = sha256.Sum256(block[:])
		}
		embedding[i] = (float64(block[idx])/255.0)*2 - 1
	}

	norm := 0.0
	for _, v := range embedding {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return embedding
	}

	for i := range embedding {
		embedding[i] /= norm
	}

	return embedding
}

var _ provider.FaceEncoder = (*Provider)(nil)
