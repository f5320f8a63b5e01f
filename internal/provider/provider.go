package provider

import (
	"context"
	"image"
)

// FaceEncoder turns a pixel buffer into a face descriptor. It is the only
// contact point with the detection/embedding model.
//
// Implementations return domain.ErrNoFaceDetected when no face is found. When
// several faces are present, the first region reported by the detector is
// encoded; that order is up to the backend and is not a size or quality ranking.
type FaceEncoder interface {
	Encode(ctx context.Context, img image.Image) ([]float64, error)
}

// DescriptorSize is the length produced by dlib-based models (face_recognition, DeepFace "Dlib").
const DescriptorSize = 128
