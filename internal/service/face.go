package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"time"

	"github.com/saturnino-fabrica-de-software/facegate/internal/domain"
	"github.com/saturnino-fabrica-de-software/facegate/internal/imagecodec"
	"github.com/saturnino-fabrica-de-software/facegate/internal/provider"
	"github.com/saturnino-fabrica-de-software/facegate/internal/snapshot"
)

type UserStore interface {
	LoadAll(ctx context.Context) ([]domain.User, error)
	Append(ctx context.Context, user *domain.User) error
}

type Matcher interface {
	FindMatch(ctx context.Context, query []float64) (*domain.Match, error)
}

type SnapshotStore interface {
	Save(ctx context.Context, filename string, data []byte) (string, error)
}

// FaceService runs the registration and verification flows. Every failure is
// returned as a *domain.AppError so the transport can map it once.
type FaceService struct {
	users     UserStore
	matcher   Matcher
	encoder   provider.FaceEncoder
	snapshots SnapshotStore
	logger    *slog.Logger
	now       func() time.Time
}

func NewFaceService(
	users UserStore,
	matcher Matcher,
	encoder provider.FaceEncoder,
	snapshots SnapshotStore,
	logger *slog.Logger,
) *FaceService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FaceService{
		users:     users,
		matcher:   matcher,
		encoder:   encoder,
		snapshots: snapshots,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the clock used for snapshot file names.
func (s *FaceService) WithClock(now func() time.Time) *FaceService {
	s.now = now
	return s
}

// Register encodes the face in payload and stores it under name. The snapshot
// is written before the record, so a failed append can leave an orphan image.
func (s *FaceService) Register(ctx context.Context, name, payload string) (*domain.User, error) {
	if strings.TrimSpace(name) == "" || payload == "" {
		return nil, domain.ErrNameAndImageRequired
	}

	img, encoding, err := s.describe(ctx, payload)
	if err != nil {
		return nil, err
	}

	jpeg, err := imagecodec.EncodeJPEG(img)
	if err != nil {
		return nil, domain.ErrProcessing.WithDetail(err.Error()).WithError(err)
	}

	filename := snapshot.FileName(name, s.now())
	imagePath, err := s.snapshots.Save(ctx, filename, jpeg)
	if err != nil {
		return nil, domain.ErrSnapshotSave.WithError(fmt.Errorf("save %s: %w", filename, err))
	}

	user := &domain.User{
		Name:         name,
		FaceEncoding: encoding,
		ImagePath:    imagePath,
	}
	if err := s.users.Append(ctx, user); err != nil {
		s.logger.Warn("snapshot saved without user record",
			"image_path", imagePath,
			"error", err,
		)
		return nil, asAppError(err, domain.ErrStorage)
	}

	s.logger.Info("user registered",
		"user_id", user.ID,
		"name", user.Name,
		"image_path", user.ImagePath,
	)

	return user, nil
}

// Verify identifies the face in payload. An unknown face is reported through
// Verification.Recognized, not as an error.
func (s *FaceService) Verify(ctx context.Context, payload string) (*domain.Verification, error) {
	if payload == "" {
		return nil, domain.ErrImageRequired
	}

	_, encoding, err := s.describe(ctx, payload)
	if err != nil {
		return nil, err
	}

	match, err := s.matcher.FindMatch(ctx, encoding)
	if err != nil {
		return nil, asAppError(err, domain.ErrInternal)
	}

	if match == nil {
		s.logger.Debug("face not recognized")
		return &domain.Verification{Recognized: false}, nil
	}

	s.logger.Info("user verified",
		"user_id", match.User.ID,
		"name", match.User.Name,
		"distance", match.Distance,
	)

	return &domain.Verification{
		Recognized: true,
		User:       &match.User,
		Distance:   match.Distance,
	}, nil
}

// describe decodes the payload and computes the descriptor of its first face.
func (s *FaceService) describe(ctx context.Context, payload string) (image.Image, []float64, error) {
	img, err := imagecodec.Decode(payload)
	if err != nil {
		return nil, nil, domain.ErrProcessing.WithDetail(err.Error()).WithError(err)
	}

	encoding, err := s.encoder.Encode(ctx, img)
	if err != nil {
		if errors.Is(err, domain.ErrNoFaceDetected) {
			return nil, nil, asAppError(err, domain.ErrNoFaceDetected)
		}
		return nil, nil, domain.ErrProcessing.WithError(err)
	}

	return img, encoding, nil
}

// asAppError keeps an AppError already present in err's chain, otherwise
// wraps err in fallback.
func asAppError(err error, fallback *domain.AppError) *domain.AppError {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return fallback.WithError(err)
}
