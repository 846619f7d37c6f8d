package service

import (
	"context"
	"fmt"
	"mime/multipart"

	"go.uber.org/zap"

	"tweetledger/internal/model"
	"tweetledger/internal/repository"
)

// IconUploader stores a normalized icon image and returns its public URL.
// MediaService implements it.
type IconUploader interface {
	UploadIcon(ctx context.Context, account string, file multipart.File, header *multipart.FileHeader) (*model.UploadResult, error)
}

type ProfileService struct {
	profileRepo repository.ProfileRepository
	schema      *SchemaService
	uploader    IconUploader // nil when media storage is not configured
	logger      *zap.Logger
}

func NewProfileService(
	profileRepo repository.ProfileRepository,
	schema *SchemaService,
	uploader IconUploader,
	logger *zap.Logger,
) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		schema:      schema,
		uploader:    uploader,
		logger:      logger.Named("profiles"),
	}
}

// ChangeIconURL overwrites the principal's icon. Any string is accepted and
// the empty string resets it.
func (s *ProfileService) ChangeIconURL(ctx context.Context, p model.Principal, url string) error {
	if p.Account == "" {
		return model.ErrInvalidAccount
	}
	if err := s.profileRepo.SetIconURL(ctx, p.Account, url, s.schema.stampAt(ctx, model.SchemaV4)); err != nil {
		return fmt.Errorf("change icon url: %w", err)
	}
	s.logger.Info("icon changed", zap.String("account", p.Account))
	return nil
}

// GetUserIcon returns "" for accounts that never set an icon.
func (s *ProfileService) GetUserIcon(ctx context.Context, account string) (string, error) {
	profile, err := s.profileRepo.Get(ctx, account)
	if err != nil {
		return "", fmt.Errorf("get icon: %w", err)
	}
	return profile.IconURL, nil
}

// GetProfile is available from V4.
func (s *ProfileService) GetProfile(ctx context.Context, account string) (*model.Profile, error) {
	if err := s.schema.Require(ctx, model.SchemaV4); err != nil {
		return nil, err
	}
	profile, err := s.profileRepo.Get(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return profile, nil
}

// UploadIcon stores the image and points the principal's icon at it.
func (s *ProfileService) UploadIcon(ctx context.Context, p model.Principal, file multipart.File, header *multipart.FileHeader) (*model.UploadResult, error) {
	if s.uploader == nil {
		return nil, model.ErrMediaDisabled
	}
	if p.Account == "" {
		return nil, model.ErrInvalidAccount
	}

	result, err := s.uploader.UploadIcon(ctx, p.Account, file, header)
	if err != nil {
		return nil, err
	}
	if err := s.ChangeIconURL(ctx, p, result.URL); err != nil {
		return nil, err
	}
	return result, nil
}
