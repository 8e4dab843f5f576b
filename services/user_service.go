package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/google/uuid"

	"github.com/gamearena/gamearena/models"
	"github.com/gamearena/gamearena/storage"
	"github.com/gamearena/gamearena/store"
)

type UserService interface {
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	// ListTournaments returns the user's participation records with the
	// tournament attached, newest tournament first.
	ListTournaments(ctx context.Context, userID string) ([]*models.Participant, error)
	// UpdateAvatar stores the image in the object store, points the profile
	// at it and removes the previous one.
	UpdateAvatar(ctx context.Context, userID string, contentType string, data io.Reader) (*models.User, error)
}

type userService struct {
	ledger   store.Store
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewUserService(ledger store.Store, uploader storage.FileUploader, logger *slog.Logger) UserService {
	return &userService{ledger: ledger, uploader: uploader, logger: logger}
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	var user *models.User
	err := s.ledger.View(ctx, func(tx store.Tx) error {
		u, err := tx.GetUser(userID)
		if err != nil {
			return mapUserErr(err)
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) ListTournaments(ctx context.Context, userID string) ([]*models.Participant, error) {
	var participations []*models.Participant
	err := s.ledger.View(ctx, func(tx store.Tx) error {
		if _, err := tx.GetUser(userID); err != nil {
			return mapUserErr(err)
		}
		participations = tx.ListUserParticipations(userID)
		for _, p := range participations {
			if t, err := tx.GetTournament(p.TournamentID); err == nil {
				p.Tournament = t.WithoutRoomCredentials()
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return participations, nil
}

var avatarContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

func (s *userService) UpdateAvatar(ctx context.Context, userID string, contentType string, data io.Reader) (*models.User, error) {
	if s.uploader == nil {
		return nil, fmt.Errorf("%w: avatar uploads are not configured", ErrValidation)
	}
	ext, ok := avatarContentTypes[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported avatar content type %q", ErrValidation, contentType)
	}

	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := path.Join("avatars", userID, uuid.NewString()+ext)
	result, err := s.uploader.Upload(ctx, key, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("avatar upload failed: %w", err)
	}

	oldKey := user.AvatarKey
	err = s.ledger.Update(ctx, func(tx store.Tx) error {
		u, err := tx.GetUser(userID)
		if err != nil {
			return mapUserErr(err)
		}
		u.Avatar = &result.Location
		u.AvatarKey = &result.Key
		if err := tx.UpdateUser(u); err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	if oldKey != nil && *oldKey != "" && *oldKey != result.Key {
		if err := s.uploader.Delete(ctx, *oldKey); err != nil {
			s.logger.Warn("failed to delete previous avatar",
				slog.String("user_id", userID),
				slog.String("key", *oldKey),
				slog.Any("error", err))
		}
	}
	return user, nil
}
