package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/videotube/backend/internal/apperr"
	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/logging"
	"github.com/videotube/backend/internal/media"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/repositories"
)

var (
	errNothingToUpdate = errors.New("at least one field must be provided")
	errNewPasswordSame = errors.New("new password must differ from the old password")
)

// Sessions issues and rotates the tokens handed to authenticated users.
type Sessions interface {
	Issue(ctx context.Context, userID string) (models.SessionTokens, error)
	Refresh(ctx context.Context, refreshToken string) (string, models.SessionTokens, error)
	Revoke(ctx context.Context, userID string) error
}

// AccountService implements registration, login and profile maintenance.
type AccountService struct {
	Users    repositories.UserRepository
	Sessions Sessions
	Media    media.Store
	Janitor  Discarder
	Now      Clock
	// HashCost is the bcrypt cost; zero means bcrypt.DefaultCost.
	HashCost int
}

// Register creates an account from staged avatar and cover files. The staged
// files are removed on every path; uploaded objects are discarded if the
// account cannot be persisted.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (user models.User, err error) {
	defer media.RemoveStaged(ctx, in.AvatarPath, in.CoverPath)

	ctx, span := logging.StartSpan(ctx, "account.register")
	defer func() { span.End(err) }()

	in.normalize()
	if err := in.Validate(); err != nil {
		return models.User{}, err
	}

	if err := s.ensureAvailable(ctx, in.Username, in.Email, ""); err != nil {
		return models.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost())
	if err != nil {
		return models.User{}, apperr.Upstream("hash password", err)
	}

	avatar, err := s.Media.Store(ctx, in.AvatarPath, media.CategoryImages)
	if err != nil {
		return models.User{}, apperr.Upstream("upload avatar", err)
	}
	uploaded := []string{avatar.StorageID}

	var cover *models.MediaAsset
	if in.CoverPath != "" {
		asset, err := s.Media.Store(ctx, in.CoverPath, media.CategoryImages)
		if err != nil {
			s.discard(ctx, uploaded...)
			return models.User{}, apperr.Upstream("upload cover image", err)
		}
		cover = &asset
		uploaded = append(uploaded, asset.StorageID)
	}

	now := s.Now.now()
	user = models.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		FullName:     in.FullName,
		Email:        in.Email,
		PasswordHash: string(hash),
		Avatar:       avatar,
		CoverImage:   cover,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Users.Create(ctx, user); err != nil {
		s.discard(ctx, uploaded...)
		if errors.Is(err, repositories.ErrConflict) {
			return models.User{}, apperr.Conflict("user with email or username already exists")
		}
		return models.User{}, apperr.Upstream("create user", err)
	}

	logging.FromContext(ctx).Info("user registered", slog.String("user_id", user.ID))
	return user, nil
}

// Login verifies the credentials and issues a fresh session.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (models.User, models.SessionTokens, error) {
	if err := in.Validate(); err != nil {
		return models.User{}, models.SessionTokens{}, err
	}

	var (
		user models.User
		err  error
	)
	if in.Username != "" {
		user, err = s.Users.FindByUsername(ctx, models.NormalizeHandle(in.Username))
	} else {
		user, err = s.Users.FindByEmail(ctx, models.NormalizeHandle(in.Email))
	}
	if err != nil {
		return models.User{}, models.SessionTokens{}, storeError(err, "user does not exist", "find user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		logging.FromContext(ctx).Warn("login password mismatch", slog.String("user_id", user.ID))
		return models.User{}, models.SessionTokens{}, apperr.Unauthorized("invalid user credentials")
	}

	tokens, err := s.Sessions.Issue(ctx, user.ID)
	if err != nil {
		return models.User{}, models.SessionTokens{}, apperr.Upstream("issue session", err)
	}
	return user, tokens, nil
}

// Logout revokes the user's refresh token.
func (s *AccountService) Logout(ctx context.Context, userID string) error {
	if err := s.Sessions.Revoke(ctx, userID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return apperr.Upstream("revoke session", err)
	}
	return nil
}

// Refresh rotates the session identified by refreshToken.
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error) {
	if refreshToken == "" {
		return models.SessionTokens{}, apperr.Unauthorized("refresh token is required")
	}
	_, tokens, err := s.Sessions.Refresh(ctx, refreshToken)
	switch {
	case err == nil:
		return tokens, nil
	case errors.Is(err, auth.ErrRefreshTokenExpired):
		return models.SessionTokens{}, apperr.Unauthorized("refresh token expired")
	case errors.Is(err, auth.ErrSessionNotFound), errors.Is(err, auth.ErrInvalidToken):
		return models.SessionTokens{}, apperr.Unauthorized("invalid refresh token")
	default:
		return models.SessionTokens{}, apperr.Upstream("refresh session", err)
	}
}

// ChangePassword replaces the password once the current one is confirmed.
func (s *AccountService) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return storeError(err, "user not found", "find user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.OldPassword)); err != nil {
		return apperr.Validation("invalid old password", apperr.FieldError{Field: "oldPassword", Message: "does not match"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), s.hashCost())
	if err != nil {
		return apperr.Upstream("hash password", err)
	}
	user.PasswordHash = string(hash)
	user.UpdatedAt = s.Now.now()
	if err := s.Users.Update(ctx, user); err != nil {
		return storeError(err, "user not found", "update user")
	}
	return nil
}

// UpdateProfile changes username, email or full name. At least one value must
// differ from the stored one and new handles must be free.
func (s *AccountService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (models.User, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return models.User{}, err
	}
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return models.User{}, storeError(err, "user not found", "find user")
	}

	changed := false
	var username, email string
	if in.Username != nil && *in.Username != user.Username {
		username = *in.Username
		user.Username = username
		changed = true
	}
	if in.Email != nil && *in.Email != user.Email {
		email = *in.Email
		user.Email = email
		changed = true
	}
	if in.FullName != nil && *in.FullName != user.FullName {
		user.FullName = *in.FullName
		changed = true
	}
	if !changed {
		return models.User{}, apperr.Validation("new details must differ from the current ones")
	}

	if err := s.ensureAvailable(ctx, username, email, user.ID); err != nil {
		return models.User{}, err
	}

	user.UpdatedAt = s.Now.now()
	if err := s.Users.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return models.User{}, apperr.Conflict("username or email is already taken")
		}
		return models.User{}, storeError(err, "user not found", "update user")
	}
	return user, nil
}

// ReplaceAvatar uploads a new avatar and discards the previous object.
func (s *AccountService) ReplaceAvatar(ctx context.Context, userID, stagedPath string) (models.User, error) {
	return s.replaceImage(ctx, userID, stagedPath, "avatar", func(u *models.User, asset models.MediaAsset) string {
		old := u.Avatar.StorageID
		u.Avatar = asset
		return old
	})
}

// ReplaceCover uploads a new cover image and discards the previous object, if any.
func (s *AccountService) ReplaceCover(ctx context.Context, userID, stagedPath string) (models.User, error) {
	return s.replaceImage(ctx, userID, stagedPath, "cover image", func(u *models.User, asset models.MediaAsset) string {
		var old string
		if u.CoverImage != nil {
			old = u.CoverImage.StorageID
		}
		u.CoverImage = &asset
		return old
	})
}

func (s *AccountService) replaceImage(ctx context.Context, userID, stagedPath, label string, swap func(*models.User, models.MediaAsset) string) (user models.User, err error) {
	defer media.RemoveStaged(ctx, stagedPath)

	ctx, span := logging.StartSpan(ctx, "account.replace_image")
	defer func() { span.End(err) }()

	if stagedPath == "" {
		return models.User{}, apperr.Validation(label+" file is missing", apperr.FieldError{Field: label, Message: "file is required"})
	}
	user, err = s.Users.FindByID(ctx, userID)
	if err != nil {
		return models.User{}, storeError(err, "user not found", "find user")
	}

	asset, err := s.Media.Store(ctx, stagedPath, media.CategoryImages)
	if err != nil {
		return models.User{}, apperr.Upstream("upload "+label, err)
	}

	previous := swap(&user, asset)
	user.UpdatedAt = s.Now.now()
	if err := s.Users.Update(ctx, user); err != nil {
		s.discard(ctx, asset.StorageID)
		return models.User{}, storeError(err, "user not found", "update user")
	}

	s.discard(ctx, previous)
	return user, nil
}

// ensureAvailable reports a Conflict when username or email belongs to an
// account other than selfID. Empty values are not checked.
func (s *AccountService) ensureAvailable(ctx context.Context, username, email, selfID string) error {
	if username != "" {
		existing, err := s.Users.FindByUsername(ctx, username)
		if err == nil && existing.ID != selfID {
			return apperr.Conflict("user with email or username already exists")
		}
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return apperr.Upstream("find user", err)
		}
	}
	if email != "" {
		existing, err := s.Users.FindByEmail(ctx, email)
		if err == nil && existing.ID != selfID {
			return apperr.Conflict("user with email or username already exists")
		}
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return apperr.Upstream("find user", err)
		}
	}
	return nil
}

func (s *AccountService) discard(ctx context.Context, storageIDs ...string) {
	discardMedia(ctx, s.Janitor, storageIDs...)
}

func (s *AccountService) hashCost() int {
	if s.HashCost == 0 {
		return bcrypt.DefaultCost
	}
	return s.HashCost
}

func discardMedia(ctx context.Context, janitor Discarder, storageIDs ...string) {
	if janitor == nil {
		return
	}
	if err := janitor.Discard(ctx, storageIDs...); err != nil {
		logging.FromContext(ctx).Error("schedule media cleanup", slog.Any("storage_ids", storageIDs), slog.Any("error", err))
	}
}
