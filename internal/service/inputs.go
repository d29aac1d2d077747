package service

import (
	"strings"

	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/validation"
)

// RegisterInput carries a registration request. Paths point at staged uploads.
type RegisterInput struct {
	Username   string
	Email      string
	FullName   string
	Password   string
	AvatarPath string
	CoverPath  string
}

func (in *RegisterInput) normalize() {
	in.Username = models.NormalizeHandle(in.Username)
	in.Email = models.NormalizeHandle(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
}

// Validate checks every field and reports all failures together.
func (in RegisterInput) Validate() error {
	var errs validation.Errors
	errs.Check("username", validation.Username(in.Username))
	errs.Check("email", validation.Email(in.Email))
	errs.Check("fullName", validation.FullName(in.FullName))
	errs.Check("password", validation.Password(in.Password))
	errs.Check("avatar", validation.Required("avatar file", in.AvatarPath))
	return errs.Err("invalid registration")
}

// LoginInput identifies the account by username or email.
type LoginInput struct {
	Username string
	Email    string
	Password string
}

// Validate requires one identifier and a password.
func (in LoginInput) Validate() error {
	var errs validation.Errors
	if strings.TrimSpace(in.Username) == "" && strings.TrimSpace(in.Email) == "" {
		errs.Check("username", validation.Required("username or email", ""))
	}
	errs.Check("password", validation.Required("password", in.Password))
	return errs.Err("invalid login")
}

// ChangePasswordInput replaces the password after verifying the current one.
type ChangePasswordInput struct {
	OldPassword string
	NewPassword string
}

// Validate checks the new password and that it differs from the old one.
func (in ChangePasswordInput) Validate() error {
	var errs validation.Errors
	errs.Check("oldPassword", validation.Required("old password", in.OldPassword))
	errs.Check("newPassword", validation.Password(in.NewPassword))
	if in.OldPassword != "" && in.OldPassword == in.NewPassword {
		errs.Check("newPassword", errNewPasswordSame)
	}
	return errs.Err("invalid password change")
}

// UpdateProfileInput changes account details. Nil fields are left untouched.
type UpdateProfileInput struct {
	Username *string
	Email    *string
	FullName *string
}

func (in *UpdateProfileInput) normalize() {
	if in.Username != nil {
		v := models.NormalizeHandle(*in.Username)
		in.Username = &v
	}
	if in.Email != nil {
		v := models.NormalizeHandle(*in.Email)
		in.Email = &v
	}
	if in.FullName != nil {
		v := strings.TrimSpace(*in.FullName)
		in.FullName = &v
	}
}

// Validate checks the provided fields and requires at least one.
func (in UpdateProfileInput) Validate() error {
	var errs validation.Errors
	if in.Username == nil && in.Email == nil && in.FullName == nil {
		errs.Check("fullName", errNothingToUpdate)
	}
	if in.Username != nil {
		errs.Check("username", validation.Username(*in.Username))
	}
	if in.Email != nil {
		errs.Check("email", validation.Email(*in.Email))
	}
	if in.FullName != nil {
		errs.Check("fullName", validation.FullName(*in.FullName))
	}
	return errs.Err("invalid profile update")
}

// PublishVideoInput describes a new upload. Paths point at staged files.
type PublishVideoInput struct {
	Title         string
	Description   string
	VideoPath     string
	ThumbnailPath string
}

// Validate checks the metadata and that both files were supplied.
func (in PublishVideoInput) Validate() error {
	var errs validation.Errors
	errs.Check("title", validation.Title(in.Title))
	errs.Check("description", validation.Description(in.Description))
	errs.Check("videoFile", validation.Required("video file", in.VideoPath))
	errs.Check("thumbnail", validation.Required("thumbnail", in.ThumbnailPath))
	return errs.Err("invalid video")
}

// UpdateVideoInput edits video details. Nil fields are left untouched.
type UpdateVideoInput struct {
	Title       *string
	Description *string
}

// Validate checks the provided fields and requires at least one.
func (in UpdateVideoInput) Validate() error {
	var errs validation.Errors
	if in.Title == nil && in.Description == nil {
		errs.Check("title", errNothingToUpdate)
	}
	if in.Title != nil {
		errs.Check("title", validation.Title(*in.Title))
	}
	if in.Description != nil {
		errs.Check("description", validation.Description(*in.Description))
	}
	return errs.Err("invalid video update")
}

// PlaylistInput names a playlist.
type PlaylistInput struct {
	Name        string
	Description string
}

// Validate checks the name and description.
func (in PlaylistInput) Validate() error {
	var errs validation.Errors
	errs.Check("name", validation.Title(in.Name))
	errs.Check("description", validation.Description(in.Description))
	return errs.Err("invalid playlist")
}
