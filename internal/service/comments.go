package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/videotube/backend/internal/apperr"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/repositories"
	"github.com/videotube/backend/internal/validation"
)

// CommentService implements comment authoring.
type CommentService struct {
	Comments repositories.CommentRepository
	Videos   repositories.VideoRepository
	Now      Clock
}

func validateComment(content string) error {
	var errs validation.Errors
	errs.Check("content", validation.Comment(content))
	return errs.Err("invalid comment")
}

// Add posts a comment on an existing video.
func (s *CommentService) Add(ctx context.Context, actorID, videoID, content string) (models.Comment, error) {
	content = strings.TrimSpace(content)
	if err := validateComment(content); err != nil {
		return models.Comment{}, err
	}
	if _, err := s.Videos.FindByID(ctx, videoID); err != nil {
		return models.Comment{}, storeError(err, "video not found", "find video")
	}

	now := s.Now.now()
	comment := models.Comment{
		ID:        uuid.NewString(),
		VideoID:   videoID,
		CreatedBy: actorID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Comments.Create(ctx, comment); err != nil {
		return models.Comment{}, storeError(err, "video not found", "create comment")
	}
	return comment, nil
}

// RequireVideo reports NotFound when videoID names no video, so listing a
// missing video's comments fails instead of returning an empty page.
func (s *CommentService) RequireVideo(ctx context.Context, videoID string) error {
	if _, err := s.Videos.FindByID(ctx, videoID); err != nil {
		return storeError(err, "video not found", "find video")
	}
	return nil
}

// Update rewrites the comment text. Only the author may edit.
func (s *CommentService) Update(ctx context.Context, actorID, commentID, content string) (models.Comment, error) {
	content = strings.TrimSpace(content)
	if err := validateComment(content); err != nil {
		return models.Comment{}, err
	}
	comment, err := s.authored(ctx, actorID, commentID)
	if err != nil {
		return models.Comment{}, err
	}
	comment.Content = content
	comment.UpdatedAt = s.Now.now()
	if err := s.Comments.Update(ctx, comment); err != nil {
		return models.Comment{}, storeError(err, "comment not found", "update comment")
	}
	return comment, nil
}

// Delete removes the comment and its likes. Only the author may delete.
func (s *CommentService) Delete(ctx context.Context, actorID, commentID string) error {
	if _, err := s.authored(ctx, actorID, commentID); err != nil {
		return err
	}
	if err := s.Comments.Delete(ctx, commentID); err != nil {
		return storeError(err, "comment not found", "delete comment")
	}
	return nil
}

func (s *CommentService) authored(ctx context.Context, actorID, commentID string) (models.Comment, error) {
	comment, err := s.Comments.FindByID(ctx, commentID)
	if err != nil {
		return models.Comment{}, storeError(err, "comment not found", "find comment")
	}
	if comment.CreatedBy != actorID {
		return models.Comment{}, apperr.Forbidden("only the author can modify this comment")
	}
	return comment, nil
}
