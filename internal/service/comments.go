// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/dizistars/dizistars/internal/apperror"
	"github.com/dizistars/dizistars/internal/content"
	"github.com/dizistars/dizistars/internal/model"
	"github.com/dizistars/dizistars/internal/store"
)

// MaxCommentLength is the longest comment accepted, in characters.
const MaxCommentLength = 2000

// CommentService stores and moderates comments.
type CommentService struct {
	queries  *store.Queries
	notifier *NotificationService
}

// NewCommentService creates a CommentService. notifier may be nil.
func NewCommentService(db *sql.DB, notifier *NotificationService) *CommentService {
	return &CommentService{queries: store.New(db), notifier: notifier}
}

func commentFromStore(r store.Comment) model.Comment {
	return model.Comment{
		ID:            r.ID,
		UserID:        r.UserID,
		UserName:      r.UserName.String,
		UserAvatarURL: r.UserAvatarUrl.String,
		TargetType:    model.CommentTarget(r.TargetType),
		TargetID:      r.TargetID,
		Content:       r.Content,
		Status:        model.CommentStatus(r.Status),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// checkTarget verifies that ref names an existing star or a published article.
func (s *CommentService) checkTarget(ctx context.Context, ref model.CommentRef) error {
	switch ref.Type {
	case model.CommentTargetStar:
		if _, err := s.queries.GetStarByID(ctx, ref.ID); err != nil {
			return notFound(err, "star", ref.ID)
		}
	case model.CommentTargetNews:
		n, err := s.queries.GetNewsByID(ctx, ref.ID)
		if err != nil {
			return notFound(err, "news", ref.ID)
		}
		if n.Status != string(model.NewsStatusPublished) {
			return apperror.NotFound("news", ref.ID)
		}
	default:
		return apperror.ValidationFailed("target_type", "Comments can only be posted on stars and news.")
	}
	return nil
}

// AddComment posts a comment by author on the target. Comments by editors
// and admins are approved at once; others wait for moderation.
func (s *CommentService) AddComment(ctx context.Context, author *model.User, ref model.CommentRef, text string) (*model.Comment, error) {
	if author == nil {
		return nil, apperror.Unauthorized("Sign in to comment.")
	}
	text = content.CleanComment(text)
	if text == "" {
		return nil, apperror.ValidationFailed("content", "Comment cannot be empty.")
	}
	if utf8.RuneCountInString(text) > MaxCommentLength {
		return nil, apperror.ValidationFailed("content", fmt.Sprintf("Comment must be at most %d characters.", MaxCommentLength))
	}
	if err := s.checkTarget(ctx, ref); err != nil {
		return nil, err
	}

	status := model.CommentStatusPending
	if author.CanModerate() {
		status = model.CommentStatusApproved
	}
	now := time.Now().UTC()
	row, err := s.queries.CreateComment(ctx, store.CreateCommentParams{
		UserID:     author.ID,
		TargetType: string(ref.Type),
		TargetID:   ref.ID,
		Content:    text,
		Status:     string(status),
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}
	c := commentFromStore(row)
	return &c, nil
}

// GetComment returns a comment by id.
func (s *CommentService) GetComment(ctx context.Context, id int64) (*model.Comment, error) {
	row, err := s.queries.GetComment(ctx, id)
	if err != nil {
		return nil, notFound(err, "comment", id)
	}
	c := commentFromStore(row)
	return &c, nil
}

// ListApprovedComments returns the visible comments of a target, newest first.
func (s *CommentService) ListApprovedComments(ctx context.Context, ref model.CommentRef) ([]model.Comment, error) {
	rows, err := s.queries.ListApprovedComments(ctx, store.ListApprovedCommentsParams{
		TargetType: string(ref.Type),
		TargetID:   ref.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("listing comments of %s %d: %w", ref.Type, ref.ID, err)
	}
	out := make([]model.Comment, 0, len(rows))
	for _, r := range rows {
		out = append(out, commentFromStore(r))
	}
	return out, nil
}

// ListCommentsByStatus returns one page of comments in a moderation state.
func (s *CommentService) ListCommentsByStatus(ctx context.Context, status model.CommentStatus, page Page) (Paged[model.Comment], error) {
	if !status.IsValid() {
		return Paged[model.Comment]{}, apperror.ValidationFailed("status", "Status has an invalid value.")
	}
	rows, err := s.queries.ListCommentsByStatus(ctx, store.ListCommentsByStatusParams{
		Status: string(status),
		Limit:  page.Limit(),
		Offset: page.Offset(),
	})
	if err != nil {
		return Paged[model.Comment]{}, fmt.Errorf("listing %s comments: %w", status, err)
	}
	total, err := s.CountByStatus(ctx, status)
	if err != nil {
		return Paged[model.Comment]{}, err
	}
	items := make([]model.Comment, 0, len(rows))
	for _, r := range rows {
		items = append(items, commentFromStore(r))
	}
	return Paged[model.Comment]{Items: items, Total: total, Page: page.normalize()}, nil
}

// CountByStatus returns the number of comments in a moderation state.
func (s *CommentService) CountByStatus(ctx context.Context, status model.CommentStatus) (int64, error) {
	n, err := s.queries.CountCommentsByStatus(ctx, string(status))
	if err != nil {
		return 0, fmt.Errorf("counting %s comments: %w", status, err)
	}
	return n, nil
}

// ModerateComment sets the status of a comment. The author is notified when
// a comment gets approved.
func (s *CommentService) ModerateComment(ctx context.Context, id int64, status model.CommentStatus) (*model.Comment, error) {
	if !status.IsValid() {
		return nil, apperror.ValidationFailed("status", "Status has an invalid value.")
	}
	before, err := s.GetComment(ctx, id)
	if err != nil {
		return nil, err
	}
	n, err := s.queries.SetCommentStatus(ctx, store.SetCommentStatusParams{
		Status:    string(status),
		UpdatedAt: time.Now().UTC(),
		ID:        id,
	})
	if err != nil {
		return nil, fmt.Errorf("moderating comment %d: %w", id, err)
	}
	if n == 0 {
		return nil, apperror.NotFound("comment", id)
	}
	after, err := s.GetComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil && status == model.CommentStatusApproved && before.Status != model.CommentStatusApproved {
		if _, err := s.notifier.CreateNotification(ctx, NotificationInput{
			UserID:  after.UserID,
			Type:    model.NotificationComment,
			Title:   "Your comment was approved",
			Message: truncateRunes(after.Content, 120),
			Link:    commentLink(ctx, s.queries, after),
		}); err != nil {
			slog.Warn("comment approval notification failed", "comment_id", id, "error", err)
		}
	}
	return after, nil
}

// DeleteComment removes a comment. Authors may delete their own comments;
// editors and admins may delete any.
func (s *CommentService) DeleteComment(ctx context.Context, actor *model.User, id int64) error {
	c, err := s.GetComment(ctx, id)
	if err != nil {
		return err
	}
	if actor == nil || (actor.ID != c.UserID && !actor.CanModerate()) {
		return apperror.Forbidden("You cannot delete this comment.")
	}
	n, err := s.queries.DeleteComment(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting comment %d: %w", id, err)
	}
	if n == 0 {
		return apperror.NotFound("comment", id)
	}
	return nil
}

// commentLink points at the page a comment was posted on.
func commentLink(ctx context.Context, q *store.Queries, c *model.Comment) string {
	switch c.TargetType {
	case model.CommentTargetStar:
		return fmt.Sprintf("/stars/%d", c.TargetID)
	case model.CommentTargetNews:
		if n, err := q.GetNewsByID(ctx, c.TargetID); err == nil {
			return "/news/" + n.Slug
		}
	}
	return ""
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "…"
}
