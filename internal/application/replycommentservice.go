package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/reviewhub/internal/domain/model"
	"github.com/ericfisherdev/reviewhub/internal/domain/port/driven"
)

// ReplyPath addresses a draft or published reply within a review request,
// as found in the URL of the reply screenshot comment resource.
type ReplyPath struct {
	LocalSite       string
	ReviewRequestID int64
	ReviewID        int64
	ReplyID         int64
}

// CommentFields carries the optional fields of a create or update request.
// Nil pointers leave the stored value untouched. An empty ExtraData value
// removes the key.
type CommentFields struct {
	Text      *string
	TextType  *model.TextType
	ExtraData map[string]string
}

// ReplyComment is a screenshot comment together with the reply holding it.
type ReplyComment struct {
	model.ScreenshotComment
	Reply model.Review
}

// CommentPage is one page of a reply's screenshot comments.
type CommentPage struct {
	Reply    model.Review
	Comments []model.ScreenshotComment
	Total    int
}

// ReplyCommentService manages replies to screenshot comments. Every operation
// resolves the review request and reply first, then checks permissions, and
// only then mutates state.
type ReplyCommentService struct {
	reviewRequests driven.ReviewRequestStore
	reviews        driven.ReviewStore
	comments       driven.ScreenshotCommentStore
	logger         *slog.Logger
}

// NewReplyCommentService creates a new ReplyCommentService with the required dependencies.
func NewReplyCommentService(
	reviewRequests driven.ReviewRequestStore,
	reviews driven.ReviewStore,
	comments driven.ScreenshotCommentStore,
	logger *slog.Logger,
) *ReplyCommentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReplyCommentService{
		reviewRequests: reviewRequests,
		reviews:        reviews,
		comments:       comments,
		logger:         logger,
	}
}

// Create adds a reply to the screenshot comment replyToID of the base review.
// If the reply already answers that comment, the existing reply comment is
// updated instead and created is false. New comments inherit the screenshot
// and region of the comment they reply to.
func (s *ReplyCommentService) Create(
	ctx context.Context,
	user *model.User,
	path ReplyPath,
	replyToID int64,
	fields CommentFields,
) (result ReplyComment, created bool, err error) {
	if user == nil {
		return ReplyComment{}, false, ErrNotLoggedIn
	}

	reply, err := s.resolveReply(ctx, user, path)
	if err != nil {
		return ReplyComment{}, false, err
	}

	if !reply.IsMutableBy(user) {
		return ReplyComment{}, false, ErrPermissionDenied
	}

	original, err := s.comments.GetByID(ctx, replyToID)
	if err != nil {
		return ReplyComment{}, false, fmt.Errorf("get screenshot comment %d: %w", replyToID, err)
	}
	if original == nil || original.ReviewID != path.ReviewID {
		return ReplyComment{}, false,
			NewFormError("reply_to_id", "This is not a valid screenshot comment ID")
	}

	existing, err := s.comments.GetReplyTo(ctx, reply.ID, original.ID)
	if err != nil {
		return ReplyComment{}, false, fmt.Errorf("find existing reply: %w", err)
	}

	if existing != nil {
		applyFields(existing, fields)
		updated, err := s.comments.Update(ctx, *existing)
		if err != nil {
			return ReplyComment{}, false, err
		}
		s.touch(ctx, reply.ID)
		return ReplyComment{ScreenshotComment: updated, Reply: *reply}, false, nil
	}

	replyTo := original.ID
	comment := model.ScreenshotComment{
		ReviewID:     reply.ID,
		ScreenshotID: original.ScreenshotID,
		ReplyToID:    &replyTo,
		X:            original.X,
		Y:            original.Y,
		W:            original.W,
		H:            original.H,
		ExtraData:    map[string]any{},
	}
	applyFields(&comment, fields)

	comment, err = s.comments.Create(ctx, comment)
	if err != nil {
		return ReplyComment{}, false, err
	}
	s.touch(ctx, reply.ID)

	s.logger.Info("screenshot comment reply created",
		"comment_id", comment.ID,
		"reply_id", reply.ID,
		"reply_to_id", original.ID,
		"user", user.Username,
	)

	return ReplyComment{ScreenshotComment: comment, Reply: *reply}, true, nil
}

// Update changes the text, text type, or extra data of a reply comment. The
// comment being replied to cannot change.
func (s *ReplyCommentService) Update(
	ctx context.Context,
	user *model.User,
	path ReplyPath,
	commentID int64,
	fields CommentFields,
) (ReplyComment, error) {
	if user == nil {
		return ReplyComment{}, ErrNotLoggedIn
	}

	reply, comment, err := s.resolveComment(ctx, user, path, commentID)
	if err != nil {
		return ReplyComment{}, err
	}

	if !reply.IsMutableBy(user) {
		return ReplyComment{}, ErrPermissionDenied
	}

	applyFields(comment, fields)
	updated, err := s.comments.Update(ctx, *comment)
	if err != nil {
		return ReplyComment{}, err
	}
	s.touch(ctx, reply.ID)

	return ReplyComment{ScreenshotComment: updated, Reply: *reply}, nil
}

// Delete removes a comment from a draft reply. Comments on published replies
// cannot be deleted.
func (s *ReplyCommentService) Delete(ctx context.Context, user *model.User, path ReplyPath, commentID int64) error {
	if user == nil {
		return ErrNotLoggedIn
	}

	reply, comment, err := s.resolveComment(ctx, user, path, commentID)
	if err != nil {
		return err
	}

	if !reply.IsMutableBy(user) {
		return ErrPermissionDenied
	}

	if err := s.comments.Delete(ctx, comment.ID); err != nil {
		return err
	}

	s.logger.Info("screenshot comment reply deleted",
		"comment_id", comment.ID,
		"reply_id", reply.ID,
		"user", user.Username,
	)

	return nil
}

// Get returns a single reply comment. Anonymous users may read comments on
// published replies of public review requests.
func (s *ReplyCommentService) Get(ctx context.Context, user *model.User, path ReplyPath, commentID int64) (ReplyComment, error) {
	reply, comment, err := s.resolveComment(ctx, user, path, commentID)
	if err != nil {
		return ReplyComment{}, err
	}
	return ReplyComment{ScreenshotComment: *comment, Reply: *reply}, nil
}

// List returns up to limit comments of the reply starting at offset, along
// with the total number of comments.
func (s *ReplyCommentService) List(ctx context.Context, user *model.User, path ReplyPath, offset, limit int) (CommentPage, error) {
	reply, err := s.resolveReply(ctx, user, path)
	if err != nil {
		return CommentPage{}, err
	}

	total, err := s.comments.CountByReview(ctx, reply.ID)
	if err != nil {
		return CommentPage{}, err
	}

	comments, err := s.comments.ListByReview(ctx, reply.ID, offset, limit)
	if err != nil {
		return CommentPage{}, err
	}

	return CommentPage{Reply: *reply, Comments: comments, Total: total}, nil
}

// Count returns the number of comments on the reply.
func (s *ReplyCommentService) Count(ctx context.Context, user *model.User, path ReplyPath) (int, error) {
	reply, err := s.resolveReply(ctx, user, path)
	if err != nil {
		return 0, err
	}
	return s.comments.CountByReview(ctx, reply.ID)
}

// resolveReply loads the review request and reply named by path, returning
// ErrNotFound if either is missing, mismatched, or hidden from user.
func (s *ReplyCommentService) resolveReply(ctx context.Context, user *model.User, path ReplyPath) (*model.Review, error) {
	rr, err := s.reviewRequests.GetByID(ctx, path.ReviewRequestID)
	if err != nil {
		return nil, fmt.Errorf("get review request %d: %w", path.ReviewRequestID, err)
	}
	if rr == nil || rr.LocalSite != path.LocalSite || !rr.IsAccessibleBy(user) {
		return nil, fmt.Errorf("review request %d: %w", path.ReviewRequestID, ErrNotFound)
	}

	reply, err := s.reviews.GetByID(ctx, path.ReplyID)
	if err != nil {
		return nil, fmt.Errorf("get reply %d: %w", path.ReplyID, err)
	}
	if reply == nil ||
		reply.ReviewRequestID != rr.ID ||
		reply.BaseReplyToID == nil ||
		*reply.BaseReplyToID != path.ReviewID ||
		!reply.IsAccessibleBy(user) {
		return nil, fmt.Errorf("reply %d: %w", path.ReplyID, ErrNotFound)
	}

	return reply, nil
}

// resolveComment resolves the reply and then the comment, which must belong
// to that reply.
func (s *ReplyCommentService) resolveComment(
	ctx context.Context,
	user *model.User,
	path ReplyPath,
	commentID int64,
) (*model.Review, *model.ScreenshotComment, error) {
	reply, err := s.resolveReply(ctx, user, path)
	if err != nil {
		return nil, nil, err
	}

	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, nil, fmt.Errorf("get screenshot comment %d: %w", commentID, err)
	}
	if comment == nil || comment.ReviewID != reply.ID {
		return nil, nil, fmt.Errorf("screenshot comment %d: %w", commentID, ErrNotFound)
	}

	return reply, comment, nil
}

// touch bumps the reply's timestamp. A failure is logged, not returned: the
// comment itself was already saved.
func (s *ReplyCommentService) touch(ctx context.Context, replyID int64) {
	if err := s.reviews.Touch(ctx, replyID); err != nil {
		s.logger.Warn("failed to update reply timestamp", "reply_id", replyID, "error", err)
	}
}

func applyFields(comment *model.ScreenshotComment, fields CommentFields) {
	if fields.Text != nil {
		comment.Text = *fields.Text
	}
	if fields.TextType != nil {
		comment.RichText = *fields.TextType == model.TextTypeMarkdown
	}
	if len(fields.ExtraData) > 0 && comment.ExtraData == nil {
		comment.ExtraData = map[string]any{}
	}
	for key, value := range fields.ExtraData {
		if value == "" {
			delete(comment.ExtraData, key)
			continue
		}
		comment.ExtraData[key] = value
	}
}
