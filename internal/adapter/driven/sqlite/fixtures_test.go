package sqlite

import (
	"context"
	"testing"

	"github.com/ericfisherdev/reviewhub/internal/domain/model"
	"github.com/stretchr/testify/require"
)

// fixture holds a review request with one screenshot, a published review
// carrying one screenshot comment, and a draft reply to that review.
type fixture struct {
	owner      model.User
	replier    model.User
	rr         model.ReviewRequest
	screenshot model.Screenshot
	review     model.Review
	comment    model.ScreenshotComment
	reply      model.Review
}

func addTestUser(t *testing.T, db *DB, username string) model.User {
	t.Helper()
	user, err := NewUserRepo(db).Add(context.Background(), model.User{Username: username})
	require.NoError(t, err)
	return user
}

func setupFixture(t *testing.T, db *DB) fixture {
	t.Helper()
	ctx := context.Background()

	var f fixture
	f.owner = addTestUser(t, db, "alice")
	f.replier = addTestUser(t, db, "bob")

	rrRepo := NewReviewRequestRepo(db)
	var err error
	f.rr, err = rrRepo.Add(ctx, model.ReviewRequest{SubmitterID: f.owner.ID, Summary: "Add login page", Public: true})
	require.NoError(t, err)

	f.screenshot, err = rrRepo.AddScreenshot(ctx, model.Screenshot{ReviewRequestID: f.rr.ID, Caption: "login", Path: "uploads/login.png"})
	require.NoError(t, err)

	reviewRepo := NewReviewRepo(db)
	f.review, err = reviewRepo.Add(ctx, model.Review{ReviewRequestID: f.rr.ID, UserID: f.owner.ID, Public: true})
	require.NoError(t, err)

	f.comment, err = NewCommentRepo(db).Create(ctx, model.ScreenshotComment{
		ReviewID:     f.review.ID,
		ScreenshotID: f.screenshot.ID,
		Text:         "Button is misaligned",
		X:            10,
		Y:            20,
		W:            30,
		H:            40,
	})
	require.NoError(t, err)

	f.reply, err = reviewRepo.Add(ctx, model.Review{
		ReviewRequestID: f.rr.ID,
		UserID:          f.replier.ID,
		BaseReplyToID:   &f.review.ID,
	})
	require.NoError(t, err)

	return f
}
