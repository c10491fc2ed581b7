package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/ericfisherdev/reviewhub/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepo_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	f := setupFixture(t, db)
	repo := NewCommentRepo(db)
	ctx := context.Background()

	reply, err := repo.Create(ctx, model.ScreenshotComment{
		ReviewID:     f.reply.ID,
		ScreenshotID: f.screenshot.ID,
		ReplyToID:    &f.comment.ID,
		Text:         "**Fixed** in the next diff",
		RichText:     true,
		X:            f.comment.X,
		Y:            f.comment.Y,
		W:            f.comment.W,
		H:            f.comment.H,
		ExtraData:    map[string]any{"source": "cli"},
	})
	require.NoError(t, err)
	assert.NotZero(t, reply.ID)

	got, err := repo.GetByID(ctx, reply.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, f.reply.ID, got.ReviewID)
	require.NotNil(t, got.ReplyToID)
	assert.Equal(t, f.comment.ID, *got.ReplyToID)
	assert.Equal(t, "**Fixed** in the next diff", got.Text)
	assert.True(t, got.RichText)
	assert.Equal(t, model.TextTypeMarkdown, got.TextType())
	assert.Equal(t, 10, got.X)
	assert.Equal(t, 20, got.Y)
	assert.Equal(t, 30, got.W)
	assert.Equal(t, 40, got.H)
	assert.Equal(t, map[string]any{"source": "cli"}, got.ExtraData)
	assert.False(t, got.Timestamp.IsZero())

	missing, err := repo.GetByID(ctx, reply.ID+100)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCommentRepo_GetReplyTo(t *testing.T) {
	db := setupTestDB(t)
	f := setupFixture(t, db)
	repo := NewCommentRepo(db)
	ctx := context.Background()

	none, err := repo.GetReplyTo(ctx, f.reply.ID, f.comment.ID)
	require.NoError(t, err)
	assert.Nil(t, none)

	created, err := repo.Create(ctx, model.ScreenshotComment{
		ReviewID:     f.reply.ID,
		ScreenshotID: f.screenshot.ID,
		ReplyToID:    &f.comment.ID,
		Text:         "Done",
	})
	require.NoError(t, err)

	got, err := repo.GetReplyTo(ctx, f.reply.ID, f.comment.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, map[string]any{}, got.ExtraData)
}

func TestCommentRepo_Update(t *testing.T) {
	db := setupTestDB(t)
	f := setupFixture(t, db)
	repo := NewCommentRepo(db)
	ctx := context.Background()

	comment := f.comment
	comment.Text = "Updated"
	comment.RichText = true
	comment.ExtraData = map[string]any{"k": "v"}

	updated, err := repo.Update(ctx, comment)
	require.NoError(t, err)
	assert.Equal(t, "Updated", updated.Text)

	got, err := repo.GetByID(ctx, f.comment.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Updated", got.Text)
	assert.True(t, got.RichText)
	assert.Equal(t, map[string]any{"k": "v"}, got.ExtraData)
	assert.True(t, got.Timestamp.Equal(f.comment.Timestamp))

	comment.ID = 9999
	_, err = repo.Update(ctx, comment)
	require.Error(t, err)
}

func TestCommentRepo_DeleteCascadesReplies(t *testing.T) {
	db := setupTestDB(t)
	f := setupFixture(t, db)
	repo := NewCommentRepo(db)
	ctx := context.Background()

	reply, err := repo.Create(ctx, model.ScreenshotComment{
		ReviewID:     f.reply.ID,
		ScreenshotID: f.screenshot.ID,
		ReplyToID:    &f.comment.ID,
		Text:         "Done",
	})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, f.comment.ID))

	got, err := repo.GetByID(ctx, reply.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCommentRepo_ListAndCount(t *testing.T) {
	db := setupTestDB(t)
	f := setupFixture(t, db)
	repo := NewCommentRepo(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	// Insert out of order to verify ordering by timestamp.
	for _, offset := range []int{2, 0, 1} {
		_, err := repo.Create(ctx, model.ScreenshotComment{
			ReviewID:     f.reply.ID,
			ScreenshotID: f.screenshot.ID,
			ReplyToID:    &f.comment.ID,
			Text:         time.Duration(offset).String(),
			Timestamp:    base.Add(time.Duration(offset) * time.Minute),
		})
		require.NoError(t, err)
	}

	count, err := repo.CountByReview(ctx, f.reply.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	all, err := repo.ListByReview(ctx, f.reply.ID, 0, 25)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].Timestamp.Before(all[1].Timestamp))
	assert.True(t, all[1].Timestamp.Before(all[2].Timestamp))

	page, err := repo.ListByReview(ctx, f.reply.ID, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, all[1].ID, page[0].ID)

	empty, err := repo.ListByReview(ctx, f.review.ID+1000, 0, 25)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCommentRepo_ListOrdersMixedTimestampFormats(t *testing.T) {
	db := setupTestDB(t)
	f := setupFixture(t, db)
	repo := NewCommentRepo(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	create := func(text string, ts time.Time) model.ScreenshotComment {
		t.Helper()
		c, err := repo.Create(ctx, model.ScreenshotComment{
			ReviewID:     f.reply.ID,
			ScreenshotID: f.screenshot.ID,
			Text:         text,
			Timestamp:    ts,
		})
		require.NoError(t, err)
		return c
	}

	half := create("half", base.Add(500*time.Millisecond))
	whole := create("whole", base)
	spaced := create("spaced", base)

	// Second precision values as another writer would store them.
	_, err := db.Writer.ExecContext(ctx,
		`UPDATE screenshot_comments SET timestamp = ? WHERE id = ?`, "2026-03-01T12:00:00Z", whole.ID)
	require.NoError(t, err)
	_, err = db.Writer.ExecContext(ctx,
		`UPDATE screenshot_comments SET timestamp = ? WHERE id = ?`, "2026-03-01 11:59:59", spaced.ID)
	require.NoError(t, err)

	all, err := repo.ListByReview(ctx, f.reply.ID, 0, 25)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{spaced.ID, whole.ID, half.ID}, []int64{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, base, all[1].Timestamp)
}

func TestFormatTime_FixedWidth(t *testing.T) {
	whole := formatTime(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	half := formatTime(time.Date(2026, 3, 1, 12, 0, 0, 500_000_000, time.FixedZone("CET", 3600)))

	assert.Equal(t, "2026-03-01T12:00:00.000000000Z", whole)
	assert.Equal(t, "2026-03-01T11:00:00.500000000Z", half)
	assert.Len(t, half, len(whole))

	parsed, err := parseTime(half)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 11, 0, 0, 500_000_000, time.UTC), parsed)
}
