package wall

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"anonwall/internal/models"
	"anonwall/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	svc := NewService(store, NewFilter())

	// Deterministic ids and clock.
	seq := 0
	svc.newID = func() string {
		seq++
		return fmt.Sprintf("post-%d", seq)
	}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		now = now.Add(time.Second)
		return now
	}
	return svc
}

func TestService_PublishAndList(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	post, err := svc.Publish(ctx, "author", "hello wall")
	require.NoError(t, err)
	assert.Equal(t, "hello wall", post.Text)
	assert.NotEmpty(t, post.ID)
	assert.Equal(t, 0, post.Likes)

	views, err := svc.List(ctx, "author", SortTime)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, post.ID, views[0].ID)
	assert.Equal(t, 0, views[0].Likes)
	assert.False(t, views[0].LikedByMe)
	assert.True(t, views[0].IsMine)

	// A different viewer does not own the post.
	views, err = svc.List(ctx, "stranger", SortTime)
	require.NoError(t, err)
	assert.False(t, views[0].IsMine)
}

func TestService_PublishNewestFirst(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.Publish(ctx, "a", "first")
	require.NoError(t, err)
	second, err := svc.Publish(ctx, "a", "second")
	require.NoError(t, err)

	views, err := svc.List(ctx, "a", SortTime)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, second.ID, views[0].ID)
	assert.Equal(t, first.ID, views[1].ID)
}

func TestService_PublishValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"whitespace only", "   \n\t  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Publish(ctx, "a", tt.text)
			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
		})
	}
}

func TestService_PublishTrimsAndTruncates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	post, err := svc.Publish(ctx, "a", "  padded  ")
	require.NoError(t, err)
	assert.Equal(t, "padded", post.Text)

	long := strings.Repeat("字", models.MaxTextLength+50)
	post, err = svc.Publish(ctx, "a", long)
	require.NoError(t, err)
	assert.Equal(t, models.MaxTextLength, len([]rune(post.Text)))
}

func TestService_PublishMasksSensitiveWords(t *testing.T) {
	svc := newTestService(t)

	post, err := svc.Publish(context.Background(), "a", "你是傻逼")
	require.NoError(t, err)
	assert.Contains(t, post.Text, "你是")
	assert.NotContains(t, post.Text, "傻逼")
}

func TestService_LikeIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	post, err := svc.Publish(ctx, "author", "likeable")
	require.NoError(t, err)

	status, err := svc.SetLikeState(ctx, post.ID, "fan", true)
	require.NoError(t, err)
	assert.Equal(t, 1, status.Likes)
	assert.True(t, status.LikedByMe)

	// Second like by the same identity must not double-count.
	status, err = svc.SetLikeState(ctx, post.ID, "fan", true)
	require.NoError(t, err)
	assert.Equal(t, 1, status.Likes)
	assert.True(t, status.LikedByMe)
}

func TestService_UnlikeIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	post, err := svc.Publish(ctx, "author", "likeable")
	require.NoError(t, err)

	status, err := svc.SetLikeState(ctx, post.ID, "fan", false)
	require.NoError(t, err)
	assert.Equal(t, 0, status.Likes)
	assert.False(t, status.LikedByMe)
}

func TestService_LikeUnlikeRoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	post, err := svc.Publish(ctx, "author", "likeable")
	require.NoError(t, err)

	ops := []bool{true, true, false, true, false, false}
	var status *LikeStatus
	for _, shouldLike := range ops {
		status, err = svc.SetLikeState(ctx, post.ID, "fan", shouldLike)
		require.NoError(t, err)
	}

	// Last operation wins.
	assert.Equal(t, 0, status.Likes)
	assert.False(t, status.LikedByMe)

	views, err := svc.List(ctx, "fan", SortTime)
	require.NoError(t, err)
	assert.False(t, views[0].LikedByMe)
	assert.Equal(t, 0, views[0].Likes)
}

func TestService_LikeCountTracksDistinctIdentities(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	post, err := svc.Publish(ctx, "author", "popular")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		status, err := svc.SetLikeState(ctx, post.ID, fmt.Sprintf("fan-%d", i), true)
		require.NoError(t, err)
		assert.Equal(t, i+1, status.Likes)
	}

	status, err := svc.SetLikeState(ctx, post.ID, "fan-2", false)
	require.NoError(t, err)
	assert.Equal(t, 4, status.Likes)
}

func TestService_LikeUnknownPostIsNotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.SetLikeState(context.Background(), "missing", "fan", true)
	assert.True(t, models.IsNotFound(err))
}

func TestService_LegacyLedgerKeyMigration(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	svc := NewService(store, NewFilter())
	ctx := context.Background()

	// Simulate a data file written by an old build: post with a numeric-like
	// id and a ledger entry under the number-round-tripped key form.
	posts := []*models.Post{{
		ID:        "0042",
		AuthorID:  "author",
		Text:      "legacy",
		Likes:     1,
		CreatedAt: time.Now().UTC(),
	}}
	require.NoError(t, store.Put(ctx, PostsDoc, posts))
	require.NoError(t, store.Put(ctx, LikesDoc, Ledger{"42_fan": 1}))

	// Read path: the legacy entry counts as liked.
	views, err := svc.List(ctx, "fan", SortTime)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].LikedByMe)

	// Mutating like normalizes storage without changing the count.
	status, err := svc.SetLikeState(ctx, "0042", "fan", true)
	require.NoError(t, err)
	assert.Equal(t, 1, status.Likes)
	assert.True(t, status.LikedByMe)

	ledger := Ledger{}
	require.NoError(t, store.Get(ctx, LikesDoc, &ledger))
	assert.Equal(t, Ledger{"0042_fan": 1}, ledger)

	// Unlike afterwards clears every form.
	status, err = svc.SetLikeState(ctx, "0042", "fan", false)
	require.NoError(t, err)
	assert.Equal(t, 0, status.Likes)
	assert.False(t, status.LikedByMe)
}

func TestService_LikeCountClampedAtZero(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	svc := NewService(store, NewFilter())
	ctx := context.Background()

	// Desynced data: ledger says liked but the cached count is already zero.
	posts := []*models.Post{{ID: "p1", AuthorID: "a", Text: "x", Likes: 0}}
	require.NoError(t, store.Put(ctx, PostsDoc, posts))
	require.NoError(t, store.Put(ctx, LikesDoc, Ledger{"p1_fan": 1}))

	status, err := svc.SetLikeState(ctx, "p1", "fan", false)
	require.NoError(t, err)
	assert.Equal(t, 0, status.Likes)
}

func TestService_HotSortOrdersByLikesThenRecency(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	oldest, err := svc.Publish(ctx, "a", "oldest")
	require.NoError(t, err)
	middle, err := svc.Publish(ctx, "a", "middle")
	require.NoError(t, err)
	newest, err := svc.Publish(ctx, "a", "newest")
	require.NoError(t, err)

	// middle gets two likes, oldest and newest stay tied at one.
	for _, fan := range []string{"f1", "f2"} {
		_, err = svc.SetLikeState(ctx, middle.ID, fan, true)
		require.NoError(t, err)
	}
	_, err = svc.SetLikeState(ctx, oldest.ID, "f1", true)
	require.NoError(t, err)
	_, err = svc.SetLikeState(ctx, newest.ID, "f1", true)
	require.NoError(t, err)

	views, err := svc.List(ctx, "viewer", SortHot)
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, middle.ID, views[0].ID)
	// Ties break newest-first.
	assert.Equal(t, newest.ID, views[1].ID)
	assert.Equal(t, oldest.ID, views[2].ID)
}

func TestService_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewFileStore(dir)
	require.NoError(t, err)
	svc := NewService(store, NewFilter())
	ctx := context.Background()

	post, err := svc.Publish(ctx, "author", "durable")
	require.NoError(t, err)
	_, err = svc.SetLikeState(ctx, post.ID, "fan", true)
	require.NoError(t, err)

	// A fresh service over the same directory sees identical state.
	store2, err := storage.NewFileStore(dir)
	require.NoError(t, err)
	svc2 := NewService(store2, NewFilter())

	views, err := svc2.List(ctx, "fan", SortTime)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "durable", views[0].Text)
	assert.Equal(t, 1, views[0].Likes)
	assert.True(t, views[0].LikedByMe)
}
