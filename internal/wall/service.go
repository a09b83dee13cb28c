package wall

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"anonwall/internal/identity"
	"anonwall/internal/models"
	"anonwall/internal/observability"
	"anonwall/internal/storage"
)

// Document keys in the backing store.
const (
	PostsDoc = "posts"
	LikesDoc = "likes"
)

// SortMode selects the ordering of a listing.
type SortMode string

const (
	// SortTime preserves insertion order, newest first.
	SortTime SortMode = "time"
	// SortHot orders by like count descending; ties stay newest first.
	SortHot SortMode = "hot"
)

// LikeStatus is the outcome of a like-state mutation for one viewer.
type LikeStatus struct {
	Likes     int  `json:"likes"`
	LikedByMe bool `json:"likedByMe"`
}

// Service owns the post collection and the like ledger. Every mutation runs
// through the write serializer and re-reads the persisted documents fresh, so
// concurrent requests never interleave read-modify-write sequences.
type Service struct {
	store  storage.Store
	writes *storage.Serializer
	filter *Filter
	now    func() time.Time
	newID  func() string
}

// NewService creates a wall service over the given store.
func NewService(store storage.Store, filter *Filter) *Service {
	if filter == nil {
		filter = NewFilter()
	}
	return &Service{
		store:  store,
		writes: &storage.Serializer{},
		filter: filter,
		now:    time.Now,
		newID:  identity.NewToken,
	}
}

func (s *Service) loadPosts(ctx context.Context) ([]*models.Post, error) {
	var posts []*models.Post
	if err := s.store.Get(ctx, PostsDoc, &posts); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return posts, nil
}

func (s *Service) loadLedger(ctx context.Context) (Ledger, error) {
	ledger := Ledger{}
	if err := s.store.Get(ctx, LikesDoc, &ledger); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	return ledger, nil
}

// Publish validates, masks, and prepends a new post. The text is trimmed,
// truncated to models.MaxTextLength characters, and rejected when empty after
// trimming; masking runs before the empty check so fully-masked text still
// publishes.
func (s *Service) Publish(ctx context.Context, anonID, text string) (*models.Post, error) {
	text = strings.TrimSpace(text)
	if runes := []rune(text); len(runes) > models.MaxTextLength {
		text = string(runes[:models.MaxTextLength])
	}
	text = s.filter.Mask(text)
	if text == "" {
		return nil, models.NewValidationError("text required")
	}

	post := &models.Post{
		ID:        s.newID(),
		AuthorID:  anonID,
		Text:      text,
		Likes:     0,
		CreatedAt: s.now().UTC(),
	}

	err := s.writes.RunExclusive(ctx, func() error {
		posts, err := s.loadPosts(ctx)
		if err != nil {
			return err
		}
		posts = append([]*models.Post{post}, posts...)
		return s.putTimed(ctx, PostsDoc, posts)
	})
	if err != nil {
		return nil, err
	}

	observability.PostsPublished.Inc()
	return post, nil
}

// List returns every post as seen by the given viewer. Reads are not
// serialized; atomic document replacement guarantees a consistent snapshot.
func (s *Service) List(ctx context.Context, anonID string, mode SortMode) ([]models.PostView, error) {
	posts, err := s.loadPosts(ctx)
	if err != nil {
		return nil, err
	}
	ledger, err := s.loadLedger(ctx)
	if err != nil {
		return nil, err
	}

	if mode == SortHot {
		sorted := make([]*models.Post, len(posts))
		copy(sorted, posts)
		// Stable keeps the newest-first baseline order among equal counts.
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Likes > sorted[j].Likes
		})
		posts = sorted
	}

	views := make([]models.PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, p.View(anonID, ledger.Liked(p.ID, anonID)))
	}
	return views, nil
}

// SetLikeState drives the like relation for one (post, identity) pair toward
// shouldLike. The operation is idempotent: liking an already-liked post only
// normalizes legacy ledger keys, and unliking a non-liked post is a no-op.
// Returns a NOT_FOUND error when the post does not exist.
func (s *Service) SetLikeState(ctx context.Context, postID, anonID string, shouldLike bool) (*LikeStatus, error) {
	var status LikeStatus

	err := s.writes.RunExclusive(ctx, func() error {
		ledger, err := s.loadLedger(ctx)
		if err != nil {
			return err
		}
		posts, err := s.loadPosts(ctx)
		if err != nil {
			return err
		}

		var post *models.Post
		for _, p := range posts {
			if p.ID == postID {
				post = p
				break
			}
		}
		if post == nil {
			return models.NewNotFoundError("post")
		}

		if shouldLike {
			if ledger.Like(post.ID, anonID) {
				post.Likes++
			}
		} else {
			if ledger.Unlike(post.ID, anonID) {
				post.Likes--
				if post.Likes < 0 {
					post.Likes = 0
				}
			}
		}

		if err := s.putTimed(ctx, LikesDoc, ledger); err != nil {
			return err
		}
		if err := s.putTimed(ctx, PostsDoc, posts); err != nil {
			return err
		}

		status = LikeStatus{Likes: post.Likes, LikedByMe: ledger.Liked(post.ID, anonID)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	action := "unlike"
	if shouldLike {
		action = "like"
	}
	observability.LikeToggles.WithLabelValues(action).Inc()
	return &status, nil
}

func (s *Service) putTimed(ctx context.Context, key string, doc any) error {
	start := s.now()
	err := s.store.Put(ctx, key, doc)
	observability.StoreWriteLatency.WithLabelValues(key).Observe(time.Since(start).Seconds())
	return err
}
