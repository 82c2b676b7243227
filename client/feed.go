package client

import (
	"context"
	"errors"
	"sync"

	"github.com/yukio/micropost/internal/model"
)

// ErrToggleInFlight is returned by ToggleLike while a previous toggle for the
// same post is still waiting on the server. The caller should ignore the tap,
// not queue it.
var ErrToggleInFlight = errors.New("client: like toggle already in flight")

// Feed is a local, mutable view of the post feed with an optimistic like
// toggle. ToggleLike flips the UI state immediately, then settles with the
// server in the background of the call:
//
//   - on success, the server's returned count replaces the optimistic guess;
//   - on any failure, the whole feed is refetched, so local state converges
//     back to server truth instead of drifting.
//
// At most one toggle per post may be in flight; concurrent calls for the same
// post get ErrToggleInFlight. After Close, every method is a no-op — late
// responses from in-flight toggles are discarded rather than applied to a
// feed nobody is showing anymore.
type Feed struct {
	client *Client

	mu       sync.Mutex
	posts    []model.PostView
	index    map[int64]int // post ID → position in posts
	inflight map[int64]bool
	closed   bool
}

// NewFeed creates an empty Feed. Call Refresh to load it.
func NewFeed(client *Client) *Feed {
	return &Feed{
		client:   client,
		index:    make(map[int64]int),
		inflight: make(map[int64]bool),
	}
}

// Refresh replaces the local feed with the server's current state.
func (f *Feed) Refresh(ctx context.Context) error {
	views, err := f.client.Posts(ctx)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.replaceLocked(views)
	return nil
}

// replaceLocked swaps in a new post list and rebuilds the index.
// Caller holds f.mu.
func (f *Feed) replaceLocked(views []model.PostView) {
	f.posts = views
	f.index = make(map[int64]int, len(views))
	for i, v := range views {
		f.index[v.ID] = i
	}
}

// Posts returns a snapshot of the current feed. The slice is a copy; mutating
// it does not affect the feed.
func (f *Feed) Posts() []model.PostView {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.PostView, len(f.posts))
	copy(out, f.posts)
	return out
}

// Post returns a snapshot of one post by ID.
func (f *Feed) Post(id int64) (model.PostView, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.index[id]
	if !ok {
		return model.PostView{}, false
	}
	return f.posts[i], true
}

// ToggleLike likes the post if the viewer hasn't liked it, unlikes it if they
// have. The local counter and flag change before the request is sent, so the
// caller can re-render immediately; the decrement clamps at zero even if the
// local count was already stale.
func (f *Feed) ToggleLike(ctx context.Context, postID int64) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	if f.inflight[postID] {
		f.mu.Unlock()
		return ErrToggleInFlight
	}
	i, ok := f.index[postID]
	if !ok {
		f.mu.Unlock()
		return errors.New("client: post not in feed")
	}

	wasLiked := f.posts[i].UserLiked

	// Optimistic flip: the UI sees the new state before the server does.
	f.posts[i].UserLiked = !wasLiked
	if wasLiked {
		f.posts[i].LikesCount = max(0, f.posts[i].LikesCount-1)
	} else {
		f.posts[i].LikesCount++
	}
	f.inflight[postID] = true
	f.mu.Unlock()

	var (
		count int
		err   error
	)
	if wasLiked {
		count, err = f.client.Unlike(ctx, postID)
	} else {
		count, err = f.client.Like(ctx, postID)
	}

	f.mu.Lock()
	delete(f.inflight, postID)
	if f.closed {
		f.mu.Unlock()
		return nil
	}

	if err == nil {
		// Settle on the server's count; the flag already matches.
		if i, ok := f.index[postID]; ok {
			f.posts[i].LikesCount = count
		}
		f.mu.Unlock()
		return nil
	}
	f.mu.Unlock()

	// The server rejected the toggle or never confirmed it. The local state
	// is a guess that may be wrong, so resync the whole feed; if even that
	// fails, undo the guess locally.
	if refreshErr := f.Refresh(ctx); refreshErr != nil {
		f.mu.Lock()
		if j, ok := f.index[postID]; ok && !f.closed {
			f.posts[j].UserLiked = wasLiked
			if wasLiked {
				f.posts[j].LikesCount++
			} else {
				f.posts[j].LikesCount = max(0, f.posts[j].LikesCount-1)
			}
		}
		f.mu.Unlock()
	}
	return err
}

// Close marks the feed as dead. Subsequent calls and late toggle responses
// are discarded.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}
