package feed

import (
	"context"
	"fmt"
	"sync"
)

// UpvoteWriter creates and deletes upvote records.
type UpvoteWriter interface {
	AddUpvote(ctx context.Context, issueID, userID string) error
	RemoveUpvote(ctx context.Context, issueID, userID string) error
}

// ToggleResult is the state after a toggle attempt.
type ToggleResult struct {
	Upvoted bool `json:"upvoted"`
	// Skipped is set when nothing was written: the viewer is anonymous or a
	// toggle for the same (issue, viewer) was already in flight.
	Skipped bool `json:"ignored"`
}

type toggleKey struct {
	issueID string
	userID  string
}

// Toggler flips a viewer's upvote on an issue. At most one toggle per
// (issue, viewer) runs at a time; extra requests are dropped, not queued.
type Toggler struct {
	store UpvoteWriter

	mu       sync.Mutex
	inFlight map[toggleKey]struct{}
}

func NewToggler(store UpvoteWriter) *Toggler {
	return &Toggler{
		store:    store,
		inFlight: make(map[toggleKey]struct{}),
	}
}

// Toggle moves the pair out of its last known state: upvoted deletes the
// record, not upvoted creates it. On failure the returned state is the one
// passed in; callers reconcile by reloading rather than rolling back.
func (t *Toggler) Toggle(ctx context.Context, issueID, userID string, upvoted bool) (ToggleResult, error) {
	unchanged := ToggleResult{Upvoted: upvoted, Skipped: true}
	if userID == "" {
		return unchanged, nil
	}

	key := toggleKey{issueID: issueID, userID: userID}
	if !t.acquire(key) {
		return unchanged, nil
	}
	defer t.release(key)

	var err error
	if upvoted {
		err = t.store.RemoveUpvote(ctx, issueID, userID)
	} else {
		err = t.store.AddUpvote(ctx, issueID, userID)
	}
	if err != nil {
		return ToggleResult{Upvoted: upvoted}, fmt.Errorf("toggle upvote on %s: %w", issueID, err)
	}
	return ToggleResult{Upvoted: !upvoted}, nil
}

// Pending reports whether a toggle for the pair is in flight.
func (t *Toggler) Pending(issueID, userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, busy := t.inFlight[toggleKey{issueID: issueID, userID: userID}]
	return busy
}

func (t *Toggler) acquire(key toggleKey) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, busy := t.inFlight[key]; busy {
		return false
	}
	t.inFlight[key] = struct{}{}
	return true
}

func (t *Toggler) release(key toggleKey) {
	t.mu.Lock()
	delete(t.inFlight, key)
	t.mu.Unlock()
}
