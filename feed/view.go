package feed

import (
	"context"
	"errors"
	"sync"
	"time"

	"civicsync/geo"

	"go.uber.org/zap"
)

// DefaultLocateTimeout bounds how long a View waits for a location.
const DefaultLocateTimeout = 10 * time.Second

// Locator yields the viewer's current position, or an error when it is
// unavailable or denied.
type Locator interface {
	Locate(ctx context.Context) (geo.Coordinate, error)
}

// LocatorFunc adapts a function to Locator.
type LocatorFunc func(ctx context.Context) (geo.Coordinate, error)

func (f LocatorFunc) Locate(ctx context.Context) (geo.Coordinate, error) {
	return f(ctx)
}

// StaticLocator always reports the same coordinate.
func StaticLocator(c geo.Coordinate) Locator {
	return LocatorFunc(func(context.Context) (geo.Coordinate, error) { return c, nil })
}

type ViewOptions struct {
	LocateTimeout time.Duration
	// Notify receives errors meant for the user. Cancelled loads are not reported.
	Notify func(error)
	Logger *zap.Logger
}

// View keeps the feed for one viewer current. It loads immediately without a
// location, reloads once a location resolves, and reloads after each
// successful upvote toggle. A slower, older load never replaces a newer one.
type View struct {
	loader        *Loader
	toggler       *Toggler
	userID        string
	locateTimeout time.Duration
	notify        func(error)
	logger        *zap.Logger

	mu       sync.Mutex
	location *geo.Coordinate
	snapshot *Snapshot
	issued   uint64
	applied  uint64

	wg sync.WaitGroup
}

func NewView(loader *Loader, toggler *Toggler, userID string, opts ViewOptions) *View {
	if opts.LocateTimeout <= 0 {
		opts.LocateTimeout = DefaultLocateTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &View{
		loader:        loader,
		toggler:       toggler,
		userID:        userID,
		locateTimeout: opts.LocateTimeout,
		notify:        opts.Notify,
		logger:        opts.Logger,
	}
}

// Start runs the first load and, when loc is non-nil, waits for a location in
// the background. Cancelling ctx stops both.
func (v *View) Start(ctx context.Context, loc Locator) error {
	if loc != nil {
		v.wg.Add(1)
		go v.awaitLocation(ctx, loc)
	}
	return v.Refresh(ctx)
}

// Wait blocks until background location handling has finished.
func (v *View) Wait() {
	v.wg.Wait()
}

// Snapshot returns the most recent load, or nil before the first one lands.
func (v *View) Snapshot() *Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshot
}

// Location returns the last resolved coordinate.
func (v *View) Location() *geo.Coordinate {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.location
}

// Refresh reloads the whole feed with the latest known location.
func (v *View) Refresh(ctx context.Context) error {
	v.mu.Lock()
	v.issued++
	seq := v.issued
	at := v.location
	v.mu.Unlock()

	snap, err := v.loader.Load(ctx, v.userID, at)
	if err != nil {
		// a newer load already landed; its result is what the user sees
		v.mu.Lock()
		stale := seq <= v.applied
		v.mu.Unlock()
		if !stale {
			v.report(ctx, err)
		}
		return err
	}

	v.mu.Lock()
	if seq > v.applied {
		v.applied = seq
		v.snapshot = snap
	}
	v.mu.Unlock()
	return nil
}

// Toggle flips the viewer's upvote on issueID using the current snapshot as
// the last known state, then reloads. A failed toggle leaves the snapshot
// alone and is reported through Notify.
func (v *View) Toggle(ctx context.Context, issueID string) (ToggleResult, error) {
	upvoted := v.Snapshot().HasUpvoted(issueID)
	if v.toggler == nil {
		return ToggleResult{Upvoted: upvoted, Skipped: true}, nil
	}

	res, err := v.toggler.Toggle(ctx, issueID, v.userID, upvoted)
	if err != nil {
		v.report(ctx, err)
		return res, err
	}
	if res.Skipped {
		return res, nil
	}
	return res, v.Refresh(ctx)
}

func (v *View) awaitLocation(ctx context.Context, loc Locator) {
	defer v.wg.Done()

	locateCtx, cancel := context.WithTimeout(ctx, v.locateTimeout)
	c, err := loc.Locate(locateCtx)
	cancel()
	if err != nil {
		v.logger.Debug("location unavailable, keeping popularity order", zap.Error(err))
		return
	}
	if !c.Valid() {
		v.logger.Debug("ignoring out of range location", zap.Stringer("coordinate", c))
		return
	}

	v.mu.Lock()
	v.location = &c
	v.mu.Unlock()

	_ = v.Refresh(ctx)
}

func (v *View) report(ctx context.Context, err error) {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return
	}
	v.logger.Error("feed operation failed", zap.Error(err))
	if v.notify != nil {
		v.notify(err)
	}
}
