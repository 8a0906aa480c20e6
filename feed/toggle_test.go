package feed_test

import (
	"context"
	"errors"
	"testing"

	"civicsync/feed"
	"civicsync/feed/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestToggleTransitions(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockUpvoteWriter(ctrl)
	toggler := feed.NewToggler(store)
	ctx := context.Background()

	store.EXPECT().AddUpvote(gomock.Any(), "issue-1", "user-1").Return(nil)
	res, err := toggler.Toggle(ctx, "issue-1", "user-1", false)
	require.NoError(t, err)
	assert.Equal(t, feed.ToggleResult{Upvoted: true}, res)

	store.EXPECT().RemoveUpvote(gomock.Any(), "issue-1", "user-1").Return(nil)
	res, err = toggler.Toggle(ctx, "issue-1", "user-1", true)
	require.NoError(t, err)
	assert.Equal(t, feed.ToggleResult{Upvoted: false}, res)
}

func TestToggleAnonymousIsNoop(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockUpvoteWriter(ctrl)

	res, err := feed.NewToggler(store).Toggle(context.Background(), "issue-1", "", false)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.False(t, res.Upvoted)
}

func TestToggleFailureKeepsLastKnownState(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockUpvoteWriter(ctrl)
	toggler := feed.NewToggler(store)
	boom := errors.New("connection reset")

	store.EXPECT().RemoveUpvote(gomock.Any(), "issue-1", "user-1").Return(boom)
	res, err := toggler.Toggle(context.Background(), "issue-1", "user-1", true)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, feed.ToggleResult{Upvoted: true}, res)
	assert.False(t, toggler.Pending("issue-1", "user-1"), "guard released after failure")
}

func TestToggleIgnoresReentrantRequest(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockUpvoteWriter(ctrl)
	toggler := feed.NewToggler(store)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	store.EXPECT().
		AddUpvote(gomock.Any(), "issue-1", "user-1").
		DoAndReturn(func(context.Context, string, string) error {
			close(started)
			<-release
			return nil
		}).
		Times(1)

	type outcome struct {
		res feed.ToggleResult
		err error
	}
	first := make(chan outcome, 1)
	go func() {
		res, err := toggler.Toggle(ctx, "issue-1", "user-1", false)
		first <- outcome{res, err}
	}()
	<-started

	assert.True(t, toggler.Pending("issue-1", "user-1"))
	res, err := toggler.Toggle(ctx, "issue-1", "user-1", false)
	require.NoError(t, err)
	assert.Equal(t, feed.ToggleResult{Upvoted: false, Skipped: true}, res)

	// Another viewer on the same issue is not blocked.
	store.EXPECT().AddUpvote(gomock.Any(), "issue-1", "user-2").Return(nil)
	res, err = toggler.Toggle(ctx, "issue-1", "user-2", false)
	require.NoError(t, err)
	assert.True(t, res.Upvoted)

	close(release)
	out := <-first
	require.NoError(t, out.err)
	assert.Equal(t, feed.ToggleResult{Upvoted: true}, out.res)
	assert.False(t, toggler.Pending("issue-1", "user-1"))

	store.EXPECT().RemoveUpvote(gomock.Any(), "issue-1", "user-1").Return(nil)
	res, err = toggler.Toggle(ctx, "issue-1", "user-1", true)
	require.NoError(t, err)
	assert.False(t, res.Upvoted)
}
