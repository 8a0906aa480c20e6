package feed_test

import (
	"context"
	"errors"
	"testing"

	"civicsync/feed"
	"civicsync/geo"
	"civicsync/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingGenerator struct {
	calls int
}

func (g *countingGenerator) GenerateSummary(ctx context.Context, req feed.SummaryRequest) (string, error) {
	g.calls++
	return "summary: " + req.Title, nil
}

func newLoader(store *fakeStore, gen feed.SummaryGenerator) *feed.Loader {
	summarizer := feed.NewSummarizer(gen, nil, feed.SummarizerOptions{Concurrency: 1}, nil)
	return feed.NewLoader(store, store, store, summarizer, nil)
}

func TestLoadAnonymousRanksByPopularity(t *testing.T) {
	store := newFakeStore(issue("five", 5), issue("two", 2), issue("eight", 8))
	gen := &countingGenerator{}

	snap, err := newLoader(store, gen).Load(context.Background(), "", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"eight", "five", "two"}, titles(snap.Issues))
	assert.Equal(t, models.RoleCitizen, snap.Viewer.Role)
	assert.Empty(t, snap.Upvoted)
	assert.Nil(t, snap.Location)
	assert.Zero(t, gen.calls)
}

func TestLoadOfficialGetsSummaries(t *testing.T) {
	store := newFakeStore(issue("leak", 1), issue("pothole", 2))
	store.roles["off-1"] = models.RoleOfficial
	gen := &countingGenerator{}

	snap, err := newLoader(store, gen).Load(context.Background(), "off-1", nil)
	require.NoError(t, err)

	assert.Equal(t, models.RoleOfficial, snap.Viewer.Role)
	assert.Equal(t, 2, gen.calls)
	for _, it := range snap.Issues {
		require.NotNil(t, it.AISummary)
		assert.Equal(t, "summary: "+it.Title, *it.AISummary)
	}
}

func TestLoadCitizenGetsNoSummaries(t *testing.T) {
	store := newFakeStore(issue("leak", 1))
	store.roles["cit-1"] = models.RoleCitizen
	gen := &countingGenerator{}

	snap, err := newLoader(store, gen).Load(context.Background(), "cit-1", nil)
	require.NoError(t, err)
	assert.Nil(t, snap.Issues[0].AISummary)
	assert.Zero(t, gen.calls)
}

func TestLoadRoleLookupFailureDefaultsToCitizen(t *testing.T) {
	store := newFakeStore(issue("leak", 1))
	store.roleErr = errors.New("profiles unavailable")
	gen := &countingGenerator{}

	snap, err := newLoader(store, gen).Load(context.Background(), "off-1", nil)
	require.NoError(t, err)
	assert.Equal(t, models.RoleCitizen, snap.Viewer.Role)
	assert.Zero(t, gen.calls)
}

func TestLoadListFailureAborts(t *testing.T) {
	store := newFakeStore()
	store.listErr = errors.New("store offline")

	snap, err := newLoader(store, nil).Load(context.Background(), "", nil)
	assert.Nil(t, snap)
	assert.ErrorIs(t, err, store.listErr)
}

func TestLoadUpvoteFailureLeavesAnnotationEmpty(t *testing.T) {
	a := issue("a", 1)
	store := newFakeStore(a)
	store.roles["u1"] = models.RoleCitizen
	store.upvotes["u1"] = map[string]bool{a.Key(): true}
	store.upvoteErr = errors.New("timeout")

	snap, err := newLoader(store, nil).Load(context.Background(), "u1", nil)
	require.NoError(t, err)
	assert.Empty(t, snap.Upvoted)
	assert.False(t, snap.HasUpvoted(a.Key()))
}

func TestLoadAnnotatesUpvotesAndRanksByLocation(t *testing.T) {
	near := issue("near", 1, 12.9716, 77.5946)
	far := issue("far", 40, 13.0827, 80.2707)
	store := newFakeStore(far, near)
	store.roles["u1"] = models.RoleCitizen
	store.upvotes["u1"] = map[string]bool{far.Key(): true}

	at := &geo.Coordinate{Latitude: 12.97, Longitude: 77.59}
	snap, err := newLoader(store, nil).Load(context.Background(), "u1", at)
	require.NoError(t, err)

	assert.Equal(t, []string{"near", "far"}, titles(snap.Issues))
	assert.True(t, snap.HasUpvoted(far.Key()))
	assert.False(t, snap.HasUpvoted(near.Key()))
	assert.Equal(t, []string{far.Key()}, snap.UpvotedIDs())
	assert.Equal(t, at, snap.Location)
}

func TestLoadCancelled(t *testing.T) {
	store := newFakeStore(issue("a", 1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newLoader(store, nil).Load(ctx, "", nil)
	assert.ErrorIs(t, err, context.Canceled)
}
