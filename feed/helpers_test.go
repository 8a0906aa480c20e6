package feed_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"civicsync/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errNotFound = errors.New("not found")

func issue(title string, upvotes int64, coord ...float64) models.IssueWithAuthor {
	item := models.IssueWithAuthor{
		Issue: models.Issue{
			ID:           primitive.NewObjectID(),
			Title:        title,
			UpvotesCount: upvotes,
			CreatedAt:    time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		Author: models.Author{Email: "reporter@example.org", Role: models.RoleCitizen},
	}
	if len(coord) == 2 {
		lat, lng := coord[0], coord[1]
		item.Latitude = &lat
		item.Longitude = &lng
	}
	return item
}

func titles(issues []models.IssueWithAuthor) []string {
	out := make([]string, len(issues))
	for i, it := range issues {
		out[i] = it.Title
	}
	return out
}

// fakeStore is an in-memory stand-in for the data store collaborators.
type fakeStore struct {
	mu      sync.Mutex
	issues  []models.IssueWithAuthor
	upvotes map[string]map[string]bool
	roles   map[string]models.Role

	listErr   error
	upvoteErr error
	roleErr   error
	writeErr  error

	listCalls int
	listFn    func(call int) ([]models.IssueWithAuthor, error)
}

func newFakeStore(issues ...models.IssueWithAuthor) *fakeStore {
	return &fakeStore{
		issues:  issues,
		upvotes: make(map[string]map[string]bool),
		roles:   make(map[string]models.Role),
	}
}

func (f *fakeStore) ListIssues(ctx context.Context) ([]models.IssueWithAuthor, error) {
	f.mu.Lock()
	f.listCalls++
	call := f.listCalls
	fn := f.listFn
	f.mu.Unlock()

	if fn != nil {
		return fn(call)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.IssueWithAuthor, len(f.issues))
	copy(out, f.issues)
	return out, nil
}

func (f *fakeStore) UpvotedIssueIDs(ctx context.Context, userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upvoteErr != nil {
		return nil, f.upvoteErr
	}
	var ids []string
	for id := range f.upvotes[userID] {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeStore) ResolveRole(ctx context.Context, userID string) (models.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.roleErr != nil {
		return "", f.roleErr
	}
	role, ok := f.roles[userID]
	if !ok {
		return "", errNotFound
	}
	return role, nil
}

func (f *fakeStore) AddUpvote(ctx context.Context, issueID, userID string) error {
	return f.adjust(issueID, userID, true)
}

func (f *fakeStore) RemoveUpvote(ctx context.Context, issueID, userID string) error {
	return f.adjust(issueID, userID, false)
}

func (f *fakeStore) adjust(issueID, userID string, add bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	if f.upvotes[userID] == nil {
		f.upvotes[userID] = make(map[string]bool)
	}
	if f.upvotes[userID][issueID] == add {
		return nil
	}
	f.upvotes[userID][issueID] = add
	for i := range f.issues {
		if f.issues[i].Key() != issueID {
			continue
		}
		if add {
			f.issues[i].UpvotesCount++
		} else {
			f.issues[i].UpvotesCount--
		}
	}
	return nil
}
