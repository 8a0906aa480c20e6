package controllers

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"civicsync/geo"
	"civicsync/models"
	"civicsync/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore is an in-memory stand-in for store.MongoStore.
type memStore struct {
	mu       sync.Mutex
	clock    time.Time
	users    map[string]models.User
	issues   map[string]models.Issue
	upvotes  map[string]map[string]bool
	comments map[string]models.Comment
	listErr  error
}

func newMemStore() *memStore {
	return &memStore{
		clock:    time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
		users:    make(map[string]models.User),
		issues:   make(map[string]models.Issue),
		upvotes:  make(map[string]map[string]bool),
		comments: make(map[string]models.Comment),
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Minute)
	return m.clock
}

func checkID(id string) error {
	if !primitive.IsValidObjectID(id) {
		return fmt.Errorf("%w: %q", store.ErrInvalidID, id)
	}
	return nil
}

func (m *memStore) author(id primitive.ObjectID) models.Author {
	u := m.users[id.Hex()]
	return models.Author{ID: u.ID, DisplayName: u.DisplayName, Email: u.Email, Role: u.Role}
}

func (m *memStore) withAuthor(issue models.Issue) models.IssueWithAuthor {
	return models.IssueWithAuthor{Issue: issue, Author: m.author(issue.CreatedBy)}
}

// users

func (m *memStore) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user.Email = strings.ToLower(user.Email)
	for _, u := range m.users {
		if u.Email == user.Email {
			return store.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = m.tick()
	user.UpdatedAt = user.CreatedAt
	m.users[user.ID.Hex()] = *user
	return nil
}

func (m *memStore) FindUserByEmail(_ context.Context, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == strings.ToLower(email) {
			return u, nil
		}
	}
	return models.User{}, store.ErrNotFound
}

func (m *memStore) FindUserByID(_ context.Context, userID string) (models.User, error) {
	if err := checkID(userID); err != nil {
		return models.User{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return u, nil
}

func (m *memStore) UpdateSettings(_ context.Context, userID string, update store.SettingsUpdate) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	if update.DisplayName != nil {
		u.DisplayName = update.DisplayName
	}
	if update.Language != nil {
		u.Language = *update.Language
	}
	m.users[userID] = u
	return u, nil
}

func (m *memStore) ResolveRole(_ context.Context, userID string) (models.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return models.RoleCitizen, store.ErrNotFound
	}
	return models.NormalizeRole(string(u.Role)), nil
}

// issues

func (m *memStore) CreateIssue(_ context.Context, issue *models.Issue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	issue.ID = primitive.NewObjectID()
	issue.CreatedAt = m.tick()
	issue.UpdatedAt = issue.CreatedAt
	m.issues[issue.ID.Hex()] = *issue
	return nil
}

func (m *memStore) sorted(keep func(models.Issue) bool) []models.IssueWithAuthor {
	out := []models.IssueWithAuthor{}
	for _, issue := range m.issues {
		if keep(issue) {
			out = append(out, m.withAuthor(issue))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memStore) ListIssues(context.Context) ([]models.IssueWithAuthor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.sorted(func(models.Issue) bool { return true }), nil
}

func (m *memStore) ListIssuesByCreator(_ context.Context, userID string) ([]models.IssueWithAuthor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(i models.Issue) bool { return i.CreatedBy.Hex() == userID }), nil
}

func (m *memStore) RecentLocatedIssues(_ context.Context, limit int64) ([]models.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Issue{}
	for _, issue := range m.sorted(func(i models.Issue) bool { return i.Latitude != nil && i.Longitude != nil }) {
		if int64(len(out)) == limit {
			break
		}
		out = append(out, issue.Issue)
	}
	return out, nil
}

func (m *memStore) GetIssue(_ context.Context, issueID string) (models.IssueWithAuthor, error) {
	if err := checkID(issueID); err != nil {
		return models.IssueWithAuthor{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	issue, ok := m.issues[issueID]
	if !ok {
		return models.IssueWithAuthor{}, store.ErrNotFound
	}
	return m.withAuthor(issue), nil
}

func (m *memStore) DeleteIssue(_ context.Context, issueID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.issues[issueID]; !ok {
		return store.ErrNotFound
	}
	delete(m.issues, issueID)
	delete(m.upvotes, issueID)
	for id, comment := range m.comments {
		if comment.Issue.Hex() == issueID {
			delete(m.comments, id)
		}
	}
	return nil
}

func (m *memStore) Stats(context.Context) (store.IssueStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := store.IssueStats{TotalIssues: int64(len(m.issues)), TotalComments: int64(len(m.comments))}
	for _, users := range m.upvotes {
		stats.TotalUpvotes += int64(len(users))
	}
	return stats, nil
}

// upvotes

func (m *memStore) AddUpvote(_ context.Context, issueID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	issue, ok := m.issues[issueID]
	if !ok {
		return store.ErrNotFound
	}
	if m.upvotes[issueID][userID] {
		return store.ErrDuplicate
	}
	if m.upvotes[issueID] == nil {
		m.upvotes[issueID] = make(map[string]bool)
	}
	m.upvotes[issueID][userID] = true
	issue.UpvotesCount++
	m.issues[issueID] = issue
	return nil
}

func (m *memStore) RemoveUpvote(_ context.Context, issueID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.upvotes[issueID][userID] {
		return nil
	}
	delete(m.upvotes[issueID], userID)
	issue := m.issues[issueID]
	issue.UpvotesCount--
	m.issues[issueID] = issue
	return nil
}

func (m *memStore) HasUpvoted(_ context.Context, issueID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.upvotes[issueID][userID], nil
}

func (m *memStore) UpvotedIssueIDs(_ context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for issueID, users := range m.upvotes {
		if users[userID] {
			ids = append(ids, issueID)
		}
	}
	return ids, nil
}

// comments

func (m *memStore) CreateComment(_ context.Context, comment *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	issue, ok := m.issues[comment.Issue.Hex()]
	if !ok {
		return store.ErrNotFound
	}
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = m.tick()
	m.comments[comment.ID.Hex()] = *comment
	issue.CommentsCount++
	m.issues[issue.Key()] = issue
	return nil
}

func (m *memStore) ListComments(_ context.Context, issueID string) ([]models.CommentWithAuthor, error) {
	if err := checkID(issueID); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.CommentWithAuthor{}
	for _, comment := range m.comments {
		if comment.Issue.Hex() == issueID {
			out = append(out, models.CommentWithAuthor{Comment: comment, Author: m.author(comment.CreatedBy)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) GetComment(_ context.Context, commentID string) (models.Comment, error) {
	if err := checkID(commentID); err != nil {
		return models.Comment{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	comment, ok := m.comments[commentID]
	if !ok {
		return models.Comment{}, store.ErrNotFound
	}
	return comment, nil
}

func (m *memStore) DeleteComment(_ context.Context, comment models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.comments[comment.ID.Hex()]; !ok {
		return store.ErrNotFound
	}
	delete(m.comments, comment.ID.Hex())
	if issue, ok := m.issues[comment.Issue.Hex()]; ok {
		issue.CommentsCount--
		m.issues[issue.Key()] = issue
	}
	return nil
}

// fakeImages records uploads in memory.
type fakeImages struct {
	mu       sync.Mutex
	uploaded map[string][]byte
	removed  []string
	fail     error
}

func (f *fakeImages) Upload(_ context.Context, userID, filename string, r io.Reader, _ int64, _ string) (string, error) {
	if f.fail != nil {
		return "", f.fail
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploaded == nil {
		f.uploaded = make(map[string][]byte)
	}
	path := fmt.Sprintf("%s/%d-%s", userID, len(f.uploaded), filename)
	f.uploaded[path] = data
	return path, nil
}

func (f *fakeImages) Remove(_ context.Context, paths []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, paths...)
	return nil
}

func (f *fakeImages) PublicURL(path string) string {
	return "https://cdn.test/issue-images/" + path
}

type fixedGeocoder string

func (g fixedGeocoder) Address(context.Context, geo.Coordinate) string {
	return string(g)
}
