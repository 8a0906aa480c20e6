package feed

import (
	"context"
	"fmt"

	"civicsync/geo"
	"civicsync/models"

	"go.uber.org/zap"
)

// IssueLister returns every issue with author metadata, newest first.
type IssueLister interface {
	ListIssues(ctx context.Context) ([]models.IssueWithAuthor, error)
}

// UpvoteLister returns the ids of issues a user has upvoted.
type UpvoteLister interface {
	UpvotedIssueIDs(ctx context.Context, userID string) ([]string, error)
}

// RoleResolver looks up a user's role.
type RoleResolver interface {
	ResolveRole(ctx context.Context, userID string) (models.Role, error)
}

// Snapshot is the result of one feed load.
type Snapshot struct {
	Viewer   models.Viewer
	Issues   []models.IssueWithAuthor
	Upvoted  map[string]bool
	Location *geo.Coordinate
}

// HasUpvoted reports whether the viewer had upvoted issueID at load time.
func (s *Snapshot) HasUpvoted(issueID string) bool {
	if s == nil {
		return false
	}
	return s.Upvoted[issueID]
}

// UpvotedIDs lists the annotated issue ids in feed order.
func (s *Snapshot) UpvotedIDs() []string {
	ids := make([]string, 0, len(s.Upvoted))
	for _, issue := range s.Issues {
		if s.Upvoted[issue.Key()] {
			ids = append(ids, issue.Key())
		}
	}
	return ids
}

// Loader composes role lookup, issue listing, summaries, ranking and upvote
// annotation into a single feed load.
type Loader struct {
	issues     IssueLister
	upvotes    UpvoteLister
	roles      RoleResolver
	summarizer *Summarizer
	logger     *zap.Logger
}

// NewLoader wires a Loader. summarizer may be nil to disable summaries.
func NewLoader(issues IssueLister, upvotes UpvoteLister, roles RoleResolver, summarizer *Summarizer, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		issues:     issues,
		upvotes:    upvotes,
		roles:      roles,
		summarizer: summarizer,
		logger:     logger,
	}
}

// Load builds the feed for userID ("" for anonymous) ranked around at, which
// may be nil when no location is known. Only a failure to list issues or a
// cancelled context fails the load.
func (l *Loader) Load(ctx context.Context, userID string, at *geo.Coordinate) (*Snapshot, error) {
	viewer := l.ResolveViewer(ctx, userID)

	issues, err := l.issues.ListIssues(ctx)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}

	if l.summarizer != nil {
		issues = l.summarizer.Annotate(ctx, viewer, issues)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	Rank(issues, at)

	return &Snapshot{
		Viewer:   viewer,
		Issues:   issues,
		Upvoted:  l.upvotedSet(ctx, viewer),
		Location: at,
	}, nil
}

// ResolveViewer returns the viewer for userID. Lookup failures degrade to citizen.
func (l *Loader) ResolveViewer(ctx context.Context, userID string) models.Viewer {
	viewer := models.Viewer{UserID: userID, Role: models.RoleCitizen}
	if userID == "" || l.roles == nil {
		return viewer
	}

	role, err := l.roles.ResolveRole(ctx, userID)
	if err != nil {
		l.logger.Warn("role lookup failed, treating viewer as citizen",
			zap.String("user_id", userID), zap.Error(err))
		return viewer
	}
	viewer.Role = models.NormalizeRole(string(role))
	return viewer
}

func (l *Loader) upvotedSet(ctx context.Context, viewer models.Viewer) map[string]bool {
	set := make(map[string]bool)
	if !viewer.Authenticated() || l.upvotes == nil {
		return set
	}

	ids, err := l.upvotes.UpvotedIssueIDs(ctx, viewer.UserID)
	if err != nil {
		l.logger.Warn("upvote lookup failed", zap.String("user_id", viewer.UserID), zap.Error(err))
		return set
	}
	for _, id := range ids {
		set[id] = true
	}
	return set
}
