package store

import (
	"context"
	"fmt"

	"civicsync/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateIssue inserts issue, assigning its id and timestamps.
func (s *MongoStore) CreateIssue(ctx context.Context, issue *models.Issue) error {
	if len(issue.Images) > models.MaxIssueImages {
		return fmt.Errorf("issue has %d images, max %d", len(issue.Images), models.MaxIssueImages)
	}
	now := s.now()
	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	issue.CreatedAt = now
	issue.UpdatedAt = now

	if _, err := s.collection(issuesCollection).InsertOne(ctx, issue); err != nil {
		return fmt.Errorf("insert issue: %w", err)
	}
	return nil
}

// ListIssues returns every issue with its author, newest first.
func (s *MongoStore) ListIssues(ctx context.Context) ([]models.IssueWithAuthor, error) {
	return s.aggregateIssues(ctx, bson.D{}, 0)
}

// ListIssuesByCreator returns a user's issues, newest first.
func (s *MongoStore) ListIssuesByCreator(ctx context.Context, userID string) ([]models.IssueWithAuthor, error) {
	uid, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	return s.aggregateIssues(ctx, bson.D{{Key: "createdBy", Value: uid}}, 0)
}

// GetIssue returns a single issue with its author.
func (s *MongoStore) GetIssue(ctx context.Context, issueID string) (models.IssueWithAuthor, error) {
	id, err := parseID(issueID)
	if err != nil {
		return models.IssueWithAuthor{}, err
	}
	issues, err := s.aggregateIssues(ctx, bson.D{{Key: "_id", Value: id}}, 1)
	if err != nil {
		return models.IssueWithAuthor{}, err
	}
	if len(issues) == 0 {
		return models.IssueWithAuthor{}, ErrNotFound
	}
	return issues[0], nil
}

func (s *MongoStore) aggregateIssues(ctx context.Context, match bson.D, limit int64) ([]models.IssueWithAuthor, error) {
	pipeline := mongo.Pipeline{}
	if len(match) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: match}})
	}
	pipeline = append(pipeline, bson.D{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}})
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}
	pipeline = append(pipeline, authorStages()...)

	cursor, err := s.collection(issuesCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate issues: %w", err)
	}
	defer cursor.Close(ctx)

	issues := []models.IssueWithAuthor{}
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, fmt.Errorf("decode issues: %w", err)
	}
	return issues, nil
}

// RecentLocatedIssues returns the most recent issues that have latitude and longitude.
func (s *MongoStore) RecentLocatedIssues(ctx context.Context, limit int64) ([]models.Issue, error) {
	filter := bson.M{
		"latitude":  bson.M{"$exists": true, "$ne": nil},
		"longitude": bson.M{"$exists": true, "$ne": nil},
	}
	projection := bson.M{
		"_id":          1,
		"title":        1,
		"latitude":     1,
		"longitude":    1,
		"address":      1,
		"upvotesCount": 1,
		"createdAt":    1,
	}
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit).
		SetProjection(projection)

	cursor, err := s.collection(issuesCollection).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("find located issues: %w", err)
	}
	defer cursor.Close(ctx)

	issues := []models.Issue{}
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, fmt.Errorf("decode located issues: %w", err)
	}
	return issues, nil
}

// DeleteIssue removes an issue along with its upvotes and comments. Children
// go first so a delete that fails halfway can be retried to completion.
func (s *MongoStore) DeleteIssue(ctx context.Context, issueID string) error {
	id, err := parseID(issueID)
	if err != nil {
		return err
	}
	if err := s.issueExists(ctx, id); err != nil {
		return err
	}

	if _, err := s.collection(upvotesCollection).DeleteMany(ctx, bson.M{"issue": id}); err != nil {
		return fmt.Errorf("delete issue upvotes: %w", err)
	}
	if _, err := s.collection(commentsCollection).DeleteMany(ctx, bson.M{"issue": id}); err != nil {
		return fmt.Errorf("delete issue comments: %w", err)
	}

	res, err := s.collection(issuesCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete issue: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
