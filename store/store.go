// Package store persists users, issues, upvotes and comments in MongoDB.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
	ErrInvalidID = errors.New("invalid id")
)

const (
	usersCollection    = "users"
	issuesCollection   = "issues"
	upvotesCollection  = "upvotes"
	commentsCollection = "comments"
)

// MongoStore implements the data store on a MongoDB database.
type MongoStore struct {
	db  *mongo.Database
	now func() time.Time
}

func New(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db, now: time.Now}
}

func (s *MongoStore) collection(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// EnsureIndexes creates the indexes the store relies on, including the
// unique (issue, user) index that keeps one upvote per pair.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	indexes := []struct {
		collection string
		models     []mongo.IndexModel
	}{
		{upvotesCollection, []mongo.IndexModel{
			{Keys: bson.D{{Key: "issue", Value: 1}, {Key: "user", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "user", Value: 1}}},
		}},
		{usersCollection, []mongo.IndexModel{
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		}},
		{issuesCollection, []mongo.IndexModel{
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "createdBy", Value: 1}}},
		}},
		{commentsCollection, []mongo.IndexModel{
			{Keys: bson.D{{Key: "issue", Value: 1}, {Key: "createdAt", Value: 1}}},
		}},
	}

	for _, idx := range indexes {
		if _, err := s.collection(idx.collection).Indexes().CreateMany(ctx, idx.models); err != nil {
			return fmt.Errorf("create %s indexes: %w", idx.collection, err)
		}
	}
	return nil
}

func parseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, hex)
	}
	return id, nil
}

// authorStages joins the creator profile onto documents carrying createdBy.
func authorStages() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: usersCollection},
			{Key: "localField", Value: "createdBy"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "author"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$author"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "author.password", Value: 0},
			{Key: "author.language", Value: 0},
		}}},
	}
}

// bumpCounter adjusts a counter field on an issue.
func (s *MongoStore) bumpCounter(ctx context.Context, issueID primitive.ObjectID, field string, delta int) error {
	res, err := s.collection(issuesCollection).UpdateOne(ctx,
		bson.M{"_id": issueID},
		bson.M{"$inc": bson.M{field: delta}},
	)
	if err != nil {
		return fmt.Errorf("update %s: %w", field, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) issueExists(ctx context.Context, issueID primitive.ObjectID) error {
	count, err := s.collection(issuesCollection).CountDocuments(ctx, bson.M{"_id": issueID})
	if err != nil {
		return fmt.Errorf("check issue: %w", err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}
