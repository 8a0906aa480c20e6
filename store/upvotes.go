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

// AddUpvote records that userID upvoted issueID and bumps the issue counter.
// A second upvote for the same pair fails with ErrDuplicate.
func (s *MongoStore) AddUpvote(ctx context.Context, issueID, userID string) error {
	iid, uid, err := parsePair(issueID, userID)
	if err != nil {
		return err
	}
	if err := s.issueExists(ctx, iid); err != nil {
		return err
	}

	upvote := models.Upvote{
		ID:        primitive.NewObjectID(),
		Issue:     iid,
		User:      uid,
		CreatedAt: s.now(),
	}
	if _, err := s.collection(upvotesCollection).InsertOne(ctx, upvote); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert upvote: %w", err)
	}

	return s.bumpCounter(ctx, iid, "upvotesCount", 1)
}

// RemoveUpvote deletes the pair's upvote. Removing a missing upvote is a no-op.
func (s *MongoStore) RemoveUpvote(ctx context.Context, issueID, userID string) error {
	iid, uid, err := parsePair(issueID, userID)
	if err != nil {
		return err
	}

	res, err := s.collection(upvotesCollection).DeleteOne(ctx, bson.M{"issue": iid, "user": uid})
	if err != nil {
		return fmt.Errorf("delete upvote: %w", err)
	}
	if res.DeletedCount == 0 {
		return nil
	}

	return s.bumpCounter(ctx, iid, "upvotesCount", -1)
}

// HasUpvoted reports whether an upvote exists for the pair.
func (s *MongoStore) HasUpvoted(ctx context.Context, issueID, userID string) (bool, error) {
	iid, uid, err := parsePair(issueID, userID)
	if err != nil {
		return false, err
	}

	count, err := s.collection(upvotesCollection).CountDocuments(ctx, bson.M{"issue": iid, "user": uid})
	if err != nil {
		return false, fmt.Errorf("count upvotes: %w", err)
	}
	return count > 0, nil
}

// UpvotedIssueIDs lists the ids of every issue userID has upvoted.
func (s *MongoStore) UpvotedIssueIDs(ctx context.Context, userID string) ([]string, error) {
	uid, err := parseID(userID)
	if err != nil {
		return nil, err
	}

	cursor, err := s.collection(upvotesCollection).Find(ctx,
		bson.M{"user": uid},
		options.Find().SetProjection(bson.M{"issue": 1}),
	)
	if err != nil {
		return nil, fmt.Errorf("find upvotes: %w", err)
	}
	defer cursor.Close(ctx)

	var upvotes []models.Upvote
	if err := cursor.All(ctx, &upvotes); err != nil {
		return nil, fmt.Errorf("decode upvotes: %w", err)
	}

	ids := make([]string, 0, len(upvotes))
	for _, u := range upvotes {
		ids = append(ids, u.Issue.Hex())
	}
	return ids, nil
}

func parsePair(issueID, userID string) (primitive.ObjectID, primitive.ObjectID, error) {
	iid, err := parseID(issueID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}
	uid, err := parseID(userID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}
	return iid, uid, nil
}
