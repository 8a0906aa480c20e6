package store

import (
	"context"
	"errors"
	"fmt"

	"civicsync/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CreateComment inserts comment on an existing issue and bumps its counter.
func (s *MongoStore) CreateComment(ctx context.Context, comment *models.Comment) error {
	if err := s.issueExists(ctx, comment.Issue); err != nil {
		return err
	}
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	comment.CreatedAt = s.now()

	if _, err := s.collection(commentsCollection).InsertOne(ctx, comment); err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return s.bumpCounter(ctx, comment.Issue, "commentsCount", 1)
}

// ListComments returns an issue's comments, oldest first.
func (s *MongoStore) ListComments(ctx context.Context, issueID string) ([]models.CommentWithAuthor, error) {
	iid, err := parseID(issueID)
	if err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "issue", Value: iid}}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: 1}}}},
	}
	pipeline = append(pipeline, authorStages()...)

	cursor, err := s.collection(commentsCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate comments: %w", err)
	}
	defer cursor.Close(ctx)

	comments := []models.CommentWithAuthor{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}
	return comments, nil
}

func (s *MongoStore) GetComment(ctx context.Context, commentID string) (models.Comment, error) {
	id, err := parseID(commentID)
	if err != nil {
		return models.Comment{}, err
	}

	var comment models.Comment
	err = s.collection(commentsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&comment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Comment{}, ErrNotFound
	}
	if err != nil {
		return models.Comment{}, fmt.Errorf("find comment: %w", err)
	}
	return comment, nil
}

// DeleteComment removes a comment and decrements its issue's counter.
func (s *MongoStore) DeleteComment(ctx context.Context, comment models.Comment) error {
	res, err := s.collection(commentsCollection).DeleteOne(ctx, bson.M{"_id": comment.ID})
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}

	err = s.bumpCounter(ctx, comment.Issue, "commentsCount", -1)
	if errors.Is(err, ErrNotFound) {
		// issue already gone
		return nil
	}
	return err
}
