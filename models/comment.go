package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxCommentLength bounds comment text after trimming.
const MaxCommentLength = 1000

type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Issue     primitive.ObjectID `bson:"issue" json:"issue"`
	Text      string             `bson:"text" json:"text"`
	CreatedBy primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// CommentWithAuthor is a comment joined with its author's profile.
type CommentWithAuthor struct {
	Comment `bson:",inline"`
	Author  Author `bson:"author" json:"author"`
}
