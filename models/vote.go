package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Upvote records that a user endorsed an issue. At most one exists per (issue, user).
type Upvote struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Issue     primitive.ObjectID `bson:"issue" json:"issue"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
