package models

import (
	"time"

	"civicsync/geo"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxIssueImages caps the number of photos attached to an issue.
const MaxIssueImages = 3

// Issue represents a civic issue reported by a user
type Issue struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title         string             `bson:"title" json:"title"`
	Images        []string           `bson:"images,omitempty" json:"images,omitempty"`
	Latitude      *float64           `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude     *float64           `bson:"longitude,omitempty" json:"longitude,omitempty"`
	Address       *string            `bson:"address,omitempty" json:"address,omitempty"`
	UpvotesCount  int64              `bson:"upvotesCount" json:"upvotesCount"`
	CommentsCount int64              `bson:"commentsCount" json:"commentsCount"`
	AISummary     *string            `bson:"aiSummary,omitempty" json:"aiSummary,omitempty"`
	CreatedBy     primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Coordinate returns the issue location when both latitude and longitude are set.
func (i Issue) Coordinate() (geo.Coordinate, bool) {
	return geo.FromPointers(i.Latitude, i.Longitude)
}

// Key is the opaque identifier used by the feed.
func (i Issue) Key() string {
	return i.ID.Hex()
}

// IssueWithAuthor is an issue joined with its creator's display metadata.
type IssueWithAuthor struct {
	Issue  `bson:",inline"`
	Author Author `bson:"author" json:"author"`
}
