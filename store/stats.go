package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type TopIssue struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	Title        string             `bson:"title" json:"title"`
	UpvotesCount int64              `bson:"upvotesCount" json:"upvotesCount"`
}

type IssueStats struct {
	TotalIssues   int64        `json:"totalIssues"`
	TotalUpvotes  int64        `json:"totalUpvotes"`
	TotalComments int64        `json:"totalComments"`
	LocatedIssues int64        `json:"locatedIssues"`
	Last7Days     []DailyCount `json:"last7Days"`
	TopUpvoted    []TopIssue   `json:"topUpvoted"`
}

// Stats summarizes issue activity for the moderation dashboard.
func (s *MongoStore) Stats(ctx context.Context) (IssueStats, error) {
	var stats IssueStats
	var err error

	issues := s.collection(issuesCollection)
	if stats.TotalIssues, err = issues.CountDocuments(ctx, bson.M{}); err != nil {
		return stats, fmt.Errorf("count issues: %w", err)
	}
	if stats.TotalUpvotes, err = s.collection(upvotesCollection).CountDocuments(ctx, bson.M{}); err != nil {
		return stats, fmt.Errorf("count upvotes: %w", err)
	}
	if stats.TotalComments, err = s.collection(commentsCollection).CountDocuments(ctx, bson.M{}); err != nil {
		return stats, fmt.Errorf("count comments: %w", err)
	}
	stats.LocatedIssues, err = issues.CountDocuments(ctx, bson.M{
		"latitude":  bson.M{"$ne": nil},
		"longitude": bson.M{"$ne": nil},
	})
	if err != nil {
		return stats, fmt.Errorf("count located issues: %w", err)
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for i := 6; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		count, err := issues.CountDocuments(ctx, bson.M{
			"createdAt": bson.M{"$gte": day, "$lt": day.AddDate(0, 0, 1)},
		})
		if err != nil {
			return stats, fmt.Errorf("count issues on %s: %w", day.Format(time.DateOnly), err)
		}
		stats.Last7Days = append(stats.Last7Days, DailyCount{Date: day.Format(time.DateOnly), Count: count})
	}

	cursor, err := issues.Find(ctx, bson.M{}, options.Find().
		SetSort(bson.D{{Key: "upvotesCount", Value: -1}, {Key: "createdAt", Value: -1}}).
		SetLimit(5).
		SetProjection(bson.M{"title": 1, "upvotesCount": 1}))
	if err != nil {
		return stats, fmt.Errorf("find top issues: %w", err)
	}
	defer cursor.Close(ctx)

	stats.TopUpvoted = []TopIssue{}
	if err := cursor.All(ctx, &stats.TopUpvoted); err != nil {
		return stats, fmt.Errorf("decode top issues: %w", err)
	}
	return stats, nil
}
