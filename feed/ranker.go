// Package feed loads, annotates and orders the issue feed.
package feed

import (
	"sort"

	"civicsync/geo"
	"civicsync/models"
)

// NearbyRadiusKm is the distance within which an issue counts as nearby.
const NearbyRadiusKm = 10.0

// IsNearby reports whether issue lies within NearbyRadiusKm of at.
// Issues without a coordinate are never nearby.
func IsNearby(at geo.Coordinate, issue models.Issue) bool {
	c, ok := issue.Coordinate()
	if !ok {
		return false
	}
	return geo.Distance(at, c) <= NearbyRadiusKm
}

type rankedIssue struct {
	item   models.IssueWithAuthor
	nearby bool
}

// Rank sorts issues in place for display and returns the same slice.
//
// Without a viewer location the order is upvotes descending. With one, nearby
// issues come first and each partition is ordered by upvotes descending; the
// distance itself is not a sort key. Equal keys keep their incoming order.
func Rank(issues []models.IssueWithAuthor, at *geo.Coordinate) []models.IssueWithAuthor {
	if at == nil {
		sort.SliceStable(issues, func(i, j int) bool {
			return issues[i].UpvotesCount > issues[j].UpvotesCount
		})
		return issues
	}

	ranked := make([]rankedIssue, len(issues))
	for i := range issues {
		ranked[i] = rankedIssue{item: issues[i], nearby: IsNearby(*at, issues[i].Issue)}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].nearby != ranked[j].nearby {
			return ranked[i].nearby
		}
		return ranked[i].item.UpvotesCount > ranked[j].item.UpvotesCount
	})

	for i := range ranked {
		issues[i] = ranked[i].item
	}
	return issues
}
