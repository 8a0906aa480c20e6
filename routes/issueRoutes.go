package routes

import (
	"civicsync/controllers"
	"civicsync/middlewares"

	"github.com/gin-gonic/gin"
)

// IssueGuards are the middlewares issue routes need beyond authentication.
type IssueGuards struct {
	RateLimit  gin.HandlerFunc
	Privileged gin.HandlerFunc
}

// IssueRoutes sets up the issue, upvote and comment routes
func IssueRoutes(r *gin.Engine, issues *controllers.IssueController, comments *controllers.CommentController, authMW *middlewares.Auth, guards IssueGuards) {
	required := authMW.Required()

	issue := r.Group("/api/issues")
	{
		issue.GET("", authMW.Optional(), issues.GetFeed)
		issue.POST("", required, guards.RateLimit, issues.CreateIssue)
		issue.GET("/mine", required, issues.GetMyIssues)
		issue.GET("/map", issues.GetMapIssues)
		issue.GET("/stats", required, guards.Privileged, issues.GetIssueStats)
		issue.GET("/:id", authMW.Optional(), issues.GetIssue)
		issue.DELETE("/:id", required, issues.DeleteIssue)
		issue.POST("/:id/upvote", required, issues.ToggleUpvote)
		issue.GET("/:id/comments", comments.ListComments)
		issue.POST("/:id/comments", required, comments.CreateComment)
	}

	r.DELETE("/api/comments/:id", required, comments.DeleteComment)
}
