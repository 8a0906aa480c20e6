package controllers

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"civicsync/feed"
	"civicsync/geo"
	"civicsync/i18n"
	"civicsync/middlewares"
	"civicsync/models"
	"civicsync/storage"
	"civicsync/store"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	maxTitleLength = 200
	mapIssueLimit  = 50
	// summaries for a whole feed can take several generator round trips
	feedTimeout   = 60 * time.Second
	uploadTimeout = 60 * time.Second
)

type IssueStore interface {
	GetIssue(ctx context.Context, issueID string) (models.IssueWithAuthor, error)
	CreateIssue(ctx context.Context, issue *models.Issue) error
	ListIssuesByCreator(ctx context.Context, userID string) ([]models.IssueWithAuthor, error)
	RecentLocatedIssues(ctx context.Context, limit int64) ([]models.Issue, error)
	DeleteIssue(ctx context.Context, issueID string) error
	HasUpvoted(ctx context.Context, issueID, userID string) (bool, error)
	UpvotedIssueIDs(ctx context.Context, userID string) ([]string, error)
	Stats(ctx context.Context) (store.IssueStats, error)
}

type ImageStore interface {
	Upload(ctx context.Context, userID, filename string, r io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, paths []string) error
	PublicURL(path string) string
}

type Geocoder interface {
	Address(ctx context.Context, c geo.Coordinate) string
}

type IssueControllerOptions struct {
	Issues     IssueStore
	Loader     *feed.Loader
	Summarizer *feed.Summarizer
	Toggler    *feed.Toggler
	Images     ImageStore
	Geocoder   Geocoder
	Messages   *i18n.Bundle
	Logger     *zap.Logger
}

type IssueController struct {
	responder
	issues     IssueStore
	loader     *feed.Loader
	summarizer *feed.Summarizer
	toggler    *feed.Toggler
	images     ImageStore
	geocoder   Geocoder
}

func NewIssueController(opts IssueControllerOptions) *IssueController {
	return &IssueController{
		responder:  newResponder(opts.Messages, opts.Logger),
		issues:     opts.Issues,
		loader:     opts.Loader,
		summarizer: opts.Summarizer,
		toggler:    opts.Toggler,
		images:     opts.Images,
		geocoder:   opts.Geocoder,
	}
}

type issueResponse struct {
	models.IssueWithAuthor
	ImageURLs      []string `json:"imageUrls"`
	UserHasUpvoted bool     `json:"userHasUpvoted"`
}

func (h *IssueController) present(issue models.IssueWithAuthor, upvoted bool) issueResponse {
	urls := make([]string, 0, len(issue.Images))
	for _, path := range issue.Images {
		if h.images != nil {
			urls = append(urls, h.images.PublicURL(path))
		} else {
			urls = append(urls, path)
		}
	}
	return issueResponse{IssueWithAuthor: issue, ImageURLs: urls, UserHasUpvoted: upvoted}
}

// GetFeed returns every issue ranked for the caller.
func (h *IssueController) GetFeed(c *gin.Context) {
	at, err := parseLocation(c.Query("lat"), c.Query("lng"))
	if err != nil {
		h.fail(c, http.StatusBadRequest, i18n.InvalidLocation)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), feedTimeout)
	defer cancel()

	snap, err := h.loader.Load(ctx, middlewares.UserID(c), at)
	if err != nil {
		h.logger.Error("load feed", zap.Error(err))
		h.fail(c, http.StatusInternalServerError, i18n.FeedUnavailable)
		return
	}

	issues := make([]issueResponse, 0, len(snap.Issues))
	for _, issue := range snap.Issues {
		issues = append(issues, h.present(issue, snap.HasUpvoted(issue.Key())))
	}

	c.JSON(http.StatusOK, gin.H{
		"issues":  issues,
		"upvoted": snap.UpvotedIDs(),
		"role":    snap.Viewer.Role,
		"located": snap.Location != nil,
	})
}

// GetIssue retrieves an issue by its ID with the caller's upvote state.
func (h *IssueController) GetIssue(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout+feedTimeout)
	defer cancel()

	issueID := c.Param("id")
	issue, err := h.issues.GetIssue(ctx, issueID)
	if err != nil {
		h.storeFailure(c, err, i18n.IssueNotFound, "get issue")
		return
	}

	upvoted := false
	userID := middlewares.UserID(c)
	if userID != "" {
		if upvoted, err = h.issues.HasUpvoted(ctx, issueID, userID); err != nil {
			h.logger.Warn("upvote lookup failed", zap.String("issue_id", issueID), zap.Error(err))
		}
	}

	if h.summarizer != nil && h.loader != nil {
		viewer := h.loader.ResolveViewer(ctx, userID)
		if viewer.CanViewSummaries() {
			issue = h.summarizer.NewCache().EnsureSummary(ctx, issue)
		}
	}

	c.JSON(http.StatusOK, h.present(issue, upvoted))
}

// GetMyIssues lists the caller's issues, newest first.
func (h *IssueController) GetMyIssues(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	userID := middlewares.UserID(c)
	issues, err := h.issues.ListIssuesByCreator(ctx, userID)
	if err != nil {
		h.storeFailure(c, err, i18n.IssueNotFound, "list user issues")
		return
	}

	upvoted := make(map[string]bool)
	if ids, err := h.issues.UpvotedIssueIDs(ctx, userID); err != nil {
		h.logger.Warn("upvote lookup failed", zap.String("user_id", userID), zap.Error(err))
	} else {
		for _, id := range ids {
			upvoted[id] = true
		}
	}

	out := make([]issueResponse, 0, len(issues))
	for _, issue := range issues {
		out = append(out, h.present(issue, upvoted[issue.Key()]))
	}
	c.JSON(http.StatusOK, out)
}

// GetMapIssues returns the most recent issues that have coordinates.
func (h *IssueController) GetMapIssues(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	issues, err := h.issues.RecentLocatedIssues(ctx, mapIssueLimit)
	if err != nil {
		h.storeFailure(c, err, i18n.IssueNotFound, "list located issues")
		return
	}
	c.JSON(http.StatusOK, issues)
}

// CreateIssue accepts a multipart form with a title, an optional location and up to three images.
func (h *IssueController) CreateIssue(c *gin.Context) {
	userID := middlewares.UserID(c)
	createdBy, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		h.fail(c, http.StatusBadRequest, i18n.InvalidID)
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" || utf8.RuneCountInString(title) > maxTitleLength {
		h.fail(c, http.StatusBadRequest, i18n.TitleRequired)
		return
	}

	at, err := parseLocation(c.PostForm("latitude"), c.PostForm("longitude"))
	if err != nil {
		h.fail(c, http.StatusBadRequest, i18n.InvalidLocation)
		return
	}

	files, err := formImages(c)
	if err != nil {
		h.fail(c, http.StatusBadRequest, i18n.InvalidRequest)
		return
	}
	if len(files) > models.MaxIssueImages {
		h.fail(c, http.StatusBadRequest, i18n.TooManyImages)
		return
	}
	for _, file := range files {
		if !storage.AllowedContentType(file.Header.Get("Content-Type")) {
			h.fail(c, http.StatusBadRequest, i18n.UnsupportedImage)
			return
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), uploadTimeout)
	defer cancel()

	issue := models.Issue{Title: title, CreatedBy: createdBy}
	if at != nil {
		lat, lng := at.Latitude, at.Longitude
		issue.Latitude, issue.Longitude = &lat, &lng
	}
	address := strings.TrimSpace(c.PostForm("address"))
	if address == "" && at != nil {
		if h.geocoder != nil {
			address = h.geocoder.Address(ctx, *at)
		} else {
			address = at.String()
		}
	}
	if address != "" {
		issue.Address = &address
	}

	paths, err := h.upload(ctx, userID, files)
	if err != nil {
		h.logger.Error("upload images", zap.String("user_id", userID), zap.Error(err))
		h.fail(c, http.StatusInternalServerError, i18n.SomethingWentWrong)
		return
	}
	issue.Images = paths

	if err := h.issues.CreateIssue(ctx, &issue); err != nil {
		h.discard(paths)
		h.storeFailure(c, err, i18n.IssueNotFound, "create issue")
		return
	}

	c.JSON(http.StatusCreated, h.present(models.IssueWithAuthor{
		Issue:  issue,
		Author: models.Author{ID: createdBy},
	}, false))
}

func formImages(c *gin.Context) ([]*multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return form.File["images"], nil
}

func (h *IssueController) upload(ctx context.Context, userID string, files []*multipart.FileHeader) ([]string, error) {
	paths := make([]string, 0, len(files))
	for _, file := range files {
		f, err := file.Open()
		if err != nil {
			h.discard(paths)
			return nil, err
		}
		path, err := h.images.Upload(ctx, userID, file.Filename, f, file.Size, file.Header.Get("Content-Type"))
		f.Close()
		if err != nil {
			h.discard(paths)
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// discard removes already uploaded images after a failed create.
func (h *IssueController) discard(paths []string) {
	if len(paths) == 0 || h.images == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	if err := h.images.Remove(ctx, paths); err != nil {
		h.logger.Warn("remove orphaned images", zap.Strings("paths", paths), zap.Error(err))
	}
}

// DeleteIssue removes an issue. Only its creator or a privileged user may do so.
func (h *IssueController) DeleteIssue(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	issueID := c.Param("id")
	issue, err := h.issues.GetIssue(ctx, issueID)
	if err != nil {
		h.storeFailure(c, err, i18n.IssueNotFound, "get issue")
		return
	}

	viewer := h.loader.ResolveViewer(ctx, middlewares.UserID(c))
	if issue.CreatedBy.Hex() != viewer.UserID && !viewer.Role.Privileged() {
		h.fail(c, http.StatusForbidden, i18n.Forbidden)
		return
	}

	if err := h.issues.DeleteIssue(ctx, issueID); err != nil {
		h.storeFailure(c, err, i18n.IssueNotFound, "delete issue")
		return
	}
	h.discard(issue.Images)

	c.JSON(http.StatusOK, gin.H{"message": h.messages.T(middlewares.Lang(c), i18n.Deleted)})
}

// GetIssueStats returns dashboard numbers for officials.
func (h *IssueController) GetIssueStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	stats, err := h.issues.Stats(ctx)
	if err != nil {
		h.storeFailure(c, err, i18n.IssueNotFound, "issue stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ToggleUpvote flips the caller's upvote. The optional body carries the
// state the client last saw; without it the stored state is used.
func (h *IssueController) ToggleUpvote(c *gin.Context) {
	var input struct {
		Upvoted *bool `json:"upvoted"`
	}
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		h.fail(c, http.StatusBadRequest, i18n.InvalidRequest)
		return
	}

	issueID := c.Param("id")
	if !primitive.IsValidObjectID(issueID) {
		h.fail(c, http.StatusBadRequest, i18n.InvalidID)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	userID := middlewares.UserID(c)
	var upvoted bool
	if input.Upvoted != nil {
		upvoted = *input.Upvoted
	} else {
		var err error
		if upvoted, err = h.issues.HasUpvoted(ctx, issueID, userID); err != nil {
			h.storeFailure(c, err, i18n.IssueNotFound, "check upvote")
			return
		}
	}

	res, err := h.toggler.Toggle(ctx, issueID, userID, upvoted)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{
				"error":   h.messages.T(middlewares.Lang(c), i18n.AlreadyUpvoted),
				"upvoted": true,
			})
			return
		}
		h.storeFailure(c, err, i18n.IssueNotFound, "toggle upvote")
		return
	}
	c.JSON(http.StatusOK, res)
}
