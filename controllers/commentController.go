package controllers

import (
	"context"
	"net/http"
	"strings"
	"unicode/utf8"

	"civicsync/i18n"
	"civicsync/middlewares"
	"civicsync/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type CommentStore interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	ListComments(ctx context.Context, issueID string) ([]models.CommentWithAuthor, error)
	GetComment(ctx context.Context, commentID string) (models.Comment, error)
	DeleteComment(ctx context.Context, comment models.Comment) error
}

type CommentController struct {
	responder
	comments CommentStore
	roles    middlewares.RoleResolver
}

func NewCommentController(comments CommentStore, roles middlewares.RoleResolver, messages *i18n.Bundle, logger *zap.Logger) *CommentController {
	return &CommentController{
		responder: newResponder(messages, logger),
		comments:  comments,
		roles:     roles,
	}
}

func (h *CommentController) ListComments(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	comments, err := h.comments.ListComments(ctx, c.Param("id"))
	if err != nil {
		h.storeFailure(c, err, i18n.IssueNotFound, "list comments")
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *CommentController) CreateComment(c *gin.Context) {
	var input struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		h.fail(c, http.StatusBadRequest, i18n.CommentLength)
		return
	}
	text := strings.TrimSpace(input.Text)
	if text == "" || utf8.RuneCountInString(text) > models.MaxCommentLength {
		h.fail(c, http.StatusBadRequest, i18n.CommentLength)
		return
	}

	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		h.fail(c, http.StatusBadRequest, i18n.InvalidID)
		return
	}
	author, err := primitive.ObjectIDFromHex(middlewares.UserID(c))
	if err != nil {
		h.fail(c, http.StatusBadRequest, i18n.InvalidID)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	comment := models.Comment{Issue: issueID, Text: text, CreatedBy: author}
	if err := h.comments.CreateComment(ctx, &comment); err != nil {
		h.storeFailure(c, err, i18n.IssueNotFound, "create comment")
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// DeleteComment lets the author or a privileged user remove a comment.
func (h *CommentController) DeleteComment(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	comment, err := h.comments.GetComment(ctx, c.Param("id"))
	if err != nil {
		h.storeFailure(c, err, i18n.CommentNotFound, "get comment")
		return
	}

	viewer := models.Viewer{UserID: middlewares.UserID(c), Role: models.RoleCitizen}
	if comment.CreatedBy.Hex() != viewer.UserID {
		role, err := h.roles.ResolveRole(ctx, viewer.UserID)
		if err != nil {
			h.logger.Warn("role lookup failed", zap.String("user_id", viewer.UserID), zap.Error(err))
		} else {
			viewer.Role = role
		}
	}
	if !viewer.CanDeleteComment(comment.CreatedBy.Hex()) {
		h.fail(c, http.StatusForbidden, i18n.Forbidden)
		return
	}

	if err := h.comments.DeleteComment(ctx, comment); err != nil {
		h.storeFailure(c, err, i18n.CommentNotFound, "delete comment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": h.messages.T(middlewares.Lang(c), i18n.Deleted)})
}
