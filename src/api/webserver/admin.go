package webserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/roadway-app/roadway/src/api/moderation"
	"github.com/roadway-app/roadway/src/api/types"
)

type Admin struct {
	db     *gorm.DB
	review *moderation.Review
	links  moderation.LinkChecker
}

func NewAdmin(db *gorm.DB, review *moderation.Review, links moderation.LinkChecker) Admin {
	return Admin{db: db, review: review, links: links}
}

// reviewError maps moderation review errors onto HTTP statuses.
func reviewError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, moderation.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
	case errors.Is(err, moderation.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (a Admin) ListPending(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}
	posts, err := a.review.ListPending(c.Request.Context(), userID)
	if err != nil {
		reviewError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (a Admin) Approve(c *gin.Context) {
	var req struct {
		UserID string `json:"userId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}
	post, err := a.review.Approve(c.Request.Context(), c.Param("id"), req.UserID)
	if err != nil {
		reviewError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (a Admin) Reject(c *gin.Context) {
	var req struct {
		UserID string `json:"userId" binding:"required"`
		Reason string `json:"reason" binding:"max=512"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}
	post, err := a.review.Reject(c.Request.Context(), c.Param("id"), req.UserID, req.Reason)
	if err != nil {
		reviewError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// CheckLink lets an admin run the link safety checker against an arbitrary
// URL, e.g. when triaging a reported post.
func (a Admin) CheckLink(c *gin.Context) {
	var req struct {
		UserID string `json:"userId" binding:"required"`
		URL    string `json:"url" binding:"required,max=512"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId and url are required"})
		return
	}

	var user types.User
	if err := a.db.First(&user, "id = ?", req.UserID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if !user.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return
	}

	c.JSON(http.StatusOK, a.links.CheckLink(c.Request.Context(), req.URL))
}
