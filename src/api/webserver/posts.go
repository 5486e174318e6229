package webserver

import (
	"errors"
	"html"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/roadway-app/roadway/src/api/data"
	"github.com/roadway-app/roadway/src/api/moderation"
	"github.com/roadway-app/roadway/src/api/types"
)

type Posts struct {
	db        *gorm.DB
	rdb       *redis.Client
	gate      *moderation.Gate
	sanitizer *bluemonday.Policy
}

func NewPosts(db *gorm.DB, rdb *redis.Client, gate *moderation.Gate) Posts {
	// Strict sanitizer for review bodies, allowing basic formatting only.
	sanitizer := bluemonday.StrictPolicy()
	sanitizer.AllowElements("p", "br", "strong", "em", "code", "pre", "blockquote")
	sanitizer.AllowElements("ul", "ol", "li")
	sanitizer.AllowAttrs("href").OnElements("a")
	sanitizer.RequireParseableURLs(true)
	sanitizer.AddTargetBlankToFullyQualifiedLinks(true)
	sanitizer.RequireNoFollowOnLinks(true)

	return Posts{db: db, rdb: rdb, gate: gate, sanitizer: sanitizer}
}

// Create admits a candidate post through the moderation gate. A rejection
// is a 400 with the reason and violation categories; nothing is stored in
// that case. An accepted post is stored pending and awaits admin approval.
func (p Posts) Create(c *gin.Context) {
	var req struct {
		AuthorID        string   `json:"author" binding:"required"`
		CourseName      string   `json:"courseName" binding:"required,max=255"`
		Review          string   `json:"review" binding:"required,min=1,max=10000"`
		Rating          int      `json:"rating" binding:"required,min=1,max=5"`
		LinkURL         string   `json:"linkUrl" binding:"omitempty,max=512"`
		Field           string   `json:"field" binding:"max=64"`
		IsCommunityPost bool     `json:"isCommunityPost"`
		ImageURLs       []string `json:"imageUrls" binding:"max=6"`
		RepostOf        string   `json:"repostOf"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req.Review = p.sanitizer.Sanitize(req.Review)
	req.CourseName = html.EscapeString(req.CourseName)
	if !utf8.ValidString(req.Review) || !utf8.ValidString(req.CourseName) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid characters in input"})
		return
	}
	if len(req.Review) < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "review must not be empty"})
		return
	}

	var author types.User
	if err := p.db.First(&author, "id = ?", req.AuthorID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	result, err := p.gate.Admit(c.Request.Context(), moderation.Candidate{
		AuthorID:        req.AuthorID,
		CourseName:      req.CourseName,
		Review:          req.Review,
		Rating:          req.Rating,
		LinkURL:         req.LinkURL,
		Field:           req.Field,
		IsCommunityPost: req.IsCommunityPost,
		ImageURLs:       req.ImageURLs,
		RepostOfID:      req.RepostOf,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if !result.Accepted {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":          "Post rejected",
			"reason":         result.Reason,
			"violationTypes": result.ViolationTypes,
		})
		return
	}

	c.JSON(http.StatusCreated, result.Post)
}

// List returns approved posts, newest first. Admins can include pending
// posts with ?includePending=true&userId=<admin>.
func (p Posts) List(c *gin.Context) {
	statuses := []string{types.PostStatusApproved}
	if c.Query("includePending") == "true" {
		var user types.User
		if err := p.db.First(&user, "id = ?", c.Query("userId")).Error; err == nil && user.IsAdmin {
			statuses = append(statuses, types.PostStatusPending)
		}
	}

	var posts []types.Post
	if err := p.db.Preload("Comments").
		Where("status IN ?", statuses).
		Order("timestamp desc").
		Find(&posts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (p Posts) Get(c *gin.Context) {
	var post types.Post
	if err := p.db.Preload("Comments").First(&post, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	c.JSON(http.StatusOK, post)
}

func (p Posts) Update(c *gin.Context) {
	var req struct {
		Review string `json:"review" binding:"omitempty,min=1,max=10000"`
		Rating int    `json:"rating" binding:"omitempty,min=1,max=5"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, ok := p.ownedPost(c)
	if !ok {
		return
	}

	updates := map[string]interface{}{}
	if req.Review != "" {
		review := p.sanitizer.Sanitize(req.Review)
		// Edits skip re-classification but not the local blocklist.
		if hit := p.gate.Screen(review); hit.Blocked {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  "Post rejected",
				"reason": "Prohibited content detected",
			})
			return
		}
		updates["review"] = review
	}
	if req.Rating != 0 {
		updates["rating"] = req.Rating
	}
	if len(updates) > 0 {
		if err := p.db.Model(post).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	p.db.First(post, "id = ?", post.ID)
	c.JSON(http.StatusOK, post)
}

func (p Posts) Delete(c *gin.Context) {
	post, ok := p.ownedPost(c)
	if !ok {
		return
	}
	if err := p.db.Delete(post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Post deleted"})
}

// ownedPost loads the post and checks the JWT subject is its author or an
// admin. Writes the error response itself when the check fails.
func (p Posts) ownedPost(c *gin.Context) (*types.Post, bool) {
	var post types.Post
	if err := p.db.First(&post, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return nil, false
	}
	uid := c.GetString("uid")
	if uid != post.AuthorID {
		var user types.User
		if err := p.db.First(&user, "id = ?", uid).Error; err != nil || !user.IsAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "not the author of this post"})
			return nil, false
		}
	}
	return &post, true
}

// Like toggles a like by the given user and notifies the author.
func (p Posts) Like(c *gin.Context) {
	var req struct {
		UserID string `json:"userId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	var post types.Post
	err := p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, "id = ?", c.Param("id")).Error; err != nil {
			return err
		}
		if post.LikedBy.Contains(req.UserID) {
			post.LikedBy = post.LikedBy.Without(req.UserID)
			post.Likes--
		} else {
			post.LikedBy = append(post.LikedBy, req.UserID)
			post.Likes++
		}
		return tx.Model(&post).Updates(map[string]interface{}{
			"liked_by": post.LikedBy,
			"likes":    post.Likes,
		}).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if post.LikedBy.Contains(req.UserID) && post.AuthorID != req.UserID {
		_ = data.PublishNotification(c.Request.Context(), p.rdb, types.NotificationLike, post.AuthorID, req.UserID, post.ID)
	}

	c.JSON(http.StatusOK, post)
}

func (p Posts) AddComment(c *gin.Context) {
	var req struct {
		AuthorID string `json:"authorId" binding:"required"`
		Text     string `json:"text" binding:"required,min=1,max=2000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "authorId and text are required"})
		return
	}

	var post types.Post
	if err := p.db.First(&post, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	comment := types.Comment{
		ID:        uuid.NewString(),
		PostID:    post.ID,
		AuthorID:  req.AuthorID,
		Text:      p.sanitizer.Sanitize(req.Text),
		LikedBy:   types.StringList{},
		CreatedAt: time.Now(),
	}
	if err := p.db.Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if post.AuthorID != req.AuthorID {
		_ = data.PublishNotification(c.Request.Context(), p.rdb, types.NotificationComment, post.AuthorID, req.AuthorID, post.ID)
	}

	p.db.Preload("Comments").First(&post, "id = ?", post.ID)
	c.JSON(http.StatusOK, post)
}

func (p Posts) LikeComment(c *gin.Context) {
	var req struct {
		UserID string `json:"userId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	var comment types.Comment
	err := p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&comment, "id = ? AND post_id = ?", c.Param("commentId"), c.Param("id")).Error; err != nil {
			return err
		}
		if comment.LikedBy.Contains(req.UserID) {
			comment.LikedBy = comment.LikedBy.Without(req.UserID)
			comment.Likes--
		} else {
			comment.LikedBy = append(comment.LikedBy, req.UserID)
			comment.Likes++
		}
		return tx.Model(&comment).Updates(map[string]interface{}{
			"liked_by": comment.LikedBy,
			"likes":    comment.Likes,
		}).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var post types.Post
	p.db.Preload("Comments").First(&post, "id = ?", c.Param("id"))
	c.JSON(http.StatusOK, post)
}

func (p Posts) Rate(c *gin.Context) {
	var req struct {
		Rating *int `json:"rating" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating is required"})
		return
	}
	if *req.Rating < 1 || *req.Rating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 1 and 5"})
		return
	}

	var post types.Post
	if err := p.db.First(&post, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	if err := p.db.Model(&post).Update("rating", *req.Rating).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	p.db.First(&post, "id = ?", post.ID)
	c.JSON(http.StatusOK, post)
}
