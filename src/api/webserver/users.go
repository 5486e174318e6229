package webserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/roadway-app/roadway/src/api/data"
	"github.com/roadway-app/roadway/src/api/types"
)

type Users struct {
	db  *gorm.DB
	rdb *redis.Client
}

func NewUsers(db *gorm.DB, rdb *redis.Client) Users {
	return Users{db: db, rdb: rdb}
}

func (u Users) List(c *gin.Context) {
	var users []types.User
	if err := u.db.Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, users)
}

// Create inserts a user profile directly, without the signup flow. Used by
// back-office tooling and account imports; such users log in only after a
// password reset sets a hash.
func (u Users) Create(c *gin.Context) {
	var req struct {
		ID             string `json:"id" binding:"required,max=64"`
		Email          string `json:"email" binding:"required,email,max=255"`
		Name           string `json:"name" binding:"max=128"`
		Username       string `json:"username" binding:"max=64"`
		Specialization string `json:"specialization" binding:"max=128"`
		StudyYear      int    `json:"studyYear" binding:"min=0,max=10"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := types.User{
		ID:                req.ID,
		Email:             strings.ToLower(req.Email),
		Name:              req.Name,
		Username:          req.Username,
		Specialization:    req.Specialization,
		StudyYear:         req.StudyYear,
		IsActive:          true,
		FollowingIDs:      types.StringList{},
		BlockedUserIDs:    types.StringList{},
		JoinedCommunities: types.StringList{},
	}
	if err := u.db.Create(&user).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user already exists"})
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (u Users) Get(c *gin.Context) {
	var user types.User
	if err := u.db.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (u Users) Update(c *gin.Context) {
	if c.GetString("uid") != c.Param("id") {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot update another user"})
		return
	}

	var req struct {
		Name           string `json:"name" binding:"max=128"`
		Username       string `json:"username" binding:"max=64"`
		AvatarURL      string `json:"avatarUrl" binding:"max=512"`
		Specialization string `json:"specialization" binding:"max=128"`
		University     string `json:"university" binding:"max=128"`
		StudyYear      int    `json:"studyYear" binding:"min=0,max=10"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Username != "" {
		updates["username"] = req.Username
	}
	if req.AvatarURL != "" {
		updates["avatar_url"] = req.AvatarURL
	}
	if req.Specialization != "" {
		updates["specialization"] = req.Specialization
	}
	if req.University != "" {
		updates["university"] = req.University
	}
	if req.StudyYear != 0 {
		updates["study_year"] = req.StudyYear
	}

	var user types.User
	if err := u.db.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if len(updates) > 0 {
		if err := u.db.Model(&user).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	u.db.First(&user, "id = ?", user.ID)
	c.JSON(http.StatusOK, user)
}

func (u Users) Delete(c *gin.Context) {
	var requester types.User
	if err := u.db.First(&requester, "id = ?", c.GetString("uid")).Error; err != nil || !requester.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return
	}
	if err := u.db.Delete(&types.User{}, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User deleted"})
}

// Follow toggles the follow relationship between the requesting user and
// the target. Counters move atomically; the following list rides on the
// requesting user's record.
func (u Users) Follow(c *gin.Context) {
	targetID := c.Param("id")
	var req struct {
		UserID string `json:"userId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}
	if req.UserID == targetID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot follow yourself"})
		return
	}

	var current, target types.User
	var wasFollowing bool
	err := u.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&current, "id = ?", req.UserID).Error; err != nil {
			return err
		}
		if err := tx.First(&target, "id = ?", targetID).Error; err != nil {
			return err
		}

		wasFollowing = current.FollowingIDs.Contains(targetID)
		if wasFollowing {
			current.FollowingIDs = current.FollowingIDs.Without(targetID)
		} else {
			current.FollowingIDs = append(current.FollowingIDs, targetID)
		}
		delta := 1
		if wasFollowing {
			delta = -1
		}

		if err := tx.Model(&current).Updates(map[string]interface{}{
			"following_ids": current.FollowingIDs,
			"following":     gorm.Expr("following + ?", delta),
		}).Error; err != nil {
			return err
		}
		return tx.Model(&target).
			Update("followers", gorm.Expr("followers + ?", delta)).Error
	})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if !wasFollowing {
		_ = data.PublishNotification(c.Request.Context(), u.rdb, types.NotificationFollow, targetID, req.UserID, "")
	}

	u.db.First(&current, "id = ?", req.UserID)
	u.db.First(&target, "id = ?", targetID)
	c.JSON(http.StatusOK, gin.H{"currentUser": current, "targetUser": target})
}

func (u Users) Block(c *gin.Context) {
	var req struct {
		UserID string `json:"userId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	var current types.User
	if err := u.db.First(&current, "id = ?", req.UserID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if !current.BlockedUserIDs.Contains(c.Param("id")) {
		current.BlockedUserIDs = append(current.BlockedUserIDs, c.Param("id"))
		if err := u.db.Model(&current).Update("blocked_user_ids", current.BlockedUserIDs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, current)
}

func (u Users) Communities(c *gin.Context) {
	var req struct {
		Field  string `json:"field" binding:"required,max=64"`
		Action string `json:"action" binding:"required,oneof=join leave"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "field and action are required"})
		return
	}

	var user types.User
	if err := u.db.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	switch req.Action {
	case "join":
		if !user.JoinedCommunities.Contains(req.Field) {
			user.JoinedCommunities = append(user.JoinedCommunities, req.Field)
		}
	case "leave":
		user.JoinedCommunities = user.JoinedCommunities.Without(req.Field)
	}
	if err := u.db.Model(&user).Update("joined_communities", user.JoinedCommunities).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, user)
}
