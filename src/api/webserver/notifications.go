package webserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/roadway-app/roadway/src/api/types"
)

type Notifications struct {
	db *gorm.DB
}

func NewNotifications(db *gorm.DB) Notifications {
	return Notifications{db: db}
}

func (n Notifications) List(c *gin.Context) {
	var user types.User
	if err := n.db.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var notifications []types.Notification
	if err := n.db.Where("user_id = ?", user.ID).
		Order("created_at desc").
		Limit(100).
		Find(&notifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, notifications)
}

func (n Notifications) MarkRead(c *gin.Context) {
	res := n.db.Model(&types.Notification{}).
		Where("id = ?", c.Param("id")).
		Update("read", true)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (n Notifications) MarkAllRead(c *gin.Context) {
	if err := n.db.Model(&types.Notification{}).
		Where("user_id = ? AND `read` = ?", c.Param("id"), false).
		Update("read", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
