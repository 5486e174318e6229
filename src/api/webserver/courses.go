package webserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/roadway-app/roadway/src/api/types"
)

type Courses struct {
	db *gorm.DB
}

func NewCourses(db *gorm.DB) Courses {
	return Courses{db: db}
}

func (h Courses) List(c *gin.Context) {
	var courses []types.Course
	if err := h.db.Find(&courses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, courses)
}

func (h Courses) Get(c *gin.Context) {
	var course types.Course
	if err := h.db.First(&course, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h Courses) Create(c *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"required,max=255"`
		Field       string `json:"field" binding:"max=64"`
		Platform    string `json:"platform" binding:"max=128"`
		ImageURL    string `json:"imageUrl" binding:"max=512"`
		Description string `json:"description" binding:"max=5000"`
		OwnerID     string `json:"ownerId" binding:"max=64"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	course := types.Course{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Field:       req.Field,
		Platform:    req.Platform,
		ImageURL:    req.ImageURL,
		Description: req.Description,
		OwnerID:     req.OwnerID,
	}
	if err := h.db.Create(&course).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, course)
}

func (h Courses) Update(c *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"max=255"`
		Field       string `json:"field" binding:"max=64"`
		Platform    string `json:"platform" binding:"max=128"`
		ImageURL    string `json:"imageUrl" binding:"max=512"`
		Description string `json:"description" binding:"max=5000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var course types.Course
	if err := h.db.First(&course, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		return
	}

	updates := map[string]interface{}{}
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Field != "" {
		updates["field"] = req.Field
	}
	if req.Platform != "" {
		updates["platform"] = req.Platform
	}
	if req.ImageURL != "" {
		updates["image_url"] = req.ImageURL
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if len(updates) > 0 {
		if err := h.db.Model(&course).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	h.db.First(&course, "id = ?", course.ID)
	c.JSON(http.StatusOK, course)
}

func (h Courses) Delete(c *gin.Context) {
	var requester types.User
	if err := h.db.First(&requester, "id = ?", c.GetString("uid")).Error; err != nil || !requester.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		return
	}
	if err := h.db.Delete(&types.Course{}, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Course deleted"})
}

// Rate folds a new rating into the course's running average.
func (h Courses) Rate(c *gin.Context) {
	var req struct {
		Rating *float64 `json:"rating" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating is required"})
		return
	}
	if *req.Rating < 1 || *req.Rating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 1 and 5"})
		return
	}

	var course types.Course
	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&course, "id = ?", c.Param("id")).Error; err != nil {
			return err
		}
		total := course.Rating*float64(course.RatingCount) + *req.Rating
		course.RatingCount++
		course.Rating = total / float64(course.RatingCount)
		return tx.Model(&course).Updates(map[string]interface{}{
			"rating":       course.Rating,
			"rating_count": course.RatingCount,
		}).Error
	})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		return
	}
	c.JSON(http.StatusOK, course)
}
