package webserver

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/roadway-app/roadway/src/api/types"
)

type Auth struct {
	db        *gorm.DB
	jwtSecret []byte
}

func NewAuth(db *gorm.DB, secret []byte) Auth {
	return Auth{db: db, jwtSecret: secret}
}

func (a Auth) Signup(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required,email,max=255"`
		Password    string `json:"password" binding:"required,min=8,max=128"`
		DisplayName string `json:"displayName" binding:"max=128"`
		StudyYear   int    `json:"studyYear" binding:"min=0,max=10"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	name := req.DisplayName
	if name == "" {
		name = strings.Split(req.Email, "@")[0]
	}

	user := types.User{
		ID:                uuid.NewString(),
		Email:             strings.ToLower(req.Email),
		PasswordHash:      string(hash),
		Name:              name,
		Username:          name,
		StudyYear:         req.StudyYear,
		IsActive:          true,
		FollowingIDs:      types.StringList{},
		BlockedUserIDs:    types.StringList{},
		JoinedCommunities: types.StringList{},
	}
	if err := a.db.Create(&user).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email already registered"})
		return
	}

	token, err := issueJWT(user.ID, a.jwtSecret)
	if err != nil {
		log.Printf("auth: issue token for %s: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"user":    user,
		"token":   token,
	})
}

func (a Auth) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	var user types.User
	if err := a.db.First(&user, "email = ?", strings.ToLower(req.Email)).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := issueJWT(user.ID, a.jwtSecret)
	if err != nil {
		log.Printf("auth: issue token for %s: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
		"token":   token,
	})
}

func (a Auth) GetUser(c *gin.Context) {
	var user types.User
	if err := a.db.First(&user, "id = ?", c.Param("uid")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"uid":         user.ID,
		"email":       user.Email,
		"displayName": user.Name,
	})
}
