package webserver

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/roadway-app/roadway/src/api/config"
	"github.com/roadway-app/roadway/src/api/metrics"
	"github.com/roadway-app/roadway/src/api/moderation"
)

// Deps carries the wired moderation core into the router.
type Deps struct {
	Gate   *moderation.Gate
	Review *moderation.Review
	Links  moderation.LinkChecker
}

func attachRoutes(r *gin.Engine, cfg config.Config, db *gorm.DB, rdb *redis.Client, deps Deps) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173", "https://roadway-l7up.onrender.com"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "message": "Roadway API server is running"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	authH := NewAuth(db, []byte(cfg.JWTSecret))
	usersH := NewUsers(db, rdb)
	postsH := NewPosts(db, rdb, deps.Gate)
	adminH := NewAdmin(db, deps.Review, deps.Links)
	coursesH := NewCourses(db)
	notifH := NewNotifications(db)

	submitLimiter := NewRateLimiter(10, time.Minute)

	api := r.Group("/api")
	{
		api.POST("/auth/signup", authH.Signup)
		api.POST("/auth/login", authH.Login)
		api.GET("/auth/user/:uid", authH.GetUser)

		api.GET("/users", usersH.List)
		api.POST("/users", usersH.Create)
		api.GET("/users/:id", usersH.Get)
		api.POST("/users/:id/follow", usersH.Follow)
		api.POST("/users/:id/block", usersH.Block)
		api.POST("/users/:id/communities", usersH.Communities)

		api.GET("/posts", postsH.List)
		api.GET("/posts/:id", postsH.Get)
		api.POST("/posts", RateLimitMiddleware(submitLimiter), postsH.Create)
		api.POST("/posts/:id/like", postsH.Like)
		api.POST("/posts/:id/comments", postsH.AddComment)
		api.POST("/posts/:id/comments/:commentId/like", postsH.LikeComment)
		api.POST("/posts/:id/rate", postsH.Rate)

		api.POST("/posts/:id/approve", adminH.Approve)
		api.POST("/posts/:id/reject", adminH.Reject)
		api.GET("/admin/pending-posts", adminH.ListPending)
		api.POST("/admin/check-link", adminH.CheckLink)

		api.GET("/courses", coursesH.List)
		api.GET("/courses/:id", coursesH.Get)
		api.POST("/courses", coursesH.Create)
		api.POST("/courses/:id/rate", coursesH.Rate)

		api.GET("/notifications/:id", notifH.List)
		api.PUT("/notifications/:id/read", notifH.MarkRead)
		api.PUT("/notifications/:id/read-all", notifH.MarkAllRead)

		// Mutating account/content routes ride the JWT issued at login.
		secured := api.Group("")
		secured.Use(JWTMiddleware([]byte(cfg.JWTSecret)))
		{
			secured.PUT("/users/:id", usersH.Update)
			secured.DELETE("/users/:id", usersH.Delete)
			secured.PUT("/posts/:id", postsH.Update)
			secured.DELETE("/posts/:id", postsH.Delete)
			secured.PUT("/courses/:id", coursesH.Update)
			secured.DELETE("/courses/:id", coursesH.Delete)
		}
	}
}
