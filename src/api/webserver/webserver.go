package webserver

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/roadway-app/roadway/src/api/config"
)

func New(cfg config.Config, db *gorm.DB, rdb *redis.Client, deps Deps) *gin.Engine {
	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery())
	attachRoutes(g, cfg, db, rdb, deps)
	return g
}
