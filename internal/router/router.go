package router

import (
	"time"

	"github.com/attendlog/internal/config"
	"github.com/attendlog/internal/handler"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(gdb *gorm.DB, cfg config.AppConfig) *gin.Engine {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	r := gin.Default()

	// 前端页面运行在浏览器里，通常与本服务不同源
	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORSOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.MaxAge = 12 * time.Hour
	r.Use(cors.New(corsConfig))

	api := handler.NewAPI(gdb)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	group := r.Group("/api")
	{
		group.GET("/subjects", api.ListSubjects)
		group.POST("/subjects", api.CreateSubject)
		group.GET("/subjects/:id", api.GetSubject)
		group.PUT("/subjects/:id", api.UpdateSubject)
		group.DELETE("/subjects/:id", api.DeleteSubject)

		group.GET("/timetable", api.GetTimetable)
		group.POST("/timetable/:day", api.AssignToDay)
		group.DELETE("/timetable/:day/:subjectId", api.RemoveFromDay)

		group.GET("/attendance/:date", api.GetAttendance)
		group.POST("/attendance/:date", api.MarkAttendance)
		group.POST("/attendance/:date/mark-all", api.MarkAllPresent)
		group.POST("/undo", api.UndoLast)

		group.GET("/stats", api.GetStats)

		group.GET("/settings", api.GetSettings)
		group.PUT("/settings", api.UpdateSetting)

		group.GET("/export", api.ExportData)
		group.POST("/import", api.ImportData)
		group.POST("/clear", api.ClearAllData)
	}

	return r
}
