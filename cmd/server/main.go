package main

import (
	"log"

	"github.com/attendlog/internal/config"
	"github.com/attendlog/internal/db"
	"github.com/attendlog/internal/router"
	"github.com/joho/godotenv"
)

func main() {
	// .env 不存在时静默跳过
	_ = godotenv.Load()

	cfg := config.Load()

	// 初始化数据库；持久化介质不可用时降级到内存模式继续运行
	gdb, err := db.Init(cfg.DatabasePath)
	if err != nil {
		log.Printf("storage unavailable (%v), falling back to in-memory mode; data will not persist", err)
		gdb, err = db.InitMemory()
		if err != nil {
			log.Fatalf("failed to initialize database: %v", err)
		}
	}

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(gdb, cfg)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
