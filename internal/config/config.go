package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr   string   `yaml:"listen_addr"`
	Port         string   `yaml:"port"`
	DatabasePath string   `yaml:"database_path"`
	GinMode      string   `yaml:"gin_mode"`
	CORSOrigins  []string `yaml:"cors_origins"`
}

// Load 加载应用配置：先读取 CONFIG_PATH 指向的 YAML 文件（可选），
// 再用环境变量覆盖，缺失项回落到安全的默认值。
func Load() AppConfig {
	var cfg AppConfig

	if path := strings.TrimSpace(os.Getenv("CONFIG_PATH")); path != "" {
		if data, err := os.ReadFile(path); err == nil {
			// 文件损坏时忽略内容，继续走环境变量和默认值
			_ = yaml.Unmarshal(data, &cfg)
		}
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Port = port
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	if listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR")); listenAddr != "" {
		cfg.ListenAddr = listenAddr
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = fmt.Sprintf(":%s", cfg.Port)
	}

	if databasePath := strings.TrimSpace(os.Getenv("DATABASE_PATH")); databasePath != "" {
		cfg.DatabasePath = databasePath
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "attendlog.db"
	}

	if ginMode := strings.TrimSpace(os.Getenv("GIN_MODE")); ginMode != "" {
		cfg.GinMode = ginMode
	}
	if cfg.GinMode == "" {
		cfg.GinMode = "release"
	}

	if origins := strings.TrimSpace(os.Getenv("CORS_ORIGINS")); origins != "" {
		cfg.CORSOrigins = splitOrigins(origins)
	}

	return cfg
}

func splitOrigins(value string) []string {
	parts := strings.Split(value, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
