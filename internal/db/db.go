package db

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DB 是一个全局的数据库连接实例
var DB *gorm.DB

// Init 初始化数据库连接并执行自动迁移。
// databasePath 为空时将回退到默认值 attendlog.db。
func Init(databasePath string) (*gorm.DB, error) {
	path := strings.TrimSpace(databasePath)
	if path == "" {
		path = "attendlog.db"
	}

	if err := ensureParentDir(path); err != nil {
		return nil, err
	}

	return open(sqlite.Open(path))
}

// InitMemory 打开一个纯内存数据库。
// 持久化介质不可用时由调用方降级到该模式，进程退出后数据丢失。
func InitMemory() (*gorm.DB, error) {
	return open(sqlite.Open("file::memory:"))
}

func open(dialector gorm.Dialector) (*gorm.DB, error) {
	gdb, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	// 自动迁移模式，为核心模型创建表
	if err = gdb.AutoMigrate(
		&Subject{},
		&TimetableSlot{},
		&AttendanceRecord{},
		&Setting{},
		&Meta{},
	); err != nil {
		return nil, err
	}

	DB = gdb
	return gdb, nil
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
