package db

import "time"

// 设置项键名
const (
	SettingKeyVersion             = "version"
	SettingKeyDefaultTarget       = "default_target"
	SettingKeyTheme               = "theme"
	SettingKeyFirstRun            = "first_run"
	SettingKeyEnableNotifications = "enable_notifications"
	SettingKeySwipeSensitivity    = "swipe_sensitivity"
)

// Setting 以键值对形式存储应用配置，核心逻辑只读取 default_target
type Setting struct {
	Key       string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"size:255"`
	UpdatedAt time.Time
}

// Meta 为单行表，记录数据集的创建时间、最近修改时间与累计写操作数
// 每次写操作都会更新它，导出文档中原样携带
type Meta struct {
	ID              uint `gorm:"primarykey"`
	DataCreatedAt   time.Time
	LastModified    time.Time
	TotalOperations int64 `gorm:"not null;default:0"`
}
