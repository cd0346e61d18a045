package db

import "time"

// Subject 定义了被跟踪出勤的科目模型
// ID 为创建时分配的 UUID，之后不可变更
// Name 在忽略大小写意义下唯一，NOCASE 唯一索引在并发写入下兜底服务层校验
// Attended/Total 是从出勤流水派生的聚合缓存，任何时刻满足 Attended <= Total
// Total 只统计 attended + missed，cancelled 不计入分母
// Target 为期望出勤率（0-100），Color 仅用于前端展示
type Subject struct {
	ID        string `gorm:"primaryKey;size:36"`
	Name      string `gorm:"type:text collate nocase;not null;uniqueIndex"`
	Attended  int    `gorm:"not null;default:0"`
	Total     int    `gorm:"not null;default:0"`
	Target    int    `gorm:"not null;default:75"`
	Color     string `gorm:"size:16"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
