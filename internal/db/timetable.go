package db

import "time"

// TimetableSlot 表示课表中某天的一个科目占位
// Day 取值为 7 个小写英文星期名，Day + SubjectID 唯一，避免同一天重复排课
// Position 决定当天科目的展示顺序，不影响统计
type TimetableSlot struct {
	ID        uint   `gorm:"primarykey"`
	Day       string `gorm:"size:9;not null;index:idx_timetable_day_subject,unique"`
	SubjectID string `gorm:"size:36;not null;index:idx_timetable_day_subject,unique"`
	Position  int    `gorm:"not null;default:0"`
	CreatedAt time.Time
}
