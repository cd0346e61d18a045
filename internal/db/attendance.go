package db

import "time"

// 出勤状态取值
const (
	StatusAttended  = "attended"
	StatusMissed    = "missed"
	StatusCancelled = "cancelled"
)

// AttendanceRecord 记录某科目在某天的出勤结果
// EntryDate 使用 YYYY-MM-DD 文本，EntryDate + SubjectID 唯一索引保证幂等：
// 同一天重复标记只会更新已有记录，不会追加
// Seq 为全局递增的动作序号，创建和改写都会前移，用于定位"最近一次动作"供撤销
// MarkedAt 存储该次标记发生的时刻
type AttendanceRecord struct {
	ID        uint   `gorm:"primarykey"`
	EntryDate string `gorm:"size:10;not null;index;index:idx_attendance_date_subject,unique"`
	SubjectID string `gorm:"size:36;not null;index:idx_attendance_date_subject,unique"`
	Status    string `gorm:"size:10;not null"`
	Seq       int64  `gorm:"not null;index"`
	MarkedAt  time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
