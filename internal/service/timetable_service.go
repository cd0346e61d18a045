package service

import (
	"errors"
	"fmt"

	"github.com/attendlog/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrInvalidDay 当星期键不在 7 个小写英文星期名内时返回
	ErrInvalidDay = errors.New("invalid day key")
	// ErrAlreadyScheduled 当科目已经排在该天时返回
	ErrAlreadyScheduled = errors.New("subject already scheduled on this day")
)

// TimetableService 维护星期到科目的周课表
// 同一科目可排在多天，但同一天不可重复；顺序仅影响展示
type TimetableService struct {
	db *gorm.DB
}

// NewTimetableService 构造 TimetableService
func NewTimetableService(gdb *gorm.DB) *TimetableService {
	return &TimetableService{db: gdb}
}

// AssignToDay 将科目排入某天，追加到当天末尾
func (s *TimetableService) AssignToDay(day, subjectID string) error {
	key := NormalizeDay(day)
	if key == "" {
		return ErrInvalidDay
	}

	var count int64
	if err := s.db.Model(&db.Subject{}).Where("id = ?", subjectID).Count(&count).Error; err != nil {
		return fmt.Errorf("check subject: %w", err)
	}
	if count == 0 {
		return ErrSubjectNotFound
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&db.TimetableSlot{}).
			Where("day = ? AND subject_id = ?", key, subjectID).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("check slot: %w", err)
		}
		if existing > 0 {
			return ErrAlreadyScheduled
		}

		var maxPosition int64
		if err := tx.Model(&db.TimetableSlot{}).
			Where("day = ?", key).
			Select("COALESCE(MAX(position), 0)").
			Scan(&maxPosition).Error; err != nil {
			return fmt.Errorf("next position: %w", err)
		}

		slot := db.TimetableSlot{Day: key, SubjectID: subjectID, Position: int(maxPosition) + 1}
		if err := tx.Create(&slot).Error; err != nil {
			return fmt.Errorf("create slot: %w", err)
		}
		return touchMeta(tx)
	})
}

// RemoveFromDay 将科目移出某天，不存在时为无操作
func (s *TimetableService) RemoveFromDay(day, subjectID string) error {
	key := NormalizeDay(day)
	if key == "" {
		return ErrInvalidDay
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("day = ? AND subject_id = ?", key, subjectID).Delete(&db.TimetableSlot{})
		if result.Error != nil {
			return fmt.Errorf("remove slot: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil
		}
		return touchMeta(tx)
	})
}

// SubjectsForDay 按排课顺序返回某天的科目
// 指向已删除科目的占位在读取时静默过滤，属于约定的引用修复而非错误
func (s *TimetableService) SubjectsForDay(day string) ([]db.Subject, error) {
	key := NormalizeDay(day)
	if key == "" {
		return nil, ErrInvalidDay
	}

	var subjects []db.Subject
	if err := s.db.Model(&db.Subject{}).
		Joins("JOIN timetable_slots ON timetable_slots.subject_id = subjects.id").
		Where("timetable_slots.day = ?", key).
		Order("timetable_slots.position ASC").
		Find(&subjects).Error; err != nil {
		return nil, fmt.Errorf("subjects for day: %w", err)
	}
	return subjects, nil
}

// Full 返回完整课表，7 个星期键总是存在
func (s *TimetableService) Full() (map[string][]string, error) {
	var slots []db.TimetableSlot
	if err := s.db.
		Joins("JOIN subjects ON subjects.id = timetable_slots.subject_id").
		Order("timetable_slots.day ASC, timetable_slots.position ASC").
		Find(&slots).Error; err != nil {
		return nil, fmt.Errorf("load timetable: %w", err)
	}

	timetable := make(map[string][]string, len(WeekdayKeys))
	for _, key := range WeekdayKeys {
		timetable[key] = []string{}
	}
	for _, slot := range slots {
		timetable[slot.Day] = append(timetable[slot.Day], slot.SubjectID)
	}
	return timetable, nil
}
