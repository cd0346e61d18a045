package service

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/attendlog/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrInvalidStatus 当出勤状态不在 attended/missed/cancelled 内时返回
	ErrInvalidStatus = errors.New("invalid attendance status")
	// ErrInvalidDate 当日期不是合法的 YYYY-MM-DD 时返回
	ErrInvalidDate = errors.New("invalid date")
)

// LedgerService 负责出勤流水的记录、改写与撤销
// 科目上的 Attended/Total 计数由它作为副作用维护：
// 状态的计数效果为 attended=(1,1)、missed=(0,1)、cancelled=(0,0)，
// 改写记录时按新旧效果之差调整计数，保证聚合始终可由流水重放得出
type LedgerService struct {
	db *gorm.DB
}

// AttendanceEntry 为单条出勤记录的读取视图
type AttendanceEntry struct {
	SubjectID string    `json:"subjectId"`
	Status    string    `json:"status"`
	MarkedAt  time.Time `json:"timestamp"`
}

// DateEntry 汇总某个日期的全部出勤记录，按标记先后排列
type DateEntry struct {
	Date    string            `json:"date"`
	Entries []AttendanceEntry `json:"entries"`
}

// NewLedgerService 构造 LedgerService
func NewLedgerService(gdb *gorm.DB) *LedgerService {
	return &LedgerService{db: gdb}
}

// statusEffect 返回某状态对 (attended, total) 计数的贡献
func statusEffect(status string) (attended, total int) {
	switch status {
	case db.StatusAttended:
		return 1, 1
	case db.StatusMissed:
		return 0, 1
	default:
		return 0, 0
	}
}

func validStatus(status string) bool {
	switch status {
	case db.StatusAttended, db.StatusMissed, db.StatusCancelled:
		return true
	}
	return false
}

// Mark 记录或改写某科目在某天的出勤结果
// 每个 (日期, 科目) 至多一条记录：重复标记同一状态为无操作，
// 不同状态则原地改写并按差值调整科目计数
func (s *LedgerService) Mark(date, subjectID, status string) error {
	if !validStatus(status) {
		return ErrInvalidStatus
	}
	day, err := ParseDate(date)
	if err != nil {
		return ErrInvalidDate
	}
	normalized := FormatDate(day)

	return s.db.Transaction(func(tx *gorm.DB) error {
		var subject db.Subject
		if err := tx.First(&subject, "id = ?", subjectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubjectNotFound
			}
			return fmt.Errorf("load subject: %w", err)
		}

		var record db.AttendanceRecord
		err := tx.Where("entry_date = ? AND subject_id = ?", normalized, subjectID).First(&record).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			seq, err := nextSeq(tx)
			if err != nil {
				return err
			}
			record = db.AttendanceRecord{
				EntryDate: normalized,
				SubjectID: subjectID,
				Status:    status,
				Seq:       seq,
				MarkedAt:  time.Now(),
			}
			if err := tx.Create(&record).Error; err != nil {
				return fmt.Errorf("create attendance record: %w", err)
			}

			deltaAttended, deltaTotal := statusEffect(status)
			if err := applyCounterDelta(tx, &subject, deltaAttended, deltaTotal); err != nil {
				return err
			}
		case err != nil:
			return fmt.Errorf("load attendance record: %w", err)
		default:
			if record.Status == status {
				// 幂等：同状态重复标记不改动任何东西
				return nil
			}

			oldAttended, oldTotal := statusEffect(record.Status)
			newAttended, newTotal := statusEffect(status)

			seq, err := nextSeq(tx)
			if err != nil {
				return err
			}
			record.Status = status
			record.Seq = seq
			record.MarkedAt = time.Now()
			if err := tx.Save(&record).Error; err != nil {
				return fmt.Errorf("update attendance record: %w", err)
			}

			if err := applyCounterDelta(tx, &subject, newAttended-oldAttended, newTotal-oldTotal); err != nil {
				return err
			}
		}

		return touchMeta(tx)
	})
}

// MarkAllPresent 将指定科目批量标记为出勤，跳过未知科目
// 返回实际标记的条数
func (s *LedgerService) MarkAllPresent(date string, subjectIDs []string) (int, error) {
	marked := 0
	for _, id := range subjectIDs {
		err := s.Mark(date, id, db.StatusAttended)
		if errors.Is(err, ErrSubjectNotFound) {
			continue
		}
		if err != nil {
			return marked, err
		}
		marked++
	}
	return marked, nil
}

// UndoLast 撤销全局最近的一次标记动作：
// 定位最近创建的日期条目，在其中取最近改写的记录，
// 回退其当前状态的计数效果后删除记录。流水为空时返回 nil
// 这是一次弹出而非完整的历史回滚，连续调用会依次撤销更早的动作
func (s *LedgerService) UndoLast() (*AttendanceEntry, error) {
	var undone *AttendanceEntry

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var lastDate string
		err := tx.Model(&db.AttendanceRecord{}).
			Select("entry_date").
			Group("entry_date").
			Order("MIN(id) DESC").
			Limit(1).
			Scan(&lastDate).Error
		if err != nil {
			return fmt.Errorf("find last date: %w", err)
		}
		if lastDate == "" {
			return nil
		}

		var record db.AttendanceRecord
		if err := tx.Where("entry_date = ?", lastDate).
			Order("seq DESC").
			First(&record).Error; err != nil {
			return fmt.Errorf("find last record: %w", err)
		}

		attended, total := statusEffect(record.Status)
		if attended != 0 || total != 0 {
			var subject db.Subject
			err := tx.First(&subject, "id = ?", record.SubjectID).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				// 科目已删除，悬空记录只需移除
			case err != nil:
				return fmt.Errorf("load subject: %w", err)
			default:
				if err := applyCounterDelta(tx, &subject, -attended, -total); err != nil {
					return err
				}
			}
		}

		if err := tx.Delete(&record).Error; err != nil {
			return fmt.Errorf("delete attendance record: %w", err)
		}

		undone = &AttendanceEntry{SubjectID: record.SubjectID, Status: record.Status, MarkedAt: record.MarkedAt}
		return touchMeta(tx)
	})
	if err != nil {
		return nil, err
	}
	return undone, nil
}

// ForDate 返回某天的出勤条目，没有记录时返回空条目，从不报错
func (s *LedgerService) ForDate(date string) (DateEntry, error) {
	entry := DateEntry{Date: date, Entries: []AttendanceEntry{}}

	day, err := ParseDate(date)
	if err != nil {
		return entry, nil
	}
	entry.Date = FormatDate(day)

	var records []db.AttendanceRecord
	if err := s.db.Where("entry_date = ?", entry.Date).
		Order("seq ASC").
		Find(&records).Error; err != nil {
		return entry, fmt.Errorf("load records: %w", err)
	}

	for _, record := range records {
		entry.Entries = append(entry.Entries, AttendanceEntry{
			SubjectID: record.SubjectID,
			Status:    record.Status,
			MarkedAt:  record.MarkedAt,
		})
	}
	return entry, nil
}

// All 按日期条目的创建顺序返回完整流水，条目内按动作先后排列
func (s *LedgerService) All() ([]DateEntry, error) {
	var records []db.AttendanceRecord
	if err := s.db.Order("seq ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	firstID := make(map[string]uint)
	buckets := make(map[string][]AttendanceEntry)
	for _, record := range records {
		if id, ok := firstID[record.EntryDate]; !ok || record.ID < id {
			firstID[record.EntryDate] = record.ID
		}
		buckets[record.EntryDate] = append(buckets[record.EntryDate], AttendanceEntry{
			SubjectID: record.SubjectID,
			Status:    record.Status,
			MarkedAt:  record.MarkedAt,
		})
	}

	dates := make([]string, 0, len(buckets))
	for date := range buckets {
		dates = append(dates, date)
	}
	slices.SortFunc(dates, func(a, b string) int {
		return cmp.Compare(firstID[a], firstID[b])
	})

	entries := make([]DateEntry, 0, len(dates))
	for _, date := range dates {
		entries = append(entries, DateEntry{Date: date, Entries: buckets[date]})
	}
	return entries, nil
}

// applyCounterDelta 调整科目聚合计数并夹紧到非负且 attended <= total
func applyCounterDelta(tx *gorm.DB, subject *db.Subject, deltaAttended, deltaTotal int) error {
	subject.Attended += deltaAttended
	subject.Total += deltaTotal
	if subject.Attended < 0 {
		subject.Attended = 0
	}
	if subject.Total < 0 {
		subject.Total = 0
	}
	if subject.Attended > subject.Total {
		subject.Attended = subject.Total
	}

	if err := tx.Model(subject).
		Updates(map[string]interface{}{"attended": subject.Attended, "total": subject.Total}).Error; err != nil {
		return fmt.Errorf("update counters: %w", err)
	}
	return nil
}

// nextSeq 返回下一个全局动作序号
func nextSeq(tx *gorm.DB) (int64, error) {
	var current int64
	if err := tx.Model(&db.AttendanceRecord{}).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&current).Error; err != nil {
		return 0, fmt.Errorf("next seq: %w", err)
	}
	return current + 1, nil
}
