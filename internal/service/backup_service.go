package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/attendlog/internal/db"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrInvalidFormat 当导入文档缺少必需字段或结构损坏时返回
var ErrInvalidFormat = errors.New("invalid data format")

// ExportVersion 为导出文档的当前格式版本
const ExportVersion = "1.0.0"

// ExportSubject 为导出文档中的科目记录
type ExportSubject struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Attended  int       `json:"attended"`
	Total     int       `json:"total"`
	Target    int       `json:"target"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
}

// ExportMeta 携带数据集元信息
type ExportMeta struct {
	Created         time.Time `json:"created"`
	LastModified    time.Time `json:"lastModified"`
	TotalOperations int64     `json:"totalOperations"`
}

// ExportDocument 为导出/导入共用的完整数据文档
// version、subjects、timetable、history 为必需字段
type ExportDocument struct {
	Version    string              `json:"version"`
	ExportedAt time.Time           `json:"exportedAt"`
	Subjects   []ExportSubject     `json:"subjects"`
	Timetable  map[string][]string `json:"timetable"`
	History    []DateEntry         `json:"history"`
	Settings   map[string]string   `json:"settings,omitempty"`
	Meta       *ExportMeta         `json:"meta,omitempty"`
}

// BackupService 负责整库的导出、导入与清空
// 导入和清空都是整体原子替换，动手前先抓取当前数据的备份快照
type BackupService struct {
	db        *gorm.DB
	ledger    *LedgerService
	timetable *TimetableService
}

// NewBackupService 构造 BackupService
func NewBackupService(gdb *gorm.DB) *BackupService {
	return &BackupService{
		db:        gdb,
		ledger:    NewLedgerService(gdb),
		timetable: NewTimetableService(gdb),
	}
}

// Export 生成当前全部数据的导出文档
func (s *BackupService) Export() (*ExportDocument, error) {
	doc := &ExportDocument{
		Version:    ExportVersion,
		ExportedAt: time.Now(),
		Subjects:   []ExportSubject{},
	}

	var subjects []db.Subject
	if err := s.db.Order("created_at ASC, id ASC").Find(&subjects).Error; err != nil {
		return nil, fmt.Errorf("export subjects: %w", err)
	}
	for _, subject := range subjects {
		doc.Subjects = append(doc.Subjects, ExportSubject{
			ID:        subject.ID,
			Name:      subject.Name,
			Attended:  subject.Attended,
			Total:     subject.Total,
			Target:    subject.Target,
			Color:     subject.Color,
			CreatedAt: subject.CreatedAt,
		})
	}

	timetable, err := s.timetable.Full()
	if err != nil {
		return nil, err
	}
	doc.Timetable = timetable

	history, err := s.ledger.All()
	if err != nil {
		return nil, err
	}
	doc.History = history

	settings, err := snapshotSettings(s.db)
	if err != nil {
		return nil, err
	}
	doc.Settings = settings

	var meta db.Meta
	if err := s.db.First(&meta).Error; err == nil {
		doc.Meta = &ExportMeta{
			Created:         meta.DataCreatedAt,
			LastModified:    meta.LastModified,
			TotalOperations: meta.TotalOperations,
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("export meta: %w", err)
	}

	return doc, nil
}

// Import 用文档内容整体替换现有数据
// 校验失败时不触碰任何数据；成功时返回替换前的备份快照
func (s *BackupService) Import(doc *ExportDocument) (*ExportDocument, error) {
	if doc == nil || strings.TrimSpace(doc.Version) == "" ||
		doc.Subjects == nil || doc.Timetable == nil || doc.History == nil {
		return nil, ErrInvalidFormat
	}

	subjects, err := normalizeSubjects(doc.Subjects)
	if err != nil {
		return nil, err
	}
	slots := normalizeTimetable(doc.Timetable)
	records, err := normalizeHistory(doc.History)
	if err != nil {
		return nil, err
	}

	backup, err := s.Export()
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := wipeAll(tx); err != nil {
			return err
		}

		if len(subjects) > 0 {
			if err := tx.Create(&subjects).Error; err != nil {
				return fmt.Errorf("import subjects: %w", err)
			}
		}
		if len(slots) > 0 {
			if err := tx.Create(&slots).Error; err != nil {
				return fmt.Errorf("import timetable: %w", err)
			}
		}
		if len(records) > 0 {
			if err := tx.Create(&records).Error; err != nil {
				return fmt.Errorf("import history: %w", err)
			}
		}
		for key, value := range doc.Settings {
			if err := upsertSetting(tx, key, value); err != nil {
				return err
			}
		}

		if doc.Meta != nil {
			meta := db.Meta{
				DataCreatedAt:   doc.Meta.Created,
				LastModified:    doc.Meta.LastModified,
				TotalOperations: doc.Meta.TotalOperations,
			}
			if err := tx.Create(&meta).Error; err != nil {
				return fmt.Errorf("import meta: %w", err)
			}
		}
		return touchMeta(tx)
	})
	if err != nil {
		return nil, err
	}

	return backup, nil
}

// ClearAll 清空全部数据并重建初始结构，返回清空前的备份快照
func (s *BackupService) ClearAll() (*ExportDocument, error) {
	backup, err := s.Export()
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := wipeAll(tx); err != nil {
			return err
		}
		return touchMeta(tx)
	})
	if err != nil {
		return nil, err
	}

	return backup, nil
}

func wipeAll(tx *gorm.DB) error {
	for _, model := range []interface{}{
		&db.AttendanceRecord{},
		&db.TimetableSlot{},
		&db.Subject{},
		&db.Setting{},
		&db.Meta{},
	} {
		if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
			return fmt.Errorf("wipe collection: %w", err)
		}
	}
	return nil
}

// normalizeSubjects 对导入的科目做一次性规范化：
// 补齐缺省字段、夹紧计数和目标；名字缺失视为文档损坏
func normalizeSubjects(input []ExportSubject) ([]db.Subject, error) {
	subjects := make([]db.Subject, 0, len(input))
	seen := make(map[string]struct{}, len(input))

	for _, item := range input {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			return nil, ErrInvalidFormat
		}
		if _, dup := seen[strings.ToLower(name)]; dup {
			return nil, ErrInvalidFormat
		}
		seen[strings.ToLower(name)] = struct{}{}

		subject := db.Subject{
			ID:        strings.TrimSpace(item.ID),
			Name:      name,
			Attended:  item.Attended,
			Total:     item.Total,
			Target:    item.Target,
			Color:     strings.TrimSpace(item.Color),
			CreatedAt: item.CreatedAt,
		}
		if subject.ID == "" {
			subject.ID = uuid.NewString()
		}
		if subject.Target < 0 || subject.Target > 100 {
			subject.Target = DefaultTarget
		}
		if subject.Color == "" {
			subject.Color = DefaultColor
		}
		if subject.Total < 0 {
			subject.Total = 0
		}
		if subject.Attended < 0 {
			subject.Attended = 0
		}
		if subject.Attended > subject.Total {
			subject.Attended = subject.Total
		}
		if subject.CreatedAt.IsZero() {
			subject.CreatedAt = time.Now()
		}
		subjects = append(subjects, subject)
	}
	return subjects, nil
}

// normalizeTimetable 只保留 7 个已知星期键，去除同日重复引用
func normalizeTimetable(input map[string][]string) []db.TimetableSlot {
	slots := make([]db.TimetableSlot, 0)
	for _, key := range WeekdayKeys {
		seen := make(map[string]struct{})
		position := 0
		for _, id := range input[key] {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			position++
			slots = append(slots, db.TimetableSlot{Day: key, SubjectID: id, Position: position})
		}
	}
	return slots
}

// normalizeHistory 过滤非法日期与状态，保证 (日期, 科目) 唯一
// 动作序号按文档顺序重建
func normalizeHistory(input []DateEntry) ([]db.AttendanceRecord, error) {
	records := make([]db.AttendanceRecord, 0)
	seen := make(map[string]struct{})
	var seq int64

	for _, entry := range input {
		day, err := ParseDate(entry.Date)
		if err != nil {
			return nil, ErrInvalidFormat
		}
		date := FormatDate(day)

		for _, item := range entry.Entries {
			if !validStatus(item.Status) || strings.TrimSpace(item.SubjectID) == "" {
				return nil, ErrInvalidFormat
			}
			key := date + "|" + item.SubjectID
			if _, dup := seen[key]; dup {
				return nil, ErrInvalidFormat
			}
			seen[key] = struct{}{}

			seq++
			markedAt := item.MarkedAt
			if markedAt.IsZero() {
				markedAt = time.Now()
			}
			records = append(records, db.AttendanceRecord{
				EntryDate: date,
				SubjectID: strings.TrimSpace(item.SubjectID),
				Status:    item.Status,
				Seq:       seq,
				MarkedAt:  markedAt,
			})
		}
	}
	return records, nil
}
