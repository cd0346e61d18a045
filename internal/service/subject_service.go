package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/attendlog/internal/db"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// DefaultTarget 为未指定目标出勤率时的回退值
	DefaultTarget = 75
	// DefaultColor 为未指定颜色时的回退值
	DefaultColor = "#6366f1"

	maxSubjectNameLength = 50
)

var (
	// ErrSubjectNotFound 在指定科目不存在时返回
	ErrSubjectNotFound = errors.New("subject not found")
	// ErrSubjectNameInvalid 当科目名为空或超长时返回
	ErrSubjectNameInvalid = errors.New("invalid subject name")
	// ErrSubjectNameTaken 当科目名与已有科目重复（忽略大小写）时返回
	ErrSubjectNameTaken = errors.New("subject name already taken")
	// ErrTargetOutOfRange 当目标出勤率不在 0-100 内时返回
	ErrTargetOutOfRange = errors.New("target must be between 0 and 100")
)

// SubjectService 负责科目的增删改查与引用清理
// 删除科目时会级联清除课表占位；出勤流水保留，读取侧自行过滤悬空引用
type SubjectService struct {
	db *gorm.DB
}

// SubjectInput 定义创建/更新科目时可配置字段
// Target 为 nil 时采用设置中的默认目标（缺省 75）
type SubjectInput struct {
	Name   string
	Target *int
	Color  string
}

// NewSubjectService 构造 SubjectService
func NewSubjectService(gdb *gorm.DB) *SubjectService {
	return &SubjectService{db: gdb}
}

// Add 创建科目，计数器从零开始
func (s *SubjectService) Add(input SubjectInput) (*db.Subject, error) {
	name := strings.TrimSpace(input.Name)
	if err := s.validateName(name, ""); err != nil {
		return nil, err
	}

	target := s.defaultTarget()
	if input.Target != nil {
		target = *input.Target
	}
	if target < 0 || target > 100 {
		return nil, ErrTargetOutOfRange
	}

	color := strings.TrimSpace(input.Color)
	if color == "" {
		color = DefaultColor
	}

	subject := db.Subject{
		ID:     uuid.NewString(),
		Name:   name,
		Target: target,
		Color:  color,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&subject).Error; err != nil {
			// 唯一索引兜住并发创建中逃过预检的重名
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrSubjectNameTaken
			}
			return fmt.Errorf("create subject: %w", err)
		}
		return touchMeta(tx)
	})
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

// Rename 重命名科目，校验规则与创建一致
func (s *SubjectService) Rename(id, newName string) error {
	subject, err := s.Get(id)
	if err != nil {
		return err
	}

	name := strings.TrimSpace(newName)
	if err := s.validateName(name, subject.ID); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(subject).Update("name", name).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrSubjectNameTaken
			}
			return fmt.Errorf("rename subject: %w", err)
		}
		return touchMeta(tx)
	})
}

// SetTarget 更新目标出勤率
func (s *SubjectService) SetTarget(id string, target int) error {
	if target < 0 || target > 100 {
		return ErrTargetOutOfRange
	}

	subject, err := s.Get(id)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(subject).Update("target", target).Error; err != nil {
			return fmt.Errorf("set target: %w", err)
		}
		return touchMeta(tx)
	})
}

// SetColor 更新展示颜色，仅影响前端
func (s *SubjectService) SetColor(id, color string) error {
	subject, err := s.Get(id)
	if err != nil {
		return err
	}

	color = strings.TrimSpace(color)
	if color == "" {
		color = DefaultColor
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(subject).Update("color", color).Error; err != nil {
			return fmt.Errorf("set color: %w", err)
		}
		return touchMeta(tx)
	})
}

// Delete 删除科目并清除其在课表中的全部占位
// 对未知 ID 幂等，不报错；出勤流水保留为悬空引用
func (s *SubjectService) Delete(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&db.Subject{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("delete subject: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil
		}

		if err := tx.Where("subject_id = ?", id).Delete(&db.TimetableSlot{}).Error; err != nil {
			return fmt.Errorf("purge timetable slots: %w", err)
		}
		return touchMeta(tx)
	})
}

// Get 根据 ID 获取科目
func (s *SubjectService) Get(id string) (*db.Subject, error) {
	var subject db.Subject
	if err := s.db.First(&subject, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("get subject: %w", err)
	}
	return &subject, nil
}

// List 按创建顺序返回全部科目
func (s *SubjectService) List() ([]db.Subject, error) {
	var subjects []db.Subject
	if err := s.db.Order("created_at ASC, id ASC").Find(&subjects).Error; err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

func (s *SubjectService) validateName(name, selfID string) error {
	if name == "" || utf8.RuneCountInString(name) > maxSubjectNameLength {
		return ErrSubjectNameInvalid
	}

	query := s.db.Model(&db.Subject{}).Where("LOWER(name) = ?", strings.ToLower(name))
	if selfID != "" {
		query = query.Where("id <> ?", selfID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return fmt.Errorf("check name: %w", err)
	}
	if count > 0 {
		return ErrSubjectNameTaken
	}
	return nil
}

// defaultTarget 读取设置中的默认目标出勤率，读取失败时回退 75
func (s *SubjectService) defaultTarget() int {
	var setting db.Setting
	if err := s.db.First(&setting, "key = ?", db.SettingKeyDefaultTarget).Error; err != nil {
		return DefaultTarget
	}

	target, err := strconv.Atoi(strings.TrimSpace(setting.Value))
	if err != nil {
		return DefaultTarget
	}
	if target < 0 || target > 100 {
		return DefaultTarget
	}
	return target
}
