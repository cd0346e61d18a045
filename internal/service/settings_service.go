package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/attendlog/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrUnknownSettingKey 当设置键不被识别时返回
	ErrUnknownSettingKey = errors.New("unknown setting key")
	// ErrInvalidSettingValue 当设置值不符合该键的类型约束时返回
	ErrInvalidSettingValue = errors.New("invalid setting value")
)

// Settings 描述应用的可配置项，核心逻辑只消费 DefaultTarget
type Settings struct {
	Version             string `json:"version"`
	DefaultTarget       int    `json:"defaultTarget"`
	Theme               string `json:"theme"`
	FirstRun            bool   `json:"firstRun"`
	EnableNotifications bool   `json:"enableNotifications"`
	SwipeSensitivity    int    `json:"swipeSensitivity"`
}

// SettingsService 提供设置项的读取与更新能力
// 未写入过的键在读取时返回默认值，写入采用按键 upsert
type SettingsService struct {
	db *gorm.DB
}

// NewSettingsService 构造 SettingsService
func NewSettingsService(gdb *gorm.DB) *SettingsService {
	return &SettingsService{db: gdb}
}

var settingKeys = []string{
	db.SettingKeyVersion,
	db.SettingKeyDefaultTarget,
	db.SettingKeyTheme,
	db.SettingKeyFirstRun,
	db.SettingKeyEnableNotifications,
	db.SettingKeySwipeSensitivity,
}

// settingKeyAliases 把读取接口返回的 camelCase 字段名映射回存储键，
// 客户端因此可以原样回写它刚读到的键
var settingKeyAliases = map[string]string{
	"defaulttarget":       db.SettingKeyDefaultTarget,
	"firstrun":            db.SettingKeyFirstRun,
	"enablenotifications": db.SettingKeyEnableNotifications,
	"swipesensitivity":    db.SettingKeySwipeSensitivity,
}

func defaultSettings() Settings {
	return Settings{
		Version:             "1.0.0",
		DefaultTarget:       DefaultTarget,
		Theme:               "light",
		FirstRun:            true,
		EnableNotifications: false,
		SwipeSensitivity:    100,
	}
}

// Get 读取设置，缺失的键回落到默认值
func (s *SettingsService) Get() (Settings, error) {
	result := defaultSettings()

	var records []db.Setting
	if err := s.db.Where("key IN ?", settingKeys).Find(&records).Error; err != nil {
		return result, fmt.Errorf("load settings: %w", err)
	}

	for _, record := range records {
		value := strings.TrimSpace(record.Value)
		switch record.Key {
		case db.SettingKeyVersion:
			if value != "" {
				result.Version = value
			}
		case db.SettingKeyDefaultTarget:
			if target, err := strconv.Atoi(value); err == nil && target >= 0 && target <= 100 {
				result.DefaultTarget = target
			}
		case db.SettingKeyTheme:
			if value != "" {
				result.Theme = value
			}
		case db.SettingKeyFirstRun:
			if parsed, err := strconv.ParseBool(value); err == nil {
				result.FirstRun = parsed
			}
		case db.SettingKeyEnableNotifications:
			if parsed, err := strconv.ParseBool(value); err == nil {
				result.EnableNotifications = parsed
			}
		case db.SettingKeySwipeSensitivity:
			if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
				result.SwipeSensitivity = parsed
			}
		}
	}

	return result, nil
}

// Update 更新单个设置项，写入前做按键的类型校验
func (s *SettingsService) Update(key, value string) error {
	key = strings.TrimSpace(strings.ToLower(key))
	value = strings.TrimSpace(value)

	if canonical, ok := settingKeyAliases[key]; ok {
		key = canonical
	}

	known := false
	for _, candidate := range settingKeys {
		if key == candidate {
			known = true
			break
		}
	}
	if !known {
		return ErrUnknownSettingKey
	}

	switch key {
	case db.SettingKeyDefaultTarget:
		target, err := strconv.Atoi(value)
		if err != nil || target < 0 || target > 100 {
			return ErrInvalidSettingValue
		}
	case db.SettingKeyFirstRun, db.SettingKeyEnableNotifications:
		if _, err := strconv.ParseBool(value); err != nil {
			return ErrInvalidSettingValue
		}
	case db.SettingKeySwipeSensitivity:
		sensitivity, err := strconv.Atoi(value)
		if err != nil || sensitivity <= 0 {
			return ErrInvalidSettingValue
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := upsertSetting(tx, key, value); err != nil {
			return err
		}
		return touchMeta(tx)
	})
}

// snapshotSettings 导出当前已落盘的设置键值，用于备份文档
func snapshotSettings(tx *gorm.DB) (map[string]string, error) {
	var records []db.Setting
	if err := tx.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("snapshot settings: %w", err)
	}

	values := make(map[string]string, len(records))
	for _, record := range records {
		values[record.Key] = record.Value
	}
	return values, nil
}

func upsertSetting(tx *gorm.DB, key, value string) error {
	setting := db.Setting{Key: key, Value: value}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&setting).Error; err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	return nil
}
