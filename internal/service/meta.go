package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/attendlog/internal/db"
	"gorm.io/gorm"
)

// touchMeta 在每次写操作后刷新数据集元信息
// 行不存在时创建，存在时更新最近修改时间并累加操作计数
func touchMeta(tx *gorm.DB) error {
	var meta db.Meta
	err := tx.First(&meta).Error
	now := time.Now()

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		meta = db.Meta{DataCreatedAt: now, LastModified: now, TotalOperations: 1}
		if err := tx.Create(&meta).Error; err != nil {
			return fmt.Errorf("create meta: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("load meta: %w", err)
	}

	meta.LastModified = now
	meta.TotalOperations++
	if err := tx.Save(&meta).Error; err != nil {
		return fmt.Errorf("update meta: %w", err)
	}
	return nil
}
