package service

import (
	"errors"
	"testing"

	"github.com/attendlog/internal/db"
)

func TestSettingsDefaults(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	svc := NewSettingsService(db.DB)

	settings, err := svc.Get()
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}

	if settings.Version != "1.0.0" {
		t.Fatalf("unexpected version: %s", settings.Version)
	}
	if settings.DefaultTarget != DefaultTarget {
		t.Fatalf("expected default target %d, got %d", DefaultTarget, settings.DefaultTarget)
	}
	if settings.Theme != "light" || !settings.FirstRun {
		t.Fatalf("unexpected defaults: %+v", settings)
	}
}

func TestSettingsUpdate(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	svc := NewSettingsService(db.DB)

	if err := svc.Update(db.SettingKeyDefaultTarget, "80"); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if err := svc.Update(db.SettingKeyTheme, "dark"); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if err := svc.Update(db.SettingKeyFirstRun, "false"); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	settings, err := svc.Get()
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if settings.DefaultTarget != 80 || settings.Theme != "dark" || settings.FirstRun {
		t.Fatalf("unexpected settings after update: %+v", settings)
	}

	// 再次写同一个键走 upsert 更新
	if err := svc.Update(db.SettingKeyTheme, "light"); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	settings, err = svc.Get()
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if settings.Theme != "light" {
		t.Fatalf("expected theme updated, got %s", settings.Theme)
	}
}

func TestSettingsUpdateAcceptsReadSideKeys(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	svc := NewSettingsService(db.DB)

	// 读取接口返回 camelCase 字段名，回写同名键应当生效
	if err := svc.Update("defaultTarget", "85"); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if err := svc.Update("enableNotifications", "true"); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	settings, err := svc.Get()
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if settings.DefaultTarget != 85 {
		t.Fatalf("expected default target 85, got %d", settings.DefaultTarget)
	}
	if !settings.EnableNotifications {
		t.Fatal("expected notifications enabled")
	}
}

func TestSettingsUpdateValidation(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	svc := NewSettingsService(db.DB)

	if err := svc.Update("unknown_key", "1"); !errors.Is(err, ErrUnknownSettingKey) {
		t.Fatalf("expected ErrUnknownSettingKey, got %v", err)
	}
	if err := svc.Update(db.SettingKeyDefaultTarget, "150"); !errors.Is(err, ErrInvalidSettingValue) {
		t.Fatalf("expected ErrInvalidSettingValue, got %v", err)
	}
	if err := svc.Update(db.SettingKeyFirstRun, "maybe"); !errors.Is(err, ErrInvalidSettingValue) {
		t.Fatalf("expected ErrInvalidSettingValue, got %v", err)
	}
}
