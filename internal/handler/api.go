package handler

import (
	"github.com/attendlog/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	subjects  *service.SubjectService
	timetable *service.TimetableService
	ledger    *service.LedgerService
	stats     *service.StatsService
	settings  *service.SettingsService
	backups   *service.BackupService
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB) *API {
	return &API{
		subjects:  service.NewSubjectService(gdb),
		timetable: service.NewTimetableService(gdb),
		ledger:    service.NewLedgerService(gdb),
		stats:     service.NewStatsService(gdb),
		settings:  service.NewSettingsService(gdb),
		backups:   service.NewBackupService(gdb),
	}
}
