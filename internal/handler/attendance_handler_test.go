package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/attendlog/internal/db"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupAPITest(t *testing.T) (*gin.Engine, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := gdb.AutoMigrate(&db.Subject{}, &db.TimetableSlot{}, &db.AttendanceRecord{}, &db.Setting{}, &db.Meta{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	db.DB = gdb

	api := NewAPI(gdb)
	r := gin.New()
	r.POST("/api/subjects", api.CreateSubject)
	r.GET("/api/subjects/:id", api.GetSubject)
	r.POST("/api/attendance/:date", api.MarkAttendance)
	r.POST("/api/undo", api.UndoLast)
	r.GET("/api/stats", api.GetStats)
	r.POST("/api/import", api.ImportData)

	return r, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createSubject(t *testing.T, r *gin.Engine, name string) string {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/api/subjects", gin.H{"name": name})
	if w.Code != http.StatusOK {
		t.Fatalf("create subject: unexpected status %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Subject struct {
			ID string `json:"id"`
		} `json:"subject"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Subject.ID == "" {
		t.Fatal("expected subject id in response")
	}
	return resp.Subject.ID
}

func subjectCounters(t *testing.T, r *gin.Engine, id string) (int, int) {
	t.Helper()

	w := doJSON(t, r, http.MethodGet, "/api/subjects/"+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get subject: unexpected status %d", w.Code)
	}

	var resp struct {
		Subject struct {
			Attended int `json:"attended"`
			Total    int `json:"total"`
		} `json:"subject"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp.Subject.Attended, resp.Subject.Total
}

func TestMarkAttendanceFlow(t *testing.T) {
	r, cleanup := setupAPITest(t)
	defer cleanup()

	id := createSubject(t, r, "数学")

	w := doJSON(t, r, http.MethodPost, "/api/attendance/2024-01-10", gin.H{"subject_id": id, "status": "attended"})
	if w.Code != http.StatusOK {
		t.Fatalf("mark: unexpected status %d: %s", w.Code, w.Body.String())
	}

	if attended, total := subjectCounters(t, r, id); attended != 1 || total != 1 {
		t.Fatalf("expected (1,1), got (%d,%d)", attended, total)
	}

	// 同日改写为缺勤：出勤回落，分母不变
	w = doJSON(t, r, http.MethodPost, "/api/attendance/2024-01-10", gin.H{"subject_id": id, "status": "missed"})
	if w.Code != http.StatusOK {
		t.Fatalf("re-mark: unexpected status %d", w.Code)
	}
	if attended, total := subjectCounters(t, r, id); attended != 0 || total != 1 {
		t.Fatalf("expected (0,1), got (%d,%d)", attended, total)
	}
}

func TestMarkAttendanceErrors(t *testing.T) {
	r, cleanup := setupAPITest(t)
	defer cleanup()

	id := createSubject(t, r, "物理")

	cases := []struct {
		path   string
		body   gin.H
		status int
	}{
		{"/api/attendance/2024-01-10", gin.H{"subject_id": "missing", "status": "attended"}, http.StatusNotFound},
		{"/api/attendance/2024-01-10", gin.H{"subject_id": id, "status": "present"}, http.StatusBadRequest},
		{"/api/attendance/not-a-date", gin.H{"subject_id": id, "status": "attended"}, http.StatusBadRequest},
		{"/api/attendance/2024-01-10", gin.H{"status": "attended"}, http.StatusBadRequest},
	}

	for _, tc := range cases {
		w := doJSON(t, r, http.MethodPost, tc.path, tc.body)
		if w.Code != tc.status {
			t.Fatalf("POST %s: expected %d, got %d (%s)", tc.path, tc.status, w.Code, w.Body.String())
		}
	}
}

func TestUndoEndpoint(t *testing.T) {
	r, cleanup := setupAPITest(t)
	defer cleanup()

	id := createSubject(t, r, "化学")

	w := doJSON(t, r, http.MethodPost, "/api/attendance/2024-01-10", gin.H{"subject_id": id, "status": "attended"})
	if w.Code != http.StatusOK {
		t.Fatalf("mark: unexpected status %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/undo", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("undo: unexpected status %d", w.Code)
	}
	if attended, total := subjectCounters(t, r, id); attended != 0 || total != 0 {
		t.Fatalf("expected counters reverted, got (%d,%d)", attended, total)
	}

	// 空流水撤销返回 null
	w = doJSON(t, r, http.MethodPost, "/api/undo", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("undo on empty: unexpected status %d", w.Code)
	}
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["undone"] != nil {
		t.Fatalf("expected null undone, got %v", resp["undone"])
	}
}

func TestStatsEndpoint(t *testing.T) {
	r, cleanup := setupAPITest(t)
	defer cleanup()

	id := createSubject(t, r, "英语")
	w := doJSON(t, r, http.MethodPost, "/api/attendance/2024-01-10", gin.H{"subject_id": id, "status": "attended"})
	if w.Code != http.StatusOK {
		t.Fatalf("mark: unexpected status %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats: unexpected status %d", w.Code)
	}

	var resp struct {
		OverallPercentage int                      `json:"overallPercentage"`
		WeeklyPattern     map[string]interface{}   `json:"weeklyPattern"`
		Performance       []map[string]interface{} `json:"subjectPerformance"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.OverallPercentage != 100 {
		t.Fatalf("expected 100%%, got %d", resp.OverallPercentage)
	}
	if len(resp.WeeklyPattern) != 7 {
		t.Fatalf("expected 7 weekday buckets, got %d", len(resp.WeeklyPattern))
	}
	if len(resp.Performance) != 1 {
		t.Fatalf("expected 1 performance row, got %d", len(resp.Performance))
	}
}

func TestImportRejectsMissingFields(t *testing.T) {
	r, cleanup := setupAPITest(t)
	defer cleanup()

	id := createSubject(t, r, "历史")

	// 缺少 timetable 的文档应被整体拒绝，原数据不受影响
	w := doJSON(t, r, http.MethodPost, "/api/import", gin.H{
		"version":  "1.0.0",
		"subjects": []gin.H{},
		"history":  []gin.H{},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("import: expected 400, got %d (%s)", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/subjects/%s", id), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected subject to survive failed import, got %d", w.Code)
	}
}
