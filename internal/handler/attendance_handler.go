package handler

import (
	"net/http"
	"time"

	"github.com/attendlog/internal/service"
	"github.com/gin-gonic/gin"
)

type markPayload struct {
	SubjectID string `json:"subject_id"`
	Status    string `json:"status"`
}

type markAllPayload struct {
	SubjectIDs []string `json:"subject_ids"`
}

// GetAttendance 返回某天的出勤条目，没有记录时返回空条目
func (a *API) GetAttendance(c *gin.Context) {
	entry, err := a.ledger.ForDate(c.Param("date"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取出勤记录失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": serializeDateEntry(entry)})
}

// MarkAttendance 记录或改写某科目在某天的出勤结果
func (a *API) MarkAttendance(c *gin.Context) {
	var payload markPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}
	if payload.SubjectID == "" {
		respondError(c, http.StatusBadRequest, "缺少科目 ID")
		return
	}

	if err := a.ledger.Mark(c.Param("date"), payload.SubjectID, payload.Status); err != nil {
		handleServiceError(c, err)
		return
	}

	entry, err := a.ledger.ForDate(c.Param("date"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取出勤记录失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": serializeDateEntry(entry)})
}

// MarkAllPresent 将列出的科目批量标记为出勤，未知科目跳过
func (a *API) MarkAllPresent(c *gin.Context) {
	var payload markAllPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	marked, err := a.ledger.MarkAllPresent(c.Param("date"), payload.SubjectIDs)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked": marked})
}

// UndoLast 撤销最近一次标记动作
func (a *API) UndoLast(c *gin.Context) {
	undone, err := a.ledger.UndoLast()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "撤销失败")
		return
	}
	if undone == nil {
		c.JSON(http.StatusOK, gin.H{"undone": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"undone": gin.H{
		"subjectId": undone.SubjectID,
		"status":    undone.Status,
		"timestamp": undone.MarkedAt.Format(time.RFC3339),
	}})
}

func serializeDateEntry(entry service.DateEntry) gin.H {
	entries := make([]gin.H, 0, len(entry.Entries))
	for _, item := range entry.Entries {
		entries = append(entries, gin.H{
			"subjectId": item.SubjectID,
			"status":    item.Status,
			"timestamp": item.MarkedAt.Format(time.RFC3339),
		})
	}
	return gin.H{"date": entry.Date, "entries": entries}
}
