package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type assignPayload struct {
	SubjectID string `json:"subject_id"`
}

// GetTimetable 返回完整周课表，7 个星期键总是存在
func (a *API) GetTimetable(c *gin.Context) {
	timetable, err := a.timetable.Full()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取课表失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"timetable": timetable})
}

// AssignToDay 将科目排入某天
func (a *API) AssignToDay(c *gin.Context) {
	var payload assignPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}
	if payload.SubjectID == "" {
		respondError(c, http.StatusBadRequest, "缺少科目 ID")
		return
	}

	if err := a.timetable.AssignToDay(c.Param("day"), payload.SubjectID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assigned": true})
}

// RemoveFromDay 将科目移出某天，科目本不在该天时同样返回成功
func (a *API) RemoveFromDay(c *gin.Context) {
	if err := a.timetable.RemoveFromDay(c.Param("day"), c.Param("subjectId")); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": true})
}
