package handler

import (
	"net/http"
	"time"

	"github.com/attendlog/internal/db"
	"github.com/attendlog/internal/service"
	"github.com/gin-gonic/gin"
)

type subjectPayload struct {
	Name   string `json:"name"`
	Target *int   `json:"target"`
	Color  string `json:"color"`
}

// ListSubjects 返回全部科目，带 day 参数时只返回当天排课的科目
func (a *API) ListSubjects(c *gin.Context) {
	if day := c.Query("day"); day != "" {
		subjects, err := a.timetable.SubjectsForDay(day)
		if err != nil {
			handleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"subjects": serializeSubjects(subjects)})
		return
	}

	subjects, err := a.subjects.List()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取科目列表失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"subjects": serializeSubjects(subjects)})
}

// GetSubject 返回单个科目详情
func (a *API) GetSubject(c *gin.Context) {
	subject, err := a.subjects.Get(c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subject": subjectToPayload(*subject)})
}

// CreateSubject 创建科目
func (a *API) CreateSubject(c *gin.Context) {
	var payload subjectPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	subject, err := a.subjects.Add(service.SubjectInput{
		Name:   payload.Name,
		Target: payload.Target,
		Color:  payload.Color,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subject": subjectToPayload(*subject)})
}

// UpdateSubject 按字段更新科目：改名、改目标、改颜色
func (a *API) UpdateSubject(c *gin.Context) {
	id := c.Param("id")

	var payload subjectPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	if payload.Name != "" {
		if err := a.subjects.Rename(id, payload.Name); err != nil {
			handleServiceError(c, err)
			return
		}
	}
	if payload.Target != nil {
		if err := a.subjects.SetTarget(id, *payload.Target); err != nil {
			handleServiceError(c, err)
			return
		}
	}
	if payload.Color != "" {
		if err := a.subjects.SetColor(id, payload.Color); err != nil {
			handleServiceError(c, err)
			return
		}
	}

	subject, err := a.subjects.Get(id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subject": subjectToPayload(*subject)})
}

// DeleteSubject 删除科目并清理课表引用
func (a *API) DeleteSubject(c *gin.Context) {
	if err := a.subjects.Delete(c.Param("id")); err != nil {
		respondError(c, http.StatusInternalServerError, "删除科目失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func serializeSubjects(subjects []db.Subject) []gin.H {
	items := make([]gin.H, 0, len(subjects))
	for _, subject := range subjects {
		items = append(items, subjectToPayload(subject))
	}
	return items
}

func subjectToPayload(subject db.Subject) gin.H {
	return gin.H{
		"id":        subject.ID,
		"name":      subject.Name,
		"attended":  subject.Attended,
		"total":     subject.Total,
		"target":    subject.Target,
		"color":     subject.Color,
		"createdAt": subject.CreatedAt.Format(time.RFC3339),
	}
}
