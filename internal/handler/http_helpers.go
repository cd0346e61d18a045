package handler

import (
	"errors"
	"net/http"

	"github.com/attendlog/internal/service"
	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

// handleServiceError 将服务层哨兵错误映射为对应的 HTTP 状态码
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSubjectNotFound):
		respondError(c, http.StatusNotFound, "科目不存在")
	case errors.Is(err, service.ErrSubjectNameInvalid):
		respondError(c, http.StatusBadRequest, "科目名称不能为空且不超过 50 个字符")
	case errors.Is(err, service.ErrSubjectNameTaken):
		respondError(c, http.StatusConflict, "科目名称已存在")
	case errors.Is(err, service.ErrTargetOutOfRange):
		respondError(c, http.StatusBadRequest, "目标出勤率应在 0-100 之间")
	case errors.Is(err, service.ErrInvalidDay):
		respondError(c, http.StatusBadRequest, "无效的星期")
	case errors.Is(err, service.ErrAlreadyScheduled):
		respondError(c, http.StatusConflict, "该科目当天已排课")
	case errors.Is(err, service.ErrInvalidDate):
		respondError(c, http.StatusBadRequest, "日期格式应为 YYYY-MM-DD")
	case errors.Is(err, service.ErrInvalidStatus):
		respondError(c, http.StatusBadRequest, "无效的出勤状态")
	case errors.Is(err, service.ErrInvalidFormat):
		respondError(c, http.StatusBadRequest, "数据格式不合法")
	case errors.Is(err, service.ErrUnknownSettingKey):
		respondError(c, http.StatusBadRequest, "未知的设置项")
	case errors.Is(err, service.ErrInvalidSettingValue):
		respondError(c, http.StatusBadRequest, "设置值不合法")
	default:
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}
