package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type settingPayload struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// GetSettings 返回应用设置，缺省键回落默认值
func (a *API) GetSettings(c *gin.Context) {
	settings, err := a.settings.Get()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取设置失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// UpdateSetting 更新单个设置项
func (a *API) UpdateSetting(c *gin.Context) {
	var payload settingPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	if err := a.settings.Update(payload.Key, payload.Value); err != nil {
		handleServiceError(c, err)
		return
	}

	settings, err := a.settings.Get()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取设置失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}
