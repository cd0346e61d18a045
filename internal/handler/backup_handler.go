package handler

import (
	"net/http"

	"github.com/attendlog/internal/service"
	"github.com/gin-gonic/gin"
)

// ExportData 导出完整数据文档
func (a *API) ExportData(c *gin.Context) {
	doc, err := a.backups.Export()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "导出数据失败")
		return
	}
	c.JSON(http.StatusOK, doc)
}

// ImportData 用上传的文档整体替换现有数据，返回替换前的备份
func (a *API) ImportData(c *gin.Context) {
	var doc service.ExportDocument
	if !bindJSON(c, &doc, "数据格式不合法") {
		return
	}

	backup, err := a.backups.Import(&doc)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": true, "backup": backup})
}

// ClearAllData 清空全部数据，返回清空前的备份
func (a *API) ClearAllData(c *gin.Context) {
	backup, err := a.backups.ClearAll()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "清空数据失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": true, "backup": backup})
}
