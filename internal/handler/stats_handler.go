package handler

import (
	"net/http"

	"github.com/attendlog/internal/service"
	"github.com/gin-gonic/gin"
)

// GetStats 返回整体统计投影
func (a *API) GetStats(c *gin.Context) {
	overview, err := a.stats.Overview()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "计算统计信息失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"totalSubjects":      overview.TotalSubjects,
		"totalClasses":       overview.TotalClasses,
		"attendedClasses":    overview.AttendedClasses,
		"overallPercentage":  overview.OverallPercentage,
		"subjectPerformance": serializePerformances(overview.Subjects),
		"weeklyPattern":      overview.WeeklyPattern,
		"atRiskSubjects":     serializePerformances(overview.AtRisk),
		"safeToMiss":         serializePerformances(overview.SafeToMiss),
	})
}

func serializePerformances(performances []service.SubjectPerformance) []gin.H {
	items := make([]gin.H, 0, len(performances))
	for _, performance := range performances {
		item := gin.H{
			"id":         performance.Subject.ID,
			"name":       performance.Subject.Name,
			"attended":   performance.Subject.Attended,
			"total":      performance.Subject.Total,
			"target":     performance.Subject.Target,
			"color":      performance.Subject.Color,
			"percentage": performance.Percentage,
			"riskLevel":  performance.RiskLevel,
			"safe":       performance.Safe,
		}
		if performance.Needed == service.ClassesUnreachable {
			item["needed"] = 0
			item["unreachable"] = true
		} else {
			item["needed"] = performance.Needed
		}
		items = append(items, item)
	}
	return items
}
