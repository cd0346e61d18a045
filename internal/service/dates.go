package service

import (
	"strings"
	"time"
)

// DateFormat 为流水与导出文档统一使用的日期格式
const DateFormat = "2006-01-02"

// WeekdayKeys 按周日起始列出 7 个小写星期键，顺序与展示顺序一致
var WeekdayKeys = []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// NormalizeDay 将输入归一化为小写星期键，不合法时返回空串
func NormalizeDay(day string) string {
	key := strings.ToLower(strings.TrimSpace(day))
	for _, candidate := range WeekdayKeys {
		if key == candidate {
			return candidate
		}
	}
	return ""
}

// WeekdayKey 返回某个日期对应的小写星期键
func WeekdayKey(t time.Time) string {
	return WeekdayKeys[int(t.Weekday())]
}

// FormatDate 将时间格式化为 YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateFormat)
}

// ParseDate 解析 YYYY-MM-DD 文本
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateFormat, strings.TrimSpace(value), time.Local)
}
