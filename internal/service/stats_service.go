package service

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/attendlog/internal/db"
	"gorm.io/gorm"
)

// 风险等级取值
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// ClassesUnreachable 表示在当前记录下目标已不可达（target=100 且有过缺勤）
const ClassesUnreachable = -1

// Percentage 计算出勤百分比，四舍五入到整数，total 为零时返回 0
func Percentage(attended, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(attended) / float64(total) * 100))
}

// RiskLevel 按与目标的距离划分风险：
// 达到 target+5 为 low，落在 target±5 内为 medium，低于 target-5 为 high
func RiskLevel(percentage, target int) string {
	if percentage >= target+5 {
		return RiskLow
	}
	if percentage >= target-5 {
		return RiskMedium
	}
	return RiskHigh
}

// ClassesNeeded 计算为达到目标还需连续出勤的课次
// 即最小的 x 使 (attended+x)/(total+x) >= target/100
// target 为 100 时除式退化：全勤返回 0，否则返回 ClassesUnreachable
func ClassesNeeded(attended, total, target int) int {
	if target <= 0 {
		return 0
	}
	if target >= 100 {
		if attended == total {
			return 0
		}
		return ClassesUnreachable
	}

	numerator := target*total - 100*attended
	if numerator <= 0 {
		return 0
	}
	denominator := 100 - target
	return (numerator + denominator - 1) / denominator
}

// ClassesSafeToMiss 计算仍能保住目标的可缺勤课次
// 即最大的 x 使 attended/(total+x) >= target/100
// target 为 0 时数学上无上界，沿用保守口径返回 0
func ClassesSafeToMiss(attended, total, target int) int {
	if target <= 0 {
		return 0
	}

	safe := 100*attended/target - total
	if safe < 0 {
		return 0
	}
	return safe
}

// OverallPercentage 对所有科目的计数求和后计算整体出勤率
func OverallPercentage(subjects []db.Subject) int {
	attended, total := 0, 0
	for _, subject := range subjects {
		attended += subject.Attended
		total += subject.Total
	}
	return Percentage(attended, total)
}

// SubjectPerformance 为单科目的统计视图
type SubjectPerformance struct {
	Subject    db.Subject
	Percentage int
	RiskLevel  string
	Needed     int
	Safe       int
}

// DayPattern 汇总某个星期键上的出勤与计入分母的课次
type DayPattern struct {
	Attended int `json:"attended"`
	Total    int `json:"total"`
}

// Overview 汇总整体统计，供统计页一次性读取
type Overview struct {
	TotalSubjects     int
	TotalClasses      int
	AttendedClasses   int
	OverallPercentage int
	Subjects          []SubjectPerformance
	WeeklyPattern     map[string]DayPattern
	AtRisk            []SubjectPerformance
	SafeToMiss        []SubjectPerformance
}

// StatsService 提供读侧统计投影，不产生任何持久化输出
type StatsService struct {
	db *gorm.DB
}

// NewStatsService 构造 StatsService
func NewStatsService(gdb *gorm.DB) *StatsService {
	return &StatsService{db: gdb}
}

// PerformanceFor 计算单个科目的统计视图
func PerformanceFor(subject db.Subject) SubjectPerformance {
	percentage := Percentage(subject.Attended, subject.Total)
	return SubjectPerformance{
		Subject:    subject,
		Percentage: percentage,
		RiskLevel:  RiskLevel(percentage, subject.Target),
		Needed:     ClassesNeeded(subject.Attended, subject.Total, subject.Target),
		Safe:       ClassesSafeToMiss(subject.Attended, subject.Total, subject.Target),
	}
}

// Overview 从科目聚合与出勤流水派生整体统计
func (s *StatsService) Overview() (*Overview, error) {
	var subjects []db.Subject
	if err := s.db.Order("created_at ASC, id ASC").Find(&subjects).Error; err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}

	overview := &Overview{
		TotalSubjects: len(subjects),
		WeeklyPattern: make(map[string]DayPattern, len(WeekdayKeys)),
		Subjects:      make([]SubjectPerformance, 0, len(subjects)),
		AtRisk:        []SubjectPerformance{},
		SafeToMiss:    []SubjectPerformance{},
	}
	for _, key := range WeekdayKeys {
		overview.WeeklyPattern[key] = DayPattern{}
	}

	for _, subject := range subjects {
		overview.TotalClasses += subject.Total
		overview.AttendedClasses += subject.Attended
		overview.Subjects = append(overview.Subjects, PerformanceFor(subject))
	}
	overview.OverallPercentage = Percentage(overview.AttendedClasses, overview.TotalClasses)

	// 科目视图按出勤率降序，调用方可按需重排
	slices.SortFunc(overview.Subjects, func(a, b SubjectPerformance) int {
		return cmp.Compare(b.Percentage, a.Percentage)
	})

	for _, performance := range overview.Subjects {
		if performance.RiskLevel == RiskHigh {
			overview.AtRisk = append(overview.AtRisk, performance)
		}
		if performance.Safe > 0 {
			overview.SafeToMiss = append(overview.SafeToMiss, performance)
		}
	}
	slices.SortFunc(overview.AtRisk, func(a, b SubjectPerformance) int {
		return cmp.Compare(a.Percentage, b.Percentage)
	})
	slices.SortFunc(overview.SafeToMiss, func(a, b SubjectPerformance) int {
		return cmp.Compare(b.Safe, a.Safe)
	})

	pattern, err := s.weeklyPattern()
	if err != nil {
		return nil, err
	}
	overview.WeeklyPattern = pattern

	return overview, nil
}

// weeklyPattern 把流水记录按星期归桶，cancelled 记录不计入分子分母
func (s *StatsService) weeklyPattern() (map[string]DayPattern, error) {
	var records []db.AttendanceRecord
	if err := s.db.Where("status <> ?", db.StatusCancelled).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}

	pattern := make(map[string]DayPattern, len(WeekdayKeys))
	for _, key := range WeekdayKeys {
		pattern[key] = DayPattern{}
	}

	for _, record := range records {
		day, err := ParseDate(record.EntryDate)
		if err != nil {
			continue
		}
		key := WeekdayKey(day)
		bucket := pattern[key]
		bucket.Total++
		if record.Status == db.StatusAttended {
			bucket.Attended++
		}
		pattern[key] = bucket
	}
	return pattern, nil
}
