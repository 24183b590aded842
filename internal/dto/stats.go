package dto

// StatsPeriodRequest 统计周期查询参数（学年学期成对出现，或都省略）
type StatsPeriodRequest struct {
	AcademicYear string `form:"academic_year" binding:"omitempty,academic_year"`
	Semester     int    `form:"semester"      binding:"omitempty,oneof=1 2"`
}

// ScoreDistribution 四档得分分布（边界 90/75/60 左闭）
type ScoreDistribution struct {
	Excellent int `json:"excellent"` // >= 90
	Good      int `json:"good"`      // 75-89
	Passing   int `json:"passing"`   // 60-74
	Failing   int `json:"failing"`   // < 60
}

// TrendPoint 月度趋势点，按 YYYY-MM 升序
type TrendPoint struct {
	Month    string  `json:"month"` // 2025-03
	AvgScore float64 `json:"avg_score"`
	Count    int     `json:"count"`
}

// TeacherStatsResponse 教师评教统计
// 无评教记录时 count=0、均值缺省、分布全零，不是错误
type TeacherStatsResponse struct {
	TeacherID          int64              `json:"teacher_id"`
	TeacherName        string             `json:"teacher_name"`
	CollegeID          *int64             `json:"college_id,omitempty"`
	CollegeName        string             `json:"college_name,omitempty"`
	AcademicYear       string             `json:"academic_year,omitempty"`
	Semester           int                `json:"semester,omitempty"`
	TotalEvaluationNum int                `json:"total_evaluation_num"`
	PendingNum         int                `json:"pending_num"` // 待审核/待评教，不计入分数统计
	AvgTotalScore      *float64           `json:"avg_total_score,omitempty"`
	MaxScore           *int               `json:"max_score,omitempty"`
	MinScore           *int               `json:"min_score,omitempty"`
	DimensionAvgScores map[string]float64 `json:"dimension_avg_scores,omitempty"`
	ScoreDistribution  ScoreDistribution  `json:"score_distribution"`
	MonthlyTrend       []TrendPoint       `json:"monthly_trend,omitempty"`
	HighFreqProblems   []string           `json:"high_freq_problems,omitempty"`
	HighFreqSuggestions []string          `json:"high_freq_suggestions,omitempty"`
}

// TeacherRankItem 教师排名项（按均分降序，同分按教师 ID 升序）
type TeacherRankItem struct {
	Rank            int     `json:"rank"`
	TeacherID       int64   `json:"teacher_id"`
	TeacherName     string  `json:"teacher_name"`
	AvgScore        float64 `json:"avg_score"`
	EvaluationCount int     `json:"evaluation_count"`
}

// CollegeStatsResponse 学院评教统计
type CollegeStatsResponse struct {
	CollegeID          int64              `json:"college_id"`
	CollegeName        string             `json:"college_name"`
	AcademicYear       string             `json:"academic_year,omitempty"`
	Semester           int                `json:"semester,omitempty"`
	TotalEvaluationNum int                `json:"total_evaluation_num"`
	PendingNum         int                `json:"pending_num"`
	AvgTotalScore      *float64           `json:"avg_total_score,omitempty"`
	MaxScore           *int               `json:"max_score,omitempty"`
	MinScore           *int               `json:"min_score,omitempty"`
	ExcellenceRate     float64            `json:"excellence_rate"` // 最高档占比，百分数
	DimensionAvgScores map[string]float64 `json:"dimension_avg_scores,omitempty"`
	ScoreDistribution  ScoreDistribution  `json:"score_distribution"`
	MonthlyTrend       []TrendPoint       `json:"monthly_trend,omitempty"`
	TeacherRanking     []TeacherRankItem  `json:"teacher_ranking,omitempty"`
	HighFreqProblems   []string           `json:"high_freq_problems,omitempty"`
	HighFreqSuggestions []string          `json:"high_freq_suggestions,omitempty"`
}

// CollegeRankItem 学院排名项
type CollegeRankItem struct {
	Rank            int     `json:"rank"`
	CollegeID       int64   `json:"college_id"`
	CollegeName     string  `json:"college_name"`
	AvgScore        float64 `json:"avg_score"`
	EvaluationCount int     `json:"evaluation_count"`
}

// SchoolStatsResponse 全校评教统计
type SchoolStatsResponse struct {
	AcademicYear       string             `json:"academic_year,omitempty"`
	Semester           int                `json:"semester,omitempty"`
	TotalEvaluationNum int                `json:"total_evaluation_num"`
	PendingNum         int                `json:"pending_num"`
	AvgTotalScore      *float64           `json:"avg_total_score,omitempty"`
	MaxScore           *int               `json:"max_score,omitempty"`
	MinScore           *int               `json:"min_score,omitempty"`
	DimensionAvgScores map[string]float64 `json:"dimension_avg_scores,omitempty"`
	ScoreDistribution  ScoreDistribution  `json:"score_distribution"`
	MonthlyTrend       []TrendPoint       `json:"monthly_trend,omitempty"`
	CollegeRanking     []CollegeRankItem  `json:"college_ranking,omitempty"`
}

// SupervisorGroupItem 督导提交统计：按（学院, 教师）分组
type SupervisorGroupItem struct {
	CollegeID   int64   `json:"college_id"`
	CollegeName string  `json:"college_name"`
	TeacherID   int64   `json:"teacher_id"`
	TeacherName string  `json:"teacher_name"`
	Count       int     `json:"count"`
	AvgScore    float64 `json:"avg_score"`
}

// SupervisorLevelGroupItem 督导提交统计：按（得分等级, 学院, 教师）分组
type SupervisorLevelGroupItem struct {
	ScoreLevel  string `json:"score_level"`
	CollegeID   int64  `json:"college_id"`
	CollegeName string `json:"college_name"`
	TeacherID   int64  `json:"teacher_id"`
	TeacherName string `json:"teacher_name"`
	Count       int    `json:"count"`
}

// SupervisorStatsResponse 督导提交口径统计：同一记录集的两种分组投影
type SupervisorStatsResponse struct {
	SupervisorUserID int64                      `json:"supervisor_user_id,omitempty"`
	AcademicYear     string                     `json:"academic_year,omitempty"`
	Semester         int                        `json:"semester,omitempty"`
	TotalNum         int                        `json:"total_num"`
	ByTeacher        []SupervisorGroupItem      `json:"by_teacher"`
	ByLevel          []SupervisorLevelGroupItem `json:"by_level"`
}
