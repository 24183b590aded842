package dto

import "time"

// SubmitEvaluationRequest 提交评教请求
type SubmitEvaluationRequest struct {
	TimetableID       int64              `json:"timetable_id"       binding:"required"`
	TotalScore        int                `json:"total_score"        binding:"min=0,max=100"`
	DimensionScores   map[string]float64 `json:"dimension_scores"   binding:"required"`
	ListenDate        string             `json:"listen_date"        binding:"required"` // 2006-01-02
	AdvantageContent  string             `json:"advantage_content"  binding:"omitempty,max=2000"`
	ProblemContent    string             `json:"problem_content"    binding:"omitempty,max=2000"`
	ImproveSuggestion string             `json:"improve_suggestion" binding:"omitempty,max=2000"`
	ListenDuration    *int               `json:"listen_duration"    binding:"omitempty,min=1"`
	ListenLocation    string             `json:"listen_location"    binding:"omitempty,max=64"`
	IsAnonymous       bool               `json:"is_anonymous"`
}

// ReviewEvaluationRequest 审核评教请求
type ReviewEvaluationRequest struct {
	Status        int    `json:"status"         binding:"oneof=0 1 2"`
	ReviewComment string `json:"review_comment" binding:"omitempty,max=1000"`
}

// EvaluationListRequest 评教记录列表查询参数
type EvaluationListRequest struct {
	Page         int    `form:"page"          binding:"omitempty,min=1"`
	PageSize     int    `form:"page_size"     binding:"omitempty,min=1,max=100"`
	StartDate    string `form:"start_date"    binding:"omitempty"`
	EndDate      string `form:"end_date"      binding:"omitempty"`
	Status       *int   `form:"status"        binding:"omitempty,oneof=0 1 2"`
	ScoreLevel   string `form:"score_level"   binding:"omitempty"`
	AcademicYear string `form:"academic_year" binding:"omitempty,academic_year"`
	Semester     int    `form:"semester"      binding:"omitempty,oneof=1 2"`
}

// EvaluationResponse 评教记录响应
type EvaluationResponse struct {
	ID                int64              `json:"id"`
	EvaluationNo      string             `json:"evaluation_no"`
	TimetableID       int64              `json:"timetable_id"`
	Timetable         *TimetableResponse `json:"timetable,omitempty"`
	TeachTeacherID    int64              `json:"teach_teacher_id"`
	TeachTeacherName  string             `json:"teach_teacher_name,omitempty"`
	ListenTeacherID   int64              `json:"listen_teacher_id"`
	ListenTeacherName string             `json:"listen_teacher_name,omitempty"` // 匿名记录对非管理员隐藏
	TotalScore        int                `json:"total_score"`
	DimensionScores   map[string]float64 `json:"dimension_scores,omitempty"`
	ScoreLevel        string             `json:"score_level"`
	AdvantageContent  string             `json:"advantage_content,omitempty"`
	ProblemContent    string             `json:"problem_content,omitempty"`
	ImproveSuggestion string             `json:"improve_suggestion,omitempty"`
	ListenDate        string             `json:"listen_date"`
	ListenDuration    *int               `json:"listen_duration,omitempty"`
	ListenLocation    string             `json:"listen_location,omitempty"`
	IsAnonymous       bool               `json:"is_anonymous"`
	EvalSource        string             `json:"eval_source,omitempty"`
	Status            int                `json:"status"`
	ReviewComment     string             `json:"review_comment,omitempty"`
	SubmitTime        time.Time          `json:"submit_time"`
}

// DimensionResponse 评价维度配置响应
type DimensionResponse struct {
	ID            int64   `json:"id"`
	DimensionCode string  `json:"dimension_code"`
	DimensionName string  `json:"dimension_name"`
	MaxScore      int     `json:"max_score"`
	Weight        float64 `json:"weight"`
	IsRequired    bool    `json:"is_required"`
	SortOrder     int     `json:"sort_order"`
}
