package model

import (
	"time"

	"gorm.io/datatypes"
)

// 评教记录状态
const (
	EvalStatusVoid          = 0 // 作废（仅审核动作可达）
	EvalStatusValid         = 1 // 有效，计入统计
	EvalStatusPendingReview = 2 // 待处理：主流程为"待审核"，任务分配流程为"待评教占位"
)

// 评教来源
const (
	EvalSourcePeer       = "peer"       // 同行互评
	EvalSourceSupervisor = "supervisor" // 督导（含任务分配产生的占位记录）
)

// 得分等级
const (
	ScoreLevelExcellent = "优秀"
	ScoreLevelGood      = "良好"
	ScoreLevelPassing   = "合格"
	ScoreLevelFailing   = "不合格"
)

// TeachingEvaluation 评教记录表 — 对应 teaching_evaluations
// 一条记录为一次听课评分事件。
// 存活行内 (timetable_id, listen_teacher_id, listen_date) 唯一；
// listen_teacher_id 不得等于课表的 teacher_id（禁止自评）
type TeachingEvaluation struct {
	ID                int64             `gorm:"primaryKey;autoIncrement"       json:"id"`
	EvaluationNo      string            `gorm:"type:varchar(40);not null;uniqueIndex" json:"evaluation_no"`
	TimetableID       int64             `gorm:"not null;index"                 json:"timetable_id"`
	TeachTeacherID    int64             `gorm:"not null;index"                 json:"teach_teacher_id"`  // 授课教师（被评者）
	ListenTeacherID   int64             `gorm:"not null;index"                 json:"listen_teacher_id"` // 听课教师（评价者）
	TotalScore        int               `gorm:"not null"                       json:"total_score"`       // 0-100
	DimensionScores   datatypes.JSONMap `gorm:"type:jsonb"                     json:"dimension_scores"`  // 维度编码 → 得分，键集允许不一致
	ScoreLevel        string            `gorm:"type:varchar(8);not null"       json:"score_level"`
	AdvantageContent  string            `gorm:"type:text"                      json:"advantage_content,omitempty"`
	ProblemContent    string            `gorm:"type:text"                      json:"problem_content,omitempty"`
	ImproveSuggestion string            `gorm:"type:text"                      json:"improve_suggestion,omitempty"`
	ListenDate        time.Time         `gorm:"type:date;not null;index"       json:"listen_date"`
	ListenDuration    *int              `gorm:""                               json:"listen_duration,omitempty"` // 分钟
	ListenLocation    string            `gorm:"type:varchar(64)"               json:"listen_location,omitempty"`
	IsAnonymous       bool              `gorm:"not null;default:false"         json:"is_anonymous"`
	EvalSource        *string           `gorm:"type:varchar(16);index"         json:"eval_source,omitempty"` // peer | supervisor；历史数据为 NULL
	Status            int               `gorm:"not null;default:1;index"       json:"status"`
	ReviewComment     string            `gorm:"type:text"                      json:"review_comment,omitempty"`
	SubmitTime        time.Time         `gorm:"not null"                       json:"submit_time"`
	SoftDeleteModel

	// 关联
	Timetable     *Timetable `gorm:"foreignKey:TimetableID;references:ID"     json:"timetable,omitempty"`
	TeachTeacher  *User      `gorm:"foreignKey:TeachTeacherID;references:ID"  json:"teach_teacher,omitempty"`
	ListenTeacher *User      `gorm:"foreignKey:ListenTeacherID;references:ID" json:"listen_teacher,omitempty"`
}

// TableName 指定表名
func (TeachingEvaluation) TableName() string { return "teaching_evaluations" }

// FromSupervisor 是否计入督导提交口径（NULL 视为历史督导数据，兼容旧库）
func (e *TeachingEvaluation) FromSupervisor() bool {
	return e.EvalSource == nil || *e.EvalSource == EvalSourceSupervisor
}
