package model

import "gorm.io/datatypes"

// TeacherEvaluationStat 教师评教统计快照 — 对应 teacher_evaluation_stats
// (teacher_id, stat_year, stat_semester) 唯一。
// 纯缓存：可随时由 teaching_evaluations + timetables 重算，删除不丢数据
type TeacherEvaluationStat struct {
	ID                 int64             `gorm:"primaryKey;autoIncrement"  json:"id"`
	TeacherID          int64             `gorm:"not null;index"            json:"teacher_id"`
	CollegeID          int64             `gorm:"not null;index"            json:"college_id"`
	StatYear           string            `gorm:"type:varchar(16);not null" json:"stat_year"`
	StatSemester       int               `gorm:"type:smallint;not null"    json:"stat_semester"`
	TotalEvaluationNum int               `gorm:"not null;default:0"        json:"total_evaluation_num"`
	AvgTotalScore      *float64          `gorm:""                          json:"avg_total_score,omitempty"`
	MaxScore           *int              `gorm:""                          json:"max_score,omitempty"`
	MinScore           *int              `gorm:""                          json:"min_score,omitempty"`
	DimensionAvgScores datatypes.JSONMap `gorm:"type:jsonb"                json:"dimension_avg_scores,omitempty"`
	BaseModel
}

// TableName 指定表名
func (TeacherEvaluationStat) TableName() string { return "teacher_evaluation_stats" }

// CollegeEvaluationStat 学院评教统计快照 — 对应 college_evaluation_stats
// (college_id, stat_year, stat_semester) 唯一；同为可重算缓存
type CollegeEvaluationStat struct {
	ID                 int64             `gorm:"primaryKey;autoIncrement"  json:"id"`
	CollegeID          int64             `gorm:"not null;index"            json:"college_id"`
	StatYear           string            `gorm:"type:varchar(16);not null" json:"stat_year"`
	StatSemester       int               `gorm:"type:smallint;not null"    json:"stat_semester"`
	TotalEvaluationNum int               `gorm:"not null;default:0"        json:"total_evaluation_num"`
	AvgTotalScore      *float64          `gorm:""                          json:"avg_total_score,omitempty"`
	DimensionAvgScores datatypes.JSONMap `gorm:"type:jsonb"                json:"dimension_avg_scores,omitempty"`
	BaseModel
}

// TableName 指定表名
func (CollegeEvaluationStat) TableName() string { return "college_evaluation_stats" }
