package model

// EvaluationDimension 评价维度配置表 — 对应 evaluation_dimensions
// 提交界面与统计聚合的只读输入，不由核心流程创建
type EvaluationDimension struct {
	ID            int64   `gorm:"primaryKey;autoIncrement"        json:"id"`
	DimensionCode string  `gorm:"type:varchar(32);not null;index" json:"dimension_code"` // 存活行内唯一
	DimensionName string  `gorm:"type:varchar(50);not null"       json:"dimension_name"`
	MaxScore      int     `gorm:"not null;default:100"            json:"max_score"`
	Weight        float64 `gorm:"not null;default:1"              json:"weight"`
	IsRequired    bool    `gorm:"not null;default:false"          json:"is_required"`
	SortOrder     int     `gorm:"not null;default:0"              json:"sort_order"`
	Status        int     `gorm:"not null;default:1"              json:"status"`
	SoftDeleteModel
}

// TableName 指定表名
func (EvaluationDimension) TableName() string { return "evaluation_dimensions" }
