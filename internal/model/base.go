package model

import "time"

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// SoftDeleteModel 支持逻辑删除的审计字段
// is_delete 是一等业务状态：所有唯一性约束均定义在"存活行"（is_delete=false）之上，
// 因此用显式布尔列而非 gorm.DeletedAt，查询条件由 Repository 层显式携带。
type SoftDeleteModel struct {
	BaseModel
	IsDelete bool `gorm:"not null;default:false;index" json:"is_delete"`
}
