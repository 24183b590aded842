package model

// 负责范围类型
const (
	ScopeTypeCollege      = "college"
	ScopeTypeResearchRoom = "research_room"
)

// SupervisorScope 督导负责范围表 — 对应 supervisor_scopes
// 同一督导的存活三元组 (supervisor_user_id, scope_type, scope_id) 唯一；
// 设置新范围时整体替换：软删除全部旧存活行后插入新行，单事务内完成
type SupervisorScope struct {
	ID               int64  `gorm:"primaryKey;autoIncrement"        json:"id"`
	SupervisorUserID int64  `gorm:"not null;index"                  json:"supervisor_user_id"`
	ScopeType        string `gorm:"type:varchar(16);not null;index" json:"scope_type"` // college | research_room
	ScopeID          int64  `gorm:"not null;index"                  json:"scope_id"`
	SoftDeleteModel
}

// TableName 指定表名
func (SupervisorScope) TableName() string { return "supervisor_scopes" }
