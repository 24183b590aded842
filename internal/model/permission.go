package model

// 权限类型
const (
	PermissionTypeView      = "view"
	PermissionTypeOperate   = "operate"
	PermissionTypeExport    = "export"
	PermissionTypeConfigure = "configure"
)

// Permission 权限字典表 — 对应 permissions
// 权限编码采用冒号分隔命名空间，如 evaluation:submit、stats:view:college
type Permission struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"        json:"id"`
	PermissionCode string `gorm:"type:varchar(64);not null;index" json:"permission_code"` // 存活行内唯一
	PermissionName string `gorm:"type:varchar(50);not null"       json:"permission_name"`
	PermissionType string `gorm:"type:varchar(16);not null"       json:"permission_type"`
	ParentID       *int64 `gorm:"index"                           json:"parent_id,omitempty"` // 树形展示用
	SortOrder      int    `gorm:"not null;default:0"              json:"sort_order"`
	SoftDeleteModel
}

// TableName 指定表名
func (Permission) TableName() string { return "permissions" }

// RolePermission 角色-权限关联表 — 对应 role_permissions
// (role_id, permission_id) 唯一
type RolePermission struct {
	ID           int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	RoleID       int64 `gorm:"not null;index"           json:"role_id"`
	PermissionID int64 `gorm:"not null;index"           json:"permission_id"`
	BaseModel
}

// TableName 指定表名
func (RolePermission) TableName() string { return "role_permissions" }
