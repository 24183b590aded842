package model

// 内置角色编码
const (
	RoleSchoolAdmin  = "school_admin"
	RoleCollegeAdmin = "college_admin"
	RoleSupervisor   = "supervisor"
	RoleTeacher      = "teacher"
)

// Role 角色表 — 对应 roles
type Role struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"        json:"id"`
	RoleCode  string `gorm:"type:varchar(32);not null;index" json:"role_code"` // 存活行内唯一
	RoleName  string `gorm:"type:varchar(50);not null"       json:"role_name"`
	RoleLevel int    `gorm:"not null;default:0"              json:"role_level"` // 数值越小权限越高，用于"不高于本级"过滤
	Status    int    `gorm:"not null;default:1"              json:"status"`
	SoftDeleteModel
}

// TableName 指定表名
func (Role) TableName() string { return "roles" }

// UserRole 用户-角色关联表 — 对应 user_roles
// (user_id, role_id) 唯一
type UserRole struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;index"           json:"user_id"`
	RoleID int64 `gorm:"not null;index"           json:"role_id"`
	BaseModel
}

// TableName 指定表名
func (UserRole) TableName() string { return "user_roles" }
