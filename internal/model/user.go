package model

// 用户状态
const (
	UserStatusDisabled = 0
	UserStatusActive   = 1
)

// User 用户表 — 对应 users
// 教师、督导、管理员共用一张表，身份由角色关联决定
type User struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"           json:"id"`
	UserNo    string `gorm:"type:varchar(32);not null;index"    json:"user_no"` // 工号（存活行内唯一）
	UserName  string `gorm:"type:varchar(50);not null"          json:"user_name"`
	Password  string `gorm:"type:varchar(255);not null"         json:"-"`
	CollegeID *int64 `gorm:"index"                              json:"college_id,omitempty"` // 所属学院，可为空
	Status    int    `gorm:"not null;default:1"                 json:"status"`
	SoftDeleteModel

	// 关联
	College *College `gorm:"foreignKey:CollegeID;references:ID" json:"college,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }
