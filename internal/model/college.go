package model

// College 学院表 — 对应 colleges
type College struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"        json:"id"`
	CollegeCode string `gorm:"type:varchar(32);not null;index" json:"college_code"` // 存活行内唯一
	CollegeName string `gorm:"type:varchar(50);not null"       json:"college_name"`
	SoftDeleteModel
}

// TableName 指定表名
func (College) TableName() string { return "colleges" }

// ResearchRoom 教研室表 — 对应 research_rooms
type ResearchRoom struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"        json:"id"`
	RoomCode  string `gorm:"type:varchar(32);not null;index" json:"room_code"` // 存活行内唯一
	RoomName  string `gorm:"type:varchar(50);not null"       json:"room_name"`
	CollegeID int64  `gorm:"not null;index"                  json:"college_id"`
	SoftDeleteModel

	// 关联
	College *College `gorm:"foreignKey:CollegeID;references:ID" json:"college,omitempty"`
}

// TableName 指定表名
func (ResearchRoom) TableName() string { return "research_rooms" }
