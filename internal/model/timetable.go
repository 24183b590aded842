package model

// 课表同步来源；0 表示手工录入，非 0 时配合 external_id 构成教务同步身份键
const (
	SyncSourceManual          = 0
	SyncSourceAcademicAffairs = 1
)

// Timetable 课表表 — 对应 timetables
// 一条记录为一个教学时段：教师 + 班级 + 课程 + 星期/节次/周次
// 幂等身份键二选一：
//   - 教务同步：(sync_source, external_id)
//   - 手工录入：(academic_year, semester, teacher_id, class_name, course_name,
//     weekday, period, section_time, week_info, classroom)
//
// 均只约束存活行
type Timetable struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"         json:"id"`
	AcademicYear string `gorm:"type:varchar(16);not null;index"  json:"academic_year"` // 如 2024-2025
	Semester     int    `gorm:"type:smallint;not null"           json:"semester"`      // 1 | 2
	TeacherID    int64  `gorm:"not null;index"                   json:"teacher_id"`
	CollegeID    int64  `gorm:"not null;index"                   json:"college_id"`
	ClassName    string `gorm:"type:varchar(64);not null"        json:"class_name"`
	CourseName   string `gorm:"type:varchar(100);not null"       json:"course_name"`
	CourseType   string `gorm:"type:varchar(32)"                 json:"course_type,omitempty"`
	Weekday      int    `gorm:"type:smallint;not null"           json:"weekday"` // 1-7
	Period       int    `gorm:"type:smallint;not null"           json:"period"`  // 第几大节
	SectionTime  string `gorm:"type:varchar(32);not null"        json:"section_time"` // 如 08:00-09:40
	WeekInfo     string `gorm:"type:varchar(64);not null"        json:"week_info"`    // 周次模式，如 1-16周 / 1-15单周
	Classroom    string `gorm:"type:varchar(64);not null;default:''" json:"classroom"`
	SyncSource   int    `gorm:"not null;default:0"               json:"sync_source"`
	ExternalID   string `gorm:"type:varchar(64);index"           json:"external_id,omitempty"`
	SyncStatus   int    `gorm:"not null;default:1"               json:"sync_status"`
	SoftDeleteModel

	// 关联
	Teacher *User    `gorm:"foreignKey:TeacherID;references:ID" json:"teacher,omitempty"`
	College *College `gorm:"foreignKey:CollegeID;references:ID" json:"college,omitempty"`
}

// TableName 指定表名
func (Timetable) TableName() string { return "timetables" }

// HasSyncIdentity 是否具备教务同步身份键
func (t *Timetable) HasSyncIdentity() bool {
	return t.SyncSource != SyncSourceManual && t.ExternalID != ""
}
