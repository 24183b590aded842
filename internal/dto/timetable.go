package dto

// UpsertTimetableRequest 课表 upsert 请求
// sync_source != 0 且 external_id 非空时按同步身份键匹配，否则按手工复合键匹配
type UpsertTimetableRequest struct {
	AcademicYear string `json:"academic_year" binding:"required,academic_year"`
	Semester     int    `json:"semester"      binding:"required,oneof=1 2"`
	TeacherID    int64  `json:"teacher_id"    binding:"required"`
	CollegeID    int64  `json:"college_id"    binding:"required"`
	ClassName    string `json:"class_name"    binding:"required,max=64"`
	CourseName   string `json:"course_name"   binding:"required,max=100"`
	CourseType   string `json:"course_type"   binding:"omitempty,max=32"`
	Weekday      int    `json:"weekday"       binding:"required,min=1,max=7"`
	Period       int    `json:"period"        binding:"required,min=1,max=8"`
	SectionTime  string `json:"section_time"  binding:"required,max=32"`
	WeekInfo     string `json:"week_info"     binding:"required,max=64"`
	Classroom    string `json:"classroom"     binding:"omitempty,max=64"`
	SyncSource   int    `json:"sync_source"`
	ExternalID   string `json:"external_id"   binding:"omitempty,max=64"`
}

// TimetableResponse 课表响应
type TimetableResponse struct {
	ID           int64  `json:"id"`
	AcademicYear string `json:"academic_year"`
	Semester     int    `json:"semester"`
	TeacherID    int64  `json:"teacher_id"`
	TeacherName  string `json:"teacher_name,omitempty"`
	CollegeID    int64  `json:"college_id"`
	CollegeName  string `json:"college_name,omitempty"`
	ClassName    string `json:"class_name"`
	CourseName   string `json:"course_name"`
	CourseType   string `json:"course_type,omitempty"`
	Weekday      int    `json:"weekday"`
	Period       int    `json:"period"`
	SectionTime  string `json:"section_time"`
	WeekInfo     string `json:"week_info"`
	Classroom    string `json:"classroom"`
	SyncSource   int    `json:"sync_source"`
	ExternalID   string `json:"external_id,omitempty"`
}

// ImportTimetableResponse Excel 批量导入响应
type ImportTimetableResponse struct {
	Imported int      `json:"imported"` // 成功 upsert 的行数
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"` // 逐行错误信息
}
