package dto

import "time"

// AssignTasksRequest 分配督导评教任务请求
type AssignTasksRequest struct {
	SupervisorUserIDs []int64    `json:"supervisor_user_ids" binding:"required,min=1"`
	TimetableIDs      []int64    `json:"timetable_ids"       binding:"required,min=1"`
	Deadline          *time.Time `json:"deadline"`
	Note              string     `json:"note" binding:"omitempty,max=500"`
}

// AssignTasksResponse 分配结果
type AssignTasksResponse struct {
	AssignmentsCreated int `json:"assignments_created"`
	SupervisorCount    int `json:"supervisor_count"`
	TimetableCount     int `json:"timetable_count"`
}

// TaskItem 督导任务列表项
type TaskItem struct {
	ID             int64  `json:"id"`
	TimetableID    int64  `json:"timetable_id"`
	CourseName     string `json:"course_name"`
	ClassName      string `json:"class_name"`
	AcademicYear   string `json:"academic_year"`
	Semester       int    `json:"semester"`
	SupervisorID   int64  `json:"supervisor_id"`
	SupervisorName string `json:"supervisor_name"`
	Status         int    `json:"status"`
	StatusText     string `json:"status_text"` // 待评教 | 已完成 | 已作废
	AssignTime     string `json:"assign_time"`
	Note           string `json:"note,omitempty"`
}
