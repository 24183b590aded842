package dto

// CreateCollegeRequest 创建学院请求
type CreateCollegeRequest struct {
	CollegeCode string `json:"college_code" binding:"required,max=32"`
	CollegeName string `json:"college_name" binding:"required,max=50"`
}

// UpdateCollegeRequest 更新学院请求
type UpdateCollegeRequest struct {
	CollegeName *string `json:"college_name" binding:"omitempty,max=50"`
}

// CollegeResponse 学院响应
type CollegeResponse struct {
	ID          int64  `json:"id"`
	CollegeCode string `json:"college_code"`
	CollegeName string `json:"college_name"`
}

// CreateResearchRoomRequest 创建教研室请求
type CreateResearchRoomRequest struct {
	RoomCode  string `json:"room_code"  binding:"required,max=32"`
	RoomName  string `json:"room_name"  binding:"required,max=50"`
	CollegeID int64  `json:"college_id" binding:"required"`
}

// UpdateResearchRoomRequest 更新教研室请求
type UpdateResearchRoomRequest struct {
	RoomName *string `json:"room_name" binding:"omitempty,max=50"`
}

// ResearchRoomResponse 教研室响应
type ResearchRoomResponse struct {
	ID          int64  `json:"id"`
	RoomCode    string `json:"room_code"`
	RoomName    string `json:"room_name"`
	CollegeID   int64  `json:"college_id"`
	CollegeName string `json:"college_name,omitempty"`
}
