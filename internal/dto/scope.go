package dto

// ScopeItem 一条负责范围配置
type ScopeItem struct {
	ScopeType string `json:"scope_type" binding:"required,oneof=college research_room"`
	ScopeID   int64  `json:"scope_id"   binding:"required"`
}

// ReplaceScopeRequest 整体替换督导负责范围请求
// 空列表合法：表示清空显式范围，回落到督导所属学院
type ReplaceScopeRequest struct {
	Scopes []ScopeItem `json:"scopes" binding:"dive"`
}

// ScopeResponse 督导当前生效范围响应
type ScopeResponse struct {
	SupervisorUserID int64   `json:"supervisor_user_id"`
	CollegeIDs       []int64 `json:"college_ids"`
	ResearchRoomIDs  []int64 `json:"research_room_ids"`
	Fallback         bool    `json:"fallback"` // true 表示由所属学院回落得到
}
