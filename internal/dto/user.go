package dto

// CreateUserRequest 创建用户请求（管理员操作）
type CreateUserRequest struct {
	UserNo    string  `json:"user_no"    binding:"required,max=32"`
	UserName  string  `json:"user_name"  binding:"required,max=50"`
	Password  string  `json:"password"   binding:"required,min=6,max=64"`
	CollegeID *int64  `json:"college_id"`
	RoleCodes []string `json:"role_codes" binding:"omitempty,dive,max=32"`
}

// UpdateUserRequest 更新用户请求；nil 字段表示不变更
type UpdateUserRequest struct {
	UserName  *string `json:"user_name"  binding:"omitempty,max=50"`
	CollegeID *int64  `json:"college_id"`
	Status    *int    `json:"status"     binding:"omitempty,oneof=0 1"`
}

// UserResponse 用户响应
type UserResponse struct {
	ID          int64    `json:"id"`
	UserNo      string   `json:"user_no"`
	UserName    string   `json:"user_name"`
	CollegeID   *int64   `json:"college_id,omitempty"`
	CollegeName string   `json:"college_name,omitempty"`
	Status      int      `json:"status"`
	RoleCodes   []string `json:"role_codes,omitempty"`
}

// AssignRolesRequest 分配角色请求
type AssignRolesRequest struct {
	RoleCodes []string `json:"role_codes" binding:"required,min=1,dive,max=32"`
}
