package dto

// RegisterRequest 馆员注册
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=254" example:"librarian@example.org"`
	Password string `json:"password" binding:"required,min=8,max=20" example:"secret123"`
	Name     string `json:"name" binding:"required,min=2,max=50" example:"Marie"`
}

// LoginRequest 馆员登录
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"librarian@example.org"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

// RefreshRequest 刷新Access Token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}
