package handler

import (
	"github.com/gin-gonic/gin"

	appstaff "github.com/xiebiao/library/internal/application/staff"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/response"
)

// StaffHandler 馆员账号
type StaffHandler struct {
	register *appstaff.RegisterUseCase
	login    *appstaff.LoginUseCase
	logout   *appstaff.LogoutUseCase
	refresh  *appstaff.RefreshTokenUseCase
}

// NewStaffHandler 创建馆员处理器
func NewStaffHandler(
	register *appstaff.RegisterUseCase,
	login *appstaff.LoginUseCase,
	logout *appstaff.LogoutUseCase,
	refresh *appstaff.RefreshTokenUseCase,
) *StaffHandler {
	return &StaffHandler{register: register, login: login, logout: logout, refresh: refresh}
}

// Register 馆员注册
// @Summary      馆员注册
// @Tags         馆员
// @Accept       json
// @Produce      json
// @Param        request body dto.RegisterRequest true "注册信息"
// @Success      201 {object} response.Response{data=appstaff.StaffInfo}
// @Failure      400 {object} response.Response "邮箱已注册或密码强度不足"
// @Router       /api/v1/staff/register [post]
func (h *StaffHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	result, err := h.register.Execute(c.Request.Context(), appstaff.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Login 馆员登录
// @Summary      馆员登录
// @Tags         馆员
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "登录信息"
// @Success      200 {object} response.Response{data=appstaff.LoginResponse}
// @Failure      401 {object} response.Response "密码错误"
// @Failure      404 {object} response.Response "账号不存在"
// @Router       /api/v1/staff/login [post]
func (h *StaffHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	result, err := h.login.Execute(c.Request.Context(), appstaff.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Logout 注销当前Token
// @Summary      馆员注销
// @Tags         馆员
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/staff/logout [post]
func (h *StaffHandler) Logout(c *gin.Context) {
	if err := h.logout.Execute(c.Request.Context(), middleware.GetToken(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Refresh 换发Access Token
// @Summary      刷新Token
// @Tags         馆员
// @Accept       json
// @Produce      json
// @Param        request body dto.RefreshRequest true "Refresh Token"
// @Success      200 {object} response.Response{data=appstaff.RefreshResponse}
// @Failure      401 {object} response.Response "Token无效或已注销"
// @Router       /api/v1/staff/refresh [post]
func (h *StaffHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	result, err := h.refresh.Execute(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
