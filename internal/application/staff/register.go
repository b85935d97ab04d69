package staff

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/staff"
	"github.com/xiebiao/library/pkg/logger"
)

// RegisterUseCase 馆员注册
type RegisterUseCase struct {
	staffService staff.Service
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(staffService staff.Service) *RegisterUseCase {
	return &RegisterUseCase{staffService: staffService}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string
	Password string
	Name     string
}

// StaffInfo 馆员信息（不含密码）
type StaffInfo struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*StaffInfo, error) {
	s, err := uc.staffService.Register(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		return nil, err
	}
	logger.L().Info("馆员注册", zap.Uint("staff_id", s.ID), zap.String("email", s.Email))
	return &StaffInfo{ID: s.ID, Email: s.Email, Name: s.Name}, nil
}
