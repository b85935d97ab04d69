package staff

import (
	"strings"
	"time"
)

// Staff 馆员账号（聚合根）
// 密码只保存bcrypt哈希，领域实体不暴露明文
type Staff struct {
	ID        uint
	Email     string
	Password  string // bcrypt哈希值
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewStaff 创建馆员（工厂方法）
// hashedPassword必须是bcrypt加密后的密码
func NewStaff(email, hashedPassword, name string) *Staff {
	now := time.Now()
	return &Staff{
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Password:  hashedPassword,
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Rename 修改显示名
func (s *Staff) Rename(name string) {
	s.Name = strings.TrimSpace(name)
	s.UpdatedAt = time.Now()
}
