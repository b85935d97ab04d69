package handler

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/xiebiao/library/pkg/errors"
	pkgvalidator "github.com/xiebiao/library/pkg/validator"
)

// bindError 绑定失败统一转换为参数错误（422）
// 校验失败时在提示中列出 字段(规则)
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.ErrBindError.WithCause(err)
	}

	fields := pkgvalidator.FieldErrors(verrs)
	names := make([]string, 0, len(fields))
	for field, tag := range fields {
		names = append(names, fmt.Sprintf("%s(%s)", field, tag))
	}
	sort.Strings(names)
	return apperrors.InvalidParams("参数校验失败: %s", strings.Join(names, ", "))
}

// pathID 解析路径中的正整数ID
func pathID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.InvalidParams("%s必须是正整数", name)
	}
	return uint(id), nil
}
