package validator

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterGinValidators 在gin的validator引擎上注册自定义标签
//
//	isbn13  - ISBN-13校验位
//	iso2    - 两位字母代码
//	pubyear - 出版年份范围
//
// 同时让字段错误使用json名称，便于客户端定位
func RegisterGinValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("gin validator引擎类型不符: %T", binding.Validator.Engine())
			return
		}
		err = Register(v)
	})
	return err
}

// Register 向任意validator实例注册自定义规则（测试中可直接使用validator.New()）
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	rules := map[string]validator.Func{
		"isbn13": func(fl validator.FieldLevel) bool {
			return ValidISBN13(fl.Field().String())
		},
		"iso2": func(fl validator.FieldLevel) bool {
			return ValidISO2(fl.Field().String())
		},
		"pubyear": func(fl validator.FieldLevel) bool {
			return ValidPublicationYear(int(fl.Field().Int()), time.Now())
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("注册校验规则%s失败: %w", tag, err)
		}
	}
	return nil
}

// FieldErrors 把validator错误转换为 字段 -> 规则 的映射
func FieldErrors(err error) map[string]string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}
