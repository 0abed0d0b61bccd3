package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"culture-points/internal/rubric"
)

// Register 向 gin 默认校验器注册评分标准相关规则，启动时调用一次
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin 校验引擎不是 validator/v10")
	}
	return RegisterRules(v)
}

// RegisterRules 注册自定义规则：
//   - dimension: 价值观维度键
//   - level:     行为等级键
func RegisterRules(v *validator.Validate) error {
	if err := v.RegisterValidation("dimension", func(fl validator.FieldLevel) bool {
		return rubric.ValidDimension(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("level", func(fl validator.FieldLevel) bool {
		return rubric.ValidLevel(fl.Field().String())
	})
}

// FormatErrors 将校验错误转换为可读的中文提示
func FormatErrors(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return "请求参数格式错误"
	}

	msgs := make([]string, 0, len(ve))
	for _, e := range ve {
		field := e.Field()
		switch e.Tag() {
		case "required":
			msgs = append(msgs, field+" 不能为空")
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s 不能小于 %s", field, e.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s 不能超过 %s", field, e.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s 必须是以下之一: %s", field, e.Param()))
		case "datetime":
			msgs = append(msgs, field+" 日期格式应为 YYYY-MM-DD")
		case "dimension":
			msgs = append(msgs, field+" 不是有效的价值观维度")
		case "level":
			msgs = append(msgs, field+" 不是有效的行为等级")
		default:
			msgs = append(msgs, field+" 格式无效")
		}
	}
	return strings.Join(msgs, "; ")
}
