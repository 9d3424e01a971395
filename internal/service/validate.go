package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"lostfound-api/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseDate(fl.Field().String())
		return err == nil
	})
	return v
}

// fieldErrors 收集字段级错误，键为 JSON 字段名
type fieldErrors map[string][]string

func (f fieldErrors) add(field, msg string) { f[field] = append(f[field], msg) }

func (f fieldErrors) has(field string) bool { return len(f[field]) > 0 }

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return domain.Validation(f)
}

// checkStruct 跑 validate 标签，把结果并入 f
func (f fieldErrors) checkStruct(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return domain.Internal("validation failed", err)
	}
	for _, fe := range ve {
		f.add(fe.Field(), message(fe.Field(), fe))
	}
	return nil
}

// checkVar 校验单个值（用于 patch 字段）
func (f fieldErrors) checkVar(field string, value any, tag string) error {
	err := validate.Var(value, tag)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return domain.Internal("validation failed", err)
	}
	for _, fe := range ve {
		f.add(field, message(field, fe))
	}
	return nil
}

func message(field string, fe validator.FieldError) string {
	name := strings.ReplaceAll(field, "_", " ")
	kind := fe.Kind()
	isNumber := kind >= reflect.Int && kind <= reflect.Float64
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", name)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", name)
	case "max":
		if isNumber {
			return fmt.Sprintf("The %s field must not be greater than %s.", name, fe.Param())
		}
		return fmt.Sprintf("The %s field must not be greater than %s characters.", name, fe.Param())
	case "min":
		if isNumber {
			return fmt.Sprintf("The %s field must be at least %s.", name, fe.Param())
		}
		return fmt.Sprintf("The %s field must be at least %s characters.", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", name)
	case "eqfield":
		return fmt.Sprintf("The %s field confirmation does not match.", name)
	case "date":
		return fmt.Sprintf("The %s field must be a valid date.", name)
	}
	return fmt.Sprintf("The %s field is invalid.", name)
}

// nullable 空串按 null 处理
func nullable(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func parseOptionalDate(s *string) (*domain.Date, error) {
	if s == nil {
		return nil, nil
	}
	d, err := domain.ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// asDomain 保留已分类的错误，其余包成 Internal
func asDomain(msg string, err error) error {
	if domain.KindOf(err) != "" {
		return err
	}
	return domain.Internal(msg, err)
}
