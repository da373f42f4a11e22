package api

import (
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"proxedu/pkg/phone"
)

const (
	phoneTag    = "phone"
	notBlankTag = "notblank"
)

var validatorsOnce sync.Once

// registerValidators installs the custom tags on gin's validator engine.
func registerValidators() {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		// Use JSON tag names for errors instead of Go struct names.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		_ = v.RegisterValidation(phoneTag, func(fl validator.FieldLevel) bool {
			return phone.Valid(phone.Normalize(fl.Field().String()))
		})
		_ = v.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", notBlankTag:
		return "Maydon to'ldirilishi shart"
	case phoneTag:
		return "Telefon raqam noto'g'ri formatda"
	case "min":
		return "Qiymat juda qisqa"
	case "gte":
		return "Qiymat manfiy bo'lishi mumkin emas"
	default:
		return "Noto'g'ri qiymat"
	}
}

// bind decodes the JSON body and answers 400 with per-field errors on failure.
func bind(c *gin.Context, req interface{}, message string) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	extra := gin.H{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fieldMessage(fe)
		}
		extra["errors"] = fields
	}
	reply(c, http.StatusBadRequest, false, message, extra)
	return false
}
