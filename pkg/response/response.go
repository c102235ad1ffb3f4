// Package response 统一的 JSON 响应与错误输出
package response

import (
	"net/http"
	"reflect"
	"strings"
	"sync"

	apperrors "EmergencyAssist/pkg/errors"
	"EmergencyAssist/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// FieldError 字段级校验失败
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorBody 错误响应体
type ErrorBody struct {
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

var tagOnce sync.Once

// UseJSONFieldNames 让校验错误中的字段名使用 json tag
func UseJSONFieldNames() {
	tagOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
}

func JSON(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// Fail 以指定状态码输出错误消息
func Fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorBody{Message: message})
}

// BindError 输出请求绑定失败，validator 错误会展开为字段列表
func BindError(c *gin.Context, message string, err error) {
	body := ErrorBody{Message: message}
	var verrs validator.ValidationErrors
	if apperrors.As(err, &verrs) {
		for _, fe := range verrs {
			body.Errors = append(body.Errors, FieldError{
				Field:   fieldPath(fe),
				Message: describe(fe),
			})
		}
	} else if err != nil {
		body.Errors = []FieldError{{Field: "body", Message: err.Error()}}
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, body)
}

// Error 根据错误分类输出状态码，500 时记录日志且不暴露底层细节
func Error(c *gin.Context, err error, message string) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error(message,
			zap.Error(err),
			zap.String("kind", apperrors.KindOf(err).String()),
			zap.NamedError("cause", apperrors.Cause(err)),
			zap.String("stack", apperrors.GetStack(err)),
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString(logger.RequestIDKey)),
		)
		_ = c.Error(err)
		c.AbortWithStatusJSON(status, ErrorBody{Message: message})
		return
	}
	c.AbortWithStatusJSON(status, ErrorBody{Message: apperrors.Message(err)})
}

// fieldPath 去掉顶层结构体名，例如 "ProtocolInsert.instructions.steps" -> "instructions.steps"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Required"
	case "oneof":
		return "Must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.Array {
			return "Must contain at least " + fe.Param() + " item(s)"
		}
		return "Must be at least " + fe.Param() + " characters"
	case "max":
		return "Must be at most " + fe.Param() + " characters"
	}
	return "Failed on " + fe.Tag() + " validation"
}
