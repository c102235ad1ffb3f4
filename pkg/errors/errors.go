package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// Kind 错误分类，决定 HTTP 状态码
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUpstream
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUpstream:
		return "upstream"
	case KindInternal:
		return "internal"
	}
	return "unknown"
}

// Error 带分类与调用栈的错误
type Error struct {
	Kind    Kind       `json:"-"`
	Code    int        `json:"code"`
	Message string     `json:"message"`
	Err     error      `json:"-"`
	Stack   string     `json:"stack,omitempty"`
	Context []KeyValue `json:"context,omitempty"`
}

// KeyValue 附加的上下文
type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return e.Message + ": " + e.Err.Error()
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	}
	return "unknown error"
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newKind(kind Kind, err error, message string) *Error {
	return &Error{
		Kind:    kind,
		Code:    kindStatus(kind),
		Message: message,
		Err:     err,
		Stack:   captureStack(),
	}
}

// Validation 请求数据不合法
func Validation(message string) *Error { return newKind(KindValidation, nil, message) }

// NotFound 资源不存在
func NotFound(message string) *Error { return newKind(KindNotFound, nil, message) }

// Conflict 资源冲突，如重复的幂等键
func Conflict(message string) *Error { return newKind(KindConflict, nil, message) }

// Upstream 外部服务（AI provider 等）调用失败
func Upstream(err error, message string) *Error { return newKind(KindUpstream, err, message) }

// Internal 其他内部错误
func Internal(err error, message string) *Error { return newKind(KindInternal, err, message) }

// Wrap 包装错误，保留底层错误的分类
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}
	return newKind(KindOf(err), err, message)
}

// Wrapf 包装错误并格式化消息
func Wrapf(err error, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return newKind(KindOf(err), err, fmt.Sprintf(format, args...))
}

// New 创建未分类的错误
func New(message string) *Error {
	return newKind(KindUnknown, nil, message)
}

// Errorf 创建未分类的格式化错误
func Errorf(format string, args ...any) *Error {
	return newKind(KindUnknown, nil, fmt.Sprintf(format, args...))
}

// WithContext 返回附加了上下文的新错误，原错误不变
func (e *Error) WithContext(key, value string) *Error {
	if e == nil {
		return nil
	}
	next := *e
	next.Context = append(append([]KeyValue(nil), e.Context...), KeyValue{Key: key, Value: value})
	return &next
}

// KindOf 沿错误链查找第一个已分类的 Error
func KindOf(err error) Kind {
	for err != nil {
		var e *Error
		if !stderrors.As(err, &e) {
			return KindUnknown
		}
		if e.Kind != KindUnknown {
			return e.Kind
		}
		err = e.Err
	}
	return KindUnknown
}

// HTTPStatus 将错误映射为 HTTP 状态码，未分类的错误为 500
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return kindStatus(KindOf(err))
}

func kindStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUpstream:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// Message 返回面向用户的消息，不包含底层错误细节
func Message(err error) string {
	var e *Error
	if stderrors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// GetStack 返回调用栈
func GetStack(err error) string {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Stack
	}
	return ""
}

func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target any) bool { return stderrors.As(err, target) }

// Cause 返回最底层的错误
func Cause(err error) error {
	for err != nil {
		next := stderrors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
	return err
}

func captureStack() string {
	buf := make([]byte, 2048)
	n := runtime.Stack(buf, false)
	lines := strings.Split(string(buf[:n]), "\n")
	// 跳过 goroutine 头、captureStack 与 newKind 的帧
	if len(lines) > 5 {
		lines = lines[5:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Format 支持 %+v 输出调用栈
func (e *Error) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			fmt.Fprint(s, e.Error())
			if e.Stack != "" {
				fmt.Fprintf(s, "\n%s", e.Stack)
			}
			return
		}
		fallthrough
	case 's':
		fmt.Fprint(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}
