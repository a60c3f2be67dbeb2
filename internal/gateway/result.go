package gateway

// ErrorKind 网关错误的结构化分类，调用方据此决定是展示、降级还是忽略
type ErrorKind string

const (
	KindAuth         ErrorKind = "auth"
	KindNetwork      ErrorKind = "network"
	KindNotFound     ErrorKind = "not_found"
	KindProfileFetch ErrorKind = "profile_fetch"
	KindValidation   ErrorKind = "validation"
	KindInternal     ErrorKind = "internal"
)

// ErrorInfo 统一的错误信息，实现 error 接口
type ErrorInfo struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	cause   error
}

func (e *ErrorInfo) Error() string {
	return e.Message
}

func (e *ErrorInfo) Unwrap() error {
	return e.cause
}

// Is 按 Kind 比较，使 errors.Is(err, gateway.ErrAuth) 可用
func (e *ErrorInfo) Is(target error) bool {
	t, ok := target.(*ErrorInfo)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

var (
	ErrAuth         = &ErrorInfo{Kind: KindAuth}
	ErrNetwork      = &ErrorInfo{Kind: KindNetwork}
	ErrNotFound     = &ErrorInfo{Kind: KindNotFound}
	ErrProfileFetch = &ErrorInfo{Kind: KindProfileFetch}
	ErrValidation   = &ErrorInfo{Kind: KindValidation}
)

func NewError(kind ErrorKind, message string) *ErrorInfo {
	return &ErrorInfo{Kind: kind, Message: message}
}

// Wrap 按底层错误分类生成 ErrorInfo
func Wrap(err error) *ErrorInfo {
	if err == nil {
		return nil
	}
	if info, ok := err.(*ErrorInfo); ok {
		return info
	}
	return &ErrorInfo{Kind: Classify(err), Message: err.Error(), cause: err}
}

// Result 所有网关调用的返回信封，不抛出错误
type Result[T any] struct {
	Data  T          `json:"data"`
	Error *ErrorInfo `json:"error"`
}

func OK[T any](data T) Result[T] {
	return Result[T]{Data: data}
}

func Fail[T any](err error) Result[T] {
	return Result[T]{Error: Wrap(err)}
}

// Err 便于以 Go 惯用方式检查结果；无错误时返回 nil 而不是带类型的 nil
func (r Result[T]) Err() error {
	if r.Error == nil {
		return nil
	}
	return r.Error
}
