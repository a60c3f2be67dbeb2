package gateway

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"syscall"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// Classify 基于错误类型而不是错误文本判断分类
func Classify(err error) ErrorKind {
	if err == nil {
		return ""
	}

	var info *ErrorInfo
	if errors.As(err, &info) {
		return info.Kind
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return KindNotFound
	case IsNetworkError(err):
		return KindNetwork
	}
	return KindInternal
}

func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}

	for _, target := range []error{
		context.DeadlineExceeded,
		driver.ErrBadConn,
		mysql.ErrInvalidConn,
		io.ErrUnexpectedEOF,
		net.ErrClosed,
		syscall.ECONNREFUSED,
		syscall.ECONNRESET,
		syscall.ECONNABORTED,
		syscall.EPIPE,
		syscall.EHOSTUNREACH,
		syscall.ENETUNREACH,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
