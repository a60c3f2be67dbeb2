package controller

import (
	"edu_portal_backend/internal/gateway"
	"edu_portal_backend/internal/quiz"
	"edu_portal_backend/internal/util"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// respondError 将服务层错误映射为统一响应，认证错误信息原样返回
func respondError(ctx *gin.Context, err error) {
	var info *gateway.ErrorInfo
	if errors.As(err, &info) {
		switch info.Kind {
		case gateway.KindAuth:
			util.Error(ctx, http.StatusUnauthorized, info.Message)
		case gateway.KindValidation:
			util.BadRequest(ctx, info.Message)
		case gateway.KindNotFound:
			util.NotFound(ctx, info.Message)
		case gateway.KindNetwork:
			util.Error(ctx, http.StatusServiceUnavailable, "Backend unavailable")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	switch {
	case errors.Is(err, util.ErrNoActiveQuiz),
		errors.Is(err, util.ErrTestNotFound),
		errors.Is(err, util.ErrCourseNotFound):
		util.NotFound(ctx, err.Error())
	case errors.Is(err, quiz.ErrNotInProgress),
		errors.Is(err, quiz.ErrAlreadyStarted):
		util.Error(ctx, http.StatusConflict, err.Error())
	case errors.Is(err, util.ErrFileTooLarge):
		util.Error(ctx, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, quiz.ErrInvalidOption),
		errors.Is(err, quiz.ErrEmptyQuiz),
		errors.Is(err, quiz.ErrInvalidQuestion),
		errors.Is(err, util.ErrUnknownQuizKind),
		errors.Is(err, util.ErrInvalidTestDraft),
		errors.Is(err, util.ErrInvalidFileType),
		errors.Is(err, util.ErrInvalidVideoExt),
		errors.Is(err, util.ErrInvalidImageExt),
		errors.Is(err, util.ErrInvalidMaterial),
		errors.Is(err, util.ErrMissingUploadFile):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// currentUser 取出已认证用户，未认证时写入 401 并返回 nil
func currentUser(ctx *gin.Context) *util.Claims {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return nil
	}
	return claims
}
