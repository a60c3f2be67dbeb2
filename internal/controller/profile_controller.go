package controller

import (
	"edu_portal_backend/internal/gateway"
	"edu_portal_backend/internal/model"
	"edu_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProfileController struct {
	Profiles gateway.ProfileAPI
}

func NewProfileController(profiles gateway.ProfileAPI) *ProfileController {
	return &ProfileController{Profiles: profiles}
}

// GetProfile godoc
// @Summary 获取个人资料
// @Description 离线模式下 data 为 null
// @Tags 用户
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=model.Profile}
// @Router /api/profile [get]
func (c *ProfileController) GetProfile(ctx *gin.Context) {
	claims := currentUser(ctx)
	if claims == nil {
		return
	}

	res := c.Profiles.GetProfile(ctx.Request.Context(), claims.UserID)
	if res.Error != nil {
		respondError(ctx, res.Error)
		return
	}
	util.Success(ctx, res.Data)
}

// UpdateProfile godoc
// @Summary 更新个人资料
// @Tags 用户
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body model.ProfileUpdate true "仅非空字段会被更新"
// @Success 200 {object} util.Response{data=model.Profile}
// @Failure 400 {object} util.Response
// @Router /api/profile [put]
func (c *ProfileController) UpdateProfile(ctx *gin.Context) {
	claims := currentUser(ctx)
	if claims == nil {
		return
	}

	var req model.ProfileUpdate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if req.UserType != "" && !req.UserType.Valid() {
		util.BadRequest(ctx, "userType must be student or teacher")
		return
	}

	res := c.Profiles.UpdateProfile(ctx.Request.Context(), claims.UserID, req)
	if res.Error != nil {
		respondError(ctx, res.Error)
		return
	}
	util.Success(ctx, res.Data)
}
