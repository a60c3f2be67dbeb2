package controller

import (
	"context"
	"edu_portal_backend/internal/util"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GatewayStatus 网关当前模式
type GatewayStatus interface {
	Mode() string
	Connected() bool
}

type HealthController struct {
	DB      *gorm.DB
	Gateway GatewayStatus
}

func NewHealthController(db *gorm.DB, gw GatewayStatus) *HealthController {
	return &HealthController{DB: db, Gateway: gw}
}

// HealthCheck godoc
// @Summary 健康检查
// @Description 离线模式下服务仍可用，只报告数据库状态
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	database := "down"
	if c.DB != nil {
		if sqlDB, err := c.DB.DB(); err == nil {
			pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
			if sqlDB.PingContext(pingCtx) == nil {
				database = "up"
			}
			cancel()
		}
	}

	util.Success(ctx, gin.H{
		"status":  "ok",
		"gateway": c.Gateway.Mode(),
		"components": gin.H{
			"database": database,
		},
	})
}
