package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/williamGois/madnezz-api-sub001/internal/dto"
	"github.com/williamGois/madnezz-api-sub001/internal/model"
	"github.com/williamGois/madnezz-api-sub001/internal/service"
	"github.com/williamGois/madnezz-api-sub001/pkg/response"
)

// ContextHandler MASTER 上下文切换 HTTP 处理器
type ContextHandler struct {
	ctxSvc service.ContextService
}

// NewContextHandler 创建 ContextHandler
func NewContextHandler(ctxSvc service.ContextService) *ContextHandler {
	return &ContextHandler{ctxSvc: ctxSvc}
}

// writeContextError 上下文模块错误统一映射
func writeContextError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrContextSwitchDenied):
		response.Forbidden(c, 14001, "仅 MASTER 用户可以切换执行上下文")
	case errors.Is(err, service.ErrInvalidContextRole):
		response.BadRequest(c, 14002, "不允许切换到该角色")
	case errors.Is(err, service.ErrContextStoreRequired):
		response.BadRequest(c, 14003, "切换到店长上下文必须指定门店")
	case errors.Is(err, service.ErrStoreNotInOrganization):
		response.BadRequest(c, 14004, "门店不属于该组织")
	case errors.Is(err, service.ErrOrganizationNotFound):
		response.NotFound(c, 13001, "组织不存在")
	case errors.Is(err, service.ErrStoreNotFound):
		response.NotFound(c, 13005, "门店不存在")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, "用户不存在")
	default:
		response.InternalError(c)
	}
}

// SwitchContext 切换执行上下文（仅 MASTER）
// POST /api/v1/context/switch
func (h *ContextHandler) SwitchContext(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SwitchContextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.ctxSvc.SwitchContext(c.Request.Context(), userID, &req)
	if err != nil {
		writeContextError(c, err)
		return
	}
	response.OK(c, result)
}

// ResetContext 重置上下文，恢复 MASTER 本体
// POST /api/v1/context/reset
func (h *ContextHandler) ResetContext(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.ctxSvc.ResetContext(c.Request.Context(), userID)
	if err != nil {
		writeContextError(c, err)
		return
	}
	response.OK(c, result)
}

// GetContext 查询当前生效上下文
// GET /api/v1/context
func (h *ContextHandler) GetContext(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.ctxSvc.GetContext(c.Request.Context(), userID)
	if err != nil {
		writeContextError(c, err)
		return
	}
	response.OK(c, result)
}
