package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/williamGois/madnezz-api-sub001/internal/dto"
	"github.com/williamGois/madnezz-api-sub001/internal/service"
	"github.com/williamGois/madnezz-api-sub001/pkg/response"
)

// OrganizationHandler 组织模块 HTTP 处理器
type OrganizationHandler struct {
	orgSvc service.OrganizationService
}

// NewOrganizationHandler 创建 OrganizationHandler
func NewOrganizationHandler(orgSvc service.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{orgSvc: orgSvc}
}

// writeOrganizationError 组织模块错误统一映射
func writeOrganizationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoPermission):
		response.Forbidden(c, 10003, "无权限访问")
	case errors.Is(err, service.ErrOrganizationNotFound):
		response.NotFound(c, 13001, "组织不存在")
	case errors.Is(err, service.ErrOrganizationCodeExists):
		response.Conflict(c, 13002, "组织编码已存在")
	case errors.Is(err, service.ErrCompanyUnitNotFound):
		response.NotFound(c, 13003, "组织缺少 company 根单元")
	case errors.Is(err, service.ErrRegionNotFound):
		response.NotFound(c, 13004, "大区不存在")
	case errors.Is(err, service.ErrStoreNotFound):
		response.NotFound(c, 13005, "门店不存在")
	case errors.Is(err, service.ErrRegionCodeExists):
		response.Conflict(c, 13006, "大区编码已存在")
	case errors.Is(err, service.ErrStoreCodeExists):
		response.Conflict(c, 13007, "门店编码已存在")
	case errors.Is(err, service.ErrEmailExists):
		response.Conflict(c, 12002, "邮箱已被注册")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, "用户不存在")
	default:
		response.InternalError(c)
	}
}

// CreateOrganization 创建组织（仅 MASTER）
// POST /api/v1/organizations
func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.orgSvc.CreateOrganization(c.Request.Context(), actorID, &req)
	if err != nil {
		writeOrganizationError(c, err)
		return
	}
	response.Created(c, result)
}

// GetOrganization 查询组织详情
// GET /api/v1/organizations/:id
func (h *OrganizationHandler) GetOrganization(c *gin.Context) {
	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.orgSvc.GetOrganization(c.Request.Context(), actorID, c.Param("id"))
	if err != nil {
		writeOrganizationError(c, err)
		return
	}
	response.OK(c, result)
}

// ListOrganizations 组织列表（仅 MASTER）
// GET /api/v1/organizations
func (h *OrganizationHandler) ListOrganizations(c *gin.Context) {
	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.OrganizationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	orgs, total, err := h.orgSvc.ListOrganizations(c.Request.Context(), actorID, &req)
	if err != nil {
		writeOrganizationError(c, err)
		return
	}
	response.OKPage(c, orgs, total, req.GetPage(), req.GetPageSize())
}

// ListUnits 组织单元列表
// GET /api/v1/organizations/:id/units
func (h *OrganizationHandler) ListUnits(c *gin.Context) {
	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	units, err := h.orgSvc.ListUnits(c.Request.Context(), actorID, c.Param("id"))
	if err != nil {
		writeOrganizationError(c, err)
		return
	}
	response.OK(c, units)
}

// CreateRegion 创建大区
// POST /api/v1/organizations/:id/regions
func (h *OrganizationHandler) CreateRegion(c *gin.Context) {
	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateRegionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.orgSvc.CreateRegion(c.Request.Context(), actorID, c.Param("id"), &req)
	if err != nil {
		writeOrganizationError(c, err)
		return
	}
	response.Created(c, result)
}

// CreateStore 创建门店
// POST /api/v1/organizations/:id/stores
func (h *OrganizationHandler) CreateStore(c *gin.Context) {
	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.orgSvc.CreateStore(c.Request.Context(), actorID, c.Param("id"), &req)
	if err != nil {
		writeOrganizationError(c, err)
		return
	}
	response.Created(c, result)
}
