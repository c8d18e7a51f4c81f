package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/williamGois/madnezz-api-sub001/internal/dto"
	"github.com/williamGois/madnezz-api-sub001/internal/model"
	"github.com/williamGois/madnezz-api-sub001/internal/service"
	"github.com/williamGois/madnezz-api-sub001/pkg/response"
)

// maxImportFileSize 店长批量导入 xlsx 上限
const maxImportFileSize = 5 << 20 // 5MB

// UserHandler 用户模块 HTTP 处理器
type UserHandler struct {
	userSvc   service.UserService
	accessSvc service.AccessService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService, accessSvc service.AccessService) *UserHandler {
	return &UserHandler{userSvc: userSvc, accessSvc: accessSvc}
}

// writeUserError 用户模块错误统一映射
func writeUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoPermission):
		response.Forbidden(c, 10003, "无权限访问")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, "用户不存在")
	case errors.Is(err, service.ErrEmailExists):
		response.Conflict(c, 12002, "邮箱已被注册")
	case errors.Is(err, service.ErrOrganizationRequired),
		errors.Is(err, service.ErrRegionRequired),
		errors.Is(err, service.ErrStoreRequired),
		errors.Is(err, model.ErrInvalidHierarchyRole),
		errors.Is(err, model.ErrInvalidDepartmentType):
		response.BadRequest(c, 12003, err.Error())
	case errors.Is(err, service.ErrRegionNotFound):
		response.NotFound(c, 13004, "大区不存在")
	case errors.Is(err, service.ErrStoreNotFound):
		response.NotFound(c, 13005, "门店不存在")
	case errors.Is(err, service.ErrCompanyUnitNotFound):
		response.NotFound(c, 13003, "组织缺少 company 根单元")
	case errors.Is(err, service.ErrNoActivePosition):
		response.BadRequest(c, 12004, "用户没有激活的职位")
	default:
		response.InternalError(c)
	}
}

// CreateUser 创建层级用户
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.userSvc.CreateUser(c.Request.Context(), actorID, &req)
	if err != nil {
		writeUserError(c, err)
		return
	}
	response.Created(c, result)
}

// GetUser 查询用户详情
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.userSvc.GetUser(c.Request.Context(), actorID, c.Param("id"))
	if err != nil {
		writeUserError(c, err)
		return
	}
	response.OK(c, result)
}

// UpdateUser 更新用户信息（管理者或本人）
// PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.userSvc.UpdateUser(c.Request.Context(), actorID, c.Param("id"), &req)
	if err != nil {
		writeUserError(c, err)
		return
	}
	response.OK(c, result)
}

// UpdateUserStatus 启停用户
// PUT /api/v1/users/:id/status
func (h *UserHandler) UpdateUserStatus(c *gin.Context) {
	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.userSvc.UpdateUserStatus(c.Request.Context(), actorID, c.Param("id"), &req); err != nil {
		writeUserError(c, err)
		return
	}
	response.OK(c, nil)
}

// ListUsers 用户列表（MASTER 任意组织，GO 限本组织）
// GET /api/v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	users, total, err := h.userSvc.ListUsers(c.Request.Context(), actorID, &req)
	if err != nil {
		writeUserError(c, err)
		return
	}
	response.OKPage(c, users, total, req.GetPage(), req.GetPageSize())
}

// GetEffectivePermissions 展开当前用户的有效权限（单元 × 部门）
// GET /api/v1/users/me/permissions
func (h *UserHandler) GetEffectivePermissions(c *gin.Context) {
	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	perms, err := h.accessSvc.EffectivePermissions(c.Request.Context(), actorID)
	if err != nil {
		writeUserError(c, err)
		return
	}
	response.OK(c, perms)
}

// GetAccessibleUnits 当前用户可达的组织单元集合
// GET /api/v1/users/me/units
func (h *UserHandler) GetAccessibleUnits(c *gin.Context) {
	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	units, err := h.accessSvc.AccessibleUnits(c.Request.Context(), actorID)
	if err != nil {
		writeUserError(c, err)
		return
	}
	response.OK(c, units)
}

// ImportStoreManagers 从 xlsx 批量开通店长
// POST /api/v1/organizations/:id/store-managers/import
func (h *UserHandler) ImportStoreManagers(c *gin.Context) {
	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "缺少上传文件")
		return
	}
	if fileHeader.Size > maxImportFileSize {
		response.BadRequest(c, 12005, "导入文件过大")
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, 10001, "文件读取失败")
		return
	}
	defer f.Close()

	result, err := h.userSvc.ImportStoreManagers(c.Request.Context(), actorID, c.Param("id"), f)
	if err != nil {
		if errors.Is(err, service.ErrImportEmptySheet) {
			response.BadRequest(c, 12006, "导入文件没有数据行")
			return
		}
		writeUserError(c, err)
		return
	}
	response.OK(c, result)
}

// [自证通过] internal/api/handler/user_handler.go
