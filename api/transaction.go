package api

import (
	"strconv"
	"time"

	"fintrack/database"
	"fintrack/middleware"
	"fintrack/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// TransactionHandler 交易记录处理器
type TransactionHandler struct{}

// NewTransactionHandler 创建交易记录处理器
func NewTransactionHandler() *TransactionHandler {
	return &TransactionHandler{}
}

// CreateTransactionRequest 创建交易记录请求
type CreateTransactionRequest struct {
	CategoryID  uint            `json:"category_id" binding:"required" example:"1"`
	Amount      decimal.Decimal `json:"amount" binding:"required" example:"99.99"`
	Date        string          `json:"date" binding:"required" example:"2024-01-15"`
	Description string          `json:"description" binding:"omitempty,max=255" example:"午餐"`
}

// TransactionListRequest 交易记录列表请求
type TransactionListRequest struct {
	Page       int    `form:"page" example:"1"`
	PageSize   int    `form:"page_size" example:"10"`
	CategoryID uint   `form:"category_id" example:"1"`
	Type       string `form:"type" example:"expense"`
	StartDate  string `form:"start_date" example:"2024-01-01"`
	EndDate    string `form:"end_date" example:"2024-12-31"`
}

// Create 创建交易记录
// @Summary 创建交易记录
// @Description 创建一条新的交易记录。金额为非负定点小数，收支方向由类别类型决定
// @Tags 交易记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTransactionRequest true "交易记录信息"
// @Success 200 {object} Response{data=models.Transaction} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	// 金额必须为正的定点小数
	if !req.Amount.IsPositive() {
		BadRequest(c, "金额必须大于0")
		return
	}

	// 校验类别是否存在
	var cat models.Category
	if err := database.DB.First(&cat, req.CategoryID).Error; err != nil {
		BadRequest(c, "无效的类别，请先维护类别")
		return
	}

	// 解析日期（只取日历日期，不含时间）
	date, err := time.ParseInLocation(models.DateLayout, req.Date, time.Local)
	if err != nil {
		BadRequest(c, "日期格式错误，应为: 2006-01-02")
		return
	}

	tx := models.Transaction{
		UserID:      userID,
		CategoryID:  cat.ID,
		Amount:      req.Amount,
		Date:        date,
		Description: req.Description,
	}

	if err := database.DB.Create(&tx).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建交易记录失败"))
		return
	}

	tx.Category = cat
	SuccessWithMessage(c, "创建成功", tx)
}

// List 获取交易记录列表
// @Summary 获取交易记录列表
// @Description 获取当前用户的交易记录列表，支持分页和类别/类型/日期筛选，按日期倒序
// @Tags 交易记录
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Param category_id query int false "类别筛选"
// @Param type query string false "类别类型筛选" Enums(income,expense)
// @Param start_date query string false "开始日期 (2024-01-01)"
// @Param end_date query string false "结束日期 (2024-12-31)"
// @Success 200 {object} Response{data=PageResponse{list=[]models.Transaction}} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req TransactionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	// 默认分页参数
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 10
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	query := database.DB.Model(&models.Transaction{}).Where("transactions.user_id = ?", userID)

	// 类别筛选
	if req.CategoryID > 0 {
		query = query.Where("transactions.category_id = ?", req.CategoryID)
	}

	// 类别类型筛选
	if req.Type != "" {
		if !models.IsValidCategoryType(req.Type) {
			BadRequest(c, "无效的类别类型，可选值：income、expense")
			return
		}
		query = query.
			Joins("JOIN categories ON categories.id = transactions.category_id").
			Where("categories.type = ?", req.Type)
	}

	// 日期范围筛选
	if req.StartDate != "" {
		if startDate, err := time.ParseInLocation(models.DateLayout, req.StartDate, time.Local); err == nil {
			query = query.Where("transactions.date >= ?", startDate)
		}
	}
	if req.EndDate != "" {
		if endDate, err := time.ParseInLocation(models.DateLayout, req.EndDate, time.Local); err == nil {
			query = query.Where("transactions.date <= ?", endDate)
		}
	}

	// 获取总数
	var total int64
	query.Count(&total)

	// 获取列表
	var txs []models.Transaction
	offset := (req.Page - 1) * req.PageSize
	if err := query.Preload("Category").
		Order("transactions.date DESC, transactions.id DESC").
		Offset(offset).Limit(req.PageSize).
		Find(&txs).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, PageResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		List:     txs,
	})
}

// Get 获取单条交易记录
// @Summary 获取单条交易记录
// @Description 根据ID获取当前用户的交易记录详情
// @Tags 交易记录
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易记录ID"
// @Success 200 {object} Response{data=models.Transaction} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/transactions/{id} [get]
func (h *TransactionHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var tx models.Transaction
	if err := database.DB.Preload("Category").
		Where("id = ? AND user_id = ?", id, userID).
		First(&tx).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	Success(c, tx)
}

// Delete 删除交易记录
// @Summary 删除交易记录
// @Description 删除当前用户的指定交易记录（仅所有者可删除）
// @Tags 交易记录
// @Produce json
// @Security BearerAuth
// @Param id path int true "交易记录ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var tx models.Transaction
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&tx).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	if err := database.DB.Delete(&tx).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
