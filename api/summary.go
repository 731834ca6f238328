package api

import (
	"fintrack/middleware"
	"fintrack/models"
	"fintrack/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// SummaryHandler 汇总统计处理器
type SummaryHandler struct {
	agg *service.AggregationService
}

// NewSummaryHandler 创建汇总统计处理器
func NewSummaryHandler() *SummaryHandler {
	return &SummaryHandler{agg: service.NewAggregationService()}
}

// SummaryResponse 财务汇总响应
// expense_stats 为支出饼图数据，balance_dates/balance_values 为余额折线图的对齐序列
type SummaryResponse struct {
	Balance       decimal.Decimal          `json:"balance" example:"950.00"`
	TotalIncome   decimal.Decimal          `json:"total_income" example:"1000.00"`
	TotalExpense  decimal.Decimal          `json:"total_expense" example:"50.00"`
	ExpenseStats  []service.CategoryAmount `json:"expense_stats"`
	BalanceDates  []string                 `json:"balance_dates"`
	BalanceValues []decimal.Decimal        `json:"balance_values"`
}

// GetSummary 获取财务汇总
// @Summary 获取财务汇总
// @Description 获取当前用户的总收入、总支出、余额、支出分布（饼图）及余额时间线（折线图）。无数据时各项为 0/空序列
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=SummaryResponse} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 500 {object} Response "查询失败"
// @Router /api/v1/summary [get]
func (h *SummaryHandler) GetSummary(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	totalIncome, err := h.agg.TotalByCategoryType(userID, models.CategoryTypeIncome)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "统计收入失败"))
		return
	}
	totalExpense, err := h.agg.TotalByCategoryType(userID, models.CategoryTypeExpense)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "统计支出失败"))
		return
	}

	stats, err := h.agg.ExpenseDistribution(userID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "统计支出分布失败"))
		return
	}

	dates, values, err := h.agg.BalanceTimeline(userID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "统计余额时间线失败"))
		return
	}

	Success(c, SummaryResponse{
		Balance:       totalIncome.Sub(totalExpense),
		TotalIncome:   totalIncome,
		TotalExpense:  totalExpense,
		ExpenseStats:  stats,
		BalanceDates:  dates,
		BalanceValues: values,
	})
}
