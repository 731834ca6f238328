package service

import (
	"time"

	"fintrack/database"
	"fintrack/models"

	"github.com/shopspring/decimal"
)

// AggregationService 聚合统计服务
// 只读：对单个用户的交易集合计算汇总。数据为空时返回零值/空序列而非错误
type AggregationService struct{}

// NewAggregationService 创建聚合统计服务
func NewAggregationService() *AggregationService {
	return &AggregationService{}
}

// CategoryAmount 类别-金额数据点（饼图）
type CategoryAmount struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}

// TotalByCategoryType 统计用户在指定类别类型（income/expense）下的交易总额
// 求和在 SQL DECIMAL 上进行并以 decimal 承载，余额计算不允许浮点误差
func (s *AggregationService) TotalByCategoryType(userID uint, categoryType string) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := database.DB.Model(&models.Transaction{}).
		Joins("JOIN categories ON categories.id = transactions.category_id").
		Where("transactions.user_id = ? AND categories.type = ?", userID, categoryType).
		Select("COALESCE(SUM(transactions.amount), 0) AS total").
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// Balance 当前余额 = 收入总额 - 支出总额
func (s *AggregationService) Balance(userID uint) (decimal.Decimal, error) {
	income, err := s.TotalByCategoryType(userID, models.CategoryTypeIncome)
	if err != nil {
		return decimal.Zero, err
	}
	expense, err := s.TotalByCategoryType(userID, models.CategoryTypeExpense)
	if err != nil {
		return decimal.Zero, err
	}
	return income.Sub(expense), nil
}

// ExpenseDistribution 支出分布：每个支出类别下用户的消费总额
// 只返回总额严格大于 0 的类别；顺序固定为类别创建顺序（id 升序）
func (s *AggregationService) ExpenseDistribution(userID uint) ([]CategoryAmount, error) {
	type catTotal struct {
		Name  string
		Total decimal.Decimal
	}
	var rows []catTotal
	err := database.DB.Model(&models.Category{}).
		Select("categories.name AS name, COALESCE(SUM(transactions.amount), 0) AS total").
		Joins("LEFT JOIN transactions ON transactions.category_id = categories.id AND transactions.user_id = ? AND transactions.deleted_at IS NULL", userID).
		Where("categories.type = ?", models.CategoryTypeExpense).
		Group("categories.id, categories.name").
		Order("categories.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]CategoryAmount, 0, len(rows))
	for _, r := range rows {
		if r.Total.IsPositive() {
			result = append(result, CategoryAmount{Label: r.Name, Value: r.Total})
		}
	}
	return result, nil
}

// BalanceTimeline 余额时间线：按日期升序折算累计余额
// 遍历顺序为 date ASC, id ASC（同日多笔按入库顺序，只保留当日最后一笔之后的余额），
// 返回对齐的日期序列（YYYY-MM-DD）和余额序列
func (s *AggregationService) BalanceTimeline(userID uint) ([]string, []decimal.Decimal, error) {
	type txRow struct {
		Amount decimal.Decimal
		Date   time.Time
		Type   string
	}
	var rows []txRow
	err := database.DB.Model(&models.Transaction{}).
		Select("transactions.amount AS amount, transactions.date AS date, categories.type AS type").
		Joins("JOIN categories ON categories.id = transactions.category_id").
		Where("transactions.user_id = ?", userID).
		Order("transactions.date ASC, transactions.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, nil, err
	}

	dates := make([]string, 0, len(rows))
	values := make([]decimal.Decimal, 0, len(rows))
	running := decimal.Zero
	for _, r := range rows {
		if r.Type == models.CategoryTypeIncome {
			running = running.Add(r.Amount)
		} else {
			running = running.Sub(r.Amount)
		}
		label := r.Date.Format(models.DateLayout)
		if n := len(dates); n > 0 && dates[n-1] == label {
			// 同一天的后续交易覆盖当日余额
			values[n-1] = running
			continue
		}
		dates = append(dates, label)
		values = append(values, running)
	}
	return dates, values, nil
}
