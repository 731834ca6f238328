package service

import (
	"testing"
	"time"

	"fintrack/database"
	"fintrack/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	oldDB := database.DB
	database.DB = gormDB
	return mock, func() {
		database.DB = oldDB
		sqlDB.Close()
	}
}

func TestAggregationService_TotalByCategoryType(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT COALESCE.*FROM `transactions`").
		WithArgs(uint(1), models.CategoryTypeIncome).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("1000.10"))

	svc := NewAggregationService()
	total, err := svc.TotalByCategoryType(1, models.CategoryTypeIncome)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("1000.10")), "got %s", total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAggregationService_TotalByCategoryType_NoData(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 无交易时 COALESCE 返回 0，而不是错误
	mock.ExpectQuery("SELECT COALESCE.*FROM `transactions`").
		WithArgs(uint(7), models.CategoryTypeIncome).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("0"))

	svc := NewAggregationService()
	total, err := svc.TotalByCategoryType(7, models.CategoryTypeIncome)
	require.NoError(t, err)
	assert.True(t, total.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAggregationService_Balance(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 精确小数运算：0.30 - 0.10 必须等于 0.20，不允许浮点漂移
	mock.ExpectQuery("SELECT COALESCE.*FROM `transactions`").
		WithArgs(uint(1), models.CategoryTypeIncome).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("0.30"))
	mock.ExpectQuery("SELECT COALESCE.*FROM `transactions`").
		WithArgs(uint(1), models.CategoryTypeExpense).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("0.10"))

	svc := NewAggregationService()
	balance, err := svc.Balance(1)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("0.20")), "got %s", balance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAggregationService_ExpenseDistribution(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 总额为 0 的类别（交通）必须被过滤掉，顺序保持类别创建顺序
	mock.ExpectQuery("SELECT .*FROM `categories`").
		WithArgs(uint(1), models.CategoryTypeExpense).
		WillReturnRows(sqlmock.NewRows([]string{"name", "total"}).
			AddRow("餐饮", "150.50").
			AddRow("交通", "0").
			AddRow("购物", "42.00"))

	svc := NewAggregationService()
	stats, err := svc.ExpenseDistribution(1)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "餐饮", stats[0].Label)
	assert.True(t, stats[0].Value.Equal(decimal.RequireFromString("150.50")))
	assert.Equal(t, "购物", stats[1].Label)
	assert.True(t, stats[1].Value.Equal(decimal.RequireFromString("42.00")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAggregationService_ExpenseDistribution_Empty(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .*FROM `categories`").
		WithArgs(uint(1), models.CategoryTypeExpense).
		WillReturnRows(sqlmock.NewRows([]string{"name", "total"}))

	svc := NewAggregationService()
	stats, err := svc.ExpenseDistribution(1)
	require.NoError(t, err)
	assert.Empty(t, stats)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAggregationService_BalanceTimeline(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	day1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	day2 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.Local)

	// 1月1日两笔（收入1000、支出50），1月2日一笔支出
	mock.ExpectQuery("SELECT .*FROM `transactions`").
		WithArgs(uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{"amount", "date", "type"}).
			AddRow("1000.00", day1, models.CategoryTypeIncome).
			AddRow("50.00", day1, models.CategoryTypeExpense).
			AddRow("0.10", day2, models.CategoryTypeExpense))

	svc := NewAggregationService()
	dates, values, err := svc.BalanceTimeline(1)
	require.NoError(t, err)

	// 日期严格升序且唯一；同一天只保留最后一笔之后的余额
	require.Equal(t, []string{"2024-01-01", "2024-01-02"}, dates)
	require.Len(t, values, 2)
	assert.True(t, values[0].Equal(decimal.RequireFromString("950.00")), "got %s", values[0])
	assert.True(t, values[1].Equal(decimal.RequireFromString("949.90")), "got %s", values[1])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAggregationService_BalanceTimeline_NoData(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .*FROM `transactions`").
		WithArgs(uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{"amount", "date", "type"}))

	svc := NewAggregationService()
	dates, values, err := svc.BalanceTimeline(1)
	require.NoError(t, err)
	assert.Empty(t, dates)
	assert.Empty(t, values)
	require.NoError(t, mock.ExpectationsWereMet())
}
