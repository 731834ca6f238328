package models

import (
	"time"

	"gorm.io/gorm"
)

// 类别类型常量：决定聚合时金额的符号（收入加、支出减）
const (
	CategoryTypeIncome  = "income"
	CategoryTypeExpense = "expense"
)

// Category 收支类别模型
// 类型在创建后不可修改；被交易引用时不可删除（protect）
type Category struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"size:50;not null;uniqueIndex:idx_category_name_type"`
	Type      string         `json:"type" gorm:"size:10;not null;uniqueIndex:idx_category_name_type;index"` // income/expense
	Sort      int            `json:"sort" gorm:"default:0;index"`
	Color     string         `json:"color" gorm:"size:20;default:#64748b"` // 颜色代码，如 #ef4444
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName 设置表名
func (Category) TableName() string {
	return "categories"
}

// IsValidCategoryType 校验类别类型是否合法
func IsValidCategoryType(t string) bool {
	return t == CategoryTypeIncome || t == CategoryTypeExpense
}
