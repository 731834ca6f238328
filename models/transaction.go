package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction 交易记录模型
// 金额为非负定点小数（2位），记录本身不带符号，
// 符号在聚合时由所属类别的类型推导
type Transaction struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	UserID      uint            `json:"user_id" gorm:"index;not null"`
	CategoryID  uint            `json:"category_id" gorm:"index;not null"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(10,2);not null"`
	Date        time.Time       `json:"date" gorm:"type:date;not null;index"`
	Description string          `json:"description" gorm:"size:255"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `json:"-" gorm:"index"`
	// 用户删除时级联删除其交易；类别被引用时禁止删除
	User     User     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Category Category `json:"category" gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT"`
}

// TableName 设置表名
func (Transaction) TableName() string {
	return "transactions"
}

// DateLayout 交易日期的标准格式（与 CSV 导入导出保持一致）
const DateLayout = "2006-01-02"
