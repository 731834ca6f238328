package service

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"time"

	"fintrack/database"
	"fintrack/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransferService 交易记录的 CSV 导入导出服务
type TransferService struct{}

// NewTransferService 创建导入导出服务
func NewTransferService() *TransferService {
	return &TransferService{}
}

// ImportResult 导入结果统计
type ImportResult struct {
	Imported int `json:"imported"` // 成功导入行数
	Skipped  int `json:"skipped"`  // 被跳过的无效行数
}

// csvHeader 导出文件表头。导入时不跳过表头（与历史导出文件格式兼容）：
// 表头行会因日期/整数解析失败被当作无效行静默跳过
var csvHeader = []string{"date", "category_id", "amount", "description"}

// ImportCSV 从 CSV 流导入交易记录
// 行格式: date,category_id,amount,description（2006-01-02,整数类别ID,金额,备注）
// 无效行（字段不足4个、解析失败、类别不存在）静默跳过，单行错误从不中断整个导入；
// 只有数据库写入失败才作为错误返回
func (s *TransferService) ImportCSV(userID uint, r io.Reader) (ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // 行字段数不固定，逐行校验

	var result ImportResult
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// 格式损坏的行与无效行同等对待
			result.Skipped++
			continue
		}
		if len(record) < 4 {
			result.Skipped++
			continue
		}

		// 只取前四列，多余字段忽略
		date, err := time.ParseInLocation(models.DateLayout, record[0], time.Local)
		if err != nil {
			result.Skipped++
			continue
		}
		categoryID, err := strconv.ParseUint(record[1], 10, 32)
		if err != nil {
			result.Skipped++
			continue
		}
		amount, err := decimal.NewFromString(record[2])
		if err != nil {
			result.Skipped++
			continue
		}

		var category models.Category
		if err := database.DB.First(&category, uint(categoryID)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result.Skipped++
				continue
			}
			return result, err
		}

		tx := models.Transaction{
			UserID:      userID,
			CategoryID:  category.ID,
			Amount:      amount,
			Date:        date,
			Description: record[3],
		}
		if err := database.DB.Create(&tx).Error; err != nil {
			return result, err
		}
		result.Imported++
	}
	return result, nil
}

// ExportCSV 导出用户全部交易记录到 CSV 流
// 首行为表头，数据行按 id 升序（入库顺序），保证导出结果可复现；
// 金额固定两位小数，日期格式与导入一致，保证往返一致性
func (s *TransferService) ExportCSV(userID uint, w io.Writer) error {
	var txs []models.Transaction
	if err := database.DB.Where("user_id = ?", userID).
		Order("id ASC").
		Find(&txs).Error; err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, tx := range txs {
		row := []string{
			tx.Date.Format(models.DateLayout),
			strconv.FormatUint(uint64(tx.CategoryID), 10),
			tx.Amount.StringFixed(2),
			tx.Description,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
