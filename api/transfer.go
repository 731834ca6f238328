package api

import (
	"bytes"
	"fmt"
	"net/http"

	"fintrack/database"
	"fintrack/middleware"
	"fintrack/models"
	"fintrack/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// TransferHandler 交易记录导入导出处理器
type TransferHandler struct {
	transfer *service.TransferService
}

// NewTransferHandler 创建导入导出处理器
func NewTransferHandler() *TransferHandler {
	return &TransferHandler{transfer: service.NewTransferService()}
}

// ImportCSV 导入交易记录
// @Summary 导入交易记录（CSV）
// @Description 上传 CSV 文件批量导入交易记录，列格式: date,category_id,amount,description。
// @Description 无效行（字段不足、解析失败、类别不存在）静默跳过，单行错误不会中断导入；
// @Description 返回成功导入与跳过的行数。注意：文件表头行不会被跳过，会作为无效行计入 skipped
// @Tags 导入导出
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "CSV 文件"
// @Success 200 {object} Response{data=service.ImportResult} "导入完成"
// @Failure 400 {object} Response "未上传文件"
// @Failure 401 {object} Response "未授权"
// @Failure 500 {object} Response "数据库写入失败"
// @Router /api/v1/import/csv [post]
func (h *TransferHandler) ImportCSV(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "请上传 CSV 文件")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "读取文件失败"))
		return
	}
	defer f.Close()

	result, err := h.transfer.ImportCSV(userID, f)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "导入失败"))
		return
	}

	SuccessWithMessage(c, "数据导入完成", result)
}

// ExportCSV 导出交易记录为 CSV
// @Summary 导出交易记录（CSV）
// @Description 导出当前用户全部交易记录为 CSV 文件，列格式: date,category_id,amount,description，按ID升序
// @Tags 导入导出
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {file} file "CSV 文件"
// @Failure 401 {object} Response "未授权"
// @Failure 500 {object} Response "导出失败"
// @Router /api/v1/export/csv [get]
func (h *TransferHandler) ExportCSV(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	buf := new(bytes.Buffer)
	if err := h.transfer.ExportCSV(userID, buf); err != nil {
		InternalError(c, SafeErrorMessage(err, "导出失败"))
		return
	}

	// 设置响应头（文件下载）
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename=transactions_export.csv`)
	c.Header("Content-Length", fmt.Sprintf("%d", buf.Len()))

	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportJSON 导出交易记录为 JSON
// @Summary 导出交易记录（JSON）
// @Description 导出当前用户全部交易记录为 JSON，附带总笔数与余额汇总
// @Tags 导入导出
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response "导出成功"
// @Failure 401 {object} Response "未授权"
// @Failure 500 {object} Response "导出失败"
// @Router /api/v1/export/json [get]
func (h *TransferHandler) ExportJSON(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var txs []models.Transaction
	if err := database.DB.Preload("Category").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&txs).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询数据失败"))
		return
	}

	// 汇总：按类别类型折算符号
	balance := decimal.Zero
	for _, tx := range txs {
		if tx.Category.Type == models.CategoryTypeIncome {
			balance = balance.Add(tx.Amount)
		} else {
			balance = balance.Sub(tx.Amount)
		}
	}

	Success(c, gin.H{
		"total_count":  len(txs),
		"balance":      balance,
		"transactions": txs,
	})
}

// ExportExcel 导出交易记录为 Excel
// @Summary 导出交易记录（Excel）
// @Description 导出当前用户全部交易记录为 XLSX 文件，按ID升序
// @Tags 导入导出
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} file "Excel 文件"
// @Failure 401 {object} Response "未授权"
// @Failure 500 {object} Response "导出失败"
// @Router /api/v1/export/excel [get]
func (h *TransferHandler) ExportExcel(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var txs []models.Transaction
	if err := database.DB.Preload("Category").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&txs).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询数据失败"))
		return
	}

	// 创建 Excel 文件
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "交易记录"
	f.SetSheetName("Sheet1", sheetName)

	// 表头样式
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	headers := []string{"ID", "日期", "类别", "类型", "金额", "备注", "创建时间"}
	for i, title := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, title)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	// 写入数据
	for idx, tx := range txs {
		row := idx + 2
		typeText := "支出"
		if tx.Category.Type == models.CategoryTypeIncome {
			typeText = "收入"
		}
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), tx.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), tx.Date.Format(models.DateLayout))
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), tx.Category.Name)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), typeText)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), tx.Amount.StringFixed(2))
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), tx.Description)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), tx.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	// 设置列宽
	f.SetColWidth(sheetName, "A", "A", 8)
	f.SetColWidth(sheetName, "B", "B", 12)
	f.SetColWidth(sheetName, "C", "D", 10)
	f.SetColWidth(sheetName, "E", "E", 12)
	f.SetColWidth(sheetName, "F", "F", 30)
	f.SetColWidth(sheetName, "G", "G", 20)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename=transactions_export.xlsx`)

	if err := f.Write(c.Writer); err != nil {
		InternalError(c, SafeErrorMessage(err, "导出失败"))
	}
}
