package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"fintrack/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildCSVUpload(t *testing.T, content string) (*bytes.Buffer, string) {
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "transactions.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestTransferHandler_ImportCSV(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = &config.Config{Server: config.ServerConfig{Mode: "debug"}}
	defer func() { config.GlobalConfig = nil }()

	now := time.Now()
	// 有效行的类别查询 + 插入
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WithArgs(1).
		WillReturnRows(categoryRows().
			AddRow(1, "工资", "income", 10, "#22c55e", now, now, nil))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `transactions`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewTransferHandler()
	router.POST("/import/csv", setUserIDMiddleware(1), h.ImportCSV)

	// 表头行不会被跳过，会作为无效行计入 skipped
	csvContent := "date,category_id,amount,description\n2024-01-01,1,1000.00,salary\n"
	body, contentType := buildCSVUpload(t, csvContent)
	req := httptest.NewRequest("POST", "/import/csv", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "数据导入完成", resp["message"])
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), data["imported"])
	assert.Equal(t, float64(1), data["skipped"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferHandler_ImportCSV_NoFile(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	router := gin.New()
	h := NewTransferHandler()
	router.POST("/import/csv", setUserIDMiddleware(1), h.ImportCSV)

	req := httptest.NewRequest("POST", "/import/csv", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "请上传 CSV 文件", resp["message"])
}

func TestTransferHandler_ExportCSV(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	day1, _ := time.Parse("2006-01-02", "2024-01-01")
	day2, _ := time.Parse("2006-01-02", "2024-01-02")
	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WithArgs(1).
		WillReturnRows(transactionRows().
			AddRow(1, 1, 1, "1000.00", day1, "salary", now, now, nil).
			AddRow(2, 1, 2, "50.00", day2, "午餐", now, now, nil))

	router := gin.New()
	h := NewTransferHandler()
	router.GET("/export/csv", setUserIDMiddleware(1), h.ExportCSV)

	req := httptest.NewRequest("GET", "/export/csv", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=transactions_export.csv`, w.Header().Get("Content-Disposition"))

	expected := "date,category_id,amount,description\n" +
		"2024-01-01,1,1000.00,salary\n" +
		"2024-01-02,2,50.00,午餐\n"
	assert.Equal(t, expected, w.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferHandler_ExportJSON(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	day1, _ := time.Parse("2006-01-02", "2024-01-01")
	day2, _ := time.Parse("2006-01-02", "2024-01-02")
	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WithArgs(1).
		WillReturnRows(transactionRows().
			AddRow(1, 1, 1, "1000.00", day1, "salary", now, now, nil).
			AddRow(2, 1, 2, "50.00", day2, "午餐", now, now, nil))

	// Preload 类别
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(categoryRows().
			AddRow(1, "工资", "income", 10, "#22c55e", now, now, nil).
			AddRow(2, "餐饮", "expense", 10, "#ef4444", now, now, nil))

	router := gin.New()
	h := NewTransferHandler()
	router.GET("/export/json", setUserIDMiddleware(1), h.ExportJSON)

	req := httptest.NewRequest("GET", "/export/json", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), data["total_count"])
	assert.Equal(t, "950", data["balance"])
	txs, ok := data["transactions"].([]interface{})
	require.True(t, ok)
	assert.Len(t, txs, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferHandler_ExportExcel(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()
	day1, _ := time.Parse("2006-01-02", "2024-01-01")
	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WithArgs(1).
		WillReturnRows(transactionRows().
			AddRow(1, 1, 2, "50.00", day1, "午餐", now, now, nil))

	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(categoryRows().
			AddRow(2, "餐饮", "expense", 10, "#ef4444", now, now, nil))

	router := gin.New()
	h := NewTransferHandler()
	router.GET("/export/excel", setUserIDMiddleware(1), h.ExportExcel)

	req := httptest.NewRequest("GET", "/export/excel", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=transactions_export.xlsx`, w.Header().Get("Content-Disposition"))
	assert.NotEmpty(t, w.Body.Bytes())
	require.NoError(t, mock.ExpectationsWereMet())
}
