package handlers

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"chip-quotation-backend/repository"
	"chip-quotation-backend/services"
	"chip-quotation-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// sanitizeFilename strips characters that break Content-Disposition or
// common filesystems.
func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	replacer := strings.NewReplacer(
		" ", "_", "/", "-", "\\", "-", ":", "-", "*", "-",
		"?", "-", "\"", "-", "<", "-", ">", "-", "|", "-",
	)
	return replacer.Replace(name)
}

func setDownloadHeaders(c *gin.Context, contentType, filename string) {
	escaped := url.PathEscape(filename)
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"; filename*=UTF-8''%s", filename, escaped))
}

// ExportQuotesCSV godoc
// @Summary      Export quote list as CSV
// @Description  Stream the filtered quote headers as a CSV file
// @Tags         export
// @Produce      text/csv
// @Param        status      query  string  false  "Status filter"
// @Param        quote_type  query  string  false  "Quote type filter"
// @Param        customer    query  string  false  "Customer name substring"
// @Success      200  {file}  file  "CSV file"
// @Router       /api/export/quotes/csv [get]
func ExportQuotesCSV(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		qctx, cancel := utils.GetSlowQueryContext(c.Request.Context())
		defer cancel()

		filter := repository.QuoteFilter{
			Status:    c.Query("status"),
			QuoteType: c.Query("quote_type"),
			Customer:  c.Query("customer"),
			PageSize:  10000,
		}
		quotes, _, err := repository.ListQuotes(qctx, db, filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		filename := fmt.Sprintf("quotes_%s_%s.csv", time.Now().Format("20060102"), uuid.New().String()[:8])
		setDownloadHeaders(c, "text/csv", filename)

		writer := csv.NewWriter(c.Writer)
		defer writer.Flush()

		header := []string{"报价单号", "标题", "报价类型", "客户", "币种", "汇率", "总金额", "状态", "创建时间"}
		if err := writer.Write(header); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error writing CSV header"})
			return
		}

		for _, q := range quotes {
			row := []string{
				q.QuoteNumber,
				q.Title,
				services.QuoteTypeNames[q.QuoteType],
				q.CustomerName,
				q.Currency,
				strconv.FormatFloat(q.ExchangeRate, 'f', -1, 64),
				strconv.FormatFloat(q.TotalAmount, 'f', 2, 64),
				q.Status,
				q.CreatedAt.Format("2006-01-02 15:04"),
			}
			if err := writer.Write(row); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error writing CSV row"})
				return
			}
		}
	}
}

// ExportQuoteExcel godoc
// @Summary      Export one quote as Excel
// @Description  Generate an xlsx document for a single quote with its full item table
// @Tags         export
// @Param        id  path  int  true  "Quote ID"
// @Success      200  {file}  file  "Excel file"
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/export/quotes/{id}/excel [get]
func ExportQuoteExcel(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quote ID"})
			return
		}

		quote, err := repository.GetQuoteByID(c.Request.Context(), db, id)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quote not found"})
			return
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		f := excelize.NewFile()
		defer f.Close()

		sheetName := "报价单"
		index, err := f.NewSheet(sheetName)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating sheet"})
			return
		}
		f.SetActiveSheet(index)
		f.DeleteSheet("Sheet1")

		titleStyle, err := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true, Size: 14},
			Alignment: &excelize.Alignment{
				Horizontal: "center",
				Vertical:   "center",
			},
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating title style"})
			return
		}
		headerStyle, err := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
			Fill: excelize.Fill{
				Type:    "pattern",
				Color:   []string{"#4472C4"},
				Pattern: 1,
			},
			Alignment: &excelize.Alignment{
				Horizontal: "center",
				Vertical:   "center",
			},
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating header style"})
			return
		}

		f.SetCellValue(sheetName, "A1", quote.Title)
		f.MergeCell(sheetName, "A1", "G1")
		f.SetCellStyle(sheetName, "A1", "G1", titleStyle)
		f.SetRowHeight(sheetName, 1, 28)

		f.SetCellValue(sheetName, "A2", "报价单号")
		f.SetCellValue(sheetName, "B2", quote.QuoteNumber)
		f.SetCellValue(sheetName, "D2", "报价类型")
		f.SetCellValue(sheetName, "E2", services.QuoteTypeNames[quote.QuoteType])
		f.SetCellValue(sheetName, "A3", "客户")
		f.SetCellValue(sheetName, "B3", quote.CustomerName)
		f.SetCellValue(sheetName, "D3", "联系人")
		f.SetCellValue(sheetName, "E3", quote.CustomerContact)
		f.SetCellValue(sheetName, "A4", "币种")
		f.SetCellValue(sheetName, "B4", quote.Currency)
		f.SetCellValue(sheetName, "D4", "状态")
		f.SetCellValue(sheetName, "E4", quote.Status)
		if quote.ValidUntil != nil {
			f.SetCellValue(sheetName, "A5", "有效期至")
			f.SetCellValue(sheetName, "B5", quote.ValidUntil.Format("2006-01-02"))
		}

		itemHeaders := []string{"项目名称", "描述", "设备类型", "配置", "数量", "单位", "单价", "小计"}
		headerRow := 7
		for i, h := range itemHeaders {
			cell, err := excelize.CoordinatesToCellName(i+1, headerRow)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating cell name"})
				return
			}
			f.SetCellValue(sheetName, cell, h)
		}
		startCell, _ := excelize.CoordinatesToCellName(1, headerRow)
		endCell, _ := excelize.CoordinatesToCellName(len(itemHeaders), headerRow)
		f.SetCellStyle(sheetName, startCell, endCell, headerStyle)

		row := headerRow + 1
		for _, item := range quote.Items {
			values := []interface{}{
				item.ItemName, item.ItemDescription, item.MachineType, item.Configuration,
				item.Quantity, item.Unit, item.UnitPrice, item.TotalPrice,
			}
			for i, v := range values {
				cell, err := excelize.CoordinatesToCellName(i+1, row)
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating cell name"})
					return
				}
				f.SetCellValue(sheetName, cell, v)
			}
			row++
		}

		totalLabelCell, _ := excelize.CoordinatesToCellName(len(itemHeaders)-1, row)
		totalValueCell, _ := excelize.CoordinatesToCellName(len(itemHeaders), row)
		f.SetCellValue(sheetName, totalLabelCell, "总计")
		f.SetCellValue(sheetName, totalValueCell, quote.TotalAmount)

		f.SetColWidth(sheetName, "A", "A", 30)
		f.SetColWidth(sheetName, "B", "D", 22)
		f.SetColWidth(sheetName, "E", "H", 12)

		filename := fmt.Sprintf("%s_%s.xlsx", sanitizeFilename(quote.QuoteNumber), uuid.New().String()[:8])
		setDownloadHeaders(c, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", filename)

		if err := f.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error writing Excel file"})
			return
		}
	}
}

// ExportQuotesExcel godoc
// @Summary      Export quote list as Excel
// @Description  Generate an xlsx listing of the filtered quote headers
// @Tags         export
// @Param        status      query  string  false  "Status filter"
// @Param        quote_type  query  string  false  "Quote type filter"
// @Param        customer    query  string  false  "Customer name substring"
// @Success      200  {file}  file  "Excel file"
// @Router       /api/export/quotes/excel [get]
func ExportQuotesExcel(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		qctx, cancel := utils.GetSlowQueryContext(c.Request.Context())
		defer cancel()

		filter := repository.QuoteFilter{
			Status:    c.Query("status"),
			QuoteType: c.Query("quote_type"),
			Customer:  c.Query("customer"),
			PageSize:  10000,
		}
		quotes, total, err := repository.ListQuotes(qctx, db, filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		f := excelize.NewFile()
		defer f.Close()

		sheetName := "报价列表"
		index, err := f.NewSheet(sheetName)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating sheet"})
			return
		}
		f.SetActiveSheet(index)
		f.DeleteSheet("Sheet1")

		headerStyle, err := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
			Fill: excelize.Fill{
				Type:    "pattern",
				Color:   []string{"#4472C4"},
				Pattern: 1,
			},
			Alignment: &excelize.Alignment{
				Horizontal: "center",
				Vertical:   "center",
			},
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating header style"})
			return
		}

		headers := []string{"报价单号", "标题", "报价类型", "客户", "币种", "总金额", "状态", "创建时间"}
		for i, h := range headers {
			cell, err := excelize.CoordinatesToCellName(i+1, 1)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating cell name"})
				return
			}
			f.SetCellValue(sheetName, cell, h)
		}
		endCell, _ := excelize.CoordinatesToCellName(len(headers), 1)
		f.SetCellStyle(sheetName, "A1", endCell, headerStyle)

		for i, q := range quotes {
			values := []interface{}{
				q.QuoteNumber, q.Title, services.QuoteTypeNames[q.QuoteType], q.CustomerName,
				q.Currency, q.TotalAmount, q.Status, q.CreatedAt.Format("2006-01-02 15:04"),
			}
			for j, v := range values {
				cell, err := excelize.CoordinatesToCellName(j+1, i+2)
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating cell name"})
					return
				}
				f.SetCellValue(sheetName, cell, v)
			}
		}

		summaryRow := len(quotes) + 3
		summaryCell, _ := excelize.CoordinatesToCellName(1, summaryRow)
		f.SetCellValue(sheetName, summaryCell, fmt.Sprintf("共 %d 条报价", total))

		f.SetColWidth(sheetName, "A", "B", 24)
		f.SetColWidth(sheetName, "C", "H", 14)

		filename := fmt.Sprintf("quotes_%s_%s.xlsx", time.Now().Format("20060102"), uuid.New().String()[:8])
		setDownloadHeaders(c, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", filename)

		if err := f.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error writing Excel file"})
			return
		}
	}
}
