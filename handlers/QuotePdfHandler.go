package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"chip-quotation-backend/repository"

	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PDF output uses English labels throughout: the core fonts gofpdf
// ships with cannot render CJK text.
var quoteTypePdfNames = map[string]string{
	"inquiry":         "Inquiry",
	"tooling":         "Tooling",
	"engineering":     "Engineering Hourly",
	"mass_production": "Mass Production Hourly",
	"process":         "Process",
	"combined":        "Combined",
}

// pdfSafe replaces characters outside the core-font repertoire so CJK
// item names degrade instead of rendering as garbage.
func pdfSafe(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < 128 {
			b.WriteRune(r)
		} else {
			b.WriteRune('?')
		}
	}
	return b.String()
}

// GenerateQuotePDF godoc
// @Summary      Generate quote PDF
// @Description  Render a quote as a printable A4 PDF document
// @Tags         export
// @Param        id   path  int  true  "Quote ID"
// @Success      200  "PDF file"
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/export/quotes/{id}/pdf [get]
func GenerateQuotePDF(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quote ID"})
			return
		}

		titleCaser := cases.Title(language.Und)

		quote, err := repository.GetQuoteByID(c.Request.Context(), db, id)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quote not found"})
			return
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		pdf := gofpdf.New("P", "mm", "A4", "")
		pdf.AddPage()
		pdf.SetMargins(10, 10, 10)
		pdf.SetFont("Arial", "", 10)

		// --- Header ---
		pdf.SetFont("Arial", "B", 18)
		pdf.Cell(190, 10, "QUOTATION")
		pdf.Ln(12)

		// --- Quote Info ---
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(95, 6, fmt.Sprintf("Quote No: %s", quote.QuoteNumber))
		typeName := quoteTypePdfNames[quote.QuoteType]
		if typeName == "" {
			typeName = quote.QuoteType
		}
		pdf.Cell(95, 6, fmt.Sprintf("Type: %s", typeName))
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 10)
		pdf.Cell(95, 6, fmt.Sprintf("Date: %s", quote.CreatedAt.Format("02-Jan-2006")))
		if quote.ValidUntil != nil {
			pdf.Cell(95, 6, fmt.Sprintf("Valid Until: %s", quote.ValidUntil.Format("02-Jan-2006")))
		}
		pdf.Ln(10)

		// --- Customer ---
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(190, 8, "Customer")
		pdf.Ln(8)
		pdf.SetFont("Arial", "", 10)
		customerLines := []string{pdfSafe(quote.CustomerName)}
		if quote.CustomerContact != "" {
			customerLines = append(customerLines, pdfSafe(quote.CustomerContact))
		}
		if quote.CustomerPhone != "" {
			customerLines = append(customerLines, quote.CustomerPhone)
		}
		if quote.CustomerEmail != "" {
			customerLines = append(customerLines, quote.CustomerEmail)
		}
		pdf.MultiCell(190, 6, strings.Join(customerLines, "\n"), "", "", false)
		pdf.Ln(6)

		// --- Table Header ---
		pdf.SetFont("Arial", "B", 11)
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(75, 8, "Item", "1", 0, "L", true, 0, "")
		pdf.CellFormat(25, 8, "Qty", "1", 0, "C", true, 0, "")
		pdf.CellFormat(25, 8, "Unit", "1", 0, "C", true, 0, "")
		pdf.CellFormat(30, 8, "Unit Price", "1", 0, "C", true, 0, "")
		pdf.CellFormat(35, 8, "Subtotal", "1", 1, "C", true, 0, "")

		pdf.SetFont("Arial", "", 10)
		for _, item := range quote.Items {
			pdf.CellFormat(75, 8, pdfSafe(item.ItemName), "1", 0, "L", false, 0, "")
			pdf.CellFormat(25, 8, fmt.Sprintf("%.2f", item.Quantity), "1", 0, "C", false, 0, "")
			pdf.CellFormat(25, 8, pdfSafe(item.Unit), "1", 0, "C", false, 0, "")
			pdf.CellFormat(30, 8, fmt.Sprintf("%.4f", item.UnitPrice), "1", 0, "R", false, 0, "")
			pdf.CellFormat(35, 8, fmt.Sprintf("%.2f", item.TotalPrice), "1", 1, "R", false, 0, "")
		}

		pdf.Ln(2)

		// --- Totals ---
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(155, 8, fmt.Sprintf("Total (%s)", quote.Currency))
		pdf.CellFormat(35, 8, fmt.Sprintf("%.2f", quote.TotalAmount), "1", 1, "R", false, 0, "")
		pdf.Cell(155, 8, "Status")
		pdf.CellFormat(35, 8, titleCaser.String(quote.Status), "1", 1, "R", false, 0, "")

		// --- Notes ---
		if quote.Description != "" || quote.Notes != "" {
			pdf.Ln(8)
			pdf.SetFont("Arial", "B", 11)
			pdf.Cell(190, 8, "Notes:")
			pdf.Ln(6)
			pdf.SetFont("Arial", "", 10)
			pdf.MultiCell(190, 6, pdfSafe(strings.TrimSpace(quote.Description+"\n"+quote.Notes)), "", "L", false)
		}

		// --- Footer ---
		pdf.SetY(-20)
		pdf.SetFont("Arial", "I", 8)
		pdf.Cell(190, 6, "This is a computer-generated quotation. No signature required.")
		pdf.Ln(5)
		pdf.Cell(190, 6, "Generated on: "+time.Now().Format("2006-01-02 15:04:05"))

		c.Header("Content-Type", "application/pdf")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=quote_%s.pdf", quote.QuoteNumber))
		if err := pdf.Output(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF"})
			return
		}
	}
}
