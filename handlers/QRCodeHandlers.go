package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"net/http"
	"strconv"
	"time"

	"chip-quotation-backend/repository"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/math/fixed"
)

// addLabel draws regular text onto the label area below the QR code.
func addLabel(img *image.RGBA, x, y int, label string) {
	col := color.RGBA{0, 0, 0, 255}

	point := fixed.Point26_6{
		X: fixed.Int26_6(x * 64),
		Y: fixed.Int26_6(y * 64),
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: inconsolata.Regular8x16,
		Dot:  point,
	}
	d.DrawString(label)
}

// addLabelBold draws a field label in bold.
func addLabelBold(img *image.RGBA, x, y int, label string) {
	col := color.RGBA{30, 30, 30, 255}

	point := fixed.Point26_6{
		X: fixed.Int26_6(x * 64),
		Y: fixed.Int26_6(y * 64),
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: inconsolata.Bold8x16,
		Dot:  point,
	}
	d.DrawString(label)
}

func truncateLabel(s string, max int) string {
	s = pdfSafe(s)
	if len(s) > max {
		return s[:max-3] + "..."
	}
	return s
}

// GenerateQuoteQRCode godoc
// @Summary      Generate quote QR label as JPEG
// @Description  Render a QR code carrying the quote's verification payload, with a printable label block underneath
// @Tags         export
// @Param        id   path      int  true  "Quote ID"
// @Success      200  {file}    file  "JPEG image"
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/export/quotes/{id}/qrcode [get]
func GenerateQuoteQRCode(db *sql.DB) gin.HandlerFunc {
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

		// An approved quote inside its validity window scans as valid.
		isValid := quote.Status == "approved"
		if quote.ValidUntil != nil && quote.ValidUntil.Before(time.Now()) {
			isValid = false
		}

		qrData := struct {
			ID          int        `json:"id"`
			QuoteNumber string     `json:"quote_number"`
			Status      string     `json:"status"`
			ValidUntil  *time.Time `json:"valid_until,omitempty"`
			IsValid     bool       `json:"is_valid"`
		}{
			ID:          quote.ID,
			QuoteNumber: quote.QuoteNumber,
			Status:      quote.Status,
			ValidUntil:  quote.ValidUntil,
			IsValid:     isValid,
		}

		jsonData, err := json.Marshal(qrData)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to marshal quote data"})
			return
		}

		qr, err := qrcode.New(string(jsonData), qrcode.Medium)
		if err != nil {
			c.String(http.StatusInternalServerError, "QR code generation failed")
			return
		}

		qrImg := qr.Image(512)

		qrSize := qrImg.Bounds().Dy()
		padding := 30
		lineHeight := 28
		textAreaHeight := 5*lineHeight + padding
		totalHeight := qrSize + padding + textAreaHeight

		combinedImg := image.NewRGBA(image.Rect(0, 0, qrSize, totalHeight))
		draw.Draw(combinedImg, combinedImg.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)

		qrRect := image.Rect(0, 0, qrSize, qrSize)
		draw.Draw(combinedImg, qrRect, qrImg, image.Point{}, draw.Src)

		separatorY := qrSize + padding/2
		for x := 0; x < qrSize; x++ {
			combinedImg.Set(x, separatorY, color.RGBA{200, 200, 200, 255})
		}

		startY := qrSize + padding + lineHeight
		xPos := 20

		validUntilStr := "N/A"
		if quote.ValidUntil != nil {
			validUntilStr = quote.ValidUntil.Format("2006-01-02")
		}
		typeName := quoteTypePdfNames[quote.QuoteType]
		if typeName == "" {
			typeName = quote.QuoteType
		}

		addLabelBold(combinedImg, xPos, startY, "Quote No:")
		addLabel(combinedImg, xPos+130, startY, quote.QuoteNumber)

		addLabelBold(combinedImg, xPos, startY+lineHeight, "Type:")
		addLabel(combinedImg, xPos+130, startY+lineHeight, typeName)

		addLabelBold(combinedImg, xPos, startY+2*lineHeight, "Customer:")
		addLabel(combinedImg, xPos+130, startY+2*lineHeight, truncateLabel(quote.CustomerName, 30))

		addLabelBold(combinedImg, xPos, startY+3*lineHeight, "Total:")
		addLabel(combinedImg, xPos+130, startY+3*lineHeight,
			quote.Currency+" "+strconv.FormatFloat(quote.TotalAmount, 'f', 2, 64))

		addLabelBold(combinedImg, xPos, startY+4*lineHeight, "Valid Until:")
		addLabel(combinedImg, xPos+130, startY+4*lineHeight, validUntilStr)

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, combinedImg, nil); err != nil {
			c.String(http.StatusInternalServerError, "JPEG encoding failed")
			return
		}

		c.Data(http.StatusOK, "image/jpeg", buf.Bytes())
	}
}
