package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"chip-quotation-backend/models"
	"chip-quotation-backend/repository"
	"chip-quotation-backend/services"
	"chip-quotation-backend/storage"

	"github.com/gin-gonic/gin"
)

// statusTransitions lists the allowed approval workflow moves.
var statusTransitions = map[string][]string{
	"draft":    {"pending"},
	"pending":  {"approved", "rejected"},
	"rejected": {"pending"},
}

func transitionAllowed(from, to string) bool {
	for _, s := range statusTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CreateQuoteHandler godoc
// @Summary      Create quote
// @Description  Save a new quote in draft status. The quote number is assigned server-side and the total is recomputed from the items.
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        body  body      models.CreateQuoteRequest  true  "Quote"
// @Success      201   {object}  models.Quote
// @Failure      400   {object}  models.ErrorResponse
// @Router       /api/quotes [post]
func CreateQuoteHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		var req models.CreateQuoteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if _, ok := services.QuoteTypeNames[req.QuoteType]; !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown quote type: " + req.QuoteType})
			return
		}
		if len(req.Items) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Quote must have at least one item"})
			return
		}

		currency := req.Currency
		if currency == "" {
			currency = "CNY"
		}
		quote := &models.Quote{
			Title:           req.Title,
			QuoteType:       req.QuoteType,
			CustomerName:    req.CustomerName,
			CustomerContact: req.CustomerContact,
			CustomerPhone:   req.CustomerPhone,
			CustomerEmail:   req.CustomerEmail,
			Currency:        currency,
			ExchangeRate:    req.ExchangeRate,
			Description:     req.Description,
			Notes:           req.Notes,
			Status:          "draft",
			CreatedBy:       user.ID,
			ValidUntil:      req.ValidUntil,
			Items:           req.Items,
		}

		quoteID, err := repository.CreateQuote(c.Request.Context(), db, quote)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		quote.ID = quoteID

		newValue, _ := json.Marshal(gin.H{"quote_number": quote.QuoteNumber, "status": "draft"})
		_ = storage.LogChange(db, user.ID, "quote", strconv.Itoa(quoteID), "create", "", string(newValue))

		c.JSON(http.StatusCreated, quote)
	}
}

// GetQuoteHandler godoc
// @Summary      Get quote
// @Tags         quotes
// @Produce      json
// @Param        id   path      int  true  "Quote ID"
// @Success      200  {object}  models.Quote
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/quotes/{id} [get]
func GetQuoteHandler(db *sql.DB) gin.HandlerFunc {
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

		c.JSON(http.StatusOK, quote)
	}
}

// ListQuotesHandler godoc
// @Summary      List quotes
// @Description  Page through quote headers, filtered by status, type, customer or author
// @Tags         quotes
// @Produce      json
// @Param        status      query  string  false  "Status filter"
// @Param        quote_type  query  string  false  "Quote type filter"
// @Param        customer    query  string  false  "Customer name substring"
// @Param        created_by  query  int     false  "Author user ID"
// @Param        page        query  int     false  "Page (1-based)"
// @Param        page_size   query  int     false  "Page size (default 20)"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/quotes [get]
func ListQuotesHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := repository.QuoteFilter{
			Status:    c.Query("status"),
			QuoteType: c.Query("quote_type"),
			Customer:  c.Query("customer"),
		}
		filter.CreatedBy, _ = strconv.Atoi(c.Query("created_by"))
		filter.Page, _ = strconv.Atoi(c.Query("page"))
		filter.PageSize, _ = strconv.Atoi(c.Query("page_size"))

		quotes, total, err := repository.ListQuotes(c.Request.Context(), db, filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"quotes": quotes,
			"total":  total,
		})
	}
}

// UpdateQuoteHandler godoc
// @Summary      Update quote
// @Description  Replace a quote's header and full item set. Only draft and rejected quotes are editable.
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        id    path      int                        true  "Quote ID"
// @Param        body  body      models.UpdateQuoteRequest  true  "Quote"
// @Success      200   {object}  models.Quote
// @Failure      404   {object}  models.ErrorResponse
// @Failure      409   {object}  models.ErrorResponse
// @Router       /api/quotes/{id} [put]
func UpdateQuoteHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quote ID"})
			return
		}

		existing, err := repository.GetQuoteByID(c.Request.Context(), db, id)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quote not found"})
			return
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if existing.Status != "draft" && existing.Status != "rejected" {
			c.JSON(http.StatusConflict, gin.H{"error": "Only draft or rejected quotes can be edited"})
			return
		}

		var req models.UpdateQuoteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := repository.UpdateQuote(c.Request.Context(), db, id, &req); err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Quote not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		_ = storage.LogChange(db, user.ID, "quote", strconv.Itoa(id), "update", existing.Status, existing.Status)

		quote, err := repository.GetQuoteByID(c.Request.Context(), db, id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, quote)
	}
}

// UpdateQuoteStatusHandler godoc
// @Summary      Change quote status
// @Description  Move a quote through the approval workflow: draft→pending, pending→approved/rejected, rejected→pending. Approval and rejection notify the author by email and push.
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        id    path  int     true  "Quote ID"
// @Param        body  body  object  true  "New status"  SchemaExample({"status": "pending"})
// @Success      200   {object}  models.SuccessResponse
// @Failure      404   {object}  models.ErrorResponse
// @Failure      409   {object}  models.ErrorResponse
// @Router       /api/quotes/{id}/status [post]
func UpdateQuoteStatusHandler(db *sql.DB, emailSvc *services.EmailService, push *services.PushService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quote ID"})
			return
		}

		var req struct {
			Status string `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
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

		if !transitionAllowed(quote.Status, req.Status) {
			c.JSON(http.StatusConflict, gin.H{
				"error": fmt.Sprintf("Cannot move quote from %s to %s", quote.Status, req.Status),
			})
			return
		}
		// Submitting is the author's move; deciding needs approval rights.
		if req.Status == "approved" || req.Status == "rejected" {
			if !roleHasPermission(user.RoleName, PermQuoteApprove) {
				c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
				return
			}
		}

		if err := repository.UpdateQuoteStatus(c.Request.Context(), db, id, req.Status); err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{"error": "Quote not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		_ = storage.LogChange(db, user.ID, "quote", strconv.Itoa(id), "status", quote.Status, req.Status)

		notifyStatusChange(c, db, emailSvc, push, quote, req.Status)

		c.JSON(http.StatusOK, gin.H{"message": "Quote status updated", "status": req.Status})
	}
}

// notifyStatusChange fans the workflow event out to reviewers or back
// to the author. Notification failures never fail the request.
func notifyStatusChange(c *gin.Context, db *sql.DB, emailSvc *services.EmailService, push *services.PushService, quote *models.Quote, newStatus string) {
	ctx := c.Request.Context()

	switch newStatus {
	case "pending":
		if push != nil {
			_ = push.SendNotificationToRole(ctx, "reviewer",
				"待审核报价", fmt.Sprintf("报价单 %s 已提交审核", quote.QuoteNumber),
				map[string]string{"quote_id": strconv.Itoa(quote.ID), "action": "review"})
		}
	case "approved", "rejected":
		author, err := storage.GetUserByID(db, quote.CreatedBy)
		if err != nil {
			return
		}
		templateType := "quote_approved"
		title := "报价已通过"
		body := fmt.Sprintf("报价单 %s 已审核通过", quote.QuoteNumber)
		if newStatus == "rejected" {
			templateType = "quote_rejected"
			title = "报价被驳回"
			body = fmt.Sprintf("报价单 %s 被驳回，请修改后重新提交", quote.QuoteNumber)
		}
		if emailSvc != nil {
			_ = emailSvc.SendQuoteStatusEmail(templateType, quote, author.FirstName, author.Email)
		}
		if push != nil {
			_ = push.NotifyQuoteEvent(ctx, author.ID, title, body, newStatus)
		}
	}
}

// DeleteQuoteHandler godoc
// @Summary      Delete quote
// @Description  Delete a draft quote and its items. Non-draft quotes cannot be deleted.
// @Tags         quotes
// @Produce      json
// @Param        id   path      int  true  "Quote ID"
// @Success      200  {object}  models.SuccessResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /api/quotes/{id} [delete]
func DeleteQuoteHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
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
		if quote.Status != "draft" {
			c.JSON(http.StatusConflict, gin.H{"error": "Only draft quotes can be deleted"})
			return
		}

		if err := repository.DeleteQuote(c.Request.Context(), db, id); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		_ = storage.LogChange(db, user.ID, "quote", strconv.Itoa(id), "delete", quote.QuoteNumber, "")

		c.JSON(http.StatusOK, gin.H{"message": "Quote deleted successfully"})
	}
}
