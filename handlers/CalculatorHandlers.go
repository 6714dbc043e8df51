package handlers

import (
	"net/http"

	"chip-quotation-backend/models"
	"chip-quotation-backend/repository"
	"chip-quotation-backend/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CalculateRate godoc
// @Summary      Calculate hourly rate
// @Description  Compute the hourly (and optionally per-chip) rate for one machine and its selected cards, in the quote currency
// @Tags         calculator
// @Accept       json
// @Produce      json
// @Param        body  body      models.RateRequest  true  "Selection and pricing context"
// @Success      200   {object}  models.RateResponse
// @Failure      400   {object}  models.ErrorResponse
// @Failure      404   {object}  models.ErrorResponse
// @Router       /api/calculate_rate [post]
func CalculateRate(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.RateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		catalog, err := repository.LoadCatalog(gdb)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		machine := catalog.MachineByID(req.MachineID)
		if machine == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Machine not found"})
			return
		}

		sel := &services.DeviceSelection{Machine: *machine}
		for _, cq := range req.Cards {
			card := catalog.CardByID(cq.CardID)
			if card == nil || card.MachineID != machine.ID {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Card does not belong to machine"})
				return
			}
			sel.Cards = append(sel.Cards, services.SelectedCard{Card: *card, Quantity: cq.Quantity})
		}

		currency := req.Currency
		if currency == "" {
			currency = "CNY"
		}
		ctx := services.PricingContext{
			Currency:     currency,
			ExchangeRate: req.ExchangeRate,
			Multiplier:   req.Multiplier,
		}

		resp := models.RateResponse{
			HourlyRate: services.ComputeHourlyRate(sel, ctx),
			Currency:   currency,
		}
		if req.UPH > 0 {
			resp.UnitRate = services.ComputeUnitRate(sel, ctx, req.UPH)
		}

		c.JSON(http.StatusOK, resp)
	}
}

// BuildQuoteItems godoc
// @Summary      Build line items for a quote form
// @Description  Serialize a type-specific quote form into priced line items without saving anything
// @Tags         calculator
// @Accept       json
// @Produce      json
// @Param        type  path      string  true  "Quote type"  Enums(inquiry, tooling, engineering, mass_production, process, combined)
// @Param        body  body      object  true  "Type-specific form"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  models.ErrorResponse
// @Router       /api/quote_items/{type} [post]
func BuildQuoteItems(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		quoteType := c.Param("type")

		catalog, err := repository.LoadCatalog(gdb)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		var items []models.QuoteItem
		switch quoteType {
		case services.QuoteTypeInquiry:
			var form services.InquiryForm
			if err := c.ShouldBindJSON(&form); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			refreshSelections(catalog, form.Machines...)
			items = services.BuildInquiryItems(&form)
		case services.QuoteTypeEngineering:
			var form services.EngineeringForm
			if err := c.ShouldBindJSON(&form); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			refreshSelections(catalog, form.TestMachine, form.Handler, form.Prober)
			items = services.BuildEngineeringItems(&form)
		case services.QuoteTypeMassProduction:
			var form services.MassProductionForm
			if err := c.ShouldBindJSON(&form); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			refreshSelections(catalog, form.TestMachine, form.Handler, form.Prober)
			items = services.BuildMassProductionItems(&form)
		case services.QuoteTypeProcess:
			var form services.ProcessForm
			if err := c.ShouldBindJSON(&form); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			for i := range form.Processes {
				proc := &form.Processes[i]
				refreshSelections(catalog, proc.TestMachine, proc.Prober, proc.Handler)
			}
			items = services.BuildProcessItems(&form)
		case services.QuoteTypeTooling:
			var form services.ToolingForm
			if err := c.ShouldBindJSON(&form); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			refreshSelections(catalog, form.Machines...)
			items = services.BuildToolingItems(&form)
		case services.QuoteTypeCombined:
			var form services.CombinedForm
			if err := c.ShouldBindJSON(&form); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			refreshCombined(catalog, &form)
			items = services.BuildCombinedItems(&form)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown quote type: " + quoteType})
			return
		}

		var total float64
		for _, item := range items {
			total += item.TotalPrice
		}

		c.JSON(http.StatusOK, gin.H{"items": items, "total_amount": total})
	}
}

// refreshSelections overwrites client-supplied machine and card data
// with the catalog rows. Prices are never trusted from the request.
func refreshSelections(catalog *services.Catalog, sels ...*services.DeviceSelection) {
	for _, sel := range sels {
		if sel == nil {
			continue
		}
		if m := catalog.MachineByID(sel.Machine.ID); m != nil {
			sel.Machine = *m
		}
		for i := range sel.Cards {
			if card := catalog.CardByID(sel.Cards[i].Card.ID); card != nil {
				qty := sel.Cards[i].Quantity
				sel.Cards[i] = services.SelectedCard{Card: *card, Quantity: qty}
			}
		}
	}
}

func refreshCombined(catalog *services.Catalog, form *services.CombinedForm) {
	if form.Engineering != nil {
		refreshSelections(catalog, form.Engineering.TestMachine, form.Engineering.Handler, form.Engineering.Prober)
	}
	if form.MassProduction != nil {
		refreshSelections(catalog, form.MassProduction.TestMachine, form.MassProduction.Handler, form.MassProduction.Prober)
	}
	if form.Tooling != nil {
		refreshSelections(catalog, form.Tooling.Machines...)
	}
}
