package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"chip-quotation-backend/models"
)

// Quote type tags as persisted on the quote header.
const (
	QuoteTypeInquiry        = "inquiry"
	QuoteTypeTooling        = "tooling"
	QuoteTypeEngineering    = "engineering"
	QuoteTypeMassProduction = "mass_production"
	QuoteTypeProcess        = "process"
	QuoteTypeCombined       = "combined"
)

// QuoteTypeNames maps each quote type tag to its display name. The key
// set doubles as the list of valid types.
var QuoteTypeNames = map[string]string{
	QuoteTypeInquiry:        "询价报价",
	QuoteTypeTooling:        "工装夹具报价",
	QuoteTypeEngineering:    "工程机时报价",
	QuoteTypeMassProduction: "量产机时报价",
	QuoteTypeProcess:        "量产工序报价",
	QuoteTypeCombined:       "综合报价",
}

// Section tags used inside combined quotes to route items back to
// their sub-form on re-edit.
const (
	sectionEngineering    = "engineering"
	sectionMassProduction = "mass_production"
	sectionTooling        = "tooling"
)

// labeledFieldPatterns caches one compiled pattern per label; the
// reconstruction path asks for the same handful of labels on every
// quote.
var labeledFieldPatterns sync.Map

// ExtractLabeledField pulls a "标签：值" field out of free text,
// tolerating both the full-width and ASCII colon. The value runs to
// the next comma or line break.
func ExtractLabeledField(text, label string) string {
	cached, ok := labeledFieldPatterns.Load(label)
	if !ok {
		re := regexp.MustCompile(regexp.QuoteMeta(label) + `\s*[:：]\s*([^,，\n]+)`)
		cached, _ = labeledFieldPatterns.LoadOrStore(label, re)
	}
	m := cached.(*regexp.Regexp).FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// extractLabeledFloat is ExtractLabeledField for numeric fields; a
// missing or malformed value yields the fallback.
func extractLabeledFloat(text, label string, fallback float64) float64 {
	v := ExtractLabeledField(text, label)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

// InquiryForm is the editable state of a preliminary inquiry quote:
// any number of consulted machines, priced with the inquiry markup
// factor.
type InquiryForm struct {
	Currency      string             `json:"currency"`
	ExchangeRate  float64            `json:"exchange_rate"`
	InquiryFactor float64            `json:"inquiry_factor"`
	ChipPackage   string             `json:"chip_package,omitempty"`
	TestType      string             `json:"test_type,omitempty"`
	Urgency       string             `json:"urgency,omitempty"`
	Machines      []*DeviceSelection `json:"machines"`
}

// EngineeringForm is the editable state of an engineering test quote:
// one machine per role, hourly rates scaled by the engineering rate.
type EngineeringForm struct {
	Currency        string           `json:"currency"`
	ExchangeRate    float64          `json:"exchange_rate"`
	EngineeringRate float64          `json:"engineering_rate"`
	TestType        string           `json:"test_type,omitempty"`
	ChipPackage     string           `json:"chip_package,omitempty"`
	Urgency         string           `json:"urgency,omitempty"`
	TestMachine     *DeviceSelection `json:"test_machine,omitempty"`
	Handler         *DeviceSelection `json:"handler,omitempty"`
	Prober          *DeviceSelection `json:"prober,omitempty"`
}

// MassProductionForm is the editable state of a mass-production
// quote. FT pairs the tester with a handler, CP with a prober.
type MassProductionForm struct {
	Currency     string           `json:"currency"`
	ExchangeRate float64          `json:"exchange_rate"`
	TestType     string           `json:"test_type,omitempty"`
	ChipPackage  string           `json:"chip_package,omitempty"`
	Urgency      string           `json:"urgency,omitempty"`
	TestMachine  *DeviceSelection `json:"test_machine,omitempty"`
	Handler      *DeviceSelection `json:"handler,omitempty"`
	Prober       *DeviceSelection `json:"prober,omitempty"`
}

// ProcessSelection is one process step of a per-process quote. The
// per-chip unit cost is derived from the hourly cost of both device
// roles divided by UPH.
type ProcessSelection struct {
	ProcessType string           `json:"process_type"`
	TestMachine *DeviceSelection `json:"test_machine,omitempty"`
	Prober      *DeviceSelection `json:"prober,omitempty"`
	Handler     *DeviceSelection `json:"handler,omitempty"`
	UPH         float64          `json:"uph"`
	UnitCost    float64          `json:"unit_cost"`
}

// ProcessForm is the editable state of a per-process quote.
type ProcessForm struct {
	Currency     string             `json:"currency"`
	ExchangeRate float64            `json:"exchange_rate"`
	Processes    []ProcessSelection `json:"processes"`
}

// ToolingForm is the editable state of a tooling quote: fixtures and
// boards quoted per piece.
type ToolingForm struct {
	Currency     string             `json:"currency"`
	ExchangeRate float64            `json:"exchange_rate"`
	Machines     []*DeviceSelection `json:"machines"`
}

// CombinedForm bundles several quote sections into one document.
type CombinedForm struct {
	Currency       string              `json:"currency"`
	ExchangeRate   float64             `json:"exchange_rate"`
	Engineering    *EngineeringForm    `json:"engineering,omitempty"`
	MassProduction *MassProductionForm `json:"mass_production,omitempty"`
	Tooling        *ToolingForm        `json:"tooling,omitempty"`
}

// roleLabel maps a device role to the machine-type label written into
// serialized configurations.
func roleLabel(role string) string {
	switch role {
	case RoleTestMachine:
		return "测试机"
	case RoleHandler:
		return "分选机"
	case RoleProber:
		return "探针台"
	default:
		return "辅助设备"
	}
}

// isCPProcess reports whether a process step runs on wafers (CP) and
// therefore pairs the tester with a prober rather than a handler.
func isCPProcess(processType string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(processType)), "CP")
}

// BuildInquiryItems serializes an inquiry form into line items. Each
// machine becomes one flat item priced at its hourly rate times the
// inquiry factor.
func BuildInquiryItems(form *InquiryForm) []models.QuoteItem {
	ctx := PricingContext{
		Currency:     form.Currency,
		ExchangeRate: form.ExchangeRate,
		Multiplier:   form.InquiryFactor,
	}
	var items []models.QuoteItem
	for _, sel := range form.Machines {
		if sel == nil {
			continue
		}
		rate := ComputeHourlyRate(sel, ctx)
		items = append(items, BuildFlatItem(sel, rate, 1))
	}
	return items
}

// ParseInquiryItems reconstructs an inquiry form from persisted
// items. The inquiry factor lives in the quote notes as a labeled
// field; it defaults to 1 when absent.
func ParseInquiryItems(quote *models.Quote, catalog *Catalog) *InquiryForm {
	r := NewReconstructor(catalog)
	form := &InquiryForm{
		Currency:      quote.Currency,
		ExchangeRate:  quote.ExchangeRate,
		InquiryFactor: extractLabeledFloat(quote.Notes, "询价系数", 1),
		ChipPackage:   ExtractLabeledField(quote.Description, "芯片封装"),
		TestType:      ExtractLabeledField(quote.Description, "测试类型"),
		Urgency:       ExtractLabeledField(quote.Description, "紧急程度"),
	}
	for _, item := range quote.Items {
		parsed := parseItem(item)
		form.Machines = append(form.Machines, r.SelectionFromItem(item, parsed))
	}
	return form
}

// roleSelection pairs a device role with its selection for the
// role-based builders.
type roleSelection struct {
	role string
	sel  *DeviceSelection
}

// buildRoleItems serializes the role-based device selections shared
// by the engineering and mass-production layouts: one item per role,
// each carrying its own snapshot in the configuration JSON.
func buildRoleItems(section, testType string, ctx PricingContext, roles []roleSelection) []models.QuoteItem {
	var items []models.QuoteItem
	for _, rs := range roles {
		if rs.sel == nil {
			continue
		}
		cfg := models.ItemConfiguration{
			Section:    section,
			DeviceType: roleLabel(rs.role),
			TestType:   testType,
		}
		snap := SnapshotFromSelection(rs.sel)
		switch rs.role {
		case RoleHandler:
			cfg.Handler = snap
		case RoleProber:
			cfg.Prober = snap
		default:
			cfg.TestMachine = snap
		}
		rate := ComputeHourlyRate(rs.sel, ctx)
		items = append(items, BuildMachineItem(rs.sel, cfg, rate, ctx))
	}
	return items
}

// BuildEngineeringItems serializes an engineering form: one hourly
// item per selected device role, scaled by the engineering rate.
func BuildEngineeringItems(form *EngineeringForm) []models.QuoteItem {
	ctx := PricingContext{
		Currency:     form.Currency,
		ExchangeRate: form.ExchangeRate,
		Multiplier:   form.EngineeringRate,
	}
	return buildRoleItems("", form.TestType, ctx, []roleSelection{
		{RoleTestMachine, form.TestMachine},
		{RoleHandler, form.Handler},
		{RoleProber, form.Prober},
	})
}

// ParseEngineeringItems reconstructs an engineering form. Role
// assignment prefers the per-role snapshots of the JSON format and
// falls back to keyword bucketing for older records. Descriptive
// fields come out of the quote's free text.
func ParseEngineeringItems(quote *models.Quote, catalog *Catalog) *EngineeringForm {
	r := NewReconstructor(catalog)
	form := &EngineeringForm{
		Currency:        quote.Currency,
		ExchangeRate:    quote.ExchangeRate,
		EngineeringRate: extractLabeledFloat(quote.Notes, "工程系数", 1),
		ChipPackage:     ExtractLabeledField(quote.Description, "芯片封装"),
		TestType:        ExtractLabeledField(quote.Description, "测试类型"),
		Urgency:         ExtractLabeledField(quote.Description, "紧急程度"),
	}
	for _, item := range quote.Items {
		parsed := parseItem(item)
		assignRoleSelection(r, item, parsed, &form.TestMachine, &form.Handler, &form.Prober)
		if parsed != nil && parsed.testType != "" {
			form.TestType = parsed.testType
		}
	}
	return form
}

// assignRoleSelection places one item's selection into the right role
// slot. JSON per-role snapshots are authoritative; otherwise the item
// is bucketed by role keywords. A slot already taken keeps its first
// occupant.
func assignRoleSelection(r *Reconstructor, item models.QuoteItem, parsed *parsedConfig, testMachine, handler, prober **DeviceSelection) {
	if parsed != nil {
		if parsed.testMachine != nil && *testMachine == nil {
			*testMachine = r.SelectionFromSnapshot(parsed.testMachine)
			return
		}
		if parsed.handler != nil && *handler == nil {
			*handler = r.SelectionFromSnapshot(parsed.handler)
			return
		}
		if parsed.prober != nil && *prober == nil {
			*prober = r.SelectionFromSnapshot(parsed.prober)
			return
		}
	}
	sel := r.SelectionFromItem(item, parsed)
	switch ClassifyItemRole(item) {
	case RoleHandler:
		if *handler == nil {
			*handler = sel
		}
	case RoleProber:
		if *prober == nil {
			*prober = sel
		}
	default:
		if *testMachine == nil {
			*testMachine = sel
		}
	}
}

// BuildMassProductionItems serializes a mass-production form: hourly
// items per role at catalog rates, no scenario multiplier.
func BuildMassProductionItems(form *MassProductionForm) []models.QuoteItem {
	ctx := PricingContext{
		Currency:     form.Currency,
		ExchangeRate: form.ExchangeRate,
	}
	second := roleSelection{RoleHandler, form.Handler}
	if form.Handler == nil && form.Prober != nil {
		second = roleSelection{RoleProber, form.Prober}
	}
	return buildRoleItems("", form.TestType, ctx, []roleSelection{
		{RoleTestMachine, form.TestMachine},
		second,
	})
}

// ParseMassProductionItems reconstructs a mass-production form.
func ParseMassProductionItems(quote *models.Quote, catalog *Catalog) *MassProductionForm {
	r := NewReconstructor(catalog)
	form := &MassProductionForm{
		Currency:     quote.Currency,
		ExchangeRate: quote.ExchangeRate,
		ChipPackage:  ExtractLabeledField(quote.Description, "芯片封装"),
		TestType:     ExtractLabeledField(quote.Description, "测试类型"),
		Urgency:      ExtractLabeledField(quote.Description, "紧急程度"),
	}
	for _, item := range quote.Items {
		parsed := parseItem(item)
		assignRoleSelection(r, item, parsed, &form.TestMachine, &form.Handler, &form.Prober)
		if parsed != nil && parsed.testType != "" {
			form.TestType = parsed.testType
		}
	}
	return form
}

// BuildProcessItems serializes a per-process form: one item per
// process step carrying both device roles and the UPH in its
// configuration, priced at the per-chip unit cost.
func BuildProcessItems(form *ProcessForm) []models.QuoteItem {
	ctx := PricingContext{
		Currency:     form.Currency,
		ExchangeRate: form.ExchangeRate,
	}
	var items []models.QuoteItem
	for i := range form.Processes {
		proc := &form.Processes[i]
		second := proc.Handler
		if isCPProcess(proc.ProcessType) {
			second = proc.Prober
		}
		unitCost := CombinedUnitRate([]*DeviceSelection{proc.TestMachine, second}, ctx, proc.UPH)
		proc.UnitCost = unitCost

		cfg := models.ItemConfiguration{
			ProcessType: proc.ProcessType,
			TestMachine: SnapshotFromSelection(proc.TestMachine),
			UPH:         proc.UPH,
			UnitCost:    unitCost,
		}
		if isCPProcess(proc.ProcessType) {
			cfg.Prober = SnapshotFromSelection(proc.Prober)
		} else {
			cfg.Handler = SnapshotFromSelection(proc.Handler)
		}

		item := models.QuoteItem{
			ItemName:      proc.ProcessType,
			MachineType:   roleLabel(RoleTestMachine),
			Configuration: MarshalConfiguration(cfg),
			Quantity:      1,
			Unit:          "颗",
			UnitPrice:     unitCost,
			TotalPrice:    unitCost,
		}
		if proc.TestMachine != nil {
			item.MachineModel = proc.TestMachine.Machine.Name
			item.MachineID = proc.TestMachine.Machine.ID
			item.Supplier = proc.TestMachine.Machine.Supplier
		}
		items = append(items, item)
	}
	return items
}

// ParseProcessItems reconstructs a per-process form. Every item is
// one process step; the unit cost is recomputed from current catalog
// prices, never trusted from the record.
func ParseProcessItems(quote *models.Quote, catalog *Catalog) *ProcessForm {
	r := NewReconstructor(catalog)
	ctx := PricingContext{
		Currency:     quote.Currency,
		ExchangeRate: quote.ExchangeRate,
	}
	form := &ProcessForm{
		Currency:     quote.Currency,
		ExchangeRate: quote.ExchangeRate,
	}
	for _, item := range quote.Items {
		parsed := parseItem(item)
		proc := ProcessSelection{ProcessType: item.ItemName}
		if parsed != nil {
			if parsed.processType != "" {
				proc.ProcessType = parsed.processType
			}
			proc.UPH = parsed.uph
			if parsed.testMachine != nil {
				proc.TestMachine = r.SelectionFromSnapshot(parsed.testMachine)
			} else if parsed.machineName != "" {
				proc.TestMachine = &DeviceSelection{Machine: r.ResolveMachine(0, parsed.machineName)}
			}
			if parsed.prober != nil {
				proc.Prober = r.SelectionFromSnapshot(parsed.prober)
			} else if parsed.proberName != "" {
				proc.Prober = &DeviceSelection{Machine: r.ResolveMachine(0, parsed.proberName)}
			}
			if parsed.handler != nil {
				proc.Handler = r.SelectionFromSnapshot(parsed.handler)
			} else if parsed.handlerName != "" {
				proc.Handler = &DeviceSelection{Machine: r.ResolveMachine(0, parsed.handlerName)}
			}
		}
		if proc.TestMachine == nil && item.MachineModel != "" {
			proc.TestMachine = r.SelectionFromItem(item, nil)
		}
		// Same CP/FT pairing rule as the builder; if the preferred
		// role wasn't recovered, whichever one was still prices in.
		second := proc.Handler
		if isCPProcess(proc.ProcessType) && proc.Prober != nil {
			second = proc.Prober
		}
		if second == nil {
			second = proc.Prober
		}
		proc.UnitCost = CombinedUnitRate([]*DeviceSelection{proc.TestMachine, second}, ctx, proc.UPH)
		form.Processes = append(form.Processes, proc)
	}
	return form
}

// BuildToolingItems serializes a tooling form: every selected card
// becomes its own per-piece item at the bridged, discounted catalog
// price.
func BuildToolingItems(form *ToolingForm) []models.QuoteItem {
	ctx := PricingContext{
		Currency:     form.Currency,
		ExchangeRate: form.ExchangeRate,
	}
	var items []models.QuoteItem
	for _, sel := range form.Machines {
		if sel == nil {
			continue
		}
		for _, sc := range sel.Cards {
			price := sc.Card.UnitPrice / cardPriceScale
			price = bridgeCurrency(price, sel.Machine, ctx)
			price = RoundForCurrency(price*discountRate(sel.Machine), ctx.Currency)
			items = append(items, BuildCardItem(sel.Machine, sc, price))
		}
	}
	return items
}

// ParseToolingItems reconstructs a tooling form, regrouping per-card
// items under their resolved machines.
func ParseToolingItems(quote *models.Quote, catalog *Catalog) *ToolingForm {
	r := NewReconstructor(catalog)
	form := &ToolingForm{
		Currency:     quote.Currency,
		ExchangeRate: quote.ExchangeRate,
	}
	byMachine := make(map[int]*DeviceSelection)
	for _, item := range quote.Items {
		parsed := parseItem(item)
		sel := r.SelectionFromItem(item, parsed)
		existing, ok := byMachine[sel.Machine.ID]
		if !ok {
			byMachine[sel.Machine.ID] = sel
			form.Machines = append(form.Machines, sel)
			continue
		}
		existing.Cards = append(existing.Cards, sel.Cards...)
	}
	return form
}

// BuildCombinedItems serializes a combined quote by delegating to the
// section builders and tagging every produced item with its section
// so re-editing can route it back.
func BuildCombinedItems(form *CombinedForm) []models.QuoteItem {
	var items []models.QuoteItem
	appendSection := func(section string, sectionItems []models.QuoteItem) {
		for _, item := range sectionItems {
			item.Configuration = tagSection(item.Configuration, section)
			items = append(items, item)
		}
	}
	if form.Engineering != nil {
		appendSection(sectionEngineering, BuildEngineeringItems(form.Engineering))
	}
	if form.MassProduction != nil {
		appendSection(sectionMassProduction, BuildMassProductionItems(form.MassProduction))
	}
	if form.Tooling != nil {
		appendSection(sectionTooling, BuildToolingItems(form.Tooling))
	}
	return items
}

// tagSection stamps the section tag into a JSON configuration.
// Non-JSON configurations (the flat tooling format) are left alone;
// those items are routed by their unit on re-edit.
func tagSection(configuration, section string) string {
	raw := strings.TrimSpace(configuration)
	if !strings.HasPrefix(raw, "{") {
		return configuration
	}
	var cfg models.ItemConfiguration
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return configuration
	}
	cfg.Section = section
	return MarshalConfiguration(cfg)
}

// ParseCombinedItems reconstructs a combined quote, splitting items
// into their sections by the embedded section tag, falling back to
// the per-piece unit for untagged tooling items.
func ParseCombinedItems(quote *models.Quote, catalog *Catalog) *CombinedForm {
	form := &CombinedForm{
		Currency:     quote.Currency,
		ExchangeRate: quote.ExchangeRate,
	}
	var engItems, massItems, toolItems []models.QuoteItem
	for _, item := range quote.Items {
		switch sectionOf(item) {
		case sectionMassProduction:
			massItems = append(massItems, item)
		case sectionTooling:
			toolItems = append(toolItems, item)
		default:
			engItems = append(engItems, item)
		}
	}
	if len(engItems) > 0 {
		sub := *quote
		sub.Items = engItems
		form.Engineering = ParseEngineeringItems(&sub, catalog)
	}
	if len(massItems) > 0 {
		sub := *quote
		sub.Items = massItems
		form.MassProduction = ParseMassProductionItems(&sub, catalog)
	}
	if len(toolItems) > 0 {
		sub := *quote
		sub.Items = toolItems
		form.Tooling = ParseToolingItems(&sub, catalog)
	}
	return form
}

func sectionOf(item models.QuoteItem) string {
	raw := strings.TrimSpace(item.Configuration)
	if strings.HasPrefix(raw, "{") {
		var cfg models.ItemConfiguration
		if err := json.Unmarshal([]byte(raw), &cfg); err == nil && cfg.Section != "" {
			return cfg.Section
		}
	}
	if item.Unit == "块" || item.CardInfo != nil {
		return sectionTooling
	}
	return sectionEngineering
}

// FormStateForQuote dispatches reconstruction by quote type. The
// returned value is the type-specific form struct, ready to be
// serialized back to the editing client.
func FormStateForQuote(quote *models.Quote, catalog *Catalog) (interface{}, error) {
	switch quote.QuoteType {
	case QuoteTypeInquiry:
		return ParseInquiryItems(quote, catalog), nil
	case QuoteTypeEngineering:
		return ParseEngineeringItems(quote, catalog), nil
	case QuoteTypeMassProduction:
		return ParseMassProductionItems(quote, catalog), nil
	case QuoteTypeProcess:
		return ParseProcessItems(quote, catalog), nil
	case QuoteTypeTooling:
		return ParseToolingItems(quote, catalog), nil
	case QuoteTypeCombined:
		return ParseCombinedItems(quote, catalog), nil
	default:
		return nil, fmt.Errorf("unknown quote type: %s", quote.QuoteType)
	}
}
