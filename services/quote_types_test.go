package services

import (
	"testing"

	"chip-quotation-backend/models"
)

func selectionFor(catalog *Catalog, machineID int, cardIDs ...int) *DeviceSelection {
	sel := &DeviceSelection{Machine: *catalog.MachineByID(machineID)}
	for _, id := range cardIDs {
		sel.Cards = append(sel.Cards, SelectedCard{Card: *catalog.CardByID(id), Quantity: 1})
	}
	return sel
}

func TestExtractLabeledField(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		label  string
		expect string
	}{
		{"full-width colon", "芯片封装：QFN48, 测试类型：FT", "芯片封装", "QFN48"},
		{"ascii colon", "芯片封装: QFN48", "芯片封装", "QFN48"},
		{"value stops at comma", "测试类型：FT, 紧急程度：加急", "测试类型", "FT"},
		{"full-width comma", "测试类型：FT，紧急程度：加急", "测试类型", "FT"},
		{"missing label", "测试类型：FT", "芯片封装", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractLabeledField(tt.text, tt.label); got != tt.expect {
				t.Errorf("ExtractLabeledField(%q, %q) = %q, want %q", tt.text, tt.label, got, tt.expect)
			}
		})
	}
}

func TestExtractLabeledFieldRepeatedCalls(t *testing.T) {
	// Alternating labels must each keep matching their own pattern.
	for i := 0; i < 3; i++ {
		if got := ExtractLabeledField("测试类型：FT, 芯片封装：QFN48", "测试类型"); got != "FT" {
			t.Fatalf("call %d: 测试类型 = %q, want FT", i, got)
		}
		if got := ExtractLabeledField("测试类型：FT, 芯片封装：QFN48", "芯片封装"); got != "QFN48" {
			t.Fatalf("call %d: 芯片封装 = %q, want QFN48", i, got)
		}
		if got := ExtractLabeledField("测试类型：FT", "芯片封装"); got != "" {
			t.Fatalf("call %d: expected no match, got %q", i, got)
		}
	}
}

func TestEngineeringRoundTrip(t *testing.T) {
	catalog := testCatalog()
	form := &EngineeringForm{
		Currency:        "CNY",
		ExchangeRate:    7.2,
		EngineeringRate: 1.2,
		TestType:        "FT",
		TestMachine:     selectionFor(catalog, 1, 101),
		Handler:         selectionFor(catalog, 3),
	}
	form.TestMachine.Cards[0].Quantity = 2

	items := BuildEngineeringItems(form)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	// 100 * 2 cards * 1.2 engineering rate, ceiled for CNY.
	if items[0].UnitPrice != 240 {
		t.Errorf("tester hourly rate = %v, want 240", items[0].UnitPrice)
	}

	quote := &models.Quote{
		QuoteType:    QuoteTypeEngineering,
		Currency:     "CNY",
		ExchangeRate: 7.2,
		Notes:        "工程系数：1.2",
		Description:  "芯片封装：QFN48, 紧急程度：加急",
		Items:        items,
	}
	got := ParseEngineeringItems(quote, catalog)

	if got.TestMachine == nil || got.TestMachine.Machine.ID != 1 {
		t.Fatalf("test machine not recovered: %+v", got.TestMachine)
	}
	if len(got.TestMachine.Cards) != 1 || got.TestMachine.Cards[0].Card.ID != 101 {
		t.Fatalf("tester cards not recovered: %+v", got.TestMachine.Cards)
	}
	if got.TestMachine.Cards[0].Quantity != 2 {
		t.Errorf("card quantity = %d, want 2", got.TestMachine.Cards[0].Quantity)
	}
	if got.Handler == nil || got.Handler.Machine.ID != 3 {
		t.Errorf("handler not recovered: %+v", got.Handler)
	}
	if got.EngineeringRate != 1.2 {
		t.Errorf("engineering rate = %v, want 1.2", got.EngineeringRate)
	}
	if got.TestType != "FT" {
		t.Errorf("test type = %q, want FT", got.TestType)
	}
	if got.ChipPackage != "QFN48" || got.Urgency != "加急" {
		t.Errorf("descriptive fields = %q/%q, want QFN48/加急", got.ChipPackage, got.Urgency)
	}
}

func TestEngineeringRoundTripSurvivesCatalogRename(t *testing.T) {
	catalog := testCatalog()
	form := &EngineeringForm{
		Currency:    "CNY",
		TestMachine: selectionFor(catalog, 1, 101),
	}
	items := BuildEngineeringItems(form)

	// The machine was renamed and re-keyed since the quote was saved;
	// only part numbers still line up.
	renamed := &Catalog{
		Machines: []models.Machine{
			{ID: 11, Name: "ETS-88C", Currency: "RMB", DiscountRate: 1, MachineType: "测试机"},
		},
		Cards: []models.CardConfig{
			{ID: 111, MachineID: 11, PartNumber: "APU-12", BoardName: "Digital Pin Card Rev C", UnitPrice: 1200000},
		},
	}
	quote := &models.Quote{QuoteType: QuoteTypeEngineering, Currency: "CNY", Items: items}
	got := ParseEngineeringItems(quote, renamed)

	if got.TestMachine == nil || got.TestMachine.Machine.ID != 11 {
		t.Fatalf("expected fuzzy match onto renamed machine, got %+v", got.TestMachine)
	}
	if len(got.TestMachine.Cards) != 1 || got.TestMachine.Cards[0].Card.ID != 111 {
		t.Fatalf("expected part-number match onto new card, got %+v", got.TestMachine.Cards)
	}
	if got.TestMachine.Cards[0].Card.UnitPrice != 1200000 {
		t.Errorf("price = %v, want current catalog price 1200000", got.TestMachine.Cards[0].Card.UnitPrice)
	}
}

func TestInquiryRoundTrip(t *testing.T) {
	catalog := testCatalog()
	form := &InquiryForm{
		Currency:      "USD",
		InquiryFactor: 1.5,
		Machines:      []*DeviceSelection{selectionFor(catalog, 4, 401)},
	}

	items := BuildInquiryItems(form)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	// 80 USD hourly times inquiry factor 1.5.
	if items[0].UnitPrice != 120 {
		t.Errorf("inquiry rate = %v, want 120", items[0].UnitPrice)
	}

	quote := &models.Quote{
		QuoteType: QuoteTypeInquiry,
		Currency:  "USD",
		Notes:     "询价系数：1.5",
		Items:     items,
	}
	got := ParseInquiryItems(quote, catalog)

	if got.InquiryFactor != 1.5 {
		t.Errorf("inquiry factor = %v, want 1.5", got.InquiryFactor)
	}
	if len(got.Machines) != 1 || got.Machines[0].Machine.ID != 4 {
		t.Fatalf("machine not recovered: %+v", got.Machines)
	}
	if len(got.Machines[0].Cards) != 1 || got.Machines[0].Cards[0].Card.ID != 401 {
		t.Errorf("card not recovered from flat format: %+v", got.Machines[0].Cards)
	}
}

func TestInquiryMultiCardRoundTrip(t *testing.T) {
	catalog := testCatalog()
	form := &InquiryForm{
		Currency: "CNY",
		Machines: []*DeviceSelection{selectionFor(catalog, 1, 101, 102)},
	}

	items := BuildInquiryItems(form)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	quote := &models.Quote{QuoteType: QuoteTypeInquiry, Currency: "CNY", Items: items}
	got := ParseInquiryItems(quote, catalog)

	if len(got.Machines) != 1 || got.Machines[0].Machine.ID != 1 {
		t.Fatalf("machine not recovered: %+v", got.Machines)
	}
	cards := got.Machines[0].Cards
	if len(cards) != 2 {
		t.Fatalf("expected both cards back from the flat format, got %+v", cards)
	}
	if cards[0].Card.ID != 101 || cards[1].Card.ID != 102 {
		t.Errorf("recovered card IDs = %d/%d, want 101/102", cards[0].Card.ID, cards[1].Card.ID)
	}
}

func TestProcessRoundTrip(t *testing.T) {
	catalog := testCatalog()
	form := &ProcessForm{
		Currency: "CNY",
		Processes: []ProcessSelection{
			{
				ProcessType: "CP1",
				TestMachine: selectionFor(catalog, 1, 101),
				Prober:      selectionFor(catalog, 2, 201),
				UPH:         1000,
			},
		},
	}

	items := BuildProcessItems(form)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	// (100 + 50) per hour over 1000 UPH.
	if items[0].UnitPrice != 0.15 {
		t.Errorf("per-chip cost = %v, want 0.15", items[0].UnitPrice)
	}
	if items[0].Unit != "颗" {
		t.Errorf("unit = %q, want 颗", items[0].Unit)
	}

	quote := &models.Quote{QuoteType: QuoteTypeProcess, Currency: "CNY", Items: items}
	got := ParseProcessItems(quote, catalog)

	if len(got.Processes) != 1 {
		t.Fatalf("expected 1 process, got %d", len(got.Processes))
	}
	proc := got.Processes[0]
	if proc.ProcessType != "CP1" {
		t.Errorf("process type = %q, want CP1", proc.ProcessType)
	}
	if proc.TestMachine == nil || proc.TestMachine.Machine.ID != 1 {
		t.Fatalf("test machine not recovered: %+v", proc.TestMachine)
	}
	if proc.Prober == nil || proc.Prober.Machine.ID != 2 {
		t.Fatalf("prober not recovered: %+v", proc.Prober)
	}
	if proc.UPH != 1000 {
		t.Errorf("uph = %v, want 1000", proc.UPH)
	}
	if proc.UnitCost != 0.15 {
		t.Errorf("recomputed unit cost = %v, want 0.15", proc.UnitCost)
	}
}

func TestProcessLegacyTextReconstruction(t *testing.T) {
	catalog := testCatalog()
	quote := &models.Quote{
		QuoteType: QuoteTypeProcess,
		Currency:  "CNY",
		Items: []models.QuoteItem{
			{ItemName: "CP1", Configuration: "测试机:ETS-88, 探针台:AP3000, UPH:10"},
		},
	}

	got := ParseProcessItems(quote, catalog)
	if len(got.Processes) != 1 {
		t.Fatalf("expected 1 process, got %d", len(got.Processes))
	}
	proc := got.Processes[0]
	if proc.TestMachine == nil || proc.TestMachine.Machine.Name != "ETS-88" {
		t.Fatalf("test machine = %+v, want ETS-88", proc.TestMachine)
	}
	if proc.Prober == nil || proc.Prober.Machine.Name != "AP3000" {
		t.Fatalf("prober = %+v, want AP3000", proc.Prober)
	}
	if proc.UPH != 10 {
		t.Errorf("uph = %v, want 10", proc.UPH)
	}
	// Legacy records carry no cards, so the recomputed cost is 0.
	if proc.UnitCost != 0 {
		t.Errorf("unit cost = %v, want 0 for cardless legacy record", proc.UnitCost)
	}
}

func TestProcessSecondRoleFollowsProcessType(t *testing.T) {
	catalog := testCatalog()
	// A record carrying both role snapshots: an FT step must price the
	// handler, not the prober.
	cfg := models.ItemConfiguration{
		ProcessType: "FT1",
		TestMachine: &models.DeviceSnapshot{ID: 1, Name: "ETS-88", Cards: []models.CardSnapshot{{ID: 101, Quantity: 1}}},
		Handler:     &models.DeviceSnapshot{ID: 3, Name: "NS-8040"},
		Prober:      &models.DeviceSnapshot{ID: 2, Name: "AP3000", Cards: []models.CardSnapshot{{ID: 201, Quantity: 1}}},
		UPH:         1000,
	}
	quote := &models.Quote{
		QuoteType: QuoteTypeProcess,
		Currency:  "CNY",
		Items: []models.QuoteItem{
			{ItemName: "FT1", Configuration: MarshalConfiguration(cfg)},
		},
	}

	got := ParseProcessItems(quote, catalog)
	if len(got.Processes) != 1 {
		t.Fatalf("expected 1 process, got %d", len(got.Processes))
	}
	proc := got.Processes[0]
	// Tester 100/hr plus the cardless handler's 0, over 1000 UPH. The
	// prober's 50/hr must not leak in.
	if proc.UnitCost != 0.1 {
		t.Errorf("unit cost = %v, want 0.1 (tester + handler only)", proc.UnitCost)
	}
}

func TestToolingRoundTrip(t *testing.T) {
	catalog := testCatalog()
	form := &ToolingForm{
		Currency: "CNY",
		Machines: []*DeviceSelection{selectionFor(catalog, 1, 101, 102)},
	}

	items := BuildToolingItems(form)
	if len(items) != 2 {
		t.Fatalf("expected one item per card, got %d", len(items))
	}
	if items[0].UnitPrice != 100 {
		t.Errorf("first card price = %v, want 100", items[0].UnitPrice)
	}
	if items[0].CardInfo == nil || items[0].CardInfo.PartNumber != "APU-12" {
		t.Errorf("card_info not written: %+v", items[0].CardInfo)
	}

	quote := &models.Quote{QuoteType: QuoteTypeTooling, Currency: "CNY", Items: items}
	got := ParseToolingItems(quote, catalog)

	if len(got.Machines) != 1 {
		t.Fatalf("expected items regrouped under 1 machine, got %d", len(got.Machines))
	}
	if got.Machines[0].Machine.ID != 1 {
		t.Errorf("machine = %+v, want ETS-88", got.Machines[0].Machine)
	}
	if len(got.Machines[0].Cards) != 2 {
		t.Errorf("expected 2 cards recovered, got %+v", got.Machines[0].Cards)
	}
}

func TestCombinedRoundTrip(t *testing.T) {
	catalog := testCatalog()
	form := &CombinedForm{
		Currency: "CNY",
		Engineering: &EngineeringForm{
			Currency:    "CNY",
			TestMachine: selectionFor(catalog, 1, 101),
		},
		Tooling: &ToolingForm{
			Currency: "CNY",
			Machines: []*DeviceSelection{selectionFor(catalog, 2, 201)},
		},
	}

	items := BuildCombinedItems(form)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	quote := &models.Quote{QuoteType: QuoteTypeCombined, Currency: "CNY", Items: items}
	got := ParseCombinedItems(quote, catalog)

	if got.Engineering == nil || got.Engineering.TestMachine == nil || got.Engineering.TestMachine.Machine.ID != 1 {
		t.Fatalf("engineering section not recovered: %+v", got.Engineering)
	}
	if got.Tooling == nil || len(got.Tooling.Machines) != 1 || got.Tooling.Machines[0].Machine.ID != 2 {
		t.Fatalf("tooling section not recovered: %+v", got.Tooling)
	}
	if got.MassProduction != nil {
		t.Error("no mass-production items were built, section must be nil")
	}
}

func TestFormStateForQuoteDispatch(t *testing.T) {
	catalog := testCatalog()

	quote := &models.Quote{QuoteType: QuoteTypeInquiry, Currency: "CNY"}
	state, err := FormStateForQuote(quote, catalog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := state.(*InquiryForm); !ok {
		t.Errorf("expected *InquiryForm, got %T", state)
	}

	quote.QuoteType = "unheard_of"
	if _, err := FormStateForQuote(quote, catalog); err == nil {
		t.Error("expected error for unknown quote type")
	}
}
