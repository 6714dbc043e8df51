package services

import (
	"testing"

	"chip-quotation-backend/models"
)

func testCatalog() *Catalog {
	return &Catalog{
		Machines: []models.Machine{
			{ID: 1, Name: "ETS-88", Supplier: "Eagle Test", Currency: "RMB", DiscountRate: 1, MachineType: "测试机"},
			{ID: 2, Name: "AP3000", Supplier: "ACCRETECH", Currency: "RMB", DiscountRate: 1, MachineType: "探针台"},
			{ID: 3, Name: "NS-8040", Supplier: "Hon Precision", Currency: "RMB", DiscountRate: 1, MachineType: "分选机"},
			{ID: 4, Name: "J750", Supplier: "Teradyne", Currency: "USD", ExchangeRate: 7.1, DiscountRate: 1, MachineType: "测试机"},
		},
		Cards: []models.CardConfig{
			{ID: 101, MachineID: 1, PartNumber: "APU-12", BoardName: "Digital Pin Card", UnitPrice: 1000000},
			{ID: 102, MachineID: 1, PartNumber: "HSD-200", BoardName: "High Speed Digital", UnitPrice: 2500000},
			{ID: 201, MachineID: 2, PartNumber: "PB-8", BoardName: "Probe Interface", UnitPrice: 500000},
			{ID: 401, MachineID: 4, PartNumber: "IG-XL-1", BoardName: "Channel Card", UnitPrice: 800000},
		},
	}
}

func TestParseJSONConfiguration(t *testing.T) {
	item := models.QuoteItem{
		ItemName:      "ETS-88",
		Configuration: `{"device_type":"测试机","test_type":"FT","test_machine":{"id":1,"name":"ETS-88","cards":[{"id":101,"part_number":"APU-12","board_name":"Digital Pin Card","quantity":2}]}}`,
	}

	parsed := parseItem(item)
	if parsed == nil {
		t.Fatal("expected JSON configuration to parse")
	}
	if parsed.testMachine == nil || parsed.testMachine.ID != 1 {
		t.Fatalf("expected test_machine snapshot with id 1, got %+v", parsed.testMachine)
	}
	if len(parsed.testMachine.Cards) != 1 || parsed.testMachine.Cards[0].Quantity != 2 {
		t.Errorf("expected one card with quantity 2, got %+v", parsed.testMachine.Cards)
	}
	if parsed.testType != "FT" {
		t.Errorf("testType = %q, want FT", parsed.testType)
	}
}

func TestParseFallsBackToDetailedName(t *testing.T) {
	// Broken JSON must not block the name-based tier.
	item := models.QuoteItem{
		ItemName:        "ETS-88 - Digital Pin Card",
		ItemDescription: "Digital Pin Card - APU-12",
		Configuration:   `{"cards": [`,
		Quantity:        1,
	}

	parsed := parseItem(item)
	if parsed == nil {
		t.Fatal("expected detailed-name fallback to parse")
	}
	if parsed.machineName != "ETS-88" {
		t.Errorf("machineName = %q, want ETS-88", parsed.machineName)
	}
	if len(parsed.cards) != 1 || parsed.cards[0].BoardName != "Digital Pin Card" {
		t.Fatalf("expected card from item name, got %+v", parsed.cards)
	}
	if parsed.cards[0].PartNumber != "APU-12" {
		t.Errorf("PartNumber = %q, want APU-12 (from description)", parsed.cards[0].PartNumber)
	}
}

func TestParseDetailedNameMultipleCards(t *testing.T) {
	item := models.QuoteItem{
		ItemName:      "ETS-88 - Digital Pin Card, High Speed Digital",
		Configuration: "板卡: Digital Pin Card, High Speed Digital, Part Number: APU-12",
		Quantity:      1,
	}

	parsed := parseItem(item)
	if parsed == nil {
		t.Fatal("expected parse to succeed")
	}
	if len(parsed.cards) != 2 {
		t.Fatalf("expected one snapshot per card name, got %+v", parsed.cards)
	}
	if parsed.cards[0].BoardName != "Digital Pin Card" || parsed.cards[1].BoardName != "High Speed Digital" {
		t.Errorf("board names = %q/%q, want Digital Pin Card/High Speed Digital",
			parsed.cards[0].BoardName, parsed.cards[1].BoardName)
	}
	if parsed.cards[0].PartNumber != "APU-12" {
		t.Errorf("first card PartNumber = %q, want APU-12", parsed.cards[0].PartNumber)
	}
}

func TestParseLegacyTextMultipleBoards(t *testing.T) {
	tests := []struct {
		name   string
		config string
		boards []string
		pns    []string
	}{
		{
			"comma-joined board list",
			"板卡: Digital Pin Card, High Speed Digital, Part Number: APU-12",
			[]string{"Digital Pin Card", "High Speed Digital"},
			[]string{"APU-12", ""},
		},
		{
			"interleaved boards and part numbers",
			"板卡: Digital Pin Card, Part Number: APU-12, 板卡: High Speed Digital, Part Number: HSD-200",
			[]string{"Digital Pin Card", "High Speed Digital"},
			[]string{"APU-12", "HSD-200"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := parseItem(models.QuoteItem{Configuration: tt.config})
			if parsed == nil {
				t.Fatal("expected legacy text to parse")
			}
			if len(parsed.cards) != len(tt.boards) {
				t.Fatalf("got %d cards, want %d: %+v", len(parsed.cards), len(tt.boards), parsed.cards)
			}
			for i := range tt.boards {
				if parsed.cards[i].BoardName != tt.boards[i] {
					t.Errorf("cards[%d].BoardName = %q, want %q", i, parsed.cards[i].BoardName, tt.boards[i])
				}
				if parsed.cards[i].PartNumber != tt.pns[i] {
					t.Errorf("cards[%d].PartNumber = %q, want %q", i, parsed.cards[i].PartNumber, tt.pns[i])
				}
			}
		})
	}
}

func TestParseDetailedNamePartNumberFromConfiguration(t *testing.T) {
	item := models.QuoteItem{
		ItemName:      "ETS-88 - Digital Pin Card",
		Configuration: "板卡: Digital Pin Card, Part Number: APU-12",
	}

	parsed := parseItem(item)
	if parsed == nil {
		t.Fatal("expected parse to succeed")
	}
	if parsed.cards[0].PartNumber != "APU-12" {
		t.Errorf("PartNumber = %q, want APU-12 (from configuration token)", parsed.cards[0].PartNumber)
	}
}

func TestParseCardInfoField(t *testing.T) {
	item := models.QuoteItem{
		ItemName:     "Probe Interface",
		MachineModel: "AP3000",
		CardInfo:     &models.CardSnapshot{ID: 201, PartNumber: "PB-8", BoardName: "Probe Interface", Quantity: 3},
	}

	parsed := parseItem(item)
	if parsed == nil {
		t.Fatal("expected card_info tier to parse")
	}
	if parsed.machineName != "AP3000" {
		t.Errorf("machineName = %q, want AP3000", parsed.machineName)
	}
	if len(parsed.cards) != 1 || parsed.cards[0].ID != 201 || parsed.cards[0].Quantity != 3 {
		t.Errorf("cards = %+v, want the card_info snapshot", parsed.cards)
	}
}

func TestParseLegacyText(t *testing.T) {
	item := models.QuoteItem{
		ItemName:      "CP1",
		Configuration: "测试机:ETS-88, 探针台:AP3000, UPH:10",
	}

	parsed := parseItem(item)
	if parsed == nil {
		t.Fatal("expected legacy text to parse")
	}
	if parsed.machineName != "ETS-88" {
		t.Errorf("machineName = %q, want ETS-88", parsed.machineName)
	}
	if parsed.proberName != "AP3000" {
		t.Errorf("proberName = %q, want AP3000", parsed.proberName)
	}
	if parsed.uph != 10 {
		t.Errorf("uph = %v, want 10", parsed.uph)
	}
}

func TestParseLegacyTextFullWidthPunctuation(t *testing.T) {
	item := models.QuoteItem{
		Configuration: "测试机：ETS-88，分选机：NS-8040",
	}

	parsed := parseItem(item)
	if parsed == nil {
		t.Fatal("expected full-width legacy text to parse")
	}
	if parsed.machineName != "ETS-88" || parsed.handlerName != "NS-8040" {
		t.Errorf("parsed = %+v, want ETS-88/NS-8040", parsed)
	}
}

func TestParseUnrecognizableItem(t *testing.T) {
	item := models.QuoteItem{
		ItemName:      "人工费",
		Configuration: "按实际工时结算",
	}
	if parsed := parseItem(item); parsed != nil {
		t.Errorf("expected nil for unrecognizable configuration, got %+v", parsed)
	}
}

func TestResolveMachineTiers(t *testing.T) {
	catalog := testCatalog()

	tests := []struct {
		name     string
		id       int
		text     string
		expectID int
	}{
		{"by id wins over name", 2, "ETS-88", 2},
		{"exact name", 0, "ETS-88", 1},
		{"case insensitive name", 0, "ets-88", 1},
		{"stored name contains catalog name", 0, "ETS-88 测试机", 1},
		{"catalog name contains stored name", 0, "AP30", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReconstructor(catalog)
			got := r.ResolveMachine(tt.id, tt.text)
			if got.ID != tt.expectID {
				t.Errorf("ResolveMachine(%d, %q).ID = %d, want %d", tt.id, tt.text, got.ID, tt.expectID)
			}
		})
	}
}

func TestResolveMachinePlaceholder(t *testing.T) {
	r := NewReconstructor(testCatalog())

	got := r.ResolveMachine(0, "V93000")
	if got.ID >= 0 {
		t.Errorf("placeholder machine ID = %d, want negative", got.ID)
	}
	if got.Name != "V93000" {
		t.Errorf("placeholder keeps stored name, got %q", got.Name)
	}
	if got.DiscountRate != 1 {
		t.Errorf("placeholder discount = %v, want 1", got.DiscountRate)
	}

	second := r.ResolveMachine(0, "UF3000")
	if second.ID == got.ID {
		t.Error("placeholder IDs must be unique within one reconstruction")
	}
}

func TestResolveCardTiers(t *testing.T) {
	catalog := testCatalog()

	tests := []struct {
		name      string
		machineID int
		snap      models.CardSnapshot
		expectID  int
	}{
		{"by id", 1, models.CardSnapshot{ID: 102}, 102},
		{"exact part number", 1, models.CardSnapshot{PartNumber: "APU-12"}, 101},
		{"exact board name", 1, models.CardSnapshot{BoardName: "High Speed Digital"}, 102},
		{"fuzzy part number", 1, models.CardSnapshot{PartNumber: "APU-12-REV2"}, 101},
		{"fuzzy board name", 2, models.CardSnapshot{BoardName: "Probe"}, 201},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReconstructor(catalog)
			got := r.ResolveCard(tt.machineID, tt.snap)
			if got.Card.ID != tt.expectID {
				t.Errorf("ResolveCard(%d, %+v).ID = %d, want %d", tt.machineID, tt.snap, got.Card.ID, tt.expectID)
			}
		})
	}
}

func TestResolveCardReadsCurrentCatalogPrice(t *testing.T) {
	catalog := testCatalog()
	r := NewReconstructor(catalog)

	// The snapshot carries a stale price; the resolved card must use
	// the catalog's.
	snap := models.CardSnapshot{ID: 101, UnitPrice: 42, Quantity: 2}
	got := r.ResolveCard(1, snap)
	if got.Card.UnitPrice != 1000000 {
		t.Errorf("resolved price = %v, want catalog price 1000000", got.Card.UnitPrice)
	}
	if got.Quantity != 2 {
		t.Errorf("quantity = %d, want 2 (from the record)", got.Quantity)
	}
}

func TestResolveCardPlaceholder(t *testing.T) {
	r := NewReconstructor(testCatalog())

	got := r.ResolveCard(1, models.CardSnapshot{BoardName: "Retired Board"})
	if got.Card.ID >= 0 {
		t.Errorf("placeholder card ID = %d, want negative", got.Card.ID)
	}
	if got.Card.UnitPrice != 0 {
		t.Errorf("placeholder price = %v, want 0", got.Card.UnitPrice)
	}
	if got.Card.BoardName != "Retired Board" {
		t.Errorf("placeholder keeps stored name, got %q", got.Card.BoardName)
	}
	if got.Quantity != 1 {
		t.Errorf("quantity defaults to 1, got %d", got.Quantity)
	}
}

func TestClassifyItemRole(t *testing.T) {
	tests := []struct {
		name   string
		item   models.QuoteItem
		expect string
	}{
		{"machine type field", models.QuoteItem{MachineType: "分选机"}, RoleHandler},
		{"item name keyword", models.QuoteItem{ItemName: "AP3000探针台"}, RoleProber},
		{"description keyword", models.QuoteItem{ItemDescription: "辅助设备租用"}, RoleAux},
		{"machine type beats item name", models.QuoteItem{MachineType: "测试机", ItemName: "探针台配套"}, RoleTestMachine},
		{"english keyword", models.QuoteItem{MachineType: "Handler"}, RoleHandler},
		{"default is test machine", models.QuoteItem{ItemName: "ETS-88"}, RoleTestMachine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyItemRole(tt.item); got != tt.expect {
				t.Errorf("ClassifyItemRole(%+v) = %q, want %q", tt.item, got, tt.expect)
			}
		})
	}
}
