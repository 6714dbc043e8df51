package services

import (
	"strings"
	"testing"

	"chip-quotation-backend/models"
)

func TestSnapshotFromSelection(t *testing.T) {
	catalog := testCatalog()
	sel := &DeviceSelection{
		Machine: *catalog.MachineByID(1),
		Cards: []SelectedCard{
			{Card: *catalog.CardByID(101), Quantity: 2},
			{Card: *catalog.CardByID(102), Quantity: 0},
		},
	}

	snap := SnapshotFromSelection(sel)
	if snap.ID != 1 || snap.Name != "ETS-88" {
		t.Fatalf("snapshot machine = %d/%q, want 1/ETS-88", snap.ID, snap.Name)
	}
	if len(snap.Cards) != 2 {
		t.Fatalf("expected 2 card snapshots, got %d", len(snap.Cards))
	}
	if snap.Cards[0].Quantity != 2 {
		t.Errorf("Cards[0].Quantity = %d, want 2", snap.Cards[0].Quantity)
	}
	if snap.Cards[1].Quantity != 1 {
		t.Errorf("zero quantity must normalize to 1, got %d", snap.Cards[1].Quantity)
	}
}

func TestMachineItemRoundTrip(t *testing.T) {
	catalog := testCatalog()
	sel := &DeviceSelection{
		Machine: *catalog.MachineByID(1),
		Cards:   []SelectedCard{{Card: *catalog.CardByID(101), Quantity: 2}},
	}
	cfg := models.ItemConfiguration{
		Section:     "engineering",
		TestType:    "FT",
		TestMachine: SnapshotFromSelection(sel),
	}

	item := BuildMachineItem(sel, cfg, 240, PricingContext{Currency: "CNY"})
	if item.MachineID != 1 || item.UnitPrice != 240 {
		t.Fatalf("item = %+v, want machine 1 at 240", item)
	}

	parsed := parseItem(item)
	if parsed == nil || parsed.testMachine == nil {
		t.Fatalf("expected JSON tier to recover the test machine, got %+v", parsed)
	}
	got := NewReconstructor(catalog).SelectionFromSnapshot(parsed.testMachine)
	if got.Machine.ID != 1 {
		t.Errorf("resolved machine ID = %d, want 1", got.Machine.ID)
	}
	if len(got.Cards) != 1 || got.Cards[0].Card.ID != 101 || got.Cards[0].Quantity != 2 {
		t.Fatalf("resolved cards = %+v, want card 101 x2", got.Cards)
	}
	if got.Cards[0].Card.UnitPrice != 1000000 {
		t.Errorf("resolved price = %v, want the catalog's 1000000", got.Cards[0].Card.UnitPrice)
	}
}

func TestCardItemRoundTrip(t *testing.T) {
	catalog := testCatalog()
	machine := *catalog.MachineByID(1)
	sc := SelectedCard{Card: *catalog.CardByID(101), Quantity: 3}

	item := BuildCardItem(machine, sc, 100)
	if item.ItemName != "ETS-88 - Digital Pin Card" {
		t.Errorf("ItemName = %q, want \"ETS-88 - Digital Pin Card\"", item.ItemName)
	}
	if item.TotalPrice != 300 {
		t.Errorf("TotalPrice = %v, want 300", item.TotalPrice)
	}

	parsed := parseItem(item)
	if parsed == nil {
		t.Fatal("expected parse to succeed")
	}
	r := NewReconstructor(catalog)
	sel := r.SelectionFromItem(item, parsed)
	if sel.Machine.ID != 1 {
		t.Errorf("resolved machine ID = %d, want 1", sel.Machine.ID)
	}
	if len(sel.Cards) != 1 || sel.Cards[0].Card.ID != 101 {
		t.Fatalf("resolved cards = %+v, want card 101", sel.Cards)
	}
	if sel.Cards[0].Quantity != 3 {
		t.Errorf("quantity = %d, want 3", sel.Cards[0].Quantity)
	}
}

func TestFlatItemCarriesIdentityInName(t *testing.T) {
	catalog := testCatalog()
	sel := &DeviceSelection{
		Machine: *catalog.MachineByID(1),
		Cards:   []SelectedCard{{Card: *catalog.CardByID(102), Quantity: 1}},
	}

	item := BuildFlatItem(sel, 50, 2)
	if !strings.HasPrefix(item.ItemName, "ETS-88 - ") {
		t.Errorf("ItemName = %q, want \"ETS-88 - <cards>\"", item.ItemName)
	}
	if item.TotalPrice != 100 {
		t.Errorf("TotalPrice = %v, want 100", item.TotalPrice)
	}

	parsed := parseItem(item)
	if parsed == nil {
		t.Fatal("expected detailed-name tier to parse the flat item")
	}
	sel2 := NewReconstructor(catalog).SelectionFromItem(item, parsed)
	if sel2.Machine.ID != 1 {
		t.Errorf("resolved machine ID = %d, want 1", sel2.Machine.ID)
	}
	if len(sel2.Cards) != 1 || sel2.Cards[0].Card.ID != 102 {
		t.Fatalf("resolved cards = %+v, want card 102", sel2.Cards)
	}
}

func TestMarshalConfigurationOmitsEmptyRoles(t *testing.T) {
	cfg := models.ItemConfiguration{TestType: "CP"}
	raw := MarshalConfiguration(cfg)
	if strings.Contains(raw, "handler") || strings.Contains(raw, "prober") {
		t.Errorf("empty roles must be omitted, got %s", raw)
	}
}
