package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"chip-quotation-backend/models"
)

// SnapshotFromSelection freezes a device selection into the snapshot
// shape embedded in a line item's configuration JSON. Card IDs, part
// numbers and board names all go in so a future catalog can still
// resolve the selection even after renames.
func SnapshotFromSelection(sel *DeviceSelection) *models.DeviceSnapshot {
	if sel == nil {
		return nil
	}
	snap := &models.DeviceSnapshot{
		ID:   sel.Machine.ID,
		Name: sel.Machine.Name,
	}
	for _, sc := range sel.Cards {
		qty := sc.Quantity
		if qty < 1 {
			qty = 1
		}
		snap.Cards = append(snap.Cards, models.CardSnapshot{
			ID:         sc.Card.ID,
			PartNumber: sc.Card.PartNumber,
			BoardName:  sc.Card.BoardName,
			Quantity:   qty,
		})
	}
	return snap
}

// MarshalConfiguration renders an ItemConfiguration to the JSON text
// stored in QuoteItem.Configuration. Marshal failures degrade to an
// empty string; the item then round-trips through the name-based
// fallback formats instead of blocking the save.
func MarshalConfiguration(cfg models.ItemConfiguration) string {
	data, err := json.Marshal(cfg)
	if err != nil {
		return ""
	}
	return string(data)
}

// cardNameList joins selected card names deterministically
// (catalog order, comma separated) for the human-readable description
// on flat quote types.
func cardNameList(cards []SelectedCard) string {
	names := make([]string, 0, len(cards))
	for _, sc := range cards {
		name := sc.Card.BoardName
		if name == "" {
			name = sc.Card.PartNumber
		}
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}

// BuildMachineItem serializes one priced device selection into a
// persisted line item. The configuration JSON is the authoritative
// round-trip payload; name, description and machine columns keep the
// record readable and give older parsers something to match on.
func BuildMachineItem(sel *DeviceSelection, cfg models.ItemConfiguration, hourlyRate float64, ctx PricingContext) models.QuoteItem {
	item := models.QuoteItem{
		ItemName:      sel.Machine.Name,
		MachineType:   sel.Machine.MachineType,
		Supplier:      sel.Machine.Supplier,
		MachineModel:  sel.Machine.Name,
		MachineID:     sel.Machine.ID,
		Configuration: MarshalConfiguration(cfg),
		Quantity:      1,
		Unit:          "小时",
		UnitPrice:     hourlyRate,
		TotalPrice:    hourlyRate,
	}
	if len(sel.Cards) > 0 {
		item.ItemDescription = cardNameList(sel.Cards)
	}
	return item
}

// BuildFlatItem serializes a selection for the simpler quote types
// (inquiry, tooling) that persist no JSON payload: the device name
// and card names are encoded deterministically in the name and
// description so at least identity survives for re-editing.
func BuildFlatItem(sel *DeviceSelection, unitPrice float64, quantity float64) models.QuoteItem {
	if quantity <= 0 {
		quantity = 1
	}
	item := models.QuoteItem{
		ItemName:     sel.Machine.Name,
		MachineType:  sel.Machine.MachineType,
		Supplier:     sel.Machine.Supplier,
		MachineModel: sel.Machine.Name,
		MachineID:    sel.Machine.ID,
		Quantity:     quantity,
		Unit:         "小时",
		UnitPrice:    unitPrice,
		TotalPrice:   unitPrice * quantity,
	}
	if len(sel.Cards) > 0 {
		item.ItemName = fmt.Sprintf("%s - %s", sel.Machine.Name, cardNameList(sel.Cards))
		item.Configuration = "板卡: " + cardNameList(sel.Cards)
		if pn := sel.Cards[0].Card.PartNumber; pn != "" {
			item.Configuration += ", Part Number: " + pn
		}
	}
	return item
}

// BuildCardItem serializes a single card as its own line item, the
// shape used when each board is quoted separately (tooling and some
// inquiry layouts). Identity is carried redundantly: the
// "<device> - <card>" item name, the "<board> - <part number>"
// description and the structured card_info field.
func BuildCardItem(machine models.Machine, sc SelectedCard, unitPrice float64) models.QuoteItem {
	qty := sc.Quantity
	if qty < 1 {
		qty = 1
	}
	boardName := sc.Card.BoardName
	if boardName == "" {
		boardName = sc.Card.PartNumber
	}
	item := models.QuoteItem{
		ItemName:     fmt.Sprintf("%s - %s", machine.Name, boardName),
		MachineType:  machine.MachineType,
		Supplier:     machine.Supplier,
		MachineModel: machine.Name,
		MachineID:    machine.ID,
		CardInfo: &models.CardSnapshot{
			ID:         sc.Card.ID,
			PartNumber: sc.Card.PartNumber,
			BoardName:  sc.Card.BoardName,
			Quantity:   qty,
		},
		Quantity:   float64(qty),
		Unit:       "块",
		UnitPrice:  unitPrice,
		TotalPrice: unitPrice * float64(qty),
	}
	if sc.Card.PartNumber != "" {
		item.ItemDescription = fmt.Sprintf("%s - %s", boardName, sc.Card.PartNumber)
	} else {
		item.ItemDescription = boardName
	}
	return item
}
