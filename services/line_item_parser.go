package services

import (
	"encoding/json"
	"strconv"
	"strings"

	"chip-quotation-backend/models"
)

// Catalog is the current reference data the reconstructor resolves
// persisted identities against. It is loaded once per request and
// never mutated by the engine.
type Catalog struct {
	Machines []models.Machine
	Cards    []models.CardConfig
}

// MachineByID returns the catalog machine with the given ID, or nil.
func (c *Catalog) MachineByID(id int) *models.Machine {
	for i := range c.Machines {
		if c.Machines[i].ID == id {
			return &c.Machines[i]
		}
	}
	return nil
}

// CardByID returns the catalog card with the given ID, or nil.
func (c *Catalog) CardByID(id int) *models.CardConfig {
	for i := range c.Cards {
		if c.Cards[i].ID == id {
			return &c.Cards[i]
		}
	}
	return nil
}

// CardsForMachine returns all cards attached to one machine.
func (c *Catalog) CardsForMachine(machineID int) []models.CardConfig {
	var out []models.CardConfig
	for _, card := range c.Cards {
		if card.MachineID == machineID {
			out = append(out, card)
		}
	}
	return out
}

// Reconstructor turns persisted quote items back into structured
// device/card selections. One instance serves one quote; the
// placeholder counter keeps synthesized IDs unique within it.
type Reconstructor struct {
	catalog           *Catalog
	nextPlaceholderID int
}

// NewReconstructor creates a reconstructor over the current catalog.
func NewReconstructor(catalog *Catalog) *Reconstructor {
	return &Reconstructor{catalog: catalog, nextPlaceholderID: -1}
}

func (r *Reconstructor) placeholderID() int {
	id := r.nextPlaceholderID
	r.nextPlaceholderID--
	return id
}

// parsedConfig is the format-neutral result of recognizing one item's
// configuration, before any identity resolution. Exactly one
// recognizer fills it per item.
type parsedConfig struct {
	deviceType  string
	testType    string
	processType string

	// role snapshots from the JSON format
	testMachine *models.DeviceSnapshot
	handler     *models.DeviceSnapshot
	prober      *models.DeviceSnapshot

	// flat card list (JSON cards array, card_info, name-derived card)
	cards []models.CardSnapshot

	// device names recovered from legacy text
	machineName string
	handlerName string
	proberName  string

	uph      float64
	unitCost float64
}

func (p *parsedConfig) empty() bool {
	return p.testMachine == nil && p.handler == nil && p.prober == nil &&
		len(p.cards) == 0 && p.machineName == "" && p.handlerName == "" &&
		p.proberName == "" && p.uph == 0
}

// parseItem runs the format recognizers in fixed priority order and
// returns the first usable result: JSON configuration, detailed
// "<device> - <card>" item name, structured card_info, then legacy
// "k:v,k:v" text. A nil result means the item carries no recoverable
// configuration at all.
func parseItem(item models.QuoteItem) *parsedConfig {
	if cfg, ok := parseJSONConfiguration(item); ok {
		return cfg
	}
	if cfg, ok := parseDetailedItemName(item); ok {
		return cfg
	}
	if cfg, ok := parseCardInfoField(item); ok {
		return cfg
	}
	if cfg, ok := parseLegacyText(item); ok {
		return cfg
	}
	return nil
}

// parseJSONConfiguration handles the highest-fidelity format: a JSON
// object in the configuration column with a cards array or per-role
// device snapshots.
func parseJSONConfiguration(item models.QuoteItem) (*parsedConfig, bool) {
	raw := strings.TrimSpace(item.Configuration)
	if !strings.HasPrefix(raw, "{") {
		return nil, false
	}
	var cfg models.ItemConfiguration
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, false
	}
	parsed := &parsedConfig{
		deviceType:  cfg.DeviceType,
		testType:    cfg.TestType,
		processType: cfg.ProcessType,
		testMachine: cfg.TestMachine,
		handler:     cfg.Handler,
		prober:      cfg.Prober,
		cards:       cfg.Cards,
		uph:         cfg.UPH,
		unitCost:    cfg.UnitCost,
	}
	if parsed.empty() {
		return nil, false
	}
	return parsed, true
}

// parseDetailedItemName handles items named "<device> - <card>" with
// the card portion comma-joining every selected board, so each name
// becomes its own snapshot. The flat format only preserves the first
// card's part number; it comes from an item_description of the form
// "<board> - <part number>", or a "Part Number:" token inside the
// configuration text.
func parseDetailedItemName(item models.QuoteItem) (*parsedConfig, bool) {
	name, cardPart, ok := strings.Cut(item.ItemName, " - ")
	if !ok || strings.TrimSpace(cardPart) == "" {
		return nil, false
	}
	var cards []models.CardSnapshot
	for _, cardName := range strings.Split(cardPart, ",") {
		if cardName = strings.TrimSpace(cardName); cardName != "" {
			cards = append(cards, models.CardSnapshot{
				BoardName: cardName,
				Quantity:  quantityOf(item),
			})
		}
	}
	if len(cards) == 0 {
		return nil, false
	}
	pn := ""
	if _, rest, found := strings.Cut(item.ItemDescription, " - "); found {
		pn = strings.TrimSpace(rest)
	}
	if pn == "" {
		pn = extractLegacyValue(item.Configuration, "Part Number")
	}
	cards[0].PartNumber = pn
	return &parsedConfig{
		machineName: strings.TrimSpace(name),
		cards:       cards,
	}, true
}

// parseCardInfoField handles items that carry a structured card_info
// object next to the free-form columns.
func parseCardInfoField(item models.QuoteItem) (*parsedConfig, bool) {
	if item.CardInfo == nil {
		return nil, false
	}
	snap := *item.CardInfo
	if snap.Quantity < 1 {
		snap.Quantity = quantityOf(item)
	}
	return &parsedConfig{
		machineName: firstNonEmpty(item.MachineModel, item.ItemName),
		cards:       []models.CardSnapshot{snap},
	}, true
}

// parseLegacyText handles the oldest records: comma-separated
// "key:value" tokens such as "测试机:ETS-88, 探针台:AP3000, UPH:10"
// or "板卡: X, Part Number: Y". Full-width commas and colons appear
// in the wild and are accepted.
func parseLegacyText(item models.QuoteItem) (*parsedConfig, bool) {
	parsed := &parsedConfig{}
	var cards []models.CardSnapshot
	inBoardList := false
	for _, token := range splitLegacyTokens(item.Configuration) {
		key, value, ok := cutAnyColon(token)
		if !ok {
			// The comma split breaks a multi-card "板卡:" list apart;
			// a bare token right after one is another board name.
			if inBoardList && !strings.ContainsAny(token, ":：") {
				cards = append(cards, models.CardSnapshot{BoardName: token})
			}
			continue
		}
		inBoardList = false
		if value == "" {
			continue
		}
		switch key {
		case "测试机", "tester":
			parsed.machineName = value
		case "分选机", "handler":
			parsed.handlerName = value
		case "探针台", "prober":
			parsed.proberName = value
		case "板卡", "board":
			cards = append(cards, models.CardSnapshot{BoardName: value})
			inBoardList = true
		case "Part Number", "part number", "料号":
			cards = attachPartNumber(cards, value)
		case "UPH", "uph":
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				parsed.uph = v
			}
		}
	}
	for i := range cards {
		cards[i].Quantity = quantityOf(item)
	}
	parsed.cards = cards
	if parsed.empty() {
		return nil, false
	}
	return parsed, true
}

// attachPartNumber pairs a "Part Number:" token with the first card
// still missing one. Records interleaving boards and part numbers pair
// up in order; the flat format, which only serializes the first card's
// part number, lands it on the first card.
func attachPartNumber(cards []models.CardSnapshot, pn string) []models.CardSnapshot {
	for i := range cards {
		if cards[i].PartNumber == "" {
			cards[i].PartNumber = pn
			return cards
		}
	}
	return append(cards, models.CardSnapshot{PartNumber: pn})
}

func splitLegacyTokens(text string) []string {
	text = strings.ReplaceAll(text, "，", ",")
	parts := strings.Split(text, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// cutAnyColon splits one "key:value" token on the first half- or
// full-width colon.
func cutAnyColon(token string) (key, value string, ok bool) {
	idx := strings.IndexAny(token, ":：")
	if idx < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(token[:idx])
	rest := token[idx:]
	if strings.HasPrefix(rest, "：") {
		rest = rest[len("："):]
	} else {
		rest = rest[1:]
	}
	return key, strings.TrimSpace(rest), key != ""
}

// extractLegacyValue pulls one key's value out of legacy text without
// parsing the whole token list.
func extractLegacyValue(text, key string) string {
	for _, token := range splitLegacyTokens(text) {
		k, v, ok := cutAnyColon(token)
		if ok && strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

func quantityOf(item models.QuoteItem) int {
	if item.Quantity >= 1 {
		return int(item.Quantity)
	}
	return 1
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// ResolveMachine finds the catalog machine for a persisted identity,
// in priority order: explicit ID, exact name, substring containment
// in either direction. A miss synthesizes a placeholder machine
// (negative ID, stored name, zero prices) so the rest of the quote
// stays editable.
func (r *Reconstructor) ResolveMachine(id int, name string) models.Machine {
	if id > 0 {
		if m := r.catalog.MachineByID(id); m != nil {
			return *m
		}
	}
	name = strings.TrimSpace(name)
	if name != "" {
		for i := range r.catalog.Machines {
			if strings.EqualFold(r.catalog.Machines[i].Name, name) {
				return r.catalog.Machines[i]
			}
		}
		for i := range r.catalog.Machines {
			if fuzzyMatch(r.catalog.Machines[i].Name, name) {
				return r.catalog.Machines[i]
			}
		}
	}
	return models.Machine{
		ID:           r.placeholderID(),
		Name:         name,
		DiscountRate: 1,
	}
}

// ResolveCard finds the catalog card for a persisted snapshot, scoped
// to the already-resolved machine: explicit ID, exact part-number or
// board-name match, then fuzzy containment. The returned selection
// always re-reads the unit price from the catalog; a miss carries the
// stored names with price zero under a placeholder ID.
func (r *Reconstructor) ResolveCard(machineID int, snap models.CardSnapshot) SelectedCard {
	qty := snap.Quantity
	if qty < 1 {
		qty = 1
	}
	if snap.ID > 0 {
		if card := r.catalog.CardByID(snap.ID); card != nil {
			return SelectedCard{Card: *card, Quantity: qty}
		}
	}
	scoped := r.catalog.CardsForMachine(machineID)
	for _, card := range scoped {
		if (snap.PartNumber != "" && strings.EqualFold(card.PartNumber, snap.PartNumber)) ||
			(snap.BoardName != "" && strings.EqualFold(card.BoardName, snap.BoardName)) {
			return SelectedCard{Card: card, Quantity: qty}
		}
	}
	for _, card := range scoped {
		if (snap.PartNumber != "" && fuzzyMatch(card.PartNumber, snap.PartNumber)) ||
			(snap.BoardName != "" && fuzzyMatch(card.BoardName, snap.BoardName)) {
			return SelectedCard{Card: card, Quantity: qty}
		}
	}
	return SelectedCard{
		Card: models.CardConfig{
			ID:         r.placeholderID(),
			MachineID:  machineID,
			PartNumber: snap.PartNumber,
			BoardName:  snap.BoardName,
			UnitPrice:  0,
		},
		Quantity: qty,
	}
}

// fuzzyMatch reports substring containment in either direction,
// case-insensitively. It is the last resolution tier before a
// placeholder.
func fuzzyMatch(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// SelectionFromSnapshot resolves one device snapshot and all its
// cards into a selection priced from the current catalog.
func (r *Reconstructor) SelectionFromSnapshot(snap *models.DeviceSnapshot) *DeviceSelection {
	if snap == nil {
		return nil
	}
	machine := r.ResolveMachine(snap.ID, snap.Name)
	sel := &DeviceSelection{Machine: machine}
	for _, cs := range snap.Cards {
		sel.Cards = append(sel.Cards, r.ResolveCard(machine.ID, cs))
	}
	return sel
}

// SelectionFromItem resolves one quote item into a device selection
// using whatever the recognizers recovered plus the item's own
// machine columns.
func (r *Reconstructor) SelectionFromItem(item models.QuoteItem, parsed *parsedConfig) *DeviceSelection {
	name := item.MachineModel
	if parsed != nil && parsed.machineName != "" {
		name = parsed.machineName
	}
	if name == "" {
		name = item.ItemName
	}
	machine := r.ResolveMachine(item.MachineID, name)
	sel := &DeviceSelection{Machine: machine}
	if parsed != nil {
		for _, cs := range parsed.cards {
			sel.Cards = append(sel.Cards, r.ResolveCard(machine.ID, cs))
		}
	}
	return sel
}

// Device roles a line item can belong to. Order matters: the first
// keyword hit claims the item.
const (
	RoleTestMachine = "test_machine"
	RoleHandler     = "handler"
	RoleProber      = "prober"
	RoleAux         = "aux"
)

var roleKeywords = []struct {
	role     string
	keywords []string
}{
	{RoleTestMachine, []string{"测试机", "tester", "test machine"}},
	{RoleHandler, []string{"分选机", "handler"}},
	{RoleProber, []string{"探针台", "prober"}},
	{RoleAux, []string{"辅助设备", "auxiliary", "aux"}},
}

// ClassifyItemRole buckets one line item by device role, checking
// machine_type, then item_name, then item_description against the
// role keywords in fixed priority order. Every item lands in exactly
// one bucket; anything unrecognized counts as a test machine.
func ClassifyItemRole(item models.QuoteItem) string {
	for _, field := range []string{item.MachineType, item.ItemName, item.ItemDescription} {
		lower := strings.ToLower(field)
		for _, rk := range roleKeywords {
			for _, kw := range rk.keywords {
				if strings.Contains(lower, strings.ToLower(kw)) {
					return rk.role
				}
			}
		}
	}
	return RoleTestMachine
}
