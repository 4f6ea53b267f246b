package conversation

import (
	"encoding/json"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/brewbot-backend/internal/catalog"
	"github.com/angelmondragon/brewbot-backend/pkg/enums"
)

// OptionNone marks an axis the product does not configure.
const OptionNone = "none"

// AddOnSet holds the add-ons chosen on a draft. Membership is keyed by add-on
// name; toggling twice restores the original set.
type AddOnSet map[string]struct{}

func NewAddOnSet() AddOnSet {
	return make(AddOnSet)
}

// Toggle flips membership and reports whether the add-on is selected afterwards.
func (s AddOnSet) Toggle(name string) bool {
	if _, ok := s[name]; ok {
		delete(s, name)
		return false
	}
	s[name] = struct{}{}
	return true
}

func (s AddOnSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

func (s AddOnSet) Len() int {
	return len(s)
}

// Names returns the selected add-on names in a stable order.
func (s AddOnSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MarshalJSON persists the set as a sorted array.
func (s AddOnSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Names())
}

func (s *AddOnSet) UnmarshalJSON(raw []byte) error {
	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return err
	}
	set := make(AddOnSet, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	*s = set
	return nil
}

// DraftItem is the order line currently being assembled for one user.
type DraftItem struct {
	Base        string   `json:"base"`
	Drink       string   `json:"drink,omitempty"`
	Size        string   `json:"size,omitempty"`
	Milk        string   `json:"milk,omitempty"`
	Temperature string   `json:"temperature,omitempty"`
	AddOns      AddOnSet `json:"add_ons"`
	Quantity    int      `json:"quantity"`
}

// NewDraft seeds a draft from a freshly chosen product: every axis starts at
// the product's first option, or "none" when the product does not carry it.
func NewDraft(p *catalog.Product) *DraftItem {
	return &DraftItem{
		Base:        p.Base,
		Drink:       p.Name,
		Size:        firstOption(p.SizeOptions),
		Milk:        firstOption(p.MilkOptions),
		Temperature: firstOption(p.TemperatureOptions),
		AddOns:      NewAddOnSet(),
		Quantity:    1,
	}
}

func firstOption(options []string) string {
	if len(options) == 0 {
		return OptionNone
	}
	return options[0]
}

// UnitPrice is the product base price plus every selected add-on.
func (d *DraftItem) UnitPrice(p *catalog.Product) decimal.Decimal {
	unit := p.Price
	for name := range d.AddOns {
		if price, ok := p.AddOnPrice(name); ok {
			unit = unit.Add(price)
		}
	}
	return unit
}

// Subtotal is the unit price multiplied by the draft quantity.
func (d *DraftItem) Subtotal(p *catalog.Product) decimal.Decimal {
	qty := d.Quantity
	if qty < 1 {
		qty = 1
	}
	return d.UnitPrice(p).Mul(decimal.NewFromInt(int64(qty)))
}

// Session is the per-user conversational state. Draft is nil only on the
// category step.
type Session struct {
	Step  enums.ConversationStep `json:"step"`
	Draft *DraftItem             `json:"draft,omitempty"`
}

func NewSession() *Session {
	return &Session{Step: enums.StepCategory}
}

// Reset discards the draft and returns the conversation to the category step.
func (s *Session) Reset() {
	s.Step = enums.StepCategory
	s.Draft = nil
}
