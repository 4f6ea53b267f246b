package conversation

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/angelmondragon/brewbot-backend/internal/catalog"
	"github.com/angelmondragon/brewbot-backend/pkg/enums"
	"github.com/angelmondragon/brewbot-backend/pkg/types"
)

// Payload vocabulary recognized by the dialogue router. Values embedded after
// a prefix are query-escaped so names with spaces survive the round trip.
const (
	PayloadCategoryPrefix = "CATEGORY_"
	PayloadDrinkPrefix    = "DRINK_"
	PayloadSizePrefix     = "SIZE_"
	PayloadMilkPrefix     = "MILK_"
	PayloadTempPrefix     = "TEMP_"
	PayloadAddOnPrefix    = "ADDON_"
	PayloadQtyPrefix      = "QTY_"

	PayloadAddOnSkip  = "ADDON_SKIP"
	PayloadQtyEdit    = "QTY_EDIT"
	PayloadConfirmAdd = "CONFIRM_ADD"
	PayloadMore       = "MORE"
	PayloadViewCart   = "VIEW_CART"
	PayloadCheckout   = "CHECKOUT"
	PayloadClearCart  = "CLEAR_CART"
)

// Choice is one selectable option rendered to the user.
type Choice struct {
	Title   string
	Payload string
}

// Prompt is a question plus its selectable options.
type Prompt struct {
	Text    string
	Choices []Choice
}

func encodePayload(prefix, value string) string {
	return prefix + url.QueryEscape(value)
}

func decodePayload(prefix, payload string) string {
	raw := strings.TrimPrefix(payload, prefix)
	if decoded, err := url.QueryUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

// CategoryPrompt renders the top-level menu.
func CategoryPrompt(cat catalog.Catalog) Prompt {
	prompt := Prompt{Text: "What would you like to order?"}
	for _, c := range cat.ListCategories() {
		prompt.Choices = append(prompt.Choices, Choice{
			Title:   c.Title,
			Payload: encodePayload(PayloadCategoryPrefix, c.Base),
		})
	}
	return prompt
}

// ProductListPrompt renders the drinks available under a category.
func ProductListPrompt(products []catalog.Product) Prompt {
	prompt := Prompt{Text: "Pick a drink:"}
	for _, p := range products {
		prompt.Choices = append(prompt.Choices, Choice{
			Title:   fmt.Sprintf("%s %s", p.Name, types.FormatMoney(p.Price)),
			Payload: encodePayload(PayloadDrinkPrefix, p.Name),
		})
	}
	return prompt
}

// AskNextStep renders the question for the given step against the current
// draft. Selecting an add-on re-renders the same step; an empty add-on list
// falls straight through to the quantity chooser.
func AskNextStep(p *catalog.Product, step enums.ConversationStep, draft *DraftItem) Prompt {
	switch step {
	case enums.StepSize:
		return axisPrompt("What size?", PayloadSizePrefix, p.SizeOptions)
	case enums.StepMilk:
		return axisPrompt("Which milk?", PayloadMilkPrefix, p.MilkOptions)
	case enums.StepTemperature:
		return axisPrompt("Hot or iced?", PayloadTempPrefix, p.TemperatureOptions)
	case enums.StepAddOns:
		if len(p.AddOns) == 0 {
			return AskNextStep(p, enums.StepQuantity, draft)
		}
		return addOnPrompt(p, draft)
	case enums.StepQuantity:
		return quantityPrompt()
	default:
		return confirmPrompt(p, draft)
	}
}

func axisPrompt(question, prefix string, options []string) Prompt {
	prompt := Prompt{Text: question}
	for _, option := range options {
		prompt.Choices = append(prompt.Choices, Choice{
			Title:   option,
			Payload: encodePayload(prefix, option),
		})
	}
	return prompt
}

func addOnPrompt(p *catalog.Product, draft *DraftItem) Prompt {
	prompt := Prompt{Text: "Any add-ons? Tap to toggle."}
	for _, addOn := range p.AddOns {
		marker := "◻"
		if draft != nil && draft.AddOns.Has(addOn.Name) {
			marker = "✓"
		}
		prompt.Choices = append(prompt.Choices, Choice{
			Title:   fmt.Sprintf("%s %s", marker, addOn.Name),
			Payload: encodePayload(PayloadAddOnPrefix, addOn.Name),
		})
	}
	prompt.Choices = append(prompt.Choices, Choice{Title: "Next", Payload: PayloadAddOnSkip})
	return prompt
}

func quantityPrompt() Prompt {
	prompt := Prompt{Text: "How many?"}
	for qty := 1; qty <= 5; qty++ {
		prompt.Choices = append(prompt.Choices, Choice{
			Title:   fmt.Sprintf("%d", qty),
			Payload: fmt.Sprintf("%s%d", PayloadQtyPrefix, qty),
		})
	}
	return prompt
}

func confirmPrompt(p *catalog.Product, draft *DraftItem) Prompt {
	var summary strings.Builder
	fmt.Fprintf(&summary, "Here's your order:\n%d× %s", draft.Quantity, draft.Drink)

	var details []string
	if draft.Size != OptionNone && draft.Size != "" {
		details = append(details, draft.Size)
	}
	if draft.Milk != OptionNone && draft.Milk != "" {
		details = append(details, draft.Milk+" milk")
	}
	if draft.Temperature != OptionNone && draft.Temperature != "" {
		details = append(details, draft.Temperature)
	}
	if len(details) > 0 {
		fmt.Fprintf(&summary, " (%s)", strings.Join(details, ", "))
	}
	if draft.AddOns.Len() > 0 {
		fmt.Fprintf(&summary, "\nAdd-ons: %s", strings.Join(draft.AddOns.Names(), ", "))
	}
	fmt.Fprintf(&summary, "\nSubtotal: %s", types.FormatMoney(draft.Subtotal(p)))

	return Prompt{
		Text: summary.String(),
		Choices: []Choice{
			{Title: "Add to cart", Payload: PayloadConfirmAdd},
			{Title: "Change qty", Payload: PayloadQtyEdit},
			{Title: "Cancel", Payload: PayloadMore},
		},
	}
}
