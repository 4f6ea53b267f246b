package conversation

import (
	"github.com/angelmondragon/brewbot-backend/internal/catalog"
	"github.com/angelmondragon/brewbot-backend/pkg/enums"
)

// optionAxes is the fixed ordering of configurable axes. Each entry is kept in
// the chain only when the product defines at least one option for it; quantity
// and confirm always close the chain.
var optionAxes = []struct {
	step    enums.ConversationStep
	applies func(*catalog.Product) bool
}{
	{enums.StepSize, func(p *catalog.Product) bool { return len(p.SizeOptions) > 0 }},
	{enums.StepMilk, func(p *catalog.Product) bool { return len(p.MilkOptions) > 0 }},
	{enums.StepTemperature, func(p *catalog.Product) bool { return len(p.TemperatureOptions) > 0 }},
	{enums.StepAddOns, func(p *catalog.Product) bool { return len(p.AddOns) > 0 }},
}

func stepChain(p *catalog.Product) []enums.ConversationStep {
	chain := make([]enums.ConversationStep, 0, len(optionAxes)+2)
	for _, axis := range optionAxes {
		if axis.applies(p) {
			chain = append(chain, axis.step)
		}
	}
	return append(chain, enums.StepQuantity, enums.StepConfirm)
}

// NextStepAfter decides which question follows the axis the user just
// answered. It is pure: the chain is re-derived from the product on every
// call, never stored.
func NextStepAfter(current enums.ConversationStep, p *catalog.Product) enums.ConversationStep {
	chain := stepChain(p)

	if current == enums.StepDrink {
		return chain[0]
	}

	for i, step := range chain {
		if step != current {
			continue
		}
		if i+1 < len(chain) {
			return chain[i+1]
		}
		break
	}
	return enums.StepConfirm
}
