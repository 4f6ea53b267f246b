package enums

import "fmt"

// ConversationStep tracks where a user is in the ordering dialogue.
type ConversationStep string

const (
	StepCategory    ConversationStep = "category"
	StepDrink       ConversationStep = "drink"
	StepSize        ConversationStep = "size"
	StepMilk        ConversationStep = "milk"
	StepTemperature ConversationStep = "temperature"
	StepAddOns      ConversationStep = "add_ons"
	StepQuantity    ConversationStep = "quantity"
	StepConfirm     ConversationStep = "confirm"
)

var validConversationSteps = []ConversationStep{
	StepCategory,
	StepDrink,
	StepSize,
	StepMilk,
	StepTemperature,
	StepAddOns,
	StepQuantity,
	StepConfirm,
}

// String implements fmt.Stringer.
func (s ConversationStep) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ConversationStep.
func (s ConversationStep) IsValid() bool {
	for _, candidate := range validConversationSteps {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseConversationStep converts raw input into a ConversationStep.
func ParseConversationStep(value string) (ConversationStep, error) {
	for _, candidate := range validConversationSteps {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid conversation step %q", value)
}
