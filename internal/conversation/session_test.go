package conversation

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewDraftSeedsFirstOptions(t *testing.T) {
	t.Parallel()

	draft := NewDraft(fullProduct())
	if draft.Size != "small" {
		t.Fatalf("expected first size option, got %q", draft.Size)
	}
	if draft.Milk != "whole" {
		t.Fatalf("expected first milk option, got %q", draft.Milk)
	}
	if draft.Temperature != "hot" {
		t.Fatalf("expected first temperature option, got %q", draft.Temperature)
	}
	if draft.Quantity != 1 {
		t.Fatalf("expected quantity 1, got %d", draft.Quantity)
	}
}

func TestNewDraftMarksMissingAxesNone(t *testing.T) {
	t.Parallel()

	draft := NewDraft(bareProduct())
	if draft.Size != OptionNone || draft.Milk != OptionNone || draft.Temperature != OptionNone {
		t.Fatalf("expected all axes %q, got size=%q milk=%q temp=%q",
			OptionNone, draft.Size, draft.Milk, draft.Temperature)
	}
}

func TestAddOnToggleIsIdempotentPair(t *testing.T) {
	t.Parallel()

	set := NewAddOnSet()
	if !set.Toggle("Extra Shot") {
		t.Fatal("first toggle should select")
	}
	if !set.Has("Extra Shot") {
		t.Fatal("expected membership after first toggle")
	}
	if set.Toggle("Extra Shot") {
		t.Fatal("second toggle should deselect")
	}
	if set.Len() != 0 {
		t.Fatalf("expected empty set after double toggle, got %d", set.Len())
	}
}

func TestAddOnSetJSONRoundTrip(t *testing.T) {
	t.Parallel()

	set := NewAddOnSet()
	set.Toggle("Whipped Cream")
	set.Toggle("Extra Shot")

	raw, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(raw) != `["Extra Shot","Whipped Cream"]` {
		t.Fatalf("expected sorted array, got %s", raw)
	}

	var restored AddOnSet
	if err := json.Unmarshal(raw, &restored); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(set.Names(), restored.Names()) {
		t.Fatalf("round trip mismatch: %v vs %v", set.Names(), restored.Names())
	}
}

func TestDraftSubtotalIncludesAddOns(t *testing.T) {
	t.Parallel()

	draft := NewDraft(fullProduct())
	draft.AddOns.Toggle("Extra Shot")
	draft.Quantity = 2

	if got := draft.UnitPrice(fullProduct()); !got.Equal(decimal.NewFromInt(140)) {
		t.Fatalf("expected unit price 140, got %s", got)
	}
	if got := draft.Subtotal(fullProduct()); !got.Equal(decimal.NewFromInt(280)) {
		t.Fatalf("expected subtotal 280, got %s", got)
	}
}

func TestSessionResetDropsDraft(t *testing.T) {
	t.Parallel()

	session := NewSession()
	session.Draft = NewDraft(fullProduct())
	session.Step = NextStepAfter(session.Step, fullProduct())

	session.Reset()
	if session.Draft != nil {
		t.Fatal("expected draft dropped on reset")
	}
	if session.Step.String() != "category" {
		t.Fatalf("expected category step after reset, got %s", session.Step)
	}
}
