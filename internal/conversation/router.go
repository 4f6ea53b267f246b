package conversation

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/angelmondragon/brewbot-backend/internal/cart"
	"github.com/angelmondragon/brewbot-backend/internal/catalog"
	"github.com/angelmondragon/brewbot-backend/internal/orders"
	"github.com/angelmondragon/brewbot-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/brewbot-backend/pkg/errors"
	"github.com/angelmondragon/brewbot-backend/pkg/logger"
	"github.com/angelmondragon/brewbot-backend/pkg/types"
)

// Event is one inbound messaging event, already lifted out of the webhook
// envelope.
type Event struct {
	SenderID          string
	MessageID         string
	Text              string
	QuickReplyPayload string
	PostbackPayload   string
}

// Notifier delivers outbound messages. Delivery failures never roll back
// conversation state; the router logs them and moves on.
type Notifier interface {
	SendText(ctx context.Context, userID, text string) error
	SendChoices(ctx context.Context, userID, text string, choices []Choice) error
	SendImage(ctx context.Context, userID, imageURL string) error
}

// CartService is the slice of the cart aggregator the router needs.
type CartService interface {
	Commit(ctx context.Context, userID string, product *catalog.Product, draft cart.Draft) (cart.Item, error)
	Items(ctx context.Context, userID string) ([]cart.Item, error)
	Clear(ctx context.Context, userID string) error
}

// CheckoutService converts carts into orders.
type CheckoutService interface {
	Checkout(ctx context.Context, userID string) (*orders.Outcome, error)
}

// Router classifies inbound events and drives the ordering dialogue.
type Router struct {
	catalog         catalog.Catalog
	sessions        SessionStore
	carts           CartService
	checkout        CheckoutService
	notifier        Notifier
	logg            *logger.Logger
	welcomeImageURL string
}

// RouterParams carries the router's dependencies.
type RouterParams struct {
	Catalog         catalog.Catalog
	Sessions        SessionStore
	Carts           CartService
	Checkout        CheckoutService
	Notifier        Notifier
	Logger          *logger.Logger
	WelcomeImageURL string
}

// NewRouter builds the dialogue router.
func NewRouter(params RouterParams) (*Router, error) {
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session store required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if params.Checkout == nil {
		return nil, fmt.Errorf("checkout service required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	return &Router{
		catalog:         params.Catalog,
		sessions:        params.Sessions,
		carts:           params.Carts,
		checkout:        params.Checkout,
		notifier:        params.Notifier,
		logg:            params.Logger,
		welcomeImageURL: params.WelcomeImageURL,
	}, nil
}

// HandleEvent processes a single inbound event. Text classification wins when
// both text and a payload are present.
func (r *Router) HandleEvent(ctx context.Context, event Event) error {
	userID := strings.TrimSpace(event.SenderID)
	if userID == "" {
		return nil
	}
	if r.logg != nil {
		ctx = r.logg.WithUserID(ctx, userID)
	}

	session, err := r.sessions.Get(ctx, userID)
	if err != nil {
		return err
	}
	if session == nil {
		session = NewSession()
	}

	if text := strings.TrimSpace(event.Text); text != "" {
		return r.handleText(ctx, userID, session, text)
	}

	payload := event.QuickReplyPayload
	if payload == "" {
		payload = event.PostbackPayload
	}
	if payload != "" {
		if r.logg != nil {
			ctx = r.logg.WithPayload(ctx, payload)
		}
		return r.handlePayload(ctx, userID, session, payload)
	}
	return nil
}

func (r *Router) handleText(ctx context.Context, userID string, session *Session, text string) error {
	switch strings.ToLower(text) {
	case "menu", "order":
		return r.showMenu(ctx, userID, session, true)
	case "cart":
		return r.renderCart(ctx, userID)
	case "clear":
		if err := r.carts.Clear(ctx, userID); err != nil {
			r.notifyText(ctx, userID, "Sorry, something went wrong clearing your cart. Please try again.")
			return err
		}
		r.notifyChoices(ctx, userID, "Your cart is cleared.", []Choice{{Title: "Menu", Payload: PayloadMore}})
		return nil
	case "checkout":
		return r.doCheckout(ctx, userID, session)
	default:
		r.notifyText(ctx, userID, `Hi! Type "menu" to start an order, "cart" to see your cart, or "checkout" when you're ready.`)
		return nil
	}
}

func (r *Router) handlePayload(ctx context.Context, userID string, session *Session, payload string) error {
	switch payload {
	case PayloadAddOnSkip:
		return r.handleAddOnSkip(ctx, userID, session)
	case PayloadQtyEdit:
		return r.handleQtyEdit(ctx, userID, session)
	case PayloadConfirmAdd:
		return r.handleConfirmAdd(ctx, userID, session)
	case PayloadMore:
		return r.showMenu(ctx, userID, session, false)
	case PayloadViewCart:
		return r.renderCart(ctx, userID)
	case PayloadCheckout:
		return r.doCheckout(ctx, userID, session)
	case PayloadClearCart:
		if err := r.carts.Clear(ctx, userID); err != nil {
			r.notifyText(ctx, userID, "Sorry, something went wrong clearing your cart. Please try again.")
			return err
		}
		r.notifyChoices(ctx, userID, "Your cart is cleared. Want something else?", []Choice{{Title: "Menu", Payload: PayloadMore}})
		return nil
	}

	switch {
	case strings.HasPrefix(payload, PayloadCategoryPrefix):
		return r.handleCategory(ctx, userID, session, decodePayload(PayloadCategoryPrefix, payload))
	case strings.HasPrefix(payload, PayloadDrinkPrefix):
		return r.handleDrink(ctx, userID, session, decodePayload(PayloadDrinkPrefix, payload))
	case strings.HasPrefix(payload, PayloadSizePrefix):
		return r.handleAxis(ctx, userID, session, enums.StepSize, decodePayload(PayloadSizePrefix, payload))
	case strings.HasPrefix(payload, PayloadMilkPrefix):
		return r.handleAxis(ctx, userID, session, enums.StepMilk, decodePayload(PayloadMilkPrefix, payload))
	case strings.HasPrefix(payload, PayloadTempPrefix):
		return r.handleAxis(ctx, userID, session, enums.StepTemperature, decodePayload(PayloadTempPrefix, payload))
	case strings.HasPrefix(payload, PayloadAddOnPrefix):
		return r.handleAddOnToggle(ctx, userID, session, decodePayload(PayloadAddOnPrefix, payload))
	case strings.HasPrefix(payload, PayloadQtyPrefix):
		return r.handleQty(ctx, userID, session, strings.TrimPrefix(payload, PayloadQtyPrefix))
	default:
		r.notifyText(ctx, userID, `Sorry, I didn't catch that. Type "menu" to start over.`)
		return nil
	}
}

func (r *Router) showMenu(ctx context.Context, userID string, session *Session, withWelcome bool) error {
	session.Reset()
	if err := r.sessions.Save(ctx, userID, session); err != nil {
		return err
	}
	if withWelcome && r.welcomeImageURL != "" {
		if err := r.notifier.SendImage(ctx, userID, r.welcomeImageURL); err != nil && r.logg != nil {
			r.logg.Warn(ctx, "welcome image send failed")
		}
	}
	r.notifyPrompt(ctx, userID, CategoryPrompt(r.catalog))
	return nil
}

func (r *Router) handleCategory(ctx context.Context, userID string, session *Session, base string) error {
	products := r.catalog.ListProducts(base)
	if len(products) == 0 {
		r.notifyText(ctx, userID, `Sorry, that category isn't on the menu right now. Type "menu" to browse again.`)
		return nil
	}

	session.Step = enums.StepDrink
	session.Draft = &DraftItem{Base: base, AddOns: NewAddOnSet(), Quantity: 1}
	if err := r.sessions.Save(ctx, userID, session); err != nil {
		return err
	}
	r.notifyPrompt(ctx, userID, ProductListPrompt(products))
	return nil
}

func (r *Router) handleDrink(ctx context.Context, userID string, session *Session, name string) error {
	product, ok := r.catalog.FindProduct(name)
	if !ok {
		r.notifyText(ctx, userID, `Sorry, that drink isn't available. Type "menu" to browse again.`)
		return nil
	}

	draft := NewDraft(product)
	next := NextStepAfter(enums.StepDrink, product)
	session.Step = next
	session.Draft = draft
	if err := r.sessions.Save(ctx, userID, session); err != nil {
		return err
	}
	r.notifyPrompt(ctx, userID, AskNextStep(product, next, draft))
	return nil
}

func (r *Router) handleAxis(ctx context.Context, userID string, session *Session, axis enums.ConversationStep, value string) error {
	product, draft, ok := r.resolveDraftProduct(session)
	if !ok {
		return r.sessionExpired(ctx, userID, session)
	}

	switch axis {
	case enums.StepSize:
		draft.Size = value
	case enums.StepMilk:
		draft.Milk = value
	case enums.StepTemperature:
		draft.Temperature = value
	}

	next := NextStepAfter(axis, product)
	session.Step = next
	if err := r.sessions.Save(ctx, userID, session); err != nil {
		return err
	}
	r.notifyPrompt(ctx, userID, AskNextStep(product, next, draft))
	return nil
}

func (r *Router) handleAddOnToggle(ctx context.Context, userID string, session *Session, name string) error {
	product, draft, ok := r.resolveDraftProduct(session)
	if !ok {
		return r.sessionExpired(ctx, userID, session)
	}
	if _, known := product.AddOnPrice(name); !known {
		r.notifyText(ctx, userID, `Sorry, that add-on isn't available for this drink.`)
		return nil
	}

	draft.AddOns.Toggle(name)
	session.Step = enums.StepAddOns
	if err := r.sessions.Save(ctx, userID, session); err != nil {
		return err
	}
	r.notifyPrompt(ctx, userID, AskNextStep(product, enums.StepAddOns, draft))
	return nil
}

func (r *Router) handleAddOnSkip(ctx context.Context, userID string, session *Session) error {
	product, draft, ok := r.resolveDraftProduct(session)
	if !ok {
		return r.sessionExpired(ctx, userID, session)
	}

	next := NextStepAfter(enums.StepAddOns, product)
	session.Step = next
	if err := r.sessions.Save(ctx, userID, session); err != nil {
		return err
	}
	r.notifyPrompt(ctx, userID, AskNextStep(product, next, draft))
	return nil
}

func (r *Router) handleQtyEdit(ctx context.Context, userID string, session *Session) error {
	product, draft, ok := r.resolveDraftProduct(session)
	if !ok {
		return r.sessionExpired(ctx, userID, session)
	}

	session.Step = enums.StepQuantity
	if err := r.sessions.Save(ctx, userID, session); err != nil {
		return err
	}
	r.notifyPrompt(ctx, userID, AskNextStep(product, enums.StepQuantity, draft))
	return nil
}

func (r *Router) handleQty(ctx context.Context, userID string, session *Session, raw string) error {
	product, draft, ok := r.resolveDraftProduct(session)
	if !ok {
		return r.sessionExpired(ctx, userID, session)
	}

	qty, err := strconv.Atoi(raw)
	if err != nil || qty < 1 {
		qty = 1
	}
	draft.Quantity = qty
	session.Step = enums.StepConfirm
	if err := r.sessions.Save(ctx, userID, session); err != nil {
		return err
	}
	r.notifyPrompt(ctx, userID, AskNextStep(product, enums.StepConfirm, draft))
	return nil
}

func (r *Router) handleConfirmAdd(ctx context.Context, userID string, session *Session) error {
	product, draft, ok := r.resolveDraftProduct(session)
	if !ok {
		return r.sessionExpired(ctx, userID, session)
	}

	item, err := r.carts.Commit(ctx, userID, product, cart.Draft{
		Drink:       draft.Drink,
		Base:        draft.Base,
		Size:        draft.Size,
		Milk:        draft.Milk,
		Temperature: draft.Temperature,
		AddOns:      draft.AddOns.Names(),
		Quantity:    draft.Quantity,
	})
	if err != nil {
		r.notifyText(ctx, userID, `Sorry, I couldn't add that to your cart. Type "menu" to try again.`)
		return err
	}

	session.Reset()
	if err := r.sessions.Save(ctx, userID, session); err != nil {
		return err
	}

	r.notifyChoices(ctx, userID,
		fmt.Sprintf("Added %d× %s to your cart (%s).", item.Quantity, item.Drink, types.FormatMoney(item.Subtotal)),
		[]Choice{
			{Title: "Add more", Payload: PayloadMore},
			{Title: "View cart", Payload: PayloadViewCart},
			{Title: "Checkout", Payload: PayloadCheckout},
		})
	return nil
}

func (r *Router) renderCart(ctx context.Context, userID string) error {
	items, err := r.carts.Items(ctx, userID)
	if err != nil {
		r.notifyText(ctx, userID, "Sorry, I couldn't load your cart. Please try again.")
		return err
	}
	if len(items) == 0 {
		r.notifyText(ctx, userID, `Your cart is empty. Type "menu" to start an order.`)
		return nil
	}

	var b strings.Builder
	b.WriteString("Your cart:\n")
	for _, item := range items {
		fmt.Fprintf(&b, "%d× %s", item.Quantity, item.Drink)
		var details []string
		if item.Size != OptionNone && item.Size != "" {
			details = append(details, item.Size)
		}
		if item.Milk != OptionNone && item.Milk != "" {
			details = append(details, item.Milk)
		}
		if len(details) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(details, ", "))
		}
		if len(item.AddOns) > 0 {
			fmt.Fprintf(&b, " +%s", strings.Join(item.AddOns, ", +"))
		}
		fmt.Fprintf(&b, " — %s\n", types.FormatMoney(item.Subtotal))
	}
	fmt.Fprintf(&b, "Total: %s", types.FormatMoney(cart.Total(items)))

	r.notifyChoices(ctx, userID, b.String(), []Choice{
		{Title: "Checkout", Payload: PayloadCheckout},
		{Title: "Add more", Payload: PayloadMore},
		{Title: "Clear cart", Payload: PayloadClearCart},
	})
	return nil
}

func (r *Router) doCheckout(ctx context.Context, userID string, session *Session) error {
	outcome, err := r.checkout.Checkout(ctx, userID)
	if outcome == nil {
		r.notifyText(ctx, userID, "Sorry, checkout didn't go through. Please try again in a moment.")
		return err
	}
	if outcome.Empty {
		r.notifyText(ctx, userID, `Your cart is empty — nothing to check out. Type "menu" to browse.`)
		return nil
	}
	if err != nil && r.logg != nil {
		// The order exists; only the trailing cart clear failed.
		r.logg.Error(ctx, "post-checkout cart clear failed", err)
	}

	session.Reset()
	if saveErr := r.sessions.Save(ctx, userID, session); saveErr != nil {
		return saveErr
	}

	r.notifyText(ctx, userID, fmt.Sprintf(
		"Order placed! %d item(s), total %s. We'll get started on it right away.",
		outcome.ItemCount, types.FormatMoney(outcome.GrandTotal)))
	return nil
}

func (r *Router) resolveDraftProduct(session *Session) (*catalog.Product, *DraftItem, bool) {
	if session == nil || session.Draft == nil || session.Draft.Drink == "" {
		return nil, nil, false
	}
	product, ok := r.catalog.FindProduct(session.Draft.Drink)
	if !ok {
		return nil, nil, false
	}
	if session.Draft.AddOns == nil {
		session.Draft.AddOns = NewAddOnSet()
	}
	return product, session.Draft, true
}

func (r *Router) sessionExpired(ctx context.Context, userID string, session *Session) error {
	session.Reset()
	if err := r.sessions.Save(ctx, userID, session); err != nil {
		return err
	}
	r.notifyText(ctx, userID, `Looks like your session expired. Type "menu" to start over.`)
	return nil
}

func (r *Router) notifyText(ctx context.Context, userID, text string) {
	if err := r.notifier.SendText(ctx, userID, text); err != nil && r.logg != nil {
		r.logg.Error(ctx, "send text failed", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "notify"))
	}
}

func (r *Router) notifyChoices(ctx context.Context, userID, text string, choices []Choice) {
	if err := r.notifier.SendChoices(ctx, userID, text, choices); err != nil && r.logg != nil {
		r.logg.Error(ctx, "send choices failed", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "notify"))
	}
}

func (r *Router) notifyPrompt(ctx context.Context, userID string, prompt Prompt) {
	r.notifyChoices(ctx, userID, prompt.Text, prompt.Choices)
}
