package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	cartdomain "github.com/fjod/go_shop/internal/cart/domain"
	"github.com/fjod/go_shop/internal/cart/store"
	"github.com/fjod/go_shop/internal/checkout/domain"
	"github.com/fjod/go_shop/internal/checkout/gateway"
	"github.com/fjod/go_shop/internal/orders"
	"github.com/fjod/go_shop/internal/publisher"
	"github.com/fjod/go_shop/internal/validation"
	"github.com/google/uuid"
)

// PaymentGateway executes one payment attempt for the chosen variant.
type PaymentGateway interface {
	Submit(ctx context.Context, charge gateway.Charge) error
}

// Controller owns one checkout session and drives it through
// ShippingEntry -> PaymentMethodSelection -> PaymentExecution -> Completed.
// All session state lives behind the lock; asynchronous work (the gateway
// call, the completion delay) runs on contexts derived from the session
// context and dies with it on teardown.
type Controller struct {
	mu sync.Mutex

	id       string
	ownerID  string
	state    domain.State
	shipping *domain.ShippingInfo
	payment  domain.PaymentInfo

	feedback    domain.Feedback
	feedbackMsg string
	orderID     string
	inFlight    bool

	cart     *store.Store
	gateway  PaymentGateway
	orders   orders.Repository
	notifier publisher.Notifier

	completionDelay time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	// subCancel aborts the in-flight submission when the user navigates
	// away from payment execution before it resolves.
	subCancel context.CancelFunc
	// onTerminal, when set, is invoked once the session completes so the
	// owning registry can schedule its eviction.
	onTerminal func()
}

func NewController(ownerID string, cart *store.Store, pg PaymentGateway,
	repo orders.Repository, notifier publisher.Notifier, completionDelay time.Duration) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		id:              uuid.NewString(),
		ownerID:         ownerID,
		state:           domain.StateShippingEntry,
		cart:            cart,
		gateway:         pg,
		orders:          repo,
		notifier:        notifier,
		completionDelay: completionDelay,
		ctx:             ctx,
		cancel:          cancel,
	}
}

func (c *Controller) ID() string {
	return c.id
}

// SubmitShipping validates the form and advances to method selection. On
// validation failure the session stays in ShippingEntry and the field
// errors are returned; nothing downstream is touched.
func (c *Controller) SubmitShipping(info domain.ShippingInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != domain.StateShippingEntry {
		return ErrIllegalTransition
	}

	normalized, errs := validateShipping(info)
	if errs != nil {
		return errs
	}

	c.shipping = &normalized
	c.state = domain.StatePaymentMethodSelection
	return nil
}

// SelectMethod records the variant and enters payment execution. Selecting
// a different method while already executing resets the method-specific
// sub-state but never discards shipping data.
func (c *Controller) SelectMethod(method domain.Method) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.feedback == domain.FeedbackProcessing || c.feedback == domain.FeedbackSuccess {
		return ErrSubmissionInFlight
	}
	if !domain.CanTransitionTo(c.state, domain.StatePaymentExecution) {
		return ErrIllegalTransition
	}

	c.abortSubmissionLocked()
	c.payment = domain.PaymentInfo{Method: method}
	c.feedback = domain.FeedbackNone
	c.feedbackMsg = ""
	c.state = domain.StatePaymentExecution
	return nil
}

// SubmitPayment starts one asynchronous payment attempt. While a submission
// is processing the call is a no-op, so rapid double submits produce exactly
// one gateway call. Fields left empty on a retry keep their previous values;
// in particular a rejected confirmation code stays populated.
func (c *Controller) SubmitPayment(details domain.PaymentInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != domain.StatePaymentExecution {
		return ErrIllegalTransition
	}
	if c.inFlight || c.feedback == domain.FeedbackProcessing || c.feedback == domain.FeedbackSuccess {
		return nil
	}

	if details.SenderEmail != "" {
		c.payment.SenderEmail = details.SenderEmail
	}
	if details.ConfirmationCode != "" {
		c.payment.ConfirmationCode = details.ConfirmationCode
	}
	if details.Card != nil {
		c.payment.Card = details.Card
	}

	if errs := validatePayment(c.payment); errs != nil {
		return errs
	}

	snapshot := c.cart.Snapshot()
	if len(snapshot.Items) == 0 {
		return ErrEmptyCart
	}

	charge := gateway.Charge{
		SessionID: c.id,
		OwnerID:   c.ownerID,
		Amount:    snapshot.Total(),
		Currency:  c.cart.Currency(),
		Payment:   c.payment,
	}

	subCtx, subCancel := context.WithCancel(c.ctx)
	c.subCancel = subCancel
	c.inFlight = true
	c.feedback = domain.FeedbackProcessing
	c.feedbackMsg = ""

	go c.execute(subCtx, charge, snapshot)
	return nil
}

func (c *Controller) execute(ctx context.Context, charge gateway.Charge, snapshot *cartdomain.Cart) {
	err := c.gateway.Submit(ctx, charge)

	c.mu.Lock()
	defer c.mu.Unlock()

	if ctx.Err() != nil {
		// The submission was cancelled; its result belongs to nobody.
		return
	}

	c.inFlight = false
	if err != nil {
		c.feedback = domain.FeedbackError
		c.feedbackMsg = userMessage(err)
		return
	}

	c.feedback = domain.FeedbackSuccess
	go c.completeAfterDelay(snapshot)
}

// completeAfterDelay holds the success feedback for a fixed pause before
// finishing the order. Only session teardown cancels it.
func (c *Controller) completeAfterDelay(snapshot *cartdomain.Cart) {
	timer := time.NewTimer(c.completionDelay)
	defer timer.Stop()

	select {
	case <-timer.C:
		c.complete(snapshot)
	case <-c.ctx.Done():
	}
}

// complete records the order durably, then removes the purchased items from
// the cart, then notifies. The order is built from the snapshot the gateway
// approved at submit time, never from the live cart: anything added while
// the payment was resolving was not charged, stays in the cart, and must not
// appear on the order.
func (c *Controller) complete(snapshot *cartdomain.Cart) {
	c.mu.Lock()
	if c.ctx.Err() != nil {
		c.mu.Unlock()
		return
	}
	method := c.payment.Method
	c.mu.Unlock()

	order := &orders.Order{
		ID:            uuid.NewString(),
		SessionID:     c.id,
		OwnerID:       c.ownerID,
		PaymentMethod: method.String(),
		TotalAmount:   snapshot.Total().StringFixed(2),
		Currency:      c.cart.Currency().String(),
		Items:         orders.ItemsFromCart(snapshot.Items),
	}

	err := c.orders.CreateOrder(c.ctx, order)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctx.Err() != nil {
		return
	}

	if err != nil && !errors.Is(err, orders.ErrDuplicateOrder) {
		log.Printf("failed to record order for session %s: %v", c.id, err)
		c.feedback = domain.FeedbackError
		c.feedbackMsg = "could not record your order, please try again"
		return
	}

	c.cart.Deduct(snapshot.Items)
	c.orderID = order.ID
	c.state = domain.StateCompleted
	c.feedback = domain.FeedbackNone
	if c.onTerminal != nil {
		c.onTerminal()
	}

	c.notifier.OrderCompleted(c.ctx, publisher.OrderCompletedEvent{
		OrderID:       order.ID,
		OwnerID:       c.ownerID,
		PaymentMethod: order.PaymentMethod,
		Total:         order.TotalAmount,
		Currency:      order.Currency,
		CompletedAt:   time.Now(),
	})
}

// Dismiss clears an error feedback and returns control to payment
// execution. Processing and success cannot be dismissed; with no feedback
// showing there is nothing to do.
func (c *Controller) Dismiss() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.feedback {
	case domain.FeedbackProcessing, domain.FeedbackSuccess:
		return ErrSubmissionInFlight
	case domain.FeedbackError:
		c.feedback = domain.FeedbackNone
		c.feedbackMsg = ""
	}
	return nil
}

// Back navigates one step up the flow. Shipping data is always retained;
// payment sub-state is discarded when leaving payment execution.
func (c *Controller) Back() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.feedback == domain.FeedbackProcessing || c.feedback == domain.FeedbackSuccess {
		return ErrSubmissionInFlight
	}

	switch c.state {
	case domain.StatePaymentExecution:
		c.abortSubmissionLocked()
		c.payment = domain.PaymentInfo{}
		c.feedback = domain.FeedbackNone
		c.feedbackMsg = ""
		c.state = domain.StatePaymentMethodSelection
	case domain.StatePaymentMethodSelection:
		c.state = domain.StateShippingEntry
	default:
		return ErrIllegalTransition
	}
	return nil
}

// Abandon exits the flow from any non-terminal state. All scheduled tasks
// and in-flight requests bound to the session die with its context.
func (c *Controller) Abandon() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.IsTerminal() {
		return ErrIllegalTransition
	}
	c.state = domain.StateAbandoned
	c.shipping = nil
	c.payment = domain.PaymentInfo{}
	c.cancel()
	return nil
}

// Close tears the session down unconditionally (component unmount).
func (c *Controller) Close() {
	c.cancel()
}

// View returns a read-only snapshot for the presentational collaborator.
func (c *Controller) View() domain.SessionView {
	c.mu.Lock()
	defer c.mu.Unlock()

	view := domain.SessionView{
		ID:              c.id,
		State:           c.state,
		Feedback:        c.feedback,
		FeedbackMessage: c.feedbackMsg,
		Method:          c.payment.Method,
		OrderID:         c.orderID,
	}
	if c.shipping != nil {
		shipping := *c.shipping
		view.Shipping = &shipping
	}
	return view
}

func (c *Controller) abortSubmissionLocked() {
	if c.subCancel != nil {
		c.subCancel()
		c.subCancel = nil
	}
	c.inFlight = false
}

// userMessage maps gateway failures onto what the visitor sees: server
// rejections verbatim, everything else generic.
func userMessage(err error) string {
	var rejection *gateway.RejectionError
	if errors.As(err, &rejection) {
		return rejection.Message
	}
	var fieldErrs validation.FieldErrors
	if errors.As(err, &fieldErrs) {
		return fieldErrs.Error()
	}
	return "payment could not be processed, please try again"
}
