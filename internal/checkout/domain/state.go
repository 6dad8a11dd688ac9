package domain

// State is the position of a checkout session in its flow.
type State string

const (
	StateShippingEntry          State = "SHIPPING_ENTRY"
	StatePaymentMethodSelection State = "PAYMENT_METHOD_SELECTION"
	StatePaymentExecution       State = "PAYMENT_EXECUTION"
	StateCompleted              State = "COMPLETED"
	StateAbandoned              State = "ABANDONED"
)

func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateAbandoned
}

// String representation (for logging)
func (s State) String() string {
	return string(s)
}

// transitions is the closed table of legal moves. Abandoned is reachable
// from every non-terminal state via explicit back-navigation out of the flow.
var transitions = map[State][]State{
	StateShippingEntry:          {StatePaymentMethodSelection, StateAbandoned},
	StatePaymentMethodSelection: {StatePaymentExecution, StateShippingEntry, StateAbandoned},
	StatePaymentExecution:       {StateCompleted, StatePaymentMethodSelection, StatePaymentExecution, StateAbandoned},
	StateCompleted:              {},
	StateAbandoned:              {},
}

func CanTransitionTo(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
