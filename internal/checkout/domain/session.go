package domain

// Feedback is the tri-state surfaced during an asynchronous payment
// submission. Processing blocks dismissal and resubmission; success cannot
// be cancelled once entered; error is dismissible and permits retry.
type Feedback string

const (
	FeedbackNone       Feedback = ""
	FeedbackProcessing Feedback = "processing"
	FeedbackSuccess    Feedback = "success"
	FeedbackError      Feedback = "error"
)

// ShippingInfo is transient: it lives for one checkout session and is
// discarded when the session completes or is abandoned.
type ShippingInfo struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	City            string `json:"city"`
	State           string `json:"state"`
	Country         string `json:"country"`
	NearestLocation string `json:"nearest_location,omitempty"`
}

// CardDetails is the stub card input. Real tokenization is out of scope;
// the fields only need to be non-empty.
type CardDetails struct {
	HolderName string `json:"holder_name"`
	Number     string `json:"number"`
	Expiry     string `json:"expiry"`
	CVC        string `json:"cvc"`
}

// PaymentInfo carries the chosen variant and its method-specific sub-state.
// Same lifetime as ShippingInfo.
type PaymentInfo struct {
	Method           Method       `json:"method"`
	SenderEmail      string       `json:"sender_email,omitempty"`
	ConfirmationCode string       `json:"confirmation_code,omitempty"`
	Card             *CardDetails `json:"card,omitempty"`
}

// SessionView is a read-only snapshot of a checkout session handed to the
// presentational collaborator.
type SessionView struct {
	ID              string        `json:"id"`
	State           State         `json:"state"`
	Feedback        Feedback      `json:"feedback,omitempty"`
	FeedbackMessage string        `json:"feedback_message,omitempty"`
	Shipping        *ShippingInfo `json:"shipping,omitempty"`
	Method          Method        `json:"method,omitempty"`
	OrderID         string        `json:"order_id,omitempty"`
}
