package gateway

import (
	"context"
	"time"

	"github.com/fjod/go_shop/internal/validation"
)

// WalletRedirectAdapter stands in for an external redirect/confirmation
// round trip: a cancellable delay, then success.
type WalletRedirectAdapter struct {
	Delay time.Duration
}

func (a *WalletRedirectAdapter) Submit(ctx context.Context, _ Charge) error {
	timer := time.NewTimer(a.Delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TransferAdapter handles the manual-transfer variants. It normalizes the
// confirmation code and asks the validation endpoint whether the transfer
// happened. Peer transfers identify the payer by sender email; bank
// transfers only carry the code.
type TransferAdapter struct {
	Client       *Client
	Path         string
	BankTransfer bool
}

func (a *TransferAdapter) Submit(ctx context.Context, charge Charge) error {
	code := validation.NormalizeConfirmationCode(charge.Payment.ConfirmationCode)
	if !validation.ValidateConfirmationCode(code) {
		return validation.FieldErrors{"confirmation_code": "confirmation code must be 9 letters or digits"}
	}

	sender := charge.Payment.SenderEmail
	if !a.BankTransfer {
		if !validation.ValidateEmail(sender) {
			return validation.FieldErrors{"sender_email": "a valid sender email is required"}
		}
	} else {
		// Bank transfers are matched on the code alone.
		sender = charge.OwnerID
	}

	return a.Client.Validate(ctx, a.Path, validateRequest{
		SenderIdentifier: sender,
		ConfirmationCode: code,
		Amount:           charge.Amount.StringFixed(2),
		Currency:         charge.Currency.String(),
	})
}

// CardAdapter is a stub: real tokenization is out of scope, the required
// fields only need to be present.
type CardAdapter struct{}

func (a *CardAdapter) Submit(_ context.Context, charge Charge) error {
	card := charge.Payment.Card
	errs := validation.FieldErrors{}
	if card == nil || card.HolderName == "" {
		errs["holder_name"] = "cardholder name is required"
	}
	if card == nil || card.Number == "" {
		errs["number"] = "card number is required"
	}
	if card == nil || card.Expiry == "" {
		errs["expiry"] = "expiry is required"
	}
	if card == nil || card.CVC == "" {
		errs["cvc"] = "security code is required"
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
