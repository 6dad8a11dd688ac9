package service

import (
	"strings"

	"github.com/fjod/go_shop/internal/checkout/domain"
	"github.com/fjod/go_shop/internal/validation"
)

// validateShipping gates the shipping form. Every field except
// nearest_location is required; phone is checked against the country's
// pattern and returned normalized with its calling code.
func validateShipping(info domain.ShippingInfo) (domain.ShippingInfo, validation.FieldErrors) {
	errs := validation.FieldErrors{}

	required := map[string]string{
		"first_name": info.FirstName,
		"last_name":  info.LastName,
		"email":      info.Email,
		"phone":      info.Phone,
		"address":    info.Address,
		"city":       info.City,
		"state":      info.State,
		"country":    info.Country,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			errs[field] = "this field is required"
		}
	}
	if len(errs) > 0 {
		return info, errs
	}

	if !validation.ValidateEmail(info.Email) {
		errs["email"] = "a valid email address is required"
	}

	normalized, ok := validation.ValidatePhone(info.Phone, info.Country)
	if !ok {
		errs["phone"] = "phone number is not valid for the selected country"
	} else {
		info.Phone = normalized
	}

	if len(errs) > 0 {
		return info, errs
	}
	return info, nil
}

// validatePayment checks the required input for the chosen variant before
// anything goes on the wire.
func validatePayment(payment domain.PaymentInfo) validation.FieldErrors {
	errs := validation.FieldErrors{}

	switch payment.Method {
	case domain.MethodPeerTransfer:
		if !validation.ValidateEmail(payment.SenderEmail) {
			errs["sender_email"] = "a valid sender email is required"
		}
		if !validation.ValidateConfirmationCode(validation.NormalizeConfirmationCode(payment.ConfirmationCode)) {
			errs["confirmation_code"] = "confirmation code must be 9 letters or digits"
		}
	case domain.MethodBankTransfer:
		if !validation.ValidateConfirmationCode(validation.NormalizeConfirmationCode(payment.ConfirmationCode)) {
			errs["confirmation_code"] = "confirmation code must be 9 letters or digits"
		}
	case domain.MethodCard:
		card := payment.Card
		if card == nil || card.HolderName == "" || card.Number == "" || card.Expiry == "" || card.CVC == "" {
			errs["card"] = "all card fields are required"
		}
	case domain.MethodWalletRedirect:
		// Nothing beyond the amount.
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
