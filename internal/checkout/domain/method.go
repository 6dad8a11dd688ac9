package domain

import "fmt"

// Method is a closed set of payment-method variants. Dispatch happens
// through an explicit table, one handler per variant.
type Method string

const (
	MethodCard           Method = "card"
	MethodWalletRedirect Method = "wallet_redirect"
	MethodPeerTransfer   Method = "peer_transfer"
	MethodBankTransfer   Method = "bank_transfer"
)

func (m Method) String() string {
	return string(m)
}

// ParseMethod rejects anything outside the closed variant set.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodCard, MethodWalletRedirect, MethodPeerTransfer, MethodBankTransfer:
		return Method(s), nil
	}
	return "", fmt.Errorf("unknown payment method %q", s)
}
