package enums

import "fmt"

// WalletTransactionType classifies entries in the wallet ledger.
type WalletTransactionType string

const (
	WalletTransactionTopUp       WalletTransactionType = "TOP_UP"
	WalletTransactionPayment     WalletTransactionType = "PAYMENT"
	WalletTransactionRefund      WalletTransactionType = "REFUND"
	WalletTransactionAdminCredit WalletTransactionType = "ADMIN_CREDIT"
	WalletTransactionAdminDebit  WalletTransactionType = "ADMIN_DEBIT"
)

var validWalletTransactionTypes = []WalletTransactionType{
	WalletTransactionTopUp,
	WalletTransactionPayment,
	WalletTransactionRefund,
	WalletTransactionAdminCredit,
	WalletTransactionAdminDebit,
}

// String implements fmt.Stringer.
func (w WalletTransactionType) String() string {
	return string(w)
}

// IsValid reports whether the value is a known WalletTransactionType.
func (w WalletTransactionType) IsValid() bool {
	for _, candidate := range validWalletTransactionTypes {
		if candidate == w {
			return true
		}
	}
	return false
}

// IsCredit reports whether the type adds funds to a wallet.
func (w WalletTransactionType) IsCredit() bool {
	switch w {
	case WalletTransactionTopUp, WalletTransactionRefund, WalletTransactionAdminCredit:
		return true
	default:
		return false
	}
}

// ParseWalletTransactionType converts raw input into a WalletTransactionType.
func ParseWalletTransactionType(value string) (WalletTransactionType, error) {
	for _, candidate := range validWalletTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid wallet transaction type %q", value)
}
