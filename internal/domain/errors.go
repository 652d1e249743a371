package domain

import (
	"errors"
	"strings"
)

var (
	ErrInsufficientBalance  = errors.New("insufficient available balance")
	ErrNotEligible          = errors.New("creator is not eligible for payouts")
	ErrBelowMinimumPayout   = errors.New("requested amount is below the minimum payout")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrInvalidRequestState  = errors.New("payout request is not in a valid state for this operation")
	ErrInvalidPayoutState   = errors.New("payout is not in a valid state for this operation")
	ErrRequestNotFound      = errors.New("payout request not found")
	ErrPayoutNotFound       = errors.New("payout not found")
	ErrInvalidPurchase      = errors.New("invalid purchase")
	ErrPurchaseMismatch     = errors.New("purchase already recorded with different data")
	ErrPurchaseNotCompleted = errors.New("purchase is not completed")
	ErrAlreadyAccrued       = errors.New("earnings already accrued for purchase")
	ErrConcurrentUpdate     = errors.New("row changed concurrently")
	ErrInvalidStatus        = errors.New("unknown status")
	ErrInvalidPaymentMethod = errors.New("payment method is required")

	// ErrTransferRejected is a definitive refusal by the payment provider. Any other
	// submission error leaves the transfer outcome unknown.
	ErrTransferRejected = errors.New("payment provider rejected transfer")

	ErrUnknownCreator    = errors.New("creator balance does not exist")
	ErrDuplicatePayout   = errors.New("payout request already has a payout")
	ErrRequestLinkBroken = errors.New("payout is not linked to its payout request")
	ErrBalanceDrift      = errors.New("creator balance is out of sync with purchases")

	ErrReconciliationMismatch = errors.New("reconciliation mismatch")
	ErrRepairUnsafe           = errors.New("repair would produce a negative balance")
)

type ErrorClass string

const (
	ClassUserFacing     ErrorClass = "user_facing"
	ClassTransient      ErrorClass = "transient"
	ClassStructural     ErrorClass = "structural"
	ClassReconciliation ErrorClass = "reconciliation"
)

// Classify tells callers whether to surface, retry or escalate an error.
func Classify(err error) ErrorClass {
	switch {
	case errors.Is(err, ErrUnknownCreator),
		errors.Is(err, ErrDuplicatePayout),
		errors.Is(err, ErrRequestLinkBroken),
		errors.Is(err, ErrBalanceDrift):
		return ClassStructural
	case errors.Is(err, ErrReconciliationMismatch),
		errors.Is(err, ErrRepairUnsafe):
		return ClassReconciliation
	case errors.Is(err, ErrInsufficientBalance),
		errors.Is(err, ErrNotEligible),
		errors.Is(err, ErrBelowMinimumPayout),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidRequestState),
		errors.Is(err, ErrInvalidPayoutState),
		errors.Is(err, ErrRequestNotFound),
		errors.Is(err, ErrPayoutNotFound),
		errors.Is(err, ErrInvalidPurchase),
		errors.Is(err, ErrPurchaseMismatch),
		errors.Is(err, ErrPurchaseNotCompleted),
		errors.Is(err, ErrAlreadyAccrued),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrInvalidPaymentMethod):
		return ClassUserFacing
	}
	return ClassTransient
}

// NotEligibleError carries the requirements the creator still has to meet.
type NotEligibleError struct {
	Missing []string
}

func (e *NotEligibleError) Error() string {
	if len(e.Missing) == 0 {
		return ErrNotEligible.Error()
	}
	return ErrNotEligible.Error() + ": missing " + strings.Join(e.Missing, ", ")
}

func (e *NotEligibleError) Is(target error) bool {
	return target == ErrNotEligible
}
