package domain

import "errors"

var (
	ErrMalformedOrder        = errors.New("malformed stored order")
	ErrNoPaymentItem         = errors.New("order has no payment consideration")
	ErrUnsupportedBasicOrder = errors.New("order not expressible as a basic order")
	ErrFlowBusy              = errors.New("fulfillment flow already running")
	ErrRetryNotAllowed       = errors.New("retry only allowed from the error state")
	ErrApprovalNotGranted    = errors.New("operator approval not granted")
	ErrSimulationReverted    = errors.New("simulation reverted")
	ErrReceiptFailed         = errors.New("transaction reverted on chain")
	ErrReceiptTimeout        = errors.New("timed out waiting for confirmation")
	ErrSelectionCancelled    = errors.New("selection cancelled")
	ErrNotFound              = errors.New("not found")
)
