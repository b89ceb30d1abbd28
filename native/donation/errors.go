package donation

import "errors"

var (
	ErrOwnerOnly           = errors.New("donation: owner only")
	ErrUnauthorized        = errors.New("donation: unauthorized")
	ErrContractPaused      = errors.New("donation: contract paused")
	ErrZeroAmount          = errors.New("donation: zero amount")
	ErrInvalidAmount       = errors.New("donation: amount below minimum")
	ErrInvalidAddress      = errors.New("donation: invalid address")
	ErrInvalidTokenID      = errors.New("donation: invalid token id")
	ErrNotFound            = errors.New("donation: not found")
	ErrAlreadyClaimed      = errors.New("donation: bonus already claimed")
	ErrInsufficientBalance = errors.New("donation: lifetime amount below claim threshold")
	ErrTransferFailed      = errors.New("donation: transfer failed")
	ErrMintFailed          = errors.New("donation: mint failed")
)
