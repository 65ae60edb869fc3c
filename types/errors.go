package types

import (
	"cosmossdk.io/errors"
)

// Code 1 is reserved for internal errors by the sdk error registry.
var (
	ErrInvalidRequest     = errors.Register(Codespace, 2, "invalid request")
	ErrInvalidFunds       = errors.Register(Codespace, 3, "invalid funds")
	ErrInsufficientFunds  = errors.Register(Codespace, 4, "insufficient funds")
	ErrInsufficientShares = errors.Register(Codespace, 5, "insufficient vault tokens")
	ErrUnauthorized       = errors.Register(Codespace, 6, "unauthorized")
	ErrUnknownExtension   = errors.Register(Codespace, 7, "unknown extension")
	ErrNotFound           = errors.Register(Codespace, 8, "not found")
)
