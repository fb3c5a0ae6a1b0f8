package session

import "errors"

var (
	// ErrNotFound is returned by PriceLookup when the store has no quote for the symbol.
	ErrNotFound = errors.New("price not found")
	// ErrInvalidSymbol is returned for an empty symbol.
	ErrInvalidSymbol = errors.New("symbol must not be empty")
)
