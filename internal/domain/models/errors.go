package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNoTradingDay means the benchmark has no trading day on or before the requested date.
	ErrNoTradingDay = errors.New("no benchmark trading day on or before requested date")

	// ErrAlignment means the conditions index could not be aligned onto the benchmark calendar.
	ErrAlignment = errors.New("conditions index alignment failed")

	// ErrInsufficientHistory means a derived series is undefined at the evaluation date.
	ErrInsufficientHistory = errors.New("insufficient history")
)

// ProviderError wraps a single provider failure (transport, HTTP status, or a payload
// the provider's response shape marks as an error).
type ProviderError struct {
	Provider string
	Symbol   string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: fetch %s: %v", e.Provider, e.Symbol, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// DataUnavailableError means every configured provider failed for a symbol. Err holds
// the error from the last attempted provider.
type DataUnavailableError struct {
	Symbol string
	Err    error
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("data unavailable for %s: %v", e.Symbol, e.Err)
}

func (e *DataUnavailableError) Unwrap() error {
	return e.Err
}
