// Package apperr defines the stable error kinds returned by every registry,
// ledger and loan operation. Each kind carries a fixed integer code; the 1xxx
// group belongs to the property token ledger and the 2xxx group to lending.
package apperr

import (
	"errors"
	"net/http"
)

// Kind is a machine-readable error kind. Its value is the public error code.
type Kind int

const (
	KindUnknown Kind = 0

	// Property registry and ledger
	KindUnauthorized        Kind = 1001
	KindInsufficientBalance Kind = 1002
	KindPropertyExists      Kind = 1003
	KindInvalidProperty     Kind = 1004
	KindInvalidAmount       Kind = 1005

	// Lending
	KindLoanNotFound            Kind = 2003
	KindInvalidTerms            Kind = 2004
	KindLoanNotActive           Kind = 2005
	KindLoanAlreadyRepaid       Kind = 2006
	KindCollateralNotSet        Kind = 2007
	KindInvalidCollateralAmount Kind = 2008
	KindTokensAlreadyLocked     Kind = 2009
	KindLoanNotFullyFunded      Kind = 2010
	KindLoanNotMatured          Kind = 2011
)

var kindNames = map[Kind]string{
	KindUnknown:                 "Unknown",
	KindUnauthorized:            "Unauthorized",
	KindInsufficientBalance:     "InsufficientBalance",
	KindPropertyExists:          "PropertyExists",
	KindInvalidProperty:         "InvalidProperty",
	KindInvalidAmount:           "InvalidAmount",
	KindLoanNotFound:            "LoanNotFound",
	KindInvalidTerms:            "InvalidTerms",
	KindLoanNotActive:           "LoanNotActive",
	KindLoanAlreadyRepaid:       "LoanAlreadyRepaid",
	KindCollateralNotSet:        "CollateralNotSet",
	KindInvalidCollateralAmount: "InvalidCollateralAmount",
	KindTokensAlreadyLocked:     "TokensAlreadyLocked",
	KindLoanNotFullyFunded:      "LoanNotFullyFunded",
	KindLoanNotMatured:          "LoanNotMatured",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return kindNames[KindUnknown]
}

// Code is the stable integer code published to clients.
func (k Kind) Code() int { return int(k) }

// HTTPStatus maps a kind to the response status used by the HTTP adapter.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindUnauthorized:
		return http.StatusForbidden
	case KindInvalidProperty, KindLoanNotFound, KindCollateralNotSet:
		return http.StatusNotFound
	case KindInvalidAmount, KindInvalidTerms, KindInvalidCollateralAmount:
		return http.StatusUnprocessableEntity
	case KindInsufficientBalance, KindPropertyExists,
		KindLoanNotActive, KindLoanAlreadyRepaid, KindTokensAlreadyLocked,
		KindLoanNotFullyFunded, KindLoanNotMatured:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is a kinded domain error. Two errors match under errors.Is when their
// kinds are equal, so callers compare against the sentinels below.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// New builds an error of the given kind with a custom message.
func New(k Kind, msg string) *Error { return &Error{Kind: k, Msg: msg} }

var (
	ErrUnauthorized            = New(KindUnauthorized, "unauthorized")
	ErrInsufficientBalance     = New(KindInsufficientBalance, "insufficient balance")
	ErrPropertyExists          = New(KindPropertyExists, "property already exists")
	ErrInvalidProperty         = New(KindInvalidProperty, "invalid property")
	ErrInvalidAmount           = New(KindInvalidAmount, "invalid amount")
	ErrLoanNotFound            = New(KindLoanNotFound, "loan not found")
	ErrInvalidTerms            = New(KindInvalidTerms, "invalid loan terms")
	ErrLoanNotActive           = New(KindLoanNotActive, "loan not active")
	ErrLoanAlreadyRepaid       = New(KindLoanAlreadyRepaid, "loan already settled")
	ErrCollateralNotSet        = New(KindCollateralNotSet, "collateral not set")
	ErrInvalidCollateralAmount = New(KindInvalidCollateralAmount, "invalid collateral amount")
	ErrTokensAlreadyLocked     = New(KindTokensAlreadyLocked, "collateral tokens already locked")
	ErrLoanNotFullyFunded      = New(KindLoanNotFullyFunded, "loan not fully funded")
	ErrLoanNotMatured          = New(KindLoanNotMatured, "loan not matured")
)

// KindOf returns the kind carried by err, or KindUnknown for infrastructure errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
