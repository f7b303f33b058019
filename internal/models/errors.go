package models

import (
	"errors"
	"fmt"
)

type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

type InvalidTransitionError struct {
	Subject string // "hotel booking", "rental"
	From    string
	To      string
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s cannot move from %s to %s", e.Subject, e.From, e.To)
}

// StaleStatusError means the record's status changed between the read and the
// compare-and-swap. The transition was not applied; callers may reload and retry.
type StaleStatusError struct {
	ID       string
	Expected string
}

func (e StaleStatusError) Error() string {
	return fmt.Sprintf("record %s no longer in status %s", e.ID, e.Expected)
}

type VoucherError struct {
	Code   string
	Reason string
}

func (e VoucherError) Error() string {
	return fmt.Sprintf("voucher %s not applicable: %s", e.Code, e.Reason)
}

type InsufficientPointsError struct {
	UserID    string
	Requested int64
}

func (e InsufficientPointsError) Error() string {
	return fmt.Sprintf("user %s has fewer than %d travel points", e.UserID, e.Requested)
}

type InsufficientFundsError struct {
	UserID string
	Amount Cents
}

func (e InsufficientFundsError) Error() string {
	return fmt.Sprintf("wallet of user %s cannot cover %s", e.UserID, e.Amount)
}

type GeofenceError struct {
	DistanceMeters  float64
	ToleranceMeters float64
}

func (e GeofenceError) Error() string {
	return fmt.Sprintf("reported positions are %.0fm apart, tolerance is %.0fm", e.DistanceMeters, e.ToleranceMeters)
}

type SignatureError struct {
	Gateway string
}

func (e SignatureError) Error() string {
	return fmt.Sprintf("%s callback signature mismatch", e.Gateway)
}

type ConflictError struct {
	Resource string
	Msg      string
}

func (e ConflictError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s conflict", e.Resource)
	}
	return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsInvalidTransition(err error) bool {
	var target InvalidTransitionError
	return errors.As(err, &target)
}

func IsStaleStatus(err error) bool {
	var target StaleStatusError
	return errors.As(err, &target)
}

func IsVoucherError(err error) bool {
	var target VoucherError
	return errors.As(err, &target)
}

func IsInsufficientPoints(err error) bool {
	var target InsufficientPointsError
	return errors.As(err, &target)
}

func IsInsufficientFunds(err error) bool {
	var target InsufficientFundsError
	return errors.As(err, &target)
}

func IsGeofence(err error) bool {
	var target GeofenceError
	return errors.As(err, &target)
}

func IsSignature(err error) bool {
	var target SignatureError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

// IsDuplicateReference reports a wallet ledger write rejected because its
// reference was already processed, i.e. a harmless replay.
func IsDuplicateReference(err error) bool {
	var target ConflictError
	return errors.As(err, &target) && target.Resource == "wallet transaction"
}
