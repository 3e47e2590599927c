// Package lifecycle holds the parcel business rules: who may mutate a
// parcel, in which status, and which status transitions are legal. It is
// the single authority consulted by every handler before a write.
package lifecycle

import (
	"errors"
	"strconv"

	"parcel_system/internal/domain"
)

// Rule violations surfaced to handlers. Handlers map these to HTTP codes.
var (
	ErrNotOwner          = errors.New("caller does not own this parcel")
	ErrNotPending        = errors.New("only pending parcels can be modified")
	ErrNotAssignee       = errors.New("parcel is not assigned to this agent")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidPayment    = errors.New("invalid payment method")
	ErrNegativeAmount    = errors.New("cod amount cannot be negative")
)

// PaymentFields normalizes the payment pair for create and edit.
// PREPAID yields (true, nil); COD yields (false, amount) where a missing
// or unparsable amount defaults to 0. Negative amounts are rejected.
func PaymentFields(method domain.PaymentMethod, codAmount string) (bool, *float64, error) {
	switch method {
	case domain.PaymentPrepaid:
		return true, nil, nil
	case domain.PaymentCOD:
		amount := 0.0
		if codAmount != "" {
			if v, err := strconv.ParseFloat(codAmount, 64); err == nil {
				amount = v
			}
		}
		if amount < 0 {
			return false, nil, ErrNegativeAmount
		}
		return false, &amount, nil
	}
	return false, nil, ErrInvalidPayment
}

// CanModify gates customer edit and delete: owner only, PENDING only.
func CanModify(p *domain.Parcel, callerID uint) error {
	if p.CustomerID != callerID {
		return ErrNotOwner
	}
	if p.Status != domain.StatusPending {
		return ErrNotPending
	}
	return nil
}

// Transition validates a status change against the lifecycle graph:
//
//	PENDING    -> IN_TRANSIT | FAILED
//	IN_TRANSIT -> DELIVERED  | FAILED
//
// DELIVERED and FAILED are terminal. An unknown target value is rejected
// as ErrInvalidStatus regardless of the current state.
func Transition(current, next domain.Status) error {
	if !next.Valid() {
		return ErrInvalidStatus
	}
	switch current {
	case domain.StatusPending:
		if next == domain.StatusInTransit || next == domain.StatusFailed {
			return nil
		}
	case domain.StatusInTransit:
		if next == domain.StatusDelivered || next == domain.StatusFailed {
			return nil
		}
	}
	return ErrInvalidTransition
}

// StatusUpdateAllowed gates an agent status update: the caller must be
// the assigned agent and the transition must be legal. The assignee check
// runs first so a wrong agent learns nothing about the parcel's state.
func StatusUpdateAllowed(p *domain.Parcel, agentID uint, next domain.Status) error {
	if p.AssignedAgentID == nil || *p.AssignedAgentID != agentID {
		return ErrNotAssignee
	}
	return Transition(p.Status, next)
}
