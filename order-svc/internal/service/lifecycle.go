package service

import (
	"strings"
	"time"

	"barapp/order-svc/internal/domain"
)

// transition is the planned outcome of one mutating call against a given
// order snapshot. It is computed without side effects and written as a single
// conditional update.
type transition struct {
	patch    domain.OrderPatch
	noop     bool
	status   domain.Status
	started  bool
	finished bool
}

func (t *transition) setStatus(status domain.Status) {
	t.status = status
	t.patch.Status = &status
}

var nextStatuses = map[domain.Status][]domain.Status{
	domain.StatusPending:        {domain.StatusPreparing, domain.StatusCanceled},
	domain.StatusPreparing:      {domain.StatusReadyToDeliver, domain.StatusDone, domain.StatusServed, domain.StatusCanceled},
	domain.StatusReadyToDeliver: {domain.StatusDelivered, domain.StatusCanceled},
}

func canTransition(o domain.Order, to domain.Status) bool {
	for _, candidate := range nextStatuses[o.Status] {
		if candidate != to {
			continue
		}
		switch to {
		case domain.StatusReadyToDeliver:
			return o.Type == domain.OrderTypeDelivery
		case domain.StatusDone, domain.StatusServed:
			return o.Type == domain.OrderTypeTable
		}
		return true
	}
	return false
}

func requiresFinishedPreparing(s domain.Status) bool {
	return s == domain.StatusReadyToDeliver || s == domain.StatusDone || s == domain.StatusServed
}

// triggersAnalytics reports whether entering s produces a business record.
func triggersAnalytics(s domain.Status) bool {
	return s == domain.StatusCanceled || s == domain.StatusDone || s == domain.StatusDelivered
}

func rejectTerminal(o domain.Order) error {
	if o.Status.Terminal() {
		return invalid("order %s is already %s and can no longer change", o.ID, o.Status)
	}
	return nil
}

func planStatusChange(o domain.Order, to domain.Status, reason string) (transition, error) {
	if !to.Valid() {
		return transition{}, invalid("invalid status %q", to)
	}
	if to == domain.StatusDone && o.Type == domain.OrderTypeDelivery {
		return transition{}, invalid("delivery orders cannot be marked DONE; use READY_TO_DELIVER and then DELIVERED")
	}
	if o.Status == to {
		return transition{noop: true}, nil
	}
	if err := rejectTerminal(o); err != nil {
		return transition{}, err
	}
	if !canTransition(o, to) {
		return transition{}, invalid("cannot change %s order %s from %s to %s", o.Type, o.ID, o.Status, to)
	}
	if requiresFinishedPreparing(to) && o.FinishedPreparing == nil {
		return transition{}, invalid("order %s has not finished preparing", o.ID)
	}

	var t transition
	t.setStatus(to)
	if to == domain.StatusCanceled {
		reason = strings.TrimSpace(reason)
		if reason == "" {
			return transition{}, invalid("cancellation reason is required")
		}
		t.patch.CancellationReason = &reason
	}
	return t, nil
}

// planConfirmPayment completes the order in the same write when the kitchen
// has already finished. Orders closed before payment are settled.
func planConfirmPayment(o domain.Order) (transition, error) {
	if o.IsPaid {
		return transition{noop: true}, nil
	}

	paid := true
	t := transition{patch: domain.OrderPatch{IsPaid: &paid}}
	switch o.Status {
	case domain.StatusServed:
		// a table served before paying settles into DONE
		t.setStatus(domain.StatusDone)
		return t, nil
	case domain.StatusDone, domain.StatusDelivered:
		// re-entering the status records the now paid order
		t.setStatus(o.Status)
		return t, nil
	}
	if err := rejectTerminal(o); err != nil {
		return transition{}, err
	}

	if o.FinishedPreparing != nil && o.Status != o.CompletionStatus() {
		t.setStatus(o.CompletionStatus())
	}
	return t, nil
}

func planStartPreparing(o domain.Order, now time.Time) (transition, error) {
	if err := rejectTerminal(o); err != nil {
		return transition{}, err
	}
	if o.StartedPreparing != nil {
		return transition{}, invalid("order %s has already started preparing", o.ID)
	}

	t := transition{started: true, patch: domain.OrderPatch{StartedPreparing: &now}}
	if o.Status == domain.StatusPending {
		t.setStatus(domain.StatusPreparing)
	}
	return t, nil
}

// planFinishPreparing mirrors planConfirmPayment: whichever of payment and
// kitchen completion comes second completes the order.
func planFinishPreparing(o domain.Order, now time.Time) (transition, error) {
	if err := rejectTerminal(o); err != nil {
		return transition{}, err
	}
	if o.StartedPreparing == nil {
		return transition{}, invalid("order %s has not started preparing yet", o.ID)
	}
	if o.FinishedPreparing != nil {
		return transition{}, invalid("order %s has already finished preparing", o.ID)
	}
	if now.Before(*o.StartedPreparing) {
		now = *o.StartedPreparing
	}

	t := transition{finished: true, patch: domain.OrderPatch{FinishedPreparing: &now}}
	if o.IsPaid {
		t.setStatus(o.CompletionStatus())
	}
	return t, nil
}

func planPriority(o domain.Order, priority domain.Priority) (transition, error) {
	if !priority.Valid() {
		return transition{}, invalid("invalid priority %q", priority)
	}
	if o.Priority == priority {
		return transition{noop: true}, nil
	}
	if err := rejectTerminal(o); err != nil {
		return transition{}, err
	}
	return transition{patch: domain.OrderPatch{Priority: &priority}}, nil
}

func planTransactionHandler(o domain.Order, workerID, name string) (transition, error) {
	if o.TransactionHandlerID == workerID && o.TransactionHandlerName == name {
		return transition{noop: true}, nil
	}
	if err := rejectTerminal(o); err != nil {
		return transition{}, err
	}
	return transition{patch: domain.OrderPatch{
		TransactionHandlerID:   &workerID,
		TransactionHandlerName: &name,
	}}, nil
}
