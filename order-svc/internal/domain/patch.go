package domain

import "time"

// OrderPatch is a partial update of the mutable order fields. A nil field is
// left untouched.
type OrderPatch struct {
	Status                 *Status
	CancellationReason     *string
	Priority               *Priority
	IsPaid                 *bool
	StartedPreparing       *time.Time
	FinishedPreparing      *time.Time
	TransactionHandlerID   *string
	TransactionHandlerName *string
}

func (p OrderPatch) Empty() bool {
	return p.Status == nil && p.CancellationReason == nil && p.Priority == nil &&
		p.IsPaid == nil && p.StartedPreparing == nil && p.FinishedPreparing == nil &&
		p.TransactionHandlerID == nil && p.TransactionHandlerName == nil
}

// Apply returns a copy of o with the patch merged in and the version bumped.
// The receiver order is not modified.
func (p OrderPatch) Apply(o Order) Order {
	out := o
	if p.Status != nil {
		out.Status = *p.Status
	}
	if p.CancellationReason != nil {
		out.CancellationReason = *p.CancellationReason
	}
	if p.Priority != nil {
		out.Priority = *p.Priority
	}
	if p.IsPaid != nil {
		out.IsPaid = *p.IsPaid
	}
	if p.StartedPreparing != nil {
		t := *p.StartedPreparing
		out.StartedPreparing = &t
	}
	if p.FinishedPreparing != nil {
		t := *p.FinishedPreparing
		out.FinishedPreparing = &t
	}
	if p.TransactionHandlerID != nil {
		out.TransactionHandlerID = *p.TransactionHandlerID
	}
	if p.TransactionHandlerName != nil {
		out.TransactionHandlerName = *p.TransactionHandlerName
	}
	out.Version = o.Version + 1
	return out
}
