package domain

// invoiceTransitions and quoteTransitions encode the per-type lifecycle
// graphs. paid is terminal; overdue may still be settled.
var invoiceTransitions = map[Status][]Status{
	StatusConcept: {StatusSent},
	StatusSent:    {StatusPaid, StatusOverdue},
	StatusOverdue: {StatusPaid},
	StatusPaid:    {},
}

var quoteTransitions = map[Status][]Status{
	StatusConcept:  {StatusSent},
	StatusSent:     {StatusAccepted, StatusRejected},
	StatusAccepted: {},
	StatusRejected: {},
}

// StatusDomain returns the valid statuses for a document type.
func StatusDomain(t Type) []Status {
	switch t {
	case TypeInvoice:
		return []Status{StatusConcept, StatusSent, StatusPaid, StatusOverdue}
	case TypeQuote:
		return []Status{StatusConcept, StatusSent, StatusAccepted, StatusRejected}
	}
	return nil
}

// InDomain reports whether the status belongs to the type's domain.
func InDomain(t Type, status Status) bool {
	for _, valid := range StatusDomain(t) {
		if valid == status {
			return true
		}
	}
	return false
}

// CanTransition reports whether a document of type t may move from one
// status to another.
func CanTransition(t Type, from, to Status) bool {
	var graph map[Status][]Status
	switch t {
	case TypeInvoice:
		graph = invoiceTransitions
	case TypeQuote:
		graph = quoteTransitions
	default:
		return false
	}

	for _, next := range graph[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns ErrInvalidStatus when the target is outside
// the type's domain and ErrInvalidTransition when the move is not allowed.
func ValidateTransition(t Type, from, to Status) error {
	if !InDomain(t, to) {
		return ErrInvalidStatus
	}
	if !CanTransition(t, from, to) {
		return ErrInvalidTransition
	}
	return nil
}
