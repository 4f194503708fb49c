package infrastructure

import (
	"fmt"

	"stackpot/domain/events"
)

const (
	subjectDeposit             = "pot.ledger.deposit"
	subjectWithdrawal          = "pot.ledger.withdrawal"
	subjectTicketIssued        = "pot.staking.ticket_issued"
	subjectWithdrawalCompleted = "pot.staking.withdrawal_completed"
	subjectYieldReported       = "pot.staking.yield_reported"
	subjectDrawExecuted        = "pot.draw.executed"
	subjectPrizeClaimed        = "pot.draw.prize_claimed"
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeDeposit:
		return subjectDeposit
	case events.EventTypeWithdrawal:
		return subjectWithdrawal
	case events.EventTypeWithdrawalTicketIssued:
		return subjectTicketIssued
	case events.EventTypeWithdrawalCompleted:
		return subjectWithdrawalCompleted
	case events.EventTypeYieldReported:
		return subjectYieldReported
	case events.EventTypeDrawExecuted:
		return subjectDrawExecuted
	case events.EventTypePrizeClaimed:
		return subjectPrizeClaimed
	default:
		return fmt.Sprintf("pot.unknown.%s", event.Type())
	}
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	switch subject {
	case subjectDeposit:
		return events.EventTypeDeposit
	case subjectWithdrawal:
		return events.EventTypeWithdrawal
	case subjectTicketIssued:
		return events.EventTypeWithdrawalTicketIssued
	case subjectWithdrawalCompleted:
		return events.EventTypeWithdrawalCompleted
	case subjectYieldReported:
		return events.EventTypeYieldReported
	case subjectDrawExecuted:
		return events.EventTypeDrawExecuted
	case subjectPrizeClaimed:
		return events.EventTypePrizeClaimed
	default:
		return events.EventType(subject)
	}
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		subjectDeposit,
		subjectWithdrawal,
		subjectTicketIssued,
		subjectWithdrawalCompleted,
		subjectYieldReported,
		subjectDrawExecuted,
		subjectPrizeClaimed,
	}
}
