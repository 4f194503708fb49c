package entities

import "fmt"

// ErrorKind classifies a pot failure independently of its numeric code
type ErrorKind string

const (
	KindInvalidAmount       ErrorKind = "invalid_amount"
	KindInsufficientBalance ErrorKind = "insufficient_balance"
	KindPoolFull            ErrorKind = "pool_full"
	KindDrawTooEarly        ErrorKind = "draw_too_early"
	KindNoParticipants      ErrorKind = "no_participants"
	KindInvalidDraw         ErrorKind = "invalid_draw"
	KindNotWinner           ErrorKind = "not_winner"
	KindAlreadyClaimed      ErrorKind = "already_claimed"
	KindNotAuthorized       ErrorKind = "not_authorized"
	KindNoWithdrawalTicket  ErrorKind = "no_withdrawal_ticket"
	KindDuplicateMessage    ErrorKind = "duplicate_message"
)

// PotError is a validation failure returned by the ledger, draw engine or staking adapter.
// Two PotErrors match under errors.Is when their kinds match, so the adapter's
// InvalidAmount (301) still satisfies errors.Is(err, ErrInvalidAmount).
type PotError struct {
	Kind    ErrorKind
	Code    uint32
	Message string
}

func (e *PotError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s (u%d)", e.Kind, e.Code)
	}
	return fmt.Sprintf("%s (u%d): %s", e.Kind, e.Code, e.Message)
}

// Is matches on kind
func (e *PotError) Is(target error) bool {
	t, ok := target.(*PotError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Withf returns a copy of the error carrying a detail message
func (e *PotError) Withf(format string, args ...any) *PotError {
	return &PotError{
		Kind:    e.Kind,
		Code:    e.Code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Pool ledger errors
var (
	ErrInvalidAmount       = &PotError{Kind: KindInvalidAmount, Code: 101}
	ErrInsufficientBalance = &PotError{Kind: KindInsufficientBalance, Code: 102}
	ErrPoolFull            = &PotError{Kind: KindPoolFull, Code: 103}
)

// Draw engine errors
var (
	ErrDrawTooEarly   = &PotError{Kind: KindDrawTooEarly, Code: 201}
	ErrNoParticipants = &PotError{Kind: KindNoParticipants, Code: 202}
	ErrInvalidDraw    = &PotError{Kind: KindInvalidDraw, Code: 203}
	ErrNotWinner      = &PotError{Kind: KindNotWinner, Code: 204}
	ErrAlreadyClaimed = &PotError{Kind: KindAlreadyClaimed, Code: 205}
)

// Staking adapter errors
var (
	ErrNotAuthorized          = &PotError{Kind: KindNotAuthorized, Code: 300}
	ErrStakingInvalidAmount   = &PotError{Kind: KindInvalidAmount, Code: 301}
	ErrNoWithdrawalTicket     = &PotError{Kind: KindNoWithdrawalTicket, Code: 306}
	ErrStakingInsufficientBal = &PotError{Kind: KindInsufficientBalance, Code: 302}
)

// ErrDuplicateMessage is returned when an inbound message id was already applied
var ErrDuplicateMessage = &PotError{Kind: KindDuplicateMessage, Code: 401}
