package entities

import "time"

// MessageSource names the inbound stream a message arrived on
type MessageSource string

const (
	MessageSourceRewards  MessageSource = "rewards"
	MessageSourceCommands MessageSource = "commands"
)

// ProcessedMessage records that an inbound message has been applied. It is
// written in the same transaction as the message's effect, so a redelivery
// after a crash is recognised instead of applied twice.
type ProcessedMessage struct {
	ID          string        `db:"message_id"`
	Source      MessageSource `db:"source"`
	Block       uint64        `db:"block"`
	ProcessedAt time.Time     `db:"processed_at"`
}
