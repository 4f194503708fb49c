package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"stackpot/application"
	"stackpot/application/dto"
	"stackpot/domain/entities"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// PotCommandMessage is the wire format on the commands subject
type PotCommandMessage struct {
	CommandID string    `json:"command_id"`
	Action    string    `json:"action"`
	Principal string    `json:"principal"`
	Amount    string    `json:"amount,omitempty"` // micro-STX, base 10
	Mode      string    `json:"mode,omitempty"`
	DrawID    uint64    `json:"draw_id,omitempty"`
	TicketID  uint64    `json:"ticket_id,omitempty"`
	IssuedAt  time.Time `json:"issued_at"`
}

// CommandListener decodes depositor commands from NATS and hands them to the application layer
type CommandListener struct {
	handler application.CommandHandler
	metrics ReceiveMetrics
}

// NewCommandListener creates a new command listener
func NewCommandListener(handler application.CommandHandler, metrics ReceiveMetrics) *CommandListener {
	return &CommandListener{
		handler: handler,
		metrics: metrics,
	}
}

// HandlePotCommand processes one raw message. Malformed messages are dropped.
func (l *CommandListener) HandlePotCommand(ctx context.Context, data []byte) error {
	if l.metrics != nil {
		l.metrics.RecordNATSMessageReceived("pot_command")
	}

	var msg PotCommandMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		log.WithError(err).Error("Dropping malformed pot command")
		return nil
	}

	cmd, err := toPotCommandDTO(msg)
	if err != nil {
		log.WithFields(log.Fields{
			"commandId": msg.CommandID,
			"action":    msg.Action,
			"error":     err,
		}).Error("Dropping invalid pot command")
		return nil
	}

	return l.handler.HandlePotCommand(ctx, cmd)
}

func toPotCommandDTO(msg PotCommandMessage) (dto.PotCommandDTO, error) {
	if _, err := uuid.Parse(msg.CommandID); err != nil {
		return dto.PotCommandDTO{}, fmt.Errorf("invalid command id %q: %w", msg.CommandID, err)
	}
	action := dto.PotCommandAction(msg.Action)
	if !action.Valid() {
		return dto.PotCommandDTO{}, fmt.Errorf("unknown action %q", msg.Action)
	}
	if msg.Principal == "" {
		return dto.PotCommandDTO{}, fmt.Errorf("principal is required")
	}

	cmd := dto.PotCommandDTO{
		CommandID: msg.CommandID,
		Action:    action,
		Principal: msg.Principal,
		DrawID:    msg.DrawID,
		TicketID:  msg.TicketID,
		IssuedAt:  msg.IssuedAt,
	}

	switch action {
	case dto.PotCommandDeposit, dto.PotCommandWithdraw:
		amount, err := entities.ParseAmount(msg.Amount)
		if err != nil {
			return dto.PotCommandDTO{}, fmt.Errorf("invalid amount: %w", err)
		}
		cmd.Amount = amount
	}

	switch action {
	case dto.PotCommandWithdraw, dto.PotCommandWithdrawAll:
		mode := entities.WithdrawalMode(msg.Mode)
		if !mode.Valid() {
			return dto.PotCommandDTO{}, fmt.Errorf("unknown withdrawal mode %q", msg.Mode)
		}
		cmd.Mode = mode
	}

	return cmd, nil
}
