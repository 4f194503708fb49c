package application

import (
	"context"
	"errors"
	"fmt"

	"stackpot/application/dto"
	"stackpot/domain/entities"
	"stackpot/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// commandHandler applies depositor commands to the pot
type commandHandler struct {
	pot interfaces.PotService
}

// NewCommandHandler creates a handler that applies each command id at most once
func NewCommandHandler(pot interfaces.PotService) CommandHandler {
	return &commandHandler{pot: pot}
}

// HandlePotCommand runs the command. Commands the pot rejects are dropped so
// they are not redelivered; only infrastructure failures are returned.
func (h *commandHandler) HandlePotCommand(ctx context.Context, cmd dto.PotCommandDTO) error {
	fields := log.Fields{
		"commandId": cmd.CommandID,
		"action":    cmd.Action,
		"principal": cmd.Principal,
	}

	ctx = interfaces.WithInboundMessage(ctx, entities.MessageSourceCommands, cmd.CommandID)

	var err error
	switch cmd.Action {
	case dto.PotCommandDeposit:
		fields["amount"] = cmd.Amount.Dec()
		_, err = h.pot.Deposit(ctx, cmd.Principal, cmd.Amount)
	case dto.PotCommandWithdraw:
		fields["amount"] = cmd.Amount.Dec()
		fields["mode"] = cmd.Mode
		_, err = h.pot.Withdraw(ctx, cmd.Principal, cmd.Amount, cmd.Mode)
	case dto.PotCommandWithdrawAll:
		fields["mode"] = cmd.Mode
		_, err = h.pot.WithdrawAll(ctx, cmd.Principal, cmd.Mode)
	case dto.PotCommandClaimPrize:
		fields["drawId"] = cmd.DrawID
		_, err = h.pot.ClaimPrize(ctx, cmd.Principal, cmd.DrawID)
	case dto.PotCommandCompleteWithdrawal:
		fields["ticketId"] = cmd.TicketID
		_, err = h.pot.CompleteWithdrawal(ctx, cmd.Principal, cmd.TicketID)
	default:
		log.WithFields(fields).Warn("Dropping command with unknown action")
		return nil
	}

	if err != nil {
		if errors.Is(err, entities.ErrDuplicateMessage) {
			log.WithFields(fields).Info("Ignoring command that was already applied")
			return nil
		}
		var potErr *entities.PotError
		if errors.As(err, &potErr) {
			fields["code"] = potErr.Code
			log.WithFields(fields).WithError(err).Warn("Dropping command rejected by the pot")
			return nil
		}
		return fmt.Errorf("failed to apply %s command: %w", cmd.Action, err)
	}

	log.WithFields(fields).Debug("Applied command")
	return nil
}
