package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"stackpot/application/dto"
	"stackpot/domain/entities"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingCommandHandler struct {
	commands []dto.PotCommandDTO
	err      error
}

func (h *recordingCommandHandler) HandlePotCommand(ctx context.Context, cmd dto.PotCommandDTO) error {
	h.commands = append(h.commands, cmd)
	return h.err
}

func marshalCommand(t *testing.T, msg PotCommandMessage) []byte {
	t.Helper()
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	return data
}

func TestCommandListener_DecodesCommands(t *testing.T) {
	id := uuid.NewString()

	tests := []struct {
		name string
		msg  PotCommandMessage
		want dto.PotCommandDTO
	}{
		{
			name: "deposit",
			msg:  PotCommandMessage{CommandID: id, Action: "deposit", Principal: "SP1ALICE", Amount: "2500000"},
			want: dto.PotCommandDTO{CommandID: id, Action: dto.PotCommandDeposit, Principal: "SP1ALICE", Amount: entities.NewAmount(2_500_000)},
		},
		{
			name: "instant withdraw",
			msg:  PotCommandMessage{CommandID: id, Action: "withdraw", Principal: "SP1ALICE", Amount: "10", Mode: "instant"},
			want: dto.PotCommandDTO{CommandID: id, Action: dto.PotCommandWithdraw, Principal: "SP1ALICE", Amount: entities.NewAmount(10), Mode: entities.WithdrawalModeInstant},
		},
		{
			name: "deferred withdraw all",
			msg:  PotCommandMessage{CommandID: id, Action: "withdraw_all", Principal: "SP1ALICE", Mode: "deferred"},
			want: dto.PotCommandDTO{CommandID: id, Action: dto.PotCommandWithdrawAll, Principal: "SP1ALICE", Mode: entities.WithdrawalModeDeferred},
		},
		{
			name: "claim prize",
			msg:  PotCommandMessage{CommandID: id, Action: "claim_prize", Principal: "SP1ALICE", DrawID: 4},
			want: dto.PotCommandDTO{CommandID: id, Action: dto.PotCommandClaimPrize, Principal: "SP1ALICE", DrawID: 4},
		},
		{
			name: "complete withdrawal",
			msg:  PotCommandMessage{CommandID: id, Action: "complete_withdrawal", Principal: "SP1ALICE", TicketID: 2},
			want: dto.PotCommandDTO{CommandID: id, Action: dto.PotCommandCompleteWithdrawal, Principal: "SP1ALICE", TicketID: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := &recordingCommandHandler{}
			metrics := &countingReceiveMetrics{}
			listener := NewCommandListener(handler, metrics)

			require.NoError(t, listener.HandlePotCommand(context.Background(), marshalCommand(t, tt.msg)))
			require.Len(t, handler.commands, 1)
			got := handler.commands[0]
			assert.True(t, got.IssuedAt.IsZero())
			got.IssuedAt = tt.want.IssuedAt
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 1, metrics.received["pot_command"])
		})
	}
}

func TestCommandListener_DropsBadMessages(t *testing.T) {
	valid := PotCommandMessage{CommandID: uuid.NewString(), Action: "withdraw", Principal: "SP1ALICE", Amount: "10", Mode: "instant"}

	badID := valid
	badID.CommandID = "cmd-1"
	badAction := valid
	badAction.Action = "stake_more"
	noPrincipal := valid
	noPrincipal.Principal = ""
	badAmount := valid
	badAmount.Amount = "ten"
	badMode := valid
	badMode.Mode = "eventually"
	missingMode := PotCommandMessage{CommandID: uuid.NewString(), Action: "withdraw_all", Principal: "SP1ALICE"}

	tests := []struct {
		name string
		data []byte
	}{
		{"not json", []byte("{not json")},
		{"invalid command id", marshalCommand(t, badID)},
		{"unknown action", marshalCommand(t, badAction)},
		{"missing principal", marshalCommand(t, noPrincipal)},
		{"invalid amount", marshalCommand(t, badAmount)},
		{"unknown mode", marshalCommand(t, badMode)},
		{"withdraw all without mode", marshalCommand(t, missingMode)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := &recordingCommandHandler{}
			listener := NewCommandListener(handler, nil)

			assert.NoError(t, listener.HandlePotCommand(context.Background(), tt.data))
			assert.Empty(t, handler.commands)
		})
	}
}

func TestCommandListener_PropagatesHandlerErrors(t *testing.T) {
	handler := &recordingCommandHandler{err: errors.New("database unavailable")}
	listener := NewCommandListener(handler, nil)

	msg := PotCommandMessage{CommandID: uuid.NewString(), Action: "deposit", Principal: "SP1ALICE", Amount: "1000000"}
	err := listener.HandlePotCommand(context.Background(), marshalCommand(t, msg))
	assert.ErrorContains(t, err, "database unavailable")
}
