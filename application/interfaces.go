package application

import (
	"context"

	"stackpot/application/dto"
)

// BlockSource delivers block heights in increasing order until ctx is done
type BlockSource interface {
	Heights(ctx context.Context) <-chan uint64
}

// RewardsHandler applies stacking reward and slash reports to the pot.
// Implemented by the application layer and called by the infrastructure layer.
type RewardsHandler interface {
	HandleRewardReport(ctx context.Context, report dto.RewardReportDTO) error
}

// CommandHandler applies depositor commands to the pot
type CommandHandler interface {
	HandlePotCommand(ctx context.Context, cmd dto.PotCommandDTO) error
}
