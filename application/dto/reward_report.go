package dto

import (
	"time"

	"stackpot/domain/entities"
)

// RewardReportKind distinguishes yield from losses
type RewardReportKind string

const (
	RewardReportRewards RewardReportKind = "rewards"
	RewardReportSlash   RewardReportKind = "slash"
)

// RewardReportDTO is a stacking result reported by the staking operator
type RewardReportDTO struct {
	ReportID   string
	Kind       RewardReportKind
	Amount     entities.Amount
	Cycle      uint64
	ReportedAt time.Time
}
