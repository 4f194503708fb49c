package application

import (
	"context"
	"errors"
	"fmt"

	"stackpot/application/dto"
	"stackpot/domain/entities"
	"stackpot/domain/interfaces"

	lru "github.com/hashicorp/golang-lru/v2"
	log "github.com/sirupsen/logrus"
)

const recentReportsSize = 1024

// rewardsHandler feeds reward reports into the staking adapter
type rewardsHandler struct {
	pot  interfaces.PotService
	seen *lru.Cache[string, struct{}]
}

// NewRewardsHandler creates a handler that applies each report id at most once.
// The pot persists applied ids; the cache only short-circuits recent redeliveries.
func NewRewardsHandler(pot interfaces.PotService) (RewardsHandler, error) {
	seen, err := lru.New[string, struct{}](recentReportsSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create report cache: %w", err)
	}
	return &rewardsHandler{pot: pot, seen: seen}, nil
}

// HandleRewardReport applies the report. Reports the pot rejects as invalid are
// dropped so they are not redelivered.
func (h *rewardsHandler) HandleRewardReport(ctx context.Context, report dto.RewardReportDTO) error {
	fields := log.Fields{
		"reportId": report.ReportID,
		"kind":     report.Kind,
		"amount":   report.Amount.Dec(),
		"cycle":    report.Cycle,
	}

	if report.ReportID != "" && h.seen.Contains(report.ReportID) {
		log.WithFields(fields).Info("Ignoring duplicate reward report")
		return nil
	}

	ctx = interfaces.WithInboundMessage(ctx, entities.MessageSourceRewards, report.ReportID)

	var (
		yield *interfaces.AccumulatedYield
		err   error
	)
	switch report.Kind {
	case dto.RewardReportRewards:
		yield, err = h.pot.RecordRewards(ctx, report.Amount)
	case dto.RewardReportSlash:
		yield, err = h.pot.RecordSlash(ctx, report.Amount)
	default:
		log.WithFields(fields).Warn("Dropping reward report of unknown kind")
		return nil
	}

	if err != nil {
		if errors.Is(err, entities.ErrDuplicateMessage) {
			log.WithFields(fields).Info("Ignoring reward report that was already applied")
			h.remember(report.ReportID)
			return nil
		}
		var potErr *entities.PotError
		if errors.As(err, &potErr) {
			log.WithFields(fields).WithError(err).Warn("Dropping reward report rejected by the pot")
			h.remember(report.ReportID)
			return nil
		}
		return fmt.Errorf("failed to apply %s report: %w", report.Kind, err)
	}

	h.remember(report.ReportID)

	fields["yield"] = yield.Yield.Dec()
	fields["currentValue"] = yield.CurrentValue.Dec()
	fields["inDeficit"] = yield.InDeficit
	log.WithFields(fields).Info("Applied reward report")
	return nil
}

func (h *rewardsHandler) remember(reportID string) {
	if reportID != "" {
		h.seen.Add(reportID, struct{}{})
	}
}
