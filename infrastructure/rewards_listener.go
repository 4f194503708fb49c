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

// RewardReportMessage is the wire format on the rewards subject
type RewardReportMessage struct {
	ReportID   string    `json:"report_id"`
	Kind       string    `json:"kind"`
	Amount     string    `json:"amount"` // micro-STX, base 10
	Cycle      uint64    `json:"cycle"`
	ReportedAt time.Time `json:"reported_at"`
}

// ReceiveMetrics records inbound messages
type ReceiveMetrics interface {
	RecordNATSMessageReceived(eventType string)
}

// RewardsListener decodes reward reports from NATS and hands them to the application layer
type RewardsListener struct {
	handler application.RewardsHandler
	metrics ReceiveMetrics
}

// NewRewardsListener creates a new rewards listener
func NewRewardsListener(handler application.RewardsHandler, metrics ReceiveMetrics) *RewardsListener {
	return &RewardsListener{
		handler: handler,
		metrics: metrics,
	}
}

// HandleRewardReport processes one raw message. Malformed messages are dropped
// since redelivery cannot fix them.
func (l *RewardsListener) HandleRewardReport(ctx context.Context, data []byte) error {
	if l.metrics != nil {
		l.metrics.RecordNATSMessageReceived("reward_report")
	}

	var msg RewardReportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		log.WithError(err).Error("Dropping malformed reward report")
		return nil
	}

	report, err := toRewardReportDTO(msg)
	if err != nil {
		log.WithFields(log.Fields{
			"reportId": msg.ReportID,
			"error":    err,
		}).Error("Dropping invalid reward report")
		return nil
	}

	return l.handler.HandleRewardReport(ctx, report)
}

func toRewardReportDTO(msg RewardReportMessage) (dto.RewardReportDTO, error) {
	if _, err := uuid.Parse(msg.ReportID); err != nil {
		return dto.RewardReportDTO{}, fmt.Errorf("invalid report id %q: %w", msg.ReportID, err)
	}

	kind := dto.RewardReportKind(msg.Kind)
	if kind != dto.RewardReportRewards && kind != dto.RewardReportSlash {
		return dto.RewardReportDTO{}, fmt.Errorf("unknown report kind %q", msg.Kind)
	}

	amount, err := entities.ParseAmount(msg.Amount)
	if err != nil {
		return dto.RewardReportDTO{}, fmt.Errorf("invalid amount: %w", err)
	}

	return dto.RewardReportDTO{
		ReportID:   msg.ReportID,
		Kind:       kind,
		Amount:     amount,
		Cycle:      msg.Cycle,
		ReportedAt: msg.ReportedAt,
	}, nil
}
