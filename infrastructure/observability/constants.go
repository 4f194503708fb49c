package observability

// Metric name prefixes
const (
	MetricPrefix = "stackpot"
)

// Metric names
const (
	// Pot metrics
	PotOperationsTotal    = MetricPrefix + ".pot.operations_total"
	PotTotalBalance       = MetricPrefix + ".pot.total_balance"
	PotStakedValue        = MetricPrefix + ".pot.staked_value"
	PotActiveParticipants = MetricPrefix + ".pot.active_participants"
	DrawsTotal            = MetricPrefix + ".draws.total"
	DrawParticipants      = MetricPrefix + ".draws.participants"
	EntropyRequestsTotal  = MetricPrefix + ".entropy.requests_total"

	// NATS metrics
	NATSMessagesReceivedTotal  = MetricPrefix + ".nats.messages_received_total"
	NATSMessagesPublishedTotal = MetricPrefix + ".nats.messages_published_total"
)

// Label keys
const (
	LabelOperation = "operation"
	LabelOutcome   = "outcome"
	LabelEventType = "event_type"
	LabelCacheHit  = "cache_hit"
)
