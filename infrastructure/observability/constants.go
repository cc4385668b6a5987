package observability

// Metric name prefix
const MetricPrefix = "casino"

// Metric names
const (
	WagersTotal              = MetricPrefix + "_wagers_total"
	WageredAmountTotal       = MetricPrefix + "_wagered_amount_total"
	PaidAmountTotal          = MetricPrefix + "_paid_amount_total"
	BalanceTransactionsTotal = MetricPrefix + "_balance_transactions_total"
	VersionConflictsTotal    = MetricPrefix + "_ledger_version_conflicts_total"
	RetriesExhaustedTotal    = MetricPrefix + "_ledger_retries_exhausted_total"
	OperationDuration        = MetricPrefix + "_ledger_operation_duration_seconds"
)

// Label keys
const (
	LabelGame            = "game"
	LabelOutcome         = "outcome"
	LabelOperation       = "operation"
	LabelResult          = "result"
	LabelTransactionType = "transaction_type"
)

// ResultOK labels an operation that committed
const ResultOK = "ok"
