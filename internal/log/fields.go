package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration"
	FieldOperation     = "operation"
	FieldUserID        = "user_id"
	FieldPurchaseID    = "purchase_id"
	FieldInstallmentID = "installment_id"
	FieldStatementID   = "statement_id"
	FieldCreditCardID  = "credit_card_id"
	FieldPeriod        = "period"
	FieldAmountCents   = "amount_cents"
	FieldInstallments  = "installments"
	FieldEventType     = "event_type"
	FieldEventID       = "event_id"
	FieldAttempt       = "attempt"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentPurchase  = "purchase"
	ComponentStatement = "statement"
	ComponentCard      = "card"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentRateLimit = "rate_limit"
	ComponentScheduler = "scheduler"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpAssign   = "assign"
	OpExport   = "export"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)
