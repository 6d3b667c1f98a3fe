package workflow

// Status is the derived state of one workflow step.
type Status string

const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
	StatusDone    Status = "done"
)

// Badge tags a step with the pattern it demonstrates.
type Badge string

const (
	BadgeOutbox Badge = "OUTBOX"
	BadgeInbox  Badge = "INBOX"
	BadgeSaga   Badge = "SAGA"
)

// Field is one key/value row in a step's detail payload. Raw carries the
// unmapped stored value when Value is a human-readable mapping of it.
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Raw   string `json:"raw,omitempty"`
}

// Section groups detail fields under a caption.
type Section struct {
	Title  string  `json:"title,omitempty"`
	Fields []Field `json:"fields"`
	Note   string  `json:"note,omitempty"`
}

// Detail is a step's structured payload. When the step has no evidence yet,
// Waiting holds a placeholder line and Sections is empty.
type Detail struct {
	Sections []Section `json:"sections,omitempty"`
	Waiting  string    `json:"waiting,omitempty"`
}

// Step is one derived entry of the workflow view. Index is the step's stable
// identity (0-based, fixed causal order).
type Step struct {
	Index     int     `json:"index"`
	Title     string  `json:"title"`
	Status    Status  `json:"status"`
	Badges    []Badge `json:"badges"`
	Rationale string  `json:"rationale"`
	Detail    Detail  `json:"detail"`
}

// StepCount is the fixed number of workflow steps.
const StepCount = 7

// Static per-step text. Titles get a timestamp suffix at derivation time when
// evidence for the step exists; rationales never vary with data.
var stepTitles = [StepCount]string{
	"API: one transaction (orders + outbox)",
	"Relay: claimed outbox rows and published to the broker",
	"payment-service: inbox dedup + local payment transaction",
	"payment-service: wrote PaymentAuthorized to the outbox",
	"ticket-service: inbox dedup + ticket issue",
	"ticket-service: wrote TicketIssued to the outbox",
	"order-service: inbox dedup + final order status",
}

var stepRationales = [StepCount]string{
	"Transactional outbox: the order row and its outbox event commit atomically in one transaction.",
	"A relay separate from the API reads the outbox and publishes events, so the API never depends on the broker and no event is lost on a crash.",
	"The inbox table shields the consumer from broker redeliveries. Saga: the service reacts to an event and publishes the next one.",
	"Saga choreography: the next action is triggered by an event, with no central orchestrator.",
	"The ticket service runs its local step autonomously and publishes TicketIssued.",
	"TicketIssued closes the saga; the order service reflects the final order state.",
	"The order becomes ready only after TicketIssued is processed, with no two-phase commit.",
}

var stepBadges = [StepCount][]Badge{
	{BadgeOutbox},
	{BadgeOutbox},
	{BadgeInbox, BadgeSaga},
	{BadgeOutbox, BadgeSaga},
	{BadgeInbox, BadgeSaga},
	{BadgeOutbox, BadgeSaga},
	{BadgeInbox, BadgeSaga},
}

// missingValue renders absent detail values.
const missingValue = "—"

func orValue(v string) string {
	if v == "" {
		return missingValue
	}
	return v
}
