package webhook

// Outcome classifies how a delivery was handled. The HTTP layer maps
// Rejected to 401 and everything else to 200, so the platform only
// redelivers what was genuinely not accepted.
type Outcome string

const (
	// OutcomeAccepted means the delivery was verified and its effect applied
	// (or ledgered as skipped for an unknown topic)
	OutcomeAccepted Outcome = "accepted"
	// OutcomeRejected means the delivery failed resolution or verification
	// and caused no state change
	OutcomeRejected Outcome = "rejected"
	// OutcomeDuplicate means an identical delivery was already processed
	OutcomeDuplicate Outcome = "duplicate"
)

// IngestCommand carries one raw delivery into the pipeline. RawBody must be
// the exact bytes received on the wire; signature verification runs over them
// before any parsing.
type IngestCommand struct {
	ShopDomain string
	Topic      string
	// EventID is the platform's delivery id header, if present
	EventID   string
	RawBody   []byte
	Signature string
}

// IngestResult reports the outcome of one delivery
type IngestResult struct {
	Outcome Outcome `json:"outcome"`
	// Reason explains a rejection; empty otherwise
	Reason string `json:"reason,omitempty"`
}

func rejected(reason string) *IngestResult {
	return &IngestResult{Outcome: OutcomeRejected, Reason: reason}
}
