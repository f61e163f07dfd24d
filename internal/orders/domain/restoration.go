package domain

// RestorationOutcome classifies what happened to one line item's stock
// restoration during cancellation.
type RestorationOutcome string

const (
	RestorationRestored RestorationOutcome = "restored"
	RestorationNotFound RestorationOutcome = "not_found"
	RestorationFailed   RestorationOutcome = "failed"
)

// ItemRestoration is the per-item report returned by cancellation. Restoration
// is best-effort: a half-restored cancellation is preferable to none, so
// failed items are reported here instead of aborting the whole operation.
type ItemRestoration struct {
	ProductID string             `json:"product_id"`
	Quantity  int                `json:"quantity"`
	Outcome   RestorationOutcome `json:"outcome"`
	Detail    string             `json:"detail,omitempty"`
}
