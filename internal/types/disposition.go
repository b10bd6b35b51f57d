package types

import "time"

// DispositionCategory is a closed category code for post-call classification
type DispositionCategory string

const (
	CategorySubscription DispositionCategory = "subscription"
	CategoryDelivery     DispositionCategory = "delivery"
	CategoryPayment      DispositionCategory = "payment"
	CategoryArticleSale  DispositionCategory = "article_sale"
	CategoryComplaint    DispositionCategory = "complaint"
	CategoryGeneral      DispositionCategory = "general"
)

// DispositionRecord is the committed outcome of a finished call
type DispositionRecord struct {
	Category         DispositionCategory `json:"category"`
	Outcome          string              `json:"outcome"`
	Notes            string              `json:"notes,omitempty"`
	FollowUpRequired bool                `json:"followUpRequired"`
	FollowUpDate     string              `json:"followUpDate,omitempty"` // YYYY-MM-DD
	FollowUpNotes    string              `json:"followUpNotes,omitempty"`
	CallDuration     float64             `json:"callDuration"` // seconds
	Timestamp        time.Time           `json:"timestamp"`
}
