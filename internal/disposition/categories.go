package disposition

import "github.com/bindinc/agentdesk/internal/types"

// Outcome is one allowed result within a category
type Outcome struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// Category groups the fixed outcome list for one disposition category
type Category struct {
	Code     types.DispositionCategory `json:"code"`
	Label    string                    `json:"label"`
	Outcomes []Outcome                 `json:"outcomes"`
}

// categoryTable is the closed disposition taxonomy
var categoryTable = []Category{
	{
		Code:  types.CategorySubscription,
		Label: "Abonnement",
		Outcomes: []Outcome{
			{Code: "new_subscription", Label: "Nieuw abonnement afgesloten"},
			{Code: "subscription_changed", Label: "Abonnement gewijzigd"},
			{Code: "subscription_cancelled", Label: "Abonnement opgezegd"},
			{Code: "subscription_paused", Label: "Abonnement gepauzeerd"},
			{Code: "info_provided", Label: "Informatie verstrekt"},
		},
	},
	{
		Code:  types.CategoryDelivery,
		Label: "Bezorging",
		Outcomes: []Outcome{
			{Code: "delivery_issue_resolved", Label: "Bezorgprobleem opgelost"},
			{Code: "magazine_resent", Label: "Editie opnieuw verzonden"},
			{Code: "delivery_prefs_updated", Label: "Bezorgvoorkeuren aangepast"},
			{Code: "escalated_delivery", Label: "Geëscaleerd naar bezorging"},
		},
	},
	{
		Code:  types.CategoryPayment,
		Label: "Betaling",
		Outcomes: []Outcome{
			{Code: "payment_resolved", Label: "Betaling afgehandeld"},
			{Code: "payment_plan_arranged", Label: "Betalingsregeling getroffen"},
			{Code: "iban_updated", Label: "IBAN gegevens bijgewerkt"},
			{Code: "escalated_finance", Label: "Geëscaleerd naar financiën"},
		},
	},
	{
		Code:  types.CategoryArticleSale,
		Label: "Artikel Verkoop",
		Outcomes: []Outcome{
			{Code: "article_sold", Label: "Artikel verkocht"},
			{Code: "quote_provided", Label: "Offerte verstrekt"},
			{Code: "no_sale", Label: "Geen verkoop"},
		},
	},
	{
		Code:  types.CategoryComplaint,
		Label: "Klacht",
		Outcomes: []Outcome{
			{Code: "complaint_resolved", Label: "Klacht opgelost"},
			{Code: "complaint_escalated", Label: "Klacht geëscaleerd"},
			{Code: "callback_scheduled", Label: "Terugbelafspraak gemaakt"},
		},
	},
	{
		Code:  types.CategoryGeneral,
		Label: "Algemeen",
		Outcomes: []Outcome{
			{Code: "info_provided", Label: "Informatie verstrekt"},
			{Code: "transferred", Label: "Doorverbonden"},
			{Code: "customer_hung_up", Label: "Klant opgehangen"},
			{Code: "wrong_number", Label: "Verkeerd verbonden"},
			{Code: "no_answer_needed", Label: "Geen actie vereist"},
		},
	},
}

// Categories returns the taxonomy in its fixed order
func Categories() []Category {
	return categoryTable
}

// FindCategory returns the category for a code
func FindCategory(code types.DispositionCategory) (Category, bool) {
	for _, c := range categoryTable {
		if c.Code == code {
			return c, true
		}
	}
	return Category{}, false
}

// OutcomeAllowed reports whether the outcome code belongs to the category
func OutcomeAllowed(category types.DispositionCategory, outcome string) bool {
	c, ok := FindCategory(category)
	if !ok {
		return false
	}
	for _, o := range c.Outcomes {
		if o.Code == outcome {
			return true
		}
	}
	return false
}

// OutcomeLabel resolves the display label for an outcome code
func OutcomeLabel(category types.DispositionCategory, outcome string) string {
	c, ok := FindCategory(category)
	if !ok {
		return outcome
	}
	for _, o := range c.Outcomes {
		if o.Code == outcome {
			return o.Label
		}
	}
	return outcome
}
