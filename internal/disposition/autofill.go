package disposition

import (
	"strings"
	"time"

	"github.com/bindinc/agentdesk/internal/types"
)

// HistorySource reads the contact moments recorded during the call
type HistorySource interface {
	HistorySince(customerID int, cutoff time.Time) []types.ContactMoment
}

// Suggestion is a prefill for the disposition form, derived from what
// actually happened during the call. Never committed on its own.
type Suggestion struct {
	Category types.DispositionCategory
	Outcome  string
	Notes    string
}

// Suggest inspects the contact moments recorded since the call started and
// proposes a category and outcome. Anonymous calls produce an empty
// suggestion.
func (w *Workflow) Suggest(last *types.LastCallSession) Suggestion {
	if last == nil || last.CustomerID == 0 || last.StartTime == nil {
		return Suggestion{}
	}

	moments := w.history.HistorySince(last.CustomerID, *last.StartTime)
	if len(moments) == 0 {
		return Suggestion{}
	}

	match := func(momentType types.ContactMomentType, needle string) bool {
		for _, m := range moments {
			if m.Type == momentType || strings.Contains(m.Description, needle) {
				return true
			}
		}
		return false
	}

	var suggestion Suggestion
	notes := []string{}

	switch {
	case match("subscription_created", "Nieuw abonnement"):
		suggestion = Suggestion{Category: types.CategorySubscription, Outcome: "new_subscription"}
		notes = append(notes, "Nieuw abonnement afgesloten")
	case match("subscription_cancelled", "opgezegd"):
		suggestion = Suggestion{Category: types.CategorySubscription, Outcome: "subscription_cancelled"}
		notes = append(notes, "Abonnement opgezegd")
	case match("subscription_changed", "gewijzigd"):
		suggestion = Suggestion{Category: types.CategorySubscription, Outcome: "subscription_changed"}
		notes = append(notes, "Abonnement gewijzigd")
	case match("article_sold", "Artikel verkocht"):
		suggestion = Suggestion{Category: types.CategoryArticleSale, Outcome: "article_sold"}
		notes = append(notes, "Artikel verkocht")
	case match("magazine_resent", "opnieuw verzonden"):
		suggestion = Suggestion{Category: types.CategoryDelivery, Outcome: "magazine_resent"}
		notes = append(notes, "Editie opnieuw verzonden")
	case match("delivery_updated", "bezorg"):
		suggestion = Suggestion{Category: types.CategoryDelivery, Outcome: "delivery_prefs_updated"}
		notes = append(notes, "Bezorgvoorkeuren aangepast")
	case match("payment_updated", "IBAN"), match("payment_updated", "betaling"):
		suggestion = Suggestion{Category: types.CategoryPayment, Outcome: "iban_updated"}
		notes = append(notes, "Betalingsgegevens bijgewerkt")
	default:
		suggestion = Suggestion{Category: types.CategoryGeneral, Outcome: "info_provided"}
		notes = append(notes, "Informatie verstrekt")
	}

	for _, m := range moments {
		if m.Description == "" {
			continue
		}
		duplicate := false
		for _, n := range notes {
			if n == m.Description {
				duplicate = true
				break
			}
		}
		if !duplicate {
			notes = append(notes, m.Description)
		}
	}

	suggestion.Notes = strings.Join(notes, ". ")
	return suggestion
}
