package types

import (
	"strings"
	"time"
)

// Customer is the narrow view of a customer record the workstation needs.
// Full customer/subscription CRUD lives in the customer subsystem.
type Customer struct {
	ID         int    `json:"id"`
	Initials   string `json:"initials,omitempty"`
	FirstName  string `json:"firstName"`
	MiddleName string `json:"middleName,omitempty"`
	LastName   string `json:"lastName"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
}

// DisplayName formats the caller name shown in the session bar
func (c Customer) DisplayName() string {
	first := c.Initials
	if first == "" {
		first = c.FirstName
	}
	parts := []string{first}
	if c.MiddleName != "" {
		parts = append(parts, c.MiddleName)
	}
	parts = append(parts, c.LastName)
	return strings.TrimSpace(strings.Join(parts, " "))
}

// ContactMomentType classifies a contact-history entry
type ContactMomentType string

const (
	MomentCallIdentified      ContactMomentType = "call_identified"
	MomentCallHold            ContactMomentType = "call_hold"
	MomentCallResumed         ContactMomentType = "call_resumed"
	MomentCallEndedByAgent    ContactMomentType = "call_ended_by_agent"
	MomentCallEndedByCustomer ContactMomentType = "call_ended_by_customer"
	MomentCallDisposition     ContactMomentType = "call_disposition"
	MomentFollowUpScheduled   ContactMomentType = "follow_up_scheduled"
	MomentNote                ContactMomentType = "note"
)

// ContactMoment is one contact-history entry on a customer
type ContactMoment struct {
	ID          string            `json:"id"`
	CustomerID  int               `json:"customerId"`
	Type        ContactMomentType `json:"type"`
	Description string            `json:"description"`
	Timestamp   time.Time         `json:"timestamp"`
}

// ServiceNumbers maps service-number codes to their spoken labels
var ServiceNumbers = map[string]string{
	"AVROBODE":  "AVROBODE SERVICE",
	"MIKROGIDS": "MIKROGIDS SERVICE",
	"NCRVGIDS":  "NCRVGIDS SERVICE",
	"ALGEMEEN":  "ALGEMEEN SERVICE",
}

// ServiceNumberCodes returns the catalog codes in a stable order
func ServiceNumberCodes() []string {
	return []string{"AVROBODE", "MIKROGIDS", "NCRVGIDS", "ALGEMEEN"}
}
