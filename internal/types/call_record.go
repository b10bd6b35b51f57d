package types

// CallRecord represents a finished call for DynamoDB persistence
type CallRecord struct {
	DateKey          string  `json:"dateKey" dynamodbav:"DateKey"` // YYYY-MM-DD (partition key)
	CallID           string  `json:"callId" dynamodbav:"CallID"`   // sort key
	AgentID          string  `json:"agentId,omitempty" dynamodbav:"AgentID"`
	ServiceNumber    string  `json:"serviceNumber" dynamodbav:"ServiceNumber"`
	CustomerID       int     `json:"customerId,omitempty" dynamodbav:"CustomerID"`
	CustomerName     string  `json:"customerName,omitempty" dynamodbav:"CustomerName"`
	StartTime        string  `json:"startTime" dynamodbav:"StartTime"` // RFC3339
	EndTime          string  `json:"endTime" dynamodbav:"EndTime"`     // RFC3339
	WaitTime         float64 `json:"waitTime" dynamodbav:"WaitTime"`   // seconds
	CallDuration     float64 `json:"callDuration" dynamodbav:"CallDuration"`
	HoldTime         float64 `json:"holdTime" dynamodbav:"HoldTime"`
	ForcedByCustomer bool    `json:"forcedByCustomer" dynamodbav:"ForcedByCustomer"`
	Category         string  `json:"category,omitempty" dynamodbav:"Category"`
	Outcome          string  `json:"outcome,omitempty" dynamodbav:"Outcome"`
}
