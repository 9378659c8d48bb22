package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Caisse maps the caisses table.
type Caisse struct {
	CaisseID string `json:"caisseID"`
	Name     string `json:"name"`
	Location string `json:"location"`
	IsActive bool   `json:"isActive"`
	AuditFields
}

// SessionStatus mirrors the session status enum column.
type SessionStatus string

const (
	SessionOpen      SessionStatus = "OPEN"
	SessionSuspended SessionStatus = "SUSPENDED"
	SessionClosed    SessionStatus = "CLOSED"
)

// CaisseSession maps the caisse_sessions table.
type CaisseSession struct {
	SessionID             string          `json:"sessionID"`
	CaisseID              string          `json:"caisseID"`
	UserID                string          `json:"userID"`
	OpenedBy              string          `json:"openedBy"`
	ClosedBy              string          `json:"closedBy"`
	Status                SessionStatus   `json:"status"`
	OpeningAmount         decimal.Decimal `json:"openingAmount"`
	ClosingAmount         decimal.Decimal `json:"closingAmount"`
	ExpectedClosingAmount decimal.Decimal `json:"expectedClosingAmount"`
	TotalCashCounted      decimal.Decimal `json:"totalCashCounted"`
	CashDifference        decimal.Decimal `json:"cashDifference"`
	SourceCoffreID        *string         `json:"sourceCoffreID"`
	DestinationCoffreID   *string         `json:"destinationCoffreID"`
	OpenedAt              time.Time       `json:"openedAt"`
	ClosedAt              *time.Time      `json:"closedAt"`
	AuditFields
}

// CaisseSessionDenomination maps the caisse_session_denominations table.
// Rows live and die with their session.
type CaisseSessionDenomination struct {
	SessionID string          `json:"sessionID"`
	FaceValue decimal.Decimal `json:"faceValue"`
	Quantity  int64           `json:"quantity"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}
