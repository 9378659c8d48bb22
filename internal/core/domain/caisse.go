package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Caisse is a physical cash register at a point of collection. Sessions
// reference it; its location never changes once created.
type Caisse struct {
	CaisseID string `json:"caisseID"` // Primary Key (UUID)
	Name     string `json:"name"`
	Location string `json:"location"` // immutable after creation
	IsActive bool   `json:"isActive"`
	AuditFields
}

// SessionStatus is the lifecycle state of a register session.
type SessionStatus string

const (
	SessionOpen      SessionStatus = "OPEN"
	SessionSuspended SessionStatus = "SUSPENDED"
	SessionClosed    SessionStatus = "CLOSED"
)

// CaisseSession is one custody period of a register by a single user.
// At most one non-closed session may exist per caisse and per user.
type CaisseSession struct {
	SessionID string        `json:"sessionID"` // Primary Key (UUID)
	CaisseID  string        `json:"caisseID"`  // FK -> caisses
	UserID    string        `json:"userID"`    // custodian of the register
	OpenedBy  string        `json:"openedBy"`
	ClosedBy  string        `json:"closedBy,omitempty"`
	Status    SessionStatus `json:"status"`

	OpeningAmount decimal.Decimal `json:"openingAmount"`
	// ClosingAmount is what the operator declared at close; TotalCashCounted is
	// what the denomination count produced. They are kept distinct so the
	// difference is computed from the true declared value.
	ClosingAmount         decimal.Decimal `json:"closingAmount"`
	ExpectedClosingAmount decimal.Decimal `json:"expectedClosingAmount"`
	TotalCashCounted      decimal.Decimal `json:"totalCashCounted"`
	CashDifference        decimal.Decimal `json:"cashDifference"`

	SourceCoffreID      *string `json:"sourceCoffreID,omitempty"`      // opening float origin
	DestinationCoffreID *string `json:"destinationCoffreID,omitempty"` // closing deposit target

	OpenedAt time.Time  `json:"openedAt"`
	ClosedAt *time.Time `json:"closedAt,omitempty"`
	AuditFields

	// Denominations are owned by the session: created with it at close,
	// deleted with it, never independently.
	Denominations []SessionDenomination `json:"denominations,omitempty"`
}

// SessionDenomination is one counted note/coin line of a closed session.
type SessionDenomination struct {
	SessionID string          `json:"sessionID"`
	FaceValue decimal.Decimal `json:"faceValue"`
	Quantity  int64           `json:"quantity"`
	LineTotal decimal.Decimal `json:"lineTotal"` // FaceValue * Quantity
}
