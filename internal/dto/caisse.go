package dto

import (
	"time"

	"github.com/clinicore/treasury-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateCaisseRequest defines the payload for registering a new caisse.
type CreateCaisseRequest struct {
	Name     string `json:"name" binding:"required"`
	Location string `json:"location" binding:"required"`
}

// CaisseResponse defines the data returned for a caisse.
type CaisseResponse struct {
	CaisseID  string    `json:"caisseID"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToCaisseResponse converts a domain.Caisse to CaisseResponse DTO.
func ToCaisseResponse(c *domain.Caisse) CaisseResponse {
	return CaisseResponse{
		CaisseID:  c.CaisseID,
		Name:      c.Name,
		Location:  c.Location,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
	}
}

// DenominationLine is one counted (face value, quantity) pair.
type DenominationLine struct {
	FaceValue decimal.Decimal `json:"faceValue" binding:"required"`
	Quantity  int64           `json:"quantity" binding:"min=0"`
}

// OpenSessionRequest defines the payload for opening a register session.
// UserID is the custodian; the authenticated actor becomes opened_by.
type OpenSessionRequest struct {
	CaisseID       string          `json:"caisseID" binding:"required"`
	UserID         string          `json:"userID" binding:"required"`
	OpeningAmount  decimal.Decimal `json:"openingAmount"`
	SourceCoffreID *string         `json:"sourceCoffreID,omitempty"`
}

// CloseSessionRequest defines the payload for closing a register session.
type CloseSessionRequest struct {
	Denominations         []DenominationLine `json:"denominations" binding:"required"`
	DeclaredClosingAmount decimal.Decimal    `json:"declaredClosingAmount"`
	DestinationCoffreID   *string            `json:"destinationCoffreID,omitempty"`
}

// SessionDenominationResponse is one persisted denomination row.
type SessionDenominationResponse struct {
	FaceValue decimal.Decimal `json:"faceValue"`
	Quantity  int64           `json:"quantity"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// SessionResponse defines the data returned for a register session.
type SessionResponse struct {
	SessionID             string                        `json:"sessionID"`
	CaisseID              string                        `json:"caisseID"`
	UserID                string                        `json:"userID"`
	OpenedBy              string                        `json:"openedBy"`
	ClosedBy              string                        `json:"closedBy,omitempty"`
	Status                string                        `json:"status"`
	OpeningAmount         decimal.Decimal               `json:"openingAmount"`
	ClosingAmount         decimal.Decimal               `json:"closingAmount"`
	ExpectedClosingAmount decimal.Decimal               `json:"expectedClosingAmount"`
	TotalCashCounted      decimal.Decimal               `json:"totalCashCounted"`
	CashDifference        decimal.Decimal               `json:"cashDifference"`
	OpenedAt              time.Time                     `json:"openedAt"`
	ClosedAt              *time.Time                    `json:"closedAt,omitempty"`
	Denominations         []SessionDenominationResponse `json:"denominations,omitempty"`
}

// ToSessionResponse converts a domain.CaisseSession to SessionResponse DTO.
func ToSessionResponse(s *domain.CaisseSession) SessionResponse {
	resp := SessionResponse{
		SessionID:             s.SessionID,
		CaisseID:              s.CaisseID,
		UserID:                s.UserID,
		OpenedBy:              s.OpenedBy,
		ClosedBy:              s.ClosedBy,
		Status:                string(s.Status),
		OpeningAmount:         s.OpeningAmount,
		ClosingAmount:         s.ClosingAmount,
		ExpectedClosingAmount: s.ExpectedClosingAmount,
		TotalCashCounted:      s.TotalCashCounted,
		CashDifference:        s.CashDifference,
		OpenedAt:              s.OpenedAt,
		ClosedAt:              s.ClosedAt,
	}
	for _, d := range s.Denominations {
		resp.Denominations = append(resp.Denominations, SessionDenominationResponse{
			FaceValue: d.FaceValue,
			Quantity:  d.Quantity,
			LineTotal: d.LineTotal,
		})
	}
	return resp
}

// ListSessionsParams holds parameters for listing sessions of a caisse.
type ListSessionsParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// ListSessionsResponse is a page of sessions plus the cursor for the next one.
type ListSessionsResponse struct {
	Sessions  []SessionResponse `json:"sessions"`
	NextToken *string           `json:"nextToken,omitempty"`
}
