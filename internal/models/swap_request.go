package models

import "time"

// SwapRequestStatus is a closed enumeration stored as its lowercase string.
type SwapRequestStatus string

const (
	SwapRequestPending   SwapRequestStatus = "pending"
	SwapRequestAccepted  SwapRequestStatus = "accepted"
	SwapRequestRejected  SwapRequestStatus = "rejected"
	SwapRequestCancelled SwapRequestStatus = "cancelled"
	SwapRequestExpired   SwapRequestStatus = "expired"
)

// SwapRequestType distinguishes a two-way swap from a one-way giveaway.
type SwapRequestType string

const (
	SwapTypeSwap     SwapRequestType = "swap"
	SwapTypeGiveaway SwapRequestType = "giveaway"
)

// SwapRequest models a doctor-initiated request to trade or give away a
// shift assignment, optionally targeted at a specific colleague.
type SwapRequest struct {
	ID                     string            `db:"id" json:"id"`
	RequesterID            string            `db:"requester_id" json:"requester_id"`
	TargetID               *string           `db:"target_id" json:"target_id,omitempty"`
	RequesterAssignmentID  string            `db:"requester_assignment_id" json:"requester_assignment_id"`
	TargetAssignmentID     *string           `db:"target_assignment_id" json:"target_assignment_id,omitempty"`
	RequestType            SwapRequestType   `db:"request_type" json:"request_type"`
	Status                 SwapRequestStatus `db:"status" json:"status"`
	Message                *string           `db:"message" json:"message,omitempty"`
	ResponseMessage        *string           `db:"response_message" json:"response_message,omitempty"`
	ApprovedByID           *string           `db:"approved_by_id" json:"approved_by_id,omitempty"`
	ApprovedAt             *time.Time        `db:"approved_at" json:"approved_at,omitempty"`
	RespondedAt            *time.Time        `db:"responded_at" json:"responded_at,omitempty"`
	CreatedAt              time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time         `db:"updated_at" json:"updated_at"`
}

// SwapRequestFilter narrows swap request listings.
type SwapRequestFilter struct {
	RequesterID string
	TargetID    string
	Status      *SwapRequestStatus
	Page        int
	PageSize    int
}
