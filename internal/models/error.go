package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrValidation     = errors.New("validation failed")
	ErrInternalServer = errors.New("internal server error")

	// Account state errors
	ErrAccountDisabled  = errors.New("account is disabled")
	ErrAccountSuspended = errors.New("account is suspended")
)

// Workflow errors. Each wraps one of the generic sentinels above so callers
// that only care about the HTTP class can match on ErrNotFound / ErrConflict.
var (
	ErrDuplicateActiveRequest      = &WorkflowError{Kind: ErrConflict, Msg: "you already have a pending verification request"}
	ErrAlreadyProcessed            = &WorkflowError{Kind: ErrConflict, Msg: "verification has already been processed"}
	ErrVerificationNotFound        = &WorkflowError{Kind: ErrNotFound, Msg: "verification request not found"}
	ErrInvalidDocumentType         = &WorkflowError{Kind: ErrValidation, Msg: "invalid document type"}
	ErrInvalidVerificationDecision = &WorkflowError{Kind: ErrValidation, Msg: "status must be approved or rejected"}

	ErrSelfConnection            = &WorkflowError{Kind: ErrBadRequest, Msg: "you cannot send a connection request to yourself"}
	ErrReceiverNotFound          = &WorkflowError{Kind: ErrNotFound, Msg: "user not found"}
	ErrDuplicateConnection       = &WorkflowError{Kind: ErrConflict, Msg: "connection request already exists"}
	ErrConnectionNotFound        = &WorkflowError{Kind: ErrNotFound, Msg: "connection request not found"}
	ErrNotConnectionTarget       = &WorkflowError{Kind: ErrForbidden, Msg: "not authorized to respond to this connection request"}
	ErrConnectionResponded       = &WorkflowError{Kind: ErrConflict, Msg: "connection request has already been answered"}
	ErrInvalidConnectionDecision = &WorkflowError{Kind: ErrValidation, Msg: "status must be accepted or rejected"}

	ErrAlreadyAgent    = &WorkflowError{Kind: ErrConflict, Msg: "you are already registered as an agent"}
	ErrAgentNotFound   = &WorkflowError{Kind: ErrNotFound, Msg: "agent not found"}
	ErrDuplicateReview = &WorkflowError{Kind: ErrConflict, Msg: "you have already reviewed this agent"}
	ErrClientNotFound  = &WorkflowError{Kind: ErrNotFound, Msg: "user not found"}
	ErrAlreadyClient   = &WorkflowError{Kind: ErrConflict, Msg: "user is already your client"}
	ErrInvalidRating   = &WorkflowError{Kind: ErrValidation, Msg: "rating must be between 1 and 5"}

	ErrProfileExists   = &WorkflowError{Kind: ErrConflict, Msg: "profile already exists, use PUT to update"}
	ErrProfileNotFound = &WorkflowError{Kind: ErrNotFound, Msg: "profile not found"}
	ErrProfilePrivate  = &WorkflowError{Kind: ErrForbidden, Msg: "this profile is private"}

	ErrEmailTaken          = &WorkflowError{Kind: ErrConflict, Msg: "user already exists"}
	ErrUserNotFound        = &WorkflowError{Kind: ErrNotFound, Msg: "user not found"}
	ErrInvalidCredentials  = &WorkflowError{Kind: ErrUnauthorized, Msg: "invalid email or password"}
	ErrInvalidRefreshToken = &WorkflowError{Kind: ErrUnauthorized, Msg: "invalid or expired refresh token"}
	ErrNotSelfOrAdmin      = &WorkflowError{Kind: ErrForbidden, Msg: "not authorized to access this user"}
	ErrAdminUndeletable    = &WorkflowError{Kind: ErrForbidden, Msg: "admin accounts cannot be deleted"}
)

// WorkflowError is a named invariant violation with a message safe to show to clients.
type WorkflowError struct {
	Kind error
	Msg  string
}

func (e *WorkflowError) Error() string {
	return e.Msg
}

// Unwrap exposes the generic class so errors.Is(err, ErrConflict) holds.
func (e *WorkflowError) Unwrap() error {
	return e.Kind
}
