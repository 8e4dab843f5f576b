package services

import "errors"

// Sentinel errors shared across the services and mapped to HTTP statuses at
// the handler boundary.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrParticipantNotFound = errors.New("participant not found")

	// Registration conflicts.
	ErrEmailTaken    = errors.New("email is already in use")
	ErrUsernameTaken = errors.New("username is already in use")

	// Wallet and participation.
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
	ErrTournamentFull    = errors.New("tournament is full")
	ErrAlreadyJoined     = errors.New("user is already registered for this tournament")

	// Auth.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("operation requires admin privileges")

	// Tournament state machine.
	ErrInvalidStatusTransition = errors.New("invalid tournament status transition")
	ErrTournamentNotJoinable   = errors.New("tournament is not accepting entries")
	ErrTournamentNotSettleable = errors.New("tournament is already finished or cancelled")
	ErrTournamentInUse         = errors.New("tournament has participants with unresolved obligations")

	// ErrValidation wraps malformed-input failures; the concrete message is
	// attached with fmt.Errorf("%w: ...", ErrValidation).
	ErrValidation = errors.New("validation failed")
)
