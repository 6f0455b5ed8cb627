package caregiver

import "errors"

var (
	ErrRelationshipNotFound = errors.New("relationship not found")
	ErrRelationshipExists   = errors.New("active relationship already exists")
	ErrCaregiverNotFound    = errors.New("caregiver not found")
	ErrNotCaregiverRole     = errors.New("user is not a caregiver")
	ErrNotParticipant       = errors.New("not a participant of the relationship")
	ErrAccessDenied         = errors.New("access denied")
)
