package apperr

import "errors"

// ErrInvalid is returned when the input fails domain validation.
var ErrInvalid = errors.New("invalid input")

// ErrConflict indicates a uniqueness or assignment conflict (HTTP 409).
var ErrConflict = errors.New("conflict")

// ErrNotFound indicates that the requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidState indicates a status transition attempted from an illegal
// source status.
var ErrInvalidState = errors.New("invalid state transition")

// ErrGeofence indicates a failed distance check against the pickup or
// delivery point. Kept distinct from ErrInvalidState so clients can render
// location-specific guidance.
var ErrGeofence = errors.New("geofence violation")

// ErrOtpMismatch indicates the provided proof-of-delivery code does not match
// the stored one. The message is deliberately generic.
var ErrOtpMismatch = errors.New("invalid delivery OTP")

// ErrLocationMissing indicates no location sample exists for the driver when
// a geofenced transition requires one.
var ErrLocationMissing = errors.New("driver location not available")

// ErrCoordsMissing indicates the vendor or delivery coordinates required by a
// geofenced transition are absent.
var ErrCoordsMissing = errors.New("coordinates not available")
