package domain

import "errors"

// ErrNotFound is returned by repositories when a row does not exist.
var ErrNotFound = errors.New("domain: not found")

// ErrInsufficientData is returned by analytical queries that need more
// history than the warehouse holds for the user.
var ErrInsufficientData = errors.New("domain: insufficient data")
