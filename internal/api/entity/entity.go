package entity

import (
	"errors"
	"time"
)

// ErrDatabaseConnection is the simulated failure reported by GET /api/error.
//
//nolint:stylecheck,err113 // message is returned to clients as is
var ErrDatabaseConnection = errors.New("Backend database connection failed")

// Greeting is the payload served by GET /api/data.
type Greeting struct {
	Message   string
	Timestamp time.Time
}
