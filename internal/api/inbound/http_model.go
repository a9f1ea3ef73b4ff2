package inbound

import "time"

type DataResponse struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Raw keeps the payload out of the router's success envelope.
func (DataResponse) Raw() bool { return true }
