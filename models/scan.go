package models

import "time"

// BadgeScan is a single badge presentation read from the RFID peripheral.
// Ephemeral: produced by the reader poll loop, consumed once.
type BadgeScan struct {
	ID        string    `json:"id"`
	UID       string    `json:"uid"`
	Timestamp time.Time `json:"timestamp"`
}
