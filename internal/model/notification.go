package model

import (
	"github.com/google/uuid"
)

// Notification levels
const (
	NotificationInfo    = "info"
	NotificationWarning = "warning"
	NotificationAlert   = "alert"
)

// Notification is an audit/log entry, optionally linked to a patient.
type Notification struct {
	Base
	PatientID *uuid.UUID `db:"patient_id" json:"patient_id,omitempty"`
	Level     string     `db:"level" json:"level"`
	Title     string     `db:"title" json:"title"`
	Message   string     `db:"message" json:"message"`
	Read      bool       `db:"read" json:"read"`
}

type CreateNotificationRequest struct {
	PatientID *uuid.UUID `json:"patient_id"`
	Level     string     `json:"level" binding:"required,oneof=info warning alert"`
	Title     string     `json:"title" binding:"required"`
	Message   string     `json:"message" binding:"required"`
}
