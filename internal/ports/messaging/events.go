package messaging

import (
	"time"

	"github.com/google/uuid"
)

// Employee lifecycle topics published by the employee-management service.
const (
	TopicEmployeeCreated    = "employee-created"
	TopicEmployeeUpdated    = "employee-updated"
	TopicEmployeeDeleted    = "employee-deleted"
	TopicEmployeeTerminated = "employee-terminated"
	TopicEmployeeSuspended  = "employee-suspended"
	TopicEmployeeActivated  = "employee-activated"
)

// EmployeeTopics lists every lifecycle topic the sync worker consumes.
func EmployeeTopics() []string {
	return []string{
		TopicEmployeeCreated,
		TopicEmployeeUpdated,
		TopicEmployeeDeleted,
		TopicEmployeeTerminated,
		TopicEmployeeSuspended,
		TopicEmployeeActivated,
	}
}

// Attendance event types published by this service.
const (
	EventAttendanceCheckIn  = "attendance.checkin"
	EventAttendanceCheckOut = "attendance.checkout"
)

const (
	EventVersion  = "1.0"
	SourceService = "attendance-management-service"
)

// EventEnvelope wraps every outbound event.
type EventEnvelope struct {
	EventID   string        `json:"event_id"`
	EventType string        `json:"event_type"`
	Timestamp time.Time     `json:"timestamp"`
	Version   string        `json:"version"`
	Data      interface{}   `json:"data"`
	Metadata  EventMetadata `json:"metadata"`
}

// EventMetadata carries correlation data for tracing across services.
type EventMetadata struct {
	SourceService string `json:"source_service"`
	CorrelationID string `json:"correlation_id"`
	TraceID       string `json:"trace_id,omitempty"`
}

// NewEventEnvelope stamps data with a fresh event id.
func NewEventEnvelope(eventType string, data interface{}, at time.Time) EventEnvelope {
	return EventEnvelope{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Timestamp: at.UTC(),
		Version:   EventVersion,
		Data:      data,
		Metadata: EventMetadata{
			SourceService: SourceService,
			CorrelationID: uuid.NewString(),
		},
	}
}

// CheckInEvent is the data of attendance.checkin.
type CheckInEvent struct {
	AttendanceID int64     `json:"attendance_id"`
	EmployeeID   int64     `json:"employee_id"`
	Email        string    `json:"email,omitempty"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	Department   *string   `json:"department,omitempty"`
	CheckInTime  time.Time `json:"check_in_time"`
	Date         string    `json:"date"`
}

// CheckOutEvent is the data of attendance.checkout.
type CheckOutEvent struct {
	AttendanceID     int64     `json:"attendance_id"`
	EmployeeID       int64     `json:"employee_id"`
	CheckInTime      time.Time `json:"check_in_time"`
	CheckOutTime     time.Time `json:"check_out_time"`
	Date             string    `json:"date"`
	TotalHoursWorked float64   `json:"total_hours_worked"`
}

// DeadLetter records an inbound message that could not be applied.
type DeadLetter struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	MessageID string    `json:"message_id,omitempty"`
	Reason    string    `json:"reason"`
	Error     string    `json:"error,omitempty"`
	Payload   string    `json:"payload"`
	FailedAt  time.Time `json:"failed_at"`
}

// NewDeadLetter builds a dead letter for payload received on topic.
func NewDeadLetter(topic, messageID, reason string, cause error, payload []byte, at time.Time) DeadLetter {
	dl := DeadLetter{
		ID:        uuid.NewString(),
		Topic:     topic,
		MessageID: messageID,
		Reason:    reason,
		Payload:   string(payload),
		FailedAt:  at.UTC(),
	}
	if cause != nil {
		dl.Error = cause.Error()
	}
	return dl
}
