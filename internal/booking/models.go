package booking

import (
	"strings"
	"time"
)

// Status is the lifecycle state of an appointment booking.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// ParseStatus accepts only the four known statuses, case-insensitively.
func ParseStatus(s string) (Status, bool) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return st, true
	}
	return "", false
}

// Intended workflow. Not enforced on update: admins may move a booking to any
// known status, CanTransitionTo only tells whether a move follows the graph.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// DateLayout is the wire format of AppointmentDate.
const DateLayout = "2006-01-02"

// Booking is an appointment request. Active iff DeletedAt is nil.
type Booking struct {
	ID              string     `json:"id" bson:"_id"`
	ServiceID       *string    `json:"serviceId" bson:"serviceId"`
	ServiceName     *string    `json:"serviceName" bson:"serviceName"`
	Name            string     `json:"name" bson:"name"`
	Email           string     `json:"email" bson:"email"`
	Phone           string     `json:"phone" bson:"phone"`
	AppointmentDate string     `json:"appointmentDate" bson:"appointmentDate"`
	AppointmentTime *string    `json:"appointmentTime" bson:"appointmentTime"`
	Message         *string    `json:"message" bson:"message"`
	Status          Status     `json:"status" bson:"status"`
	CreatedAt       time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt" bson:"updatedAt"`
	DeletedAt       *time.Time `json:"deletedAt" bson:"deletedAt"`
}

func (b *Booking) Active() bool { return b.DeletedAt == nil }

// Patch is an admin field update after normalization. Nil means "leave as is".
// For the optional fields a pointer to "" clears the stored value.
type Patch struct {
	ServiceID       *string
	ServiceName     *string
	Name            *string
	Email           *string
	Phone           *string
	AppointmentDate *string
	AppointmentTime *string
	Message         *string
	Status          *Status
}

// Apply writes the patch onto b and stamps UpdatedAt.
func (p Patch) Apply(b *Booking, now time.Time) {
	setOptional(&b.ServiceID, p.ServiceID)
	setOptional(&b.ServiceName, p.ServiceName)
	setOptional(&b.AppointmentTime, p.AppointmentTime)
	setOptional(&b.Message, p.Message)
	if p.Name != nil {
		b.Name = *p.Name
	}
	if p.Email != nil {
		b.Email = *p.Email
	}
	if p.Phone != nil {
		b.Phone = *p.Phone
	}
	if p.AppointmentDate != nil {
		b.AppointmentDate = *p.AppointmentDate
	}
	if p.Status != nil {
		b.Status = *p.Status
	}
	b.UpdatedAt = now
}

func setOptional(dst **string, v *string) {
	if v == nil {
		return
	}
	if *v == "" {
		*dst = nil
		return
	}
	s := *v
	*dst = &s
}

// Clone returns a deep copy so callers cannot mutate stored rows.
func (b *Booking) Clone() *Booking {
	c := *b
	c.ServiceID = cloneStr(b.ServiceID)
	c.ServiceName = cloneStr(b.ServiceName)
	c.AppointmentTime = cloneStr(b.AppointmentTime)
	c.Message = cloneStr(b.Message)
	if b.DeletedAt != nil {
		t := *b.DeletedAt
		c.DeletedAt = &t
	}
	return &c
}

func cloneStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
