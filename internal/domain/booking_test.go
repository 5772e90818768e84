package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    BookingStatus
		to      BookingStatus
		allowed bool
	}{
		{"ConfirmedToCancelled", StatusConfirmed, StatusCancelled, true},
		{"ConfirmedToCompleted", StatusConfirmed, StatusCompleted, true},
		{"ConfirmedToNoShow", StatusConfirmed, StatusNoShow, true},
		{"ConfirmedToSuperseded", StatusConfirmed, StatusSuperseded, true},
		{"RescheduledToCompleted", StatusRescheduled, StatusCompleted, true},
		{"RescheduledToConfirmed", StatusRescheduled, StatusConfirmed, false},
		{"CancelledIsTerminal", StatusCancelled, StatusConfirmed, false},
		{"CompletedIsTerminal", StatusCompleted, StatusCancelled, false},
		{"SupersededIsTerminal", StatusSuperseded, StatusRescheduled, false},
		{"NoSelfTransition", StatusConfirmed, StatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestPaymentStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, PaymentPending.CanTransitionTo(PaymentCompleted))
	assert.True(t, PaymentPending.CanTransitionTo(PaymentFailed))
	assert.True(t, PaymentFailed.CanTransitionTo(PaymentPending), "failed payment can be retried")
	assert.True(t, PaymentCompleted.CanTransitionTo(PaymentRefunded))
	assert.False(t, PaymentCompleted.CanTransitionTo(PaymentPending))
	assert.False(t, PaymentRefunded.CanTransitionTo(PaymentPending))
}

func TestBooking_BlocksSlot(t *testing.T) {
	blocking := []BookingStatus{StatusConfirmed, StatusRescheduled}
	released := []BookingStatus{StatusCancelled, StatusCompleted, StatusNoShow, StatusSuperseded}

	for _, status := range blocking {
		b := &Booking{Status: status}
		assert.True(t, b.BlocksSlot(), "status %s must block the slot", status)
		assert.True(t, status.KeepsMeetingLink())
		assert.False(t, b.IsTerminal())
	}
	for _, status := range released {
		b := &Booking{Status: status}
		assert.False(t, b.BlocksSlot(), "status %s must release the slot", status)
		assert.False(t, status.KeepsMeetingLink())
		assert.True(t, b.IsTerminal(), "status %s has no further transitions", status)
	}
}

func TestBooking_Overlaps(t *testing.T) {
	day := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

	b := &Booking{StartTime: at(10, 0), EndTime: at(11, 0)}

	tests := []struct {
		name     string
		start    time.Time
		end      time.Time
		overlaps bool
	}{
		{"Identical", at(10, 0), at(11, 0), true},
		{"Contained", at(10, 15), at(10, 45), true},
		{"PartialLeft", at(9, 30), at(10, 30), true},
		{"PartialRight", at(10, 30), at(11, 30), true},
		{"TouchingBefore", at(9, 0), at(10, 0), false},
		{"TouchingAfter", at(11, 0), at(12, 0), false},
		{"Disjoint", at(13, 0), at(14, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.overlaps, b.Overlaps(tt.start, tt.end))
		})
	}
}

func TestSessionType(t *testing.T) {
	assert.True(t, SessionConsultation.IsValid())
	assert.True(t, SessionPlayPath.IsValid())
	assert.False(t, SessionType("webinar").IsValid())

	assert.Equal(t, "consultation_booking", SessionConsultation.SalesSourceType())
	assert.Equal(t, "playpath_booking", SessionPlayPath.SalesSourceType())
}
