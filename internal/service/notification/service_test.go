package notification

import (
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medisched/medisched-api/internal/model"
	"github.com/medisched/medisched-api/pkg/logger"
	"github.com/medisched/medisched-api/pkg/messaging"
)

type sentMail struct {
	to      string
	subject string
	body    string
}

type fakeSender struct {
	sent []sentMail
	fail map[string]error
}

func (s *fakeSender) Send(to, subject, htmlBody string) error {
	if err, ok := s.fail[to]; ok {
		return err
	}
	s.sent = append(s.sent, sentMail{to: to, subject: subject, body: htmlBody})
	return nil
}

func testMessage(t *testing.T, eventType string) []byte {
	t.Helper()
	raw, err := json.Marshal(messaging.Message{
		Type: eventType,
		Payload: model.BookingEvent{
			AppointmentID: uuid.New(),
			DoctorName:    "Dr. Asha Rao",
			DoctorEmail:   "asha@example.com",
			PatientName:   "Ravi Kumar",
			PatientEmail:  "ravi@example.com",
			SlotStart:     time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC),
			SlotEnd:       time.Date(2026, 9, 14, 10, 30, 0, 0, time.UTC),
			Location:      "Downtown Clinic",
		},
	})
	require.NoError(t, err)
	return raw
}

func newTestService(sender *fakeSender) *Service {
	return NewService(sender, logger.NewLogger(&logger.Config{Output: io.Discard}))
}

func TestHandleMessageEmailsBothParties(t *testing.T) {
	sender := &fakeSender{}
	svc := newTestService(sender)

	err := svc.HandleMessage(testMessage(t, model.EventBookingConfirmed))
	require.NoError(t, err)

	require.Len(t, sender.sent, 2)
	assert.Equal(t, "asha@example.com", sender.sent[0].to)
	assert.Equal(t, "ravi@example.com", sender.sent[1].to)
	for _, mail := range sender.sent {
		assert.Equal(t, "Appointment Confirmed", mail.subject)
		assert.Contains(t, mail.body, "Dr. Asha Rao")
		assert.Contains(t, mail.body, "Downtown Clinic")
	}
}

func TestHandleMessageCancellationSubject(t *testing.T) {
	sender := &fakeSender{}
	svc := newTestService(sender)

	err := svc.HandleMessage(testMessage(t, model.EventBookingCanceled))
	require.NoError(t, err)

	require.Len(t, sender.sent, 2)
	assert.Equal(t, "Appointment Canceled", sender.sent[0].subject)
}

func TestHandleMessageDropsUnknownEventType(t *testing.T) {
	sender := &fakeSender{}
	svc := newTestService(sender)

	err := svc.HandleMessage(testMessage(t, "doctor.updated"))
	require.NoError(t, err)
	assert.Empty(t, sender.sent)
}

func TestHandleMessageStillEmailsPatientWhenDoctorFails(t *testing.T) {
	sender := &fakeSender{fail: map[string]error{"asha@example.com": errors.New("mailbox full")}}
	svc := newTestService(sender)

	err := svc.HandleMessage(testMessage(t, model.EventBookingConfirmed))
	require.Error(t, err)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "ravi@example.com", sender.sent[0].to)
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	svc := newTestService(&fakeSender{})
	assert.Error(t, svc.HandleMessage([]byte("{not json")))
}
