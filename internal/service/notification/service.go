package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/medisched/medisched-api/internal/email"
	"github.com/medisched/medisched-api/internal/model"
	"github.com/medisched/medisched-api/pkg/logger"
)

const timeLayout = "Mon, 02 Jan 2006 15:04 MST"

var bookingTemplate = template.Must(template.New("booking").Parse(`
<h2>{{.Heading}}</h2>
<p>Hello {{.Recipient}},</p>
<p>{{.Lead}}</p>
<ul>
  <li><strong>Doctor:</strong> {{.DoctorName}}</li>
  <li><strong>Patient:</strong> {{.PatientName}}</li>
  <li><strong>When:</strong> {{.Start}} &ndash; {{.End}}</li>
  <li><strong>Location:</strong> {{.Location}}</li>
</ul>
<p>MediSched</p>
`))

type templateData struct {
	Heading     string
	Recipient   string
	Lead        string
	DoctorName  string
	PatientName string
	Start       string
	End         string
	Location    string
}

// envelope mirrors messaging.Message with the payload kept raw so it can be
// decoded into the concrete event type.
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Service consumes booking events and emails both parties.
type Service struct {
	sender email.Sender
	logger *logger.Logger
}

func NewService(sender email.Sender, l *logger.Logger) *Service {
	return &Service{sender: sender, logger: l}
}

// HandleMessage processes one raw broker message. Unknown event types are
// logged and dropped; delivery failures are returned so the caller can decide
// whether to retry.
func (s *Service) HandleMessage(raw []byte) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("failed to decode message envelope: %w", err)
	}

	switch env.Type {
	case model.EventBookingConfirmed, model.EventBookingCanceled:
		var event model.BookingEvent
		if err := json.Unmarshal(env.Payload, &event); err != nil {
			return fmt.Errorf("failed to decode booking event: %w", err)
		}
		return s.notifyBoth(env.Type, &event)
	default:
		s.logger.Warn("dropping message with unknown event type", "type", env.Type)
		return nil
	}
}

func (s *Service) notifyBoth(eventType string, event *model.BookingEvent) error {
	var (
		subject, heading, doctorLead, patientLead string
	)
	switch eventType {
	case model.EventBookingConfirmed:
		subject = "Appointment Confirmed"
		heading = "Appointment Confirmed"
		doctorLead = "A patient has booked an appointment with you."
		patientLead = "Your appointment has been booked."
	case model.EventBookingCanceled:
		subject = "Appointment Canceled"
		heading = "Appointment Canceled"
		doctorLead = "An appointment with you has been canceled."
		patientLead = "Your appointment has been canceled."
	}

	var result *multierror.Error
	if err := s.send(event.DoctorEmail, subject, event, heading, event.DoctorName, doctorLead); err != nil {
		result = multierror.Append(result, fmt.Errorf("doctor email: %w", err))
	}
	if err := s.send(event.PatientEmail, subject, event, heading, event.PatientName, patientLead); err != nil {
		result = multierror.Append(result, fmt.Errorf("patient email: %w", err))
	}
	return result.ErrorOrNil()
}

func (s *Service) send(to, subject string, event *model.BookingEvent, heading, recipient, lead string) error {
	var body bytes.Buffer
	err := bookingTemplate.Execute(&body, templateData{
		Heading:     heading,
		Recipient:   recipient,
		Lead:        lead,
		DoctorName:  event.DoctorName,
		PatientName: event.PatientName,
		Start:       event.SlotStart.In(time.Local).Format(timeLayout),
		End:         event.SlotEnd.In(time.Local).Format(timeLayout),
		Location:    event.Location,
	})
	if err != nil {
		return fmt.Errorf("failed to render email: %w", err)
	}

	if err := s.sender.Send(to, subject, body.String()); err != nil {
		return err
	}
	s.logger.Info("notification sent", "to", to, "subject", subject, "appointment_id", event.AppointmentID)
	return nil
}
