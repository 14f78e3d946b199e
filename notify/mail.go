package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/junaidrashid-git/restaurant-api/config"
)

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type Message struct {
	Subject string
	Body    string
}

var orderSubjects = map[string]string{
	"kitchen/Preparing":   "Your order is being prepared",
	"kitchen/Ready":       "Your order is ready",
	"order/Confirmed":     "Your order is confirmed",
	"order/Cancelled":     "Your order was cancelled",
	"delivery/on_the_way": "Your order is on the way",
	"delivery/delivered":  "Your order was delivered",
}

// Render builds the e-mail for an event.
func Render(ev Event) Message {
	name := ev.Name
	if name == "" {
		name = "there"
	}

	if ev.Type == EventReservationStatus {
		return Message{
			Subject: fmt.Sprintf("Reservation #%d %s", ev.ReservationID, ev.NewStatus),
			Body: fmt.Sprintf("Hi %s,\n\nYour table reservation #%d is now %s.\n",
				name, ev.ReservationID, ev.NewStatus),
		}
	}

	subject, ok := orderSubjects[ev.Axis+"/"+ev.NewStatus]
	if !ok {
		subject = fmt.Sprintf("Order update: %s", ev.NewStatus)
	}
	return Message{
		Subject: fmt.Sprintf("%s (%s)", subject, ev.OrderRef),
		Body: fmt.Sprintf("Hi %s,\n\nOrder %s: %s status changed from %q to %q.\n",
			name, ev.OrderRef, ev.Axis, ev.OldStatus, ev.NewStatus),
	}
}

// SMTPMailer sends plain-text mail with PLAIN auth.
type SMTPMailer struct {
	cfg config.SMTP
}

func NewSMTPMailer(cfg config.SMTP) *SMTPMailer { return &SMTPMailer{cfg: cfg} }

func (m *SMTPMailer) Send(_ context.Context, to, subject, body string) error {
	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&sb, "To: %s\r\n", to)
	fmt.Fprintf(&sb, "Subject: %s\r\n", subject)
	sb.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n")
	sb.WriteString(body)

	return smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(sb.String()))
}

// LogMailer logs instead of sending; used when SMTP is not configured.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, to, subject, _ string) error {
	log.WithFields(log.Fields{"to": to, "subject": subject}).Info("mail (smtp not configured)")
	return nil
}
