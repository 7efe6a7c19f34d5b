// Package mailer sends the notification emails triggered by visitor
// contributions. Delivery is best effort: a failed send is logged and
// counted, never surfaced to the contributor.
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"album-server/internal/logging"
	"album-server/internal/metrics"
	"album-server/internal/participation"
)

// Config holds the SMTP settings. An empty Host or OwnerAddress disables
// mail entirely.
type Config struct {
	Host         string
	Port         string
	Username     string
	Password     string
	From         string
	OwnerAddress string
}

// Mailer sends participation emails over plain SMTP.
type Mailer struct {
	cfg Config
}

// New creates a Mailer from the config.
func New(cfg Config) *Mailer {
	return &Mailer{cfg: cfg}
}

// Enabled reports whether the mailer is configured to send anything.
func (m *Mailer) Enabled() bool {
	return m.cfg.Host != "" && m.cfg.OwnerAddress != ""
}

// SendParticipationEmails sends the owner notification and, when the
// contributor left an address, a confirmation. Each failure is logged
// independently; the first error is returned for the caller's log line.
func (m *Mailer) SendParticipationEmails(rec participation.Record) error {
	if !m.Enabled() {
		return nil
	}

	var firstErr error

	if err := m.send(m.cfg.OwnerAddress, notificationSubject(rec), notificationBody(rec)); err != nil {
		metrics.MailSendsTotal.WithLabelValues("notification", "error").Inc()
		logging.Error("mailer: owner notification for %s failed: %v", rec.ID, err)
		firstErr = err
	} else {
		metrics.MailSendsTotal.WithLabelValues("notification", "success").Inc()
	}

	if rec.Email != "" {
		if err := m.send(rec.Email, confirmationSubject(), confirmationBody(rec)); err != nil {
			metrics.MailSendsTotal.WithLabelValues("confirmation", "error").Inc()
			logging.Error("mailer: confirmation to %s failed: %v", rec.Email, err)
			if firstErr == nil {
				firstErr = err
			}
		} else {
			metrics.MailSendsTotal.WithLabelValues("confirmation", "success").Inc()
		}
	}

	return firstErr
}

func (m *Mailer) send(to, subject, htmlBody string) error {
	from := m.cfg.From
	if from == "" {
		from = m.cfg.Username
	}

	msg := strings.Join([]string{
		"From: " + from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=\"UTF-8\"",
		"",
		htmlBody,
	}, "\r\n")

	addr := m.cfg.Host + ":" + m.cfg.Port
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	return smtp.SendMail(addr, auth, from, []string{to}, []byte(msg))
}

func notificationSubject(rec participation.Record) string {
	return fmt.Sprintf("Nueva participación de %s (%d fotos)", rec.Name, len(rec.Files))
}

func notificationBody(rec participation.Record) string {
	var b strings.Builder
	b.WriteString("<h2>Nueva participación recibida</h2>")
	fmt.Fprintf(&b, "<p><strong>Nombre:</strong> %s</p>", rec.Name)
	fmt.Fprintf(&b, "<p><strong>Email:</strong> %s</p>", rec.Email)
	if rec.Phone != "" {
		fmt.Fprintf(&b, "<p><strong>Teléfono:</strong> %s</p>", rec.Phone)
	}
	if rec.PhotoDate != "" {
		fmt.Fprintf(&b, "<p><strong>Fecha de las fotos:</strong> %s</p>", rec.PhotoDate)
	}
	if rec.Category != "" {
		fmt.Fprintf(&b, "<p><strong>Categoría:</strong> %s</p>", rec.Category)
	}
	fmt.Fprintf(&b, "<p><strong>Descripción:</strong> %s</p>", rec.Description)
	if rec.Comments != "" {
		fmt.Fprintf(&b, "<p><strong>Comentarios:</strong> %s</p>", rec.Comments)
	}
	fmt.Fprintf(&b, "<p><strong>Archivos (%d):</strong></p><ul>", len(rec.Files))
	for _, f := range rec.Files {
		fmt.Fprintf(&b, "<li>%s (%d bytes)</li>", f.OriginalName, f.Size)
	}
	b.WriteString("</ul>")
	fmt.Fprintf(&b, "<p><strong>Carpeta:</strong> %s</p>", rec.FolderPath)
	return b.String()
}

func confirmationSubject() string {
	return "¡Gracias por tu participación!"
}

func confirmationBody(rec participation.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>¡Hola %s!</h2>", rec.Name)
	b.WriteString("<p>Hemos recibido correctamente tus fotos. ¡Muchas gracias por contribuir a la colección!</p>")
	fmt.Fprintf(&b, "<p>Fotos recibidas: <strong>%d</strong></p>", len(rec.Files))
	b.WriteString("<p>Revisaremos el material y lo publicaremos en la galería próximamente.</p>")
	b.WriteString("<p>Un saludo.</p>")
	return b.String()
}
