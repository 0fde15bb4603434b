// Package email compone y despacha las notificaciones de verificación.
package email

import "errors"

var (
	// ErrSendFailed indica fallo de transporte (conexión o envío SMTP).
	// El caller decide qué hacer; nunca tumba el proceso.
	ErrSendFailed = errors.New("email: send failed")

	ErrTemplateRender = errors.New("email: template render failed")
)

// Sender despacha un email ya compuesto.
type Sender interface {
	Send(to, subject, htmlBody, textBody string) error
}
