package email

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	ttemplate "text/template"

	"github.com/dropDatabas3/mailkey/internal/observability/logger"
	"github.com/dropDatabas3/mailkey/internal/store/core"
)

// defaultTextTmpl es el cuerpo por defecto: el link de verificación.
const defaultTextTmpl = `Use the link below to verify your account:

{{.Link}}
`

// NotifierConfig configura el Notifier.
type NotifierConfig struct {
	Sender   Sender
	SiteBase string // base del link: {site_base}/{token}
	Subject  string
	TextTmpl string // template alternativo para el cuerpo (opcional)
}

// Notifier compone el email de verificación de una cuenta y lo despacha.
type Notifier struct {
	sender   Sender
	siteBase string
	subject  string
	text     *ttemplate.Template
}

type verifyVars struct {
	Email string
	Link  string
}

func NewNotifier(cfg NotifierConfig) (*Notifier, error) {
	if cfg.Sender == nil {
		return nil, fmt.Errorf("email: sender is required")
	}
	if strings.TrimSpace(cfg.SiteBase) == "" {
		return nil, fmt.Errorf("email: site base is required")
	}
	body := cfg.TextTmpl
	if body == "" {
		body = defaultTextTmpl
	}
	t, err := ttemplate.New("verify_text").Parse(body)
	if err != nil {
		return nil, fmt.Errorf("email: parse verify template: %w", err)
	}
	return &Notifier{
		sender:   cfg.Sender,
		siteBase: strings.TrimRight(cfg.SiteBase, "/"),
		subject:  cfg.Subject,
		text:     t,
	}, nil
}

// VerificationLink arma el link {site_base}/{token}.
func (n *Notifier) VerificationLink(token string) string {
	return n.siteBase + "/" + token
}

// SendVerification compone y envía el mail de verificación.
// El fallo de transporte vuelve como ErrSendFailed; la cuenta ya está
// persistida cuando se llega acá, así que nada se deshace.
func (n *Notifier) SendVerification(ctx context.Context, acct *core.Account) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	vars := verifyVars{Email: acct.Email, Link: n.VerificationLink(acct.Token)}
	var buf bytes.Buffer
	if err := n.text.Execute(&buf, vars); err != nil {
		return fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}

	if err := n.sender.Send(acct.Email, n.subject, "", buf.String()); err != nil {
		logger.From(ctx).Error("verification email failed",
			logger.Component("Notifier"),
			logger.Email(acct.Email),
			logger.Err(err),
		)
		return err
	}
	return nil
}
