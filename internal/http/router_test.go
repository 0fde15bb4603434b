package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/mailkey/internal/email"
	accountsctrl "github.com/dropDatabas3/mailkey/internal/http/controllers/accounts"
	healthctrl "github.com/dropDatabas3/mailkey/internal/http/controllers/health"
	accountssvc "github.com/dropDatabas3/mailkey/internal/http/services/accounts"
	tokens "github.com/dropDatabas3/mailkey/internal/security/token"
	"github.com/dropDatabas3/mailkey/internal/store/memory"
)

type captureSender struct {
	fail bool
	last struct {
		to, subject, text string
	}
}

func (s *captureSender) Send(to, subject, htmlBody, textBody string) error {
	if s.fail {
		return errors.New("dial tcp: connection refused")
	}
	s.last.to = to
	s.last.subject = subject
	s.last.text = textBody
	return nil
}

func newTestServer(t *testing.T, snd *captureSender) (*httptest.Server, *memory.Store) {
	t.Helper()

	st := memory.New(tokens.Generate)
	n, err := email.NewNotifier(email.NotifierConfig{
		Sender:   snd,
		SiteBase: "https://api.example.test",
		Subject:  "Cointhink api token",
	})
	require.NoError(t, err)

	svc := accountssvc.New(accountssvc.Deps{
		Store:     st,
		Notifier:  n,
		OpTimeout: 2 * time.Second,
	})

	h := NewRouter(RouterDeps{
		Accounts: accountsctrl.New(svc),
		Health:   healthctrl.New(func(ctx context.Context) error { return st.Ping(ctx) }, time.Second),
	})

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv, st
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestRegisterAndAuth_EndToEnd(t *testing.T) {
	snd := &captureSender{}
	srv, _ := newTestServer(t, snd)

	// Register: 200 con el email como cuerpo plano.
	status, body := get(t, srv.URL+"/register/a@b.c")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "a@b.c", body)

	// El mail salió al destinatario correcto con el link {site}/{token}.
	require.Equal(t, "a@b.c", snd.last.to)
	require.Equal(t, "Cointhink api token", snd.last.subject)
	require.Contains(t, snd.last.text, "https://api.example.test/")

	// Extraer el token del link y autenticar.
	tok := lastPathSegment(t, snd.last.text)
	status, body = get(t, srv.URL+"/auth/"+tok)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "a@b.c", body)
}

// lastPathSegment saca el token del cuerpo del mail (última línea no vacía, último segmento).
func lastPathSegment(t *testing.T, text string) string {
	t.Helper()
	idx := -1
	for i := len(text) - 1; i >= 0; i-- {
		if text[i] == '/' {
			idx = i
			break
		}
	}
	require.Greater(t, idx, 0, "mail body must contain the verification link")
	tok := text[idx+1:]
	// recortar el salto de línea final del template
	for len(tok) > 0 && (tok[len(tok)-1] == '\n' || tok[len(tok)-1] == '\r') {
		tok = tok[:len(tok)-1]
	}
	require.NotEmpty(t, tok)
	return tok
}

func TestAuth_BadToken(t *testing.T) {
	srv, _ := newTestServer(t, &captureSender{})

	status, body := get(t, srv.URL+"/auth/definitely-not-a-token")
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "bad token", body)
}

func TestRegister_Idempotent_SameToken(t *testing.T) {
	snd := &captureSender{}
	srv, st := newTestServer(t, snd)

	status, _ := get(t, srv.URL+"/register/a@b.c")
	require.Equal(t, http.StatusOK, status)
	first := lastPathSegment(t, snd.last.text)

	status, _ = get(t, srv.URL+"/register/a@b.c")
	require.Equal(t, http.StatusOK, status)
	second := lastPathSegment(t, snd.last.text)

	require.Equal(t, first, second, "re-register must mail the original token")
	require.Equal(t, 1, st.Len(), "re-register must not create a second account")
}

func TestRegister_CaseSensitiveEmails(t *testing.T) {
	snd := &captureSender{}
	srv, st := newTestServer(t, snd)

	status, body := get(t, srv.URL+"/register/A@b.c")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "A@b.c", body)

	status, body = get(t, srv.URL+"/register/a@b.c")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "a@b.c", body)

	require.Equal(t, 2, st.Len(), "emails differing only in case are distinct accounts")
}

func TestRegister_NotifyFailure_StillPersists(t *testing.T) {
	snd := &captureSender{fail: true}
	srv, st := newTestServer(t, snd)

	status, body := get(t, srv.URL+"/register/a@b.c")
	require.Equal(t, http.StatusBadGateway, status)
	require.Contains(t, body, "NOTIFY_FAILED")

	// La cuenta quedó creada a pesar del fallo de envío.
	require.Equal(t, 1, st.Len())
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, &captureSender{})

	resp, err := http.Post(srv.URL+"/register/a@b.c", "text/plain", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	require.Equal(t, http.MethodGet, resp.Header.Get("Allow"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "METHOD_NOT_ALLOWED")
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, &captureSender{})

	status, _ := get(t, srv.URL+"/healthz")
	require.Equal(t, http.StatusOK, status)

	status, _ = get(t, srv.URL+"/readyz")
	require.Equal(t, http.StatusOK, status)
}

func TestSecurityHeaders(t *testing.T) {
	srv, _ := newTestServer(t, &captureSender{})

	resp, err := http.Get(srv.URL + "/auth/whatever")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	require.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	require.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}
