package accounts

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dropDatabas3/mailkey/internal/email"
	tokens "github.com/dropDatabas3/mailkey/internal/security/token"
	"github.com/dropDatabas3/mailkey/internal/store/core"
	"github.com/dropDatabas3/mailkey/internal/store/memory"
)

type stubSender struct {
	fail bool
	sent []string // destinatarios, en orden
}

func (s *stubSender) Send(to, subject, htmlBody, textBody string) error {
	if s.fail {
		return errors.New("smtp: connection refused")
	}
	s.sent = append(s.sent, to)
	return nil
}

func newTestService(t *testing.T, snd *stubSender) (Service, core.AccountStore) {
	t.Helper()
	st := memory.New(tokens.Generate)
	n, err := email.NewNotifier(email.NotifierConfig{
		Sender:   snd,
		SiteBase: "https://example.test",
		Subject:  "Cointhink api token",
	})
	if err != nil {
		t.Fatalf("NewNotifier: %v", err)
	}
	return New(Deps{Store: st, Notifier: n, OpTimeout: 2 * time.Second}), st
}

func TestRegisterThenAuth_RoundTrip(t *testing.T) {
	snd := &stubSender{}
	svc, _ := newTestService(t, snd)
	ctx := context.Background()

	acct, err := svc.Register(ctx, "a@b.c")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if acct.Token == "" {
		t.Fatal("expected non-empty token")
	}
	if len(snd.sent) != 1 || snd.sent[0] != "a@b.c" {
		t.Fatalf("expected one mail to a@b.c, got %v", snd.sent)
	}

	got, err := svc.Auth(ctx, acct.Token)
	if err != nil {
		t.Fatalf("Auth: %v", err)
	}
	if got.Email != "a@b.c" {
		t.Fatalf("Auth resolved %q, want a@b.c", got.Email)
	}
}

func TestRegister_Idempotent_KeepsToken(t *testing.T) {
	snd := &stubSender{}
	svc, _ := newTestService(t, snd)
	ctx := context.Background()

	first, err := svc.Register(ctx, "a@b.c")
	if err != nil {
		t.Fatalf("first Register: %v", err)
	}
	second, err := svc.Register(ctx, "a@b.c")
	if err != nil {
		t.Fatalf("second Register: %v", err)
	}
	if first.Token != second.Token {
		t.Fatal("re-register must return the original token")
	}
	// Cada registro re-dispara el mail, aunque la cuenta ya exista.
	if len(snd.sent) != 2 {
		t.Fatalf("expected 2 mails, got %d", len(snd.sent))
	}
}

func TestRegister_EmptyEmail(t *testing.T) {
	svc, _ := newTestService(t, &stubSender{})
	for _, in := range []string{"", "   ", "\t"} {
		if _, err := svc.Register(context.Background(), in); !errors.Is(err, ErrEmptyEmail) {
			t.Fatalf("Register(%q) = %v, want ErrEmptyEmail", in, err)
		}
	}
}

func TestRegister_NotifyFailure_AccountSurvives(t *testing.T) {
	snd := &stubSender{fail: true}
	svc, st := newTestService(t, snd)
	ctx := context.Background()

	acct, err := svc.Register(ctx, "a@b.c")
	if !errors.Is(err, ErrNotifyFailed) {
		t.Fatalf("Register = %v, want ErrNotifyFailed", err)
	}
	if acct == nil || acct.Token == "" {
		t.Fatal("account must come back even when the mail fails")
	}

	// La cuenta quedó persistida: el token resuelve.
	got, err := st.FindByToken(ctx, acct.Token)
	if err != nil {
		t.Fatalf("FindByToken after notify failure: %v", err)
	}
	if got.Email != "a@b.c" {
		t.Fatalf("got %q, want a@b.c", got.Email)
	}
}

func TestAuth_UnknownToken(t *testing.T) {
	svc, _ := newTestService(t, &stubSender{})
	if _, err := svc.Auth(context.Background(), "nope"); !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("Auth = %v, want ErrUnknownToken", err)
	}
}

// unavailableStore simula un backend de storage caído.
type unavailableStore struct{}

func (unavailableStore) Ping(ctx context.Context) error { return core.ErrUnavailable }
func (unavailableStore) Close()                         {}
func (unavailableStore) FindByToken(ctx context.Context, token string) (*core.Account, error) {
	return nil, fmt.Errorf("pg find by token: %w: %v", core.ErrUnavailable, errors.New("connection refused"))
}
func (unavailableStore) FindOrCreateByEmail(ctx context.Context, email string) (*core.Account, error) {
	return nil, fmt.Errorf("pg find or create by email: %w: %v", core.ErrUnavailable, errors.New("connection refused"))
}

func TestStorageUnavailable_SentinelSurvives(t *testing.T) {
	n, err := email.NewNotifier(email.NotifierConfig{
		Sender:   &stubSender{},
		SiteBase: "https://example.test",
		Subject:  "Cointhink api token",
	})
	if err != nil {
		t.Fatalf("NewNotifier: %v", err)
	}
	svc := New(Deps{Store: unavailableStore{}, Notifier: n})
	ctx := context.Background()

	if _, err := svc.Register(ctx, "a@b.c"); !errors.Is(err, core.ErrUnavailable) {
		t.Fatalf("Register = %v, want core.ErrUnavailable in chain", err)
	}
	if _, err := svc.Auth(ctx, "tok"); !errors.Is(err, core.ErrUnavailable) {
		t.Fatalf("Auth = %v, want core.ErrUnavailable in chain", err)
	}
}

func TestAuth_EmptyToken(t *testing.T) {
	svc, _ := newTestService(t, &stubSender{})
	if _, err := svc.Auth(context.Background(), ""); !errors.Is(err, ErrEmptyToken) {
		t.Fatalf("Auth = %v, want ErrEmptyToken", err)
	}
}
