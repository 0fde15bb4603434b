package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type client struct {
	BaseURL string
	HTTP    *http.Client
}

func (c *client) get(path string) (int, string, error) {
	u := strings.TrimRight(c.BaseURL, "/") + path
	resp, err := c.HTTP.Get(u)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(b), nil
}

func (c *client) print(status int, body string) error {
	if strings.TrimSpace(body) != "" {
		fmt.Println(body)
	} else {
		fmt.Printf("status=%d\n", status)
	}
	if status >= 400 {
		return fmt.Errorf("request failed with status %d", status)
	}
	return nil
}

func main() {
	baseURL := envOr("MAILKEY_URL", "http://localhost:8080")

	cl := &client{HTTP: &http.Client{Timeout: 30 * time.Second}}

	root := &cobra.Command{
		Use:           "mailkeyctl",
		Short:         "CLI para un servicio mailkey en ejecución",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cl.BaseURL = baseURL
		},
	}
	root.PersistentFlags().StringVar(&baseURL, "url", baseURL, "URL base del servicio (env MAILKEY_URL)")

	root.AddCommand(&cobra.Command{
		Use:   "register <email>",
		Short: "Registra (o re-registra) una cuenta y dispara el mail de verificación",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.get("/register/" + url.PathEscape(args[0]))
			if err != nil {
				return err
			}
			return cl.print(status, body)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "auth <token>",
		Short: "Resuelve un token a su email (401 si el token no existe)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.get("/auth/" + url.PathEscape(args[0]))
			if err != nil {
				return err
			}
			return cl.print(status, body)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "ping",
		Short: "Verifica que el servicio esté listo (GET /readyz)",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.get("/readyz")
			if err != nil {
				return err
			}
			return cl.print(status, body)
		},
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
