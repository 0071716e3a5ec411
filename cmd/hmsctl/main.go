// Command hmsctl is a terminal client for the hospital API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yusufkecer/hospital-backend/internal/apiclient"
)

type app struct {
	v      *viper.Viper
	client *apiclient.Client
	out    io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "hmsctl",
		Short:         "Command-line client for the hospital management API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.out = cmd.OutOrStdout()
			return a.connect()
		},
	}

	flags := root.PersistentFlags()
	flags.String("api-url", "http://localhost:8080", "base URL of the API (HMS_API_URL)")
	flags.String("token-file", defaultTokenFile(), "where the session token is kept (HMS_TOKEN_FILE)")
	flags.Duration("timeout", 15*time.Second, "per-request timeout")

	a.v.SetEnvPrefix("HMS")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	a.v.BindPFlag("api_url", flags.Lookup("api-url"))
	a.v.BindPFlag("token_file", flags.Lookup("token-file"))
	a.v.BindPFlag("timeout", flags.Lookup("timeout"))

	root.AddCommand(
		a.loginCmd(),
		a.registerCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.dashboardCmd(),
		a.bmiCmd(),
		a.patientsCmd(),
		a.appointmentsCmd(),
		a.queueCmd(),
		a.messagesCmd(),
	)
	return root
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".hmsctl-token"
	}
	return filepath.Join(dir, "hmsctl", "token")
}

func (a *app) connect() error {
	session := apiclient.NewSession(apiclient.FileTokenStore{Path: a.v.GetString("token_file")})
	if err := session.Restore(); err != nil {
		return err
	}
	a.client = apiclient.NewClient(apiclient.ClientConfig{
		BaseURL: a.v.GetString("api_url"),
		Session: session,
	})
	return nil
}

func (a *app) ctx(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), a.v.GetDuration("timeout"))
}

// render writes the payload of a successful envelope as indented JSON, or
// returns the envelope's error.
func render[T any](a *app, env apiclient.Envelope[T]) error {
	if err := env.Err(); err != nil {
		return err
	}
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(env.Data)
}
