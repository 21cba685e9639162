// Command tokengen mints a bearer token for local development against the
// review API. The signing secret comes from --secret or SCRY_AUTH_JWT_SECRET,
// which may also be set in a .env file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/phrazzld/scry-srs/internal/config"
	"github.com/phrazzld/scry-srs/internal/service/auth"
	flag "github.com/spf13/pflag"
)

const secretEnv = "SCRY_AUTH_JWT_SECRET"

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "tokengen: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	// a missing .env is fine
	_ = godotenv.Load()

	var (
		ownerFlag string
		secret    string
		lifetime  int
	)
	fs := flag.NewFlagSet("tokengen", flag.ContinueOnError)
	fs.StringVar(&ownerFlag, "owner", "", "owner UUID to embed in the token (random when empty)")
	fs.StringVar(&secret, "secret", os.Getenv(secretEnv), "HMAC signing secret")
	fs.IntVar(&lifetime, "lifetime-minutes", 60, "token lifetime in minutes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if secret == "" {
		return errors.New("no signing secret: pass --secret or set " + secretEnv)
	}

	owner := uuid.New()
	if ownerFlag != "" {
		parsed, err := uuid.Parse(ownerFlag)
		if err != nil {
			return fmt.Errorf("invalid --owner: %w", err)
		}
		owner = parsed
	}

	svc, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            secret,
		TokenLifetimeMinutes: lifetime,
	})
	if err != nil {
		return err
	}

	token, err := svc.GenerateToken(context.Background(), owner)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	fmt.Fprintf(out, "owner: %s\ntoken: %s\n", owner, token)
	return nil
}
