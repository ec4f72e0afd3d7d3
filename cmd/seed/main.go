// Command seed creates a user in the configured store and prints a token
// for it, so the API can be exercised without a login flow.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"

	"cafe/internal/auth"
	"cafe/internal/database"
	"cafe/internal/models"
	"cafe/internal/repositories"
	"cafe/pkg/config"
	"cafe/pkg/logger"
)

func main() {
	log := logger.New(logger.Config{Env: "development"})

	if err := execute(context.Background(), os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Error().Err(err).Msg("seed failed")
		os.Exit(1)
	}
}

// execute seeds the user described by args into the configured store. The
// store is closed before execute returns.
func execute(ctx context.Context, args []string, out io.Writer) (err error) {
	in, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	codec, err := auth.NewTokenCodec(cfg.Token.Seed)
	if err != nil {
		return errors.Wrap(err, "create token codec")
	}

	store, err := database.Open(ctx, cfg.Store)
	if err != nil {
		return errors.Wrap(err, "open store")
	}
	defer func() {
		if closeErr := store.Close(ctx); closeErr != nil && err == nil {
			err = errors.Wrap(closeErr, "close store")
		}
	}()

	return run(ctx, store.Usuarios, codec, cfg.Token, in, out)
}

func parseFlags(args []string) (seedInput, error) {
	flags := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	nombre := flags.String("nombre", "Administrador", "user name")
	email := flags.String("email", "admin@cafe.local", "user email")
	password := flags.String("password", "", "user password (required)")
	role := flags.String("role", string(models.AdminRole), "ADMIN_ROLE or USER_ROLE")
	if err := flags.Parse(args); err != nil {
		return seedInput{}, err
	}
	return seedInput{
		Nombre:   *nombre,
		Email:    *email,
		Password: *password,
		Role:     models.Role(*role),
	}, nil
}

type seedInput struct {
	Nombre   string
	Email    string
	Password string
	Role     models.Role
}

// run creates the user, or reuses it when the email exists and the password
// matches, and writes a token to out.
func run(ctx context.Context, users repositories.UserRepository, codec *auth.TokenCodec, tokens config.TokenConfig, in seedInput, out io.Writer) error {
	if in.Password == "" {
		return errors.New("--password is required")
	}
	if !in.Role.IsValid() {
		return errors.Errorf("unknown role %q", in.Role)
	}

	user := &models.Usuario{
		Nombre:   in.Nombre,
		Email:    in.Email,
		Password: in.Password,
		Role:     in.Role,
		Estado:   true,
	}
	if err := validator.New().Struct(user); err != nil {
		return errors.Wrap(err, "invalid user")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}
	user.Password = string(hash)

	err = users.Create(ctx, user)
	if errors.Is(err, repositories.ErrDuplicate) {
		existing, getErr := users.GetByEmail(ctx, in.Email)
		if getErr != nil {
			return errors.Wrap(getErr, "load existing user")
		}
		if bcrypt.CompareHashAndPassword([]byte(existing.Password), []byte(in.Password)) != nil {
			return errors.Errorf("user %s already exists with a different password", in.Email)
		}
		user = existing
	} else if err != nil {
		return errors.Wrap(err, "create user")
	}

	token, err := codec.Encode(models.IdentityOf(user), tokens.Caducidad)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "usuario: %s (%s, %s)\ntoken: %s\n", user.ID, user.Email, user.Role, token)
	return nil
}
