package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/celulas/celulas-api/internal/config"
	"github.com/celulas/celulas-api/internal/domain/user"
	"github.com/celulas/celulas-api/internal/pkg/database"
	"github.com/celulas/celulas-api/internal/pkg/jwt"
	"github.com/celulas/celulas-api/internal/pkg/logger"
)

// Prints a signed identity token for a local user so the API can be exercised
// without the identity provider. Refuses to run in production.
func main() {
	userID := flag.String("user", "", "domain user id")
	externalID := flag.String("external-id", "", "identity provider subject")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	create := flag.Bool("create", false, "provision the -external-id user when missing")
	email := flag.String("email", "", "email for a provisioned user")
	role := flag.String("role", string(user.RoleDiscipulo), "role for a provisioned user")
	admin := flag.Bool("admin", false, "grant platform admin to a provisioned user")
	flag.Parse()

	cfg := config.Load()
	if err := logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
		Service:     "dev-token",
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logger")
	}
	if cfg.IsProduction() {
		log.Fatal().Msg("dev-token is disabled in production")
	}

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer database.Close(db)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	repo := user.NewRepository(db)
	var u *user.User
	switch {
	case *externalID != "":
		u, err = repo.GetByExternalID(ctx, *externalID)
		if errors.Is(err, user.ErrUserNotFound) && *create {
			u, err = provision(ctx, repo, *externalID, *email, *role, *admin)
		}
	case *userID != "":
		id, parseErr := uuid.Parse(*userID)
		if parseErr != nil {
			log.Fatal().Err(parseErr).Msg("Invalid -user")
		}
		u, err = repo.GetByID(ctx, id)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("User lookup failed")
	}

	token, err := jwt.NewService(cfg.AuthJWTSecret, cfg.AuthJWTIssuer).GenerateIdentityToken(u.ExternalID, u.Email, *ttl)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to sign token")
	}

	log.Info().
		Str("user_id", u.ID.String()).
		Str("role", string(u.Role)).
		Bool("is_admin", u.IsAdmin).
		Dur("ttl", *ttl).
		Msg("Issued development token")
	fmt.Println(token)
}

func provision(ctx context.Context, repo user.Repository, externalID, email, role string, admin bool) (*user.User, error) {
	r, ok := user.ParseRole(role)
	if !ok {
		return nil, fmt.Errorf("unknown role %q", role)
	}
	u := &user.User{
		ExternalID: externalID,
		Email:      email,
		Name:       externalID,
		Role:       r,
		IsAdmin:    admin,
	}
	if err := repo.Create(ctx, u); err != nil {
		return nil, err
	}
	log.Info().Str("user_id", u.ID.String()).Msg("Provisioned development user")
	return u, nil
}
