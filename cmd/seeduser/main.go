// Creates an account or updates its role. Also prints bcrypt hashes for
// manual inserts.
//
//	go run ./cmd/seeduser -email admin@example.com -password secreto -rol admin
//	go run ./cmd/seeduser -hash secreto
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/config"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/infra"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/model"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/repository"
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/rol"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	email := flag.String("email", "admin@example.com", "account e-mail")
	password := flag.String("password", "", "password (required for new accounts)")
	nombre := flag.String("nombre", "Admin", "display name")
	rolFlag := flag.String("rol", string(rol.Admin), "admin | comercial")
	hashOnly := flag.String("hash", "", "print the bcrypt hash of this password and exit")
	flag.Parse()

	if *hashOnly != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(*hashOnly), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal().Err(err).Msg("bcrypt")
		}
		fmt.Println(string(h))
		return
	}

	r := rol.Rol(*rolFlag)
	if r != rol.Admin && r != rol.Comercial {
		log.Fatal().Str("rol", *rolFlag).Msg("unknown role")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	ctx := context.Background()
	repo := repository.NewUsuarioRepository(db)
	addr := strings.ToLower(strings.TrimSpace(*email))

	u, err := repo.FindByEmail(ctx, addr)
	switch {
	case err == nil:
		if err := repo.AsignarRol(ctx, u.ID, string(r)); err != nil {
			log.Fatal().Err(err).Msg("assign role")
		}
		log.Info().Str("email", addr).Str("rol", string(r)).Msg("role updated")
	case errors.Is(err, gorm.ErrRecordNotFound):
		if *password == "" {
			log.Fatal().Msg("-password is required to create an account")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal().Err(err).Msg("bcrypt")
		}
		u = &model.Usuario{ID: uuid.New(), Email: addr, Nombre: *nombre, PasswordHash: string(hash), Activo: true}
		if err := repo.Create(ctx, u, string(r)); err != nil {
			log.Fatal().Err(err).Msg("create user")
		}
		log.Info().Str("email", addr).Str("rol", string(r)).Msg("user created")
	default:
		log.Fatal().Err(err).Msg("lookup user")
	}
}
