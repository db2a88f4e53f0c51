package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/sencity/user-service/adapters/persistence"
	"github.com/sencity/user-service/internal/application/usecase/signup"
	"github.com/sencity/user-service/internal/config"
	"github.com/sencity/user-service/internal/domain/userprofile"
	"github.com/sencity/user-service/pkg/logger"
	"github.com/sencity/user-service/pkg/password"
)

// Seeds one profile from SEED_* environment variables through the same
// signup path the API uses.
func main() {
	fmt.Println("adding seed profile into database...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	appLogger := logger.NewZapLogger(cfg.App.Env)

	pool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		log.Fatalf("cannot connect DB: %v", err)
	}
	defer pool.Close()

	repo := persistence.NewPostgresUserProfileRepo(pool, appLogger)
	uc := signup.NewSignUpUseCase(repo, password.New(cfg.Security.HashPasswords), nil, appLogger)

	sub := userprofile.Submission{
		Name:     envField("SEED_NAME"),
		Telphone: envField("SEED_TELPHONE"),
		Email:    envField("SEED_EMAIL"),
		Password: envField("SEED_PASSWORD"),
		Address:  envField("SEED_ADDRESS"),
	}

	out, err := uc.Execute(context.Background(), signup.SignUpInput{Submission: sub})
	if err != nil {
		log.Fatalf("cannot add profile: %v", err)
	}

	fmt.Printf("added profile '%s' (%s) successfully!\n", sub.Email.Value, out.ProfileID)
}

func envField(key string) userprofile.Field {
	v, ok := os.LookupEnv(key)
	if !ok {
		return userprofile.Field{}
	}
	return userprofile.Text(v)
}
