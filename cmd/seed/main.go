// Command seed creates a user and mints a batch of access codes for them.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/oklog/ulid/v2"

	"codegate/internal/config"
	"codegate/internal/domain"
	"codegate/internal/domain/model"
	"codegate/internal/domain/ports/repository"
	pg "codegate/internal/infra/db/postgres"
	"codegate/internal/infra/logging"
	"codegate/internal/usecase"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	tgID := flag.Int64("telegram-id", 0, "external identity of the code owner")
	count := flag.Int("count", 1, "number of codes to mint")
	tariff := flag.String("tariff", "standard", "plan label stored with the codes")
	validFor := flag.Duration("valid-for", 24*time.Hour, "time until the codes expire")
	flag.Parse()

	if *tgID <= 0 {
		log.Fatal("-telegram-id is required")
	}

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4, logger)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	if err := pg.InitSchema(ctx, pool); err != nil {
		log.Fatalf("schema: %v", err)
	}

	users := pg.NewUserRepo(pool)
	codes := pg.NewCodeRepo(pool)

	user, err := users.FindByTelegramID(ctx, *tgID)
	if errors.Is(err, domain.ErrNotFound) {
		user = model.NewUser(*tgID)
		if err := users.Save(ctx, user); err != nil {
			log.Fatalf("create user: %v", err)
		}
		fmt.Printf("created user %s (telegram_id=%d)\n", user.ID, *tgID)
	} else if err != nil {
		log.Fatalf("find user: %v", err)
	}

	now := time.Now()
	for i := 0; i < *count; i++ {
		c, err := mintOne(ctx, codes, user.ID, *tariff, now, *validFor)
		if err != nil {
			log.Fatalf("save code: %v", err)
		}
		fmt.Printf("minted: %s (tariff=%s, expires=%s)\n", c.Code, c.Tariff, c.ExpiresAt.Format(time.RFC3339))
	}
}

// mintOne saves a freshly generated code, regenerating on the rare value
// collision.
func mintOne(ctx context.Context, codes repository.CodeRepository, userID, tariff string, now time.Time, validFor time.Duration) (*model.Code, error) {
	for attempt := 0; attempt < 5; attempt++ {
		value, err := usecase.GenerateCode()
		if err != nil {
			return nil, err
		}
		c := &model.Code{
			ID:        ulid.Make().String(),
			UserID:    userID,
			Code:      value,
			ExpiresAt: now.Add(validFor),
			Tariff:    tariff,
			CreatedAt: now,
		}
		err = codes.Save(ctx, c)
		if errors.Is(err, domain.ErrDuplicateCode) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, domain.ErrDuplicateCode
}
