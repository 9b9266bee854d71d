//go:build integration

package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"codegate/internal/domain"
	"codegate/internal/domain/model"

	"github.com/oklog/ulid/v2"
)

func TestCodeRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	ctx := context.Background()
	repo := NewCodeRepo(testPool)
	userRepo := NewUserRepo(testPool)

	user := model.NewUser(111)

	seedCode := func(t *testing.T, code string, expiresAt time.Time) *model.Code {
		t.Helper()
		cleanup(t)
		if err := userRepo.Save(ctx, user); err != nil {
			t.Fatalf("failed to save user: %v", err)
		}
		c := &model.Code{
			ID:        ulid.Make().String(),
			UserID:    user.ID,
			Code:      code,
			ExpiresAt: expiresAt,
			Tariff:    "standard",
			CreatedAt: time.Now(),
		}
		if err := repo.Save(ctx, c); err != nil {
			t.Fatalf("failed to save code: %v", err)
		}
		return c
	}

	t.Run("should save, find, and activate a code exactly once", func(t *testing.T) {
		seedCode(t, "AB12CD34", time.Now().Add(time.Hour))

		found, err := repo.FindByCode(ctx, "AB12CD34")
		if err != nil {
			t.Fatalf("FindByCode failed: %v", err)
		}
		if found.IsUsed || found.SessionID != nil {
			t.Fatal("a fresh code must be unused with no session")
		}

		ok, err := repo.Activate(ctx, "AB12CD34", "sess-1", time.Now())
		if err != nil {
			t.Fatalf("Activate failed: %v", err)
		}
		if !ok {
			t.Fatal("first activation must win")
		}

		ok, err = repo.Activate(ctx, "AB12CD34", "sess-2", time.Now())
		if err != nil {
			t.Fatalf("second Activate failed: %v", err)
		}
		if ok {
			t.Fatal("a used code must not activate again")
		}

		found, err = repo.FindByCode(ctx, "AB12CD34")
		if err != nil {
			t.Fatalf("FindByCode after activation failed: %v", err)
		}
		if !found.IsUsed || found.SessionID == nil || *found.SessionID != "sess-1" {
			t.Errorf("activation state not persisted: %+v", found)
		}
		if found.LastUsedAt == nil {
			t.Error("activation must stamp last_used_at")
		}
	})

	t.Run("lookup is byte-exact", func(t *testing.T) {
		seedCode(t, "AB12CD34", time.Now().Add(time.Hour))
		if _, err := repo.FindByCode(ctx, "ab12cd34"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("lowercased lookup must miss, got %v", err)
		}
	})

	t.Run("concurrent activation yields a single winner", func(t *testing.T) {
		seedCode(t, "RACE1234", time.Now().Add(time.Hour))

		const attempts = 8
		wins := make(chan bool, attempts)
		var wg sync.WaitGroup
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				ok, err := repo.Activate(ctx, "RACE1234", ulid.Make().String(), time.Now())
				if err != nil {
					t.Errorf("Activate: %v", err)
					return
				}
				wins <- ok
			}(i)
		}
		wg.Wait()
		close(wins)

		var winners int
		for ok := range wins {
			if ok {
				winners++
			}
		}
		if winners != 1 {
			t.Fatalf("winners = %d, want exactly 1", winners)
		}
	})

	t.Run("session lifecycle through find and clear", func(t *testing.T) {
		seedCode(t, "SESS1234", time.Now().Add(time.Hour))
		if ok, err := repo.Activate(ctx, "SESS1234", "sess-1", time.Now()); err != nil || !ok {
			t.Fatalf("Activate: ok=%v err=%v", ok, err)
		}

		c, err := repo.FindActiveSession(ctx, user.ID, "sess-1")
		if err != nil {
			t.Fatalf("FindActiveSession failed: %v", err)
		}
		if c.Code != "SESS1234" {
			t.Errorf("wrong row: %+v", c)
		}

		if err := repo.ClearSession(ctx, user.ID, "sess-1"); err != nil {
			t.Fatalf("ClearSession failed: %v", err)
		}
		if _, err := repo.FindActiveSession(ctx, user.ID, "sess-1"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("a cleared session must be gone, got %v", err)
		}
	})

	t.Run("refresh flag clears once", func(t *testing.T) {
		c := seedCode(t, "REFR1234", time.Now().Add(time.Hour))
		c.NeedsRefresh = true
		if err := repo.Save(ctx, c); err != nil {
			t.Fatalf("save with refresh flag: %v", err)
		}
		if ok, err := repo.Activate(ctx, "REFR1234", "sess-1", time.Now()); err != nil || !ok {
			t.Fatalf("Activate: ok=%v err=%v", ok, err)
		}
		// Activation itself consumes a pending flag.
		found, err := repo.FindActiveSession(ctx, user.ID, "sess-1")
		if err != nil {
			t.Fatalf("FindActiveSession: %v", err)
		}
		if found.NeedsRefresh {
			t.Error("activation must reset needs_refresh")
		}

		if err := repo.ClearRefresh(ctx, user.ID, "sess-1"); err != nil {
			t.Fatalf("ClearRefresh failed: %v", err)
		}
	})
}
