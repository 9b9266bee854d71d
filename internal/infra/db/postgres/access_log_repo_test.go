//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"codegate/internal/domain/model"
)

func TestAccessLogRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	ctx := context.Background()
	repo := NewAccessLogRepo(testPool)
	userRepo := NewUserRepo(testPool)

	user := model.NewUser(222)

	t.Run("should record a login and stamp logout once", func(t *testing.T) {
		cleanup(t)
		if err := userRepo.Save(ctx, user); err != nil {
			t.Fatalf("failed to save user: %v", err)
		}

		entry := &model.AccessLog{
			UserID:    user.ID,
			Code:      "AB12CD34",
			IPAddress: "203.0.113.7",
			UserAgent: "integration-test",
			LoginTime: time.Now(),
			SessionID: "sess-1",
		}
		if err := repo.Record(ctx, entry); err != nil {
			t.Fatalf("Record failed: %v", err)
		}

		first := time.Now()
		if err := repo.MarkLogout(ctx, "sess-1", first); err != nil {
			t.Fatalf("MarkLogout failed: %v", err)
		}
		// A second stamp must not move the recorded time.
		if err := repo.MarkLogout(ctx, "sess-1", first.Add(time.Hour)); err != nil {
			t.Fatalf("second MarkLogout failed: %v", err)
		}

		var logout time.Time
		err := testPool.QueryRow(ctx,
			`SELECT logout_time FROM access_logs WHERE session_id = $1`, "sess-1",
		).Scan(&logout)
		if err != nil {
			t.Fatalf("direct query failed: %v", err)
		}
		if logout.Sub(first).Abs() > time.Second {
			t.Errorf("logout_time moved: %v vs %v", logout, first)
		}
	})
}
