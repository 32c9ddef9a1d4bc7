package services

import (
	"context"
	"testing"
	"time"

	"github.com/readleap/readleap-backend/internal/types"
)

func seedSession(t *testing.T, env *testEnv, user *types.User) *types.ReadingSession {
	t.Helper()
	article := seedArticle(t, env.db, "streak article", types.ArticleStatusPublished)
	session := &types.ReadingSession{UserID: user.ID, ArticleID: article.ID}
	mustCreate(t, env.db, session)
	return session
}

func TestHandleCheckInFirstDay(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := seedUser(t, env.db)
	session := seedSession(t, env, user)

	day := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	checkedIn, streak, err := env.streak.HandleCheckIn(ctx, env.db, user, session, day)
	if err != nil {
		t.Fatalf("HandleCheckIn: %v", err)
	}
	if !checkedIn {
		t.Fatal("expected a new check-in")
	}
	if streak != 1 || user.StreakDays != 1 || user.MaxStreakDays != 1 {
		t.Fatalf("streak = %d, user = %d/%d, want 1/1/1", streak, user.StreakDays, user.MaxStreakDays)
	}

	stored, err := env.checkInRepo.GetByUserAndDate(ctx, nil, user.ID, UTCDay(day))
	if err != nil {
		t.Fatalf("GetByUserAndDate: %v", err)
	}
	if stored == nil {
		t.Fatal("check-in row missing")
	}
	if stored.SessionID == nil || *stored.SessionID != session.ID {
		t.Fatal("check-in not linked to session")
	}
}

func TestHandleCheckInSameDayIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := seedUser(t, env.db)
	session := seedSession(t, env, user)

	morning := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC)

	if _, _, err := env.streak.HandleCheckIn(ctx, env.db, user, session, morning); err != nil {
		t.Fatalf("first check-in: %v", err)
	}
	checkedIn, streak, err := env.streak.HandleCheckIn(ctx, env.db, user, session, evening)
	if err != nil {
		t.Fatalf("second check-in: %v", err)
	}
	if checkedIn {
		t.Fatal("second completion on the same day must not check in again")
	}
	if streak != 1 || user.StreakDays != 1 {
		t.Fatalf("streak = %d, user = %d, want 1", streak, user.StreakDays)
	}
}

func TestHandleCheckInConsecutiveDays(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := seedUser(t, env.db)
	session := seedSession(t, env, user)

	start := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		day := start.AddDate(0, 0, i)
		checkedIn, streak, err := env.streak.HandleCheckIn(ctx, env.db, user, session, day)
		if err != nil {
			t.Fatalf("day %d: %v", i, err)
		}
		if !checkedIn {
			t.Fatalf("day %d: expected a new check-in", i)
		}
		if streak != i+1 {
			t.Fatalf("day %d: streak = %d, want %d", i, streak, i+1)
		}
	}
	if user.MaxStreakDays != 3 {
		t.Fatalf("max streak = %d, want 3", user.MaxStreakDays)
	}
}

func TestHandleCheckInGapResetsStreak(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := seedUser(t, env.db)
	session := seedSession(t, env, user)

	day1 := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	day4 := day1.AddDate(0, 0, 3)

	for _, day := range []time.Time{day1, day2} {
		if _, _, err := env.streak.HandleCheckIn(ctx, env.db, user, session, day); err != nil {
			t.Fatalf("check-in %v: %v", day, err)
		}
	}
	if user.StreakDays != 2 {
		t.Fatalf("streak before gap = %d, want 2", user.StreakDays)
	}

	_, streak, err := env.streak.HandleCheckIn(ctx, env.db, user, session, day4)
	if err != nil {
		t.Fatalf("check-in after gap: %v", err)
	}
	if streak != 1 {
		t.Fatalf("streak after gap = %d, want 1", streak)
	}
	if user.MaxStreakDays != 2 {
		t.Fatalf("max streak = %d, want 2 preserved across the reset", user.MaxStreakDays)
	}
}

func TestUTCDay(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	// 23:30 EST on March 9 is already March 10 in UTC.
	local := time.Date(2026, 3, 9, 23, 30, 0, 0, est)
	got := UTCDay(local)
	want := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("UTCDay = %v, want %v", got, want)
	}
}
