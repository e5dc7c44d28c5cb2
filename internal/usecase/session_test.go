package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/polkiloo/veo3store/internal/domain/model"
	testhelpers "github.com/polkiloo/veo3store/internal/test"
)

func TestSessionUseCaseNewLoginReplacesPrevious(t *testing.T) {
	repo := testhelpers.NewSessionRepositoryStub()
	metrics := testhelpers.NewMetricsStub()
	uc := newSessions(repo, metrics)
	ids := 0
	uc.newID = func() string {
		ids++
		return fmt.Sprintf("s%d", ids)
	}
	ctx := context.Background()

	first, err := uc.CreateSession(ctx, 7, model.SessionMeta{UserAgent: "phone"})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	if !uc.Validate(ctx, 7, first) {
		t.Fatalf("expected first session to be valid")
	}

	second, err := uc.CreateSession(ctx, 7, model.SessionMeta{UserAgent: "laptop"})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct session ids")
	}
	if uc.Validate(ctx, 7, first) {
		t.Fatalf("expected first session to be replaced")
	}
	if !uc.Validate(ctx, 7, second) {
		t.Fatalf("expected second session to be valid")
	}

	current, err := uc.Current(ctx, 7)
	if err != nil || current.UserAgent != "laptop" {
		t.Fatalf("unexpected current session %+v %v", current, err)
	}
	if metrics.Session(sessionCreated) != 2 || metrics.Session(sessionInvalid) != 1 || metrics.Session(sessionValid) != 2 {
		t.Fatalf("unexpected session metrics %+v", metrics.Sessions)
	}
}

func TestSessionUseCaseSessionsAreIndependentPerUser(t *testing.T) {
	uc := newSessions(testhelpers.NewSessionRepositoryStub(), nil)
	ctx := context.Background()

	a, _ := uc.CreateSession(ctx, 1, model.SessionMeta{})
	b, _ := uc.CreateSession(ctx, 2, model.SessionMeta{})
	if !uc.Validate(ctx, 1, a) || !uc.Validate(ctx, 2, b) {
		t.Fatalf("expected both users to keep their sessions")
	}
	if uc.Validate(ctx, 1, b) {
		t.Fatalf("session of another user must not validate")
	}
}

func TestSessionUseCaseRecordsTimestamps(t *testing.T) {
	repo := testhelpers.NewSessionRepositoryStub()
	uc := newSessions(repo, nil)
	fixed := time.Date(2026, 3, 14, 9, 0, 0, 0, time.FixedZone("ICT", 7*3600))
	uc.now = func() time.Time { return fixed }

	if _, err := uc.CreateSession(context.Background(), 3, model.SessionMeta{IP: "1.2.3.4"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	stored := repo.Sessions[3]
	if !stored.CreatedAt.Equal(fixed) || stored.CreatedAt.Location() != time.UTC {
		t.Fatalf("expected UTC creation time, got %v", stored.CreatedAt)
	}
	if !stored.LastSeenAt.Equal(stored.CreatedAt) {
		t.Fatalf("expected last seen to equal creation time")
	}
}

func TestSessionUseCaseFailsOpenWhenStoreUnavailable(t *testing.T) {
	repo := testhelpers.NewSessionRepositoryStub()
	metrics := testhelpers.NewMetricsStub()
	uc := newSessions(repo, metrics)
	repo.GetErr = errors.New("redis: connection refused")

	if !uc.Validate(context.Background(), 1, "whatever") {
		t.Fatalf("expected store outage to allow the request")
	}
	if metrics.Session(sessionStoreError) != 1 {
		t.Fatalf("expected store error to be counted")
	}
}

func TestSessionUseCaseMissingSessionIsInvalid(t *testing.T) {
	uc := newSessions(testhelpers.NewSessionRepositoryStub(), nil)
	if uc.Validate(context.Background(), 1, "s1") {
		t.Fatalf("expected missing session to be invalid")
	}
}

func TestSessionUseCaseCreateError(t *testing.T) {
	repo := testhelpers.NewSessionRepositoryStub()
	repo.PutErr = errors.New("redis down")
	uc := newSessions(repo, nil)
	if _, err := uc.CreateSession(context.Background(), 1, model.SessionMeta{}); !errors.Is(err, repo.PutErr) {
		t.Fatalf("expected put error, got %v", err)
	}
}

func TestSessionUseCaseLogout(t *testing.T) {
	repo := testhelpers.NewSessionRepositoryStub()
	uc := newSessions(repo, nil)
	ctx := context.Background()

	id, _ := uc.CreateSession(ctx, 4, model.SessionMeta{})
	if err := uc.InvalidateOnLogout(ctx, 4); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if uc.Validate(ctx, 4, id) {
		t.Fatalf("expected session to be gone after logout")
	}
	if err := uc.InvalidateOnLogout(ctx, 4); err != nil {
		t.Fatalf("second logout should be a no-op, got %v", err)
	}
}

func TestSessionUseCaseDefaultTTL(t *testing.T) {
	uc := NewSessionUseCase(SessionParams{Sessions: testhelpers.NewSessionRepositoryStub(), Logger: discardLogger()})
	if uc.ttl != 24*time.Hour {
		t.Fatalf("expected 24h default ttl, got %s", uc.ttl)
	}
}
