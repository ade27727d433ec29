package service

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/mentor-directory/internal/auth"
	"github.com/sakif/mentor-directory/internal/model"
	"github.com/sakif/mentor-directory/internal/repository/sqlite"
	"github.com/sakif/mentor-directory/internal/search"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakeNotifier records the codes it was asked to deliver.
type fakeNotifier struct {
	mu     sync.Mutex
	verify map[string]string // accountID -> code
	reset  map[string]string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{verify: map[string]string{}, reset: map[string]string{}}
}

func (n *fakeNotifier) SendVerification(_ context.Context, a *model.Account, code string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.verify[a.ID] = code
	return nil
}

func (n *fakeNotifier) SendPasswordReset(_ context.Context, a *model.Account, code string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reset[a.ID] = code
	return nil
}

type testEnv struct {
	db       *sqlite.DB
	accounts *AccountService
	profiles *ProfileService
	mentors  *MentorService
	notifier *fakeNotifier
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestEnv wires every service over one in-memory database.
func newTestEnv(t *testing.T, emailDomain string) *testEnv {
	t.Helper()
	logger := testLogger()

	db, err := sqlite.New(":memory:", logger)
	if err != nil {
		t.Fatalf("sqlite.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	notifier := newFakeNotifier()
	engine := search.NewEngine(search.DefaultAliases(), nil)

	return &testEnv{
		db:       db,
		notifier: notifier,
		accounts: NewAccountService(db, db, tokens, auth.NewPasswordService(bcrypt.MinCost), notifier, emailDomain, logger),
		profiles: NewProfileService(db, db, emailDomain, logger),
		mentors:  NewMentorService(db, db, db, engine, 0, 0, logger),
	}
}

func (e *testEnv) register(t *testing.T, email, first, last string) *model.Account {
	t.Helper()
	res, err := e.accounts.Register(context.Background(), RegisterInput{
		Email: email, Password: "password123", FirstName: first, LastName: last,
	})
	if err != nil {
		t.Fatalf("Register(%s): %v", email, err)
	}
	return res.Account
}

func ptr[T any](v T) *T { return &v }
