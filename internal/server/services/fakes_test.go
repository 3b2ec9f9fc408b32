package services

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/silvercar/backend/internal/common"
	"github.com/silvercar/backend/internal/dbx"
	"github.com/silvercar/backend/internal/logging"
	"github.com/silvercar/backend/internal/server/audit"
	"github.com/silvercar/backend/internal/server/auth"
	"github.com/silvercar/backend/internal/server/config"
	"github.com/silvercar/backend/internal/server/models"
	ordersrepo "github.com/silvercar/backend/internal/server/repositories/orders"
	usersrepo "github.com/silvercar/backend/internal/server/repositories/users"
)

// --- shared test wiring ---

var (
	testKeyOnce sync.Once
	testKey     *rsa.PrivateKey
)

func newTestCodec(t *testing.T) *auth.Codec {
	t.Helper()
	testKeyOnce.Do(func() {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
		testKey = key
	})
	return auth.NewCodec(&auth.KeyPair{Private: testKey, Public: &testKey.PublicKey})
}

func newTestHasher() *auth.Hasher {
	return auth.NewHasher(bcrypt.MinCost)
}

func testConfig() *config.Config {
	return &config.Config{
		AccessTokenTTL: 15 * time.Minute,
		ResetTokenTTL:  time.Hour,
		HashCost:       bcrypt.MinCost,
	}
}

func nopLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestRecorder() *audit.Recorder {
	return audit.NewRecorder(nopLogger())
}

// --- in-memory repositories ---

type memUsersRepo struct {
	mu      sync.Mutex
	byEmail map[string]*models.User
}

func newMemUsersRepo() *memUsersRepo {
	return &memUsersRepo{byEmail: map[string]*models.User{}}
}

func (r *memUsersRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[user.Email]; ok {
		return nil, common.ErrEmailTaken
	}
	u := *user
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	r.byEmail[u.Email] = &u
	out := u
	return &out, nil
}

func (r *memUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (r *memUsersRepo) GetByEmailAndID(ctx context.Context, email, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byEmail[email]
	if !ok || u.ID != id {
		return nil, common.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (r *memUsersRepo) UpdatePassword(ctx context.Context, id, email, passwordHash string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byEmail[email]
	if !ok || u.ID != id {
		return 0, nil
	}
	u.PasswordHash = passwordHash
	return 1, nil
}

type memOrdersRepo struct {
	mu        sync.Mutex
	orders    []*models.Order
	createErr error
}

func (r *memOrdersRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	o := *order
	o.ID = uuid.NewString()
	o.CreatedAt = time.Now()
	if o.Status == "" {
		o.Status = models.OrderStatusPending
	}
	r.orders = append(r.orders, &o)
	out := o
	return &out, nil
}

func (r *memOrdersRepo) ListByFromID(ctx context.Context, fromID string) ([]*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.Order
	for _, o := range r.orders {
		if o.FromID == fromID {
			out := *o
			result = append(result, &out)
		}
	}
	return result, nil
}

type fakeRepoManager struct {
	users  *memUsersRepo
	orders *memOrdersRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository      { return m.users }
func (m *fakeRepoManager) Orders(db dbx.DBTX) ordersrepo.Repository    { return m.orders }

// --- fake email sender ---

type sentMail struct {
	to      string
	subject string
	body    string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeSender) Send(ctx context.Context, to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func (f *fakeSender) last(t *testing.T) sentMail {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		t.Fatalf("no mail was sent")
	}
	return f.sent[len(f.sent)-1]
}
