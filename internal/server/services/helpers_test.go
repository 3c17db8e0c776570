package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bomin1134/gb-ud-portal/internal/directory"
	"github.com/bomin1134/gb-ud-portal/internal/logging"
	"github.com/bomin1134/gb-ud-portal/internal/server/config"
	"github.com/bomin1134/gb-ud-portal/internal/server/models"
	"github.com/bomin1134/gb-ud-portal/internal/server/objectstore"
	"github.com/bomin1134/gb-ud-portal/internal/server/repositories/repomanager"
	"github.com/bomin1134/gb-ud-portal/internal/server/repositories/submissions"
	"github.com/bomin1134/gb-ud-portal/internal/weeks"
	"github.com/stretchr/testify/require"
)

var (
	admin   = directory.User{ID: "gbudc", Role: directory.RoleAdmin}
	branch1 = directory.User{ID: "gb001", Role: directory.RoleBranch, BranchID: 1}
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	return cfg
}

func testDirectory(t *testing.T) *directory.Directory {
	t.Helper()
	d, err := directory.Default()
	require.NoError(t, err)
	return d
}

func testCalendar(t *testing.T) *weeks.Calendar {
	t.Helper()
	c, err := weeks.NewCalendar("Asia/Seoul")
	require.NoError(t, err)
	return c
}

// flakyStore fails every Put whose data contains "fail" and can be
// told to fail DeletePrefix. It also records the peak number of concurrent
// Puts.
type flakyStore struct {
	*objectstore.MemoryStore
	deleteErr error
	delay     time.Duration

	inFlight atomic.Int32
	mu       sync.Mutex
	peak     int32
}

func newFlakyStore() *flakyStore {
	return &flakyStore{MemoryStore: objectstore.NewMemoryStore()}
}

func (f *flakyStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	f.mu.Lock()
	f.peak = max(f.peak, n)
	f.mu.Unlock()
	time.Sleep(f.delay)

	if strings.Contains(string(data), "fail") {
		return errors.New("storage unavailable")
	}
	return f.MemoryStore.Put(ctx, key, data, contentType)
}

func (f *flakyStore) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	return f.MemoryStore.DeletePrefix(ctx, prefix)
}

// brokenSubmissions fails every write.
type brokenSubmissions struct {
	submissions.Repository
}

func (brokenSubmissions) Upsert(context.Context, *models.Submission) error {
	return errors.New("db is down")
}

func (brokenSubmissions) Reset(context.Context, int, string) error {
	return errors.New("db is down")
}

type testManager struct {
	repos repomanager.Repositories
}

func (m *testManager) RunMigrations(context.Context) error { return nil }
func (m *testManager) Repos() repomanager.Repositories { return m.repos }
func (m *testManager) Close() error { return nil }
func (m *testManager) WithTx(ctx context.Context, fn func(context.Context, repomanager.Repositories) error) error {
	return fn(ctx, m.repos)
}

func withBrokenWrites(m *repomanager.MemoryRepositoryManager) *testManager {
	repos := m.Repos()
	repos.Submissions = brokenSubmissions{Repository: repos.Submissions}
	return &testManager{repos: repos}
}

func newSubmissionService(t *testing.T, m repomanager.RepositoryManager, store objectstore.Store) *SubmissionService {
	t.Helper()
	return NewSubmissionService(m, store, testDirectory(t), testCalendar(t), logging.Discard(), testConfig())
}
