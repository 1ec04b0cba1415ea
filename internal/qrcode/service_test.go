package qrcode

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrattend/internal/apierr"
)

// fakeStore keeps codes in memory and can reject the first N creates
// with a unique violation, standing in for token collisions.
type fakeStore struct {
	codes      map[string]*Code
	offices    map[string]bool
	collisions int
	attempts   []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		codes:   make(map[string]*Code),
		offices: map[string]bool{"office-1": true},
	}
}

func (f *fakeStore) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	res := &ListResult{Codes: []Code{}, Page: q.Page, PerPage: q.PerPage}
	for _, c := range f.codes {
		res.Codes = append(res.Codes, *c)
	}
	res.Total = len(res.Codes)
	return res, nil
}

func (f *fakeStore) Get(ctx context.Context, id string) (*Code, error) {
	c, ok := f.codes[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeStore) Create(ctx context.Context, c *Code) error {
	f.attempts = append(f.attempts, c.Code)
	if f.collisions > 0 {
		f.collisions--
		return &pgconn.PgError{Code: "23505", ConstraintName: "qr_codes_code_key"}
	}
	c.ID = "qr-" + c.Code[:4]
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	f.codes[c.ID] = c
	return nil
}

func (f *fakeStore) SetActive(ctx context.Context, id string, active bool) (bool, error) {
	c, ok := f.codes[id]
	if !ok {
		return false, nil
	}
	c.IsActive = active
	return true, nil
}

func (f *fakeStore) Delete(ctx context.Context, id string) (bool, error) {
	_, ok := f.codes[id]
	delete(f.codes, id)
	return ok, nil
}

func (f *fakeStore) OfficeExists(ctx context.Context, id string) (bool, error) {
	return f.offices[id], nil
}

func newTestService(fs *fakeStore) *Service {
	svc := NewService(fs, "http://localhost:8081")
	svc.now = func() time.Time {
		return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestCreateMintsToken(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(fs)

	v, err := svc.Create(context.Background(), CreateRequest{
		OfficeLocationID: "office-1",
		ExpiresAt:        time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Len(t, v.Code.Code, tokenLength)
	assert.True(t, v.IsActive)
	assert.True(t, v.IsValid)
	assert.Equal(t, "http://localhost:8081/scan/"+v.Code.Code, v.ScanURL)
}

func TestCreateRetriesOnTokenCollision(t *testing.T) {
	fs := newFakeStore()
	fs.collisions = 2
	svc := newTestService(fs)

	v, err := svc.Create(context.Background(), CreateRequest{
		OfficeLocationID: "office-1",
		ExpiresAt:        time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, fs.attempts, 3)

	// Each attempt must carry a freshly minted token.
	assert.NotEqual(t, fs.attempts[0], fs.attempts[1])
	assert.NotEqual(t, fs.attempts[1], fs.attempts[2])
	assert.Equal(t, fs.attempts[2], v.Code.Code)
}

func TestCreateGivesUpAfterRepeatedCollisions(t *testing.T) {
	fs := newFakeStore()
	fs.collisions = maxMintAttempts
	svc := newTestService(fs)

	_, err := svc.Create(context.Background(), CreateRequest{
		OfficeLocationID: "office-1",
		ExpiresAt:        time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	require.Error(t, err)
	assert.Len(t, fs.attempts, maxMintAttempts)

	var api *apierr.Error
	require.True(t, errors.As(err, &api))
	assert.Equal(t, apierr.CodeInternal, api.Code)
}

func TestCreateStopsOnNonCollisionError(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(fs)
	boom := errors.New("connection reset")
	failing := &failingStore{fakeStore: fs, err: boom}
	svc.store = failing

	_, err := svc.Create(context.Background(), CreateRequest{
		OfficeLocationID: "office-1",
		ExpiresAt:        time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	require.Error(t, err)
	assert.Equal(t, 1, failing.calls, "a non-collision error must not be retried")
}

type failingStore struct {
	*fakeStore
	err   error
	calls int
}

func (f *failingStore) Create(ctx context.Context, c *Code) error {
	f.calls++
	return f.err
}

func TestCreateRejectsPastExpiry(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(fs)

	_, err := svc.Create(context.Background(), CreateRequest{
		OfficeLocationID: "office-1",
		ExpiresAt:        time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	require.Error(t, err)

	var api *apierr.Error
	require.True(t, errors.As(err, &api))
	assert.Equal(t, apierr.CodeInvalidArgument, api.Code)
	assert.Empty(t, fs.attempts)
}

func TestCreateUnknownOffice(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(fs)

	_, err := svc.Create(context.Background(), CreateRequest{
		OfficeLocationID: "office-missing",
		ExpiresAt:        time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	require.Error(t, err)

	var api *apierr.Error
	require.True(t, errors.As(err, &api))
	assert.Equal(t, apierr.CodeNotFound, api.Code)
}

func TestSetActiveToggles(t *testing.T) {
	fs := newFakeStore()
	svc := newTestService(fs)

	v, err := svc.Create(context.Background(), CreateRequest{
		OfficeLocationID: "office-1",
		ExpiresAt:        time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	toggled, err := svc.SetActive(context.Background(), v.ID, false)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)
	assert.False(t, toggled.IsValid, "a deactivated code is not scannable")
}
