package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sanjay-gangishetty/VideoGen/config"
	"github.com/sanjay-gangishetty/VideoGen/internal/apperrors"
	"github.com/sanjay-gangishetty/VideoGen/internal/domain"
	"github.com/sanjay-gangishetty/VideoGen/internal/models"
	"github.com/sanjay-gangishetty/VideoGen/internal/repository"
	"github.com/sanjay-gangishetty/VideoGen/pkg/videogen"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVideoStore struct {
	nextID uint
	rows   map[uint]*models.VideoLog
}

func newFakeVideoStore() *fakeVideoStore {
	return &fakeVideoStore{nextID: 1, rows: make(map[uint]*models.VideoLog)}
}

func (f *fakeVideoStore) Create(v *models.VideoLog) error {
	v.ID = f.nextID
	f.nextID++
	f.rows[v.ID] = v
	return nil
}

func (f *fakeVideoStore) GetByID(id uint) (*models.VideoLog, error) {
	v, ok := f.rows[id]
	if !ok {
		return nil, apperrors.ErrVideoNotFound
	}
	copied := *v
	return &copied, nil
}

func (f *fakeVideoStore) ListByUser(userID uint, status string, limit, offset int) ([]models.VideoLog, error) {
	var out []models.VideoLog
	for _, v := range f.rows {
		if v.UserID == userID && (status == "" || v.Status == status) {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (f *fakeVideoStore) UpdateFromPoll(id uint, status, videoURL, errorMessage string) (*models.VideoLog, error) {
	v, ok := f.rows[id]
	if !ok {
		return nil, apperrors.ErrVideoNotFound
	}
	if !domain.IsTerminalVideoStatus(v.Status) {
		v.Status = status
		if videoURL != "" {
			v.VideoURL = videoURL
		}
		if errorMessage != "" {
			v.ErrorMessage = errorMessage
		}
	}
	return f.GetByID(id)
}

func (f *fakeVideoStore) MarkCancelled(id uint) (bool, error) {
	v, ok := f.rows[id]
	if !ok {
		return false, apperrors.ErrVideoNotFound
	}
	if v.Status != domain.VideoStatusPending && v.Status != domain.VideoStatusProcessing {
		return false, nil
	}
	v.Status = domain.VideoStatusCancelled
	return true, nil
}

func (f *fakeVideoStore) Delete(id uint) error {
	if _, ok := f.rows[id]; !ok {
		return apperrors.ErrVideoNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakeWalletStore struct {
	balances map[uint]int64
}

func newFakeWalletStore() *fakeWalletStore {
	return &fakeWalletStore{balances: make(map[uint]int64)}
}

func (f *fakeWalletStore) GetByUserID(userID uint) (*models.Wallet, error) {
	bal, ok := f.balances[userID]
	if !ok {
		return nil, apperrors.ErrWalletNotFound
	}
	return &models.Wallet{UserID: userID, CurrentBalance: bal}, nil
}

func (f *fakeWalletStore) Deduct(userID uint, amount int64, reason string) (*repository.BalanceChange, error) {
	bal, ok := f.balances[userID]
	if !ok {
		return nil, apperrors.ErrWalletNotFound
	}
	if bal < amount {
		return nil, &apperrors.InsufficientCreditsError{Required: amount, Available: bal, Shortage: amount - bal}
	}
	f.balances[userID] = bal - amount
	return &repository.BalanceChange{Previous: bal, Current: bal - amount}, nil
}

func (f *fakeWalletStore) Add(userID uint, amount int64, reason string) (*repository.BalanceChange, error) {
	bal := f.balances[userID]
	f.balances[userID] = bal + amount
	return &repository.BalanceChange{Previous: bal, Current: bal + amount}, nil
}

func (f *fakeWalletStore) Reset(userID uint, defaultBalance int64) (*models.Wallet, error) {
	f.balances[userID] = defaultBalance
	return f.GetByUserID(userID)
}

func (f *fakeWalletStore) ListLedger(userID uint, limit, offset int) ([]models.CreditLedgerEntry, error) {
	return nil, nil
}

// scriptedProvider replays canned responses so service behavior around
// failures can be exercised deterministically.
type scriptedProvider struct {
	name        string
	generateErr error
	statusResp  *videogen.Response
	statusCalls int
	cancelErr   error
}

func (s *scriptedProvider) Name() string { return s.name }
func (s *scriptedProvider) ValidateParams(p videogen.GenerateParams) error {
	if p.Prompt == "" {
		return &videogen.ValidationError{Provider: s.name, Fields: []string{"prompt is required"}}
	}
	return nil
}
func (s *scriptedProvider) Generate(ctx context.Context, p videogen.GenerateParams) (*videogen.Response, error) {
	if s.generateErr != nil {
		return nil, s.generateErr
	}
	return &videogen.Response{Provider: s.name, JobID: "job-1", Status: videogen.StatusPending}, nil
}
func (s *scriptedProvider) GetStatus(ctx context.Context, jobID string) (*videogen.Response, error) {
	s.statusCalls++
	return s.statusResp, nil
}
func (s *scriptedProvider) Cancel(ctx context.Context, jobID string) error { return s.cancelErr }

func videoTestConfig() *config.Config {
	return &config.Config{
		Credits: config.CreditsConfig{
			CostHeyGen: 200,
			CostVeo3:   25,
			CostKie:    5,
		},
	}
}

func newVideoFixture(t *testing.T, provider *scriptedProvider) (*VideoService, *fakeVideoStore, *fakeWalletStore) {
	t.Helper()
	videos := newFakeVideoStore()
	wallets := newFakeWalletStore()
	factory := videogen.NewFactory()
	factory.Register(provider.name, func() videogen.Provider { return provider })
	return NewVideoService(videoTestConfig(), videos, wallets, factory), videos, wallets
}

func TestVideoCreateChargesAndSubmits(t *testing.T) {
	provider := &scriptedProvider{name: "kie"}
	svc, videos, wallets := newVideoFixture(t, provider)
	wallets.balances[1] = 100

	v, err := svc.Create(context.Background(), 1, domain.ServiceKie, videogen.GenerateParams{Prompt: "a sunset"})
	require.NoError(t, err)
	assert.Equal(t, domain.VideoStatusPending, v.Status)
	assert.Equal(t, int64(5), v.CreditsConsumed)
	require.NotNil(t, v.ProviderJobID)
	assert.Equal(t, "job-1", *v.ProviderJobID)
	assert.Equal(t, int64(95), wallets.balances[1])
	assert.Len(t, videos.rows, 1)
}

func TestVideoCreateInsufficientCredits(t *testing.T) {
	provider := &scriptedProvider{name: "heygen"}
	svc, videos, wallets := newVideoFixture(t, provider)
	wallets.balances[1] = 120 // cost is 200

	_, err := svc.Create(context.Background(), 1, domain.ServiceHeyGen, videogen.GenerateParams{Prompt: "hello"})
	var ice *apperrors.InsufficientCreditsError
	require.ErrorAs(t, err, &ice)
	assert.Equal(t, int64(200), ice.Required)
	assert.Equal(t, int64(120), ice.Available)
	assert.Equal(t, int64(80), ice.Shortage)
	assert.Equal(t, int64(120), wallets.balances[1], "balance untouched on refusal")
	assert.Empty(t, videos.rows, "no log row for a refused job")
}

func TestVideoCreateRefundsOnProviderFailure(t *testing.T) {
	provider := &scriptedProvider{
		name:        "kie",
		generateErr: &videogen.ProviderError{Provider: "kie", Message: "upstream exploded", Code: "retries_exhausted"},
	}
	svc, videos, wallets := newVideoFixture(t, provider)
	wallets.balances[1] = 100

	_, err := svc.Create(context.Background(), 1, domain.ServiceKie, videogen.GenerateParams{Prompt: "a sunset"})
	var pe *videogen.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, int64(100), wallets.balances[1], "charge refunded in full")

	require.Len(t, videos.rows, 1)
	for _, v := range videos.rows {
		assert.Equal(t, domain.VideoStatusFailed, v.Status)
		assert.Contains(t, v.ErrorMessage, "upstream exploded")
	}
}

func TestVideoCreateRejectsUnknownService(t *testing.T) {
	provider := &scriptedProvider{name: "kie"}
	svc, _, wallets := newVideoFixture(t, provider)
	wallets.balances[1] = 100

	_, err := svc.Create(context.Background(), 1, "SORA", videogen.GenerateParams{Prompt: "x"})
	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, int64(100), wallets.balances[1])
}

func TestVideoRefreshUpdatesStatus(t *testing.T) {
	provider := &scriptedProvider{
		name: "kie",
		statusResp: &videogen.Response{
			Provider: "kie",
			JobID:    "job-1",
			Status:   videogen.StatusCompleted,
			VideoURL: "https://cdn.example.com/v.mp4",
		},
	}
	svc, _, wallets := newVideoFixture(t, provider)
	wallets.balances[1] = 100

	v, err := svc.Create(context.Background(), 1, domain.ServiceKie, videogen.GenerateParams{Prompt: "a sunset"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), 1, v.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.VideoStatusCompleted, refreshed.Status)
	assert.Equal(t, "https://cdn.example.com/v.mp4", refreshed.VideoURL)
	assert.Equal(t, 1, provider.statusCalls)
}

func TestVideoRefreshSkipsTerminalJobs(t *testing.T) {
	provider := &scriptedProvider{name: "kie"}
	svc, videos, _ := newVideoFixture(t, provider)

	jobID := "job-9"
	done := &models.VideoLog{
		UserID:        1,
		Service:       domain.ServiceKie,
		Status:        domain.VideoStatusCancelled,
		ProviderJobID: &jobID,
	}
	require.NoError(t, videos.Create(done))

	v, err := svc.Refresh(context.Background(), 1, done.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.VideoStatusCancelled, v.Status)
	assert.Equal(t, 0, provider.statusCalls, "terminal rows never hit the provider")
}

func TestVideoCancelLocalStateWinsOverProvider(t *testing.T) {
	provider := &scriptedProvider{
		name:      "kie",
		cancelErr: errors.New("remote cancellation not supported"),
	}
	svc, _, wallets := newVideoFixture(t, provider)
	wallets.balances[1] = 100

	v, err := svc.Create(context.Background(), 1, domain.ServiceKie, videogen.GenerateParams{Prompt: "a sunset"})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), 1, v.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.VideoStatusCancelled, cancelled.Status)
}

func TestVideoCancelRejectsTerminalJob(t *testing.T) {
	provider := &scriptedProvider{name: "kie"}
	svc, videos, _ := newVideoFixture(t, provider)

	done := &models.VideoLog{UserID: 1, Service: domain.ServiceKie, Status: domain.VideoStatusCompleted}
	require.NoError(t, videos.Create(done))

	_, err := svc.Cancel(context.Background(), 1, done.ID)
	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestVideoOwnershipEnforced(t *testing.T) {
	provider := &scriptedProvider{name: "kie"}
	svc, videos, _ := newVideoFixture(t, provider)

	v := &models.VideoLog{UserID: 1, Service: domain.ServiceKie, Status: domain.VideoStatusPending}
	require.NoError(t, videos.Create(v))

	_, err := svc.Get(2, v.ID)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	err = svc.Delete(2, v.ID)
	require.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestVideoDownloadOnlyWhenCompleted(t *testing.T) {
	provider := &scriptedProvider{name: "kie"}
	svc, videos, _ := newVideoFixture(t, provider)

	pending := &models.VideoLog{UserID: 1, Service: domain.ServiceKie, Status: domain.VideoStatusPending}
	require.NoError(t, videos.Create(pending))
	_, err := svc.DownloadURL(1, pending.ID)
	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)

	done := &models.VideoLog{
		UserID:   1,
		Service:  domain.ServiceKie,
		Status:   domain.VideoStatusCompleted,
		VideoURL: "https://cdn.example.com/v.mp4",
	}
	require.NoError(t, videos.Create(done))
	url, err := svc.DownloadURL(1, done.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/v.mp4", url)
}
