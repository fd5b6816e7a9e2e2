package service

import (
	"context"
	"fmt"
	"log"

	"github.com/sanjay-gangishetty/VideoGen/config"
	"github.com/sanjay-gangishetty/VideoGen/internal/apperrors"
	"github.com/sanjay-gangishetty/VideoGen/internal/domain"
	"github.com/sanjay-gangishetty/VideoGen/internal/models"
	"github.com/sanjay-gangishetty/VideoGen/internal/repository"
	"github.com/sanjay-gangishetty/VideoGen/pkg/videogen"
)

// VideoStore is the persistence surface the video service needs.
type VideoStore interface {
	Create(v *models.VideoLog) error
	GetByID(id uint) (*models.VideoLog, error)
	ListByUser(userID uint, status string, limit, offset int) ([]models.VideoLog, error)
	UpdateFromPoll(id uint, status, videoURL, errorMessage string) (*models.VideoLog, error)
	MarkCancelled(id uint) (bool, error)
	Delete(id uint) error
}

// WalletStore is the wallet surface shared by the video and credits flows.
type WalletStore interface {
	GetByUserID(userID uint) (*models.Wallet, error)
	Deduct(userID uint, amount int64, reason string) (*repository.BalanceChange, error)
	Add(userID uint, amount int64, reason string) (*repository.BalanceChange, error)
	Reset(userID uint, defaultBalance int64) (*models.Wallet, error)
	ListLedger(userID uint, limit, offset int) ([]models.CreditLedgerEntry, error)
}

type VideoService struct {
	cfg       *config.Config
	videos    VideoStore
	wallets   WalletStore
	providers *videogen.Factory
}

func NewVideoService(cfg *config.Config, videos VideoStore, wallets WalletStore, providers *videogen.Factory) *VideoService {
	return &VideoService{cfg: cfg, videos: videos, wallets: wallets, providers: providers}
}

// CostFor returns the per-job credit cost of a service.
func (s *VideoService) CostFor(service string) (int64, error) {
	switch service {
	case domain.ServiceHeyGen:
		return s.cfg.Credits.CostHeyGen, nil
	case domain.ServiceVeo3:
		return s.cfg.Credits.CostVeo3, nil
	case domain.ServiceKie:
		return s.cfg.Credits.CostKie, nil
	}
	return 0, &apperrors.ValidationError{Fields: []string{"service must be one of HEYGEN, VEO3, KIE"}}
}

// Create validates, charges the wallet, then submits the job. The charge
// happens before the upstream call; a provider failure refunds it in full
// and still records a FAILED row for the audit trail.
func (s *VideoService) Create(ctx context.Context, userID uint, service string, params videogen.GenerateParams) (*models.VideoLog, error) {
	cost, err := s.CostFor(service)
	if err != nil {
		return nil, err
	}
	provider, err := s.providers.New(domain.ProviderForService(service))
	if err != nil {
		return nil, err
	}
	if err := provider.ValidateParams(params); err != nil {
		return nil, err
	}

	reason := fmt.Sprintf("video generation (%s)", service)
	if _, err := s.wallets.Deduct(userID, cost, reason); err != nil {
		return nil, err
	}

	resp, err := provider.Generate(ctx, params)
	if err != nil {
		if _, refundErr := s.wallets.Add(userID, cost, "refund: "+reason); refundErr != nil {
			log.Printf("[video] REFUND FAILED user=%d amount=%d: %v", userID, cost, refundErr)
		}
		v := &models.VideoLog{
			UserID:       userID,
			Service:      service,
			Status:       domain.VideoStatusFailed,
			ErrorMessage: err.Error(),
		}
		if createErr := s.videos.Create(v); createErr != nil {
			log.Printf("[video] failed to record failed job user=%d: %v", userID, createErr)
		}
		return nil, err
	}

	v := &models.VideoLog{
		UserID:          userID,
		Service:         service,
		Status:          localStatus(resp.Status),
		CreditsConsumed: cost,
		VideoURL:        resp.VideoURL,
	}
	if resp.JobID != "" {
		jobID := resp.JobID
		v.ProviderJobID = &jobID
	}
	if err := s.videos.Create(v); err != nil {
		return nil, err
	}
	log.Printf("[video] created user=%d video=%d service=%s job=%s cost=%d",
		userID, v.ID, service, resp.JobID, cost)
	return v, nil
}

// Refresh polls the provider for the latest status. Terminal rows are
// returned as-is without an upstream call.
func (s *VideoService) Refresh(ctx context.Context, userID, videoID uint) (*models.VideoLog, error) {
	v, err := s.owned(userID, videoID)
	if err != nil {
		return nil, err
	}
	if domain.IsTerminalVideoStatus(v.Status) {
		return v, nil
	}
	if v.ProviderJobID == nil {
		return v, nil
	}
	provider, err := s.providers.New(domain.ProviderForService(v.Service))
	if err != nil {
		return nil, err
	}
	resp, err := provider.GetStatus(ctx, *v.ProviderJobID)
	if err != nil {
		return nil, err
	}
	var errMsg string
	if resp.Status == videogen.StatusFailed {
		if m, ok := resp.Raw["error"].(string); ok {
			errMsg = m
		}
	}
	return s.videos.UpdateFromPoll(v.ID, localStatus(resp.Status), resp.VideoURL, errMsg)
}

// Cancel moves a non-terminal job to CANCELLED locally, then tells the
// provider. The upstream cancel is best effort; a provider that cannot
// cancel does not undo the local state.
func (s *VideoService) Cancel(ctx context.Context, userID, videoID uint) (*models.VideoLog, error) {
	v, err := s.owned(userID, videoID)
	if err != nil {
		return nil, err
	}
	ok, err := s.videos.MarkCancelled(v.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &apperrors.ValidationError{Fields: []string{"job is already " + v.Status + " and cannot be cancelled"}}
	}
	if v.ProviderJobID != nil {
		provider, perr := s.providers.New(domain.ProviderForService(v.Service))
		if perr == nil {
			if cerr := provider.Cancel(ctx, *v.ProviderJobID); cerr != nil {
				log.Printf("[video] upstream cancel failed video=%d: %v", v.ID, cerr)
			}
		}
	}
	return s.videos.GetByID(v.ID)
}

func (s *VideoService) Get(userID, videoID uint) (*models.VideoLog, error) {
	return s.owned(userID, videoID)
}

func (s *VideoService) List(userID uint, status string, limit, offset int) ([]models.VideoLog, error) {
	return s.videos.ListByUser(userID, status, limit, offset)
}

func (s *VideoService) Delete(userID, videoID uint) error {
	v, err := s.owned(userID, videoID)
	if err != nil {
		return err
	}
	return s.videos.Delete(v.ID)
}

// DownloadURL returns the video URL for a COMPLETED job only.
func (s *VideoService) DownloadURL(userID, videoID uint) (string, error) {
	v, err := s.owned(userID, videoID)
	if err != nil {
		return "", err
	}
	if v.Status != domain.VideoStatusCompleted || v.VideoURL == "" {
		return "", &apperrors.ValidationError{Fields: []string{"video is not ready for download (status " + v.Status + ")"}}
	}
	return v.VideoURL, nil
}

func (s *VideoService) owned(userID, videoID uint) (*models.VideoLog, error) {
	v, err := s.videos.GetByID(videoID)
	if err != nil {
		return nil, err
	}
	if v.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return v, nil
}

// localStatus maps the provider-neutral status onto the VideoLog enum.
func localStatus(status string) string {
	switch status {
	case videogen.StatusPending:
		return domain.VideoStatusPending
	case videogen.StatusProcessing:
		return domain.VideoStatusProcessing
	case videogen.StatusCompleted:
		return domain.VideoStatusCompleted
	case videogen.StatusFailed:
		return domain.VideoStatusFailed
	}
	return domain.VideoStatusProcessing
}
