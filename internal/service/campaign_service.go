package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ProjectSGH/pashumitra/internal/domain"
	"github.com/ProjectSGH/pashumitra/internal/repository"
)

// CampaignService управляет кампаниями и учётом мест
type CampaignService struct {
	campaigns     repository.CampaignRepository
	notifications *NotificationService
	tx            repository.TxManager
}

func NewCampaignService(campaigns repository.CampaignRepository, notifications *NotificationService, tx repository.TxManager) *CampaignService {
	return &CampaignService{campaigns: campaigns, notifications: notifications, tx: tx}
}

var (
	ErrCapacityFull      = errors.New("campaign is at capacity")
	ErrAlreadyRegistered = errors.New("farmer is already registered")
	ErrCampaignInactive  = errors.New("campaign is not active")
)

func (s *CampaignService) Create(ctx context.Context, c domain.Campaign) (*domain.Campaign, error) {
	if c.StoreID <= 0 || c.Title == "" || c.Capacity <= 0 {
		return nil, ErrInvalidInput
	}
	if !c.EndDate.After(c.StartDate) {
		return nil, ErrInvalidInput
	}
	cp := c
	cp.Registered = 0
	cp.Status = domain.CampaignActive
	if err := s.campaigns.Create(ctx, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (s *CampaignService) GetByID(ctx context.Context, id int64) (*domain.Campaign, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.campaigns.GetByID(ctx, id)
}

func (s *CampaignService) List(ctx context.Context, status *domain.CampaignStatus) ([]domain.Campaign, error) {
	return s.campaigns.List(ctx, status)
}

// Register signs a farmer up; the capacity check and the counter increment
// happen in one transaction so two registrations cannot share the last seat.
func (s *CampaignService) Register(ctx context.Context, campaignID, farmerID int64) (*domain.Campaign, error) {
	if campaignID <= 0 || farmerID <= 0 {
		return nil, ErrInvalidInput
	}
	var updated *domain.Campaign
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		c, err := s.campaigns.GetByID(ctx, campaignID)
		if err != nil {
			return err
		}
		if c.Status != domain.CampaignActive {
			return ErrCampaignInactive
		}
		if c.Registered >= c.Capacity {
			return ErrCapacityFull
		}
		already, err := s.campaigns.HasRegistration(ctx, campaignID, farmerID)
		if err != nil {
			return err
		}
		if already {
			return ErrAlreadyRegistered
		}
		if err := s.campaigns.AddRegistration(ctx, campaignID, farmerID); err != nil {
			return err
		}
		c.Registered++
		if err := s.campaigns.Update(ctx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notifications.Send(ctx, []int64{updated.StoreID}, "Campaign registration",
		"A farmer registered for "+updated.Title, domain.NotifyCampaign)
	return updated, nil
}

// Sweep marks campaigns past their end date as expired.
func (s *CampaignService) Sweep(ctx context.Context) (int64, error) {
	return s.campaigns.ExpireEnded(ctx, time.Now().UTC())
}

// RunSweeper runs Sweep on the given interval until the context is cancelled.
// Failures are logged, not retried.
func (s *CampaignService) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.Sweep(ctx)
			if err != nil {
				log.Error().Err(err).Msg("campaign sweep failed")
				continue
			}
			if n > 0 {
				log.Info().Int64("expired", n).Msg("campaign sweep")
			}
		}
	}
}
