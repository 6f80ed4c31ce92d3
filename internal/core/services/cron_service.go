package services

import (
	"context"
	"log"
	"time"

	"lendflow-api/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// CronService runs the background housekeeping jobs: purging expired
// refresh tokens and dead verification codes.
type CronService struct {
	cron             *cron.Cron
	refreshTokenRepo repositories.RefreshTokenRepository
	verification     *VerificationService
}

// NewCronService creates a new cron service
func NewCronService(refreshTokenRepo repositories.RefreshTokenRepository, verification *VerificationService) *CronService {
	return &CronService{
		cron:             cron.New(),
		refreshTokenRepo: refreshTokenRepo,
		verification:     verification,
	}
}

// Start registers the jobs and starts the scheduler
func (s *CronService) Start() error {
	// Nightly at 02:00: drop expired refresh tokens
	if _, err := s.cron.AddFunc("0 2 * * *", s.purgeRefreshTokens); err != nil {
		return err
	}

	// Hourly: drop verification codes dead for more than a day
	if _, err := s.cron.AddFunc("@hourly", s.purgeVerificationCodes); err != nil {
		return err
	}

	s.cron.Start()
	log.Println("🚀 Cron service started")
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("✅ Cron service stopped")
}

func (s *CronService) purgeRefreshTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.refreshTokenRepo.DeleteExpired(ctx); err != nil {
		log.Printf("❌ Failed to purge expired refresh tokens: %v", err)
		return
	}
	log.Println("✅ Expired refresh tokens purged")
}

func (s *CronService) purgeVerificationCodes() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.verification.PurgeExpired(ctx, 24*time.Hour); err != nil {
		log.Printf("❌ Failed to purge expired verification codes: %v", err)
		return
	}
	log.Println("✅ Expired verification codes purged")
}
