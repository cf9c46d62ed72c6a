package services

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/AchilleasB/evaluation-client/internal/core/domain"
	"github.com/AchilleasB/evaluation-client/internal/core/ports"
)

const DashboardFailedText = "Failed to load system overview."

// DashboardStats are the admin overview counts.
type DashboardStats struct {
	Users       int
	Departments int
}

type DashboardService struct {
	users       *Collection[domain.Account]
	departments *Collection[domain.Department]
	logger      *zap.Logger
}

func NewDashboardService(transport ports.Transport, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		users:       NewCollection[domain.Account](transport, "/users", AccountsEmptyText, AccountsFailedText, logger),
		departments: NewCollection[domain.Department](transport, "/departments", DepartmentsEmptyText, DepartmentsFailedText, logger),
		logger:      logger,
	}
}

// Load reads both collections concurrently. Either failure fails the whole
// overview.
func (s *DashboardService) Load(ctx context.Context) (DashboardStats, error) {
	var stats DashboardStats
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		result := s.users.List(ctx)
		if result.State == ListFailed {
			return result.Err
		}
		stats.Users = len(result.Items)
		return nil
	})
	g.Go(func() error {
		result := s.departments.List(ctx)
		if result.State == ListFailed {
			return result.Err
		}
		stats.Departments = len(result.Items)
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Warn("dashboard load failed", zap.Error(err))
		return DashboardStats{}, err
	}
	return stats, nil
}
