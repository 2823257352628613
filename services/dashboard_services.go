package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"techlympics/logger"
	"techlympics/metrics"
	"techlympics/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// DashboardCacheTTL is how long dashboard counters are served from Redis
const DashboardCacheTTL = 5 * time.Minute

// LabelCount is one bar of a dashboard chart
type LabelCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

type DashboardStats struct {
	Contingents           int64        `json:"contingents"`
	Contestants           int64        `json:"contestants"`
	Teams                 int64        `json:"teams"`
	Participants          int64        `json:"participants"`
	ContestantsByState    []LabelCount `json:"contestantsByState"`
	ContestantsByEduLevel []LabelCount `json:"contestantsByEduLevel"`
	ContestantsByGender   []LabelCount `json:"contestantsByGender"`
	GeneratedAt           time.Time    `json:"generatedAt"`
}

// DashboardService computes the organizer dashboard, caching it when a Redis client is given
type DashboardService struct {
	db    *gorm.DB
	cache *redis.Client
}

func NewDashboardService(db *gorm.DB, cache *redis.Client) *DashboardService {
	return &DashboardService{db: db, cache: cache}
}

const dashboardCacheKey = "dashboard:organizer"

// Stats returns the cached counters or computes and caches them
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, dashboardCacheKey).Bytes()
		if err == nil {
			var stats DashboardStats
			if json.Unmarshal(raw, &stats) == nil {
				metrics.CacheHits.Inc()
				return &stats, nil
			}
		} else if err != redis.Nil {
			logger.Log.WithError(err).Warn("Dashboard cache read failed")
		}
		metrics.CacheMisses.Inc()
	}

	stats, err := s.compute()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, dashboardCacheKey, raw, DashboardCacheTTL).Err(); err != nil {
				logger.Log.WithError(err).Warn("Dashboard cache write failed")
			}
		}
	}
	return stats, nil
}

// Invalidate drops the cached counters
func (s *DashboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, dashboardCacheKey).Err(); err != nil {
		logger.Log.WithError(err).Warn("Dashboard cache invalidation failed")
	}
}

func (s *DashboardService) compute() (*DashboardStats, error) {
	defer metrics.RecordDBOperation("select", "dashboard", time.Now())

	stats := &DashboardStats{GeneratedAt: time.Now()}
	counts := []struct {
		model interface{}
		dest  *int64
	}{
		{&models.Contingent{}, &stats.Contingents},
		{&models.Contestant{}, &stats.Contestants},
		{&models.Team{}, &stats.Teams},
	}
	for _, c := range counts {
		if err := s.db.Model(c.model).Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("count: %w", err)
		}
	}
	if err := s.db.Model(&models.User{}).Where("role = ?", models.RoleParticipant).Count(&stats.Participants).Error; err != nil {
		return nil, fmt.Errorf("count participants: %w", err)
	}

	err := s.db.Model(&models.Contestant{}).
		Select("COALESCE(states.name, 'Unknown') AS label, COUNT(*) AS count").
		Joins("JOIN contingents ON contingents.id = contestants.contingent_id").
		Joins("LEFT JOIN states ON states.id = contingents.state_id").
		Group("states.name").
		Order("count DESC").
		Scan(&stats.ContestantsByState).Error
	if err != nil {
		return nil, fmt.Errorf("contestants by state: %w", err)
	}

	for column, dest := range map[string]*[]LabelCount{
		"edu_level": &stats.ContestantsByEduLevel,
		"gender":    &stats.ContestantsByGender,
	} {
		err := s.db.Model(&models.Contestant{}).
			Select(column + " AS label, COUNT(*) AS count").
			Group(column).
			Order("label").
			Scan(dest).Error
		if err != nil {
			return nil, fmt.Errorf("contestants by %s: %w", column, err)
		}
	}
	return stats, nil
}

// ParticipantStats is the dashboard of a contingent manager
type ParticipantStats struct {
	Contingents   []models.Contingent `json:"contingents"`
	Contestants   int64               `json:"contestants"`
	Teams         int64               `json:"teams"`
	Registrations int64               `json:"registrations"`
}

// GetParticipantStats counts the contestants, teams and registrations of a manager's contingents
func GetParticipantStats(db *gorm.DB, userID uint) (*ParticipantStats, error) {
	ids, err := ManagedContingentIDs(db, userID)
	if err != nil {
		return nil, err
	}
	stats := &ParticipantStats{Contingents: []models.Contingent{}}
	if len(ids) == 0 {
		return stats, nil
	}
	if err := db.Where("id IN ?", ids).Order("name").Find(&stats.Contingents).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Contestant{}).Where("contingent_id IN ?", ids).Count(&stats.Contestants).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Team{}).Where("contingent_id IN ?", ids).Count(&stats.Teams).Error; err != nil {
		return nil, err
	}
	err = db.Model(&models.EventContestTeam{}).
		Joins("JOIN teams ON teams.id = event_contest_teams.team_id").
		Where("teams.contingent_id IN ?", ids).
		Count(&stats.Registrations).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}
