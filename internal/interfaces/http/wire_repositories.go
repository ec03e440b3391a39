package http

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/orris-inc/licensing/internal/domain/account"
	"github.com/orris-inc/licensing/internal/domain/licensing"
	"github.com/orris-inc/licensing/internal/domain/setting"
	"github.com/orris-inc/licensing/internal/infrastructure/cache"
	"github.com/orris-inc/licensing/internal/infrastructure/repository"
	sharedConfig "github.com/orris-inc/licensing/internal/shared/config"
	"github.com/orris-inc/licensing/internal/shared/db"
	"github.com/orris-inc/licensing/internal/shared/logger"
)

// repositories holds all repository instances used by the application.
// Types match the return types of the repository constructors.
type repositories struct {
	txManager        *db.TransactionManager
	userRepo         account.Repository
	settingRepo      setting.Repository
	allocationRepo   licensing.AllocationRepository
	distributionRepo licensing.DistributionRepository
	licenceRepo      licensing.LicenceRepository
	productSetRepo   licensing.ProductSetRepository
	targetSetRepo    licensing.TargetSetRepository
	artifacts        licensing.ArtifactStore
}

// newRepositories creates all repository instances. Rosters are staged in
// Redis only when the redis driver is selected and a client is available.
func newRepositories(gdb *gorm.DB, redisClient *redis.Client, cfg sharedConfig.LicensingConfig, log logger.Interface) *repositories {
	repos := &repositories{
		txManager:        db.NewTransactionManager(gdb),
		userRepo:         repository.NewUserRepository(gdb, log),
		settingRepo:      repository.NewSystemSettingRepository(gdb, log),
		allocationRepo:   repository.NewAllocationRepository(gdb, log),
		distributionRepo: repository.NewDistributionRepository(gdb, log),
		licenceRepo:      repository.NewLicenceRepository(gdb, log),
		productSetRepo:   repository.NewProductSetRepository(gdb, log),
		targetSetRepo:    repository.NewTargetSetRepository(gdb, log),
	}

	switch {
	case cfg.StagingDriver == sharedConfig.StagingDriverRedis && redisClient != nil:
		repos.artifacts = cache.NewRedisArtifactStore(redisClient, log)
	default:
		if cfg.StagingDriver == sharedConfig.StagingDriverRedis {
			log.Warnw("redis staging driver selected without redis, staging rosters in the database")
		}
		repos.artifacts = repository.NewStagedFileRepository(gdb, log)
	}

	return repos
}
