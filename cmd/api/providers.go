package main

import (
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	appstaff "github.com/xiebiao/library/internal/application/staff"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/staff"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/messaging"
	"github.com/xiebiao/library/internal/infrastructure/persistence/rdb"
	"github.com/xiebiao/library/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/internal/interface/http/router"
	"github.com/xiebiao/library/pkg/jwt"
	"github.com/xiebiao/library/pkg/keylock"
	"github.com/xiebiao/library/pkg/logger"
	"github.com/xiebiao/library/pkg/mq"
)

// provideDB 数据库连接，cleanup关闭连接池
func provideDB(cfg *config.Config) (*gorm.DB, func(), error) {
	db, err := rdb.NewDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	return db, func() {
		if err := rdb.Close(db); err != nil {
			logger.L().Warn("关闭数据库失败", zap.Error(err))
		}
	}, nil
}

// provideRedisClient redis.enabled=false时返回nil
func provideRedisClient(cfg *config.Config) (*goredis.Client, func(), error) {
	if !cfg.Redis.Enabled {
		return nil, func() {}, nil
	}
	client, err := redis.NewClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

// provideBookCache 未启用Redis时不缓存
func provideBookCache(cfg *config.Config, client *goredis.Client) book.Cache {
	if client == nil {
		return book.NopCache{}
	}
	return redis.NewBookCache(client, cfg.Cache.BookTTL)
}

// provideBorrowerLocker 借阅人锁：memory为进程内锁，redis为分布式锁
func provideBorrowerLocker(cfg *config.Config, client *goredis.Client) loan.Locker {
	if cfg.Loan.LockBackend == "redis" && client != nil {
		return redis.NewBorrowerLock(client, cfg.Loan.LockTTL)
	}
	return keylock.New()
}

// provideLoanEvents events.enabled=false时不发布
func provideLoanEvents(cfg *config.Config) (loan.EventPublisher, func(), error) {
	if !cfg.Events.Enabled {
		return loan.NopPublisher{}, func() {}, nil
	}
	pub, err := mq.NewPublisher(cfg.Events.URL, cfg.Events.Exchange, "topic")
	if err != nil {
		return nil, nil, err
	}
	return messaging.NewLoanEventPublisher(pub), func() { _ = pub.Close() }, nil
}

func provideLoanPolicy(cfg *config.Config) loan.Policy {
	l := cfg.Loan
	return loan.NewPolicy(l.MaxLoansPerUser, l.LoanDurationDays, l.PenaltyRatePerDay, l.MaxPenalty)
}

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpire, cfg.JWT.RefreshTokenExpire)
}

// provideSessionStore 未启用Redis时为nil，此时馆员路由不注册
func provideSessionStore(client *goredis.Client) *redis.SessionStore {
	if client == nil {
		return nil
	}
	return redis.NewSessionStore(client)
}

func provideLoginUseCase(cfg *config.Config, svc staff.Service, jwtManager *jwt.Manager, store *redis.SessionStore) *appstaff.LoginUseCase {
	return appstaff.NewLoginUseCase(svc, jwtManager, store, cfg.JWT.RefreshTokenExpire)
}

// provideAuthMiddleware auth.enabled=false时返回nil
func provideAuthMiddleware(cfg *config.Config, jwtManager *jwt.Manager, store *redis.SessionStore) *middleware.AuthMiddleware {
	if !cfg.Auth.Enabled || store == nil {
		return nil
	}
	return middleware.NewAuthMiddleware(jwtManager, store)
}

// provideStaffHandler 馆员接口依赖Redis会话，认证关闭时不提供
func provideStaffHandler(
	cfg *config.Config,
	register *appstaff.RegisterUseCase,
	login *appstaff.LoginUseCase,
	logout *appstaff.LogoutUseCase,
	refresh *appstaff.RefreshTokenUseCase,
) *handler.StaffHandler {
	if !cfg.Auth.Enabled {
		return nil
	}
	return handler.NewStaffHandler(register, login, logout, refresh)
}

func provideHandlers(
	health *handler.HealthHandler,
	loans *handler.LoanHandler,
	books *handler.BookHandler,
	authors *handler.AuthorHandler,
	stats *handler.StatsHandler,
	staffHandler *handler.StaffHandler,
) router.Handlers {
	return router.Handlers{
		Health: health,
		Loan:   loans,
		Book:   books,
		Author: authors,
		Stats:  stats,
		Staff:  staffHandler,
	}
}
