//go:build wireinject
// +build wireinject

// Wire依赖注入配置
// 修改Provider后运行 `wire gen ./cmd/api` 重新生成wire_gen.go

package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"

	appauthor "github.com/xiebiao/library/internal/application/author"
	appbook "github.com/xiebiao/library/internal/application/book"
	apploan "github.com/xiebiao/library/internal/application/loan"
	"github.com/xiebiao/library/internal/application/shared"
	appstaff "github.com/xiebiao/library/internal/application/staff"
	appstats "github.com/xiebiao/library/internal/application/stats"
	"github.com/xiebiao/library/internal/domain/author"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/staff"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/persistence/rdb"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/router"
)

// infrastructureSet 数据库、Redis与由其派生的缓存和锁
var infrastructureSet = wire.NewSet(
	provideDB,
	provideRedisClient,
	provideBookCache,
	provideBorrowerLocker,
	provideSessionStore,
	provideJWTManager,
	provideLoanPolicy,
	provideLoanEvents,
	shared.NewPager,
)

var repositorySet = wire.NewSet(
	rdb.NewBookRepository,
	rdb.NewLoanRepository,
	rdb.NewAuthorRepository,
	rdb.NewStaffRepository,
	rdb.NewTxManager,
)

var domainSet = wire.NewSet(
	book.NewService,
	author.NewService,
	staff.NewService,
)

var applicationSet = wire.NewSet(
	apploan.NewCreateLoanUseCase,
	apploan.NewReturnLoanUseCase,
	apploan.NewRenewLoanUseCase,
	apploan.NewGetLoanUseCase,
	apploan.NewListLoansUseCase,
	appbook.NewPublishBookUseCase,
	appbook.NewGetBookUseCase,
	appbook.NewSearchBooksUseCase,
	appbook.NewUpdateBookUseCase,
	appbook.NewDeleteBookUseCase,
	appbook.NewListMovementsUseCase,
	appauthor.NewAuthorUseCase,
	appstats.NewStatsUseCase,
	appstaff.NewRegisterUseCase,
	provideLoginUseCase,
	appstaff.NewLogoutUseCase,
	appstaff.NewRefreshTokenUseCase,
)

var handlerSet = wire.NewSet(
	handler.NewHealthHandler,
	handler.NewLoanHandler,
	handler.NewBookHandler,
	handler.NewAuthorHandler,
	handler.NewStatsHandler,
	provideStaffHandler,
	provideAuthMiddleware,
	provideHandlers,
	router.New,
)

// InitializeApp 组装整个应用，cleanup按创建的逆序释放资源
func InitializeApp(cfg *config.Config) (*gin.Engine, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		handlerSet,
	)
	return nil, nil, nil
}
