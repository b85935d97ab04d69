// Package router 组装gin引擎：全局中间件、系统路由与 /api/v1 业务路由
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/middleware"
)

// Handlers 路由用到的全部处理器
// Staff为nil表示未启用馆员认证，此时不注册/staff路由
type Handlers struct {
	Health *handler.HealthHandler
	Loan   *handler.LoanHandler
	Book   *handler.BookHandler
	Author *handler.AuthorHandler
	Stats  *handler.StatsHandler
	Staff  *handler.StaffHandler
}

// New 创建gin引擎
// auth为nil时写接口不做登录校验
func New(cfg *config.Config, h Handlers, auth *middleware.AuthMiddleware) *gin.Engine {
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(cfg.Server.SlowRequest),
		middleware.Recovery(),
		middleware.CORS(cfg.CORS),
		middleware.Metrics(),
	)
	if cfg.Tracing.Enabled {
		r.Use(middleware.Tracing())
	}

	r.GET("/ping", h.Health.Ping)
	r.GET("/health", h.Health.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.Server.Mode != "release" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// 写接口的前置中间件
	var guard []gin.HandlerFunc
	if auth != nil {
		guard = append(guard, auth.RequireAuth())
	}
	guarded := func(hs ...gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, guard...), hs...)
	}

	v1 := r.Group("/api/v1")
	{
		if h.Staff != nil && auth != nil {
			staff := v1.Group("/staff")
			staff.POST("/register", h.Staff.Register)
			staff.POST("/login", h.Staff.Login)
			staff.POST("/refresh", h.Staff.Refresh)
			staff.POST("/logout", auth.RequireAuth(), h.Staff.Logout)
		}

		loans := v1.Group("/loans")
		loans.POST("", guarded(h.Loan.CreateLoan)...)
		loans.GET("", h.Loan.ListLoans)
		loans.GET("/:id", h.Loan.GetLoan)
		loans.POST("/:id/return", guarded(h.Loan.ReturnLoan)...)
		loans.POST("/:id/renew", guarded(h.Loan.RenewLoan)...)

		books := v1.Group("/books")
		books.POST("", guarded(h.Book.PublishBook)...)
		books.GET("/search", h.Book.SearchBooks)
		books.GET("/search-by-isbn", h.Book.SearchByISBN)
		books.GET("/search-by-year", h.Book.SearchByYear)
		books.GET("/search-by-language/:iso", h.Book.SearchByLanguage)
		books.GET("/:id", h.Book.GetBook)
		books.PATCH("/:id", guarded(h.Book.UpdateBook)...)
		books.DELETE("/:id", guarded(h.Book.DeleteBook)...)
		books.GET("/:id/stats", h.Stats.BookStats)
		books.GET("/:id/movements", h.Book.ListMovements)

		authors := v1.Group("/authors")
		authors.POST("", guarded(h.Author.CreateAuthor)...)
		authors.GET("", h.Author.ListAuthors)
		authors.GET("/:id", h.Author.GetAuthor)
		authors.PATCH("/:id", guarded(h.Author.UpdateAuthor)...)
		authors.DELETE("/:id", guarded(h.Author.DeleteAuthor)...)
		authors.GET("/:id/stats", h.Stats.AuthorStats)

		v1.GET("/stats", h.Stats.LibraryStats)
	}

	return r
}
