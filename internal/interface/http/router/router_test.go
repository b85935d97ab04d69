package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	appauthor "github.com/xiebiao/library/internal/application/author"
	appbook "github.com/xiebiao/library/internal/application/book"
	apploan "github.com/xiebiao/library/internal/application/loan"
	"github.com/xiebiao/library/internal/application/shared"
	appstaff "github.com/xiebiao/library/internal/application/staff"
	appstats "github.com/xiebiao/library/internal/application/stats"
	"github.com/xiebiao/library/internal/domain/author"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/staff"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/persistence/rdb"
	"github.com/xiebiao/library/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/jwt"
	"github.com/xiebiao/library/pkg/keylock"
	pkgvalidator "github.com/xiebiao/library/pkg/validator"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := pkgvalidator.RegisterGinValidators(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// newTestEngine 按cmd/api的装配方式构建引擎；withAuth时使用miniredis
func newTestEngine(t *testing.T, withAuth bool) *gin.Engine {
	t.Helper()
	cfg, err := config.LoadFrom(t.TempDir())
	require.NoError(t, err)
	cfg.Server.Mode = "test"
	cfg.Database.Path = filepath.Join(t.TempDir(), "library.db")

	db, err := rdb.NewDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close(db) })

	var client *goredis.Client
	if withAuth {
		mr := miniredis.RunT(t)
		client = goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		cfg.Redis.Enabled = true
		cfg.Auth.Enabled = true
	}

	books := rdb.NewBookRepository(db)
	loans := rdb.NewLoanRepository(db)
	authors := rdb.NewAuthorRepository(db)
	tx := rdb.NewTxManager(db)
	pager := shared.NewPager(cfg)
	policy := loan.NewPolicy(cfg.Loan.MaxLoansPerUser, cfg.Loan.LoanDurationDays, cfg.Loan.PenaltyRatePerDay, cfg.Loan.MaxPenalty)
	var cache book.Cache = book.NopCache{}
	bookSvc := book.NewService(books)

	h := Handlers{
		Health: handler.NewHealthHandler(db, client),
		Loan: handler.NewLoanHandler(
			apploan.NewCreateLoanUseCase(loans, books, tx, keylock.New(), cache, policy, loan.NopPublisher{}),
			apploan.NewReturnLoanUseCase(loans, books, tx, cache, policy, loan.NopPublisher{}),
			apploan.NewRenewLoanUseCase(loans, books, tx, policy, loan.NopPublisher{}),
			apploan.NewGetLoanUseCase(loans, books, policy),
			apploan.NewListLoansUseCase(loans, pager, policy),
		),
		Book: handler.NewBookHandler(
			appbook.NewPublishBookUseCase(bookSvc, authors),
			appbook.NewGetBookUseCase(bookSvc, cache),
			appbook.NewSearchBooksUseCase(bookSvc, pager),
			appbook.NewUpdateBookUseCase(books, bookSvc, authors, tx, cache),
			appbook.NewDeleteBookUseCase(books, loans, tx, cache),
			appbook.NewListMovementsUseCase(books),
		),
		Author: handler.NewAuthorHandler(appauthor.NewAuthorUseCase(author.NewService(authors), authors, books, pager)),
		Stats:  handler.NewStatsHandler(appstats.NewStatsUseCase(books, loans, authors)),
	}

	var auth *middleware.AuthMiddleware
	if withAuth {
		jwtManager := jwt.NewManager("test-secret", time.Hour, 24*time.Hour)
		store := redis.NewSessionStore(client)
		staffSvc := staff.NewServiceWithCost(rdb.NewStaffRepository(db), bcrypt.MinCost)
		h.Staff = handler.NewStaffHandler(
			appstaff.NewRegisterUseCase(staffSvc),
			appstaff.NewLoginUseCase(staffSvc, jwtManager, store, 24*time.Hour),
			appstaff.NewLogoutUseCase(jwtManager, store),
			appstaff.NewRefreshTokenUseCase(jwtManager, store),
		)
		auth = middleware.NewAuthMiddleware(jwtManager, store)
	}

	return New(cfg, h, auth)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func do(t *testing.T, r *gin.Engine, method, path string, body interface{}, headers ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func idOf(t *testing.T, env envelope) uint {
	t.Helper()
	var v struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &v))
	require.NotZero(t, v.ID)
	return v.ID
}

// seedCatalog 通过接口创建一位作者和一本书
func seedCatalog(t *testing.T, r *gin.Engine, copies int, headers ...string) (authorID, bookID uint) {
	t.Helper()
	w, env := do(t, r, http.MethodPost, "/api/v1/authors", gin.H{
		"first_name":  "Albert",
		"last_name":   "Camus",
		"birth_date":  "1913-11-07",
		"nationality": "FR",
	}, headers...)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	authorID = idOf(t, env)

	w, env = do(t, r, http.MethodPost, "/api/v1/books", gin.H{
		"title":            "L'Étranger",
		"isbn":             "978-2-07-036002-4",
		"publication_year": 1942,
		"author_id":        authorID,
		"total_copies":     copies,
		"language":         "fr",
	}, headers...)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return authorID, idOf(t, env)
}

func TestSystemRoutes(t *testing.T) {
	r := newTestEngine(t, false)

	w, env := do(t, r, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, env.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))

	w, _ = do(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, r, http.MethodGet, "/ping", nil, middleware.HeaderRequestID, "req-42")
	assert.Equal(t, "req-42", w.Header().Get(middleware.HeaderRequestID), "透传上游请求ID")

	// CORS预检
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/loans", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestLoanFlow(t *testing.T) {
	r := newTestEngine(t, false)
	_, bookID := seedCatalog(t, r, 1)

	borrow := gin.H{
		"book_id":             bookID,
		"borrower_name":       "Meursault",
		"borrower_email":      "Meursault@Example.com",
		"library_card_number": "CARD-1942",
	}
	w, env := do(t, r, http.MethodPost, "/api/v1/loans", borrow)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	loanID := idOf(t, env)

	var created apploan.LoanDetails
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "ACTIVE", created.Status)
	assert.Equal(t, "meursault@example.com", created.BorrowerEmail)
	assert.Equal(t, "L'Étranger", created.BookTitle)

	// 唯一副本已借出
	borrow["borrower_email"] = "marie@example.com"
	w, env = do(t, r, http.MethodPost, "/api/v1/loans", borrow)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotZero(t, env.Code)

	w, env = do(t, r, http.MethodGet, fmt.Sprintf("/api/v1/books/%d", bookID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var b appbook.BookDetails
	require.NoError(t, json.Unmarshal(env.Data, &b))
	assert.Equal(t, 0, b.AvailableCopies)

	// 空请求体归还
	w, env = do(t, r, http.MethodPost, fmt.Sprintf("/api/v1/loans/%d/return", loanID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var returned apploan.LoanDetails
	require.NoError(t, json.Unmarshal(env.Data, &returned))
	assert.Equal(t, "RETURNED", returned.Status)
	assert.Equal(t, 0.0, returned.Penalty)

	w, _ = do(t, r, http.MethodPost, fmt.Sprintf("/api/v1/loans/%d/return", loanID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "重复归还")

	w, env = do(t, r, http.MethodGet, "/api/v1/loans?status=RETURNED", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Total int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, int64(1), page.Total)

	w, _ = do(t, r, http.MethodGet, fmt.Sprintf("/api/v1/books/%d/movements", bookID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, r, http.MethodGet, "/api/v1/stats", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestErrorMapping(t *testing.T) {
	r := newTestEngine(t, false)
	authorID, bookID := seedCatalog(t, r, 2)

	w, _ := do(t, r, http.MethodGet, "/api/v1/books/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, r, http.MethodGet, "/api/v1/loans/abc", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w, env := do(t, r, http.MethodPost, "/api/v1/books", gin.H{
		"title": "Bad", "isbn": "9782070360025", "publication_year": 1942, "author_id": authorID, "total_copies": 1,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, env.Message, "isbn(isbn13)")

	w, _ = do(t, r, http.MethodPost, "/api/v1/books", gin.H{
		"title": "Copie", "isbn": "9782070360024", "publication_year": 1950, "author_id": authorID, "total_copies": 1,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, "ISBN重复")

	w, _ = do(t, r, http.MethodGet, "/api/v1/books/search-by-year?year_min=1950&year_max=1940", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w, _ = do(t, r, http.MethodDelete, fmt.Sprintf("/api/v1/authors/%d", authorID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "作者名下仍有图书")

	w, _ = do(t, r, http.MethodDelete, fmt.Sprintf("/api/v1/books/%d", bookID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, r, http.MethodDelete, fmt.Sprintf("/api/v1/authors/%d", authorID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthGuard(t *testing.T) {
	r := newTestEngine(t, true)

	w, _ := do(t, r, http.MethodPost, "/api/v1/authors", gin.H{"first_name": "Albert"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = do(t, r, http.MethodGet, "/api/v1/authors", nil)
	assert.Equal(t, http.StatusOK, w.Code, "读接口不需要登录")

	w, _ = do(t, r, http.MethodPost, "/api/v1/staff/register", gin.H{
		"email": "librarian@example.org", "password": "secret123", "name": "Marie",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env := do(t, r, http.MethodPost, "/api/v1/staff/login", gin.H{
		"email": "librarian@example.org", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login appstaff.LoginResponse
	require.NoError(t, json.Unmarshal(env.Data, &login))
	bearer := "Bearer " + login.AccessToken

	seedCatalog(t, r, 1, "Authorization", bearer)

	w, _ = do(t, r, http.MethodPost, "/api/v1/authors", gin.H{}, "Authorization", "Bearer "+login.RefreshToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "Refresh Token不能访问业务接口")

	w, _ = do(t, r, http.MethodPost, "/api/v1/staff/logout", nil, "Authorization", bearer)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = do(t, r, http.MethodPost, "/api/v1/authors", gin.H{}, "Authorization", bearer)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "注销后Token失效")
}
