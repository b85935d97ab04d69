package loan

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library/internal/application/shared"
	"github.com/xiebiao/library/internal/domain/author"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/persistence/rdb"
	"github.com/xiebiao/library/pkg/keylock"
)

// recordingPublisher 记录已发布的事件
type recordingPublisher struct {
	mu     sync.Mutex
	events []loan.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e loan.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []loan.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]loan.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	books    book.Repository
	loans    loan.Repository
	events   *recordingPublisher
	create   *CreateLoanUseCase
	ret      *ReturnLoanUseCase
	renew    *RenewLoanUseCase
	get      *GetLoanUseCase
	list     *ListLoansUseCase
	authorID uint
}

func newFixture(t *testing.T, policy loan.Policy, now time.Time) *fixture {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "test"},
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			Path:   filepath.Join(t.TempDir(), "library.db"),
		},
	}
	db, err := rdb.NewDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close(db) })

	authors := rdb.NewAuthorRepository(db)
	a := &author.Author{
		FirstName:   "Victor",
		LastName:    "Hugo",
		BirthDate:   time.Date(1802, 2, 26, 0, 0, 0, 0, time.UTC),
		Nationality: "FR",
	}
	require.NoError(t, authors.Create(context.Background(), a))

	books := rdb.NewBookRepository(db)
	loans := rdb.NewLoanRepository(db)
	tx := rdb.NewTxManager(db)
	clock := func() time.Time { return now }
	events := &recordingPublisher{}

	f := &fixture{
		books:    books,
		loans:    loans,
		events:   events,
		create:   NewCreateLoanUseCase(loans, books, tx, keylock.New(), book.NopCache{}, policy, events),
		ret:      NewReturnLoanUseCase(loans, books, tx, book.NopCache{}, policy, events),
		renew:    NewRenewLoanUseCase(loans, books, tx, policy, events),
		get:      NewGetLoanUseCase(loans, books, policy),
		list:     NewListLoansUseCase(loans, shared.Pager{DefaultPageSize: 10, MaxPageSize: 100}, policy),
		authorID: a.ID,
	}
	f.create.now, f.ret.now, f.renew.now, f.get.now, f.list.now = clock, clock, clock, clock, clock
	return f
}

func (f *fixture) addBook(t *testing.T, isbn string, copies int) *book.Book {
	t.Helper()
	b := &book.Book{
		Title:           "Les Misérables",
		ISBN:            isbn,
		PublicationYear: 1862,
		AuthorID:        f.authorID,
		TotalCopies:     copies,
		AvailableCopies: copies,
		Category:        book.CategoryFiction,
		Language:        "fr",
	}
	require.NoError(t, f.books.Create(context.Background(), b))
	return b
}

func (f *fixture) available(t *testing.T, id uint) int {
	t.Helper()
	b, err := f.books.FindByID(context.Background(), id)
	require.NoError(t, err)
	return b.AvailableCopies
}

func borrow(bookID uint, email string) CreateLoanRequest {
	return CreateLoanRequest{
		BookID:            bookID,
		BorrowerName:      "Jean Valjean",
		BorrowerEmail:     email,
		LibraryCardNumber: "CARD-24601",
	}
}

var jan1 = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func TestLoanLifecycle(t *testing.T) {
	f := newFixture(t, loan.DefaultPolicy(), jan1)
	ctx := context.Background()
	b := f.addBook(t, "9782070409228", 2)

	created, err := f.create.Execute(ctx, borrow(b.ID, "Jean@Example.com"))
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", created.Status)
	assert.Equal(t, "jean@example.com", created.BorrowerEmail)
	assert.Equal(t, "Les Misérables", created.BookTitle)
	assert.Equal(t, jan1.AddDate(0, 0, 14), created.DueDate)
	assert.Equal(t, 1, f.available(t, b.ID))

	// 1月20日归还：逾期5天，罚金2.5
	returnAt := time.Date(2024, 1, 20, 9, 0, 0, 0, time.UTC)
	returned, err := f.ret.Execute(ctx, ReturnLoanRequest{LoanID: created.ID, ReturnDate: &returnAt, Comments: "书脊破损"})
	require.NoError(t, err)
	assert.Equal(t, "RETURNED", returned.Status)
	assert.Equal(t, 2.5, returned.Penalty)
	assert.Equal(t, 5, returned.DaysLate)
	assert.Equal(t, "书脊破损", returned.Comments)
	assert.Equal(t, 2, f.available(t, b.ID))

	assert.Equal(t, []loan.EventType{loan.EventCreated, loan.EventReturned}, f.events.types())
	assert.Equal(t, 2.5, f.events.events[1].Penalty)

	t.Run("重复归还不会增加库存", func(t *testing.T) {
		_, err := f.ret.Execute(ctx, ReturnLoanRequest{LoanID: created.ID})
		assert.True(t, errors.Is(err, loan.ErrAlreadyReturned))
		assert.Equal(t, 2, f.available(t, b.ID))
	})

	t.Run("库存流水", func(t *testing.T) {
		moves, err := f.books.ListMovements(ctx, b.ID, 10)
		require.NoError(t, err)
		require.Len(t, moves, 2)
		assert.Equal(t, book.MovementRelease, moves[0].Kind)
		assert.Equal(t, book.MovementReserve, moves[1].Kind)
		for _, m := range moves {
			assert.Equal(t, m.Before+m.Delta, m.After)
		}
	})

	t.Run("详情", func(t *testing.T) {
		got, err := f.get.Execute(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "RETURNED", got.Status)
		assert.Equal(t, 2.5, got.Penalty)
	})
}

func TestCreateLoan_Preconditions(t *testing.T) {
	policy := loan.DefaultPolicy()
	policy.MaxLoansPerUser = 2
	f := newFixture(t, policy, jan1)
	ctx := context.Background()
	b := f.addBook(t, "9782070409228", 5)

	t.Run("图书不存在", func(t *testing.T) {
		_, err := f.create.Execute(ctx, borrow(999, "a@example.com"))
		assert.True(t, errors.Is(err, book.ErrBookNotFound))
	})

	t.Run("借阅上限", func(t *testing.T) {
		first, err := f.create.Execute(ctx, borrow(b.ID, "cosette@example.com"))
		require.NoError(t, err)
		_, err = f.create.Execute(ctx, borrow(b.ID, "cosette@example.com"))
		require.NoError(t, err)

		_, err = f.create.Execute(ctx, borrow(b.ID, "COSETTE@example.com"))
		assert.True(t, errors.Is(err, loan.ErrLimitExceeded))
		assert.Equal(t, 3, f.available(t, b.ID), "失败的借出不能扣减库存")

		_, err = f.ret.Execute(ctx, ReturnLoanRequest{LoanID: first.ID})
		require.NoError(t, err)
		_, err = f.create.Execute(ctx, borrow(b.ID, "cosette@example.com"))
		assert.NoError(t, err, "归还后名额释放")
	})

	t.Run("无可借副本", func(t *testing.T) {
		single := f.addBook(t, "9780306406157", 1)
		_, err := f.create.Execute(ctx, borrow(single.ID, "marius@example.com"))
		require.NoError(t, err)
		_, err = f.create.Execute(ctx, borrow(single.ID, "eponine@example.com"))
		assert.True(t, errors.Is(err, book.ErrBookUnavailable))
	})
}

func TestCreateLoan_ConcurrentLastCopy(t *testing.T) {
	f := newFixture(t, loan.DefaultPolicy(), jan1)
	b := f.addBook(t, "9782070409228", 1)

	const n = 10
	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		succeeded   int
		unavailable int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.create.Execute(context.Background(), borrow(b.ID, fmt.Sprintf("reader%d@example.com", i)))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, book.ErrBookUnavailable):
				unavailable++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, n-1, unavailable)
	assert.Equal(t, 0, f.available(t, b.ID))
}

func TestCreateLoan_ConcurrentSameBorrower(t *testing.T) {
	policy := loan.DefaultPolicy()
	policy.MaxLoansPerUser = 3
	f := newFixture(t, policy, jan1)
	b := f.addBook(t, "9782070409228", 10)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.create.Execute(context.Background(), borrow(b.ID, "gavroche@example.com"))
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded)
	assert.Equal(t, 7, f.available(t, b.ID))
}

func TestReturnLoan_Validation(t *testing.T) {
	f := newFixture(t, loan.DefaultPolicy(), jan1)
	ctx := context.Background()
	b := f.addBook(t, "9782070409228", 1)

	created, err := f.create.Execute(ctx, borrow(b.ID, "javert@example.com"))
	require.NoError(t, err)

	before := jan1.Add(-time.Hour)
	_, err = f.ret.Execute(ctx, ReturnLoanRequest{LoanID: created.ID, ReturnDate: &before})
	assert.True(t, errors.Is(err, loan.ErrReturnBeforeLoan))
	assert.Equal(t, 0, f.available(t, b.ID))

	_, err = f.ret.Execute(ctx, ReturnLoanRequest{LoanID: 404})
	assert.True(t, errors.Is(err, loan.ErrLoanNotFound))
}

func TestRenewLoan(t *testing.T) {
	f := newFixture(t, loan.DefaultPolicy(), jan1)
	ctx := context.Background()
	b := f.addBook(t, "9782070409228", 1)

	created, err := f.create.Execute(ctx, borrow(b.ID, "fantine@example.com"))
	require.NoError(t, err)

	renewed, err := f.renew.Execute(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, renewed.Renewed)
	assert.Equal(t, created.DueDate.AddDate(0, 0, 14), renewed.DueDate)
	assert.Equal(t, "Les Misérables", renewed.BookTitle)

	_, err = f.renew.Execute(ctx, created.ID)
	assert.True(t, errors.Is(err, loan.ErrAlreadyRenewed))
	assert.Equal(t, 0, f.available(t, b.ID), "续借不影响库存")
	assert.Equal(t, []loan.EventType{loan.EventCreated, loan.EventRenewed}, f.events.types(), "失败的续借不发事件")
}

func TestListLoans_DerivedStatus(t *testing.T) {
	f := newFixture(t, loan.DefaultPolicy(), jan1)
	ctx := context.Background()
	b := f.addBook(t, "9782070409228", 3)

	late, err := f.create.Execute(ctx, borrow(b.ID, "thenardier@example.com"))
	require.NoError(t, err)

	// 时间前进到2月1日，第一笔借阅已逾期
	feb1 := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	f.create.now = func() time.Time { return feb1 }
	f.list.now = func() time.Time { return feb1 }
	_, err = f.create.Execute(ctx, borrow(b.ID, "bishop@example.com"))
	require.NoError(t, err)

	page, err := f.list.Execute(ctx, ListLoansRequest{Status: "late"})
	require.NoError(t, err)
	require.Equal(t, int64(1), page.Total)
	assert.Equal(t, late.ID, page.Items[0].ID)
	assert.Equal(t, "LATE", page.Items[0].Status)
	assert.Equal(t, 8.5, page.Items[0].Penalty) // 17天

	// status列已被写回
	stored, err := f.loans.FindByID(ctx, late.ID)
	require.NoError(t, err)
	assert.Equal(t, loan.StatusLate, stored.Status)

	page, err = f.list.Execute(ctx, ListLoansRequest{ActiveOnly: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	page, err = f.list.Execute(ctx, ListLoansRequest{BorrowerEmail: "BISHOP"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	_, err = f.list.Execute(ctx, ListLoansRequest{Status: "LOST"})
	assert.True(t, errors.Is(err, loan.ErrInvalidStatus))
}
