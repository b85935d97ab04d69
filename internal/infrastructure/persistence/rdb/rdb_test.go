package rdb

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/domain/author"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/staff"
	"github.com/xiebiao/library/internal/infrastructure/config"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "test"},
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			Path:   filepath.Join(t.TempDir(), "library.db"),
		},
	}
	db, err := NewDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func seedAuthor(t *testing.T, repo author.Repository, first, last, nationality string) *author.Author {
	t.Helper()
	a := &author.Author{
		FirstName:   first,
		LastName:    last,
		BirthDate:   time.Date(1913, 11, 7, 0, 0, 0, 0, time.UTC),
		Nationality: nationality,
	}
	require.NoError(t, repo.Create(context.Background(), a))
	return a
}

func seedBook(t *testing.T, repo book.Repository, authorID uint, title, isbn string, year, copies int) *book.Book {
	t.Helper()
	b := &book.Book{
		Title:           title,
		ISBN:            isbn,
		PublicationYear: year,
		AuthorID:        authorID,
		TotalCopies:     copies,
		AvailableCopies: copies,
		Category:        book.CategoryFiction,
		Language:        "fr",
	}
	require.NoError(t, repo.Create(context.Background(), b))
	return b
}

func TestBookRepository_CreateAndView(t *testing.T) {
	db := newTestDB(t)
	authors := NewAuthorRepository(db)
	books := NewBookRepository(db)
	ctx := context.Background()

	a := seedAuthor(t, authors, "Albert", "Camus", "FR")
	b := seedBook(t, books, a.ID, "L'Étranger", "9782070360024", 1942, 2)
	assert.NotZero(t, b.ID)

	dup := &book.Book{Title: "Copie", ISBN: "9782070360024", PublicationYear: 1950, AuthorID: a.ID, TotalCopies: 1}
	assert.True(t, errors.Is(books.Create(ctx, dup), book.ErrISBNDuplicate))

	v, err := books.FindViewByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Albert Camus", v.AuthorName)
	assert.Equal(t, 2, v.AvailableCopies)
	assert.Equal(t, int64(0), v.LoansCount)

	v, err = books.FindViewByISBN(ctx, "9782070360024")
	require.NoError(t, err)
	assert.Equal(t, b.ID, v.ID)

	_, err = books.FindViewByID(ctx, 999)
	assert.True(t, errors.Is(err, book.ErrBookNotFound))
}

func TestBookRepository_UpdateAvailableCopies(t *testing.T) {
	db := newTestDB(t)
	a := seedAuthor(t, NewAuthorRepository(db), "Albert", "Camus", "FR")
	books := NewBookRepository(db)
	b := seedBook(t, books, a.ID, "La Peste", "9782070360420", 1947, 1)
	ctx := context.Background()

	require.NoError(t, books.UpdateAvailableCopies(ctx, b.ID, -1))
	assert.True(t, errors.Is(books.UpdateAvailableCopies(ctx, b.ID, -1), book.ErrBookUnavailable))

	require.NoError(t, books.UpdateAvailableCopies(ctx, b.ID, 1))
	assert.True(t, errors.Is(books.UpdateAvailableCopies(ctx, b.ID, 1), book.ErrConsistencyViolation))

	assert.True(t, errors.Is(books.UpdateAvailableCopies(ctx, 999, -1), book.ErrBookNotFound))

	got, err := books.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AvailableCopies)
}

func TestBookRepository_Search(t *testing.T) {
	db := newTestDB(t)
	authors := NewAuthorRepository(db)
	books := NewBookRepository(db)
	ctx := context.Background()

	camus := seedAuthor(t, authors, "Albert", "Camus", "FR")
	hugo := seedAuthor(t, authors, "Victor", "Hugo", "FR")
	seedBook(t, books, camus.ID, "La Peste", "9782070360420", 1947, 1)
	seedBook(t, books, camus.ID, "La Chute", "9782070360109", 1956, 1)
	miserables := seedBook(t, books, hugo.ID, "Les Misérables", "9782253096344", 1862, 1)
	require.NoError(t, books.UpdateAvailableCopies(ctx, miserables.ID, -1))

	views, total, err := books.Search(ctx, book.SearchParams{Title: "la ", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "La Chute", views[0].Title)

	_, total, err = books.Search(ctx, book.SearchParams{AuthorName: "HUG", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, total, err = books.Search(ctx, book.SearchParams{AvailableOnly: true, Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	min, max := 1900, 1950
	_, total, err = books.Search(ctx, book.SearchParams{YearMin: &min, YearMax: &max, Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	views, total, err = books.Search(ctx, book.SearchParams{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, views, 1)

	totals, err := books.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), totals.Books)
	assert.Equal(t, int64(3), totals.TotalCopies)
	assert.Equal(t, int64(2), totals.AvailableCopies)
}

func TestBookRepository_Movements(t *testing.T) {
	db := newTestDB(t)
	a := seedAuthor(t, NewAuthorRepository(db), "Albert", "Camus", "FR")
	books := NewBookRepository(db)
	b := seedBook(t, books, a.ID, "La Peste", "9782070360420", 1947, 2)
	ctx := context.Background()

	require.NoError(t, books.AppendMovement(ctx, book.NewReserveMovement(b.ID, 7, 2)))
	require.NoError(t, books.AppendMovement(ctx, book.NewReleaseMovement(b.ID, 7, 1)))

	ms, err := books.ListMovements(ctx, b.ID, 10)
	require.NoError(t, err)
	require.Len(t, ms, 2)
	assert.Equal(t, book.MovementRelease, ms[0].Kind)
	assert.Equal(t, ms[1].After, ms[0].Before)
	require.NotNil(t, ms[1].LoanID)
	assert.Equal(t, uint(7), *ms[1].LoanID)
}

func TestTxManager_Rollback(t *testing.T) {
	db := newTestDB(t)
	a := seedAuthor(t, NewAuthorRepository(db), "Albert", "Camus", "FR")
	books := NewBookRepository(db)
	b := seedBook(t, books, a.ID, "La Peste", "9782070360420", 1947, 1)
	tx := NewTxManager(db)
	ctx := context.Background()

	boom := errors.New("boom")
	err := tx.Transaction(ctx, func(ctx context.Context) error {
		if _, err := books.LockByID(ctx, b.ID); err != nil {
			return err
		}
		if err := books.UpdateAvailableCopies(ctx, b.ID, -1); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := books.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AvailableCopies, "回滚后可借数不变")
}

func TestLoanRepository_StatusPredicates(t *testing.T) {
	db := newTestDB(t)
	a := seedAuthor(t, NewAuthorRepository(db), "Albert", "Camus", "FR")
	b := seedBook(t, NewBookRepository(db), a.ID, "La Peste", "9782070360420", 1947, 5)
	loans := NewLoanRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()
	p := loan.DefaultPolicy()

	active := loan.NewLoan(b.ID, "Marie", "Marie@Example.com", "CARD-001", "", now, p)
	require.NoError(t, loans.Create(ctx, active))

	late := loan.NewLoan(b.ID, "Paul", "paul@example.com", "CARD-002", "", now.AddDate(0, 0, -30), p)
	require.NoError(t, loans.Create(ctx, late)) // status列仍是ACTIVE

	returned := loan.NewLoan(b.ID, "Marie", "marie@example.com", "CARD-001", "", now.AddDate(0, 0, -20), p)
	require.NoError(t, returned.Return(nil, "ok", now.AddDate(0, 0, -10)))
	require.NoError(t, loans.Create(ctx, returned))

	t.Run("按推导状态过滤", func(t *testing.T) {
		st := loan.StatusLate
		views, total, err := loans.List(ctx, loan.ListFilter{Status: &st, Now: now, Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, late.ID, views[0].ID)
		assert.Equal(t, "La Peste", views[0].BookTitle)

		_, total, err = loans.List(ctx, loan.ListFilter{ActiveOnly: true, Now: now, Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)

		_, total, err = loans.List(ctx, loan.ListFilter{BorrowerEmail: "MARIE", Now: now, Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("按借出时间倒序", func(t *testing.T) {
		views, _, err := loans.List(ctx, loan.ListFilter{Now: now, Page: 1, PageSize: 10})
		require.NoError(t, err)
		require.Len(t, views, 3)
		assert.Equal(t, active.ID, views[0].ID)
		assert.Equal(t, late.ID, views[2].ID)
	})

	t.Run("未还计数", func(t *testing.T) {
		n, err := loans.CountOpenByBorrower(ctx, "MARIE@example.com")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = loans.CountOpenByBook(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("批量刷新状态", func(t *testing.T) {
		changed, err := loans.RefreshOpenStatuses(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, int64(1), changed)

		got, err := loans.FindByID(ctx, late.ID)
		require.NoError(t, err)
		assert.Equal(t, loan.StatusLate, got.Status)

		changed, err = loans.RefreshOpenStatuses(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, int64(0), changed)
	})

	t.Run("统计", func(t *testing.T) {
		counts, err := loans.CountByStatus(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, int64(1), counts[loan.StatusActive])
		assert.Equal(t, int64(1), counts[loan.StatusLate])
		assert.Equal(t, int64(1), counts[loan.StatusReturned])

		stats, err := loans.BookStats(ctx, b.ID, now)
		require.NoError(t, err)
		assert.Equal(t, int64(3), stats.TotalLoans)
		assert.Equal(t, int64(1), stats.TimesLate)
		assert.InDelta(t, 10.0, stats.AverageLoanDuration, 0.01)

		n, err := loans.CountByAuthor(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})
}

func TestLoanRepository_Update(t *testing.T) {
	db := newTestDB(t)
	a := seedAuthor(t, NewAuthorRepository(db), "Albert", "Camus", "FR")
	b := seedBook(t, NewBookRepository(db), a.ID, "La Peste", "9782070360420", 1947, 1)
	loans := NewLoanRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	l := loan.NewLoan(b.ID, "Marie", "marie@example.com", "CARD-001", "", now, loan.DefaultPolicy())
	require.NoError(t, loans.Create(ctx, l))

	locked, err := loans.LockByID(ctx, l.ID)
	require.NoError(t, err)
	require.NoError(t, locked.Return(nil, "abîmé", now))
	require.NoError(t, loans.Update(ctx, locked))

	got, err := loans.FindByID(ctx, l.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ReturnDate)
	assert.Equal(t, loan.StatusReturned, got.Status)
	assert.Equal(t, "abîmé", got.Comments)

	_, err = loans.FindByID(ctx, 999)
	assert.True(t, errors.Is(err, loan.ErrLoanNotFound))
}

func TestAuthorRepository(t *testing.T) {
	db := newTestDB(t)
	authors := NewAuthorRepository(db)
	books := NewBookRepository(db)
	ctx := context.Background()

	camus := seedAuthor(t, authors, "Albert", "Camus", "FR")
	seedAuthor(t, authors, "Jorge", "Amado", "BR")
	seedBook(t, books, camus.ID, "La Peste", "9782070360420", 1947, 1)

	dup := &author.Author{FirstName: "Albert", LastName: "Camus", BirthDate: camus.BirthDate, Nationality: "FR"}
	assert.True(t, errors.Is(authors.Create(ctx, dup), author.ErrAuthorDuplicate))

	found, err := authors.FindByName(ctx, "albert", "CAMUS")
	require.NoError(t, err)
	assert.Equal(t, camus.ID, found.ID)

	v, err := authors.FindViewByID(ctx, camus.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.BooksCount)

	list, total, err := authors.List(ctx, author.ListParams{SortBy: author.SortByLastName, Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "Amado", list[0].LastName)

	list, _, err = authors.List(ctx, author.ListParams{SortBy: author.SortByLastName, Desc: true, Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, "Camus", list[0].LastName)

	_, total, err = authors.List(ctx, author.ListParams{Nationality: "br", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	death := time.Date(1960, 1, 4, 0, 0, 0, 0, time.UTC)
	camus.DeathDate = &death
	require.NoError(t, authors.Update(ctx, camus))
	got, err := authors.FindByID(ctx, camus.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DeathDate)
	assert.True(t, death.Equal(*got.DeathDate))

	assert.True(t, errors.Is(authors.Delete(ctx, 999), author.ErrAuthorNotFound))
}

func TestStaffRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewStaffRepository(db)
	ctx := context.Background()

	s := staff.NewStaff("marie@library.org", "hash", "Marie")
	require.NoError(t, repo.Create(ctx, s))
	assert.True(t, errors.Is(repo.Create(ctx, staff.NewStaff("marie@library.org", "hash", "Marie")), staff.ErrEmailDuplicate))

	got, err := repo.FindByEmail(ctx, "MARIE@library.org")
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)

	_, err = repo.FindByID(ctx, 999)
	assert.True(t, errors.Is(err, staff.ErrStaffNotFound))
}
