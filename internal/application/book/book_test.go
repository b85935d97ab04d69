package book

import (
	"context"
	"errors"
	"path/filepath"
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
)

// recordingCache 内存缓存，记录失效调用
type recordingCache struct {
	items       map[uint]*book.View
	invalidated []uint
}

func newRecordingCache() *recordingCache {
	return &recordingCache{items: map[uint]*book.View{}}
}

func (c *recordingCache) Get(_ context.Context, id uint) (*book.View, bool) {
	v, ok := c.items[id]
	return v, ok
}

func (c *recordingCache) Set(_ context.Context, v *book.View) { c.items[v.ID] = v }

func (c *recordingCache) Invalidate(_ context.Context, ids ...uint) {
	for _, id := range ids {
		delete(c.items, id)
		c.invalidated = append(c.invalidated, id)
	}
}

type fixture struct {
	books   book.Repository
	loans   loan.Repository
	cache   *recordingCache
	publish *PublishBookUseCase
	get     *GetBookUseCase
	search  *SearchBooksUseCase
	update  *UpdateBookUseCase
	remove  *DeleteBookUseCase
	moves   *ListMovementsUseCase
	author  *author.Author
}

func newFixture(t *testing.T) *fixture {
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
		FirstName:   "Albert",
		LastName:    "Camus",
		BirthDate:   time.Date(1913, 11, 7, 0, 0, 0, 0, time.UTC),
		Nationality: "FR",
	}
	require.NoError(t, authors.Create(context.Background(), a))

	books := rdb.NewBookRepository(db)
	loans := rdb.NewLoanRepository(db)
	tx := rdb.NewTxManager(db)
	svc := book.NewService(books)
	cache := newRecordingCache()

	return &fixture{
		books:   books,
		loans:   loans,
		cache:   cache,
		publish: NewPublishBookUseCase(svc, authors),
		get:     NewGetBookUseCase(svc, cache),
		search:  NewSearchBooksUseCase(svc, shared.Pager{DefaultPageSize: 20, MaxPageSize: 100}),
		update:  NewUpdateBookUseCase(books, svc, authors, tx, cache),
		remove:  NewDeleteBookUseCase(books, loans, tx, cache),
		moves:   NewListMovementsUseCase(books),
		author:  a,
	}
}

func (f *fixture) publishStranger(t *testing.T, copies int) *BookDetails {
	t.Helper()
	d, err := f.publish.Execute(context.Background(), PublishBookRequest{
		Title:           "L'Étranger",
		ISBN:            "978-2-07-036002-4",
		PublicationYear: 1942,
		AuthorID:        f.author.ID,
		TotalCopies:     copies,
		Category:        "Fiction",
		Language:        "FR",
	})
	require.NoError(t, err)
	return d
}

func TestPublishBook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := f.publishStranger(t, 3)
	assert.Equal(t, "9782070360024", d.ISBN)
	assert.Equal(t, "Albert Camus", d.AuthorName)
	assert.Equal(t, 3, d.AvailableCopies)
	assert.Equal(t, "fr", d.Language)

	t.Run("ISBN重复", func(t *testing.T) {
		_, err := f.publish.Execute(ctx, PublishBookRequest{
			Title: "Copie", ISBN: "9782070360024", PublicationYear: 1950, AuthorID: f.author.ID, TotalCopies: 1,
		})
		assert.True(t, errors.Is(err, book.ErrISBNDuplicate))
	})

	t.Run("作者不存在", func(t *testing.T) {
		_, err := f.publish.Execute(ctx, PublishBookRequest{
			Title: "La Peste", ISBN: "9780306406157", PublicationYear: 1947, AuthorID: 99, TotalCopies: 1,
		})
		assert.True(t, errors.Is(err, author.ErrAuthorNotFound))
	})

	t.Run("可借数超过总数", func(t *testing.T) {
		five := 5
		_, err := f.publish.Execute(ctx, PublishBookRequest{
			Title: "La Peste", ISBN: "9780306406157", PublicationYear: 1947, AuthorID: f.author.ID,
			TotalCopies: 2, AvailableCopies: &five,
		})
		assert.True(t, errors.Is(err, book.ErrInvalidCopies))
	})
}

func TestGetBook_CacheAside(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.publishStranger(t, 1)

	got, err := f.get.Execute(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "L'Étranger", got.Title)
	require.Contains(t, f.cache.items, d.ID, "未命中后回填缓存")

	f.cache.items[d.ID].Title = "cached"
	got, err = f.get.Execute(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "cached", got.Title)

	_, err = f.get.Execute(ctx, 404)
	assert.True(t, errors.Is(err, book.ErrBookNotFound))
}

func TestUpdateBook_ResizeCopies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.publishStranger(t, 3)

	// 借出一本
	l := loan.NewLoan(d.ID, "Meursault", "meursault@example.com", "CARD-1", "", time.Now().UTC(), loan.DefaultPolicy())
	require.NoError(t, f.loans.Create(ctx, l))
	require.NoError(t, f.books.UpdateAvailableCopies(ctx, d.ID, -1))

	total := 5
	title := "L'Étranger (poche)"
	updated, err := f.update.Execute(ctx, UpdateBookRequest{ID: d.ID, Patch: book.Patch{TotalCopies: &total, Title: &title}})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.TotalCopies)
	assert.Equal(t, 4, updated.AvailableCopies, "可借数随总数平移")
	assert.Equal(t, title, updated.Title)
	assert.Contains(t, f.cache.invalidated, d.ID)

	moves, err := f.moves.Execute(ctx, d.ID, 0)
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, "ADJUST", moves[0].Kind)
	assert.Equal(t, 2, moves[0].Delta)
	assert.Equal(t, 2, moves[0].Before)
	assert.Equal(t, 4, moves[0].After)

	t.Run("不能少于借出数", func(t *testing.T) {
		zero := 0
		_, err := f.update.Execute(ctx, UpdateBookRequest{ID: d.ID, Patch: book.Patch{TotalCopies: &zero}})
		assert.True(t, errors.Is(err, book.ErrInvalidCopies))
	})

	t.Run("作者不存在时回滚", func(t *testing.T) {
		missing := uint(77)
		_, err := f.update.Execute(ctx, UpdateBookRequest{ID: d.ID, Patch: book.Patch{AuthorID: &missing}})
		assert.True(t, errors.Is(err, author.ErrAuthorNotFound))

		b, err := f.books.FindByID(ctx, d.ID)
		require.NoError(t, err)
		assert.Equal(t, f.author.ID, b.AuthorID)
	})
}

func TestDeleteBook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := f.publishStranger(t, 1)

	l := loan.NewLoan(d.ID, "Meursault", "meursault@example.com", "CARD-1", "", time.Now().UTC(), loan.DefaultPolicy())
	require.NoError(t, f.loans.Create(ctx, l))

	err := f.remove.Execute(ctx, d.ID)
	assert.True(t, errors.Is(err, book.ErrBookHasOpenLoans))

	require.NoError(t, l.Return(nil, "", time.Now().UTC()))
	require.NoError(t, f.loans.Update(ctx, l))

	require.NoError(t, f.remove.Execute(ctx, d.ID))
	_, err = f.books.FindByID(ctx, d.ID)
	assert.True(t, errors.Is(err, book.ErrBookNotFound))
	assert.Contains(t, f.cache.invalidated, d.ID)
}

func TestSearchBooks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.publishStranger(t, 2)

	page, err := f.search.Execute(ctx, SearchBooksRequest{AuthorName: "camus"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 20, page.PageSize)

	year := 1942
	page, err = f.search.ByYear(ctx, SearchByYearRequest{Year: &year})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	lo, hi := 1950, 1940
	_, err = f.search.ByYear(ctx, SearchByYearRequest{YearMin: &lo, YearMax: &hi})
	assert.Error(t, err)
	_, err = f.search.ByYear(ctx, SearchByYearRequest{})
	assert.Error(t, err)

	got, err := f.search.ByISBN(ctx, "978-2070360024")
	require.NoError(t, err)
	assert.Equal(t, "L'Étranger", got.Title)

	list, err := f.search.ByLanguage(ctx, "fr")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.search.ByLanguage(ctx, "de")
	assert.True(t, errors.Is(err, book.ErrBookNotFound))
}
