package handler

import (
	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/library/internal/application/book"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/pkg/response"
)

// BookHandler 图书HTTP处理器
type BookHandler struct {
	publishBook   *appbook.PublishBookUseCase
	getBook       *appbook.GetBookUseCase
	searchBooks   *appbook.SearchBooksUseCase
	updateBook    *appbook.UpdateBookUseCase
	deleteBook    *appbook.DeleteBookUseCase
	listMovements *appbook.ListMovementsUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	publishBook *appbook.PublishBookUseCase,
	getBook *appbook.GetBookUseCase,
	searchBooks *appbook.SearchBooksUseCase,
	updateBook *appbook.UpdateBookUseCase,
	deleteBook *appbook.DeleteBookUseCase,
	listMovements *appbook.ListMovementsUseCase,
) *BookHandler {
	return &BookHandler{
		publishBook:   publishBook,
		getBook:       getBook,
		searchBooks:   searchBooks,
		updateBook:    updateBook,
		deleteBook:    deleteBook,
		listMovements: listMovements,
	}
}

// PublishBook 图书入库
// @Summary      图书入库
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.PublishBookRequest true "图书信息"
// @Success      201 {object} response.Response{data=appbook.BookDetails}
// @Failure      400 {object} response.Response "ISBN已存在"
// @Failure      404 {object} response.Response "作者不存在"
// @Failure      422 {object} response.Response "参数错误"
// @Router       /api/v1/books [post]
func (h *BookHandler) PublishBook(c *gin.Context) {
	var req dto.PublishBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	result, err := h.publishBook.Execute(c.Request.Context(), appbook.PublishBookRequest{
		Title:           req.Title,
		ISBN:            req.ISBN,
		PublicationYear: req.PublicationYear,
		AuthorID:        req.AuthorID,
		TotalCopies:     req.TotalCopies,
		AvailableCopies: req.AvailableCopies,
		Category:        req.Category,
		Language:        req.Language,
		Pages:           req.Pages,
		Publisher:       req.Publisher,
		Description:     req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// GetBook 图书详情
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=appbook.BookDetails}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.getBook.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateBook 修改图书
// @Summary      修改图书
// @Description  部分更新；修改total_copies时可借数同步平移
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        request body dto.UpdateBookRequest true "修改内容"
// @Success      200 {object} response.Response{data=appbook.BookDetails}
// @Failure      404 {object} response.Response "图书或作者不存在"
// @Failure      422 {object} response.Response "参数错误"
// @Router       /api/v1/books/{id} [patch]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	result, err := h.updateBook.Execute(c.Request.Context(), appbook.UpdateBookRequest{
		ID: id,
		Patch: book.Patch{
			Title:           req.Title,
			ISBN:            req.ISBN,
			PublicationYear: req.PublicationYear,
			AuthorID:        req.AuthorID,
			TotalCopies:     req.TotalCopies,
			Category:        req.Category,
			Language:        req.Language,
			Pages:           req.Pages,
			Publisher:       req.Publisher,
			Description:     req.Description,
		},
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteBook 删除图书
// @Summary      删除图书
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response
// @Failure      400 {object} response.Response "存在未归还借阅"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.deleteBook.Execute(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"id": id})
}

// SearchBooks 组合条件检索
// @Summary      图书检索
// @Tags         图书
// @Produce      json
// @Param        title          query string false "书名包含"
// @Param        author         query string false "作者姓或名包含"
// @Param        category       query string false "分类"
// @Param        available_only query bool   false "只看有可借副本的"
// @Param        page           query int    false "页码"
// @Param        page_size      query int    false "每页数量"
// @Success      200 {object} response.Response{data=response.PageData}
// @Router       /api/v1/books/search [get]
func (h *BookHandler) SearchBooks(c *gin.Context) {
	var q dto.SearchBooksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err))
		return
	}
	page, err := h.searchBooks.Execute(c.Request.Context(), appbook.SearchBooksRequest{
		Title:         q.Title,
		AuthorName:    q.Author,
		Category:      q.Category,
		AvailableOnly: q.AvailableOnly,
		Page:          q.Page,
		PageSize:      q.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, page.Items, page.Total, page.Page, page.PageSize)
}

// SearchByISBN 按ISBN查找
// @Summary      按ISBN查找
// @Tags         图书
// @Produce      json
// @Param        isbn query string true "ISBN-13，可带连字符"
// @Success      200 {object} response.Response{data=appbook.BookDetails}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/search-by-isbn [get]
func (h *BookHandler) SearchByISBN(c *gin.Context) {
	var q dto.SearchByISBNQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err))
		return
	}
	result, err := h.searchBooks.ByISBN(c.Request.Context(), q.ISBN)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// SearchByYear 按出版年份查找
// @Summary      按出版年份查找
// @Tags         图书
// @Produce      json
// @Param        year      query int false "精确年份"
// @Param        year_min  query int false "起始年份"
// @Param        year_max  query int false "截止年份"
// @Param        page      query int false "页码"
// @Param        page_size query int false "每页数量"
// @Success      200 {object} response.Response{data=response.PageData}
// @Router       /api/v1/books/search-by-year [get]
func (h *BookHandler) SearchByYear(c *gin.Context) {
	var q dto.SearchByYearQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err))
		return
	}
	page, err := h.searchBooks.ByYear(c.Request.Context(), appbook.SearchByYearRequest{
		Year:     q.Year,
		YearMin:  q.YearMin,
		YearMax:  q.YearMax,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, page.Items, page.Total, page.Page, page.PageSize)
}

// SearchByLanguage 按语言查找
// @Summary      按语言查找
// @Tags         图书
// @Produce      json
// @Param        iso path string true "ISO 639-1两位代码"
// @Success      200 {object} response.Response{data=[]appbook.BookDetails}
// @Failure      404 {object} response.Response "没有该语言的图书"
// @Router       /api/v1/books/search-by-language/{iso} [get]
func (h *BookHandler) SearchByLanguage(c *gin.Context) {
	result, err := h.searchBooks.ByLanguage(c.Request.Context(), c.Param("iso"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListMovements 库存流水
// @Summary      库存流水
// @Description  最近的借出/归还/馆藏调整记录，按时间倒序
// @Tags         图书
// @Produce      json
// @Param        id    path  int true  "图书ID"
// @Param        limit query int false "条数（1-100，默认20）"
// @Success      200 {object} response.Response{data=[]appbook.MovementItem}
// @Router       /api/v1/books/{id}/movements [get]
func (h *BookHandler) ListMovements(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var q dto.MovementsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err))
		return
	}
	result, err := h.listMovements.Execute(c.Request.Context(), id, q.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
