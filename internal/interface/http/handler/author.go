package handler

import (
	"github.com/gin-gonic/gin"

	appauthor "github.com/xiebiao/library/internal/application/author"
	"github.com/xiebiao/library/internal/domain/author"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/pkg/response"
)

// AuthorHandler 作者HTTP处理器
type AuthorHandler struct {
	authors *appauthor.AuthorUseCase
}

// NewAuthorHandler 创建作者处理器
func NewAuthorHandler(authors *appauthor.AuthorUseCase) *AuthorHandler {
	return &AuthorHandler{authors: authors}
}

// CreateAuthor 新建作者
// @Summary      新建作者
// @Tags         作者
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateAuthorRequest true "作者信息"
// @Success      201 {object} response.Response{data=appauthor.AuthorDetails}
// @Failure      400 {object} response.Response "同名作者已存在"
// @Failure      422 {object} response.Response "参数错误"
// @Router       /api/v1/authors [post]
func (h *AuthorHandler) CreateAuthor(c *gin.Context) {
	var req dto.CreateAuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	birth, err := dto.ParseDate(req.BirthDate)
	if err != nil {
		response.Error(c, err)
		return
	}
	death, err := dto.ParseDatePtr(req.DeathDate)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.authors.Create(c.Request.Context(), author.Draft{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		BirthDate:   birth,
		Nationality: req.Nationality,
		Biography:   req.Biography,
		DeathDate:   death,
		Website:     req.Website,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// GetAuthor 作者详情（含图书数量）
// @Summary      作者详情
// @Tags         作者
// @Produce      json
// @Param        id path int true "作者ID"
// @Success      200 {object} response.Response{data=appauthor.AuthorDetails}
// @Failure      404 {object} response.Response "作者不存在"
// @Router       /api/v1/authors/{id} [get]
func (h *AuthorHandler) GetAuthor(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.authors.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateAuthor 修改作者
// @Summary      修改作者
// @Tags         作者
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "作者ID"
// @Param        request body dto.UpdateAuthorRequest true "修改内容"
// @Success      200 {object} response.Response{data=appauthor.AuthorDetails}
// @Failure      400 {object} response.Response "同名作者已存在"
// @Failure      404 {object} response.Response "作者不存在"
// @Router       /api/v1/authors/{id} [patch]
func (h *AuthorHandler) UpdateAuthor(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateAuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	birth, err := dto.ParseDatePtr(req.BirthDate)
	if err != nil {
		response.Error(c, err)
		return
	}
	death, err := dto.ParseDatePtr(req.DeathDate)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.authors.Update(c.Request.Context(), id, author.Patch{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		BirthDate:   birth,
		Nationality: req.Nationality,
		Biography:   req.Biography,
		DeathDate:   death,
		Website:     req.Website,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteAuthor 删除作者
// @Summary      删除作者
// @Tags         作者
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "作者ID"
// @Success      200 {object} response.Response
// @Failure      400 {object} response.Response "作者名下仍有图书"
// @Failure      404 {object} response.Response "作者不存在"
// @Router       /api/v1/authors/{id} [delete]
func (h *AuthorHandler) DeleteAuthor(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.authors.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"id": id})
}

// ListAuthors 作者列表
// @Summary      作者列表
// @Tags         作者
// @Produce      json
// @Param        search      query string false "姓或名包含"
// @Param        nationality query string false "国籍"
// @Param        sort_by     query string false "last_name | first_name | birth_date"
// @Param        order       query string false "asc | desc"
// @Param        page        query int    false "页码"
// @Param        page_size   query int    false "每页数量"
// @Success      200 {object} response.Response{data=response.PageData}
// @Router       /api/v1/authors [get]
func (h *AuthorHandler) ListAuthors(c *gin.Context) {
	var q dto.ListAuthorsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err))
		return
	}
	page, err := h.authors.List(c.Request.Context(), appauthor.ListAuthorsRequest{
		Search:      q.Search,
		Nationality: q.Nationality,
		SortBy:      q.SortBy,
		Order:       q.Order,
		Page:        q.Page,
		PageSize:    q.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, page.Items, page.Total, page.Page, page.PageSize)
}
