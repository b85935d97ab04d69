package handler

import (
	"github.com/gin-gonic/gin"

	appstats "github.com/xiebiao/library/internal/application/stats"
	"github.com/xiebiao/library/pkg/response"
)

// StatsHandler 统计接口
type StatsHandler struct {
	stats *appstats.StatsUseCase
}

// NewStatsHandler 创建统计处理器
func NewStatsHandler(stats *appstats.StatsUseCase) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// LibraryStats 全馆统计
// @Summary      全馆统计
// @Tags         统计
// @Produce      json
// @Success      200 {object} response.Response{data=appstats.LibraryStats}
// @Router       /api/v1/stats [get]
func (h *StatsHandler) LibraryStats(c *gin.Context) {
	result, err := h.stats.Library(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// BookStats 单本图书统计
// @Summary      图书借阅统计
// @Tags         统计
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=appstats.BookStats}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id}/stats [get]
func (h *StatsHandler) BookStats(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.stats.Book(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// AuthorStats 作者统计
// @Summary      作者统计
// @Tags         统计
// @Produce      json
// @Param        id path int true "作者ID"
// @Success      200 {object} response.Response{data=appstats.AuthorStats}
// @Failure      404 {object} response.Response "作者不存在"
// @Router       /api/v1/authors/{id}/stats [get]
func (h *StatsHandler) AuthorStats(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.stats.Author(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
