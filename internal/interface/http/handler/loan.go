package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	apploan "github.com/xiebiao/library/internal/application/loan"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/pkg/response"
)

// LoanHandler 借阅HTTP处理器
type LoanHandler struct {
	createLoan *apploan.CreateLoanUseCase
	returnLoan *apploan.ReturnLoanUseCase
	renewLoan  *apploan.RenewLoanUseCase
	getLoan    *apploan.GetLoanUseCase
	listLoans  *apploan.ListLoansUseCase
}

// NewLoanHandler 创建借阅处理器
func NewLoanHandler(
	createLoan *apploan.CreateLoanUseCase,
	returnLoan *apploan.ReturnLoanUseCase,
	renewLoan *apploan.RenewLoanUseCase,
	getLoan *apploan.GetLoanUseCase,
	listLoans *apploan.ListLoansUseCase,
) *LoanHandler {
	return &LoanHandler{
		createLoan: createLoan,
		returnLoan: returnLoan,
		renewLoan:  renewLoan,
		getLoan:    getLoan,
		listLoans:  listLoans,
	}
}

// CreateLoan 借出
// @Summary      借出图书
// @Description  检查顺序：图书存在 → 有可借副本 → 借阅人未达上限
// @Tags         借阅
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateLoanRequest true "借阅信息"
// @Success      201 {object} response.Response{data=apploan.LoanDetails}
// @Failure      400 {object} response.Response "无可借副本或达到借阅上限"
// @Failure      404 {object} response.Response "图书不存在"
// @Failure      422 {object} response.Response "参数错误"
// @Router       /api/v1/loans [post]
func (h *LoanHandler) CreateLoan(c *gin.Context) {
	var req dto.CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	result, err := h.createLoan.Execute(c.Request.Context(), apploan.CreateLoanRequest{
		BookID:            req.BookID,
		BorrowerName:      req.BorrowerName,
		BorrowerEmail:     req.BorrowerEmail,
		LibraryCardNumber: req.LibraryCardNumber,
		Comments:          req.Comments,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ReturnLoan 归还
// @Summary      归还图书
// @Description  返回按实际归还时间计算的罚金与逾期天数
// @Tags         借阅
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "借阅ID"
// @Param        request body dto.ReturnLoanRequest false "归还信息"
// @Success      200 {object} response.Response{data=apploan.LoanDetails}
// @Failure      400 {object} response.Response "已归还"
// @Failure      404 {object} response.Response "借阅不存在"
// @Router       /api/v1/loans/{id}/return [post]
func (h *LoanHandler) ReturnLoan(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	// 请求体可以为空
	var req dto.ReturnLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, bindError(err))
		return
	}

	result, err := h.returnLoan.Execute(c.Request.Context(), apploan.ReturnLoanRequest{
		LoanID:     id,
		ReturnDate: req.ReturnDate,
		Comments:   req.Comments,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// RenewLoan 续借
// @Summary      续借
// @Description  到期日顺延一个借期，只能续借一次
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "借阅ID"
// @Success      200 {object} response.Response{data=apploan.LoanDetails}
// @Failure      400 {object} response.Response "已归还或已续借"
// @Failure      404 {object} response.Response "借阅不存在"
// @Router       /api/v1/loans/{id}/renew [post]
func (h *LoanHandler) RenewLoan(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.renewLoan.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetLoan 借阅详情
// @Summary      借阅详情
// @Tags         借阅
// @Produce      json
// @Param        id path int true "借阅ID"
// @Success      200 {object} response.Response{data=apploan.LoanDetails}
// @Failure      404 {object} response.Response "借阅不存在"
// @Router       /api/v1/loans/{id} [get]
func (h *LoanHandler) GetLoan(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.getLoan.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListLoans 借阅列表
// @Summary      借阅列表
// @Description  按借出时间倒序；status按当前时间推导
// @Tags         借阅
// @Produce      json
// @Param        status         query string false "ACTIVE | LATE | RETURNED"
// @Param        borrower_email query string false "借阅人邮箱（包含匹配）"
// @Param        book_id        query int    false "图书ID"
// @Param        active_only    query bool   false "只看未归还"
// @Param        late_only      query bool   false "只看逾期"
// @Param        page           query int    false "页码"
// @Param        page_size      query int    false "每页数量"
// @Success      200 {object} response.Response{data=response.PageData}
// @Router       /api/v1/loans [get]
func (h *LoanHandler) ListLoans(c *gin.Context) {
	var q dto.ListLoansQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err))
		return
	}

	page, err := h.listLoans.Execute(c.Request.Context(), apploan.ListLoansRequest{
		Status:        q.Status,
		BorrowerEmail: q.BorrowerEmail,
		BookID:        q.BookID,
		ActiveOnly:    q.ActiveOnly,
		LateOnly:      q.LateOnly,
		Page:          q.Page,
		PageSize:      q.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, page.Items, page.Total, page.Page, page.PageSize)
}
