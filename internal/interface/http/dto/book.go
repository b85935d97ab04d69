package dto

// PublishBookRequest 图书入库请求
// isbn13、iso2、pubyear为pkg/validator注册的自定义规则
type PublishBookRequest struct {
	Title           string `json:"title" binding:"required,max=200" example:"L'Étranger"`
	ISBN            string `json:"isbn" binding:"required,isbn13" example:"978-2-07-036002-4"`
	PublicationYear int    `json:"publication_year" binding:"required,pubyear" example:"1942"`
	AuthorID        uint   `json:"author_id" binding:"required,min=1" example:"1"`
	TotalCopies     int    `json:"total_copies" binding:"required,min=1" example:"3"`
	AvailableCopies *int   `json:"available_copies" binding:"omitempty,min=0" example:"3"`
	Category        string `json:"category" binding:"max=50" example:"Fiction"`
	Language        string `json:"language" binding:"omitempty,iso2" example:"fr"`
	Pages           int    `json:"pages" binding:"omitempty,min=1" example:"184"`
	Publisher       string `json:"publisher" binding:"max=200" example:"Gallimard"`
	Description     string `json:"description" binding:"max=5000"`
}

// UpdateBookRequest 部分更新，省略的字段保持不变；available_copies不可直接修改
type UpdateBookRequest struct {
	Title           *string `json:"title" binding:"omitempty,min=1,max=200"`
	ISBN            *string `json:"isbn" binding:"omitempty,isbn13"`
	PublicationYear *int    `json:"publication_year" binding:"omitempty,pubyear"`
	AuthorID        *uint   `json:"author_id" binding:"omitempty,min=1"`
	TotalCopies     *int    `json:"total_copies" binding:"omitempty,min=1"`
	Category        *string `json:"category" binding:"omitempty,max=50"`
	Language        *string `json:"language" binding:"omitempty,iso2"`
	Pages           *int    `json:"pages" binding:"omitempty,min=1"`
	Publisher       *string `json:"publisher" binding:"omitempty,max=200"`
	Description     *string `json:"description" binding:"omitempty,max=5000"`
}

// SearchBooksQuery 组合条件检索
type SearchBooksQuery struct {
	Title         string `form:"title" binding:"max=200"`
	Author        string `form:"author" binding:"max=100"`
	Category      string `form:"category" binding:"max=50"`
	AvailableOnly bool   `form:"available_only"`
	Page          int    `form:"page" binding:"omitempty,min=1"`
	PageSize      int    `form:"page_size" binding:"omitempty,min=1"`
}

// SearchByISBNQuery 按ISBN查找
type SearchByISBNQuery struct {
	ISBN string `form:"isbn" binding:"required,isbn13"`
}

// SearchByYearQuery 按出版年份查找，year与year_min/year_max二选一
type SearchByYearQuery struct {
	Year     *int `form:"year"`
	YearMin  *int `form:"year_min"`
	YearMax  *int `form:"year_max"`
	Page     int  `form:"page" binding:"omitempty,min=1"`
	PageSize int  `form:"page_size" binding:"omitempty,min=1"`
}

// MovementsQuery 库存流水查询
type MovementsQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}
