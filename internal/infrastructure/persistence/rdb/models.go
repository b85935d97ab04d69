package rdb

import (
	"time"
)

// GORM模型与领域实体分离，仓储负责两者转换

// AuthorModel 作者表
// 姓+名联合唯一
type AuthorModel struct {
	ID          uint       `gorm:"primaryKey"`
	FirstName   string     `gorm:"uniqueIndex:idx_author_name;size:100;not null;comment:名"`
	LastName    string     `gorm:"uniqueIndex:idx_author_name;index;size:100;not null;comment:姓"`
	BirthDate   time.Time  `gorm:"not null;comment:出生日期"`
	Nationality string     `gorm:"index;size:2;not null;comment:国籍ISO 3166"`
	Biography   string     `gorm:"type:text;comment:简介"`
	DeathDate   *time.Time `gorm:"comment:去世日期"`
	Website     string     `gorm:"size:255;comment:网站"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (AuthorModel) TableName() string {
	return "authors"
}

// BookModel 图书表
// available_copies只通过条件UPDATE修改
type BookModel struct {
	ID              uint   `gorm:"primaryKey"`
	Title           string `gorm:"index;size:255;not null;comment:书名"`
	ISBN            string `gorm:"column:isbn;uniqueIndex;size:13;not null;comment:ISBN-13"`
	PublicationYear int    `gorm:"index;not null;comment:出版年份"`
	AuthorID        uint   `gorm:"index;not null;comment:作者ID"`
	AvailableCopies int    `gorm:"not null;default:0;comment:可借数量"`
	TotalCopies     int    `gorm:"not null;default:1;comment:馆藏总数"`
	Category        string `gorm:"index;size:32;not null;default:Autre;comment:分类"`
	Language        string `gorm:"index;size:2;comment:语言ISO 639-1"`
	Pages           int    `gorm:"comment:页数"`
	Publisher       string `gorm:"size:255;comment:出版社"`
	Description     string `gorm:"type:text;comment:描述"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (BookModel) TableName() string {
	return "books"
}

// LoanModel 借阅表
// status只是缓存，读取时按return_date/due_date重新推导
type LoanModel struct {
	ID                uint       `gorm:"primaryKey"`
	BookID            uint       `gorm:"index;not null;comment:图书ID"`
	BorrowerName      string     `gorm:"size:100;not null;comment:借阅人"`
	BorrowerEmail     string     `gorm:"index:idx_loan_borrower;size:255;not null;comment:借阅人邮箱（小写）"`
	LibraryCardNumber string     `gorm:"size:64;not null;comment:借书证号"`
	LoanDate          time.Time  `gorm:"index;not null;comment:借出时间"`
	DueDate           time.Time  `gorm:"index;not null;comment:到期时间"`
	ReturnDate        *time.Time `gorm:"index:idx_loan_borrower;comment:归还时间"`
	Status            string     `gorm:"index;size:16;not null;comment:状态缓存"`
	Renewed           bool       `gorm:"not null;default:false;comment:是否已续借"`
	Comments          string     `gorm:"type:text;comment:备注"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (LoanModel) TableName() string {
	return "loans"
}

// CopyMovementModel 库存流水表（只追加）
type CopyMovementModel struct {
	ID        uint      `gorm:"primaryKey"`
	BookID    uint      `gorm:"index;not null;comment:图书ID"`
	LoanID    *uint     `gorm:"index;comment:借阅ID"`
	Kind      string    `gorm:"size:16;not null;comment:RESERVE/RELEASE/ADJUST"`
	Delta     int       `gorm:"not null;comment:变化量"`
	Before    int       `gorm:"column:before_copies;not null;comment:变动前可借数"`
	After     int       `gorm:"column:after_copies;not null;comment:变动后可借数"`
	Remark    string    `gorm:"size:255;comment:备注"`
	CreatedAt time.Time `gorm:"index"`
}

func (CopyMovementModel) TableName() string {
	return "copy_movements"
}

// StaffModel 馆员表
type StaffModel struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string `gorm:"size:255;not null;comment:密码（bcrypt）"`
	Name      string `gorm:"size:50;not null;comment:姓名"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (StaffModel) TableName() string {
	return "staff"
}
