package book

import (
	"strings"
	"time"
)

// Category 图书分类
type Category string

const (
	CategoryFiction    Category = "Fiction"
	CategoryScience    Category = "Science"
	CategoryHistory    Category = "Histoire"
	CategoryPhilosophy Category = "Philosophie"
	CategoryBiography  Category = "Biographie"
	CategoryPoetry     Category = "Poésie"
	CategoryTheatre    Category = "Théâtre"
	CategoryYouth      Category = "Jeunesse"
	CategoryComics     Category = "BD"
	CategoryOther      Category = "Autre"
)

// Categories 全部合法分类
var Categories = []Category{
	CategoryFiction, CategoryScience, CategoryHistory, CategoryPhilosophy, CategoryBiography,
	CategoryPoetry, CategoryTheatre, CategoryYouth, CategoryComics, CategoryOther,
}

// ParseCategory 解析分类，空串视为Autre
func ParseCategory(s string) (Category, bool) {
	if strings.TrimSpace(s) == "" {
		return CategoryOther, true
	}
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Book 图书实体（聚合根）
// 库存账本：
// 1. 0 <= AvailableCopies <= TotalCopies 始终成立
// 2. AvailableCopies只由借阅状态机修改（借出-1，归还+1）
// 3. 馆藏调整（TotalCopies变化）时可借数同步平移
type Book struct {
	ID              uint
	Title           string
	ISBN            string // 规范化后的13位数字
	PublicationYear int
	AuthorID        uint
	AvailableCopies int
	TotalCopies     int
	Category        Category
	Language        string // ISO 639-1，小写
	Pages           int    // 0表示未知
	Publisher       string
	Description     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OnLoan 当前借出的副本数
func (b *Book) OnLoan() int {
	return b.TotalCopies - b.AvailableCopies
}

// CheckInvariant 校验库存不变量
func (b *Book) CheckInvariant() error {
	if b.AvailableCopies < 0 || b.AvailableCopies > b.TotalCopies {
		return ErrConsistencyViolation
	}
	return nil
}

// ReserveCopy 借出一个副本
func (b *Book) ReserveCopy() error {
	if err := b.CheckInvariant(); err != nil {
		return err
	}
	if b.AvailableCopies == 0 {
		return ErrBookUnavailable
	}
	b.AvailableCopies--
	b.UpdatedAt = time.Now()
	return nil
}

// ReleaseCopy 归还一个副本
// 可借数已等于总数说明调用方重复归还，属于程序缺陷
func (b *Book) ReleaseCopy() error {
	if err := b.CheckInvariant(); err != nil {
		return err
	}
	if b.AvailableCopies == b.TotalCopies {
		return ErrConsistencyViolation
	}
	b.AvailableCopies++
	b.UpdatedAt = time.Now()
	return nil
}

// ResizeCopies 调整馆藏总数，可借数同步平移，返回可借数变化量
// 新总数不能少于已借出的数量
func (b *Book) ResizeCopies(newTotal int) (int, error) {
	if newTotal <= 0 {
		return 0, ErrInvalidCopies
	}
	delta := newTotal - b.TotalCopies
	if b.AvailableCopies+delta < 0 {
		return 0, ErrCopiesOnLoan
	}
	b.TotalCopies = newTotal
	b.AvailableCopies += delta
	b.UpdatedAt = time.Now()
	return delta, nil
}

// View 图书读模型（带作者名与借阅次数）
type View struct {
	Book
	AuthorName string
	LoansCount int64
}
