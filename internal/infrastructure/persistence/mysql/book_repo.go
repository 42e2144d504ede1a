package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookstore-checkout/internal/domain/book"
	apperrors "github.com/xiebiao/bookstore-checkout/pkg/errors"
)

// bookRepository 图书仓储实现(MySQL)
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	model := toBookModel(b)
	if err := dbFrom(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return book.ErrISBNDuplicate
		}
		return apperrors.Wrap(err, "创建图书失败")
	}

	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	if err := dbFrom(ctx, r.db).First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}
	return toBookEntity(&model), nil
}

func (r *bookRepository) FindByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	var model BookModel
	if err := dbFrom(ctx, r.db).Where("isbn = ?", isbn).First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}
	return toBookEntity(&model), nil
}

// Update 不写sold列,销量只能通过IncrSold累加
// MySQL的RowsAffected只统计实际变化的行,这里不据此判断是否存在
func (r *bookRepository) Update(ctx context.Context, b *book.Book) error {
	err := dbFrom(ctx, r.db).Model(&BookModel{ID: b.ID}).Updates(map[string]interface{}{
		"isbn":           b.ISBN,
		"title":          b.Title,
		"author":         b.Author,
		"publisher":      b.Publisher,
		"original_price": b.OriginalPrice,
		"discount_price": b.DiscountPrice,
		"stock":          b.Stock,
		"cover_url":      b.CoverURL,
		"description":    b.Description,
		"is_deleted":     b.IsDeleted,
	}).Error
	if err != nil {
		if isDuplicateError(err) {
			return book.ErrISBNDuplicate
		}
		return apperrors.Wrap(err, "更新图书失败")
	}
	return nil
}

// Delete 下架,不物理删除
func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	result := dbFrom(ctx, r.db).Model(&BookModel{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Update("is_deleted", true)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "下架图书失败")
	}
	if result.RowsAffected == 0 {
		return book.ErrBookNotFound
	}
	return nil
}

func (r *bookRepository) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	query := dbFrom(ctx, r.db).Model(&BookModel{}).Where("is_deleted = ?", false)

	if params.Keyword != "" {
		keyword := "%" + params.Keyword + "%"
		query = query.Where("title LIKE ? OR author LIKE ? OR publisher LIKE ?", keyword, keyword, keyword)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书总数失败")
	}

	switch params.SortBy {
	case "price_asc":
		query = query.Order("original_price ASC")
	case "price_desc":
		query = query.Order("original_price DESC")
	case "sold_desc":
		query = query.Order("sold DESC").Order("id DESC")
	default:
		query = query.Order("created_at DESC").Order("id DESC")
	}

	var models []BookModel
	if err := query.Limit(params.PageSize).Offset(pageOffset(params.Page, params.PageSize)).Find(&models).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书列表失败")
	}

	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books, total, nil
}

// LockByID 必须在TxManager.Transaction内调用,锁持有到事务结束
func (r *bookRepository) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	err := dbFrom(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrapf(err, "锁定图书%d失败", id)
	}
	return toBookEntity(&model), nil
}

func (r *bookRepository) IncrSold(ctx context.Context, id uint, qty int) error {
	result := dbFrom(ctx, r.db).Model(&BookModel{}).
		Where("id = ?", id).
		UpdateColumn("sold", gorm.Expr("sold + ?", qty))
	if result.Error != nil {
		return apperrors.Wrapf(result.Error, "更新图书%d销量失败", id)
	}
	if result.RowsAffected == 0 {
		return book.ErrBookNotFound
	}
	return nil
}

func toBookModel(b *book.Book) *BookModel {
	return &BookModel{
		ID:            b.ID,
		ISBN:          b.ISBN,
		Title:         b.Title,
		Author:        b.Author,
		Publisher:     b.Publisher,
		OriginalPrice: b.OriginalPrice,
		DiscountPrice: b.DiscountPrice,
		Stock:         b.Stock,
		Sold:          b.Sold,
		CoverURL:      b.CoverURL,
		Description:   b.Description,
		PublisherID:   b.PublisherID,
		IsDeleted:     b.IsDeleted,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func toBookEntity(m *BookModel) *book.Book {
	return &book.Book{
		ID:            m.ID,
		ISBN:          m.ISBN,
		Title:         m.Title,
		Author:        m.Author,
		Publisher:     m.Publisher,
		OriginalPrice: m.OriginalPrice,
		DiscountPrice: m.DiscountPrice,
		Stock:         m.Stock,
		Sold:          m.Sold,
		CoverURL:      m.CoverURL,
		Description:   m.Description,
		PublisherID:   m.PublisherID,
		IsDeleted:     m.IsDeleted,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
