package models

import (
	"context"
	"errors"

	"github.com/mmdatafocus/ledger_backend/config"
	"github.com/mmdatafocus/ledger_backend/utils"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

type ProductRepository struct {
	db      *gorm.DB
	changes *ChangeRegistry[Product]
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db, changes: NewChangeRegistry[Product]()}
}

func (r *ProductRepository) Changes() *ChangeRegistry[Product] {
	return r.changes
}

func (r *ProductRepository) AddListener(l ModelChangedListener[Product]) {
	r.changes.AddListener(l)
}

func (r *ProductRepository) RemoveListener(l ModelChangedListener[Product]) {
	r.changes.RemoveListener(l)
}

func (r *ProductRepository) SelectAll(ctx context.Context) ([]Product, error) {
	cached, ok, err := utils.RetrieveRedisList[Product](ctx)
	if err != nil {
		config.LogError(config.GetLogger(), "Product", "SelectAll", "retrieve cache", nil, err)
	} else if ok {
		return cached, nil
	}

	var results []Product
	if err := r.db.WithContext(ctx).Order("id").Find(&results).Error; err != nil {
		return nil, err
	}
	if err := utils.StoreRedisList(ctx, results); err != nil {
		config.LogError(config.GetLogger(), "Product", "SelectAll", "store cache", nil, err)
	}
	return results, nil
}

func (r *ProductRepository) SelectById(ctx context.Context, id int64) (*Product, error) {
	var product Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrorRecordNotFound
	} else if err != nil {
		return nil, err
	}
	return &product, nil
}

// SelectByIds keeps the order of ids and skips ids with no row.
func (r *ProductRepository) SelectByIds(ctx context.Context, ids []int64) ([]Product, error) {
	results := []Product{}
	if len(ids) == 0 {
		return results, nil
	}
	var rows []Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	byId := make(map[int64]Product, len(rows))
	for _, p := range rows {
		byId[p.ID] = p
	}
	for _, id := range utils.UniqueSlice(ids) {
		if p, ok := byId[id]; ok {
			results = append(results, p)
		}
	}
	return results, nil
}

func (r *ProductRepository) Add(ctx context.Context, input *NewProduct) (result *Product, err error) {
	ctx, span := tracer.Start(ctx, "ProductRepository.Add")
	defer func() { endSpan(span, err) }()

	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	product := input.ToProduct(0)

	tx := r.db.Begin()
	err = tx.WithContext(ctx).Create(&product).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	err = tx.WithContext(ctx).Create(&ProductFts{RowId: product.ID, Name: utils.FtsNormalize(product.Name)}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err = tx.Commit().Error; err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("product.id", product.ID))

	r.invalidate(ctx)
	r.changes.NotifyAdded([]Product{product})
	return &product, nil
}

// Update leaves existing orders alone, they keep the name and price they were made with.
func (r *ProductRepository) Update(ctx context.Context, id int64, input *NewProduct) (result *Product, err error) {
	ctx, span := tracer.Start(ctx, "ProductRepository.Update", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer func() { endSpan(span, err) }()

	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	tx := r.db.Begin()
	res := tx.WithContext(ctx).Model(&Product{}).Where("id = ?", id).Updates(map[string]interface{}{
		"Name":  input.Name,
		"Price": input.Price,
	})
	if res.Error != nil {
		tx.Rollback()
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return nil, utils.ErrorRecordNotFound
	}
	if err = tx.WithContext(ctx).Where("rowid = ?", id).Delete(&ProductFts{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err = tx.WithContext(ctx).Create(&ProductFts{RowId: id, Name: utils.FtsNormalize(input.Name)}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err = tx.Commit().Error; err != nil {
		return nil, err
	}

	r.invalidate(ctx)
	product, err := r.SelectById(ctx, id)
	if err != nil {
		return nil, err
	}
	r.changes.NotifyUpdated([]Product{*product})
	return product, nil
}

// Delete nulls product_id on orders made from the product.
func (r *ProductRepository) Delete(ctx context.Context, id int64) (result *Product, err error) {
	ctx, span := tracer.Start(ctx, "ProductRepository.Delete", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer func() { endSpan(span, err) }()

	product, err := r.SelectById(ctx, id)
	if err != nil {
		return nil, err
	}

	tx := r.db.Begin()
	if err = tx.WithContext(ctx).Where("rowid = ?", id).Delete(&ProductFts{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	res := tx.WithContext(ctx).Delete(&Product{}, id)
	if res.Error != nil {
		tx.Rollback()
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return nil, utils.ErrorRecordNotFound
	}
	if err = tx.Commit().Error; err != nil {
		return nil, err
	}

	r.invalidate(ctx)
	_ = utils.RemoveRedisList[Queue](ctx)
	r.changes.NotifyDeleted([]Product{*product})
	return product, nil
}

// Search matches names through the product_fts shadow table.
func (r *ProductRepository) Search(ctx context.Context, query string) ([]Product, error) {
	results := []Product{}
	if utils.FtsNormalize(query) == "" {
		return results, nil
	}
	dbCtx := r.db.WithContext(ctx).
		Table("product").
		Select("product.*").
		Joins("JOIN product_fts ON product_fts.rowid = product.id")
	if utils.FtsIsShortQuery(query) {
		dbCtx = dbCtx.Where("product_fts.name LIKE ?", utils.FtsLikePattern(query))
	} else {
		dbCtx = dbCtx.Where("MATCH(product_fts.name) AGAINST (? IN BOOLEAN MODE)", utils.FtsPhrase(query))
	}
	err := dbCtx.Order("product.name").Limit(config.SearchLimit).Find(&results).Error
	return results, err
}

func (r *ProductRepository) invalidate(ctx context.Context) {
	if err := utils.RemoveRedisList[Product](ctx); err != nil {
		config.LogError(config.GetLogger(), "Product", "invalidate", "remove cache", nil, err)
	}
}
