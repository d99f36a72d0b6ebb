package models

import (
	"context"
	"fmt"
	"log"

	"github.com/mmdatafocus/ledger_backend/config"
	"github.com/mmdatafocus/ledger_backend/utils"
	"gorm.io/gorm"
)

type ftsTable struct {
	table string
	index string
}

var ftsTables = []ftsTable{
	{table: "customer_fts", index: "ft_customer_fts_name"},
	{table: "product_fts", index: "ft_product_fts_name"},
}

func MigrateTable() {
	if err := Migrate(config.GetDB()); err != nil {
		log.Fatal(err)
	}
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&Customer{}, &CustomerFts{},
		&Product{}, &ProductFts{},
		&Queue{}, &ProductOrder{},
	)
	if err != nil {
		return err
	}
	for _, t := range ftsTables {
		if err := ensureFulltextIndex(db, t); err != nil {
			return err
		}
	}
	return nil
}

func ensureFulltextIndex(db *gorm.DB, t ftsTable) error {
	var count int64
	err := db.Raw(
		"SELECT COUNT(*) FROM information_schema.statistics WHERE table_schema = DATABASE() AND table_name = ? AND index_name = ?",
		t.table, t.index,
	).Scan(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return db.Exec(fmt.Sprintf("ALTER TABLE `%s` ADD FULLTEXT INDEX `%s` (`name`) WITH PARSER ngram", t.table, t.index)).Error
}

// RebuildFts rewrites every shadow row from its source table and returns
// how many rows were written.
func RebuildFts(ctx context.Context, db *gorm.DB) (int, error) {
	var written int
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&CustomerFts{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&ProductFts{}).Error; err != nil {
			return err
		}

		var customers []Customer
		if err := tx.Select("id", "name").Find(&customers).Error; err != nil {
			return err
		}
		customerRows := make([]CustomerFts, 0, len(customers))
		for _, c := range customers {
			customerRows = append(customerRows, CustomerFts{RowId: c.ID, Name: utils.FtsNormalize(c.Name)})
		}
		if len(customerRows) > 0 {
			if err := tx.CreateInBatches(customerRows, 500).Error; err != nil {
				return err
			}
		}

		var products []Product
		if err := tx.Select("id", "name").Find(&products).Error; err != nil {
			return err
		}
		productRows := make([]ProductFts, 0, len(products))
		for _, p := range products {
			productRows = append(productRows, ProductFts{RowId: p.ID, Name: utils.FtsNormalize(p.Name)})
		}
		if len(productRows) > 0 {
			if err := tx.CreateInBatches(productRows, 500).Error; err != nil {
				return err
			}
		}
		written = len(customerRows) + len(productRows)
		return nil
	})
	return written, err
}
