// Package export streams a filtered product collection to a
// spreadsheet download.
package export

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/acme/catalog-admin/app/products"
	"github.com/acme/catalog-admin/models"
)

const (
	// Filename is the fixed download name.
	Filename = "products.xlsx"
	// ContentType is the xlsx media type.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	sheetName = "Sheet1"
	batchSize = 200
)

// ProductBatcher feeds filtered products in bounded batches so the
// whole result set never sits in memory at once.
type ProductBatcher interface {
	ForEachBatch(filters models.ProductFilters, batchSize int, fn func([]models.Product) error) error
}

type Exporter struct {
	repo ProductBatcher
}

func NewExporter(repo ProductBatcher) *Exporter {
	return &Exporter{
		repo: repo,
	}
}

// Write renders the filtered products as an xlsx workbook. Rows are
// ordered by ascending id, after the fixed header row.
func (e *Exporter) Write(w io.Writer, filters models.ProductFilters) error {
	file := excelize.NewFile()
	defer file.Close()

	sw, err := file.NewStreamWriter(sheetName)
	if err != nil {
		return err
	}

	header := []any{"ID", "Name", "Category", "Price", "Stock", "Enabled", "Created At"}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	row := 2
	err = e.repo.ForEachBatch(filters, batchSize, func(batch []models.Product) error {
		for _, p := range batch {
			enabled := 0
			if p.Enabled {
				enabled = 1
			}
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}
			values := []any{
				p.ID,
				p.Name,
				p.Category.Name,
				p.Price.StringFixed(2),
				p.Stock,
				enabled,
				p.CreatedAt.Format("2006-01-02 15:04:05"),
			}
			if err := sw.SetRow(cell, values); err != nil {
				return err
			}
			row++
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := sw.Flush(); err != nil {
		return err
	}
	return file.Write(w)
}

// HandleDownload serves the export as a file download. Only the
// category and enabled filters apply to exports.
func (e *Exporter) HandleDownload(c *gin.Context) {
	filters := products.ParseFilters(c)
	filters.Search = ""

	c.Header("Content-Type", ContentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", Filename))

	// Row batching happens before any byte reaches the client; the
	// workbook itself is only written once generation succeeded.
	if err := e.Write(c.Writer, filters); err != nil {
		if !c.Writer.Written() {
			c.Header("Content-Disposition", "")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export products"})
			return
		}
		c.Abort()
	}
}
