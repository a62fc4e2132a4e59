// Package importer loads catalog CSV files: products (one row per product,
// optional continuation rows carrying extra images) and categories.
package importer

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/logger"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

type Kind string

const (
	KindProducts   Kind = "products"
	KindCategories Kind = "categories"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type CategoryWriter interface {
	Upsert(ctx context.Context, c domain.Category) (*domain.Category, error)
	AssignProduct(ctx context.Context, productID, categoryID int64) error
}

// DetectKind peeks at the header line. Products carry a sku column,
// categories a parent column.
func DetectKind(r io.Reader) (Kind, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read header: %w", err)
	}
	headers, err := csv.NewReader(strings.NewReader(line)).Read()
	if err != nil {
		return "", fmt.Errorf("parse header: %w", err)
	}
	idx := headerIndex(headers)
	if _, ok := idx["sku"]; ok {
		return KindProducts, nil
	}
	if _, ok := idx["parent"]; ok {
		return KindCategories, nil
	}
	return "", fmt.Errorf("unrecognized header %v", headers)
}

// CSVImporter upserts rows through the repositories. Malformed rows are
// skipped and reported together; repository failures stop the run.
type CSVImporter struct {
	reader     *csv.Reader
	products   ProductWriter
	categories CategoryWriter
	logger     *zerolog.Logger
	// category name to id, filled as categories are upserted
	categoryIDs map[string]int64
}

func NewCSVImporter(r io.Reader, products ProductWriter, categories CategoryWriter, log *zerolog.Logger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:      csvr,
		products:    products,
		categories:  categories,
		logger:      logger.OrNop(log),
		categoryIDs: make(map[string]int64),
	}
}

type productRow struct {
	product    domain.Product
	categories []string
	images     []string
}

// Run imports the file as kind and returns the number of saved records.
func (i *CSVImporter) Run(ctx context.Context, kind Kind) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	switch kind {
	case KindProducts:
		if i.products == nil {
			return 0, errors.New("product import needs a product writer")
		}
		return i.runProducts(ctx, index)
	case KindCategories:
		if i.categories == nil {
			return 0, errors.New("category import needs a category writer")
		}
		return i.runCategories(ctx, index)
	}
	return 0, fmt.Errorf("unknown import kind %q", kind)
}

func (i *CSVImporter) runProducts(ctx context.Context, index map[string]int) (int, error) {
	var (
		current  *productRow
		imported int
		rowErrs  error
		line     = 1
	)
	flush := func() error {
		if current == nil {
			return nil
		}
		if err := i.saveProduct(ctx, current); err != nil {
			return err
		}
		imported++
		return nil
	}

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return imported, fmt.Errorf("read row %d: %w", line, err)
		}

		key := pick(record, index, "key")
		image := pick(record, index, "image_url")
		if key == "" {
			// Continuation rows (images) belong to the current product.
			if current != nil && image != "" {
				current.images = append(current.images, image)
			}
			continue
		}

		if err := flush(); err != nil {
			return imported, err
		}
		current = nil
		row, err := parseProductRow(record, index, line)
		if err != nil {
			rowErrs = multierr.Append(rowErrs, err)
			continue
		}
		current = row
	}
	if err := flush(); err != nil {
		return imported, err
	}
	if rowErrs != nil {
		i.logger.Warn().Int("skipped", len(multierr.Errors(rowErrs))).Msg("importer: rows skipped")
	}
	return imported, rowErrs
}

func (i *CSVImporter) saveProduct(ctx context.Context, row *productRow) error {
	p := row.product
	if len(row.images) > 0 {
		if p.PictureURL == "" {
			p.PictureURL = row.images[0]
		}
		p.Attributes["images"] = row.images
	}
	saved, err := i.products.Upsert(ctx, p)
	if err != nil {
		return fmt.Errorf("upsert product %q: %w", p.Key, err)
	}
	for _, name := range row.categories {
		if i.categories == nil {
			break
		}
		id, err := i.categoryID(ctx, name)
		if err != nil {
			return err
		}
		if err := i.categories.AssignProduct(ctx, saved.ID, id); err != nil {
			return fmt.Errorf("assign product %q to %q: %w", p.Key, name, err)
		}
	}
	i.logger.Debug().Str("key", p.Key).Int64("product_id", saved.ID).Msg("importer: product saved")
	return nil
}

// categoryID returns the id of a root category, creating it when unknown.
func (i *CSVImporter) categoryID(ctx context.Context, name string) (int64, error) {
	if id, ok := i.categoryIDs[strings.ToLower(name)]; ok {
		return id, nil
	}
	c, err := i.categories.Upsert(ctx, domain.Category{Name: name, Published: true})
	if err != nil {
		return 0, fmt.Errorf("upsert category %q: %w", name, err)
	}
	i.categoryIDs[strings.ToLower(name)] = c.ID
	return c.ID, nil
}

type categoryRow struct {
	line     int
	category domain.Category
	parent   string
}

func (i *CSVImporter) runCategories(ctx context.Context, index map[string]int) (int, error) {
	var (
		pending []categoryRow
		rowErrs error
		line    = 1
	)
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return 0, fmt.Errorf("read row %d: %w", line, err)
		}
		name := pick(record, index, "name")
		if name == "" {
			rowErrs = multierr.Append(rowErrs, fmt.Errorf("row %d: name is required", line))
			continue
		}
		order, err := atoiOr(pick(record, index, "display_order"), 0)
		if err != nil {
			rowErrs = multierr.Append(rowErrs, fmt.Errorf("row %d: display_order: %w", line, err))
			continue
		}
		pending = append(pending, categoryRow{
			line:   line,
			parent: pick(record, index, "parent"),
			category: domain.Category{
				Name:         name,
				Description:  pick(record, index, "description"),
				PictureURL:   pick(record, index, "picture_url"),
				DisplayOrder: order,
				Published:    true,
			},
		})
	}

	// Parents may appear after their children; keep passing over the
	// pending rows until nothing more resolves.
	imported := 0
	for len(pending) > 0 {
		var next []categoryRow
		for _, row := range pending {
			c := row.category
			if row.parent != "" {
				pid, ok := i.categoryIDs[strings.ToLower(row.parent)]
				if !ok {
					next = append(next, row)
					continue
				}
				c.ParentID = &pid
			}
			saved, err := i.categories.Upsert(ctx, c)
			if err != nil {
				return imported, fmt.Errorf("upsert category %q: %w", c.Name, err)
			}
			i.categoryIDs[strings.ToLower(c.Name)] = saved.ID
			imported++
		}
		if len(next) == len(pending) {
			for _, row := range next {
				rowErrs = multierr.Append(rowErrs, fmt.Errorf("row %d: unknown parent %q", row.line, row.parent))
			}
			break
		}
		pending = next
	}
	return imported, rowErrs
}

func parseProductRow(record []string, index map[string]int, line int) (*productRow, error) {
	p := domain.Product{
		Key:              pick(record, index, "key"),
		SKU:              pick(record, index, "sku"),
		Name:             pick(record, index, "name"),
		ShortDescription: pick(record, index, "short_description"),
		FullDescription:  pick(record, index, "full_description"),
		Currency:         strings.ToUpper(pick(record, index, "currency")),
		PictureURL:       pick(record, index, "picture_url"),
		Published:        true,
		Attributes:       map[string]interface{}{},
	}
	if p.SKU == "" || p.Name == "" {
		return nil, fmt.Errorf("row %d (%s): sku and name are required", line, p.Key)
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}

	price, err := decimal.NewFromString(pick(record, index, "price"))
	if err != nil || !price.IsPositive() {
		return nil, fmt.Errorf("row %d (%s): price must be a positive amount", line, p.Key)
	}
	p.PriceCents = price.Shift(2).Round(0).IntPart()

	if p.Stock, err = atoiOr(pick(record, index, "stock"), 0); err != nil || p.Stock < 0 {
		return nil, fmt.Errorf("row %d (%s): stock must be a non-negative integer", line, p.Key)
	}
	if v := pick(record, index, "published"); v != "" {
		if p.Published, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("row %d (%s): published: %w", line, p.Key, err)
		}
	}
	if v := pick(record, index, "homepage"); v != "" {
		if p.ShowOnHomepage, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("row %d (%s): homepage: %w", line, p.Key, err)
		}
	}

	row := &productRow{product: p}
	for _, name := range strings.Split(pick(record, index, "categories"), ";") {
		if name = strings.TrimSpace(name); name != "" {
			row.categories = append(row.categories, name)
		}
	}
	if image := pick(record, index, "image_url"); image != "" {
		row.images = append(row.images, image)
	}
	return row, nil
}

func atoiOr(v string, fallback int) (int, error) {
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
