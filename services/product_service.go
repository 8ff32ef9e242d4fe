package services

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"fulltechlicense/models"
	"fulltechlicense/utils"
)

const productColumns = `id, name, slug, status, current_version, offline_request_verify_key, created_at, updated_at`

// ProductService registro mínimo de productos: altas y lecturas. Los
// protocolos de activación referencian productos por id.
type ProductService interface {
	Create(ctx context.Context, req models.CreateProductRequest) (models.Product, error)
	FindByID(ctx context.Context, id string) (models.Product, error)
	FindBySlug(ctx context.Context, slug string) (models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
}

type productService struct {
	db SQLExecutor
}

// NewProductService crea el servicio de productos.
func NewProductService(db SQLExecutor) ProductService {
	return &productService{db: db}
}

func scanProduct(row rowScanner) (models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Status, &p.CurrentVersion,
		&p.OfflineRequestVerifyKey, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (s *productService) Create(ctx context.Context, req models.CreateProductRequest) (models.Product, error) {
	if req.Name == "" || req.Slug == "" {
		return models.Product{}, NewServiceError(http.StatusBadRequest, models.AttemptError,
			"Producto inválido", "name y slug son obligatorios")
	}

	now := utils.FormatDBTime(utils.NowUTC())
	p := models.Product{
		ID:                      utils.NewID(),
		Name:                    req.Name,
		Slug:                    strings.ToUpper(req.Slug),
		Status:                  models.ProductStatusPublished,
		CurrentVersion:          req.CurrentVersion,
		OfflineRequestVerifyKey: req.OfflineRequestVerifyKey,
		CreatedAt:               now,
		UpdatedAt:               now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO products (`+productColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Slug, p.Status, p.CurrentVersion, p.OfflineRequestVerifyKey, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return models.Product{}, err
	}
	return p, nil
}

func (s *productService) FindByID(ctx context.Context, id string) (models.Product, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, ErrProductInvalid
	}
	return p, err
}

func (s *productService) FindBySlug(ctx context.Context, slug string) (models.Product, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE slug = ?`, strings.ToUpper(slug))
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, ErrProductInvalid
	}
	return p, err
}

func (s *productService) List(ctx context.Context) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]models.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
