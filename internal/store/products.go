package store

import (
	"context"
	"strings"

	"storefront-service/internal/models"

	"github.com/jmoiron/sqlx"
)

const productColumns = `id, store_id, name, slug, description, price, quantity, image_url, status, created_at, updated_at`

// CreateProduct inserts a product
func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	now := s.now()
	query := s.db.Rebind(`
		INSERT INTO products (store_id, name, slug, description, price, quantity, image_url, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	if err := s.db.GetContext(ctx, &p.ID, query,
		p.StoreID, p.Name, p.Slug, p.Description, p.Price, p.Quantity, p.ImageURL, p.Status, now, now); err != nil {
		return classify(err)
	}
	p.CreatedAt, p.UpdatedAt = now, now
	return nil
}

// GetProductByID retrieves a product by ID
func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var p models.Product
	if err := getOne(ctx, s.db, &p, s.db.Rebind("SELECT "+productColumns+" FROM products WHERE id = ?"), id); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetOwnedProduct retrieves a product only if its store belongs to sellerID.
func (s *Store) GetOwnedProduct(ctx context.Context, id, sellerID int64) (*models.Product, error) {
	var p models.Product
	err := getOne(ctx, s.db, &p, s.db.Rebind(`
		SELECT p.id, p.store_id, p.name, p.slug, p.description, p.price, p.quantity, p.image_url, p.status, p.created_at, p.updated_at
		FROM products p
		JOIN stores st ON st.id = p.store_id
		WHERE p.id = ? AND st.seller_id = ?`), id, sellerID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ProductSlugTaken reports whether another product of the store uses slug.
func (s *Store) ProductSlugTaken(ctx context.Context, storeID int64, slug string, excludeID int64) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		s.db.Rebind("SELECT EXISTS(SELECT 1 FROM products WHERE store_id = ? AND slug = ? AND id <> ?)"),
		storeID, slug, excludeID)
	return exists, err
}

// GetProductsByStore lists every product of a store, newest first
func (s *Store) GetProductsByStore(ctx context.Context, storeID int64) ([]models.Product, error) {
	products := []models.Product{}
	err := s.db.SelectContext(ctx, &products,
		s.db.Rebind("SELECT "+productColumns+" FROM products WHERE store_id = ? ORDER BY created_at DESC, id DESC"), storeID)
	return products, err
}

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// ProductFilter narrows a product listing. A Limit of zero or less
// returns every match.
type ProductFilter struct {
	StoreID    int64
	ActiveOnly bool
	Search     string
	Limit      int
	Offset     int
}

// ListProducts returns matching products, newest first, and the unpaged
// total.
func (s *Store) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, int64, error) {
	where := []string{"store_id = ?"}
	args := []interface{}{f.StoreID}
	if f.ActiveOnly {
		where = append(where, "status = ?")
		args = append(args, models.ProductActive)
	}
	if f.Search != "" {
		where = append(where, `LOWER(name) LIKE ? ESCAPE '\'`)
		args = append(args, "%"+likeEscaper.Replace(strings.ToLower(f.Search))+"%")
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := s.db.GetContext(ctx, &total, s.db.Rebind("SELECT COUNT(*) FROM products WHERE "+cond), args...); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + productColumns + " FROM products WHERE " + cond + " ORDER BY created_at DESC, id DESC"
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	products := []models.Product{}
	if err := s.db.SelectContext(ctx, &products, s.db.Rebind(query), args...); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// GetProductsByIDs retrieves multiple products by IDs
func (s *Store) GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	query, args, err := sqlx.In("SELECT "+productColumns+" FROM products WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var products []models.Product
	err = s.db.SelectContext(ctx, &products, query, args...)
	return products, err
}

// UpdateProduct persists the mutable product fields
func (s *Store) UpdateProduct(ctx context.Context, p *models.Product) error {
	now := s.now()
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE products
		SET name = ?, slug = ?, description = ?, price = ?, quantity = ?, image_url = ?, status = ?, updated_at = ?
		WHERE id = ?`),
		p.Name, p.Slug, p.Description, p.Price, p.Quantity, p.ImageURL, p.Status, now, p.ID)
	if err != nil {
		return classify(err)
	}
	p.UpdatedAt = now
	return nil
}

// DeleteProduct deletes a product. Products referenced by order items
// cannot be deleted and yield ErrForeignKey.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM products WHERE id = ?"), id)
	if err != nil {
		return classify(err)
	}
	return expectAffected(res)
}
