package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"search-service/internal/contextkeys"
	"search-service/internal/core/domain"
	"search-service/internal/core/port"
	"search-service/internal/core/search"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const propertyColumns = `p.id, p.title, p.description, p.property_type, p.listing_type, p.status,
	p.price, p.area, p.bedrooms, p.bathrooms, p.parking_spaces, p.year_built,
	p.has_elevator, p.has_balcony, p.has_storage, p.is_featured,
	p.city, p.district, p.address, p.latitude, p.longitude, p.geohash,
	p.amenities, p.views, p.created_at, p.updated_at`

// PropertyRepository - реализация PropertyStoragePort для PostgreSQL.
type PropertyRepository struct {
	pool *pgxpool.Pool
}

func NewPropertyRepository(pool *pgxpool.Pool) (*PropertyRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PropertyRepository{pool: pool}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProperty(row rowScanner) (domain.Property, error) {
	var (
		p                         domain.Property
		propertyType, listingType string
		status                    string
		yearBuilt                 *int32
	)
	if err := row.Scan(
		&p.ID, &p.Title, &p.Description, &propertyType, &listingType, &status,
		&p.Price, &p.Area, &p.Bedrooms, &p.Bathrooms, &p.ParkingSpaces, &yearBuilt,
		&p.HasElevator, &p.HasBalcony, &p.HasStorage, &p.IsFeatured,
		&p.City, &p.District, &p.Address, &p.Latitude, &p.Longitude, &p.Geohash,
		&p.Amenities, &p.Views, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return domain.Property{}, err
	}
	p.PropertyType = domain.PropertyType(propertyType)
	p.ListingType = domain.ListingType(listingType)
	p.Status = domain.PropertyStatus(status)
	if yearBuilt != nil {
		y := int(*yearBuilt)
		p.YearBuilt = &y
	}
	return p, nil
}

func collectProperties(rows pgx.Rows, capacity int) ([]domain.Property, error) {
	defer rows.Close()

	out := make([]domain.Property, 0, capacity)
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during properties iteration: %w", err)
	}
	return out, nil
}

// Search выполняет COUNT и выборку страницы в одной транзакции.
func (r *PropertyRepository) Search(ctx context.Context, plan search.Plan) (*domain.SearchResult, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":  "PostgresPropertyRepository",
		"method":     "Search",
		"predicates": len(plan.Predicates),
		"page":       plan.Page.Page,
		"limit":      plan.Page.Limit,
	})

	whereClause, args, err := applyPlan(plan)
	if err != nil {
		repoLogger.Error("Failed to render search plan", err, nil)
		return nil, fmt.Errorf("failed to render search plan: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM properties p %s", whereClause)
	var totalCount int64
	if err := tx.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		repoLogger.Error("Failed to count properties", err, port.Fields{"query": countQuery})
		return nil, fmt.Errorf("failed to count properties: %w", err)
	}

	if totalCount == 0 || plan.Page.Offset() >= int(totalCount) {
		result := domain.NewSearchResult(nil, int(totalCount), plan.Page.Page, plan.Page.Limit)
		return &result, nil
	}

	dataQuery := fmt.Sprintf("SELECT %s FROM properties p %s %s LIMIT $%d OFFSET $%d",
		propertyColumns, whereClause, orderClause(plan.Sort), len(args)+1, len(args)+2)
	dataArgs := append(append([]interface{}{}, args...), plan.Page.Limit, plan.Page.Offset())

	rows, err := tx.Query(ctx, dataQuery, dataArgs...)
	if err != nil {
		repoLogger.Error("Failed to query properties", err, port.Fields{"query": dataQuery})
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	properties, err := collectProperties(rows, plan.Page.Limit)
	if err != nil {
		repoLogger.Error("Failed to read properties", err, nil)
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	repoLogger.Debug("Search completed", port.Fields{"total": totalCount, "returned": len(properties)})
	result := domain.NewSearchResult(properties, int(totalCount), plan.Page.Page, plan.Page.Limit)
	return &result, nil
}

func (r *PropertyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	query := fmt.Sprintf("SELECT %s FROM properties p WHERE p.id = $1", propertyColumns)
	p, err := scanProperty(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPropertyNotFound
		}
		contextkeys.LoggerFromContext(ctx).Error("Failed to get property", err, port.Fields{
			"component":   "PostgresPropertyRepository",
			"property_id": id.String(),
		})
		return nil, fmt.Errorf("failed to get property %s: %w", id, err)
	}
	return &p, nil
}

func (r *PropertyRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Property, error) {
	if len(ids) == 0 {
		return []domain.Property{}, nil
	}
	query := fmt.Sprintf("SELECT %s FROM properties p WHERE p.id = ANY($1)", propertyColumns)
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get properties by ids: %w", err)
	}
	return collectProperties(rows, len(ids))
}

func (r *PropertyRepository) Create(ctx context.Context, p domain.Property) error {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":   "PostgresPropertyRepository",
		"method":      "Create",
		"property_id": p.ID.String(),
	})

	query := `INSERT INTO properties (
		id, title, description, property_type, listing_type, status,
		price, area, bedrooms, bathrooms, parking_spaces, year_built,
		has_elevator, has_balcony, has_storage, is_featured,
		city, district, address, latitude, longitude, geohash,
		amenities, views, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
		$17, $18, $19, $20, $21, $22, $23, $24, $25, $26)`

	amenities := p.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	_, err := r.pool.Exec(ctx, query,
		p.ID, p.Title, p.Description, string(p.PropertyType), string(p.ListingType), string(p.Status),
		p.Price, p.Area, p.Bedrooms, p.Bathrooms, p.ParkingSpaces, p.YearBuilt,
		p.HasElevator, p.HasBalcony, p.HasStorage, p.IsFeatured,
		p.City, p.District, p.Address, p.Latitude, p.Longitude, p.Geohash,
		amenities, p.Views, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return fmt.Errorf("create property %s: %w", p.ID, domain.ErrPropertyAlreadyExists)
		}
		repoLogger.Error("Failed to insert property", err, nil)
		return fmt.Errorf("failed to insert property: %w", err)
	}

	repoLogger.Debug("Property inserted", nil)
	return nil
}

// UpdateStatus проверяет терминальный статус в том же UPDATE,
// поэтому конкурентный переход в sold/rented не перезаписывается.
func (r *PropertyRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PropertyStatus, updatedAt time.Time) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE properties SET status = $2, updated_at = $3
		 WHERE id = $1 AND (status NOT IN ($4, $5) OR status = $2)`,
		id, string(status), updatedAt, string(domain.StatusSold), string(domain.StatusRented),
	)
	if err != nil {
		return fmt.Errorf("failed to update property status: %w", err)
	}
	if cmdTag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM properties WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check property existence: %w", err)
	}
	if !exists {
		return domain.ErrPropertyNotFound
	}
	return fmt.Errorf("%w: property %s is already closed", domain.ErrInvalidStatusTransition, id)
}

// IncrementViews увеличивает счетчик и пишет в property_views в одной транзакции.
func (r *PropertyRepository) IncrementViews(ctx context.Context, view domain.PropertyView) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var views int64
	err = tx.QueryRow(ctx,
		`UPDATE properties SET views = views + 1 WHERE id = $1 RETURNING views`,
		view.PropertyID,
	).Scan(&views)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrPropertyNotFound
		}
		return 0, fmt.Errorf("failed to increment views: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO property_views (property_id, user_id, ip_address, user_agent, viewed_at) VALUES ($1, $2, $3, $4, $5)`,
		view.PropertyID, view.UserID, view.IPAddress, view.UserAgent, view.ViewedAt,
	); err != nil {
		return 0, fmt.Errorf("failed to record view: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return views, nil
}

// GetSuggestions - города, затем районы. Имя, которое является и городом,
// и районом, выдается один раз.
func (r *PropertyRepository) GetSuggestions(ctx context.Context, query string, limit int) ([]string, error) {
	sql := `
		SELECT name FROM (
			SELECT city AS name, 0 AS kind FROM properties
			WHERE status = 'active' AND city <> '' AND city ILIKE $1
			UNION ALL
			SELECT district AS name, 1 AS kind FROM properties
			WHERE status = 'active' AND district <> '' AND district ILIKE $1
		) s
		GROUP BY name
		ORDER BY MIN(kind), name
		LIMIT $2`

	rows, err := r.pool.Query(ctx, sql, likePattern(query), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query suggestions: %w", err)
	}
	return collectStrings(rows)
}

func (r *PropertyRepository) GetLocations(ctx context.Context) (*domain.Locations, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT city FROM properties WHERE status = 'active' AND city <> '' ORDER BY city`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cities: %w", err)
	}
	cities, err := collectStrings(rows)
	if err != nil {
		return nil, err
	}

	rows, err = r.pool.Query(ctx,
		`SELECT DISTINCT district FROM properties WHERE status = 'active' AND district <> '' ORDER BY district`)
	if err != nil {
		return nil, fmt.Errorf("failed to query districts: %w", err)
	}
	districts, err := collectStrings(rows)
	if err != nil {
		return nil, err
	}

	return &domain.Locations{Cities: cities, Districts: districts}, nil
}

func (r *PropertyRepository) GetAmenities(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a FROM properties, unnest(amenities) AS a
		WHERE status = 'active'
		GROUP BY a
		ORDER BY COUNT(*) DESC, a ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query amenities: %w", err)
	}
	return collectStrings(rows)
}

func (r *PropertyRepository) FindSimilar(ctx context.Context, c domain.SimilarCriteria) ([]domain.Property, error) {
	query := fmt.Sprintf(`SELECT %s FROM properties p
		WHERE p.status = 'active' AND p.id <> $1 AND p.property_type = $2 AND p.city = $3
			AND p.price BETWEEN $4 AND $5
		ORDER BY ABS(p.price - $6), p.created_at ASC, p.id ASC
		LIMIT $7`, propertyColumns)

	rows, err := r.pool.Query(ctx, query,
		c.ExcludeID, string(c.PropertyType), c.City, c.PriceMin, c.PriceMax, c.TargetPrice, c.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query similar properties: %w", err)
	}
	return collectProperties(rows, c.Limit)
}

func (r *PropertyRepository) FindInCells(ctx context.Context, cells []string) ([]domain.Property, error) {
	query := fmt.Sprintf(`SELECT %s FROM properties p
		WHERE p.status = 'active' AND p.latitude IS NOT NULL AND p.longitude IS NOT NULL`, propertyColumns)
	args := []interface{}{}
	if len(cells) > 0 {
		patterns := make([]string, 0, len(cells))
		for _, cell := range cells {
			patterns = append(patterns, cell+"%")
		}
		query += " AND p.geohash LIKE ANY($1)"
		args = append(args, patterns)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties in cells: %w", err)
	}
	return collectProperties(rows, 0)
}

func collectStrings(rows pgx.Rows) ([]string, error) {
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return out, nil
}
