package postgres

import (
	"context"
	"errors"
	"fmt"

	"search-service/internal/contextkeys"
	"search-service/internal/core/domain"
	"search-service/internal/core/port"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FavoritesRepository - избранное в таблице user_favorites.
type FavoritesRepository struct {
	pool *pgxpool.Pool
}

func NewFavoritesRepository(pool *pgxpool.Pool) (*FavoritesRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &FavoritesRepository{pool: pool}, nil
}

func (r *FavoritesRepository) Add(ctx context.Context, userID, propertyID uuid.UUID) error {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":   "PostgresFavoritesRepository",
		"method":      "Add",
		"user_id":     userID.String(),
		"property_id": propertyID.String(),
	})

	query := `INSERT INTO user_favorites (user_id, property_id) VALUES ($1, $2)`
	if _, err := r.pool.Exec(ctx, query, userID, propertyID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			repoLogger.Debug("Favorite already exists", nil)
			return nil
		}
		repoLogger.Error("Failed to add favorite", err, port.Fields{"query": query})
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

func (r *FavoritesRepository) Remove(ctx context.Context, userID, propertyID uuid.UUID) error {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component":   "PostgresFavoritesRepository",
		"method":      "Remove",
		"user_id":     userID.String(),
		"property_id": propertyID.String(),
	})

	query := `DELETE FROM user_favorites WHERE user_id = $1 AND property_id = $2`
	cmdTag, err := r.pool.Exec(ctx, query, userID, propertyID)
	if err != nil {
		repoLogger.Error("Failed to remove favorite", err, port.Fields{"query": query})
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		repoLogger.Debug("Favorite did not exist", nil)
	}
	return nil
}

func (r *FavoritesRepository) Contains(ctx context.Context, userID, propertyID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_favorites WHERE user_id = $1 AND property_id = $2)`,
		userID, propertyID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return exists, nil
}

// FindPaginatedByUser - id избранного, новые первыми.
func (r *FavoritesRepository) FindPaginatedByUser(ctx context.Context, userID uuid.UUID, limit, offset int) (*domain.PaginatedFavoriteIDs, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "PostgresFavoritesRepository",
		"method":    "FindPaginatedByUser",
		"user_id":   userID.String(),
		"limit":     limit,
		"offset":    offset,
	})

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var totalCount int64
	countQuery := "SELECT COUNT(*) FROM user_favorites WHERE user_id = $1"
	if err := tx.QueryRow(ctx, countQuery, userID).Scan(&totalCount); err != nil {
		repoLogger.Error("Failed to count favorites", err, port.Fields{"query": countQuery})
		return nil, fmt.Errorf("failed to count favorites: %w", err)
	}
	if totalCount == 0 {
		return &domain.PaginatedFavoriteIDs{PropertyIDs: []uuid.UUID{}}, nil
	}

	dataQuery := `SELECT property_id FROM user_favorites WHERE user_id = $1
		ORDER BY created_at DESC, property_id ASC LIMIT $2 OFFSET $3`
	rows, err := tx.Query(ctx, dataQuery, userID, limit, offset)
	if err != nil {
		repoLogger.Error("Failed to query favorite IDs", err, port.Fields{"query": dataQuery})
		return nil, fmt.Errorf("failed to query favorite IDs: %w", err)
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0, limit)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan favorite ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during favorite IDs iteration: %w", err)
	}
	rows.Close()

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &domain.PaginatedFavoriteIDs{PropertyIDs: ids, TotalCount: int(totalCount)}, nil
}
