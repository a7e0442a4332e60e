package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hotel-booking/internal/data/entity"
	"hotel-booking/pkg/apperror"
	"hotel-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const (
	RoomSortPriceAsc   = "price_asc"
	RoomSortPriceDesc  = "price_desc"
	RoomSortRoomNumber = "room_number"
)

type RoomFilter struct {
	Status     *entity.RoomStatus
	RoomType   string
	Search     string
	Sort       string
	ExcludeIDs []uuid.UUID
}

type RoomRepository interface {
	Create(ctx context.Context, room *entity.Room) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Room, error)
	FindByNumber(ctx context.Context, roomNumber string) (*entity.Room, error)
	FindAll(ctx context.Context, filter RoomFilter, limit, offset int) ([]*entity.Room, error)
	CountAll(ctx context.Context, filter RoomFilter) (int64, error)
	CountByStatus(ctx context.Context) (map[entity.RoomStatus]int64, error)
	Update(ctx context.Context, room *entity.Room) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type roomRepository struct {
	db  database.DBTX
	log *zap.Logger
}

func NewRoomRepository(db database.DBTX, log *zap.Logger) RoomRepository {
	return &roomRepository{
		db:  db,
		log: log.With(zap.String("repository", "room")),
	}
}

const roomColumns = `id, room_number, name, room_type, price, capacity, status, amenities,
	description, images, owner_notes, created_at, updated_at`

func scanRoom(row pgx.Row) (*entity.Room, error) {
	var room entity.Room
	err := row.Scan(
		&room.ID,
		&room.RoomNumber,
		&room.Name,
		&room.RoomType,
		&room.Price,
		&room.Capacity,
		&room.Status,
		&room.Amenities,
		&room.Description,
		&room.Images,
		&room.OwnerNotes,
		&room.CreatedAt,
		&room.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *roomRepository) Create(ctx context.Context, room *entity.Room) error {
	query := `
		INSERT INTO rooms (id, room_number, name, room_type, price, capacity, status, amenities,
			description, images, owner_notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.Exec(ctx, query,
		room.ID,
		room.RoomNumber,
		room.Name,
		room.RoomType,
		room.Price,
		room.Capacity,
		string(room.Status),
		nonNilStrings(room.Amenities),
		room.Description,
		nonNilStrings(room.Images),
		room.OwnerNotes,
		room.CreatedAt,
		room.UpdatedAt,
	)
	if err != nil {
		err = translateError(err, room.ID)
		if !errors.Is(err, apperror.ErrDuplicateKey) {
			r.log.Error("Failed to create room", zap.Error(err), zap.String("room_number", room.RoomNumber))
		}
		return fmt.Errorf("create room %s: %w", room.RoomNumber, err)
	}

	return nil
}

func (r *roomRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`

	room, err := scanRoom(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("room %s: %w", id, apperror.ErrNotFound)
	}
	if err != nil {
		r.log.Error("Failed to find room by ID", zap.Error(err), zap.String("room_id", id.String()))
		return nil, fmt.Errorf("find room by ID %s: %w", id, err)
	}

	return room, nil
}

func (r *roomRepository) FindByNumber(ctx context.Context, roomNumber string) (*entity.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE room_number = $1`

	room, err := scanRoom(r.db.QueryRow(ctx, query, roomNumber))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("room %s: %w", roomNumber, apperror.ErrNotFound)
	}
	if err != nil {
		r.log.Error("Failed to find room by number", zap.Error(err), zap.String("room_number", roomNumber))
		return nil, fmt.Errorf("find room by number %s: %w", roomNumber, err)
	}

	return room, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchPattern wraps text in a LIKE pattern that matches it as a literal
// substring. Backslash is the escape character.
func SearchPattern(text string) string {
	return "%" + likeEscaper.Replace(text) + "%"
}

// roomWhere renders filter as a WHERE clause starting at placeholder $1.
func roomWhere(filter RoomFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.RoomType != "" {
		args = append(args, filter.RoomType)
		conds = append(conds, fmt.Sprintf("room_type = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, SearchPattern(filter.Search))
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			`(name ILIKE $%[1]d ESCAPE '\' OR COALESCE(description, '') ILIKE $%[1]d ESCAPE '\' OR array_to_string(amenities, E'\n') ILIKE $%[1]d ESCAPE '\')`, n))
	}
	if len(filter.ExcludeIDs) > 0 {
		ids := make([]string, len(filter.ExcludeIDs))
		for i, id := range filter.ExcludeIDs {
			ids[i] = id.String()
		}
		args = append(args, ids)
		conds = append(conds, fmt.Sprintf("NOT (id = ANY($%d::uuid[]))", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func roomOrder(sort string) string {
	switch sort {
	case RoomSortPriceDesc:
		return " ORDER BY price DESC, room_number ASC"
	case RoomSortRoomNumber:
		return " ORDER BY room_number ASC"
	default:
		return " ORDER BY price ASC, room_number ASC"
	}
}

func (r *roomRepository) FindAll(ctx context.Context, filter RoomFilter, limit, offset int) ([]*entity.Room, error) {
	where, args := roomWhere(filter)
	query := `SELECT ` + roomColumns + ` FROM rooms` + where + roomOrder(filter.Sort)
	if limit > 0 {
		args = append(args, limit, offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list rooms", zap.Error(err), zap.Int("limit", limit), zap.Int("offset", offset))
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*entity.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			r.log.Error("Failed to scan room row", zap.Error(err))
			return nil, fmt.Errorf("scan room row: %w", err)
		}
		rooms = append(rooms, room)
	}

	return rooms, rows.Err()
}

func (r *roomRepository) CountAll(ctx context.Context, filter RoomFilter) (int64, error) {
	where, args := roomWhere(filter)

	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM rooms`+where, args...).Scan(&count); err != nil {
		r.log.Error("Failed to count rooms", zap.Error(err))
		return 0, fmt.Errorf("count rooms: %w", err)
	}

	return count, nil
}

func (r *roomRepository) CountByStatus(ctx context.Context) (map[entity.RoomStatus]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM rooms GROUP BY status`)
	if err != nil {
		r.log.Error("Failed to count rooms by status", zap.Error(err))
		return nil, fmt.Errorf("count rooms by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[entity.RoomStatus]int64, len(entity.RoomStatuses))
	for _, status := range entity.RoomStatuses {
		counts[status] = 0
	}
	for rows.Next() {
		var (
			status string
			count  int64
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan room status count: %w", err)
		}
		counts[entity.RoomStatus(status)] = count
	}

	return counts, rows.Err()
}

func (r *roomRepository) Update(ctx context.Context, room *entity.Room) error {
	query := `
		UPDATE rooms
		SET room_number = $2, name = $3, room_type = $4, price = $5, capacity = $6, status = $7,
		    amenities = $8, description = $9, images = $10, owner_notes = $11, updated_at = $12
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		room.ID,
		room.RoomNumber,
		room.Name,
		room.RoomType,
		room.Price,
		room.Capacity,
		string(room.Status),
		nonNilStrings(room.Amenities),
		room.Description,
		nonNilStrings(room.Images),
		room.OwnerNotes,
		room.UpdatedAt,
	)
	if err != nil {
		err = translateError(err, room.ID)
		if !errors.Is(err, apperror.ErrDuplicateKey) {
			r.log.Error("Failed to update room", zap.Error(err), zap.String("room_id", room.ID.String()))
		}
		return fmt.Errorf("update room %s: %w", room.ID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("room %s: %w", room.ID, apperror.ErrNotFound)
	}

	return nil
}

func (r *roomRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete room", zap.Error(err), zap.String("room_id", id.String()))
		return fmt.Errorf("delete room %s: %w", id, translateError(err, id))
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("room %s: %w", id, apperror.ErrNotFound)
	}

	r.log.Info("Room deleted", zap.String("room_id", id.String()))
	return nil
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
