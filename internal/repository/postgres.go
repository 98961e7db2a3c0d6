package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/model"
)

// ErrNotFound is returned when a car or search log does not exist.
var ErrNotFound = errors.New("not found")

//go:embed schema.sql
var schemaSQL string

const carColumns = `
	id, number, brand, model, description, images, price, rating,
	seats, drive, country, doors, body_type, engine_type, fuel_consumption,
	clearance, horsepower, transmission, start_year, end_year,
	summary, pros, cons, created_at, updated_at`

// Filterable columns by document field name
var (
	rangeColumns = map[string]string{
		"start_year":       "start_year",
		"end_year":         "end_year",
		"price":            "price",
		"fuel_consumption": "fuel_consumption",
		"seats":            "seats",
		"doors":            "doors",
		"horsepower":       "horsepower",
		"clearance":        "clearance",
	}
	keywordColumns = map[string]string{
		"brand":        "brand",
		"country":      "country",
		"drive":        "drive",
		"engine_type":  "engine_type",
		"body_type":    "body_type",
		"transmission": "transmission",
	}
)

// PostgresRepository is the car store backed by PostgreSQL and pgvector
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// EnsureSchema creates the pgvector extension and tables if missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// SearchCars runs a bool query against the cars table. With an embedding
// the results are ordered by cosine distance to it; without one by rating.
func (r *PostgresRepository) SearchCars(ctx context.Context, q model.BoolQuery, embedding []float32, limit int) ([]model.CarSearchResult, error) {
	query, args, err := buildSearchQuery(q, embedding, limit)
	if err != nil {
		return nil, err
	}

	var cars []model.CarSearchResult
	if err := r.db.SelectContext(ctx, &cars, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search cars: %w", err)
	}
	return cars, nil
}

// buildSearchQuery translates a bool query into SQL. Range bounds at the
// floor or ceiling sentinels are skipped, so unknown attributes only
// exclude a car when the user actually constrained that field. Empty
// should groups match everything.
func buildSearchQuery(q model.BoolQuery, embedding []float32, limit int) (string, []any, error) {
	whereClauses := []string{"1=1"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	for _, c := range q.Must {
		switch {
		case c.Range != nil:
			col, ok := rangeColumns[c.Range.Field]
			if !ok {
				return "", nil, fmt.Errorf("unknown range field %q", c.Range.Field)
			}
			if c.Range.Gte != nil && *c.Range.Gte > model.RangeFloor {
				whereClauses = append(whereClauses, fmt.Sprintf("%s >= %s", col, arg(*c.Range.Gte)))
			}
			if c.Range.Lte != nil && *c.Range.Lte < model.RangeCeiling {
				whereClauses = append(whereClauses, fmt.Sprintf("%s <= %s", col, arg(*c.Range.Lte)))
			}
		case c.Should != nil:
			if len(c.Should.Matches) == 0 {
				continue
			}
			col, ok := keywordColumns[c.Should.Field]
			if !ok {
				return "", nil, fmt.Errorf("unknown keyword field %q", c.Should.Field)
			}
			values := make([]string, 0, len(c.Should.Matches))
			for _, m := range c.Should.Matches {
				values = append(values, strings.ToLower(m.Query))
			}
			whereClauses = append(whereClauses, fmt.Sprintf("lower(%s) = ANY(%s)", col, arg(pq.Array(values))))
		}
	}

	similarity := "0::float8"
	orderBy := "rating DESC, price ASC"
	if len(embedding) > 0 {
		vec := arg(pgvector.NewVector(embedding))
		similarity = fmt.Sprintf("COALESCE(1 - (embedding <=> %s), 0)", vec)
		orderBy = fmt.Sprintf("embedding <=> %s ASC NULLS LAST, rating DESC", vec)
	}

	query := fmt.Sprintf(`
		SELECT %s,
			%s AS similarity
		FROM cars
		WHERE %s
		ORDER BY %s
		LIMIT %s
	`, carColumns, similarity, strings.Join(whereClauses, " AND "), orderBy, arg(limit))

	return query, args, nil
}

// GetCarByID retrieves a single car
func (r *PostgresRepository) GetCarByID(ctx context.Context, id string) (*model.Car, error) {
	var car model.Car
	query := fmt.Sprintf(`SELECT %s FROM cars WHERE id = $1`, carColumns)
	if err := r.db.GetContext(ctx, &car, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get car: %w", err)
	}
	return &car, nil
}

// UpsertCars inserts or replaces catalog entries in one transaction.
// A car without an embedding keeps the stored one.
func (r *PostgresRepository) UpsertCars(ctx context.Context, cars []model.Car) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO cars (
			id, number, brand, model, description, images, price, rating,
			seats, drive, country, doors, body_type, engine_type, fuel_consumption,
			clearance, horsepower, transmission, start_year, end_year,
			summary, pros, cons, embedding
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20,
			$21, $22, $23, $24
		)
		ON CONFLICT (id) DO UPDATE SET
			number = EXCLUDED.number,
			brand = EXCLUDED.brand,
			model = EXCLUDED.model,
			description = EXCLUDED.description,
			images = EXCLUDED.images,
			price = EXCLUDED.price,
			rating = EXCLUDED.rating,
			seats = EXCLUDED.seats,
			drive = EXCLUDED.drive,
			country = EXCLUDED.country,
			doors = EXCLUDED.doors,
			body_type = EXCLUDED.body_type,
			engine_type = EXCLUDED.engine_type,
			fuel_consumption = EXCLUDED.fuel_consumption,
			clearance = EXCLUDED.clearance,
			horsepower = EXCLUDED.horsepower,
			transmission = EXCLUDED.transmission,
			start_year = EXCLUDED.start_year,
			end_year = EXCLUDED.end_year,
			summary = EXCLUDED.summary,
			pros = EXCLUDED.pros,
			cons = EXCLUDED.cons,
			embedding = COALESCE(EXCLUDED.embedding, cars.embedding),
			updated_at = NOW()
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range cars {
		_, err := stmt.ExecContext(ctx,
			c.ID, c.Number, c.Brand, c.Model, c.Description, c.Images, c.Price, c.Rating,
			c.Seats, string(c.Drive), c.Country, c.Doors, c.BodyType, string(c.EngineType), c.FuelConsumption,
			c.Clearance, c.Horsepower, string(c.Transmission), c.StartYear, c.EndYear,
			c.Summary, c.Pros, c.Cons, embeddingArg(c.Embedding),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert car %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func embeddingArg(v pgvector.Vector) any {
	if len(v.Slice()) == 0 {
		return nil
	}
	return v
}

// BatchUpdateEmbeddings updates embeddings for multiple cars
func (r *PostgresRepository) BatchUpdateEmbeddings(ctx context.Context, items []model.EmbeddingItem) (int, []string) {
	success := 0
	var errs []string

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		errs = append(errs, fmt.Sprintf("failed to start transaction: %v", err))
		return success, errs
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `UPDATE cars SET embedding = $1, updated_at = NOW() WHERE id = $2`)
	if err != nil {
		errs = append(errs, fmt.Sprintf("failed to prepare statement: %v", err))
		return success, errs
	}
	defer stmt.Close()

	for _, item := range items {
		res, err := stmt.ExecContext(ctx, pgvector.NewVector(item.Embedding), item.CarID)
		if err != nil {
			errs = append(errs, fmt.Sprintf("car_id %s: %v", item.CarID, err))
			continue
		}
		if n, _ := res.RowsAffected(); n == 0 {
			errs = append(errs, fmt.Sprintf("car_id %s: %v", item.CarID, ErrNotFound))
			continue
		}
		success++
	}

	if err := tx.Commit(); err != nil {
		errs = append(errs, fmt.Sprintf("failed to commit transaction: %v", err))
		return 0, errs
	}

	return success, errs
}

// LogSearch records a result set shown to a user
func (r *PostgresRepository) LogSearch(ctx context.Context, entry model.SearchLog) error {
	filter, err := json.Marshal(entry.Filter)
	if err != nil {
		return fmt.Errorf("failed to encode filter: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO search_logs (search_id, conversation_id, query, filter, result_count, returned_car_ids, response_time_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, entry.SearchID, entry.ConversationID, entry.Query, string(filter), len(entry.ResultIDs), pq.Array(entry.ResultIDs), entry.ResponseTimeMs)
	if err != nil {
		return fmt.Errorf("failed to log search: %w", err)
	}
	return nil
}

// LogFeedback logs user feedback/action
func (r *PostgresRepository) LogFeedback(ctx context.Context, searchID, carID, action string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE search_logs
		SET clicked_car_id = $2, action = $3
		WHERE search_id = $1
	`, searchID, carID, action)
	if err != nil {
		return fmt.Errorf("failed to log feedback: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
