package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"airbnb-monitor/models"
	"airbnb-monitor/utils"
)

// PostgresStore keeps the seen-set in a PostgreSQL table, for deployments
// where a flat file is awkward (no durable volume). It stores exactly the
// seen identifiers plus a first-seen timestamp, nothing richer.
type PostgresStore struct {
	db     *sql.DB
	logger *utils.Logger
}

// NewPostgresStore opens a connection, runs the schema migration, and returns
// a ready-to-use store.
func NewPostgresStore(dsn string, logger *utils.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	ps := &PostgresStore{db: db, logger: logger}
	if err := ps.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return ps, nil
}

func (ps *PostgresStore) migrate() error {
	_, err := ps.db.Exec(`
		CREATE TABLE IF NOT EXISTS seen_listings (
			listing_id TEXT        PRIMARY KEY,
			first_seen TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	return err
}

// Load reads all seen identifiers. Any query failure degrades to an empty set
// with the cause logged.
func (ps *PostgresStore) Load() *models.SeenSet {
	rows, err := ps.db.Query(`SELECT listing_id FROM seen_listings`)
	if err != nil {
		ps.logger.Error("[store] Postgres load failed: %v — starting with empty set", err)
		return models.NewSeenSet()
	}
	defer rows.Close()

	set := models.NewSeenSet()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			ps.logger.Error("[store] Postgres scan failed: %v — starting with empty set", err)
			return models.NewSeenSet()
		}
		set.Add(id)
	}
	if err := rows.Err(); err != nil {
		ps.logger.Error("[store] Postgres row iteration failed: %v — starting with empty set", err)
		return models.NewSeenSet()
	}

	ps.logger.Info("[store] Loaded %d previously seen listings from postgres", set.Len())
	return set
}

// Save batch-upserts every identifier in the set. Identifiers already present
// keep their original first_seen timestamp.
func (ps *PostgresStore) Save(set *models.SeenSet) error {
	ids := set.IDs()
	if len(ids) == 0 {
		return nil
	}

	const batchSize = 50
	for i := 0; i < len(ids); i += batchSize {
		end := i + batchSize
		if end > len(ids) {
			end = len(ids)
		}
		if err := ps.insertBatch(ids[i:end]); err != nil {
			return err
		}
	}

	ps.logger.Info("[store] Saved %d seen listings to postgres", len(ids))
	return nil
}

func (ps *PostgresStore) insertBatch(batch []string) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch))

	for idx, id := range batch {
		valueStrings = append(valueStrings, fmt.Sprintf("($%d)", idx+1))
		valueArgs = append(valueArgs, id)
	}

	query := fmt.Sprintf(`
		INSERT INTO seen_listings (listing_id)
		VALUES %s
		ON CONFLICT (listing_id) DO NOTHING
	`, strings.Join(valueStrings, ","))

	if _, err := ps.db.Exec(query, valueArgs...); err != nil {
		return fmt.Errorf("postgres: insert batch: %w", err)
	}
	return nil
}

// Close releases the database connection.
func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
