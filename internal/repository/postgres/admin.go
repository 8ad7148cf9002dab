package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/bbabur/immune-risk-next-sub001/internal/model"
	"github.com/bbabur/immune-risk-next-sub001/internal/repository"
)

const tableRowsLimit = 100

type adminRepository struct {
	db *sqlx.DB
}

func NewAdminRepository(db *sqlx.DB) repository.AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) ListTables(ctx context.Context) ([]string, error) {
	query := `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`
	tables := []string{}
	if err := r.db.SelectContext(ctx, &tables, query); err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return tables, nil
}

func (r *adminRepository) TableSizes(ctx context.Context) ([]*model.TableSize, error) {
	query := `
		SELECT
			tablename AS table_name,
			pg_size_pretty(pg_total_relation_size(quote_ident(tablename)::regclass)) AS total_size,
			pg_size_pretty(pg_relation_size(quote_ident(tablename)::regclass)) AS data_size,
			pg_size_pretty(pg_indexes_size(quote_ident(tablename)::regclass)) AS index_size
		FROM pg_tables
		WHERE schemaname = 'public'
		ORDER BY pg_total_relation_size(quote_ident(tablename)::regclass) DESC
	`
	sizes := []*model.TableSize{}
	if err := r.db.SelectContext(ctx, &sizes, query); err != nil {
		return nil, fmt.Errorf("failed to get table sizes: %w", err)
	}
	return sizes, nil
}

func (r *adminRepository) IndexUsage(ctx context.Context) ([]*model.IndexUsage, error) {
	query := `
		SELECT
			relname AS table_name,
			indexrelname AS index_name,
			idx_scan AS idx_scans,
			pg_size_pretty(pg_relation_size(indexrelid)) AS idx_size
		FROM pg_stat_user_indexes
		ORDER BY idx_scan ASC
	`
	usage := []*model.IndexUsage{}
	if err := r.db.SelectContext(ctx, &usage, query); err != nil {
		return nil, fmt.Errorf("failed to get index usage: %w", err)
	}
	return usage, nil
}

// RowCount counts rows in a single table. Callers must validate the table
// name against ListTables before passing it in; the identifier is still
// quoted here so an unexpected value cannot change the statement shape.
func (r *adminRepository) RowCount(ctx context.Context, table string) (int64, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, pq.QuoteIdentifier(table))
	var count int64
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}
	return count, nil
}

func (r *adminRepository) Sessions(ctx context.Context) ([]*model.SessionInfo, error) {
	query := `
		SELECT
			pid,
			usename AS username,
			client_addr::text AS client_addr,
			state,
			LEFT(query, 200) AS query,
			backend_start,
			wait_event_type
		FROM pg_stat_activity
		WHERE datname = current_database()
		ORDER BY backend_start
	`
	sessions := []*model.SessionInfo{}
	if err := r.db.SelectContext(ctx, &sessions, query); err != nil {
		return nil, fmt.Errorf("failed to get sessions: %w", err)
	}
	return sessions, nil
}

// RunQuery executes an arbitrary statement and maps the rows to generic
// records. The statement denylist lives in the admin service; this layer
// only executes what it is handed.
func (r *adminRepository) RunQuery(ctx context.Context, query string) (*model.QueryResult, error) {
	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()
	return collectRows(rows)
}

func (r *adminRepository) TableRows(ctx context.Context, table string) (*model.QueryResult, error) {
	query := fmt.Sprintf(`SELECT * FROM %s LIMIT %d`, pq.QuoteIdentifier(table), tableRowsLimit)
	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from %s: %w", table, err)
	}
	defer rows.Close()
	return collectRows(rows)
}

func collectRows(rows *sqlx.Rows) (*model.QueryResult, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	result := &model.QueryResult{Columns: columns, Rows: []map[string]interface{}{}}
	for rows.Next() {
		record := map[string]interface{}{}
		if err := rows.MapScan(record); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for key, value := range record {
			if raw, ok := value.([]byte); ok {
				record[key] = string(raw)
			}
		}
		result.Rows = append(result.Rows, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}
	result.Count = len(result.Rows)
	return result, nil
}
