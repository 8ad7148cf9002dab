package admin

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/bbabur/immune-risk-next-sub001/internal/model"
	"github.com/bbabur/immune-risk-next-sub001/internal/repository"
	apperrors "github.com/bbabur/immune-risk-next-sub001/pkg/errors"
)

// Statements containing any of these words are rejected regardless of the
// feature flag. The ad-hoc endpoint is read-only.
var forbiddenKeywords = []string{
	"insert", "update", "delete", "drop", "alter", "truncate",
	"create", "grant", "revoke", "vacuum", "copy",
}

// Service exposes database introspection for the admin screens. Ad-hoc
// queries are disabled unless the operator turns them on explicitly.
type Service struct {
	repo         repository.AdminRepository
	queryEnabled bool
}

func NewService(repo repository.AdminRepository, queryEnabled bool) *Service {
	return &Service{repo: repo, queryEnabled: queryEnabled}
}

func (s *Service) ListTables(ctx context.Context) ([]string, error) {
	return s.repo.ListTables(ctx)
}

func (s *Service) TableSizes(ctx context.Context) ([]*model.TableSize, error) {
	return s.repo.TableSizes(ctx)
}

func (s *Service) IndexUsage(ctx context.Context) ([]*model.IndexUsage, error) {
	return s.repo.IndexUsage(ctx)
}

func (s *Service) Sessions(ctx context.Context) ([]*model.SessionInfo, error) {
	return s.repo.Sessions(ctx)
}

// RowCounts counts every table concurrently. A failing table reports its
// error in place instead of failing the whole call.
func (s *Service) RowCounts(ctx context.Context) ([]*model.TableRowCount, error) {
	tables, err := s.repo.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	counts := make([]*model.TableRowCount, len(tables))
	var wg sync.WaitGroup
	for i, table := range tables {
		wg.Add(1)
		go func(i int, table string) {
			defer wg.Done()
			entry := &model.TableRowCount{TableName: table}
			count, err := s.repo.RowCount(ctx, table)
			if err != nil {
				entry.Error = err.Error()
			} else {
				entry.RowCount = count
			}
			counts[i] = entry
		}(i, table)
	}
	wg.Wait()
	return counts, nil
}

// TableRows returns a page of raw rows. The table name must match an actual
// table in the schema; anything else is rejected before touching SQL.
func (s *Service) TableRows(ctx context.Context, table string) (*model.QueryResult, error) {
	if err := s.validateTable(ctx, table); err != nil {
		return nil, err
	}
	return s.repo.TableRows(ctx, table)
}

// RunQuery executes a read-only ad-hoc statement. Requires the feature flag
// and rejects anything that is not a plain SELECT.
func (s *Service) RunQuery(ctx context.Context, query string) (*model.QueryResult, error) {
	if !s.queryEnabled {
		return nil, apperrors.Forbidden("ad-hoc queries are disabled", nil)
	}
	if err := validateQuery(query); err != nil {
		return nil, err
	}
	return s.repo.RunQuery(ctx, query)
}

func (s *Service) validateTable(ctx context.Context, table string) error {
	tables, err := s.repo.ListTables(ctx)
	if err != nil {
		return err
	}
	for _, t := range tables {
		if t == table {
			return nil
		}
	}
	return apperrors.NotFound("table", nil)
}

func validateQuery(query string) error {
	trimmed := strings.ToLower(strings.TrimSpace(query))
	if !strings.HasPrefix(trimmed, "select") && !strings.HasPrefix(trimmed, "with") {
		return apperrors.BadRequest("only SELECT statements are allowed", nil)
	}
	if strings.Contains(trimmed, ";") {
		return apperrors.BadRequest("multiple statements are not allowed", nil)
	}
	for _, word := range forbiddenKeywords {
		for _, token := range strings.FieldsFunc(trimmed, func(r rune) bool {
			return r == ' ' || r == '\t' || r == '\n' || r == '(' || r == ')' || r == ','
		}) {
			if token == word {
				return apperrors.BadRequest(fmt.Sprintf("statement contains forbidden keyword %q", word), nil)
			}
		}
	}
	return nil
}

// ExportCSV renders a query result as CSV with a header row.
func (s *Service) ExportCSV(result *model.QueryResult) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(result.Columns); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range result.Rows {
		record := make([]string, len(result.Columns))
		for i, col := range result.Columns {
			record[i] = stringify(row[col])
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportXLSX renders a query result as a single-sheet workbook.
func (s *Service) ExportXLSX(result *model.QueryResult) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, col := range result.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}
	for r, row := range result.Rows {
		for c, col := range result.Columns {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, stringify(row[col])); err != nil {
				return nil, fmt.Errorf("failed to write cell: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func stringify(value interface{}) string {
	if value == nil {
		return ""
	}
	return fmt.Sprintf("%v", value)
}
