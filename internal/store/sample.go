package store

import (
	"context"
	_ "embed"
	"fmt"
	"strconv"
	"strings"
)

//go:embed sample.sql
var sampleSchemaSQL string

// SampleRows is the number of rows SeedSample inserts.
const SampleRows = 10

// SampleRow returns the values of sample row i: ("d{i}d1", "d{i}d2", "d{i}d3").
func SampleRow(i int) [3]string {
	return [3]string{
		fmt.Sprintf("d%dd1", i),
		fmt.Sprintf("d%dd2", i),
		fmt.Sprintf("d%dd3", i),
	}
}

// SeedSample creates the sample data(id, d1, d2, d3) table and fills it with
// rows d0..d9. Existing rows are left alone, so seeding twice is a no-op.
func (s *Store) SeedSample(ctx context.Context) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, sampleSchemaSQL); err != nil {
		return 0, fmt.Errorf("create sample table: %w", err)
	}

	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM data").Scan(&count); err != nil {
		return 0, fmt.Errorf("count sample rows: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	insert := "INSERT INTO data (id, d1, d2, d3) VALUES (" + s.placeholders(4) + ")"
	for i := 0; i < SampleRows; i++ {
		row := SampleRow(i)
		if _, err := tx.ExecContext(ctx, insert, i+1, row[0], row[1], row[2]); err != nil {
			return 0, fmt.Errorf("insert sample row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed: %w", err)
	}
	return SampleRows, nil
}

// placeholders returns n comma-separated placeholders for the store's driver.
func (s *Store) placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		if s.driver == DriverPostgres {
			parts[i] = "$" + strconv.Itoa(i+1)
		} else {
			parts[i] = "?"
		}
	}
	return strings.Join(parts, ", ")
}
