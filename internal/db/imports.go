package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const latestImportSQL = `
SELECT db_name
FROM public.timetable_imports
WHERE succeeded AND db_name ILIKE '%' || $1 || '%'
ORDER BY imported_at DESC
LIMIT 1`

// ResolveLatestImportDBName names the database holding the most recent
// successful timetable import for region. The registry table
// public.timetable_imports lives on the cluster's meta database.
func ResolveLatestImportDBName(ctx context.Context, meta *sql.DB, region string) (string, error) {
	region = strings.TrimSpace(region)
	if region == "" {
		return "", errors.New("timetable region is empty")
	}
	var dbName sql.NullString
	err := meta.QueryRowContext(ctx, latestImportSQL, region).Scan(&dbName)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", fmt.Errorf("region %q has no successful timetable import", region)
	case err != nil:
		return "", fmt.Errorf("query timetable imports: %w", err)
	case !dbName.Valid || strings.TrimSpace(dbName.String) == "":
		return "", fmt.Errorf("timetable import for region %q has no database name", region)
	}
	return dbName.String, nil
}
