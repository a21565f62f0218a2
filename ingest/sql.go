package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/bfp-analytics/go-firecast/timedataset"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	DefaultTable     = "historical_fires"
	DefaultStartYear = 2010
	DefaultEndYear   = 2024
)

var tablePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

const pgQuery = `SELECT barangay, TO_CHAR(resolved_at, 'YYYY-MM') AS date_period, COUNT(*) AS incident_count
FROM %s
WHERE resolved_at >= $1::date AND resolved_at < $2::date
  AND barangay IS NOT NULL AND barangay != ''
GROUP BY barangay, TO_CHAR(resolved_at, 'YYYY-MM')
ORDER BY barangay, date_period`

const mysqlQuery = `SELECT barangay, DATE_FORMAT(resolved_at, '%%Y-%%m') AS date_period, COUNT(*) AS incident_count
FROM %s
WHERE resolved_at >= ? AND resolved_at < ?
  AND barangay IS NOT NULL AND barangay != ''
GROUP BY barangay, date_period
ORDER BY barangay, date_period`

// Source loads monthly incident counts per area from a database of resolved incidents
type Source interface {
	Records(ctx context.Context, startYear, endYear int) ([]timedataset.Record, error)
	Close() error
}

// OpenSQL connects to the incident database. postgres:// and postgresql:// DSNs use a pgx pool,
// mysql:// and mariadb:// URLs and native MySQL DSNs use database/sql with the MySQL driver.
// An empty table name selects historical_fires.
func OpenSQL(ctx context.Context, dsn, table string) (Source, error) {
	if table == "" {
		table = DefaultTable
	}
	if !tablePattern.MatchString(table) {
		return nil, fmt.Errorf("%q, %w", table, ErrInvalidTable)
	}

	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("unable to create postgres pool, %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("unable to reach postgres, %w", err)
		}
		return &pgSource{pool: pool, table: table}, nil

	case strings.Contains(dsn, "://") && !isMySQLURL(dsn):
		return nil, fmt.Errorf("%q, %w", scheme(dsn), ErrUnsupportedDSN)
	}

	mysqlDSN, err := toMySQLDSN(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("mysql", mysqlDSN)
	if err != nil {
		return nil, fmt.Errorf("unable to open mysql, %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to reach mysql, %w", err)
	}
	return &mysqlSource{db: db, table: table}, nil
}

func isMySQLURL(dsn string) bool {
	return strings.HasPrefix(dsn, "mariadb://") || strings.HasPrefix(dsn, "mysql://")
}

func scheme(dsn string) string {
	if i := strings.Index(dsn, "://"); i >= 0 {
		return dsn[:i]
	}
	return ""
}

// toMySQLDSN converts mariadb:// and mysql:// URLs to the driver's native DSN. Anything else
// is passed through unchanged.
func toMySQLDSN(dsn string) (string, error) {
	if !isMySQLURL(dsn) {
		return dsn, nil
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("unable to parse dsn, %w", err)
	}
	var user, pass string
	if u.User != nil {
		user = u.User.Username()
		pass, _ = u.User.Password()
	}
	host := u.Host
	db := strings.TrimPrefix(u.Path, "/")
	if user == "" || host == "" || db == "" {
		return "", ErrIncompleteDSN
	}
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&interpolateParams=true",
		user, pass, host, db), nil
}

// yearRange returns the inclusive start and exclusive end dates covering whole years.
// Zero years select the defaults.
func yearRange(startYear, endYear int) (string, string, error) {
	if startYear == 0 {
		startYear = DefaultStartYear
	}
	if endYear == 0 {
		endYear = DefaultEndYear
	}
	if endYear < startYear {
		return "", "", fmt.Errorf("%d to %d, %w", startYear, endYear, ErrInvalidYearSpan)
	}
	return fmt.Sprintf("%04d-01-01", startYear), fmt.Sprintf("%04d-01-01", endYear+1), nil
}

type pgSource struct {
	pool  *pgxpool.Pool
	table string
}

func (s *pgSource) Records(ctx context.Context, startYear, endYear int) ([]timedataset.Record, error) {
	from, to, err := yearRange(startYear, endYear)
	if err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, fmt.Sprintf(pgQuery, s.table), from, to)
	if err != nil {
		return nil, fmt.Errorf("unable to query %s, %w", s.table, err)
	}
	defer rows.Close()

	var records []timedataset.Record
	for rows.Next() {
		var (
			area, period string
			count        int64
		)
		if err := rows.Scan(&area, &period, &count); err != nil {
			return nil, fmt.Errorf("unable to scan row, %w", err)
		}
		records = append(records, timedataset.Record{Area: area, Date: period, IncidentCount: float64(count)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unable to read rows, %w", err)
	}
	return records, nil
}

func (s *pgSource) Close() error {
	s.pool.Close()
	return nil
}

type mysqlSource struct {
	db    *sql.DB
	table string
}

func (s *mysqlSource) Records(ctx context.Context, startYear, endYear int) ([]timedataset.Record, error) {
	from, to, err := yearRange(startYear, endYear)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(mysqlQuery, s.table), from, to)
	if err != nil {
		return nil, fmt.Errorf("unable to query %s, %w", s.table, err)
	}
	defer rows.Close()

	var records []timedataset.Record
	for rows.Next() {
		var (
			area, period string
			count        int64
		)
		if err := rows.Scan(&area, &period, &count); err != nil {
			return nil, fmt.Errorf("unable to scan row, %w", err)
		}
		records = append(records, timedataset.Record{Area: area, Date: period, IncidentCount: float64(count)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unable to read rows, %w", err)
	}
	return records, nil
}

func (s *mysqlSource) Close() error {
	return s.db.Close()
}
