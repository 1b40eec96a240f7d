package warehouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// Percentiles are the precomputed per-athlete percentile metrics. They are
// derived upstream in the warehouse; this client only reads them.
type Percentiles struct {
	Ts    float64
	Usage float64
	Def   float64
	Ast   float64
}

// Client provides ClickHouse integration for percentile metrics
type Client struct {
	conn driver.Conn
}

// NewClient creates a new ClickHouse client
func NewClient(addr, database, username, password string) (*Client, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: database,
			Username: username,
			Password: password,
		},
	})

	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &Client{conn: conn}, nil
}

// GetPercentiles retrieves the latest percentile metrics for one athlete
func (c *Client) GetPercentiles(athleteID string) (Percentiles, error) {
	var p Percentiles

	query := `
		SELECT
			argMax(ts_pctile, computed_at),
			argMax(usage_pctile, computed_at),
			argMax(def_pctile, computed_at),
			argMax(ast_pctile, computed_at)
		FROM athlete_percentiles
		WHERE athlete_id = $1
	`

	row := c.conn.QueryRow(context.Background(), query, athleteID)
	if err := row.Scan(&p.Ts, &p.Usage, &p.Def, &p.Ast); err != nil {
		return Percentiles{}, err
	}

	return p, nil
}

// GetAllPercentiles retrieves the latest percentile metrics for every athlete
func (c *Client) GetAllPercentiles() (map[string]Percentiles, error) {
	metrics := make(map[string]Percentiles)

	query := `
		SELECT
			athlete_id,
			argMax(ts_pctile, computed_at),
			argMax(usage_pctile, computed_at),
			argMax(def_pctile, computed_at),
			argMax(ast_pctile, computed_at)
		FROM athlete_percentiles
		GROUP BY athlete_id
	`

	rows, err := c.conn.Query(context.Background(), query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var p Percentiles
		if err := rows.Scan(&id, &p.Ts, &p.Usage, &p.Def, &p.Ast); err != nil {
			return nil, err
		}
		metrics[id] = p
	}

	return metrics, nil
}

// SyncPercentiles pushes refreshed metrics into the catalog via the callback.
// Called periodically to keep the catalog's percentile fields current.
func (c *Client) SyncPercentiles(apply func(athleteID string, p Percentiles) error) error {
	all, err := c.GetAllPercentiles()
	if err != nil {
		return err
	}

	for athleteID, p := range all {
		if err := apply(athleteID, p); err != nil {
			return fmt.Errorf("failed to apply percentiles for %s: %w", athleteID, err)
		}
	}

	return nil
}

// Close closes the ClickHouse connection
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
