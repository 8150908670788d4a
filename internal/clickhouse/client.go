package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/Billy-Davies-2/draft-assistant/internal/logger"
	"github.com/Billy-Davies-2/draft-assistant/internal/models"
)

// Client reads player projections from ClickHouse
type Client struct {
	conn driver.Conn
}

// Options configures the connection
type Options struct {
	Addr     string
	Database string
	Username string
	Password string
}

// NewClient creates a new ClickHouse client
func NewClient(opts Options) (*Client, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{opts.Addr},
		Auth: clickhouse.Auth{
			Database: opts.Database,
			Username: opts.Username,
			Password: opts.Password,
		},
		DialTimeout: 10 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &Client{conn: conn}, nil
}

// projectionsQuery takes the latest row per player
const projectionsQuery = `
	SELECT
		player_id,
		argMax(projected_points, updated_at) AS projected_points,
		argMax(adp, updated_at) AS adp,
		argMax(floor, updated_at) AS floor,
		argMax(ceiling, updated_at) AS ceiling,
		argMax(injury_status, updated_at) AS injury_status
	FROM player_projections
	GROUP BY player_id
	ORDER BY player_id
`

// FetchProjections returns the latest projection of every player
func (c *Client) FetchProjections(ctx context.Context) ([]models.ProjectionUpdate, error) {
	rows, err := c.conn.Query(ctx, projectionsQuery)
	if err != nil {
		return nil, fmt.Errorf("query projections: %w", err)
	}
	defer rows.Close()

	var updates []models.ProjectionUpdate
	for rows.Next() {
		var (
			id                  string
			points, adp, lo, hi float64
			injury              string
		)
		if err := rows.Scan(&id, &points, &adp, &lo, &hi, &injury); err != nil {
			return nil, fmt.Errorf("scan projection: %w", err)
		}

		u := models.ProjectionUpdate{PlayerID: id, ProjectedPoints: points, ADP: &adp, Floor: &lo, Ceiling: &hi}
		if status, err := models.ParseInjuryStatus(injury); err == nil {
			u.InjuryStatus = &status
		} else {
			logger.Warn("Ignoring unknown injury status from ClickHouse", "player_id", id, "injury_status", injury)
		}
		updates = append(updates, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	logger.Debug("Fetched projections from ClickHouse", "count", len(updates))
	return updates, nil
}

// Close closes the ClickHouse connection
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Ping checks the connection
func (c *Client) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}
