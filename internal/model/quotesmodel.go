package model

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/sqlc"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

var ErrNotFound = sqlx.ErrNotFound

var (
	_ QuotesModel = (*customQuotesModel)(nil)
	_ QuotesModel = (*plainQuotesModel)(nil)
)

type (
	// QuotesModel is an interface to be customized, add more methods here,
	// and implement the added methods in customQuotesModel.
	QuotesModel interface {
		FindOne(ctx context.Context, feed, name string) (*Quote, error)
		FindValue(ctx context.Context, feed, name string) (float64, error)
		Insert(ctx context.Context, q *Quote) (sql.Result, error)
		Update(ctx context.Context, q *Quote) error
	}

	customQuotesModel struct {
		conn  sqlc.CachedConn
		table string
	}

	// Quote is one observed market value keyed by feed and observable name.
	Quote struct {
		Id        int64   `db:"id"`
		Feed      string  `db:"feed"`
		Name      string  `db:"name"` // e.g. FX:EUR/USD or BOND:GB:1Y
		Value     float64 `db:"value"`
		AsOf      string  `db:"as_of"` // YYYY-MM-DD
		UpdatedAt string  `db:"updated_at"`
	}
)

// NewQuotesModel returns a model for the quotes table.
func NewQuotesModel(conn sqlx.SqlConn, c cache.CacheConf, opts ...cache.Option) QuotesModel {
	return &customQuotesModel{
		conn:  sqlc.NewConn(conn, c, opts...),
		table: "quotes",
	}
}

func quoteCacheKey(feed, name string) string {
	return fmt.Sprintf("cache:quotes:%s:%s", feed, name)
}

// plainQuotesModel runs the same queries without a cache layer, for
// deployments with Postgres but no Redis.
type plainQuotesModel struct {
	conn  sqlx.SqlConn
	table string
}

// NewQuotesModelNoCache returns a cache-less model for the quotes table.
func NewQuotesModelNoCache(conn sqlx.SqlConn) QuotesModel {
	return &plainQuotesModel{conn: conn, table: "quotes"}
}

func (m *plainQuotesModel) FindOne(ctx context.Context, feed, name string) (*Quote, error) {
	var q Quote
	query := fmt.Sprintf("SELECT id, feed, name, value, as_of, updated_at FROM %s WHERE feed = $1 AND name = $2 ORDER BY as_of DESC LIMIT 1", m.table)
	switch err := m.conn.QueryRowCtx(ctx, &q, query, feed, name); err {
	case nil:
		return &q, nil
	case sqlx.ErrNotFound:
		return nil, ErrNotFound
	default:
		return nil, err
	}
}

func (m *plainQuotesModel) FindValue(ctx context.Context, feed, name string) (float64, error) {
	q, err := m.FindOne(ctx, feed, name)
	if err != nil {
		return 0, err
	}
	return q.Value, nil
}

func (m *plainQuotesModel) Insert(ctx context.Context, q *Quote) (sql.Result, error) {
	query := fmt.Sprintf("INSERT INTO %s (feed, name, value, as_of) VALUES ($1, $2, $3, $4)", m.table)
	return m.conn.ExecCtx(ctx, query, q.Feed, q.Name, q.Value, q.AsOf)
}

func (m *plainQuotesModel) Update(ctx context.Context, q *Quote) error {
	query := fmt.Sprintf("UPDATE %s SET value = $1, as_of = $2, updated_at = now() WHERE feed = $3 AND name = $4", m.table)
	_, err := m.conn.ExecCtx(ctx, query, q.Value, q.AsOf, q.Feed, q.Name)
	return err
}

func (m *customQuotesModel) FindOne(ctx context.Context, feed, name string) (*Quote, error) {
	key := quoteCacheKey(feed, name)
	var q Quote
	err := m.conn.QueryRowCtx(ctx, &q, key, func(ctx context.Context, conn sqlx.SqlConn, v any) error {
		query := fmt.Sprintf("SELECT id, feed, name, value, as_of, updated_at FROM %s WHERE feed = $1 AND name = $2 ORDER BY as_of DESC LIMIT 1", m.table)
		return conn.QueryRowCtx(ctx, v, query, feed, name)
	})
	switch err {
	case nil:
		return &q, nil
	case sqlc.ErrNotFound:
		return nil, ErrNotFound
	default:
		return nil, err
	}
}

// FindValue returns only the observed value, the common read path for the
// market data source.
func (m *customQuotesModel) FindValue(ctx context.Context, feed, name string) (float64, error) {
	q, err := m.FindOne(ctx, feed, name)
	if err != nil {
		return 0, err
	}
	return q.Value, nil
}

func (m *customQuotesModel) Insert(ctx context.Context, q *Quote) (sql.Result, error) {
	key := quoteCacheKey(q.Feed, q.Name)
	return m.conn.ExecCtx(ctx, func(ctx context.Context, conn sqlx.SqlConn) (sql.Result, error) {
		query := fmt.Sprintf("INSERT INTO %s (feed, name, value, as_of) VALUES ($1, $2, $3, $4)", m.table)
		return conn.ExecCtx(ctx, query, q.Feed, q.Name, q.Value, q.AsOf)
	}, key)
}

func (m *customQuotesModel) Update(ctx context.Context, q *Quote) error {
	key := quoteCacheKey(q.Feed, q.Name)
	_, err := m.conn.ExecCtx(ctx, func(ctx context.Context, conn sqlx.SqlConn) (sql.Result, error) {
		query := fmt.Sprintf("UPDATE %s SET value = $1, as_of = $2, updated_at = now() WHERE feed = $3 AND name = $4", m.table)
		return conn.ExecCtx(ctx, query, q.Value, q.AsOf, q.Feed, q.Name)
	}, key)
	return err
}
