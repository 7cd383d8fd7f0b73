package repo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lib/pq"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/cache"
	"gopkg.in/yaml.v3"

	appcache "riskgrid/internal/cache"
	"riskgrid/internal/model"
	"riskgrid/pkg/marketdata"
)

// ErrDuplicateQuote reports an insert that collided with an existing
// (feed, name, as_of) row.
var ErrDuplicateQuote = errors.New("repo: duplicate quote")

// QuoteRepo sources observable values from Postgres with a Redis cache in
// front, falling back to a file-loaded static source for values the database
// does not hold. It implements marketdata.ObservableSource.
type QuoteRepo struct {
	quotes   model.QuotesModel
	cache    cache.Cache
	fallback *marketdata.StaticSource
	ttls     appcache.TTLSet
}

func NewQuoteRepo(quotes model.QuotesModel, c cache.Cache, fallback *marketdata.StaticSource, ttls appcache.TTLSet) *QuoteRepo {
	return &QuoteRepo{quotes: quotes, cache: c, fallback: fallback, ttls: ttls}
}

// Lookup implements marketdata.ObservableSource. Values absent from cache,
// database and fallback are simply omitted; the build layer turns omissions
// into per-key failures.
func (r *QuoteRepo) Lookup(ctx context.Context, ids []marketdata.ID) (map[marketdata.ID]float64, error) {
	out := make(map[marketdata.ID]float64, len(ids))
	var missing []marketdata.ID
	for _, id := range ids {
		name := id.Key.Name()
		if v, ok := r.getCached(ctx, string(id.Feed), name); ok {
			out[id] = v
			continue
		}
		v, err := r.quotes.FindValue(ctx, string(id.Feed), name)
		switch {
		case err == nil:
			out[id] = v
			r.setCached(ctx, string(id.Feed), name, v)
		case errors.Is(err, model.ErrNotFound):
			missing = append(missing, id)
		default:
			return nil, fmt.Errorf("repo: lookup %s: %w", name, err)
		}
	}
	if len(missing) > 0 && r.fallback != nil {
		fromFile, err := r.fallback.Lookup(ctx, missing)
		if err != nil {
			return nil, err
		}
		for id, v := range fromFile {
			out[id] = v
		}
	}
	return out, nil
}

// SaveQuote inserts one observed value, translating the Postgres unique
// violation into ErrDuplicateQuote.
func (r *QuoteRepo) SaveQuote(ctx context.Context, q *model.Quote) error {
	if _, err := r.quotes.Insert(ctx, q); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("%w: %s/%s", ErrDuplicateQuote, q.Feed, q.Name)
		}
		return err
	}
	r.setCached(ctx, q.Feed, q.Name, q.Value)
	return nil
}

func (r *QuoteRepo) getCached(ctx context.Context, feed, name string) (float64, bool) {
	if r.cache == nil {
		return 0, false
	}
	var v float64
	if err := r.cache.GetCtx(ctx, appcache.QuoteKey(feed, name), &v); err != nil {
		if !r.cache.IsNotFound(err) {
			logx.WithContext(ctx).Errorf("get cache %s: %v", name, err)
		}
		return 0, false
	}
	return v, true
}

func (r *QuoteRepo) setCached(ctx context.Context, feed, name string, v float64) {
	if r.cache == nil {
		return
	}
	ttl := appcache.QuoteTTL(r.ttls)
	if ttl <= 0 {
		return
	}
	if err := r.cache.SetWithExpireCtx(ctx, appcache.QuoteKey(feed, name), v, ttl); err != nil {
		logx.WithContext(ctx).Errorf("set cache %s: %v", name, err)
	}
}

// LoadFileSource reads a YAML map of observable name to value from the data
// directory, used as the Postgres fallback and as the whole source when no
// database is configured.
func LoadFileSource(dataPath string) (*marketdata.StaticSource, error) {
	path := filepath.Join(dataPath, "quotes.yaml")
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return marketdata.NewStaticSource(nil), nil
		}
		return nil, fmt.Errorf("repo: read %s: %w", path, err)
	}
	var values map[string]float64
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("repo: parse %s: %w", path, err)
	}
	return marketdata.NewStaticSource(values), nil
}
