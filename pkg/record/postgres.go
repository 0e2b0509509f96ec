package record

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/scaffold/pkg/logger"
	"github.com/dmitrymomot/scaffold/pkg/query"
)

// DefaultTable is the table created by the db package migrations.
const DefaultTable = "records"

// dataColumn holds the JSONB document.
const dataColumn = "data"

// Querier is the subset of pgxpool.Pool and pgx.Tx used by Postgres.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres stores records of one collection as JSONB rows:
//
//	records(collection text, id uuid, data jsonb, created_at, updated_at)
//
// Predicates are translated with query.ToSQL. Sorting by a field orders by
// its text value.
type Postgres struct {
	db         Querier
	refs       map[string]Store
	logger     *slog.Logger
	builder    sq.StatementBuilderType
	collection string
	table      string
}

// PostgresOption configures a Postgres store.
type PostgresOption func(*Postgres)

// WithTable overrides the table name.
func WithTable(name string) PostgresOption {
	return func(p *Postgres) {
		if name != "" {
			p.table = name
		}
	}
}

// WithReference registers a reference field used for population.
func WithReference(ref Reference) PostgresOption {
	return func(p *Postgres) {
		if ref.Target != nil && ref.Field != "" {
			p.refs[ref.Field] = ref.Target
		}
	}
}

// WithLogger sets the logger for stream failures.
func WithLogger(l *slog.Logger) PostgresOption {
	return func(p *Postgres) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPostgres creates a store for collection backed by db.
func NewPostgres(db Querier, collection string, opts ...PostgresOption) *Postgres {
	p := &Postgres{
		db:         db,
		collection: collection,
		table:      DefaultTable,
		refs:       make(map[string]Store),
		logger:     logger.NewNope(),
		builder:    sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Postgres) Collection() string { return p.collection }

func (p *Postgres) FindByID(ctx context.Context, id string) (Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	sqlStr, args, err := p.builder.Select(dataColumn).From(p.table).
		Where(sq.Eq{"collection": p.collection, "id": id}).ToSql()
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}

	r, err := scanOne(p.db.QueryRow(ctx, sqlStr, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	return r, nil
}

func (p *Postgres) FindByIDAndPopulate(ctx context.Context, id string, fields []string) (Record, error) {
	r, err := p.FindByID(ctx, id)
	if err != nil || r == nil {
		return r, err
	}
	if err := populate(ctx, r, p.refs, fields); err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	return r, nil
}

func (p *Postgres) FindAll(ctx context.Context, pred query.Predicate) ([]Record, error) {
	return p.Fetch(ctx, FetchOptions{Predicate: pred})
}

func (p *Postgres) Count(ctx context.Context, pred query.Predicate) (int, error) {
	sqlStr, args, err := p.countQuery(pred)
	if err != nil {
		return 0, err
	}
	var n int
	if err := p.db.QueryRow(ctx, sqlStr, args...).Scan(&n); err != nil {
		return 0, errors.Join(ErrStoreFailure, err)
	}
	return n, nil
}

func (p *Postgres) Fetch(ctx context.Context, opts FetchOptions) ([]Record, error) {
	sqlStr, args, err := p.selectQuery(opts)
	if err != nil {
		return nil, err
	}
	rows, err := p.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Record, error) {
		return scanOne(row)
	})
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}

	if len(opts.Populate) > 0 {
		for _, r := range out {
			if err := populate(ctx, r, p.refs, opts.Populate); err != nil {
				return nil, errors.Join(ErrStoreFailure, err)
			}
		}
	}
	return out, nil
}

func (p *Postgres) Insert(ctx context.Context, data Record) (Record, error) {
	r := data.Clone()
	if r == nil {
		r = Record{}
	}
	id := r.ID()
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
		r[FieldID] = id
	}

	sqlStr, args, err := p.builder.Insert(p.table).
		Columns("collection", "id", dataColumn).
		Values(p.collection, id, map[string]any(r)).
		Suffix("RETURNING " + dataColumn).ToSql()
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}

	out, err := scanOne(p.db.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	return out, nil
}

func (p *Postgres) Save(ctx context.Context, r Record) (Record, error) {
	id := r.ID()
	if id == "" {
		return nil, ErrMissingID
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	sqlStr, args, err := p.builder.Update(p.table).
		Set(dataColumn, map[string]any(r)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"collection": p.collection, "id": id}).
		Suffix("RETURNING " + dataColumn).ToSql()
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}

	out, err := scanOne(p.db.QueryRow(ctx, sqlStr, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	return out, nil
}

func (p *Postgres) RemoveByID(ctx context.Context, id, actor string) (Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	sqlStr, args, err := p.builder.Delete(p.table).
		Where(sq.Eq{"collection": p.collection, "id": id}).
		Suffix("RETURNING " + dataColumn).ToSql()
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}

	r, err := scanOne(p.db.QueryRow(ctx, sqlStr, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	r[FieldLastModifiedBy] = actor
	return r, nil
}

// Stream reads matching rows through a single cursor.
func (p *Postgres) Stream(ctx context.Context, pred query.Predicate) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		sqlStr, args, err := p.selectQuery(FetchOptions{Predicate: pred})
		if err != nil {
			yield(nil, err)
			return
		}
		rows, err := p.db.Query(ctx, sqlStr, args...)
		if err != nil {
			yield(nil, errors.Join(ErrStoreFailure, err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			r, err := scanOne(rows)
			if err != nil {
				yield(nil, errors.Join(ErrStoreFailure, err))
				return
			}
			if !yield(r, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			p.logger.ErrorContext(ctx, "record stream failed",
				slog.String("collection", p.collection),
				slog.Any("error", err))
			yield(nil, errors.Join(ErrStoreFailure, err))
		}
	}
}

func (p *Postgres) where(pred query.Predicate) (sq.And, error) {
	cond, err := query.ToSQL(pred, dataColumn)
	if err != nil {
		return nil, err
	}
	return sq.And{sq.Eq{"collection": p.collection}, cond}, nil
}

func (p *Postgres) countQuery(pred query.Predicate) (string, []any, error) {
	where, err := p.where(pred)
	if err != nil {
		return "", nil, err
	}
	return p.builder.Select("count(*)").From(p.table).Where(where).ToSql()
}

func (p *Postgres) selectQuery(opts FetchOptions) (string, []any, error) {
	where, err := p.where(opts.Predicate)
	if err != nil {
		return "", nil, err
	}
	b := p.builder.Select(dataColumn).From(p.table).Where(where)

	if !opts.Sort.IsZero() {
		expr, err := query.FieldExpr(dataColumn, opts.Sort.Field)
		if err != nil {
			return "", nil, err
		}
		dir := "ASC"
		if opts.Sort.Desc() {
			dir = "DESC"
		}
		b = b.OrderBy(fmt.Sprintf("%s %s", expr, dir))
	}
	b = b.OrderBy("created_at ASC", "id ASC")

	if opts.Limit > 0 {
		b = b.Limit(uint64(opts.Limit))
	}
	if opts.Offset > 0 {
		b = b.Offset(uint64(opts.Offset))
	}
	return b.ToSql()
}

func scanOne(row pgx.Row) (Record, error) {
	var data map[string]any
	if err := row.Scan(&data); err != nil {
		return nil, err
	}
	return Record(data), nil
}
