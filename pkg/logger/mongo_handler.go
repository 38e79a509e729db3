package logger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// DefaultLogCollection is the collection server logs are written to.
const DefaultLogCollection = "serverLogs"

// Inserter is the part of *mongo.Collection used by MongoHandler.
type Inserter interface {
	InsertOne(ctx context.Context, document any, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error)
}

// LogDocument is the stored shape of a log record.
type LogDocument struct {
	Timestamp time.Time `bson:"timestamp"`
	Level     string    `bson:"level"`
	Message   string    `bson:"message"`
	Meta      bson.M    `bson:"meta,omitempty"`
}

// MongoOption configures a MongoHandler.
type MongoOption func(*MongoHandler)

// WithMongoLevel sets the minimum level stored. Defaults to info.
func WithMongoLevel(level slog.Leveler) MongoOption {
	return func(h *MongoHandler) {
		if level != nil {
			h.level = level
		}
	}
}

// WithMongoTimeout bounds a single insert. Defaults to five seconds.
func WithMongoTimeout(d time.Duration) MongoOption {
	return func(h *MongoHandler) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// MongoHandler stores log records as documents. Inserts are synchronous and
// detached from the caller's cancellation.
type MongoHandler struct {
	coll    Inserter
	level   slog.Leveler
	timeout time.Duration
	attrs   []groupedAttr
	groups  []string
}

type groupedAttr struct {
	groups []string
	attr   slog.Attr
}

func NewMongoHandler(coll Inserter, opts ...MongoOption) *MongoHandler {
	h := &MongoHandler{
		coll:    coll,
		level:   slog.LevelInfo,
		timeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *MongoHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *MongoHandler) Handle(ctx context.Context, rec slog.Record) error {
	meta := bson.M{}
	for _, ga := range h.attrs {
		addAttr(nested(meta, ga.groups), ga.attr)
	}
	if rec.NumAttrs() > 0 {
		target := nested(meta, h.groups)
		rec.Attrs(func(a slog.Attr) bool {
			addAttr(target, a)
			return true
		})
	}

	doc := LogDocument{
		Timestamp: rec.Time.UTC(),
		Level:     rec.Level.String(),
		Message:   rec.Message,
	}
	if len(meta) > 0 {
		doc.Meta = meta
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.timeout)
	defer cancel()

	if _, err := h.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("store log record: %w", err)
	}
	return nil
}

func (h *MongoHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append([]groupedAttr(nil), h.attrs...)
	for _, a := range attrs {
		next.attrs = append(next.attrs, groupedAttr{groups: h.groups, attr: a})
	}
	return &next
}

func (h *MongoHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groups = append(append([]string(nil), h.groups...), name)
	return &next
}

func nested(meta bson.M, groups []string) bson.M {
	for _, g := range groups {
		sub, ok := meta[g].(bson.M)
		if !ok {
			sub = bson.M{}
			meta[g] = sub
		}
		meta = sub
	}
	return meta
}

func addAttr(meta bson.M, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	v := a.Value.Resolve()

	if v.Kind() == slog.KindGroup {
		target := meta
		if a.Key != "" {
			target = nested(meta, []string{a.Key})
		}
		for _, ga := range v.Group() {
			addAttr(target, ga)
		}
		return
	}

	meta[a.Key] = bsonValue(v)
}

func bsonValue(v slog.Value) any {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return v.Int64()
	case slog.KindUint64:
		return int64(v.Uint64())
	case slog.KindFloat64:
		return v.Float64()
	case slog.KindBool:
		return v.Bool()
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().UTC()
	}

	switch x := v.Any().(type) {
	case error:
		return x.Error()
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%+v", x)
	}
}
