package logger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	mongoQueueSize = 4096
	mongoBatchSize = 50
	mongoDrainTick = 2 * time.Second
)

// MongoDB に書く1行
type LogDocument struct {
	Time      time.Time `bson:"time"`
	Level     string    `bson:"level"`
	Msg       string    `bson:"msg"`
	RequestID string    `bson:"request_id,omitempty"`
	Attrs     bson.M    `bson:"attrs,omitempty"`
}

// まとめ書きの先（テストで差し替える）
type batchWriter interface {
	InsertMany(ctx context.Context, docs []any) error
}

type collectionWriter struct {
	col *mongo.Collection
}

func (w collectionWriter) InsertMany(ctx context.Context, docs []any) error {
	_, err := w.col.InsertMany(ctx, docs)
	return err
}

// mongoSink は WithAttrs/WithGroup で派生したハンドラ間で共有する。
type mongoSink struct {
	w      batchWriter
	client *mongo.Client
	queue  chan LogDocument
	done   chan struct{}
	exited chan struct{}
	once   sync.Once
	tick   time.Duration
}

// MongoHandler はキューに積んでバックグラウンドで InsertMany する。
// キューが満杯なら捨てる（リクエストを止めない）。
type MongoHandler struct {
	sink   *mongoSink
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func NewMongoHandler(ctx context.Context, uri, db, collection string, level slog.Level) (*MongoHandler, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).
		SetConnectTimeout(5*time.Second).
		SetServerSelectionTimeout(5*time.Second).
		SetMaxPoolSize(10))
	if err != nil {
		return nil, fmt.Errorf("mongo log: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo log: ping: %w", err)
	}

	col := client.Database(db).Collection(collection)
	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "time", Value: -1}},
	})

	h := newMongoHandler(collectionWriter{col: col}, level, mongoDrainTick)
	h.sink.client = client
	return h, nil
}

func newMongoHandler(w batchWriter, level slog.Level, tick time.Duration) *MongoHandler {
	s := &mongoSink{
		w:      w,
		queue:  make(chan LogDocument, mongoQueueSize),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
		tick:   tick,
	}
	go s.drainLoop()
	return &MongoHandler{sink: s, level: level}
}

func (h *MongoHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level
}

func (h *MongoHandler) Handle(_ context.Context, r slog.Record) error {
	doc := LogDocument{
		Time:  r.Time.UTC(),
		Level: r.Level.String(),
		Msg:   r.Message,
		Attrs: bson.M{},
	}

	prefix := ""
	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}
	add := func(a slog.Attr, p string) {
		if a.Key == "request_id" && p == "" {
			doc.RequestID = a.Value.String()
			return
		}
		if a.Equal(slog.Attr{}) {
			return
		}
		doc.Attrs[p+a.Key] = attrValue(a.Value)
	}
	for _, a := range h.attrs {
		add(a, "")
	}
	r.Attrs(func(a slog.Attr) bool {
		add(a, prefix)
		return true
	})
	if len(doc.Attrs) == 0 {
		doc.Attrs = nil
	}

	select {
	case h.sink.queue <- doc:
	default:
	}
	return nil
}

func attrValue(v slog.Value) any {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindGroup:
		m := bson.M{}
		for _, a := range v.Group() {
			m[a.Key] = attrValue(a.Value)
		}
		return m
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	case slog.KindDuration:
		return v.Duration().String()
	default:
		return v.Any()
	}
}

// WithAttrs の属性はグループ前のものとして扱う
func (h *MongoHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	prefix := ""
	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}
	next := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	next = append(next, h.attrs...)
	for _, a := range attrs {
		next = append(next, slog.Attr{Key: prefix + a.Key, Value: a.Value})
	}
	return &MongoHandler{sink: h.sink, level: h.level, attrs: next, groups: h.groups}
}

func (h *MongoHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	groups := append(append([]string{}, h.groups...), name)
	return &MongoHandler{sink: h.sink, level: h.level, attrs: h.attrs, groups: groups}
}

func (s *mongoSink) drainLoop() {
	defer close(s.exited)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	batch := make([]any, 0, mongoBatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.w.InsertMany(ctx, batch)
		batch = batch[:0]
	}

	for {
		select {
		case doc := <-s.queue:
			batch = append(batch, doc)
			if len(batch) >= mongoBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.done:
			for len(s.queue) > 0 {
				batch = append(batch, <-s.queue)
				if len(batch) >= mongoBatchSize {
					flush()
				}
			}
			flush()
			return
		}
	}
}

// Close は残りを書き出してから切断する。何度呼んでもよい。
func (h *MongoHandler) Close(ctx context.Context) error {
	s := h.sink
	s.once.Do(func() { close(s.done) })
	select {
	case <-s.exited:
	case <-ctx.Done():
		return ctx.Err()
	}
	if s.client != nil {
		return s.client.Disconnect(ctx)
	}
	return nil
}
