package history

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default database and collection names.
const (
	DefaultDatabase   = "kinreport"
	DefaultCollection = "renders"
)

// MongoStore keeps records in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

// MongoOptions configures NewMongoStore.
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
	// TTL expires records after the given age. Zero keeps them forever.
	TTL time.Duration
}

// NewMongoStore connects, pings and ensures the indexes List relies on.
func NewMongoStore(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	if opts.Database == "" {
		opts.Database = DefaultDatabase
	}
	if opts.Collection == "" {
		opts.Collection = DefaultCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("history: connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("history: ping: %w", err)
	}

	s := &MongoStore{
		client: client,
		coll:   client.Database(opts.Database).Collection(opts.Collection),
		now:    time.Now,
	}
	if err := s.ensureIndexes(ctx, opts.TTL); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context, ttl time.Duration) error {
	created := options.Index()
	if ttl > 0 {
		created.SetExpireAfterSeconds(int32(ttl.Seconds()))
	}
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}, Options: created},
		{Keys: bson.D{{Key: "dni", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("history: create indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) Add(ctx context.Context, r Record) (Record, error) {
	r = prepare(r, s.now())
	if _, err := s.coll.InsertOne(ctx, r); err != nil {
		return Record{}, fmt.Errorf("history: insert: %w", err)
	}
	return r, nil
}

func (s *MongoStore) List(ctx context.Context, f Filter) ([]Record, error) {
	filter := bson.D{}
	if f.DNI != "" {
		filter = append(filter, bson.E{Key: "dni", Value: f.DNI})
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(f.limit()))

	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("history: find: %w", err)
	}
	defer cur.Close(ctx)

	out := []Record{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("history: decode: %w", err)
	}
	return out, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
