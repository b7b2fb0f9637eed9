package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/go-logr/logr"
	"github.com/rogersnm/taskmanager/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoCollection = "tasks"

// mongoTask is the stored document. Field names follow the camelCase
// timestamps used by existing task collections.
type mongoTask struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description,omitempty"`
	Status      string             `bson:"status"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d *mongoTask) toModel() model.Task {
	return model.Task{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Status:      model.Status(d.Status),
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

// MongoStore keeps tasks in a MongoDB collection. Ids are ObjectID hex
// strings.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	log    logr.Logger
}

// compile-time check
var _ Store = (*MongoStore)(nil)

// OpenMongo connects to uri. The driver connects lazily, so an unreachable
// server is only logged here and surfaces as errors on each call.
func OpenMongo(ctx context.Context, uri, database string, log logr.Logger) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	s := &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(mongoCollection),
		log:    log,
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		log.Error(err, "mongo connection error, requests will fail until it is reachable")
		return s, nil
	}
	log.Info("mongo connected", "database", database)

	_, err = s.coll.Indexes().CreateOne(pingCtx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
	})
	if err != nil {
		log.Error(err, "creating createdAt index")
	}
	return s, nil
}

func (s *MongoStore) Create(ctx context.Context, in model.TaskInput) (*model.Task, error) {
	oid := primitive.NewObjectID()
	t := model.NewTask(oid.Hex(), in, now())
	if err := t.Validate(); err != nil {
		return nil, err
	}
	doc := mongoTask{
		ID:          oid,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("inserting task: %w", err)
	}
	return t, nil
}

func (s *MongoStore) Find(ctx context.Context, filter Filter) ([]model.Task, error) {
	query := bson.M{}
	if filter.Keyword != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Keyword), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"description": re},
		}
	}
	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	var docs []mongoTask
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("reading tasks: %w", err)
	}

	tasks := make([]model.Task, 0, len(docs))
	for i := range docs {
		tasks = append(tasks, docs[i].toModel())
	}
	return tasks, nil
}

func (s *MongoStore) FindByID(ctx context.Context, taskID string) (*model.Task, error) {
	oid, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return nil, invalidID(taskID)
	}
	var doc mongoTask
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("finding task: %w", err)
	}
	t := doc.toModel()
	return &t, nil
}

func (s *MongoStore) UpdateByID(ctx context.Context, taskID string, upd model.TaskUpdate) (*model.Task, error) {
	current, err := s.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	t := current.Apply(upd, now())
	if err := t.Validate(); err != nil {
		return nil, err
	}

	oid, _ := primitive.ObjectIDFromHex(taskID)
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"title":       t.Title,
		"description": t.Description,
		"status":      string(t.Status),
		"updatedAt":   t.UpdatedAt,
	}})
	if err != nil {
		return nil, fmt.Errorf("updating task: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return t, nil
}

func (s *MongoStore) DeleteByID(ctx context.Context, taskID string) error {
	oid, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return invalidID(taskID)
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
