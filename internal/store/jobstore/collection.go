package jobstore

import (
	"context"
	stderrors "errors"

	"github.com/pkg/errors"
	"github.com/ykhdr/hashbench/internal/messages/job"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

//go:generate mockgen -source=collection.go -destination=./collection_mock.go -package=jobstore

var DuplicateJobErr = stderrors.New("job already exists")

// Collection is the document storage behind the job store.
type Collection interface {
	// Insert returns DuplicateJobErr when the id is taken.
	Insert(ctx context.Context, info *job.Info) error
	// Update replaces the mutable fields and reports whether the job existed.
	Update(ctx context.Context, info *job.Info) (bool, error)
	// Find returns NotFoundErr for an unknown id.
	Find(ctx context.Context, id job.Id) (*job.Info, error)
	// FindAll returns every job, newest first.
	FindAll(ctx context.Context) ([]*job.Info, error)
	// Remove reports whether the job existed.
	Remove(ctx context.Context, id job.Id) (bool, error)
}

type mongoCollection struct {
	coll *mongo.Collection
}

func NewMongoCollection(coll *mongo.Collection) Collection {
	return &mongoCollection{coll: coll}
}

func (c *mongoCollection) Insert(ctx context.Context, info *job.Info) error {
	_, err := c.coll.InsertOne(ctx, info)
	if mongo.IsDuplicateKeyError(err) {
		return DuplicateJobErr
	}
	return err
}

func (c *mongoCollection) Update(ctx context.Context, info *job.Info) (bool, error) {
	update := bson.M{
		"$set": bson.M{
			"status":       info.Status,
			"result":       info.Result,
			"error_reason": info.ErrorReason,
			"finished_at":  info.FinishedAt,
		},
	}
	result, err := c.coll.UpdateOne(ctx, bson.M{"_id": info.ID}, update)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (c *mongoCollection) Find(ctx context.Context, id job.Id) (*job.Info, error) {
	var info job.Info
	err := c.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&info)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, NotFoundErr
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *mongoCollection) FindAll(ctx context.Context) ([]*job.Info, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := c.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	var result []*job.Info
	if err := cursor.All(ctx, &result); err != nil {
		return nil, errors.Wrap(err, "error decoding jobs")
	}
	return result, nil
}

func (c *mongoCollection) Remove(ctx context.Context, id job.Id) (bool, error) {
	result, err := c.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}
