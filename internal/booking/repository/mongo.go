package repository

import (
	"context"
	"errors"
	"time"

	"github.com/medbill/medbill-site/backend/api/internal/booking"
	"github.com/medbill/medbill-site/backend/api/internal/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo stores bookings in one collection keyed by the uuid in _id.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(ctx context.Context, col *mongo.Collection) *MongoRepo {
	database.EnsureIndexes(ctx, col,
		mongo.IndexModel{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		mongo.IndexModel{Keys: bson.D{{Key: "deletedAt", Value: 1}}},
	)
	return &MongoRepo{col: col}
}

func (m *MongoRepo) Create(ctx context.Context, b *booking.Booking) error {
	_, err := m.col.InsertOne(ctx, b)
	return err
}

func (m *MongoRepo) Get(ctx context.Context, id string) (*booking.Booking, error) {
	var b booking.Booking
	err := m.col.FindOne(ctx, database.ActiveFilter(bson.M{"_id": id})).Decode(&b)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (m *MongoRepo) List(ctx context.Context, f Filter) ([]*booking.Booking, int64, error) {
	filter := database.ActiveFilter(nil)
	if f.Status != "" {
		filter["status"] = f.Status
	}
	total, err := m.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(max(f.Offset, 0)))
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	cur, err := m.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	out := []*booking.Booking{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// setDoc renders a patch as a $set document; cleared optional fields become null.
func setDoc(p booking.Patch, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	optional := func(field string, v *string) {
		if v == nil {
			return
		}
		if *v == "" {
			set[field] = nil
			return
		}
		set[field] = *v
	}
	required := func(field string, v *string) {
		if v != nil {
			set[field] = *v
		}
	}
	optional("serviceId", p.ServiceID)
	optional("serviceName", p.ServiceName)
	optional("appointmentTime", p.AppointmentTime)
	optional("message", p.Message)
	required("name", p.Name)
	required("email", p.Email)
	required("phone", p.Phone)
	required("appointmentDate", p.AppointmentDate)
	if p.Status != nil {
		set["status"] = *p.Status
	}
	return set
}

func (m *MongoRepo) Update(ctx context.Context, id string, p booking.Patch, now time.Time) (*booking.Booking, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var b booking.Booking
	err := m.col.FindOneAndUpdate(ctx, database.ActiveFilter(bson.M{"_id": id}), bson.M{"$set": setDoc(p, now)}, opts).Decode(&b)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (m *MongoRepo) SoftDelete(ctx context.Context, id string, now time.Time) (bool, error) {
	res, err := m.col.UpdateOne(ctx,
		database.ActiveFilter(bson.M{"_id": id}),
		bson.M{"$set": bson.M{"deletedAt": now, "updatedAt": now}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}
