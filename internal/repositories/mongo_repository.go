package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vaidya/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names shared by the Mongo store and the live change feed.
const (
	CollectionProducts     = "products"
	CollectionOrders       = "orders"
	CollectionReviews      = "reviews"
	CollectionBlogs        = "blogs"
	CollectionAppointments = "appointments"
	CollectionSubscribers  = "subscribers"
)

// mongoCollection wraps the CRUD calls every document collection needs.
type mongoCollection[T any] struct {
	coll *mongo.Collection
}

func (c mongoCollection[T]) find(ctx context.Context, filter bson.M, sort bson.D) ([]T, error) {
	opts := options.Find()
	if sort != nil {
		opts.SetSort(sort)
	}
	cursor, err := c.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", c.coll.Name(), err)
	}
	defer cursor.Close(ctx)

	docs := []T{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", c.coll.Name(), err)
	}
	return docs, nil
}

func (c mongoCollection[T]) findOne(ctx context.Context, filter bson.M, what string) (*T, error) {
	var doc T
	if err := c.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", what, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get %s: %w", what, err)
	}
	return &doc, nil
}

func (c mongoCollection[T]) insert(ctx context.Context, doc *T, action string) error {
	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("failed to %s: %w", action, ErrDuplicate)
		}
		return fmt.Errorf("failed to %s: %w", action, err)
	}
	return nil
}

func (c mongoCollection[T]) replace(ctx context.Context, id string, doc *T, action, what string) error {
	res, err := c.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", action, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s for %s: %w", what, action, ErrNotFound)
	}
	return nil
}

func (c mongoCollection[T]) set(ctx context.Context, id string, fields bson.M, action, what string) error {
	res, err := c.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to %s: %w", action, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s for %s: %w", what, action, ErrNotFound)
	}
	return nil
}

func (c mongoCollection[T]) delete(ctx context.Context, id string, action, what string) error {
	res, err := c.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to %s: %w", action, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s for %s: %w", what, action, ErrNotFound)
	}
	return nil
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}}

// MongoProductRepository stores products in a MongoDB collection.
type MongoProductRepository struct {
	c mongoCollection[models.Product]
}

func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{c: mongoCollection[models.Product]{coll: db.Collection(CollectionProducts)}}
}

func (r *MongoProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	return r.c.find(ctx, bson.M{}, bson.D{{Key: "created_at", Value: 1}, {Key: "name", Value: 1}})
}

func (r *MongoProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	return r.c.findOne(ctx, bson.M{"_id": id}, fmt.Sprintf("product with ID %s", id))
}

func (r *MongoProductRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return r.c.findOne(ctx, bson.M{"slug": slug}, fmt.Sprintf("product with slug %s", slug))
}

func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := time.Now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	return r.c.insert(ctx, product, "create product")
}

func (r *MongoProductRepository) Update(ctx context.Context, product *models.Product) error {
	existing, err := r.GetByID(ctx, product.ID)
	if err != nil {
		return err
	}
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now()
	return r.c.replace(ctx, product.ID, product, "update product", fmt.Sprintf("product with ID %s", product.ID))
}

func (r *MongoProductRepository) Delete(ctx context.Context, id string) error {
	return r.c.delete(ctx, id, "delete product", fmt.Sprintf("product with ID %s", id))
}

// MongoOrderRepository stores orders in a MongoDB collection.
type MongoOrderRepository struct {
	c mongoCollection[models.Order]
}

func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{c: mongoCollection[models.Order]{coll: db.Collection(CollectionOrders)}}
}

func (r *MongoOrderRepository) GetAll(ctx context.Context) ([]models.Order, error) {
	return r.c.find(ctx, bson.M{}, newestFirst)
}

func (r *MongoOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	return r.c.findOne(ctx, bson.M{"_id": id}, fmt.Sprintf("order with ID %s", id))
}

func (r *MongoOrderRepository) GetByUserID(ctx context.Context, userID string) ([]models.Order, error) {
	return r.c.find(ctx, bson.M{"user_id": userID}, newestFirst)
}

func (r *MongoOrderRepository) GetByIdempotencyKey(ctx context.Context, key string) (*models.Order, error) {
	return r.c.findOne(ctx, bson.M{"idempotency_key": key}, fmt.Sprintf("order with idempotency key %s", key))
}

func (r *MongoOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	return r.c.insert(ctx, order, "create order")
}

func (r *MongoOrderRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	return r.c.set(ctx, id, bson.M{"status": status, "updated_at": time.Now()},
		"update order status", fmt.Sprintf("order with ID %s", id))
}

// MongoReviewRepository stores reviews in a MongoDB collection.
type MongoReviewRepository struct {
	c mongoCollection[models.Review]
}

func NewMongoReviewRepository(db *mongo.Database) *MongoReviewRepository {
	return &MongoReviewRepository{c: mongoCollection[models.Review]{coll: db.Collection(CollectionReviews)}}
}

func (r *MongoReviewRepository) GetAll(ctx context.Context) ([]models.Review, error) {
	return r.c.find(ctx, bson.M{}, newestFirst)
}

func (r *MongoReviewRepository) GetByProductID(ctx context.Context, productID string) ([]models.Review, error) {
	return r.c.find(ctx, bson.M{"product_id": productID}, newestFirst)
}

func (r *MongoReviewRepository) GetByID(ctx context.Context, id string) (*models.Review, error) {
	return r.c.findOne(ctx, bson.M{"_id": id}, fmt.Sprintf("review with ID %s", id))
}

func (r *MongoReviewRepository) Create(ctx context.Context, review *models.Review) error {
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	review.CreatedAt = time.Now()
	return r.c.insert(ctx, review, "create review")
}

func (r *MongoReviewRepository) Delete(ctx context.Context, id string) error {
	return r.c.delete(ctx, id, "delete review", fmt.Sprintf("review with ID %s", id))
}

// MongoBlogRepository stores blog posts in a MongoDB collection.
type MongoBlogRepository struct {
	c mongoCollection[models.BlogPost]
}

func NewMongoBlogRepository(db *mongo.Database) *MongoBlogRepository {
	return &MongoBlogRepository{c: mongoCollection[models.BlogPost]{coll: db.Collection(CollectionBlogs)}}
}

func (r *MongoBlogRepository) GetAll(ctx context.Context) ([]models.BlogPost, error) {
	return r.c.find(ctx, bson.M{}, newestFirst)
}

func (r *MongoBlogRepository) GetByID(ctx context.Context, id string) (*models.BlogPost, error) {
	return r.c.findOne(ctx, bson.M{"_id": id}, fmt.Sprintf("blog post with ID %s", id))
}

func (r *MongoBlogRepository) GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	return r.c.findOne(ctx, bson.M{"slug": slug}, fmt.Sprintf("blog post with slug %s", slug))
}

func (r *MongoBlogRepository) Create(ctx context.Context, post *models.BlogPost) error {
	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	now := time.Now()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}
	post.UpdatedAt = now
	return r.c.insert(ctx, post, "create blog post")
}

func (r *MongoBlogRepository) Update(ctx context.Context, post *models.BlogPost) error {
	existing, err := r.GetByID(ctx, post.ID)
	if err != nil {
		return err
	}
	post.CreatedAt = existing.CreatedAt
	post.UpdatedAt = time.Now()
	return r.c.replace(ctx, post.ID, post, "update blog post", fmt.Sprintf("blog post with ID %s", post.ID))
}

func (r *MongoBlogRepository) Delete(ctx context.Context, id string) error {
	return r.c.delete(ctx, id, "delete blog post", fmt.Sprintf("blog post with ID %s", id))
}

// MongoAppointmentRepository stores consultation requests in a MongoDB collection.
type MongoAppointmentRepository struct {
	c mongoCollection[models.Appointment]
}

func NewMongoAppointmentRepository(db *mongo.Database) *MongoAppointmentRepository {
	return &MongoAppointmentRepository{c: mongoCollection[models.Appointment]{coll: db.Collection(CollectionAppointments)}}
}

func (r *MongoAppointmentRepository) GetAll(ctx context.Context) ([]models.Appointment, error) {
	return r.c.find(ctx, bson.M{}, newestFirst)
}

func (r *MongoAppointmentRepository) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	return r.c.findOne(ctx, bson.M{"_id": id}, fmt.Sprintf("appointment with ID %s", id))
}

func (r *MongoAppointmentRepository) Create(ctx context.Context, appointment *models.Appointment) error {
	if appointment.ID == "" {
		appointment.ID = uuid.New().String()
	}
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = appointment.CreatedAt
	return r.c.insert(ctx, appointment, "create appointment")
}

func (r *MongoAppointmentRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	return r.c.set(ctx, id, bson.M{"status": status, "updated_at": time.Now()},
		"update appointment status", fmt.Sprintf("appointment with ID %s", id))
}

// MongoSubscriberRepository stores newsletter subscribers in a MongoDB collection.
type MongoSubscriberRepository struct {
	c mongoCollection[models.Subscriber]
}

func NewMongoSubscriberRepository(db *mongo.Database) *MongoSubscriberRepository {
	return &MongoSubscriberRepository{c: mongoCollection[models.Subscriber]{coll: db.Collection(CollectionSubscribers)}}
}

func (r *MongoSubscriberRepository) GetAll(ctx context.Context) ([]models.Subscriber, error) {
	return r.c.find(ctx, bson.M{}, newestFirst)
}

func (r *MongoSubscriberRepository) Create(ctx context.Context, subscriber *models.Subscriber) error {
	if subscriber.ID == "" {
		subscriber.ID = uuid.New().String()
	}
	subscriber.Email = strings.ToLower(subscriber.Email)
	subscriber.CreatedAt = time.Now()
	return r.c.insert(ctx, subscriber, "create subscriber")
}

func (r *MongoSubscriberRepository) Delete(ctx context.Context, id string) error {
	return r.c.delete(ctx, id, "delete subscriber", fmt.Sprintf("subscriber with ID %s", id))
}

// NewMongoStore wires every document collection to one MongoDB database.
func NewMongoStore(db *mongo.Database) *Store {
	return &Store{
		Products:     NewMongoProductRepository(db),
		Orders:       NewMongoOrderRepository(db),
		Reviews:      NewMongoReviewRepository(db),
		Blogs:        NewMongoBlogRepository(db),
		Appointments: NewMongoAppointmentRepository(db),
		Subscribers:  NewMongoSubscriberRepository(db),
	}
}

// EnsureMongoIndexes creates the unique and lookup indexes the repositories rely on.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		CollectionProducts: {
			{Keys: bson.D{{Key: "slug", Value: 1}}},
			{Keys: bson.D{{Key: "category", Value: 1}}},
		},
		CollectionOrders: {
			{Keys: bson.D{{Key: "idempotency_key", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		CollectionReviews: {
			{Keys: bson.D{{Key: "product_id", Value: 1}}},
		},
		CollectionBlogs: {
			{Keys: bson.D{{Key: "slug", Value: 1}}},
		},
		CollectionSubscribers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for name, specs := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, specs); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}
