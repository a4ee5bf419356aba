package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tokocart/internal/models"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// cartTTL drops carts that have not been touched for 90 days.
const cartTTL = 90 * 24 * time.Hour

type cartDocument struct {
	UserID    string             `bson:"_id"`
	Items     []cartItemDocument `bson:"items"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

type cartItemDocument struct {
	ProductID string               `bson:"product_id"`
	Quantity  int                  `bson:"quantity"`
	Price     primitive.Decimal128 `bson:"price"`
	Name      string               `bson:"name"`
	Image     string               `bson:"image"`
	AddedAt   time.Time            `bson:"added_at"`
}

// ConnectMongoDB opens a client and verifies it with a ping.
func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client.Database(database), nil
}

// MongoCartRepository keeps one document per user, keyed by user ID.
type MongoCartRepository struct {
	collection *mongo.Collection
}

// NewMongoCartRepository creates a repository on the "carts" collection of db.
func NewMongoCartRepository(db *mongo.Database) *MongoCartRepository {
	return &MongoCartRepository{
		collection: db.Collection("carts"),
	}
}

// CreateIndexes installs the idle-cart TTL index.
func (r *MongoCartRepository) CreateIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "updated_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32(cartTTL.Seconds())),
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// GetCart loads the user's document.
func (r *MongoCartRepository) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	var doc cartDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("cart for user %s: %w", userID, ErrCartNotFound)
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	cart := &models.Cart{
		UserID:    doc.UserID,
		Lines:     make([]models.CartLine, 0, len(doc.Items)),
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
	for _, item := range doc.Items {
		price, err := decimal.NewFromString(item.Price.String())
		if err != nil {
			return nil, fmt.Errorf("cart for user %s has invalid price for product %s: %w", userID, item.ProductID, err)
		}
		cart.Lines = append(cart.Lines, models.CartLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     price,
			Name:      item.Name,
			Image:     item.Image,
			AddedAt:   item.AddedAt,
		})
	}
	return cart, nil
}

// SaveCart replaces the user's document, inserting it if missing.
func (r *MongoCartRepository) SaveCart(ctx context.Context, cart *models.Cart) error {
	now := time.Now()
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now

	doc := cartDocument{
		UserID:    cart.UserID,
		Items:     make([]cartItemDocument, 0, len(cart.Lines)),
		CreatedAt: cart.CreatedAt,
		UpdatedAt: cart.UpdatedAt,
	}
	for _, l := range cart.Lines {
		price, err := primitive.ParseDecimal128(l.Price.String())
		if err != nil {
			return fmt.Errorf("failed to encode price for product %s: %w", l.ProductID, err)
		}
		doc.Items = append(doc.Items, cartItemDocument{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     price,
			Name:      l.Name,
			Image:     l.Image,
			AddedAt:   l.AddedAt,
		})
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": cart.UserID}, doc, opts); err != nil {
		return fmt.Errorf("failed to upsert cart: %w", err)
	}
	return nil
}

// DeleteCart removes the user's document.
func (r *MongoCartRepository) DeleteCart(ctx context.Context, userID string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": userID}); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}
