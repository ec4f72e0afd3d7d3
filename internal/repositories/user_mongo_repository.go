package repositories

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"cafe/internal/models"
)

var _ UserRepository = (*MongoUserRepository)(nil)

type usuarioDoc struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Nombre   string             `bson:"nombre"`
	Email    string             `bson:"email"`
	Password string             `bson:"password"`
	Img      string             `bson:"img,omitempty"`
	Role     models.Role        `bson:"role"`
	Estado   bool               `bson:"estado"`
	Google   bool               `bson:"google"`
}

func (d usuarioDoc) model() *models.Usuario {
	return &models.Usuario{
		ID:       d.ID.Hex(),
		Nombre:   d.Nombre,
		Email:    d.Email,
		Password: d.Password,
		Img:      d.Img,
		Role:     d.Role,
		Estado:   d.Estado,
		Google:   d.Google,
	}
}

// MongoUserRepository stores users in the "usuarios" collection.
type MongoUserRepository struct {
	coll *mongo.Collection
}

// NewMongoUserRepository creates a new instance of MongoUserRepository.
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: db.Collection(usuariosCollection)}
}

// Create inserts a user; a repeated email yields ErrDuplicate.
func (r *MongoUserRepository) Create(ctx context.Context, user *models.Usuario) error {
	if user.Role == "" {
		user.Role = models.UserRole
	}
	res, err := r.coll.InsertOne(ctx, usuarioDoc{
		Nombre:   user.Nombre,
		Email:    user.Email,
		Password: user.Password,
		Img:      user.Img,
		Role:     user.Role,
		Estado:   user.Estado,
		Google:   user.Google,
	})
	if err != nil {
		return mongoError(err, "create usuario")
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return errors.Errorf("unexpected inserted id %v", res.InsertedID)
	}
	user.ID = oid.Hex()
	return nil
}

// GetByEmail retrieves a user by their email.
func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.Usuario, error) {
	var doc usuarioDoc
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		return nil, mongoError(err, "get usuario by email")
	}
	return doc.model(), nil
}

// GetByID retrieves a user by their ID.
func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (*models.Usuario, error) {
	oid, err := lookupID(id)
	if err != nil {
		return nil, err
	}
	var doc usuarioDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mongoError(err, "get usuario")
	}
	return doc.model(), nil
}
