package repositories

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cafe/internal/models"
)

var _ CategoryRepository = (*MongoCategoryRepository)(nil)

type categoriaDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Descripcion string             `bson:"descripcion"`
	Usuario     primitive.ObjectID `bson:"usuario,omitempty"`
}

func (d categoriaDoc) model() models.Categoria {
	return models.Categoria{
		ID:          d.ID.Hex(),
		Descripcion: d.Descripcion,
		UsuarioID:   hexOrEmpty(d.Usuario),
	}
}

// MongoCategoryRepository stores categories in the "categorias" collection.
type MongoCategoryRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

// NewMongoCategoryRepository creates a new instance of MongoCategoryRepository.
func NewMongoCategoryRepository(db *mongo.Database) *MongoCategoryRepository {
	return &MongoCategoryRepository{db: db, coll: db.Collection(categoriasCollection)}
}

func (r *MongoCategoryRepository) toModels(ctx context.Context, docs []categoriaDoc, populate Populate) ([]models.Categoria, error) {
	out := make([]models.Categoria, len(docs))
	var usuarios map[primitive.ObjectID]*models.UsuarioResumen
	if populate.Has(PopulateUsuario) {
		ids := make([]primitive.ObjectID, len(docs))
		for i, d := range docs {
			ids[i] = d.Usuario
		}
		var err error
		if usuarios, err = populateUsuarios(ctx, r.db, ids); err != nil {
			return nil, err
		}
	}
	for i, d := range docs {
		out[i] = d.model()
		if usuarios != nil {
			out[i].Usuario = usuarios[d.Usuario]
			clearDangling(true, &out[i].UsuarioID, out[i].Usuario)
		}
	}
	return out, nil
}

// Find lists categories in the requested order.
func (r *MongoCategoryRepository) Find(ctx context.Context, opts FindOptions) ([]models.Categoria, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, findOptions(opts))
	if err != nil {
		return nil, mongoError(err, "find categorias")
	}
	var docs []categoriaDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mongoError(err, "find categorias")
	}
	return r.toModels(ctx, docs, opts.Populate)
}

// Count returns the number of categories.
func (r *MongoCategoryRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, mongoError(err, "count categorias")
	}
	return n, nil
}

// GetByID retrieves a single category by its ID.
func (r *MongoCategoryRepository) GetByID(ctx context.Context, id string, populate Populate) (*models.Categoria, error) {
	oid, err := lookupID(id)
	if err != nil {
		return nil, err
	}
	var doc categoriaDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mongoError(err, "get categoria")
	}
	out, err := r.toModels(ctx, []categoriaDoc{doc}, populate)
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// Create inserts a category; a repeated descripcion yields ErrDuplicate.
func (r *MongoCategoryRepository) Create(ctx context.Context, categoria *models.Categoria) error {
	usuario, err := refID(categoria.UsuarioID)
	if err != nil {
		return err
	}
	res, err := r.coll.InsertOne(ctx, categoriaDoc{Descripcion: categoria.Descripcion, Usuario: usuario})
	if err != nil {
		return mongoError(err, "create categoria")
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return errors.Errorf("unexpected inserted id %v", res.InsertedID)
	}
	categoria.ID = oid.Hex()
	return nil
}

// Update replaces descripcion and returns the updated category.
func (r *MongoCategoryRepository) Update(ctx context.Context, id string, patch models.CategoriaPatch) (*models.Categoria, error) {
	oid, err := lookupID(id)
	if err != nil {
		return nil, err
	}
	var doc categoriaDoc
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"descripcion": patch.Descripcion}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, mongoError(err, "update categoria")
	}
	categoria := doc.model()
	return &categoria, nil
}

// Delete removes a category and returns the removed record.
func (r *MongoCategoryRepository) Delete(ctx context.Context, id string) (*models.Categoria, error) {
	oid, err := lookupID(id)
	if err != nil {
		return nil, err
	}
	var doc categoriaDoc
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mongoError(err, "delete categoria")
	}
	categoria := doc.model()
	return &categoria, nil
}
