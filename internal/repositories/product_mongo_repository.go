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

var _ ProductRepository = (*MongoProductRepository)(nil)

type productoDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Nombre      string             `bson:"nombre"`
	PrecioUni   float64            `bson:"precioUni"`
	Descripcion string             `bson:"descripcion"`
	Disponible  bool               `bson:"disponible"`
	Usuario     primitive.ObjectID `bson:"usuario,omitempty"`
	Categoria   primitive.ObjectID `bson:"categoria,omitempty"`
}

func (d productoDoc) model() models.Producto {
	return models.Producto{
		ID:          d.ID.Hex(),
		Nombre:      d.Nombre,
		PrecioUni:   d.PrecioUni,
		Descripcion: d.Descripcion,
		Disponible:  d.Disponible,
		UsuarioID:   hexOrEmpty(d.Usuario),
		CategoriaID: hexOrEmpty(d.Categoria),
	}
}

// MongoProductRepository stores products in the "productos" collection.
type MongoProductRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

// NewMongoProductRepository creates a new instance of MongoProductRepository.
func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{db: db, coll: db.Collection(productosCollection)}
}

func productQuery(filter ProductFilter) bson.M {
	q := bson.M{}
	if filter.Disponible != nil {
		q["disponible"] = *filter.Disponible
	}
	if filter.NombreRegex != "" {
		q["nombre"] = primitive.Regex{Pattern: filter.NombreRegex, Options: "i"}
	}
	return q
}

func (r *MongoProductRepository) toModels(ctx context.Context, docs []productoDoc, populate Populate) ([]models.Producto, error) {
	var (
		usuarios   map[primitive.ObjectID]*models.UsuarioResumen
		categorias map[primitive.ObjectID]*models.CategoriaResumen
		err        error
	)
	if populate.Has(PopulateUsuario) {
		ids := make([]primitive.ObjectID, len(docs))
		for i, d := range docs {
			ids[i] = d.Usuario
		}
		if usuarios, err = populateUsuarios(ctx, r.db, ids); err != nil {
			return nil, err
		}
	}
	if populate.Has(PopulateCategoria) {
		ids := make([]primitive.ObjectID, len(docs))
		for i, d := range docs {
			ids[i] = d.Categoria
		}
		if categorias, err = populateCategorias(ctx, r.db, ids); err != nil {
			return nil, err
		}
	}

	out := make([]models.Producto, len(docs))
	for i, d := range docs {
		out[i] = d.model()
		if usuarios != nil {
			out[i].Usuario = usuarios[d.Usuario]
			clearDangling(true, &out[i].UsuarioID, out[i].Usuario)
		}
		if categorias != nil {
			out[i].Categoria = categorias[d.Categoria]
			clearDangling(true, &out[i].CategoriaID, out[i].Categoria)
		}
	}
	return out, nil
}

// Find lists products matching filter in the requested order.
func (r *MongoProductRepository) Find(ctx context.Context, filter ProductFilter, opts FindOptions) ([]models.Producto, error) {
	cur, err := r.coll.Find(ctx, productQuery(filter), findOptions(opts))
	if err != nil {
		return nil, mongoError(err, "find productos")
	}
	var docs []productoDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mongoError(err, "find productos")
	}
	return r.toModels(ctx, docs, opts.Populate)
}

// Count returns how many products match filter.
func (r *MongoProductRepository) Count(ctx context.Context, filter ProductFilter) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, productQuery(filter))
	if err != nil {
		return 0, mongoError(err, "count productos")
	}
	return n, nil
}

// GetByID retrieves a single product by its ID.
func (r *MongoProductRepository) GetByID(ctx context.Context, id string, populate Populate) (*models.Producto, error) {
	oid, err := lookupID(id)
	if err != nil {
		return nil, err
	}
	var doc productoDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mongoError(err, "get producto")
	}
	out, err := r.toModels(ctx, []productoDoc{doc}, populate)
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// Create inserts a product.
func (r *MongoProductRepository) Create(ctx context.Context, producto *models.Producto) error {
	usuario, err := refID(producto.UsuarioID)
	if err != nil {
		return err
	}
	categoria, err := refID(producto.CategoriaID)
	if err != nil {
		return err
	}
	res, err := r.coll.InsertOne(ctx, productoDoc{
		Nombre:      producto.Nombre,
		PrecioUni:   producto.PrecioUni,
		Descripcion: producto.Descripcion,
		Disponible:  producto.Disponible,
		Usuario:     usuario,
		Categoria:   categoria,
	})
	if err != nil {
		return mongoError(err, "create producto")
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return errors.Errorf("unexpected inserted id %v", res.InsertedID)
	}
	producto.ID = oid.Hex()
	return nil
}

// Update replaces the editable fields and returns the updated product.
func (r *MongoProductRepository) Update(ctx context.Context, id string, patch models.ProductoPatch) (*models.Producto, error) {
	usuario, err := refID(patch.UsuarioID)
	if err != nil {
		return nil, err
	}
	categoria, err := refID(patch.CategoriaID)
	if err != nil {
		return nil, err
	}
	set := bson.M{
		"nombre":      patch.Nombre,
		"precioUni":   patch.PrecioUni,
		"descripcion": patch.Descripcion,
		"usuario":     usuario,
		"categoria":   categoria,
	}
	if patch.Disponible != nil {
		set["disponible"] = *patch.Disponible
	}
	return r.update(ctx, id, set, "update producto")
}

// SetDisponible flips availability; used for soft deletes.
func (r *MongoProductRepository) SetDisponible(ctx context.Context, id string, disponible bool) (*models.Producto, error) {
	return r.update(ctx, id, bson.M{"disponible": disponible}, "set producto disponible")
}

func (r *MongoProductRepository) update(ctx context.Context, id string, set bson.M, op string) (*models.Producto, error) {
	oid, err := lookupID(id)
	if err != nil {
		return nil, err
	}
	var doc productoDoc
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, mongoError(err, op)
	}
	producto := doc.model()
	return &producto, nil
}
