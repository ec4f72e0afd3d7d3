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

// Collection names shared with existing data.
const (
	usuariosCollection   = "usuarios"
	categoriasCollection = "categorias"
	productosCollection  = "productos"
)

// EnsureMongoIndexes creates the unique indexes the repositories rely on.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	unique := []struct {
		collection string
		field      string
	}{
		{categoriasCollection, "descripcion"},
		{usuariosCollection, "email"},
	}
	for _, idx := range unique {
		_, err := db.Collection(idx.collection).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: idx.field, Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			return errors.Wrapf(err, "create unique index %s.%s", idx.collection, idx.field)
		}
	}
	_, err := db.Collection(productosCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "disponible", Value: 1}, {Key: "categoria", Value: 1}}},
		{Keys: bson.D{{Key: "nombre", Value: 1}}},
	})
	if err != nil {
		return errors.Wrap(err, "create productos indexes")
	}
	return nil
}

func mongoError(err error, op string) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	default:
		return errors.Wrap(err, op)
	}
}

// lookupID parses an id used to find a document; a malformed id cannot match anything.
func lookupID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return oid, nil
}

// refID parses an id stored as a reference; empty stays empty.
func refID(id string) (primitive.ObjectID, error) {
	if id == "" {
		return primitive.NilObjectID, nil
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, errors.Wrapf(ErrInvalidReference, "%q", id)
	}
	return oid, nil
}

func hexOrEmpty(oid primitive.ObjectID) string {
	if oid.IsZero() {
		return ""
	}
	return oid.Hex()
}

func mongoSort(sorts []SortField) bson.D {
	d := bson.D{}
	byID := false
	for _, s := range sorts {
		dir := 1
		if s.Desc {
			dir = -1
		}
		if s.Field == "_id" {
			byID = true
		}
		d = append(d, bson.E{Key: s.Field, Value: dir})
	}
	if !byID {
		d = append(d, bson.E{Key: "_id", Value: 1})
	}
	return d
}

func findOptions(opts FindOptions) *options.FindOptions {
	fo := options.Find().SetSort(mongoSort(opts.Sort))
	if opts.Skip > 0 {
		fo.SetSkip(int64(opts.Skip))
	}
	if opts.Limit > 0 {
		fo.SetLimit(int64(opts.Limit))
	}
	return fo
}

func distinctIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if id.IsZero() {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// populateUsuarios resolves user references to {nombre, email}.
func populateUsuarios(ctx context.Context, db *mongo.Database, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.UsuarioResumen, error) {
	out := map[primitive.ObjectID]*models.UsuarioResumen{}
	ids = distinctIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := db.Collection(usuariosCollection).Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"nombre": 1, "email": 1}),
	)
	if err != nil {
		return nil, mongoError(err, "populate usuario")
	}
	var docs []struct {
		ID     primitive.ObjectID `bson:"_id"`
		Nombre string             `bson:"nombre"`
		Email  string             `bson:"email"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mongoError(err, "populate usuario")
	}
	for _, d := range docs {
		out[d.ID] = &models.UsuarioResumen{ID: d.ID.Hex(), Nombre: d.Nombre, Email: d.Email}
	}
	return out, nil
}

// populateCategorias resolves category references to {descripcion}.
func populateCategorias(ctx context.Context, db *mongo.Database, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.CategoriaResumen, error) {
	out := map[primitive.ObjectID]*models.CategoriaResumen{}
	ids = distinctIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := db.Collection(categoriasCollection).Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"descripcion": 1}),
	)
	if err != nil {
		return nil, mongoError(err, "populate categoria")
	}
	var docs []struct {
		ID          primitive.ObjectID `bson:"_id"`
		Descripcion string             `bson:"descripcion"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mongoError(err, "populate categoria")
	}
	for _, d := range docs {
		out[d.ID] = &models.CategoriaResumen{ID: d.ID.Hex(), Descripcion: d.Descripcion}
	}
	return out, nil
}
