package models

import "encoding/json"

// Categoria groups products. Descripcion is unique across the collection.
type Categoria struct {
	ID          string          `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	Descripcion string          `json:"descripcion" gorm:"uniqueIndex;type:varchar(255);not null"`
	UsuarioID   string          `json:"-" gorm:"type:varchar(36);index"`
	Usuario     *UsuarioResumen `json:"-" gorm:"foreignKey:UsuarioID"`
}

func (Categoria) TableName() string { return "categorias" }

// MarshalJSON emits usuario either as an id or as the populated user.
func (c Categoria) MarshalJSON() ([]byte, error) {
	type alias Categoria
	return json.Marshal(struct {
		alias
		Usuario any `json:"usuario"`
	}{alias(c), ref(c.UsuarioID, c.Usuario)})
}

// CategoriaResumen is the populated view of a category reference: {descripcion}.
type CategoriaResumen struct {
	ID          string `json:"_id"`
	Descripcion string `json:"descripcion"`
}

func (CategoriaResumen) TableName() string { return "categorias" }

// CategoriaPatch carries the fields an update may replace.
type CategoriaPatch struct {
	Descripcion string
}
