package models

import "encoding/json"

// Producto is a sellable item. Deleting a product only clears Disponible.
type Producto struct {
	ID          string            `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	Nombre      string            `json:"nombre" gorm:"type:varchar(255);not null;index"`
	PrecioUni   float64           `json:"precioUni" gorm:"not null"`
	Descripcion string            `json:"descripcion"`
	Disponible  bool              `json:"disponible" gorm:"not null;default:true;index"`
	UsuarioID   string            `json:"-" gorm:"type:varchar(36);index"`
	Usuario     *UsuarioResumen   `json:"-" gorm:"foreignKey:UsuarioID"`
	CategoriaID string            `json:"-" gorm:"type:varchar(36);index"`
	Categoria   *CategoriaResumen `json:"-" gorm:"foreignKey:CategoriaID"`
}

func (Producto) TableName() string { return "productos" }

// MarshalJSON emits usuario and categoria either as ids or as populated documents.
func (p Producto) MarshalJSON() ([]byte, error) {
	type alias Producto
	return json.Marshal(struct {
		alias
		Usuario   any `json:"usuario"`
		Categoria any `json:"categoria"`
	}{alias(p), ref(p.UsuarioID, p.Usuario), ref(p.CategoriaID, p.Categoria)})
}

// ProductoPatch is a full replacement of the editable product fields.
// Disponible is nil when the caller did not send it.
type ProductoPatch struct {
	Nombre      string
	PrecioUni   float64
	Descripcion string
	UsuarioID   string
	CategoriaID string
	Disponible  *bool
}
