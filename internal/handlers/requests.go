package handlers

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"cafe/internal/services"
)

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

type categoriaRequest struct {
	Descripcion string `json:"descripcion" form:"descripcion" validate:"required"`
}

// productoRequest is shared by create and update. categoria is checked by
// the service so a missing value gets its own message.
type productoRequest struct {
	Nombre      string   `json:"nombre" form:"nombre" validate:"required"`
	PrecioUni   *float64 `json:"precioUni" form:"precioUni" validate:"required,gte=0"`
	Descripcion string   `json:"descripcion" form:"descripcion"`
	Categoria   string   `json:"categoria" form:"categoria"`
	Disponible  *bool    `json:"disponible" form:"disponible"`
}

func (r productoRequest) input() services.ProductInput {
	in := services.ProductInput{
		Nombre:      r.Nombre,
		Descripcion: r.Descripcion,
		CategoriaID: r.Categoria,
		Disponible:  r.Disponible,
	}
	if r.PrecioUni != nil {
		in.PrecioUni = *r.PrecioUni
	}
	return in
}
