package models

// Role is the authorization role carried by a user and by its token.
type Role string

const (
	AdminRole Role = "ADMIN_ROLE"
	UserRole  Role = "USER_ROLE"
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case AdminRole, UserRole:
		return true
	default:
		return false
	}
}

// Usuario represents a user of the store. Users are only read here (populate
// target) and written by the seed tool; registration lives elsewhere.
type Usuario struct {
	ID       string `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	Nombre   string `json:"nombre" gorm:"not null" validate:"required"`
	Email    string `json:"email" gorm:"uniqueIndex;type:varchar(255);not null" validate:"required,email"`
	Password string `json:"-" gorm:"type:varchar(255)" validate:"required,min=6"`
	Img      string `json:"img,omitempty"`
	Role     Role   `json:"role" gorm:"type:varchar(20);not null;default:USER_ROLE"`
	Estado   bool   `json:"estado" gorm:"not null;default:true"`
	Google   bool   `json:"google" gorm:"not null;default:false"`
}

// TableName keeps the collection name used by existing data.
func (Usuario) TableName() string { return "usuarios" }

// UsuarioResumen is the populated view of a user reference: {nombre, email}.
type UsuarioResumen struct {
	ID     string `json:"_id"`
	Nombre string `json:"nombre"`
	Email  string `json:"email"`
}

func (UsuarioResumen) TableName() string { return "usuarios" }
