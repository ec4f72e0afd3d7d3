package models

// Identity is the authenticated caller as decoded from a token. It is never
// persisted; handlers only read it from the request context.
type Identity struct {
	ID     string `json:"_id"`
	Nombre string `json:"nombre"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Img    string `json:"img,omitempty"`
	Estado bool   `json:"estado,omitempty"`
	Google bool   `json:"google,omitempty"`
}

// Complete reports whether every attribute the gates rely on is present.
func (i Identity) Complete() bool {
	return i.ID != "" && i.Nombre != "" && i.Email != "" && i.Role.IsValid()
}

// IdentityOf builds the token subject for a stored user.
func IdentityOf(u *Usuario) Identity {
	return Identity{
		ID:     u.ID,
		Nombre: u.Nombre,
		Email:  u.Email,
		Role:   u.Role,
		Img:    u.Img,
		Estado: u.Estado,
		Google: u.Google,
	}
}
