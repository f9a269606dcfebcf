package models

// Session is the pointer to whoever is logged in. It is stored apart from
// the entity it names and may go stale if that entity is removed.
type Session struct {
	Role Role   `bson:"role" json:"role"`
	ID   string `bson:"id" json:"id"`
	Name string `bson:"name" json:"name"`
}
