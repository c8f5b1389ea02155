package model

// Property is the slice of a listing the reservation engine reads.
// The listing document itself is owned by the CRUD layer.
type Property struct {
	ID                string `json:"id" bson:"_id"`
	Active            bool   `json:"active" bson:"active"`
	IsTemporaryRental bool   `json:"temporary_rental" bson:"temporary_rental"`
	Capacity          *int   `json:"capacity,omitempty" bson:"capacity,omitempty"`
}

// Rentable reports whether the property accepts short stays right now.
func (p *Property) Rentable() bool {
	return p.Active && p.IsTemporaryRental
}

// Fits reports whether guests fit the property. Unknown capacity fits anything.
func (p *Property) Fits(guests int) bool {
	if p.Capacity == nil {
		return true
	}
	return guests <= *p.Capacity
}
