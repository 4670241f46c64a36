package models

// Role is a standalone role definition. Users reference roles by name only;
// membership lives in the user document's roles array.
type Role struct {
	ID             string `bson:"_id,omitempty"`
	Name           string `bson:"name"`
	NormalizedName string `bson:"normalizedName"`
}
