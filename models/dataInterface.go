package models

// Model is anything a repository stores; ModelId is nil until persisted.
type Model interface {
	ModelId() *int64
}

type Identifier interface {
	GetId() int64
}

// SameModel reports whether a and b are the same persisted row.
func SameModel[M Model](a, b M) bool {
	ida, idb := a.ModelId(), b.ModelId()
	return ida != nil && idb != nil && *ida == *idb
}
