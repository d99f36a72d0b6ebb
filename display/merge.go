package display

import (
	"slices"

	"github.com/mmdatafocus/ledger_backend/models"
)

// The helpers below never modify list; each returns a new slice.

// AddModels appends added, replacing any element with the same id.
func AddModels[M models.Model](list []M, added []M) []M {
	return UpsertModels(list, added)
}

// UpdateModels replaces elements by id; ids not in list are ignored.
func UpdateModels[M models.Model](list []M, updated []M) []M {
	out := slices.Clone(list)
	for _, u := range updated {
		if i := indexOfModel(out, u); i >= 0 {
			out[i] = u
		}
	}
	return out
}

func DeleteModels[M models.Model](list []M, deleted []M) []M {
	out := make([]M, 0, len(list))
	for _, m := range list {
		if indexOfModel(deleted, m) < 0 {
			out = append(out, m)
		}
	}
	return out
}

func UpsertModels[M models.Model](list []M, upserted []M) []M {
	out := slices.Clone(list)
	for _, u := range upserted {
		if i := indexOfModel(out, u); i >= 0 {
			out[i] = u
		} else {
			out = append(out, u)
		}
	}
	return out
}

func indexOfModel[M models.Model](list []M, m M) int {
	return slices.IndexFunc(list, func(v M) bool { return models.SameModel(v, m) })
}
