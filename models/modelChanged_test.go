package models_test

import (
	"testing"

	"github.com/mmdatafocus/ledger_backend/models"
	"github.com/stretchr/testify/assert"
)

type recordingListener struct {
	events []string
	ids    []int64
}

func (r *recordingListener) record(event string, customers []models.Customer) {
	r.events = append(r.events, event)
	for _, c := range customers {
		r.ids = append(r.ids, c.ID)
	}
}

func (r *recordingListener) OnModelAdded(c []models.Customer)    { r.record("added", c) }
func (r *recordingListener) OnModelUpdated(c []models.Customer)  { r.record("updated", c) }
func (r *recordingListener) OnModelDeleted(c []models.Customer)  { r.record("deleted", c) }
func (r *recordingListener) OnModelUpserted(c []models.Customer) { r.record("upserted", c) }

func TestChangeRegistry(t *testing.T) {
	registry := models.NewChangeRegistry[models.Customer]()
	first, second := &recordingListener{}, &recordingListener{}

	registry.AddListener(first)
	registry.AddListener(first)
	registry.AddListener(second)
	assert.Equal(t, 2, registry.Len())

	registry.NotifyAdded([]models.Customer{{ID: 1}})
	registry.NotifyUpdated([]models.Customer{{ID: 2}, {ID: 3}})
	registry.NotifyDeleted(nil)

	registry.RemoveListener(second)
	registry.NotifyDeleted([]models.Customer{{ID: 1}})
	registry.NotifyUpserted([]models.Customer{{ID: 4}})

	assert.Equal(t, []string{"added", "updated", "deleted", "upserted"}, first.events)
	assert.Equal(t, []int64{1, 2, 3, 1, 4}, first.ids)
	assert.Equal(t, []string{"added", "updated"}, second.events)
}

func TestListenerFuncs(t *testing.T) {
	registry := models.NewChangeRegistry[models.Product]()
	var added []int64
	registry.AddListener(&models.ListenerFuncs[models.Product]{
		Added: func(p []models.Product) {
			for _, v := range p {
				added = append(added, v.ID)
			}
		},
	})

	registry.NotifyAdded([]models.Product{{ID: 7}})
	registry.NotifyUpdated([]models.Product{{ID: 8}})

	assert.Equal(t, []int64{7}, added)
}

func TestSameModel(t *testing.T) {
	assert.True(t, models.SameModel(models.Customer{ID: 1}, models.Customer{ID: 1, Name: "x"}))
	assert.False(t, models.SameModel(models.Customer{ID: 1}, models.Customer{ID: 2}))
	assert.False(t, models.SameModel(models.Customer{}, models.Customer{}))
}
