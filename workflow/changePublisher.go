package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/google/uuid"
	"github.com/mmdatafocus/ledger_backend/config"
	"github.com/mmdatafocus/ledger_backend/models"
)

const (
	ActionAdded    = "ADDED"
	ActionUpdated  = "UPDATED"
	ActionDeleted  = "DELETED"
	ActionUpserted = "UPSERTED"
)

const publishTimeout = 10 * time.Second

type MessagePublisher interface {
	Publish(ctx context.Context, msg config.ChangeMessage) error
}

type topicPublisher struct {
	topic *pubsub.Topic
}

// NewTopicPublisher returns nil without error when LEDGER_CHANGES_TOPIC is unset.
func NewTopicPublisher(ctx context.Context) (MessagePublisher, error) {
	topicName := config.ChangesTopicName()
	if topicName == "" {
		return nil, nil
	}
	client, err := config.GetPubSubClient(ctx)
	if err != nil {
		return nil, err
	}
	topic, err := config.CreateTopicIfNotExists(ctx, client, topicName)
	if err != nil {
		return nil, err
	}
	return &topicPublisher{topic: topic}, nil
}

func (p *topicPublisher) Publish(ctx context.Context, msg config.ChangeMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	result := p.topic.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"model":  msg.Model,
			"action": msg.Action,
		},
	})
	_, err = result.Get(ctx)
	return err
}

// ChangePublisher forwards every change batch of one repository as a ChangeMessage.
// Publishing errors are logged, the write they describe has already committed.
type ChangePublisher[M models.Model] struct {
	model     string
	publisher MessagePublisher
	base      context.Context
	now       func() time.Time
}

func NewChangePublisher[M models.Model](ctx context.Context, model string, publisher MessagePublisher) *ChangePublisher[M] {
	return &ChangePublisher[M]{
		model:     model,
		publisher: publisher,
		base:      context.WithoutCancel(ctx),
		now:       time.Now,
	}
}

func (p *ChangePublisher[M]) OnModelAdded(added []M) {
	p.publish(ActionAdded, added)
}

func (p *ChangePublisher[M]) OnModelUpdated(updated []M) {
	p.publish(ActionUpdated, updated)
}

func (p *ChangePublisher[M]) OnModelDeleted(deleted []M) {
	p.publish(ActionDeleted, deleted)
}

func (p *ChangePublisher[M]) OnModelUpserted(upserted []M) {
	p.publish(ActionUpserted, upserted)
}

func (p *ChangePublisher[M]) publish(action string, changed []M) {
	if p.publisher == nil || len(changed) == 0 {
		return
	}
	msg, err := p.message(action, changed)
	if err == nil {
		ctx, cancel := context.WithTimeout(p.base, publishTimeout)
		defer cancel()
		err = p.publisher.Publish(ctx, msg)
	}
	if err != nil {
		config.LogError(config.GetLogger(), "changePublisher.go", "publish", fmt.Sprintf("%s %s", p.model, action), msg.Ids, err)
	}
}

func (p *ChangePublisher[M]) message(action string, changed []M) (config.ChangeMessage, error) {
	msg := config.ChangeMessage{
		Model:         p.model,
		Action:        action,
		OccurredAt:    p.now().UTC(),
		CorrelationId: uuid.NewString(),
	}
	for _, m := range changed {
		if id := m.ModelId(); id != nil {
			msg.Ids = append(msg.Ids, *id)
		}
	}
	if len(msg.Ids) == 1 {
		id := msg.Ids[0]
		msg.Id = &id
	}
	data, err := json.Marshal(changed)
	if err != nil {
		return msg, fmt.Errorf("marshal changed models: %w", err)
	}
	msg.Data = data
	return msg, nil
}

// Publishers wires one ChangePublisher per repository.
type Publishers struct {
	Customers *ChangePublisher[models.Customer]
	Products  *ChangePublisher[models.Product]
	Queues    *ChangePublisher[models.Queue]
}

// RegisterPublishers is a no-op returning nil when publisher is nil.
func RegisterPublishers(ctx context.Context, publisher MessagePublisher, customers *models.CustomerRepository, products *models.ProductRepository, queues *models.QueueRepository) *Publishers {
	if publisher == nil {
		return nil
	}
	p := &Publishers{
		Customers: NewChangePublisher[models.Customer](ctx, "Customer", publisher),
		Products:  NewChangePublisher[models.Product](ctx, "Product", publisher),
		Queues:    NewChangePublisher[models.Queue](ctx, "Queue", publisher),
	}
	customers.AddListener(p.Customers)
	products.AddListener(p.Products)
	queues.AddListener(p.Queues)
	return p
}
