package editor

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/domain/entity"
)

// Source tells where a LoadQuote event came from.
type Source string

const (
	SourceInquiry Source = "inquiry"
	SourceQuote   Source = "quote"
)

// LoadQuote asks the editor to take over the contact, items and note of a
// stored inquiry or quote.
type LoadQuote struct {
	TenantID    uuid.UUID
	Source      Source
	SourceID    uuid.UUID
	ClientName  string
	ClientPhone string
	ClientEmail string
	Items       []entity.LineItem
	Note        string
}

// LoadQuoteFromInquiry builds the event for an inquiry.
func LoadQuoteFromInquiry(inq *entity.Inquiry) LoadQuote {
	return LoadQuote{
		TenantID:    inq.TenantID,
		Source:      SourceInquiry,
		SourceID:    inq.ID,
		ClientName:  inq.ClientName,
		ClientPhone: inq.ClientPhone,
		ClientEmail: inq.ClientEmail,
		Items:       entity.CloneItems(inq.Items),
		Note:        inq.Note,
	}
}

// LoadQuoteFromQuote builds the event for a saved quote.
func LoadQuoteFromQuote(q *entity.Quote) LoadQuote {
	return LoadQuote{
		TenantID:    q.TenantID,
		Source:      SourceQuote,
		SourceID:    q.ID,
		ClientName:  q.ClientName,
		ClientPhone: q.ClientPhone,
		ClientEmail: q.ClientEmail,
		Items:       entity.CloneItems(q.Items),
		Note:        q.Note,
	}
}

// Handler reacts to a LoadQuote event.
type Handler func(ctx context.Context, evt LoadQuote) error

// Bus delivers LoadQuote events synchronously to every subscriber in
// subscription order. The first handler error stops delivery.
type Bus struct {
	mu       sync.RWMutex
	next     int
	handlers map[int]Handler
	order    []int
}

func NewBus() *Bus {
	return &Bus{handlers: map[int]Handler{}}
}

// Subscribe registers h and returns a function that removes it.
func (b *Bus) Subscribe(h Handler) (cancel func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.handlers[id] = h
	b.order = append(b.order, id)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.handlers, id)
			for i, v := range b.order {
				if v == id {
					b.order = append(b.order[:i], b.order[i+1:]...)
					break
				}
			}
		})
	}
}

func (b *Bus) Publish(ctx context.Context, evt LoadQuote) error {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.order))
	for _, id := range b.order {
		handlers = append(handlers, b.handlers[id])
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h(ctx, evt); err != nil {
			return err
		}
	}
	return nil
}
