package checkoutevents

import (
	"context"
	"fmt"
	"time"

	"github.com/MarcGrol/deliverybackend/lib/myerrors"
	"github.com/MarcGrol/deliverybackend/lib/myevents"
)

const (
	TopicName       = "checkout"
	orderPlacedName = TopicName + ".orderPlaced"
)

type CheckoutEventService interface {
	OnOrderPlaced(c context.Context, topic string, event OrderPlaced) error
}

func DispatchEvent(c context.Context, envelope myevents.EventEnvelope, service CheckoutEventService) error {
	switch envelope.EventTypeName {
	case orderPlacedName:
		event, err := myevents.UnmarshalPayload[OrderPlaced](envelope)
		if err != nil {
			return myerrors.NewInvalidInputError(err)
		}
		return service.OnOrderPlaced(c, envelope.Topic, event)
	default:
		return myerrors.NewNotImplementedError(fmt.Errorf("unsupported event %s", envelope.EventTypeName))
	}
}

type PlacedItem struct {
	Name       string
	Quantity   int
	PriceCents int64
}

type OrderPlaced struct {
	OrderUID              string
	CustomerUID           string
	RestaurantUID         string
	RestaurantName        string
	CustomerName          string
	CustomerEmail         string
	Items                 []PlacedItem
	SubtotalCents         int64
	DeliveryFeeCents      int64
	TaxCents              int64
	TipCents              int64
	TotalCents            int64
	EstimatedDeliveryTime time.Time
	TrackingURL           string
}

func (e OrderPlaced) GetEventTypeName() string {
	return orderPlacedName
}

func (e OrderPlaced) GetAggregateName() string {
	return e.OrderUID
}
