package checkout

import (
	"context"
	"fmt"

	"github.com/MarcGrol/deliverybackend/lib/myerrors"
	"github.com/MarcGrol/deliverybackend/lib/mylog"
	"github.com/MarcGrol/deliverybackend/lib/mymetrics"
	"github.com/MarcGrol/deliverybackend/lib/mystore"
	"github.com/MarcGrol/deliverybackend/services/checkout/checkoutevents"
)

func (s *service) CreateTopics(c context.Context) error {
	err := s.publisher.CreateTopic(c, checkoutevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", checkoutevents.TopicName, err)
	}
	return nil
}

func (s *service) saveCart(c context.Context, sessionUID string, cart Cart) error {
	err := validateItems(cart.Items)
	if err != nil {
		return myerrors.NewInvalidInputError(err)
	}

	s.logger.Log(c, sessionUID, mylog.SeverityInfo, "Store cart %s with %d items", sessionUID, len(cart.Items))

	return s.carts.save(c, sessionUID, cart)
}

func (s *service) getCart(c context.Context, sessionUID string) (Cart, error) {
	return s.carts.load(c, sessionUID)
}

func (s *service) quote(c context.Context, sessionUID string, tip TipPolicy) (QuoteResponse, error) {
	cart, err := s.carts.load(c, sessionUID)
	if err != nil {
		return QuoteResponse{}, err
	}

	totals, err := CalculateTotals(cart.Items, tip)
	if err != nil {
		return QuoteResponse{}, myerrors.NewInvalidInputError(err)
	}

	return QuoteResponse{
		Items:      cart.Items,
		Restaurant: cart.Restaurant,
		Totals:     totals,
	}, nil
}

func validateContact(req CheckoutRequest) error {
	if req.Name == "" {
		return fmt.Errorf("missing name")
	}
	if req.Phone == "" {
		return fmt.Errorf("missing phone")
	}
	if req.Address == "" {
		return fmt.Errorf("missing address")
	}
	return nil
}

// placeOrder turns the cart of the session into a pending order. The cart survives any failure.
func (s *service) placeOrder(c context.Context, sessionUID string, customerUID string, req CheckoutRequest, hostname string) (PlaceOrderResponse, error) {
	cart, err := s.carts.load(c, sessionUID)
	if err != nil {
		return PlaceOrderResponse{}, err
	}
	if len(cart.Items) == 0 {
		return PlaceOrderResponse{}, myerrors.NewInvalidInputErrorf("cart %s is empty", sessionUID)
	}
	if cart.Restaurant == nil || cart.Restaurant.UID == "" {
		return PlaceOrderResponse{}, myerrors.NewInvalidInputErrorf("cart %s has no restaurant", sessionUID)
	}

	err = validateContact(req)
	if err != nil {
		return PlaceOrderResponse{}, myerrors.NewInvalidInputError(err)
	}

	tip, err := NewTipPolicy(req.TipType, req.TipPercent, req.Tip)
	if err != nil {
		return PlaceOrderResponse{}, myerrors.NewInvalidInputError(err)
	}

	totals, err := CalculateTotals(cart.Items, tip)
	if err != nil {
		return PlaceOrderResponse{}, myerrors.NewInvalidInputError(err)
	}

	orderUID := s.uuider.Create()
	now := s.nower.Now()
	trackingURL := hostname + "/track-order/" + orderUID

	order := Order{
		UID:              orderUID,
		CustomerUID:      customerUID,
		RestaurantUID:    cart.Restaurant.UID,
		RestaurantName:   cart.Restaurant.Name,
		SubtotalCents:    totals.SubtotalCents,
		DeliveryFeeCents: totals.DeliveryFeeCents,
		TaxCents:         totals.TaxCents,
		TipCents:         totals.TipCents,
		TotalCents:       totals.TotalCents,
		Status:           StatusPending,
		CustomerName:     req.Name,
		CustomerPhone:    req.Phone,
		DeliveryAddress: DeliveryAddress{
			Name:                req.Name,
			Phone:               req.Phone,
			Email:               req.Email,
			Address:             composeAddress(req),
			SpecialInstructions: req.Instructions,
		},
		EstimatedDeliveryTime: now.Add(estimatedDeliveryDuration),
		CreatedAt:             now,
	}

	paymentReference, err := s.payer.Authorize(c, Authorization{
		OrderUID:      orderUID,
		AmountCents:   totals.TotalCents,
		Currency:      s.currency,
		Email:         req.Email,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		return PlaceOrderResponse{}, err
	}
	order.PaymentReference = paymentReference

	err = s.orderStore.RunInTransaction(c, func(c context.Context) error {
		err := s.orderStore.Put(c, order.UID, order)
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		placedItems := []checkoutevents.PlacedItem{}
		for i, cartItem := range cart.Items {
			item := OrderItem{
				UID:                 fmt.Sprintf("%s_%d", orderUID, i),
				OrderUID:            orderUID,
				Position:            i,
				MenuItemUID:         cartItem.UID,
				Name:                cartItem.Name,
				Quantity:            cartItem.Quantity,
				PriceCents:          cartItem.UnitPriceCents,
				SpecialInstructions: cartItem.SpecialInstructions,
			}
			err = s.itemStore.Put(c, item.UID, item)
			if err != nil {
				return myerrors.NewInternalError(err)
			}
			placedItems = append(placedItems, checkoutevents.PlacedItem{
				Name:       item.Name,
				Quantity:   item.Quantity,
				PriceCents: item.PriceCents,
			})
		}

		err = s.publisher.Publish(c, checkoutevents.TopicName, checkoutevents.OrderPlaced{
			OrderUID:              order.UID,
			CustomerUID:           order.CustomerUID,
			RestaurantUID:         order.RestaurantUID,
			RestaurantName:        order.RestaurantName,
			CustomerName:          order.CustomerName,
			CustomerEmail:         req.Email,
			Items:                 placedItems,
			SubtotalCents:         order.SubtotalCents,
			DeliveryFeeCents:      order.DeliveryFeeCents,
			TaxCents:              order.TaxCents,
			TipCents:              order.TipCents,
			TotalCents:            order.TotalCents,
			EstimatedDeliveryTime: order.EstimatedDeliveryTime,
			TrackingURL:           trackingURL,
		})
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		return nil
	})
	if err != nil {
		if paymentReference != "" {
			cancelErr := s.payer.Cancel(c, paymentReference)
			if cancelErr != nil {
				s.logger.Log(c, orderUID, mylog.SeverityError, "Error cancelling payment %s of failed order %s: %s", paymentReference, orderUID, cancelErr)
			}
		}
		return PlaceOrderResponse{}, err
	}

	s.logger.Log(c, orderUID, mylog.SeverityInfo, "Placed order %s for restaurant %s (%d cents)", orderUID, order.RestaurantUID, order.TotalCents)

	err = s.carts.clear(c, sessionUID)
	if err != nil {
		s.logger.Log(c, orderUID, mylog.SeverityWarn, "Error clearing cart %s: %s", sessionUID, err)
	}

	mymetrics.OrderPlaced(order.TotalCents)

	return PlaceOrderResponse{
		OrderUID:    orderUID,
		TrackingURL: trackingURL,
		Totals:      totals,
	}, nil
}

func (s *service) getOrder(c context.Context, orderUID string) (OrderDetails, error) {
	order, found, err := s.orderStore.Get(c, orderUID)
	if err != nil {
		return OrderDetails{}, myerrors.NewInternalError(err)
	}
	if !found {
		return OrderDetails{}, myerrors.NewNotFoundError(fmt.Errorf("order %s not found", orderUID))
	}

	items, err := s.itemStore.Query(c, []mystore.Filter{{Field: "OrderUID", Compare: "=", Value: orderUID}}, "Position")
	if err != nil {
		return OrderDetails{}, myerrors.NewInternalError(err)
	}

	return OrderDetails{
		Order: order,
		Items: items,
	}, nil
}
