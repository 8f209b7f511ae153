package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MarcGrol/deliverybackend/lib/mycache"
	"github.com/MarcGrol/deliverybackend/lib/myerrors"
)

const (
	cartSlot       = "checkout_cart"
	restaurantSlot = "checkout_restaurant"
)

func slotKey(sessionUID string, slot string) string {
	return fmt.Sprintf("cart:%s:%s", sessionUID, slot)
}

// cartStore keeps the two cart slots of a session in the cache.
type cartStore struct {
	cache mycache.Cache
	ttl   time.Duration
}

func (s cartStore) load(c context.Context, sessionUID string) (Cart, error) {
	cart := Cart{}

	err := s.loadSlot(c, sessionUID, cartSlot, &cart.Items)
	if err != nil {
		return cart, err
	}

	err = s.loadSlot(c, sessionUID, restaurantSlot, &cart.Restaurant)
	if err != nil {
		return cart, err
	}

	return cart, nil
}

func (s cartStore) loadSlot(c context.Context, sessionUID string, slot string, dest any) error {
	value, found, err := s.cache.Get(c, slotKey(sessionUID, slot))
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error reading %s of cart %s: %s", slot, sessionUID, err))
	}
	if !found || value == "" {
		return nil
	}

	err = json.Unmarshal([]byte(value), dest)
	if err != nil {
		return myerrors.NewInvalidInputError(fmt.Errorf("malformed %s of cart %s: %s", slot, sessionUID, err))
	}
	return nil
}

func (s cartStore) save(c context.Context, sessionUID string, cart Cart) error {
	items, err := json.Marshal(cart.Items)
	if err != nil {
		return myerrors.NewInternalError(err)
	}
	err = s.cache.Set(c, slotKey(sessionUID, cartSlot), string(items), s.ttl)
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error storing %s of cart %s: %s", cartSlot, sessionUID, err))
	}

	restaurant, err := json.Marshal(cart.Restaurant)
	if err != nil {
		return myerrors.NewInternalError(err)
	}
	err = s.cache.Set(c, slotKey(sessionUID, restaurantSlot), string(restaurant), s.ttl)
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error storing %s of cart %s: %s", restaurantSlot, sessionUID, err))
	}

	return nil
}

func (s cartStore) clear(c context.Context, sessionUID string) error {
	return s.cache.Delete(c, slotKey(sessionUID, cartSlot), slotKey(sessionUID, restaurantSlot))
}
