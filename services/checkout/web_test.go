package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/deliverybackend/lib/myauth"
	"github.com/MarcGrol/deliverybackend/lib/mycache"
	"github.com/MarcGrol/deliverybackend/lib/myerrors"
	"github.com/MarcGrol/deliverybackend/lib/mypublisher"
	"github.com/MarcGrol/deliverybackend/lib/mystore"
	"github.com/MarcGrol/deliverybackend/lib/mytime"
	"github.com/MarcGrol/deliverybackend/lib/myuuid"
	"github.com/MarcGrol/deliverybackend/services/checkout/checkoutevents"
)

const (
	jwtSecret  = "test-secret"
	sessionUID = "session-1"
	orderUID   = "order-1"
	baseURL    = "http://localhost:8080"
)

var (
	restaurant = Restaurant{UID: "rest-1", Name: "Pasta Palace"}
	cartItems  = []CartItem{
		{UID: "menu-1", Name: "Lasagne", UnitPriceCents: 1299, Quantity: 2},
		{UID: "menu-2", Name: "Tiramisu", UnitPriceCents: 499, Quantity: 1, SpecialInstructions: "extra cocoa"},
	}
	expectedTotals = Totals{SubtotalCents: 3097, DeliveryFeeCents: 300, TaxCents: 272, TipCents: 465, TotalCents: 4134}
	contact        = `{"name":"Sam","phone":"555-0100","email":"sam@example.com","address":"1 Main St","city":"Springfield","state":"IL","zip":"62701"}`
)

type mocks struct {
	payer     *MockPayer
	publisher *mypublisher.MockPublisher
	nower     *mytime.MockNower
	uuider    *myuuid.MockUUIDer
}

func newRequest(t *testing.T, method string, url string, body string) *http.Request {
	request, err := http.NewRequest(method, url, strings.NewReader(body))
	assert.NoError(t, err)
	request.Header.Set("Content-Type", "application/json")
	return request
}

func storeCart(t *testing.T, router *mux.Router) {
	body, err := json.Marshal(Cart{Items: cartItems, Restaurant: &restaurant})
	assert.NoError(t, err)

	response := httptest.NewRecorder()
	router.ServeHTTP(response, newRequest(t, http.MethodPut, "/api/cart/"+sessionUID, string(body)))
	assert.Equal(t, http.StatusOK, response.Code)
}

func expectOrderPlaced(m mocks, customerUID string) *gomock.Call {
	return m.publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, checkoutevents.OrderPlaced{
		OrderUID:       orderUID,
		CustomerUID:    customerUID,
		RestaurantUID:  restaurant.UID,
		RestaurantName: restaurant.Name,
		CustomerName:   "Sam",
		CustomerEmail:  "sam@example.com",
		Items: []checkoutevents.PlacedItem{
			{Name: "Lasagne", Quantity: 2, PriceCents: 1299},
			{Name: "Tiramisu", Quantity: 1, PriceCents: 499},
		},
		SubtotalCents:         3097,
		DeliveryFeeCents:      300,
		TaxCents:              272,
		TipCents:              465,
		TotalCents:            4134,
		EstimatedDeliveryTime: mytime.ExampleTime.Add(45 * time.Minute),
		TrackingURL:           baseURL + "/track-order/" + orderUID,
	})
}

func expectAuthorized(m mocks) {
	m.uuider.EXPECT().Create().Return(orderUID)
	m.nower.EXPECT().Now().Return(mytime.ExampleTime)
	m.payer.EXPECT().Authorize(gomock.Any(), Authorization{
		OrderUID:    orderUID,
		AmountCents: 4134,
		Currency:    "usd",
		Email:       "sam@example.com",
	}).Return("pi_123", nil)
}

func TestCheckoutService(t *testing.T) {

	t.Run("Store and fetch cart", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, _, _, _ := setup(t, ctrl)

		// given
		storeCart(t, router)

		// when
		response := httptest.NewRecorder()
		router.ServeHTTP(response, newRequest(t, http.MethodGet, "/api/cart/"+sessionUID, ""))

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		cart := Cart{}
		err := json.Unmarshal(response.Body.Bytes(), &cart)
		assert.NoError(t, err)
		assert.Equal(t, cartItems, cart.Items)
		assert.Equal(t, restaurant, *cart.Restaurant)
	})

	t.Run("Store cart with invalid quantity", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, _, _, _ := setup(t, ctrl)

		// when
		response := httptest.NewRecorder()
		router.ServeHTTP(response, newRequest(t, http.MethodPut, "/api/cart/"+sessionUID,
			`{"checkout_cart":[{"id":"menu-1","name":"Lasagne","price_cents":1299,"quantity":0}]}`))

		// then
		assert.Equal(t, http.StatusBadRequest, response.Code)
	})

	t.Run("Store cart with overflowing price", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, _, _, _ := setup(t, ctrl)

		// when
		response := httptest.NewRecorder()
		router.ServeHTTP(response, newRequest(t, http.MethodPut, "/api/cart/"+sessionUID,
			`{"checkout_cart":[{"id":"menu-1","name":"Lasagne","price_cents":4611686018427387904,"quantity":4}]}`))

		// then
		assert.Equal(t, http.StatusBadRequest, response.Code)
	})

	t.Run("Quote with excessive tip percent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, _, _, _ := setup(t, ctrl)

		// given
		storeCart(t, router)

		// when
		response := httptest.NewRecorder()
		router.ServeHTTP(response, newRequest(t, http.MethodGet, "/api/cart/"+sessionUID+"/quote?tipType=percentage&tipPercent=4611686018427387904", ""))

		// then
		assert.Equal(t, http.StatusBadRequest, response.Code)
	})

	t.Run("Quote with default tip", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, _, _, _ := setup(t, ctrl)

		// given
		storeCart(t, router)

		// when
		response := httptest.NewRecorder()
		router.ServeHTTP(response, newRequest(t, http.MethodGet, "/api/cart/"+sessionUID+"/quote", ""))

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		quote := QuoteResponse{}
		err := json.Unmarshal(response.Body.Bytes(), &quote)
		assert.NoError(t, err)
		assert.Equal(t, expectedTotals, quote.Totals)
	})

	t.Run("Quote with fixed tip", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, _, _, _ := setup(t, ctrl)

		// given
		storeCart(t, router)

		// when
		response := httptest.NewRecorder()
		router.ServeHTTP(response, newRequest(t, http.MethodGet, "/api/cart/"+sessionUID+"/quote?tipType=fixed&tip=500", ""))

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		quote := QuoteResponse{}
		err := json.Unmarshal(response.Body.Bytes(), &quote)
		assert.NoError(t, err)
		assert.Equal(t, int64(500), quote.Totals.TipCents)
		assert.Equal(t, int64(4169), quote.Totals.TotalCents)
	})

	t.Run("Quote with unknown tip type", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, _, _, _ := setup(t, ctrl)

		// when
		response := httptest.NewRecorder()
		router.ServeHTTP(response, newRequest(t, http.MethodGet, "/api/cart/"+sessionUID+"/quote?tipType=generous", ""))

		// then
		assert.Equal(t, http.StatusBadRequest, response.Code)
	})

	t.Run("Quote with malformed cached cart", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, cache, _, _, _ := setup(t, ctrl)

		// given
		err := cache.Set(ctx, slotKey(sessionUID, cartSlot), "{not json", time.Hour)
		assert.NoError(t, err)

		// when
		response := httptest.NewRecorder()
		router.ServeHTTP(response, newRequest(t, http.MethodGet, "/api/cart/"+sessionUID+"/quote", ""))

		// then
		assert.Equal(t, http.StatusBadRequest, response.Code)
	})

	t.Run("Place order as guest", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, cache, orderStore, itemStore, m := setup(t, ctrl)

		// given
		storeCart(t, router)
		expectAuthorized(m)
		expectOrderPlaced(m, "").Return(nil)

		// when
		response := httptest.NewRecorder()
		router.ServeHTTP(response, newRequest(t, http.MethodPost, "/api/cart/"+sessionUID+"/checkout", contact))

		// then
		assert.Equal(t, http.StatusCreated, response.Code)
		resp := PlaceOrderResponse{}
		err := json.Unmarshal(response.Body.Bytes(), &resp)
		assert.NoError(t, err)
		assert.Equal(t, PlaceOrderResponse{
			OrderUID:    orderUID,
			TrackingURL: baseURL + "/track-order/" + orderUID,
			Totals:      expectedTotals,
		}, resp)

		order, found, _ := orderStore.Get(ctx, orderUID)
		assert.True(t, found)
		assert.Equal(t, StatusPending, order.Status)
		assert.Equal(t, "", order.CustomerUID)
		assert.Equal(t, "1 Main St, Springfield, IL 62701", order.DeliveryAddress.Address)
		assert.Equal(t, mytime.ExampleTime.Add(45*time.Minute), order.EstimatedDeliveryTime)
		assert.Equal(t, "pi_123", order.PaymentReference)

		items, _ := itemStore.Query(ctx, []mystore.Filter{{Field: "OrderUID", Compare: "=", Value: orderUID}}, "Position")
		assert.Len(t, items, 2)
		assert.Equal(t, "menu-2", items[1].MenuItemUID)
		assert.Equal(t, "extra cocoa", items[1].SpecialInstructions)

		_, found, _ = cache.Get(ctx, slotKey(sessionUID, cartSlot))
		assert.False(t, found)
		_, found, _ = cache.Get(ctx, slotKey(sessionUID, restaurantSlot))
		assert.False(t, found)
	})

	t.Run("Place order as signed-in customer", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, _, orderStore, _, m := setup(t, ctrl)

		// given
		storeCart(t, router)
		expectAuthorized(m)
		expectOrderPlaced(m, "customer-1").Return(nil)

		token, err := myauth.NewToken(jwtSecret, myauth.User{UID: "customer-1"}, time.Now(), time.Hour)
		assert.NoError(t, err)
		request := newRequest(t, http.MethodPost, "/api/cart/"+sessionUID+"/checkout", contact)
		request.Header.Set("Authorization", "Bearer "+token)

		// when
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, http.StatusCreated, response.Code)
		order, _, _ := orderStore.Get(ctx, orderUID)
		assert.Equal(t, "customer-1", order.CustomerUID)
	})

	t.Run("Place order with invalid token", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, _, _, _ := setup(t, ctrl)

		// given
		storeCart(t, router)
		request := newRequest(t, http.MethodPost, "/api/cart/"+sessionUID+"/checkout", contact)
		request.Header.Set("Authorization", "Bearer garbage")

		// when
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, http.StatusUnauthorized, response.Code)
	})

	t.Run("Place order from html form", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, _, _, m := setup(t, ctrl)

		// given
		storeCart(t, router)
		expectAuthorized(m)
		expectOrderPlaced(m, "").Return(nil)

		form := url.Values{}
		form.Set("name", "Sam")
		form.Set("phone", "555-0100")
		form.Set("email", "sam@example.com")
		form.Set("address", "1 Main St")
		form.Set("city", "Springfield")
		form.Set("state", "IL")
		form.Set("zip", "62701")
		form.Set("tipType", "percentage")
		form.Set("tipPercent", "15")
		request := newRequest(t, http.MethodPost, "/api/cart/"+sessionUID+"/checkout", form.Encode())
		request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		// when
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, http.StatusSeeOther, response.Code)
		assert.Equal(t, baseURL+"/track-order/"+orderUID, response.Header().Get("Location"))
	})

	t.Run("Place order with empty cart", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, _, orderStore, _, _ := setup(t, ctrl)

		// when
		response := httptest.NewRecorder()
		router.ServeHTTP(response, newRequest(t, http.MethodPost, "/api/cart/"+sessionUID+"/checkout", contact))

		// then
		assert.Equal(t, http.StatusBadRequest, response.Code)
		orders, _ := orderStore.List(ctx)
		assert.Empty(t, orders)
	})

	t.Run("Place order without restaurant", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, _, orderStore, _, _ := setup(t, ctrl)

		// given
		response := httptest.NewRecorder()
		router.ServeHTTP(response, newRequest(t, http.MethodPut, "/api/cart/"+sessionUID,
			`{"checkout_cart":[{"id":"menu-1","name":"Lasagne","price_cents":1299,"quantity":1}]}`))
		assert.Equal(t, http.StatusOK, response.Code)

		// when
		response = httptest.NewRecorder()
		router.ServeHTTP(response, newRequest(t, http.MethodPost, "/api/cart/"+sessionUID+"/checkout", contact))

		// then
		assert.Equal(t, http.StatusBadRequest, response.Code)
		orders, _ := orderStore.List(ctx)
		assert.Empty(t, orders)
	})

	t.Run("Place order with incomplete contact", func(t *testing.T) {
		testCases := []struct {
			name string
			body string
		}{
			{name: "without name", body: `{"phone":"555-0100","address":"1 Main St","city":"Springfield","state":"IL","zip":"62701"}`},
			{name: "without phone", body: `{"name":"Sam","address":"1 Main St","city":"Springfield","state":"IL","zip":"62701"}`},
			{name: "without address", body: `{"name":"Sam","phone":"555-0100","city":"Springfield","state":"IL","zip":"62701"}`},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				// setup
				ctx, router, _, orderStore, _, _ := setup(t, ctrl)

				// given
				storeCart(t, router)

				// when
				response := httptest.NewRecorder()
				router.ServeHTTP(response, newRequest(t, http.MethodPost, "/api/cart/"+sessionUID+"/checkout", tc.body))

				// then
				assert.Equal(t, http.StatusBadRequest, response.Code)
				orders, _ := orderStore.List(ctx)
				assert.Empty(t, orders)
			})
		}
	})

	t.Run("Place order with failing outbox cancels payment", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, cache, orderStore, itemStore, m := setup(t, ctrl)

		// given
		storeCart(t, router)
		expectAuthorized(m)
		expectOrderPlaced(m, "").Return(fmt.Errorf("outbox unavailable"))
		m.payer.EXPECT().Cancel(gomock.Any(), "pi_123").Return(nil)

		// when
		response := httptest.NewRecorder()
		router.ServeHTTP(response, newRequest(t, http.MethodPost, "/api/cart/"+sessionUID+"/checkout", contact))

		// then
		assert.Equal(t, http.StatusInternalServerError, response.Code)
		orders, _ := orderStore.List(ctx)
		assert.Empty(t, orders)
		items, _ := itemStore.List(ctx)
		assert.Empty(t, items)
		_, found, _ := cache.Get(ctx, slotKey(sessionUID, cartSlot))
		assert.True(t, found)
	})

	t.Run("Place order with declined payment method", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, cache, orderStore, _, m := setup(t, ctrl)

		// given
		storeCart(t, router)
		m.uuider.EXPECT().Create().Return(orderUID)
		m.nower.EXPECT().Now().Return(mytime.ExampleTime)
		m.payer.EXPECT().Authorize(gomock.Any(), Authorization{
			OrderUID:      orderUID,
			AmountCents:   4134,
			Currency:      "usd",
			Email:         "sam@example.com",
			PaymentMethod: "pm_card_chargeDeclined",
		}).Return("", myerrors.NewPaymentRequiredError(fmt.Errorf("declined")))

		// when
		body := strings.TrimSuffix(contact, "}") + `,"paymentMethod":"pm_card_chargeDeclined"}`
		response := httptest.NewRecorder()
		router.ServeHTTP(response, newRequest(t, http.MethodPost, "/api/cart/"+sessionUID+"/checkout", body))

		// then
		assert.Equal(t, http.StatusPaymentRequired, response.Code)
		orders, _ := orderStore.List(ctx)
		assert.Empty(t, orders)
		_, found, _ := cache.Get(ctx, slotKey(sessionUID, cartSlot))
		assert.True(t, found)
	})

	t.Run("Get order with items", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, _, orderStore, itemStore, _ := setup(t, ctrl)

		// given
		orderStore.Put(ctx, orderUID, Order{UID: orderUID, RestaurantName: restaurant.Name, Status: StatusPending, TotalCents: 4134})
		itemStore.Put(ctx, orderUID+"_1", OrderItem{UID: orderUID + "_1", OrderUID: orderUID, Position: 1, Name: "Tiramisu"})
		itemStore.Put(ctx, orderUID+"_0", OrderItem{UID: orderUID + "_0", OrderUID: orderUID, Position: 0, Name: "Lasagne"})
		itemStore.Put(ctx, "other_0", OrderItem{UID: "other_0", OrderUID: "other", Position: 0, Name: "Soup"})

		// when
		response := httptest.NewRecorder()
		router.ServeHTTP(response, newRequest(t, http.MethodGet, "/api/orders/"+orderUID, ""))

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		details := OrderDetails{}
		err := json.Unmarshal(response.Body.Bytes(), &details)
		assert.NoError(t, err)
		assert.Equal(t, orderUID, details.Order.UID)
		assert.Len(t, details.Items, 2)
		assert.Equal(t, "Lasagne", details.Items[0].Name)
		assert.Equal(t, "Tiramisu", details.Items[1].Name)
	})

	t.Run("Get unknown order", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, _, _, _ := setup(t, ctrl)

		// when
		response := httptest.NewRecorder()
		router.ServeHTTP(response, newRequest(t, http.MethodGet, "/api/orders/unknown", ""))

		// then
		assert.Equal(t, http.StatusNotFound, response.Code)
	})

	t.Run("Track order page", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, _, orderStore, _, _ := setup(t, ctrl)

		// given
		orderStore.Put(ctx, orderUID, Order{UID: orderUID, RestaurantName: restaurant.Name, Status: StatusPending, TotalCents: 4134,
			EstimatedDeliveryTime: mytime.ExampleTime})

		// when
		response := httptest.NewRecorder()
		router.ServeHTTP(response, newRequest(t, http.MethodGet, "/track-order/"+orderUID, ""))

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		assert.Equal(t, "text/html; charset=utf-8", response.Header().Get("Content-Type"))
		assert.Contains(t, response.Body.String(), "Pasta Palace")
		assert.Contains(t, response.Body.String(), "$41.34")
	})
}

func setup(t *testing.T, ctrl *gomock.Controller) (context.Context, *mux.Router, mycache.Cache, mystore.Store[Order], mystore.Store[OrderItem], mocks) {
	c := context.TODO()

	backend := mystore.NewInMemoryBackend()
	orderStore, err := mystore.New[Order](c, backend, OrdersKind)
	assert.NoError(t, err)
	itemStore, err := mystore.New[OrderItem](c, backend, OrderItemsKind)
	assert.NoError(t, err)
	cache, _, err := mycache.New(c, mycache.Options{})
	assert.NoError(t, err)

	m := mocks{
		payer:     NewMockPayer(ctrl),
		publisher: mypublisher.NewMockPublisher(ctrl),
		nower:     mytime.NewMockNower(ctrl),
		uuider:    myuuid.NewMockUUIDer(ctrl),
	}

	sut := NewService(orderStore, itemStore, cache, m.payer, m.publisher, m.nower, m.uuider, myauth.New(jwtSecret), Options{
		CartTTL:  time.Hour,
		Currency: "usd",
		BaseURL:  baseURL,
	})
	router := mux.NewRouter()

	// These are called by the following call to RegisterEndpoints()
	m.publisher.EXPECT().CreateTopic(gomock.Any(), checkoutevents.TopicName).Return(nil)

	err = sut.RegisterEndpoints(c, router)
	assert.NoError(t, err)

	return c, router, cache, orderStore, itemStore, m
}
