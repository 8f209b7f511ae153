package checkout

import (
	"time"

	"github.com/MarcGrol/deliverybackend/lib/mycache"
	"github.com/MarcGrol/deliverybackend/lib/mylog"
	"github.com/MarcGrol/deliverybackend/lib/mypublisher"
	"github.com/MarcGrol/deliverybackend/lib/mystore"
	"github.com/MarcGrol/deliverybackend/lib/mytime"
	"github.com/MarcGrol/deliverybackend/lib/myuuid"
)

const estimatedDeliveryDuration = 45 * time.Minute

type Options struct {
	CartTTL  time.Duration
	Currency string
	BaseURL  string
}

type service struct {
	orderStore mystore.Store[Order]
	itemStore  mystore.Store[OrderItem]
	carts      cartStore
	payer      Payer
	publisher  mypublisher.Publisher
	nower      mytime.Nower
	uuider     myuuid.UUIDer
	currency   string
	baseURL    string
	logger     mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(orderStore mystore.Store[Order], itemStore mystore.Store[OrderItem], cache mycache.Cache, payer Payer,
	pub mypublisher.Publisher, nower mytime.Nower, uuider myuuid.UUIDer, opts Options) *service {
	return &service{
		orderStore: orderStore,
		itemStore:  itemStore,
		carts:      cartStore{cache: cache, ttl: opts.CartTTL},
		payer:      payer,
		publisher:  pub,
		nower:      nower,
		uuider:     uuider,
		currency:   opts.Currency,
		baseURL:    opts.BaseURL,
		logger:     mylog.New("checkout"),
	}
}
