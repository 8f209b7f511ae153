package onboarding

import (
	"github.com/MarcGrol/deliverybackend/lib/mylog"
	"github.com/MarcGrol/deliverybackend/lib/mypublisher"
	"github.com/MarcGrol/deliverybackend/lib/mystore"
	"github.com/MarcGrol/deliverybackend/lib/mytime"
)

type service struct {
	progressStore mystore.Store[Progress]
	publisher     mypublisher.Publisher
	nower         mytime.Nower
	logger        mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(store mystore.Store[Progress], nower mytime.Nower, pub mypublisher.Publisher) *service {
	return &service{
		progressStore: store,
		publisher:     pub,
		nower:         nower,
		logger:        mylog.New("onboarding"),
	}
}
