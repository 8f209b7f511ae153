package notification

import (
	"strings"

	"github.com/MarcGrol/deliverybackend/lib/myemail"
	"github.com/MarcGrol/deliverybackend/lib/mylog"
	"github.com/MarcGrol/deliverybackend/lib/mypubsub"
	"github.com/MarcGrol/deliverybackend/lib/mytime"
)

type Options struct {
	FromEmail      string
	BaseURL        string
	OnboardingURL  string
	DriverGuideURL string
}

type service struct {
	sender         myemail.Sender
	subscriber     mypubsub.PubSub
	nower          mytime.Nower
	fromEmail      string
	baseURL        string
	onboardingURL  string
	driverGuideURL string
	logger         mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(sender myemail.Sender, subscriber mypubsub.PubSub, nower mytime.Nower, opts Options) *service {
	baseURL := strings.TrimSuffix(opts.BaseURL, "/")
	return &service{
		sender:         sender,
		subscriber:     subscriber,
		nower:          nower,
		fromEmail:      opts.FromEmail,
		baseURL:        baseURL,
		onboardingURL:  absoluteURL(baseURL, opts.OnboardingURL),
		driverGuideURL: absoluteURL(baseURL, opts.DriverGuideURL),
		logger:         mylog.New("notification"),
	}
}

// absoluteURL resolves site-relative links, mail clients cannot.
func absoluteURL(baseURL string, url string) string {
	if strings.HasPrefix(url, "/") {
		return baseURL + url
	}
	return url
}
