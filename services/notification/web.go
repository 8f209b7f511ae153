package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/deliverybackend/lib/mycontext"
	"github.com/MarcGrol/deliverybackend/lib/myemail"
	"github.com/MarcGrol/deliverybackend/lib/myerrors"
	"github.com/MarcGrol/deliverybackend/lib/myevents"
	"github.com/MarcGrol/deliverybackend/lib/myhttp"
	"github.com/MarcGrol/deliverybackend/lib/mylog"
	"github.com/MarcGrol/deliverybackend/lib/mypubsub"
	"github.com/MarcGrol/deliverybackend/lib/mytime"
	"github.com/MarcGrol/deliverybackend/services/checkout/checkoutevents"
	"github.com/MarcGrol/deliverybackend/services/onboarding/onboardingevents"
)

type webService struct {
	service *service
	logger  mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewService(sender myemail.Sender, subscriber mypubsub.PubSub, nower mytime.Nower, opts Options) *webService {
	return &webService{
		service: newService(sender, subscriber, nower, opts),
		logger:  mylog.New("notification"),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.Handle("/api/notifications/driver-welcome", myhttp.CORS(s.driverWelcomePage())).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/notifications/event", s.handleEventEnvelope()).Methods("POST")

	err := s.service.Subscribe(c)
	if err != nil {
		return err
	}

	return nil
}

// driverWelcomePage answers every failure with a 500 and a plain error message.
func (s *webService) driverWelcomePage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		req := DriverWelcomeRequest{}
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			s.logger.Log(c, "", mylog.SeverityError, "Error parsing driver welcome request: %s", err)
			responseWriter.Write(c, w, http.StatusInternalServerError, FailureResponse{
				Error: fmt.Sprintf("error parsing request: %s", err),
			})
			return
		}

		id, err := s.service.sendDriverWelcome(c, req)
		if err != nil {
			s.logger.Log(c, req.DriverEmail, mylog.SeverityError, "Error sending driver welcome email: %s", err)
			responseWriter.Write(c, w, http.StatusInternalServerError, FailureResponse{
				Error: err.Error(),
			})
			return
		}

		responseWriter.Write(c, w, http.StatusOK, DriverWelcomeResponse{
			Success:       true,
			EmailResponse: EmailResponse{ID: id},
		})
	}
}

func (s *webService) handleEventEnvelope() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		envelope, err := myevents.ParseEventEnvelope(r.Body)
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(err))
			return
		}

		switch envelope.Topic {
		case onboardingevents.TopicName:
			err = onboardingevents.DispatchEvent(c, envelope, s.service)
		case checkoutevents.TopicName:
			err = checkoutevents.DispatchEvent(c, envelope, s.service)
		default:
			err = myerrors.NewNotImplementedError(fmt.Errorf("unsupported topic %s", envelope.Topic))
		}
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{
			Message: "Successfully processed event",
		})
	}
}
