package onboarding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/deliverybackend/lib/myauth"
	"github.com/MarcGrol/deliverybackend/lib/mycontext"
	"github.com/MarcGrol/deliverybackend/lib/myerrors"
	"github.com/MarcGrol/deliverybackend/lib/myhttp"
	"github.com/MarcGrol/deliverybackend/lib/mylog"
	"github.com/MarcGrol/deliverybackend/lib/mypublisher"
	"github.com/MarcGrol/deliverybackend/lib/mystore"
	"github.com/MarcGrol/deliverybackend/lib/mytime"
)

type webService struct {
	service *service
	auth    myauth.Authenticator
	logger  mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewService(store mystore.Store[Progress], nower mytime.Nower, pub mypublisher.Publisher, auth myauth.Authenticator) *webService {
	return &webService{
		service: newService(store, nower, pub),
		auth:    auth,
		logger:  mylog.New("onboarding"),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/api/driver/onboarding", s.getProgressPage()).Methods("GET")
	router.HandleFunc("/api/driver/onboarding", s.startPage()).Methods("POST")
	router.HandleFunc("/api/driver/onboarding/next", s.nextPage()).Methods("POST")

	err := s.service.CreateTopics(c)
	if err != nil {
		return err
	}

	return nil
}

func (s *webService) currentUser(r *http.Request) (myauth.User, error) {
	user, found, err := s.auth.CurrentUser(r)
	if err != nil {
		return myauth.User{}, myerrors.NewUnauthorizedError(err)
	}
	if !found {
		return myauth.User{}, myerrors.NewUnauthorizedError(fmt.Errorf("missing bearer token"))
	}
	return user, nil
}

func (s *webService) getProgressPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		user, err := s.currentUser(r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		wizard, err := s.service.getWizard(c, user)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, wizard)
	}
}

func (s *webService) startPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		user, err := s.currentUser(r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		req := StartRequest{}
		err = json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			errorWriter.WriteError(c, w, 2, myerrors.NewInvalidInputError(fmt.Errorf("error parsing request: %s", err)))
			return
		}

		wizard, created, err := s.service.startOnboarding(c, user, req)
		if err != nil {
			errorWriter.WriteError(c, w, 3, err)
			return
		}

		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		errorWriter.Write(c, w, status, wizard)
	}
}

func (s *webService) nextPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		user, err := s.currentUser(r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		req := AdvanceRequest{}
		err = json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			errorWriter.WriteError(c, w, 2, myerrors.NewInvalidInputError(fmt.Errorf("error parsing request: %s", err)))
			return
		}
		if req.CurrentStepIndex == nil {
			errorWriter.WriteError(c, w, 2, myerrors.NewInvalidInputErrorf("missing currentStepIndex"))
			return
		}

		wizard, err := s.service.advance(c, user, *req.CurrentStepIndex)
		if err != nil {
			errorWriter.WriteError(c, w, 3, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, wizard)
	}
}
