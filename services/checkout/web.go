package checkout

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	formcodec "github.com/go-playground/form/v4"
	"github.com/gorilla/mux"

	"github.com/MarcGrol/deliverybackend/lib/myauth"
	"github.com/MarcGrol/deliverybackend/lib/mycache"
	"github.com/MarcGrol/deliverybackend/lib/mycontext"
	"github.com/MarcGrol/deliverybackend/lib/myerrors"
	"github.com/MarcGrol/deliverybackend/lib/myhttp"
	"github.com/MarcGrol/deliverybackend/lib/mylog"
	"github.com/MarcGrol/deliverybackend/lib/mypublisher"
	"github.com/MarcGrol/deliverybackend/lib/mystore"
	"github.com/MarcGrol/deliverybackend/lib/mytime"
	"github.com/MarcGrol/deliverybackend/lib/myuuid"
)

type webService struct {
	service *service
	auth    myauth.Authenticator
	baseURL string
	logger  mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewService(orderStore mystore.Store[Order], itemStore mystore.Store[OrderItem], cache mycache.Cache, payer Payer,
	pub mypublisher.Publisher, nower mytime.Nower, uuider myuuid.UUIDer, auth myauth.Authenticator, opts Options) *webService {
	return &webService{
		service: newService(orderStore, itemStore, cache, payer, pub, nower, uuider, opts),
		auth:    auth,
		baseURL: opts.BaseURL,
		logger:  mylog.New("checkout"),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/api/cart/{sessionUID}", s.putCart()).Methods("PUT")
	router.HandleFunc("/api/cart/{sessionUID}", s.getCart()).Methods("GET")
	router.HandleFunc("/api/cart/{sessionUID}/quote", s.quote()).Methods("GET")
	router.HandleFunc("/api/cart/{sessionUID}/checkout", s.placeOrder()).Methods("POST")
	router.HandleFunc("/api/orders/{orderUID}", s.getOrder()).Methods("GET")
	router.HandleFunc("/track-order/{orderUID}", s.trackOrderPage()).Methods("GET")

	err := s.service.CreateTopics(c)
	if err != nil {
		return err
	}

	return nil
}

//go:embed templates
var templateFolder embed.FS
var (
	trackOrderPageTemplate *template.Template
)

func init() {
	trackOrderPageTemplate = template.Must(template.New("track_order.html").Funcs(template.FuncMap{
		"money": formatCents,
	}).ParseFS(templateFolder, "templates/track_order.html"))
}

func formatCents(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}

type tipParams struct {
	TipType    string `form:"tipType"`
	TipPercent *int   `form:"tipPercent"`
	Tip        int64  `form:"tip"`
}

func decodeValues(values url.Values, dest any) error {
	err := formcodec.NewDecoder().Decode(dest, values)
	if err != nil {
		return myerrors.NewInvalidInputError(fmt.Errorf("error decoding form: %s", err))
	}
	return nil
}

func (s *webService) putCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		sessionUID := mux.Vars(r)["sessionUID"]

		cart := Cart{}
		err := json.NewDecoder(r.Body).Decode(&cart)
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(fmt.Errorf("error parsing request: %s", err)))
			return
		}

		err = s.service.saveCart(c, sessionUID, cart)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{
			Message: fmt.Sprintf("Cart %s stored", sessionUID),
		})
	}
}

func (s *webService) getCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		cart, err := s.service.getCart(c, mux.Vars(r)["sessionUID"])
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, cart)
	}
}

func (s *webService) quote() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		params := tipParams{}
		err := decodeValues(r.URL.Query(), &params)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		tip, err := NewTipPolicy(params.TipType, params.TipPercent, params.Tip)
		if err != nil {
			errorWriter.WriteError(c, w, 2, myerrors.NewInvalidInputError(err))
			return
		}

		quote, err := s.service.quote(c, mux.Vars(r)["sessionUID"], tip)
		if err != nil {
			errorWriter.WriteError(c, w, 3, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, quote)
	}
}

// customerUID is empty for guests; a token that is present must be valid.
func (s *webService) customerUID(r *http.Request) (string, error) {
	user, found, err := s.auth.CurrentUser(r)
	if err != nil {
		return "", myerrors.NewUnauthorizedError(err)
	}
	if !found {
		return "", nil
	}
	return user.UID, nil
}

func (s *webService) placeOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		customerUID, err := s.customerUID(r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		formPost := myhttp.IsFormPost(r)

		req := CheckoutRequest{}
		if formPost {
			err = r.ParseForm()
			if err != nil {
				errorWriter.WriteError(c, w, 2, myerrors.NewInvalidInputError(err))
				return
			}
			err = decodeValues(r.PostForm, &req)
		} else {
			err = json.NewDecoder(r.Body).Decode(&req)
			if err != nil {
				err = myerrors.NewInvalidInputError(fmt.Errorf("error parsing request: %s", err))
			}
		}
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		resp, err := s.service.placeOrder(c, mux.Vars(r)["sessionUID"], customerUID, req, myhttp.HostnameWithScheme(r, s.baseURL))
		if err != nil {
			errorWriter.WriteError(c, w, 3, err)
			return
		}

		if formPost {
			http.Redirect(w, r, resp.TrackingURL, http.StatusSeeOther)
			return
		}

		errorWriter.Write(c, w, http.StatusCreated, resp)
	}
}

func (s *webService) getOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		details, err := s.service.getOrder(c, mux.Vars(r)["orderUID"])
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, details)
	}
}

func (s *webService) trackOrderPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		details, err := s.service.getOrder(c, mux.Vars(r)["orderUID"])
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err = trackOrderPageTemplate.Execute(w, details)
		if err != nil {
			errorWriter.WriteError(c, w, 2, myerrors.NewInternalError(err))
			return
		}
	}
}
