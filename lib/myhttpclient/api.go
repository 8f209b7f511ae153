package myhttpclient

import (
	"context"
)

//go:generate mockgen -source=api.go -package myhttpclient -destination httpsender_mock.go HTTPSender
type HTTPSender interface {
	Send(c context.Context, method string, url string, body []byte) (int, []byte, error)
}

// New returns a json client that authenticates with the given bearer token when not empty.
func New(bearerToken string) HTTPSender {
	return newJSONHTTPClient(bearerToken)
}
