package myemail

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/MarcGrol/deliverybackend/lib/mylog"
)

// loggingSender is used when no email provider is configured.
type loggingSender struct {
	logger  mylog.Logger
	counter atomic.Int64
}

func newLoggingSender() *loggingSender {
	return &loggingSender{
		logger: mylog.New("email"),
	}
}

func (s *loggingSender) Send(c context.Context, email Email) (string, error) {
	id := fmt.Sprintf("local-%d", s.counter.Add(1))
	s.logger.Log(c, id, mylog.SeverityInfo, "Email from %s to %v: %s (%d bytes of html)", email.From, email.To, email.Subject, len(email.HTML))
	return id, nil
}
