package notification

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/MarcGrol/deliverybackend/services/checkout/checkoutevents"
)

const (
	driverWelcomeTemplateName     = "driver_welcome"
	orderConfirmationTemplateName = "order_confirmation"

	driverWelcomeSubject = "🎉 You're Approved! Complete Your Onboarding"
)

//go:embed templates
var templateFolder embed.FS
var (
	driverWelcomeTemplate     *template.Template
	orderConfirmationTemplate *template.Template
)

func init() {
	funcs := template.FuncMap{
		"money": func(cents int64) string {
			return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
		},
	}
	driverWelcomeTemplate = template.Must(template.New("driver_welcome.html").Funcs(funcs).ParseFS(templateFolder, "templates/driver_welcome.html"))
	orderConfirmationTemplate = template.Must(template.New("order_confirmation.html").Funcs(funcs).ParseFS(templateFolder, "templates/order_confirmation.html"))
}

type driverWelcomeData struct {
	DriverName     string
	OnboardingURL  string
	DriverGuideURL string
	Year           int
}

type orderConfirmationData struct {
	Order checkoutevents.OrderPlaced
	ETA   string
	Year  int
}

func renderDriverWelcome(data driverWelcomeData) (string, error) {
	buf := bytes.Buffer{}
	err := driverWelcomeTemplate.Execute(&buf, data)
	if err != nil {
		return "", fmt.Errorf("error rendering driver welcome email: %s", err)
	}
	return buf.String(), nil
}

func renderOrderConfirmation(order checkoutevents.OrderPlaced, now time.Time) (string, error) {
	buf := bytes.Buffer{}
	err := orderConfirmationTemplate.Execute(&buf, orderConfirmationData{
		Order: order,
		ETA:   order.EstimatedDeliveryTime.Format("15:04"),
		Year:  now.Year(),
	})
	if err != nil {
		return "", fmt.Errorf("error rendering order confirmation email: %s", err)
	}
	return buf.String(), nil
}
