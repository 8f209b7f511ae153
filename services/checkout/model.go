package checkout

import (
	"time"
)

const (
	OrdersKind     = "orders"
	OrderItemsKind = "order_items"

	StatusPending = "pending"
)

// CartItem and Restaurant are written by the restaurant pages in this wire format.
type CartItem struct {
	UID                 string `json:"id"`
	Name                string `json:"name"`
	UnitPriceCents      int64  `json:"price_cents"`
	Quantity            int    `json:"quantity"`
	SpecialInstructions string `json:"special_instructions,omitempty"`
}

type Restaurant struct {
	UID  string `json:"id"`
	Name string `json:"name"`
}

type Cart struct {
	Items      []CartItem  `json:"checkout_cart"`
	Restaurant *Restaurant `json:"checkout_restaurant"`
}

type TipType string

const (
	TipTypePercentage TipType = "percentage"
	TipTypeFixed      TipType = "fixed"

	DefaultTipPercent = 15
)

type TipPolicy struct {
	Type       TipType
	Percent    int
	FixedCents int64
}

type Totals struct {
	SubtotalCents    int64 `json:"subtotalCents"`
	DeliveryFeeCents int64 `json:"deliveryFeeCents"`
	TaxCents         int64 `json:"taxCents"`
	TipCents         int64 `json:"tipCents"`
	TotalCents       int64 `json:"totalCents"`
}

// CheckoutRequest is the contact form; posted as json or as an html form.
type CheckoutRequest struct {
	Name         string `json:"name" form:"name"`
	Phone        string `json:"phone" form:"phone"`
	Email        string `json:"email" form:"email"`
	Address      string `json:"address" form:"address"`
	City         string `json:"city" form:"city"`
	State        string `json:"state" form:"state"`
	Zip          string `json:"zip" form:"zip"`
	Instructions string `json:"instructions" form:"instructions"`
	TipType      string `json:"tipType" form:"tipType"`
	TipPercent   *int   `json:"tipPercent" form:"tipPercent"`
	Tip          int64  `json:"tip" form:"tip"`
	// PaymentMethod is a provider payment-method id, confirmed server-side when present.
	PaymentMethod string `json:"paymentMethod" form:"paymentMethod"`
}

type DeliveryAddress struct {
	Name                string `json:"name"`
	Phone               string `json:"phone"`
	Email               string `json:"email"`
	Address             string `json:"address"`
	SpecialInstructions string `json:"special_instructions"`
}

type Order struct {
	UID                   string          `json:"id"`
	CustomerUID           string          `json:"customer_id"`
	RestaurantUID         string          `json:"restaurant_id"`
	RestaurantName        string          `json:"restaurant_name"`
	SubtotalCents         int64           `json:"subtotal_cents"`
	DeliveryFeeCents      int64           `json:"delivery_fee_cents"`
	TaxCents              int64           `json:"tax_cents"`
	TipCents              int64           `json:"tip_cents"`
	TotalCents            int64           `json:"total_cents"`
	Status                string          `json:"order_status"`
	CustomerName          string          `json:"customer_name"`
	CustomerPhone         string          `json:"customer_phone"`
	DeliveryAddress       DeliveryAddress `json:"delivery_address"`
	EstimatedDeliveryTime time.Time       `json:"estimated_delivery_time"`
	CreatedAt             time.Time       `json:"created_at"`
	PaymentReference      string          `json:"payment_reference,omitempty"`
}

type OrderItem struct {
	UID                 string `json:"id"`
	OrderUID            string `json:"order_id"`
	Position            int    `json:"position"`
	MenuItemUID         string `json:"menu_item_id"`
	Name                string `json:"name"`
	Quantity            int    `json:"quantity"`
	PriceCents          int64  `json:"price_cents"`
	SpecialInstructions string `json:"special_instructions,omitempty"`
}

type QuoteResponse struct {
	Items      []CartItem  `json:"items"`
	Restaurant *Restaurant `json:"restaurant"`
	Totals     Totals      `json:"totals"`
}

type PlaceOrderResponse struct {
	OrderUID    string `json:"orderUID"`
	TrackingURL string `json:"trackingURL"`
	Totals      Totals `json:"totals"`
}

type OrderDetails struct {
	Order Order       `json:"order"`
	Items []OrderItem `json:"items"`
}
