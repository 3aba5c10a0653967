package domain

import "time"

type OrderType string

const (
	OrderTypeTable    OrderType = "TABLE"
	OrderTypeDelivery OrderType = "DELIVERY"
)

type Priority string

const (
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
)

type Status string

const (
	StatusPending        Status = "PENDING"
	StatusPreparing      Status = "PREPARING"
	StatusReadyToDeliver Status = "READY_TO_DELIVER"
	StatusDone           Status = "DONE"
	StatusDelivered      Status = "DELIVERED"
	StatusServed         Status = "SERVED"
	StatusCanceled       Status = "CANCELED"
)

type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "CASH"
	PaymentCreditCard PaymentMethod = "CREDIT_CARD"
	PaymentDebitCard  PaymentMethod = "DEBIT_CARD"
	PaymentPix        PaymentMethod = "PIX"
	PaymentVoucher    PaymentMethod = "VOUCHER"
)

type Origin string

const (
	OriginLocal    Origin = "LOCAL"
	OriginPhone    Origin = "PHONE"
	OriginWhatsApp Origin = "WHATSAPP"
	OriginIFood    Origin = "IFOOD"
	OriginWebsite  Origin = "WEBSITE"
)

type Category string

const (
	CategoryFood      Category = "FOOD"
	CategoryDrink     Category = "DRINK"
	CategoryDessert   Category = "DESSERT"
	CategoryAppetizer Category = "APPETIZER"
	CategoryOther     Category = "OTHER"
)

func (t OrderType) Valid() bool {
	return t == OrderTypeTable || t == OrderTypeDelivery
}

func (p Priority) Valid() bool {
	return p == PriorityNormal || p == PriorityHigh
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPreparing, StatusReadyToDeliver, StatusDone,
		StatusDelivered, StatusServed, StatusCanceled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed out of s.
func (s Status) Terminal() bool {
	switch s {
	case StatusDone, StatusDelivered, StatusServed, StatusCanceled:
		return true
	}
	return false
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCreditCard, PaymentDebitCard, PaymentPix, PaymentVoucher:
		return true
	}
	return false
}

func (o Origin) Valid() bool {
	switch o {
	case OriginLocal, OriginPhone, OriginWhatsApp, OriginIFood, OriginWebsite:
		return true
	}
	return false
}

func (c Category) Valid() bool {
	switch c {
	case CategoryFood, CategoryDrink, CategoryDessert, CategoryAppetizer, CategoryOther:
		return true
	}
	return false
}

type Address struct {
	Zip          string `json:"zip"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	Complement   string `json:"complement,omitempty"`
}

type OrderItem struct {
	ItemID      string   `json:"itemId"`
	ItemName    string   `json:"itemName"`
	Category    Category `json:"category"`
	Quantity    int      `json:"quantity"`
	UnitPrice   float64  `json:"unitPrice"`
	Ingredients []string `json:"ingredients,omitempty"`
	Observation string   `json:"observation,omitempty"`
}

type Order struct {
	ID                     string        `json:"id"`
	RestaurantID           string        `json:"restaurantId"`
	Number                 int           `json:"number,omitempty"`
	Type                   OrderType     `json:"type"`
	Priority               Priority      `json:"priority"`
	Status                 Status        `json:"status"`
	CancellationReason     string        `json:"cancellationReason,omitempty"`
	Ordered                time.Time     `json:"ordered"`
	StartedPreparing       *time.Time    `json:"startedPreparing"`
	FinishedPreparing      *time.Time    `json:"finishedPreparing"`
	Items                  []OrderItem   `json:"items"`
	TableNumber            *int          `json:"tableNumber,omitempty"`
	Address                *Address      `json:"address,omitempty"`
	WaiterID               string        `json:"waiterId"`
	WaiterName             string        `json:"waiterName"`
	TransactionHandlerID   string        `json:"transactionHandlerId,omitempty"`
	TransactionHandlerName string        `json:"transactionHandlerName,omitempty"`
	Subtotal               float64       `json:"subtotal"`
	Discount               float64       `json:"discount"`
	DeliveryFee            float64       `json:"deliveryFee"`
	Total                  float64       `json:"total"`
	AmountPaid             float64       `json:"amountPaid"`
	Change                 float64       `json:"change"`
	PaymentMethod          PaymentMethod `json:"paymentMethod"`
	IsPaid                 bool          `json:"isPaid"`
	Origin                 Origin        `json:"origin"`
	CustomerCount          *int          `json:"customerCount,omitempty"`
	Version                int           `json:"version"`
}

// CompletionStatus is the status an order reaches once it is both paid and
// finished in the kitchen.
func (o *Order) CompletionStatus() Status {
	if o.Type == OrderTypeDelivery {
		return StatusReadyToDeliver
	}
	return StatusDone
}

func (o *Order) HasDrinks() bool {
	for _, item := range o.Items {
		if item.Category == CategoryDrink {
			return true
		}
	}
	return false
}
