package domain

import "time"

type BusinessItem struct {
	ItemID        string   `json:"itemId"`
	ItemName      string   `json:"itemName"`
	Category      Category `json:"category"`
	Quantity      int      `json:"quantity"`
	UnitPrice     float64  `json:"unitPrice"`
	TotalPrice    float64  `json:"totalPrice"`
	Modifications string   `json:"modifications,omitempty"`
}

// BusinessRecord is the analytics snapshot of one finished or canceled order.
type BusinessRecord struct {
	ID                     string         `json:"id"`
	OriginalOrderID        string         `json:"originalOrderId"`
	RestaurantID           string         `json:"restaurantId"`
	Date                   time.Time      `json:"date"`
	WeekDay                int            `json:"weekDay"`
	HourSlot               int            `json:"hourSlot"`
	Subtotal               float64        `json:"subtotal"`
	Discount               float64        `json:"discount"`
	DeliveryFee            *float64       `json:"deliveryFee,omitempty"`
	Total                  float64        `json:"total"`
	CustomerCount          *int           `json:"customerCount,omitempty"`
	PaymentMethod          PaymentMethod  `json:"paymentMethod"`
	Origin                 Origin         `json:"origin"`
	Items                  []BusinessItem `json:"itemsDenormalized"`
	TotalItemsCount        int            `json:"totalItemsCount"`
	TimeToStartPreparing   int            `json:"timeToStartPreparing"`
	TimePreparing          int            `json:"timePreparing"`
	TimeToDelivery         *int           `json:"timeToDelivery,omitempty"`
	OrderType              OrderType      `json:"orderType"`
	WaiterID               string         `json:"waiterId"`
	WaiterName             string         `json:"waiterName"`
	TransactionHandlerID   string         `json:"transactionHandlerId,omitempty"`
	TransactionHandlerName string         `json:"transactionHandlerName,omitempty"`
	DeliveryNeighborhood   string         `json:"deliveryNeighborhood,omitempty"`
	IsCanceled             bool           `json:"isCanceled"`
	CancellationReason     string         `json:"cancellationReason,omitempty"`
}

type DailySummary struct {
	Date             string  `json:"date"`
	TotalRevenue     float64 `json:"totalRevenue"`
	TotalOrders      int     `json:"totalOrders"`
	TotalDiscount    float64 `json:"totalDiscount"`
	TotalDeliveryFee float64 `json:"totalDeliveryFee"`
	AverageTicket    float64 `json:"averageTicket"`
}

type WaiterTicket struct {
	WaiterID      string  `json:"waiterId"`
	WaiterName    string  `json:"waiterName"`
	TotalRevenue  float64 `json:"totalRevenue"`
	TotalOrders   int     `json:"totalOrders"`
	AverageTicket float64 `json:"averageTicket"`
}

type OriginSales struct {
	Origin        Origin  `json:"origin"`
	TotalRevenue  float64 `json:"totalRevenue"`
	TotalOrders   int     `json:"totalOrders"`
	AverageTicket float64 `json:"averageTicket"`
}

type TopItem struct {
	ItemID         string   `json:"itemId"`
	ItemName       string   `json:"itemName"`
	Category       Category `json:"category,omitempty"`
	TotalUnitsSold float64  `json:"totalUnitsSold"`
}

// IntRange and FloatRange are inclusive. A nil To means To == From.
type IntRange struct {
	From int
	To   *int
}

func (r IntRange) Bounds() (int, int) {
	if r.To == nil {
		return r.From, r.From
	}
	return r.From, *r.To
}

type FloatRange struct {
	From float64
	To   *float64
}

func (r FloatRange) Bounds() (float64, float64) {
	if r.To == nil {
		return r.From, r.From
	}
	return r.From, *r.To
}

type TimeRange struct {
	From time.Time
	To   time.Time
}

// BusinessFilter selects business records. Every nil field matches all rows.
type BusinessFilter struct {
	Date                   *TimeRange
	WeekDay                *int
	HourSlot               *IntRange
	Discount               *FloatRange
	DeliveryFee            *FloatRange
	CustomerCount          *IntRange
	PaymentMethod          *PaymentMethod
	Origin                 *Origin
	TotalItems             *IntRange
	TimeToStartPreparing   *IntRange
	TimePreparing          *IntRange
	TimeToDelivery         *IntRange
	WaiterID               *string
	WaiterName             *string
	TransactionHandlerID   *string
	TransactionHandlerName *string
	DeliveryNeighborhood   *string
	IsCanceled             *bool
	CancellationReason     *string
}

type BusinessMessage struct {
	Type         string         `json:"type"`
	RestaurantID string         `json:"restaurant_id"`
	OrderID      string         `json:"order_id"`
	Record       BusinessRecord `json:"record"`
	Timestamp    time.Time      `json:"timestamp"`
}

const BusinessMessageRecorded = "business_recorded"
