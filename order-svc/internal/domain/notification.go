package domain

import "time"

type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleManager   Role = "MANAGER"
	RoleChef      Role = "CHEF"
	RoleBartender Role = "BARTENDER"
	RoleWaiter    Role = "WAITER"
	RoleDelivery  Role = "DELIVERY"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleChef, RoleBartender, RoleWaiter, RoleDelivery:
		return true
	}
	return false
}

const (
	EventNewOrder          = "newOrder"
	EventOrderStatusChange = "orderStatusChange"
	EventAnalyticsUpdate   = "analyticsUpdate"
	EventStartPreparing    = "startPreparing"
	EventFinishPreparing   = "finishPreparing"
)

// Event is what connected terminals receive. Role is empty for broadcasts
// addressed to every role of the restaurant.
type Event struct {
	Name         string    `json:"event"`
	RestaurantID string    `json:"restaurantId"`
	Role         Role      `json:"role,omitempty"`
	Data         any       `json:"data"`
	Timestamp    time.Time `json:"timestamp"`
}

type OrderNotice struct {
	OrderID  string   `json:"orderId"`
	Order    *Order   `json:"orderData"`
	Message  string   `json:"message"`
	Priority Priority `json:"priority"`
}

type StatusChange struct {
	OrderID string `json:"orderId"`
	Status  Status `json:"status"`
	Order   *Order `json:"orderData"`
}

type AnalyticsUpdate struct {
	Date        string `json:"date"`
	TodayOrders int    `json:"todayOrders"`
}
