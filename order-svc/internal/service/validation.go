package service

import (
	"math"
	"strings"

	"barapp/order-svc/internal/domain"
)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func validateNewOrder(o *domain.Order) error {
	if o == nil {
		return invalid("order payload is required")
	}

	var missing []string
	if o.Priority == "" {
		missing = append(missing, "priority")
	}
	if len(o.Items) == 0 {
		missing = append(missing, "items")
	}
	if o.Type == "" {
		missing = append(missing, "type")
	}
	if o.WaiterID == "" {
		missing = append(missing, "waiterId")
	}
	if o.WaiterName == "" {
		missing = append(missing, "waiterName")
	}
	if o.Subtotal <= 0 {
		missing = append(missing, "subtotal")
	}
	if o.Total <= 0 {
		missing = append(missing, "total")
	}
	if o.PaymentMethod == "" {
		missing = append(missing, "paymentMethod")
	}
	if o.Origin == "" {
		missing = append(missing, "origin")
	}
	if len(missing) > 0 {
		return invalid("missing required fields: %s", strings.Join(missing, ", "))
	}

	if !o.Type.Valid() {
		return invalid("invalid order type %q", o.Type)
	}
	if !o.Priority.Valid() {
		return invalid("invalid priority %q", o.Priority)
	}
	if !o.PaymentMethod.Valid() {
		return invalid("invalid payment method %q", o.PaymentMethod)
	}
	if !o.Origin.Valid() {
		return invalid("invalid origin %q", o.Origin)
	}

	if err := validateTarget(o); err != nil {
		return err
	}
	if err := validateItems(o.Items); err != nil {
		return err
	}

	if o.Discount < 0 || o.DeliveryFee < 0 {
		return invalid("discount and deliveryFee must not be negative")
	}
	if o.AmountPaid < 0 {
		return invalid("amountPaid must not be negative")
	}
	if o.CustomerCount != nil && *o.CustomerCount < 1 {
		return invalid("customerCount must be positive")
	}
	return nil
}

// validateTarget enforces that table orders carry only a table number and
// delivery orders only an address.
func validateTarget(o *domain.Order) error {
	switch o.Type {
	case domain.OrderTypeTable:
		if o.TableNumber == nil {
			return invalid("tableNumber is required for table orders")
		}
		if o.Address != nil {
			return invalid("address should not be provided for table orders")
		}
		if *o.TableNumber < 1 {
			return invalid("tableNumber must be positive")
		}
	case domain.OrderTypeDelivery:
		if o.Address == nil {
			return invalid("address is required for delivery orders")
		}
		if o.TableNumber != nil {
			return invalid("tableNumber should not be provided for delivery orders")
		}
		var missing []string
		if strings.TrimSpace(o.Address.Zip) == "" {
			missing = append(missing, "zip")
		}
		if strings.TrimSpace(o.Address.Street) == "" {
			missing = append(missing, "street")
		}
		if strings.TrimSpace(o.Address.Number) == "" {
			missing = append(missing, "number")
		}
		if strings.TrimSpace(o.Address.Neighborhood) == "" {
			missing = append(missing, "neighborhood")
		}
		if strings.TrimSpace(o.Address.City) == "" {
			missing = append(missing, "city")
		}
		if len(missing) > 0 {
			return invalid("missing required address fields: %s", strings.Join(missing, ", "))
		}
	}
	return nil
}

func validateItems(items []domain.OrderItem) error {
	for i, item := range items {
		var missing []string
		if item.ItemID == "" {
			missing = append(missing, "itemId")
		}
		if item.ItemName == "" {
			missing = append(missing, "itemName")
		}
		if item.Quantity == 0 {
			missing = append(missing, "quantity")
		}
		if len(missing) > 0 {
			return invalid("item %d: missing required fields: %s", i, strings.Join(missing, ", "))
		}
		if item.Quantity < 0 {
			return invalid("item %d: quantity must be positive", i)
		}
		if item.UnitPrice < 0 {
			return invalid("item %d: unitPrice must not be negative", i)
		}
		if item.Category != "" && !item.Category.Valid() {
			return invalid("item %d: invalid category %q", i, item.Category)
		}
	}
	return nil
}
