package domain

type Worker struct {
	ID           string `json:"id"`
	RestaurantID string `json:"restaurantId"`
	DisplayName  string `json:"displayName"`
	Role         Role   `json:"role"`
}
