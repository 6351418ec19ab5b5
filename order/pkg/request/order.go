package request

type UpdateOrderStatus struct {
	Status string `validate:"required,oneof=shipped cancelled" json:"status"`
}
