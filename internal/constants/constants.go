package constants

const (
	AppMainStorefront = "storefront"
	AppUserService    = "user-service"
	AppProductService = "product-service"
	AppCartService    = "cart-service"
	AppOrderService   = "order-service"

	AudienceStorefront = "storefront"

	URLUserService    = "http://user-service:8080/users"
	URLProductService = "http://product-service:8080/products"
	URLOrderService   = "http://order-service:8080/orders"

	ChannelStockUpdated = "stock:updated"

	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)
