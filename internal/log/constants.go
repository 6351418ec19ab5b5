package log

const (
	KeyAppName          = "app"
	KeyTag              = "tag"
	KeyProcess          = "process"
	KeyConfig           = "config"
	KeyEmail            = "email"
	KeyToken            = "token"
	KeyRequestID        = "requestId"
	KeyRequest          = "request"
	KeyRequestBody      = "requestBody"
	KeyRequestHeader    = "requestHeader"
	KeyRequestHost      = "host"
	KeyRequestIp        = "requesterIP"
	KeyRequestMethod    = "requestMethod"
	KeyRequestURI       = "requestURI"
	KeyRequestURL       = "requestURL"
	KeyTraceID          = "traceId"
	KeySpanID           = "spanId"
	KeyUserID           = "userId"
	KeyRole             = "role"
	KeyProductID        = "productId"
	KeyCategoryID       = "categoryId"
	KeyOrderID          = "orderId"
	KeyOrderStatus      = "orderStatus"
	KeyCart             = "cart"
	KeyCartKey          = "cartKey"
	KeyCartLines        = "cartLines"
	KeyCartLineQuantity = "cartLineQuantity"
	KeyCartTotal        = "cartTotal"
	KeyWishlist         = "wishlist"
	KeyProduct          = "product"
	KeyProducts         = "products"
	KeyCategory         = "category"
	KeyOrder            = "order"
	KeyOrders           = "orders"
	KeyOrderItems       = "orderItems"
	KeyStockQuantity    = "stockQuantity"
	KeyAvailableStock   = "availableStock"
	KeyRevenue          = "revenue"
	KeyDbURL            = "dbUrl"
	KeyCacheKey         = "cacheKey"
)
