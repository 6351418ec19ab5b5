package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/seifhelal/storefront/internal/cartstore"
	"github.com/seifhelal/storefront/internal/constants"
	inErrors "github.com/seifhelal/storefront/internal/errors"
	"github.com/seifhelal/storefront/internal/log"
	"github.com/seifhelal/storefront/internal/repository"
	"github.com/seifhelal/storefront/order/internal/otel"
	"github.com/seifhelal/storefront/order/pkg/response"
)

type OrderService struct {
	pool    *pgxpool.Pool
	queries *repository.Queries
	cache   *redis.Client
	store   *cartstore.Store
}

func NewOrderService(
	pool *pgxpool.Pool,
	queries *repository.Queries,
	cache *redis.Client,
	store *cartstore.Store,
) *OrderService {
	return &OrderService{pool: pool, queries: queries, cache: cache, store: store}
}

// serialization failure and deadlock detected
func isTxConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

// connection exception (08xxx), operator shutdown (57Pxx), too many
// connections (53300), or a plain network failure
func isStoreUnavailable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "08") ||
			strings.HasPrefix(pgErr.Code, "57P") ||
			pgErr.Code == "53300"
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// txError keeps the retriable error classes distinguishable for callers:
// conflicts surface as ErrTxConflict, connectivity loss as ErrStoreUnavailable,
// everything else passes through wrapped.
func txError(step string, err error) error {
	if isTxConflict(err) {
		return fmt.Errorf("failed %s with error=%w", step, inErrors.ErrTxConflict)
	}
	if isStoreUnavailable(err) {
		return fmt.Errorf("failed %s with error=%w", step, errors.Join(err, inErrors.ErrStoreUnavailable))
	}
	return fmt.Errorf("failed %s with error=%w", step, err)
}

// Checkout turns the caller's cart into a pending order. Stock is
// re-validated against the live products inside a single transaction with the
// product rows locked, so either the order exists and every stock is
// decremented, or nothing changed at all. The cart is cleared only after the
// transaction commits.
func (s *OrderService) Checkout(
	c context.Context,
	userId uuid.UUID,
) (response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService Checkout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService Checkout").
		Str(log.KeyUserID, userId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "loading cart").Logger()
	logger.Info().Msg("loading cart")
	userCart, err := s.store.Get(c, userId)
	if err != nil {
		err = fmt.Errorf("failed loading cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	if userCart.IsEmpty() {
		err = fmt.Errorf("failed checking out with error=%w", inErrors.ErrEmptyCart)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Int(log.KeyCartLines, len(userCart.Lines)).Msg("loaded cart")

	logger = logger.With().Str(log.KeyProcess, "initializing transaction").Logger()
	logger.Info().Msg("initializing transaction")
	tx, err := s.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		err = txError("initializing transaction", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msg("initialized transaction")
	defer func() {
		logger := logger.With().Str(log.KeyProcess, "rolling back transaction").Logger()
		err := tx.Rollback(c)
		if err != nil {
			if errors.Is(err, pgx.ErrTxClosed) {
				return
			}
			err = fmt.Errorf("failed rolling back transaction with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("rolled back transaction")
	}()
	queries := s.queries.WithTx(tx)

	logger = logger.With().Str(log.KeyProcess, "locking products").Logger()
	logger.Info().Msg("locking products")
	productIds := make([]uuid.UUID, len(userCart.Lines))
	for i, line := range userCart.Lines {
		productIds[i] = line.ProductId
	}
	products, err := queries.FindProductsForUpdate(c, productIds)
	if err != nil {
		err = txError("locking products", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	byId := make(map[uuid.UUID]repository.Product, len(products))
	for _, product := range products {
		byId[product.ID] = product
	}
	logger.Info().Int(log.KeyProducts, len(products)).Msg("locked products")

	logger = logger.With().Str(log.KeyProcess, "validating stock").Logger()
	logger.Info().Msg("validating stock")
	for _, line := range userCart.Lines {
		product, ok := byId[line.ProductId]
		if !ok {
			err = inErrors.ProductNotFoundError{ProductID: line.ProductId, Name: line.Name}
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Order{}, err
		}
		if line.Quantity > product.StockQuantity {
			err = inErrors.InsufficientStockError{
				ProductID: product.ID,
				Name:      product.Name,
				Available: product.StockQuantity,
				Requested: line.Quantity,
			}
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Order{}, err
		}
	}
	logger.Info().Msg("validated stock")

	logger = logger.With().Str(log.KeyProcess, "inserting order").Logger()
	logger.Info().Msg("inserting order")
	order, err := queries.InsertOrder(c, repository.InsertOrderParams{
		ID:     uuid.New(),
		UserID: userId,
		Total:  repository.NumericFromDecimal(userCart.Total()),
	})
	if err != nil {
		err = txError("inserting order", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger = logger.With().Str(log.KeyOrderID, order.ID.String()).Logger()
	logger.Info().Msg("inserted order")

	logger = logger.With().Str(log.KeyProcess, "inserting order items").Logger()
	logger.Info().Msg("inserting order items")
	args := make([]repository.InsertOrderItemsParams, len(userCart.Lines))
	for i, line := range userCart.Lines {
		args[i] = repository.InsertOrderItemsParams{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: line.ProductId,
			Name:      line.Name,
			Image:     line.Image,
			Price:     repository.NumericFromDecimal(line.UnitPrice),
			Quantity:  line.Quantity,
		}
	}
	inserted, err := queries.InsertOrderItems(c, args)
	if err != nil {
		err = txError("inserting order items", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msgf("inserted order items count=%d", inserted)

	logger = logger.With().Str(log.KeyProcess, "decrementing stocks").Logger()
	logger.Info().Msg("decrementing stocks")
	for _, line := range userCart.Lines {
		affected, err := queries.DecrementProductStock(c, repository.DecrementProductStockParams{
			ID:       line.ProductId,
			Quantity: line.Quantity,
		})
		if err != nil {
			err = txError("decrementing stock", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Order{}, err
		}
		if affected == 0 {
			err = inErrors.InsufficientStockError{
				ProductID: line.ProductId,
				Name:      line.Name,
				Available: byId[line.ProductId].StockQuantity,
				Requested: line.Quantity,
			}
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Order{}, err
		}
	}
	logger.Info().Msg("decremented stocks")

	logger = logger.With().Str(log.KeyProcess, "committing transaction").Logger()
	logger.Info().Msg("committing transaction")
	err = tx.Commit(c)
	if err != nil {
		err = txError("committing transaction", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msg("committed transaction")

	logger = logger.With().Str(log.KeyProcess, "clearing cart").Logger()
	logger.Info().Msg("clearing cart")
	if err := s.store.Clear(c, userId); err != nil {
		err = fmt.Errorf("failed clearing cart after checkout with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
	} else {
		logger.Info().Msg("cleared cart")
	}

	logger = logger.With().Str(log.KeyProcess, "publishing stock update").Logger()
	logger.Info().Msg("publishing stock update")
	for _, productId := range productIds {
		if err := s.cache.Publish(c, constants.ChannelStockUpdated, productId.String()).Err(); err != nil {
			err = fmt.Errorf("failed publishing stock update with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			break
		}
	}
	logger.Info().Msg("published stock update")

	items := make([]repository.OrderItem, len(args))
	for i, arg := range args {
		items[i] = repository.OrderItem{
			ID:        arg.ID,
			OrderID:   arg.OrderID,
			ProductID: arg.ProductID,
			Name:      arg.Name,
			Image:     arg.Image,
			Price:     arg.Price,
			Quantity:  arg.Quantity,
		}
	}
	return order.Response(items), nil
}

func (s *OrderService) FindOrders(
	c context.Context,
	userId uuid.UUID,
	role string,
) ([]response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService FindOrders")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService FindOrders").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyRole, role).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding orders").Logger()
	logger.Info().Msg("finding orders")
	var orders []repository.Order
	var err error
	if role == constants.RoleAdmin {
		orders, err = s.queries.FindOrders(c)
	} else {
		orders, err = s.queries.FindOrdersByUserId(c, userId)
	}
	if err != nil {
		err = fmt.Errorf("failed finding orders with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Int(log.KeyOrders, len(orders)).Msg("found orders")

	responses := make([]response.Order, len(orders))
	for i, order := range orders {
		items, err := s.queries.FindOrderItemsByOrderId(c, order.ID)
		if err != nil {
			err = fmt.Errorf("failed finding order items with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		responses[i] = order.Response(items)
	}

	return responses, nil
}

func (s *OrderService) FindOrderById(
	c context.Context,
	orderId uuid.UUID,
	userId uuid.UUID,
	role string,
) (response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService FindOrderById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService FindOrderById").
		Str(log.KeyOrderID, orderId.String()).
		Str(log.KeyUserID, userId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding order by id").Logger()
	logger.Info().Msg("finding order by id")
	order, err := s.queries.FindOrderById(c, orderId)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("failed finding order by id with error=%w", inErrors.ErrOrderNotFound)
		} else {
			err = fmt.Errorf("failed finding order by id with error=%w", err)
		}
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	if role != constants.RoleAdmin && order.UserID != userId {
		err = fmt.Errorf("failed finding order by id with error=%w", inErrors.ErrOrderNotFound)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msg("found order by id")

	logger = logger.With().Str(log.KeyProcess, "finding order items").Logger()
	logger.Info().Msg("finding order items")
	items, err := s.queries.FindOrderItemsByOrderId(c, order.ID)
	if err != nil {
		err = fmt.Errorf("failed finding order items with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Int(log.KeyOrderItems, len(items)).Msg("found order items")

	return order.Response(items), nil
}

// UpdateOrderStatus moves an order along pending -> shipped or pending ->
// cancelled. Shipping is an admin action; cancelling is allowed for the admin
// or for the owner while the order is still pending. The update is guarded by
// the expected current status so concurrent transitions cannot both win.
func (s *OrderService) UpdateOrderStatus(
	c context.Context,
	orderId uuid.UUID,
	next repository.OrderStatus,
	userId uuid.UUID,
	role string,
) (response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService UpdateOrderStatus")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService UpdateOrderStatus").
		Str(log.KeyOrderID, orderId.String()).
		Str(log.KeyOrderStatus, string(next)).
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyRole, role).
		Logger()

	if !next.Valid() {
		err := fmt.Errorf("failed updating order status with error=%w", inErrors.ErrInvalidStatusTransition)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "finding order by id").Logger()
	logger.Info().Msg("finding order by id")
	order, err := s.queries.FindOrderById(c, orderId)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("failed finding order by id with error=%w", inErrors.ErrOrderNotFound)
		} else {
			err = fmt.Errorf("failed finding order by id with error=%w", err)
		}
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msg("found order by id")

	logger = logger.With().Str(log.KeyProcess, "authorizing transition").Logger()
	logger.Info().Msg("authorizing transition")
	switch next {
	case repository.OrderStatusShipped:
		if role != constants.RoleAdmin {
			err = fmt.Errorf("failed authorizing transition with error=%w", inErrors.ErrForbidden)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Order{}, err
		}
	case repository.OrderStatusCancelled:
		if role != constants.RoleAdmin && order.UserID != userId {
			err = fmt.Errorf("failed authorizing transition with error=%w", inErrors.ErrForbidden)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Order{}, err
		}
	default:
		err = fmt.Errorf("failed authorizing transition with error=%w", inErrors.ErrInvalidStatusTransition)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msg("authorized transition")

	if !order.Status.CanTransitionTo(next) {
		err = fmt.Errorf("failed updating order status with error=%w", inErrors.ErrInvalidStatusTransition)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "updating order status").Logger()
	logger.Info().Msg("updating order status")
	affected, err := s.queries.UpdateOrderStatus(c, repository.UpdateOrderStatusParams{
		ID:         orderId,
		Status:     next,
		FromStatus: order.Status,
	})
	if err != nil {
		err = fmt.Errorf("failed updating order status with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	if affected == 0 {
		err = fmt.Errorf("failed updating order status with error=%w", inErrors.ErrInvalidStatusTransition)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msg("updated order status")

	order.Status = next
	items, err := s.queries.FindOrderItemsByOrderId(c, order.ID)
	if err != nil {
		err = fmt.Errorf("failed finding order items with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}

	return order.Response(items), nil
}

// Dashboard aggregates the numbers the admin overview shows. Revenue only
// counts the statuses in revenueStatuses; when empty it defaults to shipped
// orders, since pending totals are not money earned yet and cancelled ones
// never will be.
func (s *OrderService) Dashboard(
	c context.Context,
	revenueStatuses []string,
) (response.Dashboard, error) {
	c, span := otel.Tracer.Start(c, "OrderService Dashboard")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService Dashboard").
		Logger()

	for _, status := range revenueStatuses {
		if !repository.OrderStatus(status).Valid() {
			err := fmt.Errorf("failed validating revenue statuses with error=%w", inErrors.ErrInvalidOrderStatus)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Str(log.KeyOrderStatus, status).Msg(err.Error())
			return response.Dashboard{}, err
		}
	}
	if len(revenueStatuses) == 0 {
		revenueStatuses = []string{string(repository.OrderStatusShipped)}
	}

	logger = logger.With().Str(log.KeyProcess, "summing revenue").Logger()
	logger.Info().Strs(log.KeyOrderStatus, revenueStatuses).Msg("summing revenue")
	revenue, err := s.queries.SumOrderTotalsByStatus(c, revenueStatuses)
	if err != nil {
		err = fmt.Errorf("failed summing revenue with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Dashboard{}, err
	}
	logger.Info().Msg("summed revenue")

	logger = logger.With().Str(log.KeyProcess, "counting pending orders").Logger()
	logger.Info().Msg("counting pending orders")
	pendingOrders, err := s.queries.CountOrdersByStatus(c, repository.OrderStatusPending)
	if err != nil {
		err = fmt.Errorf("failed counting pending orders with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Dashboard{}, err
	}
	logger.Info().Msg("counted pending orders")

	logger = logger.With().Str(log.KeyProcess, "counting products").Logger()
	logger.Info().Msg("counting products")
	products, err := s.queries.CountProducts(c)
	if err != nil {
		err = fmt.Errorf("failed counting products with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Dashboard{}, err
	}
	logger.Info().Msg("counted products")

	logger = logger.With().Str(log.KeyProcess, "counting users").Logger()
	logger.Info().Msg("counting users")
	users, err := s.queries.CountUsers(c)
	if err != nil {
		err = fmt.Errorf("failed counting users with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Dashboard{}, err
	}
	logger.Info().Msg("counted users")

	return response.Dashboard{
		Revenue:       repository.DecimalFromNumeric(revenue),
		PendingOrders: pendingOrders,
		Products:      products,
		Users:         users,
	}, nil
}
