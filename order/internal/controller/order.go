package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/seifhelal/storefront/internal/auth"
	"github.com/seifhelal/storefront/internal/constants"
	inErrors "github.com/seifhelal/storefront/internal/errors"
	inHttp "github.com/seifhelal/storefront/internal/http"
	"github.com/seifhelal/storefront/internal/log"
	"github.com/seifhelal/storefront/internal/repository"
	"github.com/seifhelal/storefront/order/internal/otel"
	"github.com/seifhelal/storefront/order/internal/service"
	"github.com/seifhelal/storefront/order/pkg/request"
)

type OrderController struct {
	service *service.OrderService
}

func AttachOrderController(
	c context.Context,
	router *mux.Router,
	service *service.OrderService,
	authMiddleware func(http.Handler) http.Handler,
) {
	controller := OrderController{service: service}

	orders := router.PathPrefix("/orders").Subrouter()
	orders.Use(authMiddleware)
	orders.HandleFunc("/checkout", controller.Checkout).Methods(http.MethodPost)
	orders.HandleFunc("", controller.FindOrders).Methods(http.MethodGet)
	orders.HandleFunc("/{orderId}", controller.FindOrderById).Methods(http.MethodGet)
	orders.HandleFunc("/{orderId}/status", controller.UpdateOrderStatus).
		Methods(http.MethodPatch)

	dashboard := router.PathPrefix("/dashboard").Subrouter()
	dashboard.Use(authMiddleware)
	dashboard.HandleFunc("", controller.Dashboard).Methods(http.MethodGet)
}

func writeError(c context.Context, w http.ResponseWriter, err error) {
	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "failed",
		"statusCode": inErrors.StatusCode(err),
		"message":    err.Error(),
	})
}

func (ctrl OrderController) Checkout(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController Checkout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderController Checkout").
		Logger()
	c = logger.WithContext(c)

	logger = logger.With().Str(log.KeyProcess, "resolving identity").Logger()
	logger.Info().Msg("resolving identity")
	userId, err := auth.UserIDFromContext(c)
	if err != nil {
		err = fmt.Errorf("failed resolving identity with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeError(c, w, err)
		return
	}
	logger = logger.With().Str(log.KeyUserID, userId.String()).Logger()
	c = logger.WithContext(c)
	logger.Info().Msg("resolved identity")

	logger = logger.With().Str(log.KeyProcess, "checking out").Logger()
	logger.Info().Msg("checking out")
	order, err := ctrl.service.Checkout(c, userId)
	if err != nil {
		err = fmt.Errorf("failed checking out with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeError(c, w, err)
		return
	}
	logger.Info().Str(log.KeyOrderID, order.ID.String()).Msg("checked out")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusCreated,
		"message":    "order created",
		"data":       map[string]interface{}{"order": order},
	})
}

func (ctrl OrderController) FindOrders(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController FindOrders")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderController FindOrders").
		Logger()
	c = logger.WithContext(c)

	logger = logger.With().Str(log.KeyProcess, "resolving identity").Logger()
	logger.Info().Msg("resolving identity")
	userId, err := auth.UserIDFromContext(c)
	if err != nil {
		err = fmt.Errorf("failed resolving identity with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeError(c, w, err)
		return
	}
	role := auth.RoleFromContext(c)
	logger = logger.With().
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyRole, role).
		Logger()
	c = logger.WithContext(c)
	logger.Info().Msg("resolved identity")

	logger = logger.With().Str(log.KeyProcess, "finding orders").Logger()
	logger.Info().Msg("finding orders")
	orders, err := ctrl.service.FindOrders(c, userId, role)
	if err != nil {
		err = fmt.Errorf("failed finding orders with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeError(c, w, err)
		return
	}
	logger.Info().Int(log.KeyOrders, len(orders)).Msg("found orders")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "orders found",
		"data":       map[string]interface{}{"orders": orders},
	})
}

func (ctrl OrderController) FindOrderById(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController FindOrderById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderController FindOrderById").
		Logger()
	c = logger.WithContext(c)

	logger = logger.With().Str(log.KeyProcess, "parsing order id").Logger()
	logger.Info().Msg("parsing order id")
	orderId, err := uuid.Parse(mux.Vars(r)["orderId"])
	if err != nil {
		err = fmt.Errorf("failed parsing order id with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger = logger.With().Str(log.KeyOrderID, orderId.String()).Logger()
	c = logger.WithContext(c)
	logger.Info().Msg("parsed order id")

	logger = logger.With().Str(log.KeyProcess, "resolving identity").Logger()
	logger.Info().Msg("resolving identity")
	userId, err := auth.UserIDFromContext(c)
	if err != nil {
		err = fmt.Errorf("failed resolving identity with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeError(c, w, err)
		return
	}
	role := auth.RoleFromContext(c)
	logger.Info().Msg("resolved identity")

	logger = logger.With().Str(log.KeyProcess, "finding order by id").Logger()
	logger.Info().Msg("finding order by id")
	order, err := ctrl.service.FindOrderById(c, orderId, userId, role)
	if err != nil {
		err = fmt.Errorf("failed finding order by id with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeError(c, w, err)
		return
	}
	logger.Info().Msg("found order by id")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "order found",
		"data":       map[string]interface{}{"order": order},
	})
}

func (ctrl OrderController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController UpdateOrderStatus")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderController UpdateOrderStatus").
		Logger()
	c = logger.WithContext(c)

	logger = logger.With().Str(log.KeyProcess, "parsing order id").Logger()
	logger.Info().Msg("parsing order id")
	orderId, err := uuid.Parse(mux.Vars(r)["orderId"])
	if err != nil {
		err = fmt.Errorf("failed parsing order id with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger = logger.With().Str(log.KeyOrderID, orderId.String()).Logger()
	c = logger.WithContext(c)
	logger.Info().Msg("parsed order id")

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Info().Msg("decoding request body")
	reqBody := request.UpdateOrderStatus{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	logger.Info().Msg("validating request body")
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("validated request body")

	logger = logger.With().Str(log.KeyProcess, "resolving identity").Logger()
	logger.Info().Msg("resolving identity")
	userId, err := auth.UserIDFromContext(c)
	if err != nil {
		err = fmt.Errorf("failed resolving identity with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeError(c, w, err)
		return
	}
	role := auth.RoleFromContext(c)
	logger.Info().Msg("resolved identity")

	logger = logger.With().
		Str(log.KeyProcess, "updating order status").
		Str(log.KeyOrderStatus, reqBody.Status).
		Logger()
	logger.Info().Msg("updating order status")
	order, err := ctrl.service.UpdateOrderStatus(
		c,
		orderId,
		repository.OrderStatus(reqBody.Status),
		userId,
		role,
	)
	if err != nil {
		err = fmt.Errorf("failed updating order status with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeError(c, w, err)
		return
	}
	logger.Info().Msg("updated order status")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "order status updated",
		"data":       map[string]interface{}{"order": order},
	})
}

func (ctrl OrderController) Dashboard(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController Dashboard")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderController Dashboard").
		Logger()
	c = logger.WithContext(c)

	if auth.RoleFromContext(c) != constants.RoleAdmin {
		err := fmt.Errorf("failed loading dashboard with error=%w", inErrors.ErrForbidden)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeError(c, w, err)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "loading dashboard").Logger()
	logger.Info().Msg("loading dashboard")
	dashboard, err := ctrl.service.Dashboard(c, r.URL.Query()["revenueStatus"])
	if err != nil {
		err = fmt.Errorf("failed loading dashboard with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeError(c, w, err)
		return
	}
	logger.Info().Msg("loaded dashboard")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "dashboard loaded",
		"data":       map[string]interface{}{"dashboard": dashboard},
	})
}
