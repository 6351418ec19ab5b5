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

	"github.com/seifhelal/storefront/cart/internal/otel"
	"github.com/seifhelal/storefront/cart/internal/service"
	"github.com/seifhelal/storefront/cart/pkg/request"
	"github.com/seifhelal/storefront/internal/auth"
	inErrors "github.com/seifhelal/storefront/internal/errors"
	inHttp "github.com/seifhelal/storefront/internal/http"
	"github.com/seifhelal/storefront/internal/log"
)

type CartController struct {
	service *service.CartService
}

func AttachCartController(
	c context.Context,
	router *mux.Router,
	service *service.CartService,
	authMiddleware func(http.Handler) http.Handler,
) {
	controller := CartController{service: service}

	carts := router.PathPrefix("/carts").Subrouter()
	carts.Use(authMiddleware)
	carts.HandleFunc("", controller.FindCart).Methods(http.MethodGet)
	carts.HandleFunc("", controller.ClearCart).Methods(http.MethodDelete)
	carts.HandleFunc("/items", controller.AddLine).Methods(http.MethodPost)
	carts.HandleFunc("/items/{productId}", controller.SetQuantity).Methods(http.MethodPut)
	carts.HandleFunc("/items/{productId}", controller.RemoveLine).Methods(http.MethodDelete)
	carts.HandleFunc("/checkout", controller.Checkout).Methods(http.MethodPost)

	wishlists := router.PathPrefix("/wishlists").Subrouter()
	wishlists.Use(authMiddleware)
	wishlists.HandleFunc("", controller.FindWishlist).Methods(http.MethodGet)
	wishlists.HandleFunc("/{productId}", controller.AddWishlistLine).Methods(http.MethodPost)
	wishlists.HandleFunc("/{productId}", controller.RemoveWishlistLine).
		Methods(http.MethodDelete)
}

func writeError(c context.Context, w http.ResponseWriter, err error) {
	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "failed",
		"statusCode": inErrors.StatusCode(err),
		"message":    err.Error(),
	})
}

func identity(
	c context.Context,
	w http.ResponseWriter,
	logger zerolog.Logger,
) (uuid.UUID, bool) {
	userId, err := auth.UserIDFromContext(c)
	if err != nil {
		err = fmt.Errorf("failed resolving identity with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		writeError(c, w, err)
		return uuid.Nil, false
	}
	return userId, true
}

func (ctrl CartController) FindCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController FindCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController FindCart").
		Logger()
	c = logger.WithContext(c)

	userId, ok := identity(c, w, logger)
	if !ok {
		return
	}

	logger = logger.With().
		Str(log.KeyProcess, "finding cart").
		Str(log.KeyUserID, userId.String()).
		Logger()
	logger.Info().Msg("finding cart")
	c = logger.WithContext(c)
	userCart, err := ctrl.service.FindCart(c, userId)
	if err != nil {
		err = fmt.Errorf("failed finding cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeError(c, w, err)
		return
	}
	logger.Info().Msg("found cart")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "cart found",
		"data":       map[string]interface{}{"cart": userCart},
	})
}

func (ctrl CartController) AddLine(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController AddLine")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController AddLine").
		Logger()
	c = logger.WithContext(c)

	userId, ok := identity(c, w, logger)
	if !ok {
		return
	}

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Info().Msg("decoding request body")
	reqBody := request.AddCartLine{}
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

	logger = logger.With().
		Str(log.KeyProcess, "adding cart line").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyProductID, reqBody.ProductId.String()).
		Logger()
	logger.Info().Msg("adding cart line")
	c = logger.WithContext(c)
	userCart, err := ctrl.service.AddLine(c, userId, reqBody)
	if err != nil {
		err = fmt.Errorf("failed adding cart line with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeError(c, w, err)
		return
	}
	logger.Info().Msg("added cart line")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "cart line added",
		"data":       map[string]interface{}{"cart": userCart},
	})
}

func (ctrl CartController) SetQuantity(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController SetQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController SetQuantity").
		Logger()
	c = logger.WithContext(c)

	userId, ok := identity(c, w, logger)
	if !ok {
		return
	}

	logger = logger.With().Str(log.KeyProcess, "parsing product id").Logger()
	logger.Info().Msg("parsing product id")
	productId, err := uuid.Parse(mux.Vars(r)["productId"])
	if err != nil {
		err = fmt.Errorf("failed parsing product id with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("parsed product id")

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Info().Msg("decoding request body")
	reqBody := request.SetQuantity{}
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

	logger = logger.With().
		Str(log.KeyProcess, "setting cart line quantity").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyProductID, productId.String()).
		Int32(log.KeyCartLineQuantity, reqBody.Quantity).
		Logger()
	logger.Info().Msg("setting cart line quantity")
	c = logger.WithContext(c)
	userCart, err := ctrl.service.SetQuantity(c, userId, productId, reqBody.Quantity)
	if err != nil {
		err = fmt.Errorf("failed setting cart line quantity with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeError(c, w, err)
		return
	}
	logger.Info().Msg("set cart line quantity")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "cart line quantity set",
		"data":       map[string]interface{}{"cart": userCart},
	})
}

func (ctrl CartController) RemoveLine(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController RemoveLine")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController RemoveLine").
		Logger()
	c = logger.WithContext(c)

	userId, ok := identity(c, w, logger)
	if !ok {
		return
	}

	logger = logger.With().Str(log.KeyProcess, "parsing product id").Logger()
	logger.Info().Msg("parsing product id")
	productId, err := uuid.Parse(mux.Vars(r)["productId"])
	if err != nil {
		err = fmt.Errorf("failed parsing product id with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("parsed product id")

	logger = logger.With().
		Str(log.KeyProcess, "removing cart line").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyProductID, productId.String()).
		Logger()
	logger.Info().Msg("removing cart line")
	c = logger.WithContext(c)
	userCart, err := ctrl.service.RemoveLine(c, userId, productId)
	if err != nil {
		err = fmt.Errorf("failed removing cart line with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeError(c, w, err)
		return
	}
	logger.Info().Msg("removed cart line")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "cart line removed",
		"data":       map[string]interface{}{"cart": userCart},
	})
}

func (ctrl CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController ClearCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController ClearCart").
		Logger()
	c = logger.WithContext(c)

	userId, ok := identity(c, w, logger)
	if !ok {
		return
	}

	logger = logger.With().
		Str(log.KeyProcess, "clearing cart").
		Str(log.KeyUserID, userId.String()).
		Logger()
	logger.Info().Msg("clearing cart")
	c = logger.WithContext(c)
	if err := ctrl.service.ClearCart(c, userId); err != nil {
		err = fmt.Errorf("failed clearing cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeError(c, w, err)
		return
	}
	logger.Info().Msg("cleared cart")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "cart cleared",
	})
}

func (ctrl CartController) FindWishlist(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController FindWishlist")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController FindWishlist").
		Logger()
	c = logger.WithContext(c)

	userId, ok := identity(c, w, logger)
	if !ok {
		return
	}

	logger = logger.With().
		Str(log.KeyProcess, "finding wishlist").
		Str(log.KeyUserID, userId.String()).
		Logger()
	logger.Info().Msg("finding wishlist")
	c = logger.WithContext(c)
	wishlist, err := ctrl.service.FindWishlist(c, userId)
	if err != nil {
		err = fmt.Errorf("failed finding wishlist with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeError(c, w, err)
		return
	}
	logger.Info().Msg("found wishlist")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "wishlist found",
		"data":       map[string]interface{}{"wishlist": wishlist},
	})
}

func (ctrl CartController) AddWishlistLine(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController AddWishlistLine")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController AddWishlistLine").
		Logger()
	c = logger.WithContext(c)

	userId, ok := identity(c, w, logger)
	if !ok {
		return
	}

	logger = logger.With().Str(log.KeyProcess, "parsing product id").Logger()
	logger.Info().Msg("parsing product id")
	productId, err := uuid.Parse(mux.Vars(r)["productId"])
	if err != nil {
		err = fmt.Errorf("failed parsing product id with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("parsed product id")

	logger = logger.With().
		Str(log.KeyProcess, "adding wishlist line").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyProductID, productId.String()).
		Logger()
	logger.Info().Msg("adding wishlist line")
	c = logger.WithContext(c)
	wishlist, err := ctrl.service.AddWishlistLine(c, userId, productId)
	if err != nil {
		err = fmt.Errorf("failed adding wishlist line with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeError(c, w, err)
		return
	}
	logger.Info().Msg("added wishlist line")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "wishlist line added",
		"data":       map[string]interface{}{"wishlist": wishlist},
	})
}

func (ctrl CartController) RemoveWishlistLine(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController RemoveWishlistLine")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController RemoveWishlistLine").
		Logger()
	c = logger.WithContext(c)

	userId, ok := identity(c, w, logger)
	if !ok {
		return
	}

	logger = logger.With().Str(log.KeyProcess, "parsing product id").Logger()
	logger.Info().Msg("parsing product id")
	productId, err := uuid.Parse(mux.Vars(r)["productId"])
	if err != nil {
		err = fmt.Errorf("failed parsing product id with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("parsed product id")

	logger = logger.With().
		Str(log.KeyProcess, "removing wishlist line").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyProductID, productId.String()).
		Logger()
	logger.Info().Msg("removing wishlist line")
	c = logger.WithContext(c)
	wishlist, err := ctrl.service.RemoveWishlistLine(c, userId, productId)
	if err != nil {
		err = fmt.Errorf("failed removing wishlist line with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeError(c, w, err)
		return
	}
	logger.Info().Msg("removed wishlist line")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "wishlist line removed",
		"data":       map[string]interface{}{"wishlist": wishlist},
	})
}

func (ctrl CartController) Checkout(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController Checkout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController Checkout").
		Logger()
	c = logger.WithContext(c)

	userId, ok := identity(c, w, logger)
	if !ok {
		return
	}

	logger = logger.With().
		Str(log.KeyProcess, "checking out").
		Str(log.KeyUserID, userId.String()).
		Logger()
	logger.Info().Msg("checking out")
	c = logger.WithContext(c)
	order, err := ctrl.service.Checkout(c, userId, r.Header.Get("Authorization"))
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
