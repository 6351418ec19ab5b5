package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/seifhelal/storefront/cart/internal/otel"
	"github.com/seifhelal/storefront/cart/pkg/cart"
	"github.com/seifhelal/storefront/cart/pkg/request"
	"github.com/seifhelal/storefront/cart/pkg/response"
	"github.com/seifhelal/storefront/internal/cartstore"
	"github.com/seifhelal/storefront/internal/constants"
	inErrors "github.com/seifhelal/storefront/internal/errors"
	inHttp "github.com/seifhelal/storefront/internal/http"
	"github.com/seifhelal/storefront/internal/log"
	orderResponse "github.com/seifhelal/storefront/order/pkg/response"
	productResponse "github.com/seifhelal/storefront/product/pkg/response"
)

type CartService struct {
	store *cartstore.Store
}

func NewCartService(store *cartstore.Store) *CartService {
	return &CartService{store: store}
}

type productEnvelope struct {
	Status     string `json:"status"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       struct {
		Product productResponse.Product `json:"product"`
	} `json:"data"`
}

type orderEnvelope struct {
	Status     string `json:"status"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       struct {
		Order orderResponse.Order `json:"order"`
	} `json:"data"`
}

// findProduct fetches the live product from the product service. The returned
// snapshot is what gets frozen into the cart line.
func (s *CartService) findProduct(
	c context.Context,
	productId uuid.UUID,
) (productResponse.Product, error) {
	c, span := otel.Tracer.Start(c, "CartService findProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService findProduct").
		Str(log.KeyProductID, productId.String()).
		Logger()

	req, err := http.NewRequestWithContext(
		c,
		http.MethodGet,
		constants.URLProductService+"/"+productId.String(),
		nil,
	)
	if err != nil {
		err = fmt.Errorf("failed creating product request with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return productResponse.Product{}, err
	}
	req.Header.Add(inHttp.KeyHeaderRequestID, log.RequestIDFromContext(c))

	resp, err := otelhttp.DefaultClient.Do(req)
	if err != nil {
		err = fmt.Errorf("failed getting product with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return productResponse.Product{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		err = fmt.Errorf("failed getting product with error=%w", inErrors.ErrProductNotFound)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return productResponse.Product{}, err
	}
	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("product service responded with status=%d", resp.StatusCode)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return productResponse.Product{}, err
	}

	envelope := productEnvelope{}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		err = fmt.Errorf("failed decoding product response with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return productResponse.Product{}, err
	}

	return envelope.Data.Product, nil
}

func (s *CartService) FindCart(c context.Context, userId uuid.UUID) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService FindCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService FindCart").
		Str(log.KeyUserID, userId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "loading cart").Logger()
	logger.Info().Msg("loading cart")
	userCart, err := s.store.Get(c, userId)
	if err != nil {
		err = fmt.Errorf("failed loading cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Int(log.KeyCartLines, len(userCart.Lines)).Msg("loaded cart")

	return response.FromCart(userCart), nil
}

// AddLine freezes a snapshot of the product into the cart, merging quantities
// when the product is already present. The quantity is checked against what
// the cart still leaves available; the check is advisory and checkout
// re-validates against live stock.
func (s *CartService) AddLine(
	c context.Context,
	userId uuid.UUID,
	param request.AddCartLine,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService AddLine")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService AddLine").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyProductID, param.ProductId.String()).
		Int32(log.KeyCartLineQuantity, param.Quantity).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product").Logger()
	logger.Info().Msg("finding product")
	c = logger.WithContext(c)
	product, err := s.findProduct(c, param.ProductId)
	if err != nil {
		err = fmt.Errorf("failed finding product with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("found product")

	logger = logger.With().Str(log.KeyProcess, "loading cart").Logger()
	logger.Info().Msg("loading cart")
	userCart, err := s.store.Get(c, userId)
	if err != nil {
		err = fmt.Errorf("failed loading cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("loaded cart")

	logger = logger.With().Str(log.KeyProcess, "checking availability").Logger()
	logger.Info().Msg("checking availability")
	available := cart.AvailableStock(product.StockQuantity, userCart, param.ProductId)
	if param.Quantity > available {
		err = inErrors.InsufficientStockError{
			ProductID: product.ID,
			Name:      product.Name,
			Available: available,
			Requested: param.Quantity,
		}
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Int32(log.KeyAvailableStock, available).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Int32(log.KeyAvailableStock, available).Msg("checked availability")

	logger = logger.With().Str(log.KeyProcess, "saving cart").Logger()
	logger.Info().Msg("saving cart")
	userCart.Add(cart.Line{
		ProductId: product.ID,
		Name:      product.Name,
		Image:     product.Image,
		UnitPrice: product.Price,
		Quantity:  param.Quantity,
	})
	if err := s.store.Save(c, userCart); err != nil {
		err = fmt.Errorf("failed saving cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("saved cart")

	return response.FromCart(userCart), nil
}

func (s *CartService) SetQuantity(
	c context.Context,
	userId uuid.UUID,
	productId uuid.UUID,
	quantity int32,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService SetQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService SetQuantity").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyProductID, productId.String()).
		Int32(log.KeyCartLineQuantity, quantity).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "loading cart").Logger()
	logger.Info().Msg("loading cart")
	userCart, err := s.store.Get(c, userId)
	if err != nil {
		err = fmt.Errorf("failed loading cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("loaded cart")

	if quantity >= 1 {
		logger = logger.With().Str(log.KeyProcess, "checking availability").Logger()
		logger.Info().Msg("checking availability")
		c = logger.WithContext(c)
		product, err := s.findProduct(c, productId)
		if err != nil {
			err = fmt.Errorf("failed finding product with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Cart{}, err
		}
		if quantity > product.StockQuantity {
			err = inErrors.InsufficientStockError{
				ProductID: product.ID,
				Name:      product.Name,
				Available: product.StockQuantity,
				Requested: quantity,
			}
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Cart{}, err
		}
		logger.Info().Msg("checked availability")
	}

	logger = logger.With().Str(log.KeyProcess, "saving cart").Logger()
	logger.Info().Msg("saving cart")
	userCart.SetQuantity(productId, quantity)
	if err := s.store.Save(c, userCart); err != nil {
		err = fmt.Errorf("failed saving cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("saved cart")

	return response.FromCart(userCart), nil
}

func (s *CartService) RemoveLine(
	c context.Context,
	userId uuid.UUID,
	productId uuid.UUID,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService RemoveLine")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService RemoveLine").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyProductID, productId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "loading cart").Logger()
	logger.Info().Msg("loading cart")
	userCart, err := s.store.Get(c, userId)
	if err != nil {
		err = fmt.Errorf("failed loading cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("loaded cart")

	logger = logger.With().Str(log.KeyProcess, "saving cart").Logger()
	logger.Info().Msg("saving cart")
	userCart.Remove(productId)
	if err := s.store.Save(c, userCart); err != nil {
		err = fmt.Errorf("failed saving cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("saved cart")

	return response.FromCart(userCart), nil
}

func (s *CartService) ClearCart(c context.Context, userId uuid.UUID) error {
	c, span := otel.Tracer.Start(c, "CartService ClearCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService ClearCart").
		Str(log.KeyUserID, userId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "clearing cart").Logger()
	logger.Info().Msg("clearing cart")
	if err := s.store.Clear(c, userId); err != nil {
		err = fmt.Errorf("failed clearing cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("cleared cart")

	return nil
}

func (s *CartService) FindWishlist(
	c context.Context,
	userId uuid.UUID,
) ([]cart.Line, error) {
	c, span := otel.Tracer.Start(c, "CartService FindWishlist")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService FindWishlist").
		Str(log.KeyUserID, userId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "loading wishlist").Logger()
	logger.Info().Msg("loading wishlist")
	wishlist, err := s.store.GetWishlist(c, userId)
	if err != nil {
		err = fmt.Errorf("failed loading wishlist with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Int(log.KeyWishlist, len(wishlist)).Msg("loaded wishlist")

	return wishlist, nil
}

func (s *CartService) AddWishlistLine(
	c context.Context,
	userId uuid.UUID,
	productId uuid.UUID,
) ([]cart.Line, error) {
	c, span := otel.Tracer.Start(c, "CartService AddWishlistLine")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService AddWishlistLine").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyProductID, productId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product").Logger()
	logger.Info().Msg("finding product")
	c = logger.WithContext(c)
	product, err := s.findProduct(c, productId)
	if err != nil {
		err = fmt.Errorf("failed finding product with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msg("found product")

	logger = logger.With().Str(log.KeyProcess, "loading wishlist").Logger()
	logger.Info().Msg("loading wishlist")
	wishlist, err := s.store.GetWishlist(c, userId)
	if err != nil {
		err = fmt.Errorf("failed loading wishlist with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msg("loaded wishlist")

	for _, line := range wishlist {
		if line.ProductId == productId {
			return wishlist, nil
		}
	}
	wishlist = append(wishlist, cart.Line{
		ProductId: product.ID,
		Name:      product.Name,
		Image:     product.Image,
		UnitPrice: product.Price,
		Quantity:  1,
	})

	logger = logger.With().Str(log.KeyProcess, "saving wishlist").Logger()
	logger.Info().Msg("saving wishlist")
	if err := s.store.SaveWishlist(c, userId, wishlist); err != nil {
		err = fmt.Errorf("failed saving wishlist with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msg("saved wishlist")

	return wishlist, nil
}

func (s *CartService) RemoveWishlistLine(
	c context.Context,
	userId uuid.UUID,
	productId uuid.UUID,
) ([]cart.Line, error) {
	c, span := otel.Tracer.Start(c, "CartService RemoveWishlistLine")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService RemoveWishlistLine").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyProductID, productId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "loading wishlist").Logger()
	logger.Info().Msg("loading wishlist")
	wishlist, err := s.store.GetWishlist(c, userId)
	if err != nil {
		err = fmt.Errorf("failed loading wishlist with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msg("loaded wishlist")

	kept := wishlist[:0]
	for _, line := range wishlist {
		if line.ProductId != productId {
			kept = append(kept, line)
		}
	}

	logger = logger.With().Str(log.KeyProcess, "saving wishlist").Logger()
	logger.Info().Msg("saving wishlist")
	if err := s.store.SaveWishlist(c, userId, kept); err != nil {
		err = fmt.Errorf("failed saving wishlist with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msg("saved wishlist")

	return kept, nil
}

// Checkout hands the cart to the order service, which owns the transactional
// part. The bearer token of the caller is forwarded unchanged so the order
// service sees the same identity.
func (s *CartService) Checkout(
	c context.Context,
	userId uuid.UUID,
	authorization string,
) (orderResponse.Order, error) {
	c, span := otel.Tracer.Start(c, "CartService Checkout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService Checkout").
		Str(log.KeyUserID, userId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "requesting checkout").Logger()
	logger.Info().Msg("requesting checkout")
	req, err := http.NewRequestWithContext(
		c,
		http.MethodPost,
		constants.URLOrderService+"/checkout",
		bytes.NewReader([]byte("{}")),
	)
	if err != nil {
		err = fmt.Errorf("failed creating checkout request with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return orderResponse.Order{}, err
	}
	req.Header.Add(inHttp.KeyHeaderContentType, inHttp.ValueHeaderApplicationJson)
	req.Header.Add(inHttp.KeyHeaderRequestID, log.RequestIDFromContext(c))
	req.Header.Add("Authorization", authorization)

	resp, err := otelhttp.DefaultClient.Do(req)
	if err != nil {
		err = fmt.Errorf("failed requesting checkout with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return orderResponse.Order{}, err
	}
	defer resp.Body.Close()

	envelope := orderEnvelope{}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		err = fmt.Errorf("failed decoding checkout response with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return orderResponse.Order{}, err
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		statusCode := envelope.StatusCode
		if statusCode == 0 {
			statusCode = resp.StatusCode
		}
		err = fmt.Errorf(
			"failed requesting checkout with error=%w",
			inErrors.UpstreamError{StatusCode: statusCode, Message: envelope.Message},
		)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return orderResponse.Order{}, err
	}
	logger.Info().
		Str(log.KeyOrderID, envelope.Data.Order.ID.String()).
		Msg("requested checkout")

	return envelope.Data.Order, nil
}
