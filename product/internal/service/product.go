package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/seifhelal/storefront/cart/pkg/cart"
	"github.com/seifhelal/storefront/internal/auth"
	"github.com/seifhelal/storefront/internal/cartstore"
	"github.com/seifhelal/storefront/internal/constants"
	inErrors "github.com/seifhelal/storefront/internal/errors"
	"github.com/seifhelal/storefront/internal/log"
	"github.com/seifhelal/storefront/internal/repository"
	"github.com/seifhelal/storefront/product/internal/otel"
	"github.com/seifhelal/storefront/product/pkg/request"
	"github.com/seifhelal/storefront/product/pkg/response"
)

type ProductService struct {
	pool    *pgxpool.Pool
	queries *repository.Queries
	store   *cartstore.Store
}

func NewProductService(
	pool *pgxpool.Pool,
	queries *repository.Queries,
	store *cartstore.Store,
) *ProductService {
	return &ProductService{pool: pool, queries: queries, store: store}
}

func requireAdmin(c context.Context) error {
	if auth.RoleFromContext(c) != constants.RoleAdmin {
		return inErrors.ErrForbidden
	}
	return nil
}

// FindProducts lists the catalog. When the caller is authenticated the
// availableStock of each product is lowered by whatever the caller's own cart
// already reserves; anonymous callers see the raw stock.
func (s *ProductService) FindProducts(c context.Context) ([]response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService FindProducts").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding products").Logger()
	logger.Info().Msg("finding products")
	products, err := s.queries.FindProducts(c)
	if err != nil {
		err = fmt.Errorf("failed finding products with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Int(log.KeyProducts, len(products)).Msg("found products")

	userCart := cart.Cart{}
	if userId, err := auth.UserIDFromContext(c); err == nil {
		logger = logger.With().
			Str(log.KeyProcess, "loading cart").
			Str(log.KeyUserID, userId.String()).
			Logger()
		logger.Info().Msg("loading cart")
		userCart, err = s.store.Get(c, userId)
		if err != nil {
			err = fmt.Errorf("failed loading cart with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		logger.Info().Msg("loaded cart")
	}

	responses := make([]response.Product, len(products))
	for i, product := range products {
		responses[i] = product.Response()
		responses[i].AvailableStock = cart.AvailableStock(
			product.StockQuantity,
			userCart,
			product.ID,
		)
	}

	return responses, nil
}

func (s *ProductService) FindProductById(
	c context.Context,
	productId uuid.UUID,
) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindProductById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService FindProductById").
		Str(log.KeyProductID, productId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product by id").Logger()
	logger.Info().Msg("finding product by id")
	product, err := s.queries.FindProductById(c, productId)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("failed finding product by id with error=%w", inErrors.ErrProductNotFound)
		} else {
			err = fmt.Errorf("failed finding product by id with error=%w", err)
		}
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger.Info().Msg("found product by id")

	resp := product.Response()
	if userId, err := auth.UserIDFromContext(c); err == nil {
		userCart, err := s.store.Get(c, userId)
		if err != nil {
			err = fmt.Errorf("failed loading cart with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Product{}, err
		}
		resp.AvailableStock = cart.AvailableStock(product.StockQuantity, userCart, product.ID)
	}

	return resp, nil
}

func (s *ProductService) InsertProduct(
	c context.Context,
	param request.Product,
) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService InsertProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService InsertProduct").
		Logger()

	if err := requireAdmin(c); err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "inserting product").Logger()
	logger.Info().Msg("inserting product")
	product, err := s.queries.InsertProduct(c, repository.InsertProductParams{
		ID:            uuid.New(),
		Name:          param.Name,
		Description:   param.Description,
		Image:         param.Image,
		CategoryID:    param.CategoryId,
		Price:         repository.NumericFromDecimal(param.Price),
		StockQuantity: param.StockQuantity,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			err = fmt.Errorf("failed inserting product with error=%w", inErrors.ErrCategoryNotFound)
		} else {
			err = fmt.Errorf("failed inserting product with error=%w", err)
		}
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger.Info().Str(log.KeyProductID, product.ID.String()).Msg("inserted product")

	return product.Response(), nil
}

func (s *ProductService) UpdateProduct(
	c context.Context,
	productId uuid.UUID,
	param request.Product,
) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService UpdateProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService UpdateProduct").
		Str(log.KeyProductID, productId.String()).
		Logger()

	if err := requireAdmin(c); err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "updating product").Logger()
	logger.Info().Msg("updating product")
	product, err := s.queries.UpdateProduct(c, repository.UpdateProductParams{
		ID:            productId,
		Name:          param.Name,
		Description:   param.Description,
		Image:         param.Image,
		CategoryID:    param.CategoryId,
		Price:         repository.NumericFromDecimal(param.Price),
		StockQuantity: param.StockQuantity,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("failed updating product with error=%w", inErrors.ErrProductNotFound)
		} else {
			err = fmt.Errorf("failed updating product with error=%w", err)
		}
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger.Info().Msg("updated product")

	return product.Response(), nil
}

func (s *ProductService) DeleteProduct(c context.Context, productId uuid.UUID) error {
	c, span := otel.Tracer.Start(c, "ProductService DeleteProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService DeleteProduct").
		Str(log.KeyProductID, productId.String()).
		Logger()

	if err := requireAdmin(c); err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	logger = logger.With().Str(log.KeyProcess, "deleting product").Logger()
	logger.Info().Msg("deleting product")
	affected, err := s.queries.DeleteProduct(c, productId)
	if err != nil {
		err = fmt.Errorf("failed deleting product with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	if affected == 0 {
		err = fmt.Errorf("failed deleting product with error=%w", inErrors.ErrProductNotFound)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("deleted product")

	return nil
}

func (s *ProductService) FindCategories(c context.Context) ([]response.Category, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindCategories")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService FindCategories").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding categories").Logger()
	logger.Info().Msg("finding categories")
	categories, err := s.queries.FindCategories(c)
	if err != nil {
		err = fmt.Errorf("failed finding categories with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msg("found categories")

	responses := make([]response.Category, len(categories))
	for i, category := range categories {
		responses[i] = category.Response()
	}

	return responses, nil
}

func (s *ProductService) InsertCategory(
	c context.Context,
	param request.Category,
) (response.Category, error) {
	c, span := otel.Tracer.Start(c, "ProductService InsertCategory")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService InsertCategory").
		Logger()

	if err := requireAdmin(c); err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Category{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "inserting category").Logger()
	logger.Info().Msg("inserting category")
	category, err := s.queries.InsertCategory(c, repository.InsertCategoryParams{
		ID:          uuid.New(),
		Name:        param.Name,
		Description: param.Description,
	})
	if err != nil {
		err = fmt.Errorf("failed inserting category with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Category{}, err
	}
	logger.Info().Str(log.KeyCategoryID, category.ID.String()).Msg("inserted category")

	return category.Response(), nil
}

func (s *ProductService) UpdateCategory(
	c context.Context,
	categoryId uuid.UUID,
	param request.Category,
) (response.Category, error) {
	c, span := otel.Tracer.Start(c, "ProductService UpdateCategory")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService UpdateCategory").
		Str(log.KeyCategoryID, categoryId.String()).
		Logger()

	if err := requireAdmin(c); err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Category{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "updating category").Logger()
	logger.Info().Msg("updating category")
	category, err := s.queries.UpdateCategory(c, repository.UpdateCategoryParams{
		ID:          categoryId,
		Name:        param.Name,
		Description: param.Description,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("failed updating category with error=%w", inErrors.ErrCategoryNotFound)
		} else {
			err = fmt.Errorf("failed updating category with error=%w", err)
		}
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Category{}, err
	}
	logger.Info().Msg("updated category")

	return category.Response(), nil
}

// DeleteCategory refuses to remove a category that products still reference,
// so the catalog never holds a dangling category id.
func (s *ProductService) DeleteCategory(c context.Context, categoryId uuid.UUID) error {
	c, span := otel.Tracer.Start(c, "ProductService DeleteCategory")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService DeleteCategory").
		Str(log.KeyCategoryID, categoryId.String()).
		Logger()

	if err := requireAdmin(c); err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	logger = logger.With().Str(log.KeyProcess, "counting products in category").Logger()
	logger.Info().Msg("counting products in category")
	count, err := s.queries.CountProductsByCategory(c, categoryId)
	if err != nil {
		err = fmt.Errorf("failed counting products in category with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	if count > 0 {
		err = fmt.Errorf("failed deleting category with error=%w", inErrors.ErrCategoryInUse)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Int64(log.KeyProducts, count).Msg(err.Error())
		return err
	}
	logger.Info().Msg("counted products in category")

	logger = logger.With().Str(log.KeyProcess, "deleting category").Logger()
	logger.Info().Msg("deleting category")
	affected, err := s.queries.DeleteCategory(c, categoryId)
	if err != nil {
		err = fmt.Errorf("failed deleting category with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	if affected == 0 {
		err = fmt.Errorf("failed deleting category with error=%w", inErrors.ErrCategoryNotFound)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("deleted category")

	return nil
}
