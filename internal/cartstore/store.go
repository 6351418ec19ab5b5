package cartstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"

	"github.com/seifhelal/storefront/cart/pkg/cart"
	inErrors "github.com/seifhelal/storefront/internal/errors"
	"github.com/seifhelal/storefront/internal/log"
)

var tracer = otel.Tracer("internal/cartstore")

// Store persists one cart and one wishlist per identity under keys derived
// from the identity. Absence of a key is not an error: an identity that never
// saved anything simply owns an empty cart. Reads and writes are plain
// read-modify-write; per the cart contract each identity mutates its own cart
// from a single UI context, so no cross-client locking is attempted.
type Store struct {
	cache *redis.Client
}

func New(cache *redis.Client) *Store {
	return &Store{cache: cache}
}

func CartKey(userId uuid.UUID) string {
	return "cart:" + userId.String()
}

func WishlistKey(userId uuid.UUID) string {
	return "wishlist:" + userId.String()
}

func (s *Store) Get(c context.Context, userId uuid.UUID) (cart.Cart, error) {
	c, span := tracer.Start(c, "Store Get")
	defer span.End()

	key := CartKey(userId)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Store Get").
		Str(log.KeyCartKey, key).
		Logger()

	payload, err := s.cache.Get(c, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return cart.Cart{UserId: userId, Lines: []cart.Line{}}, nil
		}
		err = fmt.Errorf("failed getting cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return cart.Cart{}, errors.Join(err, inErrors.ErrStoreUnavailable)
	}

	stored := cart.Cart{}
	err = json.Unmarshal([]byte(payload), &stored)
	if err != nil {
		err = fmt.Errorf("failed unmarshaling cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return cart.Cart{}, err
	}
	stored.UserId = userId
	if stored.Lines == nil {
		stored.Lines = []cart.Line{}
	}

	return stored, nil
}

func (s *Store) Save(c context.Context, userCart cart.Cart) error {
	c, span := tracer.Start(c, "Store Save")
	defer span.End()

	key := CartKey(userCart.UserId)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Store Save").
		Str(log.KeyCartKey, key).
		Int(log.KeyCartLines, len(userCart.Lines)).
		Logger()

	payload, err := json.Marshal(userCart)
	if err != nil {
		err = fmt.Errorf("failed marshaling cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	err = s.cache.Set(c, key, payload, 0).Err()
	if err != nil {
		err = fmt.Errorf("failed saving cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return errors.Join(err, inErrors.ErrStoreUnavailable)
	}

	return nil
}

func (s *Store) Clear(c context.Context, userId uuid.UUID) error {
	c, span := tracer.Start(c, "Store Clear")
	defer span.End()

	key := CartKey(userId)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Store Clear").
		Str(log.KeyCartKey, key).
		Logger()

	err := s.cache.Del(c, key).Err()
	if err != nil {
		err = fmt.Errorf("failed clearing cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return errors.Join(err, inErrors.ErrStoreUnavailable)
	}

	return nil
}

func (s *Store) GetWishlist(c context.Context, userId uuid.UUID) ([]cart.Line, error) {
	c, span := tracer.Start(c, "Store GetWishlist")
	defer span.End()

	key := WishlistKey(userId)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Store GetWishlist").
		Str(log.KeyCacheKey, key).
		Logger()

	payload, err := s.cache.Get(c, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []cart.Line{}, nil
		}
		err = fmt.Errorf("failed getting wishlist with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, errors.Join(err, inErrors.ErrStoreUnavailable)
	}

	wishlist := []cart.Line{}
	err = json.Unmarshal([]byte(payload), &wishlist)
	if err != nil {
		err = fmt.Errorf("failed unmarshaling wishlist with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}

	return wishlist, nil
}

func (s *Store) SaveWishlist(c context.Context, userId uuid.UUID, wishlist []cart.Line) error {
	c, span := tracer.Start(c, "Store SaveWishlist")
	defer span.End()

	key := WishlistKey(userId)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Store SaveWishlist").
		Str(log.KeyCacheKey, key).
		Logger()

	payload, err := json.Marshal(wishlist)
	if err != nil {
		err = fmt.Errorf("failed marshaling wishlist with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	err = s.cache.Set(c, key, payload, 0).Err()
	if err != nil {
		err = fmt.Errorf("failed saving wishlist with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return errors.Join(err, inErrors.ErrStoreUnavailable)
	}

	return nil
}
