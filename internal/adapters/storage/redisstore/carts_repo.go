// Package redisstore guarda carritos como JSON en Redis.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"petclinic/internal/domain/carts"

	"github.com/go-redis/redis/v8"
)

const (
	cartKeyPrefix     = "petclinic:cart:"
	customerKeyPrefix = "petclinic:cart-customer:"
	cartIndexKey      = "petclinic:carts"
)

func cartKey(id string) string { return cartKeyPrefix + id }
func customerKey(customerID string) string { return customerKeyPrefix + customerID }

type Options struct {
	Addr     string
	Password string
	DB       int
}

// NewClient arma el cliente y hace PING.
func NewClient(ctx context.Context, opts Options) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redisstore: ping %s: %w", opts.Addr, err)
	}
	return rdb, nil
}

type CartRepo struct {
	rdb *redis.Client
}

func NewCartRepo(rdb *redis.Client) *CartRepo {
	return &CartRepo{rdb: rdb}
}

func (r *CartRepo) Create(ctx context.Context, c carts.Cart) error {
	if strings.TrimSpace(c.ID) == "" {
		return errors.New("cart id required")
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	ok, err := r.rdb.SetNX(ctx, cartKey(c.ID), raw, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("cart %s already exists", c.ID)
	}

	_, err = r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, customerKey(c.CustomerID), c.ID, 0)
		p.SAdd(ctx, cartIndexKey, c.ID)
		return nil
	})
	return err
}

func (r *CartRepo) Update(ctx context.Context, c carts.Cart) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	// XX: solo si ya existe
	ok, err := r.rdb.SetXX(ctx, cartKey(c.ID), raw, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return carts.ErrNotFound
	}
	return nil
}

func (r *CartRepo) GetByID(ctx context.Context, id string) (carts.Cart, error) {
	raw, err := r.rdb.Get(ctx, cartKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return carts.Cart{}, carts.ErrNotFound
		}
		return carts.Cart{}, err
	}
	var c carts.Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return carts.Cart{}, fmt.Errorf("redisstore: decode cart %s: %w", id, err)
	}
	return c, nil
}

func (r *CartRepo) GetByCustomer(ctx context.Context, customerID string) (carts.Cart, error) {
	id, err := r.rdb.Get(ctx, customerKey(customerID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return carts.Cart{}, carts.ErrNotFound
		}
		return carts.Cart{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *CartRepo) List(ctx context.Context) ([]carts.Cart, error) {
	ids, err := r.rdb.SMembers(ctx, cartIndexKey).Result()
	if err != nil {
		return nil, err
	}
	out := make([]carts.Cart, 0, len(ids))
	for _, id := range ids {
		c, err := r.GetByID(ctx, id)
		if errors.Is(err, carts.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CustomerID < out[j].CustomerID })
	return out, nil
}

func (r *CartRepo) Delete(ctx context.Context, id string) error {
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	_, err = r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, cartKey(id), customerKey(c.CustomerID))
		p.SRem(ctx, cartIndexKey, id)
		return nil
	})
	return err
}
