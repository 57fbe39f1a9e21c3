package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"roomhub-commerce-api/internal/cache"
	"roomhub-commerce-api/internal/model"
	"roomhub-commerce-api/internal/repository"
	"roomhub-commerce-api/pkg/apierror"

	"github.com/sirupsen/logrus"
)

// CatalogService manages product listings for room owners and serves product
// reads through the cache. Stock mutations stay with the stock engine; this
// service never touches the stock column of an existing product.
type CatalogService struct {
	repos        *repository.Repositories
	productCache cache.Cache
	cacheTTL     time.Duration
	log          *logrus.Logger
}

// NewCatalogService creates the catalog service.
func NewCatalogService(repos *repository.Repositories, productCache cache.Cache, cacheTTL time.Duration, log *logrus.Logger) *CatalogService {
	return &CatalogService{repos: repos, productCache: productCache, cacheTTL: cacheTTL, log: log}
}

// ProductInput carries the fields a room owner supplies for a new product.
type ProductInput struct {
	Name       string `json:"name"`
	Price      int64  `json:"price"`
	Stock      int    `json:"stock"`
	Visibility string `json:"visibility"`
}

// CreateProduct lists a product in the owner's room.
func (s *CatalogService) CreateProduct(ctx context.Context, ownerID, roomID int64, in ProductInput) (*model.Product, error) {
	if in.Name == "" {
		return nil, apierror.ValidationError("invalid product", apierror.FieldError{Field: "name", Message: "required"})
	}
	if in.Price < 0 {
		return nil, apierror.ValidationError("invalid product", apierror.FieldError{Field: "price", Message: "must not be negative"})
	}
	if in.Stock < 0 {
		return nil, apierror.ValidationError("invalid product", apierror.FieldError{Field: "stock", Message: "must not be negative"})
	}

	visibility := model.ProductVisibility(in.Visibility)
	if visibility == "" {
		visibility = model.VisibilityPublic
	}
	if visibility != model.VisibilityPublic && visibility != model.VisibilityPrivate {
		return nil, apierror.ValidationError("invalid product", apierror.FieldError{Field: "visibility", Message: "must be public or private"})
	}

	var product model.Product
	err := s.repos.Store.Tx(ctx, func(tx *sql.Tx) error {
		room, err := s.repos.Rooms.Get(ctx, tx, roomID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apierror.NotFound("room not found")
			}
			return err
		}
		if room.OwnerID != ownerID {
			return apierror.Forbidden("")
		}

		product = model.Product{
			RoomID:     roomID,
			OwnerID:    ownerID,
			Name:       in.Name,
			Price:      in.Price,
			Stock:      in.Stock,
			Status:     model.ProductActive,
			Visibility: visibility,
		}
		return s.repos.Products.Create(ctx, tx, &product)
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProduct serves a product snapshot, read-through cached. The cache entry
// is invalidated on every stock mutation, so a snapshot is at worst one TTL
// stale after an external write.
func (s *CatalogService) GetProduct(ctx context.Context, productID int64) (*model.Product, error) {
	load := func() ([]byte, error) {
		p, err := s.repos.Products.Get(ctx, s.repos.Store.DB(), productID)
		if err != nil {
			return nil, err
		}
		return json.Marshal(p)
	}

	var raw []byte
	var err error
	if s.productCache != nil {
		raw, err = s.productCache.GetOrSet(ctx, cache.ProductKey(productID), s.cacheTTL, load)
	} else {
		raw, err = load()
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierror.NotFound("product not found")
		}
		return nil, err
	}

	var p model.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListRoomProducts returns a room's products straight from the store.
func (s *CatalogService) ListRoomProducts(ctx context.Context, roomID int64) ([]model.Product, error) {
	return s.repos.Products.ListByRoom(ctx, s.repos.Store.DB(), roomID)
}
