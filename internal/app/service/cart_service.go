package service

import (
	"errors"

	"github.com/tnmle/vastra-backend/internal/app/model"
	"github.com/tnmle/vastra-backend/internal/app/repository"
	"gorm.io/gorm"
)

var (
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrCartAccessDenied = errors.New("cart item belongs to another user")
)

type AddToCartInput struct {
	ProductSKUID uint `json:"product_sku_id" binding:"required"`
	Quantity     int  `json:"quantity" binding:"required,gt=0"`
}

type CartService interface {
	GetCart(userID uint) ([]model.CartItem, error)
	AddItem(userID uint, input AddToCartInput) (*model.CartItem, error)
	UpdateItemQuantity(userID, itemID uint, quantity int) (*model.CartItem, error)
	RemoveItem(userID, itemID uint) error
	ClearCart(userID uint) error
}

type cartService struct {
	cartRepo repository.CartRepository
	skuRepo  repository.SKURepository
}

func NewCartService(cartRepo repository.CartRepository, skuRepo repository.SKURepository) CartService {
	return &cartService{
		cartRepo: cartRepo,
		skuRepo:  skuRepo,
	}
}

func (s *cartService) GetCart(userID uint) ([]model.CartItem, error) {
	return s.cartRepo.FindByUserID(userID)
}

// AddItem merges with an existing line for the same SKU instead of
// creating duplicates. Cart quantities are not checked against stock;
// checkout is where stock is enforced.
func (s *cartService) AddItem(userID uint, input AddToCartInput) (*model.CartItem, error) {
	if input.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	sku, err := s.skuRepo.FindByID(input.ProductSKUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSKUNotFound
		}
		return nil, err
	}

	existing, err := s.cartRepo.FindByUserAndSKU(userID, sku.ID)
	if err == nil {
		existing.Quantity += input.Quantity
		if err := s.cartRepo.Update(existing); err != nil {
			return nil, err
		}
		return s.cartRepo.FindByID(existing.ID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	item := &model.CartItem{
		UserID:       userID,
		ProductSKUID: sku.ID,
		Quantity:     input.Quantity,
	}
	if err := s.cartRepo.Create(item); err != nil {
		return nil, err
	}
	return s.cartRepo.FindByID(item.ID)
}

func (s *cartService) UpdateItemQuantity(userID, itemID uint, quantity int) (*model.CartItem, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	item, err := s.findOwnedItem(userID, itemID)
	if err != nil {
		return nil, err
	}

	item.Quantity = quantity
	if err := s.cartRepo.Update(item); err != nil {
		return nil, err
	}
	return s.cartRepo.FindByID(item.ID)
}

func (s *cartService) RemoveItem(userID, itemID uint) error {
	item, err := s.findOwnedItem(userID, itemID)
	if err != nil {
		return err
	}
	return s.cartRepo.Delete(item.ID)
}

func (s *cartService) ClearCart(userID uint) error {
	return s.cartRepo.DeleteByUserID(userID)
}

func (s *cartService) findOwnedItem(userID, itemID uint) (*model.CartItem, error) {
	item, err := s.cartRepo.FindByID(itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}
	if item.UserID != userID {
		return nil, ErrCartAccessDenied
	}
	return item, nil
}
