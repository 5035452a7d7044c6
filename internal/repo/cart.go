package repo

import (
	"context"

	"github.com/Skotchmaster/artesan_shop/internal/models"
	"gorm.io/gorm"
)

type CartRepo struct {
	DB *gorm.DB
}

func (r *CartRepo) Insert(ctx context.Context, productID string, quantity int) error {
	item := models.CartItem{ProductID: productID, Quantity: quantity}
	return translate(r.DB.WithContext(ctx).Omit("Product").Create(&item).Error)
}

func (r *CartRepo) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	res := r.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("product_id = ?", productID).
		Update("quantity", quantity)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CartRepo) Delete(ctx context.Context, productID string) error {
	res := r.DB.WithContext(ctx).Where("product_id = ?", productID).Delete(&models.CartItem{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CartRepo) FindByProductID(ctx context.Context, productID string) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.DB.WithContext(ctx).Where("product_id = ?", productID).First(&item).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (r *CartRepo) ListWithProducts(ctx context.Context) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.DB.WithContext(ctx).
		InnerJoins("Product").
		Order("cart.id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *CartRepo) Clear(ctx context.Context) error {
	return r.DB.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.CartItem{}).Error
}

func (r *CartRepo) ItemCount(ctx context.Context) (int, error) {
	var sum int64
	if err := r.DB.WithContext(ctx).Model(&models.CartItem{}).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&sum).Error; err != nil {
		return 0, err
	}
	return int(sum), nil
}
