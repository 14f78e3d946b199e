package auth

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/junaidrashid-git/restaurant-api/models"
)

// MergeGuestCart moves the items of the guest's cart into the user's cart,
// adding quantities for menu items present in both, then deletes the guest
// cart. Only carts owned by an issued guest id are merged. It reports whether
// anything was merged.
func MergeGuestCart(db *gorm.DB, guestID, userID string) (bool, error) {
	if guestID == userID {
		return false, nil
	}
	merged := false
	err := db.Transaction(func(tx *gorm.DB) error {
		var guest models.GuestUser
		if err := tx.First(&guest, "id = ?", guestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil // not a guest
			}
			return err
		}

		var guestCart models.Cart
		if err := tx.Preload("Items").Where("user_id = ?", guestID).First(&guestCart).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil // nothing to merge
			}
			return err
		}

		userCart := models.Cart{UserID: userID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&userCart).Error; err != nil {
			return err
		}
		if err := tx.Preload("Items").Where("user_id = ?", userID).First(&userCart).Error; err != nil {
			return err
		}
		existing := make(map[uint]*models.CartItem, len(userCart.Items))
		for i := range userCart.Items {
			existing[userCart.Items[i].MenuID] = &userCart.Items[i]
		}

		for _, item := range guestCart.Items {
			if cur, ok := existing[item.MenuID]; ok {
				cur.Quantity += item.Quantity
				cur.AddedAt = time.Now()
				if err := tx.Save(cur).Error; err != nil {
					return err
				}
			} else {
				moved := item
				moved.ID = 0
				moved.CartID = userCart.CartID
				if err := tx.Create(&moved).Error; err != nil {
					return err
				}
			}
			merged = true
		}

		if err := tx.Where("cart_id = ?", guestCart.CartID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&guestCart).Error
	})
	return merged, err
}
