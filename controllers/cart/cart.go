package cartControllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/junaidrashid-git/restaurant-api/app"
	"github.com/junaidrashid-git/restaurant-api/apperr"
	"github.com/junaidrashid-git/restaurant-api/middleware"
	"github.com/junaidrashid-git/restaurant-api/models"
	"github.com/junaidrashid-git/restaurant-api/pricing"
)

type CartItemInput struct {
	MenuID   uint `json:"menu_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required,min=1"`
}

type CartResponse struct {
	CartID   uint              `json:"cart_id"`
	Items    []models.CartItem `json:"items"`
	SubTotal float64           `json:"sub_total"`
}

// -------- Core Logic --------

// Load returns the owner's cart with items, creating an empty one on first use.
func Load(tx *gorm.DB, ownerID string) (*models.Cart, error) {
	cart := models.Cart{UserID: ownerID}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&cart).Error; err != nil {
		return nil, err
	}
	if err := tx.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("user_id = ?", ownerID).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// SetItem inserts the menu item or overwrites its quantity.
func SetItem(db *gorm.DB, ownerID string, in CartItemInput) (*models.CartItem, error) {
	var out models.CartItem
	err := db.Transaction(func(tx *gorm.DB) error {
		var menu models.MenuItem
		if err := tx.First(&menu, in.MenuID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.BadRequest("menu item does not exist").With("menu_id", in.MenuID)
			}
			return err
		}
		if !menu.IsAvailable {
			return apperr.BadRequest("menu item is not available").With("menu_id", in.MenuID)
		}

		cart, err := Load(tx, ownerID)
		if err != nil {
			return err
		}

		err = tx.Where("cart_id = ? AND menu_id = ?", cart.CartID, in.MenuID).First(&out).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			out = models.CartItem{CartID: cart.CartID, MenuID: menu.ID}
		case err != nil:
			return err
		}
		out.Name, out.Image, out.Price = menu.Name, menu.Image, menu.Price
		out.Quantity = in.Quantity
		out.AddedAt = time.Now()
		return tx.Save(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Clear removes every item from the owner's cart.
func Clear(tx *gorm.DB, ownerID string) error {
	return tx.Where("cart_id IN (?)", tx.Model(&models.Cart{}).Select("cart_id").Where("user_id = ?", ownerID)).
		Delete(&models.CartItem{}).Error
}

func respondCart(c *gin.Context, cart *models.Cart) {
	lines := make([]pricing.Line, 0, len(cart.Items))
	for _, it := range cart.Items {
		lines = append(lines, pricing.Line{UnitPrice: it.Price, Quantity: it.Quantity})
	}
	items := cart.Items
	if items == nil {
		items = []models.CartItem{}
	}
	c.JSON(http.StatusOK, CartResponse{
		CartID:   cart.CartID,
		Items:    items,
		SubTotal: pricing.Compute(lines, 0, 0).SubTotal,
	})
}

// -------- Handlers --------

// GET /api/cart
func GetCart(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := Load(env.DB, middleware.UserID(c))
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		respondCart(c, cart)
	}
}

// POST /api/cart
func UpdateCartItem(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			apperr.Respond(c, apperr.BadRequest("Invalid input: "+err.Error()))
			return
		}
		item, err := SetItem(env.DB, middleware.UserID(c), input)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// DELETE /api/cart/:menu_id
func DeleteCartItem(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		menuID, err := strconv.ParseUint(c.Param("menu_id"), 10, 64)
		if err != nil {
			apperr.Respond(c, apperr.BadRequest("invalid menu_id"))
			return
		}

		result := env.DB.
			Where("menu_id = ? AND cart_id IN (?)", menuID,
				env.DB.Model(&models.Cart{}).Select("cart_id").Where("user_id = ?", middleware.UserID(c))).
			Delete(&models.CartItem{})
		if result.Error != nil {
			apperr.Respond(c, result.Error)
			return
		}
		if result.RowsAffected == 0 {
			apperr.Respond(c, apperr.NotFound("Cart item not found"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart item deleted"})
	}
}

// DELETE /api/cart
func ClearUserCart(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := Clear(env.DB, middleware.UserID(c)); err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}

// GET /api/admin/carts/:user_id
func GetAdminUserCart(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var cart models.Cart
		if err := env.DB.Preload("Items").Where("user_id = ?", c.Param("user_id")).First(&cart).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		respondCart(c, &cart)
	}
}
