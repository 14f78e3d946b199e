package inventoryControllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/junaidrashid-git/restaurant-api/app"
	"github.com/junaidrashid-git/restaurant-api/apperr"
	orderControllers "github.com/junaidrashid-git/restaurant-api/controllers/order"
	"github.com/junaidrashid-git/restaurant-api/models"
	"github.com/junaidrashid-git/restaurant-api/pricing"
)

type IngredientInput struct {
	Name         string  `json:"name" binding:"required"`
	Unit         string  `json:"unit"`
	Quantity     float64 `json:"quantity" binding:"min=0"`
	ReorderLevel float64 `json:"reorder_level" binding:"min=0"`
	CostPerUnit  float64 `json:"cost_per_unit" binding:"min=0"`
	SupplierID   *uint   `json:"supplier_id"`
}

type PurchaseInput struct {
	SupplierID   uint    `json:"supplier_id" binding:"required"`
	IngredientID uint    `json:"ingredient_id" binding:"required"`
	Quantity     float64 `json:"quantity" binding:"required,gt=0"`
	UnitCost     float64 `json:"unit_cost" binding:"min=0"`
}

func (in IngredientInput) apply(db *gorm.DB, ing *models.Ingredient) error {
	if in.SupplierID != nil {
		if err := db.First(&models.Supplier{}, *in.SupplierID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.BadRequest("supplier not found").With("supplier_id", *in.SupplierID)
			}
			return err
		}
	}
	ing.Name = strings.TrimSpace(in.Name)
	ing.Unit = in.Unit
	ing.Quantity = in.Quantity
	ing.ReorderLevel = in.ReorderLevel
	ing.CostPerUnit = in.CostPerUnit
	ing.SupplierID = in.SupplierID
	return nil
}

// -------- Core Logic --------

// RecordPurchase adds the purchased quantity to the ingredient's stock and
// stores the purchase, in one transaction.
func RecordPurchase(env *app.Env, in PurchaseInput) (*models.Purchase, error) {
	if in.Quantity <= 0 {
		return nil, apperr.BadRequest("quantity must be positive")
	}
	if in.UnitCost < 0 {
		return nil, apperr.BadRequest("unit_cost must not be negative")
	}

	purchase := models.Purchase{
		SupplierID:   in.SupplierID,
		IngredientID: in.IngredientID,
		Quantity:     in.Quantity,
		UnitCost:     in.UnitCost,
		TotalCost:    pricing.Mul(in.Quantity, in.UnitCost),
		PurchasedAt:  env.Clock().UTC(),
	}

	err := env.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&models.Supplier{}, in.SupplierID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("supplier not found")
			}
			return err
		}
		var ing models.Ingredient
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&ing, in.IngredientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("ingredient not found")
			}
			return err
		}

		if err := tx.Model(&ing).Updates(map[string]any{
			"quantity":      gorm.Expr("quantity + ?", in.Quantity),
			"cost_per_unit": in.UnitCost,
		}).Error; err != nil {
			return err
		}
		if err := tx.Create(&purchase).Error; err != nil {
			return err
		}
		return tx.Preload("Supplier").Preload("Ingredient").First(&purchase, purchase.ID).Error
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"ingredient": purchase.IngredientID, "quantity": purchase.Quantity, "total_cost": purchase.TotalCost,
	}).Info("purchase recorded")
	return &purchase, nil
}

// -------- Handlers --------

// GET /api/ingredients
func GetIngredients(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var list []models.Ingredient
		if err := env.DB.Preload("Supplier").Order("name").Find(&list).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// GET /api/ingredients/low-stock
func GetLowStock(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var list []models.Ingredient
		if err := env.DB.Preload("Supplier").
			Where("quantity <= reorder_level").
			Order("name").Find(&list).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// GET /api/ingredients/:id
func GetIngredient(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := orderControllers.ParseID(c, "id")
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		var ing models.Ingredient
		if err := env.DB.Preload("Supplier").First(&ing, id).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, ing)
	}
}

// POST /api/ingredients
func CreateIngredient(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in IngredientInput
		if err := c.ShouldBindJSON(&in); err != nil {
			apperr.Respond(c, apperr.BadRequest(err.Error()))
			return
		}
		var ing models.Ingredient
		if err := in.apply(env.DB, &ing); err != nil {
			apperr.Respond(c, err)
			return
		}
		if err := uniqueName(env.DB, &models.Ingredient{}, ing.Name, 0); err != nil {
			apperr.Respond(c, err)
			return
		}
		if err := env.DB.Create(&ing).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, ing)
	}
}

// PUT /api/ingredients/:id
func UpdateIngredient(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := orderControllers.ParseID(c, "id")
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		var in IngredientInput
		if err := c.ShouldBindJSON(&in); err != nil {
			apperr.Respond(c, apperr.BadRequest(err.Error()))
			return
		}
		var ing models.Ingredient
		if err := env.DB.First(&ing, id).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		if err := in.apply(env.DB, &ing); err != nil {
			apperr.Respond(c, err)
			return
		}
		if err := uniqueName(env.DB, &models.Ingredient{}, ing.Name, ing.ID); err != nil {
			apperr.Respond(c, err)
			return
		}
		if err := env.DB.Omit("Supplier").Save(&ing).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, ing)
	}
}

// DELETE /api/ingredients/:id
func DeleteIngredient(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := orderControllers.ParseID(c, "id")
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		var used int64
		if err := env.DB.Model(&models.Purchase{}).Where("ingredient_id = ?", id).Count(&used).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		if used > 0 {
			apperr.Respond(c, apperr.Conflict("ingredient has recorded purchases"))
			return
		}
		res := env.DB.Delete(&models.Ingredient{}, id)
		if res.Error != nil {
			apperr.Respond(c, res.Error)
			return
		}
		if res.RowsAffected == 0 {
			apperr.Respond(c, apperr.NotFound("ingredient not found"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Ingredient deleted successfully"})
	}
}

// POST /api/purchases
func CreatePurchase(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in PurchaseInput
		if err := c.ShouldBindJSON(&in); err != nil {
			apperr.Respond(c, apperr.BadRequest(err.Error()))
			return
		}
		purchase, err := RecordPurchase(env, in)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, purchase)
	}
}

// GET /api/purchases?supplier_id=
func GetPurchases(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := env.DB.Preload("Supplier").Preload("Ingredient").Order("purchased_at DESC, id DESC")
		if v := c.Query("supplier_id"); v != "" {
			id, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				apperr.Respond(c, apperr.BadRequest("invalid supplier_id"))
				return
			}
			q = q.Where("supplier_id = ?", id)
		}
		var list []models.Purchase
		if err := q.Find(&list).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func uniqueName(db *gorm.DB, model any, name string, exceptID uint) error {
	var count int64
	if err := db.Model(model).
		Where("LOWER(name) = LOWER(?) AND id <> ?", name, exceptID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return apperr.Conflict(name + " already exists")
	}
	return nil
}
