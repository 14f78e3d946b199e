package inventoryControllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/junaidrashid-git/restaurant-api/app"
	"github.com/junaidrashid-git/restaurant-api/apperr"
	orderControllers "github.com/junaidrashid-git/restaurant-api/controllers/order"
	"github.com/junaidrashid-git/restaurant-api/models"
)

type SupplierInput struct {
	Name    string `json:"name" binding:"required"`
	Contact string `json:"contact"`
	Phone   string `json:"phone"`
	Email   string `json:"email" binding:"omitempty,email"`
	Address string `json:"address"`
}

func (in SupplierInput) apply(s *models.Supplier) {
	s.Name = strings.TrimSpace(in.Name)
	s.Contact = in.Contact
	s.Phone = in.Phone
	s.Email = in.Email
	s.Address = in.Address
}

// GET /api/suppliers
func GetSuppliers(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var list []models.Supplier
		if err := env.DB.Order("name").Find(&list).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// POST /api/suppliers
func CreateSupplier(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in SupplierInput
		if err := c.ShouldBindJSON(&in); err != nil {
			apperr.Respond(c, apperr.BadRequest(err.Error()))
			return
		}
		var s models.Supplier
		in.apply(&s)
		if err := uniqueName(env.DB, &models.Supplier{}, s.Name, 0); err != nil {
			apperr.Respond(c, err)
			return
		}
		if err := env.DB.Create(&s).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, s)
	}
}

// PUT /api/suppliers/:id
func UpdateSupplier(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := orderControllers.ParseID(c, "id")
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		var in SupplierInput
		if err := c.ShouldBindJSON(&in); err != nil {
			apperr.Respond(c, apperr.BadRequest(err.Error()))
			return
		}
		var s models.Supplier
		if err := env.DB.First(&s, id).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		in.apply(&s)
		if err := uniqueName(env.DB, &models.Supplier{}, s.Name, s.ID); err != nil {
			apperr.Respond(c, err)
			return
		}
		if err := env.DB.Save(&s).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, s)
	}
}

// DELETE /api/suppliers/:id
// Suppliers with purchase history are kept.
func DeleteSupplier(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := orderControllers.ParseID(c, "id")
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		var used int64
		if err := env.DB.Model(&models.Purchase{}).Where("supplier_id = ?", id).Count(&used).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		if used > 0 {
			apperr.Respond(c, apperr.Conflict("supplier has recorded purchases"))
			return
		}
		if err := env.DB.Model(&models.Ingredient{}).Where("supplier_id = ?", id).
			Update("supplier_id", nil).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		res := env.DB.Delete(&models.Supplier{}, id)
		if res.Error != nil {
			apperr.Respond(c, res.Error)
			return
		}
		if res.RowsAffected == 0 {
			apperr.Respond(c, apperr.NotFound("supplier not found"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Supplier deleted successfully"})
	}
}
