package menuControllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/junaidrashid-git/restaurant-api/app"
	"github.com/junaidrashid-git/restaurant-api/apperr"
	orderControllers "github.com/junaidrashid-git/restaurant-api/controllers/order"
	"github.com/junaidrashid-git/restaurant-api/models"
	"github.com/junaidrashid-git/restaurant-api/uploads"
)

var sortColumns = map[string]string{
	"name":       "name",
	"price":      "price",
	"created_at": "created_at",
	"prep_time":  "preparation_time",
}

// MenuForm is the multipart body of create and update. Pointer fields are
// optional on update.
type MenuForm struct {
	Name            *string  `form:"name"`
	Description     *string  `form:"description"`
	Price           *float64 `form:"price"`
	CategoryID      *uint    `form:"category_id"`
	IsAvailable     *bool    `form:"is_available"`
	PreparationTime *int     `form:"preparation_time"`
}

func (f MenuForm) apply(db *gorm.DB, item *models.MenuItem) error {
	if f.Name != nil {
		item.Name = strings.TrimSpace(*f.Name)
	}
	if item.Name == "" {
		return apperr.BadRequest("name is required")
	}
	if f.Description != nil {
		item.Description = *f.Description
	}
	if f.Price != nil {
		if *f.Price < 0 {
			return apperr.BadRequest("price must not be negative")
		}
		item.Price = *f.Price
	}
	if f.IsAvailable != nil {
		item.IsAvailable = *f.IsAvailable
	}
	if f.PreparationTime != nil {
		item.PreparationTime = *f.PreparationTime
	}
	if f.CategoryID != nil {
		if *f.CategoryID == 0 {
			item.CategoryID = nil
		} else {
			if err := db.First(&models.Category{}, *f.CategoryID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.BadRequest("category not found").With("category_id", *f.CategoryID)
				}
				return err
			}
			item.CategoryID = f.CategoryID
		}
	}
	return nil
}

// saveImage stores the optional "image" field and returns its URL, or "" when none was sent.
func saveImage(c *gin.Context, env *app.Env, subdir string) (string, error) {
	url, err := env.Uploads.Save(c, "image", subdir)
	if errors.Is(err, uploads.ErrNoFile) {
		return "", nil
	}
	if err != nil {
		return "", apperr.Internal(err)
	}
	return url, nil
}

// GET /api/menu
// Filters: search, category_id, min_price, max_price, available, sort_by, order.
func GetMenu(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := env.DB.Model(&models.MenuItem{}).Preload("Category")

		if s := strings.TrimSpace(c.Query("search")); s != "" {
			like := "%" + strings.ToLower(s) + "%"
			q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
		}
		if v := c.Query("category_id"); v != "" {
			id, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				apperr.Respond(c, apperr.BadRequest("invalid category_id"))
				return
			}
			q = q.Where("category_id = ?", id)
		}
		for param, cond := range map[string]string{"min_price": "price >= ?", "max_price": "price <= ?"} {
			if v := c.Query(param); v != "" {
				p, err := strconv.ParseFloat(v, 64)
				if err != nil {
					apperr.Respond(c, apperr.BadRequest("invalid "+param))
					return
				}
				q = q.Where(cond, p)
			}
		}
		if v := c.Query("available"); v != "" {
			avail, err := strconv.ParseBool(v)
			if err != nil {
				apperr.Respond(c, apperr.BadRequest("invalid available"))
				return
			}
			q = q.Where("is_available = ?", avail)
		}

		col, ok := sortColumns[c.DefaultQuery("sort_by", "name")]
		if !ok {
			apperr.Respond(c, apperr.BadRequest("invalid sort_by"))
			return
		}
		dir := "ASC"
		if strings.EqualFold(c.Query("order"), "desc") {
			dir = "DESC"
		}
		q = q.Order(col + " " + dir).Order("menu_id")

		var items []models.MenuItem
		if err := q.Find(&items).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// GET /api/menu/:id
func GetMenuItem(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := orderControllers.ParseID(c, "id")
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		var item models.MenuItem
		if err := env.DB.Preload("Category").First(&item, id).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// POST /api/menu (multipart)
func CreateMenuItem(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form MenuForm
		if err := c.ShouldBind(&form); err != nil {
			apperr.Respond(c, apperr.BadRequest(err.Error()))
			return
		}
		if form.Price == nil {
			apperr.Respond(c, apperr.BadRequest("price is required"))
			return
		}

		item := models.MenuItem{IsAvailable: true}
		if err := form.apply(env.DB, &item); err != nil {
			apperr.Respond(c, err)
			return
		}
		url, err := saveImage(c, env, "menu")
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		item.Image = url

		if err := env.DB.Create(&item).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		log.WithFields(log.Fields{"menu_id": item.ID, "name": item.Name}).Info("menu item created")
		c.JSON(http.StatusCreated, item)
	}
}

// PUT /api/menu/:id (multipart)
func UpdateMenuItem(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := orderControllers.ParseID(c, "id")
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		var form MenuForm
		if err := c.ShouldBind(&form); err != nil {
			apperr.Respond(c, apperr.BadRequest(err.Error()))
			return
		}

		var item models.MenuItem
		if err := env.DB.First(&item, id).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		if err := form.apply(env.DB, &item); err != nil {
			apperr.Respond(c, err)
			return
		}
		url, err := saveImage(c, env, "menu")
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		if url != "" {
			item.Image = url
		}

		if err := env.DB.Omit("Category").Save(&item).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// DELETE /api/menu/:id
// Soft delete: order history keeps pointing at the row.
func DeleteMenuItem(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := orderControllers.ParseID(c, "id")
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		res := env.DB.Delete(&models.MenuItem{}, id)
		if res.Error != nil {
			apperr.Respond(c, res.Error)
			return
		}
		if res.RowsAffected == 0 {
			apperr.Respond(c, apperr.NotFound("menu item not found"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted successfully"})
	}
}
