package menuControllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/junaidrashid-git/restaurant-api/app"
	"github.com/junaidrashid-git/restaurant-api/apperr"
	orderControllers "github.com/junaidrashid-git/restaurant-api/controllers/order"
	"github.com/junaidrashid-git/restaurant-api/models"
)

func uniqueCategory(db *gorm.DB, name string, exceptID uint) error {
	var count int64
	if err := db.Model(&models.Category{}).
		Where("LOWER(name) = LOWER(?) AND id <> ?", name, exceptID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return apperr.Conflict("a category with this name already exists")
	}
	return nil
}

// GET /api/categories
func GetCategories(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var categories []models.Category
		if err := env.DB.Order("name").Find(&categories).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}

// POST /api/categories (multipart: name, image)
func CreateCategory(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := strings.TrimSpace(c.PostForm("name"))
		if name == "" {
			apperr.Respond(c, apperr.BadRequest("name is required"))
			return
		}
		if err := uniqueCategory(env.DB, name, 0); err != nil {
			apperr.Respond(c, err)
			return
		}
		url, err := saveImage(c, env, "categories")
		if err != nil {
			apperr.Respond(c, err)
			return
		}

		category := models.Category{Name: name, Image: url}
		if err := env.DB.Create(&category).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, category)
	}
}

// PUT /api/categories/:id
func UpdateCategory(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := orderControllers.ParseID(c, "id")
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		var category models.Category
		if err := env.DB.First(&category, id).Error; err != nil {
			apperr.Respond(c, err)
			return
		}

		if name := strings.TrimSpace(c.PostForm("name")); name != "" {
			if err := uniqueCategory(env.DB, name, category.ID); err != nil {
				apperr.Respond(c, err)
				return
			}
			category.Name = name
		}
		url, err := saveImage(c, env, "categories")
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		if url != "" {
			category.Image = url
		}

		if err := env.DB.Save(&category).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, category)
	}
}

// DELETE /api/categories/:id
// Items in the category are kept and become uncategorized.
func DeleteCategory(env *app.Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := orderControllers.ParseID(c, "id")
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		err = env.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Unscoped().Model(&models.MenuItem{}).Where("category_id = ?", id).
				Update("category_id", nil).Error; err != nil {
				return err
			}
			res := tx.Delete(&models.Category{}, id)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return apperr.NotFound("category not found")
			}
			return nil
		})
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
	}
}
