package controllers

import (
	"errors"
	"net/http"

	"github.com/fixhub/fixhub-backend/apperrors"
	"github.com/fixhub/fixhub-backend/models"
	"github.com/fixhub/fixhub-backend/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProductController struct {
	Repo   repository.ProductRepository
	Cache  ProductCache
	Logger *zap.Logger
}

type productRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Category    string  `json:"category" binding:"required"`
	Price       int64   `json:"price" binding:"required,min=1"`
	Stock       int     `json:"stock" binding:"min=0"`
	ImageURL    *string `json:"image_url"`
}

// List is the public catalog view, read through the cache.
func (pc *ProductController) List(c *gin.Context) {
	page, limit := pagination(c)
	category := c.Query("category")

	if cached, ok := pc.Cache.GetList(c.Request.Context(), category, page, limit); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	products, total, err := pc.Repo.FindAll(c.Request.Context(), category, page, limit)
	if err != nil {
		apperrors.Respond(c, apperrors.ErrInternalServer)
		return
	}

	response := map[string]interface{}{
		"products": products,
		"total":    total,
		"page":     page,
	}
	pc.Cache.SetList(c.Request.Context(), category, page, limit, response)
	c.JSON(http.StatusOK, response)
}

// Get returns a single product, read through the cache.
func (pc *ProductController) Get(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	if cached, ok := pc.Cache.GetProduct(c.Request.Context(), id); ok {
		c.JSON(http.StatusOK, gin.H{"product": cached})
		return
	}

	product, err := pc.Repo.FindByID(c.Request.Context(), uuid.MustParse(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apperrors.Respond(c, apperrors.ErrNotFound)
			return
		}
		apperrors.Respond(c, apperrors.ErrInternalServer)
		return
	}

	pc.Cache.SetProduct(c.Request.Context(), product)
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// Create adds a product to the catalog (admin only).
func (pc *ProductController) Create(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	product := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		Active:      true,
	}
	if err := pc.Repo.Create(c.Request.Context(), product); err != nil {
		pc.Logger.Error("Failed to create product", zap.Error(err))
		apperrors.Respond(c, apperrors.ErrInternalServer)
		return
	}

	pc.Cache.Invalidate(c.Request.Context())
	c.JSON(http.StatusCreated, gin.H{"product": product})
}

// Update replaces the mutable fields of a product (admin only).
func (pc *ProductController) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
		return
	}

	product, err := pc.Repo.FindByID(c.Request.Context(), id)
	if err != nil {
		apperrors.Respond(c, apperrors.ErrNotFound)
		return
	}

	product.Name = req.Name
	product.Description = req.Description
	product.Category = req.Category
	product.Price = req.Price
	product.Stock = req.Stock
	product.ImageURL = req.ImageURL

	if err := pc.Repo.Update(c.Request.Context(), product); err != nil {
		apperrors.Respond(c, apperrors.ErrInternalServer)
		return
	}

	pc.Cache.Invalidate(c.Request.Context())
	pc.Cache.SetProduct(c.Request.Context(), product)
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// Delete soft-deletes a product (admin only).
func (pc *ProductController) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	if err := pc.Repo.Delete(c.Request.Context(), id); err != nil {
		apperrors.Respond(c, apperrors.ErrInternalServer)
		return
	}

	pc.Cache.DropProduct(c.Request.Context(), id.String())
	pc.Cache.Invalidate(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
