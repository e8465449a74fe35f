package gateway

import (
	"net/http"

	"github.com/example/shopfront/pkg/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type createProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
}

type updateProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
}

// @Summary  Create a product
// @Tags     products
// @Accept   json
// @Produce  json
// @Param    body body createProductRequest true "Product"
// @Success  201 {object} Response{body=models.Product}
// @Failure  409 {object} Response
// @Security BearerAuth
// @Router   /products [post]
func (g *Gateway) createProduct(c *gin.Context) {
	var req createProductRequest
	if err := bindJSON(c, &req); err != nil {
		g.fail(c, err)
		return
	}

	product, err := g.services.Catalog.Create(c.Request.Context(), service.CreateProductInput(req))
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Product created successfully", product)
}

// @Summary  List products
// @Tags     products
// @Produce  json
// @Param    page      query int false "Page number"
// @Param    page_size query int false "Page size"
// @Success  200 {object} Response
// @Router   /products [get]
func (g *Gateway) listProducts(c *gin.Context) {
	page, err := bindPage(c)
	if err != nil {
		g.fail(c, err)
		return
	}

	products, total, err := g.services.Catalog.List(c.Request.Context(), page)
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Products retrieved successfully", newListBody(products, total, page))
}

// @Summary  Get a product
// @Tags     products
// @Produce  json
// @Param    id path int true "Product ID"
// @Success  200 {object} Response{body=models.Product}
// @Failure  404 {object} Response
// @Router   /products/{id} [get]
func (g *Gateway) getProduct(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		g.fail(c, err)
		return
	}

	product, err := g.services.Catalog.Get(c.Request.Context(), id)
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Product retrieved successfully", product)
}

// @Summary  Update a product
// @Tags     products
// @Accept   json
// @Produce  json
// @Param    id   path int                  true "Product ID"
// @Param    body body updateProductRequest true "Fields to change"
// @Success  200 {object} Response{body=models.Product}
// @Security BearerAuth
// @Router   /products/{id} [put]
func (g *Gateway) updateProduct(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		g.fail(c, err)
		return
	}
	var req updateProductRequest
	if err := bindJSON(c, &req); err != nil {
		g.fail(c, err)
		return
	}

	product, err := g.services.Catalog.Update(c.Request.Context(), id, service.UpdateProductInput(req))
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Product updated successfully", product)
}

// @Summary  Delete a product
// @Tags     products
// @Param    id path int true "Product ID"
// @Success  200 {object} Response
// @Security BearerAuth
// @Router   /products/{id} [delete]
func (g *Gateway) deleteProduct(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		g.fail(c, err)
		return
	}

	if err := g.services.Catalog.Delete(c.Request.Context(), id); err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Product deleted successfully", nil)
}
