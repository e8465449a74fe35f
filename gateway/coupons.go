package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type createCouponRequest struct {
	Code            string          `json:"code" binding:"required"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

// @Summary  Create a coupon
// @Tags     coupons
// @Accept   json
// @Produce  json
// @Param    body body createCouponRequest true "Coupon"
// @Success  201 {object} Response{body=models.Coupon}
// @Failure  409 {object} Response
// @Security BearerAuth
// @Router   /coupons [post]
func (g *Gateway) createCoupon(c *gin.Context) {
	var req createCouponRequest
	if err := bindJSON(c, &req); err != nil {
		g.fail(c, err)
		return
	}

	coupon, err := g.services.Coupons.Create(c.Request.Context(), req.Code, req.DiscountPercent)
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Coupon created successfully", coupon)
}

// @Summary  List coupons
// @Tags     coupons
// @Produce  json
// @Success  200 {object} Response
// @Security BearerAuth
// @Router   /coupons [get]
func (g *Gateway) listCoupons(c *gin.Context) {
	page, err := bindPage(c)
	if err != nil {
		g.fail(c, err)
		return
	}

	coupons, total, err := g.services.Coupons.List(c.Request.Context(), page)
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Coupons retrieved successfully", newListBody(coupons, total, page))
}
