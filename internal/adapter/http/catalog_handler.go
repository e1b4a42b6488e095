package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domain "github.com/loihd98/web-ecommerce-sub000/internal/entity"
	"github.com/loihd98/web-ecommerce-sub000/internal/usecase"
)

// CatalogHandler is the storefront read side over products.
type CatalogHandler struct {
	catalog *usecase.CatalogQueries
}

func NewCatalogHandler(catalog *usecase.CatalogQueries) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

type productResp struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	PriceCents    int64  `json:"priceCents"`
	DiscountCents int64  `json:"discountCents,omitempty"`
	Stock         int    `json:"stock"`
	Sold          int    `json:"sold"`
	CategoryID    string `json:"categoryId,omitempty"`
	Featured      bool   `json:"featured"`
}

func toProductResp(p *domain.Product) productResp {
	return productResp{
		ID:            p.ID,
		Name:          p.Name,
		PriceCents:    p.PriceCents,
		DiscountCents: p.DiscountCents,
		Stock:         p.Stock,
		Sold:          p.Sold,
		CategoryID:    p.CategoryID,
		Featured:      p.Featured,
	}
}

// ListProducts handles GET /v1/products.
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	products, total, err := h.catalog.List(c.Request.Context(),
		intQuery(c, "page", 1), intQuery(c, "limit", 20))
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]productResp, 0, len(products))
	for i := range products {
		out = append(out, toProductResp(&products[i]))
	}
	c.JSON(http.StatusOK, gin.H{"products": out, "total": total})
}

// GetProduct handles GET /v1/products/:id.
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	p, err := h.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResp(p))
}
