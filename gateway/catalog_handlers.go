package gateway

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/example/rentalshop/pkg/apperr"
	"github.com/example/rentalshop/pkg/catalog"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func productFilter(c *gin.Context) (catalog.ProductFilter, error) {
	var f catalog.ProductFilter
	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return f, apperr.Validation("Invalid category_id")
		}
		cid := uint(id)
		f.CategoryID = &cid
	}
	if raw := c.Query("available"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return f, apperr.Validation("Invalid available flag")
		}
		f.Available = &b
	}
	return f, nil
}

func (g *Gateway) listProducts(c *gin.Context) {
	f, err := productFilter(c)
	if err != nil {
		g.fail(c, err)
		return
	}
	products, err := g.services.Catalog.ListProducts(c.Request.Context(), f)
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (g *Gateway) getProduct(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		g.fail(c, err)
		return
	}
	p, err := g.services.Catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (g *Gateway) deletedProducts(c *gin.Context) {
	products, err := g.services.Catalog.DeletedProducts(c.Request.Context())
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (g *Gateway) createProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.fail(c, bindError(err))
		return
	}
	p, err := g.services.Catalog.CreateProduct(c.Request.Context(), req.input())
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (g *Gateway) updateProduct(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		g.fail(c, err)
		return
	}
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.fail(c, bindError(err))
		return
	}
	p, err := g.services.Catalog.UpdateProduct(c.Request.Context(), id, req.input())
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (g *Gateway) deleteProduct(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		g.fail(c, err)
		return
	}
	if err := g.services.Catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

func (g *Gateway) restoreProduct(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		g.fail(c, err)
		return
	}
	if err := g.services.Catalog.RestoreProduct(c.Request.Context(), id); err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product restored"})
}

// exportProducts buffers the workbook so a failure can still be reported
// with the JSON envelope.
func (g *Gateway) exportProducts(c *gin.Context) {
	var buf bytes.Buffer
	if err := g.services.Catalog.ExportProducts(c.Request.Context(), &buf); err != nil {
		g.fail(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=products.xlsx")
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (g *Gateway) listCategories(c *gin.Context) {
	list, err := g.services.Catalog.ListCategories(c.Request.Context())
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (g *Gateway) getCategory(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		g.fail(c, err)
		return
	}
	cat, err := g.services.Catalog.GetCategory(c.Request.Context(), id)
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (g *Gateway) createCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.fail(c, bindError(err))
		return
	}
	cat, err := g.services.Catalog.CreateCategory(c.Request.Context(), catalog.CategoryInput(req))
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (g *Gateway) updateCategory(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		g.fail(c, err)
		return
	}
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.fail(c, bindError(err))
		return
	}
	cat, err := g.services.Catalog.UpdateCategory(c.Request.Context(), id, catalog.CategoryInput(req))
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (g *Gateway) deleteCategory(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		g.fail(c, err)
		return
	}
	if err := g.services.Catalog.DeleteCategory(c.Request.Context(), id); err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}

func (g *Gateway) listPages(c *gin.Context) {
	pages, err := g.services.Catalog.ListPages(c.Request.Context())
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pages)
}

func (g *Gateway) getPage(c *gin.Context) {
	page, err := g.services.Catalog.GetPage(c.Request.Context(), c.Param("pageName"))
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (g *Gateway) savePage(c *gin.Context) {
	var req pageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.fail(c, bindError(err))
		return
	}
	page, err := g.services.Catalog.SavePage(c.Request.Context(), c.Param("pageName"), catalog.PageInput(req))
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (g *Gateway) deletePage(c *gin.Context) {
	if err := g.services.Catalog.DeletePage(c.Request.Context(), c.Param("pageName")); err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Page deleted"})
}
