package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"duka-pos/internal/checkout"
	"duka-pos/internal/domain"
	"duka-pos/internal/money"
)

type scanRequest struct {
	Code     string `json:"code" binding:"required,max=64"`
	Quantity int    `json:"quantity" binding:"omitempty,gte=1,max=10000"`
}

type quantityRequest struct {
	Quantity *int `json:"quantity" binding:"required,max=10000"`
}

// paymentRequest accepts the tendered amount either as a decimal string
// ("500.00") or as integer cents.
type paymentRequest struct {
	Method        string `json:"method" binding:"required"`
	Tendered      string `json:"tendered" binding:"omitempty,max=20"`
	TenderedCents *int64 `json:"tenderedCents" binding:"omitempty,gte=0"`
	Phone         string `json:"phone" binding:"omitempty,max=20,phone"`
	CustomerName  string `json:"customerName" binding:"omitempty,max=120"`
}

func (r paymentRequest) draft() (checkout.Draft, error) {
	method, err := domain.ParsePaymentMethod(r.Method)
	if err != nil {
		return checkout.Draft{}, err
	}
	d := checkout.Draft{
		Method:       method,
		Phone:        strings.TrimSpace(r.Phone),
		CustomerName: strings.TrimSpace(r.CustomerName),
	}
	switch {
	case r.TenderedCents != nil:
		d.TenderedCents = *r.TenderedCents
	case strings.TrimSpace(r.Tendered) != "":
		cents, err := money.Parse(r.Tendered)
		if err != nil {
			return checkout.Draft{}, err
		}
		d.TenderedCents = cents
	}
	return d, nil
}

func (h *api) getStore(c *gin.Context) {
	c.JSON(http.StatusOK, storeFrom(c))
}

func (h *api) listProducts(c *gin.Context) {
	products, err := h.catalog.List(c.Request.Context(), storeFrom(c).ID)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(products), "results": products})
}

func (h *api) getProduct(c *gin.Context) {
	p, err := h.catalog.Get(c.Request.Context(), storeFrom(c).ID, c.Param("productID"))
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// lookup resolves a code the way a scan would, without touching any cart.
func (h *api) lookup(c *gin.Context) {
	item, err := h.catalog.Resolve(c.Request.Context(), storeFrom(c).ID, c.Query("code"))
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":             item.ID,
		"code":           item.Code,
		"name":           item.Name,
		"unitPriceCents": item.UnitPriceCents,
		"unitPrice":      money.Format(item.UnitPriceCents),
		"availableStock": item.AvailableStock,
	})
}

func (h *api) listDebtors(c *gin.Context) {
	debtors, err := h.debtors.ListOutstanding(c.Request.Context(), storeFrom(c).ID)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	out := make([]debtorView, 0, len(debtors))
	var owed int64
	for _, d := range debtors {
		outstanding := d.OutstandingCents()
		owed += outstanding
		out = append(out, debtorView{Debtor: d, OutstandingCents: outstanding, Outstanding: money.Format(outstanding)})
	}
	c.JSON(http.StatusOK, gin.H{
		"count":            len(out),
		"outstandingCents": owed,
		"outstanding":      money.Format(owed),
		"results":          out,
	})
}

func (h *api) openSession(c *gin.Context) {
	sess, err := h.pos.Open(c.Request.Context(), storeFrom(c).ID)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toSessionView(sess, h.pos.Rules()))
}

func (h *api) getSession(c *gin.Context) {
	sess, err := h.pos.Get(c.Request.Context(), storeFrom(c).ID, c.Param("sessionID"))
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSessionView(sess, h.pos.Rules()))
}

func (h *api) closeSession(c *gin.Context) {
	if err := h.pos.Close(c.Request.Context(), storeFrom(c).ID, c.Param("sessionID")); err != nil {
		h.serviceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *api) scan(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	sess, clamp, err := h.pos.Scan(c.Request.Context(), storeFrom(c).ID, c.Param("sessionID"), req.Code, req.Quantity)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, withClamp(toSessionView(sess, h.pos.Rules()), clamp))
}

func (h *api) setQuantity(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	sess, clamp, err := h.pos.SetQuantity(c.Request.Context(), storeFrom(c).ID, c.Param("sessionID"), c.Param("lineID"), *req.Quantity)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, withClamp(toSessionView(sess, h.pos.Rules()), clamp))
}

func (h *api) removeLine(c *gin.Context) {
	sess, err := h.pos.RemoveLine(c.Request.Context(), storeFrom(c).ID, c.Param("sessionID"), c.Param("lineID"))
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSessionView(sess, h.pos.Rules()))
}

func (h *api) clearCart(c *gin.Context) {
	sess, err := h.pos.Clear(c.Request.Context(), storeFrom(c).ID, c.Param("sessionID"))
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSessionView(sess, h.pos.Rules()))
}

func (h *api) beginCheckout(c *gin.Context) {
	sess, err := h.pos.BeginCheckout(c.Request.Context(), storeFrom(c).ID, c.Param("sessionID"))
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSessionView(sess, h.pos.Rules()))
}

func (h *api) selectPayment(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	d, err := req.draft()
	if err != nil {
		h.serviceError(c, err)
		return
	}
	sess, err := h.pos.SelectPayment(c.Request.Context(), storeFrom(c).ID, c.Param("sessionID"), d)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSessionView(sess, h.pos.Rules()))
}

func (h *api) submitCheckout(c *gin.Context) {
	sess, receipt, err := h.pos.SubmitCheckout(c.Request.Context(), storeFrom(c).ID, c.Param("sessionID"))
	if err != nil {
		status, code := classify(err)
		resp := errorResponse{Error: errorBody{Code: code, Message: err.Error()}}
		if sess != nil {
			v := toSessionView(sess, h.pos.Rules())
			resp.Session = &v
		}
		c.AbortWithStatusJSON(status, resp)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"receipt": toReceiptView(receipt),
		"session": toSessionView(sess, h.pos.Rules()),
	})
}

func (h *api) cancelCheckout(c *gin.Context) {
	sess, err := h.pos.CancelCheckout(c.Request.Context(), storeFrom(c).ID, c.Param("sessionID"))
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSessionView(sess, h.pos.Rules()))
}
