package invoices

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes wires the invoice endpoints under the supplied router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/invoices", h.List)
	r.Get("/invoices/{id}", h.Get)
	r.Delete("/invoices/{id}", h.Delete)
	r.Post("/invoices/sales", h.CreateSale)
	r.Post("/invoices/purchases", h.CreatePurchase)
	r.Post("/invoices/sale-returns", h.CreateSaleReturn)
	r.Post("/invoices/purchase-returns", h.CreatePurchaseReturn)
	r.Post("/invoices/challans", h.CreateChallan)
	r.Post("/invoices/challans/{id}/convert", h.ConvertChallan)
	r.Post("/invoices/{id}/payments", h.RecordPayment)
	r.Post("/invoices/{id}/discounts", h.RecordDiscount)
}
