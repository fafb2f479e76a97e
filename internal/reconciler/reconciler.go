// Package reconciler keeps cart state consistent with product state after
// the fact. It consumes product change events and rewrites affected carts:
// subtotals track price and offer changes, line items shrink or vanish when
// stock is oversold or a product disappears. Every rewrite is a full
// recompute from live product rows, which makes redelivery of the same
// notification harmless.
package reconciler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/myspares/catalog-platform/internal/feed"
	"github.com/myspares/catalog-platform/internal/metrics"
	"github.com/myspares/catalog-platform/internal/models"
	repository "github.com/myspares/catalog-platform/internal/repositories"
)

type Reconciler struct {
	products repository.ProductRepository
	carts    repository.CartRepository
	audits   repository.AuditRepository
}

func New(products repository.ProductRepository, carts repository.CartRepository, audits repository.AuditRepository) *Reconciler {
	return &Reconciler{products: products, carts: carts, audits: audits}
}

// Handle implements feed.Handler for the products collection. Errors are
// contained here: a reconciliation failure degrades to a stale cart, it
// never propagates into the listener loop.
func (r *Reconciler) Handle(ctx context.Context, event *feed.ChangeEvent) {
	switch event.Operation {
	case feed.OpDelete:
		r.PurgeProduct(ctx, event.DocumentKey)

	case feed.OpUpdate:
		// One update can touch several watched fields. Each changed field
		// gets its handling; full recomputes make overlap harmless.
		if event.FieldChanged("stock") {
			if stock, ok := r.stockForEvent(ctx, event); ok {
				r.ReconcileStock(ctx, event.DocumentKey, stock)
			}
		}

		if event.FieldChanged("price") || event.FieldChanged("offers") {
			r.RecomputeForProduct(ctx, event.DocumentKey)
		}

	case feed.OpInsert:
		// a brand-new product cannot be in any cart yet
	}
}

// stockForEvent reads the new stock level from the event document, or
// re-reads the row by key when the trigger dropped full_document from an
// oversized NOTIFY payload. A row that is already gone counts as stock
// zero, which downstream treats like a delete.
func (r *Reconciler) stockForEvent(ctx context.Context, event *feed.ChangeEvent) (int, bool) {
	if product, err := event.Product(); err == nil {
		return product.Stock, true
	}

	product, err := r.products.GetProductByID(ctx, event.DocumentKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, true
		}

		slog.Error("failed to re-read product for stock change",
			slog.String("productId", event.DocumentKey.String()),
			slog.Any("error", err))

		return 0, false
	}

	return product.Stock, true
}

// RecomputeForProduct rebuilds the subtotal of every cart holding the
// product. One cart's failure is logged and skipped so it cannot abort
// the others.
func (r *Reconciler) RecomputeForProduct(ctx context.Context, productID uuid.UUID) {
	carts, err := r.carts.ListCartsWithProduct(ctx, productID)
	if err != nil {
		slog.Error("failed to list carts for recompute",
			slog.String("productId", productID.String()),
			slog.Any("error", err))

		return
	}

	for _, cart := range carts {
		if err := r.recomputeCart(ctx, cart); err != nil {
			slog.Error("failed to recompute cart",
				slog.String("cartId", cart.ID.String()),
				slog.String("productId", productID.String()),
				slog.Any("error", err))

			continue
		}

		metrics.CartsReconciledTotal.WithLabelValues("price").Inc()
		slog.Info("cart subtotal recalculated",
			slog.String("cartId", cart.ID.String()),
			slog.String("productId", productID.String()))
	}
}

// PurgeProduct removes a deleted product's line item from every cart that
// holds it and recomputes those carts' subtotals.
func (r *Reconciler) PurgeProduct(ctx context.Context, productID uuid.UUID) {
	carts, err := r.carts.ListCartsWithProduct(ctx, productID)
	if err != nil {
		slog.Error("failed to list carts for purge",
			slog.String("productId", productID.String()),
			slog.Any("error", err))

		return
	}

	for _, cart := range carts {
		delete(cart.Items, productID.String())

		if err := r.recomputeCart(ctx, cart); err != nil {
			slog.Error("failed to purge product from cart",
				slog.String("cartId", cart.ID.String()),
				slog.String("productId", productID.String()),
				slog.Any("error", err))

			continue
		}

		metrics.CartsReconciledTotal.WithLabelValues("purge").Inc()
		slog.Info("removed deleted product from cart",
			slog.String("cartId", cart.ID.String()),
			slog.String("productId", productID.String()))
	}
}

// ReconcileStock redistributes an oversold product across the carts that
// hold it. Stock at or below zero behaves like a delete; stock that still
// covers every request leaves carts untouched.
func (r *Reconciler) ReconcileStock(ctx context.Context, productID uuid.UUID, newStock int) {
	if newStock <= 0 {
		r.PurgeProduct(ctx, productID)
		return
	}

	carts, err := r.carts.ListCartsWithProduct(ctx, productID)
	if err != nil {
		slog.Error("failed to list carts for stock reconciliation",
			slog.String("productId", productID.String()),
			slog.Any("error", err))

		return
	}

	requests := make([]StockRequest, 0, len(carts))
	totalRequested := 0

	for _, cart := range carts {
		quantity := cart.Items[productID.String()].Quantity
		if quantity <= 0 {
			continue
		}

		requests = append(requests, StockRequest{CartID: cart.ID, Quantity: quantity})
		totalRequested += quantity
	}

	if totalRequested == 0 || totalRequested <= newStock {
		return
	}

	allocations := Apportion(requests, newStock)

	allocated := make(map[uuid.UUID]int, len(allocations))
	for _, allocation := range allocations {
		allocated[allocation.CartID] = allocation.Allocated
	}

	// Best-effort batch: each cart update stands alone, a failed cart is
	// retried on the next stock event rather than aborting the rest.
	for _, cart := range carts {
		share, ok := allocated[cart.ID]
		if !ok {
			continue
		}

		key := productID.String()

		if share == 0 {
			delete(cart.Items, key)
		} else {
			item := cart.Items[key]
			item.Quantity = share
			cart.Items[key] = item
		}

		if err := r.recomputeCart(ctx, cart); err != nil {
			slog.Error("failed to apply stock allocation to cart",
				slog.String("cartId", cart.ID.String()),
				slog.String("productId", productID.String()),
				slog.Any("error", err))

			continue
		}

		metrics.CartsReconciledTotal.WithLabelValues("stock").Inc()
	}

	metrics.StockRedistributionsTotal.Inc()
	r.auditRedistribution(ctx, productID, totalRequested, newStock)
}

// ResyncAllCarts recomputes every cart that still references a product,
// cart by cart. Used as the catch-up pass after the feed connection was
// down, when an unknown number of notifications were lost.
func (r *Reconciler) ResyncAllCarts(ctx context.Context) {
	carts, err := r.carts.ListCarts(ctx)
	if err != nil {
		slog.Error("failed to list carts for resync", slog.Any("error", err))
		return
	}

	for _, cart := range carts {
		if err := r.recomputeCart(ctx, cart); err != nil {
			slog.Error("failed to resync cart",
				slog.String("cartId", cart.ID.String()),
				slog.Any("error", err))

			continue
		}

		metrics.CartsReconciledTotal.WithLabelValues("resync").Inc()
	}
}

// recomputeCart rebuilds a cart's subtotal from scratch with live product
// lookups and writes items + subtotal + updated_at as one atomic update.
// Items whose product no longer exists are dropped along the way.
func (r *Reconciler) recomputeCart(ctx context.Context, cart *models.Cart) error {
	now := time.Now()

	var subtotal float64

	for key, item := range cart.Items {
		product, err := r.products.GetProductByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				delete(cart.Items, key)
				continue
			}

			return err
		}

		subtotal += float64(item.Quantity) * product.EffectivePrice(now)
	}

	cart.Subtotal = subtotal
	cart.UpdatedAt = now

	return r.carts.UpdateCart(ctx, cart)
}

// auditRedistribution appends a summary record, separate from the
// per-collection change log the audit logger maintains.
func (r *Reconciler) auditRedistribution(ctx context.Context, productID uuid.UUID, totalRequested, newStock int) {
	summary, err := json.Marshal(map[string]any{
		"product_id":      productID,
		"total_requested": totalRequested,
		"new_stock":       newStock,
	})
	if err != nil {
		slog.Error("failed to encode redistribution summary", slog.Any("error", err))
		return
	}

	record := &models.AuditRecord{
		ID:           uuid.New(),
		Collection:   "stock_reconciliations",
		Operation:    string(feed.OpUpdate),
		DocumentKey:  productID,
		FullDocument: summary,
		Timestamp:    time.Now().UTC(),
	}

	if err := r.audits.Insert(ctx, record); err != nil {
		slog.Error("failed to log stock redistribution",
			slog.String("productId", productID.String()),
			slog.Any("error", err))
	}
}
