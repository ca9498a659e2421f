package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/example/solar-storefront/internal/auth"
	"github.com/example/solar-storefront/internal/bundle"
	"github.com/example/solar-storefront/internal/catalog"
	"github.com/example/solar-storefront/internal/checkout"
	"github.com/example/solar-storefront/internal/domain/cart"
	"github.com/example/solar-storefront/internal/storeapi"
	"go.uber.org/zap"
)

// StockCache receives reconciled stock after a checkout; catalog.Memory implements it.
type StockCache interface {
	SetAvailableStock(productID string, stock int)
}

// ServiceStore persists service bundles; storeapi.Client implements it.
type ServiceStore interface {
	SaveService(ctx context.Context, id string, draft bundle.Draft) (storeapi.Service, error)
}

type Handlers struct {
	catalog  catalog.Reader
	stock    StockCache
	orders   checkout.OrderAPI
	services ServiceStore
	notifier checkout.Notifier
	sessions *Sessions
	base     *zap.Logger
	logger   *zap.Logger
}

type HandlersConfig struct {
	Catalog  catalog.Reader
	Stock    StockCache
	Orders   checkout.OrderAPI
	Services ServiceStore
	Notifier checkout.Notifier
	Sessions *Sessions
	Logger   *zap.Logger
}

func NewHandlers(cfg HandlersConfig) *Handlers {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handlers{
		catalog:  cfg.Catalog,
		stock:    cfg.Stock,
		orders:   cfg.Orders,
		services: cfg.Services,
		notifier: cfg.Notifier,
		sessions: cfg.Sessions,
		base:     logger,
		logger:   logger.With(zap.String("component", "api")),
	}
	if h.sessions == nil {
		h.sessions = NewSessions(defaultSessionTTL, h.newOrchestrator)
	}
	return h
}

// newOrchestrator builds the checkout for a session; identity always comes from the
// request context.
func (h *Handlers) newOrchestrator(sessionID string, store *cart.Store) *checkout.Orchestrator {
	return checkout.NewOrchestrator(sessionID, store, h.orders, auth.ContextIdentity{}, h.notifier, h.base)
}

// Product Handlers

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context())
	if err != nil {
		h.logger.Error("list products", zap.Error(err))
		respondError(w, "Failed to fetch products", http.StatusInternalServerError)
		return
	}
	if category := r.URL.Query().Get("category"); category != "" {
		filtered := products[:0:0]
		for _, p := range products {
			if strings.EqualFold(p.Category, category) {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")
	product, err := h.catalog.Get(r.Context(), id)
	if errors.Is(err, catalog.ErrProductNotFound) {
		respondError(w, "Product not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("get product", zap.String("product_id", id), zap.Error(err))
		respondError(w, "Failed to fetch product", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// Cart Handlers

type cartLineView struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
	Subtotal int             `json:"subtotal"`
}

type cartView struct {
	Items         []cartLineView `json:"items"`
	Total         int            `json:"total"`
	ItemCount     int            `json:"item_count"`
	CheckoutState checkout.State `json:"checkout_state"`
}

func viewOf(sess *session) cartView {
	lines := sess.cart.Lines()
	items := make([]cartLineView, len(lines))
	for i, l := range lines {
		items[i] = cartLineView{Product: l.Product, Quantity: l.Quantity, Subtotal: l.Product.Price * l.Quantity}
	}
	return cartView{
		Items:         items,
		Total:         sess.cart.Total(),
		ItemCount:     sess.cart.ItemCount(),
		CheckoutState: sess.checkout.State(),
	}
}

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.resolve(w, r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	respondJSON(w, http.StatusOK, viewOf(sess))
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// pickProduct loads the product and applies the quantity picker bounds: 1 up to the
// product's available stock.
func (h *Handlers) pickProduct(ctx context.Context, req addItemRequest) (catalog.Product, int, string) {
	product, err := h.catalog.Get(ctx, req.ProductID)
	if errors.Is(err, catalog.ErrProductNotFound) {
		return catalog.Product{}, http.StatusNotFound, "Product not found"
	}
	if err != nil {
		h.logger.Error("get product", zap.String("product_id", req.ProductID), zap.Error(err))
		return catalog.Product{}, http.StatusInternalServerError, "Failed to fetch product"
	}
	if product.AvailableStock < 1 {
		return catalog.Product{}, http.StatusBadRequest, "Product is out of stock"
	}
	if req.Quantity < 1 || req.Quantity > product.AvailableStock {
		return catalog.Product{}, http.StatusBadRequest, fmt.Sprintf("Quantity must be between 1 and %d", product.AvailableStock)
	}
	return product, 0, ""
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	product, status, msg := h.pickProduct(r.Context(), req)
	if status != 0 {
		respondError(w, msg, status)
		return
	}

	sess := h.sessions.resolve(w, r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.cart.Add(product, req.Quantity)
	respondJSON(w, http.StatusOK, viewOf(sess))
}

func (h *Handlers) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	productID := extractPathParam(r.URL.Path, "/cart/items/")

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sess := h.sessions.resolve(w, r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.cart.UpdateQuantity(productID, req.Quantity)
	respondJSON(w, http.StatusOK, viewOf(sess))
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	productID := extractPathParam(r.URL.Path, "/cart/items/")

	sess := h.sessions.resolve(w, r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.cart.Remove(productID)
	respondJSON(w, http.StatusOK, viewOf(sess))
}

// Checkout Handlers

type checkoutResponse struct {
	State   checkout.State    `json:"state"`
	Message string            `json:"message"`
	Receipt *checkout.Receipt `json:"receipt,omitempty"`
	Missing []string          `json:"missing,omitempty"`
}

func decodeContact(r *http.Request) (checkout.Contact, error) {
	var c checkout.Contact
	if r.ContentLength == 0 {
		return c, nil
	}
	err := json.NewDecoder(r.Body).Decode(&c)
	return c, err
}

func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	contact, err := decodeContact(r)
	if err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sess := h.sessions.resolve(w, r)
	if !sess.submitting.TryLock() {
		respondError(w, checkout.MessageInFlight, http.StatusConflict)
		return
	}
	defer sess.submitting.Unlock()

	sess.mu.Lock()
	defer sess.mu.Unlock()

	result, err := sess.checkout.Submit(r.Context(), contact)
	h.respondCheckout(w, sess.checkout.State(), result, err)
}

func (h *Handlers) respondCheckout(w http.ResponseWriter, state checkout.State, result checkout.Result, err error) {
	if err != nil {
		resp := checkoutResponse{State: state, Message: checkout.UserMessage(err)}
		var guestErr *checkout.GuestInfoError
		if errors.As(err, &guestErr) {
			resp.Missing = guestErr.Missing
		}
		respondJSON(w, checkoutStatus(err), resp)
		return
	}

	if result.Outcome == checkout.OutcomeGuestInfoRequired {
		respondJSON(w, http.StatusAccepted, checkoutResponse{
			State:   state,
			Message: "Please provide your contact information",
		})
		return
	}

	h.applyReconciliation(result.Receipt)
	respondJSON(w, http.StatusCreated, checkoutResponse{
		State:   state,
		Message: checkout.MessageOrderPlaced,
		Receipt: result.Receipt,
	})
}

func checkoutStatus(err error) int {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart), errors.Is(err, checkout.ErrGuestInfoIncomplete):
		return http.StatusBadRequest
	case errors.Is(err, checkout.ErrSubmissionInFlight), errors.Is(err, checkout.ErrCheckoutRestarted):
		return http.StatusConflict
	case storeapi.IsUnauthorized(err):
		return http.StatusUnauthorized
	case errors.Is(err, checkout.ErrOrderSubmissionFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// applyReconciliation pushes the reconciled stock into the shared catalog cache so
// other shoppers see the units just sold.
func (h *Handlers) applyReconciliation(receipt *checkout.Receipt) {
	if h.stock == nil || receipt == nil {
		return
	}
	for _, change := range receipt.Reconciled {
		h.stock.SetAvailableStock(change.ProductID, change.Current)
	}
}

func (h *Handlers) CancelCheckout(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.resolve(w, r)
	if !sess.submitting.TryLock() {
		respondError(w, checkout.MessageInFlight, http.StatusConflict)
		return
	}
	defer sess.submitting.Unlock()

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if !sess.checkout.Close() {
		respondError(w, checkout.MessageInFlight, http.StatusConflict)
		return
	}
	respondJSON(w, http.StatusOK, viewOf(sess))
}

// BuyNow checks out a single product without touching the session cart. The guest
// contact comes with the request, so the guest form step is passed straight through.
func (h *Handlers) BuyNow(w http.ResponseWriter, r *http.Request) {
	var req struct {
		addItemRequest
		checkout.Contact
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	product, status, msg := h.pickProduct(r.Context(), req.addItemRequest)
	if status != 0 {
		respondError(w, msg, status)
		return
	}

	store := cart.NewStore()
	store.Add(product, req.Quantity)
	orch := h.newOrchestrator("buy-now:"+product.ID, store)

	result, err := orch.Submit(r.Context(), req.Contact)
	if err == nil && result.Outcome == checkout.OutcomeGuestInfoRequired {
		result, err = orch.Submit(r.Context(), req.Contact)
	}
	h.respondCheckout(w, orch.State(), result, err)
}

// Service Handlers

type quoteResponse struct {
	Quote  bundle.Quote `json:"quote"`
	Errors []string     `json:"errors,omitempty"`
}

func (h *Handlers) calculator(ctx context.Context) (*bundle.Calculator, error) {
	products, err := h.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	return bundle.NewCalculator(products), nil
}

func validationMessages(err error) []string {
	var incomplete *bundle.IncompleteError
	if errors.As(err, &incomplete) {
		return incomplete.Messages()
	}
	return nil
}

func (h *Handlers) QuoteService(w http.ResponseWriter, r *http.Request) {
	var draft bundle.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	calc, err := h.calculator(r.Context())
	if err != nil {
		h.logger.Error("load bundle options", zap.Error(err))
		respondError(w, "Failed to fetch available products", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, quoteResponse{
		Quote:  calc.Quote(draft),
		Errors: validationMessages(draft.Validate()),
	})
}

func (h *Handlers) ServiceOptions(w http.ResponseWriter, r *http.Request) {
	calc, err := h.calculator(r.Context())
	if err != nil {
		h.logger.Error("load bundle options", zap.Error(err))
		respondError(w, "Failed to fetch available products", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, calc.Options())
}

func (h *Handlers) SaveService(w http.ResponseWriter, r *http.Request) {
	id := ""
	if r.Method == http.MethodPut {
		id = extractPathParam(r.URL.Path, "/services/")
		if id == "" {
			respondError(w, "Service id is required", http.StatusBadRequest)
			return
		}
	}

	var draft bundle.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := draft.Validate(); err != nil {
		msgs := validationMessages(err)
		respondJSON(w, http.StatusBadRequest, map[string]any{"error": msgs[0], "errors": msgs})
		return
	}

	calc, err := h.calculator(r.Context())
	if err != nil {
		h.logger.Error("load bundle options", zap.Error(err))
		respondError(w, "Failed to fetch available products", http.StatusInternalServerError)
		return
	}

	saved, err := h.services.SaveService(r.Context(), id, draft)
	if err != nil {
		msg := storeapi.MessageServiceFailed
		var apiErr *storeapi.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			msg = apiErr.Message
		}
		h.logger.Warn("save service failed", zap.String("service_id", id), zap.Error(err))
		respondError(w, msg, http.StatusBadGateway)
		return
	}

	status, verb := http.StatusCreated, "created"
	if id != "" {
		status, verb = http.StatusOK, "updated"
	}
	h.logger.Info("service saved", zap.String("service_id", saved.ID), zap.String("action", verb))
	respondJSON(w, status, map[string]any{
		"message": "Service " + verb + " successfully",
		"service": saved,
		"quote":   calc.Quote(draft),
	})
}

// Account Handlers

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	respondJSON(w, http.StatusOK, claims.Profile)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}

func extractPathParam(path, prefix string) string {
	return strings.Trim(strings.TrimPrefix(path, prefix), "/")
}
