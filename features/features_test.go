package features

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"testing"

	"github.com/cucumber/godog"
	"github.com/example/solar-storefront/internal/bundle"
	"github.com/example/solar-storefront/internal/catalog"
	"github.com/example/solar-storefront/internal/checkout"
	"github.com/example/solar-storefront/internal/checkout/mocks"
	"github.com/example/solar-storefront/internal/domain/cart"
	"github.com/example/solar-storefront/internal/storeapi"
)

type storefrontContext struct {
	catalog  *catalog.Memory
	store    *cart.Store
	orders   *mocks.MockOrderAPI
	identity *mocks.StaticIdentity
	checkout *checkout.Orchestrator

	result checkout.Result
	err    error

	editor *bundle.Editor
}

func (c *storefrontContext) reset() {
	c.catalog = catalog.NewMemory()
	c.store = cart.NewStore()
	c.orders = mocks.NewMockOrderAPI()
	c.identity = &mocks.StaticIdentity{}
	c.checkout = checkout.NewOrchestrator("feature-session", c.store, c.orders, c.identity, nil, nil)
	c.result = checkout.Result{}
	c.err = nil
	c.editor = nil
}

// Given steps

func (c *storefrontContext) theCatalogContains(table *godog.Table) error {
	if len(table.Rows) < 2 {
		return errors.New("catalog table needs a header and at least one row")
	}
	header := make(map[string]int)
	for i, cell := range table.Rows[0].Cells {
		header[cell.Value] = i
	}

	var products []catalog.Product
	for _, row := range table.Rows[1:] {
		value := func(col string) string {
			if i, ok := header[col]; ok {
				return row.Cells[i].Value
			}
			return ""
		}
		price, err := strconv.Atoi(value("price"))
		if err != nil {
			return fmt.Errorf("price: %w", err)
		}
		stock, err := strconv.Atoi(value("stock"))
		if err != nil {
			return fmt.Errorf("stock: %w", err)
		}
		products = append(products, catalog.Product{
			ID:             value("id"),
			Name:           value("name"),
			Price:          price,
			AvailableStock: stock,
			Category:       value("category"),
		})
	}
	c.catalog.Replace(products)
	return nil
}

func (c *storefrontContext) theShopperAddsToTheCart(quantity int, productID string) error {
	p, err := c.catalog.Get(context.Background(), productID)
	if err != nil {
		return err
	}
	c.store.Add(p, quantity)
	return nil
}

func (c *storefrontContext) theShopperIsSignedInAs(email string) error {
	c.identity.Known = true
	c.identity.Account = checkout.Account{UserID: "user-1", Contact: checkout.Contact{Email: email}}
	return nil
}

func (c *storefrontContext) theOrderAPIRejectsOrdersWith(message string) error {
	c.orders.SubmitErr = &storeapi.APIError{StatusCode: 409, Message: message}
	return nil
}

// When steps

func (c *storefrontContext) submit(contact checkout.Contact) error {
	c.result, c.err = c.checkout.Submit(context.Background(), contact)
	if c.err == nil && c.result.Receipt != nil {
		for _, change := range c.result.Receipt.Reconciled {
			c.catalog.SetAvailableStock(change.ProductID, change.Current)
		}
	}
	return nil
}

func (c *storefrontContext) theShopperChecksOut() error {
	return c.submit(checkout.Contact{})
}

func (c *storefrontContext) theShopperChecksOutAs(name, email, phone, location string) error {
	return c.submit(checkout.Contact{Name: name, Email: email, Phone: phone, Location: location})
}

// Then steps

func (c *storefrontContext) checkoutFailsWith(message string) error {
	if c.err == nil {
		return errors.New("expected checkout to fail")
	}
	if got := checkout.UserMessage(c.err); got != message {
		return fmt.Errorf("expected message %q, got %q", message, got)
	}
	return nil
}

func (c *storefrontContext) theGuestFormIsShown() error {
	if c.err != nil {
		return c.err
	}
	if c.result.Outcome != checkout.OutcomeGuestInfoRequired {
		return fmt.Errorf("expected guest form, got outcome %q", c.result.Outcome)
	}
	return nil
}

func (c *storefrontContext) theOrderIsPlacedWithATotalOf(total int) error {
	if c.err != nil {
		return c.err
	}
	if c.result.Receipt == nil {
		return fmt.Errorf("expected a receipt, got outcome %q", c.result.Outcome)
	}
	if c.result.Receipt.Total != total {
		return fmt.Errorf("expected total %d, got %d", total, c.result.Receipt.Total)
	}
	return nil
}

func (c *storefrontContext) theOrderAPIWasCalledTimes(n int) error {
	if got := c.orders.CallCount(); got != n {
		return fmt.Errorf("expected %d order API calls, got %d", n, got)
	}
	return nil
}

func (c *storefrontContext) lastSubmission() (checkout.OrderSubmission, error) {
	if c.orders.CallCount() == 0 {
		return checkout.OrderSubmission{}, errors.New("order API was not called")
	}
	return c.orders.SubmitCalls[len(c.orders.SubmitCalls)-1], nil
}

func (c *storefrontContext) theOrderAPIReceivedAGuestOrderFor(email string) error {
	sub, err := c.lastSubmission()
	if err != nil {
		return err
	}
	if !sub.Guest || sub.Email != email || sub.Name == "" || sub.Phone == "" || sub.Location == "" {
		return fmt.Errorf("expected full guest order for %s, got %+v", email, sub)
	}
	return nil
}

func (c *storefrontContext) theOrderAPIReceivedAnAccountOrderFor(email string) error {
	sub, err := c.lastSubmission()
	if err != nil {
		return err
	}
	if sub.Guest || sub.Email != email || sub.Name != "" || sub.Phone != "" || sub.Location != "" {
		return fmt.Errorf("expected email-only order for %s, got %+v", email, sub)
	}
	return nil
}

func (c *storefrontContext) theCachedStockOfIs(productID string, stock int) error {
	p, err := c.catalog.Get(context.Background(), productID)
	if err != nil {
		return err
	}
	if p.AvailableStock != stock {
		return fmt.Errorf("expected stock %d for %s, got %d", stock, productID, p.AvailableStock)
	}
	return nil
}

func (c *storefrontContext) theCartIsEmpty() error {
	if !c.store.IsEmpty() {
		return fmt.Errorf("expected empty cart, got %d lines", c.store.Len())
	}
	return nil
}

func (c *storefrontContext) theCartTotalIs(total int) error {
	if got := c.store.Total(); got != total {
		return fmt.Errorf("expected cart total %d, got %d", total, got)
	}
	return nil
}

func (c *storefrontContext) theCheckoutStateIs(state string) error {
	if got := c.checkout.State(); string(got) != state {
		return fmt.Errorf("expected state %q, got %q", state, got)
	}
	return nil
}

// Bundle steps

func (c *storefrontContext) aNewServiceDraft() error {
	products, err := c.catalog.List(context.Background())
	if err != nil {
		return err
	}
	c.editor = bundle.NewEditor(bundle.NewCalculator(products), bundle.NewDraft())
	return nil
}

func (c *storefrontContext) theAdminSetsLaborTo(cost int) error {
	c.editor.SetLaborCost(cost)
	return nil
}

func (c *storefrontContext) theAdminSelectsForWithQuantity(productID, category string, quantity int) error {
	cat := bundle.Category(category)
	if !cat.Valid() {
		return fmt.Errorf("unknown category %q", category)
	}
	c.editor.SelectProduct(cat, productID)
	c.editor.SetQuantity(cat, quantity)
	return nil
}

func (c *storefrontContext) theBundleTotalIs(total int) error {
	if got := c.editor.Quote().Total; got != total {
		return fmt.Errorf("expected bundle total %d, got %d", total, got)
	}
	return nil
}

func (c *storefrontContext) theCategoryCostIs(category string, cost int) error {
	if got := c.editor.Quote().Products[bundle.Category(category)]; got != cost {
		return fmt.Errorf("expected %s cost %d, got %d", category, cost, got)
	}
	return nil
}

func (c *storefrontContext) validationReports(message string) error {
	var incomplete *bundle.IncompleteError
	if !errors.As(c.editor.Validate(), &incomplete) {
		return errors.New("expected the draft to be incomplete")
	}
	if !slices.Contains(incomplete.Messages(), message) {
		return fmt.Errorf("expected %q in %v", message, incomplete.Messages())
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	sc := &storefrontContext{}

	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		sc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^the catalog contains:$`, sc.theCatalogContains)
	ctx.Step(`^the shopper adds (\d+) of "([^"]*)" to the cart$`, sc.theShopperAddsToTheCart)
	ctx.Step(`^the shopper is signed in as "([^"]*)"$`, sc.theShopperIsSignedInAs)
	ctx.Step(`^the order API rejects orders with "([^"]*)"$`, sc.theOrderAPIRejectsOrdersWith)
	ctx.Step(`^a new service draft$`, sc.aNewServiceDraft)

	// When steps
	ctx.Step(`^the shopper checks out$`, sc.theShopperChecksOut)
	ctx.Step(`^the shopper checks out as "([^"]*)" "([^"]*)" "([^"]*)" "([^"]*)"$`, sc.theShopperChecksOutAs)
	ctx.Step(`^the admin sets labor to (\d+)$`, sc.theAdminSetsLaborTo)
	ctx.Step(`^the admin selects "([^"]*)" for "([^"]*)" with quantity (\d+)$`, sc.theAdminSelectsForWithQuantity)

	// Then steps
	ctx.Step(`^checkout fails with "([^"]*)"$`, sc.checkoutFailsWith)
	ctx.Step(`^the guest form is shown$`, sc.theGuestFormIsShown)
	ctx.Step(`^the order is placed with a total of (\d+)$`, sc.theOrderIsPlacedWithATotalOf)
	ctx.Step(`^the order API was called (\d+) times$`, sc.theOrderAPIWasCalledTimes)
	ctx.Step(`^the order API received a guest order for "([^"]*)"$`, sc.theOrderAPIReceivedAGuestOrderFor)
	ctx.Step(`^the order API received an account order for "([^"]*)"$`, sc.theOrderAPIReceivedAnAccountOrderFor)
	ctx.Step(`^the cached stock of "([^"]*)" is (\d+)$`, sc.theCachedStockOfIs)
	ctx.Step(`^the cart is empty$`, sc.theCartIsEmpty)
	ctx.Step(`^the cart total is (\d+)$`, sc.theCartTotalIs)
	ctx.Step(`^the checkout state is "([^"]*)"$`, sc.theCheckoutStateIs)
	ctx.Step(`^the bundle total is (\d+)$`, sc.theBundleTotalIs)
	ctx.Step(`^the "([^"]*)" cost is (\d+)$`, sc.theCategoryCostIs)
	ctx.Step(`^validation reports "([^"]*)"$`, sc.validationReports)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"checkout.feature", "bundle.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
