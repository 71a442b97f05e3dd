package service

import (
	"context"
	"net/http"
	"testing"

	"storefront-service/internal/models"
	"storefront-service/internal/store/storetest"
	"storefront-service/internal/util"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestStoreCreateAndSlugConflict(t *testing.T) {
	s := storetest.New(t)
	alice := storetest.Seller(t, s, "9000000001")
	bob := storetest.Seller(t, s, "9000000002")
	svc := NewStoreService(s)
	ctx := context.Background()

	st, err := svc.Create(ctx, alice.ID, &CreateStoreRequest{Name: "Fresh Farm", WhatsappNumber: "9990001111"})
	require.NoError(t, err)
	assert.Equal(t, "fresh-farm", st.Slug)
	assert.Equal(t, models.StoreActive, st.Status)

	_, err = svc.Create(ctx, bob.ID, &CreateStoreRequest{Name: "fresh   FARM!", WhatsappNumber: "9990002222"})
	assertStatus(t, err, http.StatusConflict, "Store name already exists")

	_, err = svc.Create(ctx, bob.ID, &CreateStoreRequest{Name: "No Phone"})
	assertStatus(t, err, http.StatusBadRequest, "Missing required fields")

	assert.Equal(t, 1, storetest.Count(t, s, "stores"))
}

func TestStoreUpdateIsPartialAndOwnerScoped(t *testing.T) {
	s := storetest.New(t)
	alice := storetest.Seller(t, s, "9000000001")
	bob := storetest.Seller(t, s, "9000000002")
	svc := NewStoreService(s)
	ctx := context.Background()

	st, err := svc.Create(ctx, alice.ID, &CreateStoreRequest{Name: "Fresh Farm", WhatsappNumber: "9990001111", UpiID: strPtr("farm@upi")})
	require.NoError(t, err)
	other, err := svc.Create(ctx, alice.ID, &CreateStoreRequest{Name: "Second Shop", WhatsappNumber: "9990001111"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, bob.ID, st.ID, &UpdateStoreRequest{Name: strPtr("Hijacked")})
	assertStatus(t, err, http.StatusNotFound, "Store not found")
	err = svc.Delete(ctx, bob.ID, st.ID)
	assertStatus(t, err, http.StatusNotFound, "Store not found")
	_, err = svc.Get(ctx, bob.ID, st.ID)
	assertStatus(t, err, http.StatusNotFound, "Store not found")

	// keeping the same name does not collide with itself
	updated, err := svc.Update(ctx, alice.ID, st.ID, &UpdateStoreRequest{Name: strPtr("Fresh Farm"), LogoURL: strPtr("https://cdn/logo.png")})
	require.NoError(t, err)
	assert.Equal(t, "fresh-farm", updated.Slug)
	require.NotNil(t, updated.UpiID)
	assert.Equal(t, "farm@upi", *updated.UpiID)
	require.NotNil(t, updated.LogoURL)

	_, err = svc.Update(ctx, alice.ID, other.ID, &UpdateStoreRequest{Name: strPtr("Fresh Farm")})
	assertStatus(t, err, http.StatusConflict, "Store name already exists")

	mine, err := svc.ListMine(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	require.NoError(t, svc.Delete(ctx, alice.ID, other.ID))
	mine, err = svc.ListMine(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestProductLifecycle(t *testing.T) {
	sh := newShop(t)
	intruder := storetest.Seller(t, sh.store, "9000000099")
	svc := NewProductService(sh.store)
	ctx := context.Background()

	_, err := svc.Create(ctx, intruder.ID, &CreateProductRequest{StoreID: sh.st.ID, Name: "Mango", Price: decimal.NewFromInt(3)})
	assertStatus(t, err, http.StatusNotFound, "Store not found")

	_, err = svc.Create(ctx, sh.seller.ID, &CreateProductRequest{StoreID: sh.st.ID, Name: "Mango"})
	assertStatus(t, err, http.StatusBadRequest, "Missing required fields")

	mango, err := svc.Create(ctx, sh.seller.ID, &CreateProductRequest{
		StoreID:  sh.st.ID,
		Name:     "Alphonso Mango",
		Price:    decimal.RequireFromString("3.25"),
		Quantity: 40,
	})
	require.NoError(t, err)
	assert.Equal(t, "alphonso-mango", mango.Slug)

	_, err = svc.Create(ctx, sh.seller.ID, &CreateProductRequest{StoreID: sh.st.ID, Name: "alphonso mango", Price: decimal.NewFromInt(1)})
	assertStatus(t, err, http.StatusConflict, "Product with same name exists")

	_, err = svc.Update(ctx, intruder.ID, mango.ID, &UpdateProductRequest{Quantity: new(int)})
	assertStatus(t, err, http.StatusNotFound, "Product not found")
	err = svc.Delete(ctx, intruder.ID, mango.ID)
	assertStatus(t, err, http.StatusNotFound, "Product not found")

	_, err = svc.Update(ctx, sh.seller.ID, mango.ID, &UpdateProductRequest{Name: strPtr("Green Tea")})
	assertStatus(t, err, http.StatusConflict, "Product with same name exists")

	bad := 7
	_, err = svc.Update(ctx, sh.seller.ID, mango.ID, &UpdateProductRequest{Status: &bad})
	assertStatus(t, err, http.StatusBadRequest, "Invalid product status")

	inactive := models.ProductInactive
	updated, err := svc.Update(ctx, sh.seller.ID, mango.ID, &UpdateProductRequest{
		Description: strPtr("Seasonal"),
		Status:      &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ProductInactive, updated.Status)
	assert.Equal(t, 40, updated.Quantity)
	assert.Equal(t, "alphonso-mango", updated.Slug)

	got, err := svc.Get(ctx, mango.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Description)
	assert.Equal(t, "Seasonal", *got.Description)

	listed, err := svc.ListByStore(ctx, sh.st.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 3)

	require.NoError(t, svc.Delete(ctx, sh.seller.ID, mango.ID))
	_, err = svc.Get(ctx, mango.ID)
	assertStatus(t, err, http.StatusNotFound, "Product not found")
}

func TestDeleteOrderedProductConflicts(t *testing.T) {
	sh := newShop(t)
	orders := NewOrderService(sh.store, &recordingPublisher{})
	ctx := context.Background()

	_, err := orders.PlaceOrder(ctx, sh.orderRequest(item(sh.tea.ID, 1, "4.50")))
	require.NoError(t, err)

	err = NewProductService(sh.store).Delete(ctx, sh.seller.ID, sh.tea.ID)
	assertStatus(t, err, http.StatusConflict, "")
}

func TestCustomerUpsertIsIdempotent(t *testing.T) {
	sh := newShop(t)
	svc := NewCustomerService(sh.store)
	ctx := context.Background()

	req := &UpsertCustomerRequest{StoreID: sh.st.ID, Name: "Asha", Phone: "9200000001", Address: "1 Hill Rd"}
	first, err := svc.Upsert(ctx, req)
	require.NoError(t, err)
	second, err := svc.Upsert(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	updated, err := svc.Upsert(ctx, &UpsertCustomerRequest{
		StoreID: sh.st.ID, Name: "Asha K", Phone: "9200000001", Address: "2 Lake Rd", Email: strPtr("asha@example.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, updated.ID)
	assert.Equal(t, "Asha K", updated.Name)
	assert.Equal(t, "2 Lake Rd", updated.Address)

	kept, err := svc.Upsert(ctx, &UpsertCustomerRequest{
		StoreID: sh.st.ID, Name: "Asha K", Phone: "9200000001", Address: "2 Lake Rd", Email: strPtr(""),
	})
	require.NoError(t, err)
	require.NotNil(t, kept.Email)
	assert.Equal(t, "asha@example.com", *kept.Email)

	customers, err := svc.ListByStore(ctx, sh.st.ID)
	require.NoError(t, err)
	assert.Len(t, customers, 2)

	_, err = svc.Upsert(ctx, &UpsertCustomerRequest{StoreID: sh.st.ID, Name: "X", Phone: "1"})
	assertStatus(t, err, http.StatusBadRequest, "Missing required fields")

	_, err = svc.Upsert(ctx, &UpsertCustomerRequest{StoreID: 999, Name: "X", Phone: "1", Address: "a"})
	assertStatus(t, err, http.StatusNotFound, "Store not found")
}

func TestPublicStorefront(t *testing.T) {
	sh := newShop(t)
	products := NewProductService(sh.store)
	svc := NewPublicService(sh.store)
	ctx := context.Background()

	inactive := models.ProductInactive
	_, err := products.Update(ctx, sh.seller.ID, sh.coffee.ID, &UpdateProductRequest{Status: &inactive})
	require.NoError(t, err)
	for _, name := range []string{"Black Tea", "Tea Cakes", "Biscuits"} {
		_, err := products.Create(ctx, sh.seller.ID, &CreateProductRequest{StoreID: sh.st.ID, Name: name, Price: decimal.NewFromInt(2)})
		require.NoError(t, err)
	}

	public, err := svc.GetStoreBySlug(ctx, "corner-shop")
	require.NoError(t, err)
	assert.Equal(t, sh.st.ID, public.ID)
	require.Len(t, public.Products, 4)
	assert.Equal(t, "biscuits", public.Products[0].Slug)

	page, err := svc.ListStoreProducts(ctx, "corner-shop", "TEA", util.NewPageRequest(1, 2))
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	require.Len(t, page.Data, 2)
	require.NotNil(t, page.Pagination.HasMore)
	assert.True(t, *page.Pagination.HasMore)

	page, err = svc.ListStoreProducts(ctx, "corner-shop", "tea", util.NewPageRequest(2, 2))
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
	assert.False(t, *page.Pagination.HasMore)

	_, err = svc.GetStoreBySlug(ctx, "nowhere")
	assertStatus(t, err, http.StatusNotFound, "Store not found")

	sh.st.Status = models.StoreInactive
	require.NoError(t, sh.store.UpdateStore(ctx, sh.st))
	_, err = svc.GetStoreBySlug(ctx, "corner-shop")
	assertStatus(t, err, http.StatusNotFound, "Store not found")
}

func TestPublicSearchMatchesWildcardsLiterally(t *testing.T) {
	sh := newShop(t)
	svc := NewPublicService(sh.store)
	ctx := context.Background()

	for _, name := range []string{"Soap 500ml", "50% Off Pack", "Ab", "A_b", `Back\Slash`} {
		storetest.Product(t, sh.store, sh.st.ID, name, "1.00")
	}

	tests := []struct {
		search string
		want   []string
	}{
		{"50%", []string{"50% Off Pack"}},
		{"%", []string{"50% Off Pack"}},
		{"a_b", []string{"A_b"}},
		{"_", []string{"A_b"}},
		{`\`, []string{`Back\Slash`}},
		{"ab", []string{"Ab"}},
	}

	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			page, err := svc.ListStoreProducts(ctx, "corner-shop", tt.search, util.NewPageRequest(1, 10))
			require.NoError(t, err)

			var names []string
			for _, p := range page.Data {
				names = append(names, p.Name)
			}
			assert.Equal(t, tt.want, names)
			assert.Equal(t, int64(len(tt.want)), page.Pagination.Total)
		})
	}
}
