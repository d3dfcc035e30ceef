package handlers

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/middleware"
)

func validate(t *testing.T, obj any) error {
	t.Helper()
	_, err := New(Deps{CSRF: middleware.NewCSRF([]byte("forms-test"), false)})
	require.NoError(t, err)
	return binding.Validator.ValidateStruct(obj)
}

func TestNew_RequiresCSRF(t *testing.T) {
	_, err := New(Deps{})
	assert.ErrorIs(t, err, errNoCSRF)
}

func TestProductForm_Price(t *testing.T) {
	for _, p := range []string{"9.99", "0", "12", "0.5", " 3.10 "} {
		assert.NoError(t, validate(t, ProductForm{Title: "Lamp", Price: p}), p)
	}
	for _, p := range []string{"", "-1", "9.999", "abc", "10000000000"} {
		err := validate(t, ProductForm{Title: "Lamp", Price: p})
		require.Error(t, err, p)
		assert.Contains(t, fieldErrors(err), "price", p)
	}
}

func TestProductForm_Product(t *testing.T) {
	p, err := ProductForm{Title: " Lamp ", Price: " 3.10 ", Stock: 4}.Product(7)
	require.NoError(t, err)
	assert.Equal(t, "Lamp", p.Title)
	assert.Equal(t, "3.10", p.Price.StringFixed(2))
	assert.Equal(t, 4, p.Stock)
	assert.Equal(t, uint(7), p.SellerID)

	for _, price := range []string{"", "abc", "1.2.3"} {
		assert.NotPanics(t, func() {
			p, err := ProductForm{Title: "Lamp", Price: price}.Product(7)
			assert.Error(t, err, price)
			assert.Nil(t, p)
		})
	}
}

func TestProductForm_Limits(t *testing.T) {
	err := validate(t, ProductForm{Price: "1", Stock: -1})
	require.Error(t, err)
	errs := fieldErrors(err)
	assert.Equal(t, "This field is required.", errs["title"])
	assert.Equal(t, "Must be at least 0.", errs["stock"])
}

func TestRegistrationForm(t *testing.T) {
	ok := RegistrationForm{Username: "alice", Email: "a@example.com", Password: "secret", Password2: "secret"}
	require.NoError(t, validate(t, ok))

	bad := RegistrationForm{Username: "al", Email: "nope", Password: "12345", Password2: "54321"}
	errs := fieldErrors(validate(t, bad))
	assert.Equal(t, "Must be at least 3 characters.", errs["username"])
	assert.Equal(t, "Invalid email address.", errs["email"])
	assert.Equal(t, "Must be at least 6 characters.", errs["password"])
	assert.Equal(t, "Passwords must match.", errs["password2"])
}

func TestAddToCartForm(t *testing.T) {
	assert.Equal(t, 1, AddToCartForm{}.Qty())

	three := 3
	assert.NoError(t, validate(t, AddToCartForm{Quantity: &three}))
	assert.Equal(t, 3, AddToCartForm{Quantity: &three}.Qty())

	for _, q := range []int{0, -2, 1000} {
		assert.Error(t, validate(t, AddToCartForm{Quantity: &q}), q)
	}
}

func TestFieldErrors_NonValidation(t *testing.T) {
	errs := fieldErrors(errors.New(`strconv.ParseInt: parsing "x": invalid syntax`))
	assert.Contains(t, errs, "form")
}
