package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"marketplace/internal/models"
)

type RegistrationForm struct {
	Username  string `form:"username" binding:"required,min=3,max=80"`
	Email     string `form:"email" binding:"required,email"`
	Password  string `form:"password" binding:"required,min=6"`
	Password2 string `form:"password2" binding:"required,eqfield=Password"`
	IsSeller  bool   `form:"is_seller"`
}

type LoginForm struct {
	Email      string `form:"email" binding:"required,email"`
	Password   string `form:"password" binding:"required"`
	RememberMe bool   `form:"remember_me"`
}

type ProductForm struct {
	Title       string `form:"title" binding:"required,max=200"`
	Description string `form:"description" binding:"max=5000"`
	Price       string `form:"price" binding:"required,money"`
	Stock       int    `form:"stock" binding:"min=0,max=1000000"`
}

// Product builds the listing the form describes for the given seller.
func (f ProductForm) Product(sellerID uint) (*models.Product, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(f.Price))
	if err != nil {
		return nil, fmt.Errorf("parse price %q: %w", f.Price, err)
	}
	return &models.Product{
		Title:       strings.TrimSpace(f.Title),
		Description: f.Description,
		Price:       price.Round(2),
		Stock:       f.Stock,
		SellerID:    sellerID,
	}, nil
}

// AddToCartForm leaves Quantity nil when the field is absent; it then means 1.
type AddToCartForm struct {
	Quantity *int `form:"quantity" binding:"omitempty,min=1,max=999"`
}

func (f AddToCartForm) Qty() int {
	if f.Quantity == nil {
		return 1
	}
	return *f.Quantity
}

type CheckoutForm struct {
	Confirm string `form:"confirm" binding:"required,eq=yes"`
}

// maxPrice is the first value that no longer fits decimal(12,2).
var maxPrice = decimal.New(1, 10)

// validMoney accepts a non-negative decimal with at most two fraction digits.
func validMoney(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(strings.TrimSpace(fl.Field().String()))
	if err != nil {
		return false
	}
	return !d.IsNegative() && d.Equal(d.Round(2)) && d.LessThan(maxPrice)
}

func registerValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}
	// report fields by their form name
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v.RegisterValidation("money", validMoney)
}

// fieldErrors maps a bind error to one message per form field. Errors that are
// not tied to a field land under "form".
func fieldErrors(err error) map[string]string {
	out := map[string]string{}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		out["form"] = "Some values could not be read. Check the numbers you entered."
		return out
	}
	for _, fe := range ve {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = fieldMessage(fe)
		}
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	text := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Invalid email address."
	case "eqfield":
		return "Passwords must match."
	case "money":
		return "Enter a price like 9.99."
	case "min":
		if text {
			return fmt.Sprintf("Must be at least %s characters.", fe.Param())
		}
		return fmt.Sprintf("Must be at least %s.", fe.Param())
	case "max":
		if text {
			return fmt.Sprintf("Must be at most %s characters.", fe.Param())
		}
		return fmt.Sprintf("Must be at most %s.", fe.Param())
	}
	return "Invalid value."
}
