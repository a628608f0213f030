package validator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type deliveryForm struct {
	Name    string `validate:"required"`
	Email   string `validate:"required,email"`
	Phone   string `validate:"required,inphone"`
	Pincode string `validate:"required,pincode"`
	Method  string `validate:"oneof=online cod"`
	Note    string `validate:"max=10"`
	Qty     int    `validate:"gte=1,lte=100"`
}

func validForm() deliveryForm {
	return deliveryForm{
		Name:    "Meena",
		Email:   "meena@example.com",
		Phone:   "9876543210",
		Pincode: "560010",
		Method:  "cod",
		Qty:     1,
	}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	return valErr.Fields()
}

func TestValidate_Success(t *testing.T) {
	assert.NoError(t, Validate(validForm()))
}

func TestValidate_FieldMessages(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*deliveryForm)
		field  string
		msg    string
	}{
		{"missing name", func(f *deliveryForm) { f.Name = "" }, "Name", "is required"},
		{"bad email", func(f *deliveryForm) { f.Email = "meena" }, "Email", "must be a valid email address"},
		{"short phone", func(f *deliveryForm) { f.Phone = "98765" }, "Phone", "must be a valid 10-digit mobile number"},
		{"landline prefix", func(f *deliveryForm) { f.Phone = "4412345678" }, "Phone", "must be a valid 10-digit mobile number"},
		{"short pincode", func(f *deliveryForm) { f.Pincode = "5600" }, "Pincode", "must be a valid 6-digit PIN code"},
		{"leading zero pincode", func(f *deliveryForm) { f.Pincode = "012345" }, "Pincode", "must be a valid 6-digit PIN code"},
		{"unknown method", func(f *deliveryForm) { f.Method = "cheque" }, "Method", "must be one of: online cod"},
		{"long note", func(f *deliveryForm) { f.Note = "gift wrap please" }, "Note", "must be at most 10 characters"},
		{"zero quantity", func(f *deliveryForm) { f.Qty = 0 }, "Qty", "must be greater than or equal to 1"},
		{"huge quantity", func(f *deliveryForm) { f.Qty = 101 }, "Qty", "must be less than or equal to 100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(&form)

			fields := fieldsOf(t, Validate(form))
			assert.Len(t, fields, 1)
			assert.Equal(t, tt.msg, fields[tt.field])
		})
	}
}

func TestValidate_PhoneFormats(t *testing.T) {
	for _, phone := range []string{"9876543210", "+919876543210", "09876543210", "98765 43210"} {
		form := validForm()
		form.Phone = phone
		assert.NoError(t, Validate(form), phone)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	err := Validate(deliveryForm{})

	fields := fieldsOf(t, err)
	assert.Contains(t, fields, "Name")
	assert.Contains(t, fields, "Pincode")
	assert.Contains(t, err.Error(), "field 'Name' is required")
	assert.Contains(t, err.Error(), "; ")
}

func TestValidate_NestedStruct(t *testing.T) {
	type order struct {
		Address struct {
			ZipCode string `validate:"required,pincode"`
		} `validate:"required"`
	}

	var o order
	o.Address.ZipCode = "56001A"

	fields := fieldsOf(t, Validate(o))
	assert.Equal(t, "must be a valid 6-digit PIN code", fields["ZipCode"])
}

func TestValidate_NonStruct(t *testing.T) {
	err := Validate("not a struct")
	require.Error(t, err)

	var valErr *ValidationError
	assert.NotErrorAs(t, err, &valErr)
}

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	type address struct {
		ZipCode string `json:"zipCode" validate:"required,pincode"`
		Secret  string `json:"-" validate:"required"`
	}
	type checkout struct {
		PaymentMethod string  `json:"payment_method,omitempty" validate:"required"`
		Address       address `json:"shipping_address"`
	}

	err := Validate(checkout{Address: address{ZipCode: "1"}})

	fields := fieldsOf(t, err)
	assert.Equal(t, map[string]string{
		"payment_method": "is required",
		"zipCode":        "must be a valid 6-digit PIN code",
		"Secret":         "is required",
	}, fields)
	assert.Contains(t, err.Error(), "field 'payment_method' is required")
}

func TestValidate_DecimalAmounts(t *testing.T) {
	type priced struct {
		Price     decimal.Decimal  `json:"price" validate:"gte=0"`
		SalePrice *decimal.Decimal `json:"sale_price" validate:"omitempty,gte=0"`
	}

	assert.NoError(t, Validate(priced{Price: decimal.Zero}))
	assert.NoError(t, Validate(priced{Price: decimal.NewFromInt(1499)}))

	sale := decimal.RequireFromString("-0.01")
	fields := fieldsOf(t, Validate(priced{Price: decimal.NewFromInt(-5), SalePrice: &sale}))
	assert.Equal(t, map[string]string{
		"price":      "must be greater than or equal to 0",
		"sale_price": "must be greater than or equal to 0",
	}, fields)
}
