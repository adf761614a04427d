package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validForm() Form {
	return Form{
		FullName:      "Asha Rao",
		Phone:         "98765 43210",
		Email:         "asha@example.com",
		Address:       "12 MG Road, Bengaluru",
		ZipCode:       "560001",
		PaymentMethod: PaymentCashOnDelivery,
	}
}

func TestValidate_AllRulesTogether(t *testing.T) {
	errs := Validate(Form{PaymentMethod: PaymentUPI})

	assert.Equal(t, Errors{
		FieldFullName: "Full name is required",
		FieldPhone:    "Phone number is required",
		FieldEmail:    "Email is required",
		FieldAddress:  "Address is required",
		FieldZipCode:  "ZIP code is required",
		FieldUPIID:    "UPI ID is required",
	}, errs)
}

func TestValidate_ValidForm(t *testing.T) {
	assert.Empty(t, Validate(validForm()))
}

func TestValidate_Phone(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		ok    bool
	}{
		{"ten digits", "9876543210", true},
		{"ten digits with spaces", " 98765 43210 ", true},
		{"nine digits", "987654321", false},
		{"eleven digits", "98765432100", false},
		{"letters", "98765abcde", false},
		{"dashes", "98765-43210", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			f.Phone = tt.phone
			errs := Validate(f)
			if tt.ok {
				assert.NotContains(t, errs, FieldPhone)
			} else {
				assert.Equal(t, "Please enter a valid 10-digit phone number", errs[FieldPhone])
			}
		})
	}
}

func TestValidate_Email(t *testing.T) {
	tests := []struct {
		email string
		ok    bool
	}{
		{"a@b.co", true},
		{"first.last@shop.example.in", true},
		{"no-at-sign.com", false},
		{"missing@tld", false},
		{"has space@x.com", false},
		{"@x.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			f := validForm()
			f.Email = tt.email
			errs := Validate(f)
			if tt.ok {
				assert.NotContains(t, errs, FieldEmail)
			} else {
				assert.Equal(t, "Please enter a valid email", errs[FieldEmail])
			}
		})
	}
}

func TestValidate_WhitespaceOnlyIsMissing(t *testing.T) {
	f := validForm()
	f.FullName = "   "
	f.ZipCode = "\t"

	errs := Validate(f)
	assert.Equal(t, "Full name is required", errs[FieldFullName])
	assert.Equal(t, "ZIP code is required", errs[FieldZipCode])
}

func TestValidate_PaymentMethod(t *testing.T) {
	f := validForm()
	f.PaymentMethod = "card"
	assert.Contains(t, Validate(f), FieldPaymentMethod)

	f.PaymentMethod = PaymentUPI
	f.UPIID = "asha@upi"
	assert.Empty(t, Validate(f))
}

func TestFormState_SetClearsOnlyThatFieldError(t *testing.T) {
	fs := NewFormState()
	require.False(t, fs.Validate())
	require.Contains(t, fs.Errors(), FieldEmail)
	require.Contains(t, fs.Errors(), FieldPhone)

	// An invalid value still clears the error until the next validation.
	require.NoError(t, fs.Set(FieldEmail, "not-an-email"))
	assert.NotContains(t, fs.Errors(), FieldEmail)
	assert.Contains(t, fs.Errors(), FieldPhone)

	fs.Validate()
	assert.Equal(t, "Please enter a valid email", fs.Errors()[FieldEmail])
}

func TestFormState_SetUnknownField(t *testing.T) {
	fs := NewFormState()
	err := fs.Set("nickname", "x")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestFormState_PrefillRespectsUserEdits(t *testing.T) {
	fs := NewFormState()
	require.NoError(t, fs.Set(FieldFullName, "Typed Name"))

	fs.Prefill(Prefill{
		FullName: "Profile Name",
		Phone:    "9876543210",
		Email:    "profile@example.com",
	})

	f := fs.Form()
	assert.Equal(t, "Typed Name", f.FullName)
	assert.Equal(t, "9876543210", f.Phone)
	assert.Equal(t, "profile@example.com", f.Email)
	assert.Empty(t, f.Address)

	// A later prefill may refresh untouched fields.
	fs.Prefill(Prefill{Phone: "9123456780"})
	assert.Equal(t, "9123456780", fs.Form().Phone)
}

func TestFormState_DefaultsToCashOnDelivery(t *testing.T) {
	assert.Equal(t, PaymentCashOnDelivery, NewFormState().Form().PaymentMethod)
}

func TestParseField(t *testing.T) {
	f, err := ParseField("zip_code")
	require.NoError(t, err)
	assert.Equal(t, FieldZipCode, f)

	_, err = ParseField("zip")
	assert.ErrorIs(t, err, ErrUnknownField)
}
