package checkout

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode"
)

// PaymentMethod is the purchaser's chosen way to pay.
type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cod"
	PaymentUPI            PaymentMethod = "upi"
)

// Valid reports whether the method is one the store accepts.
func (m PaymentMethod) Valid() bool {
	return m == PaymentCashOnDelivery || m == PaymentUPI
}

// Field names a checkout form input.
type Field string

const (
	FieldFullName      Field = "full_name"
	FieldPhone         Field = "phone"
	FieldEmail         Field = "email"
	FieldAddress       Field = "address"
	FieldZipCode       Field = "zip_code"
	FieldPaymentMethod Field = "payment_method"
	FieldUPIID         Field = "upi_id"
)

// Fields lists every form field in display order.
var Fields = []Field{
	FieldFullName, FieldPhone, FieldEmail, FieldAddress, FieldZipCode, FieldPaymentMethod, FieldUPIID,
}

var ErrUnknownField = errors.New("unknown checkout field")

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
)

// Form is the purchaser-entered checkout data.
type Form struct {
	FullName      string        `json:"full_name"`
	Phone         string        `json:"phone"`
	Email         string        `json:"email"`
	Address       string        `json:"address"`
	ZipCode       string        `json:"zip_code"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	UPIID         string        `json:"upi_id,omitempty"`
}

// Prefill carries default values from a known purchaser profile.
type Prefill struct {
	FullName string
	Phone    string
	Email    string
	Address  string
	ZipCode  string
}

// Errors maps a field to a human-readable message. A missing key means the
// field is valid.
type Errors map[Field]string

// FormState holds a checkout form, the fields the purchaser has edited and
// the errors from the last validation pass.
type FormState struct {
	mu      sync.Mutex
	form    Form
	errors  Errors
	touched map[Field]bool
}

// NewFormState returns an empty form defaulting to cash on delivery.
func NewFormState() *FormState {
	return &FormState{
		form:    Form{PaymentMethod: PaymentCashOnDelivery},
		errors:  Errors{},
		touched: map[Field]bool{},
	}
}

// Form returns a copy of the current values.
func (f *FormState) Form() Form {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.form
}

// Errors returns a copy of the current error set.
func (f *FormState) Errors() Errors {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errors.clone()
}

// Set stores a value entered by the purchaser and clears any error reported
// for that field. The next Validate call restores the error if the value is
// still wrong.
func (f *FormState) Set(field Field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.assign(field, value); err != nil {
		return err
	}
	f.touched[field] = true
	delete(f.errors, field)
	return nil
}

// Prefill applies profile defaults to fields the purchaser has not edited.
// Empty profile values are ignored.
func (f *FormState) Prefill(p Prefill) {
	f.mu.Lock()
	defer f.mu.Unlock()

	defaults := map[Field]string{
		FieldFullName: p.FullName,
		FieldPhone:    p.Phone,
		FieldEmail:    p.Email,
		FieldAddress:  p.Address,
		FieldZipCode:  p.ZipCode,
	}
	for field, value := range defaults {
		if f.touched[field] || strings.TrimSpace(value) == "" {
			continue
		}
		_ = f.assign(field, value)
	}
}

// Validate checks every rule, replaces the stored error set with the result
// and reports whether the form is valid.
func (f *FormState) Validate() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.errors = Validate(f.form)
	return len(f.errors) == 0
}

// Validate runs all rules against the form and returns every violation.
func Validate(form Form) Errors {
	errs := Errors{}

	if strings.TrimSpace(form.FullName) == "" {
		errs[FieldFullName] = "Full name is required"
	}
	if strings.TrimSpace(form.Phone) == "" {
		errs[FieldPhone] = "Phone number is required"
	} else if !phonePattern.MatchString(stripSpace(form.Phone)) {
		errs[FieldPhone] = "Please enter a valid 10-digit phone number"
	}
	if strings.TrimSpace(form.Email) == "" {
		errs[FieldEmail] = "Email is required"
	} else if !emailPattern.MatchString(strings.TrimSpace(form.Email)) {
		errs[FieldEmail] = "Please enter a valid email"
	}
	if strings.TrimSpace(form.Address) == "" {
		errs[FieldAddress] = "Address is required"
	}
	if strings.TrimSpace(form.ZipCode) == "" {
		errs[FieldZipCode] = "ZIP code is required"
	}

	switch {
	case !form.PaymentMethod.Valid():
		errs[FieldPaymentMethod] = "Please choose a payment method"
	case form.PaymentMethod == PaymentUPI && strings.TrimSpace(form.UPIID) == "":
		errs[FieldUPIID] = "UPI ID is required"
	}

	return errs
}

// ParseField maps a wire name to a Field.
func ParseField(name string) (Field, error) {
	for _, f := range Fields {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownField, name)
}

func (f *FormState) assign(field Field, value string) error {
	switch field {
	case FieldFullName:
		f.form.FullName = value
	case FieldPhone:
		f.form.Phone = value
	case FieldEmail:
		f.form.Email = value
	case FieldAddress:
		f.form.Address = value
	case FieldZipCode:
		f.form.ZipCode = value
	case FieldPaymentMethod:
		f.form.PaymentMethod = PaymentMethod(value)
	case FieldUPIID:
		f.form.UPIID = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return nil
}

func (e Errors) clone() Errors {
	out := make(Errors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
