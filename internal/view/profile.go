package view

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kalambet/taxdesk/internal/taxapi"
	"github.com/kalambet/taxdesk/internal/transport"
)

var (
	nipPattern   = regexp.MustCompile(`^\d{10}$`)
	vatIDPattern = regexp.MustCompile(`^PL\d{10}$`)
	pkdPattern   = regexp.MustCompile(`^\d{2}\.\d{2}\.[A-Z]$`)
)

// profileMessages maps "<json field>.<tag>" to the form message.
var profileMessages = map[string]string{
	"name.required":       "Company name is required",
	"nip.required":        "NIP is required",
	"nip.nip":             "NIP must be 10 digits",
	"vat_id.vatid":        "VAT ID must be in format PL followed by 10 digits",
	"pkd_code.pkd":        "PKD code must be in format XX.XX.X",
	"company_type.oneof":  "Company type must be one of: Sp. z o.o., S.A., JDG, Inna",
	"revenue_range.oneof": "Revenue range must be <200 k or >200 k",
	"employee_count.min":  "Employee count must be 0 or greater",
	"employee_count.max":  "Employee count must be 9999 or less",
	"annual_revenue.min":  "Annual revenue must be 0 or greater",
	"annual_revenue.max":  "Annual revenue must be 2,000,000,000 or less",
}

// ProfileService is implemented by *taxapi.ProfileClient.
type ProfileService interface {
	Get(ctx context.Context) (taxapi.CompanyProfile, error)
	Create(ctx context.Context, f taxapi.CompanyProfileFields) (taxapi.CompanyProfile, error)
	Update(ctx context.Context, u taxapi.CompanyProfileUpdate) (taxapi.CompanyProfile, error)
}

// ProfileEditor is the company profile form. It creates the profile on
// the first save and updates it afterwards.
type ProfileEditor struct {
	svc      ProfileService
	validate *validator.Validate

	profile *taxapi.CompanyProfile
}

func NewProfileEditor(svc ProfileService) *ProfileEditor {
	return &ProfileEditor{svc: svc, validate: newProfileValidator()}
}

func newProfileValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	match := func(re *regexp.Regexp) validator.Func {
		return func(fl validator.FieldLevel) bool { return re.MatchString(fl.Field().String()) }
	}
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("nip", match(nipPattern))
	_ = v.RegisterValidation("vatid", match(vatIDPattern))
	_ = v.RegisterValidation("pkd", match(pkdPattern))
	return v
}

// Load fetches the profile. A 404 means the user has none yet and is not
// an error.
func (p *ProfileEditor) Load(ctx context.Context) (bool, error) {
	prof, err := p.svc.Get(ctx)
	if transport.IsStatus(err, http.StatusNotFound) {
		p.profile = nil
		return false, nil
	}
	if err != nil {
		return false, fail("Failed to load profile data", err)
	}
	p.profile = &prof
	return true, nil
}

// Profile returns the loaded profile and whether one exists.
func (p *ProfileEditor) Profile() (taxapi.CompanyProfile, bool) {
	if p.profile == nil {
		return taxapi.CompanyProfile{}, false
	}
	return *p.profile, true
}

// Validate checks f against the form rules and returns ValidationErrors
// listing every rejected field.
func (p *ProfileEditor) Validate(f taxapi.CompanyProfileFields) error {
	err := p.validate.Struct(f)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg, ok := profileMessages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fe.Field() + " is invalid"
		}
		out = append(out, &ValidationError{Field: fe.Field(), Message: msg})
	}
	return out
}

// Save validates f then creates or updates the profile.
func (p *ProfileEditor) Save(ctx context.Context, f taxapi.CompanyProfileFields) (taxapi.CompanyProfile, error) {
	if err := p.Validate(f); err != nil {
		return taxapi.CompanyProfile{}, err
	}
	var (
		saved taxapi.CompanyProfile
		err   error
	)
	if p.profile != nil {
		saved, err = p.svc.Update(ctx, taxapi.UpdateFrom(f))
	} else {
		saved, err = p.svc.Create(ctx, f)
	}
	if err != nil {
		return taxapi.CompanyProfile{}, fail("Failed to save profile data", err)
	}
	p.profile = &saved
	return saved, nil
}
