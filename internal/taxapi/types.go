package taxapi

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Time is a timestamp that accepts both RFC 3339 and the zone-less ISO
// format the backend emits. Zone-less values are taken as UTC.
type Time struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (t *Time) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", s)
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// --- auth ---

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
	IsAdmin  bool   `json:"is_admin"`
}

// --- documents ---

type DocumentType string

const (
	DocumentPDF DocumentType = "pdf"
	DocumentTXT DocumentType = "txt"
)

type Document struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	FilePath    string       `json:"file_path"`
	FileType    DocumentType `json:"file_type"`
	FileSize    int64        `json:"file_size"`
	UserID      int64        `json:"user_id"`
	CreatedAt   Time         `json:"created_at"`
	UpdatedAt   Time         `json:"updated_at"`
}

// DocumentUpload is the input of DocumentsClient.Upload.
type DocumentUpload struct {
	Title       string
	Description string
	FileName    string
	File        io.Reader
}

// --- chat ---

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

type ChatMessage struct {
	ID         int64  `json:"id"`
	Content    string `json:"content"`
	Role       Role   `json:"role"`
	DocumentID int64  `json:"document_id"`
	UserID     int64  `json:"user_id"`
	CreatedAt  Time   `json:"created_at"`
}

type chatMessageCreate struct {
	Content    string `json:"content"`
	Role       Role   `json:"role"`
	DocumentID int64  `json:"document_id"`
}

// --- news ---

type TaxCategory string

const (
	CategoryVAT              TaxCategory = "VAT"
	CategoryCIT              TaxCategory = "CIT"
	CategoryPIT              TaxCategory = "PIT"
	CategoryTransferPricing  TaxCategory = "Transfer Pricing"
	CategoryTaxProcedure     TaxCategory = "Tax Procedure"
	CategoryInternationalTax TaxCategory = "International Tax"
	CategoryOther            TaxCategory = "Other"
)

type News struct {
	ID            int64       `json:"id"`
	Title         string      `json:"title"`
	Content       string      `json:"content"`
	Summary       string      `json:"summary"`
	Category      TaxCategory `json:"category"`
	SourceURL     string      `json:"source_url,omitempty"`
	PublishedDate Time        `json:"published_date"`
	CreatedAt     Time        `json:"created_at"`
	UpdatedAt     Time        `json:"updated_at"`
}

type PersonalizedNews struct {
	NewsID              int64  `json:"news_id"`
	OriginalSummary     string `json:"original_summary"`
	PersonalizedSummary string `json:"personalized_summary"`
}

// --- notes ---

type Note struct {
	ID         int64  `json:"id"`
	Content    string `json:"content"`
	NewsID     *int64 `json:"news_id,omitempty"`
	DocumentID *int64 `json:"document_id,omitempty"`
	UserID     int64  `json:"user_id"`
	CreatedAt  Time   `json:"created_at"`
	UpdatedAt  Time   `json:"updated_at"`
}

type NoteCreate struct {
	Content    string `json:"content"`
	NewsID     *int64 `json:"news_id,omitempty"`
	DocumentID *int64 `json:"document_id,omitempty"`
}

// NoteFilter narrows NotesClient.List. Zero values are not sent.
type NoteFilter struct {
	NewsID     int64
	DocumentID int64
}

// --- profile ---

type CompanyType string

const (
	CompanySpZoo CompanyType = "Sp. z o.o."
	CompanySA    CompanyType = "S.A."
	CompanyJDG   CompanyType = "JDG"
	CompanyOther CompanyType = "Inna"
)

type RevenueRange string

const (
	RevenueBelow200K RevenueRange = "<200 k"
	RevenueAbove200K RevenueRange = ">200 k"
)

// CompanyProfileFields are the editable profile fields. The validate tags
// mirror the profile form rules; "nip", "vatid" and "pkd" are registered
// by view.ProfileEditor.
type CompanyProfileFields struct {
	Name        string      `json:"name" validate:"required"`
	NIP         string      `json:"nip" validate:"required,nip"`
	VATID       string      `json:"vat_id,omitempty" validate:"omitempty,vatid"`
	Industry    string      `json:"industry,omitempty"`
	CompanyType CompanyType `json:"company_type,omitempty" validate:"omitempty,oneof='Sp. z o.o.' 'S.A.' JDG Inna"`
	PKDCode     string      `json:"pkd_code,omitempty" validate:"omitempty,pkd"`

	CITRateReduced           *bool        `json:"cit_rate_reduced,omitempty"`
	EstonianCIT              *bool        `json:"estonian_cit,omitempty"`
	RevenueRange             RevenueRange `json:"revenue_range,omitempty" validate:"omitempty,oneof='<200 k' '>200 k'"`
	RelatedPartyTransactions *bool        `json:"related_party_transactions,omitempty"`
	RDRelief                 *bool        `json:"rd_relief,omitempty"`

	EmployeeCount *int     `json:"employee_count,omitempty" validate:"omitempty,min=0,max=9999"`
	AnnualRevenue *float64 `json:"annual_revenue,omitempty" validate:"omitempty,min=0,max=2000000000"`
}

type CompanyProfile struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"user_id"`
	CompanyProfileFields
	CreatedAt Time `json:"created_at"`
}

// CompanyProfileUpdate is a partial update; nil fields are left unchanged.
type CompanyProfileUpdate struct {
	Name        *string      `json:"name,omitempty"`
	NIP         *string      `json:"nip,omitempty"`
	VATID       *string      `json:"vat_id,omitempty"`
	Industry    *string      `json:"industry,omitempty"`
	CompanyType *CompanyType `json:"company_type,omitempty"`
	PKDCode     *string      `json:"pkd_code,omitempty"`

	CITRateReduced           *bool         `json:"cit_rate_reduced,omitempty"`
	EstonianCIT              *bool         `json:"estonian_cit,omitempty"`
	RevenueRange             *RevenueRange `json:"revenue_range,omitempty"`
	RelatedPartyTransactions *bool         `json:"related_party_transactions,omitempty"`
	RDRelief                 *bool         `json:"rd_relief,omitempty"`

	EmployeeCount *int     `json:"employee_count,omitempty"`
	AnnualRevenue *float64 `json:"annual_revenue,omitempty"`
}

// UpdateFrom builds an update that sets every non-empty field of f.
func UpdateFrom(f CompanyProfileFields) CompanyProfileUpdate {
	u := CompanyProfileUpdate{
		Name:                     &f.Name,
		NIP:                      &f.NIP,
		CITRateReduced:           f.CITRateReduced,
		EstonianCIT:              f.EstonianCIT,
		RelatedPartyTransactions: f.RelatedPartyTransactions,
		RDRelief:                 f.RDRelief,
		EmployeeCount:            f.EmployeeCount,
		AnnualRevenue:            f.AnnualRevenue,
	}
	if f.VATID != "" {
		u.VATID = &f.VATID
	}
	if f.Industry != "" {
		u.Industry = &f.Industry
	}
	if f.CompanyType != "" {
		u.CompanyType = &f.CompanyType
	}
	if f.PKDCode != "" {
		u.PKDCode = &f.PKDCode
	}
	if f.RevenueRange != "" {
		u.RevenueRange = &f.RevenueRange
	}
	return u
}
