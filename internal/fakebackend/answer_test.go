package fakebackend

import (
	"strings"
	"testing"

	"github.com/kalambet/taxdesk/internal/taxapi"
)

func TestAnswerFrom(t *testing.T) {
	text := "The company sells software. Its VAT rate is 23 percent!\nInvoices are issued monthly?"

	got := answerFrom(text, "what VAT rate applies")
	if got != "According to the document: Its VAT rate is 23 percent!" {
		t.Errorf("answerFrom = %q", got)
	}

	if got := answerFrom(text, "pension contributions"); got != noAnswer {
		t.Errorf("answerFrom without overlap = %q, want %q", got, noAnswer)
	}
	if got := answerFrom(text, "a b"); got != noAnswer {
		t.Errorf("answerFrom with only short words = %q, want %q", got, noAnswer)
	}
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("One.  Two\n\nthree   words")
	want := []string{"One.", "Two", "three words"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("splitSentences = %q, want %q", got, want)
	}
}

func TestDocumentType(t *testing.T) {
	for name, want := range map[string]taxapi.DocumentType{"a.PDF": taxapi.DocumentPDF, "b.txt": taxapi.DocumentTXT} {
		got, err := documentType(name)
		if err != nil || got != want {
			t.Errorf("documentType(%q) = %q, %v; want %q", name, got, err, want)
		}
	}
	if _, err := documentType("c.docx"); err == nil {
		t.Error("expected docx to be rejected")
	}
}

func TestPersonalize(t *testing.T) {
	yes := true
	p := taxapi.CompanyProfile{CompanyProfileFields: taxapi.CompanyProfileFields{
		Name:                     "Acme",
		RelatedPartyTransactions: &yes,
	}}
	got := personalize(taxapi.News{Category: taxapi.CategoryTransferPricing, Summary: "Thresholds unchanged."}, p)
	if !strings.HasPrefix(got, "For Acme: Thresholds unchanged.") {
		t.Errorf("personalize = %q", got)
	}
	if !strings.Contains(got, "documentation duties apply to you") {
		t.Errorf("personalize ignores related party flag: %q", got)
	}
}
