package fakebackend

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/kalambet/taxdesk/internal/taxapi"
)

func (s *Server) findNews(r *http.Request) (taxapi.News, bool) {
	id, ok := pathID(r)
	if !ok {
		return taxapi.News{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.news {
		if n.ID == id {
			return n, true
		}
	}
	return taxapi.News{}, false
}

func (s *Server) handleListNews(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := append([]taxapi.News{}, s.news...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetNews(w http.ResponseWriter, r *http.Request) {
	n, ok := s.findNews(r)
	if !ok {
		detailError(w, http.StatusNotFound, "News not found")
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) handlePersonalizedNews(w http.ResponseWriter, r *http.Request) {
	n, ok := s.findNews(r)
	if !ok {
		detailError(w, http.StatusNotFound, "News not found")
		return
	}
	s.mu.Lock()
	prof, ok := s.profiles[currentUser(r.Context()).ID]
	var p taxapi.CompanyProfile
	if ok {
		p = *prof
	}
	s.mu.Unlock()
	if !ok {
		detailError(w, http.StatusNotFound, "Company profile not found. Please create a profile first.")
		return
	}
	writeJSON(w, http.StatusOK, taxapi.PersonalizedNews{
		NewsID:              n.ID,
		OriginalSummary:     n.Summary,
		PersonalizedSummary: personalize(n, p),
	})
}

// personalize rewrites a summary for a company using its profile flags.
func personalize(n taxapi.News, p taxapi.CompanyProfile) string {
	var b strings.Builder
	name := p.Name
	if p.CompanyType != "" {
		name = fmt.Sprintf("%s (%s)", p.Name, p.CompanyType)
	}
	fmt.Fprintf(&b, "For %s: %s", name, n.Summary)

	isTrue := func(v *bool) bool { return v != nil && *v }
	switch n.Category {
	case taxapi.CategoryVAT:
		if p.VATID != "" {
			fmt.Fprintf(&b, " As an active VAT payer (%s) you are directly affected.", p.VATID)
		} else {
			b.WriteString(" Your profile has no VAT ID, so check whether you are VAT-exempt.")
		}
	case taxapi.CategoryCIT:
		if isTrue(p.EstonianCIT) {
			b.WriteString(" You use the Estonian CIT regime, so review distributions to shareholders.")
		}
		if isTrue(p.RDRelief) {
			b.WriteString(" You already claim the R&D relief; verify the new cost categories.")
		}
		if isTrue(p.CITRateReduced) {
			b.WriteString(" Your reduced 9% CIT rate is not affected.")
		}
	case taxapi.CategoryTransferPricing:
		if isTrue(p.RelatedPartyTransactions) {
			b.WriteString(" You report related party transactions, so documentation duties apply to you.")
		} else {
			b.WriteString(" You report no related party transactions, so this is unlikely to apply.")
		}
	}
	if p.EmployeeCount != nil && *p.EmployeeCount >= 250 {
		b.WriteString(" Given your headcount you may be treated as a large enterprise.")
	}
	return b.String()
}
