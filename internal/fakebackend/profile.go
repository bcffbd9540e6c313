package fakebackend

import (
	"encoding/json"
	"net/http"

	"github.com/kalambet/taxdesk/internal/taxapi"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[currentUser(r.Context()).ID]
	if !ok {
		detailError(w, http.StatusNotFound, "Company profile not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var f taxapi.CompanyProfileFields
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		detailError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	var issues []fieldIssue
	if f.Name == "" {
		issues = append(issues, missing("body", "name"))
	}
	if f.NIP == "" {
		issues = append(issues, missing("body", "nip"))
	}
	if len(issues) > 0 {
		validationError(w, issues...)
		return
	}

	uid := currentUser(r.Context()).ID
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.profiles[uid]; exists {
		detailError(w, http.StatusBadRequest, "Company profile already exists")
		return
	}
	p := &taxapi.CompanyProfile{
		ID:                   s.newID(),
		UserID:               uid,
		CompanyProfileFields: f,
		CreatedAt:            s.timestamp(),
	}
	s.profiles[uid] = p
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var u taxapi.CompanyProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		detailError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[currentUser(r.Context()).ID]
	if !ok {
		detailError(w, http.StatusNotFound, "Company profile not found")
		return
	}
	applyProfileUpdate(&p.CompanyProfileFields, u)
	writeJSON(w, http.StatusOK, p)
}

func applyProfileUpdate(f *taxapi.CompanyProfileFields, u taxapi.CompanyProfileUpdate) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setString(&f.Name, u.Name)
	setString(&f.NIP, u.NIP)
	setString(&f.VATID, u.VATID)
	setString(&f.Industry, u.Industry)
	setString(&f.PKDCode, u.PKDCode)
	if u.CompanyType != nil {
		f.CompanyType = *u.CompanyType
	}
	if u.RevenueRange != nil {
		f.RevenueRange = *u.RevenueRange
	}
	if u.CITRateReduced != nil {
		f.CITRateReduced = u.CITRateReduced
	}
	if u.EstonianCIT != nil {
		f.EstonianCIT = u.EstonianCIT
	}
	if u.RelatedPartyTransactions != nil {
		f.RelatedPartyTransactions = u.RelatedPartyTransactions
	}
	if u.RDRelief != nil {
		f.RDRelief = u.RDRelief
	}
	if u.EmployeeCount != nil {
		f.EmployeeCount = u.EmployeeCount
	}
	if u.AnnualRevenue != nil {
		f.AnnualRevenue = u.AnnualRevenue
	}
}
