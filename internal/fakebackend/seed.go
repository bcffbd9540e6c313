package fakebackend

import (
	"time"

	"github.com/kalambet/taxdesk/internal/taxapi"
)

func seedNews(now time.Time) []taxapi.News {
	day := func(daysAgo int) taxapi.Time {
		return taxapi.Time{Time: now.UTC().Truncate(24*time.Hour).AddDate(0, 0, -daysAgo)}
	}
	items := []taxapi.News{
		{
			ID:       1,
			Title:    "National e-Invoicing System (KSeF) becomes mandatory",
			Category: taxapi.CategoryVAT,
			Summary:  "Structured e-invoices issued through KSeF become mandatory for active VAT payers.",
			Content: "The Ministry of Finance confirmed the schedule for mandatory structured invoicing. " +
				"Large taxpayers switch first, the remaining active VAT payers follow. " +
				"Invoices issued outside KSeF will not be treated as invoices for VAT purposes.",
			SourceURL:     "https://www.podatki.gov.pl/ksef/",
			PublishedDate: day(2),
		},
		{
			ID:       2,
			Title:    "Estonian CIT: clarified rules on hidden profits",
			Category: taxapi.CategoryCIT,
			Summary:  "New explanations describe which benefits to shareholders count as hidden profits.",
			Content: "The tax authority published explanations on hidden profits under the lump-sum tax on company income. " +
				"Loans to shareholders and non-arm's-length transactions with related parties remain the main risk areas.",
			PublishedDate: day(5),
		},
		{
			ID:       3,
			Title:    "Transfer pricing documentation thresholds unchanged",
			Category: taxapi.CategoryTransferPricing,
			Summary:  "Documentation thresholds for related party transactions stay at current levels.",
			Content: "Taxpayers with related party transactions above the statutory thresholds must prepare local files " +
				"and file the TPR information return by the end of the tenth month after the tax year.",
			PublishedDate: day(9),
		},
		{
			ID:       4,
			Title:    "R&D relief: more costs eligible for deduction",
			Category: taxapi.CategoryCIT,
			Summary:  "Amendments extend the catalogue of qualifying costs under the R&D relief.",
			Content: "Companies conducting research and development can deduct an additional share of qualifying employee costs. " +
				"The relief is claimed in the annual CIT return.",
			PublishedDate: day(14),
		},
		{
			ID:       5,
			Title:    "Tax ordinance: new deadlines for overpayment refunds",
			Category: taxapi.CategoryTaxProcedure,
			Summary:  "Refund deadlines for tax overpayments are shortened for electronic applications.",
			Content: "Overpayments claimed electronically will be refunded within 30 days. " +
				"Paper applications keep the longer deadline.",
			PublishedDate: day(21),
		},
	}
	for i := range items {
		items[i].CreatedAt = items[i].PublishedDate
		items[i].UpdatedAt = items[i].PublishedDate
	}
	return items
}
