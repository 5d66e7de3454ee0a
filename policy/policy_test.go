package policy

import (
	"context"
	"testing"
)

func testStore() *InMemoryStore {
	return NewInMemoryStore(
		[]SupplierLink{
			{Factory: "Golden Textile Co.", Buyer: "Northwind Apparel"},
			{Factory: "golden textile co", Buyer: "Harbor Garments"},
			{Factory: "Golden Textile Co. Ltd", Buyer: "Meridian Brands"},
			{Factory: "Sunrise Electronics", Buyer: "Volt Devices"},
		},
		[]CompanyPolicies{
			{
				Company: "Northwind Apparel",
				Policies: map[string]Ref{
					CategoryRecruitmentFees: {
						Text:         "Workers shall never pay for their jobs.",
						DocumentName: "Supplier Code of Conduct",
						DocumentURL:  "https://example.com/code.pdf",
					},
					CategoryWagesOvertime: {
						Text: "Overtime is voluntary and paid at a premium rate.",
					},
				},
			},
		},
	)
}

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Golden Textile Co.", "golden textile co"},
		{"  HARBOR GARMENTS  ", "harbor garments"},
		{"Meridian Brands;", "meridian brands"},
		{"plain", "plain"},
	}
	for _, tc := range cases {
		if got := NormalizeName(tc.in); got != tc.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBuyersForFactoryExact(t *testing.T) {
	store := testStore()
	buyers, err := store.BuyersForFactory(context.Background(), "golden textile co.", MatchExact)
	if err != nil {
		t.Fatalf("BuyersForFactory failed: %v", err)
	}
	// Exact match normalizes the trailing dot, so both spellings of the
	// factory resolve, but the "Ltd" variant does not.
	if len(buyers) != 2 {
		t.Fatalf("Expected 2 buyers, got %v", buyers)
	}
	for _, b := range buyers {
		if b == "Meridian Brands" {
			t.Error("Exact match should not include the Ltd variant")
		}
	}
}

func TestBuyersForFactoryPartial(t *testing.T) {
	store := testStore()
	buyers, err := store.BuyersForFactory(context.Background(), "Golden Textile", MatchPartial)
	if err != nil {
		t.Fatalf("BuyersForFactory failed: %v", err)
	}
	if len(buyers) != 3 {
		t.Errorf("Expected 3 buyers, got %v", buyers)
	}
}

func TestBuyersForFactoryBothDedups(t *testing.T) {
	store := testStore()
	buyers, err := store.BuyersForFactory(context.Background(), "Golden Textile Co.", MatchBoth)
	if err != nil {
		t.Fatalf("BuyersForFactory failed: %v", err)
	}
	seen := make(map[string]int)
	for _, b := range buyers {
		seen[b]++
	}
	for name, n := range seen {
		if n > 1 {
			t.Errorf("Buyer %s appears %d times", name, n)
		}
	}
	if len(buyers) != 3 {
		t.Errorf("Expected 3 distinct buyers, got %v", buyers)
	}
}

func TestBuyersForFactoryNoMatch(t *testing.T) {
	store := testStore()
	buyers, err := store.BuyersForFactory(context.Background(), "Unknown Factory", MatchBoth)
	if err != nil {
		t.Fatalf("BuyersForFactory failed: %v", err)
	}
	if len(buyers) != 0 {
		t.Errorf("Expected no buyers, got %v", buyers)
	}
}

func TestPoliciesForCompany(t *testing.T) {
	store := testStore()
	refs, err := store.PoliciesForCompany(context.Background(), "NORTHWIND APPAREL")
	if err != nil {
		t.Fatalf("PoliciesForCompany failed: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("Expected 2 policies, got %d", len(refs))
	}
	if refs[CategoryRecruitmentFees].DocumentName != "Supplier Code of Conduct" {
		t.Errorf("Unexpected reference: %+v", refs[CategoryRecruitmentFees])
	}

	empty, err := store.PoliciesForCompany(context.Background(), "Unlisted Corp")
	if err != nil {
		t.Fatalf("PoliciesForCompany failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("Expected empty map for unlisted company, got %v", empty)
	}
}
