package catalog

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func seedProducts() []Product {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return []Product{
		{
			ID: 1, Title: "Gaming Monitor", CategoryID: 1,
			Price: decimal.NewFromInt(12000), Count: 5, FreeDelivery: true,
			Tags: []Tag{{ID: 1, Name: "Gaming"}, {ID: 2, Name: "RGB"}},
			Date: base,
		},
		{
			ID: 2, Title: "Office keyboard", CategoryID: 2,
			Price: decimal.NewFromInt(900), Count: 0,
			Tags: []Tag{{ID: 3, Name: "Office"}},
			Date: base.Add(24 * time.Hour),
		},
		{
			ID: 3, Title: "Gaming keyboard", CategoryID: 2,
			Price: decimal.NewFromInt(4500), Count: 2, FreeDelivery: true,
			Tags: []Tag{{ID: 1, Name: "Gaming"}},
			Date: base.Add(48 * time.Hour),
		},
		{
			ID: 4, Title: "USB cable", CategoryID: 3,
			Price: decimal.NewFromInt(150), Count: 100,
			Date: base.Add(72 * time.Hour),
		},
	}
}

func idsOf(products []Product) []int {
	out := make([]int, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func equalIDs(a []int, b ...int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDefaultFilterMatchesEverything(t *testing.T) {
	products := seedProducts()
	got := DefaultFilter().Apply(products)
	if len(got) != len(products) {
		t.Fatalf("default filter dropped products: got %d want %d", len(got), len(products))
	}
}

func TestFilterNameIsCaseInsensitiveSubstring(t *testing.T) {
	f := DefaultFilter()
	f.Name = "gAmInG"
	got := f.Apply(seedProducts())
	if !equalIDs(idsOf(got), 1, 3) {
		t.Fatalf("unexpected ids %v", idsOf(got))
	}
}

func TestFilterPriceBounds(t *testing.T) {
	f := DefaultFilter()
	f.MinPrice = decimal.NewFromInt(900)
	f.MaxPrice = decimal.NewFromInt(5000)
	got := f.Apply(seedProducts())
	if !equalIDs(idsOf(got), 2, 3) {
		t.Fatalf("unexpected ids %v", idsOf(got))
	}
}

func TestFilterMaxPriceSentinelIsNoOp(t *testing.T) {
	f := DefaultFilter()
	f.MaxPrice = DefaultMaxPrice
	if got := f.Apply(seedProducts()); len(got) != 4 {
		t.Fatalf("sentinel maxPrice must not filter, got %d products", len(got))
	}
}

func TestFilterAvailableAndFreeDelivery(t *testing.T) {
	f := DefaultFilter()
	f.Available = true
	f.FreeDelivery = true
	got := f.Apply(seedProducts())
	if !equalIDs(idsOf(got), 1, 3) {
		t.Fatalf("unexpected ids %v", idsOf(got))
	}
}

func TestFilterTagsMatchAnyWithoutDuplicates(t *testing.T) {
	f := DefaultFilter()
	f.TagIDs = []int{1, 2}
	got := f.Apply(seedProducts())
	// product 1 carries both requested tags but must appear exactly once
	if !equalIDs(idsOf(got), 1, 3) {
		t.Fatalf("unexpected ids %v", idsOf(got))
	}
}

func TestFilterCategory(t *testing.T) {
	f := DefaultFilter()
	f.CategoryID = 2
	got := f.Apply(seedProducts())
	if !equalIDs(idsOf(got), 2, 3) {
		t.Fatalf("unexpected ids %v", idsOf(got))
	}
}

// Removing any single option from a filter may only enlarge or preserve
// the result set.
func TestFilterMonotonicity(t *testing.T) {
	products := seedProducts()
	full := DefaultFilter()
	full.Name = "keyboard"
	full.MinPrice = decimal.NewFromInt(500)
	full.MaxPrice = decimal.NewFromInt(10000)
	full.Available = true
	full.TagIDs = []int{1, 3}
	full.CategoryID = 2

	fullSet := map[int]bool{}
	for _, p := range full.Apply(products) {
		fullSet[p.ID] = true
	}

	relaxed := []FilterConfig{full, full, full, full, full, full}
	relaxed[0].Name = ""
	relaxed[1].MinPrice = decimal.Zero
	relaxed[2].MaxPrice = DefaultMaxPrice
	relaxed[3].Available = false
	relaxed[4].TagIDs = nil
	relaxed[5].CategoryID = 0

	for i, f := range relaxed {
		got := f.Apply(products)
		if len(got) < len(fullSet) {
			t.Fatalf("relaxing option %d shrank the result: %v", i, idsOf(got))
		}
		for id := range fullSet {
			found := false
			for _, p := range got {
				if p.ID == id {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("relaxing option %d lost product %d", i, id)
			}
		}
	}
}

func TestEffectivePriceUsesActiveSaleOnly(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	sale := decimal.NewFromInt(80)
	from := now.AddDate(0, 0, -5)
	to := now.AddDate(0, 0, 5)
	p := Product{Price: decimal.NewFromInt(100), SalePrice: &sale, SaleFrom: &from, SaleTo: &to}

	if got := p.EffectivePriceAt(now); !got.Equal(sale) {
		t.Fatalf("expected active sale price, got %s", got)
	}
	if got := p.EffectivePriceAt(now.AddDate(0, 0, 10)); !got.Equal(p.Price) {
		t.Fatalf("expected base price after sale window, got %s", got)
	}
	if got := p.EffectivePriceAt(now.AddDate(0, 0, -10)); !got.Equal(p.Price) {
		t.Fatalf("expected base price before sale window, got %s", got)
	}
}
