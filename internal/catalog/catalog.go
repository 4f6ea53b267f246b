package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/brewbot-backend/pkg/types"
)

// AddOn is a purchasable extra attached to a product.
type AddOn struct {
	Name  string
	Price decimal.Decimal
}

// Product is an immutable catalog entry. Option axes with an empty set do not
// apply to the product and are skipped during the ordering dialogue.
type Product struct {
	Name               string
	Base               string
	Price              decimal.Decimal
	SizeOptions        []string
	MilkOptions        []string
	TemperatureOptions []string
	AddOns             []AddOn
}

// AddOnPrice returns the price of the named add-on.
func (p *Product) AddOnPrice(name string) (decimal.Decimal, bool) {
	for _, a := range p.AddOns {
		if a.Name == name {
			return a.Price, true
		}
	}
	return decimal.Zero, false
}

// Category is a top-level menu grouping.
type Category struct {
	Title string
	Base  string
}

// Catalog is the read-only product source consumed by the dialogue.
type Catalog interface {
	ListCategories() []Category
	ListProducts(base string) []Product
	FindProduct(name string) (*Product, bool)
}

// Static serves a fixed menu loaded at startup.
type Static struct {
	categories []Category
	products   []Product
	byName     map[string]int
}

type menuFile struct {
	Categories []struct {
		Title string `json:"title"`
		Base  string `json:"base"`
	} `json:"categories"`
	Products []struct {
		Name               string   `json:"name"`
		Base               string   `json:"base"`
		Price              string   `json:"price"`
		SizeOptions        []string `json:"size_options"`
		MilkOptions        []string `json:"milk_options"`
		TemperatureOptions []string `json:"temperature_options"`
		AddOns             []struct {
			Name  string `json:"name"`
			Price string `json:"price"`
		} `json:"add_ons"`
	} `json:"products"`
}

// New loads the embedded default menu.
func New() (*Static, error) {
	return NewFromJSON(defaultMenu)
}

// NewFromJSON builds a catalog from raw menu JSON.
func NewFromJSON(raw []byte) (*Static, error) {
	var file menuFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing menu: %w", err)
	}
	if len(file.Categories) == 0 {
		return nil, fmt.Errorf("menu has no categories")
	}

	s := &Static{byName: make(map[string]int)}
	for _, c := range file.Categories {
		if c.Title == "" || c.Base == "" {
			return nil, fmt.Errorf("category requires title and base")
		}
		s.categories = append(s.categories, Category{Title: c.Title, Base: c.Base})
	}

	for _, raw := range file.Products {
		price, err := types.ParsePrice(raw.Price)
		if err != nil {
			return nil, fmt.Errorf("product %q: %w", raw.Name, err)
		}
		p := Product{
			Name:               raw.Name,
			Base:               raw.Base,
			Price:              price,
			SizeOptions:        raw.SizeOptions,
			MilkOptions:        raw.MilkOptions,
			TemperatureOptions: raw.TemperatureOptions,
		}
		for _, a := range raw.AddOns {
			addOnPrice, err := types.ParsePrice(a.Price)
			if err != nil {
				return nil, fmt.Errorf("product %q add-on %q: %w", raw.Name, a.Name, err)
			}
			p.AddOns = append(p.AddOns, AddOn{Name: a.Name, Price: addOnPrice})
		}
		if _, dup := s.byName[p.Name]; dup {
			return nil, fmt.Errorf("duplicate product %q", p.Name)
		}
		s.byName[p.Name] = len(s.products)
		s.products = append(s.products, p)
	}

	return s, nil
}

// ListCategories returns the menu categories in display order.
func (s *Static) ListCategories() []Category {
	out := make([]Category, len(s.categories))
	copy(out, s.categories)
	return out
}

// ListProducts returns all products under the given category base.
func (s *Static) ListProducts(base string) []Product {
	var out []Product
	for _, p := range s.products {
		if p.Base == base {
			out = append(out, p)
		}
	}
	return out
}

// FindProduct looks up a product by its exact name.
func (s *Static) FindProduct(name string) (*Product, bool) {
	idx, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	p := s.products[idx]
	return &p, true
}
