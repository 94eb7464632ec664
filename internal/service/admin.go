package service

import (
	"context"
	"sort"

	"github.com/Skotchmaster/storefront/internal/auth"
	"github.com/Skotchmaster/storefront/internal/metrics"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

const (
	topProductsLimit  = 5
	recentOrdersLimit = 5
)

type TrafficSource interface {
	Snapshot() (metrics.Snapshot, error)
}

type Overview struct {
	TotalUsers    int     `json:"total_users"`
	TotalProducts int     `json:"total_products"`
	TotalOrders   int     `json:"total_orders"`
	TotalRevenue  float64 `json:"total_revenue"`
}

type ProductSales struct {
	Product      *ProductSummary `json:"product"`
	QuantitySold int             `json:"quantity_sold"`
}

type CategorySales struct {
	Category     models.Category `json:"category"`
	ProductCount int             `json:"product_count"`
	OrderCount   int             `json:"order_count"`
}

type Dashboard struct {
	Overview         Overview                   `json:"overview"`
	OrdersByStatus   map[models.OrderStatus]int `json:"orders_by_status"`
	TopProducts      []ProductSales             `json:"top_products"`
	CategoryStats    []CategorySales            `json:"category_stats"`
	RecentOrders     []models.Order             `json:"recent_orders"`
	LowStockProducts []models.Product           `json:"low_stock_products"`
}

type Stats struct {
	Overview
	Traffic *metrics.Snapshot `json:"traffic,omitempty"`
}

type AdminService struct {
	Users      repo.Repository[models.User]
	Products   repo.Repository[models.Product]
	Categories repo.Repository[models.Category]
	Orders     repo.Repository[models.Order]
	Traffic    TrafficSource
}

type snapshot struct {
	users      []models.User
	products   []models.Product
	categories []models.Category
	orders     []models.Order
}

func (s *AdminService) load(ctx context.Context) (snapshot, error) {
	var sn snapshot
	var err error
	if sn.users, err = s.Users.List(ctx); err != nil {
		return sn, err
	}
	if sn.products, err = s.Products.List(ctx); err != nil {
		return sn, err
	}
	if sn.categories, err = s.Categories.List(ctx); err != nil {
		return sn, err
	}
	if sn.orders, err = s.Orders.List(ctx); err != nil {
		return sn, err
	}
	return sn, nil
}

func overview(sn snapshot) Overview {
	o := Overview{TotalProducts: len(sn.products), TotalOrders: len(sn.orders)}
	for _, u := range sn.users {
		if u.Role == auth.RoleUser {
			o.TotalUsers++
		}
	}
	var revenue float64
	for _, ord := range sn.orders {
		if ord.Status != models.OrderCancelled {
			revenue += ord.TotalAmount
		}
	}
	o.TotalRevenue = roundCents(revenue)
	return o
}

func (s *AdminService) Dashboard(ctx context.Context) (Dashboard, error) {
	sn, err := s.load(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	d := Dashboard{
		Overview:         overview(sn),
		OrdersByStatus:   map[models.OrderStatus]int{},
		LowStockProducts: []models.Product{},
	}
	for _, st := range validStatuses {
		d.OrdersByStatus[st] = 0
	}

	byID := make(map[string]models.Product, len(sn.products))
	for _, p := range sn.products {
		byID[p.ID] = p
		if p.Stock < lowStockThreshold {
			d.LowStockProducts = append(d.LowStockProducts, p)
		}
	}

	sold := map[string]int{}
	var soldOrder []string
	for _, o := range sn.orders {
		d.OrdersByStatus[o.Status]++
		for _, it := range o.Items {
			if _, seen := sold[it.ProductID]; !seen {
				soldOrder = append(soldOrder, it.ProductID)
			}
			sold[it.ProductID] += it.Quantity
		}
	}
	sort.SliceStable(soldOrder, func(i, j int) bool { return sold[soldOrder[i]] > sold[soldOrder[j]] })
	if len(soldOrder) > topProductsLimit {
		soldOrder = soldOrder[:topProductsLimit]
	}
	d.TopProducts = make([]ProductSales, 0, len(soldOrder))
	for _, id := range soldOrder {
		ps := ProductSales{QuantitySold: sold[id]}
		if p, ok := byID[id]; ok {
			ps.Product = &ProductSummary{ID: p.ID, Name: p.Name, Price: p.Price, Images: p.Images}
		}
		d.TopProducts = append(d.TopProducts, ps)
	}

	d.CategoryStats = make([]CategorySales, 0, len(sn.categories))
	for _, c := range sn.categories {
		cs := CategorySales{Category: c, ProductCount: len(inCategory(sn.products, c.ID))}
		for _, o := range sn.orders {
			for _, it := range o.Items {
				if byID[it.ProductID].CategoryID == c.ID {
					cs.OrderCount++
					break
				}
			}
		}
		d.CategoryStats = append(d.CategoryStats, cs)
	}

	recent := append([]models.Order(nil), sn.orders...)
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].CreatedAt.After(recent[j].CreatedAt) })
	if len(recent) > recentOrdersLimit {
		recent = recent[:recentOrdersLimit]
	}
	d.RecentOrders = recent
	return d, nil
}

// Stats is the short overview plus request counters when metrics are wired.
func (s *AdminService) Stats(ctx context.Context) (Stats, error) {
	sn, err := s.load(ctx)
	if err != nil {
		return Stats{}, err
	}
	st := Stats{Overview: overview(sn)}
	if s.Traffic != nil {
		snap, err := s.Traffic.Snapshot()
		if err != nil {
			return Stats{}, err
		}
		st.Traffic = &snap
	}
	return st, nil
}
